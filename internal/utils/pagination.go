package utils

// TotalPages computes the page count for a row total, never less than one so
// an empty result still reports a single (empty) page.
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		pageSize = 10
	}
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return pages
}

// Paginate slices one page out of an already-materialized list. It returns
// nil when the page is out of range, plus the total page count.
func Paginate[T any](items []T, page, pageSize int) ([]T, int) {
	if pageSize <= 0 {
		pageSize = 10
	}
	totalPages := TotalPages(int64(len(items)), pageSize)
	if page < 1 || page > totalPages {
		return nil, totalPages
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], totalPages
}
