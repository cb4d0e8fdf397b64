package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iamkrish/shop-management/internal/model"
)

// CategoryRepo manages product categories. Categories are created lazily the
// first time a product names one.
type CategoryRepo struct{ db *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// GetOrCreate fetches a category by name, inserting it first when missing.
func (r *CategoryRepo) GetOrCreate(ctx context.Context, name string) (*model.Category, error) {
	var c model.Category
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, description, created_at FROM categories WHERE name=? LIMIT 1", name).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (name, description) VALUES (?, 'No description about this category')", name)
	if err != nil {
		// Lost a create race; re-read the winner's row.
		if isDuplicate(err) {
			return r.GetOrCreate(ctx, name)
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	c.ID = uint64(id)
	c.Name = name
	return &c, nil
}

// CategoryRow is the public listing projection with a product count.
type CategoryRow struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	ProductCount int64  `json:"product_count"`
}

// ListWithCounts returns one page of categories ordered by product count
// descending, then name, plus the total category count.
func (r *CategoryRepo) ListWithCounts(ctx context.Context, page, pageSize int) ([]CategoryRow, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT c.name, c.description, COUNT(p.id) AS product_count
		 FROM categories c
		 LEFT JOIN products p ON p.category_id = c.id
		 GROUP BY c.id
		 ORDER BY product_count DESC, c.name ASC
		 LIMIT ? OFFSET ?`, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]CategoryRow, 0, pageSize)
	for rows.Next() {
		var d CategoryRow
		if err := rows.Scan(&d.Name, &d.Description, &d.ProductCount); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}
