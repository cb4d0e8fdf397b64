package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iamkrish/shop-management/internal/model"
)

// ProductRepo encapsulates catalog queries. Listing methods follow the
// COUNT-then-page shape: one aggregate query for the total, one LIMIT/OFFSET
// query for the requested page.
type ProductRepo struct{ db *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

// productSortMapping translates API sort keys into ORDER BY clauses. Unknown
// keys fall back to newest-first.
var productSortMapping = map[string]string{
	"price_asc":  "p.price ASC",
	"price_desc": "p.price DESC",
	"rating":     "p.rating DESC",
	"stock":      "p.stock DESC",
	"created_at": "p.created_at DESC",
}

// ProductQuery defines filters & pagination for a shopkeeper's own catalog.
type ProductQuery struct {
	OwnerID  uint64
	Category string
	Search   string
	Sort     string
	MinPrice *float64
	MaxPrice *float64
	MaxStock *int
	Page     int
	PageSize int
}

// ProductRow is the listing projection returned to shopkeepers.
type ProductRow struct {
	ProductID     string   `json:"product_id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	DiscountPrice *float64 `json:"discount_price,omitempty"`
	Stock         int      `json:"stock"`
	Rating        float64  `json:"rating"`
	Category      *string  `json:"category"`
}

// Create inserts a product. The (name, created_by) pair is unique per shop;
// a duplicate-key failure surfaces as ErrProductExists.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	var category any
	if p.CategoryID != nil {
		category = *p.CategoryID
	}
	var discount any
	if p.DiscountPrice != nil {
		discount = *p.DiscountPrice
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO products (product_id, name, category_id, description, price, discount_price, stock, created_by) VALUES (?,?,?,?,?,?,?,?)",
		p.ProductID, p.Name, category, p.Description, p.Price, discount, p.Stock, p.CreatedBy)
	if err != nil {
		if isDuplicate(err) {
			return ErrProductExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// ExistsForOwner reports whether the shopkeeper already sells a product with
// this name.
func (r *ProductRepo) ExistsForOwner(ctx context.Context, name string, ownerID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM products WHERE name=? AND created_by=?", name, ownerID).Scan(&n)
	return n > 0, err
}

// GetByName fetches a product by case-insensitive exact name, across all
// shops. Order placement resolves products this way.
func (r *ProductRepo) GetByName(ctx context.Context, name string) (*model.Product, error) {
	var p model.Product
	var category sql.NullInt64
	var discount sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, product_id, name, category_id, COALESCE(description,''), price, discount_price, rating, total_sold, stock, created_by, created_at, updated_at
		 FROM products WHERE LOWER(name)=LOWER(?) LIMIT 1`, name).
		Scan(&p.ID, &p.ProductID, &p.Name, &category, &p.Description, &p.Price, &discount,
			&p.Rating, &p.TotalSold, &p.Stock, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if category.Valid {
		v := uint64(category.Int64)
		p.CategoryID = &v
	}
	if discount.Valid {
		v := discount.Float64
		p.DiscountPrice = &v
	}
	return &p, nil
}

// ListByOwner returns one page of the shopkeeper's catalog plus the total
// row count for the active filters.
func (r *ProductRepo) ListByOwner(ctx context.Context, q ProductQuery) ([]ProductRow, int64, error) {
	where := []string{"p.created_by = ?"}
	args := []any{q.OwnerID}

	if q.Category != "" {
		where = append(where, "LOWER(c.name) = LOWER(?)")
		args = append(args, q.Category)
	}
	if q.Search != "" {
		where = append(where, "LOWER(p.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Search)+"%")
	}
	if q.MinPrice != nil {
		where = append(where, "p.price >= ?")
		args = append(args, *q.MinPrice)
	}
	if q.MaxPrice != nil {
		where = append(where, "p.price <= ?")
		args = append(args, *q.MaxPrice)
	}
	if q.MaxStock != nil {
		where = append(where, "p.stock <= ?")
		args = append(args, *q.MaxStock)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countSQL := `SELECT COUNT(*)
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order, ok := productSortMapping[q.Sort]
	if !ok {
		order = "p.created_at DESC"
	}
	dataSQL := `SELECT p.product_id, p.name, p.price, p.discount_price, p.stock, p.rating, c.name
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE ` + cond + `
		ORDER BY ` + order + `
		LIMIT ? OFFSET ?`
	argsData := append(append([]any{}, args...), q.PageSize, (q.Page-1)*q.PageSize)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]ProductRow, 0, q.PageSize)
	for rows.Next() {
		var d ProductRow
		var discount sql.NullFloat64
		var category sql.NullString
		if err := rows.Scan(&d.ProductID, &d.Name, &d.Price, &discount, &d.Stock, &d.Rating, &category); err != nil {
			return nil, 0, err
		}
		if discount.Valid {
			v := discount.Float64
			d.DiscountPrice = &v
		}
		if category.Valid {
			v := category.String
			d.Category = &v
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// SearchRow is the cross-shop search projection: only name, price and stock
// are exposed to arbitrary authenticated users.
type SearchRow struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// SearchByName matches products across all shops by case-insensitive
// substring and orders them price-descending.
func (r *ProductRepo) SearchByName(ctx context.Context, name string, page, pageSize int) ([]SearchRow, int64, error) {
	pattern := "%" + strings.ToLower(name) + "%"

	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM products WHERE LOWER(name) LIKE ?", pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT name, price, stock FROM products
		 WHERE LOWER(name) LIKE ?
		 ORDER BY price DESC
		 LIMIT ? OFFSET ?`, pattern, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]SearchRow, 0, pageSize)
	for rows.Next() {
		var d SearchRow
		if err := rows.Scan(&d.Name, &d.Price, &d.Stock); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// TopSellingRow aggregates a product's sold quantity across its orders.
type TopSellingRow struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
	Category  *string `json:"category"`
	TotalSold int64   `json:"total_sold"`
}

var topSellingSortMapping = map[string]string{
	"total_sold": "total_sold DESC",
	"name":       "p.name ASC",
	"price_asc":  "p.price ASC",
	"price_desc": "p.price DESC",
	"stock":      "p.stock DESC",
}

// TopSelling returns up to topN of the shopkeeper's products ranked by the
// summed order quantity, with the same category/search filters as listings.
func (r *ProductRepo) TopSelling(ctx context.Context, ownerID uint64, category, search, sort string, topN int) ([]TopSellingRow, error) {
	where := []string{"p.created_by = ?"}
	args := []any{ownerID}
	if category != "" {
		where = append(where, "LOWER(c.name) = LOWER(?)")
		args = append(args, category)
	}
	if search != "" {
		where = append(where, "LOWER(p.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(search)+"%")
	}

	order, ok := topSellingSortMapping[sort]
	if !ok {
		order = "total_sold DESC"
	}
	q := `SELECT p.product_id, p.name, p.price, p.stock, c.name, SUM(o.quantity) AS total_sold
		FROM orders o
		JOIN products p ON p.id = o.product_id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY p.id
		ORDER BY ` + order + `
		LIMIT ?`
	args = append(args, topN)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TopSellingRow{}
	for rows.Next() {
		var d TopSellingRow
		var cat sql.NullString
		if err := rows.Scan(&d.ProductID, &d.Name, &d.Price, &d.Stock, &cat, &d.TotalSold); err != nil {
			return nil, err
		}
		if cat.Valid {
			v := cat.String
			d.Category = &v
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
