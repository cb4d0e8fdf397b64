package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iamkrish/shop-management/internal/model"
)

// OrderRepo persists customer orders.
type OrderRepo struct{ db *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// Place inserts an order and decrements the product's stock in a single
// transaction; the product row is locked so concurrent orders cannot both
// pass the stock check. Returns the remaining stock alongside the order.
// ErrInsufficientStock carries the available stock back through the second
// return value.
func (r *OrderRepo) Place(ctx context.Context, o *model.Order) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var stock int
	if err := tx.QueryRowContext(ctx,
		"SELECT stock FROM products WHERE id=? FOR UPDATE", o.ProductID).Scan(&stock); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if stock < o.Quantity {
		return stock, ErrInsufficientStock
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO orders (order_id, customer_id, product_id, quantity, order_date, status) VALUES (?,?,?,?,?,'pending')",
		o.OrderID, o.CustomerID, o.ProductID, o.Quantity, o.OrderDate)
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE products SET stock = stock - ? WHERE id=?", o.Quantity, o.ProductID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	o.ID = uint64(id)
	return stock - o.Quantity, nil
}

// OrderQuery defines filters & pagination for a customer's order history.
type OrderQuery struct {
	CustomerID uint64
	DateFrom   *time.Time
	DateTo     *time.Time
	Sort       string
	Page       int
	PageSize   int
}

// OrderRow is the listing projection returned to customers.
type OrderRow struct {
	OrderID   string    `json:"order_id"`
	Product   string    `json:"product"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	OrderDate time.Time `json:"order_date"`
	Category  *string   `json:"category"`
}

var orderSortMapping = map[string]string{
	"order_date": "o.order_date DESC",
	"quantity":   "o.quantity DESC",
	"price_asc":  "p.price ASC",
	"price_desc": "p.price DESC",
}

// ListByCustomer returns one page of the customer's orders plus the total
// row count for the active filters.
func (r *OrderRepo) ListByCustomer(ctx context.Context, q OrderQuery) ([]OrderRow, int64, error) {
	where := []string{"o.customer_id = ?"}
	args := []any{q.CustomerID}
	if q.DateFrom != nil {
		where = append(where, "o.order_date >= ?")
		args = append(args, *q.DateFrom)
	}
	if q.DateTo != nil {
		where = append(where, "o.order_date <= ?")
		args = append(args, *q.DateTo)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countSQL := `SELECT COUNT(*)
		FROM orders o
		JOIN products p ON p.id = o.product_id
		WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order, ok := orderSortMapping[q.Sort]
	if !ok {
		order = "o.order_date DESC"
	}
	dataSQL := `SELECT o.order_id, p.name, o.quantity, p.price, o.order_date, c.name
		FROM orders o
		JOIN products p ON p.id = o.product_id
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

	out := make([]OrderRow, 0, q.PageSize)
	for rows.Next() {
		var d OrderRow
		var cat sql.NullString
		if err := rows.Scan(&d.OrderID, &d.Product, &d.Quantity, &d.Price, &d.OrderDate, &cat); err != nil {
			return nil, 0, err
		}
		if cat.Valid {
			v := cat.String
			d.Category = &v
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}
