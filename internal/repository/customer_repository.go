package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iamkrish/shop-management/internal/model"
)

// CustomerRepo encapsulates all database queries against the customers
// table. Soft-deleted rows (deleted_at set) are invisible to authentication
// and to uniqueness checks, but stay in place so a later registration with
// the same username can revive them.
type CustomerRepo struct{ db *sql.DB }

func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

const customerCols = "id, username, phone_number, email, password, loyalty_points, COALESCE(address,''), created_at, updated_at, deleted_at"

func scanCustomer(row *sql.Row) (*model.Customer, error) {
	var c model.Customer
	var deleted sql.NullTime
	err := row.Scan(&c.ID, &c.Username, &c.PhoneNumber, &c.Email, &c.PasswordHash,
		&c.LoyaltyPoints, &c.Address, &c.CreatedAt, &c.UpdatedAt, &deleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if deleted.Valid {
		t := deleted.Time
		c.DeletedAt = &t
	}
	return &c, nil
}

// GetActiveByUsername fetches a non-deleted customer by username.
func (r *CustomerRepo) GetActiveByUsername(ctx context.Context, username string) (*model.Customer, error) {
	username = strings.TrimSpace(username)
	row := r.db.QueryRowContext(ctx,
		"SELECT "+customerCols+" FROM customers WHERE username=? AND deleted_at IS NULL LIMIT 1", username)
	return scanCustomer(row)
}

// GetDeletedByUsername fetches a soft-deleted customer by username, used by
// registration to revive the row instead of inserting a duplicate.
func (r *CustomerRepo) GetDeletedByUsername(ctx context.Context, username string) (*model.Customer, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+customerCols+" FROM customers WHERE username=? AND deleted_at IS NOT NULL LIMIT 1", strings.TrimSpace(username))
	return scanCustomer(row)
}

// GetByID fetches a customer regardless of deletion state. The authorization
// helpers re-check deleted_at themselves.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (*model.Customer, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+customerCols+" FROM customers WHERE id=? LIMIT 1", id)
	return scanCustomer(row)
}

// PhoneExists reports whether a live row already holds the phone number.
func (r *CustomerRepo) PhoneExists(ctx context.Context, phone int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM customers WHERE phone_number=? AND deleted_at IS NULL", phone).Scan(&n)
	return n > 0, err
}

// Create inserts a new customer and returns the populated record.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO customers (role, username, phone_number, email, password, loyalty_points, address) VALUES ('customer',?,?,?,?,0,?)",
		c.Username, c.PhoneNumber, c.Email, c.PasswordHash, c.Address)
	if err != nil {
		if isDuplicate(err) {
			return ErrPhoneExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	got, err := r.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = *got
	return nil
}

// Revive clears deleted_at on a previously soft-deleted row and applies the
// field updates carried by the new registration.
func (r *CustomerRepo) Revive(ctx context.Context, c *model.Customer) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE customers SET deleted_at=NULL, email=?, phone_number=?, address=?, password=?, updated_at=? WHERE id=?",
		c.Email, c.PhoneNumber, c.Address, c.PasswordHash, time.Now().UTC(), c.ID)
	if err != nil {
		return err
	}
	got, err := r.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = *got
	return nil
}

// isDuplicate detects MySQL duplicate-key failures (error 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
