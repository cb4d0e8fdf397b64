package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iamkrish/shop-management/internal/model"
)

// ShopkeeperRepo encapsulates all database queries against the shopkeepers
// table. Soft deletion works the same way as for customers.
type ShopkeeperRepo struct{ db *sql.DB }

func NewShopkeeperRepo(db *sql.DB) *ShopkeeperRepo { return &ShopkeeperRepo{db: db} }

const shopkeeperCols = "id, username, COALESCE(shop_name,''), rating, phone_number, email, password, COALESCE(address,''), is_verified, created_at, updated_at, deleted_at"

func scanShopkeeper(row *sql.Row) (*model.Shopkeeper, error) {
	var s model.Shopkeeper
	var deleted sql.NullTime
	err := row.Scan(&s.ID, &s.Username, &s.ShopName, &s.Rating, &s.PhoneNumber, &s.Email,
		&s.PasswordHash, &s.Address, &s.IsVerified, &s.CreatedAt, &s.UpdatedAt, &deleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if deleted.Valid {
		t := deleted.Time
		s.DeletedAt = &t
	}
	return &s, nil
}

// GetActiveByUsername fetches a non-deleted shopkeeper by username.
func (r *ShopkeeperRepo) GetActiveByUsername(ctx context.Context, username string) (*model.Shopkeeper, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+shopkeeperCols+" FROM shopkeepers WHERE username=? AND deleted_at IS NULL LIMIT 1", strings.TrimSpace(username))
	return scanShopkeeper(row)
}

// GetByUsername fetches a shopkeeper regardless of deletion state. The
// registration path uses this to decide between conflict and revive.
func (r *ShopkeeperRepo) GetByUsername(ctx context.Context, username string) (*model.Shopkeeper, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+shopkeeperCols+" FROM shopkeepers WHERE username=? LIMIT 1", strings.TrimSpace(username))
	return scanShopkeeper(row)
}

// GetByID fetches a shopkeeper regardless of deletion state.
func (r *ShopkeeperRepo) GetByID(ctx context.Context, id uint64) (*model.Shopkeeper, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+shopkeeperCols+" FROM shopkeepers WHERE id=? LIMIT 1", id)
	return scanShopkeeper(row)
}

// Create inserts a new shopkeeper and returns the populated record.
func (r *ShopkeeperRepo) Create(ctx context.Context, s *model.Shopkeeper) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO shopkeepers (role, username, shop_name, rating, phone_number, email, password, address, is_verified) VALUES ('shopkeeper',?,?,?,?,?,?,?,?)",
		s.Username, nullableStr(s.ShopName), s.Rating, s.PhoneNumber, s.Email, s.PasswordHash, nullableStr(s.Address), s.IsVerified)
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
	s.ID = uint64(id)
	got, err := r.GetByID(ctx, s.ID)
	if err != nil {
		return err
	}
	*s = *got
	return nil
}

// Revive clears deleted_at and applies the new registration's fields.
func (r *ShopkeeperRepo) Revive(ctx context.Context, s *model.Shopkeeper) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE shopkeepers SET deleted_at=NULL, email=?, phone_number=?, shop_name=?, address=?, is_verified=?, rating=?, password=?, updated_at=? WHERE id=?",
		s.Email, s.PhoneNumber, nullableStr(s.ShopName), nullableStr(s.Address), s.IsVerified, s.Rating, s.PasswordHash, time.Now().UTC(), s.ID)
	if err != nil {
		return err
	}
	got, err := r.GetByID(ctx, s.ID)
	if err != nil {
		return err
	}
	*s = *got
	return nil
}

func nullableStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
