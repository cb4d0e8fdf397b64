package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iamkrish/shop-management/internal/model"
)

// SuperuserRepo reads the privileged `superusers` table. It is a separate
// identity store from customers and shopkeepers; credential verification
// consults it first and only accepts rows carrying the is_superuser flag.
type SuperuserRepo struct{ db *sql.DB }

func NewSuperuserRepo(db *sql.DB) *SuperuserRepo { return &SuperuserRepo{db: db} }

const superuserCols = "id, username, email, password, is_superuser, is_active, created_at, updated_at"

func scanSuperuser(row *sql.Row) (*model.Superuser, error) {
	var u model.Superuser
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.IsSuperuser, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByUsername fetches a superuser row by username.
func (r *SuperuserRepo) GetByUsername(ctx context.Context, username string) (*model.Superuser, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+superuserCols+" FROM superusers WHERE username=? LIMIT 1", username)
	return scanSuperuser(row)
}

// GetByID fetches a superuser row by id.
func (r *SuperuserRepo) GetByID(ctx context.Context, id uint64) (*model.Superuser, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+superuserCols+" FROM superusers WHERE id=? LIMIT 1", id)
	return scanSuperuser(row)
}
