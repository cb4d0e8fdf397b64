package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iamkrish/shop-management/internal/model"
)

// SessionRepo persists login sessions. A session binds an opaque token to
// exactly one of the three identity tables via nullable reference columns.
type SessionRepo struct{ db *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

const sessionCols = "id, token, customer_id, shopkeeper_id, superuser_id, created_at, expires_at, last_activity"

// roleColumn maps a role onto the session reference column it owns.
func roleColumn(role model.Role) string {
	switch role {
	case model.RoleShopkeeper:
		return "shopkeeper_id"
	case model.RoleSuperuser:
		return "superuser_id"
	default:
		return "customer_id"
	}
}

func scanSession(row *sql.Row) (*model.Session, error) {
	var s model.Session
	var cust, shop, super sql.NullInt64
	err := row.Scan(&s.ID, &s.Token, &cust, &shop, &super, &s.CreatedAt, &s.ExpiresAt, &s.LastActivity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if cust.Valid {
		v := uint64(cust.Int64)
		s.CustomerID = &v
	}
	if shop.Valid {
		v := uint64(shop.Int64)
		s.ShopkeeperID = &v
	}
	if super.Valid {
		v := uint64(super.Int64)
		s.SuperuserID = &v
	}
	return &s, nil
}

// GetByToken fetches a session row by token regardless of expiry; callers
// decide what an expired row means.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+sessionCols+" FROM sessions WHERE token=? LIMIT 1", token)
	return scanSession(row)
}

// FindActive returns the unexpired session bound to the given identity, or
// ErrNotFound. Login uses this to treat a repeat attempt as a no-op.
func (r *SessionRepo) FindActive(ctx context.Context, role model.Role, identityID uint64) (*model.Session, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+sessionCols+" FROM sessions WHERE "+roleColumn(role)+"=? AND expires_at > ? LIMIT 1",
		identityID, time.Now().UTC())
	return scanSession(row)
}

// DeleteExpired bulk-deletes sessions whose validity window has passed.
// Login calls it opportunistically; rows are otherwise left in place.
func (r *SessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CreateExclusive inserts a session while enforcing the system-wide
// cross-role rule: no shopkeeper session may be created while any unexpired
// customer session exists anywhere, and vice versa. Superuser sessions skip
// the check. The check and the insert run in one transaction so concurrent
// logins cannot race past each other; the conflicting rows are read FOR
// UPDATE to hold them until commit.
func (r *SessionRepo) CreateExclusive(ctx context.Context, s *model.Session) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	var conflictCol string
	var conflictErr error
	switch s.Role() {
	case model.RoleShopkeeper:
		conflictCol, conflictErr = "customer_id", ErrCustomerActive
	case model.RoleCustomer:
		conflictCol, conflictErr = "shopkeeper_id", ErrShopkeeperActive
	}
	if conflictCol != "" {
		var n int
		err = tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM sessions WHERE "+conflictCol+" IS NOT NULL AND expires_at > ? FOR UPDATE",
			now).Scan(&n)
		if err != nil {
			return err
		}
		if n > 0 {
			return conflictErr
		}
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO sessions (token, customer_id, shopkeeper_id, superuser_id, expires_at) VALUES (?,?,?,?,?)",
		s.Token, nullableID(s.CustomerID), nullableID(s.ShopkeeperID), nullableID(s.SuperuserID), s.ExpiresAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// DeleteByTokenAndRole removes the session matching both the token and a
// non-null reference for the given role. Filtering on the role column keeps
// a forged token from deleting a session of a different role family that
// happens to share the token value.
func (r *SessionRepo) DeleteByTokenAndRole(ctx context.Context, token string, role model.Role) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE token=? AND "+roleColumn(role)+" IS NOT NULL", token)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Touch refreshes last_activity for a resolved session.
func (r *SessionRepo) Touch(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET last_activity=? WHERE token=?", time.Now().UTC(), token)
	return err
}

// ActiveUser is one identity behind a live session, as exposed by /active.
type ActiveUser struct {
	ID       uint64     `json:"id"`
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
}

// ListActive returns the identities behind all unexpired sessions.
func (r *SessionRepo) ListActive(ctx context.Context) ([]ActiveUser, error) {
	const q = `SELECT c.id, c.username, 'customer'
		FROM sessions s JOIN customers c ON c.id = s.customer_id
		WHERE s.expires_at > ?
		UNION ALL
		SELECT k.id, k.username, 'shopkeeper'
		FROM sessions s JOIN shopkeepers k ON k.id = s.shopkeeper_id
		WHERE s.expires_at > ?
		UNION ALL
		SELECT u.id, u.username, 'superuser'
		FROM sessions s JOIN superusers u ON u.id = s.superuser_id
		WHERE s.expires_at > ?`
	now := time.Now().UTC()
	rows, err := r.db.QueryContext(ctx, q, now, now, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ActiveUser{}
	for rows.Next() {
		var a ActiveUser
		if err := rows.Scan(&a.ID, &a.Username, &a.Role); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func nullableID(v *uint64) any {
	if v == nil {
		return nil
	}
	return *v
}
