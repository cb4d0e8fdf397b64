package auth

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/iamkrish/shop-management/internal/model"
	"github.com/iamkrish/shop-management/internal/repository"
	"github.com/iamkrish/shop-management/internal/utils"
)

// Cookie names by role. Each login surfaces its session token through the
// cookie matching the resolved role; the middleware reads all three.
const (
	CookieShopkeeper = "SHOPKEEPER_SESSIONID"
	CookieCustomer   = "CUSTOMER_SESSIONID"
	CookieSuperuser  = "SUPERUSER_SESSIONID"

	// CookieMaxAge matches the 4 hour session validity window, in seconds.
	CookieMaxAge = 14400

	// DefaultSessionTTL is the validity window applied to new sessions.
	DefaultSessionTTL = 4 * time.Hour
)

// CookieName returns the role's session cookie name.
func CookieName(role model.Role) string {
	switch role {
	case model.RoleShopkeeper:
		return CookieShopkeeper
	case model.RoleSuperuser:
		return CookieSuperuser
	default:
		return CookieCustomer
	}
}

// SessionStore is the persistence surface the lifecycle manager needs.
// *repository.SessionRepo satisfies it.
type SessionStore interface {
	DeleteExpired(ctx context.Context) (int64, error)
	FindActive(ctx context.Context, role model.Role, identityID uint64) (*model.Session, error)
	CreateExclusive(ctx context.Context, s *model.Session) error
	DeleteByTokenAndRole(ctx context.Context, token string, role model.Role) (int64, error)
	GetByToken(ctx context.Context, token string) (*model.Session, error)
	Touch(ctx context.Context, token string) error
}

// Manager owns session creation and deletion. Creation enforces the two
// session invariants: at most one active session per identity, and the
// system-wide customer/shopkeeper exclusivity rule (delegated to the store's
// transactional CreateExclusive).
type Manager struct {
	Sessions SessionStore
	TTL      time.Duration
}

func NewManager(store SessionStore, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Manager{Sessions: store, TTL: ttl}
}

// LoginResult carries the session bound to the identity. AlreadyActive is
// set when an unexpired session existed before the call, in which case no
// new row was created and no cookie should be issued.
type LoginResult struct {
	Session       *model.Session
	AlreadyActive bool
}

// Login runs the post-verification half of the login flow: purge expired
// rows, detect an existing active session, then create a new one under the
// exclusivity rule. It returns repository.ErrCustomerActive or
// repository.ErrShopkeeperActive on a cross-role conflict.
func (m *Manager) Login(ctx context.Context, identity model.Identity, role model.Role) (LoginResult, error) {
	// Best-effort garbage collection; a failure must not block the login,
	// but it is worth a log line rather than silence.
	if _, err := m.Sessions.DeleteExpired(ctx); err != nil {
		log.Printf("auth: expired session purge failed: %v", err)
	}

	existing, err := m.Sessions.FindActive(ctx, role, identity.IdentityID())
	if err == nil {
		return LoginResult{Session: existing, AlreadyActive: true}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return LoginResult{}, err
	}

	s := &model.Session{
		Token:     utils.NewSessionToken(),
		ExpiresAt: time.Now().UTC().Add(m.TTL),
	}
	id := identity.IdentityID()
	switch role {
	case model.RoleShopkeeper:
		s.ShopkeeperID = &id
	case model.RoleSuperuser:
		s.SuperuserID = &id
	default:
		s.CustomerID = &id
	}

	if err := m.Sessions.CreateExclusive(ctx, s); err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Session: s}, nil
}

// Logout deletes the session matching the token and the role's reference
// column. It reports whether a row was actually removed.
func (m *Manager) Logout(ctx context.Context, token string, role model.Role) (bool, error) {
	n, err := m.Sessions.DeleteByTokenAndRole(ctx, token, role)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
