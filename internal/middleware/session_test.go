package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamkrish/shop-management/internal/auth"
	"github.com/iamkrish/shop-management/internal/model"
	"github.com/iamkrish/shop-management/internal/repository"
)

// memSessions is a minimal SessionStore for resolution tests. Only the
// lookup methods matter here; the lifecycle methods are never called.
type memSessions map[string]*model.Session

func (m memSessions) GetByToken(_ context.Context, token string) (*model.Session, error) {
	if s, ok := m[token]; ok {
		return s, nil
	}
	return nil, repository.ErrNotFound
}

func (m memSessions) Touch(_ context.Context, _ string) error { return nil }

func (m memSessions) DeleteExpired(_ context.Context) (int64, error) { return 0, nil }

func (m memSessions) FindActive(_ context.Context, _ model.Role, _ uint64) (*model.Session, error) {
	return nil, repository.ErrNotFound
}

func (m memSessions) CreateExclusive(_ context.Context, _ *model.Session) error { return nil }

func (m memSessions) DeleteByTokenAndRole(_ context.Context, _ string, _ model.Role) (int64, error) {
	return 0, nil
}

type memCustomers map[uint64]*model.Customer

func (m memCustomers) GetByID(_ context.Context, id uint64) (*model.Customer, error) {
	if c, ok := m[id]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

type memShopkeepers map[uint64]*model.Shopkeeper

func (m memShopkeepers) GetByID(_ context.Context, id uint64) (*model.Shopkeeper, error) {
	if s, ok := m[id]; ok {
		return s, nil
	}
	return nil, repository.ErrNotFound
}

type memSuperusers map[uint64]*model.Superuser

func (m memSuperusers) GetByID(_ context.Context, id uint64) (*model.Superuser, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func testResolver() *auth.Resolver {
	cuID, skID, suID := uint64(7), uint64(3), uint64(1)
	future := time.Now().UTC().Add(time.Hour)
	past := time.Now().UTC().Add(-time.Hour)
	sessions := memSessions{
		"cu-tok":      {ID: 1, Token: "cu-tok", CustomerID: &cuID, ExpiresAt: future},
		"sk-tok":      {ID: 2, Token: "sk-tok", ShopkeeperID: &skID, ExpiresAt: future},
		"su-tok":      {ID: 3, Token: "su-tok", SuperuserID: &suID, ExpiresAt: future},
		"expired-tok": {ID: 4, Token: "expired-tok", CustomerID: &cuID, ExpiresAt: past},
	}
	return auth.NewResolver(sessions,
		memCustomers{7: {ID: 7, Username: "alice"}},
		memShopkeepers{3: {ID: 3, Username: "bo", ShopName: "Bo's"}},
		memSuperusers{1: {ID: 1, Username: "root", IsSuperuser: true, IsActive: true}},
	)
}

// run sends a request with the given cookies through ResolveSessions and
// returns the echo context the inner handler saw.
func run(t *testing.T, cookies ...*http.Cookie) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen echo.Context
	h := ResolveSessions(testResolver())(func(c echo.Context) error {
		seen = c
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return seen
}

func TestResolveSessionsCustomerCookie(t *testing.T) {
	c := run(t, &http.Cookie{Name: auth.CookieCustomer, Value: "cu-tok"})

	cu := CustomerFrom(c)
	require.NotNil(t, cu)
	assert.Equal(t, "alice", cu.Username)
	assert.Nil(t, ShopkeeperFrom(c))
	assert.Nil(t, SuperuserFrom(c))
}

func TestResolveSessionsShopkeeperShadowsCustomer(t *testing.T) {
	c := run(t,
		&http.Cookie{Name: auth.CookieShopkeeper, Value: "sk-tok"},
		&http.Cookie{Name: auth.CookieCustomer, Value: "cu-tok"},
	)

	require.NotNil(t, ShopkeeperFrom(c))
	assert.Nil(t, CustomerFrom(c), "customer cookie ignored while shopkeeper cookie present")
}

func TestResolveSessionsBadShopkeeperTokenDoesNotFallBack(t *testing.T) {
	c := run(t,
		&http.Cookie{Name: auth.CookieShopkeeper, Value: "no-such"},
		&http.Cookie{Name: auth.CookieCustomer, Value: "cu-tok"},
	)

	assert.Nil(t, ShopkeeperFrom(c))
	assert.Nil(t, CustomerFrom(c))
}

func TestResolveSessionsSuperuserIndependent(t *testing.T) {
	c := run(t,
		&http.Cookie{Name: auth.CookieSuperuser, Value: "su-tok"},
		&http.Cookie{Name: auth.CookieCustomer, Value: "cu-tok"},
	)

	require.NotNil(t, SuperuserFrom(c))
	require.NotNil(t, CustomerFrom(c))
}

func TestResolveSessionsExpiredToken(t *testing.T) {
	c := run(t, &http.Cookie{Name: auth.CookieCustomer, Value: "expired-tok"})

	assert.Nil(t, CustomerFrom(c))
	assert.Nil(t, IdentityFrom(c))
}

func TestResolveSessionsNoCookies(t *testing.T) {
	c := run(t)

	assert.Nil(t, IdentityFrom(c))
}

func TestIdentityFromPrecedence(t *testing.T) {
	c := run(t,
		&http.Cookie{Name: auth.CookieSuperuser, Value: "su-tok"},
		&http.Cookie{Name: auth.CookieShopkeeper, Value: "sk-tok"},
	)

	id := IdentityFrom(c)
	require.NotNil(t, id)
	assert.Equal(t, model.RoleShopkeeper, id.IdentityRole())
}
