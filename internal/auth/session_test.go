package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamkrish/shop-management/internal/model"
	"github.com/iamkrish/shop-management/internal/repository"
)

// fakeSessionStore keeps sessions in memory and mirrors the repository's
// exclusivity and lookup semantics.
type fakeSessionStore struct {
	rows     []*model.Session
	nextID   uint64
	purgeErr error
	touched  []string
}

func (f *fakeSessionStore) DeleteExpired(_ context.Context) (int64, error) {
	if f.purgeErr != nil {
		return 0, f.purgeErr
	}
	var kept []*model.Session
	var n int64
	for _, s := range f.rows {
		if s.IsExpired() {
			n++
			continue
		}
		kept = append(kept, s)
	}
	f.rows = kept
	return n, nil
}

func (f *fakeSessionStore) FindActive(_ context.Context, role model.Role, id uint64) (*model.Session, error) {
	for _, s := range f.rows {
		if s.IsExpired() {
			continue
		}
		switch role {
		case model.RoleShopkeeper:
			if s.ShopkeeperID != nil && *s.ShopkeeperID == id {
				return s, nil
			}
		case model.RoleSuperuser:
			if s.SuperuserID != nil && *s.SuperuserID == id {
				return s, nil
			}
		default:
			if s.CustomerID != nil && *s.CustomerID == id {
				return s, nil
			}
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSessionStore) CreateExclusive(_ context.Context, s *model.Session) error {
	for _, existing := range f.rows {
		if existing.IsExpired() {
			continue
		}
		if s.CustomerID != nil && existing.ShopkeeperID != nil {
			return repository.ErrShopkeeperActive
		}
		if s.ShopkeeperID != nil && existing.CustomerID != nil {
			return repository.ErrCustomerActive
		}
	}
	f.nextID++
	s.ID = f.nextID
	f.rows = append(f.rows, s)
	return nil
}

func (f *fakeSessionStore) DeleteByTokenAndRole(_ context.Context, token string, role model.Role) (int64, error) {
	for i, s := range f.rows {
		if s.Token != token {
			continue
		}
		switch role {
		case model.RoleShopkeeper:
			if s.ShopkeeperID == nil {
				continue
			}
		case model.RoleSuperuser:
			if s.SuperuserID == nil {
				continue
			}
		default:
			if s.CustomerID == nil {
				continue
			}
		}
		f.rows = append(f.rows[:i], f.rows[i+1:]...)
		return 1, nil
	}
	return 0, nil
}

func (f *fakeSessionStore) GetByToken(_ context.Context, token string) (*model.Session, error) {
	for _, s := range f.rows {
		if s.Token == token {
			return s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSessionStore) Touch(_ context.Context, token string) error {
	f.touched = append(f.touched, token)
	return nil
}

func customer(id uint64, name string) *model.Customer {
	return &model.Customer{ID: id, Username: name}
}

func shopkeeper(id uint64, name string) *model.Shopkeeper {
	return &model.Shopkeeper{ID: id, Username: name}
}

func TestLoginCreatesSession(t *testing.T) {
	store := &fakeSessionStore{}
	m := NewManager(store, 0)

	res, err := m.Login(context.Background(), customer(7, "alice"), model.RoleCustomer)
	require.NoError(t, err)
	assert.False(t, res.AlreadyActive)
	assert.NotEmpty(t, res.Session.Token)
	require.NotNil(t, res.Session.CustomerID)
	assert.Equal(t, uint64(7), *res.Session.CustomerID)
	assert.Nil(t, res.Session.ShopkeeperID)
	assert.WithinDuration(t, time.Now().UTC().Add(DefaultSessionTTL), res.Session.ExpiresAt, time.Minute)
	assert.Len(t, store.rows, 1)
}

func TestLoginIsIdempotentWhileActive(t *testing.T) {
	store := &fakeSessionStore{}
	m := NewManager(store, time.Hour)

	first, err := m.Login(context.Background(), customer(7, "alice"), model.RoleCustomer)
	require.NoError(t, err)

	second, err := m.Login(context.Background(), customer(7, "alice"), model.RoleCustomer)
	require.NoError(t, err)
	assert.True(t, second.AlreadyActive)
	assert.Equal(t, first.Session.Token, second.Session.Token)
	assert.Len(t, store.rows, 1, "no second row for a repeated login")
}

func TestLoginCustomerBlockedByActiveShopkeeper(t *testing.T) {
	store := &fakeSessionStore{}
	m := NewManager(store, time.Hour)

	_, err := m.Login(context.Background(), shopkeeper(3, "bo"), model.RoleShopkeeper)
	require.NoError(t, err)

	_, err = m.Login(context.Background(), customer(7, "alice"), model.RoleCustomer)
	assert.ErrorIs(t, err, repository.ErrShopkeeperActive)
	assert.Len(t, store.rows, 1)
}

func TestLoginShopkeeperBlockedByActiveCustomer(t *testing.T) {
	store := &fakeSessionStore{}
	m := NewManager(store, time.Hour)

	_, err := m.Login(context.Background(), customer(7, "alice"), model.RoleCustomer)
	require.NoError(t, err)

	_, err = m.Login(context.Background(), shopkeeper(3, "bo"), model.RoleShopkeeper)
	assert.ErrorIs(t, err, repository.ErrCustomerActive)
}

func TestLoginSuperuserUnaffectedByOtherRoles(t *testing.T) {
	store := &fakeSessionStore{}
	m := NewManager(store, time.Hour)

	_, err := m.Login(context.Background(), customer(7, "alice"), model.RoleCustomer)
	require.NoError(t, err)

	res, err := m.Login(context.Background(), &model.Superuser{ID: 1, Username: "root", IsSuperuser: true, IsActive: true}, model.RoleSuperuser)
	require.NoError(t, err)
	require.NotNil(t, res.Session.SuperuserID)
	assert.Len(t, store.rows, 2)
}

func TestLoginExpiredSessionDoesNotBlock(t *testing.T) {
	skID := uint64(3)
	store := &fakeSessionStore{rows: []*model.Session{{
		ID: 1, Token: "stale", ShopkeeperID: &skID,
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}}}
	m := NewManager(store, time.Hour)

	res, err := m.Login(context.Background(), customer(7, "alice"), model.RoleCustomer)
	require.NoError(t, err)
	assert.False(t, res.AlreadyActive)
}

func TestLoginSurvivesPurgeFailure(t *testing.T) {
	store := &fakeSessionStore{purgeErr: errors.New("lock wait timeout")}
	m := NewManager(store, time.Hour)

	res, err := m.Login(context.Background(), customer(7, "alice"), model.RoleCustomer)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Session.Token)
}

func TestLogoutReportsMatch(t *testing.T) {
	store := &fakeSessionStore{}
	m := NewManager(store, time.Hour)

	res, err := m.Login(context.Background(), customer(7, "alice"), model.RoleCustomer)
	require.NoError(t, err)

	// Wrong role column does not match the row.
	ok, err := m.Logout(context.Background(), res.Session.Token, model.RoleShopkeeper)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = m.Logout(context.Background(), res.Session.Token, model.RoleCustomer)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, store.rows)

	ok, err = m.Logout(context.Background(), res.Session.Token, model.RoleCustomer)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolverReturnsIdentityAndTouches(t *testing.T) {
	cuID := uint64(7)
	store := &fakeSessionStore{rows: []*model.Session{{
		ID: 1, Token: "tok", CustomerID: &cuID,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}}}
	r := NewResolver(store,
		lookupCustomers{7: customer(7, "alice")},
		lookupShopkeepers{},
		lookupSuperusers{},
	)

	got := r.ResolveCustomer(context.Background(), "tok")
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, []string{"tok"}, store.touched)

	// Same token resolved as the wrong role yields nothing.
	assert.Nil(t, r.ResolveShopkeeper(context.Background(), "tok"))
}

func TestResolverRejectsExpiredSession(t *testing.T) {
	cuID := uint64(7)
	store := &fakeSessionStore{rows: []*model.Session{{
		ID: 1, Token: "tok", CustomerID: &cuID,
		ExpiresAt: time.Now().UTC().Add(-time.Second),
	}}}
	r := NewResolver(store, lookupCustomers{7: customer(7, "alice")}, lookupShopkeepers{}, lookupSuperusers{})

	assert.Nil(t, r.ResolveCustomer(context.Background(), "tok"))
	assert.Empty(t, store.touched)
}

type lookupCustomers map[uint64]*model.Customer

func (f lookupCustomers) GetByID(_ context.Context, id uint64) (*model.Customer, error) {
	if c, ok := f[id]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

type lookupShopkeepers map[uint64]*model.Shopkeeper

func (f lookupShopkeepers) GetByID(_ context.Context, id uint64) (*model.Shopkeeper, error) {
	if s, ok := f[id]; ok {
		return s, nil
	}
	return nil, repository.ErrNotFound
}

type lookupSuperusers map[uint64]*model.Superuser

func (f lookupSuperusers) GetByID(_ context.Context, id uint64) (*model.Superuser, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}
