package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iamkrish/shop-management/internal/model"
	"github.com/iamkrish/shop-management/internal/repository"
	"github.com/iamkrish/shop-management/internal/utils"
)

type fakeSuperusers map[string]*model.Superuser

func (f fakeSuperusers) GetByUsername(_ context.Context, username string) (*model.Superuser, error) {
	if u, ok := f[username]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

type fakeShopkeepers map[string]*model.Shopkeeper

func (f fakeShopkeepers) GetActiveByUsername(_ context.Context, username string) (*model.Shopkeeper, error) {
	if s, ok := f[username]; ok && s.DeletedAt == nil {
		return s, nil
	}
	return nil, repository.ErrNotFound
}

type fakeCustomers map[string]*model.Customer

func (f fakeCustomers) GetActiveByUsername(_ context.Context, username string) (*model.Customer, error) {
	if c, ok := f[username]; ok && c.DeletedAt == nil {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

func hash(t *testing.T, plain string) string {
	t.Helper()
	h, err := utils.HashPassword(plain, bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestVerifyResolvesCustomer(t *testing.T) {
	v := NewVerifier(fakeSuperusers{}, fakeShopkeepers{}, fakeCustomers{
		"alice": {ID: 7, Username: "alice", PasswordHash: hash(t, "alice99")},
	})

	id, role, err := v.Verify(context.Background(), "alice", "alice99")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, role)
	assert.Equal(t, uint64(7), id.IdentityID())
}

func TestVerifyPrecedenceSuperuserWinsOverCustomer(t *testing.T) {
	h := hash(t, "shared")
	v := NewVerifier(
		fakeSuperusers{"root": {ID: 1, Username: "root", PasswordHash: h, IsSuperuser: true, IsActive: true}},
		fakeShopkeepers{},
		fakeCustomers{"root": {ID: 2, Username: "root", PasswordHash: h}},
	)

	id, role, err := v.Verify(context.Background(), "root", "shared")
	require.NoError(t, err)
	assert.Equal(t, model.RoleSuperuser, role)
	assert.Equal(t, uint64(1), id.IdentityID())
}

func TestVerifyShopkeeperWinsOverCustomer(t *testing.T) {
	h := hash(t, "shared")
	v := NewVerifier(
		fakeSuperusers{},
		fakeShopkeepers{"bo": {ID: 3, Username: "bo", PasswordHash: h}},
		fakeCustomers{"bo": {ID: 4, Username: "bo", PasswordHash: h}},
	)

	_, role, err := v.Verify(context.Background(), "bo", "shared")
	require.NoError(t, err)
	assert.Equal(t, model.RoleShopkeeper, role)
}

func TestVerifyNonSuperuserFlagFallsThrough(t *testing.T) {
	h := hash(t, "pw")
	v := NewVerifier(
		fakeSuperusers{"ann": {ID: 1, Username: "ann", PasswordHash: h, IsSuperuser: false}},
		fakeShopkeepers{},
		fakeCustomers{"ann": {ID: 9, Username: "ann", PasswordHash: h}},
	)

	_, role, err := v.Verify(context.Background(), "ann", "pw")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, role)
}

func TestVerifyInactiveSuperuserFallsThrough(t *testing.T) {
	h := hash(t, "pw")
	disabled := fakeSuperusers{"ann": {ID: 1, Username: "ann", PasswordHash: h, IsSuperuser: true, IsActive: false}}

	// With no other identity under the name, the disabled account cannot
	// log in at all.
	v := NewVerifier(disabled, fakeShopkeepers{}, fakeCustomers{})
	_, _, err := v.Verify(context.Background(), "ann", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// With a customer under the same name, resolution falls through to it.
	v = NewVerifier(disabled, fakeShopkeepers{}, fakeCustomers{
		"ann": {ID: 9, Username: "ann", PasswordHash: h},
	})
	id, role, err := v.Verify(context.Background(), "ann", "pw")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, role)
	assert.Equal(t, uint64(9), id.IdentityID())
}

func TestVerifySoftDeletedCustomerRejected(t *testing.T) {
	deleted := time.Now()
	v := NewVerifier(fakeSuperusers{}, fakeShopkeepers{}, fakeCustomers{
		"gone": {ID: 5, Username: "gone", PasswordHash: hash(t, "gone55"), DeletedAt: &deleted},
	})

	_, _, err := v.Verify(context.Background(), "gone", "gone55")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyWrongPassword(t *testing.T) {
	v := NewVerifier(fakeSuperusers{}, fakeShopkeepers{}, fakeCustomers{
		"alice": {ID: 7, Username: "alice", PasswordHash: hash(t, "alice99")},
	})

	_, _, err := v.Verify(context.Background(), "alice", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyUnknownUsername(t *testing.T) {
	v := NewVerifier(fakeSuperusers{}, fakeShopkeepers{}, fakeCustomers{})

	_, _, err := v.Verify(context.Background(), "nobody", "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
