// Package auth implements the credential verifier and the session lifecycle
// manager. Both operate through small store interfaces so the logic can be
// exercised without a live database.
package auth

import (
	"context"
	"errors"

	"github.com/iamkrish/shop-management/internal/model"
	"github.com/iamkrish/shop-management/internal/repository"
	"github.com/iamkrish/shop-management/internal/utils"
)

// ErrInvalidCredentials is returned when no identity table yields a match
// for the supplied username/password pair.
var ErrInvalidCredentials = errors.New("invalid credentials")

// SuperuserStore, ShopkeeperStore and CustomerStore are the lookups the
// verifier needs; the repository types satisfy them.
type SuperuserStore interface {
	GetByUsername(ctx context.Context, username string) (*model.Superuser, error)
}

type ShopkeeperStore interface {
	GetActiveByUsername(ctx context.Context, username string) (*model.Shopkeeper, error)
}

type CustomerStore interface {
	GetActiveByUsername(ctx context.Context, username string) (*model.Customer, error)
}

// Verifier checks a username/password pair against the three identity tables
// in fixed precedence order: superuser first, then shopkeeper, then customer.
// Password comparison is bcrypt only; there is deliberately no lockout or
// attempt counting here.
type Verifier struct {
	Superusers  SuperuserStore
	Shopkeepers ShopkeeperStore
	Customers   CustomerStore
}

func NewVerifier(su SuperuserStore, sk ShopkeeperStore, cu CustomerStore) *Verifier {
	return &Verifier{Superusers: su, Shopkeepers: sk, Customers: cu}
}

// Verify resolves the identity and role for the credentials, or returns
// ErrInvalidCredentials. Soft-deleted shopkeepers and customers never match;
// a superuser row matches only when it is active and flagged is_superuser.
func (v *Verifier) Verify(ctx context.Context, username, password string) (model.Identity, model.Role, error) {
	if u, err := v.Superusers.GetByUsername(ctx, username); err == nil {
		if u.IsSuperuser && u.IsActive && utils.VerifyPassword(u.PasswordHash, password) {
			return u, model.RoleSuperuser, nil
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	if s, err := v.Shopkeepers.GetActiveByUsername(ctx, username); err == nil {
		if utils.VerifyPassword(s.PasswordHash, password) {
			return s, model.RoleShopkeeper, nil
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	if c, err := v.Customers.GetActiveByUsername(ctx, username); err == nil {
		if utils.VerifyPassword(c.PasswordHash, password) {
			return c, model.RoleCustomer, nil
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	return nil, "", ErrInvalidCredentials
}
