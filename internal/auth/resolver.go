package auth

import (
	"context"
	"log"

	"github.com/iamkrish/shop-management/internal/model"
)

// Identity lookups by primary key, satisfied by the repositories. The
// resolver loads the owner row behind a session reference.
type CustomerLookup interface {
	GetByID(ctx context.Context, id uint64) (*model.Customer, error)
}

type ShopkeeperLookup interface {
	GetByID(ctx context.Context, id uint64) (*model.Shopkeeper, error)
}

type SuperuserLookup interface {
	GetByID(ctx context.Context, id uint64) (*model.Superuser, error)
}

// Resolver turns cookie tokens into identities for the session middleware.
// Every failure mode (unknown token, expired session, reference for a
// different role) resolves to nil rather than an error; missing identity is
// discovered later by per-endpoint authorization, not here.
type Resolver struct {
	Sessions    SessionStore
	Customers   CustomerLookup
	Shopkeepers ShopkeeperLookup
	Superusers  SuperuserLookup
}

func NewResolver(sessions SessionStore, cu CustomerLookup, sk ShopkeeperLookup, su SuperuserLookup) *Resolver {
	return &Resolver{Sessions: sessions, Customers: cu, Shopkeepers: sk, Superusers: su}
}

// session fetches an unexpired session whose reference column for the role
// is set, touching last_activity on success. Returns nil on any miss.
func (r *Resolver) session(ctx context.Context, token string, role model.Role) *model.Session {
	s, err := r.Sessions.GetByToken(ctx, token)
	if err != nil || s.IsExpired() {
		return nil
	}
	switch role {
	case model.RoleShopkeeper:
		if s.ShopkeeperID == nil {
			return nil
		}
	case model.RoleSuperuser:
		if s.SuperuserID == nil {
			return nil
		}
	default:
		if s.CustomerID == nil {
			return nil
		}
	}
	if err := r.Sessions.Touch(ctx, token); err != nil {
		log.Printf("auth: last_activity touch failed: %v", err)
	}
	return s
}

// ResolveShopkeeper resolves a shopkeeper session token to its identity.
func (r *Resolver) ResolveShopkeeper(ctx context.Context, token string) *model.Shopkeeper {
	s := r.session(ctx, token, model.RoleShopkeeper)
	if s == nil {
		return nil
	}
	sk, err := r.Shopkeepers.GetByID(ctx, *s.ShopkeeperID)
	if err != nil {
		return nil
	}
	return sk
}

// ResolveCustomer resolves a customer session token to its identity.
func (r *Resolver) ResolveCustomer(ctx context.Context, token string) *model.Customer {
	s := r.session(ctx, token, model.RoleCustomer)
	if s == nil {
		return nil
	}
	c, err := r.Customers.GetByID(ctx, *s.CustomerID)
	if err != nil {
		return nil
	}
	return c
}

// ResolveSuperuser resolves a superuser session token to its identity.
func (r *Resolver) ResolveSuperuser(ctx context.Context, token string) *model.Superuser {
	s := r.session(ctx, token, model.RoleSuperuser)
	if s == nil {
		return nil
	}
	u, err := r.Superusers.GetByID(ctx, *s.SuperuserID)
	if err != nil {
		return nil
	}
	return u
}
