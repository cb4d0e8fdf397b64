package middleware // middleware provides shared request processing for handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/iamkrish/shop-management/internal/model"
)

// Authorization helpers consumed by handlers. They read the identities the
// session middleware stored on the context and re-check the liveness
// conditions: shopkeepers and customers must not be soft-deleted, a
// superuser must be active and carry the superuser flag. A nil return means
// the caller should answer 401 (or 403 where the endpoint demands a
// specific privileged role).

// ShopkeeperFrom returns the resolved shopkeeper, or nil.
func ShopkeeperFrom(c echo.Context) *model.Shopkeeper {
	s, ok := c.Get(ctxShopkeeper).(*model.Shopkeeper)
	if !ok || s == nil || s.IsDeleted() {
		return nil
	}
	return s
}

// CustomerFrom returns the resolved customer, or nil.
func CustomerFrom(c echo.Context) *model.Customer {
	cu, ok := c.Get(ctxCustomer).(*model.Customer)
	if !ok || cu == nil || cu.IsDeleted() {
		return nil
	}
	return cu
}

// SuperuserFrom returns the resolved superuser, or nil.
func SuperuserFrom(c echo.Context) *model.Superuser {
	u, ok := c.Get(ctxSuperuser).(*model.Superuser)
	if !ok || u == nil || !u.IsActive || !u.IsSuperuser {
		return nil
	}
	return u
}

// IdentityFrom returns whichever identity is present, shopkeeper first,
// matching the resolution precedence. Endpoints open to any authenticated
// role use this.
func IdentityFrom(c echo.Context) model.Identity {
	if s := ShopkeeperFrom(c); s != nil {
		return s
	}
	if cu := CustomerFrom(c); cu != nil {
		return cu
	}
	if u := SuperuserFrom(c); u != nil {
		return u
	}
	return nil
}
