package middleware // middleware provides shared request processing for handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/iamkrish/shop-management/internal/auth"
)

// Context keys under which resolved identities are stored for the request.
const (
	ctxShopkeeper = "shopkeeper"
	ctxCustomer   = "customer"
	ctxSuperuser  = "superuser"
)

// ResolveSessions returns the middleware that runs before every endpoint and
// turns session cookies into identities on the echo context. Three cookies
// are considered. The superuser cookie is resolved independently of the
// other two. For the role pair, the shopkeeper cookie takes precedence: when
// it is present, customer resolution is skipped entirely for the request,
// even if a customer cookie is also set. Unknown, expired or role-mismatched
// tokens silently leave the slot empty; endpoints discover missing identity
// through their own authorization checks.
func ResolveSessions(r *auth.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			if ck, err := c.Cookie(auth.CookieSuperuser); err == nil && ck.Value != "" {
				if u := r.ResolveSuperuser(ctx, ck.Value); u != nil {
					c.Set(ctxSuperuser, u)
				}
			}

			if ck, err := c.Cookie(auth.CookieShopkeeper); err == nil && ck.Value != "" {
				if s := r.ResolveShopkeeper(ctx, ck.Value); s != nil {
					c.Set(ctxShopkeeper, s)
				}
			} else if ck, err := c.Cookie(auth.CookieCustomer); err == nil && ck.Value != "" {
				if cu := r.ResolveCustomer(ctx, ck.Value); cu != nil {
					c.Set(ctxCustomer, cu)
				}
			}

			return next(c)
		}
	}
}
