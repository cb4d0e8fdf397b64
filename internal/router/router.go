// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iamkrish/shop-management/internal/handler"
)

// RegisterRoutes registers routes that carry no route-specific middleware:
// the health check, authentication, registration and the batch fetcher.
// Session resolution is applied globally in main, so handlers can read the
// resolved identities off the request context here as well.
func RegisterRoutes(e *echo.Echo, a *handler.AuthHandler, r *handler.RegisterHandler, b *handler.BatchHandler) {
	e.GET("/healthz", handler.Health)

	// Session lifecycle. Login and logout are POST-only; Echo answers other
	// verbs with 405 on its own.
	e.POST("/login", a.Login)
	e.POST("/logout", a.Logout)
	e.GET("/active", a.ActiveUsers)

	// Registration. Customer signup is open; shopkeeper signup is gated on a
	// superuser session inside the handler.
	e.POST("/customers/register/", r.RegisterCustomer)
	e.POST("/shopkeepers/register/", r.RegisterShopkeeper)

	// Batched fan-out of API calls with the caller's cookie forwarded.
	e.POST("/fetch_responses/", b.Fetch)
}

// RegisterCatalog registers the product and category endpoints. The cache
// middleware is applied to the read endpoints only; it must run after the
// global session middleware so cache keys can include the caller identity.
func RegisterCatalog(e *echo.Echo, p *handler.ProductHandler, cat *handler.CategoryHandler, cache echo.MiddlewareFunc) {
	e.POST("/products/create/", p.Create)

	e.GET("/list_products/", p.List, cache)
	e.GET("/products/search/", p.Search, cache)
	e.GET("/products/expensive/", p.Expensive, cache)
	e.GET("/products/low-stock/", p.LowStock, cache)
	e.GET("/products/top-selling/", p.TopSelling, cache)

	e.GET("/categories/", cat.List, cache)
}

// RegisterOrders registers order placement and the order listing views.
// Placement is accepted over both POST and GET for form-less clients.
func RegisterOrders(e *echo.Echo, o *handler.OrderHandler, cache echo.MiddlewareFunc) {
	e.POST("/orders/create/", o.Place)
	e.GET("/orders/create/", o.Place)

	e.GET("/list_orders/", o.MyOrders, cache)
	e.GET("/orders/today/", o.OrdersToday, cache)
	e.GET("/orders/recent/", o.RecentOrders, cache)
}
