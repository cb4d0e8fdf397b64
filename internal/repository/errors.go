// Package repository defines error types that are reused across multiple
// repositories. These sentinel values let handlers distinguish failure
// scenarios and map them onto the HTTP error taxonomy: validation problems
// become 400, credential failures 401, cross-role session conflicts 403 and
// missing rows 404.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row. Handlers translate
// it into 404 (or 400 for the logout edge case where a recognized cookie
// matched nothing).
var ErrNotFound = errors.New("not found")

// ErrUsernameExists is returned when a registration collides with a live
// (non-deleted) row holding the same username.
var ErrUsernameExists = errors.New("username already exists")

// ErrPhoneExists is returned when a registration collides with a live row
// holding the same phone number.
var ErrPhoneExists = errors.New("phone number already exists")

// ErrProductExists is returned when a shopkeeper already sells a product
// with the same name.
var ErrProductExists = errors.New("product already exists for this shop")

// ErrInsufficientStock is returned when an order asks for more units than
// the product has left.
var ErrInsufficientStock = errors.New("not enough stock")

// ErrCustomerActive and ErrShopkeeperActive report the system-wide session
// exclusivity rule: a shopkeeper may not log in while any unexpired customer
// session exists anywhere, and vice versa. Superuser sessions are exempt.
var (
	ErrCustomerActive   = errors.New("a customer is already logged in")
	ErrShopkeeperActive = errors.New("a shopkeeper is already logged in")
)
