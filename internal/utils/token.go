package utils // package utils provides helper functions for tokens and identifiers

import (
	"strings"

	"github.com/google/uuid"
)

// NewSessionToken returns an opaque globally-unique session token. The value
// is only ever compared for equality, so a random UUID is sufficient.
func NewSessionToken() string {
	return uuid.NewString()
}

// NewProductID returns a public product identifier like PRO-1a2b3c4d5e.
func NewProductID() string {
	return "PRO-" + hexTail(10)
}

// NewOrderID returns a public order identifier like ORD-1A2B3C4D5E.
func NewOrderID() string {
	return "ORD-" + strings.ToUpper(hexTail(10))
}

func hexTail(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
