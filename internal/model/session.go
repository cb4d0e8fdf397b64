package model

import "time"

// Session models an entry in the `sessions` table. The token is an opaque
// unique string carried in a role-named cookie. Exactly one of CustomerID,
// ShopkeeperID and SuperuserID should be set; validity is judged purely by
// ExpiresAt on every read, expired rows linger until the next opportunistic
// purge at login time.
//
// Fields:
//  ID           – sessions.id
//  Token        – sessions.token (unique)
//  CustomerID   – sessions.customer_id (nullable)
//  ShopkeeperID – sessions.shopkeeper_id (nullable)
//  SuperuserID  – sessions.superuser_id (nullable)
//  CreatedAt    – sessions.created_at
//  ExpiresAt    – sessions.expires_at
//  LastActivity – sessions.last_activity (touched on every resolution)
type Session struct {
	ID           uint64
	Token        string
	CustomerID   *uint64
	ShopkeeperID *uint64
	SuperuserID  *uint64
	CreatedAt    time.Time
	ExpiresAt    time.Time
	LastActivity time.Time
}

// IsExpired reports whether the session's validity window has passed.
func (s *Session) IsExpired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}

// Role derives the role family from whichever owner reference is set.
// A degenerate row with no reference reports an empty role.
func (s *Session) Role() Role {
	switch {
	case s.ShopkeeperID != nil:
		return RoleShopkeeper
	case s.CustomerID != nil:
		return RoleCustomer
	case s.SuperuserID != nil:
		return RoleSuperuser
	}
	return ""
}
