package model

import "time"

// Role names the three identity tables a login can resolve against. The
// value doubles as the `role` column default and the JSON role field.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleShopkeeper Role = "shopkeeper"
	RoleSuperuser  Role = "superuser"
)

// Capitalized returns the role with an upper-case first letter, matching the
// wording used in login and logout response messages.
func (r Role) Capitalized() string {
	s := string(r)
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// Identity is the common capability shared by the three identity variants.
// Handlers and the auth layer only need the id, the username and whether the
// row has been soft-deleted.
type Identity interface {
	IdentityID() uint64
	IdentityUsername() string
	IdentityRole() Role
	IsDeleted() bool
}

// Customer mirrors the `customers` table. Soft deletion is expressed by a
// non-null DeletedAt; deleted rows stay in place and can be revived by a
// later registration with the same username.
//
// Fields:
//  ID            – customers.id
//  Username      – customers.username
//  PhoneNumber   – customers.phone_number (unique among non-deleted rows)
//  Email         – customers.email
//  PasswordHash  – customers.password (bcrypt)
//  LoyaltyPoints – customers.loyalty_points
//  Address       – customers.address
//  CreatedAt     – customers.created_at
//  UpdatedAt     – customers.updated_at
//  DeletedAt     – customers.deleted_at (nullable)
type Customer struct {
	ID            uint64
	Username      string
	PhoneNumber   int64
	Email         string
	PasswordHash  string
	LoyaltyPoints int
	Address       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

func (c *Customer) IdentityID() uint64       { return c.ID }
func (c *Customer) IdentityUsername() string { return c.Username }
func (c *Customer) IdentityRole() Role       { return RoleCustomer }
func (c *Customer) IsDeleted() bool          { return c.DeletedAt != nil }

// Shopkeeper mirrors the `shopkeepers` table.
type Shopkeeper struct {
	ID           uint64
	Username     string
	ShopName     string
	Rating       float64
	PhoneNumber  int64
	Email        string
	PasswordHash string
	Address      string
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

func (s *Shopkeeper) IdentityID() uint64       { return s.ID }
func (s *Shopkeeper) IdentityUsername() string { return s.Username }
func (s *Shopkeeper) IdentityRole() Role       { return RoleShopkeeper }
func (s *Shopkeeper) IsDeleted() bool          { return s.DeletedAt != nil }

// Superuser mirrors the `superusers` table, the privileged identity store.
// Only rows with IsSuperuser set authenticate as role superuser; IsActive
// gates authorization the same way deleted_at does for the other variants.
type Superuser struct {
	ID           uint64
	Username     string
	Email        string
	PasswordHash string
	IsSuperuser  bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *Superuser) IdentityID() uint64       { return u.ID }
func (u *Superuser) IdentityUsername() string { return u.Username }
func (u *Superuser) IdentityRole() Role       { return RoleSuperuser }
func (u *Superuser) IsDeleted() bool          { return !u.IsActive }
