package model

import "time"

// Category mirrors the `categories` table. Categories are created on demand
// when a product names one that does not exist yet.
type Category struct {
	ID          uint64
	Name        string
	Description string
	CreatedAt   time.Time
}

// Product mirrors the `products` table. ProductID is the public identifier
// (PRO- prefix plus random hex); the numeric ID stays internal. A product
// name is unique per shopkeeper, not globally.
type Product struct {
	ID            uint64
	ProductID     string
	Name          string
	CategoryID    *uint64
	Description   string
	Price         float64
	DiscountPrice *float64
	Rating        float64
	TotalSold     int
	Stock         int
	CreatedBy     uint64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Order mirrors the `orders` table. OrderID is the public identifier
// (ORD- prefix plus random hex).
type Order struct {
	ID              uint64
	OrderID         string
	CustomerID      uint64
	ProductID       uint64
	Quantity        int
	OrderDate       time.Time
	Status          string
	ShippingAddress string
	PaymentMethod   string
	TransactionID   string
}

// Notification mirrors the `notifications` table. Rows are written by the
// order event consumer so customers can be shown order confirmations later.
type Notification struct {
	ID         uint64
	CustomerID uint64
	Message    string
	Read       bool
	CreatedAt  time.Time
}
