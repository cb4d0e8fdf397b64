// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderPlacedEvent is published when an order is successfully recorded.
// It contains enough information for downstream consumers to log and
// notify the customer without querying the primary database.
type OrderPlacedEvent struct {
	OrderID        string `json:"order_id"`
	CustomerID     uint64 `json:"customer_id"`
	Customer       string `json:"customer"`
	Product        string `json:"product"`
	Quantity       int    `json:"quantity"`
	RemainingStock int    `json:"remaining_stock"`
	OrderDate      string `json:"order_date"`
}
