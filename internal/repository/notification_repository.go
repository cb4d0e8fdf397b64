package repository

import (
	"context"
	"database/sql"
)

// NotificationRepo writes customer notifications. The order event consumer
// uses it to record a confirmation for every placed order.
type NotificationRepo struct{ db *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Create inserts an unread notification for the customer.
func (r *NotificationRepo) Create(ctx context.Context, customerID uint64, message string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO notifications (customer_id, message) VALUES (?,?)", customerID, message)
	return err
}
