package services

import (
	"fmt"

	"lunch_orders/internal/models"
)

// NotificationIntent is one push-worthy transition, resolved to its target
// user and rendered content.
type NotificationIntent struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	URL    string `json:"url,omitempty"`
}

// Classify decides whether a status change deserves a push. A transition is
// worthy iff the status actually changed and the new status is in_progress or
// ready; unrelated field edits (a note tweak) therefore never re-ping, and
// nothing fires for orders entering the queue.
//
// oldStatus == nil means the prior state is unknown (bare insert); by
// definition that counts as "changed", so an order created directly as
// in_progress or ready still notifies.
func Classify(oldStatus *models.OrderStatus, order *models.Order) *NotificationIntent {
	newStatus := order.Status
	if oldStatus != nil && *oldStatus == newStatus {
		return nil
	}

	switch newStatus {
	case models.StatusInProgress:
		return &NotificationIntent{
			UserID: order.UserID,
			Title:  "Order In Progress",
			Body:   fmt.Sprintf("%s is now being prepared", order.Item),
			URL:    "/myOrders",
		}
	case models.StatusReady:
		return &NotificationIntent{
			UserID: order.UserID,
			Title:  "Order Ready",
			Body:   fmt.Sprintf("%s is ready for pickup", order.Item),
			URL:    "/myOrders",
		}
	}
	return nil
}
