package models

import (
	"time"
)

type OrderStatus string

const (
	StatusQueued     OrderStatus = "queued"
	StatusInProgress OrderStatus = "in_progress"
	StatusReady      OrderStatus = "ready"
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusQueued, StatusInProgress, StatusReady:
		return true
	}
	return false
}

type Order struct {
	OrderID   string      `json:"order_id" gorm:"primaryKey;size:64"`
	UserID    string      `json:"user_id" gorm:"size:64;index;not null"`
	Name      string      `json:"name" gorm:"not null"`
	Item      string      `json:"item" gorm:"not null"`
	Status    OrderStatus `json:"status" gorm:"size:16;default:'queued'"`
	Note      *string     `json:"note"`
	CreatedAt time.Time   `json:"created_at"`
}

func (Order) TableName() string { return "orders" }

// OrderFilter narrows a snapshot read or a feed subscription.
// A zero filter matches every order (kitchen view); setting UserID
// restricts it to that user's own orders (personal view).
type OrderFilter struct {
	UserID string
}

func (f OrderFilter) Matches(o *Order) bool {
	return f.UserID == "" || f.UserID == o.UserID
}
