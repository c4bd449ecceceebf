package models

import "time"

// PushSubscription is one registered push-delivery target. The endpoint is
// the natural unique key: a physical delivery channel belongs to exactly one
// device/browser instance, so re-registering the same endpoint overwrites.
type PushSubscription struct {
	Endpoint  string    `json:"endpoint" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"size:64;index;not null"`
	P256dh    string    `json:"p256dh" gorm:"not null"`
	Auth      string    `json:"auth" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (PushSubscription) TableName() string { return "push_subscriptions" }
