package repository

import (
	"errors"

	"lunch_orders/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionRepository interface {
	Upsert(sub *models.PushSubscription) error
	ListByUser(userID string) ([]models.PushSubscription, error)
	GetByEndpoint(endpoint string) (*models.PushSubscription, error)
	DeleteByEndpoint(endpoint string) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Upsert overwrites any existing entry with the same endpoint, so
// re-registering a device keeps exactly one live entry holding the latest
// delivery keys.
func (r *subscriptionRepository) Upsert(sub *models.PushSubscription) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth"}),
	}).Create(sub).Error
}

func (r *subscriptionRepository) ListByUser(userID string) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	err := r.db.Where("user_id = ?", userID).Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) GetByEndpoint(endpoint string) (*models.PushSubscription, error) {
	var sub models.PushSubscription
	err := r.db.First(&sub, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// DeleteByEndpoint is idempotent: removing an endpoint that is already gone
// is not an error, so concurrent cleanups for the same user cannot race.
func (r *subscriptionRepository) DeleteByEndpoint(endpoint string) error {
	return r.db.Delete(&models.PushSubscription{}, "endpoint = ?", endpoint).Error
}
