package repository

import (
	"errors"

	"lunch_orders/internal/models"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(orderID string) (*models.Order, error)
	List(filter models.OrderFilter) ([]models.Order, error)
	UpdateStatus(orderID string, status models.OrderStatus) error
	Delete(orderID string) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) GetByID(orderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.First(&order, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(filter models.OrderFilter) ([]models.Order, error) {
	var orders []models.Order
	q := r.db.Order("created_at ASC")
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	err := q.Find(&orders).Error
	return orders, err
}

func (r *orderRepository) UpdateStatus(orderID string, status models.OrderStatus) error {
	res := r.db.Model(&models.Order{}).Where("order_id = ?", orderID).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) Delete(orderID string) error {
	return r.db.Delete(&models.Order{}, "order_id = ?", orderID).Error
}
