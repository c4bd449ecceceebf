package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"lunch_orders/internal/feed"
	"lunch_orders/internal/models"
	"lunch_orders/internal/repository"

	"github.com/google/uuid"
)

// OrderService is the record store client: reads, single-record mutations and
// a live change feed over them. Every successful mutation is published to the
// feed so connected views and the notification pipeline observe it.
type OrderService interface {
	PlaceOrder(userID, name, item string, note *string) (*models.Order, error)
	GetOrder(orderID string) (*models.Order, error)
	List(filter models.OrderFilter) ([]models.Order, error)
	UpdateStatus(orderID string, status models.OrderStatus) (*models.Order, error)
	DeleteOrder(orderID string) error
	Subscribe(filter models.OrderFilter) (<-chan models.ChangeEvent, func())
}

type orderService struct {
	orderRepo  repository.OrderRepository
	hub        *feed.Hub
	feedBuffer int
}

func NewOrderService(orderRepo repository.OrderRepository, hub *feed.Hub, feedBuffer int) OrderService {
	return &orderService{orderRepo: orderRepo, hub: hub, feedBuffer: feedBuffer}
}

func (s *orderService) PlaceOrder(userID, name, item string, note *string) (*models.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: missing user_id", ErrValidation)
	}
	if strings.TrimSpace(item) == "" {
		return nil, fmt.Errorf("%w: missing item", ErrValidation)
	}

	order := &models.Order{
		OrderID:   uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Item:      item,
		Status:    models.StatusQueued,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("%w: create order: %v", ErrStore, err)
	}

	s.hub.Publish(models.ChangeEvent{Type: models.EventInsert, Record: *order})
	return order, nil
}

func (s *orderService) GetOrder(orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get order: %v", ErrStore, err)
	}
	return order, nil
}

func (s *orderService) List(filter models.OrderFilter) ([]models.Order, error) {
	orders, err := s.orderRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %v", ErrStore, err)
	}
	return orders, nil
}

// UpdateStatus advances an order and publishes the change with the prior
// record attached, so the classifier can tell a real transition from a no-op.
func (s *orderService) UpdateStatus(orderID string, status models.OrderStatus) (*models.Order, error) {
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}

	prev, err := s.orderRepo.GetByID(orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get order: %v", ErrStore, err)
	}

	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: update status: %v", ErrStore, err)
	}

	updated := *prev
	updated.Status = status
	s.hub.Publish(models.ChangeEvent{Type: models.EventUpdate, Record: updated, OldRecord: prev})
	return &updated, nil
}

// DeleteOrder removes the record; deletion is terminal and drops the order
// from every view. Deleting an unknown order is a no-op.
func (s *orderService) DeleteOrder(orderID string) error {
	prev, err := s.orderRepo.GetByID(orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: get order: %v", ErrStore, err)
	}

	if err := s.orderRepo.Delete(orderID); err != nil {
		return fmt.Errorf("%w: delete order: %v", ErrStore, err)
	}

	s.hub.Publish(models.ChangeEvent{Type: models.EventDelete, Record: *prev, OldRecord: prev})
	return nil
}

func (s *orderService) Subscribe(filter models.OrderFilter) (<-chan models.ChangeEvent, func()) {
	sub := s.hub.Subscribe(filter, s.feedBuffer)
	return sub.C(), sub.Cancel
}
