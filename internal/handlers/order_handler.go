package handlers

import (
	"errors"
	"net/http"

	"lunch_orders/internal/models"
	"lunch_orders/internal/repository"
	"lunch_orders/internal/services"
	"lunch_orders/internal/view"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService services.OrderService
	kitchenView  *view.Engine
}

// NewOrderHandler wires the order API. kitchenView is the continuously synced
// engine serving the unfiltered board; it may be nil, in which case every
// board request partitions a fresh snapshot.
func NewOrderHandler(orderService services.OrderService, kitchenView *view.Engine) *OrderHandler {
	return &OrderHandler{orderService: orderService, kitchenView: kitchenView}
}

type PlaceOrderRequest struct {
	UserID string  `json:"user_id"`
	Name   string  `json:"name"`
	Item   string  `json:"item"`
	Note   *string `json:"note"`
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	order, err := h.orderService.PlaceOrder(req.UserID, req.Name, req.Item, req.Note)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	filter := models.OrderFilter{UserID: c.Query("user_id")}

	orders, err := h.orderService.List(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// Board returns the partitioned order view: queued oldest-first, in_progress
// and ready newest-first. The unfiltered kitchen board is served from the
// live sync engine; personal boards partition a fresh snapshot.
func (h *OrderHandler) Board(c *gin.Context) {
	userID := c.Query("user_id")

	if userID == "" && h.kitchenView != nil {
		c.JSON(http.StatusOK, gin.H{
			"stale": h.kitchenView.Stale(),
			"board": h.kitchenView.Buckets(),
		})
		return
	}

	orders, err := h.orderService.List(models.OrderFilter{UserID: userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stale": false,
		"board": view.Partition(orders),
	})
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID := c.Param("order_id")

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	order, err := h.orderService.UpdateStatus(orderID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		}
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	orderID := c.Param("order_id")

	if err := h.orderService.DeleteOrder(orderID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete order"})
		return
	}

	c.Status(http.StatusNoContent)
}
