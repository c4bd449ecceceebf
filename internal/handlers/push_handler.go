package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"lunch_orders/internal/models"
	"lunch_orders/internal/services"

	"github.com/gin-gonic/gin"
)

type PushHandler struct {
	registryService     services.RegistryService
	dispatchService     services.DispatchService
	notificationService services.NotificationService
	webhookSecret       string
}

func NewPushHandler(
	registryService services.RegistryService,
	dispatchService services.DispatchService,
	notificationService services.NotificationService,
	webhookSecret string,
) *PushHandler {
	return &PushHandler{
		registryService:     registryService,
		dispatchService:     dispatchService,
		notificationService: notificationService,
		webhookSecret:       webhookSecret,
	}
}

type SubscribeRequest struct {
	UserID       string `json:"user_id"`
	Subscription struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	} `json:"subscription"`
}

type SendRequest struct {
	UserID  string `json:"user_id"`
	Payload struct {
		Title string `json:"title"`
		Body  string `json:"body"`
		URL   string `json:"url"`
	} `json:"payload"`
}

type WebhookRequest struct {
	Record    *models.Order `json:"record"`
	OldRecord *models.Order `json:"old_record"`
}

// Subscribe registers (or re-registers) a push delivery target for a user.
func (h *PushHandler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	err := h.registryService.Register(
		c.Request.Context(),
		req.UserID,
		req.Subscription.Endpoint,
		req.Subscription.Keys.P256dh,
		req.Subscription.Keys.Auth,
	)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing user_id or subscription endpoint"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Send dispatches an ad-hoc notification to every device of one user, outside
// of any order-status transition.
func (h *PushHandler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing user_id"})
		return
	}

	intent := services.NotificationIntent{
		UserID: req.UserID,
		Title:  req.Payload.Title,
		Body:   req.Payload.Body,
		URL:    req.Payload.URL,
	}
	report, err := h.dispatchService.Dispatch(c.Request.Context(), intent)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to dispatch"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "sent": report.Attempted})
}

// Webhook is the change-notification ingress for an external record store.
// It answers as soon as the transition is classified; delivery runs in the
// background so notifier latency can never make the store's webhook retry.
func (h *PushHandler) Webhook(c *gin.Context) {
	if h.webhookSecret != "" && c.GetHeader("X-Webhook-Secret") != h.webhookSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid webhook secret"})
		return
	}

	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if req.Record == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No record in webhook payload"})
		return
	}

	record, oldRecord := req.Record, req.OldRecord
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		result, err := h.notificationService.ProcessChange(ctx, record, oldRecord)
		if err != nil {
			log.Printf("webhook dispatch for order %s: %v", record.OrderID, err)
			return
		}
		if result.Skipped {
			log.Printf("webhook skipped for order %s: %s", record.OrderID, result.Reason)
		}
	}()

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
