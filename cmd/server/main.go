package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"lunch_orders/internal/config"
	"lunch_orders/internal/database"
	"lunch_orders/internal/feed"
	"lunch_orders/internal/handlers"
	"lunch_orders/internal/models"
	"lunch_orders/internal/redis"
	"lunch_orders/internal/repository"
	"lunch_orders/internal/services"
	"lunch_orders/internal/view"
	"lunch_orders/pkg/push"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	// Initialize push client with VAPID credentials from config
	pushClient := push.NewClient(cfg.VAPIDSubject, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)

	// Change feed hub: one channel per connected view
	hub := feed.NewHub()
	defer hub.Close()

	// Initialize services
	orderService := services.NewOrderService(orderRepo, hub, cfg.FeedBuffer)
	registryService := services.NewRegistryService(subRepo, redisClient, time.Duration(cfg.CacheTTL)*time.Second)
	dispatchService := services.NewDispatchService(registryService, pushClient)
	notificationService := services.NewNotificationService(orderService, dispatchService)

	// Notify on worthy transitions coming through the local change feed
	go notificationService.RunFeedWorker(ctx)

	// Keep a live kitchen view (all orders) synced off the feed
	kitchenEngine := view.NewEngine()
	kitchenFollower := view.NewFollower(kitchenEngine, orderService, models.OrderFilter{})
	go func() {
		if err := kitchenFollower.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("kitchen view stopped: %v", err)
		}
	}()

	// Initialize handlers
	orderHandler := handlers.NewOrderHandler(orderService, kitchenEngine)
	pushHandler := handlers.NewPushHandler(registryService, dispatchService, notificationService, cfg.WebhookSecret)

	// Setup routes
	router := gin.Default()

	api := router.Group("/api")
	{
		api.POST("/orders", orderHandler.PlaceOrder)
		api.GET("/orders", orderHandler.ListOrders)
		api.GET("/orders/board", orderHandler.Board)
		api.PATCH("/orders/:order_id/status", orderHandler.UpdateStatus)
		api.DELETE("/orders/:order_id", orderHandler.DeleteOrder)
		api.POST("/orders/webhook", pushHandler.Webhook)

		api.POST("/push/subscribe", pushHandler.Subscribe)
		api.POST("/push/send", pushHandler.Send)
	}

	// Start server; SIGINT/SIGTERM drains in-flight requests before exit so
	// the HTTP surface and the background workers wind down together
	srv := &http.Server{Addr: ":" + cfg.ServerPort, Handler: router}
	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}
