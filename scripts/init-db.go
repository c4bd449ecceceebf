package main

import (
	"fmt"
	"log"
	"time"

	"lunch_orders/internal/config"
	"lunch_orders/internal/database"
	"lunch_orders/internal/models"
	"lunch_orders/internal/repository"

	"github.com/google/uuid"
)

func main() {
	fmt.Println("Initializing database...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Force recreate all tables
	fmt.Println("Dropping existing tables...")
	err = db.Migrator().DropTable(
		&models.Order{},
		&models.PushSubscription{},
	)
	if err != nil {
		log.Printf("Warning: Error dropping tables: %v", err)
	}

	// Create tables with proper schema
	fmt.Println("Creating tables...")
	err = db.AutoMigrate(
		&models.Order{},
		&models.PushSubscription{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Seed a few demo orders so the kitchen board isn't empty
	fmt.Println("Seeding demo orders...")
	orderRepo := repository.NewOrderRepository(db)

	note := "extra spicy"
	seeds := []models.Order{
		{
			OrderID:   uuid.New().String(),
			UserID:    "demo-user-1",
			Name:      "Sam",
			Item:      "Cheeseburger",
			Status:    models.StatusQueued,
			CreatedAt: time.Now().UTC().Add(-10 * time.Minute),
		},
		{
			OrderID:   uuid.New().String(),
			UserID:    "demo-user-2",
			Name:      "Alex",
			Item:      "Ramen",
			Status:    models.StatusInProgress,
			Note:      &note,
			CreatedAt: time.Now().UTC().Add(-5 * time.Minute),
		},
		{
			OrderID:   uuid.New().String(),
			UserID:    "demo-user-1",
			Name:      "Sam",
			Item:      "Caesar Salad",
			Status:    models.StatusReady,
			CreatedAt: time.Now().UTC().Add(-2 * time.Minute),
		},
	}
	for i := range seeds {
		if err := orderRepo.Create(&seeds[i]); err != nil {
			log.Printf("Warning: Failed to seed order: %v", err)
		}
	}

	fmt.Println("Database initialization completed successfully!")
}
