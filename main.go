package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/onlyfriends-app/backend/database"
	"github.com/onlyfriends-app/backend/internal/config"
	"github.com/onlyfriends-app/backend/internal/handlers"
	"github.com/onlyfriends-app/backend/internal/middleware"
	"github.com/onlyfriends-app/backend/internal/models"
	"github.com/onlyfriends-app/backend/internal/routes"
	"github.com/onlyfriends-app/backend/internal/services"
	"github.com/onlyfriends-app/backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("⚠️  No .env file found - checking environment variables")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	// Initialize storage
	var store storage.Store
	var db *gorm.DB

	if cfg.UseMemoryStore {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		db, err = database.Connect(cfg)
		if err != nil {
			log.Fatal("Failed to connect to database: ", err)
		}

		log.Println("🔄 Running database migrations...")
		if err := db.AutoMigrate(&models.VerificationCode{}); err != nil {
			log.Fatal("Failed to migrate database: ", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(db)
	}

	// Initialize SMS dispatcher (fails here when production credentials are
	// missing)
	smsService, err := services.NewSMSService(cfg)
	if err != nil {
		log.Fatal("Failed to initialize SMS service: ", err)
	}

	limiter := services.NewRateLimiter(store, cfg.MaxAttempts, cfg.RateLimitWindow)
	verification := services.NewVerificationService(store, limiter, smsService, cfg.CodeLength, cfg.CodeTTL)

	authHandler := handlers.NewAuthHandler(verification)
	healthHandler := handlers.NewHealthHandler("1.0.0", db, cfg.TwilioConfigured())

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "Only Friends Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	routes.SetupRoutes(app, cfg, authHandler, healthHandler)

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		_ = app.Shutdown()
		if db != nil {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 Only Friends Backend starting on port %s", cfg.Port)
	log.Printf("📊 Storage: %s", storageType(cfg))
	log.Printf("🌍 Environment: %s", cfg.Environment)
	log.Printf("📱 SMS: %s", smsStatus(cfg))
	log.Println("========================================")

	log.Fatal(app.Listen(":" + cfg.Port))
}

func storageType(cfg *config.Config) string {
	if cfg.UseMemoryStore {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}

func smsStatus(cfg *config.Config) string {
	if !cfg.TwilioConfigured() {
		return "Not configured (dev mode)"
	}
	return "Configured"
}
