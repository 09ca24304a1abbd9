package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/onlyfriends-app/backend/internal/config"
	"github.com/onlyfriends-app/backend/internal/handlers"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, cfg *config.Config, auth *handlers.AuthHandler, health *handlers.HealthHandler) {

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to Only Friends Backend!",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health":            "/health",
				"send_verification": "/auth/send-verification",
				"verify_code":       "/auth/verify-code",
			},
		})
	})

	app.Get("/health", health.Check)

	// Verification endpoints called by the web and mobile clients
	authGroup := app.Group("/auth")
	authGroup.Post("/send-verification", auth.SendVerification)
	authGroup.Post("/verify-code", auth.VerifyCode)

	// ========== TEST ROUTES (Development Only) ==========
	if !cfg.Production() {
		app.Get("/test/active-code", auth.ActiveCode)
		log.Println("⚠️  Test routes enabled (non-production mode)")
	}
}
