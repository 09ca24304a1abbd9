package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	Version string
	db      *gorm.DB // nil when running on the memory store
	smsOK   bool
}

// NewHealthHandler creates a new health handler. Pass a nil db when the
// server runs on the in-memory store.
func NewHealthHandler(version string, db *gorm.DB, smsConfigured bool) *HealthHandler {
	return &HealthHandler{
		Version: version,
		db:      db,
		smsOK:   smsConfigured,
	}
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "healthy"
	statusCode := fiber.StatusOK
	dbHealthy := true

	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err != nil || sqlDB.Ping() != nil {
			status = "unhealthy"
			statusCode = fiber.StatusServiceUnavailable
			dbHealthy = false
		}
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"version": h.Version,
		"services": fiber.Map{
			"database": dbHealthy,
			"twilio":   h.smsOK,
		},
	})
}
