package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/onlyfriends-app/backend/internal/services"
)

// AuthHandler serves the phone verification endpoints used by the web and
// mobile clients during signup and login.
type AuthHandler struct {
	verification *services.VerificationService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(verification *services.VerificationService) *AuthHandler {
	return &AuthHandler{verification: verification}
}

type sendVerificationRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

type verifyCodeRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Code        string `json:"code"`
}

// SendVerification handles POST /auth/send-verification.
func (h *AuthHandler) SendVerification(c *fiber.Ctx) error {
	var req sendVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}
	if strings.TrimSpace(req.PhoneNumber) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Valid phone number is required",
		})
	}

	result, err := h.verification.RequestCode(req.PhoneNumber)
	if err != nil {
		var rateErr *services.RateLimitError
		if errors.As(err, &rateErr) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success":       false,
				"error":         rateErr.WaitMessage(time.Now()),
				"rateLimited":   true,
				"attemptsCount": rateErr.AttemptsCount,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to send verification code",
		})
	}

	resp := fiber.Map{
		"success":           true,
		"message":           "Verification code sent",
		"attemptsRemaining": result.AttemptsRemaining,
	}
	if result.DevCode != "" {
		// Development mode only: delivery was skipped, hand the code back so
		// the client can show it.
		resp["verificationCode"] = result.DevCode
	}
	return c.JSON(resp)
}

// VerifyCode handles POST /auth/verify-code.
func (h *AuthHandler) VerifyCode(c *fiber.Ctx) error {
	var req verifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}
	if strings.TrimSpace(req.PhoneNumber) == "" || strings.TrimSpace(req.Code) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Phone number and code are required",
		})
	}

	if err := h.verification.ConfirmCode(req.PhoneNumber, req.Code); err != nil {
		if errors.Is(err, services.ErrInvalidOrExpiredCode) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid or expired verification code. Please request a new code.",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error during verification",
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"verified": true,
	})
}

// ActiveCode handles GET /test/active-code. Registered outside production
// only; lets developers read the live code instead of receiving an SMS.
func (h *AuthHandler) ActiveCode(c *fiber.Ctx) error {
	phone := c.Query("phone")
	if phone == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "phone query parameter is required",
		})
	}

	code, err := h.verification.ActiveCode(phone)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to look up active code",
		})
	}
	if code == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No active code for this phone number",
		})
	}
	return c.JSON(fiber.Map{
		"phoneNumber": phone,
		"code":        code,
	})
}
