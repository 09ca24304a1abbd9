package services

import (
	"log"
	"time"

	"github.com/onlyfriends-app/backend/internal/storage"
)

// RateLimitResult is the admission decision for one issuance request.
type RateLimitResult struct {
	Allowed       bool
	AttemptsCount int
	// NextAllowedAt is set only when the request was denied; it is the
	// oldest in-window attempt plus the window length, the instant the
	// sliding window rolls that attempt out.
	NextAllowedAt *time.Time
}

// RateLimiter admits or denies code issuance based on how many codes were
// already issued for a phone number inside a trailing window. It reads the
// same rows the store writes, so the limiter and the store cannot drift
// apart.
type RateLimiter struct {
	store       storage.Store
	maxAttempts int
	window      time.Duration
}

// NewRateLimiter creates a limiter allowing maxAttempts issuances per phone
// number within the trailing window.
func NewRateLimiter(store storage.Store, maxAttempts int, window time.Duration) *RateLimiter {
	return &RateLimiter{store: store, maxAttempts: maxAttempts, window: window}
}

// MaxAttempts returns the configured per-window issuance cap.
func (r *RateLimiter) MaxAttempts() int {
	return r.maxAttempts
}

// Check decides admission for phone at the given instant. When the attempt
// count cannot be read the limiter fails open: an infrastructure hiccup must
// not lock legitimate users out of signup.
func (r *RateLimiter) Check(phone string, now time.Time) RateLimitResult {
	windowStart := now.Add(-r.window)
	count, oldest, err := r.store.CountAttempts(phone, windowStart)
	if err != nil {
		log.Printf("⚠️  Rate limit check failed for %s, allowing request: %v", phone, err)
		return RateLimitResult{Allowed: true}
	}

	if count < r.maxAttempts {
		return RateLimitResult{Allowed: true, AttemptsCount: count}
	}

	result := RateLimitResult{Allowed: false, AttemptsCount: count}
	if oldest != nil {
		next := oldest.Add(r.window)
		result.NextAllowedAt = &next
	}
	return result
}
