package services

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidOrExpiredCode is returned by ConfirmCode when no live row
// matches. Callers get one error for both the wrong-code and expired-code
// cases so responses do not reveal which one happened.
var ErrInvalidOrExpiredCode = errors.New("invalid or expired verification code")

// RateLimitError is returned by RequestCode when the phone number has hit
// the issuance limit for the current window.
type RateLimitError struct {
	AttemptsCount int
	RetryAfter    *time.Time
}

func (e *RateLimitError) Error() string {
	return "too many verification attempts"
}

// WaitMessage renders the human-readable retry hint shown to clients, e.g.
// "Too many verification attempts. Please try again in 12 minutes."
func (e *RateLimitError) WaitMessage(now time.Time) string {
	if e.RetryAfter == nil {
		return "Too many verification attempts. Please try again later."
	}
	mins := int(math.Ceil(e.RetryAfter.Sub(now).Minutes()))
	if mins < 1 {
		mins = 1
	}
	plural := "s"
	if mins == 1 {
		plural = ""
	}
	return fmt.Sprintf("Too many verification attempts. Please try again in %d minute%s.", mins, plural)
}

// DispatchError is an SMS gateway failure: a transport error, a non-success
// provider response, or missing credentials in production.
type DispatchError struct {
	Code    int // provider error code, 0 when not applicable
	Message string
	Err     error
}

func (e *DispatchError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("sms dispatch failed: %d %s", e.Code, e.Message)
	}
	return fmt.Sprintf("sms dispatch failed: %s", e.Message)
}

func (e *DispatchError) Unwrap() error { return e.Err }
