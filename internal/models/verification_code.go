package models

import (
	"time"

	"gorm.io/gorm"
)

// VerificationCode is one row per code issuance. Rows outlive expiry and
// consumption because the rate limiter counts them; superseding a code soft
// deletes the old row so it stops being confirmable while still counting
// toward the issuance window.
type VerificationCode struct {
	gorm.Model
	PhoneNumber string    `gorm:"not null;index;index:idx_codes_lookup,priority:1"`
	Code        string    `gorm:"not null;index:idx_codes_lookup,priority:2"`
	ExpiresAt   time.Time `gorm:"not null"`
	Used        bool      `gorm:"not null;default:false"`
}

// Live reports whether the code can still be confirmed at the given instant.
func (v *VerificationCode) Live(now time.Time) bool {
	return !v.Used && !v.DeletedAt.Valid && now.Before(v.ExpiresAt)
}
