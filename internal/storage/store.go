package storage

import (
	"time"

	"github.com/onlyfriends-app/backend/internal/models"
)

// Store defines the persistence boundary for verification codes. All keys
// are normalized phone numbers; callers normalize before reaching the store.
type Store interface {
	// StoreCode supersedes any unexpired codes for phone, then inserts a
	// fresh row with the given TTL. A supersede failure is logged and
	// ignored; an insert failure is returned.
	StoreCode(phone, code string, ttl time.Duration) (*models.VerificationCode, error)

	// ConsumeCode marks the row matching phone and code as used, provided it
	// is unused and unexpired. It returns false when no such row exists;
	// that is the normal "invalid code" outcome, not an error. A code is
	// never consumed twice.
	ConsumeCode(phone, code string) (bool, error)

	// CountAttempts reports how many codes were issued for phone since
	// windowStart, including superseded ones, along with the creation time
	// of the oldest of them (nil when the count is zero).
	CountAttempts(phone string, windowStart time.Time) (int, *time.Time, error)

	// GetActiveCode returns the newest unused, unexpired code for phone, or
	// "" when there is none.
	GetActiveCode(phone string) (string, error)
}
