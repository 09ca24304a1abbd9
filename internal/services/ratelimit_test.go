package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/onlyfriends-app/backend/internal/models"
	"github.com/onlyfriends-app/backend/internal/services"
	"github.com/onlyfriends-app/backend/internal/storage"
)

func TestRateLimiterAdmitsUnderLimit(t *testing.T) {
	store := storage.NewMemoryStore()
	limiter := services.NewRateLimiter(store, 5, 30*time.Minute)

	for i := 0; i < 4; i++ {
		_, err := store.StoreCode("+15551234567", "111111", 10*time.Minute)
		require.NoError(t, err)
	}

	result := limiter.Check("+15551234567", time.Now())
	require.True(t, result.Allowed)
	require.Equal(t, 4, result.AttemptsCount)
	require.Nil(t, result.NextAllowedAt)
}

func TestRateLimiterDeniesAtLimit(t *testing.T) {
	store := storage.NewMemoryStore()
	limiter := services.NewRateLimiter(store, 5, 30*time.Minute)

	for i := 0; i < 5; i++ {
		_, err := store.StoreCode("+15551234567", "111111", 10*time.Minute)
		require.NoError(t, err)
	}

	now := time.Now()
	result := limiter.Check("+15551234567", now)
	require.False(t, result.Allowed)
	require.Equal(t, 5, result.AttemptsCount)
	require.NotNil(t, result.NextAllowedAt)

	// The window slides off the oldest attempt: next allowed is that
	// attempt's timestamp plus the window.
	_, oldest, err := store.CountAttempts("+15551234567", now.Add(-30*time.Minute))
	require.NoError(t, err)
	require.NotNil(t, oldest)
	require.True(t, result.NextAllowedAt.Equal(oldest.Add(30*time.Minute)))
}

func TestRateLimiterIsolatesPhones(t *testing.T) {
	store := storage.NewMemoryStore()
	limiter := services.NewRateLimiter(store, 5, 30*time.Minute)

	for i := 0; i < 5; i++ {
		_, err := store.StoreCode("+15551234567", "111111", 10*time.Minute)
		require.NoError(t, err)
	}

	result := limiter.Check("+15559876543", time.Now())
	require.True(t, result.Allowed)
	require.Zero(t, result.AttemptsCount)
}

// failingStore errors on the rate-limit read path.
type failingStore struct{}

func (f *failingStore) StoreCode(phone, code string, ttl time.Duration) (*models.VerificationCode, error) {
	return nil, errors.New("store down")
}

func (f *failingStore) ConsumeCode(phone, code string) (bool, error) {
	return false, errors.New("store down")
}

func (f *failingStore) CountAttempts(phone string, windowStart time.Time) (int, *time.Time, error) {
	return 0, nil, errors.New("store down")
}

func (f *failingStore) GetActiveCode(phone string) (string, error) {
	return "", errors.New("store down")
}

func TestRateLimiterFailsOpen(t *testing.T) {
	limiter := services.NewRateLimiter(&failingStore{}, 5, 30*time.Minute)

	result := limiter.Check("+15551234567", time.Now())
	require.True(t, result.Allowed, "a failed count read must not block issuance")
	require.Zero(t, result.AttemptsCount)
	require.Nil(t, result.NextAllowedAt)
}
