package storage_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/onlyfriends-app/backend/internal/storage"
)

const testPhone = "+15551234567"

func TestStoreCodeSupersedesPrevious(t *testing.T) {
	store := storage.NewMemoryStore()

	_, err := store.StoreCode(testPhone, "111111", 10*time.Minute)
	require.NoError(t, err)
	_, err = store.StoreCode(testPhone, "222222", 10*time.Minute)
	require.NoError(t, err)

	// Only the newest code is live.
	code, err := store.GetActiveCode(testPhone)
	require.NoError(t, err)
	require.Equal(t, "222222", code)

	ok, err := store.ConsumeCode(testPhone, "111111")
	require.NoError(t, err)
	require.False(t, ok, "superseded code must not confirm")

	ok, err = store.ConsumeCode(testPhone, "222222")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestConsumeCodeSingleUse(t *testing.T) {
	store := storage.NewMemoryStore()

	_, err := store.StoreCode(testPhone, "048213", 10*time.Minute)
	require.NoError(t, err)

	ok, err := store.ConsumeCode(testPhone, "048213")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = store.ConsumeCode(testPhone, "048213")
	require.NoError(t, err)
	require.False(t, ok, "a code must never consume twice")
}

func TestConsumeCodeWrongCode(t *testing.T) {
	store := storage.NewMemoryStore()

	_, err := store.StoreCode(testPhone, "048213", 10*time.Minute)
	require.NoError(t, err)

	ok, err := store.ConsumeCode(testPhone, "000000")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = store.ConsumeCode("+15550000000", "048213")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestConsumeCodeExpired(t *testing.T) {
	store := storage.NewMemoryStore()

	// Already expired at creation.
	_, err := store.StoreCode(testPhone, "048213", -time.Minute)
	require.NoError(t, err)

	ok, err := store.ConsumeCode(testPhone, "048213")
	require.NoError(t, err)
	require.False(t, ok, "expired code must not confirm")

	code, err := store.GetActiveCode(testPhone)
	require.NoError(t, err)
	require.Empty(t, code)
}

func TestCountAttemptsIncludesSupersededAndConsumed(t *testing.T) {
	store := storage.NewMemoryStore()
	windowStart := time.Now().Add(-30 * time.Minute)

	_, err := store.StoreCode(testPhone, "111111", 10*time.Minute)
	require.NoError(t, err)
	_, err = store.StoreCode(testPhone, "222222", 10*time.Minute)
	require.NoError(t, err)

	ok, err := store.ConsumeCode(testPhone, "222222")
	require.NoError(t, err)
	require.True(t, ok)

	count, oldest, err := store.CountAttempts(testPhone, windowStart)
	require.NoError(t, err)
	require.Equal(t, 2, count, "superseded and consumed rows still count")
	require.NotNil(t, oldest)
	require.False(t, oldest.Before(windowStart))
}

func TestCountAttemptsRespectsWindowAndPhone(t *testing.T) {
	store := storage.NewMemoryStore()

	_, err := store.StoreCode(testPhone, "111111", 10*time.Minute)
	require.NoError(t, err)
	_, err = store.StoreCode("+15559876543", "222222", 10*time.Minute)
	require.NoError(t, err)

	count, oldest, err := store.CountAttempts(testPhone, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.NotNil(t, oldest)

	// A window starting in the future excludes everything.
	count, oldest, err = store.CountAttempts(testPhone, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Zero(t, count)
	require.Nil(t, oldest)
}
