package storage

import (
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/onlyfriends-app/backend/internal/models"
)

// MemoryStore keeps verification codes in memory. Used by tests and local
// runs with USE_MEMORY_STORE=true; mirrors the DatabaseStore semantics,
// including superseded rows counting toward the rate-limit window.
type MemoryStore struct {
	mu     sync.RWMutex
	codes  []*models.VerificationCode
	nextID uint
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) StoreCode(phone, code string, ttl time.Duration) (*models.VerificationCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for _, vc := range m.codes {
		if vc.PhoneNumber == phone && !vc.DeletedAt.Valid && now.Before(vc.ExpiresAt) {
			vc.DeletedAt = gorm.DeletedAt{Time: now, Valid: true}
		}
	}

	m.nextID++
	vc := &models.VerificationCode{
		PhoneNumber: phone,
		Code:        code,
		ExpiresAt:   now.Add(ttl),
		Used:        false,
	}
	vc.ID = m.nextID
	vc.CreatedAt = now
	vc.UpdatedAt = now
	m.codes = append(m.codes, vc)
	return vc, nil
}

func (m *MemoryStore) ConsumeCode(phone, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for _, vc := range m.codes {
		if vc.PhoneNumber == phone && vc.Code == code && vc.Live(now) {
			vc.Used = true
			vc.UpdatedAt = now
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) CountAttempts(phone string, windowStart time.Time) (int, *time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	var oldest *time.Time
	for _, vc := range m.codes {
		if vc.PhoneNumber != phone || vc.CreatedAt.Before(windowStart) {
			continue
		}
		count++
		if oldest == nil || vc.CreatedAt.Before(*oldest) {
			t := vc.CreatedAt
			oldest = &t
		}
	}
	return count, oldest, nil
}

func (m *MemoryStore) GetActiveCode(phone string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	var newest *models.VerificationCode
	for _, vc := range m.codes {
		if vc.PhoneNumber != phone || !vc.Live(now) {
			continue
		}
		if newest == nil || vc.CreatedAt.After(newest.CreatedAt) {
			newest = vc
		}
	}
	if newest == nil {
		return "", nil
	}
	return newest.Code, nil
}
