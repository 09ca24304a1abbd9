package storage

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/onlyfriends-app/backend/internal/models"
)

// DatabaseStore persists verification codes in PostgreSQL via GORM.
// Supersede uses GORM's soft delete: a superseded row disappears from the
// confirmation queries but still counts in the rate-limit window, which reads
// with Unscoped.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a store backed by the given database connection.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func (s *DatabaseStore) StoreCode(phone, code string, ttl time.Duration) (*models.VerificationCode, error) {
	now := time.Now()

	// Supersede: any row still confirmable for this phone goes away first.
	// Failure here is not fatal; a stale row only adds rate-limit weight, it
	// cannot validate because confirmation requires an exact code match.
	if err := s.db.
		Where("phone_number = ? AND expires_at > ?", phone, now).
		Delete(&models.VerificationCode{}).Error; err != nil {
		log.Printf("⚠️  Failed to clean up old verification codes for %s: %v", phone, err)
	}

	vc := &models.VerificationCode{
		PhoneNumber: phone,
		Code:        code,
		ExpiresAt:   now.Add(ttl),
		Used:        false,
	}
	if err := s.db.Create(vc).Error; err != nil {
		return nil, fmt.Errorf("failed to store verification code: %w", err)
	}
	return vc, nil
}

func (s *DatabaseStore) ConsumeCode(phone, code string) (bool, error) {
	// Guarded update: the used=false predicate makes the flip first-wins, so
	// two concurrent confirmations cannot both succeed.
	res := s.db.Model(&models.VerificationCode{}).
		Where("phone_number = ? AND code = ? AND used = ? AND expires_at > ?",
			phone, code, false, time.Now()).
		Update("used", true)
	if res.Error != nil {
		return false, fmt.Errorf("failed to consume verification code: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *DatabaseStore) CountAttempts(phone string, windowStart time.Time) (int, *time.Time, error) {
	var count int64
	if err := s.db.Unscoped().Model(&models.VerificationCode{}).
		Where("phone_number = ? AND created_at >= ?", phone, windowStart).
		Count(&count).Error; err != nil {
		return 0, nil, fmt.Errorf("failed to count verification attempts: %w", err)
	}
	if count == 0 {
		return 0, nil, nil
	}

	var oldest models.VerificationCode
	if err := s.db.Unscoped().
		Where("phone_number = ? AND created_at >= ?", phone, windowStart).
		Order("created_at ASC").
		First(&oldest).Error; err != nil {
		return 0, nil, fmt.Errorf("failed to find oldest verification attempt: %w", err)
	}
	oldestAt := oldest.CreatedAt
	return int(count), &oldestAt, nil
}

func (s *DatabaseStore) GetActiveCode(phone string) (string, error) {
	var vc models.VerificationCode
	err := s.db.
		Where("phone_number = ? AND used = ? AND expires_at > ?", phone, false, time.Now()).
		Order("created_at DESC").
		First(&vc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up active code: %w", err)
	}
	return vc.Code, nil
}
