package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/onlyfriends-app/backend/internal/storage"
	"github.com/onlyfriends-app/backend/internal/utils"
)

// VerificationService is the boundary the API layer calls: request a code
// for a phone number, confirm a code for a phone number. All state lives in
// the store, so any number of service instances can run concurrently.
type VerificationService struct {
	store      storage.Store
	limiter    *RateLimiter
	dispatcher Dispatcher
	codeLength int
	codeTTL    time.Duration

	// Per-phone locks serialize the supersede-then-insert sequence within
	// this process. Two concurrent requests for the same number would
	// otherwise both delete then both insert, leaving two live codes.
	mu    sync.Mutex
	locks map[string]*phoneLock
}

type phoneLock struct {
	mu   sync.Mutex
	refs int
}

// RequestCodeResult is the successful outcome of RequestCode.
type RequestCodeResult struct {
	AttemptsRemaining int
	MessageID         string
	// DevCode is set when the dispatcher ran in development mode and the
	// code was never sent anywhere.
	DevCode string
}

// NewVerificationService wires the orchestrator from its collaborators.
func NewVerificationService(store storage.Store, limiter *RateLimiter, dispatcher Dispatcher, codeLength int, codeTTL time.Duration) *VerificationService {
	return &VerificationService{
		store:      store,
		limiter:    limiter,
		dispatcher: dispatcher,
		codeLength: codeLength,
		codeTTL:    codeTTL,
		locks:      make(map[string]*phoneLock),
	}
}

func (s *VerificationService) lockPhone(phone string) func() {
	s.mu.Lock()
	l, ok := s.locks[phone]
	if !ok {
		l = &phoneLock{}
		s.locks[phone] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, phone)
		}
		s.mu.Unlock()
	}
}

// RequestCode issues a fresh verification code for rawPhone and hands it to
// the dispatcher. A still-unexpired previous code is superseded. Returns a
// *RateLimitError when the number has exhausted its issuance window.
func (s *VerificationService) RequestCode(rawPhone string) (*RequestCodeResult, error) {
	phone := utils.NormalizePhone(rawPhone)
	unlock := s.lockPhone(phone)
	defer unlock()

	limit := s.limiter.Check(phone, time.Now())
	if !limit.Allowed {
		return nil, &RateLimitError{
			AttemptsCount: limit.AttemptsCount,
			RetryAfter:    limit.NextAllowedAt,
		}
	}

	code, err := utils.GenerateCode(s.codeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}

	if _, err := s.store.StoreCode(phone, code, s.codeTTL); err != nil {
		return nil, err
	}

	result, err := s.dispatcher.SendVerificationCode(phone, code)
	if err != nil {
		// The row was written before dispatch, so a valid but undelivered
		// code stays live until it expires or is superseded. Flag it loudly.
		log.Printf("❌ SMS dispatch failed for %s; undelivered code row remains live: %v", phone, err)
		return nil, err
	}

	return &RequestCodeResult{
		AttemptsRemaining: s.limiter.MaxAttempts() - (limit.AttemptsCount + 1),
		MessageID:         result.MessageID,
		DevCode:           result.DevCode,
	}, nil
}

// ConfirmCode consumes the code for rawPhone. A code confirms at most once;
// wrong, expired, superseded, and already-used codes all come back as
// ErrInvalidOrExpiredCode.
func (s *VerificationService) ConfirmCode(rawPhone, code string) error {
	phone := utils.NormalizePhone(rawPhone)

	ok, err := s.store.ConsumeCode(phone, code)
	if err != nil {
		return fmt.Errorf("failed to verify code: %w", err)
	}
	if !ok {
		return ErrInvalidOrExpiredCode
	}
	return nil
}

// ActiveCode returns the live code for rawPhone, or "" when there is none.
// Backs the non-production inspection endpoint only.
func (s *VerificationService) ActiveCode(rawPhone string) (string, error) {
	return s.store.GetActiveCode(utils.NormalizePhone(rawPhone))
}
