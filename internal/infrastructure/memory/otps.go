package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/learnhub/user-service/internal/domain"
)

// OTPStore is the in-memory pending-OTP backend. A single mutex serialises
// every mutation, which gives the per-identity linearization the verify flow
// needs: no interleaved read-modify-write can lose an attempt increment or a
// delete. Losing the process loses everyone's in-flight OTP, so production
// deployments should prefer the DynamoDB backend.
type OTPStore struct {
	mu      sync.Mutex
	entries map[string]*domain.PendingOTP
}

func NewOTPStore() *OTPStore {
	return &OTPStore{entries: make(map[string]*domain.PendingOTP)}
}

// Put overwrites any existing entry for the identity, even one issued under a
// different purpose. Last write wins.
func (s *OTPStore) Put(_ context.Context, p *domain.PendingOTP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.entries[p.Identity] = &cp
	return nil
}

func (s *OTPStore) Get(_ context.Context, identity string) (*domain.PendingOTP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.entries[identity]
	if !ok {
		return nil, fmt.Errorf("pending OTP for %s: %w", identity, domain.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

// IncrementAttempts bumps the attempt counter and returns the new count.
func (s *OTPStore) IncrementAttempts(_ context.Context, identity string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.entries[identity]
	if !ok {
		return 0, fmt.Errorf("pending OTP for %s: %w", identity, domain.ErrNotFound)
	}
	p.Attempts++
	return p.Attempts, nil
}

func (s *OTPStore) Delete(_ context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, identity)
	return nil
}
