package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/learnhub/user-service/internal/domain"
)

// Store holds at most one pending code per identity. Put overwrites any
// existing entry, IncrementAttempts is atomic, and backends must serialise
// per-identity mutations.
type Store interface {
	Put(ctx context.Context, p *domain.PendingOTP) error
	Get(ctx context.Context, identity string) (*domain.PendingOTP, error)
	IncrementAttempts(ctx context.Context, identity string) (int, error)
	Delete(ctx context.Context, identity string) error
}

// Notifier delivers a code to an identity. Implementations must not panic
// past this boundary; any send problem comes back as an error.
type Notifier interface {
	Send(ctx context.Context, identity, code, purpose string) error
}

// Clock supplies the current time for expiry checks; injectable for tests.
type Clock interface {
	Now() time.Time
}

// RandomSource yields uniformly distributed digit strings; injectable for tests.
type RandomSource interface {
	Digits(n int) (string, error)
}

type Service interface {
	// Issue generates and stores a fresh code, then delivers it. Delivery
	// problems surface as domain.ErrDeliveryFailed, distinct from any
	// verification failure; the stored code stays put either way.
	Issue(ctx context.Context, identity, purpose string) (string, error)
	// Verify redeems a code. Every failure mode maps to domain.ErrOTPInvalid.
	Verify(ctx context.Context, identity, code, purpose string) error
}

type ServiceDeps struct {
	Store       Store
	Notifier    Notifier
	Clock       Clock        // defaults to the system clock
	Random      RandomSource // defaults to crypto/rand digits
	CodeLength  int
	TTL         time.Duration
	MaxAttempts int
}

type service struct {
	store       Store
	notifier    Notifier
	clock       Clock
	random      RandomSource
	codeLength  int
	ttl         time.Duration
	maxAttempts int
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		store:       deps.Store,
		notifier:    deps.Notifier,
		clock:       deps.Clock,
		random:      deps.Random,
		codeLength:  deps.CodeLength,
		ttl:         deps.TTL,
		maxAttempts: deps.MaxAttempts,
	}
	if s.clock == nil {
		s.clock = systemClock{}
	}
	if s.random == nil {
		s.random = cryptoRandom{}
	}
	if s.codeLength <= 0 {
		s.codeLength = 6
	}
	if s.ttl <= 0 {
		s.ttl = 10 * time.Minute
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = 3
	}
	return s
}

func (s *service) Issue(ctx context.Context, identity, purpose string) (string, error) {
	code, err := s.random.Digits(s.codeLength)
	if err != nil {
		return "", err
	}
	p := &domain.PendingOTP{
		Identity:  identity,
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: s.clock.Now().Add(s.ttl).Unix(),
	}
	if err := s.store.Put(ctx, p); err != nil {
		return "", err
	}
	// Deliver after the store write so a slow notifier never holds a store
	// lock. The code may reach the store slightly before delivery confirms.
	if err := s.notifier.Send(ctx, identity, code, purpose); err != nil {
		slog.Warn("OTP delivery failed", "identity", identity, "purpose", purpose, "err", err)
		return "", fmt.Errorf("send OTP: %w", domain.ErrDeliveryFailed)
	}
	return code, nil
}

func (s *service) Verify(ctx context.Context, identity, code, purpose string) error {
	p, err := s.store.Get(ctx, identity)
	if err != nil {
		slog.Debug("OTP verify: no pending code", "identity", identity)
		return fmt.Errorf("no pending code: %w", domain.ErrOTPInvalid)
	}

	// Wrong purpose leaves the entry untouched; the code may still be
	// redeemed under the purpose it was issued for.
	if p.Purpose != purpose {
		slog.Debug("OTP verify: purpose mismatch", "identity", identity, "want", purpose, "have", p.Purpose)
		return fmt.Errorf("purpose mismatch: %w", domain.ErrOTPInvalid)
	}

	if s.clock.Now().Unix() > p.ExpiresAt {
		if err := s.store.Delete(ctx, identity); err != nil {
			slog.Warn("failed to delete expired OTP", "identity", identity, "err", err)
		}
		slog.Debug("OTP verify: expired", "identity", identity)
		return fmt.Errorf("code expired: %w", domain.ErrOTPInvalid)
	}

	attempts, err := s.store.IncrementAttempts(ctx, identity)
	if err != nil {
		return fmt.Errorf("no pending code: %w", domain.ErrOTPInvalid)
	}
	if attempts > s.maxAttempts {
		if err := s.store.Delete(ctx, identity); err != nil {
			slog.Warn("failed to delete exhausted OTP", "identity", identity, "err", err)
		}
		slog.Debug("OTP verify: attempts exhausted", "identity", identity, "attempts", attempts)
		return fmt.Errorf("attempts exhausted: %w", domain.ErrOTPInvalid)
	}

	if p.Code != code {
		slog.Debug("OTP verify: code mismatch", "identity", identity, "attempts", attempts)
		return fmt.Errorf("code mismatch: %w", domain.ErrOTPInvalid)
	}

	// Success consumes the code; a replay of the same code must fail.
	if err := s.store.Delete(ctx, identity); err != nil {
		slog.Warn("failed to delete redeemed OTP", "identity", identity, "err", err)
	}
	return nil
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// cryptoRandom draws each digit independently from crypto/rand so codes are
// uniform over the full keyspace, leading zeros included.
type cryptoRandom struct{}

func (cryptoRandom) Digits(n int) (string, error) {
	b := make([]byte, n)
	for i := range b {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b[i] = '0' + byte(d.Int64())
	}
	return string(b), nil
}
