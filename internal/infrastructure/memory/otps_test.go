package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/learnhub/user-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pending(identity, purpose, code string) *domain.PendingOTP {
	return &domain.PendingOTP{
		Identity:  identity,
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: time.Now().Add(10 * time.Minute).Unix(),
	}
}

func TestPut_OverwritesAcrossPurposes(t *testing.T) {
	s := NewOTPStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, pending("a@x.com", domain.OTPPurposeVerification, "111111")))
	require.NoError(t, s.Put(ctx, pending("a@x.com", domain.OTPPurposePasswordReset, "222222")))

	p, err := s.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", p.Code)
	assert.Equal(t, domain.OTPPurposePasswordReset, p.Purpose)
	assert.Equal(t, 0, p.Attempts)
}

func TestGet_Missing_ReturnsNotFound(t *testing.T) {
	s := NewOTPStore()
	_, err := s.Get(context.Background(), "nobody@x.com")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestGet_ReturnsCopy(t *testing.T) {
	s := NewOTPStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, pending("a@x.com", domain.OTPPurposeVerification, "111111")))

	p, err := s.Get(ctx, "a@x.com")
	require.NoError(t, err)
	p.Code = "mutated"

	p2, err := s.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "111111", p2.Code)
}

func TestIncrementAttempts_CountsUp(t *testing.T) {
	s := NewOTPStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, pending("a@x.com", domain.OTPPurposeVerification, "111111")))

	for want := 1; want <= 3; want++ {
		n, err := s.IncrementAttempts(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
}

func TestIncrementAttempts_Missing_ReturnsNotFound(t *testing.T) {
	s := NewOTPStore()
	_, err := s.IncrementAttempts(context.Background(), "nobody@x.com")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDelete_Idempotent(t *testing.T) {
	s := NewOTPStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, pending("a@x.com", domain.OTPPurposeVerification, "111111")))

	require.NoError(t, s.Delete(ctx, "a@x.com"))
	require.NoError(t, s.Delete(ctx, "a@x.com"))

	_, err := s.Get(ctx, "a@x.com")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestIncrementAttempts_ConcurrentNoLostUpdates(t *testing.T) {
	s := NewOTPStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, pending("a@x.com", domain.OTPPurposeVerification, "111111")))

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, _ = s.IncrementAttempts(ctx, "a@x.com")
		}()
	}
	wg.Wait()

	p, err := s.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, n, p.Attempts)
}
