package otp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/learnhub/user-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

// fakeStore is a behavioural in-test store so verify sequences exercise the
// real deletion/attempt semantics.
type fakeStore struct {
	entries map[string]*domain.PendingOTP
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: map[string]*domain.PendingOTP{}}
}

func (s *fakeStore) Put(_ context.Context, p *domain.PendingOTP) error {
	cp := *p
	s.entries[p.Identity] = &cp
	return nil
}

func (s *fakeStore) Get(_ context.Context, identity string) (*domain.PendingOTP, error) {
	p, ok := s.entries[identity]
	if !ok {
		return nil, fmt.Errorf("pending OTP: %w", domain.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) IncrementAttempts(_ context.Context, identity string) (int, error) {
	p, ok := s.entries[identity]
	if !ok {
		return 0, fmt.Errorf("pending OTP: %w", domain.ErrNotFound)
	}
	p.Attempts++
	return p.Attempts, nil
}

func (s *fakeStore) Delete(_ context.Context, identity string) error {
	delete(s.entries, identity)
	return nil
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Send(ctx context.Context, identity, code, purpose string) error {
	return m.Called(ctx, identity, code, purpose).Error(0)
}

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

type stubRandom struct{ code string }

func (r stubRandom) Digits(int) (string, error) { return r.code, nil }

// --- builder ---

func newTestService(store Store, nt Notifier, clk Clock, code string) Service {
	return NewService(ServiceDeps{
		Store:       store,
		Notifier:    nt,
		Clock:       clk,
		Random:      stubRandom{code: code},
		CodeLength:  6,
		TTL:         10 * time.Minute,
		MaxAttempts: 3,
	})
}

// --- Issue ---

func TestIssue_StoresSingleEntryAndDelivers(t *testing.T) {
	store := newFakeStore()
	nt := &mockNotifier{}
	clk := &fixedClock{now: time.Unix(1_700_000_000, 0)}
	nt.On("Send", mock.Anything, "a@x.com", "123456", domain.OTPPurposeVerification).Return(nil)

	svc := newTestService(store, nt, clk, "123456")
	code, err := svc.Issue(context.Background(), "a@x.com", domain.OTPPurposeVerification)

	require.NoError(t, err)
	assert.Equal(t, "123456", code)
	p := store.entries["a@x.com"]
	require.NotNil(t, p)
	assert.Equal(t, domain.OTPPurposeVerification, p.Purpose)
	assert.Equal(t, clk.now.Add(10*time.Minute).Unix(), p.ExpiresAt)
	assert.Equal(t, 0, p.Attempts)
	nt.AssertExpectations(t)
}

func TestIssue_OverwritesPriorEntryAcrossPurposes(t *testing.T) {
	store := newFakeStore()
	nt := &mockNotifier{}
	clk := &fixedClock{now: time.Unix(1_700_000_000, 0)}
	nt.On("Send", mock.Anything, "a@x.com", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(store, nt, clk, "111111")
	_, err := svc.Issue(context.Background(), "a@x.com", domain.OTPPurposeVerification)
	require.NoError(t, err)

	svc2 := newTestService(store, nt, clk, "222222")
	_, err = svc2.Issue(context.Background(), "a@x.com", domain.OTPPurposePasswordReset)
	require.NoError(t, err)

	require.Len(t, store.entries, 1)
	p := store.entries["a@x.com"]
	assert.Equal(t, "222222", p.Code)
	assert.Equal(t, domain.OTPPurposePasswordReset, p.Purpose)

	// the old code is gone for good
	err = svc.Verify(context.Background(), "a@x.com", "111111", domain.OTPPurposeVerification)
	assert.True(t, errors.Is(err, domain.ErrOTPInvalid))
}

func TestIssue_DeliveryFailure_SurfacesDistinctError(t *testing.T) {
	store := newFakeStore()
	nt := &mockNotifier{}
	clk := &fixedClock{now: time.Unix(1_700_000_000, 0)}
	nt.On("Send", mock.Anything, "a@x.com", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	svc := newTestService(store, nt, clk, "123456")
	_, err := svc.Issue(context.Background(), "a@x.com", domain.OTPPurposeVerification)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDeliveryFailed))
	assert.False(t, errors.Is(err, domain.ErrOTPInvalid))
	// stored code survives a failed send
	assert.Contains(t, store.entries, "a@x.com")
}

// --- Verify ---

func issueTo(t *testing.T, store *fakeStore, clk Clock, identity, code, purpose string) Service {
	t.Helper()
	nt := &mockNotifier{}
	nt.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc := newTestService(store, nt, clk, code)
	_, err := svc.Issue(context.Background(), identity, purpose)
	require.NoError(t, err)
	return svc
}

func TestVerify_HappyPath_ConsumesCode(t *testing.T) {
	store := newFakeStore()
	clk := &fixedClock{now: time.Unix(1_700_000_000, 0)}
	svc := issueTo(t, store, clk, "a@x.com", "123456", domain.OTPPurposeVerification)

	err := svc.Verify(context.Background(), "a@x.com", "123456", domain.OTPPurposeVerification)
	require.NoError(t, err)
	assert.Empty(t, store.entries)

	// replaying the same code must fail — the entry is gone
	err = svc.Verify(context.Background(), "a@x.com", "123456", domain.OTPPurposeVerification)
	assert.True(t, errors.Is(err, domain.ErrOTPInvalid))
}

func TestVerify_AbsentEntry(t *testing.T) {
	store := newFakeStore()
	clk := &fixedClock{now: time.Unix(1_700_000_000, 0)}
	svc := newTestService(store, &mockNotifier{}, clk, "123456")

	err := svc.Verify(context.Background(), "nobody@x.com", "123456", domain.OTPPurposeVerification)
	assert.True(t, errors.Is(err, domain.ErrOTPInvalid))
}

func TestVerify_PurposeMismatch_EntryRetainedNoAttemptCounted(t *testing.T) {
	store := newFakeStore()
	clk := &fixedClock{now: time.Unix(1_700_000_000, 0)}
	svc := issueTo(t, store, clk, "a@x.com", "123456", domain.OTPPurposeVerification)

	err := svc.Verify(context.Background(), "a@x.com", "123456", domain.OTPPurposePasswordReset)
	assert.True(t, errors.Is(err, domain.ErrOTPInvalid))

	p := store.entries["a@x.com"]
	require.NotNil(t, p)
	assert.Equal(t, 0, p.Attempts)

	// still redeemable under the right purpose
	require.NoError(t, svc.Verify(context.Background(), "a@x.com", "123456", domain.OTPPurposeVerification))
}

func TestVerify_Expired_EntryDeleted(t *testing.T) {
	store := newFakeStore()
	clk := &fixedClock{now: time.Unix(1_700_000_000, 0)}
	svc := issueTo(t, store, clk, "a@x.com", "123456", domain.OTPPurposeVerification)

	clk.now = clk.now.Add(11 * time.Minute)
	err := svc.Verify(context.Background(), "a@x.com", "123456", domain.OTPPurposeVerification)
	assert.True(t, errors.Is(err, domain.ErrOTPInvalid))
	assert.Empty(t, store.entries)
}

func TestVerify_WrongCode_AttemptCountedEntryRetained(t *testing.T) {
	store := newFakeStore()
	clk := &fixedClock{now: time.Unix(1_700_000_000, 0)}
	svc := issueTo(t, store, clk, "a@x.com", "123456", domain.OTPPurposeVerification)

	err := svc.Verify(context.Background(), "a@x.com", "000000", domain.OTPPurposeVerification)
	assert.True(t, errors.Is(err, domain.ErrOTPInvalid))

	p := store.entries["a@x.com"]
	require.NotNil(t, p)
	assert.Equal(t, 1, p.Attempts)
}

func TestVerify_FourWrongAttempts_ExhaustsAndDeletes(t *testing.T) {
	store := newFakeStore()
	clk := &fixedClock{now: time.Unix(1_700_000_000, 0)}
	svc := issueTo(t, store, clk, "a@x.com", "123456", domain.OTPPurposeVerification)

	for i := 0; i < 3; i++ {
		err := svc.Verify(context.Background(), "a@x.com", "000000", domain.OTPPurposeVerification)
		assert.True(t, errors.Is(err, domain.ErrOTPInvalid))
		assert.Contains(t, store.entries, "a@x.com")
	}

	// 4th attempt exceeds the limit and purges the entry
	err := svc.Verify(context.Background(), "a@x.com", "000000", domain.OTPPurposeVerification)
	assert.True(t, errors.Is(err, domain.ErrOTPInvalid))
	assert.Empty(t, store.entries)

	// even the correct code can't be redeemed now
	err = svc.Verify(context.Background(), "a@x.com", "123456", domain.OTPPurposeVerification)
	assert.True(t, errors.Is(err, domain.ErrOTPInvalid))
}

func TestVerify_FourthAttemptWithCorrectCode_StillFails(t *testing.T) {
	store := newFakeStore()
	clk := &fixedClock{now: time.Unix(1_700_000_000, 0)}
	svc := issueTo(t, store, clk, "a@x.com", "123456", domain.OTPPurposeVerification)

	for i := 0; i < 3; i++ {
		_ = svc.Verify(context.Background(), "a@x.com", "000000", domain.OTPPurposeVerification)
	}

	err := svc.Verify(context.Background(), "a@x.com", "123456", domain.OTPPurposeVerification)
	assert.True(t, errors.Is(err, domain.ErrOTPInvalid))
	assert.Empty(t, store.entries)
}

// --- defaults ---

func TestCryptoRandom_Digits(t *testing.T) {
	code, err := cryptoRandom{}.Digits(6)
	require.NoError(t, err)
	require.Len(t, code, 6)
	for _, c := range code {
		assert.True(t, c >= '0' && c <= '9')
	}
}
