package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrOTPInvalid collapses every OTP failure mode (missing, expired,
	// attempts exhausted, code mismatch) into one externally visible kind.
	// Internal logs distinguish the cases.
	ErrOTPInvalid = errors.New("invalid or expired OTP")

	// ErrTokenInvalid collapses bad signature, expiry and purpose mismatch.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrDeliveryFailed reports a notifier failure, distinct from any
	// verification failure.
	ErrDeliveryFailed = errors.New("failed to deliver OTP")
)

// RoleMismatchError is returned when an identity exists under a different
// role than the one submitted. It carries the actual role so clients can
// redirect to the right login flow.
type RoleMismatchError struct {
	ActualRole string
}

func (e *RoleMismatchError) Error() string {
	return fmt.Sprintf("role mismatch: account is registered as %s", e.ActualRole)
}

func (e *RoleMismatchError) Is(target error) bool {
	return target == ErrForbidden
}
