package domain

// OTP purposes. A pending code is only redeemable for the purpose it was
// issued under.
const (
	OTPPurposeVerification  = "verification"
	OTPPurposePasswordReset = "password_reset"
)

// PendingOTP is the single in-flight one-time code for an identity.
// At most one exists per identity; issuing a new code overwrites any
// existing one, even across purposes.
// ExpiresAt is a Unix timestamp; in the DynamoDB backend it doubles as the TTL attribute.
type PendingOTP struct {
	Identity  string `json:"identity" dynamodbav:"identity"`
	Purpose   string `json:"purpose" dynamodbav:"purpose"`
	Code      string `json:"code" dynamodbav:"code"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"`
	Attempts  int    `json:"attempts" dynamodbav:"attempts"`
}
