package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	// OTPStore selects the pending-OTP backend: "memory" | "dynamo".
	OTPStore       string
	OTPLength      int
	OTPTTL         time.Duration
	OTPMaxAttempts int

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	VerifyTokenTTL    time.Duration
	ResetTokenTTL     time.Duration
	SessionTokenTTL   time.Duration

	// NotifyChannel selects OTP delivery: "email" | "sms".
	NotifyChannel string
	SMTPHost      string
	SMTPPort      string
	SMTPFrom      string
	SMTPUsername  string
	SMTPPassword  string
	SNSRegion     string

	// GoogleClientID enables real Google ID-token verification on the
	// federated login path. When empty the caller-supplied profile is
	// trusted as-is.
	GoogleClientID string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users       string
	PendingOTPs string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "5000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:       getEnv("DYNAMO_TABLE_USERS", "users"),
			PendingOTPs: getEnv("DYNAMO_TABLE_PENDING_OTPS", "pending_otps"),
		},

		OTPStore:       getEnv("OTP_STORE", "memory"),
		OTPLength:      getEnvInt("OTP_LENGTH", 6),
		OTPTTL:         getEnvMinutes("OTP_TTL_MINUTES", 10),
		OTPMaxAttempts: getEnvInt("OTP_MAX_ATTEMPTS", 3),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		VerifyTokenTTL:    getEnvMinutes("VERIFY_TOKEN_TTL_MINUTES", 30),
		ResetTokenTTL:     getEnvMinutes("RESET_TOKEN_TTL_MINUTES", 15),
		SessionTokenTTL:   time.Duration(getEnvInt("SESSION_TOKEN_TTL_DAYS", 7)) * 24 * time.Hour,

		NotifyChannel: getEnv("NOTIFY_CHANNEL", "email"),
		SMTPHost:      getEnv("SMTP_HOST", "localhost"),
		SMTPPort:      getEnv("SMTP_PORT", "1025"),
		SMTPFrom:      getEnv("SMTP_FROM", "LearnHub <noreply@learnhub.io>"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SNSRegion:     getEnv("SNS_REGION", "us-east-1"),

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvMinutes(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Minute
}
