package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL is required.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Queue transport: "memory" (single process) or "redis" (shared)
	QueueTransport string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	QueueKeyPrefix string

	// Email (Postmark)
	PostmarkServerToken  string
	PostmarkAccountToken string
	EmailFrom            string
	EmailReplyTo         string

	// Push (FCM legacy HTTP API)
	FCMBaseURL   string
	FCMServerKey string
	PushTimeout  time.Duration

	// SMS
	SMSEnabled     bool
	SMSProvider    string // "twilio" or "vonage"
	SMSTimeout     time.Duration
	TwilioBaseURL  string
	TwilioSID      string
	TwilioToken    string
	TwilioFrom     string
	VonageBaseURL  string
	VonageKey      string
	VonageSecret   string
	VonageFrom     string

	// Worker pool size (one pool is shared across all channels)
	Workers int

	// Rate limiting: maximum deliveries per second per channel
	RateLimit int

	// Retry backoff durations: index 0 = first retry delay, etc.
	RetryBackoff []time.Duration
	MaxAttempts  int

	// Queue depth gauge refresh
	DepthInterval time.Duration
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 5)),

		QueueTransport: getEnv("QUEUE_TRANSPORT", "memory"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getInt("REDIS_DB", 0),
		QueueKeyPrefix: getEnv("QUEUE_KEY_PREFIX", "notifyd:queue"),

		PostmarkServerToken:  getEnv("POSTMARK_SERVER_TOKEN", ""),
		PostmarkAccountToken: getEnv("POSTMARK_ACCOUNT_TOKEN", ""),
		EmailFrom:            getEnv("EMAIL_FROM", "no-reply@fidelize.fr"),
		EmailReplyTo:         getEnv("EMAIL_REPLY_TO", ""),

		FCMBaseURL:   getEnv("FCM_BASE_URL", "https://fcm.googleapis.com"),
		FCMServerKey: getEnv("FCM_SERVER_KEY", ""),
		PushTimeout:  getDuration("PUSH_TIMEOUT", 10*time.Second),

		SMSEnabled:    getBool("SMS_ENABLED", false),
		SMSProvider:   getEnv("SMS_PROVIDER", "twilio"),
		SMSTimeout:    getDuration("SMS_TIMEOUT", 10*time.Second),
		TwilioBaseURL: getEnv("TWILIO_BASE_URL", "https://api.twilio.com"),
		TwilioSID:     getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFrom:    getEnv("TWILIO_FROM", ""),
		VonageBaseURL: getEnv("VONAGE_BASE_URL", "https://rest.nexmo.com"),
		VonageKey:     getEnv("VONAGE_API_KEY", ""),
		VonageSecret:  getEnv("VONAGE_API_SECRET", ""),
		VonageFrom:    getEnv("VONAGE_FROM", ""),

		Workers: getInt("WORKERS", 10),

		RateLimit: getInt("RATE_LIMIT_PER_CHANNEL", 100),

		RetryBackoff: []time.Duration{
			getDuration("RETRY_BACKOFF_1", 5*time.Second),
			getDuration("RETRY_BACKOFF_2", 30*time.Second),
			getDuration("RETRY_BACKOFF_3", 120*time.Second),
		},
		MaxAttempts: getInt("MAX_DELIVERY_ATTEMPTS", 3),

		DepthInterval: getDuration("QUEUE_DEPTH_INTERVAL", 5*time.Second),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
