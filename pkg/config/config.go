package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server       ServerConfig
	Upstream     UpstreamConfig
	Redis        RedisConfig
	NATS         NATSConfig
	Session      SessionConfig
	Verification VerificationConfig
	Checkout     CheckoutConfig
	Storage      StorageConfig
	CORS         CORSConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// UpstreamConfig points at the external platform API the portal is a thin
// client of. The portal never owns the data behind it.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type NATSConfig struct {
	URL string
}

type SessionConfig struct {
	Secret     string
	CookieName string
	TTL        time.Duration
}

type VerificationConfig struct {
	// CodeDuration is how long an emailed verification code stays usable.
	CodeDuration time.Duration
}

type CheckoutConfig struct {
	// PaymentDelay simulates the processing pause before a payment resolves.
	PaymentDelay time.Duration
}

type StorageConfig struct {
	// DataDir holds the file-backed draft carts when Redis is not configured.
	DataDir string
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Upstream: UpstreamConfig{
			BaseURL: getEnv("UPSTREAM_API_URL", "http://localhost:9000/api"),
			Timeout: getDuration("UPSTREAM_API_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL: getEnv("NATS_URL", ""),
		},
		Session: SessionConfig{
			Secret:     getEnv("SESSION_SECRET", "dev-only-secret-change-in-prod"),
			CookieName: getEnv("SESSION_COOKIE", "portal_session"),
			TTL:        getDuration("SESSION_TTL", 24*time.Hour),
		},
		Verification: VerificationConfig{
			CodeDuration: getDuration("VERIFICATION_CODE_DURATION", 300*time.Second),
		},
		Checkout: CheckoutConfig{
			PaymentDelay: getDuration("CHECKOUT_PAYMENT_DELAY", 2*time.Second),
		},
		Storage: StorageConfig{
			DataDir: getEnv("DATA_DIR", "./data"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return fallback
}
