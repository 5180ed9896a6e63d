package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Gateway  GatewayConfig
	Payment  PaymentConfig
	Payout   PayoutConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Firebase FirebaseConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	RateLimit    int
	RateWindow   time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// JWTConfig only carries what is needed to validate access tokens; tokens are
// issued by the identity service.
type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

// GatewayConfig for the mobile-money payment/payout gateway.
type GatewayConfig struct {
	BaseURL        string
	Email          string
	Password       string
	Currency       string
	WebhookBaseURL string // callbacks go to WebhookBaseURL + /api/v1/webhooks/gateway
	WebhookSecret  string
	Timeout        time.Duration
	Stub           bool // use the in-process stub gateway (development)
}

type PaymentConfig struct {
	MinAmount    int64
	PollInterval time.Duration
	PollTimeout  time.Duration
}

type PayoutConfig struct {
	CommissionBps int64 // 1800 = 18%
	MinWithdrawal int64
	Narration     string
}

type RedisConfig struct {
	URL string // empty disables redis-backed locks and rate limiting
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type FirebaseConfig struct {
	ServiceAccountPath string
}

// WorkerConfig controls the in-process background loops started by cmd/server.
type WorkerConfig struct {
	Enabled            bool
	ExpiryInterval     time.Duration
	ReconcileInterval  time.Duration
	ReconcileAfter     time.Duration
	ReconcileBatchSize int
	LockTTL            time.Duration
}

func Load() *Config {
	_ = godotenv.Load()
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8099"),
			Env:          getEnv("APP_ENV", "development"),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 90*time.Second),
			RateLimit:    getEnvInt("RATE_LIMIT", 100),
			RateWindow:   getEnvDuration("RATE_WINDOW", 60*time.Second),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DATABASE_DSN", "supportly:supportly@tcp(localhost:3306)/supportly?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_ACCESS_SECRET", "change-me-in-production"),
			AccessExpiry: getEnvDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			Issuer:       getEnv("JWT_ISSUER", "supportly"),
		},
		Gateway: GatewayConfig{
			BaseURL:        strings.TrimSuffix(getEnv("GATEWAY_BASE_URL", "https://api.sandbox.momo-gateway.example"), "/"),
			Email:          getEnv("GATEWAY_EMAIL", ""),
			Password:       getEnv("GATEWAY_PASSWORD", ""),
			Currency:       getEnv("GATEWAY_CURRENCY", "UGX"),
			WebhookBaseURL: strings.TrimSuffix(getEnv("GATEWAY_WEBHOOK_BASE_URL", ""), "/"),
			WebhookSecret:  getEnv("GATEWAY_WEBHOOK_SECRET", ""),
			Timeout:        getEnvDuration("GATEWAY_TIMEOUT", 30*time.Second),
			Stub:           getEnvBool("GATEWAY_STUB", false),
		},
		Payment: PaymentConfig{
			MinAmount:    getEnvInt64("PAYMENT_MIN_AMOUNT", 500),
			PollInterval: getEnvDuration("PAYMENT_POLL_INTERVAL", 2*time.Second),
			PollTimeout:  getEnvDuration("PAYMENT_POLL_TIMEOUT", 60*time.Second),
		},
		Payout: PayoutConfig{
			CommissionBps: getEnvInt64("PAYOUT_COMMISSION_BPS", 1800),
			MinWithdrawal: getEnvInt64("PAYOUT_MIN_WITHDRAWAL", 5000),
			Narration:     getEnv("PAYOUT_NARRATION", "Creator earnings withdrawal"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "supportly.payments"),
		},
		Firebase: FirebaseConfig{
			ServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		},
		Worker: WorkerConfig{
			Enabled:            getEnvBool("WORKER_ENABLED", true),
			ExpiryInterval:     getEnvDuration("WORKER_EXPIRY_INTERVAL", 15*time.Minute),
			ReconcileInterval:  getEnvDuration("WORKER_RECONCILE_INTERVAL", 5*time.Minute),
			ReconcileAfter:     getEnvDuration("WORKER_RECONCILE_AFTER", 10*time.Minute),
			ReconcileBatchSize: getEnvInt("WORKER_RECONCILE_BATCH", 100),
			LockTTL:            getEnvDuration("WORKER_LOCK_TTL", 2*time.Minute),
		},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
