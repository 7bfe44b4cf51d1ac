// Package config reads service settings from the environment, after
// loading a .env file when one is present.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type Config struct {
	Port string

	StoreDriver string
	DatabaseURL string
	MongoURI    string
	MongoDB     string

	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	JWTSecret   string
	CORSOrigins []string

	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	SMTPSender string
	AdminEmail string

	StripeSecretKey     string
	StripeWebhookSecret string
	PaymentCurrency     string
}

// Load reads .env (if any) and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config.Load] no .env file, using environment")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:                get("PORT", "8083"),
		StoreDriver:         strings.ToLower(get("STORE_DRIVER", DriverPostgres)),
		DatabaseURL:         get("DATABASE_URL", ""),
		MongoURI:            get("MONGO_URI", ""),
		MongoDB:             get("MONGO_DB", "rentease"),
		RedisAddr:           get("REDIS_ADDR", ""),
		RedisPassword:       get("REDIS_PASSWORD", ""),
		JWTSecret:           get("JWT_SECRET", ""),
		SMTPHost:            get("SMTP_HOST", ""),
		SMTPUser:            get("SMTP_USER", ""),
		SMTPPass:            get("SMTP_PASS", ""),
		SMTPSender:          get("SMTP_SENDER", ""),
		AdminEmail:          get("ADMIN_EMAIL", ""),
		StripeSecretKey:     get("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: get("STRIPE_WEBHOOK_SECRET", ""),
		PaymentCurrency:     strings.ToLower(get("PAYMENT_CURRENCY", "inr")),
	}

	for _, o := range strings.Split(get("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	port, err := strconv.Atoi(get("SMTP_PORT", "465"))
	if err != nil {
		return Config{}, fmt.Errorf("config: SMTP_PORT: %w", err)
	}
	cfg.SMTPPort = port

	ttl, err := time.ParseDuration(get("CACHE_TTL", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("config: CACHE_TTL: %w", err)
	}
	cfg.CacheTTL = ttl

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings the selected store driver depends on.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the %s driver", c.StoreDriver)
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("config: MONGO_URI is required for the %s driver", c.StoreDriver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

func (c Config) MailEnabled() bool { return c.SMTPHost != "" && c.SMTPSender != "" }

func (c Config) PaymentsEnabled() bool { return c.StripeSecretKey != "" }

func (c Config) CacheEnabled() bool { return c.RedisAddr != "" }
