package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Stripe   StripeConfig
	PayPal   PayPalConfig
	Creem    CreemConfig
	Redis    RedisConfig
	Sweeper  SweeperConfig
	Credits  CreditsConfig
	Catalog  CatalogConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

// AppConfig holds the public URLs the payment flow redirects through.
type AppConfig struct {
	ProjectName   string
	WebURL        string
	PaySuccessURL string
	PayCancelURL  string
	AdminEmail    string
	AdminPassword string
}

type StripeConfig struct {
	Enabled       bool
	SecretKey     string
	PublicKey     string
	WebhookSecret string
}

type PayPalConfig struct {
	Enabled      bool
	ClientID     string
	ClientSecret string
	WebhookID    string
	BaseURL      string // sandbox or live API host
}

type CreemConfig struct {
	Enabled       bool
	APIKey        string
	WebhookSecret string
	TestMode      bool
	BaseURL       string
	// ProductIDs maps our product_id to the Creem product id created in their dashboard.
	ProductIDs map[string]string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SweeperConfig struct {
	// Spec is a 6-field cron expression (seconds included).
	Spec string
	// OrderTTL is how long a created order may sit unpaid before the sweeper expires it.
	OrderTTL time.Duration
	LockKey  string
	LockTTL  time.Duration
}

type CreditsConfig struct {
	ImageGenCost int
}

type CatalogConfig struct {
	// Path to a JSON pricing file; empty means the built-in catalog.
	Path string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getenv("PORT", "8090"),
			Env:          getenv("APP_ENV", "development"),
			ReadTimeout:  getdur("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getdur("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			DSN:             getenv("DATABASE_DSN", "shipfire:shipfire@tcp(localhost:3306)/shipfire?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    getint("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getint("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getdur("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		JWT: JWTConfig{
			AccessSecret: getenv("JWT_ACCESS_SECRET", "change-me-in-production"),
			AccessExpiry: getdur("JWT_ACCESS_EXPIRY", 24*time.Hour),
			Issuer:       getenv("JWT_ISSUER", "shipfire"),
		},
		App: AppConfig{
			ProjectName:   getenv("PROJECT_NAME", "ShipFire"),
			WebURL:        getenv("WEB_URL", "http://localhost:3000"),
			PaySuccessURL: getenv("PAY_SUCCESS_URL", "/"),
			PayCancelURL:  getenv("PAY_CANCEL_URL", ""),
			AdminEmail:    getenv("ADMIN_EMAIL", "admin@shipfire.local"),
			AdminPassword: getenv("ADMIN_PASSWORD", ""),
		},
		Stripe: StripeConfig{
			Enabled:       getbool("PAYMENT_STRIPE_ENABLED", false),
			SecretKey:     getenv("STRIPE_PRIVATE_KEY", ""),
			PublicKey:     getenv("STRIPE_PUBLIC_KEY", ""),
			WebhookSecret: getenv("STRIPE_WEBHOOK_SECRET", ""),
		},
		PayPal: PayPalConfig{
			Enabled:      getbool("PAYMENT_PAYPAL_ENABLED", false),
			ClientID:     getenv("PAYPAL_CLIENT_ID", ""),
			ClientSecret: getenv("PAYPAL_CLIENT_SECRET", ""),
			WebhookID:    getenv("PAYPAL_WEBHOOK_ID", ""),
			BaseURL: func() string {
				if getenv("PAYPAL_ENVIRONMENT", "sandbox") == "live" {
					return "https://api-m.paypal.com"
				}
				return "https://api-m.sandbox.paypal.com"
			}(),
		},
		Creem: CreemConfig{
			Enabled:       getbool("PAYMENT_CREEM_ENABLED", false),
			APIKey:        getenv("CREEM_API_KEY", ""),
			WebhookSecret: getenv("CREEM_WEBHOOK_SECRET", ""),
			TestMode:      getbool("CREEM_TEST_MODE", true),
			BaseURL:       getenv("CREEM_API_URL", "https://api.creem.io"),
			ProductIDs:    getmap("CREEM_PRODUCT_IDS", nil),
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", "localhost:6379"),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getint("REDIS_DB", 0),
		},
		Sweeper: SweeperConfig{
			Spec:     getenv("SWEEPER_CRON", "0 0 2 * * *"),
			OrderTTL: getdur("SWEEPER_ORDER_TTL", 24*time.Hour),
			LockKey:  getenv("SWEEPER_LOCK_KEY", "order_sweep_lock"),
			LockTTL:  getdur("SWEEPER_LOCK_TTL", 5*time.Minute),
		},
		Credits: CreditsConfig{
			ImageGenCost: getint("IMAGE_GEN_CREDIT_COST", 1),
		},
		Catalog: CatalogConfig{
			Path: getenv("PRICING_CATALOG_PATH", ""),
		},
	}
}

// EnabledProviders returns the provider enable flags as a set keyed by provider name.
func (c *Config) EnabledProviders() map[string]bool {
	return map[string]bool{
		"stripe": c.Stripe.Enabled,
		"paypal": c.PayPal.Enabled,
		"creem":  c.Creem.Enabled,
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// getmap parses "key1=val1,key2=val2" pairs.
func getmap(key string, def map[string]string) map[string]string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	out := make(map[string]string)
	for _, pair := range strings.Split(v, ",") {
		kv := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(kv) == 2 && kv[0] != "" {
			out[kv[0]] = kv[1]
		}
	}
	return out
}
