package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	MigrationsPath    string
	DBMaxConns        int32
	DBConnectTimeout  time.Duration
	Port              string
	IsProduction      bool
	EnableDBCheck     bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Messaging
	RabbitMQURL          string
	NotificationExchange string
	OutboxPollInterval   time.Duration
	OutboxBatchSize      int

	// Rates
	RedisURL            string
	RateCacheTTL        time.Duration
	RateProviderTimeout time.Duration
	BinanceBaseURL      string
	FxBaseURL           string

	// Scheduled jobs
	NotificationCleanupSchedule string
	RateWarmupSchedule          string

	// HTTP edge
	LoginRateLimit     string
	APIRateLimit       string
	PosthogAPIKey      string
	PosthogEndpoint    string
	CORSAllowedOrigins []string

	// First admin account, created when no admin exists.
	BootstrapAdminUsername string
	BootstrapAdminPassword string
	BootstrapAdminEmail    string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_CONNECT_TIMEOUT", "5s")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "ebank-backoffice")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("NOTIFICATION_EXCHANGE", "ebank.notifications")
	viper.SetDefault("OUTBOX_POLL_INTERVAL", "1200ms")
	viper.SetDefault("OUTBOX_BATCH_SIZE", 50)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("RATE_CACHE_TTL", "30s")
	viper.SetDefault("RATE_PROVIDER_TIMEOUT", "5s")
	viper.SetDefault("BINANCE_BASE_URL", "https://api.binance.com")
	viper.SetDefault("FX_BASE_URL", "https://api.exchangerate-api.com")
	viper.SetDefault("NOTIFICATION_CLEANUP_SCHEDULE", "@hourly")
	viper.SetDefault("RATE_WARMUP_SCHEDULE", "@every 1m")
	viper.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	viper.SetDefault("API_RATE_LIMIT", "100-M")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "https://eu.i.posthog.com")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("BOOTSTRAP_ADMIN_USERNAME", "")
	viper.SetDefault("BOOTSTRAP_ADMIN_PASSWORD", "")
	viper.SetDefault("BOOTSTRAP_ADMIN_EMAIL", "")

	// Environment variables override defaults and .env values.
	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")
	cfg.DBMaxConns = viper.GetInt32("DB_MAX_CONNS")
	if cfg.DBMaxConns <= 0 {
		cfg.DBMaxConns = 10
	}
	cfg.DBConnectTimeout = durationOrDefault("DB_CONNECT_TIMEOUT", 5*time.Second)

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	// Load JWT Secret
	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.JWTExpiryDuration = durationOrDefault("JWT_EXPIRY_DURATION", time.Hour)

	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "ebank-backoffice"
		log.Printf("Warning: JWT_ISSUER not set. Defaulting to %s.\n", cfg.JWTIssuer)
	}

	cfg.RabbitMQURL = viper.GetString("RABBITMQ_URL")
	if cfg.RabbitMQURL == "" {
		log.Println("Warning: RABBITMQ_URL not set. Notification events will be stored but not published.")
	}
	cfg.NotificationExchange = viper.GetString("NOTIFICATION_EXCHANGE")
	cfg.OutboxPollInterval = durationOrDefault("OUTBOX_POLL_INTERVAL", 1200*time.Millisecond)
	cfg.OutboxBatchSize = viper.GetInt("OUTBOX_BATCH_SIZE")
	if cfg.OutboxBatchSize <= 0 {
		cfg.OutboxBatchSize = 50
	}

	cfg.RedisURL = viper.GetString("REDIS_URL")
	cfg.RateCacheTTL = durationOrDefault("RATE_CACHE_TTL", 30*time.Second)
	cfg.RateProviderTimeout = durationOrDefault("RATE_PROVIDER_TIMEOUT", 5*time.Second)
	cfg.BinanceBaseURL = strings.TrimRight(viper.GetString("BINANCE_BASE_URL"), "/")
	cfg.FxBaseURL = strings.TrimRight(viper.GetString("FX_BASE_URL"), "/")

	cfg.NotificationCleanupSchedule = viper.GetString("NOTIFICATION_CLEANUP_SCHEDULE")
	cfg.RateWarmupSchedule = viper.GetString("RATE_WARMUP_SCHEDULE")

	cfg.LoginRateLimit = viper.GetString("LOGIN_RATE_LIMIT")
	cfg.APIRateLimit = viper.GetString("API_RATE_LIMIT")
	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.PosthogEndpoint = viper.GetString("POSTHOG_ENDPOINT")
	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))

	cfg.BootstrapAdminUsername = viper.GetString("BOOTSTRAP_ADMIN_USERNAME")
	cfg.BootstrapAdminPassword = viper.GetString("BOOTSTRAP_ADMIN_PASSWORD")
	cfg.BootstrapAdminEmail = viper.GetString("BOOTSTRAP_ADMIN_EMAIL")

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	return cfg, nil
}

func durationOrDefault(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
