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
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	LogLevel       string
	MigrationsPath string

	JWTSecret string
	JWTIssuer string

	CORSAllowedOrigins []string
	RateLimit          string // ulule/limiter format, e.g. "300-M"

	// Platform account receiving tips and the currency it settles in.
	PlatformCollectiveID string
	PlatformCurrency     string

	// Order locks older than this are considered stale.
	OrderLockStaleAfter time.Duration
	// Interval of the stale lock sweep, in minutes.
	OrderLockSweepIntervalMinutes uint64
	// Daily time (HH:MM) at which owed settlements are invoiced.
	SettlementInvoiceAt string
	EnableCron          bool
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "host-ledger")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("PLATFORM_COLLECTIVE_ID", "")
	viper.SetDefault("PLATFORM_CURRENCY", "USD")
	viper.SetDefault("ORDER_LOCK_STALE_AFTER", "5m")
	viper.SetDefault("ORDER_LOCK_SWEEP_INTERVAL_MINUTES", 5)
	viper.SetDefault("SETTLEMENT_INVOICE_AT", "03:00")
	viper.SetDefault("ENABLE_CRON", true)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	jwtSecret := viper.GetString("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	staleAfterStr := viper.GetString("ORDER_LOCK_STALE_AFTER")
	staleAfter, err := time.ParseDuration(staleAfterStr)
	if err != nil || staleAfter <= 0 {
		staleAfter = 5 * time.Minute
		log.Printf("Warning: Invalid value for ORDER_LOCK_STALE_AFTER ('%s'). Defaulting to %s.\n", staleAfterStr, staleAfter.String())
	}

	sweepInterval := viper.GetUint64("ORDER_LOCK_SWEEP_INTERVAL_MINUTES")
	if sweepInterval == 0 {
		sweepInterval = 5
		log.Printf("Warning: ORDER_LOCK_SWEEP_INTERVAL_MINUTES must be positive. Defaulting to %d.\n", sweepInterval)
	}

	invoiceAt := viper.GetString("SETTLEMENT_INVOICE_AT")
	if _, err := time.Parse("15:04", invoiceAt); err != nil {
		invoiceAt = "03:00"
		log.Printf("Warning: Invalid value for SETTLEMENT_INVOICE_AT. Defaulting to %s.\n", invoiceAt)
	}

	cfg.PlatformCollectiveID = viper.GetString("PLATFORM_COLLECTIVE_ID")
	if cfg.PlatformCollectiveID == "" {
		log.Println("Warning: PLATFORM_COLLECTIVE_ID not set. Platform tips will be rejected.")
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.LogLevel = strings.ToLower(viper.GetString("LOG_LEVEL"))
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")
	cfg.JWTSecret = jwtSecret
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	cfg.CORSAllowedOrigins = splitAndTrim(viper.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.PlatformCurrency = strings.ToUpper(viper.GetString("PLATFORM_CURRENCY"))
	cfg.OrderLockStaleAfter = staleAfter
	cfg.OrderLockSweepIntervalMinutes = sweepInterval
	cfg.SettlementInvoiceAt = invoiceAt
	cfg.EnableCron = viper.GetBool("ENABLE_CRON")

	return cfg, nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
