package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// RedisURL enables the Redis event publisher when set. Empty means
	// events only go to the structured log.
	RedisURL string

	// RecurringTickInterval is how often the scheduler materializes due
	// recurring journals. Zero disables the background ticker.
	RecurringTickInterval time.Duration

	// Rate limiting, e.g. "100-M" for 100 requests per minute.
	RateLimit string

	// CORSAllowedOrigins is a comma-separated origin list. "*" allows all.
	CORSAllowedOrigins string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("RECURRING_TICK_INTERVAL", "1m")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")

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

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.RedisURL = viper.GetString("REDIS_URL")

	tickIntervalStr := viper.GetString("RECURRING_TICK_INTERVAL")
	tickInterval, err := time.ParseDuration(tickIntervalStr)
	if err != nil {
		tickInterval = time.Minute
		if tickIntervalStr != "" {
			log.Printf("Warning: Invalid value for RECURRING_TICK_INTERVAL ('%s'). Defaulting to %s.\n", tickIntervalStr, tickInterval.String())
		}
	}
	cfg.RecurringTickInterval = tickInterval

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	if cfg.RateLimit == "" {
		cfg.RateLimit = "100-M"
	}

	cfg.CORSAllowedOrigins = viper.GetString("CORS_ALLOWED_ORIGINS")

	return cfg, nil
}
