package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	portssvc "github.com/retailops/ledger_service/internal/core/ports/services"
	"github.com/retailops/ledger_service/internal/core/services"
	"github.com/retailops/ledger_service/internal/events"
	"github.com/retailops/ledger_service/internal/handlers"
	"github.com/retailops/ledger_service/internal/middleware"
	"github.com/retailops/ledger_service/internal/repositories/database/pgsql"
	"github.com/retailops/ledger_service/pkg/config"
	"github.com/retailops/ledger_service/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title Ledger Service API
// @version 1.0
// @description Double-entry general ledger backend for multi-tenant retail accounting.

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	publisher := newEventPublisher(cfg, logger)

	repos := pgsql.NewRepositoryProvider(dbPool)
	serviceContainer := services.NewServiceContainer(repos, publisher)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	registerValidators(logger)

	r := gin.New()

	// Global middleware (logging, recovery, CORS, rate limiting)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(corsConfig(cfg)))
	r.Use(middleware.RateLimit(newIPLimiter(cfg, logger)))

	err = r.SetTrustedProxies(nil)
	if err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	stopTicker := startRecurringTicker(cfg, serviceContainer.Recurring, logger)
	defer stopTicker()

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// registerValidators teaches gin's validator to treat decimal.Decimal as
// a number, so numeric binding tags (gt, gte) work on amount fields.
func registerValidators(logger *slog.Logger) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		logger.Warn("Unexpected validator engine, custom validations disabled")
		return
	}
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	if cfg.CORSAllowedOrigins == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-Actor-ID")
	return corsCfg
}

// runMigrations applies pending schema migrations using a temporary
// database/sql connection over the pgx stdlib driver.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	if cfg.EnableDBCheck {
		if err := migrationDB.Ping(); err != nil {
			return err
		}
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// newEventPublisher picks the Redis publisher when REDIS_URL is set and
// falls back to log-only publishing otherwise.
func newEventPublisher(cfg *config.Config, logger *slog.Logger) portssvc.EventPublisher {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, domain events will only be logged.")
		return events.NewLogPublisher()
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error("Invalid REDIS_URL, falling back to log publisher", slog.String("error", err.Error()))
		return events.NewLogPublisher()
	}

	client := redis.NewClient(opts)
	logger.Info("Redis event publisher enabled", slog.String("addr", opts.Addr))
	return events.NewRedisPublisher(client)
}

// newIPLimiter builds the per-IP rate limiter from the configured rate,
// e.g. "100-M" for 100 requests per minute.
func newIPLimiter(cfg *config.Config, logger *slog.Logger) *limiter.Limiter {
	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid RATE_LIMIT, defaulting to 100-M", slog.String("error", err.Error()))
		rate, _ = limiter.NewRateFromFormatted("100-M")
	}
	return limiter.New(memory.NewStore(), rate)
}

// startRecurringTicker runs scheduler passes in the background until the
// returned stop function is called. A zero interval disables it.
func startRecurringTicker(cfg *config.Config, recurringService portssvc.RecurringSvcFacade, logger *slog.Logger) func() {
	if cfg.RecurringTickInterval <= 0 {
		logger.Info("Recurring journal ticker disabled.")
		return func() {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	ticker := time.NewTicker(cfg.RecurringTickInterval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				resp, err := recurringService.Tick(ctx, time.Now().UTC())
				if err != nil {
					logger.Error("Recurring journal tick failed", slog.String("error", err.Error()))
					continue
				}
				if len(resp.MaterializedJournalIDs) > 0 || resp.SkippedDuplicates > 0 || resp.Failures > 0 {
					logger.Info("Recurring journal tick completed",
						slog.Int("materialized", len(resp.MaterializedJournalIDs)),
						slog.Int("skipped_duplicates", resp.SkippedDuplicates),
						slog.Int("failures", resp.Failures),
					)
				}
			}
		}
	}()

	logger.Info("Recurring journal ticker started", slog.String("interval", cfg.RecurringTickInterval.String()))
	return cancel
}
