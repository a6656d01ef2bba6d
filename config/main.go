package config

import (
	"context"
	"fmt"
	"time"

	"github.com/akeren/go-waitlist/config/router"
	"github.com/akeren/go-waitlist/internal/log"
	"github.com/akeren/go-waitlist/web"
	"github.com/caarlos0/env/v11"
	"gorm.io/gorm"
)

type ApplicationConfig struct {
	DB              *gorm.DB
	RouterService   *router.RouterService
	Logger          *log.Logger
	Cache           Cache
	Config          *AppConfig
	TracingShutdown func(context.Context) error
}

type AppConfig struct {
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	RunMigrations  bool          `env:"RUN_MIGRATIONS" envDefault:"true"`
	CacheTTL       time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

func LoadAppConfig() (*AppConfig, error) {
	cfg, err := env.ParseAs[AppConfig]()
	if err != nil {
		return nil, fmt.Errorf("parse app config: %w", err)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = router.DefaultTimeoutDuration
	}
	return &cfg, nil
}

// shutdownTracing flushes and stops the tracer provider. A nil shutdown is a no-op.
func shutdownTracing(shutdown func(context.Context) error, logger *log.Logger) {
	if shutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown tracer provider", "error", err)
	}
}

func (ac *ApplicationConfig) Cleanup() {
	shutdownTracing(ac.TracingShutdown, ac.Logger)

	if ac.DB != nil {
		CloseDatabase(ac.DB, ac.Logger)
	}

	if ac.RouterService != nil {
		ac.RouterService.Cleanup()
	}

	if ac.Cache != nil {
		CloseCache(ac.Cache, ac.Logger)
	}

	ac.Logger.Info("Application cleanup completed")
}

func LoadApplicationConfiguration(ctx context.Context, logger *log.Logger) (*ApplicationConfig, error) {
	InitializeEnvFile(logger)

	appConfig, err := LoadAppConfig()
	if err != nil {
		return nil, err
	}

	dbCfg, err := LoadDBConfig()
	if err != nil {
		return nil, err
	}

	cacheCfg, err := LoadCacheConfig()
	if err != nil {
		return nil, err
	}

	tracingShutdown, err := SetupTracing(logger)
	if err != nil {
		return nil, err
	}

	db, err := NewDatabase(logger, dbCfg)
	if err != nil {
		shutdownTracing(tracingShutdown, logger)
		return nil, err
	}

	if appConfig.RunMigrations {
		if err := RunMigrations(ctx, logger, dbCfg); err != nil {
			CloseDatabase(db, logger)
			shutdownTracing(tracingShutdown, logger)
			return nil, err
		}
	} else {
		logger.Info("Skipping migrations (RUN_MIGRATIONS=false)")
	}

	templates, err := web.Templates()
	if err != nil {
		CloseDatabase(db, logger)
		shutdownTracing(tracingShutdown, logger)
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	cache := cacheCfg.NewCacheOrNil(logger)

	routerService := router.CreateRouterService(logger, &router.RouterConfig{
		RequestTimeout: appConfig.RequestTimeout,
		Templates:      templates,
		Static:         web.StaticFS(),
	})

	logger.Info("Application configuration loaded successfully")

	return &ApplicationConfig{
		DB:              db,
		RouterService:   routerService,
		Logger:          logger,
		Cache:           cache,
		Config:          appConfig,
		TracingShutdown: tracingShutdown,
	}, nil
}
