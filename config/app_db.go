package config

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/akeren/go-waitlist/internal/log"
	schema "github.com/akeren/go-waitlist/migrations"
	"github.com/akeren/go-waitlist/pkg/migrations"
	"github.com/akeren/go-waitlist/pkg/retry"
	"github.com/caarlos0/env/v11"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DBConfig struct {
	Driver          string        `env:"APP_DB_DRIVER" envDefault:"sqlite"`
	DatabaseURL     string        `env:"APP_DATABASE_URL"`
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"waitlist.db"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"100"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1m"`
	SSLMode         string        // Fallback when POSTGRES_SSLMODE is unset
	ConnectAttempts int           `env:"DB_CONNECT_ATTEMPTS" envDefault:"5"`
}

func LoadDBConfig() (*DBConfig, error) {
	cfg, err := env.ParseAs[DBConfig]()
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	cfg.Driver = strings.ToLower(sanitizeEnv(cfg.Driver))
	cfg.DatabaseURL = sanitizeEnv(cfg.DatabaseURL)
	cfg.SQLitePath = sanitizeEnv(cfg.SQLitePath)
	if cfg.SSLMode == "" {
		cfg.SSLMode = "require"
	}

	switch cfg.Driver {
	case DriverPostgres, DriverSQLite:
	case "postgresql":
		cfg.Driver = DriverPostgres
	case "sqlite3":
		cfg.Driver = DriverSQLite
	default:
		return nil, fmt.Errorf("unsupported APP_DB_DRIVER %q (want %q or %q)", cfg.Driver, DriverPostgres, DriverSQLite)
	}

	return &cfg, nil
}

func NewDatabase(logger *log.Logger, cfg *DBConfig) (*gorm.DB, error) {
	if cfg == nil {
		loaded, err := LoadDBConfig()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	dialector, err := cfg.dialector(logger)
	if err != nil {
		return nil, err
	}

	attempts := cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}
	policy := retry.NewExponentialBackoff(&retry.Config{
		MaxAttempts: attempts,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Multiplier:  2.0,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			logger.Warn("Database connection attempt failed", "driver", cfg.Driver, "attempt", attempt, "retry_in", delay, "error", err)
		},
	})

	var gdb *gorm.DB
	err = policy.Do(context.Background(), func() error {
		opened, openErr := gorm.Open(dialector, &gorm.Config{TranslateError: true})
		if openErr != nil {
			return openErr
		}
		gdb = opened
		return nil
	})
	if err != nil {
		logger.Error("Failed to connect to database", "driver", cfg.Driver, "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		logger.Error("Failed to get database instance", "error", err)
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// One writer at a time; more connections only produce "database is locked".
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.Ping(); err != nil {
		logger.Error("Database ping failed", "error", err)
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info("Database connection established successfully", "driver", cfg.Driver)
	return gdb, nil
}

func (cfg *DBConfig) dialector(logger *log.Logger) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverSQLite:
		logger.Info("Connecting to database", "driver", DriverSQLite, "path", cfg.SQLitePath)
		return sqlite.Open(cfg.sqliteDSN()), nil
	default:
		dsn, err := cfg.postgresDSN(logger)
		if err != nil {
			return nil, err
		}
		return postgres.Open(dsn), nil
	}
}

func (cfg *DBConfig) sqliteDSN() string {
	path := cfg.SQLitePath
	if path == "" {
		path = "waitlist.db"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_busy_timeout=5000"
}

func (cfg *DBConfig) postgresDSN(logger *log.Logger) (string, error) {
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		logger.Info("Using APP_DATABASE_URL for database connection")
		return cfg.DatabaseURL, nil
	}

	host, portStr, user, pass, dbName, ssl := getDatabaseEnvParams()
	if ssl == "" {
		ssl = cfg.SSLMode
	}

	missing := []string{}

	if host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}

	if portStr == "" {
		missing = append(missing, "POSTGRES_PORT")
	}

	if user == "" {
		missing = append(missing, "POSTGRES_USER")
	}

	if dbName == "" {
		missing = append(missing, "POSTGRES_DB_NAME")
	}

	if len(missing) > 0 {
		logger.Error("Missing required database environment variables", "missing_vars", strings.Join(missing, ", "))

		return "", fmt.Errorf("missing required database env vars: %s", strings.Join(missing, ", "))
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		logger.Error("Invalid POSTGRES_PORT", "error", err)
		return "", fmt.Errorf("invalid POSTGRES_PORT %q: %w", portStr, err)
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, pass, dbName, ssl,
	)

	logger.Info("Connecting to database",
		"driver", DriverPostgres,
		"host", host,
		"port", port,
		"user", user,
		"dbname", dbName,
		"sslmode", ssl,
	)
	return dsn, nil
}

func getDatabaseEnvParams() (host, port, user, pass, dbName, ssl string) {
	host = sanitizeEnv(GetValueFromEnvironmentVariable("POSTGRES_HOST", ""))
	port = sanitizeEnv(GetValueFromEnvironmentVariable("POSTGRES_PORT", ""))
	user = sanitizeEnv(GetValueFromEnvironmentVariable("POSTGRES_USER", ""))
	pass = sanitizeEnv(GetValueFromEnvironmentVariable("POSTGRES_PASSWORD", ""))
	dbName = sanitizeEnv(GetValueFromEnvironmentVariable("POSTGRES_DB_NAME", ""))
	ssl = sanitizeEnv(GetValueFromEnvironmentVariable("POSTGRES_SSLMODE", ""))

	return host, port, user, pass, dbName, ssl
}

func sanitizeEnv(v string) string {
	s := strings.TrimSpace(v)

	if len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')) {
		s = s[1 : len(s)-1]
	}

	return s
}

// OpenMigrationDB opens a plain database/sql handle for the migration runner, which closes it
// when done. It must not be the pool behind the application's *gorm.DB.
func OpenMigrationDB(logger *log.Logger, cfg *DBConfig) (*sql.DB, string, error) {
	switch cfg.Driver {
	case DriverSQLite:
		db, err := sql.Open("sqlite3", cfg.sqliteDSN())
		if err != nil {
			return nil, "", fmt.Errorf("open sqlite migration connection: %w", err)
		}
		return db, migrations.DialectSQLite, nil
	default:
		dsn, err := cfg.postgresDSN(logger)
		if err != nil {
			return nil, "", err
		}
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, "", fmt.Errorf("open postgres migration connection: %w", err)
		}
		return db, migrations.DialectPostgres, nil
	}
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, logger *log.Logger, cfg *DBConfig) error {
	db, dialect, err := OpenMigrationDB(logger, cfg)
	if err != nil {
		return err
	}

	if err := migrations.Up(ctx, db, migrations.Config{
		Dialect: dialect,
		FS:      schema.FS,
		Logger:  logger,
	}); err != nil {
		logger.Error("Database migration failed", "error", err)
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func CloseDatabase(db *gorm.DB, logger *log.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get SQL DB instance", "error", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		logger.Error("Failed to close database", "error", err)
	} else {
		logger.Info("Database closed successfully")
	}
}
