package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/akeren/go-waitlist/config"
	"github.com/akeren/go-waitlist/internal/log"
	"github.com/akeren/go-waitlist/pkg/migrations"
	"github.com/akeren/go-waitlist/pkg/utils"
)

func main() {
	logger := log.NewLoggerFromEnv()

	config.InitializeEnvFile(logger) // Load envs early for CLI consistency

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "migrate":
		if err := migrate(logger); err != nil {
			logger.Error("Database migration failed", "error", err.Error())
			os.Exit(1)
		}
		logger.Info("Database migrations completed")

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

// migrate applies the embedded schema, or the files under MIGRATIONS_DIR when it is set.
func migrate(logger *log.Logger) error {
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	migrationsDir := utils.GetEnvTrimmed("MIGRATIONS_DIR")
	if migrationsDir == "" {
		return config.RunMigrations(ctx, logger, dbCfg)
	}

	sqlDB, dialect, err := config.OpenMigrationDB(logger, dbCfg)
	if err != nil {
		return err
	}
	return migrations.Up(ctx, sqlDB, migrations.Config{
		Dialect: dialect,
		Dir:     migrationsDir,
		Logger:  logger,
	})
}

func printUsage() {
	fmt.Println("Usage: cli <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate  Apply database migrations and exit (APP_DB_DRIVER selects sqlite or postgres)")
	fmt.Println("  help     Show this message")
}
