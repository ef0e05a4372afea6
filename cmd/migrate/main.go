// Command migrate manages the catalog snapshot schema.
//
//	migrate -config configs/dev.yaml up
//	migrate down 1
//	migrate status
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"go.uber.org/zap"

	"github.com/cory-johannsen/artifactsbot/internal/config"
	"github.com/cory-johannsen/artifactsbot/internal/observability"
	"github.com/cory-johannsen/artifactsbot/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] up|down [steps]|status\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	logger, err := observability.NewLogger(cfg.Logging, "migrate")
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg.Database, flag.Args(), logger); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
}

func run(db config.DatabaseConfig, args []string, logger *zap.Logger) error {
	if !db.Enabled {
		return errors.New("database.enabled is false; nothing to migrate")
	}
	if len(args) == 0 {
		args = []string{"up"}
	}
	steps := 0
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid step count %q", args[1])
		}
		steps = n
	}

	m, err := postgres.NewMigrator(db)
	if err != nil {
		return err
	}
	defer m.Close()

	switch args[0] {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	case "status":
	default:
		return fmt.Errorf("unknown action %q", args[0])
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("schema already current")
	} else if err != nil {
		return err
	}

	version, dirty, verr := m.Version()
	if errors.Is(verr, migrate.ErrNilVersion) {
		logger.Info("schema empty")
		return nil
	} else if verr != nil {
		return fmt.Errorf("reading schema version: %w", verr)
	}
	logger.Info("schema version",
		zap.String("action", args[0]),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}
