package cli

import (
	"fmt"
	"os"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pvlink/pvlink/internal/config"
)

// mustLoadConfig loads the configuration, exiting on failure. CLI commands
// are short-lived, so hard exits here are fine.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// mustOpenDatabase connects to the configured relational store, exiting on
// failure.
func mustOpenDatabase(cfg *config.Config) (*gorm.DB, func()) {
	gormCfg := &gorm.Config{TranslateError: true}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.Database.DSN), gormCfg)
	default:
		db, err = gorm.Open(sqlite.Open(cfg.Database.DSN), gormCfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to database: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get underlying SQL database: %v\n", err)
		os.Exit(1)
	}

	return db, func() { _ = sqlDB.Close() }
}
