package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"digimarket.backend/internal/config"
	"digimarket.backend/internal/infrastructure/datasources/postgres"
)

var (
	ErrSeedFileRequired = errors.New("seed file is required")
	ErrPasswordRequired = errors.New("password is required")
)

// deps are the process boundaries of the CLI, replaced in tests.
type deps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	open    func(cfg config.DatabaseConfig) (*sql.DB, *gorm.DB, error)
}

func defaultDeps() deps {
	return deps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		open: func(cfg config.DatabaseConfig) (*sql.DB, *gorm.DB, error) {
			sqlDB, err := postgres.Open(cfg)
			if err != nil {
				return nil, nil, err
			}
			db, err := postgres.Wrap(sqlDB)
			if err != nil {
				_ = sqlDB.Close()
				return nil, nil, err
			}
			return sqlDB, db, nil
		},
	}
}

// CommandFactory builds the subcommands on top of a lazily opened database.
type CommandFactory struct {
	deps  deps
	cfg   *config.Config
	sqlDB *sql.DB
	db    *gorm.DB
}

func newRootCmd(d deps) *cobra.Command {
	f := &CommandFactory{deps: d}

	rootCmd := &cobra.Command{
		Use:           "marketctl",
		Short:         "DigiMarket operations CLI",
		Long:          "marketctl runs schema migrations, seeds tenants and admins, backfills order earnings and hashes passwords.",
		SilenceUsage:  true,
		SilenceErrors: false,

		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := f.deps.loadEnv(); err != nil {
				log.Println("No .env file found, using environment variables")
			}
			f.cfg = f.deps.loadCfg()
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return f.close()
		},
	}

	rootCmd.AddCommand(
		f.NewMigrateCmd(),
		f.NewSeedCmd(),
		f.NewBackfillEarningsCmd(),
		f.NewHashPasswordCmd(),
	)
	return rootCmd
}

func (f *CommandFactory) connect() error {
	if f.db != nil {
		return nil
	}
	sqlDB, db, err := f.deps.open(f.cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	f.sqlDB, f.db = sqlDB, db
	return nil
}

func (f *CommandFactory) close() error {
	if f.sqlDB == nil {
		return nil
	}
	err := f.sqlDB.Close()
	f.sqlDB, f.db = nil, nil
	return err
}
