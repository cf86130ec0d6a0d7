package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var files embed.FS

const (
	dir          = "sql"
	versionTable = "goose_db_version"
)

var ErrUnknownCommand = errors.New("unknown migration command")

// Migrator applies the embedded schema with goose.
type Migrator struct {
	db *sql.DB
}

func NewMigrator(db *sql.DB) (*Migrator, error) {
	goose.SetBaseFS(files)
	goose.SetTableName(versionTable)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	return &Migrator{db: db}, nil
}

// Up migrates to the latest version.
func (m *Migrator) Up(ctx context.Context) error {
	return goose.UpContext(ctx, m.db, dir)
}

// Down rolls back the most recent migration.
func (m *Migrator) Down(ctx context.Context) error {
	return goose.DownContext(ctx, m.db, dir)
}

// Status prints the applied state of every migration through goose's logger.
func (m *Migrator) Status(ctx context.Context) error {
	return goose.StatusContext(ctx, m.db, dir)
}

func (m *Migrator) Version(ctx context.Context) (int64, error) {
	return goose.GetDBVersionContext(ctx, m.db)
}

// Run dispatches a CLI command name.
func (m *Migrator) Run(ctx context.Context, command string) error {
	switch command {
	case "up":
		return m.Up(ctx)
	case "down":
		return m.Down(ctx)
	case "status":
		return m.Status(ctx)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
}

// Files lists the embedded migration file names in order.
func Files() ([]string, error) {
	entries, err := files.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
