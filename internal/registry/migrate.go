// Package registry implements the durable sense store of spec.md §4.4: a
// single-file embedded SQLite database holding canonical senses plus two
// content-addressed caches (generation cache, WSD cache).
package registry

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/taigon-vocab/examprep/internal/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Registry is the sense registry: canonical senses, the generation cache,
// and the WSD cache, all in one SQLite file. Mutations are serialized
// through mu; reads proceed without it since WAL mode permits concurrent
// readers (spec §4.4).
type Registry struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *slog.Logger
}

// Open opens (creating if absent) the registry database at path, applies
// pending migrations, and sets WAL/NORMAL pragmas per spec §4.4's
// crash-safe-write requirement.
func Open(ctx context.Context, path string, busyTimeout time.Duration, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", path, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open registry db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping registry db: %w", err)
	}

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	migrationsSub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrationsSub)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("goose new provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("goose up: %w", err)
	}

	logger.Debug("registry opened", "path", path)
	return &Registry{db: db, logger: logger}, nil
}

// Close closes the underlying database handle.
func (r *Registry) Close() error {
	return r.db.Close()
}
