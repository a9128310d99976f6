// Package store persists the story bible (binder tree, characters, locations
// and plot threads) in a single SQLite file.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/storyloom/storyloom/internal/schema"
	"github.com/storyloom/storyloom/internal/tools"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLite owns the SQLite handle and hands out the typed stores.
type SQLite struct {
	db   *sql.DB
	path string

	binder      *BinderStore
	characters  *CharacterStore
	locations   *LocationStore
	plotThreads *PlotThreadStore
}

// Open opens (creating if needed) the database at path and applies pending
// migrations.
func Open(ctx context.Context, path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// modernc serialises writers anyway; one connection keeps the pragmas stable.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &SQLite{db: db, path: path}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	s.binder = &BinderStore{db: db}
	s.characters = newCharacterStore(db)
	s.locations = newLocationStore(db)
	s.plotThreads = newPlotThreadStore(db)
	return s, nil
}

func (s *SQLite) migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		slog.Debug("Migration applied", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLite) Close() error { return s.db.Close() }

// Path returns the database file location.
func (s *SQLite) Path() string { return s.path }

func (s *SQLite) Binder() *BinderStore { return s.binder }
func (s *SQLite) Characters() *CharacterStore { return s.characters }
func (s *SQLite) Locations() *LocationStore { return s.locations }
func (s *SQLite) PlotThreads() *PlotThreadStore { return s.plotThreads }

// ToolStores exposes the typed stores as the tool registry's collaborators.
func (s *SQLite) ToolStores() tools.Stores {
	return tools.Stores{
		BinderItems: s.binder,
		Metadata:    s.binder,
		Characters:  s.characters,
		Locations:   s.locations,
		PlotThreads: s.plotThreads,
	}
}

// Stats summarises one book for the status command.
type Stats struct {
	BinderItems int64
	Words       int64
	Characters  int64
	Locations   int64
	PlotThreads int64
	FileBytes   int64
}

// Stats counts the rows belonging to scope's book.
func (s *SQLite) Stats(ctx context.Context, scope schema.Scope) (Stats, error) {
	var st Stats
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(word_count), 0) FROM binder_items WHERE user_id = ? AND book_id = ?`,
		scope.UserID, scope.BookID)
	if err := row.Scan(&st.BinderItems, &st.Words); err != nil {
		return st, fmt.Errorf("count binder items: %w", err)
	}

	for table, dst := range map[string]*int64{
		"characters":   &st.Characters,
		"locations":    &st.Locations,
		"plot_threads": &st.PlotThreads,
	} {
		q := "SELECT COUNT(*) FROM " + table + " WHERE user_id = ? AND book_id = ?"
		if err := s.db.QueryRowContext(ctx, q, scope.UserID, scope.BookID).Scan(dst); err != nil {
			return st, fmt.Errorf("count %s: %w", table, err)
		}
	}

	for _, f := range []string{s.path, s.path + "-wal"} {
		if info, err := os.Stat(f); err == nil {
			st.FileBytes += info.Size()
		}
	}
	return st, nil
}
