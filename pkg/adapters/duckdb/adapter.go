// Package duckdb provides a DuckDB database adapter for sakila-etl.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/leapstack-labs/sakila-etl/pkg/adapter"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new DuckDB adapter instance.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return Type
}

// Placeholder returns "?"; DuckDB binds positionally.
func (a *Adapter) Placeholder(int) string {
	return "?"
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" (or an empty path) for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := decodeParams(cfg.Params)
	if err != nil {
		return err
	}

	path := cfg.Path
	if path == "" {
		path = cfg.Database
	}
	if path == "" {
		path = ":memory:"
	}
	dsn := path
	if params.ReadOnly {
		dsn += "?access_mode=read_only"
	}

	a.Logger.Debug("connecting to duckdb", slog.String("path", path))

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := a.Attach(ctx, db, cfg); err != nil {
		return err
	}

	if err := a.applySettings(ctx, params.Settings); err != nil {
		_ = a.Close()
		return err
	}
	return nil
}

// applySettings runs SET for every configured session setting, in name order.
func (a *Adapter) applySettings(ctx context.Context, settings map[string]string) error {
	names := make([]string, 0, len(settings))
	for name := range settings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := strings.ReplaceAll(settings[name], "'", "''")
		stmt := fmt.Sprintf("SET %s = '%s'", name, value)
		if err := a.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply duckdb setting %s: %w", name, err)
		}
	}
	return nil
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
