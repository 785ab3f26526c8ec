// Package etl implements the table-reset-then-reload batch job: clear the
// reports folder, drop and recreate the summary tables, run the three
// analytical queries and write each result to its summary table and to a
// tab-separated report file.
//
// Every database-touching step opens its own connection through an
// adapter.Connector and closes it before returning. Steps log their own
// context and return explicit errors; Pipeline decides whether to continue.
package etl

import (
	"errors"
	"log/slog"
	"regexp"

	"github.com/leapstack-labs/sakila-etl/internal/sqlfiles"
	"github.com/leapstack-labs/sakila-etl/pkg/adapter"
)

// ErrInvalidIdentifier is returned for table or column names that are not
// plain SQL identifiers.
var ErrInvalidIdentifier = errors.New("invalid SQL identifier")

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Runner executes the individual ETL steps.
type Runner struct {
	Logger    *slog.Logger
	Connector adapter.Connector
	Scripts   *sqlfiles.Library
}

func (r *Runner) log() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}

// closeAdapter closes a and logs, rather than returns, a close failure.
func (r *Runner) closeAdapter(a adapter.Adapter) {
	if err := a.Close(); err != nil {
		r.log().Warn("failed to close database connection", "error", err)
	}
}
