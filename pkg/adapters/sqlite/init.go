package sqlite

import (
	"log/slog"

	"github.com/leapstack-labs/sakila-etl/pkg/adapter"
)

// Type is the target.type value that selects this adapter.
const Type = "sqlite"

func init() {
	adapter.Register(Type, factory)
}

func factory(logger *slog.Logger) adapter.Adapter { return New(logger) }
