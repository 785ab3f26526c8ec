// Package adapter provides the database adapter contract, a shared
// database/sql base, and the adapter registry for sakila-etl.
//
// Concrete adapter implementations live in pkg/adapters/ subdirectories and
// register themselves from init(). Import them with a blank identifier.
package adapter

import "github.com/leapstack-labs/sakila-etl/pkg/core"

// Type aliases so callers don't need to import pkg/core for adapter work.
type (
	// Adapter is an alias for core.Adapter.
	Adapter = core.Adapter

	// Config is an alias for core.AdapterConfig.
	Config = core.AdapterConfig

	// Rows is an alias for core.Rows.
	Rows = core.Rows
)
