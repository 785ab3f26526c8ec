// Package core defines the shared language of the sakila-etl system.
//
// This package contains:
//   - Tabular results (Schema, Result) and their text encoding
//   - The database adapter contract (Adapter, AdapterConfig)
//   - Run history entities (Run, StepRun)
//
// The Golden Rule: pkg/core imports ONLY the standard library.
// All other packages depend on core, not the reverse.
package core
