package core

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Adapter defines the interface that all database adapters must implement.
type Adapter interface {
	// Connect establishes a connection to the database.
	Connect(ctx context.Context, cfg AdapterConfig) error

	// Close closes the database connection.
	Close() error

	// Exec executes a SQL statement that doesn't return rows.
	Exec(ctx context.Context, sql string) error

	// Query executes a SQL statement that returns rows.
	Query(ctx context.Context, sql string) (*Rows, error)

	// BeginTx starts a transaction on the connection.
	BeginTx(ctx context.Context) (*sql.Tx, error)

	// Placeholder returns the bind parameter marker for the n-th (1-based) argument.
	Placeholder(n int) string

	// DialectName returns the SQL dialect name (e.g. "mssql", "postgres").
	DialectName() string
}

// AdapterConfig is the connection descriptor: everything needed to open a
// database connection. It is built once per run and never persisted.
type AdapterConfig struct {
	Type     string
	Path     string
	Host     string
	Port     int
	Database string
	Username string
	Password string

	// Encrypt requests an encrypted (TLS) connection.
	Encrypt bool
	// TrustServerCertificate skips server certificate validation.
	TrustServerCertificate bool
	// ConnectTimeout bounds connection establishment. Zero means driver default.
	ConnectTimeout time.Duration

	Options map[string]string
	Params  map[string]any
}

// Redacted renders the descriptor for logs, never including the password.
func (c AdapterConfig) Redacted() string {
	if c.Path != "" {
		return fmt.Sprintf("%s:%s", c.Type, c.Path)
	}
	user := c.Username
	if user == "" {
		user = "-"
	}
	return fmt.Sprintf("%s://%s@%s:%d/%s", c.Type, user, c.Host, c.Port, c.Database)
}

// Rows wraps sql.Rows to provide a consistent interface.
type Rows struct {
	*sql.Rows
}
