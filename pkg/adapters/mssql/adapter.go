// Package mssql provides a Microsoft SQL Server database adapter for sakila-etl.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/leapstack-labs/sakila-etl/pkg/adapter"

	_ "github.com/microsoft/go-mssqldb" // sqlserver driver
)

// DefaultPort is the SQL Server listener port used when none is given.
const DefaultPort = 1433

// Adapter implements the adapter.Adapter interface for SQL Server.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQL Server adapter instance.
// If logger is nil, a discard logger is used.
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

// Placeholder returns the go-mssqldb ordinal parameter marker.
func (a *Adapter) Placeholder(n int) string {
	return "@p" + strconv.Itoa(n)
}

// Connect establishes a connection to SQL Server.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn := buildMSSQLDSN(cfg)

	a.Logger.Debug("connecting to sql server", slog.String("target", cfg.Redacted()))

	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlserver connection: %w", err)
	}
	db.SetMaxOpenConns(1)

	return a.Attach(ctx, db, cfg)
}

// splitServer parses server addresses in the forms accepted by SQL Server
// clients: "host", "tcp:host", "host,port" and "tcp:host,port".
func splitServer(addr string, port int) (string, int) {
	host := strings.TrimSpace(addr)
	host = strings.TrimPrefix(host, "tcp:")
	if h, p, ok := strings.Cut(host, ","); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			host, port = h, n
		}
	}
	if port == 0 {
		port = DefaultPort
	}
	return host, port
}

// buildMSSQLDSN constructs a sqlserver:// connection URL.
func buildMSSQLDSN(cfg adapter.Config) string {
	host, port := splitServer(cfg.Host, cfg.Port)
	if host == "" {
		host = "localhost"
	}

	u := &url.URL{
		Scheme: "sqlserver",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
	}
	if cfg.Username != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}

	q := url.Values{}
	if cfg.Database != "" {
		q.Set("database", cfg.Database)
	}
	q.Set("encrypt", strconv.FormatBool(cfg.Encrypt))
	q.Set("TrustServerCertificate", strconv.FormatBool(cfg.TrustServerCertificate))
	if cfg.ConnectTimeout > 0 {
		q.Set("connection timeout", strconv.Itoa(int(cfg.ConnectTimeout.Seconds())))
	}
	q.Set("app name", "sakila-etl")
	for k, v := range cfg.Options {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
