package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/leapstack-labs/sakila-etl/pkg/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	tests := []struct {
		name     string
		config   adapter.Config
		expected string
	}{
		{
			name: "basic connection",
			config: adapter.Config{
				Host:     "localhost",
				Port:     5432,
				Database: "sakila",
				Username: "user",
				Password: "pass",
			},
			expected: "host=localhost port=5432 dbname=sakila sslmode=disable user=user password=pass",
		},
		{
			name: "encrypted with trusted certificate",
			config: adapter.Config{
				Host:                   "prod.example.com",
				Database:               "sakila",
				Username:               "admin",
				Encrypt:                true,
				TrustServerCertificate: true,
				ConnectTimeout:         30 * time.Second,
			},
			expected: "host=prod.example.com port=5432 dbname=sakila sslmode=require user=admin connect_timeout=30",
		},
		{
			name: "encrypted and verified",
			config: adapter.Config{
				Database: "sakila",
				Encrypt:  true,
			},
			expected: "host=localhost port=5432 dbname=sakila sslmode=verify-full",
		},
		{
			name: "explicit sslmode and extra options",
			config: adapter.Config{
				Database: "sakila",
				Options:  map[string]string{"sslmode": "prefer", "search_path": "public", "application_name": "sakila etl"},
			},
			expected: "host=localhost port=5432 dbname=sakila sslmode=prefer application_name='sakila etl' search_path=public",
		},
		{
			name: "password needing quotes",
			config: adapter.Config{
				Database: "sakila",
				Password: `it's secret`,
			},
			expected: `host=localhost port=5432 dbname=sakila sslmode=disable password='it\'s secret'`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildPostgresDSN(tt.config))
		})
	}
}

func TestAdapter_Dialect(t *testing.T) {
	a := New(nil)
	assert.Equal(t, "postgres", a.DialectName())
	assert.Equal(t, "$1", a.Placeholder(1))
	assert.Equal(t, "$4", a.Placeholder(4))
}

func TestAdapter_NotConnected(t *testing.T) {
	tests := []struct {
		name      string
		operation func(ctx context.Context, a *Adapter) error
	}{
		{
			name: "exec without connect",
			operation: func(ctx context.Context, a *Adapter) error {
				return a.Exec(ctx, "SELECT 1")
			},
		},
		{
			name: "query without connect",
			operation: func(ctx context.Context, a *Adapter) error {
				_, err := a.Query(ctx, "SELECT 1")
				return err
			},
		},
		{
			name: "begin without connect",
			operation: func(ctx context.Context, a *Adapter) error {
				_, err := a.BeginTx(ctx)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.operation(context.Background(), New(nil))
			require.ErrorIs(t, err, adapter.ErrNotConnected)
		})
	}
}
