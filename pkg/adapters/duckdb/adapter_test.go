package duckdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/sakila-etl/pkg/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_Connect(t *testing.T) {
	tests := []struct {
		name      string
		setupPath func(t *testing.T) string
		verify    func(t *testing.T, path string)
	}{
		{
			name: "in-memory",
			setupPath: func(_ *testing.T) string {
				return ":memory:"
			},
		},
		{
			name: "file-based",
			setupPath: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "sakila.duckdb")
			},
			verify: func(t *testing.T, path string) {
				_, err := os.Stat(path)
				assert.False(t, os.IsNotExist(err), "database file was not created")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			adp := New(nil)

			dbPath := tt.setupPath(t)
			require.NoError(t, adp.Connect(ctx, adapter.Config{Type: "duckdb", Path: dbPath}))
			defer func() { _ = adp.Close() }()

			if tt.verify != nil {
				tt.verify(t, dbPath)
			}
		})
	}
}

func TestAdapter_ExecQueryTx(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)
	require.NoError(t, adp.Connect(ctx, adapter.Config{Type: "duckdb"}))
	defer func() { _ = adp.Close() }()

	require.NoError(t, adp.Exec(ctx, "CREATE TABLE payment (amount DECIMAL(5,2))"))

	tx, err := adp.BeginTx(ctx)
	require.NoError(t, err)
	for _, amt := range []float64{0.99, 11.99} {
		_, err := tx.ExecContext(ctx, "INSERT INTO payment (amount) VALUES ("+adp.Placeholder(1)+")", amt)
		require.NoError(t, err)
	}
	require.NoError(t, tx.Commit())

	rows, err := adp.Query(ctx, "SELECT COUNT(*) FROM payment")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()
	require.True(t, rows.Next())
	var n int
	require.NoError(t, rows.Scan(&n))
	assert.Equal(t, 2, n)
}

func TestAdapter_Settings(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)
	cfg := adapter.Config{
		Type:   "duckdb",
		Params: map[string]any{"settings": map[string]any{"threads": 2}},
	}
	require.NoError(t, adp.Connect(ctx, cfg))
	defer func() { _ = adp.Close() }()

	rows, err := adp.Query(ctx, "SELECT current_setting('threads')")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()
	require.True(t, rows.Next())
	var threads int64
	require.NoError(t, rows.Scan(&threads))
	assert.Equal(t, int64(2), threads)
}

func TestDecodeParams(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]any
		want    Params
		wantErr bool
	}{
		{name: "nil", raw: nil},
		{
			name: "settings and read only",
			raw:  map[string]any{"settings": map[string]any{"memory_limit": "1GB"}, "read_only": "true"},
			want: Params{Settings: map[string]string{"memory_limit": "1GB"}, ReadOnly: true},
		},
		{name: "unknown key", raw: map[string]any{"extensions": []string{"httpfs"}}, wantErr: true},
		{name: "bad setting name", raw: map[string]any{"settings": map[string]any{"threads; DROP": "1"}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeParams(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdapter_NotConnected(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	require.ErrorIs(t, adp.Exec(ctx, "SELECT 1"), adapter.ErrNotConnected)
	_, err := adp.Query(ctx, "SELECT 1")
	require.ErrorIs(t, err, adapter.ErrNotConnected)
	assert.Equal(t, "duckdb", adp.DialectName())
	assert.Equal(t, "?", adp.Placeholder(3))
}
