package etl

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sakila-etl/internal/sqlfiles"
	"github.com/leapstack-labs/sakila-etl/internal/testutil"
	"github.com/leapstack-labs/sakila-etl/pkg/adapter"
)

// mockAdapter serves every Open from one sqlmock handle and counts closes
// instead of closing the shared handle.
type mockAdapter struct {
	adapter.BaseSQLAdapter
	closes *int
}

func (m *mockAdapter) Connect(context.Context, adapter.Config) error { return nil }
func (m *mockAdapter) DialectName() string                         { return "mock" }
func (m *mockAdapter) Placeholder(int) string                      { return "?" }

func (m *mockAdapter) Close() error {
	*m.closes++
	return nil
}

type mockEnv struct {
	runner *Runner
	mock   sqlmock.Sqlmock
	opens  int
	closes int
}

func newMockEnv(t *testing.T) *mockEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	env := &mockEnv{mock: mock}
	env.runner = &Runner{
		Logger:  testutil.NewTestLogger(t),
		Scripts: sqlfiles.Embedded(""),
		Connector: adapter.ConnectorFunc(func(context.Context) (adapter.Adapter, error) {
			env.opens++
			return &mockAdapter{BaseSQLAdapter: adapter.BaseSQLAdapter{DB: db}, closes: &env.closes}, nil
		}),
	}
	return env
}
