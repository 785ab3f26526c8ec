package etl

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sakila-etl/internal/sqlfiles"
	"github.com/leapstack-labs/sakila-etl/pkg/core"
)

func TestRunQuery(t *testing.T) {
	tests := []struct {
		name     string
		rel      string
		schema   core.Schema
		match    string
		rows     func() *sqlmock.Rows
		expected [][]string
	}{
		{
			name:   "payments single row",
			rel:    sqlfiles.PaymentsQuery,
			schema: core.PaymentsSchema,
			match:  "FROM payment",
			rows: func() *sqlmock.Rows {
				return sqlmock.NewRows([]string{"Records", "Minimum", "Maximum", "Total", "Average"}).
					AddRow(int64(500), 0.99, 11.99, 4955.01, 9.91)
			},
			expected: [][]string{{"500", "0.99", "11.99", "4955.01", "9.91"}},
		},
		{
			name:   "duration with byte encoded decimals",
			rel:    sqlfiles.FilmDurationQuery,
			schema: core.DurationSchema,
			match:  "FROM film",
			rows: func() *sqlmock.Rows {
				return sqlmock.NewRows([]string{"Minimum", "Maximum", "Total", "Average"}).
					AddRow(int64(46), int64(185), int64(115272), []byte("115.2720"))
			},
			expected: [][]string{{"46", "185", "115272", "115.2720"}},
		},
		{
			name:   "aggregate over empty table yields nulls",
			rel:    sqlfiles.FilmDurationQuery,
			schema: core.DurationSchema,
			match:  "FROM film",
			rows: func() *sqlmock.Rows {
				return sqlmock.NewRows([]string{"Minimum", "Maximum", "Total", "Average"}).
					AddRow(nil, nil, nil, nil)
			},
			expected: [][]string{{"", "", "", ""}},
		},
		{
			name:   "no rows",
			rel:    sqlfiles.ProfitableActorsQuery,
			schema: core.ProfitableActorsSchema,
			match:  "FROM actor",
			rows: func() *sqlmock.Rows {
				return sqlmock.NewRows([]string{"ActorID", "FirstName", "LastName", "TotalSale"})
			},
			expected: [][]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newMockEnv(t)
			env.mock.ExpectQuery(tt.match).WillReturnRows(tt.rows())

			result, err := env.runner.RunQuery(context.Background(), tt.rel, tt.schema)
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.Equal(t, tt.schema, result.Columns())
			assert.Equal(t, len(tt.expected), result.Len())
			if len(tt.expected) > 0 {
				assert.Equal(t, tt.expected, result.StringRows())
			}
			assert.NoError(t, env.mock.ExpectationsWereMet())
			assert.Equal(t, 1, env.closes)
		})
	}
}

func TestRunQuery_ArityMismatch(t *testing.T) {
	env := newMockEnv(t)
	env.mock.ExpectQuery("FROM payment").WillReturnRows(
		sqlmock.NewRows([]string{"Records", "Minimum"}).AddRow(int64(1), 0.99))

	result, err := env.runner.RunQuery(context.Background(), sqlfiles.PaymentsQuery, core.PaymentsSchema)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrArity)
	assert.Nil(t, result)
	assert.Equal(t, 1, env.closes)
}

func TestRunQuery_MissingScript(t *testing.T) {
	env := newMockEnv(t)
	env.runner.Scripts = sqlfiles.FromDir(t.TempDir(), "")

	result, err := env.runner.RunQuery(context.Background(), sqlfiles.PaymentsQuery, core.PaymentsSchema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SQL file not found")
	assert.Nil(t, result)
	assert.Zero(t, env.opens, "no connection before the script is read")
}

func TestRunQuery_DatabaseError(t *testing.T) {
	env := newMockEnv(t)
	env.mock.ExpectQuery("FROM payment").WillReturnError(errors.New("invalid object name 'payment'"))

	result, err := env.runner.RunQuery(context.Background(), sqlfiles.PaymentsQuery, core.PaymentsSchema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid object name")
	assert.Nil(t, result)
	assert.Equal(t, 1, env.closes)
}

func TestRunQuery_RowError(t *testing.T) {
	env := newMockEnv(t)
	env.mock.ExpectQuery("FROM actor").WillReturnRows(
		sqlmock.NewRows([]string{"ActorID", "FirstName", "LastName", "TotalSale"}).
			AddRow(int64(107), "GINA", "DEGENERES", 3442.49).
			RowError(0, errors.New("connection reset")))

	result, err := env.runner.RunQuery(context.Background(), sqlfiles.ProfitableActorsQuery, core.ProfitableActorsSchema)
	require.Error(t, err)
	assert.Nil(t, result)
}
