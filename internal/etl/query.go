package etl

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/sakila-etl/pkg/core"
)

// RunQuery reads the script serving rel, executes it without parameters on
// a fresh connection and projects every row positionally onto schema. A
// result whose column count differs from the schema arity fails with
// core.ErrArity. On any failure the returned result is nil.
func (r *Runner) RunQuery(ctx context.Context, rel string, schema core.Schema) (*core.Result, error) {
	logger := r.log().With("script", r.Scripts.Location(rel))
	logger.Info("Starting query")

	stmt, err := r.Scripts.Read(rel)
	if err != nil {
		logger.Error("Error reading query", "error", err)
		return nil, err
	}

	a, err := r.Connector.Open(ctx)
	if err != nil {
		logger.Error("Error executing query", "error", err)
		return nil, fmt.Errorf("query %s: %w", rel, err)
	}
	defer r.closeAdapter(a)

	data, err := fetchAll(ctx, a, stmt, schema)
	if err != nil {
		logger.Error("Error executing query", "error", err)
		return nil, fmt.Errorf("query %s: %w", rel, err)
	}

	result, err := core.NewResult(schema, data)
	if err != nil {
		logger.Error("Error building result", "error", err)
		return nil, fmt.Errorf("query %s: %w", rel, err)
	}

	logger.Info("Query results successfully retrieved", "rows", result.Len())
	return result, nil
}

// fetchAll executes stmt and scans every row into generic values.
func fetchAll(ctx context.Context, a core.Adapter, stmt string, schema core.Schema) ([][]any, error) {
	rows, err := a.Query(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}
	if len(cols) != schema.Arity() {
		return nil, fmt.Errorf("query returned %d columns %v, schema %v expects %d: %w",
			len(cols), cols, []string(schema), schema.Arity(), core.ErrArity)
	}

	var data [][]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", len(data), err)
		}
		for i, v := range values {
			// Drivers may reuse byte buffers between rows
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return data, nil
}
