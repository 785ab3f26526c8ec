package core

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrArity is returned when a row does not have exactly one value per schema column.
var ErrArity = errors.New("row arity does not match column schema")

// Schema is the named, ordered column list of a tabular result.
type Schema []string

// Fixed column schemas for the three summary reports.
var (
	PaymentsSchema         = Schema{"Records", "Minimum", "Maximum", "Total", "Average"}
	DurationSchema         = Schema{"Minimum", "Maximum", "Total", "Average"}
	ProfitableActorsSchema = Schema{"ActorID", "FirstName", "LastName", "TotalSale"}
)

// Arity returns the number of columns.
func (s Schema) Arity() int { return len(s) }

// Result is an in-memory table: ordered rows of scalar values with a named,
// ordered column schema. It is not mutated after construction.
type Result struct {
	schema Schema
	rows   [][]any
}

// NewResult builds a Result, rejecting any row whose length differs from the schema arity.
func NewResult(schema Schema, rows [][]any) (*Result, error) {
	if len(schema) == 0 {
		return nil, fmt.Errorf("empty column schema: %w", ErrArity)
	}
	copied := make([][]any, len(rows))
	for i, row := range rows {
		if len(row) != len(schema) {
			return nil, fmt.Errorf("row %d has %d values, schema %v has %d: %w",
				i, len(row), []string(schema), len(schema), ErrArity)
		}
		copied[i] = append([]any(nil), row...)
	}
	return &Result{
		schema: append(Schema(nil), schema...),
		rows:   copied,
	}, nil
}

// Columns returns a copy of the column schema.
func (r *Result) Columns() Schema {
	return append(Schema(nil), r.schema...)
}

// Len returns the number of rows.
func (r *Result) Len() int { return len(r.rows) }

// Row returns a copy of row i.
func (r *Result) Row(i int) []any {
	return append([]any(nil), r.rows[i]...)
}

// Rows returns a copy of every row, in order.
func (r *Result) Rows() [][]any {
	out := make([][]any, len(r.rows))
	for i := range r.rows {
		out[i] = r.Row(i)
	}
	return out
}

// StringRows returns every row rendered through FormatValue.
func (r *Result) StringRows() [][]string {
	out := make([][]string, len(r.rows))
	for i, row := range r.rows {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = FormatValue(v)
		}
		out[i] = rec
	}
	return out
}

// FormatValue returns the canonical text form of a scalar value.
// NULL renders as an empty string.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case int:
		return strconv.Itoa(val)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
