package etl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/sakila-etl/pkg/core"
)

// buildInsert renders a parameterized INSERT naming every column.
func buildInsert(table string, cols core.Schema, placeholder func(int) string) (string, error) {
	if !identifierRe.MatchString(table) {
		return "", fmt.Errorf("table %q: %w", table, ErrInvalidIdentifier)
	}
	marks := make([]string, len(cols))
	for i, c := range cols {
		if !identifierRe.MatchString(c) {
			return "", fmt.Errorf("column %q: %w", c, ErrInvalidIdentifier)
		}
		marks[i] = placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(marks, ", ")), nil
}

// WriteTable appends every row of result to table with one parameterized
// INSERT per row, inside a single transaction committed once at the end.
// The first failing row rolls the transaction back and aborts the write.
// An empty result executes no INSERT and still commits.
func (r *Runner) WriteTable(ctx context.Context, result *core.Result, table string) error {
	logger := r.log().With("table", table)
	logger.Info("Starting to write result to table")

	a, err := r.Connector.Open(ctx)
	if err != nil {
		logger.Error("Error writing to database table", "error", err)
		return fmt.Errorf("write table %s: %w", table, err)
	}
	defer r.closeAdapter(a)

	stmt, err := buildInsert(table, result.Columns(), a.Placeholder)
	if err != nil {
		logger.Error("Error writing to database table", "error", err)
		return fmt.Errorf("write table %s: %w", table, err)
	}

	tx, err := a.BeginTx(ctx)
	if err != nil {
		logger.Error("Error writing to database table", "error", err)
		return fmt.Errorf("write table %s: %w", table, err)
	}

	for i := 0; i < result.Len(); i++ {
		if _, err := tx.ExecContext(ctx, stmt, result.Row(i)...); err != nil {
			_ = tx.Rollback()
			logger.Error("Error writing to database table", "row", i, "error", err)
			return fmt.Errorf("write table %s: row %d: %w", table, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Error writing to database table", "error", err)
		return fmt.Errorf("write table %s: commit: %w", table, err)
	}

	logger.Info("Data successfully written to table", "rows", result.Len())
	return nil
}

// WriteReport serializes result as a tab-separated file named name inside
// dir, creating dir if needed, and returns the file path. The file is
// written to a temporary name and renamed into place. On failure the path
// is empty.
func (r *Runner) WriteReport(result *core.Result, dir, name string) (string, error) {
	logger := r.log().With("file", name)
	logger.Info("Starting to write result to text file")

	path, err := writeTSVFile(result, dir, name)
	if err != nil {
		logger.Error("An error occurred while writing to text file", "error", err)
		return "", fmt.Errorf("write report %s: %w", name, err)
	}

	logger.Info("Processed data successfully written", "path", path, "rows", result.Len())
	return path, nil
}

func writeTSVFile(result *core.Result, dir, name string) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid report file name %q", name)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := core.WriteTSV(tmp, result); err != nil {
		_ = tmp.Close()
		return "", err
	}
	// CreateTemp uses 0600; reports are shared artifacts. Set before the
	// rename so a failure leaves no report behind.
	if err := tmp.Chmod(0o644); err != nil { //nolint:gosec // reports are not secret
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	if err := os.Rename(tmpName, path); err != nil {
		return "", err
	}
	return path, nil
}
