// Package sqlfiles resolves the SQL scripts used by the ETL pipeline.
//
// Scripts are plain text files, one statement per file, read verbatim at
// call time. The default set is embedded in the binary; a directory on disk
// with the same layout can replace it. A dialect-specific override lives
// under <dialect>/ and wins over the shared file with the same relative path.
package sqlfiles

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

//go:embed sql
var embedded embed.FS

// Relative script paths.
const (
	DropPaymentSummary     = "tableManagement/drop_payment_summary_table.sql"
	DropDurationSummary    = "tableManagement/drop_duration_summary_table.sql"
	DropProfitableActors   = "tableManagement/drop_profitable_actors_table.sql"
	CreatePaymentSummary   = "tableManagement/create_payment_summary_table.sql"
	CreateDurationSummary  = "tableManagement/create_duration_summary_table.sql"
	CreateProfitableActors = "tableManagement/create_profitable_actors_table.sql"

	PaymentsQuery         = "queries/payments.sql"
	FilmDurationQuery     = "queries/filmduration.sql"
	ProfitableActorsQuery = "queries/profitable_actors.sql"
)

// DropScripts returns the DROP scripts in execution order.
func DropScripts() []string {
	return []string{DropPaymentSummary, DropDurationSummary, DropProfitableActors}
}

// CreateScripts returns the CREATE scripts in execution order.
func CreateScripts() []string {
	return []string{CreatePaymentSummary, CreateDurationSummary, CreateProfitableActors}
}

// Library reads scripts from a file system for one SQL dialect.
type Library struct {
	fsys    fs.FS
	dialect string
	origin  string
}

// Embedded returns a Library over the scripts compiled into the binary.
func Embedded(dialect string) *Library {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		panic(err) // embedded layout is fixed at build time
	}
	return &Library{fsys: sub, dialect: dialect, origin: "embedded"}
}

// FromDir returns a Library over scripts in dir.
func FromDir(dir, dialect string) *Library {
	return &Library{fsys: os.DirFS(dir), dialect: dialect, origin: dir}
}

// New returns FromDir(dir) when dir is set, otherwise the embedded set.
func New(dir, dialect string) *Library {
	if dir == "" {
		return Embedded(dialect)
	}
	return FromDir(dir, dialect)
}

// Dialect returns the dialect used for override lookup.
func (l *Library) Dialect() string { return l.dialect }

// Resolve returns the path inside the library that serves rel: the
// dialect override when it exists, otherwise rel itself.
func (l *Library) Resolve(rel string) string {
	if l.dialect != "" {
		override := path.Join(l.dialect, rel)
		if _, err := fs.Stat(l.fsys, override); err == nil {
			return override
		}
	}
	return rel
}

// Location describes where a resolved script lives, for logs and errors.
func (l *Library) Location(rel string) string {
	resolved := l.Resolve(rel)
	if l.origin == "embedded" {
		return "embedded:" + resolved
	}
	return filepath.Join(l.origin, filepath.FromSlash(resolved))
}

// Read returns the full text of the script serving rel. It reads the file
// on every call.
func (l *Library) Read(rel string) (string, error) {
	resolved := l.Resolve(rel)
	data, err := fs.ReadFile(l.fsys, resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("SQL file not found: %s: %w", l.Location(rel), err)
		}
		return "", fmt.Errorf("failed to read SQL file %s: %w", l.Location(rel), err)
	}
	return string(data), nil
}

// Export writes the embedded script set to dir, preserving its layout.
// Existing files are left untouched unless overwrite is set.
func Export(dir string, overwrite bool) ([]string, error) {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		return nil, err
	}

	var written []string
	err = fs.WalkDir(sub, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dir, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		if !overwrite {
			if _, err := os.Stat(target); err == nil {
				return nil
			}
		}
		data, err := fs.ReadFile(sub, p)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0o644); err != nil { //nolint:gosec // SQL scripts are not secret
			return err
		}
		written = append(written, target)
		return nil
	})
	if err != nil {
		return written, fmt.Errorf("failed to export SQL files to %s: %w", dir, err)
	}
	return written, nil
}
