package core

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// WriteTSV serializes r as tab-separated values: a header row of column names
// followed by one line per row, without a row index. A field is quoted only
// when it holds a tab, a double quote or a line break, so every other value
// survives a plain split on tab.
func WriteTSV(w io.Writer, r *Result) error {
	bw := bufio.NewWriter(w)
	if err := writeTSVRecord(bw, r.schema); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, rec := range r.StringRows() {
		if err := writeTSVRecord(bw, rec); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	return bw.Flush()
}

func writeTSVRecord(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte('\t'); err != nil {
				return err
			}
		}
		if !strings.ContainsAny(f, "\t\"\r\n") {
			if _, err := w.WriteString(f); err != nil {
				return err
			}
			continue
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(f, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

// ReadTSV parses a file produced by WriteTSV. It returns the header and the
// data rows as strings.
func ReadTSV(rd io.Reader) (Schema, [][]string, error) {
	cr := csv.NewReader(rd)
	cr.Comma = '\t'
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("missing header row: %w", io.ErrUnexpectedEOF)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	cr.FieldsPerRecord = len(header)

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read row %d: %w", len(rows), err)
		}
		rows = append(rows, rec)
	}
	return Schema(header), rows, nil
}
