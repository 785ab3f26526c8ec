// Package notebook builds the teaching notebook that mirrors the ETL script.
//
// A source file is split into Sections (preamble, top-level functions and
// the main block) with go/parser. Generate lays the sections out as a fresh
// nbformat 4.5 notebook with explanatory Markdown; Update refreshes the
// code cells of an existing notebook while keeping its Markdown cells.
package notebook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// nbformat version written by this package.
const (
	FormatMajor = 4
	FormatMinor = 5
)

// Section names recorded in code cell metadata.
const (
	PreambleSection = "preamble"
	MainSection     = "main_script"
)

// CellType is the nbformat cell type.
type CellType string

// Cell types.
const (
	Markdown CellType = "markdown"
	Code     CellType = "code"
	Raw      CellType = "raw"
)

// Cell is one notebook cell.
type Cell struct {
	Type        CellType
	ID          string
	Metadata    map[string]any
	Source      string
	Attachments map[string]any
	// Code cells only.
	ExecutionCount *int
	Outputs        []any
}

// Section returns the section name stored in the cell metadata.
func (c *Cell) Section() string {
	s, _ := c.Metadata["section"].(string)
	return s
}

// Notebook is an nbformat v4 document.
type Notebook struct {
	Cells         []*Cell        `json:"cells"`
	Metadata      map[string]any `json:"metadata"`
	NBFormat      int            `json:"nbformat"`
	NBFormatMinor int            `json:"nbformat_minor"`
}

// New returns an empty notebook for the gophernotes Go kernel.
func New() *Notebook {
	return &Notebook{
		Cells: []*Cell{},
		Metadata: map[string]any{
			"kernelspec": map[string]any{
				"display_name": "Go",
				"language":     "go",
				"name":         "gophernotes",
			},
			"language_info": map[string]any{
				"file_extension": ".go",
				"mimetype":       "application/x-go",
				"name":           "go",
			},
		},
		NBFormat:      FormatMajor,
		NBFormatMinor: FormatMinor,
	}
}

// AddMarkdown appends a Markdown cell.
func (nb *Notebook) AddMarkdown(id, text string) *Cell {
	c := &Cell{Type: Markdown, ID: nb.uniqueID(id), Metadata: map[string]any{}, Source: text}
	nb.Cells = append(nb.Cells, c)
	return c
}

// AddCode appends a code cell tagged with section.
func (nb *Notebook) AddCode(section, src string) *Cell {
	c := &Cell{
		Type:     Code,
		ID:       nb.uniqueID(section),
		Metadata: map[string]any{"section": section},
		Source:   src,
		Outputs:  []any{},
	}
	nb.Cells = append(nb.Cells, c)
	return c
}

// CodeCells returns the code cells in order.
func (nb *Notebook) CodeCells() []*Cell {
	var cells []*Cell
	for _, c := range nb.Cells {
		if c.Type == Code {
			cells = append(cells, c)
		}
	}
	return cells
}

func (nb *Notebook) uniqueID(base string) string {
	base = sanitizeID(base)
	taken := make(map[string]bool, len(nb.Cells))
	for _, c := range nb.Cells {
		taken[c.ID] = true
	}
	id := base
	for n := 2; taken[id]; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return id
}

// sanitizeID maps s onto the nbformat cell id alphabet ([a-zA-Z0-9-_], at
// most 64 characters).
func sanitizeID(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s) && len(b) < 56; i++ {
		ch := s[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '-', ch == '_':
			b = append(b, ch)
		default:
			b = append(b, '-')
		}
	}
	if len(b) == 0 {
		return "cell"
	}
	return string(b)
}

// Load reads the notebook at path. A missing file or one that is not a v4
// notebook yields a fresh notebook and found == false.
func Load(path string) (nb *Notebook, found bool, err error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is a user-chosen notebook file
	if errors.Is(err, os.ErrNotExist) {
		return New(), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read notebook %s: %w", path, err)
	}

	var loaded Notebook
	if err := json.Unmarshal(data, &loaded); err != nil || loaded.NBFormat != FormatMajor {
		return New(), false, nil
	}
	if loaded.Metadata == nil {
		loaded.Metadata = New().Metadata
	}
	if loaded.Cells == nil {
		loaded.Cells = []*Cell{}
	}
	for i, c := range loaded.Cells {
		if c.ID == "" {
			c.ID = loaded.uniqueID(fmt.Sprintf("cell-%d", i+1))
		}
	}
	loaded.NBFormatMinor = FormatMinor
	return &loaded, true, nil
}

// Save writes nb to path as indented JSON.
func Save(path string, nb *Notebook) error {
	data, err := json.MarshalIndent(nb, "", " ")
	if err != nil {
		return fmt.Errorf("failed to encode notebook: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create notebook directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil { //nolint:gosec // notebooks are meant to be shared
		return fmt.Errorf("failed to write notebook %s: %w", path, err)
	}
	return nil
}

type cellJSON struct {
	Attachments    map[string]any `json:"attachments,omitempty"`
	CellType       CellType       `json:"cell_type"`
	ExecutionCount *int           `json:"execution_count"`
	ID             string         `json:"id"`
	Metadata       map[string]any `json:"metadata"`
	Outputs        []any          `json:"outputs"`
	Source         multiline      `json:"source"`
}

type textCellJSON struct {
	Attachments map[string]any `json:"attachments,omitempty"`
	CellType    CellType       `json:"cell_type"`
	ID          string         `json:"id"`
	Metadata    map[string]any `json:"metadata"`
	Source      multiline      `json:"source"`
}

// MarshalJSON writes the nbformat keys for the cell type.
func (c *Cell) MarshalJSON() ([]byte, error) {
	meta := c.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	if c.Type == Code {
		outputs := c.Outputs
		if outputs == nil {
			outputs = []any{}
		}
		return json.Marshal(cellJSON{
			CellType:       c.Type,
			ExecutionCount: c.ExecutionCount,
			ID:             c.ID,
			Metadata:       meta,
			Outputs:        outputs,
			Source:         multiline(c.Source),
		})
	}
	return json.Marshal(textCellJSON{
		Attachments: c.Attachments,
		CellType:    c.Type,
		ID:          c.ID,
		Metadata:    meta,
		Source:      multiline(c.Source),
	})
}

// UnmarshalJSON reads a cell of any type.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var w cellJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = Cell{
		Type:           w.CellType,
		ID:             w.ID,
		Metadata:       w.Metadata,
		Source:         string(w.Source),
		Attachments:    w.Attachments,
		ExecutionCount: w.ExecutionCount,
		Outputs:        w.Outputs,
	}
	if c.Metadata == nil {
		c.Metadata = map[string]any{}
	}
	return nil
}

// multiline is an nbformat multi-line string: written as a list of lines,
// read from either a list or a single string.
type multiline string

func (m multiline) MarshalJSON() ([]byte, error) {
	lines := []string{}
	s := string(m)
	for s != "" {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			lines = append(lines, s)
			break
		}
		lines = append(lines, s[:i+1])
		s = s[i+1:]
	}
	return json.Marshal(lines)
}

func (m *multiline) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = multiline(s)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("source must be a string or a list of strings: %w", err)
	}
	*m = multiline(strings.Join(lines, ""))
	return nil
}
