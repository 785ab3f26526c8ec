package notebook

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
)

// MainMarker is the comment line that starts the main block of a source file.
const MainMarker = "// Main block starts here"

// Sections are the parts of a Go source file mirrored into a notebook.
type Sections struct {
	// Preamble is everything before the first top-level function: package
	// clause, imports and package-level setup. Empty if the file has no
	// functions.
	Preamble string
	// Functions maps a top-level function name to its source, doc comment
	// included.
	Functions map[string]string
	// Order lists the function names in source order.
	Order []string
	// Main is the text from the MainMarker line to the end of the file, or
	// empty if the marker is absent.
	Main string
}

// ParseSource reads and splits the Go file at path.
func ParseSource(path string) (*Sections, error) {
	src, err := os.ReadFile(path) //nolint:gosec // path is a user-chosen source file
	if err != nil {
		return nil, fmt.Errorf("failed to read source %s: %w", path, err)
	}
	return Parse(path, src)
}

// Parse splits src into Sections. filename is used in error messages only.
func Parse(filename string, src []byte) (*Sections, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	sec := &Sections{Functions: make(map[string]string)}
	offset := func(p token.Pos) int { return fset.Position(p).Offset }

	first := -1
	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Recv != nil {
			continue
		}
		start := offset(fd.Pos())
		if fd.Doc != nil {
			start = offset(fd.Doc.Pos())
		}
		if first < 0 {
			first = start
		}
		name := fd.Name.Name
		if _, dup := sec.Functions[name]; !dup {
			sec.Order = append(sec.Order, name)
		}
		sec.Functions[name] = string(bytes.TrimSpace(src[start:offset(fd.End())]))
	}
	if first >= 0 {
		sec.Preamble = string(bytes.TrimSpace(src[:first]))
	}

	lineStart := 0
	for lineStart < len(src) {
		end := bytes.IndexByte(src[lineStart:], '\n')
		if end < 0 {
			end = len(src) - lineStart
		}
		if string(bytes.TrimSpace(src[lineStart:lineStart+end])) == MainMarker {
			sec.Main = string(bytes.TrimSpace(src[lineStart:]))
			break
		}
		lineStart += end + 1
	}

	return sec, nil
}
