// Package docs generates the README of the ETL package from its Go doc
// comments.
package docs

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Title is the first line of every generated README.
const Title = "# ETL Pipeline Documentation"

const (
	noPackageDoc  = "No module-level documentation available."
	noFunctionDoc = "No documentation available."
)

// FileDoc is the documentation of one source file.
type FileDoc struct {
	Name      string
	Package   string
	Doc       string
	Functions []FunctionDoc
}

// FunctionDoc is a top-level function and its doc comment.
type FunctionDoc struct {
	Name string
	Doc  string
}

// Collect walks dir and parses every Go source file, skipping tests,
// testdata and files the go tool ignores. Files are returned in lexical
// path order.
func Collect(dir string) ([]FileDoc, error) {
	var files []FileDoc
	fset := token.NewFileSet()

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && (name == "testdata" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") ||
			strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			return nil
		}

		f, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		files = append(files, fileDoc(name, f))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func fileDoc(name string, f *ast.File) FileDoc {
	doc := FileDoc{Name: name, Package: f.Name.Name}
	if f.Doc != nil {
		doc.Doc = strings.TrimSpace(f.Doc.Text())
	}
	for _, decl := range f.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Recv != nil {
			continue
		}
		fn := FunctionDoc{Name: fd.Name.Name}
		if fd.Doc != nil {
			fn.Doc = strings.TrimSpace(fd.Doc.Text())
		}
		doc.Functions = append(doc.Functions, fn)
	}
	return doc
}

// Render formats files as the README Markdown.
func Render(files []FileDoc) string {
	var b strings.Builder
	b.WriteString(Title + "\n\n")
	b.WriteString("This document is auto-generated from the codebase.\n\n")

	for _, f := range files {
		fmt.Fprintf(&b, "## %s\n\n", f.Name)
		b.WriteString(orDefault(f.Doc, noPackageDoc) + "\n\n")
		for _, fn := range f.Functions {
			fmt.Fprintf(&b, "### Function: `%s`\n\n", fn.Name)
			b.WriteString(orDefault(fn.Doc, noFunctionDoc) + "\n\n")
		}
	}
	return b.String()
}

// GenerateREADME returns the README Markdown for the Go files under dir.
func GenerateREADME(dir string) (string, error) {
	files, err := Collect(dir)
	if err != nil {
		return "", err
	}
	return Render(files), nil
}

// WriteREADME generates the README for dir and writes it to out.
func WriteREADME(dir, out string) error {
	md, err := GenerateREADME(dir)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, []byte(md), 0o644); err != nil { //nolint:gosec // README is public
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
