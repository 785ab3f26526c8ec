package notebook

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed content
var content embed.FS

// DefaultFunctions is the order in which the script's functions appear.
var DefaultFunctions = []string{
	"clearFolder",
	"manageTables",
	"calculatePayments",
	"calculateDuration",
	"calculateProfitableActors",
	"writeTableToDB",
	"writeLocalTxtOutput",
}

// FunctionDoc pairs a function with the Markdown shown above its code.
type FunctionDoc struct {
	Name  string
	Title string
}

// Layout is the Markdown arrangement of a generated notebook.
type Layout struct {
	// Intro cells come first, before the preamble code cell.
	Intro     []string
	Functions []FunctionDoc
	MainTitle string
}

// DefaultLayout returns the layout of the Sakila teaching notebook. A
// non-empty functions list replaces DefaultFunctions; functions without a
// written explanation get a bare heading.
func DefaultLayout(functions []string) Layout {
	if len(functions) == 0 {
		functions = DefaultFunctions
	}
	l := Layout{
		Intro:     []string{mustRead("content/intro.md"), mustRead("content/libraries.md")},
		MainTitle: mustRead("content/main.md"),
	}
	for _, name := range functions {
		title, err := content.ReadFile("content/functions/" + name + ".md")
		text := strings.TrimSpace(string(title))
		if err != nil {
			text = fmt.Sprintf("#### Function: `%s`", name)
		}
		l.Functions = append(l.Functions, FunctionDoc{Name: name, Title: text})
	}
	return l
}

// FunctionNames returns the function order of l.
func (l Layout) FunctionNames() []string {
	names := make([]string, len(l.Functions))
	for i, f := range l.Functions {
		names[i] = f.Name
	}
	return names
}

func mustRead(name string) string {
	data, err := content.ReadFile(name)
	if err != nil {
		panic(err) // embedded content is fixed at build time
	}
	return strings.TrimSpace(string(data))
}
