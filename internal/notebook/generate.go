package notebook

import "fmt"

// Generate builds a fresh notebook from sec. Sections missing from the
// source are left out and reported as warnings.
func Generate(sec *Sections, layout Layout) (*Notebook, []string) {
	nb := New()
	var warnings []string

	for i, md := range layout.Intro {
		nb.AddMarkdown(fmt.Sprintf("intro-%d", i+1), md)
	}
	if sec.Preamble != "" {
		nb.AddCode(PreambleSection, sec.Preamble)
	} else {
		warnings = append(warnings, "preamble (package clause, imports and setup) not found")
	}
	if len(sec.Functions) == 0 {
		warnings = append(warnings, "no functions found in the source")
	}

	for _, f := range layout.Functions {
		body, ok := sec.Functions[f.Name]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("function %q is missing", f.Name))
			continue
		}
		nb.AddMarkdown(f.Name+"-doc", f.Title)
		nb.AddCode(f.Name, body)
	}

	if layout.MainTitle != "" {
		nb.AddMarkdown(MainSection+"-doc", layout.MainTitle)
	}
	if sec.Main != "" {
		nb.AddCode(MainSection, sec.Main)
	} else {
		warnings = append(warnings, "main block not found (missing \""+MainMarker+"\" line)")
	}

	return nb, warnings
}

// Update keeps the Markdown and raw cells of nb, drops its code cells and
// appends fresh code cells for the preamble, each function in order and the
// main block. Each new cell records its section in metadata.
func Update(nb *Notebook, sec *Sections, order []string) (*Notebook, []string) {
	if nb == nil {
		nb = New()
	}
	var warnings []string

	kept := make([]*Cell, 0, len(nb.Cells))
	for _, c := range nb.Cells {
		if c.Type != Code {
			kept = append(kept, c)
		}
	}
	nb.Cells = kept

	if sec.Preamble != "" {
		nb.AddCode(PreambleSection, sec.Preamble)
	} else {
		warnings = append(warnings, "preamble (package clause, imports and setup) not found")
	}
	for _, name := range order {
		body, ok := sec.Functions[name]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("function %q is missing", name))
			continue
		}
		nb.AddCode(name, body)
	}
	if sec.Main != "" {
		nb.AddCode(MainSection, sec.Main)
	} else {
		warnings = append(warnings, "main block not found (missing \""+MainMarker+"\" line)")
	}

	return nb, warnings
}
