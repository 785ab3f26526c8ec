// Package etl is a README fixture.
//
// It has two paragraphs.
package etl

// ClearFolder empties a folder.
func ClearFolder(dir string) error { return nil }

func helper() {}

type Runner struct{}

// Run is a method and is left out.
func (r *Runner) Run() {}
