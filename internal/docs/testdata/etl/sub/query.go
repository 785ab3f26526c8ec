// Package sub holds queries.
package sub

// RunQuery runs a query.
func RunQuery() {}
