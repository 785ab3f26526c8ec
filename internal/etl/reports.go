package etl

import (
	"github.com/leapstack-labs/sakila-etl/internal/sqlfiles"
	"github.com/leapstack-labs/sakila-etl/pkg/core"
)

// Report ties one analytical query to its column schema and destinations.
type Report struct {
	Name   string
	Query  string
	Schema core.Schema
	Table  string
	File   string
}

// DefaultReports returns the payments, film duration and profitable actors
// reports in pipeline order.
func DefaultReports() []Report {
	return []Report{
		{
			Name:   "payments",
			Query:  sqlfiles.PaymentsQuery,
			Schema: core.PaymentsSchema,
			Table:  "payment_summary_table",
			File:   "payment_summary.txt",
		},
		{
			Name:   "duration",
			Query:  sqlfiles.FilmDurationQuery,
			Schema: core.DurationSchema,
			Table:  "duration_summary_table",
			File:   "duration_summary.txt",
		},
		{
			Name:   "profitable_actors",
			Query:  sqlfiles.ProfitableActorsQuery,
			Schema: core.ProfitableActorsSchema,
			Table:  "profitable_actors_table",
			File:   "profitable_actors.txt",
		},
	}
}
