// Package main provides the CLI for the Sakila reporting ETL job.
package main

import (
	"os"

	"github.com/leapstack-labs/sakila-etl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
