// Command sakila-etl-script runs the Sakila ETL job as one self-contained
// program. Each step is a small function so that "sakila-etl notebook
// generate" can mirror them, one cell each, into the teaching notebook.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/leapstack-labs/sakila-etl/internal/config"
	"github.com/leapstack-labs/sakila-etl/internal/etl"
	"github.com/leapstack-labs/sakila-etl/internal/logging"
	"github.com/leapstack-labs/sakila-etl/internal/prompt"
	"github.com/leapstack-labs/sakila-etl/internal/sqlfiles"
	"github.com/leapstack-labs/sakila-etl/pkg/adapter"
	"github.com/leapstack-labs/sakila-etl/pkg/core"

	_ "github.com/leapstack-labs/sakila-etl/pkg/adapters/mssql"
)

var logger, closeLog, logErr = logging.Setup(logging.Options{
	File:    "etl_pipeline.log",
	Level:   "info",
	Console: os.Stderr,
})

var scripts = sqlfiles.Embedded("mssql")

// clearFolder removes every file, symlink and subdirectory inside folder.
func clearFolder(folder string) error {
	r := &etl.Runner{Logger: logger}
	return r.ClearFolder(folder)
}

// manageTables drops and recreates the three summary tables.
func manageTables(ctx context.Context, conn adapter.Connector) error {
	r := &etl.Runner{Logger: logger, Connector: conn, Scripts: scripts}
	return r.ResetSchema(ctx)
}

// calculatePayments runs the payments summary query.
func calculatePayments(ctx context.Context, conn adapter.Connector) (*core.Result, error) {
	r := &etl.Runner{Logger: logger, Connector: conn, Scripts: scripts}
	return r.RunQuery(ctx, sqlfiles.PaymentsQuery, core.PaymentsSchema)
}

// calculateDuration runs the film duration summary query.
func calculateDuration(ctx context.Context, conn adapter.Connector) (*core.Result, error) {
	r := &etl.Runner{Logger: logger, Connector: conn, Scripts: scripts}
	return r.RunQuery(ctx, sqlfiles.FilmDurationQuery, core.DurationSchema)
}

// calculateProfitableActors runs the profitable actors query.
func calculateProfitableActors(ctx context.Context, conn adapter.Connector) (*core.Result, error) {
	r := &etl.Runner{Logger: logger, Connector: conn, Scripts: scripts}
	return r.RunQuery(ctx, sqlfiles.ProfitableActorsQuery, core.ProfitableActorsSchema)
}

// writeTableToDB inserts every row of result into table in one transaction.
func writeTableToDB(ctx context.Context, result *core.Result, table string, conn adapter.Connector) error {
	r := &etl.Runner{Logger: logger, Connector: conn}
	return r.WriteTable(ctx, result, table)
}

// writeLocalTxtOutput saves result as a tab-separated file and returns its path.
func writeLocalTxtOutput(result *core.Result, folder, name string) (string, error) {
	r := &etl.Runner{Logger: logger}
	return r.WriteReport(result, folder, name)
}

// Main block starts here

func main() {
	os.Exit(run())
}

func run() int {
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", logErr)
		return 1
	}
	defer func() { _ = closeLog() }()

	target := &config.TargetConfig{Type: "mssql"}
	term, err := prompt.NewTerminal(os.Stdin, os.Stdout)
	if err == nil {
		err = prompt.Complete(term, target)
		_ = term.Close()
	}
	if err != nil {
		logger.Error("failed to read connection settings", "error", err)
		return 1
	}
	config.ApplyTargetDefaults(target)
	conn := adapter.NewConnector(target.ToAdapterConfig(), logger)
	ctx := context.Background()

	if err := clearFolder("reports"); err != nil {
		logger.Warn("reports folder was not cleared", "error", err)
	}
	if err := manageTables(ctx, conn); err != nil {
		return 1
	}

	payments, errPayments := calculatePayments(ctx, conn)
	duration, errDuration := calculateDuration(ctx, conn)
	actors, errActors := calculateProfitableActors(ctx, conn)
	failed := errPayments != nil || errDuration != nil || errActors != nil

	if errPayments == nil && writeTableToDB(ctx, payments, "payment_summary_table", conn) != nil {
		failed = true
	}
	if errDuration == nil && writeTableToDB(ctx, duration, "duration_summary_table", conn) != nil {
		failed = true
	}
	if errActors == nil && writeTableToDB(ctx, actors, "profitable_actors_table", conn) != nil {
		failed = true
	}
	if errPayments == nil {
		if _, err := writeLocalTxtOutput(payments, "reports", "payment_summary.txt"); err != nil {
			failed = true
		}
	}
	if errDuration == nil {
		if _, err := writeLocalTxtOutput(duration, "reports", "duration_summary.txt"); err != nil {
			failed = true
		}
	}
	if errActors == nil {
		if _, err := writeLocalTxtOutput(actors, "reports", "profitable_actors.txt"); err != nil {
			failed = true
		}
	}

	if failed {
		return 1
	}
	return 0
}
