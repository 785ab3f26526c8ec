package output

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/leapstack-labs/sakila-etl/internal/etl"
	"github.com/leapstack-labs/sakila-etl/pkg/core"
)

func (r *Renderer) newTable() table.Writer {
	t := table.NewWriter()
	if r.isTTY {
		t.SetStyle(table.StyleRounded)
	} else {
		t.SetStyle(table.StyleLight)
	}
	return t
}

func (r *Renderer) flush(t table.Writer) {
	if r.EffectiveMode() == ModeMarkdown {
		_, _ = fmt.Fprintln(r.out, t.RenderMarkdown())
		return
	}
	_, _ = fmt.Fprintln(r.out, t.Render())
}

func (r *Renderer) status(s string) string {
	switch s {
	case string(core.StepStatusSuccess), string(core.RunStatusCompleted):
		return r.styles.success.Render(s)
	case string(core.StepStatusWarning), string(core.StepStatusSkipped), string(core.RunStatusRunning):
		return r.styles.warning.Render(s)
	case string(core.StepStatusFailed):
		return r.styles.failure.Render(s)
	}
	return s
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(10 * time.Millisecond).String()
}

type stepJSON struct {
	Step       string `json:"step"`
	Target     string `json:"target"`
	Status     string `json:"status"`
	Rows       int    `json:"rows"`
	Path       string `json:"path,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

type summaryJSON struct {
	RunID      string     `json:"run_id,omitempty"`
	Aborted    bool       `json:"aborted"`
	DurationMS int64      `json:"duration_ms"`
	Steps      []stepJSON `json:"steps"`
	Error      string     `json:"error,omitempty"`
}

// Summary renders the outcome of a pipeline run.
func (r *Renderer) Summary(s *etl.Summary) error {
	if r.EffectiveMode() == ModeJSON {
		out := summaryJSON{RunID: s.RunID, Aborted: s.Aborted, DurationMS: s.Duration.Milliseconds(), Steps: []stepJSON{}}
		for _, st := range s.Steps {
			js := stepJSON{Step: st.Step, Target: st.Target, Status: string(st.Status), Rows: st.Rows,
				Path: st.Path, DurationMS: st.Duration.Milliseconds()}
			if st.Err != nil {
				js.Error = st.Err.Error()
			}
			out.Steps = append(out.Steps, js)
		}
		if err := s.Err(); err != nil {
			out.Error = err.Error()
		}
		return r.JSON(out)
	}

	t := r.newTable()
	t.AppendHeader(table.Row{"Step", "Target", "Status", "Rows", "Duration", "Detail"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 4, Align: text.AlignRight}})
	for _, st := range s.Steps {
		detail := st.Path
		if st.Err != nil {
			detail = st.Err.Error()
		}
		rows := ""
		if st.Step != etl.StepClearFolder && st.Step != etl.StepResetSchema && st.Status != core.StepStatusSkipped {
			rows = r.Number(st.Rows)
		}
		t.AppendRow(table.Row{st.Step, st.Target, r.status(string(st.Status)), rows, formatDuration(st.Duration), detail})
	}
	t.AppendFooter(table.Row{"", "", "", "", formatDuration(s.Duration), ""})
	r.flush(t)

	switch {
	case s.Err() == nil:
		r.Success(fmt.Sprintf("ETL pipeline completed: %d steps succeeded", s.Count(core.StepStatusSuccess)))
	case s.Aborted:
		r.Error("ETL pipeline aborted")
	default:
		r.Error(fmt.Sprintf("ETL pipeline finished with %d failed and %d skipped steps",
			s.Count(core.StepStatusFailed), s.Count(core.StepStatusSkipped)))
	}
	return nil
}

type runJSON struct {
	ID          string     `json:"id"`
	Target      string     `json:"target"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Runs renders a run history listing.
func (r *Renderer) Runs(runs []*core.Run) error {
	if r.EffectiveMode() == ModeJSON {
		out := make([]runJSON, 0, len(runs))
		for _, run := range runs {
			out = append(out, runJSON{ID: run.ID, Target: run.Target, Status: string(run.Status),
				StartedAt: run.StartedAt, CompletedAt: run.CompletedAt, Error: run.Error})
		}
		return r.JSON(out)
	}
	if len(runs) == 0 {
		r.Muted("No runs recorded yet.")
		return nil
	}

	t := r.newTable()
	t.AppendHeader(table.Row{"Run", "Started", "Duration", "Status", "Target", "Error"})
	for _, run := range runs {
		duration := ""
		if run.CompletedAt != nil {
			duration = formatDuration(run.CompletedAt.Sub(run.StartedAt))
		}
		t.AppendRow(table.Row{run.ID, run.StartedAt.Local().Format(time.DateTime), duration,
			r.status(string(run.Status)), run.Target, run.Error})
	}
	r.flush(t)
	return nil
}

// Steps renders the recorded steps of one run.
func (r *Renderer) Steps(steps []*core.StepRun) error {
	if r.EffectiveMode() == ModeJSON {
		out := make([]stepJSON, 0, len(steps))
		for _, st := range steps {
			out = append(out, stepJSON{Step: st.Step, Target: st.Target, Status: string(st.Status), Rows: st.Rows,
				Path: st.Path, Error: st.Error, DurationMS: st.Duration.Milliseconds()})
		}
		return r.JSON(out)
	}

	t := r.newTable()
	t.AppendHeader(table.Row{"#", "Step", "Target", "Status", "Rows", "Duration", "Detail"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 5, Align: text.AlignRight}})
	for i, st := range steps {
		detail := st.Path
		if st.Error != "" {
			detail = st.Error
		}
		t.AppendRow(table.Row{i + 1, st.Step, st.Target, r.status(string(st.Status)),
			r.Number(st.Rows), formatDuration(st.Duration), detail})
	}
	r.flush(t)
	return nil
}

// Report renders the contents of an exported report file.
func (r *Renderer) Report(name string, schema core.Schema, rows [][]string) error {
	if r.EffectiveMode() == ModeJSON {
		records := make([]map[string]string, 0, len(rows))
		for _, row := range rows {
			rec := make(map[string]string, len(schema))
			for i, col := range schema {
				rec[col] = row[i]
			}
			records = append(records, rec)
		}
		return r.JSON(map[string]any{"report": name, "columns": []string(schema), "rows": records})
	}

	r.Header(name)
	t := r.newTable()
	header := make(table.Row, len(schema))
	for i, col := range schema {
		header[i] = col
	}
	t.AppendHeader(header)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, v := range row {
			tr[i] = v
		}
		t.AppendRow(tr)
	}
	r.flush(t)
	r.Muted(fmt.Sprintf("(%s rows)", r.Number(len(rows))))
	return nil
}
