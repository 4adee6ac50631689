package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"stackval/internal/config"
)

// Render writes the human-readable session report: one color-partitioned
// table of results plus the final numeric summary. The report is the only
// emitted artifact; nothing is persisted.
func Render(w io.Writer, results []Result, summary Summary) {
	if len(results) == 0 {
		fmt.Fprintln(w, text.FgYellow.Sprint("No results recorded"))
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("ENVIRONMENT"),
		text.FgHiCyan.Sprint("PROBE"),
		text.FgHiCyan.Sprint("OUTCOME"),
		text.FgHiCyan.Sprint("DETAIL"),
	})

	for _, r := range results {
		t.AppendRow(table.Row{
			string(r.Environment),
			r.Probe,
			formatOutcome(r.Passed),
			formatDiagnostic(r.Diagnostic),
		})
	}
	t.Render()

	fmt.Fprintln(w)
	for _, class := range config.AllClasses() {
		counts, ok := summary.ByEnvironment[class]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s %s\n",
			text.FgHiBlue.Sprintf("%-11s", string(class)+":"),
			formatCounts(counts))
	}
	fmt.Fprintf(w, "%s %s\n",
		text.FgHiBlue.Sprint("overall:   "),
		formatCounts(summary.Counts))
}

func formatOutcome(passed bool) string {
	if passed {
		return text.FgGreen.Sprint("✅ PASS")
	}
	return text.FgRed.Sprint("❌ FAIL")
}

func formatDiagnostic(diag string) string {
	if diag == "" {
		return text.FgHiBlack.Sprint("-")
	}
	// Keep the table readable; the full diagnostic already went to the log.
	if idx := strings.IndexByte(diag, '\n'); idx >= 0 {
		diag = diag[:idx] + " …"
	}
	return diag
}

func formatCounts(c Counts) string {
	failed := text.FgGreen.Sprintf("%d failed", c.Failed)
	if c.Failed > 0 {
		failed = text.FgRed.Sprintf("%d failed", c.Failed)
	}
	return fmt.Sprintf("%d total, %s, %s",
		c.Total, text.FgGreen.Sprintf("%d passed", c.Passed), failed)
}
