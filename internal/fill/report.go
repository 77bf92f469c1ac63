package fill

import (
	"fmt"
	"sort"
	"strings"

	"mlextractor/internal"
)

func buildReport(mode internal.WriteMode, totalProducts int, perRow []internal.RowOutcome) internal.FillReport {
	report := internal.FillReport{
		WriteMode:     mode,
		TotalProducts: totalProducts,
		PerRow:        perRow,
	}
	for _, outcome := range perRow {
		report.TotalFieldsFilled += len(outcome.Filled)
		report.TotalFieldsSkipped += len(outcome.Skipped)
	}
	return report
}

// Summarize renders a report for terminal output, one line per row plus
// totals. Fields inside a row are listed in a stable order.
func Summarize(report internal.FillReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "mode=%s products=%d filled=%d skipped=%d\n",
		report.WriteMode, report.TotalProducts, report.TotalFieldsFilled, report.TotalFieldsSkipped)

	for _, outcome := range report.PerRow {
		fmt.Fprintf(&b, "row %d:", outcome.Row)
		for _, field := range sortedFields(outcome.Filled) {
			fmt.Fprintf(&b, " %s=%v", field, outcome.Filled[field])
		}
		for _, field := range sortedSkips(outcome.Skipped) {
			fmt.Fprintf(&b, " %s!%s", field, outcome.Skipped[field])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func sortedFields(m map[internal.LogicalField]any) []internal.LogicalField {
	out := make([]internal.LogicalField, 0, len(m))
	for f := range m {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedSkips(m map[internal.LogicalField]internal.SkipReason) []internal.LogicalField {
	out := make([]internal.LogicalField, 0, len(m))
	for f := range m {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
