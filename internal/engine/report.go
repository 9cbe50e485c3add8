package engine

import (
	"bufio"
	"fmt"
	"io"

	"github.com/alexisbeaulieu97/shopflow/internal/model"
)

// WriteReport prints one line per result followed by the totals line.
func WriteReport(w io.Writer, results []model.StepResult) error {
	buf := bufio.NewWriter(w)
	for _, result := range results {
		if result.Detail != "" {
			fmt.Fprintf(buf, "[%s] %s: %s\n", result.Status.Label(), result.Name, result.Detail)
		} else {
			fmt.Fprintf(buf, "[%s] %s\n", result.Status.Label(), result.Name)
		}
	}

	summary := model.Summarize(results)
	fmt.Fprintf(buf, "\nTotals: %d ok, %d failed, %d skipped\n", summary.OK, summary.Failed, summary.Skipped)
	return buf.Flush()
}
