// Package report renders stage-date vectors into the CSV shape consumed by
// external flow-analytics tooling.
package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/theappraisallane/jira-to-analytics/internal/workflow"
)

// Row is one issue's stage-date vector, positionally aligned with the
// workflow stages.
type Row struct {
	Key   string
	Dates []string
}

// WriteCSV writes a header of stage names followed by one row per issue.
// Rows are emitted in input order so repeated extractions diff cleanly.
func WriteCSV(out io.Writer, w *workflow.Workflow, rows []Row) error {
	cw := csv.NewWriter(out)

	header := append([]string{"ID"}, w.StageNames()...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, r := range rows {
		if len(r.Dates) != w.Len() {
			return fmt.Errorf("row %s has %d dates, workflow has %d stages", r.Key, len(r.Dates), w.Len())
		}
		record := append([]string{r.Key}, r.Dates...)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row %s: %w", r.Key, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
