package stagedates

import (
	"time"

	"github.com/theappraisallane/jira-to-analytics/internal/calendar"
	"github.com/theappraisallane/jira-to-analytics/internal/workflow"
)

// DoneStage is the literal terminal stage name that decides the simulation
// direction: issues with a recorded entry into it are simulated backward
// from that date, everything else forward from the anchor.
const DoneStage = "Done"

// DateFormat is the output date layout. Unreached stages render as "".
const DateFormat = "2006-01-02"

// simulateBackward reconstructs active-stage start dates for a completed
// issue by walking active stages in reverse workflow order and subtracting
// each stage's accumulated business days from a cursor seeded with the Done
// date. Stages without episodes are skipped and leave the cursor untouched.
func simulateBackward(w *workflow.Workflow, active workflow.ActiveSet, durations map[string]StageDuration, inactiveDates map[string]time.Time, cal calendar.Calendar) []string {
	simulated := make(map[string]time.Time)

	names := w.StageNames()
	cursor := inactiveDates[DoneStage]
	for i := len(names) - 1; i >= 0; i-- {
		name := names[i]
		if !active[name] {
			continue
		}
		record := durations[name]
		if !record.DidHappen {
			continue
		}
		// The cursor holds the end of this stage; moving it back by the
		// stage's duration yields its start, which is both this stage's
		// date and the end of the previous active stage.
		cursor = cal.SubtractBusinessDays(cursor, record.PassedBusinessDays)
		simulated[name] = cursor
	}

	out := make([]string, 0, w.Len())
	for _, name := range names {
		if active[name] {
			out = append(out, formatDate(simulated, name))
			continue
		}
		out = append(out, formatDate(inactiveDates, name))
	}
	return out
}

// simulateForward projects stage dates for an issue that has not reached
// Done: the cursor starts at the anchor (the first active stage's observed
// start) and advances by each active stage's accumulated business days.
func simulateForward(w *workflow.Workflow, active workflow.ActiveSet, durations map[string]StageDuration, inactiveDates map[string]time.Time, anchor *time.Time, cal calendar.Calendar) []string {
	out := make([]string, 0, w.Len())
	cursor := anchor

	for _, name := range w.StageNames() {
		switch {
		case name == DoneStage:
			// Not reached on this branch; a recorded date would mean a
			// retroactively added Done transition, which still wins.
			out = append(out, formatDate(inactiveDates, name))
		case !active[name]:
			out = append(out, formatDate(inactiveDates, name))
		default:
			record := durations[name]
			if !record.DidHappen || cursor == nil {
				out = append(out, "")
				continue
			}
			out = append(out, cursor.Format(DateFormat))
			next := cal.AddBusinessDays(*cursor, record.PassedBusinessDays)
			cursor = &next
		}
	}
	return out
}

func formatDate(dates map[string]time.Time, name string) string {
	d, ok := dates[name]
	if !ok {
		return ""
	}
	return d.Format(DateFormat)
}
