package stagedates

import (
	"time"

	"github.com/theappraisallane/jira-to-analytics/internal/calendar"
	"github.com/theappraisallane/jira-to-analytics/internal/workflow"
)

// StageDuration is the accumulated business-day record for one active stage.
// DidHappen stays false when no episode in that stage was ever observed.
type StageDuration struct {
	DidHappen          bool
	PassedBusinessDays int
}

// AccumulateActiveDurations sums, per active stage, the business-day span of
// every episode the issue spent in that stage, and reports the anchor date:
// the truncated start of the first episode found on the earliest active stage
// in workflow order. The anchor is set exactly once and never overwritten.
//
// An episode is normally bounded by the transition entering the stage and the
// transition leaving it; the exit transition carries both bounds (its own
// timestamp and its predecessor's). Two irregular shapes are covered:
//
//   - An issue whose very first recorded transition already leaves an active
//     stage was created inside it, so the creation timestamp substitutes for
//     the missing entry event.
//   - An issue currently sitting in an active stage has an open episode with
//     no exit; its span runs from the entry up to asOf.
func AccumulateActiveDurations(w *workflow.Workflow, active workflow.ActiveSet, transitions []Transition, created time.Time, asOf time.Time, cal calendar.Calendar) (map[string]StageDuration, *time.Time) {
	durations := make(map[string]StageDuration)
	var anchor *time.Time

	asOfDay := calendar.Truncate(asOf)

	for _, name := range w.StageNames() {
		if !active[name] {
			continue
		}

		record := StageDuration{}

		for _, t := range transitions {
			if t.FromStatus != name {
				continue
			}
			start := created
			if t.PrevOccurredAt != nil {
				start = *t.PrevOccurredAt
			}
			startDay := calendar.Truncate(start)
			endDay := calendar.Truncate(t.OccurredAt)

			record.PassedBusinessDays += cal.BusinessDaysBetween(startDay, endDay)
			record.DidHappen = true
			if anchor == nil {
				anchor = &startDay
			}
		}

		// Open episode: the issue entered this stage and never left it.
		if n := len(transitions); n > 0 && transitions[n-1].ToStatus == name {
			entryDay := calendar.Truncate(transitions[n-1].OccurredAt)
			if elapsed := cal.BusinessDaysBetween(entryDay, asOfDay); elapsed > 0 {
				record.PassedBusinessDays += elapsed
			}
			record.DidHappen = true
			if anchor == nil {
				anchor = &entryDay
			}
		}

		durations[name] = record
	}

	return durations, anchor
}

// ExtractInactiveDates records, for every workflow stage outside the active
// set, the truncated date of the first transition entering it. The stage the
// issue was created in never appears as a destination; if it is inactive,
// the first transition (the one leaving it) supplies its date. Stages never
// entered are absent from the result.
func ExtractInactiveDates(w *workflow.Workflow, active workflow.ActiveSet, transitions []Transition) map[string]time.Time {
	dates := make(map[string]time.Time)
	for _, name := range w.StageNames() {
		if active[name] {
			continue
		}
		if len(transitions) > 0 && transitions[0].FromStatus == name {
			dates[name] = calendar.Truncate(transitions[0].OccurredAt)
			continue
		}
		for _, t := range transitions {
			if t.ToStatus == name {
				dates[name] = calendar.Truncate(t.OccurredAt)
				break
			}
		}
	}
	return dates
}
