// Package stagedates reconstructs, for a single issue, the calendar date on
// which it entered (or is projected to enter) each stage of a workflow.
//
// The pipeline is a pure function of its inputs: the raw changelog is turned
// into a time-ordered transition sequence, business-day durations are
// accumulated for the active stages, entry dates are recorded for the
// inactive ones, and a deterministic simulation pass (backward from the Done
// date for completed issues, forward from the first active-stage start
// otherwise) emits one date string per workflow stage in workflow order.
package stagedates

import (
	"errors"
	"fmt"
	"time"

	"github.com/theappraisallane/jira-to-analytics/internal/calendar"
	"github.com/theappraisallane/jira-to-analytics/internal/jira"
	"github.com/theappraisallane/jira-to-analytics/internal/workflow"
)

// ErrInvalidInput marks caller contract violations: an active status missing
// from the workflow, or a timestamp that cannot be parsed. All other input
// irregularities degrade to empty output instead of failing.
var ErrInvalidInput = errors.New("invalid input")

// GetStageDates computes the per-stage date vector for one issue. The result
// has one element per workflow stage, positionally aligned with the workflow:
// either a YYYY-MM-DD date or "" for stages not (yet) reached. asOf bounds
// the open episode of an issue still sitting in an active stage; pass the
// current time for live data.
func GetStageDates(issue jira.IssueDTO, w *workflow.Workflow, active workflow.ActiveSet, cal calendar.Calendar, asOf time.Time) ([]string, error) {
	if err := active.Validate(w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := jira.ParseTime(issue.Fields.Created)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed creation timestamp %q", ErrInvalidInput, issue.Fields.Created)
	}

	transitions, err := ExtractTransitions(issue.Changelog)
	if err != nil {
		return nil, err
	}

	durations, anchor := AccumulateActiveDurations(w, active, transitions, created, asOf, cal)
	inactiveDates := ExtractInactiveDates(w, active, transitions)

	if _, done := inactiveDates[DoneStage]; done {
		return simulateBackward(w, active, durations, inactiveDates, cal), nil
	}
	return simulateForward(w, active, durations, inactiveDates, anchor, cal), nil
}
