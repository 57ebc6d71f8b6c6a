package stagedates

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/theappraisallane/jira-to-analytics/internal/calendar"
	"github.com/theappraisallane/jira-to-analytics/internal/jira"
	"github.com/theappraisallane/jira-to-analytics/internal/workflow"
)

// statusHistory builds a changelog entry containing a single status change.
func statusHistory(created, from, to string) jira.HistoryDTO {
	return jira.HistoryDTO{
		Created: created,
		Items: []jira.ItemDTO{
			{Field: "status", FromString: from, ToString: to},
		},
	}
}

func testIssue(created string, histories ...jira.HistoryDTO) jira.IssueDTO {
	issue := jira.IssueDTO{Key: "PROJ-1"}
	issue.Fields.Created = created
	if len(histories) > 0 {
		issue.Changelog = &jira.ChangelogDTO{Histories: histories}
	}
	return issue
}

func mustWorkflow(t *testing.T, names ...string) *workflow.Workflow {
	t.Helper()
	stages := make([]workflow.Stage, len(names))
	for i, n := range names {
		stages[i] = workflow.Stage{Name: n}
	}
	w, err := workflow.New(stages)
	if err != nil {
		t.Fatalf("building workflow: %v", err)
	}
	return w
}

func asOf(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parsing asOf date: %v", err)
	}
	return d
}

func TestCompletedIssueSimulatesBackwardFromDone(t *testing.T) {
	w := mustWorkflow(t, "Backlog", "In Progress", "Done")
	active := workflow.NewActiveSet([]string{"In Progress"})

	issue := testIssue("2024-01-01T09:00:00.000+0000",
		statusHistory("2024-01-02T10:00:00.000+0000", "Backlog", "In Progress"),
		statusHistory("2024-01-08T16:00:00.000+0000", "In Progress", "Done"),
	)

	dates, err := GetStageDates(issue, w, active, calendar.Default(), asOf(t, "2024-02-01"))
	if err != nil {
		t.Fatalf("GetStageDates returned error: %v", err)
	}

	want := []string{"2024-01-02", "2024-01-02", "2024-01-08"}
	if !reflect.DeepEqual(dates, want) {
		t.Errorf("Got %v, want %v", dates, want)
	}
}

func TestInFlightIssueSimulatesForwardFromAnchor(t *testing.T) {
	w := mustWorkflow(t, "Backlog", "In Progress", "Done")
	active := workflow.NewActiveSet([]string{"In Progress"})

	issue := testIssue("2024-01-02T09:00:00.000+0000",
		statusHistory("2024-01-03T10:00:00.000+0000", "Backlog", "In Progress"),
	)

	dates, err := GetStageDates(issue, w, active, calendar.Default(), asOf(t, "2024-01-05"))
	if err != nil {
		t.Fatalf("GetStageDates returned error: %v", err)
	}

	want := []string{"2024-01-03", "2024-01-03", ""}
	if !reflect.DeepEqual(dates, want) {
		t.Errorf("Got %v, want %v", dates, want)
	}
}

func TestActiveStageWithoutEpisodesStaysEmpty(t *testing.T) {
	w := mustWorkflow(t, "Backlog", "In Progress", "In Review", "Done")
	active := workflow.NewActiveSet([]string{"In Progress", "In Review"})

	// The issue skipped In Review entirely: its slot must stay empty and the
	// simulation cursor must not move on its account.
	issue := testIssue("2024-01-01T09:00:00.000+0000",
		statusHistory("2024-01-02T10:00:00.000+0000", "Backlog", "In Progress"),
		statusHistory("2024-01-08T16:00:00.000+0000", "In Progress", "Done"),
	)

	dates, err := GetStageDates(issue, w, active, calendar.Default(), asOf(t, "2024-02-01"))
	if err != nil {
		t.Fatalf("GetStageDates returned error: %v", err)
	}

	want := []string{"2024-01-02", "2024-01-02", "", "2024-01-08"}
	if !reflect.DeepEqual(dates, want) {
		t.Errorf("Got %v, want %v", dates, want)
	}

	// Same shape on the forward branch: still in progress, review never entered.
	inFlight := testIssue("2024-01-01T09:00:00.000+0000",
		statusHistory("2024-01-02T10:00:00.000+0000", "Backlog", "In Progress"),
	)
	dates, err = GetStageDates(inFlight, w, active, calendar.Default(), asOf(t, "2024-01-04"))
	if err != nil {
		t.Fatalf("GetStageDates returned error: %v", err)
	}
	want = []string{"2024-01-02", "2024-01-02", "", ""}
	if !reflect.DeepEqual(dates, want) {
		t.Errorf("Got %v, want %v", dates, want)
	}
}

func TestNoHistoryIssueYieldsEmptyVector(t *testing.T) {
	w := mustWorkflow(t, "Backlog", "In Progress", "Done")
	active := workflow.NewActiveSet([]string{"In Progress"})

	issue := testIssue("2024-01-01T09:00:00.000+0000")

	dates, err := GetStageDates(issue, w, active, calendar.Default(), asOf(t, "2024-01-15"))
	if err != nil {
		t.Fatalf("GetStageDates returned error: %v", err)
	}

	want := []string{"", "", ""}
	if !reflect.DeepEqual(dates, want) {
		t.Errorf("Got %v, want %v", dates, want)
	}
}

func TestOutputAlignsWithWorkflowOrder(t *testing.T) {
	w := mustWorkflow(t, "Backlog", "Dev", "Review", "Done")
	active := workflow.NewActiveSet([]string{"Dev", "Review"})

	issue := testIssue("2024-01-01T09:00:00.000+0000",
		statusHistory("2024-01-02T10:00:00.000+0000", "Backlog", "Dev"),
	)

	dates, err := GetStageDates(issue, w, active, calendar.Default(), asOf(t, "2024-01-03"))
	if err != nil {
		t.Fatalf("GetStageDates returned error: %v", err)
	}
	if len(dates) != w.Len() {
		t.Errorf("Output length %d, want %d", len(dates), w.Len())
	}
}

func TestRepeatedInvocationsAreDeterministic(t *testing.T) {
	w := mustWorkflow(t, "Backlog", "Dev", "Review", "Done")
	active := workflow.NewActiveSet([]string{"Dev", "Review"})

	issue := testIssue("2024-01-01T09:00:00.000+0000",
		statusHistory("2024-01-02T10:00:00.000+0000", "Backlog", "Dev"),
		statusHistory("2024-01-05T10:00:00.000+0000", "Dev", "Review"),
		statusHistory("2024-01-09T10:00:00.000+0000", "Review", "Done"),
	)

	ref := asOf(t, "2024-02-01")
	first, err := GetStageDates(issue, w, active, calendar.Default(), ref)
	if err != nil {
		t.Fatalf("GetStageDates returned error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := GetStageDates(issue, w, active, calendar.Default(), ref)
		if err != nil {
			t.Fatalf("GetStageDates returned error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Run %d differed: %v vs %v", i, again, first)
		}
	}
}

func TestForwardAgreesWithBackwardOnSharedPrefix(t *testing.T) {
	w := mustWorkflow(t, "Backlog", "Dev", "Review", "Done")
	active := workflow.NewActiveSet([]string{"Dev", "Review"})
	cal := calendar.Default()

	full := testIssue("2024-01-01T09:00:00.000+0000",
		statusHistory("2024-01-02T10:00:00.000+0000", "Backlog", "Dev"),
		statusHistory("2024-01-05T10:00:00.000+0000", "Dev", "Review"),
		statusHistory("2024-01-09T10:00:00.000+0000", "Review", "Done"),
	)
	backward, err := GetStageDates(full, w, active, cal, asOf(t, "2024-02-01"))
	if err != nil {
		t.Fatalf("GetStageDates returned error: %v", err)
	}

	// Drop the final Done transition: the forward branch, evaluated at the
	// original Done date, must reproduce the earlier stage dates.
	truncated := testIssue("2024-01-01T09:00:00.000+0000",
		statusHistory("2024-01-02T10:00:00.000+0000", "Backlog", "Dev"),
		statusHistory("2024-01-05T10:00:00.000+0000", "Dev", "Review"),
	)
	forward, err := GetStageDates(truncated, w, active, cal, asOf(t, "2024-01-09"))
	if err != nil {
		t.Fatalf("GetStageDates returned error: %v", err)
	}

	for i, name := range w.StageNames() {
		if name == DoneStage {
			continue
		}
		if forward[i] != backward[i] {
			t.Errorf("Stage %s: forward %q, backward %q", name, forward[i], backward[i])
		}
	}
	if forward[3] != "" {
		t.Errorf("Done must be empty on the forward branch, got %q", forward[3])
	}
}

func TestActiveStatusOutsideWorkflowFails(t *testing.T) {
	w := mustWorkflow(t, "Backlog", "Done")
	active := workflow.NewActiveSet([]string{"In Progress"})

	_, err := GetStageDates(testIssue("2024-01-01T09:00:00.000+0000"), w, active, calendar.Default(), time.Now())
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestMalformedCreationTimestampFails(t *testing.T) {
	w := mustWorkflow(t, "Backlog", "Done")
	active := workflow.NewActiveSet(nil)

	_, err := GetStageDates(testIssue("yesterday-ish"), w, active, calendar.Default(), time.Now())
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
