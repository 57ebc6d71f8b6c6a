package stagedates

import (
	"fmt"
	"slices"
	"time"

	"github.com/theappraisallane/jira-to-analytics/internal/jira"
)

// Transition represents one status change of an issue, time-ordered relative
// to all other transitions of the same issue. PrevOccurredAt is the timestamp
// of the transition immediately preceding it (nil for the first one).
type Transition struct {
	FromStatus     string
	ToStatus       string
	OccurredAt     time.Time
	PrevOccurredAt *time.Time
}

// ExtractTransitions turns a raw changelog into a time-ordered transition
// sequence. History entries carrying no status change are discarded. An
// unparseable timestamp on a status entry is a caller contract violation
// and fails fast.
func ExtractTransitions(changelog *jira.ChangelogDTO) ([]Transition, error) {
	if changelog == nil {
		return nil, nil
	}

	var transitions []Transition
	for _, h := range changelog.Histories {
		var statusItems []jira.ItemDTO
		for _, itm := range h.Items {
			if itm.Field == "status" {
				statusItems = append(statusItems, itm)
			}
		}
		if len(statusItems) == 0 {
			continue
		}

		occurredAt, err := jira.ParseTime(h.Created)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed changelog timestamp %q", ErrInvalidInput, h.Created)
		}

		for _, itm := range statusItems {
			transitions = append(transitions, Transition{
				FromStatus: itm.FromString,
				ToStatus:   itm.ToString,
				OccurredAt: occurredAt,
			})
		}
	}

	// Stable: equal timestamps keep their original relative order.
	slices.SortStableFunc(transitions, func(a, b Transition) int {
		return a.OccurredAt.Compare(b.OccurredAt)
	})

	for i := 1; i < len(transitions); i++ {
		prev := transitions[i-1].OccurredAt
		transitions[i].PrevOccurredAt = &prev
	}

	return transitions, nil
}
