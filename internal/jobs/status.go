package jobs

import (
	"github.com/kbukum/podscribe/internal/apperrors"
)

// Terminal failure messages surfaced by the status endpoint. Anything that is
// not a source-permission failure collapses to the generic message.
const (
	statusErrPermissionDenied = "permission denied on podcast audio download"
	statusErrUnknown          = "unknown job processing error"
)

// Status is the poll result for one dispatched job. While the job is in the
// segmentation phase only Finished is populated; once leaves exist the
// counters are monotonically non-decreasing across repeated polls.
type Status struct {
	// Finished reports whether the whole dispatch reached terminal success.
	Finished bool `json:"finished"`
	// TotalSegments is the total leaf count.
	TotalSegments *int `json:"total_segments,omitempty"`
	// Tasks is the number of distinct workers that executed at least one
	// leaf. May be less than TotalSegments when one worker handled several.
	Tasks *int `json:"tasks,omitempty"`
	// DoneSegments counts leaves in a success terminal state.
	DoneSegments *int `json:"done_segments,omitempty"`
	// Error is set only for genuinely terminal failures; polling never
	// errors for "still running".
	Error string `json:"error,omitempty"`
}

// Aggregator reports human-consumable progress for dispatched jobs. It is a
// pure read over the tracker and never mutates the registry.
type Aggregator struct {
	tracker *Tracker
}

// NewAggregator creates an Aggregator over the given tracker.
func NewAggregator(tracker *Tracker) *Aggregator {
	return &Aggregator{tracker: tracker}
}

// Status inspects the job's execution state.
func (a *Aggregator) Status(callID string) (Status, error) {
	snap, ok := a.tracker.Snapshot(callID)
	if !ok {
		return Status{}, apperrors.NotFound("job", callID)
	}

	// A terminal error short-circuits graph inspection. A 403-class failure
	// on the audio source is reported distinctly so the caller can message
	// the end user; everything else collapses to a generic failure.
	if snap.Err != nil {
		if apperrors.CodeOf(snap.Err) == apperrors.ErrCodePermissionDenied {
			return Status{Error: statusErrPermissionDenied}, nil
		}
		return Status{Error: statusErrUnknown}, nil
	}

	// Leaves not created yet: still in the segmentation phase.
	if !snap.Planned {
		return Status{Finished: false}, nil
	}

	total := len(snap.Leaves)
	done := 0
	workers := make(map[int]bool)
	for _, leaf := range snap.Leaves {
		if leaf.State == LeafSucceeded {
			done++
		}
		if leaf.State != LeafPending && leaf.WorkerID >= 0 {
			workers[leaf.WorkerID] = true
		}
	}
	tasks := len(workers)

	return Status{
		Finished:      snap.Finished,
		TotalSegments: &total,
		Tasks:         &tasks,
		DoneSegments:  &done,
	}, nil
}
