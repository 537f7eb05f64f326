package jobs

import (
	"sync"
	"time"
)

// DefaultRecordRetention is how long a terminal job record stays pollable
// before it is swept. Matches the registry's staleness horizon.
const DefaultRecordRetention = 10 * time.Minute

// LeafState is the lifecycle state of one per-segment worker invocation.
type LeafState string

const (
	// LeafPending means the leaf has not been picked up by a worker yet.
	LeafPending LeafState = "pending"
	// LeafRunning means a worker is transcribing the segment.
	LeafRunning LeafState = "running"
	// LeafSucceeded means the segment transcription completed.
	LeafSucceeded LeafState = "succeeded"
	// LeafFailed means the segment transcription failed.
	LeafFailed LeafState = "failed"
)

// Leaf is one row of the job-state table: a single segment-transcription
// invocation within a dispatched job.
type Leaf struct {
	// Index is the leaf's position in the segmentation plan.
	Index int
	// WorkerID identifies the pool worker that executed the leaf. -1 until a
	// worker picks it up.
	WorkerID int
	// State is the leaf's lifecycle state.
	State LeafState
}

// Snapshot is a consistent read of one job's execution state.
type Snapshot struct {
	EpisodeID string
	// Planned reports whether segmentation finished and leaves exist. While
	// false the job is still in the segmentation phase.
	Planned bool
	// Finished reports whether the whole dispatch reached terminal success.
	Finished bool
	// Err is the job's terminal error, if any.
	Err error
	// Leaves is a copy of the per-leaf rows.
	Leaves []Leaf
}

type jobRecord struct {
	episodeID string
	planned   bool
	finished  bool
	err       error
	leaves    []Leaf
	// doneAt is when the job reached a terminal state; zero while running.
	doneAt time.Time
}

// Tracker is the in-memory job-state table the status surface reads. It
// replaces a framework-provided call graph: the dispatcher writes one row per
// leaf as workers pick segments up and finish them. Terminal records are
// swept after a retention window so a long-lived process does not accumulate
// one record per job forever; live records are never swept.
type Tracker struct {
	mu        sync.RWMutex
	retention time.Duration
	now       func() time.Time
	jobs      map[string]*jobRecord
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		retention: DefaultRecordRetention,
		now:       time.Now,
		jobs:      make(map[string]*jobRecord),
	}
}

// Create registers a dispatched job before any of its work starts, sweeping
// expired terminal records while it holds the lock.
func (t *Tracker) Create(callID, episodeID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prune()
	t.jobs[callID] = &jobRecord{episodeID: episodeID}
}

// prune removes terminal records past the retention window. Caller holds the
// write lock.
func (t *Tracker) prune() {
	cutoff := t.now().Add(-t.retention)
	for callID, rec := range t.jobs {
		if !rec.doneAt.IsZero() && !rec.doneAt.After(cutoff) {
			delete(t.jobs, callID)
		}
	}
}

// SetPlan records the segmentation plan size, creating one pending leaf per
// segment.
func (t *Tracker) SetPlan(callID string, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.jobs[callID]
	if !ok {
		return
	}
	rec.leaves = make([]Leaf, total)
	for i := range rec.leaves {
		rec.leaves[i] = Leaf{Index: i, WorkerID: -1, State: LeafPending}
	}
	rec.planned = true
}

// StartLeaf marks a leaf as picked up by the given pool worker.
func (t *Tracker) StartLeaf(callID string, index, workerID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if rec, ok := t.jobs[callID]; ok && index < len(rec.leaves) {
		rec.leaves[index].WorkerID = workerID
		rec.leaves[index].State = LeafRunning
	}
}

// FinishLeaf records a leaf's terminal state.
func (t *Tracker) FinishLeaf(callID string, index int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.jobs[callID]
	if !ok || index >= len(rec.leaves) {
		return
	}
	if err != nil {
		rec.leaves[index].State = LeafFailed
	} else {
		rec.leaves[index].State = LeafSucceeded
	}
}

// Complete marks the whole job as terminally successful.
func (t *Tracker) Complete(callID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if rec, ok := t.jobs[callID]; ok {
		rec.finished = true
		if rec.doneAt.IsZero() {
			rec.doneAt = t.now()
		}
	}
}

// Fail records the job's terminal error. The first error wins; later calls
// are no-ops so the root cause is not overwritten by cleanup failures.
func (t *Tracker) Fail(callID string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.jobs[callID]
	if !ok {
		return
	}
	if rec.err == nil {
		rec.err = err
	}
	if rec.doneAt.IsZero() {
		rec.doneAt = t.now()
	}
}

// Snapshot returns a consistent copy of the job's state. The boolean reports
// whether the job is known.
func (t *Tracker) Snapshot(callID string) (Snapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.jobs[callID]
	if !ok {
		return Snapshot{}, false
	}
	leaves := make([]Leaf, len(rec.leaves))
	copy(leaves, rec.leaves)
	return Snapshot{
		EpisodeID: rec.episodeID,
		Planned:   rec.planned,
		Finished:  rec.finished,
		Err:       rec.err,
		Leaves:    leaves,
	}, true
}
