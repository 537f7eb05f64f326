package jobs

import (
	"errors"
	"testing"
	"time"
)

func TestTrackerRetention(t *testing.T) {
	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	t.Run("terminal records are swept after the retention window", func(t *testing.T) {
		tracker := NewTracker()
		tracker.now = func() time.Time { return base }

		tracker.Create("done", "ep1")
		tracker.Complete("done")
		tracker.Create("failed", "ep2")
		tracker.Fail("failed", errors.New("boom"))

		// Still pollable inside the window.
		tracker.now = func() time.Time { return base.Add(DefaultRecordRetention - time.Second) }
		tracker.Create("mid", "ep3")
		if _, ok := tracker.Snapshot("done"); !ok {
			t.Error("terminal record swept before the retention window elapsed")
		}

		tracker.now = func() time.Time { return base.Add(DefaultRecordRetention) }
		tracker.Create("late", "ep4")
		if _, ok := tracker.Snapshot("done"); ok {
			t.Error("completed record not swept after the retention window")
		}
		if _, ok := tracker.Snapshot("failed"); ok {
			t.Error("failed record not swept after the retention window")
		}
		if _, ok := tracker.Snapshot("late"); !ok {
			t.Error("fresh record missing")
		}
	})

	t.Run("live records are never swept", func(t *testing.T) {
		tracker := NewTracker()
		tracker.now = func() time.Time { return base }
		tracker.Create("live", "ep1")
		tracker.SetPlan("live", 3)

		tracker.now = func() time.Time { return base.Add(24 * time.Hour) }
		tracker.Create("new", "ep2")

		snap, ok := tracker.Snapshot("live")
		if !ok {
			t.Fatal("running job was swept")
		}
		if len(snap.Leaves) != 3 {
			t.Errorf("got %d leaves, want 3", len(snap.Leaves))
		}
	})
}
