package jobs

import (
	"testing"
	"time"

	"github.com/kbukum/podscribe/internal/logger"
)

func TestServiceReleasesRegistryOnFailure(t *testing.T) {
	// The store is empty, so the dispatched job fails while loading the
	// episode metadata. The registry entry must still be released so the
	// episode can be retried, and the failure must surface on status polls.
	dispatcher, tracker := newTestDispatcher(t, &scriptedASR{}, 1)
	registry := NewRegistry(10 * time.Minute)
	svc := NewService(registry, tracker, dispatcher, time.Minute, logger.NewDefault("test"))

	callID, started := svc.StartTranscription("missing-episode", time.Now())
	if !started {
		t.Fatal("expected a new job to start")
	}

	deadline := time.Now().Add(5 * time.Second)
	for registry.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("registry entry was not released after the job failed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	st, err := svc.Status(callID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Error != statusErrUnknown {
		t.Errorf("Error = %q, want %q", st.Error, statusErrUnknown)
	}

	// With the registry released, a new dispatch is possible again.
	nextID, started := svc.StartTranscription("missing-episode", time.Now())
	if !started {
		t.Fatal("expected the episode to be dispatchable after release")
	}
	if nextID == callID {
		t.Error("retry returned the failed job's call ID")
	}
}
