// Package jobs contains the transcription job orchestration core: the
// deduplicating job registry, the per-leaf execution tracker, the
// dispatcher/merger that fans segments out to transcription workers, and the
// read-only status aggregator.
package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultJobTTL is the age after which an in-progress handle is treated as
// stale. A transcription taking longer than this should be exceedingly rare.
const DefaultJobTTL = 10 * time.Minute

// Handle references one in-flight transcription job. It is owned exclusively
// by the Registry.
type Handle struct {
	// EpisodeID is the episode being transcribed.
	EpisodeID string `json:"episode_id"`
	// CallID is the opaque identifier of the dispatched job.
	CallID string `json:"call_id"`
	// StartTime is when the job was acquired.
	StartTime time.Time `json:"start_time"`
}

// Registry guarantees at most one live transcription job per episode. It is
// shared across concurrent request handlers; AcquireOrGet is the single
// exclusive-access point of the whole core.
type Registry struct {
	mu         sync.Mutex
	ttl        time.Duration
	inProgress map[string]Handle
}

// NewRegistry creates a Registry with the given handle TTL. A zero ttl
// selects DefaultJobTTL.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultJobTTL
	}
	return &Registry{
		ttl:        ttl,
		inProgress: make(map[string]Handle),
	}
}

// AcquireOrGet returns the existing unexpired handle for episodeID, or
// atomically creates a new one and invokes launch with it before any other
// caller can observe the entry. The now parameter is explicit so staleness is
// testable without hidden wall-clock reads. The boolean reports whether a new
// job was started.
//
// An entry older than the TTL is treated as absent even though physically
// present: handles that failed to clean up (crashes, registry bugs) must not
// wedge the episode forever. Such entries are overwritten by the new handle.
func (r *Registry) AcquireOrGet(episodeID string, now time.Time, launch func(Handle)) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.inProgress[episodeID]; ok && now.Sub(h.StartTime) < r.ttl {
		return h, false
	}

	h := Handle{
		EpisodeID: episodeID,
		CallID:    uuid.New().String(),
		StartTime: now,
	}
	r.inProgress[episodeID] = h
	if launch != nil {
		launch(h)
	}
	return h, true
}

// Release removes the entry for episodeID. Jobs call this on both success and
// failure paths so an episode never stays permanently stuck.
func (r *Registry) Release(episodeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inProgress, episodeID)
}

// Len returns the number of physically present entries, live or stale.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inProgress)
}
