package jobs

import (
	"context"
	"time"

	"github.com/kbukum/podscribe/internal/logger"
)

// DefaultJobTimeout is the hard ceiling on one per-episode job.
const DefaultJobTimeout = 15 * time.Minute

// Service ties the registry, tracker, and dispatcher together: it starts
// background transcription jobs at most once per episode and exposes status
// polling.
type Service struct {
	registry   *Registry
	tracker    *Tracker
	dispatcher *Dispatcher
	aggregator *Aggregator
	jobTimeout time.Duration
	log        *logger.Logger
}

// NewService creates the job service. A zero jobTimeout selects
// DefaultJobTimeout.
func NewService(registry *Registry, tracker *Tracker, dispatcher *Dispatcher, jobTimeout time.Duration, log *logger.Logger) *Service {
	if jobTimeout <= 0 {
		jobTimeout = DefaultJobTimeout
	}
	return &Service{
		registry:   registry,
		tracker:    tracker,
		dispatcher: dispatcher,
		aggregator: NewAggregator(tracker),
		jobTimeout: jobTimeout,
		log:        log.WithComponent("jobs"),
	}
}

// StartTranscription returns the call ID for the episode's transcription job,
// starting a new background job only when no live one exists. The job
// detaches from the request: it runs under its own context with a hard
// timeout, and releases the registry entry on every exit path.
func (s *Service) StartTranscription(episodeID string, now time.Time) (callID string, started bool) {
	h, started := s.registry.AcquireOrGet(episodeID, now, func(h Handle) {
		s.tracker.Create(h.CallID, episodeID)
		go s.runJob(h)
	})
	if !started {
		s.log.Info("found existing unexpired job", map[string]interface{}{
			"episode_id": episodeID,
			"call_id":    h.CallID,
		})
	}
	return h.CallID, started
}

// Status reports progress for a dispatched job.
func (s *Service) Status(callID string) (Status, error) {
	return s.aggregator.Status(callID)
}

func (s *Service) runJob(h Handle) {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()
	defer s.registry.Release(h.EpisodeID)

	s.log.Info("transcription job started", map[string]interface{}{
		"episode_id": h.EpisodeID,
		"call_id":    h.CallID,
	})

	if err := s.dispatcher.Run(ctx, h.CallID, h.EpisodeID); err != nil {
		s.log.Error("transcription job failed", map[string]interface{}{
			"episode_id": h.EpisodeID,
			"call_id":    h.CallID,
			"error":      err.Error(),
		})
		return
	}

	s.log.Info("transcription job finished", map[string]interface{}{
		"episode_id": h.EpisodeID,
		"call_id":    h.CallID,
	})
}
