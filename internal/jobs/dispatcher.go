package jobs

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/kbukum/podscribe/internal/apperrors"
	"github.com/kbukum/podscribe/internal/episode"
	"github.com/kbukum/podscribe/internal/logger"
	"github.com/kbukum/podscribe/internal/media"
	"github.com/kbukum/podscribe/internal/podcast"
	"github.com/kbukum/podscribe/internal/transcriber"
	"github.com/kbukum/podscribe/internal/transcript"
)

// DefaultWorkerCount bounds per-job transcription parallelism.
const DefaultWorkerCount = 4

// Dispatcher runs the body of a transcription job: resolve audio, build the
// segmentation plan, fan segments out to transcription workers, and fold the
// results back into one chronological transcript.
type Dispatcher struct {
	store      *episode.Store
	downloader *podcast.Downloader
	segmenter  *media.Segmenter
	asr        transcriber.Provider
	tracker    *Tracker
	limiter    *rate.Limiter
	workers    int
	tracer     trace.Tracer
	log        *logger.Logger

	// cut extracts one span of the stored audio. Defaults to media.Cut.
	cut func(ctx context.Context, srcPath string, span media.Span) ([]byte, error)
}

// NewDispatcher creates a Dispatcher. workers <= 0 selects DefaultWorkerCount;
// a nil limiter disables worker rate limiting.
func NewDispatcher(
	store *episode.Store,
	downloader *podcast.Downloader,
	segmenter *media.Segmenter,
	asr transcriber.Provider,
	tracker *Tracker,
	limiter *rate.Limiter,
	workers int,
	tracer trace.Tracer,
	log *logger.Logger,
) *Dispatcher {
	if workers <= 0 {
		workers = DefaultWorkerCount
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Dispatcher{
		store:      store,
		downloader: downloader,
		segmenter:  segmenter,
		asr:        asr,
		tracker:    tracker,
		limiter:    limiter,
		workers:    workers,
		tracer:     tracer,
		log:        log.WithComponent("dispatcher"),
		cut:        media.Cut,
	}
}

// Run executes the job body referenced by callID. Any error is recorded in
// the tracker and returned; the caller owns registry cleanup.
func (d *Dispatcher) Run(ctx context.Context, callID, episodeID string) error {
	ctx, span := d.tracer.Start(ctx, "job.run",
		trace.WithAttributes(
			attribute.String("episode_id", episodeID),
			attribute.String("call_id", callID),
		))
	defer span.End()

	if err := d.run(ctx, callID, episodeID); err != nil {
		d.tracker.Fail(callID, err)
		span.RecordError(err)
		return err
	}
	d.tracker.Complete(callID)
	return nil
}

func (d *Dispatcher) run(ctx context.Context, callID, episodeID string) error {
	meta, err := d.store.Metadata(ctx, episodeID)
	if err != nil {
		return err
	}

	if err := d.ensureRawAudio(ctx, meta); err != nil {
		return err
	}

	// Duplicate dispatches for an already-transcribed episode skip
	// re-transcription entirely.
	exists, err := d.store.TranscriptExists(ctx, episodeID)
	if err != nil {
		return err
	}
	if exists {
		d.log.Info("transcript already exists, skipping transcription", map[string]interface{}{
			"episode_id": episodeID,
		})
		return d.finalize(ctx, episodeID)
	}

	plan, err := d.buildPlan(ctx, episodeID)
	if err != nil {
		return err
	}
	d.tracker.SetPlan(callID, len(plan))

	results, err := d.transcribePlan(ctx, callID, episodeID, plan)
	if err != nil {
		return err
	}

	tr := mergeResults(plan, results)

	ctx, persistSpan := d.tracer.Start(ctx, "job.persist")
	defer persistSpan.End()
	if err := d.store.SaveTranscript(ctx, episodeID, tr); err != nil {
		return err
	}
	return d.finalize(ctx, episodeID)
}

// ensureRawAudio downloads the episode audio unless it is already stored.
func (d *Dispatcher) ensureRawAudio(ctx context.Context, meta podcast.EpisodeMetadata) error {
	exists, err := d.store.RawAudioExists(ctx, meta.GUIDHash)
	if err != nil {
		return err
	}
	if exists {
		d.log.Info("audio already stored, skipping download", map[string]interface{}{
			"episode_id": meta.GUIDHash,
		})
		return nil
	}

	ctx, span := d.tracer.Start(ctx, "job.download")
	defer span.End()

	result, err := d.downloader.Download(ctx, meta.OriginalDownloadLink)
	if err != nil {
		return err
	}
	d.log.Info("episode audio downloaded", map[string]interface{}{
		"episode_id":   meta.GUIDHash,
		"bytes":        len(result.Data),
		"content_type": result.ContentType,
	})
	return d.store.SaveRawAudio(ctx, meta.GUIDHash, result.Data)
}

// buildPlan probes and segments the stored audio. A probe failure is a fatal
// input error for the whole job.
func (d *Dispatcher) buildPlan(ctx context.Context, episodeID string) ([]media.Span, error) {
	ctx, span := d.tracer.Start(ctx, "job.segment")
	defer span.End()

	plan, err := d.segmenter.Segment(ctx, d.store.RawAudioLocalPath(episodeID))
	if err != nil {
		return nil, apperrors.AudioUnreadable(episodeID).WithCause(err)
	}
	span.SetAttributes(attribute.Int("segments", len(plan)))
	d.log.Info("segmentation plan built", map[string]interface{}{
		"episode_id": episodeID,
		"segments":   len(plan),
	})
	return plan, nil
}

// transcribePlan fans the plan out to a bounded worker pool. Workers pull
// leaves from a shared channel so a fast worker may handle several leaves;
// results land in plan order regardless of completion order. A single failed
// leaf fails the whole job.
func (d *Dispatcher) transcribePlan(ctx context.Context, callID, episodeID string, plan []media.Span) ([]*transcriber.Response, error) {
	ctx, span := d.tracer.Start(ctx, "job.transcribe")
	defer span.End()

	workers := d.workers
	if workers > len(plan) {
		workers = len(plan)
	}

	indices := make(chan int)
	results := make([]*transcriber.Response, len(plan))
	audioPath := d.store.RawAudioLocalPath(episodeID)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(indices)
		for i := range plan {
			select {
			case indices <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for workerID := 0; workerID < workers; workerID++ {
		g.Go(func() error {
			for i := range indices {
				if err := d.limiter.Wait(gctx); err != nil {
					return err
				}
				d.tracker.StartLeaf(callID, i, workerID)
				resp, err := d.transcribeLeaf(gctx, audioPath, plan[i])
				d.tracker.FinishLeaf(callID, i, err)
				if err != nil {
					return err
				}
				results[i] = resp
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// transcribeLeaf cuts one span out of the episode audio, transcribes it, and
// moves the resulting timestamps onto the episode timeline.
func (d *Dispatcher) transcribeLeaf(ctx context.Context, audioPath string, span media.Span) (*transcriber.Response, error) {
	data, err := d.cut(ctx, audioPath, span)
	if err != nil {
		return nil, err
	}
	resp, err := d.asr.Transcribe(ctx, transcriber.Request{Audio: data})
	if err != nil {
		return nil, err
	}
	transcript.Offset(resp.Segments, span.Start)
	return resp, nil
}

// finalize marks the episode transcribed and frees the raw audio storage.
func (d *Dispatcher) finalize(ctx context.Context, episodeID string) error {
	if err := d.store.MarkTranscribed(ctx, episodeID); err != nil {
		return err
	}
	if err := d.store.DeleteRawAudio(ctx, episodeID); err != nil {
		d.log.Warn("failed to delete raw audio", map[string]interface{}{
			"episode_id": episodeID,
			"error":      err.Error(),
		})
	}
	return nil
}

// mergeResults folds worker responses back together in plan order, so the
// final transcript is chronological regardless of which worker finished
// first. The episode language is decided by majority vote across workers,
// ties broken toward the earliest segment.
func mergeResults(plan []media.Span, results []*transcriber.Response) *transcript.Transcript {
	var text strings.Builder
	segments := make([]transcript.Segment, 0, len(plan))
	votes := make(map[string]int)
	language := ""

	for _, resp := range results {
		if resp == nil {
			continue
		}
		text.WriteString(resp.Text)
		segments = append(segments, resp.Segments...)
		if resp.Language == "" {
			continue
		}
		votes[resp.Language]++
		if language == "" || votes[resp.Language] > votes[language] {
			language = resp.Language
		}
	}

	return &transcript.Transcript{
		Text:     text.String(),
		Segments: segments,
		Language: language,
	}
}
