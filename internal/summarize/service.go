package summarize

import (
	"context"
	"strings"

	"github.com/kbukum/podscribe/internal/episode"
	"github.com/kbukum/podscribe/internal/logger"
	"github.com/kbukum/podscribe/internal/transcript"
)

// Cache method keys. Encoding the strategy in the key means a future strategy
// change invalidates old cache entries naturally.
const (
	// SummaryMethod identifies the summarization strategy in the cache key.
	SummaryMethod = "1"
	// AnswerMethod identifies the question-answering strategy in the cache key.
	AnswerMethod = "2"
)

const (
	summarySystemPrompt = "You summarize podcast transcripts. Reply with a concise summary of the main topics and conclusions."
	answerSystemPrompt  = "You answer questions about a podcast using only its transcript. If the transcript does not contain the answer, say so."
)

// Service computes episode summaries and answers, caching summaries to flat
// files read-through: an existing cache file is returned verbatim without
// recomputation.
type Service struct {
	store *episode.Store
	llm   Provider
	log   *logger.Logger
}

// NewService creates a summarization service.
func NewService(store *episode.Store, llm Provider, log *logger.Logger) *Service {
	return &Service{
		store: store,
		llm:   llm,
		log:   log.WithComponent("summarize"),
	}
}

// Summarize returns the episode summary, computing and caching it on first use.
func (s *Service) Summarize(ctx context.Context, episodeID string) (string, error) {
	return s.cached(ctx, episodeID, SummaryMethod, func() (*CompletionResponse, error) {
		text, err := s.transcriptText(ctx, episodeID)
		if err != nil {
			return nil, err
		}
		return s.llm.Complete(ctx, CompletionRequest{
			Messages: []Message{
				{Role: "system", Content: summarySystemPrompt},
				{Role: "user", Content: text},
			},
			Temperature: 0.01,
		})
	})
}

// Answer answers a free-form question about the episode. The answer cache is
// keyed per episode, not per query: a cached answer file is returned verbatim
// regardless of the question asked.
func (s *Service) Answer(ctx context.Context, episodeID, query string) (string, error) {
	return s.cached(ctx, episodeID, AnswerMethod, func() (*CompletionResponse, error) {
		text, err := s.transcriptText(ctx, episodeID)
		if err != nil {
			return nil, err
		}
		return s.llm.Complete(ctx, CompletionRequest{
			Messages: []Message{
				{Role: "system", Content: answerSystemPrompt},
				{Role: "user", Content: "Transcript:\n" + text + "\n\nQuestion: " + query},
			},
		})
	})
}

// cached wraps a completion in read-through flat-file caching under the given
// method key.
func (s *Service) cached(ctx context.Context, episodeID, method string, complete func() (*CompletionResponse, error)) (string, error) {
	hit, ok, err := s.store.Summary(ctx, episodeID, method)
	if err != nil {
		return "", err
	}
	if ok {
		s.log.Debug("cache hit", map[string]interface{}{
			"episode_id": episodeID,
			"method":     method,
		})
		return hit, nil
	}

	resp, err := complete()
	if err != nil {
		return "", err
	}

	if err := s.store.SaveSummary(ctx, episodeID, method, resp.Content); err != nil {
		return "", err
	}
	s.log.Info("completion computed", map[string]interface{}{
		"episode_id": episodeID,
		"method":     method,
		"model":      resp.Model,
	})
	return resp.Content, nil
}

// transcriptText loads the stored transcript and joins its coalesced segment
// texts into one corpus string.
func (s *Service) transcriptText(ctx context.Context, episodeID string) (string, error) {
	tr, err := s.store.Transcript(ctx, episodeID)
	if err != nil {
		return "", err
	}
	segments := transcript.Coalesce(tr.Segments)
	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}
	return strings.Join(texts, " "), nil
}
