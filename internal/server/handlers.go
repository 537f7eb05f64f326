package server

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/podscribe/internal/apperrors"
	"github.com/kbukum/podscribe/internal/episode"
	"github.com/kbukum/podscribe/internal/jobs"
	"github.com/kbukum/podscribe/internal/logger"
	"github.com/kbukum/podscribe/internal/podcast"
	"github.com/kbukum/podscribe/internal/summarize"
	"github.com/kbukum/podscribe/internal/transcript"
)

// urlRe is the permissive sanity check applied to user-supplied search URLs.
var urlRe = regexp.MustCompile(`^(http|https)?:/{2}\w.+$`)

// API wires the HTTP surface to the application services.
type API struct {
	store      *episode.Store
	discoverer *podcast.Discoverer
	jobs       *jobs.Service
	summarizer *summarize.Service
	log        *logger.Logger
	now        func() time.Time
}

// NewAPI creates the API handler set.
func NewAPI(store *episode.Store, discoverer *podcast.Discoverer, jobService *jobs.Service, summarizer *summarize.Service, log *logger.Logger) *API {
	return &API{
		store:      store,
		discoverer: discoverer,
		jobs:       jobService,
		summarizer: summarizer,
		log:        log.WithComponent("api"),
		now:        time.Now,
	}
}

// Register mounts all API routes on the engine.
func (a *API) Register(engine *gin.Engine) {
	api := engine.Group("/api")
	api.POST("/search", a.search)
	api.GET("/episode/:guid_hash", a.getEpisode)
	api.POST("/transcribe", a.startTranscription)
	api.GET("/status/:call_id", a.pollStatus)
	api.GET("/summarize/:guid_hash", a.getSummary)
	api.POST("/qa/:guid_hash", a.answerQuestion)
}

type searchRequest struct {
	FileURL string `json:"file_url" binding:"required"`
}

// search resolves a URL into episodes, registering metadata for each
// discovered audio link. Known episodes are returned as stored.
func (a *API) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, apperrors.InvalidInput("file_url", "missing or malformed body").WithCause(err))
		return
	}

	fileURL := strings.TrimSpace(req.FileURL)
	if !urlRe.MatchString(fileURL) {
		RespondWithError(c, apperrors.InvalidInput("file_url", "invalid url"))
		return
	}

	found, err := a.discoverer.Discover(c.Request.Context(), fileURL)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	episodes := make([]podcast.EpisodeMetadata, 0, len(found))
	for _, item := range found {
		meta, err := a.registerEpisode(c, item)
		if err != nil {
			RespondWithError(c, err)
			return
		}
		episodes = append(episodes, meta)
	}
	RespondOK(c, episodes)
}

// registerEpisode stores metadata on first discovery of a URL; later
// discoveries return the stored record unchanged.
func (a *API) registerEpisode(c *gin.Context, item podcast.Discovered) (podcast.EpisodeMetadata, error) {
	ctx := c.Request.Context()
	episodeID := podcast.EpisodeID(item.URL)

	exists, err := a.store.MetadataExists(ctx, episodeID)
	if err != nil {
		return podcast.EpisodeMetadata{}, err
	}
	if exists {
		return a.store.Metadata(ctx, episodeID)
	}

	meta := podcast.NewMetadata(item.URL, a.now())
	if item.PublishDate != "" {
		meta.PublishDate = item.PublishDate
	}
	if err := a.store.SaveMetadata(ctx, meta); err != nil {
		return podcast.EpisodeMetadata{}, err
	}
	a.log.Info("episode registered", map[string]interface{}{
		"episode_id": episodeID,
		"url":        item.URL,
	})
	return meta, nil
}

type episodeResponse struct {
	Metadata podcast.EpisodeMetadata `json:"metadata"`
	Segments []transcript.Segment    `json:"segments,omitempty"`
}

// getEpisode returns episode metadata, plus coalesced transcript segments
// once a completed transcript exists. Coalescing happens lazily on read.
func (a *API) getEpisode(c *gin.Context) {
	ctx := c.Request.Context()
	episodeID := c.Param("guid_hash")

	meta, err := a.store.Metadata(ctx, episodeID)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	exists, err := a.store.TranscriptExists(ctx, episodeID)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	if !exists {
		RespondOK(c, episodeResponse{Metadata: meta})
		return
	}

	tr, err := a.store.Transcript(ctx, episodeID)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, episodeResponse{
		Metadata: meta,
		Segments: transcript.Coalesce(tr.Segments),
	})
}

// startTranscription dispatches a background transcription job, or returns
// the call ID of the existing live job for the episode.
func (a *API) startTranscription(c *gin.Context) {
	ctx := c.Request.Context()
	episodeID := c.Query("episode_id")
	if episodeID == "" {
		RespondWithError(c, apperrors.InvalidInput("episode_id", "episode_id is required"))
		return
	}

	exists, err := a.store.MetadataExists(ctx, episodeID)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	if !exists {
		RespondWithError(c, apperrors.NotFound("episode", episodeID))
		return
	}

	callID, started := a.jobs.StartTranscription(episodeID, a.now())
	if started {
		a.log.Info("transcription dispatched", map[string]interface{}{
			"episode_id": episodeID,
			"call_id":    callID,
		})
	}
	RespondOK(c, gin.H{"call_id": callID})
}

// pollStatus reports progress of a dispatched job.
func (a *API) pollStatus(c *gin.Context) {
	status, err := a.jobs.Status(c.Param("call_id"))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, status)
}

// getSummary returns the episode summary, computing and caching on first use.
func (a *API) getSummary(c *gin.Context) {
	summary, err := a.summarizer.Summarize(c.Request.Context(), c.Param("guid_hash"))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, gin.H{"summary": summary})
}

type qaRequest struct {
	Query string `json:"query" binding:"required"`
}

// answerQuestion answers a free-form question about the episode transcript.
func (a *API) answerQuestion(c *gin.Context) {
	var req qaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, apperrors.InvalidInput("query", "missing or malformed body").WithCause(err))
		return
	}

	answer, err := a.summarizer.Answer(c.Request.Context(), c.Param("guid_hash"), req.Query)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, gin.H{"answer": answer})
}
