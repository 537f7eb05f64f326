// Command podscribe serves the podcast transcription API: episode discovery,
// silence-based segmentation, parallel whisper transcription, and LLM-backed
// summarize/QA, all persisted in a flat-file store.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/kbukum/podscribe/internal/config"
	"github.com/kbukum/podscribe/internal/episode"
	"github.com/kbukum/podscribe/internal/jobs"
	"github.com/kbukum/podscribe/internal/logger"
	"github.com/kbukum/podscribe/internal/media"
	"github.com/kbukum/podscribe/internal/observability"
	"github.com/kbukum/podscribe/internal/podcast"
	"github.com/kbukum/podscribe/internal/server"
	"github.com/kbukum/podscribe/internal/storage"
	"github.com/kbukum/podscribe/internal/summarize"
	"github.com/kbukum/podscribe/internal/transcriber"
)

func main() {
	configFile := flag.String("config", "", "path to config.yml (searches standard locations when empty)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.NewDefault("podscribe").Fatal("failed to load configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log := logger.New(&cfg.Logging, cfg.Base.Name)

	ctx := context.Background()
	shutdownTracer, err := observability.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		log.Fatal("failed to initialize tracing", map[string]interface{}{
			"error": err.Error(),
		})
	}

	backend, err := storage.NewLocal(cfg.Storage.BasePath)
	if err != nil {
		log.Fatal("failed to open storage", map[string]interface{}{
			"base_path": cfg.Storage.BasePath,
			"error":     err.Error(),
		})
	}
	store := episode.NewStore(backend)

	downloader := podcast.NewDownloader(cfg.Download.MaxBytes, cfg.Download.UserAgent, cfg.Download.Timeout)
	discoverer := podcast.NewDiscoverer(cfg.Download.Timeout)
	segmenter := media.NewSegmenter(cfg.Segmenter.NoiseFloor, cfg.Segmenter.MinSilenceLen, cfg.Segmenter.MinSegmentLen)
	asr := transcriber.NewWhisper(cfg.Transcriber)

	llm := summarize.NewChat(cfg.Summarizer)
	summarizer := summarize.NewService(store, llm, log)

	var limiter *rate.Limiter
	if cfg.Jobs.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.Jobs.RatePerMinute)/60.0), 1)
	}

	registry := jobs.NewRegistry(cfg.Jobs.TTL)
	tracker := jobs.NewTracker()
	dispatcher := jobs.NewDispatcher(
		store,
		downloader,
		segmenter,
		asr,
		tracker,
		limiter,
		cfg.Jobs.Workers,
		observability.Tracer("podscribe/jobs"),
		log,
	)
	jobService := jobs.NewService(registry, tracker, dispatcher, cfg.Jobs.Timeout, log)

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware()
	server.NewAPI(store, discoverer, jobService, summarizer, log).Register(srv.GinEngine())

	if err := srv.Start(ctx); err != nil {
		log.Fatal("failed to start server", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("podscribe ready", map[string]interface{}{
		"addr":        srv.Addr(),
		"environment": cfg.Base.Environment,
		"storage":     cfg.Storage.BasePath,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info("shutting down", map[string]interface{}{
		"signal": sig.String(),
	})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("server shutdown failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
