package episode

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/kbukum/podscribe/internal/apperrors"
	"github.com/kbukum/podscribe/internal/podcast"
	"github.com/kbukum/podscribe/internal/storage"
	"github.com/kbukum/podscribe/internal/transcript"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	backend, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return NewStore(backend)
}

func TestStoreMetadata(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	meta := podcast.NewMetadata("https://example.com/episode.mp3", time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC))

	t.Run("missing metadata is not found", func(t *testing.T) {
		_, err := store.Metadata(ctx, meta.GUIDHash)
		if apperrors.CodeOf(err) != apperrors.ErrCodeNotFound {
			t.Errorf("error code = %v, want %v", apperrors.CodeOf(err), apperrors.ErrCodeNotFound)
		}
		ok, err := store.MetadataExists(ctx, meta.GUIDHash)
		if err != nil || ok {
			t.Errorf("MetadataExists = %v, %v; want false, nil", ok, err)
		}
	})

	t.Run("roundtrips", func(t *testing.T) {
		if err := store.SaveMetadata(ctx, meta); err != nil {
			t.Fatalf("SaveMetadata: %v", err)
		}
		got, err := store.Metadata(ctx, meta.GUIDHash)
		if err != nil {
			t.Fatalf("Metadata: %v", err)
		}
		if got != meta {
			t.Errorf("Metadata = %+v, want %+v", got, meta)
		}
	})

	t.Run("MarkTranscribed flips the flag", func(t *testing.T) {
		if err := store.MarkTranscribed(ctx, meta.GUIDHash); err != nil {
			t.Fatalf("MarkTranscribed: %v", err)
		}
		got, err := store.Metadata(ctx, meta.GUIDHash)
		if err != nil {
			t.Fatalf("Metadata: %v", err)
		}
		if !got.Transcribed {
			t.Error("Transcribed flag not set")
		}
	})
}

func TestStoreTranscript(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	const episodeID = "abc123"

	tr := &transcript.Transcript{
		Text: "hello world",
		Segments: []transcript.Segment{
			{Text: "hello", Start: 0, End: 1.5},
			{Text: "world", Start: 1.5, End: 3},
		},
		Language: "en",
	}

	exists, err := store.TranscriptExists(ctx, episodeID)
	if err != nil || exists {
		t.Fatalf("TranscriptExists = %v, %v; want false, nil", exists, err)
	}

	if err := store.SaveTranscript(ctx, episodeID, tr); err != nil {
		t.Fatalf("SaveTranscript: %v", err)
	}

	exists, err = store.TranscriptExists(ctx, episodeID)
	if err != nil || !exists {
		t.Fatalf("TranscriptExists = %v, %v; want true, nil", exists, err)
	}

	got, err := store.Transcript(ctx, episodeID)
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if got.Text != tr.Text || got.Language != tr.Language || len(got.Segments) != len(tr.Segments) {
		t.Errorf("Transcript = %+v, want %+v", got, tr)
	}
}

func TestStoreRawAudio(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	const episodeID = "abc123"
	audio := []byte("raw-audio-bytes")

	if err := store.SaveRawAudio(ctx, episodeID, audio); err != nil {
		t.Fatalf("SaveRawAudio: %v", err)
	}

	exists, err := store.RawAudioExists(ctx, episodeID)
	if err != nil || !exists {
		t.Fatalf("RawAudioExists = %v, %v; want true, nil", exists, err)
	}

	data, err := os.ReadFile(store.RawAudioLocalPath(episodeID))
	if err != nil {
		t.Fatalf("reading local path: %v", err)
	}
	if string(data) != string(audio) {
		t.Errorf("local file = %q, want %q", data, audio)
	}

	if err := store.DeleteRawAudio(ctx, episodeID); err != nil {
		t.Fatalf("DeleteRawAudio: %v", err)
	}
	exists, err = store.RawAudioExists(ctx, episodeID)
	if err != nil || exists {
		t.Errorf("RawAudioExists after delete = %v, %v; want false, nil", exists, err)
	}

	// Deleting audio that is already gone must not error.
	if err := store.DeleteRawAudio(ctx, episodeID); err != nil {
		t.Errorf("DeleteRawAudio on missing file: %v", err)
	}
}

func TestStoreSummary(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	const episodeID = "abc123"

	_, ok, err := store.Summary(ctx, episodeID, "1")
	if err != nil || ok {
		t.Fatalf("Summary on empty store = ok=%v, err=%v; want false, nil", ok, err)
	}

	if err := store.SaveSummary(ctx, episodeID, "1", "a concise summary"); err != nil {
		t.Fatalf("SaveSummary: %v", err)
	}

	got, ok, err := store.Summary(ctx, episodeID, "1")
	if err != nil || !ok {
		t.Fatalf("Summary = ok=%v, err=%v; want true, nil", ok, err)
	}
	if got != "a concise summary" {
		t.Errorf("Summary = %q, want %q", got, "a concise summary")
	}

	// A different method key is a different cache entry.
	_, ok, err = store.Summary(ctx, episodeID, "2")
	if err != nil || ok {
		t.Errorf("Summary with other method = ok=%v, err=%v; want false, nil", ok, err)
	}
}
