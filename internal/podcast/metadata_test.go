package podcast

import (
	"testing"
	"time"
)

func TestEpisodeID(t *testing.T) {
	t.Run("hashes the source URL", func(t *testing.T) {
		got := EpisodeID("https://example.com/episode.mp3")
		want := "0238dedf028f32bd6bdbc1a1de1f6b81"
		if got != want {
			t.Errorf("EpisodeID = %q, want %q", got, want)
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		a := EpisodeID("https://example.com/episode.mp3")
		b := EpisodeID("https://example.com/episode.mp3")
		if a != b {
			t.Errorf("EpisodeID not stable: %q != %q", a, b)
		}
	})

	t.Run("distinct URLs yield distinct IDs", func(t *testing.T) {
		a := EpisodeID("https://example.com/episode.mp3")
		b := EpisodeID("https://example.com/other.mp3")
		if a == b {
			t.Error("different URLs produced the same episode ID")
		}
	})
}

func TestNewMetadata(t *testing.T) {
	now := time.Date(2026, 8, 25, 14, 30, 5, 0, time.UTC)
	url := "https://example.com/episode.mp3"

	meta := NewMetadata(url, now)
	if meta.GUIDHash != EpisodeID(url) {
		t.Errorf("GUIDHash = %q, want %q", meta.GUIDHash, EpisodeID(url))
	}
	if meta.OriginalDownloadLink != url {
		t.Errorf("OriginalDownloadLink = %q, want %q", meta.OriginalDownloadLink, url)
	}
	if meta.PublishDate != "2026-08-25 14:30:05" {
		t.Errorf("PublishDate = %q, want %q", meta.PublishDate, "2026-08-25 14:30:05")
	}
	if meta.Transcribed {
		t.Error("new metadata must not be marked transcribed")
	}
}
