package podcast

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsDirectAudioURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/show/episode.mp3", true},
		{"http://example.com/video.mp4", true},
		{"https://example.com/feed.xml", false},
		{"https://example.com/episode.mp3?sig=abc", false},
		{"not a url", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IsDirectAudioURL(tt.url); got != tt.want {
				t.Errorf("IsDirectAudioURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestDiscover(t *testing.T) {
	ctx := context.Background()

	t.Run("direct audio URL resolves to itself without fetching", func(t *testing.T) {
		d := NewDiscoverer(0)
		got, err := d.Discover(ctx, "https://example.com/a.mp3")
		if err != nil {
			t.Fatalf("Discover: %v", err)
		}
		if len(got) != 1 || got[0].URL != "https://example.com/a.mp3" {
			t.Errorf("Discover = %v, want the URL itself", got)
		}
	})

	t.Run("feed enclosures carry titles and dates", func(t *testing.T) {
		const feed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Pod</title>
    <item>
      <title>Episode One</title>
      <pubDate>Mon, 04 Aug 2026 10:00:00 GMT</pubDate>
      <enclosure url="https://cdn.example.com/ep1.mp3" type="audio/mpeg" length="1"/>
    </item>
    <item>
      <title>Episode Two</title>
      <pubDate>Tue, 05 Aug 2026 10:00:00 GMT</pubDate>
      <enclosure url="https://cdn.example.com/ep2.mp3" type="audio/mpeg" length="1"/>
    </item>
    <item>
      <title>Not Audio</title>
      <enclosure url="https://cdn.example.com/cover.png" type="image/png" length="1"/>
    </item>
  </channel>
</rss>`
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/rss+xml")
			w.Write([]byte(feed))
		}))
		defer srv.Close()

		got, err := NewDiscoverer(0).Discover(ctx, srv.URL)
		if err != nil {
			t.Fatalf("Discover: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d items, want 2: %v", len(got), got)
		}
		if got[0].URL != "https://cdn.example.com/ep1.mp3" || got[0].Title != "Episode One" {
			t.Errorf("item 0 = %+v", got[0])
		}
		if got[0].PublishDate == "" {
			t.Error("item 0 has no publish date")
		}
		if got[1].URL != "https://cdn.example.com/ep2.mp3" {
			t.Errorf("item 1 = %+v", got[1])
		}
	})

	t.Run("html pages are scraped and deduplicated", func(t *testing.T) {
		const page = `<html><body>
<a href="https://cdn.example.com/ep1.mp3">listen</a>
<audio src="https://cdn.example.com/ep1.mp3"></audio>
<p>Direct link: https://cdn.example.com/ep2.mp3</p>
</body></html>`
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(page))
		}))
		defer srv.Close()

		got, err := NewDiscoverer(0).Discover(ctx, srv.URL)
		if err != nil {
			t.Fatalf("Discover: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d items, want 2: %v", len(got), got)
		}
		if got[0].URL != "https://cdn.example.com/ep1.mp3" {
			t.Errorf("item 0 = %+v", got[0])
		}
		if got[1].URL != "https://cdn.example.com/ep2.mp3" {
			t.Errorf("item 1 = %+v", got[1])
		}
	})
}
