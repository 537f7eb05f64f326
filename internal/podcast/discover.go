package podcast

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/kbukum/podscribe/internal/apperrors"
)

// audioLinkRe matches direct audio URLs embedded anywhere in a page.
var audioLinkRe = regexp.MustCompile(`https?://[^\s"'<>]+\.mp[34]`)

// pageUserAgent avoids bot blocking on podcast landing pages.
const pageUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Safari/537.36"

// Discovered is one audio link found behind a search URL.
type Discovered struct {
	// URL is the downloadable audio link.
	URL string
	// Title is the episode title when the source feed provides one.
	Title string
	// PublishDate is the publisher-specified date when available.
	PublishDate string
}

// Discoverer resolves a user-supplied URL into downloadable audio links.
// A direct audio URL resolves to itself; an RSS/Atom feed resolves to its
// enclosures; any other page is scraped for audio links.
type Discoverer struct {
	client *http.Client
	feed   *gofeed.Parser
}

// NewDiscoverer creates a Discoverer.
func NewDiscoverer(timeout time.Duration) *Discoverer {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Discoverer{
		client: &http.Client{Timeout: timeout},
		feed:   gofeed.NewParser(),
	}
}

// IsDirectAudioURL reports whether url points straight at an audio file.
func IsDirectAudioURL(url string) bool {
	return audioLinkRe.MatchString(url) && audioLinkRe.FindString(url) == url
}

// Discover returns the audio links reachable from url, in discovery order
// and deduplicated.
func (d *Discoverer) Discover(ctx context.Context, url string) ([]Discovered, error) {
	if IsDirectAudioURL(url) {
		return []Discovered{{URL: url}}, nil
	}

	body, err := d.fetchPage(ctx, url)
	if err != nil {
		return nil, err
	}

	// A parseable feed is the richest source: enclosures carry titles and
	// publish dates.
	if feed, err := d.feed.ParseString(body); err == nil {
		if items := enclosures(feed); len(items) > 0 {
			return items, nil
		}
	}

	return scrapePage(body), nil
}

func (d *Discoverer) fetchPage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", apperrors.InvalidInput("file_url", "malformed URL").WithCause(err)
	}
	req.Header.Set("User-Agent", pageUserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", apperrors.ExternalService("podcast page", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.ExternalService("podcast page", err)
	}
	return string(data), nil
}

// enclosures extracts audio enclosure links from a parsed feed.
func enclosures(feed *gofeed.Feed) []Discovered {
	var items []Discovered
	seen := make(map[string]bool)
	for _, item := range feed.Items {
		for _, enc := range item.Enclosures {
			if enc.URL == "" || seen[enc.URL] {
				continue
			}
			if !strings.HasPrefix(enc.Type, "audio/") && !audioLinkRe.MatchString(enc.URL) {
				continue
			}
			seen[enc.URL] = true
			items = append(items, Discovered{
				URL:         enc.URL,
				Title:       item.Title,
				PublishDate: item.Published,
			})
		}
	}
	return items
}

// scrapePage pulls audio links out of HTML anchors and audio/source elements,
// falling back to a raw regex scan of the page text.
func scrapePage(body string) []Discovered {
	seen := make(map[string]bool)
	var items []Discovered
	add := func(url string) {
		url = strings.TrimSpace(url)
		if url == "" || seen[url] {
			return
		}
		seen[url] = true
		items = append(items, Discovered{URL: url})
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(body)); err == nil {
		doc.Find("a[href], audio[src], source[src]").Each(func(_ int, sel *goquery.Selection) {
			for _, attr := range []string{"href", "src"} {
				if v, ok := sel.Attr(attr); ok && audioLinkRe.MatchString(v) {
					add(audioLinkRe.FindString(v))
				}
			}
		})
	}

	for _, match := range audioLinkRe.FindAllString(body, -1) {
		add(match)
	}
	return items
}
