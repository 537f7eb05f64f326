package podcast

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kbukum/podscribe/internal/apperrors"
)

const (
	// DefaultMaxDownloadBytes caps episode audio at 100 MiB.
	DefaultMaxDownloadBytes = 100 * 1024 * 1024

	// defaultUserAgent is a browser user agent; some podcast audio servers
	// return 403 for unknown clients.
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_9_3) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/35.0.1916.47 Safari/537.36"
)

// DownloadResult holds a fetched audio payload.
type DownloadResult struct {
	Data []byte
	// ContentType is helpful to store and transmit when uploading to a bucket.
	ContentType string
}

// Downloader fetches episode audio over HTTP with a hard size cap.
type Downloader struct {
	client    *http.Client
	maxBytes  int64
	userAgent string
}

// NewDownloader creates a Downloader. Zero values select the defaults.
func NewDownloader(maxBytes int64, userAgent string, timeout time.Duration) *Downloader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDownloadBytes
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	return &Downloader{
		client:    &http.Client{Timeout: timeout},
		maxBytes:  maxBytes,
		userAgent: userAgent,
	}
}

// Download fetches the audio at url. Payloads above the cap are rejected, and
// a 403-class response maps to a permission-denied error so callers can
// message the end user distinctly.
func (d *Downloader) Download(ctx context.Context, url string) (*DownloadResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.InvalidInput("url", "malformed download URL").WithCause(err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, apperrors.ExternalService("audio source", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized {
		return nil, apperrors.PermissionDenied(url)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.ExternalService("audio source",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if resp.ContentLength > d.maxBytes {
		return nil, apperrors.PayloadTooLarge(d.maxBytes)
	}

	// Content-Length can be absent or lie; enforce the cap on the body too.
	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes+1))
	if err != nil {
		return nil, apperrors.ExternalService("audio source", err)
	}
	if int64(len(data)) > d.maxBytes {
		return nil, apperrors.PayloadTooLarge(d.maxBytes)
	}

	return &DownloadResult{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
