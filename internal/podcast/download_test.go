package podcast

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kbukum/podscribe/internal/apperrors"
)

func TestDownloaderDownload(t *testing.T) {
	ctx := context.Background()

	t.Run("returns payload and content type", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "Mozilla") {
				t.Errorf("User-Agent = %q, want a browser agent", ua)
			}
			w.Header().Set("Content-Type", "audio/mpeg")
			w.Write([]byte("fake-mp3-bytes"))
		}))
		defer srv.Close()

		d := NewDownloader(0, "", 0)
		result, err := d.Download(ctx, srv.URL)
		if err != nil {
			t.Fatalf("Download: %v", err)
		}
		if string(result.Data) != "fake-mp3-bytes" {
			t.Errorf("Data = %q, want %q", result.Data, "fake-mp3-bytes")
		}
		if result.ContentType != "audio/mpeg" {
			t.Errorf("ContentType = %q, want audio/mpeg", result.ContentType)
		}
	})

	t.Run("403 maps to permission denied", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		_, err := NewDownloader(0, "", 0).Download(ctx, srv.URL)
		if apperrors.CodeOf(err) != apperrors.ErrCodePermissionDenied {
			t.Errorf("error code = %v, want %v", apperrors.CodeOf(err), apperrors.ErrCodePermissionDenied)
		}
	})

	t.Run("401 maps to permission denied", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := NewDownloader(0, "", 0).Download(ctx, srv.URL)
		if apperrors.CodeOf(err) != apperrors.ErrCodePermissionDenied {
			t.Errorf("error code = %v, want %v", apperrors.CodeOf(err), apperrors.ErrCodePermissionDenied)
		}
	})

	t.Run("oversize payload is rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(strings.Repeat("x", 64)))
		}))
		defer srv.Close()

		_, err := NewDownloader(16, "", 0).Download(ctx, srv.URL)
		if apperrors.CodeOf(err) != apperrors.ErrCodePayloadTooLarge {
			t.Errorf("error code = %v, want %v", apperrors.CodeOf(err), apperrors.ErrCodePayloadTooLarge)
		}
	})

	t.Run("oversize streamed payload is rejected at the body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Flush before writing so no Content-Length header is sent.
			w.WriteHeader(http.StatusOK)
			w.(http.Flusher).Flush()
			w.Write([]byte(strings.Repeat("x", 64)))
		}))
		defer srv.Close()

		_, err := NewDownloader(16, "", 0).Download(ctx, srv.URL)
		if apperrors.CodeOf(err) != apperrors.ErrCodePayloadTooLarge {
			t.Errorf("error code = %v, want %v", apperrors.CodeOf(err), apperrors.ErrCodePayloadTooLarge)
		}
	})

	t.Run("server error maps to external service", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := NewDownloader(0, "", 0).Download(ctx, srv.URL)
		if apperrors.CodeOf(err) != apperrors.ErrCodeExternalService {
			t.Errorf("error code = %v, want %v", apperrors.CodeOf(err), apperrors.ErrCodeExternalService)
		}
	})
}
