package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/kbukum/podscribe/internal/apperrors"
	"github.com/kbukum/podscribe/internal/transcript"
)

const (
	// WhisperProviderName is the registered name for the Whisper backend.
	WhisperProviderName = "whisper"

	defaultWhisperURL     = "http://localhost:8387"
	defaultWhisperModel   = "small"
	defaultWhisperTimeout = 10 * time.Minute
)

// WhisperConfig holds configuration for the Whisper sidecar backend.
type WhisperConfig struct {
	URL      string        `json:"url" yaml:"url" mapstructure:"url"`
	Model    string        `json:"model" yaml:"model" mapstructure:"model"`
	Language string        `json:"language,omitempty" yaml:"language" mapstructure:"language"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// Whisper implements Provider using a faster-whisper HTTP sidecar. The
// sidecar may be slow (minutes per segment) and GPU-backed; it has no side
// effects visible to the core besides its return value.
type Whisper struct {
	cfg    WhisperConfig
	client *http.Client
}

// NewWhisper creates a new Whisper transcription backend.
func NewWhisper(cfg WhisperConfig) *Whisper {
	if cfg.URL == "" {
		cfg.URL = defaultWhisperURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultWhisperModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultWhisperTimeout
	}
	return &Whisper{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name returns the provider name.
func (w *Whisper) Name() string { return WhisperProviderName }

// IsAvailable checks if the Whisper sidecar is reachable.
func (w *Whisper) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.cfg.URL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Transcribe sends one audio segment to the Whisper sidecar.
func (w *Whisper) Transcribe(ctx context.Context, req Request) (*Response, error) {
	model := w.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	lang := w.cfg.Language
	if req.Language != "" {
		lang = req.Language
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audio", "segment.mp3")
	if err != nil {
		return nil, fmt.Errorf("transcriber: create form file: %w", err)
	}
	if _, err := part.Write(req.Audio); err != nil {
		return nil, fmt.Errorf("transcriber: write audio data: %w", err)
	}

	_ = writer.WriteField("model", model)
	if lang != "" {
		_ = writer.WriteField("language", lang)
	}
	writer.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL+"/transcribe", &buf)
	if err != nil {
		return nil, fmt.Errorf("transcriber: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := w.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.ExternalService("transcription worker", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, apperrors.ExternalService("transcription worker",
			fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	var result whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("transcriber: decode whisper response: %w", err)
	}

	return toResponse(&result), nil
}

// --- internal Whisper API response types ---

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
}

type whisperSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func toResponse(resp *whisperResponse) *Response {
	segments := make([]transcript.Segment, len(resp.Segments))
	for i, seg := range resp.Segments {
		segments[i] = transcript.Segment{
			Text:  seg.Text,
			Start: seg.Start,
			End:   seg.End,
		}
	}
	return &Response{
		Text:     resp.Text,
		Segments: segments,
		Language: resp.Language,
	}
}
