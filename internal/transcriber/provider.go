// Package transcriber defines the speech-to-text worker interface and the
// faster-whisper HTTP sidecar backend. The core treats transcription as a
// black box: one audio segment in, text plus sub-segments plus detected
// language out.
package transcriber

import (
	"context"

	"github.com/kbukum/podscribe/internal/transcript"
)

// Request holds one segment-transcription call. Audio carries the encoded
// bytes of a single cut segment, never the whole episode.
type Request struct {
	// Audio is the encoded audio payload of one segment.
	Audio []byte
	// Model overrides the backend's default model.
	Model string `json:"model,omitempty"`
	// Language is the expected language (e.g. "en"); empty means auto-detect.
	Language string `json:"language,omitempty"`
}

// Response holds the result of transcribing one segment. Segment timestamps
// are local to the segment; the dispatcher offsets them onto the episode
// timeline.
type Response struct {
	// Text is the full text of the segment.
	Text string `json:"text"`
	// Segments contains time-aligned sub-segments.
	Segments []transcript.Segment `json:"segments,omitempty"`
	// Language is the detected language.
	Language string `json:"language,omitempty"`
}

// Provider is the interface that transcription backends must implement.
type Provider interface {
	// Name returns the provider's unique name.
	Name() string
	// IsAvailable checks if the provider is ready to handle requests.
	IsAvailable(ctx context.Context) bool
	// Transcribe sends one audio segment for transcription.
	Transcribe(ctx context.Context, req Request) (*Response, error)
}
