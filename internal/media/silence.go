// Package media probes, scans, and cuts audio files via ffmpeg subprocesses.
// Its central piece is the silence-based segmenter that turns one long episode
// into bounded-length chunks suitable for independent transcription.
package media

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kbukum/podscribe/internal/process"
)

const (
	// DefaultNoiseFloor is the level below which audio counts as silence.
	DefaultNoiseFloor = "-10dB"
	// DefaultMinSilenceLen is the minimum silence duration (seconds) that
	// qualifies as a split candidate.
	DefaultMinSilenceLen = 1.0
	// DefaultMinSegmentLen is the minimum accepted segment length in seconds.
	DefaultMinSegmentLen = 30.0
)

// silenceEndRe matches ffmpeg silencedetect stderr lines, e.g.
// "[silencedetect @ 0x...] silence_end: 45.2 | silence_duration: 1.3".
var silenceEndRe = regexp.MustCompile(` silence_end: (?P<end>[0-9]+(\.?[0-9]*)) \| silence_duration: (?P<dur>[0-9]+(\.?[0-9]*))`)

// Span is a time-bounded slice of the input audio, End > Start, in seconds.
type Span struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Silence is one detected silence region, identified by where it ends and how
// long it lasted.
type Silence struct {
	End      float64
	Duration float64
}

// Segmenter splits audio files into contiguous chunks at detected silences.
type Segmenter struct {
	// NoiseFloor is the silencedetect noise threshold (e.g. "-10dB").
	NoiseFloor string
	// MinSilenceLen is the minimum silence duration to qualify as a split
	// candidate, in seconds.
	MinSilenceLen float64
	// MinSegmentLen is the minimum length of an emitted segment, in seconds.
	MinSegmentLen float64
}

// NewSegmenter returns a Segmenter with defaults filled in.
func NewSegmenter(noiseFloor string, minSilenceLen, minSegmentLen float64) *Segmenter {
	if noiseFloor == "" {
		noiseFloor = DefaultNoiseFloor
	}
	if minSilenceLen <= 0 {
		minSilenceLen = DefaultMinSilenceLen
	}
	if minSegmentLen <= 0 {
		minSegmentLen = DefaultMinSegmentLen
	}
	return &Segmenter{
		NoiseFloor:    noiseFloor,
		MinSilenceLen: minSilenceLen,
		MinSegmentLen: minSegmentLen,
	}
}

// Segment scans the audio at path and returns the ordered segmentation plan.
// Re-invoking re-scans from the start; the scan is bounded by audio length.
func (s *Segmenter) Segment(ctx context.Context, path string) ([]Span, error) {
	duration, err := Duration(ctx, path)
	if err != nil {
		return nil, err
	}

	silences, err := s.scan(ctx, path)
	if err != nil {
		return nil, err
	}

	return s.Plan(duration, silences), nil
}

// scan runs the silencedetect filter and parses the detected silence regions
// from ffmpeg's stderr.
func (s *Segmenter) scan(ctx context.Context, path string) ([]Silence, error) {
	filter := fmt.Sprintf("silencedetect=n=%s:d=%v", s.NoiseFloor, s.MinSilenceLen)
	result, err := process.Run(ctx, process.Command{
		Binary: "ffmpeg",
		Args: []string{
			"-hide_banner",
			"-i", path,
			"-af", filter,
			"-f", "null",
			"-",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("media: silencedetect %s: %w", path, err)
	}

	return ParseSilences(string(result.Stderr)), nil
}

// ParseSilences extracts silence regions from silencedetect stderr output.
func ParseSilences(stderr string) []Silence {
	var silences []Silence
	for _, line := range strings.Split(stderr, "\n") {
		match := silenceEndRe.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		end, err1 := strconv.ParseFloat(match[1], 64)
		dur, err2 := strconv.ParseFloat(match[3], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		silences = append(silences, Silence{End: end, Duration: dur})
	}
	return silences
}

// Plan converts detected silences into the ordered segmentation plan.
//
// Each silence yields a split candidate at the midpoint of the silent region
// (biasing the cut into the quiet zone so speech is not clipped). A candidate
// is accepted only when the resulting segment reaches MinSegmentLen; shorter
// candidates are skipped and accumulation continues. A trailing remainder
// longer than MinSegmentLen becomes the final segment, otherwise it is
// silently dropped. Segments with non-positive length are discarded:
// silencedetect can report an end past the true audio duration.
func (s *Segmenter) Plan(duration float64, silences []Silence) []Span {
	var spans []Span
	curStart := 0.0

	for _, silence := range silences {
		splitAt := silence.End - silence.Duration/2

		if splitAt-curStart < s.MinSegmentLen {
			continue
		}
		// silencedetect can report a silence end past the true audio duration;
		// cutting there would produce an invalid segment, so leave the
		// remainder to the tail check below.
		if splitAt > duration {
			continue
		}

		spans = append(spans, Span{Start: curStart, End: splitAt})
		curStart = splitAt
	}

	if duration > curStart && duration-curStart > s.MinSegmentLen {
		spans = append(spans, Span{Start: curStart, End: duration})
	}

	return spans
}
