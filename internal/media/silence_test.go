package media

import (
	"math"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func spansEqual(got, want []Span) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if !approxEqual(got[i].Start, want[i].Start) || !approxEqual(got[i].End, want[i].End) {
			return false
		}
	}
	return true
}

func TestParseSilences(t *testing.T) {
	t.Run("extracts silence regions from ffmpeg stderr", func(t *testing.T) {
		stderr := `Input #0, mp3, from 'episode.mp3':
  Duration: 00:10:00.00, start: 0.000000, bitrate: 128 kb/s
[silencedetect @ 0x5618] silence_start: 43.9
[silencedetect @ 0x5618] silence_end: 45.2 | silence_duration: 1.3
size=N/A time=00:01:00.00 bitrate=N/A speed= 120x
[silencedetect @ 0x5618] silence_end: 120.75 | silence_duration: 2.5
`
		got := ParseSilences(stderr)
		want := []Silence{
			{End: 45.2, Duration: 1.3},
			{End: 120.75, Duration: 2.5},
		}
		if len(got) != len(want) {
			t.Fatalf("ParseSilences returned %d silences, want %d", len(got), len(want))
		}
		for i := range want {
			if !approxEqual(got[i].End, want[i].End) || !approxEqual(got[i].Duration, want[i].Duration) {
				t.Errorf("silence %d = %+v, want %+v", i, got[i], want[i])
			}
		}
	})

	t.Run("ignores unrelated output", func(t *testing.T) {
		stderr := "frame=  100 fps=0.0 q=-0.0 size=N/A time=00:00:04.15\n"
		if got := ParseSilences(stderr); len(got) != 0 {
			t.Errorf("ParseSilences = %v, want empty", got)
		}
	})

	t.Run("parses integer values", func(t *testing.T) {
		stderr := "[silencedetect @ 0x1] silence_end: 60 | silence_duration: 2\n"
		got := ParseSilences(stderr)
		if len(got) != 1 || !approxEqual(got[0].End, 60) || !approxEqual(got[0].Duration, 2) {
			t.Errorf("ParseSilences = %v, want [{60 2}]", got)
		}
	})
}

func TestPlan(t *testing.T) {
	seg := NewSegmenter("", 0, 0)

	tests := []struct {
		name     string
		duration float64
		silences []Silence
		want     []Span
	}{
		{
			name:     "splits at silence midpoints",
			duration: 100,
			silences: []Silence{{End: 40, Duration: 2}, {End: 80, Duration: 2}},
			want:     []Span{{Start: 0, End: 39}, {Start: 39, End: 79}},
		},
		{
			name:     "short candidates are skipped",
			duration: 65,
			silences: []Silence{{End: 20, Duration: 1.2}, {End: 50, Duration: 1.1}},
			want:     []Span{{Start: 0, End: 50 - 1.1/2}},
		},
		{
			name:     "tail emitted when long enough",
			duration: 100,
			silences: []Silence{{End: 40, Duration: 2}},
			want:     []Span{{Start: 0, End: 39}, {Start: 39, End: 100}},
		},
		{
			name:     "no silences, long audio becomes one segment",
			duration: 45,
			silences: nil,
			want:     []Span{{Start: 0, End: 45}},
		},
		{
			name:     "no silences, short audio yields nothing",
			duration: 20,
			silences: nil,
			want:     nil,
		},
		{
			name:     "candidate past reported duration is skipped",
			duration: 100,
			silences: []Silence{{End: 120, Duration: 2}},
			want:     []Span{{Start: 0, End: 100}},
		},
		{
			name:     "tail exactly at minimum is dropped",
			duration: 70,
			silences: []Silence{{End: 41, Duration: 2}},
			want:     []Span{{Start: 0, End: 40}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := seg.Plan(tt.duration, tt.silences)
			if !spansEqual(got, tt.want) {
				t.Errorf("Plan(%v, %v) = %v, want %v", tt.duration, tt.silences, got, tt.want)
			}
		})
	}

	t.Run("segments are contiguous, ordered, and within duration", func(t *testing.T) {
		duration := 300.0
		silences := []Silence{
			{End: 35, Duration: 1.5},
			{End: 50, Duration: 1.0},
			{End: 100, Duration: 2.0},
			{End: 170, Duration: 1.2},
			{End: 320, Duration: 4.0},
		}
		spans := seg.Plan(duration, silences)
		if len(spans) == 0 {
			t.Fatal("expected a non-empty plan")
		}
		if !approxEqual(spans[0].Start, 0) {
			t.Errorf("first span starts at %v, want 0", spans[0].Start)
		}
		for i, span := range spans {
			if span.End <= span.Start {
				t.Errorf("span %d has non-positive length: %+v", i, span)
			}
			if span.End > duration {
				t.Errorf("span %d ends past duration: %+v", i, span)
			}
			if i > 0 && !approxEqual(span.Start, spans[i-1].End) {
				t.Errorf("span %d not contiguous with previous: %+v after %+v", i, span, spans[i-1])
			}
		}
	})
}

func TestNewSegmenter(t *testing.T) {
	t.Run("fills defaults", func(t *testing.T) {
		s := NewSegmenter("", 0, 0)
		if s.NoiseFloor != DefaultNoiseFloor {
			t.Errorf("NoiseFloor = %q, want %q", s.NoiseFloor, DefaultNoiseFloor)
		}
		if s.MinSilenceLen != DefaultMinSilenceLen {
			t.Errorf("MinSilenceLen = %v, want %v", s.MinSilenceLen, DefaultMinSilenceLen)
		}
		if s.MinSegmentLen != DefaultMinSegmentLen {
			t.Errorf("MinSegmentLen = %v, want %v", s.MinSegmentLen, DefaultMinSegmentLen)
		}
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		s := NewSegmenter("-30dB", 0.5, 10)
		if s.NoiseFloor != "-30dB" || s.MinSilenceLen != 0.5 || s.MinSegmentLen != 10 {
			t.Errorf("unexpected segmenter: %+v", s)
		}
	})
}
