package media

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kbukum/podscribe/internal/process"
)

// probeOutput mirrors the subset of ffprobe's JSON output we need.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration returns the audio duration in seconds using ffprobe.
// A failure here means the audio is corrupt or unreadable and is fatal for
// the transcription job.
func Duration(ctx context.Context, path string) (float64, error) {
	result, err := process.Run(ctx, process.Command{
		Binary: "ffprobe",
		Args: []string{
			"-v", "error",
			"-print_format", "json",
			"-show_format",
			path,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("media: probe %s: %w", path, err)
	}

	var out probeOutput
	if err := json.Unmarshal(result.Stdout, &out); err != nil {
		return 0, fmt.Errorf("media: parse probe output: %w", err)
	}

	duration, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("media: parse duration %q: %w", out.Format.Duration, err)
	}
	return duration, nil
}
