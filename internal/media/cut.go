package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/kbukum/podscribe/internal/process"
)

// Cut extracts one span of the source audio and returns it as encoded MP3
// bytes. Each call works in its own temp file so concurrent cuts of the same
// source never collide.
func Cut(ctx context.Context, srcPath string, span Span) ([]byte, error) {
	if span.End <= span.Start {
		return nil, fmt.Errorf("media: invalid span [%f, %f]", span.Start, span.End)
	}

	tmpPath := filepath.Join(os.TempDir(), fmt.Sprintf("podscribe-cut-%s.mp3", uuid.New().String()))
	defer os.Remove(tmpPath)

	trim := fmt.Sprintf("atrim=start=%f:end=%f", span.Start, span.End)
	if _, err := process.Run(ctx, process.Command{
		Binary: "ffmpeg",
		Args: []string{
			"-hide_banner",
			"-i", srcPath,
			"-af", trim,
			"-y",
			tmpPath,
		},
	}); err != nil {
		return nil, fmt.Errorf("media: cut [%f, %f] from %s: %w", span.Start, span.End, srcPath, err)
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("media: read cut segment: %w", err)
	}
	return data, nil
}
