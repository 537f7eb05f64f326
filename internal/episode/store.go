// Package episode persists per-episode state as flat files: metadata JSON,
// transcript JSON, cached summaries, and the raw downloaded audio.
package episode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"

	"github.com/kbukum/podscribe/internal/apperrors"
	"github.com/kbukum/podscribe/internal/podcast"
	"github.com/kbukum/podscribe/internal/storage"
	"github.com/kbukum/podscribe/internal/transcript"
)

const (
	metadataDir    = "ep_metadata"
	transcriptsDir = "transcriptions"
	summariesDir   = "summary"
	rawAudioDir    = "raw_audio"
)

// Store is the flat-file episode state store. One file per episode, keyed by
// the episode's GUID hash.
type Store struct {
	backend storage.Storage
}

// NewStore creates a Store over the given storage backend.
func NewStore(backend storage.Storage) *Store {
	return &Store{backend: backend}
}

func metadataPath(episodeID string) string {
	return path.Join(metadataDir, episodeID+".json")
}

func transcriptPath(episodeID string) string {
	return path.Join(transcriptsDir, episodeID+".json")
}

func summaryPath(episodeID, method string) string {
	return path.Join(summariesDir, fmt.Sprintf("%s_%s.txt", episodeID, method))
}

func rawAudioPath(episodeID string) string {
	return path.Join(rawAudioDir, episodeID)
}

// SaveMetadata writes episode metadata, overwriting any previous version.
func (s *Store) SaveMetadata(ctx context.Context, meta podcast.EpisodeMetadata) error {
	return s.writeJSON(ctx, metadataPath(meta.GUIDHash), meta)
}

// Metadata loads episode metadata by ID.
func (s *Store) Metadata(ctx context.Context, episodeID string) (podcast.EpisodeMetadata, error) {
	var meta podcast.EpisodeMetadata
	ok, err := s.backend.Exists(ctx, metadataPath(episodeID))
	if err != nil {
		return meta, err
	}
	if !ok {
		return meta, apperrors.NotFound("episode", episodeID)
	}
	if err := s.readJSON(ctx, metadataPath(episodeID), &meta); err != nil {
		return meta, err
	}
	return meta, nil
}

// MetadataExists reports whether metadata is stored for the episode.
func (s *Store) MetadataExists(ctx context.Context, episodeID string) (bool, error) {
	return s.backend.Exists(ctx, metadataPath(episodeID))
}

// MarkTranscribed flips the metadata transcribed flag.
func (s *Store) MarkTranscribed(ctx context.Context, episodeID string) error {
	meta, err := s.Metadata(ctx, episodeID)
	if err != nil {
		return err
	}
	meta.Transcribed = true
	return s.SaveMetadata(ctx, meta)
}

// SaveTranscript durably writes the merged transcript. Rewriting an existing
// transcript for the same episode is safe; the content is deterministic for a
// given audio.
func (s *Store) SaveTranscript(ctx context.Context, episodeID string, tr *transcript.Transcript) error {
	return s.writeJSON(ctx, transcriptPath(episodeID), tr)
}

// Transcript loads the stored transcript for an episode.
func (s *Store) Transcript(ctx context.Context, episodeID string) (*transcript.Transcript, error) {
	ok, err := s.backend.Exists(ctx, transcriptPath(episodeID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NotFound("transcript", episodeID)
	}
	var tr transcript.Transcript
	if err := s.readJSON(ctx, transcriptPath(episodeID), &tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

// TranscriptExists reports whether a completed transcript is stored.
func (s *Store) TranscriptExists(ctx context.Context, episodeID string) (bool, error) {
	return s.backend.Exists(ctx, transcriptPath(episodeID))
}

// SaveRawAudio stores the downloaded episode audio.
func (s *Store) SaveRawAudio(ctx context.Context, episodeID string, data []byte) error {
	return s.backend.Upload(ctx, rawAudioPath(episodeID), bytes.NewReader(data))
}

// RawAudioExists reports whether the raw audio is already downloaded.
func (s *Store) RawAudioExists(ctx context.Context, episodeID string) (bool, error) {
	return s.backend.Exists(ctx, rawAudioPath(episodeID))
}

// RawAudioLocalPath returns the filesystem location of the raw audio, for
// ffmpeg collaborators that operate on real files.
func (s *Store) RawAudioLocalPath(episodeID string) string {
	return s.backend.LocalPath(rawAudioPath(episodeID))
}

// DeleteRawAudio frees the audio storage after a transcript is persisted.
func (s *Store) DeleteRawAudio(ctx context.Context, episodeID string) error {
	return s.backend.Delete(ctx, rawAudioPath(episodeID))
}

// Summary returns a cached summary and whether it exists.
func (s *Store) Summary(ctx context.Context, episodeID, method string) (string, bool, error) {
	ok, err := s.backend.Exists(ctx, summaryPath(episodeID, method))
	if err != nil || !ok {
		return "", false, err
	}
	r, err := s.backend.Download(ctx, summaryPath(episodeID, method))
	if err != nil {
		return "", false, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// SaveSummary caches a computed summary.
func (s *Store) SaveSummary(ctx context.Context, episodeID, method, summary string) error {
	return s.backend.Upload(ctx, summaryPath(episodeID, method), bytes.NewReader([]byte(summary)))
}

func (s *Store) writeJSON(ctx context.Context, filePath string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("episode: marshal %s: %w", filePath, err)
	}
	return s.backend.Upload(ctx, filePath, bytes.NewReader(data))
}

func (s *Store) readJSON(ctx context.Context, filePath string, v any) error {
	r, err := s.backend.Download(ctx, filePath)
	if err != nil {
		return err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("episode: read %s: %w", filePath, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("episode: decode %s: %w", filePath, err)
	}
	return nil
}
