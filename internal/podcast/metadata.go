// Package podcast handles episode identity, audio-link discovery, and the
// size-capped audio download.
package podcast

import (
	"crypto/md5" //nolint:gosec // identity hash for filenames, not security
	"encoding/hex"
	"time"
)

// EpisodeMetadata describes one discovered podcast episode.
type EpisodeMetadata struct {
	// GUIDHash is the stable hash of the source URL, used as the episode ID
	// and as the flat-file key.
	GUIDHash string `json:"guid_hash"`
	// PublishDate is the publish date as specified by the publisher, or the
	// first-seen time for episodes discovered from a bare URL.
	PublishDate string `json:"publish_date"`
	// Transcribed is flipped once a transcript is durably stored.
	Transcribed bool `json:"transcribed"`
	// OriginalDownloadLink is the audio file URL. Typically an .mp3 file.
	OriginalDownloadLink string `json:"original_download_link"`
	// Language is used to detect non-English podcasts.
	Language string `json:"language,omitempty"`
}

// EpisodeID returns the stable episode identifier for a source URL.
func EpisodeID(url string) string {
	sum := md5.Sum([]byte(url)) //nolint:gosec // see above
	return hex.EncodeToString(sum[:])
}

// NewMetadata creates metadata for a newly discovered episode URL.
func NewMetadata(url string, now time.Time) EpisodeMetadata {
	return EpisodeMetadata{
		GUIDHash:             EpisodeID(url),
		PublishDate:          now.Format("2006-01-02 15:04:05"),
		Transcribed:          false,
		OriginalDownloadLink: url,
	}
}
