// Package transcript defines the transcript data model shared by the
// transcription workers, the persisted flat files, and the API surface.
package transcript

// Segment represents a time-aligned portion of a transcript. Start and End
// are seconds on the whole-episode timeline.
type Segment struct {
	// Text is the transcribed text for this segment.
	Text string `json:"text"`
	// Start is the segment start time in seconds.
	Start float64 `json:"start"`
	// End is the segment end time in seconds.
	End float64 `json:"end"`
}

// Transcript is the merged result of transcribing a whole episode. It is
// immutable once written.
type Transcript struct {
	// Text is the full transcription text.
	Text string `json:"text"`
	// Segments contains time-aligned transcript segments in chronological order.
	Segments []Segment `json:"segments"`
	// Language is the detected language.
	Language string `json:"language"`
}

// Offset shifts all segment timestamps by delta seconds. Workers transcribe
// audio cut from the middle of an episode, so their local timestamps must be
// moved onto the episode timeline.
func Offset(segments []Segment, delta float64) {
	for i := range segments {
		segments[i].Start += delta
		segments[i].End += delta
	}
}
