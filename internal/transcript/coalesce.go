package transcript

import "unicode/utf8"

// MinCoalescedLen is the minimum text length of a coalesced display segment,
// in characters, not bytes. About two sentences.
const MinCoalescedLen = 200

// Coalesce combines short ASR segments into minimum-length display units.
// Whisper segments can be as short as a single word; concatenating them until
// MinCoalescedLen is reached gives useful units of display and search.
//
// The pass is a single left-to-right fold with one pending accumulator, so
// output order matches input order, no text is dropped, and the output covers
// the same total time range. The final segment may be shorter than the
// minimum.
func Coalesce(segments []Segment) []Segment {
	var pending *Segment
	longEnough := make([]Segment, 0, len(segments))

	for _, current := range segments {
		switch {
		case pending == nil:
			seg := current
			pending = &seg
		case utf8.RuneCountInString(pending.Text) < MinCoalescedLen:
			merged := mergeSegments(*pending, current)
			pending = &merged
		default:
			longEnough = append(longEnough, *pending)
			seg := current
			pending = &seg
		}
	}
	if pending != nil {
		longEnough = append(longEnough, *pending)
	}
	return longEnough
}

func mergeSegments(left, right Segment) Segment {
	return Segment{
		Text:  left.Text + " " + right.Text,
		Start: left.Start,
		End:   right.End,
	}
}
