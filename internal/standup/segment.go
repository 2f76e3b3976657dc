package standup

import "strings"

// Segment is one punctuation- or cue-delimited chunk of transcript text.
// Index is the position in speech order; segments are never mutated after
// the split.
type Segment struct {
	Index int
	Text  string
}

// cueSuffixes are trailing phrases that end an utterance even without
// sentence punctuation, typically a scrum master handing off the floor.
var cueSuffixes = []string{" ok", " okay", " yeah", " thank you", " bye"}

// Split breaks normalized transcript text into ordered segments. The buffer
// is flushed on sentence-ending punctuation or when the trimmed buffer ends
// with a cue suffix; whatever remains at end of input is flushed last.
// Segments that trim to empty are discarded.
func Split(text string) []Segment {
	var segments []Segment
	var buf strings.Builder

	flush := func() {
		trimmed := strings.TrimSpace(buf.String())
		buf.Reset()
		if trimmed == "" {
			return
		}
		segments = append(segments, Segment{Index: len(segments), Text: trimmed})
	}

	for _, r := range text {
		buf.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			flush()
			continue
		}
		if endsWithCue(strings.TrimSpace(buf.String())) {
			flush()
		}
	}
	flush()

	return segments
}

func endsWithCue(trimmed string) bool {
	for _, cue := range cueSuffixes {
		if strings.HasSuffix(trimmed, cue) {
			return true
		}
	}
	return false
}
