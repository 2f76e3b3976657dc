package standup

import "errors"

// ErrInvalidInput is returned when the transcript is empty or not valid text.
var ErrInvalidInput = errors.New("invalid transcript: empty or not valid text")

// ErrNoSpeakersFound is returned when name extraction yields zero speakers.
// Attribution cannot run without at least one known name.
var ErrNoSpeakersFound = errors.New("no speaker names found in transcript")

// ErrEmptySummary is returned when report rendering produces no speaker
// blocks. Unreachable as long as name extraction succeeded, but checked.
var ErrEmptySummary = errors.New("no summaries generated")
