package standup

import (
	"fmt"
	"sort"
	"strings"
)

// maxSummaryWords bounds each rendered field; longer content is truncated
// on a word boundary with a trailing ellipsis.
const maxSummaryWords = 10

// Render formats finalized records into the report delivered to the team.
// Speakers appear in lexicographic order with one blank line between
// blocks. Returns ErrEmptySummary if there are no records to render.
func Render(recs Records) (string, error) {
	names := make([]string, 0, len(recs))
	for name := range recs {
		names = append(names, name)
	}
	sort.Strings(names)

	blocks := make([]string, 0, len(names))
	for _, name := range names {
		rec := recs[name]
		blocks = append(blocks, fmt.Sprintf("%s\ntime: %s\nyesterday: %s\ntoday: %s\nblockers: %s",
			name,
			rec.Time,
			summarize(rec.Yesterday),
			summarize(rec.Today),
			summarize(rec.Blockers),
		))
	}

	if len(blocks) == 0 {
		return "", ErrEmptySummary
	}
	return strings.Join(blocks, "\n\n"), nil
}

// summarize joins accumulated entries and bounds them to maxSummaryWords
// whole words. Empty content renders as the literal "none".
func summarize(entries []string) string {
	joined := strings.Join(entries, " ")
	if joined == "" {
		return "none"
	}
	words := strings.Fields(joined)
	if len(words) <= maxSummaryWords {
		return joined
	}
	return strings.Join(words[:maxSummaryWords], " ") + "..."
}
