package standup

import (
	"errors"
	"strings"
	"testing"
)

func TestRenderBlockShape(t *testing.T) {
	recs := Records{
		"John": {
			Time:      "1:01",
			Yesterday: []string{"yesterday i did the api."},
			Today:     []string{"today i'm testing it."},
		},
	}

	report, err := Render(recs)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	want := "John\ntime: 1:01\nyesterday: yesterday i did the api.\ntoday: today i'm testing it.\nblockers: none"
	if report != want {
		t.Fatalf("unexpected report:\n got %q\nwant %q", report, want)
	}
}

func TestRenderLexicographicOrderAndSeparator(t *testing.T) {
	recs := Records{
		"Maria": {Time: "0:00", Today: []string{"today maria ships."}},
		"John":  {Time: "0:01", Today: []string{"today john tests."}},
	}

	report, err := Render(recs)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	blocks := strings.Split(report, "\n\n")
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks separated by one blank line, got %d: %q", len(blocks), report)
	}
	if !strings.HasPrefix(blocks[0], "John\n") || !strings.HasPrefix(blocks[1], "Maria\n") {
		t.Fatalf("expected lexicographic name order, got %q", report)
	}
}

func TestRenderEmptyRecords(t *testing.T) {
	if _, err := Render(Records{}); !errors.Is(err, ErrEmptySummary) {
		t.Fatalf("expected ErrEmptySummary, got %v", err)
	}
}

func TestSummarizeTruncation(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		want    string
	}{
		{
			name: "empty renders none",
			want: "none",
		},
		{
			name:    "short content kept verbatim",
			entries: []string{"fixed the login bug"},
			want:    "fixed the login bug",
		},
		{
			name:    "exactly ten words kept",
			entries: []string{"one two three four five six seven eight nine ten"},
			want:    "one two three four five six seven eight nine ten",
		},
		{
			name:    "eleven words truncated to ten with ellipsis",
			entries: []string{"one two three four five six seven eight nine ten eleven"},
			want:    "one two three four five six seven eight nine ten...",
		},
		{
			name:    "multiple entries joined before truncation",
			entries: []string{"one two three four five six", "seven eight nine ten eleven twelve"},
			want:    "one two three four five six seven eight nine ten...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := summarize(tt.entries); got != tt.want {
				t.Fatalf("summarize(%#v) = %q, want %q", tt.entries, got, tt.want)
			}
		})
	}
}
