package standup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

type stubOracle struct {
	calls   int
	answer  string
	err     error
	prompts []string
}

func (s *stubOracle) Complete(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	return s.answer, s.err
}

func nameSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func TestAttributeRoutesUpdateFields(t *testing.T) {
	oracle := &stubOracle{answer: Unknown}
	engine := NewEngine(oracle, time.Second, nil)

	segments := Split(Normalize("OK John. yesterday I did the API. today I'm testing it. blocker is the database."))
	recs := engine.Attribute(context.Background(), segments, nameSet("John"))

	rec := recs["John"]
	if len(rec.Yesterday) != 1 || rec.Yesterday[0] != "yesterday i did the api." {
		t.Fatalf("unexpected yesterday entries: %#v", rec.Yesterday)
	}
	if len(rec.Today) != 1 || rec.Today[0] != "today i'm testing it." {
		t.Fatalf("unexpected today entries: %#v", rec.Today)
	}
	if len(rec.Blockers) != 1 || rec.Blockers[0] != "blocker is the database." {
		t.Fatalf("unexpected blocker entries: %#v", rec.Blockers)
	}
	if oracle.calls != 3 {
		t.Fatalf("expected 3 oracle calls, got %d", oracle.calls)
	}
}

func TestAttributeKeywordPrecedence(t *testing.T) {
	// A segment carrying both keywords lands in yesterday only; a segment
	// is never split across fields.
	engine := NewEngine(&stubOracle{answer: Unknown}, time.Second, nil)

	segments := Split(Normalize("OK John. yesterday I did the API today I'm testing it."))
	recs := engine.Attribute(context.Background(), segments, nameSet("John"))

	rec := recs["John"]
	if len(rec.Yesterday) != 1 {
		t.Fatalf("expected 1 yesterday entry, got %#v", rec.Yesterday)
	}
	if len(rec.Today) != 0 {
		t.Fatalf("expected no today entries, got %#v", rec.Today)
	}
}

func TestAttributePseudoTimestamp(t *testing.T) {
	engine := NewEngine(nil, time.Second, nil)

	segments := []Segment{
		{Index: 0, Text: "good morning everyone."},
		{Index: 1, Text: "let's begin."},
		{Index: 2, Text: "filler."},
		{Index: 3, Text: "ok maria"},
	}
	recs := engine.Attribute(context.Background(), segments, nameSet("Maria"))

	// time token for prompt at index i is i/2 : i%2, zero padded.
	if got := recs["Maria"].Time; got != "1:01" {
		t.Fatalf("expected time 1:01, got %q", got)
	}
}

func TestAttributePseudoTimestampFormula(t *testing.T) {
	for i := 0; i < 6; i++ {
		engine := NewEngine(nil, time.Second, nil)
		segments := make([]Segment, i+1)
		for j := 0; j < i; j++ {
			segments[j] = Segment{Index: j, Text: "filler without triggers"}
		}
		segments[i] = Segment{Index: i, Text: "ok maria"}

		recs := engine.Attribute(context.Background(), segments, nameSet("Maria"))
		want := fmt.Sprintf("%d:%02d", i/2, i%2)
		if got := recs["Maria"].Time; got != want {
			t.Fatalf("prompt at index %d: expected time %q, got %q", i, want, got)
		}
	}
}

func TestAttributeOracleSwitchesSpeaker(t *testing.T) {
	oracle := &stubOracle{answer: "Maria"}
	engine := NewEngine(oracle, time.Second, nil)

	segments := []Segment{
		{Index: 0, Text: "ok john"},
		{Index: 1, Text: "yesterday i reviewed the pr."},
	}
	recs := engine.Attribute(context.Background(), segments, nameSet("John", "Maria"))

	if len(recs["Maria"].Yesterday) != 1 {
		t.Fatalf("expected oracle answer to reassign segment to Maria, got %#v", recs)
	}
	if len(recs["John"].Yesterday) != 0 {
		t.Fatalf("expected nothing for John, got %#v", recs["John"].Yesterday)
	}
}

func TestAttributeOracleUnknownNameDiscarded(t *testing.T) {
	// The known-name set is fixed after extraction: an oracle answer outside
	// it falls back to the previous speaker.
	oracle := &stubOracle{answer: "Stranger Danger"}
	engine := NewEngine(oracle, time.Second, nil)

	segments := []Segment{
		{Index: 0, Text: "ok john"},
		{Index: 1, Text: "today i am deploying."},
	}
	recs := engine.Attribute(context.Background(), segments, nameSet("John"))

	if len(recs["John"].Today) != 1 {
		t.Fatalf("expected segment to stay with John, got %#v", recs)
	}
}

func TestAttributeOracleFailureKeepsSpeaker(t *testing.T) {
	oracle := &stubOracle{err: errors.New("request timed out")}
	engine := NewEngine(oracle, time.Second, nil)

	segments := []Segment{
		{Index: 0, Text: "ok john"},
		{Index: 1, Text: "blocker is the flaky ci."},
	}
	recs := engine.Attribute(context.Background(), segments, nameSet("John"))

	if len(recs["John"].Blockers) != 1 || recs["John"].Blockers[0] != "blocker is the flaky ci." {
		t.Fatalf("expected blocker entry despite oracle failure, got %#v", recs["John"].Blockers)
	}
}

func TestAttributeUnknownSpeakerDropsSegment(t *testing.T) {
	// Keyword segment before anyone was prompted: no record receives it.
	oracle := &stubOracle{answer: Unknown}
	engine := NewEngine(oracle, time.Second, nil)

	segments := []Segment{
		{Index: 0, Text: "yesterday was a holiday."},
		{Index: 1, Text: "ok john"},
	}
	recs := engine.Attribute(context.Background(), segments, nameSet("John"))

	rec := recs["John"]
	if len(rec.Yesterday)+len(rec.Today)+len(rec.Blockers) != 0 {
		t.Fatalf("expected empty record, got %#v", rec)
	}
}

func TestAttributeOracleOnlyForKeywordSegments(t *testing.T) {
	oracle := &stubOracle{answer: Unknown}
	engine := NewEngine(oracle, time.Second, nil)

	segments := []Segment{
		{Index: 0, Text: "ok john"},
		{Index: 1, Text: "the weather is lovely."},
		{Index: 2, Text: "yesterday i wrote docs."},
	}
	engine.Attribute(context.Background(), segments, nameSet("John"))

	if oracle.calls != 1 {
		t.Fatalf("expected exactly 1 oracle call, got %d", oracle.calls)
	}
}

func TestAttributeOraclePromptCarriesContext(t *testing.T) {
	oracle := &stubOracle{answer: Unknown}
	engine := NewEngine(oracle, time.Second, nil)

	segments := []Segment{
		{Index: 0, Text: "ok john"},
		{Index: 1, Text: "yesterday i shipped the feature."},
	}
	engine.Attribute(context.Background(), segments, nameSet("John"))

	if len(oracle.prompts) != 1 {
		t.Fatalf("expected 1 prompt, got %d", len(oracle.prompts))
	}
	prompt := oracle.prompts[0]
	if !strings.Contains(prompt, initialContext) {
		t.Fatalf("prompt missing scene-setting context: %q", prompt)
	}
	if !strings.Contains(prompt, "John: ok john") {
		t.Fatalf("prompt missing prior attributed segment: %q", prompt)
	}
	if !strings.Contains(prompt, "Previous speaker: John") {
		t.Fatalf("prompt missing previous speaker: %q", prompt)
	}
}

func TestAttributeRecordsInitialized(t *testing.T) {
	engine := NewEngine(nil, time.Second, nil)
	recs := engine.Attribute(context.Background(), nil, nameSet("John", "Maria"))

	for _, name := range []string{"John", "Maria"} {
		rec, ok := recs[name]
		if !ok {
			t.Fatalf("missing record for %s", name)
		}
		if rec.Time != "0:00" {
			t.Fatalf("expected initial time 0:00 for %s, got %q", name, rec.Time)
		}
	}
}
