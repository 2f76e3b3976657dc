package standup

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// Unknown is the sentinel current-speaker value before anyone has been
// prompted. Segments attributed to Unknown are kept in the running context
// but never routed into a record.
const Unknown = "Unknown"

// initialContext is the scene-setting sentence that seeds the oracle's
// conversational context.
const initialContext = "Scrum meeting with multiple team members providing updates."

// DefaultOracleTimeout bounds a single oracle round-trip.
const DefaultOracleTimeout = 30 * time.Second

// OracleMaxTokens caps the oracle's completion. The answer is a single
// speaker name or "Unknown", so anything longer is noise.
const OracleMaxTokens = 100

// Oracle resolves ambiguous speaker attribution. Complete receives a fully
// rendered prompt and returns either a speaker name or the literal string
// "Unknown". Implementations must fail within a bounded time rather than
// hang; errors degrade to "no speaker change" and are never fatal.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OracleFunc adapts a plain function to the Oracle interface.
type OracleFunc func(ctx context.Context, prompt string) (string, error)

func (f OracleFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// keywordPattern triggers the oracle rule: segments carrying update-shaped
// vocabulary belong to whoever currently holds the floor.
var keywordPattern = regexp.MustCompile(`\b(yesterday|today|blocker|pr)\b`)

// Record accumulates one speaker's update while the engine walks segments.
// Finalized (read-only) once all segments are consumed.
type Record struct {
	Time      string
	Yesterday []string
	Today     []string
	Blockers  []string
}

// Records maps each known speaker name to its update record.
type Records map[string]*Record

// attributionState is the engine's mutable per-transcript state: the
// current-speaker register and the running conversational context fed to
// the oracle. One instance per transcript; never shared.
type attributionState struct {
	current string
	running strings.Builder
}

// Engine walks segments in speech order and routes each into the correct
// speaker's record. Rules are evaluated in strict priority order: a
// floor-handoff prompt wins over an update keyword, and a segment matching
// neither mutates nothing. Per-segment failures are logged and skipped so a
// single bad segment never aborts the transcript.
type Engine struct {
	oracle  Oracle
	timeout time.Duration
	logger  *slog.Logger
}

// rule pairs a trigger pattern with its transition action. The slice order
// is the priority order.
type rule struct {
	name    string
	pattern *regexp.Regexp
	apply   func(ctx context.Context, st *attributionState, recs Records, names map[string]struct{}, seg Segment) error
}

func NewEngine(oracle Oracle, timeout time.Duration, logger *slog.Logger) *Engine {
	if timeout <= 0 {
		timeout = DefaultOracleTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{oracle: oracle, timeout: timeout, logger: logger}
}

// Attribute processes segments sequentially against the fixed name set and
// returns the finalized records. Processing is strictly in order: the
// current speaker and running context carry forward from one segment to the
// next.
func (e *Engine) Attribute(ctx context.Context, segments []Segment, names map[string]struct{}) Records {
	recs := make(Records, len(names))
	for name := range names {
		recs[name] = &Record{Time: "0:00"}
	}

	st := &attributionState{current: Unknown}
	st.running.WriteString(initialContext)

	rules := []rule{
		{name: "prompt", pattern: promptPattern, apply: e.applyPrompt},
		{name: "keyword", pattern: keywordPattern, apply: e.applyKeyword},
	}

	for _, seg := range segments {
		for _, r := range rules {
			if !r.pattern.MatchString(seg.Text) {
				continue
			}
			if err := r.apply(ctx, st, recs, names, seg); err != nil {
				e.logger.Warn("segment skipped", "rule", r.name, "index", seg.Index, "error", err)
			}
			break
		}
		// The running context grows regardless of which rule fired. It only
		// influences future oracle calls, never the records.
		fmt.Fprintf(&st.running, "\n%s: %s", st.current, seg.Text)
	}

	return recs
}

// applyPrompt hands the floor to the prompted name. The time token is a
// positional pseudo-timestamp derived from the segment index, kept for
// output compatibility even though it is not a clock reading.
func (e *Engine) applyPrompt(_ context.Context, st *attributionState, recs Records, names map[string]struct{}, seg Segment) error {
	m := promptPattern.FindStringSubmatch(seg.Text)
	st.current = capitalize(m[2])
	if _, known := names[st.current]; known {
		recs[st.current].Time = fmt.Sprintf("%d:%02d", seg.Index/2, seg.Index%2)
	}
	return nil
}

// applyKeyword consults the oracle for the likely speaker, then routes the
// segment text into the matching field of the current speaker's record.
// Oracle failures and unrecognized answers keep the current speaker; an
// Unknown current speaker drops the segment from categorized output.
func (e *Engine) applyKeyword(ctx context.Context, st *attributionState, recs Records, names map[string]struct{}, seg Segment) error {
	if e.oracle != nil {
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		answer, err := e.oracle.Complete(callCtx, buildOraclePrompt(seg.Text, st.running.String(), st.current))
		cancel()
		switch {
		case err != nil:
			e.logger.Warn("oracle call failed, keeping current speaker", "index", seg.Index, "speaker", st.current, "error", err)
		default:
			answer = strings.TrimSpace(answer)
			if _, known := names[answer]; known && answer != Unknown {
				st.current = answer
			}
		}
	}

	rec, known := recs[st.current]
	if !known {
		return nil
	}

	switch {
	case strings.Contains(seg.Text, "yesterday"):
		rec.Yesterday = append(rec.Yesterday, seg.Text)
	case strings.Contains(seg.Text, "today"):
		rec.Today = append(rec.Today, seg.Text)
	case strings.Contains(seg.Text, "blocker"):
		rec.Blockers = append(rec.Blockers, seg.Text)
	}
	return nil
}

func buildOraclePrompt(segment, runningContext, previousSpeaker string) string {
	return fmt.Sprintf(`Given the meeting transcript segment and context, identify the speaker.
Context: %s
Segment: %s
Previous speaker: %s
Return the speaker's name in 'FirstName LastName' format or 'Unknown' if unclear.
Rules:
- The Scrum Master often prompts others (e.g., 'OK, [name]', 'Hello, [name]', 'Next, [name]') or uses 'OK', 'Hello', 'Thank you'.
- Updates with 'yesterday', 'today', or 'blocker' belong to the prompted speaker.
- Short responses (e.g., 'yeah', 'sure') may belong to the previous speaker or Scrum Master if following a prompt.
- Responses to questions (e.g., 'Do you know why?') are from the previously prompted speaker.
- Identify names from context cues like prompts or explicit mentions in the transcript.`, runningContext, segment, previousSpeaker)
}
