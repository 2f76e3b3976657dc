package standup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"
)

// Pipeline runs one transcript through normalize, segment, name extraction,
// attribution, and report rendering. A Pipeline is stateless across calls
// and safe for concurrent use; each Process call owns its attribution state.
type Pipeline struct {
	oracle  Oracle
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithOracleTimeout bounds each oracle round-trip.
func WithOracleTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.timeout = d }
}

// WithLogger sets the structured logger for per-segment degradation events.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// New returns a Pipeline using the given oracle for ambiguous attribution.
// A nil oracle is valid: attribution then relies on prompt rules alone.
func New(oracle Oracle, opts ...Option) *Pipeline {
	p := &Pipeline{oracle: oracle, timeout: DefaultOracleTimeout}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Process turns a raw transcript into the formatted standup report. The
// caller receives either the complete report or a single wrapped failure;
// partial reports are never returned. Entry validation and name extraction
// abort the transcript, while per-segment and oracle failures only degrade
// attribution.
func (p *Pipeline) Process(ctx context.Context, transcript string) (string, error) {
	report, err := p.process(ctx, transcript)
	if err != nil {
		return "", fmt.Errorf("process transcript: %w", err)
	}
	return report, nil
}

func (p *Pipeline) process(ctx context.Context, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" || !utf8.ValidString(transcript) {
		return "", ErrInvalidInput
	}

	segments := Split(Normalize(transcript))
	if len(segments) == 0 {
		return "", ErrInvalidInput
	}

	names, err := ExtractNames(segments)
	if err != nil {
		return "", err
	}

	engine := NewEngine(p.oracle, p.timeout, p.logger)
	return Render(engine.Attribute(ctx, segments, names))
}
