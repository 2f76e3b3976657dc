// Package digest turns a pre-written standup document into the formatted
// team summary. Unlike the attribution pipeline, which reconstructs who
// said what from raw speech, the digest path trusts the document's own
// structure and only asks the model to condense and format it.
package digest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sindhupr11/clover-backend/internal/llm"
)

const promptTemplate = `You are a text parser that extracts and formats information from team updates. Output *only* the formatted information for *all* team members in the input, in the exact format shown below, with no additional text or commentary. Summarize each field to 5-10 words, preserving technical terms and keywords. Use lowercase for tasks and blockers fields, and separate each person's summary with a single blank line.

Expected output format for each person:
{person_name}
time: {time}
yesterday: {yesterday_tasks}
today: {today_tasks}
blockers: {blockers}

Input:
{{input}}

Output concise formatted summaries for all team members, in the specified format, with no extra text.`

const (
	maxTokens    = 400
	temperature  = 0.7
	stopSequence = "\n\n\n"
)

// ClientOptions returns the generation settings the formatter's completion
// client must be built with: room for a full team's summaries, mild
// sampling, and a stop at the triple newline that ends the output format.
func ClientOptions() []llm.Option {
	return []llm.Option{
		llm.WithMaxTokens(maxTokens),
		llm.WithTemperature(temperature),
		llm.WithStop(stopSequence),
	}
}

// Formatter condenses document text into per-person summaries via a
// completion model.
type Formatter struct {
	client llm.Client
	sleep  func(time.Duration)
}

func New(client llm.Client) *Formatter {
	return &Formatter{client: client, sleep: time.Sleep}
}

// Format renders the digest prompt for the given document text and returns
// the model's formatted summary. Transient completion failures are retried
// with backoff before giving up.
func (f *Formatter) Format(ctx context.Context, text string) (string, error) {
	if f.client == nil {
		return "", fmt.Errorf("digest: no completion client configured")
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("digest: empty document text")
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{input}}", text)

	backoff := []time.Duration{1 * time.Second, 4 * time.Second, 16 * time.Second}
	var lastErr error
	for attempt := range backoff {
		result, err := llm.Prompt(ctx, f.client, prompt)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if attempt < len(backoff)-1 {
			f.sleep(backoff[attempt])
		}
	}
	return "", fmt.Errorf("digest failed after retries: %w", lastErr)
}
