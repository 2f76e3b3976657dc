package llm

import (
	"context"
	"strings"
	"testing"
)

func TestParseModel(t *testing.T) {
	tests := []struct {
		in           string
		wantProvider string
		wantModel    string
		wantErr      bool
	}{
		{in: "groq/llama3-70b-8192", wantProvider: "groq", wantModel: "llama3-70b-8192"},
		{in: "openai/gpt-4o-mini", wantProvider: "openai", wantModel: "gpt-4o-mini"},
		{in: "anthropic/claude-sonnet-4-20250514", wantProvider: "anthropic", wantModel: "claude-sonnet-4-20250514"},
		{in: "no-slash", wantErr: true},
		{in: "/model-only", wantErr: true},
		{in: "provider/", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		provider, model, err := ParseModel(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseModel(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseModel(%q) failed: %v", tt.in, err)
		}
		if provider != tt.wantProvider || model != tt.wantModel {
			t.Fatalf("ParseModel(%q) = (%q, %q), want (%q, %q)", tt.in, provider, model, tt.wantProvider, tt.wantModel)
		}
	}
}

func TestNewClientUnknownProvider(t *testing.T) {
	_, err := NewClient("mystery", "key", "model")
	if err == nil || !strings.Contains(err.Error(), "unknown LLM provider") {
		t.Fatalf("expected unknown provider error, got %v", err)
	}
}

func TestNewClientGroqAndOpenAI(t *testing.T) {
	for _, provider := range []string{"groq", "openai"} {
		client, err := NewClient(provider, "key", "some-model", WithMaxTokens(100))
		if err != nil {
			t.Fatalf("NewClient(%q) failed: %v", provider, err)
		}
		if client == nil {
			t.Fatalf("NewClient(%q) returned nil client", provider)
		}
	}
}

func TestNewClientAppliesGenerationOptions(t *testing.T) {
	client, err := NewClient("groq", "key", "llama3-8b-8192",
		WithMaxTokens(400), WithTemperature(0.7), WithStop("\n\n\n"))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	oc, ok := client.(*openaiClient)
	if !ok {
		t.Fatalf("expected *openaiClient, got %T", client)
	}
	if oc.opts.maxTokens != 400 {
		t.Fatalf("expected max tokens 400, got %d", oc.opts.maxTokens)
	}
	if oc.opts.temperature != 0.7 {
		t.Fatalf("expected temperature 0.7, got %v", oc.opts.temperature)
	}
	if len(oc.opts.stop) != 1 || oc.opts.stop[0] != "\n\n\n" {
		t.Fatalf("expected stop sequence, got %#v", oc.opts.stop)
	}
	if oc.opts.baseURL != GroqBaseURL {
		t.Fatalf("expected groq base URL, got %q", oc.opts.baseURL)
	}
}

type fakeClient struct {
	lastMessages []Message
}

func (f *fakeClient) Complete(_ context.Context, messages []Message) (string, error) {
	f.lastMessages = append([]Message(nil), messages...)
	return "ok", nil
}

func TestPromptWrapsSingleUserMessage(t *testing.T) {
	client := &fakeClient{}

	result, err := Prompt(context.Background(), client, "who spoke?")
	if err != nil {
		t.Fatalf("Prompt failed: %v", err)
	}
	if result != "ok" {
		t.Fatalf("expected ok, got %q", result)
	}
	if len(client.lastMessages) != 1 || client.lastMessages[0].Role != "user" || client.lastMessages[0].Content != "who spoke?" {
		t.Fatalf("unexpected messages: %#v", client.lastMessages)
	}
}
