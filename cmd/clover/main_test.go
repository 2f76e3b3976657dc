package main

import (
	"testing"

	"github.com/sindhupr11/clover-backend/internal/config"
	"github.com/sindhupr11/clover-backend/internal/digest"
)

func TestApiKeyFor(t *testing.T) {
	cfg := config.Config{
		GroqAPIKey:      "gsk",
		OpenAIAPIKey:    "sk",
		AnthropicAPIKey: "ak",
		GeminiAPIKey:    "gem",
	}

	tests := []struct {
		provider string
		want     string
	}{
		{provider: "groq", want: "gsk"},
		{provider: "openai", want: "sk"},
		{provider: "anthropic", want: "ak"},
		{provider: "gemini", want: "gem"},
		{provider: "mystery", want: ""},
	}

	for _, tt := range tests {
		if got := apiKeyFor(cfg, tt.provider); got != tt.want {
			t.Fatalf("apiKeyFor(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestBuildCompletionClient(t *testing.T) {
	cfg := config.Config{GroqAPIKey: "gsk"}

	if client := buildCompletionClient(cfg, "groq/llama3-8b-8192", digest.ClientOptions()...); client == nil {
		t.Fatal("expected client with key and options set")
	}
	if client := buildCompletionClient(cfg, "openai/gpt-4o-mini"); client != nil {
		t.Fatal("expected nil client without an OpenAI key")
	}
	if client := buildCompletionClient(cfg, "not-a-model"); client != nil {
		t.Fatal("expected nil client for malformed model")
	}
}

func TestBuildOracle(t *testing.T) {
	if oracle := buildOracle(config.Config{}); oracle != nil {
		t.Fatal("expected nil oracle without a Groq key")
	}
	if oracle := buildOracle(config.Config{GroqAPIKey: "gsk", OracleModel: "groq/llama3-70b-8192"}); oracle == nil {
		t.Fatal("expected oracle with a Groq key")
	}
}
