package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/askdb/askdb/config"
)

func TestOpenAICompleteSendsBothMessages(t *testing.T) {
	var captured struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"content": "SELECT 1"}}]}`))
	}))
	defer server.Close()

	provider := NewOpenAI("test-key", "gpt-4o").WithBaseURL(server.URL)
	got, err := provider.Complete(context.Background(), "you write SQL", "how many customers?")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "SELECT 1" {
		t.Fatalf("Complete() = %q", got)
	}

	if captured.Model != "gpt-4o" {
		t.Fatalf("model = %q", captured.Model)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("message count = %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || captured.Messages[0].Content != "you write SQL" {
		t.Fatalf("system message = %+v", captured.Messages[0])
	}
	if captured.Messages[1].Role != "user" || captured.Messages[1].Content != "how many customers?" {
		t.Fatalf("user message = %+v", captured.Messages[1])
	}
}

func TestOpenAICompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limit"}}`))
	}))
	defer server.Close()

	provider := NewOpenAI("test-key", "").WithBaseURL(server.URL)
	_, err := provider.Complete(context.Background(), "sys", "user")
	if err == nil {
		t.Fatal("Complete() error = nil, want failure")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("error = %v, want status code in message", err)
	}
}

func TestOpenAICompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	provider := NewOpenAI("test-key", "").WithBaseURL(server.URL)
	if _, err := provider.Complete(context.Background(), "sys", "user"); err == nil {
		t.Fatal("Complete() error = nil, want failure for empty choices")
	}
}

func TestAnthropicCompleteSystemIsTopLevel(t *testing.T) {
	var captured struct {
		Model    string `json:"model"`
		System   string `json:"system"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Write([]byte(`{"content": [{"type": "text", "text": "SELECT "}, {"type": "text", "text": "1"}]}`))
	}))
	defer server.Close()

	provider := NewAnthropic("test-key", "").WithBaseURL(server.URL)
	got, err := provider.Complete(context.Background(), "you write SQL", "how many customers?")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	// Text blocks concatenate in order.
	if got != "SELECT 1" {
		t.Fatalf("Complete() = %q", got)
	}

	if captured.System != "you write SQL" {
		t.Fatalf("system = %q", captured.System)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v", captured.Messages)
	}
}

func TestNewProviderSelection(t *testing.T) {
	cases := map[string]string{
		"openai":      "OpenAI",
		"anthropic":   "Anthropic",
		"gemini":      "Gemini",
		"ollama":      "Ollama",
		"placeholder": "placeholder",
	}
	for name, wantPrefix := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.DefaultAIConfig()
			cfg.Provider = name
			cfg.OpenAI.APIKey = "k"
			cfg.Anthropic.APIKey = "k"
			cfg.Gemini.APIKey = "k"

			provider, err := NewProvider(cfg)
			if err != nil {
				t.Fatalf("NewProvider(%q) error = %v", name, err)
			}
			if !strings.HasPrefix(provider.Name(), wantPrefix) {
				t.Fatalf("Name() = %q, want prefix %q", provider.Name(), wantPrefix)
			}
		})
	}
}

func TestNewProviderUnknown(t *testing.T) {
	cfg := config.DefaultAIConfig()
	cfg.Provider = "grok"
	if _, err := NewProvider(cfg); err == nil {
		t.Fatal("NewProvider() error = nil, want failure for unknown provider")
	}
}

func TestNewProviderMissingKey(t *testing.T) {
	cfg := config.DefaultAIConfig()
	cfg.Provider = "openai"
	if _, err := NewProvider(cfg); err == nil {
		t.Fatal("NewProvider() error = nil, want failure without an API key")
	}
}
