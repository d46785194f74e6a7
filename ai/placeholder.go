package ai

import (
	"context"
	"strings"
	"time"
)

// Placeholder is a mock AI provider for development. It emits
// well-formed JSON replies so the full pipeline can be exercised
// without credentials.
type Placeholder struct{}

var _ Provider = (*Placeholder)(nil)

func NewPlaceholder() *Placeholder {
	return &Placeholder{}
}

func (p *Placeholder) Name() string {
	return "placeholder"
}

func (p *Placeholder) Complete(ctx context.Context, system, user string) (string, error) {
	// Simulate network latency
	select {
	case <-time.After(300 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	if strings.Contains(system, `"summary"`) {
		return `{"summary": "This is a placeholder summary. Configure a real AI provider (OpenAI, Anthropic, Gemini, Ollama) to get an actual answer."}`, nil
	}
	return `{"sql": null, "error": "The placeholder provider cannot generate SQL. Configure a real AI provider (OpenAI, Anthropic, Gemini, Ollama)."}`, nil
}
