// Package ai defines the interface for AI completion providers
// and a placeholder implementation.
//
// Design decisions:
//   - Provider is an interface so we can swap backends (OpenAI, Anthropic,
//     Gemini, Ollama) without changing orchestration code.
//   - All methods accept context; callers set per-call deadlines there.
//   - One attempt per call. Retries, if ever wanted, belong to the caller.
//   - The placeholder provider returns canned responses for development.
package ai

import (
	"context"
)

// Provider is the interface all AI backends must implement.
type Provider interface {
	// Complete sends a system prompt plus one user message and returns
	// the model's raw text reply.
	Complete(ctx context.Context, system, user string) (string, error)

	// Name returns the provider name for display and logging.
	Name() string
}
