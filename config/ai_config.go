// Package config — AI provider configuration.
//
// Provider selection and credentials come from the environment
// (ASKDB_AI_PROVIDER plus the usual OPENAI_API_KEY, ANTHROPIC_API_KEY,
// GEMINI_API_KEY, OLLAMA_HOST variables).
package config

import "time"

// AIConfig holds the AI provider selection and credentials.
type AIConfig struct {
	Provider  string // "openai", "anthropic", "gemini", "ollama", "placeholder"
	Timeout   time.Duration
	OpenAI    OpenAIConfig
	Anthropic AnthropicConfig
	Gemini    GeminiConfig
	Ollama    OllamaConfig
}

// OpenAIConfig holds OpenAI-specific settings.
type OpenAIConfig struct {
	APIKey string
	Model  string
}

// AnthropicConfig holds Anthropic-specific settings.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// GeminiConfig holds Google Gemini-specific settings.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// OllamaConfig holds Ollama-specific settings.
type OllamaConfig struct {
	Host  string
	Model string
}

// DefaultAIConfig returns sensible defaults.
func DefaultAIConfig() AIConfig {
	return AIConfig{
		Provider: "placeholder",
		Timeout:  60 * time.Second,
		OpenAI: OpenAIConfig{
			Model: "gpt-4o",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet-4-20250514",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.0-flash",
		},
		Ollama: OllamaConfig{
			Host:  "http://localhost:11434",
			Model: "llama3.2",
		},
	}
}

// loadAIConfig applies environment overrides onto the defaults.
func loadAIConfig(lookup LookupFunc, cfg *AIConfig) {
	stringVar(lookup, "ASKDB_AI_PROVIDER", &cfg.Provider)
	stringVar(lookup, "OPENAI_API_KEY", &cfg.OpenAI.APIKey)
	stringVar(lookup, "ASKDB_OPENAI_MODEL", &cfg.OpenAI.Model)
	stringVar(lookup, "ANTHROPIC_API_KEY", &cfg.Anthropic.APIKey)
	stringVar(lookup, "ASKDB_ANTHROPIC_MODEL", &cfg.Anthropic.Model)
	stringVar(lookup, "GEMINI_API_KEY", &cfg.Gemini.APIKey)
	stringVar(lookup, "ASKDB_GEMINI_MODEL", &cfg.Gemini.Model)
	stringVar(lookup, "OLLAMA_HOST", &cfg.Ollama.Host)
	stringVar(lookup, "ASKDB_OLLAMA_MODEL", &cfg.Ollama.Model)
}
