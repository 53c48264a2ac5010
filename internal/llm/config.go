package llm

import (
	"os"
	"strconv"
)

// Provider selects the completion backend.
type Provider string

const (
	ProviderOpenRouter Provider = "openrouter"
	ProviderGemini     Provider = "gemini"
)

// DefaultGeminiModel is used when the gemini provider is chosen without a model.
const DefaultGeminiModel = "gemini-2.0-flash"

// Sampling holds the generation parameters sent with every request.
type Sampling struct {
	MaxTokens        int
	Temperature      float64
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
}

// LLMConfig holds all configuration for the completion collaborator.
type LLMConfig struct {
	Provider   Provider
	APIKey     string
	Endpoint   string
	Model      string
	SiteURL    string
	SiteName   string
	TimeoutMs  int
	MaxRetries int
	LogCalls   bool
	Sampling   Sampling
}

// DefaultConfig returns an LLMConfig with sensible defaults.
// Without an API key the collaborator answers with the canned welcome reply.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Provider:   ProviderOpenRouter,
		Endpoint:   "https://openrouter.ai/api/v1",
		Model:      "openai/gpt-4o",
		SiteURL:    "https://learnerbot.ai",
		SiteName:   "LearnerBot AI Assistant",
		TimeoutMs:  30000,
		MaxRetries: 0,
		Sampling: Sampling{
			MaxTokens:        1500,
			Temperature:      0.7,
			TopP:             0.9,
			FrequencyPenalty: 0.1,
			PresencePenalty:  0.1,
		},
	}
}

// Configured reports whether a credential is present.
func (c LLMConfig) Configured() bool {
	return c.APIKey != ""
}

// LoadConfig reads LLM configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() LLMConfig {
	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	return cfg
}

// ApplyEnv overlays LEARNERBOT_LLM_* (and OPENROUTER_API_KEY / GEMINI_API_KEY)
// environment variables onto cfg.
func ApplyEnv(cfg *LLMConfig) {
	if v := os.Getenv("LEARNERBOT_LLM_PROVIDER"); v != "" {
		cfg.Provider = Provider(v)
		if cfg.Provider == ProviderGemini && os.Getenv("LEARNERBOT_LLM_MODEL") == "" {
			cfg.Model = DefaultGeminiModel
		}
	}
	switch cfg.Provider {
	case ProviderGemini:
		if v := os.Getenv("GEMINI_API_KEY"); v != "" {
			cfg.APIKey = v
		}
	default:
		if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
			cfg.APIKey = v
		}
	}
	if v := os.Getenv("LEARNERBOT_LLM_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("LEARNERBOT_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("LEARNERBOT_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("LEARNERBOT_SITE_URL"); v != "" {
		cfg.SiteURL = v
	}
	if v := os.Getenv("LEARNERBOT_SITE_NAME"); v != "" {
		cfg.SiteName = v
	}
	if v := os.Getenv("LEARNERBOT_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("LEARNERBOT_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("LEARNERBOT_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("LEARNERBOT_LLM_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Sampling.MaxTokens = n
		}
	}
	if v := os.Getenv("LEARNERBOT_LLM_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 2 {
			cfg.Sampling.Temperature = f
		}
	}
}
