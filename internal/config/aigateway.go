package config

import (
	"os"
	"sync"
	"time"
)

// AIGatewayConfig points at an OpenAI-compatible chat completions endpoint
// used for the underwriting assessment.
type AIGatewayConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

var (
	aiGatewayConfig *AIGatewayConfig
	aiGatewayOnce   sync.Once
)

func LoadAIGatewayConfig() *AIGatewayConfig {
	aiGatewayOnce.Do(func() {
		baseURL := os.Getenv("AI_GATEWAY_URL")
		if baseURL == "" {
			baseURL = "https://ai.gateway.lovable.dev/v1"
		}
		model := os.Getenv("AI_GATEWAY_MODEL")
		if model == "" {
			model = "google/gemini-2.5-flash"
		}
		timeout := 60 * time.Second
		if raw := os.Getenv("AI_GATEWAY_TIMEOUT"); raw != "" {
			if parsed, err := time.ParseDuration(raw); err == nil {
				timeout = parsed
			}
		}
		aiGatewayConfig = &AIGatewayConfig{
			APIKey:  os.Getenv("AI_GATEWAY_API_KEY"),
			BaseURL: baseURL,
			Model:   model,
			Timeout: timeout,
		}
	})
	return aiGatewayConfig
}
