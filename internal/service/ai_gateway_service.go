package service

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/gramsetu/loan-advisor/internal/config"
	"github.com/gramsetu/loan-advisor/internal/util"
	"github.com/tidwall/gjson"
)

type AIGatewayServiceInterface interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// AIGatewayService talks to an OpenAI-compatible chat completions endpoint.
// The assessment path makes exactly one attempt per request: the caller
// decides what a failure means, not this client.
type AIGatewayService struct {
	client *resty.Client
	model  string
}

func NewAIGatewayService() *AIGatewayService {
	cfg := config.LoadAIGatewayConfig()
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", "Bearer "+cfg.APIKey).
		SetHeader("Content-Type", "application/json")
	return &AIGatewayService{client: client, model: cfg.Model}
}

// Complete sends a single chat completion request and returns the assistant
// message content. Transport failures and non-2xx statuses come back as
// provider errors; a 2xx response without message content comes back as a
// parse error since the provider itself answered.
func (s *AIGatewayService) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"model": s.model,
			"messages": []map[string]string{
				{"role": "system", "content": system},
				{"role": "user", "content": prompt},
			},
			"temperature": 0.3,
		}).
		Post("/chat/completions")
	if err != nil {
		return "", util.NewProviderError("AI gateway unreachable", err)
	}
	if resp.IsError() {
		return "", util.NewProviderError(
			fmt.Sprintf("AI gateway returned status %d", resp.StatusCode()), nil)
	}

	content := gjson.Get(resp.String(), "choices.0.message.content").String()
	if content == "" {
		return "", util.NewParseError("no message content in AI gateway response", nil)
	}
	return content, nil
}
