package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gramsetu/loan-advisor/internal/config"
	"google.golang.org/genai"
)

// ChatTurn is one prior message in an advisor conversation.
type ChatTurn struct {
	Role    string // "user" or "assistant"
	Content string
}

type GeminiServiceInterface interface {
	GenerateChat(ctx context.Context, system string, turns []ChatTurn) (string, error)
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// GeminiService wraps the genai client with retry, exponential backoff and a
// consecutive-error circuit breaker. It serves the advisor chat and the
// product catalog embeddings; the assessment path has its own single-shot
// gateway client.
type GeminiService struct {
	Client            *genai.Client
	ChatModel         string
	EmbeddingModel    string
	MaxRetries        int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	RequestTimeout    time.Duration
	consecutiveErrors atomic.Int32
	circuitBreakerMax int32
}

func NewGeminiService(ctx context.Context) (*GeminiService, error) {
	geminiConfig := config.LoadGeminiConfig()
	if geminiConfig.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiService{
		Client:            client,
		ChatModel:         geminiConfig.ChatModel,
		EmbeddingModel:    geminiConfig.EmbeddingModel,
		MaxRetries:        3,
		BaseDelay:         time.Second,
		MaxDelay:          90 * time.Second,
		RequestTimeout:    90 * time.Second,
		circuitBreakerMax: 5,
	}, nil
}

// GenerateChat produces one assistant reply for the given system prompt and
// conversation history.
func (s *GeminiService) GenerateChat(ctx context.Context, system string, turns []ChatTurn) (string, error) {
	if len(turns) == 0 {
		return "", fmt.Errorf("conversation cannot be empty")
	}
	if errs := s.consecutiveErrors.Load(); errs >= s.circuitBreakerMax {
		return "", fmt.Errorf("circuit breaker open: too many consecutive errors (%d)", errs)
	}

	contents := conversationContents(turns)

	genConfig := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(float32(0.7)),
		MaxOutputTokens:   300,
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.RequestTimeout)
	defer cancel()

	var reply string
	err := s.withRetry(timeoutCtx, "GenerateChat", func() error {
		result, err := s.Client.Models.GenerateContent(timeoutCtx, s.ChatModel, contents, genConfig)
		if err != nil {
			return err
		}
		if err := validateGenerateResponse(result); err != nil {
			return nonRetryable{fmt.Errorf("invalid response: %w", err)}
		}
		reply = result.Text()
		return nil
	})
	return reply, err
}

// GenerateEmbedding returns the embedding vector for the given text.
func (s *GeminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	trimmedText := strings.TrimSpace(text)
	if trimmedText == "" {
		return nil, fmt.Errorf("text for embedding cannot be empty")
	}
	if len(trimmedText) > 10000 {
		log.Printf("Warning: text length %d exceeds recommended limit, truncating...", len(trimmedText))
		trimmedText = trimmedText[:10000]
	}
	if errs := s.consecutiveErrors.Load(); errs >= s.circuitBreakerMax {
		return nil, fmt.Errorf("circuit breaker open: too many consecutive errors (%d)", errs)
	}

	content := []*genai.Content{genai.NewContentFromText(trimmedText, genai.RoleUser)}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.RequestTimeout)
	defer cancel()

	var embedding []float32
	err := s.withRetry(timeoutCtx, "GenerateEmbedding", func() error {
		result, err := s.Client.Models.EmbedContent(timeoutCtx, s.EmbeddingModel, content, nil)
		if err != nil {
			return err
		}
		values, err := validateEmbeddingResponse(result)
		if err != nil {
			return nonRetryable{fmt.Errorf("invalid embedding response: %w", err)}
		}
		embedding = values
		return nil
	})
	return embedding, err
}

// conversationContents maps chat turns onto genai contents. Anything that is
// not an assistant turn speaks as the user.
func conversationContents(turns []ChatTurn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		role := genai.Role(genai.RoleUser)
		if turn.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}
	return contents
}

// nonRetryable marks errors the retry loop must surface immediately.
type nonRetryable struct{ error }

func (s *GeminiService) withRetry(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= s.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := s.calculateBackoff(attempt)
			log.Printf("Retry attempt %d/%d for %s after %v", attempt, s.MaxRetries, op, delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("context timeout during retry: %w", ctx.Err())
			}
		}

		err := fn()
		if err == nil {
			s.consecutiveErrors.Store(0)
			return nil
		}
		if nr, ok := err.(nonRetryable); ok {
			s.consecutiveErrors.Add(1)
			return nr.error
		}
		lastErr = err

		if !isRetryableError(err) {
			log.Printf("Non-retryable error: %v", err)
			s.consecutiveErrors.Add(1)
			return fmt.Errorf("%s failed: %w", op, err)
		}
		log.Printf("Retryable error on attempt %d: %v", attempt+1, err)
	}

	s.consecutiveErrors.Add(1)
	return fmt.Errorf("max retries (%d) exceeded for %s: %w", s.MaxRetries, op, lastErr)
}

func (s *GeminiService) calculateBackoff(attempt int) time.Duration {
	delay := s.BaseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > s.MaxDelay {
		delay = s.MaxDelay
	}
	jitter := time.Duration(float64(delay) * 0.25)
	delay = delay - jitter/2 + time.Duration(float64(jitter)*0.5)
	return delay
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errMsg := err.Error()
	if strings.Contains(errMsg, "context canceled") ||
		strings.Contains(errMsg, "context deadline exceeded") {
		return false
	}
	if apiErr, ok := err.(*genai.APIError); ok {
		switch apiErr.Code {
		case 429:
			return true
		case 500, 502, 503, 504:
			return true
		case 400, 401, 403, 404:
			return false
		}
	}
	if strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "connection reset") ||
		strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "temporary failure") ||
		strings.Contains(errMsg, "EOF") {
		return true
	}
	return false
}

func validateGenerateResponse(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("response is nil")
	}
	if len(resp.Candidates) == 0 {
		return fmt.Errorf("no candidates in response")
	}
	if resp.Candidates[0].Content == nil {
		return fmt.Errorf("candidate content is nil")
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("no parts in content")
	}
	return nil
}

func validateEmbeddingResponse(resp *genai.EmbedContentResponse) ([]float32, error) {
	if resp == nil {
		return nil, fmt.Errorf("response is nil")
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	values := resp.Embeddings[0].Values
	if len(values) == 0 {
		return nil, fmt.Errorf("embedding vector is empty")
	}
	for i, val := range values {
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return nil, fmt.Errorf("invalid embedding value at index %d: %v", i, val)
		}
	}
	return values, nil
}
