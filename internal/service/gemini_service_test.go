package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"google.golang.org/genai"
)

func TestConversationContents(t *testing.T) {
	turns := []ChatTurn{
		{Role: "user", Content: "what loans can I get?"},
		{Role: "assistant", Content: "• Personal Loan • Gold Loan"},
		{Role: "user", Content: "tell me about gold loans"},
	}

	contents := conversationContents(turns)
	if len(contents) != 3 {
		t.Fatalf("len(contents) = %d, want 3", len(contents))
	}

	wantRoles := []genai.Role{genai.RoleUser, genai.RoleModel, genai.RoleUser}
	for i, content := range contents {
		if content.Role != string(wantRoles[i]) {
			t.Errorf("contents[%d].Role = %q, want %q", i, content.Role, wantRoles[i])
		}
		if len(content.Parts) != 1 || content.Parts[0].Text != turns[i].Content {
			t.Errorf("contents[%d] parts = %+v, want single text part %q", i, content.Parts, turns[i].Content)
		}
	}
}

func TestGenerateChatCircuitBreakerOpen(t *testing.T) {
	s := &GeminiService{circuitBreakerMax: 2, RequestTimeout: time.Second}
	s.consecutiveErrors.Store(2)

	_, err := s.GenerateChat(context.Background(), "system", []ChatTurn{{Role: "user", Content: "hi"}})
	if err == nil || !strings.Contains(err.Error(), "circuit breaker open") {
		t.Fatalf("err = %v, want circuit breaker open", err)
	}
}

func TestWithRetryTracksConsecutiveErrors(t *testing.T) {
	s := &GeminiService{MaxRetries: 0, circuitBreakerMax: 5}

	err := s.withRetry(context.Background(), "op", func() error {
		return errors.New("bad request")
	})
	if err == nil {
		t.Fatal("withRetry should surface the failure")
	}
	if got := s.consecutiveErrors.Load(); got != 1 {
		t.Errorf("consecutiveErrors = %d after failure, want 1", got)
	}

	if err := s.withRetry(context.Background(), "op", func() error { return nil }); err != nil {
		t.Fatalf("withRetry err: %v", err)
	}
	if got := s.consecutiveErrors.Load(); got != 0 {
		t.Errorf("consecutiveErrors = %d after success, want reset to 0", got)
	}
}
