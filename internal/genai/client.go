// Package genai is the generation-service fallback: it is invoked only when
// deterministic resolution and classification leave genuine ambiguity.
package genai

import (
	"context"
	"time"
)

// Request is a single generation call.
type Request struct {
	System      string    `json:"system,omitempty"`
	Prompt      string    `json:"prompt"`
	History     []Message `json:"history,omitempty"`
	MaxTokens   int       `json:"maxTokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
}

// Message is one conversation turn passed as history.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Response is the generation result. Confidence feeds the layer-2
// compliance gate; providers that report none default to 1.0.
type Response struct {
	Text       string        `json:"text"`
	Confidence float64       `json:"confidence"`
	Model      string        `json:"model,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
}

// Client is the generation-service contract. Implementations may fail or
// time out; callers own the fallback behavior.
type Client interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	Name() string
}

// MockClient is a test double for Client.
type MockClient struct {
	ProviderName string
	GenerateFunc func(ctx context.Context, req Request) (*Response, error)
	Calls        int
}

func (m *MockClient) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

func (m *MockClient) Generate(ctx context.Context, req Request) (*Response, error) {
	m.Calls++
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return &Response{Text: "mock response", Confidence: 1.0}, nil
}
