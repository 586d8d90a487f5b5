// Package llm wraps the external text-generation service.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"asha/internal/metrics"
)

// ErrNotConfigured is returned by the disabled generator.
var ErrNotConfigured = errors.New("text generation is not configured")

// Generator produces text for a prompt, optionally steered by a system prompt.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, systemPrompt, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	return f(ctx, systemPrompt, prompt)
}

// GeminiClient is a Generator backed by the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini-backed generator.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Generate sends prompt to the model and returns the response text.
func (g *GeminiClient) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		metrics.LLMCalls.WithLabelValues(metrics.OutcomeError).Inc()
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		metrics.LLMCalls.WithLabelValues(metrics.OutcomeEmpty).Inc()
		return "", errors.New("gemini generate: empty response")
	}
	metrics.LLMCalls.WithLabelValues(metrics.OutcomeOK).Inc()
	return text, nil
}

// Disabled is the Generator used when no API key is configured.
// Every call fails, so callers take their degraded paths.
type Disabled struct{}

// Generate always returns ErrNotConfigured.
func (Disabled) Generate(context.Context, string, string) (string, error) {
	metrics.LLMCalls.WithLabelValues(metrics.OutcomeError).Inc()
	return "", ErrNotConfigured
}

// New returns a Gemini generator, or Disabled when apiKey is empty.
func New(ctx context.Context, apiKey, model string) (Generator, error) {
	if apiKey == "" {
		return Disabled{}, nil
	}
	return NewGeminiClient(ctx, apiKey, model)
}
