// Package gemini wraps the Google Gen AI SDK for prompt-based text generation.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const defaultGenerativeModel = "gemini-2.5-flash"

// Generator sends prompts to a Gemini generative model and returns the textual response.
// Every call is bounded by a timeout and throttled by a process-wide rate limiter so the
// pipeline never blocks indefinitely on the provider.
type Generator struct {
	client    *genai.Client
	modelName string
	timeout   time.Duration
	limiter   *rate.Limiter
}

// GeneratorOption configures the Generator.
type GeneratorOption func(*Generator)

// WithTimeout bounds each GenerateText call. Zero disables the bound.
func WithTimeout(d time.Duration) GeneratorOption {
	return func(g *Generator) {
		g.timeout = d
	}
}

// WithRequestsPerMinute throttles GenerateText calls across the process.
func WithRequestsPerMinute(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.limiter = rate.NewLimiter(rate.Limit(float64(n)/60.0), 1)
		}
	}
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, opts ...GeneratorOption) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultGenerativeModel
	}

	g := &Generator{client: client, modelName: model, timeout: 45 * time.Second}
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// GenerateText sends the prompt to Gemini and returns the concatenated textual response.
func (g *Generator) GenerateText(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

// Model returns the configured generative model name.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}
