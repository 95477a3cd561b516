// Package llm generates answers with a hosted chat model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"
)

// ErrMissingAPIKey is returned when the configured key variable is unset.
var ErrMissingAPIKey = errors.New("gemini API key not set")

// ErrEmptyResponse is returned when the model replies without any text.
var ErrEmptyResponse = errors.New("empty response from model")

// generateAPI is the part of genai.Models used by the generator.
type generateAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config configures the Gemini generator.
type Config struct {
	APIKeyEnv   string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// Gemini sends a single-turn prompt to a Gemini model. Calls are not retried.
type Gemini struct {
	api         generateAPI
	model       string
	temperature float32
	timeout     time.Duration
	logger      arbor.ILogger
}

// NewGemini creates a generator, failing fast when the API key is absent.
func NewGemini(ctx context.Context, cfg Config, logger arbor.ILogger) (*Gemini, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set %s", ErrMissingAPIKey, cfg.APIKeyEnv)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}
	return newGemini(client.Models, cfg, logger), nil
}

func newGemini(api generateAPI, cfg Config, logger arbor.ILogger) *Gemini {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Gemini{
		api:         api,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      logger,
	}
}

// Model returns the configured model name.
func (g *Gemini) Model() string { return g.model }

// Generate returns the model's reply to prompt with surrounding whitespace trimmed.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	startTime := time.Now()
	resp, err := g.api.GenerateContent(timeoutCtx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{Temperature: genai.Ptr(g.temperature)},
	)
	if err != nil {
		return "", fmt.Errorf("content generation failed: %w", err)
	}

	answer := strings.TrimSpace(responseText(resp))
	if answer == "" {
		return "", ErrEmptyResponse
	}

	g.logger.Debug().
		Str("model", g.model).
		Int("prompt_len", len(prompt)).
		Dur("duration", time.Since(startTime)).
		Msg("Answer generated")
	return answer, nil
}

// responseText joins the text parts of the first candidate that has any.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.Text != "" && !part.Thought {
				b.WriteString(part.Text)
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}
