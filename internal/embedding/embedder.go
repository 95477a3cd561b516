// Package embedding selects a text embedder implementation from configuration.
package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"bookrag/internal/config"
	"bookrag/internal/domain"
	"bookrag/internal/embedding/gemini"
	"bookrag/internal/embedding/hashing"
	"bookrag/internal/embedding/openai"
)

// New builds the embedder named by cfg.Type.
func New(ctx context.Context, cfg config.EmbedderConfig, logger arbor.ILogger) (domain.Embedder, error) {
	switch cfg.Type {
	case "gemini", "":
		g := cfg.Gemini
		if g == nil {
			g = &config.GeminiEmbedderConfig{APIKeyEnv: "GEMINI_API_KEY"}
		}
		emb, err := gemini.NewEmbedder(ctx, gemini.Config{
			APIKeyEnv: g.APIKeyEnv,
			Model:     g.Model,
			Dimension: g.Dimension,
			Timeout:   time.Duration(g.TimeoutSecs) * time.Second,
			BatchSize: g.BatchSize,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("gemini embedder init failed: %w", err)
		}
		return emb, nil
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKeyEnv: cfg.OpenAI.APIKeyEnv,
			Model:     cfg.OpenAI.Model,
			Timeout:   time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
			BatchSize: cfg.OpenAI.BatchSize,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		return client, nil
	case "hashing":
		return hashing.NewEmbedder(cfg.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
}
