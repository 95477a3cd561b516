package rerank

import (
	"fmt"
	"time"

	"bookrag/internal/config"
	"bookrag/internal/domain"
)

// NewScorer builds the scorer named by cfg.Type.
func NewScorer(cfg config.RerankerConfig) (domain.Scorer, error) {
	switch cfg.Type {
	case "overlap", "":
		return NewOverlapScorer(), nil
	case "http":
		s, err := NewHTTPScorer(HTTPConfig{
			URL:     cfg.URL,
			Model:   cfg.Model,
			Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown reranker: %s", cfg.Type)
	}
}
