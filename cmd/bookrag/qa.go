package main

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"

	"bookrag/internal/config"
	"bookrag/internal/embedding"
	"bookrag/internal/indexstore"
	"bookrag/internal/llm"
	"bookrag/internal/rerank"
	"bookrag/internal/retrieval"
	"bookrag/internal/service"
)

// newQA assembles the question-answering pipeline. The generator is built
// first so a missing API key fails before any index is touched.
func newQA(ctx context.Context, cfg *config.AppConfig, logger arbor.ILogger) (*service.QA, error) {
	gen, err := llm.NewGemini(ctx, llm.Config{
		APIKeyEnv:   cfg.LLM.APIKeyEnv,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	}, logger)
	if err != nil {
		return nil, err
	}

	mode, err := service.ParseMode(cfg.Retrieval.Mode)
	if err != nil {
		return nil, err
	}

	emb, err := embedding.New(ctx, cfg.Embedder, logger)
	if err != nil {
		return nil, err
	}
	retriever := retrieval.NewRetriever(emb, indexstore.New(cfg.Index.Dir), logger)

	var reranker service.Reranker
	if mode == service.ModeRerank {
		scorer, err := rerank.NewScorer(cfg.Reranker)
		if err != nil {
			return nil, err
		}
		reranker = rerank.New(scorer, logger)
	}

	return service.NewQA(
		retriever,
		retrieval.NewKeywordFilter(cfg.Retrieval.Keywords),
		reranker,
		gen,
		service.Options{KPerVolume: cfg.Retrieval.KPerVolume, Mode: mode, TopN: cfg.Retrieval.TopN},
		logger,
	)
}
