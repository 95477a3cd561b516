// Package rerank reorders retrieved chunks by a question-chunk relevance score.
package rerank

import (
	"context"
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"

	"bookrag/internal/domain"
)

// Reranker scores every chunk against the question and keeps the best ones.
type Reranker struct {
	scorer domain.Scorer
	logger arbor.ILogger
}

func New(scorer domain.Scorer, logger arbor.ILogger) *Reranker {
	return &Reranker{scorer: scorer, logger: logger}
}

// Rerank returns the topN chunks by descending score. Ties keep retrieval
// order. A topN of zero or less keeps every chunk. Empty input is returned
// without calling the scorer.
func (r *Reranker) Rerank(ctx context.Context, question string, chunks []domain.Chunk, topN int) ([]domain.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	scores, err := r.scorer.Score(ctx, question, texts)
	if err != nil {
		return nil, fmt.Errorf("score chunks: %w", err)
	}
	if len(scores) != len(chunks) {
		return nil, fmt.Errorf("scorer returned %d scores for %d chunks", len(scores), len(chunks))
	}

	order := make([]int, len(chunks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	if topN <= 0 || topN > len(order) {
		topN = len(order)
	}
	out := make([]domain.Chunk, topN)
	for i := 0; i < topN; i++ {
		out[i] = chunks[order[i]]
	}
	r.logger.Debug().
		Int("candidates", len(chunks)).
		Int("kept", topN).
		Float64("best_score", scores[order[0]]).
		Msg("Rerank completed")
	return out, nil
}
