package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPScorer calls a cross-encoder rerank endpoint that accepts
// {"query", "texts"} and answers with [{"index", "score"}], as served by
// text-embeddings-inference.
type HTTPScorer struct {
	url        string
	model      string
	client     *http.Client
	maxRetries int
	sleep      func(context.Context, time.Duration) error
}

// HTTPConfig configures the HTTP scorer.
type HTTPConfig struct {
	URL     string
	Model   string
	Timeout time.Duration
}

func NewHTTPScorer(cfg HTTPConfig) (*HTTPScorer, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("reranker url is required")
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &HTTPScorer{
		url:        strings.TrimRight(cfg.URL, "/"),
		model:      cfg.Model,
		client:     &http.Client{Timeout: t},
		maxRetries: 3,
		sleep:      sleepCtx,
	}, nil
}

func (s *HTTPScorer) Score(ctx context.Context, question string, texts []string) ([]float64, error) {
	type reqBody struct {
		Query string   `json:"query"`
		Texts []string `json:"texts"`
		Model string   `json:"model,omitempty"`
	}
	data, err := json.Marshal(reqBody{Query: question, Texts: texts, Model: s.model})
	if err != nil {
		return nil, err
	}
	url := s.url + "/rerank"
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			if err := s.sleep(ctx, retryDelay(attempt-1)); err != nil {
				return nil, err
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := s.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("rerank failed: %s", resp.Status)
			continue
		}
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("rerank failed: %s", resp.Status)
		}
		if err != nil {
			return nil, err
		}
		return decodeScores(payload, len(texts))
	}
	return nil, lastErr
}

func decodeScores(payload []byte, n int) ([]float64, error) {
	var out []struct {
		Index int     `json:"index"`
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}
	if len(out) != n {
		return nil, fmt.Errorf("expected %d scores, got %d", n, len(out))
	}
	scores := make([]float64, n)
	seen := make([]bool, n)
	for _, o := range out {
		if o.Index < 0 || o.Index >= n || seen[o.Index] {
			return nil, fmt.Errorf("invalid rerank index %d", o.Index)
		}
		seen[o.Index] = true
		scores[o.Index] = o.Score
	}
	return scores, nil
}

func retryDelay(attempt int) time.Duration {
	d := 200 * time.Millisecond << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
