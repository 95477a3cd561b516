// Package service wires the ingestion and question-answering pipelines.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"bookrag/internal/domain"
	"bookrag/internal/prompt"
)

var (
	// ErrNoContext is returned when nothing relevant was retrieved; the
	// generator is not called.
	ErrNoContext = errors.New("no context found")
	// ErrEmptyQuestion is returned for a blank question.
	ErrEmptyQuestion = errors.New("empty question")
)

// Mode selects the post-retrieval step.
type Mode string

const (
	ModeFilter Mode = "filter"
	ModeRerank Mode = "rerank"
	ModeNone   Mode = "none"
)

// ParseMode maps a config value to a Mode; empty means filter.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeFilter, "":
		return ModeFilter, nil
	case ModeRerank:
		return ModeRerank, nil
	case ModeNone:
		return ModeNone, nil
	default:
		return "", fmt.Errorf("unknown retrieval mode: %s", s)
	}
}

type Retriever interface {
	Retrieve(ctx context.Context, question string, kPerVolume int) ([]domain.Chunk, error)
}

type Filter interface {
	Filter(question string, chunks []domain.Chunk) []domain.Chunk
}

type Reranker interface {
	Rerank(ctx context.Context, question string, chunks []domain.Chunk, topN int) ([]domain.Chunk, error)
}

// Options tune a QA pipeline.
type Options struct {
	KPerVolume int
	Mode       Mode
	TopN       int
}

// Answer is the generated reply with the chunks it was grounded on.
type Answer struct {
	Question string
	Text     string
	Sources  []domain.Source
	Chunks   []domain.Chunk
}

// QA answers questions: retrieve, narrow, prompt, generate.
type QA struct {
	retriever Retriever
	filter    Filter
	reranker  Reranker
	generator domain.Generator
	opts      Options
	logger    arbor.ILogger
}

// NewQA builds the pipeline. filter is required in filter mode and reranker in rerank mode.
func NewQA(retriever Retriever, filter Filter, reranker Reranker, generator domain.Generator, opts Options, logger arbor.ILogger) (*QA, error) {
	if retriever == nil || generator == nil {
		return nil, errors.New("retriever and generator are required")
	}
	if opts.Mode == "" {
		opts.Mode = ModeFilter
	}
	switch opts.Mode {
	case ModeFilter:
		if filter == nil {
			return nil, errors.New("filter mode needs a keyword filter")
		}
	case ModeRerank:
		if reranker == nil {
			return nil, errors.New("rerank mode needs a reranker")
		}
	case ModeNone:
	default:
		return nil, fmt.Errorf("unknown retrieval mode: %s", opts.Mode)
	}
	if opts.KPerVolume <= 0 {
		opts.KPerVolume = 3
	}
	return &QA{
		retriever: retriever,
		filter:    filter,
		reranker:  reranker,
		generator: generator,
		opts:      opts,
		logger:    logger,
	}, nil
}

// Context runs retrieval and the configured narrowing step without generating.
func (s *QA) Context(ctx context.Context, question string) ([]domain.Chunk, error) {
	chunks, err := s.retriever.Retrieve(ctx, question, s.opts.KPerVolume)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	switch s.opts.Mode {
	case ModeFilter:
		chunks = s.filter.Filter(question, chunks)
	case ModeRerank:
		chunks, err = s.reranker.Rerank(ctx, question, chunks, s.opts.TopN)
		if err != nil {
			return nil, fmt.Errorf("rerank: %w", err)
		}
	}
	return chunks, nil
}

// Ask answers question from the indexed book. Generator errors are wrapped
// and returned as is; they are not retried.
func (s *QA) Ask(ctx context.Context, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, ErrEmptyQuestion
	}

	startTime := time.Now()
	chunks, err := s.Context(ctx, question)
	if err != nil {
		return Answer{}, err
	}
	if len(chunks) == 0 {
		return Answer{}, ErrNoContext
	}

	text, err := s.generator.Generate(ctx, prompt.Build(question, chunks))
	if err != nil {
		return Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	answer := Answer{
		Question: question,
		Text:     text,
		Sources:  prompt.Sources(chunks),
		Chunks:   chunks,
	}
	s.logger.Info().
		Str("mode", string(s.opts.Mode)).
		Int("chunks", len(chunks)).
		Int("sources", len(answer.Sources)).
		Dur("duration", time.Since(startTime)).
		Msg("Question answered")
	return answer, nil
}
