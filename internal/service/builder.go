package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"bookrag/internal/chunker"
	"bookrag/internal/domain"
	"bookrag/internal/indexstore"
	"bookrag/internal/structure"
	"bookrag/internal/vectorindex"
)

// ErrNoChunks is returned when a build has nothing to index.
var ErrNoChunks = errors.New("no chunks to index")

// IndexedVolume reports one volume written by a build.
type IndexedVolume struct {
	Volume string
	Dir    string
	Chunks int
}

// Builder embeds chunks and writes one flat index per volume.
type Builder struct {
	embedder domain.Embedder
	store    *indexstore.Store
	logger   arbor.ILogger
}

func NewBuilder(embedder domain.Embedder, store *indexstore.Store, logger arbor.ILogger) *Builder {
	return &Builder{embedder: embedder, store: store, logger: logger}
}

// BuildPages runs the ingestion pipeline from raw pages: structure, chunk, index.
func (b *Builder) BuildPages(ctx context.Context, pages []domain.Page, assigner *structure.Assigner, ch *chunker.Chunker) ([]IndexedVolume, error) {
	structured := assigner.Assign(pages)
	chunks := ch.Chunk(structured)
	b.logger.Info().
		Int("pages", len(pages)).
		Int("chunks", len(chunks)).
		Msg("Chunked book")
	return b.Build(ctx, chunks)
}

// Build groups chunks by volume in first-seen order and replaces each
// volume's index on disk. Chunks without a volume are not indexed.
func (b *Builder) Build(ctx context.Context, chunks []domain.Chunk) ([]IndexedVolume, error) {
	var order []string
	groups := make(map[string][]domain.Chunk)
	dropped := 0
	for _, c := range chunks {
		if c.Volume == "" {
			dropped++
			continue
		}
		if _, ok := groups[c.Volume]; !ok {
			order = append(order, c.Volume)
		}
		groups[c.Volume] = append(groups[c.Volume], c)
	}
	if dropped > 0 {
		b.logger.Warn().Int("chunks", dropped).Msg("Skipping chunks without a volume")
	}
	if len(order) == 0 {
		return nil, ErrNoChunks
	}

	out := make([]IndexedVolume, 0, len(order))
	for _, volume := range order {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		items := groups[volume]
		startTime := time.Now()
		index, err := b.index(ctx, items)
		if err != nil {
			return out, fmt.Errorf("index %q: %w", volume, err)
		}
		if err := b.store.Save(volume, index, items); err != nil {
			return out, fmt.Errorf("save %q: %w", volume, err)
		}
		iv := IndexedVolume{Volume: volume, Dir: indexstore.SanitizeName(volume), Chunks: len(items)}
		out = append(out, iv)

		b.logger.Info().
			Str("volume", volume).
			Str("dir", iv.Dir).
			Int("chunks", iv.Chunks).
			Dur("duration", time.Since(startTime)).
			Msg("Indexed volume")
	}
	return out, nil
}

func (b *Builder) index(ctx context.Context, items []domain.Chunk) (*vectorindex.FlatL2, error) {
	texts := make([]string, len(items))
	for i, c := range items {
		texts[i] = c.Text
	}
	vecs, err := b.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(texts))
	}
	index, err := vectorindex.NewFlatL2(len(vecs[0]))
	if err != nil {
		return nil, err
	}
	if err := index.Add(vecs); err != nil {
		return nil, err
	}
	return index, nil
}
