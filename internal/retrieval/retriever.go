// Package retrieval implements balanced per-volume retrieval and the lexical
// keyword filter applied to its results.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"bookrag/internal/domain"
	"bookrag/internal/indexstore"
)

// Retriever searches every volume index independently and concatenates the
// per-volume results. There is no global re-ranking across volumes, so each
// volume contributes up to k chunks however similar the others are.
type Retriever struct {
	embedder domain.Embedder
	store    *indexstore.Store
	logger   arbor.ILogger

	mu    sync.Mutex
	cache map[string]*indexstore.Volume
}

func NewRetriever(embedder domain.Embedder, store *indexstore.Store, logger arbor.ILogger) *Retriever {
	return &Retriever{
		embedder: embedder,
		store:    store,
		logger:   logger,
		cache:    make(map[string]*indexstore.Volume),
	}
}

// Retrieve embeds the question once and returns up to kPerVolume chunks from
// each readable volume, volume blocks in listing order and each block by
// ascending distance. Unreadable volumes are skipped.
func (r *Retriever) Retrieve(ctx context.Context, question string, kPerVolume int) ([]domain.Chunk, error) {
	vecs, err := r.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vecs) != 1 {
		return nil, errors.New("embed question: no vector returned")
	}
	query := vecs[0]

	dirs, err := r.store.Volumes()
	if err != nil {
		r.logger.Warn().Err(err).Str("dir", r.store.Dir()).Msg("Cannot list volume indexes")
		return nil, nil
	}

	start := time.Now()
	var out []domain.Chunk
	for _, dir := range dirs {
		vol, err := r.volume(dir)
		if err != nil {
			r.logger.Warn().Err(err).Str("volume", dir).Msg("Skipping unreadable volume index")
			continue
		}
		ids, _, err := vol.Index.Search(query, kPerVolume)
		if err != nil {
			r.logger.Warn().Err(err).Str("volume", dir).Msg("Skipping volume after search failure")
			continue
		}
		for _, id := range ids {
			if id < 0 || id >= len(vol.Chunks) {
				continue
			}
			out = append(out, vol.Chunks[id])
		}
	}
	r.logger.Debug().
		Int("volumes", len(dirs)).
		Int("chunks", len(out)).
		Dur("duration", time.Since(start)).
		Msg("Retrieval completed")
	return out, nil
}

// Preload reads every volume into the cache and returns how many loaded.
func (r *Retriever) Preload() int {
	dirs, err := r.store.Volumes()
	if err != nil {
		return 0
	}
	n := 0
	for _, dir := range dirs {
		if _, err := r.volume(dir); err == nil {
			n++
		}
	}
	return n
}

// volume returns a cached volume, loading it on first use. Failures are not
// cached so a volume rebuilt later is picked up.
func (r *Retriever) volume(dir string) (*indexstore.Volume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.cache[dir]; ok {
		return v, nil
	}
	v, err := r.store.Load(dir)
	if err != nil {
		return nil, err
	}
	r.cache[dir] = v
	return v, nil
}
