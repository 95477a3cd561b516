package service

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"bookrag/internal/chunker"
	"bookrag/internal/config"
	"bookrag/internal/domain"
	"bookrag/internal/embedding/hashing"
	"bookrag/internal/indexstore"
	"bookrag/internal/retrieval"
	"bookrag/internal/structure"
)

type brokenEmbedder struct {
	vecs [][]float32
	err  error
}

func (b *brokenEmbedder) Name() string   { return "broken" }
func (b *brokenEmbedder) Dimension() int { return 2 }
func (b *brokenEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return b.vecs, b.err
}

func TestBuild_GroupsByVolumeAndRoundTrips(t *testing.T) {
	dir := t.TempDir()
	store := indexstore.New(dir)
	emb := hashing.NewEmbedder(64)
	b := NewBuilder(emb, store, arbor.NewLogger())

	chunks := []domain.Chunk{
		{Volume: "Book Two", Chapter: "CHAPTER ONE", Text: "Dobby the house-elf warns Harry."},
		{Volume: "Book One", Chapter: "CHAPTER ONE", Text: "The boy who lived."},
		{Volume: "Book Two", Chapter: "CHAPTER TWO", Text: "The flying car crashes into the willow."},
		{Volume: "", Chapter: "", Text: "front matter"},
	}
	built, err := b.Build(context.Background(), chunks)
	require.NoError(t, err)
	assert.Equal(t, []IndexedVolume{
		{Volume: "Book Two", Dir: "book_two", Chunks: 2},
		{Volume: "Book One", Dir: "book_one", Chunks: 1},
	}, built)

	vol, err := store.Load("book_two")
	require.NoError(t, err)
	assert.Equal(t, 2, vol.Index.Len())
	assert.Equal(t, chunks[:1], vol.Chunks[:1])
	assert.Equal(t, chunks[2], vol.Chunks[1])

	r := retrieval.NewRetriever(emb, store, arbor.NewLogger())
	got, err := r.Retrieve(context.Background(), "The flying car crashes into the willow.", 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// book_one sorts before book_two.
	assert.Equal(t, "The boy who lived.", got[0].Text)
	assert.Equal(t, "The flying car crashes into the willow.", got[1].Text)
}

func TestBuild_RerunOverwrites(t *testing.T) {
	dir := t.TempDir()
	store := indexstore.New(dir)
	b := NewBuilder(hashing.NewEmbedder(16), store, arbor.NewLogger())

	_, err := b.Build(context.Background(), []domain.Chunk{
		{Volume: "V", Text: "one"}, {Volume: "V", Text: "two"},
	})
	require.NoError(t, err)
	_, err = b.Build(context.Background(), []domain.Chunk{{Volume: "V", Text: "three"}})
	require.NoError(t, err)

	vol, err := store.Load("v")
	require.NoError(t, err)
	assert.Equal(t, 1, vol.Index.Len())
	assert.Equal(t, "three", vol.Chunks[0].Text)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestBuild_Errors(t *testing.T) {
	store := indexstore.New(t.TempDir())
	ctx := context.Background()
	chunks := []domain.Chunk{{Volume: "V", Text: "a"}, {Volume: "V", Text: "b"}}

	_, err := NewBuilder(hashing.NewEmbedder(8), store, arbor.NewLogger()).Build(ctx, nil)
	assert.ErrorIs(t, err, ErrNoChunks)

	boom := errors.New("boom")
	_, err = NewBuilder(&brokenEmbedder{err: boom}, store, arbor.NewLogger()).Build(ctx, chunks)
	assert.ErrorIs(t, err, boom)

	_, err = NewBuilder(&brokenEmbedder{vecs: [][]float32{{1, 2}}}, store, arbor.NewLogger()).Build(ctx, chunks)
	assert.ErrorContains(t, err, "1 vectors for 2 texts")

	_, err = NewBuilder(&brokenEmbedder{vecs: [][]float32{{1, 2}, {1, 2, 3}}}, store, arbor.NewLogger()).Build(ctx, chunks)
	assert.ErrorContains(t, err, "dimension mismatch")
}

func TestBuildPages(t *testing.T) {
	dir := t.TempDir()
	store := indexstore.New(dir)
	b := NewBuilder(hashing.NewEmbedder(32), store, arbor.NewLogger())

	pages := []domain.Page{
		{Number: 1, Text: "CHAPTER ONE\nThe first page."},
		{Number: 2, Text: "Still the first chapter."},
		{Number: 3, Text: "CHAPTER ONE\nAnother book begins."},
	}
	assigner := structure.NewAssigner([]config.VolumeRange{
		{Name: "First", FirstPage: 1, LastPage: 2},
		{Name: "Second", FirstPage: 3, LastPage: 3},
	})
	ch := chunker.New(chunker.Options{Unit: chunker.UnitSentence, MaxSize: 200}, nil)

	built, err := b.BuildPages(context.Background(), pages, assigner, ch)
	require.NoError(t, err)
	require.Len(t, built, 2)
	assert.Equal(t, "First", built[0].Volume)
	assert.Equal(t, "Second", built[1].Volume)

	vols, err := store.Volumes()
	require.NoError(t, err)
	assert.Len(t, vols, 2)
}
