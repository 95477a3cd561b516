package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"bookrag/internal/domain"
)

func TestBuild(t *testing.T) {
	chunks := []domain.Chunk{
		{Volume: "Book One", Chapter: "CHAPTER ONE", Text: "first text"},
		{Volume: "Book Two", Chapter: "CHAPTER NINE", Text: "second text"},
	}
	got := Build("Who is Dobby?", chunks)

	assert.Contains(t, got, "[1] Book One | CHAPTER ONE\nfirst text\n\n")
	assert.Contains(t, got, "[2] Book Two | CHAPTER NINE\nsecond text\n\n")
	assert.Contains(t, got, "Use ONLY the provided excerpts.")
	assert.Contains(t, got, `"Not found in the book."`)
	assert.Contains(t, got, "Question:\nWho is Dobby?\n")
	assert.True(t, strings.HasSuffix(got, "Answer:\n"))
	assert.Less(t, strings.Index(got, "[1]"), strings.Index(got, "[2]"))
	assert.Less(t, strings.Index(got, "Question:"), strings.Index(got, "Context:"))
}

func TestBuild_Deterministic(t *testing.T) {
	chunks := []domain.Chunk{{Volume: "V", Chapter: "C", Text: "t"}}
	assert.Equal(t, Build("q", chunks), Build("q", chunks))
}

func TestBuild_NoChunks(t *testing.T) {
	got := Build("q", nil)
	assert.NotContains(t, got, "[1]")
	assert.Contains(t, got, "Context:\n\n\nAnswer:\n")
}

func TestSources(t *testing.T) {
	chunks := []domain.Chunk{
		{Volume: "B", Chapter: "2", Text: "x"},
		{Volume: "A", Chapter: "1", Text: "y"},
		{Volume: "B", Chapter: "2", Text: "z"},
		{Volume: "B", Chapter: "3", Text: "w"},
	}
	assert.Equal(t, []domain.Source{
		{Volume: "B", Chapter: "2"},
		{Volume: "A", Chapter: "1"},
		{Volume: "B", Chapter: "3"},
	}, Sources(chunks))
	assert.Empty(t, Sources(nil))
}
