package domain

import "context"

// Page is one page of the source book as extracted by the loader.
// Number is the 1-based page number in the source numbering.
type Page struct {
	Number int
	Text   string
}

// StructuredPage is a Page tagged with its volume and the most recent chapter
// heading. An empty Volume or Chapter means the page has none.
type StructuredPage struct {
	Volume  string
	Chapter string
	Number  int
	Text    string
}

// Chunk is the unit of retrieval. A chunk never spans two (volume, chapter) pairs.
type Chunk struct {
	Volume  string `json:"volume"`
	Chapter string `json:"chapter"`
	Text    string `json:"text"`
}

// Source identifies where a chunk came from.
type Source struct {
	Volume  string
	Chapter string
}

// Source returns the (volume, chapter) pair of the chunk.
func (c Chunk) Source() Source { return Source{Volume: c.Volume, Chapter: c.Chapter} }

// Embedder converts texts into fixed-dimension vectors, one per input, in order.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Segmenter splits text into sentences.
type Segmenter interface {
	Split(text string) []string
}

// Scorer assigns a relevance score to every text for the given question.
// Higher is more relevant.
type Scorer interface {
	Score(ctx context.Context, question string, texts []string) ([]float64, error)
}

// Generator produces an answer for a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
