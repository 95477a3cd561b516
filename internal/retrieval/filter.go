package retrieval

import (
	"strings"

	"bookrag/internal/domain"
)

// KeywordFilter narrows chunks to those sharing a domain keyword with the question.
type KeywordFilter struct {
	keywords []string
}

func NewKeywordFilter(keywords []string) *KeywordFilter {
	kw := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			kw = append(kw, k)
		}
	}
	return &KeywordFilter{keywords: kw}
}

// Filter keeps a chunk when some keyword occurs in both the question and the
// chunk text, case-insensitively. If nothing is kept, including when the
// question mentions no keyword, the input is returned unchanged.
func (f *KeywordFilter) Filter(question string, chunks []domain.Chunk) []domain.Chunk {
	q := strings.ToLower(question)
	var active []string
	for _, k := range f.keywords {
		if strings.Contains(q, k) {
			active = append(active, k)
		}
	}
	if len(active) == 0 {
		return chunks
	}
	var kept []domain.Chunk
	for _, c := range chunks {
		text := strings.ToLower(c.Text)
		for _, k := range active {
			if strings.Contains(text, k) {
				kept = append(kept, c)
				break
			}
		}
	}
	if len(kept) == 0 {
		return chunks
	}
	return kept
}
