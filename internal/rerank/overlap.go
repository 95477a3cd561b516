package rerank

import (
	"context"
	"math"
	"regexp"
	"strings"
)

var unicodeWordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// OverlapScorer scores texts by the Ochiai coefficient between the question's
// and the text's word sets. It needs no model and is the offline fallback.
type OverlapScorer struct{}

func NewOverlapScorer() *OverlapScorer { return &OverlapScorer{} }

func (OverlapScorer) Score(_ context.Context, question string, texts []string) ([]float64, error) {
	qset := toTokenSet(question)
	scores := make([]float64, len(texts))
	for i, t := range texts {
		scores[i] = overlapOchiai(qset, t)
	}
	return scores, nil
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// overlapOchiai computes |A∩B| / sqrt(|A||B|).
func overlapOchiai(qset map[string]struct{}, text string) float64 {
	tset := toTokenSet(text)
	if len(qset) == 0 || len(tset) == 0 {
		return 0
	}
	inter := 0
	for t := range tset {
		if _, ok := qset[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(qset))*float64(len(tset)))
}
