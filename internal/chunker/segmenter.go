package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"

	"bookrag/internal/domain"
)

// RegexSegmenter splits on terminal punctuation. Trailing text without
// punctuation is kept as a final sentence.
type RegexSegmenter struct {
	splitter *regexp.Regexp
}

func NewRegexSegmenter() *RegexSegmenter {
	return &RegexSegmenter{
		splitter: regexp.MustCompile(`[^.!?]+(?:[.!?]+["'”’)\]]*|$)`),
	}
}

func (s *RegexSegmenter) Split(text string) []string {
	return clean(s.splitter.FindAllString(text, -1))
}

// PunktSegmenter uses the pre-trained English punkt model, which knows about
// abbreviations such as "Mr." and "Mrs." that the regex splitter breaks on.
type PunktSegmenter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

func NewPunktSegmenter() (*PunktSegmenter, error) {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load punkt model: %w", err)
	}
	return &PunktSegmenter{tokenizer: tok}, nil
}

func (s *PunktSegmenter) Split(text string) []string {
	parts := s.tokenizer.Tokenize(text)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, p.Text)
	}
	return clean(out)
}

// NewSegmenter returns the segmenter registered under name; empty means punkt.
func NewSegmenter(name string) (domain.Segmenter, error) {
	switch name {
	case "regex":
		return NewRegexSegmenter(), nil
	case "punkt", "":
		seg, err := NewPunktSegmenter()
		if err != nil {
			return nil, err
		}
		return seg, nil
	default:
		return nil, fmt.Errorf("unknown segmenter: %s", name)
	}
}

func clean(parts []string) []string {
	out := parts[:0]
	for _, s := range parts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
