// Package chunker splits chapter runs of structured pages into overlapping chunks.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"bookrag/internal/domain"
	"bookrag/internal/structure"
)

// Unit selects how a chapter run is measured and split.
type Unit string

const (
	UnitCharacter Unit = "character"
	UnitSentence  Unit = "sentence"
)

const defaultMaxSize = 800

// ParseUnit maps a config value to a Unit; empty means sentence.
func ParseUnit(s string) (Unit, error) {
	switch Unit(strings.ToLower(strings.TrimSpace(s))) {
	case UnitSentence, "":
		return UnitSentence, nil
	case UnitCharacter, "char":
		return UnitCharacter, nil
	default:
		return "", fmt.Errorf("unknown chunk unit: %s", s)
	}
}

// Options configures chunking. MaxSize is measured in characters for both
// units; Overlap counts units (characters or sentences).
type Options struct {
	Unit          Unit
	MaxSize       int
	Overlap       int
	StripHeadings bool
}

// Chunker splits structured pages into overlapping chunks that never cross a
// (volume, chapter) boundary.
type Chunker struct {
	opts      Options
	segmenter domain.Segmenter
}

func New(opts Options, segmenter domain.Segmenter) *Chunker {
	if opts.Unit == "" {
		opts.Unit = UnitSentence
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = defaultMaxSize
	}
	if opts.Overlap < 0 {
		opts.Overlap = 0
	}
	if opts.Unit == UnitCharacter && opts.Overlap >= opts.MaxSize {
		opts.Overlap = opts.MaxSize - 1
	}
	if segmenter == nil {
		segmenter = NewRegexSegmenter()
	}
	return &Chunker{opts: opts, segmenter: segmenter}
}

// Options returns the normalised options in effect.
func (c *Chunker) Options() Options { return c.opts }

// Chunk groups consecutive pages sharing a (volume, chapter) tag into runs and
// splits every run. Pages without a volume or chapter are skipped.
func (c *Chunker) Chunk(pages []domain.StructuredPage) []domain.Chunk {
	var (
		chunks []domain.Chunk
		buf    strings.Builder
		tag    domain.Source
		open   bool
	)
	flush := func() {
		if open {
			chunks = append(chunks, c.split(tag, buf.String())...)
		}
		buf.Reset()
	}
	for _, p := range pages {
		if p.Volume == "" || p.Chapter == "" {
			continue
		}
		next := domain.Source{Volume: p.Volume, Chapter: p.Chapter}
		if open && next != tag {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(p.Text)
		tag = next
		open = true
	}
	flush()
	return chunks
}

func (c *Chunker) split(tag domain.Source, text string) []domain.Chunk {
	if c.opts.StripHeadings {
		text = stripHeadings(text)
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var parts []string
	switch c.opts.Unit {
	case UnitCharacter:
		parts = c.characterWindows(text)
	default:
		parts = c.sentenceWindows(c.segmenter.Split(text))
	}
	chunks := make([]domain.Chunk, 0, len(parts))
	for _, p := range parts {
		chunks = append(chunks, domain.Chunk{Volume: tag.Volume, Chapter: tag.Chapter, Text: p})
	}
	return chunks
}

func (c *Chunker) characterWindows(text string) []string {
	runes := []rune(text)
	step := c.opts.MaxSize - c.opts.Overlap
	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + c.opts.MaxSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}

// sentenceWindows packs sentences greedily. When the next sentence would push
// the buffer past MaxSize the buffer is emitted and the next one is seeded with
// its last Overlap sentences before the incoming sentence is appended. MaxSize
// is a soft ceiling: a chunk may exceed it when it holds a single long sentence
// or a carried seed plus the one sentence that triggered the flush.
func (c *Chunker) sentenceWindows(sentences []string) []string {
	var (
		out  []string
		buf  []string
		size int
	)
	for _, s := range sentences {
		n := utf8.RuneCountInString(s)
		if len(buf) > 0 && size+1+n > c.opts.MaxSize {
			out = append(out, strings.Join(buf, " "))
			buf = tail(buf, c.opts.Overlap)
			size = joinedLen(buf)
		}
		if len(buf) > 0 {
			size++
		}
		buf = append(buf, s)
		size += n
	}
	if len(buf) > 0 {
		out = append(out, strings.Join(buf, " "))
	}
	return out
}

func tail(buf []string, n int) []string {
	if n > len(buf) {
		n = len(buf)
	}
	seed := make([]string, n)
	copy(seed, buf[len(buf)-n:])
	return seed
}

func joinedLen(parts []string) int {
	if len(parts) == 0 {
		return 0
	}
	n := len(parts) - 1
	for _, p := range parts {
		n += utf8.RuneCountInString(p)
	}
	return n
}

// stripHeadings drops chapter heading lines and collapses whitespace runs.
func stripHeadings(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if structure.IsHeading(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(strings.Fields(strings.Join(kept, " ")), " ")
}
