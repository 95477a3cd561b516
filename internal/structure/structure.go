// Package structure tags raw pages with their volume and chapter.
package structure

import (
	"strings"

	"bookrag/internal/config"
	"bookrag/internal/domain"
)

const chapterToken = "CHAPTER"

// VolumeTable maps closed page intervals to volume names.
type VolumeTable []config.VolumeRange

// Lookup returns the volume containing page, or "" if no interval contains it.
func (t VolumeTable) Lookup(page int) string {
	for _, r := range t {
		if page >= r.FirstPage && page <= r.LastPage {
			return r.Name
		}
	}
	return ""
}

// Assigner tags pages with structure information.
type Assigner struct {
	volumes VolumeTable
}

func NewAssigner(volumes []config.VolumeRange) *Assigner {
	return &Assigner{volumes: VolumeTable(volumes)}
}

// state is the accumulator threaded through the page fold.
type state struct {
	chapter string
}

// Assign tags every page in order. The chapter label is sticky: it is carried
// from the last heading seen until the next one, so pages must be given in
// reading order.
func (a *Assigner) Assign(pages []domain.Page) []domain.StructuredPage {
	out := make([]domain.StructuredPage, 0, len(pages))
	st := state{}
	for _, p := range pages {
		var sp domain.StructuredPage
		st, sp = a.step(st, p)
		out = append(out, sp)
	}
	return out
}

func (a *Assigner) step(st state, p domain.Page) (state, domain.StructuredPage) {
	if heading, ok := FindHeading(p.Text); ok {
		st.chapter = heading
	}
	return st, domain.StructuredPage{
		Volume:  a.volumes.Lookup(p.Number),
		Chapter: st.chapter,
		Number:  p.Number,
		Text:    p.Text,
	}
}

// FindHeading returns the first line of text that is a chapter heading, trimmed.
func FindHeading(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		if IsHeading(line) {
			return strings.TrimSpace(line), true
		}
	}
	return "", false
}

// IsHeading reports whether line starts with the chapter token, ignoring case
// and surrounding whitespace.
func IsHeading(line string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(line)), chapterToken)
}
