// Package prompt turns retrieved chunks and a question into the LLM prompt.
package prompt

import (
	"fmt"
	"strings"

	"bookrag/internal/domain"
)

// NotFound is the reply the model is told to give when the excerpts do not
// support an answer.
const NotFound = "Not found in the book."

const instructions = `You are a careful literary question-answering assistant for the Harry Potter books.

Rules:
- Use ONLY the provided excerpts.
- You MAY combine information from multiple excerpts.
- You MAY answer reveal-based facts if the excerpts clearly imply them
  (for example, a mystery later revealed in the story).
- Do NOT use outside knowledge.
- Do NOT guess.
- If the answer cannot be reasonably inferred from the excerpts, say:
  "` + NotFound + `"`

// Build numbers the chunks from 1 in the given order, tags each with its
// volume and chapter, and wraps them with the fixed instructions and the question.
func Build(question string, chunks []domain.Chunk) string {
	var context strings.Builder
	for i, c := range chunks {
		fmt.Fprintf(&context, "[%d] %s | %s\n%s\n\n", i+1, c.Volume, c.Chapter, c.Text)
	}

	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n\nQuestion:\n")
	b.WriteString(question)
	b.WriteString("\n\nContext:\n")
	b.WriteString(context.String())
	b.WriteString("\n\nAnswer:\n")
	return b.String()
}

// Sources returns the distinct (volume, chapter) pairs of chunks in first-seen order.
func Sources(chunks []domain.Chunk) []domain.Source {
	seen := make(map[domain.Source]struct{}, len(chunks))
	var out []domain.Source
	for _, c := range chunks {
		src := c.Source()
		if _, ok := seen[src]; ok {
			continue
		}
		seen[src] = struct{}{}
		out = append(out, src)
	}
	return out
}
