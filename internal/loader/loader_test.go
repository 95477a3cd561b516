package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookrag/internal/domain"
)

func TestLoadText(t *testing.T) {
	pages, err := LoadText(strings.NewReader("CHAPTER ONE\nHello.\fSecond page.\f\fLast."))
	require.NoError(t, err)
	assert.Equal(t, []domain.Page{
		{Number: 1, Text: "CHAPTER ONE\nHello."},
		{Number: 2, Text: "Second page."},
		{Number: 3, Text: ""},
		{Number: 4, Text: "Last."},
	}, pages)
}

func TestLoadText_Empty(t *testing.T) {
	pages, err := LoadText(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestLoad_TextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.TXT")
	require.NoError(t, os.WriteFile(path, []byte("a\fb"), 0o644))

	pages, err := Load(path)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "b", pages[1].Text)
}

func TestLoad_MissingPDF(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}
