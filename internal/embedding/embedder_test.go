package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"bookrag/internal/config"
	"bookrag/internal/embedding/gemini"
)

func TestNew(t *testing.T) {
	ctx := context.Background()
	logger := arbor.NewLogger()

	emb, err := New(ctx, config.EmbedderConfig{Type: "hashing", Dimension: 32}, logger)
	require.NoError(t, err)
	assert.Equal(t, "hashing", emb.Name())
	assert.Equal(t, 32, emb.Dimension())

	_, err = New(ctx, config.EmbedderConfig{Type: "openai"}, logger)
	assert.ErrorContains(t, err, "config missing")

	t.Setenv("TEST_MISSING_KEY", "")
	_, err = New(ctx, config.EmbedderConfig{Type: "gemini", Gemini: &config.GeminiEmbedderConfig{APIKeyEnv: "TEST_MISSING_KEY"}}, logger)
	assert.ErrorIs(t, err, gemini.ErrMissingAPIKey)

	_, err = New(ctx, config.EmbedderConfig{Type: "word2vec"}, logger)
	assert.ErrorContains(t, err, "unknown embedder")
}
