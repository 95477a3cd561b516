package hashing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func norm(v []float32) float64 {
	s := 0.0
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

func TestEmbed_FixedDimensionAndOrder(t *testing.T) {
	e := NewEmbedder(64)
	texts := []string{"Horcrux and soul", "Quidditch match", "horcrux SOUL"}

	vecs, err := e.Embed(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	for _, v := range vecs {
		assert.Len(t, v, 64)
		assert.InDelta(t, 1.0, norm(v), 1e-5)
	}
	// Case-insensitive tokens map to the same vector.
	assert.Equal(t, vecs[0], vecs[2])
	assert.NotEqual(t, vecs[0], vecs[1])
}

func TestEmbed_StopwordsOnlyGivesZeroVector(t *testing.T) {
	e := NewEmbedder(16)
	vecs, err := e.Embed(context.Background(), []string{"the and of", ""})
	require.NoError(t, err)
	for _, v := range vecs {
		assert.Equal(t, make([]float32, 16), v)
	}
}

func TestEmbed_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEmbedder(8).Embed(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewEmbedder_DefaultDimension(t *testing.T) {
	e := NewEmbedder(0)
	assert.Equal(t, defaultDimension, e.Dimension())
	assert.Equal(t, "hashing", e.Name())
}
