package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"google.golang.org/genai"
)

type fakeAPI struct {
	calls  int
	model  string
	prompt string
	temp   float32
	reply  *genai.GenerateContentResponse
	err    error
}

func (f *fakeAPI) GenerateContent(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.prompt = contents[0].Parts[0].Text
	f.temp = *cfg.Temperature
	return f.reply, f.err
}

func reply(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: genai.RoleModel}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestGenerate(t *testing.T) {
	api := &fakeAPI{reply: reply("  Dobby is ", "a house-elf.\n")}
	g := newGemini(api, Config{}, arbor.NewLogger())

	answer, err := g.Generate(context.Background(), "Who is Dobby?")
	require.NoError(t, err)
	assert.Equal(t, "Dobby is a house-elf.", answer)
	assert.Equal(t, "gemini-2.5-flash", api.model)
	assert.Equal(t, "Who is Dobby?", api.prompt)
	assert.Equal(t, float32(0), api.temp)
	assert.Equal(t, "gemini-2.5-flash", g.Model())
}

func TestGenerate_ErrorIsNotRetried(t *testing.T) {
	boom := errors.New("quota exceeded")
	api := &fakeAPI{err: boom}
	g := newGemini(api, Config{Model: "m"}, arbor.NewLogger())

	_, err := g.Generate(context.Background(), "q")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, api.calls)
}

func TestGenerate_EmptyResponse(t *testing.T) {
	g := newGemini(&fakeAPI{reply: reply("   ")}, Config{}, arbor.NewLogger())
	_, err := g.Generate(context.Background(), "q")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	g = newGemini(&fakeAPI{}, Config{}, arbor.NewLogger())
	_, err = g.Generate(context.Background(), "q")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNewGemini_MissingKey(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "")
	_, err := NewGemini(context.Background(), Config{APIKeyEnv: "TEST_LLM_KEY"}, arbor.NewLogger())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
