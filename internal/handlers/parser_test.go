package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWithGemini_HonorsCancelledContext(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseWithGemini(ctx, "State University of Sports Science certifies Jane Doe")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseWithGemini_RequiresAPIKeyAndText(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	_, err := ParseWithGemini(context.Background(), "some text")
	assert.Error(t, err)

	t.Setenv("GEMINI_API_KEY", "test-key")
	_, err = ParseWithGemini(context.Background(), "   ")
	assert.Error(t, err)
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences(`{"a":1}`))
}

func TestExtractFirstJSON(t *testing.T) {
	got, ok := extractFirstJSON(`noise {"holder_name":"Jane Doe"} trailing`)
	assert.True(t, ok)
	assert.Equal(t, `{"holder_name":"Jane Doe"}`, got)

	_, ok = extractFirstJSON("no json here")
	assert.False(t, ok)
}
