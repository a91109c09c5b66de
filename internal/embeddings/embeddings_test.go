package embeddings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIValidation(t *testing.T) {
	t.Run("missing model", func(t *testing.T) {
		_, err := NewOpenAI(Config{Dimensions: 384})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "model required")
	})

	t.Run("bad dimensions", func(t *testing.T) {
		_, err := NewOpenAI(Config{Model: "text-embedding-3-small"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dimensions")
	})

	t.Run("valid config", func(t *testing.T) {
		e, err := NewOpenAI(Config{Model: "text-embedding-3-small", Dimensions: 1536})
		require.NoError(t, err)
		assert.Equal(t, 1536, e.Dimensions())
	})
}

func TestEmbedDocumentsEmptyInput(t *testing.T) {
	e, err := NewOpenAI(Config{Model: "text-embedding-3-small", Dimensions: 1536})
	require.NoError(t, err)

	_, err = e.EmbedDocuments(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}
