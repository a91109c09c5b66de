// Package embeddings provides text embedding generation.
//
// The retrieval core consumes embeddings but does not produce them; this
// package supplies the external embed(text) -> vector function for the
// CLI, backed by any OpenAI-compatible endpoint.
package embeddings

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyInput indicates no texts were provided for embedding.
var ErrEmptyInput = errors.New("no texts provided for embedding")

// Embedder generates vector embeddings from text. Output length is fixed:
// every vector has exactly Dimensions() elements.
type Embedder interface {
	// EmbedQuery generates an embedding for a single query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedDocuments generates embeddings for multiple texts, one per input.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimensionality.
	Dimensions() int
}

// Config holds settings for the OpenAI-compatible embedding client.
type Config struct {
	// APIKey authenticates against the provider.
	APIKey string

	// BaseURL overrides the endpoint for OpenAI-compatible providers
	// (ollama, siliconflow, ...). Empty uses api.openai.com.
	BaseURL string

	// Model is the embedding model name.
	Model string

	// Dimensions is the requested output dimensionality. MUST match the
	// vector store's configured size.
	Dimensions int
}

type openAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
}

// NewOpenAI creates an Embedder backed by an OpenAI-compatible API.
func NewOpenAI(cfg Config) (Embedder, error) {
	if cfg.Model == "" {
		return nil, errors.New("embedding model required")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("embedding dimensions must be positive, got %d", cfg.Dimensions)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &openAIEmbedder{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

func (e *openAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *openAIEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: e.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		if len(data.Embedding) != e.dimensions {
			return nil, fmt.Errorf("provider returned %d-dimensional vector, expected %d", len(data.Embedding), e.dimensions)
		}
		vectors[i] = data.Embedding
	}
	return vectors, nil
}

func (e *openAIEmbedder) Dimensions() int {
	return e.dimensions
}
