package embedding

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is the embedding model used for both records and queries.
// The cache manifest records the model name; a change forces a rebuild.
const DefaultModel = "text-embedding-004"

// Embedder produces embedding vectors for text. Records and queries must be
// embedded with the same model for the similarity scores to be meaningful.
type Embedder interface {
	// EmbedTexts returns one vector per input text, in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedQuery returns the vector for a single query string.
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
	// Model returns the embedding model identifier.
	Model() string
}

// GeminiEmbedder implements Embedder against the Gemini embedding API.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

// NewGeminiEmbedder creates a Gemini-backed embedder.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiEmbedder{client: client, model: model}, nil
}

// EmbedTexts embeds a batch of texts with a single API call.
func (e *GeminiEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	em := e.client.EmbeddingModel(e.model)

	batch := em.NewBatch()
	for _, t := range texts {
		batch = batch.AddContent(genai.Text(t))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("batch embed failed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("batch embed returned %d vectors for %d texts", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("batch embed returned empty vector at index %d", i)
		}
		vectors[i] = emb.Values
	}

	return vectors, nil
}

// EmbedQuery embeds a single query string.
func (e *GeminiEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	em := e.client.EmbeddingModel(e.model)

	resp, err := em.EmbedContent(ctx, genai.Text(query))
	if err != nil {
		return nil, fmt.Errorf("query embed failed: %w", err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("query embed returned an empty vector")
	}

	return resp.Embedding.Values, nil
}

// Model returns the embedding model identifier.
func (e *GeminiEmbedder) Model() string {
	return e.model
}

// Close releases the underlying API client.
func (e *GeminiEmbedder) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}
