package rag

import "context"

// Temperature is the sampling temperature of every generation call.
const Temperature float32 = 0.1

// TopK is the number of chunks retrieved per question.
const TopK = 5

type EmbeddingsClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

type LLMClient interface {
	Generate(ctx context.Context, prompt string, temperature float32) (string, error)
	Provider() string
	Model() string
}

// VectorStore persists chunks with their embeddings. Implementations own the
// embedding step and the similarity metric.
type VectorStore interface {
	Add(ctx context.Context, chunks []DocChunk) error
	Search(ctx context.Context, query string, k int) ([]DocChunk, error)
	Count(ctx context.Context) (int, error)
}
