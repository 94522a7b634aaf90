package rag

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps chunks in process memory. Contents are lost on exit.
type MemoryStore struct {
	embeddings EmbeddingsClient

	mu      sync.RWMutex
	chunks  []DocChunk
	vectors [][]float32
}

func NewMemoryStore(embeddings EmbeddingsClient) *MemoryStore {
	return &MemoryStore{embeddings: embeddings}
}

func (s *MemoryStore) Add(ctx context.Context, chunks []DocChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	vecs, err := embedAll(ctx, s.embeddings, chunkTexts(chunks))
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range chunks {
		c.ID = uuid.NewString()
		c.CreatedAt = now
		s.chunks = append(s.chunks, c)
		s.vectors = append(s.vectors, vecs[i])
	}
	return nil
}

func (s *MemoryStore) Search(ctx context.Context, query string, k int) ([]DocChunk, error) {
	vec, err := s.embeddings.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	scores := make([]float64, len(s.vectors))
	for i, v := range s.vectors {
		scores[i] = cosine(vec, v)
	}
	idx := topK(scores, k)
	out := make([]DocChunk, len(idx))
	for i, j := range idx {
		out[i] = s.chunks[j]
	}
	return out, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

var _ VectorStore = (*MemoryStore)(nil)
