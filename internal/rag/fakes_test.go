package rag

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
)

// wordEmbedder hashes lowercase words into a fixed number of buckets, so
// texts sharing words are similar.
type wordEmbedder struct {
	dim int
	err error
}

func (e *wordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	vec := make([]float32, e.dim)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,?!")
		h := fnv.New32a()
		h.Write([]byte(w))
		vec[h.Sum32()%uint32(e.dim)]++
	}
	return vec, nil
}

func (e *wordEmbedder) Dimensions() int { return e.dim }

type fakeLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
	temps   []float32
	calls   *[]string
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.temps = append(f.temps, temperature)
	if f.calls != nil {
		*f.calls = append(*f.calls, "generate")
	}
	return f.reply, f.err
}

func (f *fakeLLM) Provider() string { return "Fake AI" }
func (f *fakeLLM) Model() string    { return "fake-1" }

// recordingStore wraps a VectorStore and records calls.
type recordingStore struct {
	VectorStore
	searchKs []int
	added    [][]DocChunk
	calls    *[]string
	countErr error
}

func (s *recordingStore) Add(ctx context.Context, chunks []DocChunk) error {
	s.added = append(s.added, chunks)
	return s.VectorStore.Add(ctx, chunks)
}

func (s *recordingStore) Search(ctx context.Context, query string, k int) ([]DocChunk, error) {
	s.searchKs = append(s.searchKs, k)
	if s.calls != nil {
		*s.calls = append(*s.calls, "search")
	}
	return s.VectorStore.Search(ctx, query, k)
}

func (s *recordingStore) Count(ctx context.Context) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.VectorStore.Count(ctx)
}

type failingStore struct{ err error }

func (s failingStore) Add(context.Context, []DocChunk) error { return s.err }
func (s failingStore) Search(context.Context, string, int) ([]DocChunk, error) {
	return nil, s.err
}
func (s failingStore) Count(context.Context) (int, error) { return 0, s.err }

var errBoom = errors.New("boom")
