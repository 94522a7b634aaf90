package rag

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]DocChunk, error)
}

// StoreRetriever binds a vector store to a fixed k.
type StoreRetriever struct {
	store VectorStore
	k     int
}

func NewStoreRetriever(store VectorStore, k int) *StoreRetriever {
	return &StoreRetriever{store: store, k: k}
}

func (r *StoreRetriever) Retrieve(ctx context.Context, query string) ([]DocChunk, error) {
	return r.store.Search(ctx, query, r.k)
}

// Pipeline answers one question: retrieve, render the prompt, generate.
// A Pipeline is immutable once built.
type Pipeline struct {
	retriever Retriever
	llm       LLMClient
	version   uint64
}

func NewPipeline(retriever Retriever, llm LLMClient) *Pipeline {
	return &Pipeline{retriever: retriever, llm: llm}
}

// Version is the ingestion generation the pipeline was installed for.
func (p *Pipeline) Version() uint64 { return p.version }

func (p *Pipeline) Answer(ctx context.Context, question string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is empty", ErrInvalidInput)
	}

	start := time.Now()

	chunks, err := p.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, wrap(ErrGenerationFailed, err)
	}

	prompt := RenderPrompt(buildContext(chunks), question)

	text, err := p.llm.Generate(ctx, prompt, Temperature)
	if err != nil {
		return nil, wrap(ErrGenerationFailed, err)
	}

	return &Answer{
		Text:    strings.TrimSpace(text),
		Elapsed: time.Since(start),
	}, nil
}

// PipelineHandle holds the current pipeline. Readers get either the previous
// or the new pipeline; an in-flight Answer may finish on a stale one.
type PipelineHandle struct {
	current atomic.Pointer[Pipeline]
}

func NewPipelineHandle(p *Pipeline) *PipelineHandle {
	h := &PipelineHandle{}
	h.Replace(p)
	return h
}

func (h *PipelineHandle) Load() *Pipeline {
	return h.current.Load()
}

// Replace installs a copy of p stamped with the next version and returns
// that version. Versions of installed pipelines only grow.
func (h *PipelineHandle) Replace(p *Pipeline) uint64 {
	next := *p
	for {
		old := h.current.Load()
		next.version = 1
		if old != nil {
			next.version = old.version + 1
		}
		if h.current.CompareAndSwap(old, &next) {
			return next.version
		}
	}
}
