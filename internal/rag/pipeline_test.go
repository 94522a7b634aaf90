package rag

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

type staticRetriever struct {
	chunks []DocChunk
	err    error
	calls  int
}

func (r *staticRetriever) Retrieve(ctx context.Context, query string) ([]DocChunk, error) {
	r.calls++
	return r.chunks, r.err
}

func TestPipeline_Answer(t *testing.T) {
	retriever := &staticRetriever{chunks: []DocChunk{
		{Content: "most similar", Source: "a.pdf", Page: 1},
		{Content: "second", Source: "a.pdf", Page: 2},
	}}
	llm := &fakeLLM{reply: "  twenty days\n"}
	p := NewPipeline(retriever, llm)

	ans, err := p.Answer(context.Background(), "How many leave days?")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if ans.Text != "twenty days" {
		t.Errorf("Text = %q, want trimmed reply", ans.Text)
	}
	if ans.Elapsed < 0 {
		t.Errorf("Elapsed = %v, want >= 0", ans.Elapsed)
	}
	if len(llm.prompts) != 1 {
		t.Fatalf("generate calls = %d, want 1", len(llm.prompts))
	}
	if llm.temps[0] != 0.1 {
		t.Errorf("temperature = %v, want 0.1", llm.temps[0])
	}
	if !strings.Contains(llm.prompts[0], "most similar\n\nsecond") {
		t.Errorf("context order not preserved:\n%s", llm.prompts[0])
	}
	if !strings.Contains(llm.prompts[0], "How many leave days?") {
		t.Errorf("question missing from prompt")
	}
}

func TestPipeline_InvalidInputMakesNoCalls(t *testing.T) {
	for _, q := range []string{"", "   ", "\n\t"} {
		retriever := &staticRetriever{}
		llm := &fakeLLM{reply: "x"}
		p := NewPipeline(retriever, llm)

		_, err := p.Answer(context.Background(), q)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Answer(%q) err = %v, want ErrInvalidInput", q, err)
		}
		if retriever.calls != 0 || len(llm.prompts) != 0 {
			t.Errorf("Answer(%q) called collaborators: retrieve=%d generate=%d", q, retriever.calls, len(llm.prompts))
		}
	}
}

func TestPipeline_RetrievalFailure(t *testing.T) {
	llm := &fakeLLM{reply: "x"}
	p := NewPipeline(&staticRetriever{err: errBoom}, llm)

	_, err := p.Answer(context.Background(), "q")
	if !errors.Is(err, ErrGenerationFailed) || !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want ErrGenerationFailed wrapping boom", err)
	}
	if err.Error() != "boom" {
		t.Errorf("message = %q, want underlying text", err.Error())
	}
	if len(llm.prompts) != 0 {
		t.Errorf("generate called after retrieval failure")
	}
}

func TestPipeline_GenerationFailure(t *testing.T) {
	p := NewPipeline(&staticRetriever{}, &fakeLLM{err: errBoom})

	_, err := p.Answer(context.Background(), "q")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
}

func TestPipeline_OneSearchWithTopKThenOneGenerate(t *testing.T) {
	var calls []string
	store := &recordingStore{VectorStore: NewMemoryStore(&wordEmbedder{dim: 16}), calls: &calls}
	llm := &fakeLLM{reply: "ok", calls: &calls}
	p := NewPipeline(NewStoreRetriever(store, TopK), llm)

	if _, err := p.Answer(context.Background(), "anything"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if strings.Join(calls, ",") != "search,generate" {
		t.Errorf("calls = %v, want [search generate]", calls)
	}
	if len(store.searchKs) != 1 || store.searchKs[0] != 5 {
		t.Errorf("search k = %v, want [5]", store.searchKs)
	}
}

func TestPipelineHandle_Replace(t *testing.T) {
	first := NewPipeline(&staticRetriever{}, &fakeLLM{})
	h := NewPipelineHandle(first)
	if got := h.Load().Version(); got != 1 {
		t.Fatalf("initial version = %d, want 1", got)
	}

	second := NewPipeline(&staticRetriever{}, &fakeLLM{})
	if v := h.Replace(second); v != 2 {
		t.Errorf("Replace returned %d, want 2", v)
	}
	if h.Load().retriever != second.retriever {
		t.Errorf("Load did not return the replacement")
	}
	if second.Version() != 0 {
		t.Errorf("Replace mutated its argument")
	}
}

func TestPipelineHandle_ConcurrentReplace(t *testing.T) {
	h := NewPipelineHandle(NewPipeline(&staticRetriever{}, &fakeLLM{}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			h.Replace(NewPipeline(&staticRetriever{}, &fakeLLM{}))
		}()
		go func() {
			defer wg.Done()
			if h.Load() == nil {
				t.Error("Load returned nil")
			}
		}()
	}
	wg.Wait()

	if got := h.Load().Version(); got != 51 {
		t.Errorf("version = %d, want 51", got)
	}
}
