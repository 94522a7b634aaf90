package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*Service, *recordingStore, *fakeLLM) {
	t.Helper()
	store := &recordingStore{VectorStore: NewMemoryStore(&wordEmbedder{dim: 64})}
	llm := &fakeLLM{reply: "answer"}
	return NewService(store, llm, zap.NewNop()), store, llm
}

func TestService_IngestAssignsPagesAndSource(t *testing.T) {
	for _, n := range []int{1, 2, 7} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			svc, store, _ := newTestService(t)
			chunks := make([]string, n)
			for i := range chunks {
				chunks[i] = fmt.Sprintf("chunk number %d", i)
			}

			count, err := svc.Ingest(context.Background(), "handbook.pdf", chunks)
			if err != nil {
				t.Fatalf("Ingest: %v", err)
			}
			if count != n {
				t.Errorf("count = %d, want %d", count, n)
			}
			if len(store.added) != 1 {
				t.Fatalf("Add calls = %d, want 1", len(store.added))
			}
			for i, c := range store.added[0] {
				if c.Page != i+1 {
					t.Errorf("chunk %d page = %d, want %d", i, c.Page, i+1)
				}
				if c.Source != "handbook.pdf" {
					t.Errorf("chunk %d source = %q", i, c.Source)
				}
				if c.Content != chunks[i] {
					t.Errorf("chunk %d content = %q, want %q", i, c.Content, chunks[i])
				}
			}
		})
	}
}

func TestService_IngestEmptyIsNoOp(t *testing.T) {
	svc, store, _ := newTestService(t)
	before := svc.PipelineVersion()

	count, err := svc.Ingest(context.Background(), "empty.pdf", nil)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
	if len(store.added) != 0 {
		t.Errorf("store mutated on empty ingest")
	}
	if svc.PipelineVersion() != before {
		t.Errorf("pipeline replaced on empty ingest")
	}
}

func TestService_IngestRequiresDocumentName(t *testing.T) {
	svc, store, _ := newTestService(t)

	_, err := svc.Ingest(context.Background(), "  ", []string{"x"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if len(store.added) != 0 {
		t.Errorf("store mutated on invalid ingest")
	}
}

func TestService_IngestFailure(t *testing.T) {
	svc := NewService(failingStore{err: errBoom}, &fakeLLM{}, zap.NewNop())
	before := svc.PipelineVersion()

	_, err := svc.Ingest(context.Background(), "doc", []string{"x"})
	if !errors.Is(err, ErrIngestionFailed) || !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want ErrIngestionFailed wrapping boom", err)
	}
	if svc.PipelineVersion() != before {
		t.Errorf("pipeline replaced after failed ingest")
	}
}

func TestService_AskSeesIngestedChunks(t *testing.T) {
	svc, _, llm := newTestService(t)
	before := svc.PipelineVersion()

	if _, err := svc.Ingest(context.Background(), "policy.pdf", []string{"All employees get 20 days leave."}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if svc.PipelineVersion() != before+1 {
		t.Errorf("version = %d, want %d", svc.PipelineVersion(), before+1)
	}

	ans, err := svc.Ask(context.Background(), "How many leave days do employees get?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if ans.Text != "answer" {
		t.Errorf("Text = %q", ans.Text)
	}
	if !strings.Contains(llm.prompts[0], "All employees get 20 days leave.") {
		t.Errorf("ingested chunk missing from prompt:\n%s", llm.prompts[0])
	}
}

func TestService_AskReportsLanguage(t *testing.T) {
	svc, _, _ := newTestService(t)

	ans, err := svc.Ask(context.Background(),
		"Combien de jours de congés payés les employés de l'entreprise reçoivent-ils chaque année selon la politique interne de la société ?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if ans.Lang != "fr" {
		t.Errorf("Lang = %q, want fr", ans.Lang)
	}

	ans, err = svc.Ask(context.Background(), "42?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if ans.Lang != "" {
		t.Errorf("Lang = %q, want empty for an undetectable question", ans.Lang)
	}
}

func TestService_IngestKeepsBlankChunks(t *testing.T) {
	svc, store, _ := newTestService(t)

	count, err := svc.Ingest(context.Background(), "doc.pdf", []string{"page one", "   ", "page three"})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
	for i, c := range store.added[0] {
		if c.Page != i+1 {
			t.Errorf("chunk %d page = %d, want %d", i, c.Page, i+1)
		}
	}
	if n, _ := store.Count(context.Background()); n != 3 {
		t.Errorf("stored = %d, want 3", n)
	}
}

func TestService_AskEmpty(t *testing.T) {
	svc, store, llm := newTestService(t)

	for _, q := range []string{"", "   "} {
		if _, err := svc.Ask(context.Background(), q); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Ask(%q) err = %v, want ErrInvalidInput", q, err)
		}
	}
	if len(store.searchKs) != 0 || len(llm.prompts) != 0 {
		t.Errorf("collaborators called for empty questions")
	}
}

func TestService_Health(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.Ingest(context.Background(), "a", []string{"one", "two"}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	st := svc.Health(context.Background())
	if st.Err != nil {
		t.Fatalf("Err = %v", st.Err)
	}
	if st.DocumentCount != 2 {
		t.Errorf("DocumentCount = %d, want 2", st.DocumentCount)
	}
	if st.Provider != "Fake AI" || st.Model != "fake-1" {
		t.Errorf("provider/model = %q/%q", st.Provider, st.Model)
	}
}

func TestService_HealthDegraded(t *testing.T) {
	store := &recordingStore{VectorStore: NewMemoryStore(&wordEmbedder{dim: 8}), countErr: errBoom}
	svc := NewService(store, &fakeLLM{}, zap.NewNop())

	st := svc.Health(context.Background())
	if !errors.Is(st.Err, ErrHealthDegraded) {
		t.Fatalf("Err = %v, want ErrHealthDegraded", st.Err)
	}
	if st.Err.Error() != "boom" {
		t.Errorf("detail = %q, want underlying message", st.Err.Error())
	}
	if st.DocumentCount != 0 {
		t.Errorf("DocumentCount = %d, want 0", st.DocumentCount)
	}
}
