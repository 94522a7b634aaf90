package rag

import (
	"context"
	"fmt"
	"strings"

	wl "github.com/abadojack/whatlanggo"
	"go.uber.org/zap"
)

type Service struct {
	store     VectorStore
	llm       LLMClient
	pipelines *PipelineHandle
	logger    *zap.Logger
}

func NewService(store VectorStore, llm LLMClient, logger *zap.Logger) *Service {
	s := &Service{
		store:  store,
		llm:    llm,
		logger: logger,
	}
	s.pipelines = NewPipelineHandle(s.newPipeline())
	return s
}

func (s *Service) newPipeline() *Pipeline {
	return NewPipeline(NewStoreRetriever(s.store, TopK), s.llm)
}

// PipelineVersion reports the version of the currently installed pipeline.
func (s *Service) PipelineVersion() uint64 {
	return s.pipelines.Load().Version()
}

func (s *Service) Ask(ctx context.Context, question string) (*Answer, error) {
	p := s.pipelines.Load()
	lang := detectLang(question)

	s.logger.Info("question received",
		zap.Int("length", len(question)),
		zap.String("lang", lang),
		zap.Uint64("pipeline_version", p.Version()),
	)

	ans, err := p.Answer(ctx, question)
	if err != nil {
		return nil, err
	}

	ans.Lang = lang
	s.logger.Info("answer generated", zap.Duration("elapsed", ans.Elapsed))
	return ans, nil
}

// Ingest stores chunks as pages 1..n of documentName and installs a fresh
// pipeline. An empty chunk list is a no-op.
func (s *Service) Ingest(ctx context.Context, documentName string, chunks []string) (int, error) {
	if strings.TrimSpace(documentName) == "" {
		return 0, fmt.Errorf("%w: document_name is required", ErrInvalidInput)
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	docs := make([]DocChunk, len(chunks))
	for i, c := range chunks {
		docs[i] = DocChunk{
			Content: c,
			Source:  documentName,
			Page:    i + 1,
		}
	}

	if err := s.store.Add(ctx, docs); err != nil {
		return 0, wrap(ErrIngestionFailed, err)
	}

	version := s.pipelines.Replace(s.newPipeline())
	s.logger.Info("chunks ingested",
		zap.String("document", documentName),
		zap.Int("count", len(docs)),
		zap.Uint64("pipeline_version", version),
	)
	return len(docs), nil
}

// Health never fails; a store error is reported in HealthStatus.Err.
func (s *Service) Health(ctx context.Context) HealthStatus {
	st := HealthStatus{
		Provider: s.llm.Provider(),
		Model:    s.llm.Model(),
	}
	n, err := s.store.Count(ctx)
	if err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		st.Err = wrap(ErrHealthDegraded, err)
		return st
	}
	st.DocumentCount = n
	return st
}

func detectLang(s string) string {
	info := wl.Detect(s)
	if !info.IsReliable() {
		return ""
	}
	return wl.LangToStringShort(info.Lang)
}
