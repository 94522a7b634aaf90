package rag

import "errors"

var (
	// ErrInvalidInput is returned before any collaborator call when the
	// request cannot be served (empty question, empty document name).
	ErrInvalidInput = errors.New("invalid input")

	// ErrGenerationFailed wraps retrieval and LLM failures of Ask.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrIngestionFailed wraps vector store failures of Ingest.
	ErrIngestionFailed = errors.New("ingestion failed")

	// ErrHealthDegraded is reported inside HealthStatus, never returned.
	ErrHealthDegraded = errors.New("vector store unreachable")
)

// wrapped keeps the sentinel for errors.Is and the collaborator message for callers.
type wrapped struct {
	kind error
	err  error
}

func (w *wrapped) Error() string { return w.err.Error() }

func (w *wrapped) Unwrap() []error { return []error{w.kind, w.err} }

func wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	return &wrapped{kind: kind, err: err}
}
