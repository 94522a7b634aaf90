package rag

import "time"

// DocChunk is one stored span of a source document. Source and Page are set
// at ingestion and never change afterwards.
type DocChunk struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Source    string    `json:"source"`
	Page      int       `json:"page"`
	CreatedAt time.Time `json:"createdAt"`
}

// Answer is the result of one QA pipeline run.
type Answer struct {
	Text    string
	Elapsed time.Duration
	// Lang is the ISO 639-1 code of the question, empty when detection is
	// not reliable.
	Lang string
}

// HealthStatus is what the health check observed. Err is set when the vector
// store could not be read.
type HealthStatus struct {
	DocumentCount int
	Provider      string
	Model         string
	Err           error
}

// AskRequest
// Payload of POST /ask.
type AskRequest struct {
	Query string `json:"query"`
}

// AskResponse
// Answer text plus formatted processing time ("1.23s").
type AskResponse struct {
	Answer         string `json:"answer"`
	ProcessingTime string `json:"processing_time"`
	Language       string `json:"language,omitempty"`
}

// IngestResponse
// Reply of POST /ingest-pdf.
type IngestResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthResponse
// Reply of GET /health when the store is readable.
type HealthResponse struct {
	Status       string `json:"status"`
	VectorDBDocs int    `json:"vector_db_docs"`
	LLMProvider  string `json:"llm_provider"`
	Model        string `json:"model"`
}

// ErrorResponse
// Error body of every route, including the degraded health payload.
type ErrorResponse struct {
	Status string `json:"status,omitempty"`
	Detail string `json:"detail"`
}
