package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/josinaldojr/assistant-rag/internal/rag"
	"go.uber.org/zap"
)

const (
	maxAskBodySize    = 1 << 20
	maxIngestBodySize = 32 << 20
)

// QAService is what the handlers need from rag.Service.
type QAService interface {
	Ask(ctx context.Context, question string) (*rag.Answer, error)
	Ingest(ctx context.Context, documentName string, chunks []string) (int, error)
	Health(ctx context.Context) rag.HealthStatus
}

type Handler struct {
	ragService QAService
	logger     *zap.Logger
}

func NewHandler(ragService QAService, logger *zap.Logger) *Handler {
	return &Handler{ragService: ragService, logger: logger}
}

// Health always answers 200; a store failure is reported in the body.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	st := h.ragService.Health(r.Context())
	if st.Err != nil {
		respondJSON(w, http.StatusOK, rag.ErrorResponse{Status: "error", Detail: st.Err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, rag.HealthResponse{
		Status:       "healthy",
		VectorDBDocs: st.DocumentCount,
		LLMProvider:  st.Provider,
		Model:        st.Model,
	})
}

func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAskBodySize)

	var req rag.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	ans, err := h.ragService.Ask(r.Context(), req.Query)
	switch {
	case errors.Is(err, rag.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "Question vide")
		return
	case err != nil:
		h.logger.Error("ask failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, rag.AskResponse{
		Answer:         ans.Text,
		ProcessingTime: fmt.Sprintf("%.2fs", ans.Elapsed.Seconds()),
		Language:       ans.Lang,
	})
}

// IngestPDF accepts document_name and repeated chunks as url-encoded or
// multipart form fields.
func (h *Handler) IngestPDF(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxIngestBodySize)

	if err := r.ParseMultipartForm(maxIngestBodySize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		respondError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	name := r.PostForm.Get("document_name")
	chunks := r.PostForm["chunks"]

	count, err := h.ragService.Ingest(r.Context(), name, chunks)
	switch {
	case errors.Is(err, rag.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("ingestion failed", zap.String("document", name), zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, rag.IngestResponse{
		Status:  "success",
		Message: fmt.Sprintf("%d chunks ajoutés à la base", count),
	})
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, detail string) {
	respondJSON(w, code, rag.ErrorResponse{Detail: detail})
}
