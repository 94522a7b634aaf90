// Package client is a typed HTTP client for the assistant backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/josinaldojr/assistant-rag/internal/rag"
)

// ErrUnreachable wraps transport failures, timeouts included.
var ErrUnreachable = errors.New("backend unreachable")

// StatusError is a non-200 reply from the backend.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned %d", e.Code)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Code, e.Detail)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for baseURL whose calls are bounded by timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Ask(ctx context.Context, query string) (*rag.AskResponse, error) {
	data, err := json.Marshal(rag.AskRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("marshalling request: %w", err)
	}
	var out rag.AskResponse
	if err := c.do(ctx, http.MethodPost, "/ask", "application/json", bytes.NewReader(data), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ingest posts chunks as repeated form fields, page order preserved.
func (c *Client) Ingest(ctx context.Context, documentName string, chunks []string) (*rag.IngestResponse, error) {
	form := url.Values{"document_name": {documentName}}
	for _, ch := range chunks {
		form.Add("chunks", ch)
	}
	var out rag.IngestResponse
	if err := c.do(ctx, http.MethodPost, "/ingest-pdf", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health returns the healthy payload, or a StatusError with code 200 and the
// detail when the backend reports a degraded store.
func (c *Client) Health(ctx context.Context) (*rag.HealthResponse, error) {
	var raw struct {
		rag.HealthResponse
		Detail string `json:"detail"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", "", nil, &raw); err != nil {
		return nil, err
	}
	if raw.Status != "healthy" {
		return nil, &StatusError{Code: http.StatusOK, Detail: raw.Detail}
	}
	return &raw.HealthResponse, nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e rag.ErrorResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &e) != nil || e.Detail == "" {
			e.Detail = strings.TrimSpace(string(raw))
		}
		return &StatusError{Code: resp.StatusCode, Detail: e.Detail}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
