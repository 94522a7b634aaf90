package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/josinaldojr/assistant-rag/internal/rag"
)

const (
	mistralBaseURL        = "https://api.mistral.ai/v1"
	mistralChatModel      = "mistral-large-latest"
	mistralEmbeddingModel = "mistral-embed"
	mistralEmbedDim       = 1024
	mistralProviderName   = "Mistral AI (Official)"
)

// MistralClient talks to the Mistral REST API for chat completions and
// embeddings.
type MistralClient struct {
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
	httpClient *http.Client
}

type MistralConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	// Timeout bounds one API call. Zero means no bound.
	Timeout time.Duration
}

func NewMistralClient(cfg MistralConfig) (*MistralClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing MISTRAL_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = mistralChatModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = mistralBaseURL
	}
	return &MistralClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
	}, nil
}

func (m *MistralClient) Provider() string { return mistralProviderName }

func (m *MistralClient) Model() string { return m.model }

func (m *MistralClient) Dimensions() int { return mistralEmbedDim }

type mistralMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mistralChatRequest struct {
	Model       string           `json:"model"`
	Messages    []mistralMessage `json:"messages"`
	Temperature float32          `json:"temperature"`
}

type mistralChatResponse struct {
	Choices []struct {
		Message mistralMessage `json:"message"`
	} `json:"choices"`
}

type mistralEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type mistralEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (m *MistralClient) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	req := mistralChatRequest{
		Model:       m.model,
		Messages:    []mistralMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
	}
	var resp mistralChatResponse
	if err := m.post(ctx, "/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("mistral returned no choices")
	}
	txt := strings.TrimSpace(resp.Choices[0].Message.Content)
	if txt == "" {
		return "", fmt.Errorf("model returned empty text")
	}
	return txt, nil
}

func (m *MistralClient) Embed(ctx context.Context, text string) ([]float32, error) {
	clean := normalizeWhitespace(text)
	if clean == "" {
		// Blank chunks are stored like any other; a zero vector scores 0.
		return make([]float32, mistralEmbedDim), nil
	}

	var resp mistralEmbedResponse
	if err := m.post(ctx, "/embeddings", mistralEmbedRequest{Model: mistralEmbeddingModel, Input: []string{clean}}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	vec := resp.Data[0].Embedding
	if len(vec) != mistralEmbedDim {
		return nil, fmt.Errorf("unexpected embedding size %d (expected %d)", len(vec), mistralEmbedDim)
	}
	return vec, nil
}

func (m *MistralClient) post(ctx context.Context, path string, body, out any) error {
	ctx, cancel := withTimeout(ctx, m.timeout)
	defer cancel()

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mistral request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mistral %s failed: %s: %s", path, resp.Status, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding mistral response: %w", err)
	}
	return nil
}

var _ rag.EmbeddingsClient = (*MistralClient)(nil)
var _ rag.LLMClient = (*MistralClient)(nil)
