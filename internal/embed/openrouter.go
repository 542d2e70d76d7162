package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"

	memoerrors "github.com/harukit/memodex/internal/errors"
	"github.com/harukit/memodex/internal/telemetry"
)

// OpenRouterEmbedder calls an OpenRouter-compatible /embeddings endpoint.
// Rate limits and transport failures are retried with bounded exponential
// backoff; authentication and malformed-request errors abort immediately.
type OpenRouterEmbedder struct {
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	client     *http.Client
	retry      memoerrors.RetryConfig
	usage      *telemetry.UsageStats
	logger     *slog.Logger
}

var _ Embedder = (*OpenRouterEmbedder)(nil)

// OpenRouterOption configures the embedder.
type OpenRouterOption func(*OpenRouterEmbedder)

// WithModel overrides the embedding model.
func WithModel(model string) OpenRouterOption {
	return func(e *OpenRouterEmbedder) { e.model = model }
}

// WithBaseURL points the client at a different API root (tests, proxies).
func WithBaseURL(url string) OpenRouterOption {
	return func(e *OpenRouterEmbedder) { e.baseURL = url }
}

// WithDimensions declares the model's output dimension.
func WithDimensions(d int) OpenRouterOption {
	return func(e *OpenRouterEmbedder) { e.dimensions = d }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) OpenRouterOption {
	return func(e *OpenRouterEmbedder) { e.client = c }
}

// WithRetryConfig overrides the backoff policy.
func WithRetryConfig(cfg memoerrors.RetryConfig) OpenRouterOption {
	return func(e *OpenRouterEmbedder) { e.retry = cfg }
}

// WithUsage attaches a usage-stats collector.
func WithUsage(u *telemetry.UsageStats) OpenRouterOption {
	return func(e *OpenRouterEmbedder) { e.usage = u }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) OpenRouterOption {
	return func(e *OpenRouterEmbedder) { e.logger = l }
}

// NewOpenRouterEmbedder creates a client for the given API key.
func NewOpenRouterEmbedder(apiKey string, opts ...OpenRouterOption) (*OpenRouterEmbedder, error) {
	if apiKey == "" {
		return nil, memoerrors.New(memoerrors.CodeEmbeddingAuth, memoerrors.CategoryEmbedding,
			"API key is required").
			WithSuggestion("set OPENROUTER_API_KEY or configure embedding.api_key_env")
	}
	e := &OpenRouterEmbedder{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		model:      DefaultModel,
		dimensions: DefaultDimensions,
		client:     &http.Client{Timeout: DefaultTimeout},
		retry:      memoerrors.DefaultRetryConfig(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingData struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type embeddingUsage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type embeddingResponse struct {
	Data  []embeddingData `json:"data"`
	Model string          `json:"model"`
	Usage embeddingUsage  `json:"usage"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// Embed generates an embedding for a single text.
func (e *OpenRouterEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for texts, preserving input order.
// Empty texts are sent as "(empty)" so the API never rejects the request;
// texts over MaxTextChars are truncated with a trailing ellipsis.
func (e *OpenRouterEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	input := make([]string, len(texts))
	for i, text := range texts {
		input[i] = prepareText(text)
	}

	var result [][]float32
	err := memoerrors.Retry(ctx, e.retry, func() error {
		vectors, err := e.doEmbed(ctx, input)
		if err != nil {
			return err
		}
		result = vectors
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// doEmbed performs one embeddings request.
func (e *OpenRouterEmbedder) doEmbed(ctx context.Context, input []string) ([][]float32, error) {
	body, err := json.Marshal(embeddingRequest{Model: e.model, Input: input})
	if err != nil {
		return nil, fmt.Errorf("marshal embeddings request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embeddings request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, memoerrors.Wrap(memoerrors.CodeEmbeddingRequest, memoerrors.CategoryEmbedding,
			"embeddings request failed", err).
			WithRetryable(true)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, memoerrors.Wrap(memoerrors.CodeEmbeddingRequest, memoerrors.CategoryEmbedding,
			"read embeddings response", err).
			WithRetryable(true)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, e.classifyAPIError(resp.StatusCode, respBody)
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, memoerrors.Wrap(memoerrors.CodeEmbeddingParse, memoerrors.CategoryEmbedding,
			"parse embeddings response", err)
	}
	if len(parsed.Data) != len(input) {
		return nil, memoerrors.New(memoerrors.CodeEmbeddingParse, memoerrors.CategoryEmbedding,
			fmt.Sprintf("expected %d embeddings, got %d", len(input), len(parsed.Data)))
	}

	if e.usage != nil {
		e.usage.RecordEmbedding(parsed.Usage.PromptTokens, parsed.Usage.TotalTokens)
	}

	// The API may return data out of order; index is authoritative.
	sort.Slice(parsed.Data, func(a, b int) bool {
		return parsed.Data[a].Index < parsed.Data[b].Index
	})
	vectors := make([][]float32, len(parsed.Data))
	for i, d := range parsed.Data {
		vectors[i] = d.Embedding
	}

	e.logger.Debug("embeddings_generated",
		slog.Int("count", len(vectors)),
		slog.String("model", e.model),
		slog.Int("total_tokens", parsed.Usage.TotalTokens))
	return vectors, nil
}

// classifyAPIError maps an HTTP status to a structured error: 429 and 5xx
// are retryable; 401/403 and 4xx abort with the API's message.
func (e *OpenRouterEmbedder) classifyAPIError(status int, body []byte) error {
	message := fmt.Sprintf("API error (status %d)", status)
	var parsed apiErrorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		message = parsed.Error.Message
	}

	switch {
	case status == http.StatusTooManyRequests:
		return memoerrors.New(memoerrors.CodeEmbeddingRateLimit, memoerrors.CategoryEmbedding, message).
			WithRetryable(true).
			WithDetail("status", status)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return memoerrors.New(memoerrors.CodeEmbeddingAuth, memoerrors.CategoryEmbedding, message).
			WithDetail("status", status).
			WithSuggestion("check OPENROUTER_API_KEY")
	case status >= 500:
		return memoerrors.New(memoerrors.CodeEmbeddingServer, memoerrors.CategoryEmbedding, message).
			WithRetryable(true).
			WithDetail("status", status)
	default:
		return memoerrors.New(memoerrors.CodeEmbeddingRequest, memoerrors.CategoryEmbedding, message).
			WithDetail("status", status)
	}
}

// prepareText applies the payload rules: empty becomes "(empty)", long
// texts are truncated at MaxTextChars with a trailing ellipsis.
func prepareText(text string) string {
	if text == "" {
		return "(empty)"
	}
	runes := []rune(text)
	if len(runes) > MaxTextChars {
		return string(runes[:MaxTextChars]) + "..."
	}
	return text
}

// Dimensions returns the configured embedding dimension.
func (e *OpenRouterEmbedder) Dimensions() int { return e.dimensions }

// ModelName returns the configured model identifier.
func (e *OpenRouterEmbedder) ModelName() string { return e.model }

// Available reports whether the client holds credentials.
func (e *OpenRouterEmbedder) Available(_ context.Context) bool { return e.apiKey != "" }

// Close releases resources. The HTTP client needs no teardown.
func (e *OpenRouterEmbedder) Close() error { return nil }
