package llm

import (
	"context"
	"curio/curio/config"
	httputils "curio/curio/utils/http"
	"curio/curio/utils/logging"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrProvider matches every transport or provider failure returned by EdenClient.
var ErrProvider = errors.New("text provider failure")

// ProviderError keeps the upstream message verbatim.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string        { return e.Err.Error() }
func (e *ProviderError) Unwrap() error        { return e.Err }
func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

type EdenClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewEdenClient(cfg config.Config) *EdenClient {
	if cfg.EdenAIKey == "" {
		logging.AppLogger.Warn("EDEN_AI_API_KEY is empty; text provider calls will be rejected upstream")
	}
	timeout := cfg.EdenAITimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &EdenClient{
		apiKey:  cfg.EdenAIKey,
		baseURL: cfg.EdenAIBaseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// ChatRequest is the text/chat payload.
type ChatRequest struct {
	Providers         string  `json:"providers"`
	Text              string  `json:"text"`
	Temperature       float64 `json:"temperature"`
	MaxTokens         int     `json:"max_tokens"`
	FallbackProviders string  `json:"fallback_providers,omitempty"`
}

type SentimentRequest struct {
	Providers string `json:"providers"`
	Text      string `json:"text"`
	Language  string `json:"language"`
}

type SummarizeRequest struct {
	Providers       string `json:"providers"`
	Text            string `json:"text"`
	Language        string `json:"language,omitempty"`
	OutputSentences int    `json:"output_sentences"`
}

type ProviderFailure struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
}

// ProviderOutput is one provider's entry in a response; which fields are set depends on the endpoint.
type ProviderOutput struct {
	Status               string           `json:"status"`
	GeneratedText        string           `json:"generated_text,omitempty"`
	Result               string           `json:"result,omitempty"`
	GeneralSentiment     string           `json:"general_sentiment,omitempty"`
	GeneralSentimentRate float64          `json:"general_sentiment_rate,omitempty"`
	Error                *ProviderFailure `json:"error,omitempty"`
}

// Response is keyed by provider name.
type Response map[string]ProviderOutput

// Chat runs a text/chat completion.
func (c *EdenClient) Chat(ctx context.Context, req ChatRequest) (Response, error) {
	defer logging.LogDuration(ctx, "eden_chat")()
	return c.post(ctx, "/text/chat", req.Providers, req)
}

// Sentiment runs text/sentiment_analysis.
func (c *EdenClient) Sentiment(ctx context.Context, req SentimentRequest) (Response, error) {
	defer logging.LogDuration(ctx, "eden_sentiment")()
	return c.post(ctx, "/text/sentiment_analysis", req.Providers, req)
}

// Summarize runs text/summarize.
func (c *EdenClient) Summarize(ctx context.Context, req SummarizeRequest) (Response, error) {
	defer logging.LogDuration(ctx, "eden_summarize")()
	return c.post(ctx, "/text/summarize", req.Providers, req)
}

func (c *EdenClient) post(ctx context.Context, path, provider string, body interface{}) (Response, error) {
	var resp Response
	if err := httputils.PostJSONWithAuth(ctx, c.http, c.baseURL+path, c.apiKey, body, &resp); err != nil {
		logging.ErrorLogger.Error("eden ai request failed",
			zap.String("path", path),
			zap.String("provider", provider),
			zap.Error(err),
		)
		return nil, &ProviderError{Provider: provider, Err: err}
	}
	return resp, nil
}
