package controllers

import (
	"context"
	"curio/curio/services/llm"
	"errors"
	"strings"
)

const (
	defaultSentimentProvider = "google"
	defaultSummaryProvider   = "microsoft"
	summarySentences         = 3
	analysisLanguage         = "pt"
)

var ErrEmptyText = errors.New("text is required")

// TextAnalyzer is the non-chat side of the Eden AI client.
type TextAnalyzer interface {
	Sentiment(ctx context.Context, req llm.SentimentRequest) (llm.Response, error)
	Summarize(ctx context.Context, req llm.SummarizeRequest) (llm.Response, error)
}

type TextController struct {
	client TextAnalyzer
}

func NewTextController(client TextAnalyzer) *TextController {
	return &TextController{client: client}
}

func (c *TextController) Sentiment(ctx context.Context, text, provider string) (llm.Response, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if provider == "" {
		provider = defaultSentimentProvider
	}
	return c.client.Sentiment(ctx, llm.SentimentRequest{Providers: provider, Text: text, Language: analysisLanguage})
}

func (c *TextController) Summarize(ctx context.Context, text, provider string) (llm.Response, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if provider == "" {
		provider = defaultSummaryProvider
	}
	return c.client.Summarize(ctx, llm.SummarizeRequest{
		Providers:       provider,
		Text:            text,
		Language:        analysisLanguage,
		OutputSentences: summarySentences,
	})
}
