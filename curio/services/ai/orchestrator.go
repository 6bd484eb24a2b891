package ai

import (
	"context"
	"curio/curio/config"
	"curio/curio/services/llm"
	"curio/curio/sources/psql/dao"
	"curio/curio/sources/psql/models"
	"curio/curio/utils/logging"
	"curio/curio/utils/textutil"
	"errors"
	"slices"

	"go.uber.org/zap"
)

// ErrOffTopic is matched by the error Ask returns for questions outside the study topics.
var ErrOffTopic = errors.New("off-topic question")

type offTopicError struct{ msg string }

func (e *offTopicError) Error() string        { return e.msg }
func (e *offTopicError) Is(target error) bool { return target == ErrOffTopic }

// Generator is the text-generation side of the Eden AI client.
type Generator interface {
	Chat(ctx context.Context, req llm.ChatRequest) (llm.Response, error)
}

// InteractionStore persists and reads back question/answer records.
type InteractionStore interface {
	SaveInteraction(ctx context.Context, userID int, question, category, response, provider string) (*models.UserQuestion, error)
	GetHistory(ctx context.Context, userID int, limit int) ([]models.UserQuestion, error)
	CountByCategory(ctx context.Context, userID int) ([]dao.CategoryCount, error)
}

// Answer is a successful Ask outcome.
type Answer struct {
	Text     string `json:"data"`
	Provider string `json:"provider"`
	Category string `json:"category"`
	Saved    bool   `json:"saved"`
}

type Orchestrator struct {
	gen         Generator
	store       InteractionStore
	topics      *config.Topics
	providers   []string
	primary     string
	fallback    string
	temperature float64
	maxTokens   int
}

func NewOrchestrator(cfg config.Config, topics *config.Topics, gen Generator, store InteractionStore) *Orchestrator {
	if topics == nil {
		topics = config.DefaultTopics()
	}
	return &Orchestrator{
		gen:         gen,
		store:       store,
		topics:      topics,
		providers:   cfg.TextProviders,
		primary:     cfg.PrimaryProvider,
		fallback:    cfg.FallbackProvider,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

func (o *Orchestrator) Topics() *config.Topics {
	return o.topics
}

// Ask validates question, queries the provider (falling back once) and records the exchange.
// userID 0 asks anonymously and nothing is stored.
func (o *Orchestrator) Ask(ctx context.Context, userID int, question, provider string) (*Answer, error) {
	defer logging.LogDuration(ctx, "ai_ask")()

	if !IsOnTopic(o.topics, question) {
		logging.AppLogger.Info("question rejected as off-topic", zap.Int("user_id", userID))
		return nil, &offTopicError{msg: o.topics.Messages.OffTopic}
	}
	return o.askWith(ctx, userID, question, o.resolveProvider(provider))
}

func (o *Orchestrator) resolveProvider(provider string) string {
	if provider == "" || !slices.Contains(o.providers, provider) {
		return o.primary
	}
	return provider
}

func (o *Orchestrator) askWith(ctx context.Context, userID int, question, provider string) (*Answer, error) {
	resp, err := o.gen.Chat(ctx, llm.ChatRequest{
		Providers:         provider,
		Text:              question,
		Temperature:       o.temperature,
		MaxTokens:         o.maxTokens,
		FallbackProviders: o.fallback,
	})
	if err != nil {
		if provider != o.fallback && ctx.Err() == nil {
			logging.AppLogger.Warn("provider failed, retrying with fallback",
				zap.String("provider", provider),
				zap.String("fallback", o.fallback),
				zap.Error(err),
			)
			return o.askWith(ctx, userID, question, o.fallback)
		}
		return nil, err
	}

	ans := &Answer{
		Text:     o.extract(resp, provider),
		Provider: provider,
		Category: Category(o.topics, question),
	}
	if userID != 0 && o.store != nil {
		if _, err := o.store.SaveInteraction(ctx, userID, question, ans.Category, ans.Text, provider); err != nil {
			logging.ErrorLogger.Error("failed to save interaction",
				zap.Int("user_id", userID),
				zap.Error(err),
			)
		} else {
			ans.Saved = true
		}
	}
	return ans, nil
}

// extract reads generated_text under the requested provider, then the fallback.
func (o *Orchestrator) extract(resp llm.Response, provider string) string {
	for _, key := range []string{provider, o.fallback} {
		if out, ok := resp[key]; ok && out.GeneratedText != "" {
			if text := textutil.PlainText(out.GeneratedText); text != "" {
				return text
			}
		}
	}
	return o.topics.Messages.NoAnswer
}

// History returns the user's stored interactions, oldest first.
func (o *Orchestrator) History(ctx context.Context, userID, limit int) ([]models.UserQuestion, error) {
	if o.store == nil {
		return nil, nil
	}
	return o.store.GetHistory(ctx, userID, limit)
}

// Suggestions picks prompts from the user's most asked categories; any failure yields the defaults.
func (o *Orchestrator) Suggestions(ctx context.Context, userID int) []string {
	if userID == 0 || o.store == nil {
		return Suggest(o.topics, nil)
	}
	counts, err := o.store.CountByCategory(ctx, userID)
	if err != nil {
		logging.ErrorLogger.Error("failed to load categories for suggestions",
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		return Suggest(o.topics, nil)
	}
	ranked := make([]string, 0, len(counts))
	for _, c := range counts {
		ranked = append(ranked, c.Category)
	}
	return Suggest(o.topics, ranked)
}
