package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("EDEN_AI_TEXT_PROVIDERS", "")
	t.Setenv("EDEN_AI_TEMPERATURE", "")
	t.Setenv("SCREEN_TRANSITION_MS", "")

	cfg := LoadConfig()
	if cfg.PrimaryProvider != "openai" || cfg.FallbackProvider != "google" {
		t.Errorf("unexpected providers: %q / %q", cfg.PrimaryProvider, cfg.FallbackProvider)
	}
	if cfg.Temperature != 0.7 || cfg.MaxTokens != 500 {
		t.Errorf("unexpected generation limits: %v / %d", cfg.Temperature, cfg.MaxTokens)
	}
	if len(cfg.TextProviders) != 3 {
		t.Errorf("expected 3 text providers, got %v", cfg.TextProviders)
	}
	if cfg.ScreenTransition != 300*time.Millisecond {
		t.Errorf("expected 300ms transition, got %v", cfg.ScreenTransition)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("EDEN_AI_TEXT_PROVIDERS", " openai , mistral ,")
	t.Setenv("EDEN_AI_MAX_TOKENS", "120")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("EDEN_AI_BASE_URL", "http://localhost:9999/v2/")

	cfg := LoadConfig()
	if len(cfg.TextProviders) != 2 || cfg.TextProviders[1] != "mistral" {
		t.Errorf("unexpected providers %v", cfg.TextProviders)
	}
	if cfg.MaxTokens != 120 {
		t.Errorf("expected 120 max tokens, got %d", cfg.MaxTokens)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("expected 2h ttl, got %v", cfg.SessionTTL)
	}
	if cfg.EdenAIBaseURL != "http://localhost:9999/v2" {
		t.Errorf("trailing slash not trimmed: %q", cfg.EdenAIBaseURL)
	}
}

func TestDefaultTopics(t *testing.T) {
	topics := DefaultTopics()
	if topics.DefaultCategory != "general" {
		t.Errorf("expected general default category, got %q", topics.DefaultCategory)
	}
	want := []string{"science", "technology", "history", "art", "education"}
	if len(topics.Categories) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(topics.Categories))
	}
	for i, name := range want {
		if topics.Categories[i].Name != name {
			t.Errorf("category %d: expected %q, got %q", i, name, topics.Categories[i].Name)
		}
	}
	if topics.Messages.OffTopic == "" || topics.Messages.NoAnswer == "" {
		t.Error("fixed messages must be present")
	}
}

func TestLoadTopicsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.yaml")
	body := "allowed_keywords: [space]\ncategories:\n  - name: science\n    keywords: [space]\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	topics, err := LoadTopics(path)
	if err != nil {
		t.Fatalf("LoadTopics: %v", err)
	}
	if topics.DefaultCategory != "general" {
		t.Errorf("expected general fallback, got %q", topics.DefaultCategory)
	}

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	os.WriteFile(empty, []byte("categories: []\n"), 0o600)
	if _, err := LoadTopics(empty); err == nil {
		t.Error("expected error for catalog without allowed keywords")
	}
}
