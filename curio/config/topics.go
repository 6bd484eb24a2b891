package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed topics.yaml
var defaultTopics []byte

// TopicCategory is one keyword group used for category inference.
type TopicCategory struct {
	Name        string   `yaml:"name"`
	Keywords    []string `yaml:"keywords"`
	Suggestions []string `yaml:"suggestions"`
}

// TopicMessages holds the fixed user-facing texts.
type TopicMessages struct {
	OffTopic  string `yaml:"off_topic"`
	NoAnswer  string `yaml:"no_answer"`
	RetryHint string `yaml:"retry_hint"`
	Thinking  string `yaml:"thinking"`
}

// Topics is the catalog behind the question filter and the suggestion engine.
type Topics struct {
	AllowedKeywords    []string        `yaml:"allowed_keywords"`
	Categories         []TopicCategory `yaml:"categories"`
	DefaultCategory    string          `yaml:"default_category"`
	DefaultSuggestions []string        `yaml:"default_suggestions"`
	Messages           TopicMessages   `yaml:"messages"`
}

// LoadTopics parses path, or the embedded catalog when path is empty.
func LoadTopics(path string) (*Topics, error) {
	data := defaultTopics
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read topics file: %w", err)
		}
		data = b
	}
	var t Topics
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse topics: %w", err)
	}
	if len(t.AllowedKeywords) == 0 {
		return nil, fmt.Errorf("parse topics: allowed_keywords must not be empty")
	}
	if t.DefaultCategory == "" {
		t.DefaultCategory = "general"
	}
	return &t, nil
}

// DefaultTopics returns the embedded catalog; it panics only if the embedded file is broken.
func DefaultTopics() *Topics {
	t, err := LoadTopics("")
	if err != nil {
		panic(err)
	}
	return t
}
