package ai

import (
	"curio/curio/config"
	"slices"
	"strings"
)

const maxSuggestions = 5

// IsOnTopic reports whether question contains any allow-listed keyword, ignoring case.
func IsOnTopic(t *config.Topics, question string) bool {
	q := strings.ToLower(question)
	for _, kw := range t.AllowedKeywords {
		if kw != "" && strings.Contains(q, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Category returns the first category group with a matching keyword.
func Category(t *config.Topics, question string) string {
	q := strings.ToLower(question)
	for _, c := range t.Categories {
		for _, kw := range c.Keywords {
			if kw != "" && strings.Contains(q, strings.ToLower(kw)) {
				return c.Name
			}
		}
	}
	return t.DefaultCategory
}

// Suggest takes two prompts from each ranked category and pads with the defaults.
func Suggest(t *config.Topics, ranked []string) []string {
	out := make([]string, 0, maxSuggestions)
	add := func(s string) {
		if len(out) < maxSuggestions && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	for _, name := range ranked {
		if len(out) >= maxSuggestions {
			break
		}
		prompts := t.DefaultSuggestions
		if c := findCategory(t, name); c != nil {
			prompts = c.Suggestions
		} else if name != t.DefaultCategory {
			continue
		}
		for i := 0; i < 2 && i < len(prompts); i++ {
			add(prompts[i])
		}
	}
	for _, s := range t.DefaultSuggestions {
		add(s)
	}
	return out
}

func findCategory(t *config.Topics, name string) *config.TopicCategory {
	for i := range t.Categories {
		if t.Categories[i].Name == name {
			return &t.Categories[i]
		}
	}
	return nil
}
