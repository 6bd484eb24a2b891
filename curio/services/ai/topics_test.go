package ai

import (
	"curio/curio/config"
	"testing"
)

func TestIsOnTopic(t *testing.T) {
	topics := config.DefaultTopics()
	cases := map[string]bool{
		"O que é fotossíntese?":              true,
		"EXPLIQUE a Revolução":               true,
		"Como funciona um motor?":            true,
		"Qual seu time de futebol favorito?": false,
		"":                                   false,
	}
	for q, want := range cases {
		if got := IsOnTopic(topics, q); got != want {
			t.Errorf("IsOnTopic(%q) = %v, want %v", q, got, want)
		}
	}
}

func TestCategoryFirstMatchWins(t *testing.T) {
	topics := config.DefaultTopics()
	cases := map[string]string{
		"O que é fotossíntese?":                     "science",
		"História da física quântica":               "science",
		"Explique programação funcional":            "technology",
		"Qual a história do Brasil?":                "history",
		"Defina impressionismo na pintura":          "art",
		"Dicas para estudo na universidade":         "education",
		"Explique a curiosidade sobre os pinguins?": "general",
	}
	for q, want := range cases {
		if got := Category(topics, q); got != want {
			t.Errorf("Category(%q) = %q, want %q", q, got, want)
		}
	}
}

func TestSuggestPadsWithDefaults(t *testing.T) {
	topics := config.DefaultTopics()

	got := Suggest(topics, []string{"art"})
	if len(got) != 5 {
		t.Fatalf("expected 5 suggestions, got %v", got)
	}
	if got[0] != "Quais são os principais movimentos artísticos?" || got[2] != topics.DefaultSuggestions[0] {
		t.Errorf("unexpected order %v", got)
	}

	got = Suggest(topics, []string{"general", "unknown"})
	for i, s := range got {
		if s != topics.DefaultSuggestions[i] {
			t.Errorf("expected defaults without duplicates, got %v", got)
			break
		}
	}
}
