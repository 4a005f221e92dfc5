package i18n

import (
	"strings"
	"testing"

	"github.com/ateliergo/atelier/internal/models"
)

func TestDetect(t *testing.T) {
	cases := []struct {
		text string
		want models.Language
	}{
		{"привет, как дела?", models.LanguageRussian},
		{"hello there", models.LanguageEnglish},
		{"", models.LanguageEnglish},
		{"12345 !!!", models.LanguageEnglish},
		{"ок ok fine", models.LanguageEnglish},
		{"хочу modern стиль в гостиной", models.LanguageRussian},
		{"ёлка", models.LanguageRussian},
	}
	for _, c := range cases {
		if got := Detect(c.text); got != c.want {
			t.Errorf("Detect(%q) = %q, want %q", c.text, got, c.want)
		}
	}
}

func TestTReturnsLocalizedText(t *testing.T) {
	ru := T("nothing_to_reset", models.LanguageRussian)
	en := T("nothing_to_reset", models.LanguageEnglish)
	if ru == en {
		t.Error("ru and en texts should differ")
	}
	if !strings.Contains(ru, "нет сохраненных данных") {
		t.Errorf("unexpected ru text: %q", ru)
	}
}

func TestTUnknownKeyIsVisible(t *testing.T) {
	if got := T("no_such_key", models.LanguageEnglish); got != "no_such_key" {
		t.Errorf("unknown key should come back verbatim, got %q", got)
	}
}

func TestGreetingComesFromPool(t *testing.T) {
	pool := Greetings(models.LanguageRussian)
	got := Greeting(models.LanguageRussian)
	found := false
	for _, g := range pool {
		if g == got {
			found = true
		}
	}
	if !found {
		t.Errorf("Greeting returned %q, not in pool", got)
	}
}

func TestSystemPromptForbidsMarkdown(t *testing.T) {
	for _, lang := range []models.Language{models.LanguageRussian, models.LanguageEnglish} {
		p := SystemPrompt(lang)
		if !strings.Contains(p, "**") {
			t.Errorf("%s prompt missing the formatting instruction", lang)
		}
	}
}
