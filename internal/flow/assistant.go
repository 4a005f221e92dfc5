package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ateliergo/atelier/internal/conversation"
	"github.com/ateliergo/atelier/internal/genai"
	"github.com/ateliergo/atelier/internal/i18n"
	"github.com/ateliergo/atelier/internal/models"
	"github.com/ateliergo/atelier/internal/profile"
)

// personalKeywords trigger the survey nudge when the profile is still
// unsurveyed and the user asks for tailored advice.
var personalKeywords = []string{
	"персональный", "personal", "личный", "personalized",
	"совет", "advice", "рекомендация", "recommendation",
	"дизайн", "design", "стиль", "style",
}

// Assistant runs free-dialogue AI turns.
type Assistant struct {
	profiles *profile.Manager
	log      *conversation.Log
	ai       genai.ClientInterface
}

// NewAssistant creates the dialogue handler.
func NewAssistant(profiles *profile.Manager, log *conversation.Log, ai genai.ClientInterface) *Assistant {
	return &Assistant{profiles: profiles, log: log, ai: ai}
}

// HandleText runs one AI dialogue turn: detect and pin the language, answer
// with recent history as context, fold extracted facts into the profile, and
// nudge toward the survey when warranted. AI failure degrades to a localized
// apology, never an error to the transport.
func (a *Assistant) HandleText(ctx context.Context, userID, input string) ([]models.Reply, error) {
	p, err := a.profiles.Get(userID)
	if err != nil {
		return nil, err
	}

	lang := i18n.Detect(input)
	before := p.Fields()

	var replies []models.Reply
	if !p.GreetingSent {
		greeting := i18n.Greeting(lang)
		replies = append(replies, models.Reply{Text: greeting})
	}

	// Context window is read before the current turn is logged, so the model
	// sees only prior exchanges.
	history, err := a.log.Recent(userID, conversation.ContextWindow)
	if err != nil {
		return nil, err
	}

	response, aiErr := a.ai.CompleteText(ctx, i18n.SystemPrompt(lang), history, input)
	if aiErr != nil {
		// A dead turn context means we are shutting down, not that the model
		// is unavailable; no point degrading to canned text.
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrCollaborator, aiErr)
		}
		slog.Error("Assistant.HandleText AI call failed", "error", aiErr, "userID", userID)
		response = i18n.T("error_processing", lang)
	}

	if aiErr == nil && a.shouldSuggestSurvey(p, input) {
		response = response + "\n\n" + i18n.T("survey_suggestion", lang)
	}
	response = Truncate(response, lang)

	// Persist language, greeting flag and anything extracted from the turn.
	after := extractFacts(input, before)
	after[models.FieldLanguage] = string(lang)
	if _, err := a.profiles.MergeAIFields(userID, before, after); err != nil {
		return nil, err
	}
	if !p.GreetingSent {
		if err := a.profiles.Update(userID, func(p *models.Profile) {
			p.GreetingSent = true
		}); err != nil {
			return nil, err
		}
	}

	if err := a.log.Append(userID, input, models.SenderUser); err != nil {
		return nil, err
	}
	for _, r := range replies {
		if err := a.log.Append(userID, r.Text, models.SenderBot); err != nil {
			return nil, err
		}
	}
	if err := a.log.Append(userID, response, models.SenderBot); err != nil {
		return nil, err
	}

	return append(replies, models.Reply{Text: response}), nil
}

// shouldSuggestSurvey reports whether to append the survey nudge.
func (a *Assistant) shouldSuggestSurvey(p models.Profile, input string) bool {
	if p.SurveyCompleted {
		return false
	}
	lower := strings.ToLower(input)
	for _, kw := range personalKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// extractFacts pulls simple interest markers out of a message. The result is
// a snapshot for the field merge, seeded from the current fields so the diff
// only carries what this turn added.
func extractFacts(input string, before map[string]string) map[string]string {
	after := make(map[string]string, len(before)+3)
	for k, v := range before {
		after[k] = v
	}
	lower := strings.ToLower(input)
	for _, kw := range []string{"фото", "photo", "изображение", "image"} {
		if strings.Contains(lower, kw) {
			after["photo_interest"] = "true"
			break
		}
	}
	for _, kw := range []string{"тест", "test", "опрос", "survey"} {
		if strings.Contains(lower, kw) {
			after["survey_interest"] = "true"
			break
		}
	}
	return after
}

// Truncate caps a reply at the transport limit, appending the localized
// truncation marker.
func Truncate(text string, lang models.Language) string {
	runes := []rune(text)
	if len(runes) <= models.MaxReplyLength {
		return text
	}
	return string(runes[:models.MaxReplyLength]) + i18n.T("truncated_marker", lang)
}
