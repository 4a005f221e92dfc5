// Package survey drives the fifteen-step interior design questionnaire.
//
// The questionnaire is a linear state machine persisted on the profile: the
// SurveyState field names the question currently awaiting an answer, so the
// flow survives restarts mid-survey. The first question is a discrete style
// choice; every later step accepts free text verbatim.
package survey

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ateliergo/atelier/internal/conversation"
	"github.com/ateliergo/atelier/internal/models"
	"github.com/ateliergo/atelier/internal/profile"
)

// Engine runs the questionnaire against the profile store.
type Engine struct {
	profiles *profile.Manager
	log      *conversation.Log
}

// NewEngine creates a survey engine.
func NewEngine(profiles *profile.Manager, log *conversation.Log) *Engine {
	return &Engine{profiles: profiles, log: log}
}

// Start begins (or restarts) the questionnaire. It flips the profile into
// survey mode, pins the language for the whole run, and returns the intro
// followed by the first question with its style options.
func (e *Engine) Start(userID string, lang models.Language) ([]models.Reply, error) {
	err := e.profiles.Update(userID, func(p *models.Profile) {
		p.InSurveyMode = true
		p.SurveyState = Questions[0].Key
		p.PendingConfirmation = ""
		p.Language = lang
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enter survey mode: %w", err)
	}
	slog.Info("Engine.Start survey started", "userID", userID, "lang", lang)

	replies := []models.Reply{
		{Text: introText(lang)},
		{Text: prompt(Questions[0], lang), Options: StyleOptions(lang)},
	}
	for _, r := range replies {
		if err := e.log.Append(userID, r.Text, models.SenderBot); err != nil {
			return nil, err
		}
	}
	return replies, nil
}

// HandleAnswer consumes one user response for the question the profile is
// waiting on. Invalid input re-prompts the same question; the final answer
// completes the survey and returns the profile summary.
func (e *Engine) HandleAnswer(userID, input string) ([]models.Reply, error) {
	p, err := e.profiles.Get(userID)
	if err != nil {
		return nil, err
	}
	lang := p.Language
	if lang == "" {
		lang = models.LanguageEnglish
	}

	idx := questionIndex(p.SurveyState)
	if idx < 0 {
		// Survey mode without a valid state: restart cleanly.
		slog.Warn("Engine.HandleAnswer unknown survey state, restarting", "userID", userID, "state", p.SurveyState)
		return e.Start(userID, lang)
	}
	q := Questions[idx]

	var answer string
	var confirm string
	if q.Key == models.KeyPreferredStyle {
		style, ok := parseStyleChoice(input)
		if !ok {
			reply := models.Reply{Text: prompt(q, lang), Options: StyleOptions(lang)}
			if err := e.log.Append(userID, reply.Text, models.SenderBot); err != nil {
				return nil, err
			}
			return []models.Reply{reply}, nil
		}
		answer = style.ID
		confirm = styleConfirmText(style, lang)
		userTurn := "Выбран стиль: " + style.NameRU
		if lang != models.LanguageRussian {
			userTurn = "Selected style: " + style.ID
		}
		if err := e.log.Append(userID, userTurn, models.SenderUser); err != nil {
			return nil, err
		}
	} else {
		answer = strings.TrimSpace(input)
		if answer == "" {
			reply := models.Reply{Text: prompt(q, lang)}
			if err := e.log.Append(userID, reply.Text, models.SenderBot); err != nil {
				return nil, err
			}
			return []models.Reply{reply}, nil
		}
		if err := e.log.Append(userID, answer, models.SenderUser); err != nil {
			return nil, err
		}
	}

	last := idx == len(Questions)-1
	err = e.profiles.Update(userID, func(p *models.Profile) {
		if p.Answers == nil {
			p.Answers = make(map[models.QuestionKey]string)
		}
		p.Answers[q.Key] = answer
		if last {
			p.SurveyCompleted = true
			p.InSurveyMode = false
			p.SurveyState = ""
		} else {
			p.SurveyState = Questions[idx+1].Key
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record answer: %w", err)
	}

	var replies []models.Reply
	if confirm != "" {
		replies = append(replies, models.Reply{Text: confirm})
	}
	if last {
		updated, err := e.profiles.Get(userID)
		if err != nil {
			return nil, err
		}
		replies = append(replies, models.Reply{Text: summaryText(updated, lang)})
		slog.Info("Engine.HandleAnswer survey completed", "userID", userID)
	} else {
		next := Questions[idx+1]
		reply := models.Reply{Text: prompt(next, lang)}
		replies = append(replies, reply)
	}
	for _, r := range replies {
		if err := e.log.Append(userID, r.Text, models.SenderBot); err != nil {
			return nil, err
		}
	}
	return replies, nil
}

// parseStyleChoice accepts a style id (any case), its 1-based position, or a
// callback payload of the form "style_<id>".
func parseStyleChoice(input string) (Style, bool) {
	choice := strings.ToLower(strings.TrimSpace(input))
	choice = strings.TrimPrefix(choice, "style_")

	if n, err := strconv.Atoi(choice); err == nil {
		if n >= 1 && n <= len(Styles) {
			return Styles[n-1], true
		}
		return Style{}, false
	}
	return StyleByID(choice)
}

func prompt(q Question, lang models.Language) string {
	if lang == models.LanguageRussian {
		return q.PromptRU
	}
	return q.PromptEN
}

func introText(lang models.Language) string {
	if lang == models.LanguageRussian {
		return `🎨 ТЕСТ ПО ДИЗАЙНУ ИНТЕРЬЕРА

⏱ Время: 10-15 минут

🚀 Начинаем с выбора стиля!`
	}
	return `🎨 PROFESSIONAL INTERIOR DESIGN SURVEY

Hello! I'm a professional architect and interior designer with 20+ years of experience.

🔍 What we'll discover:
• Your style and color preferences
• Functional space requirements
• Budget and timeline constraints
• Lifestyle and family needs

📊 15 professional questions:
1-3: Style preferences
4-6: Spatial solutions
7-9: Functionality
10-12: Budget and time
13-15: Lifestyle

⏱ Time: 10-15 minutes

🚀 Let's start with style selection!`
}

func styleConfirmText(s Style, lang models.Language) string {
	if lang == models.LanguageRussian {
		return fmt.Sprintf("✅ Стиль выбран: %s\n\n%s\n\nПереходим к следующему вопросу...", s.NameRU, s.Description)
	}
	return fmt.Sprintf("✅ Style selected: %s\n\nMoving on to the next question...", s.ID)
}

// summaryText renders the completed design profile.
func summaryText(p models.Profile, lang models.Language) string {
	get := func(key models.QuestionKey) string {
		if v, ok := p.Answers[key]; ok && v != "" {
			return v
		}
		if lang == models.LanguageRussian {
			return "Не указано"
		}
		return "Not specified"
	}

	if lang == models.LanguageRussian {
		return fmt.Sprintf(`🎉 ПРОФЕССИОНАЛЬНЫЙ ТЕСТ ПО ДИЗАЙНУ ИНТЕРЬЕРА ЗАВЕРШЕН!

✅ Спасибо за прохождение теста! Теперь я знаю ваши предпочтения как профессиональный архитектор и дизайнер интерьеров.

📊 Ваш дизайн-профиль:

🎨 Стиль: %s
🎨 Цвета: %s
🏗️ Материалы: %s
🏠 Тип пространства: %s
🚪 Помещения: %s
📐 Планировка: %s
⚙️ Функциональность: %s
💡 Освещение: %s
🗄️ Хранение: %s
💰 Бюджет: %s
⏰ Время: %s
🎯 Приоритеты: %s
🌟 Образ жизни: %s
👨‍👩‍👧‍👦 Семья: %s
🎭 Личные акценты: %s

💡 Теперь я могу давать вам профессиональные дизайнерские советы на основе ваших предпочтений!

🚀 Можете задавать любые вопросы по дизайну, планировке, материалам или отправлять фотографии для профессионального анализа.`,
			get(models.KeyPreferredStyle), get(models.KeyColorPreference), get(models.KeyMaterialPreference),
			get(models.KeySpaceType), get(models.KeyRoomPreference), get(models.KeyLayoutStyle),
			get(models.KeyFunctionalityPreference), get(models.KeyLightingPreference), get(models.KeyStoragePreference),
			get(models.KeyBudgetRange), get(models.KeyTimeline), get(models.KeyProjectPriority),
			get(models.KeyLifestyle), get(models.KeyFamilyNeeds), get(models.KeyPersonalTouch))
	}

	return fmt.Sprintf(`🎉 PROFESSIONAL INTERIOR DESIGN SURVEY COMPLETED!

✅ Thank you for taking the survey! As a professional architect and interior designer, I now know your preferences.

📊 Your design profile:

🎨 Style: %s
🎨 Colors: %s
🏗️ Materials: %s
🏠 Space type: %s
🚪 Rooms: %s
📐 Layout: %s
⚙️ Functionality: %s
💡 Lighting: %s
🗄️ Storage: %s
💰 Budget: %s
⏰ Timeline: %s
🎯 Priorities: %s
🌟 Lifestyle: %s
👨‍👩‍👧‍👦 Family: %s
🎭 Personal touch: %s

💡 I can now give you professional design advice based on your preferences!

🚀 Ask me anything about design, layouts or materials, or send photos for professional analysis.`,
		get(models.KeyPreferredStyle), get(models.KeyColorPreference), get(models.KeyMaterialPreference),
		get(models.KeySpaceType), get(models.KeyRoomPreference), get(models.KeyLayoutStyle),
		get(models.KeyFunctionalityPreference), get(models.KeyLightingPreference), get(models.KeyStoragePreference),
		get(models.KeyBudgetRange), get(models.KeyTimeline), get(models.KeyProjectPriority),
		get(models.KeyLifestyle), get(models.KeyFamilyNeeds), get(models.KeyPersonalTouch))
}
