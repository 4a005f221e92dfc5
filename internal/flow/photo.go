package flow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ateliergo/atelier/internal/conversation"
	"github.com/ateliergo/atelier/internal/i18n"
	"github.com/ateliergo/atelier/internal/models"
	"github.com/ateliergo/atelier/internal/vision"
)

const analysisPromptRU = `Проанализируй изображение как архитектор:

Что вижу:
- Стиль и материалы
- Планировку и освещение
- Детали и атмосферу

Оценка:
- Плюсы дизайна
- Что улучшить
- Практические советы

ВАЖНО: Не используй символы ** или ### в ответах. Пиши заголовки просто с новой строки.

Анализируй кратко и по делу.`

const analysisPromptEN = `Analyze the image as an architect:

What I see:
- Style and materials
- Layout and lighting
- Details and atmosphere

Assessment:
- Design strengths
- Areas for improvement
- Practical advice

IMPORTANT: Do not use ** or ### symbols in responses. Write headings on new lines.

Analyze briefly and to the point.`

// HandlePhoto runs one image analysis turn. Only the first image of a
// multi-image submission is analyzed; its siblings get a one-photo
// explanation instead. A failed vision call falls back to the text model,
// then to local technical metadata, so the user always gets an answer.
func (a *Assistant) HandlePhoto(ctx context.Context, msg models.IncomingMessage) ([]models.Reply, error) {
	userID := msg.UserID
	lang := i18n.Detect(msg.Caption)

	if msg.MediaGroupID != "" {
		seen, err := a.profiles.MarkMediaGroup(userID, msg.MediaGroupID)
		if err != nil {
			return nil, err
		}
		if seen {
			slog.Debug("Assistant.HandlePhoto extra media group image", "userID", userID, "group", msg.MediaGroupID)
			reply := models.Reply{Text: i18n.T("media_group_limit", lang)}
			if err := a.log.Append(userID, reply.Text, models.SenderBot); err != nil {
				return nil, err
			}
			return []models.Reply{reply}, nil
		}
		// The first image of the group falls through to normal analysis.
	}

	p, err := a.profiles.Get(userID)
	if err != nil {
		return nil, err
	}
	before := p.Fields()

	desc := vision.Describe(msg.Photo)

	history, err := a.log.Recent(userID, conversation.ContextWindow)
	if err != nil {
		return nil, err
	}

	promptText := photoPrompt(msg.Caption, lang)
	systemPrompt := i18n.SystemPrompt(lang)

	response, visionErr := a.ai.CompleteVision(ctx, systemPrompt, history, promptText, msg.Photo)
	if visionErr != nil {
		slog.Warn("Assistant.HandlePhoto vision model failed, trying text model", "error", visionErr, "userID", userID)
		response, err = a.ai.CompleteText(ctx, systemPrompt, history, textFallbackPrompt(promptText, desc))
		if err != nil {
			// A dead turn context means we are shutting down, not that the
			// models are unavailable; no point degrading to canned text.
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", ErrCollaborator, err)
			}
			slog.Error("Assistant.HandlePhoto text fallback failed", "error", err, "userID", userID)
			response = metadataFallback(desc, lang)
		}
	}
	response = Truncate(response, lang)

	after := make(map[string]string, len(before)+1)
	for k, v := range before {
		after[k] = v
	}
	after[models.FieldLanguage] = string(lang)
	if _, err := a.profiles.MergeAIFields(userID, before, after); err != nil {
		return nil, err
	}

	if err := a.log.Append(userID, fmt.Sprintf("[Photo: %s]", desc.Short()), models.SenderUser); err != nil {
		return nil, err
	}
	if err := a.log.Append(userID, response, models.SenderBot); err != nil {
		return nil, err
	}
	return []models.Reply{{Text: response}}, nil
}

// photoPrompt picks the analysis prompt: answering the caption when one was
// given, a structured walkthrough otherwise.
func photoPrompt(caption string, lang models.Language) string {
	if caption != "" {
		if lang == models.LanguageRussian {
			return fmt.Sprintf(`Пользователь задал вопрос: "%s"

Ответь на этот вопрос как профессиональный архитектор и дизайнер, используя изображение как контекст.

ВАЖНО: Не используй символы ** или ### в ответах. Пиши заголовки просто с новой строки.

Отвечай кратко и по делу.`, caption)
		}
		return fmt.Sprintf(`User asked: "%s"

Answer this question as a professional architect and designer, using the image as context.

IMPORTANT: Do not use ** or ### symbols in responses. Write headings on new lines.

Answer briefly and to the point.`, caption)
	}
	if lang == models.LanguageRussian {
		return analysisPromptRU
	}
	return analysisPromptEN
}

// textFallbackPrompt rephrases the photo question for the text model when the
// vision model is unavailable, leaning on the local metadata.
func textFallbackPrompt(promptText string, desc vision.Description) string {
	return fmt.Sprintf("%s\n\nDescription of the submitted photo: %s.", promptText, desc.Short())
}

// metadataFallback is the last line of defense: a canned answer built from
// the locally extracted image metadata, or a plain apology when even decoding
// failed.
func metadataFallback(desc vision.Description, lang models.Language) string {
	if desc.Err != nil {
		return i18n.T("photo_fallback", lang)
	}
	if lang == models.LanguageRussian {
		return fmt.Sprintf(`Анализ изображения (базовый)

Техническая информация:
• Формат: %s
• Размеры: %dx%d пикселей
• Цветовой режим: %s

Рекомендации:
• Для профессионального анализа попробуйте отправить изображение еще раз
• Или опишите, что хотели бы узнать об этом интерьере
• Готов дать профессиональные советы по дизайну`, desc.Format, desc.Width, desc.Height, desc.ColorMode)
	}
	return fmt.Sprintf(`Image Analysis (basic)

Technical information:
• Format: %s
• Dimensions: %dx%d pixels
• Color mode: %s

Recommendations:
• For professional analysis, try sending the image again
• Or describe what you would like to know about this interior
• I'm ready to give professional design advice`, desc.Format, desc.Width, desc.Height, desc.ColorMode)
}
