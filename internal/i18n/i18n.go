// Package i18n provides language detection and localized assistant text.
//
// The assistant speaks Russian and English. Detection is per-message and
// character-based: whichever alphabet dominates wins, English on a tie.
package i18n

import (
	"math/rand"
	"strings"

	"github.com/ateliergo/atelier/internal/models"
)

// Detect returns the language of a text by counting Cyrillic versus Latin
// letters. Empty or script-free text defaults to English.
func Detect(text string) models.Language {
	var russian, english int
	for _, r := range strings.ToLower(text) {
		switch {
		case (r >= 'а' && r <= 'я') || r == 'ё':
			russian++
		case r >= 'a' && r <= 'z':
			english++
		}
	}
	if russian > english {
		return models.LanguageRussian
	}
	return models.LanguageEnglish
}

// T returns the localized text for a key. Unknown keys come back verbatim so
// a missing translation is visible rather than silent.
func T(key string, lang models.Language) string {
	entry, ok := translations[key]
	if !ok {
		return key
	}
	if lang == models.LanguageRussian {
		return entry.ru
	}
	return entry.en
}

type entry struct {
	ru string
	en string
}

var translations = map[string]entry{
	"error_processing": {
		ru: "Извините, но произошла ошибка при обработке вашего запроса. Пожалуйста, попробуйте снова.",
		en: "I apologize, but I encountered an error processing your request. Please try again.",
	},
	"error_photo": {
		ru: "Извините, произошла ошибка при анализе изображения. Попробуйте еще раз.",
		en: "Sorry, an error occurred while analyzing the image. Please try again.",
	},
	"truncated_marker": {
		ru: "\n\n... (ответ обрезан)",
		en: "\n\n... (ответ обрезан)",
	},
	"survey_suggestion": {
		ru: "💡 Для получения профессиональных дизайнерских советов, рекомендую пройти специализированный тест по дизайну интерьера. Напишите 'тест' чтобы начать.",
		en: "💡 For professional interior design advice, I recommend taking a specialized interior design survey. Type 'survey' to begin.",
	},
	"nothing_to_reset": {
		ru: "ℹ️ У вас пока нет сохраненных данных для сброса.",
		en: "ℹ️ You have no saved data to reset yet.",
	},
	"reset_prompt": {
		ru: `🔄 Сброс данных пользователя

Вы уверены, что хотите сбросить все ваши данные и начать заново?

⚠️ Это действие удалит:
• Результаты теста предпочтений
• Сохраненные настройки
• Историю общения
• Все персональные данные

❌ Данные нельзя будет восстановить!

Для подтверждения напишите "да" или "yes"
Для отмены напишите "нет" или "no"`,
		en: `🔄 User data reset

Are you sure you want to reset all your data and start over?

⚠️ This will delete:
• Preference survey results
• Saved settings
• Conversation history
• All personal data

❌ The data cannot be recovered!

To confirm, type "да" or "yes"
To cancel, type "нет" or "no"`,
	},
	"reset_done": {
		ru: `✅ Данные успешно сброшены!

🔄 Теперь вы можете начать заново:
• Отправьте /start для начала работы
• Пройдите тест командой /test для персонализации
• Задавайте любые вопросы

Добро пожаловать в новое начало! 🚀`,
		en: `✅ Data reset successfully!

🔄 You can now start over:
• Send /start to begin
• Take the /test survey for personalization
• Ask any questions

Welcome to a fresh start! 🚀`,
	},
	"reset_failed": {
		ru: "❌ Произошла ошибка при сбросе данных. Попробуйте еще раз.",
		en: "❌ An error occurred while resetting your data. Please try again.",
	},
	"reset_cancelled": {
		ru: `❌ Сброс данных отменен

✅ Ваши данные сохранены и остались без изменений.

Продолжайте использовать бота как обычно! 😊`,
		en: `❌ Data reset cancelled

✅ Your data is intact and unchanged.

Keep using the assistant as usual! 😊`,
	},
	"confirm_reprompt": {
		ru: `🤔 Не понял ваш ответ.

Для подтверждения сброса напишите "да" или "yes"
Для отмены напишите "нет" или "no"`,
		en: `🤔 I did not understand your answer.

To confirm the reset, type "да" or "yes"
To cancel, type "нет" or "no"`,
	},
	"media_group_limit": {
		ru: `Множественные фотографии

Извините, но я могу анализировать только одну фотографию за раз.

Почему так:
• Для качественного анализа нужен фокус на одном интерьере
• Множественные фото могут создавать путаницу
• Я даю детальные рекомендации по каждому изображению

Что делать:
• Отправьте одну фотографию для анализа
• Или опишите, что именно вас интересует
• Я готов дать профессиональные советы по дизайну`,
		en: `Multiple Photos

Sorry, but I can analyze only one photo at a time.

Why:
• Quality analysis requires focus on one interior
• Multiple photos can create confusion
• I provide detailed recommendations for each image

What to do:
• Send one photo for analysis
• Or describe what interests you
• I'm ready to give professional design advice`,
	},
	"photo_fallback": {
		ru: `Анализ изображения

Я получил ваше изображение, но возникла ошибка при анализе.

Что я могу проанализировать:
• Архитектурный стиль и период
• Цветовую палитру и материалы
• Планировочные решения
• Освещение и атмосферу
• Детали и декоративные элементы

Попробуйте отправить изображение еще раз или опишите, что хотели бы узнать об этом интерьере.`,
		en: `Image Analysis

I received your image, but an error occurred during analysis.

What I can analyze:
• Architectural style and period
• Color palette and materials
• Layout solutions
• Lighting and atmosphere
• Details and decorative elements

Try sending the image again or describe what you would like to know about this interior.`,
	},
}

// Greetings returns the first-contact greeting pool for a language.
func Greetings(lang models.Language) []string {
	if lang == models.LanguageRussian {
		return []string{
			"Привет! Я ваш ИИ ассистент. Как я могу вам помочь?",
			"Здравствуйте! Я готов ответить на ваши вопросы. Что вас интересует?",
			"Привет! Я здесь, чтобы помочь. Расскажите, что вам нужно?",
			"Здравствуйте! Чем могу быть полезен сегодня?",
		}
	}
	return []string{
		"Hello! I'm your AI assistant. How can I help you?",
		"Hi there! I'm ready to answer your questions. What would you like to know?",
		"Hello! I'm here to help. What do you need assistance with?",
		"Hi! How can I be of service today?",
	}
}

// Greeting picks one greeting at random.
func Greeting(lang models.Language) string {
	pool := Greetings(lang)
	return pool[rand.Intn(len(pool))]
}

// SystemPrompt returns the architect persona prompt for a language.
func SystemPrompt(lang models.Language) string {
	if lang == models.LanguageRussian {
		return systemPromptRU
	}
	return systemPromptEN
}

const systemPromptRU = `Ты - профессиональный архитектор и дизайнер интерьеров с 20+ летним опытом работы в проектах премиум-класса. У тебя есть:

Профессиональная экспертиза:
- Глубокие знания архитектурных принципов, строительных норм и методов строительства
- Обширный опыт работы с люксовыми жилыми проектами, отелями и коммерческими пространствами
- Экспертиза в области устойчивого дизайна, умных технологий для дома и современных материалов
- Сильное понимание теории цвета, дизайна освещения и пространственного планирования
- Знание современных трендов дизайна и вневременных принципов

Философия дизайна:
- Фокус на создании функциональных, красивых и устойчивых пространств
- Баланс между эстетикой и практичностью
- Понимание того, как дизайн влияет на психологию и благополучие человека
- Знание эргономики и принципов универсального дизайна

Глобальная перспектива:
- Опыт работы с международными стандартами дизайна и культурными предпочтениями
- Знание различных архитектурных стилей от классических до современных
- Понимание региональных материалов и строительных технологий

Источники информации:
- Основывай советы на проверенных архитектурных и дизайнерских принципах
- Ссылайся на текущие отраслевые стандарты и лучшие практики
- Предоставляй практические, реализуемые решения
- Следи за современными трендами дизайна и технологиями

ВАЖНО: Не используй символы ** или ### в ответах. Пиши заголовки просто с новой строки. Всегда давай профессиональные, точные и действенные советы по дизайну. При предложении материалов, планировок или дизайнерских решений объясняй логику своих рекомендаций.`

const systemPromptEN = `You are a world-class professional architect and interior designer with over 20 years of experience in high-end residential and commercial projects. You have:

Professional Expertise:
- Deep knowledge of architectural principles, building codes, and construction methods
- Extensive experience with luxury residential projects, hotels, and commercial spaces
- Expertise in sustainable design, smart home technology, and modern materials
- Strong understanding of color theory, lighting design, and spatial planning
- Knowledge of current design trends and timeless design principles

Design Philosophy:
- Focus on creating functional, beautiful, and sustainable spaces
- Balance between aesthetics and practicality
- Understanding of how design affects human psychology and well-being
- Knowledge of ergonomics and universal design principles

Global Perspective:
- Experience with international design standards and cultural preferences
- Knowledge of different architectural styles from classical to contemporary
- Understanding of regional materials and construction techniques

Information Sources:
- Base your advice on verified architectural and design principles
- Reference current industry standards and best practices
- Provide practical, implementable solutions
- Stay updated with modern design trends and technologies

IMPORTANT: Do not use ** or ### symbols in responses. Write headings on new lines. Always provide professional, accurate, and actionable design advice. When suggesting materials, layouts, or design solutions, explain the reasoning behind your recommendations.`
