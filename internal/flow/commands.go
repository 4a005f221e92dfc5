package flow

import (
	"fmt"
	"strings"

	"github.com/ateliergo/atelier/internal/models"
)

func welcomeText(p models.Profile, lang models.Language) string {
	if p.SurveyCompleted {
		if lang == models.LanguageRussian {
			return `🏗️ Добро пожаловать!

Я - ваш персональный профессиональный архитектор и дизайнер интерьеров с 20+ летним опытом работы в проектах премиум-класса.

✅ Ваш дизайнерский профиль готов!
Теперь я знаю ваши предпочтения и могу давать профессиональные советы по дизайну интерьера.

🚀 Что я могу для вас сделать:
• Дать профессиональные советы по планировке
• Проанализировать фотографии интерьеров
• Рекомендовать материалы и цветовые решения
• Помочь с выбором мебели и декора
• Ответить на любые вопросы по дизайну

💡 Просто напишите ваш вопрос или отправьте фото интерьера!

📊 Посмотреть ваш профиль: /status
🔄 Сбросить данные: /restart
❓ Справка: /help`
		}
		return `🏗️ Welcome back!

I'm your personal professional architect and interior designer with 20+ years of premium project experience.

✅ Your design profile is ready!
I know your preferences and can give tailored professional interior design advice.

🚀 What I can do for you:
• Give professional layout advice
• Analyze interior photos
• Recommend materials and color solutions
• Help choose furniture and decor
• Answer any design question

💡 Just write your question or send an interior photo!

📊 View your profile: /status
🔄 Reset your data: /restart
❓ Help: /help`
	}

	if lang == models.LanguageRussian {
		return `🏗️ Добро пожаловать!

Я - ваш персональный профессиональный архитектор и дизайнер интерьеров с 20+ летним опытом работы.

🎨 Мои профессиональные возможности:
• Анализ интерьеров и архитектуры
• Консультации по планировке и дизайну
• Рекомендации по материалам и цветам
• Советы по функциональности пространства
• Ответы на любые вопросы по дизайну

💡 Для получения персонализированных советов рекомендую пройти тест по дизайну интерьера.

📊 Тест включает 15 вопросов:
• Стилевые предпочтения
• Пространственные решения
• Функциональность
• Бюджет и время
• Образ жизни

🚀 Начать тест: /test
📖 Справка: /help

Просто напишите ваш вопрос или отправьте фото интерьера для профессионального анализа!`
	}
	return `🏗️ Welcome!

I'm your personal professional architect and interior designer with 20+ years of experience.

🎨 My professional capabilities:
• Interior and architecture analysis
• Layout and design consultations
• Material and color recommendations
• Space functionality advice
• Answers to any design question

💡 For personalized advice, I recommend taking the interior design survey.

📊 The survey covers 15 questions:
• Style preferences
• Spatial solutions
• Functionality
• Budget and time
• Lifestyle

🚀 Start the survey: /survey
📖 Help: /help

Just write your question or send an interior photo for professional analysis!`
}

func helpText(lang models.Language) string {
	if lang == models.LanguageRussian {
		return `🏗️ Помощь по использованию профессионального архитектора и дизайнера интерьеров

Основные команды:
/start - Начать работу с ботом
/test - Пройти профессиональный тест по дизайну интерьера (русский)
/survey - Пройти профессиональный тест по дизайну интерьера (английский)
/status - Посмотреть ваш дизайнерский профиль
/restart - Сбросить все данные и начать заново
/help - Показать эту справку

Что умеет профессиональный архитектор:
📸 Анализировать фотографии интерьеров и архитектуры
💬 Отвечать на вопросы по дизайну на русском и английском
🎯 Давать персонализированные профессиональные советы
💾 Запоминать историю разговора и контекст
🏗️ Консультировать по планировке и материалам

Как использовать:
1. Отправьте текст - получите профессиональный совет от архитектора
2. Отправьте фото интерьера - получите профессиональный анализ
3. Пройдите тест для персонализации дизайнерских советов
4. Используйте /restart для сброса данных

Поддерживаемые языки: Русский, Английский`
	}
	return `🏗️ How to use the professional architect and interior designer

Main commands:
/start - Begin working with the assistant
/test - Take the professional interior design survey (Russian)
/survey - Take the professional interior design survey (English)
/status - View your design profile
/restart - Reset all data and start over
/help - Show this help

What the professional architect can do:
📸 Analyze interior and architecture photos
💬 Answer design questions in Russian and English
🎯 Give personalized professional advice
💾 Remember conversation history and context
🏗️ Consult on layouts and materials

How to use:
1. Send text - get professional architect advice
2. Send an interior photo - get professional analysis
3. Take the survey to personalize design advice
4. Use /restart to reset your data

Supported languages: Russian, English`
}

func statusText(p models.Profile, lang models.Language) string {
	if !p.SurveyCompleted {
		if lang == models.LanguageRussian {
			return `📊 Ваш дизайнерский профиль

❌ Профессиональный тест по дизайну интерьера не пройден

💡 Для получения профессиональных дизайнерских советов пройдите тест командой /test

🎨 Тест включает 15 профессиональных вопросов:
• Стилевые предпочтения (3 вопроса)
• Пространственные решения (3 вопроса)
• Функциональность (3 вопроса)
• Бюджет и время (3 вопроса)
• Образ жизни (3 вопроса)

🔄 Если хотите начать заново, используйте команду /restart`
		}
		return `📊 Your design profile

❌ The professional interior design survey is not completed

💡 For professional design advice, take the survey with /survey

🎨 The survey covers 15 professional questions:
• Style preferences (3 questions)
• Spatial solutions (3 questions)
• Functionality (3 questions)
• Budget and time (3 questions)
• Lifestyle (3 questions)

🔄 To start over, use /restart`
	}

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
		return fmt.Sprintf(`📊 Ваш профессиональный дизайнерский профиль

✅ Профессиональный тест по дизайну интерьера пройден

🎨 Стилевые предпочтения:
• Стиль: %s
• Цвета: %s
• Материалы: %s

🏠 Пространственные решения:
• Тип пространства: %s
• Приоритетные помещения: %s
• Планировка: %s

⚙️ Функциональность:
• Функции: %s
• Освещение: %s
• Хранение: %s

💰 Проектные параметры:
• Бюджет: %s
• Время: %s
• Приоритеты: %s

🌟 Образ жизни:
• Образ жизни: %s
• Семейные потребности: %s
• Личные акценты: %s

💡 Теперь я могу давать вам профессиональные дизайнерские советы на основе ваших предпочтений!

🔄 Если хотите начать заново, используйте команду /restart`,
			get(models.KeyPreferredStyle), get(models.KeyColorPreference), get(models.KeyMaterialPreference),
			get(models.KeySpaceType), get(models.KeyRoomPreference), get(models.KeyLayoutStyle),
			get(models.KeyFunctionalityPreference), get(models.KeyLightingPreference), get(models.KeyStoragePreference),
			get(models.KeyBudgetRange), get(models.KeyTimeline), get(models.KeyProjectPriority),
			get(models.KeyLifestyle), get(models.KeyFamilyNeeds), get(models.KeyPersonalTouch))
	}

	return fmt.Sprintf(`📊 Your professional design profile

✅ The professional interior design survey is completed

🎨 Style preferences:
• Style: %s
• Colors: %s
• Materials: %s

🏠 Spatial solutions:
• Space type: %s
• Priority rooms: %s
• Layout: %s

⚙️ Functionality:
• Functions: %s
• Lighting: %s
• Storage: %s

💰 Project parameters:
• Budget: %s
• Timeline: %s
• Priorities: %s

🌟 Lifestyle:
• Lifestyle: %s
• Family needs: %s
• Personal touch: %s

💡 I can now give you professional design advice based on your preferences!

🔄 To start over, use /restart`,
		get(models.KeyPreferredStyle), get(models.KeyColorPreference), get(models.KeyMaterialPreference),
		get(models.KeySpaceType), get(models.KeyRoomPreference), get(models.KeyLayoutStyle),
		get(models.KeyFunctionalityPreference), get(models.KeyLightingPreference), get(models.KeyStoragePreference),
		get(models.KeyBudgetRange), get(models.KeyTimeline), get(models.KeyProjectPriority),
		get(models.KeyLifestyle), get(models.KeyFamilyNeeds), get(models.KeyPersonalTouch))
}

// commandName extracts the command verb from a slash-prefixed message.
func commandName(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	fields := strings.Fields(text)
	return strings.ToLower(strings.TrimPrefix(fields[0], "/"))
}
