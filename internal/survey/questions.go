package survey

import (
	"github.com/ateliergo/atelier/internal/models"
)

// Question is one step of the interior design questionnaire.
type Question struct {
	Key      models.QuestionKey
	PromptRU string
	PromptEN string
}

// Style describes one of the six selectable design styles offered by the
// first question.
type Style struct {
	ID          string
	LabelRU     string
	LabelEN     string
	NameRU      string
	Description string
}

// Styles lists the selectable design styles in presentation order.
var Styles = []Style{
	{
		ID:          "modern",
		LabelRU:     "🏗️ Современный",
		LabelEN:     "🏗️ Modern",
		NameRU:      "Современный (Modern)",
		Description: "Чистые линии, минимализм, функциональность",
	},
	{
		ID:          "classic",
		LabelRU:     "👑 Классический",
		LabelEN:     "👑 Classic",
		NameRU:      "Классический (Classic)",
		Description: "Элегантность, традиции, роскошь",
	},
	{
		ID:          "scandinavian",
		LabelRU:     "🌲 Скандинавский",
		LabelEN:     "🌲 Scandinavian",
		NameRU:      "Скандинавский (Scandinavian)",
		Description: "Светлость, натуральные материалы, уют",
	},
	{
		ID:          "industrial",
		LabelRU:     "⚙️ Индустриальный",
		LabelEN:     "⚙️ Industrial",
		NameRU:      "Индустриальный (Industrial)",
		Description: "Открытые коммуникации, металл и бетон, лофт-эстетика",
	},
	{
		ID:          "rustic",
		LabelRU:     "🪵 Рустик",
		LabelEN:     "🪵 Rustic",
		NameRU:      "Рустик (Rustic)",
		Description: "Натуральность и теплота, деревенский шарм",
	},
	{
		ID:          "contemporary",
		LabelRU:     "🎭 Современный эклектичный",
		LabelEN:     "🎭 Contemporary",
		NameRU:      "Современный эклектичный (Contemporary)",
		Description: "Смешение стилей, индивидуальность, современные тренды",
	},
}

// StyleByID returns a style by its identifier, matching case-insensitively in
// the caller.
func StyleByID(id string) (Style, bool) {
	for _, s := range Styles {
		if s.ID == id {
			return s, true
		}
	}
	return Style{}, false
}

// StyleOptions renders the selectable styles as reply options.
func StyleOptions(lang models.Language) []models.Option {
	opts := make([]models.Option, 0, len(Styles))
	for _, s := range Styles {
		label := s.LabelEN
		if lang == models.LanguageRussian {
			label = s.LabelRU
		}
		opts = append(opts, models.Option{Label: label, Data: s.ID})
	}
	return opts
}

// Questions lists the fifteen questionnaire steps in order. The first step is
// a discrete style choice; the rest accept free text.
var Questions = []Question{
	{
		Key: models.KeyPreferredStyle,
		PromptRU: `🎨 ВОПРОС 1: Выберите ваш любимый стиль дизайна

Каждый стиль имеет свои уникальные характеристики:

🏗️ Современный (Modern)
• Чистые линии и минимализм
• Функциональность превыше всего
• Открытые пространства

👑 Классический (Classic)
• Элегантность и традиции
• Роскошные материалы
• Симметричные композиции

🌲 Скандинавский (Scandinavian)
• Светлость и простота
• Натуральные материалы
• Уютная атмосфера

⚙️ Индустриальный (Industrial)
• Открытые коммуникации
• Металл и бетон
• Лофт-эстетика

🪵 Рустик (Rustic)
• Натуральность и теплота
• Деревенский шарм
• Текстурированные материалы

🎭 Современный эклектичный (Contemporary)
• Смешение стилей
• Индивидуальность
• Современные тренды

Выберите стиль, который больше всего отражает ваши предпочтения:`,
		PromptEN: `🎨 QUESTION 1: Choose your favorite design style

Each style has its own character:

🏗️ Modern — clean lines, minimalism, open spaces
👑 Classic — elegance, traditions, luxury materials
🌲 Scandinavian — light, natural materials, cozy atmosphere
⚙️ Industrial — exposed structure, metal and concrete, loft aesthetics
🪵 Rustic — natural warmth, country charm, textured materials
🎭 Contemporary — mixed styles, individuality, current trends

Pick the style that best reflects your preferences:`,
	},
	{
		Key: models.KeyColorPreference,
		PromptRU: `🎨 ВОПРОС 2: Цветовая палитра

Какие цвета вызывают у вас положительные эмоции?

🌞 Теплые тона — бежевый, терракотовый, желтый
❄️ Холодные тона — белый, серый, голубой, зеленый
🌈 Яркие акценты — красный, бирюзовый, оранжевый
🎭 Монохромные — оттенки одного цвета, черно-белая гамма

Напишите, какие цвета вам нравятся больше всего, или выберите палитру из списка выше.`,
		PromptEN: `🎨 QUESTION 2: Color palette

Which colors evoke positive emotions for you?

🌞 Warm tones — beige, terracotta, yellow
❄️ Cool tones — white, gray, blue, green
🌈 Bright accents — red, turquoise, orange
🎭 Monochrome — shades of one color, black and white

Tell me which colors you like most, or pick a palette from the list above.`,
	},
	{
		Key: models.KeyMaterialPreference,
		PromptRU: `🏗️ ВОПРОС 3: Материалы и текстуры

Какие материалы вызывают у вас приятные тактильные ощущения?

🌳 Натуральные — дерево, камень, лен, кожа
🔧 Современные — металл, стекло, бетон, керамика
💎 Роскошные — мрамор, шелк, бархат, хрусталь

Напишите, какие материалы вам нравятся, или выберите категорию из списка выше.`,
		PromptEN: `🏗️ QUESTION 3: Materials and textures

Which materials feel pleasant to you?

🌳 Natural — wood, stone, linen, leather
🔧 Modern — metal, glass, concrete, ceramics
💎 Luxury — marble, silk, velvet, crystal

Tell me which materials you like, or pick a category from the list above.`,
	},
	{
		Key: models.KeySpaceType,
		PromptRU: `🏠 ВОПРОС 4: Тип пространства

Какой тип жилого пространства вы планируете обустраивать?

🏡 Частный дом — больше возможностей, связь с природой
🏢 Квартира — компактность, городская среда
🏰 Пентхаус/Лофт — высота, открытые пространства

Напишите, какой тип жилого пространства вас интересует, или выберите из списка выше.`,
		PromptEN: `🏠 QUESTION 4: Space type

What kind of living space are you planning to design?

🏡 House — more layout freedom, connection to nature
🏢 Apartment — compact, urban environment
🏰 Penthouse/Loft — height, open spaces

Tell me what type of space you have in mind, or pick one from the list above.`,
	},
	{
		Key: models.KeyRoomPreference,
		PromptRU: `🚪 ВОПРОС 5: Приоритетные помещения

Какие помещения для вас наиболее важны?

🛋️ Гостиная — центр семейной жизни
🍽️ Кухня — приготовление пищи, социальное пространство
🛏️ Спальня — отдых и личное пространство
🛁 Ванная комната — утренние процедуры, расслабление
🏠 Прихожая — первое впечатление, хранение вещей

Напишите, какие помещения для вас приоритетны, или выберите из списка выше.`,
		PromptEN: `🚪 QUESTION 5: Priority rooms

Which rooms matter most to you?

🛋️ Living room — center of family life
🍽️ Kitchen — cooking and social space
🛏️ Bedroom — rest and privacy
🛁 Bathroom — morning routine, relaxation
🏠 Hallway — first impression, storage

Tell me which rooms are your priority, or pick from the list above.`,
	},
	{
		Key: models.KeyLayoutStyle,
		PromptRU: `📐 ВОПРОС 6: Стиль планировки

Какой стиль планировки вам больше нравится?

🏠 Открытая планировка — минимум перегородок, светлые пространства
🚪 Зонированная — четкое разделение функций, приватность
🔄 Гибкая — трансформируемые, многофункциональные пространства

Напишите, какой стиль планировки вам больше подходит, или выберите из списка выше.`,
		PromptEN: `📐 QUESTION 6: Layout style

Which layout style do you prefer?

🏠 Open plan — minimal partitions, light-filled spaces
🚪 Zoned — clear separation of functions, privacy
🔄 Flexible — transformable, multifunctional spaces

Tell me which layout suits you best, or pick from the list above.`,
	},
	{
		Key: models.KeyFunctionalityPreference,
		PromptRU: `⚙️ ВОПРОС 7: Функциональные потребности

Какие функции для вас наиболее важны?

💻 Технологичность — умный дом, автоматизация, медиа-системы
📚 Хранение — встроенные шкафы, организация вещей
🌱 Экологичность — натуральные материалы, энергосбережение

Напишите, какие функции для вас приоритетны, или выберите из списка выше.`,
		PromptEN: `⚙️ QUESTION 7: Functional needs

Which functions matter most to you?

💻 Technology — smart home, automation, media systems
📚 Storage — built-in wardrobes, organization
🌱 Sustainability — natural materials, energy saving

Tell me which functions are your priority, or pick from the list above.`,
	},
	{
		Key: models.KeyLightingPreference,
		PromptRU: `💡 ВОПРОС 8: Предпочтения в освещении

Какой тип освещения вам больше нравится?

☀️ Естественное — большие окна, светлые тона
💡 Искусственное — точечные светильники, подсветка, бра
🌅 Комбинированное — сценарии освещения, автоматика

Напишите, какой тип освещения вам больше подходит, или выберите из списка выше.`,
		PromptEN: `💡 QUESTION 8: Lighting preferences

What kind of lighting do you prefer?

☀️ Natural — large windows, light tones
💡 Artificial — spotlights, accent lighting, sconces
🌅 Combined — lighting scenarios, automation

Tell me which lighting suits you best, or pick from the list above.`,
	},
	{
		Key: models.KeyStoragePreference,
		PromptRU: `🗄️ ВОПРОС 9: Системы хранения

Какие системы хранения вам нужны?

📦 Встроенные — шкафы, ниши, скрытое хранение
🎨 Декоративные — открытые полки, стеллажи, корзины
🔒 Функциональные — гардеробные, кладовые

Напишите, какие системы хранения вам нужны, или выберите из списка выше.`,
		PromptEN: `🗄️ QUESTION 9: Storage systems

What storage do you need?

📦 Built-in — wardrobes, niches, hidden storage
🎨 Decorative — open shelves, racks, baskets
🔒 Functional — walk-in closets, pantries

Tell me what storage you need, or pick from the list above.`,
	},
	{
		Key: models.KeyBudgetRange,
		PromptRU: `💰 ВОПРОС 10: Бюджетный диапазон

Какой бюджет вы планируете на проект?

💸 Экономный (до $50,000) — базовые материалы, простые решения
💵 Средний ($50,000 - $150,000) — качественные материалы, дизайнерская мебель
💎 Премиум ($150,000+) — люксовые материалы, индивидуальные решения

Напишите ваш бюджетный диапазон или выберите категорию из списка выше.`,
		PromptEN: `💰 QUESTION 10: Budget range

What budget are you planning for the project?

💸 Economy (up to $50,000) — basic materials, simple solutions
💵 Mid-range ($50,000 - $150,000) — quality materials, designer furniture
💎 Premium ($150,000+) — luxury materials, custom solutions

Tell me your budget range or pick a category from the list above.`,
	},
	{
		Key: models.KeyTimeline,
		PromptRU: `⏰ ВОПРОС 11: Временные рамки

Какие временные рамки у вашего проекта?

🚀 Срочно (1-3 месяца) — быстрые решения, готовые элементы
📅 Средний срок (3-6 месяцев) — планирование, качественные материалы
🕐 Нет спешки (6+ месяцев) — детальное планирование, максимальное качество

Напишите ваши временные рамки или выберите категорию из списка выше.`,
		PromptEN: `⏰ QUESTION 11: Timeline

What is the timeline of your project?

🚀 Urgent (1-3 months) — quick solutions, ready-made elements
📅 Medium (3-6 months) — planning, quality materials
🕐 No rush (6+ months) — detailed planning, maximum quality

Tell me your timeline or pick a category from the list above.`,
	},
	{
		Key: models.KeyProjectPriority,
		PromptRU: `🎯 ВОПРОС 12: Приоритеты проекта

Что для вас важнее всего в проекте?

🏠 Функциональность — удобство, практичность, эргономика
🎨 Эстетика — красота, стиль, гармония
💰 Экономия — оптимизация бюджета, долговечность

Напишите, что для вас важнее всего, или выберите из списка выше.`,
		PromptEN: `🎯 QUESTION 12: Project priorities

What matters most in your project?

🏠 Functionality — convenience, practicality, ergonomics
🎨 Aesthetics — beauty, style, harmony
💰 Economy — budget optimization, durability

Tell me what matters most to you, or pick from the list above.`,
	},
	{
		Key: models.KeyLifestyle,
		PromptRU: `🌟 ВОПРОС 13: Образ жизни

Какой у вас образ жизни?

🏠 Домашний — много времени дома, уют, приватность
🌍 Активный — путешествия, спорт, социальная активность
💼 Деловой — работа из дома, встречи, функциональность

Напишите, какой у вас образ жизни, или выберите из списка выше.`,
		PromptEN: `🌟 QUESTION 13: Lifestyle

What is your lifestyle like?

🏠 Homebody — lots of time at home, comfort, privacy
🌍 Active — travel, sports, social life
💼 Business — working from home, meetings, functionality

Tell me about your lifestyle, or pick from the list above.`,
	},
	{
		Key: models.KeyFamilyNeeds,
		PromptRU: `👨‍👩‍👧‍👦 ВОПРОС 14: Семейные потребности

Какие у вас семейные потребности?

👤 Один человек — личное пространство, минимализм
👫 Пара — совместное время, гостеприимство
👨‍👩‍👧‍👦 Семья с детьми — безопасность, игровые зоны, практичность
👴 Мультипоколенная семья — доступность, комфорт для всех возрастов

Напишите ваши семейные потребности или выберите из списка выше.`,
		PromptEN: `👨‍👩‍👧‍👦 QUESTION 14: Family needs

What are your family needs?

👤 Single — personal space, minimalism
👫 Couple — shared time, hospitality
👨‍👩‍👧‍👦 Family with kids — safety, play areas, practicality
👴 Multigenerational — accessibility, comfort for all ages

Tell me about your family needs, or pick from the list above.`,
	},
	{
		Key: models.KeyPersonalTouch,
		PromptRU: `🎭 ВОПРОС 15: Личные акценты

Что сделает пространство по-настоящему вашим?

🎨 Хобби и увлечения — творческие зоны, коллекции
🌍 Культурные корни — национальные мотивы, семейные реликвии
💝 Эмоциональные связи — любимые цвета, значимые предметы

Напишите, что сделает пространство по-настоящему вашим, или выберите из списка выше.`,
		PromptEN: `🎭 QUESTION 15: Personal touch

What will make the space truly yours?

🎨 Hobbies — creative zones, collections
🌍 Cultural roots — national motifs, family heirlooms
💝 Emotional ties — favorite colors, meaningful objects

Tell me what will make the space truly yours, or pick from the list above.`,
	},
}

// questionIndex returns the position of a question key, or -1.
func questionIndex(key models.QuestionKey) int {
	for i, q := range Questions {
		if q.Key == key {
			return i
		}
	}
	return -1
}
