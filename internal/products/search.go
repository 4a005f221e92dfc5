// Package products detects shopping intent in user messages and answers
// specific product questions with marketplace search links instead of an AI
// round trip.
package products

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ateliergo/atelier/internal/models"
)

// Query describes a detected product question.
type Query struct {
	Category string
	Keyword  string
	Product  string
	Language models.Language
	// Specific is true when the user is asking where to buy or what something
	// costs, rather than merely mentioning a product.
	Specific bool
}

// Link is one marketplace search link.
type Link struct {
	Name string
	URL  string
}

type engine struct {
	name     string
	template string
}

var russianEngines = []engine{
	{"Onliner.by", "https://catalog.onliner.by/search?query=%s"},
	{"Deal.by", "https://deal.by/search?q=%s"},
	{"Wildberries", "https://www.wildberries.by/catalog/0/search.aspx?search=%s"},
	{"Ozon", "https://www.ozon.by/search/?text=%s"},
	{"Яндекс.Маркет", "https://market.yandex.ru/search?text=%s"},
}

var englishEngines = []engine{
	{"Amazon", "https://www.amazon.com/s?k=%s"},
	{"Wayfair", "https://www.wayfair.com/search?query=%s"},
	{"West Elm", "https://www.westelm.com/search?q=%s"},
	{"CB2", "https://www.cb2.com/search?q=%s"},
	{"Overstock", "https://www.overstock.com/search?keywords=%s"},
}

var categories = []struct {
	name    string
	russian []string
	english []string
}{
	{
		name:    "furniture",
		russian: []string{"мебель", "диван", "кресло", "стол", "стул", "шкаф", "комод", "кровать"},
		english: []string{"furniture", "sofa", "armchair", "table", "chair", "cabinet", "dresser", "bed"},
	},
	{
		name:    "lighting",
		russian: []string{"освещение", "лампа", "светильник", "люстра", "бра", "торшер"},
		english: []string{"lighting", "lamp", "chandelier", "sconce", "floor lamp"},
	},
	{
		name:    "decor",
		russian: []string{"декор", "картина", "ваза", "подушка", "ковер", "зеркало"},
		english: []string{"decor", "art", "vase", "pillow", "rug", "mirror"},
	},
	{
		name:    "kitchen",
		russian: []string{"кухня", "кухонный гарнитур", "мойка", "плита", "холодильник"},
		english: []string{"kitchen", "kitchen set", "sink", "stove", "refrigerator"},
	},
}

var russianIntentPatterns = compileAll(
	`где купить (.*?)(?:\?|$|\.)`,
	`цена (.*?)(?:\?|$|\.)`,
	`стоимость (.*?)(?:\?|$|\.)`,
	`заказать (.*?)(?:\?|$|\.)`,
	`такой (.*?)(?:\?|$|\.)`,
	`этот (.*?)(?:\?|$|\.)`,
)

var englishIntentPatterns = compileAll(
	`where to buy (.*?)(?:\?|$|\.)`,
	`price of (.*?)(?:\?|$|\.)`,
	`cost of (.*?)(?:\?|$|\.)`,
	`order (.*?)(?:\?|$|\.)`,
	`such (.*?)(?:\?|$|\.)`,
	`this (.*?)(?:\?|$|\.)`,
	`can i buy (.*?)(?:\?|$|\.)`,
	`where can i buy (.*?)(?:\?|$|\.)`,
)

var specificIndicators = []string{
	"где купить", "where to buy", "цена", "price", "стоимость", "cost",
	"заказать", "order", "такой", "such", "этот", "this",
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// Detect reports whether the text asks about a product and, if so, what.
// Returns nil when no product keyword is present.
func Detect(text string, lang models.Language) *Query {
	lower := strings.ToLower(text)
	for _, cat := range categories {
		keywords := cat.english
		if lang == models.LanguageRussian {
			keywords = cat.russian
		}
		for _, keyword := range keywords {
			if !strings.Contains(lower, keyword) {
				continue
			}
			product := extractProduct(text, keyword, lang)
			if product == "" {
				continue
			}
			return &Query{
				Category: cat.name,
				Keyword:  keyword,
				Product:  product,
				Language: lang,
				Specific: isSpecific(lower),
			}
		}
	}
	return nil
}

// extractProduct pulls the product name out of a question. Intent patterns
// win; otherwise the words right after the keyword are taken.
func extractProduct(text, keyword string, lang models.Language) string {
	patterns := englishIntentPatterns
	if lang == models.LanguageRussian {
		patterns = russianIntentPatterns
	}
	for _, p := range patterns {
		if m := p.FindStringSubmatch(text); m != nil {
			name := strings.TrimSpace(m[1])
			if len([]rune(name)) > 2 {
				return name
			}
		}
	}

	lower := strings.ToLower(text)
	idx := strings.Index(lower, keyword)
	if idx >= 0 {
		after := strings.TrimSpace(text[idx+len(keyword):])
		if len([]rune(after)) > 2 {
			words := strings.Fields(after)
			if len(words) > 4 {
				words = words[:4]
			}
			return strings.Join(words, " ")
		}
	}

	// The keyword itself stands as the product when nothing follows it.
	words := strings.Fields(lower)
	for i, word := range words {
		if strings.Contains(word, keyword) {
			start := i - 1
			if start < 0 {
				start = 0
			}
			end := i + 2
			if end > len(words) {
				end = len(words)
			}
			return strings.Join(words[start:end], " ")
		}
	}
	return ""
}

func isSpecific(lower string) bool {
	for _, indicator := range specificIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// Links builds the marketplace search links for a query.
func Links(q *Query) []Link {
	engines := englishEngines
	if q.Language == models.LanguageRussian {
		engines = russianEngines
	}
	escaped := strings.ReplaceAll(q.Product, " ", "+")
	escaped = strings.ReplaceAll(escaped, "&", "and")

	links := make([]Link, 0, len(engines))
	for _, e := range engines {
		links = append(links, Link{Name: e.name, URL: fmt.Sprintf(e.template, escaped)})
	}
	return links
}

// FormatResponse renders the product answer with links and search tips.
func FormatResponse(q *Query, links []Link) string {
	var b strings.Builder
	if q.Language == models.LanguageRussian {
		fmt.Fprintf(&b, "Вот где можно найти %s:\n\nПоисковые системы и магазины:", q.Product)
		for _, l := range links {
			fmt.Fprintf(&b, "\n• %s: %s", l.Name, l.URL)
		}
		b.WriteString(`

Советы по поиску:
• Используйте точное название товара
• Добавьте бренд для более точных результатов
• Сравнивайте цены в разных магазинах
• Обращайте внимание на отзывы и рейтинги

Если нужна помощь с выбором конкретной модели или бренда, опишите подробнее что ищете.`)
		return b.String()
	}

	fmt.Fprintf(&b, "Here's where you can find %s:\n\nSearch engines and stores:", q.Product)
	for _, l := range links {
		fmt.Fprintf(&b, "\n• %s: %s", l.Name, l.URL)
	}
	b.WriteString(`

Search tips:
• Use the exact product name
• Add brand for more accurate results
• Compare prices across different stores
• Pay attention to reviews and ratings

If you need help choosing a specific model or brand, describe in more detail what you're looking for.`)
	return b.String()
}
