package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/kudzimusar/morning-pulse-sub002/internal/model"
)

// Field names seen across document generations. Older writers used
// "news" or bare top-level category keys instead of "categories", and
// several article field spellings.
var reservedRunKeys = map[string]bool{
	"date":       true,
	"country":    true,
	"createdAt":  true,
	"created_at": true,
}

// normalizeRunDocument maps any known document shape into the
// canonical AggregationRun. Country and date come from the path, not
// the payload; payload values are used only when the path is silent.
func normalizeRunDocument(raw map[string]any, country, date string) *model.AggregationRun {
	run := &model.AggregationRun{
		Date:       date,
		Country:    country,
		Categories: map[string][]model.Article{},
	}

	if v, ok := raw["date"].(string); ok && run.Date == "" {
		run.Date = v
	}
	if v, ok := raw["country"].(string); ok && run.Country == "" {
		run.Country = v
	}
	if v, ok := raw["createdAt"].(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			run.CreatedAt = t
		}
	}

	categories := categoriesNode(raw)
	for name, node := range categories {
		items, ok := node.([]any)
		if !ok {
			continue
		}
		articles := make([]model.Article, 0, len(items))
		for _, item := range items {
			fields, ok := item.(map[string]any)
			if !ok {
				continue
			}
			articles = append(articles, normalizeArticle(fields, name))
		}
		run.Categories[name] = articles
	}

	return run
}

// categoriesNode finds the category map wherever this document
// generation put it.
func categoriesNode(raw map[string]any) map[string]any {
	if m, ok := raw["categories"].(map[string]any); ok {
		return m
	}
	if m, ok := raw["news"].(map[string]any); ok {
		return m
	}

	// Oldest shape: category names as top-level keys next to metadata.
	node := map[string]any{}
	for key, value := range raw {
		if reservedRunKeys[key] {
			continue
		}
		if _, ok := value.([]any); ok {
			node[key] = value
		}
	}
	return node
}

func normalizeArticle(fields map[string]any, category string) model.Article {
	a := model.Article{
		ID:       stringField(fields, "id"),
		Category: category,
		Headline: stringField(fields, "headline", "title"),
		Detail:   stringField(fields, "detail", "summary", "description"),
		Source:   stringField(fields, "source"),
		URL:      stringField(fields, "url", "link"),
	}

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if c := stringField(fields, "category"); c != "" {
		a.Category = c
	}

	if raw := stringField(fields, "timestamp", "publishedAt", "date"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			a.Timestamp = &t
		} else if t, err := time.Parse(model.DateKey, raw); err == nil {
			a.Timestamp = &t
		}
	}

	return a
}

func stringField(fields map[string]any, names ...string) string {
	for _, name := range names {
		if v, ok := fields[name].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
