package model

import "time"

const (
	CategoryLocal    = "Local"
	CategoryBusiness = "Business"
	CategoryGlobal   = "Global"
	CategorySports   = "Sports"
	CategoryTech     = "Tech"
	CategoryGeneral  = "General"
)

// DefaultCategories is the category set an aggregation run covers when
// the caller does not supply its own.
var DefaultCategories = []string{
	CategoryLocal,
	CategoryBusiness,
	CategoryGlobal,
	CategorySports,
	CategoryTech,
	CategoryGeneral,
}

// DateKey is the run date format used in document-store paths.
const DateKey = "2006-01-02"

// Article is one news item inside an aggregation run. Identity is ID;
// articles are immutable once created.
type Article struct {
	ID        string     `json:"id"`
	Category  string     `json:"category"`
	Headline  string     `json:"headline"`
	Detail    string     `json:"detail"`
	Source    string     `json:"source"`
	URL       string     `json:"url,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// AggregationRun is one batch of category-labeled articles for a given
// date and country. At most one run exists per (date, country) key.
type AggregationRun struct {
	Date       string               `json:"date"`
	Country    string               `json:"country"`
	Categories map[string][]Article `json:"categories"`
	CreatedAt  time.Time            `json:"createdAt"`
}

// TotalArticles counts items across every category of the run.
func (r *AggregationRun) TotalArticles() int {
	total := 0
	for _, articles := range r.Categories {
		total += len(articles)
	}
	return total
}

// RunRef identifies a persisted run without carrying its payload.
type RunRef struct {
	Country string `json:"country"`
	Date    string `json:"date"`
}
