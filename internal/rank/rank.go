// Package rank selects a diverse, relevant subset of articles for a
// user query. It is pure: no I/O, no mutation of its inputs.
package rank

import (
	"sort"
	"strings"
	"time"

	"github.com/kudzimusar/morning-pulse-sub002/internal/model"
)

const (
	// DefaultTopK bounds the diversified result set.
	DefaultTopK = 10

	// CategoryCap limits how many items a single category may place in
	// the result, so one dominant category cannot crowd out a narrower
	// but relevant hit elsewhere.
	CategoryCap = 2

	minTokenLen = 3
)

// Weights are the additive scoring signals. The values are empirically
// tuned defaults, kept adjustable rather than hard law.
type Weights struct {
	PhraseMatch   int
	HeadlineToken int
	DetailToken   int
	CategoryToken int
	RecentDay     int
	RecentWeek    int
}

var DefaultWeights = Weights{
	PhraseMatch:   10,
	HeadlineToken: 3,
	DetailToken:   1,
	CategoryToken: 1,
	RecentDay:     2,
	RecentWeek:    1,
}

// scoredCandidate exists only during ranking; it is never persisted.
type scoredCandidate struct {
	article  model.Article
	score    int
	category string
}

// Rank scores every article in the corpus against the query, drops
// zero-score items, caps each category at CategoryCap, and returns the
// global top-K by score. Equal-score order is stable across runs.
func Rank(query string, corpus map[string][]model.Article, topK int) []model.Article {
	return RankAt(query, corpus, topK, DefaultWeights, time.Now())
}

// RankAt is Rank with the clock and weights injected.
func RankAt(query string, corpus map[string][]model.Article, topK int, w Weights, now time.Time) []model.Article {
	if topK <= 0 {
		topK = DefaultTopK
	}

	loweredQuery := strings.ToLower(strings.TrimSpace(query))
	tokens := queryTokens(loweredQuery)

	// Sorted category order keeps output deterministic across runs
	// despite map iteration.
	categories := make([]string, 0, len(corpus))
	for name := range corpus {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	var survivors []scoredCandidate
	for _, category := range categories {
		group := make([]scoredCandidate, 0, len(corpus[category]))
		for _, article := range corpus[category] {
			score := scoreArticle(article, category, loweredQuery, tokens, w, now)
			if score == 0 {
				continue
			}
			group = append(group, scoredCandidate{article: article, score: score, category: category})
		}

		sort.SliceStable(group, func(i, j int) bool {
			return group[i].score > group[j].score
		})

		if len(group) > CategoryCap {
			group = group[:CategoryCap]
		}
		survivors = append(survivors, group...)
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].score > survivors[j].score
	})

	if len(survivors) > topK {
		survivors = survivors[:topK]
	}

	ranked := make([]model.Article, len(survivors))
	for i, c := range survivors {
		ranked[i] = c.article
	}
	return ranked
}

func scoreArticle(a model.Article, category, loweredQuery string, tokens []string, w Weights, now time.Time) int {
	headline := strings.ToLower(a.Headline)
	detail := strings.ToLower(a.Detail)
	categoryLabel := strings.ToLower(category)

	score := 0

	if loweredQuery != "" && strings.Contains(headline, loweredQuery) {
		score += w.PhraseMatch
	}

	for _, token := range tokens {
		if strings.Contains(headline, token) {
			score += w.HeadlineToken
		}
		if strings.Contains(detail, token) {
			score += w.DetailToken
		}
		if strings.Contains(categoryLabel, token) {
			score += w.CategoryToken
		}
	}

	// No timestamp means age-unknown, not age-zero.
	if a.Timestamp != nil {
		age := now.Sub(*a.Timestamp)
		switch {
		case age < 24*time.Hour:
			score += w.RecentDay
		case age < 168*time.Hour:
			score += w.RecentWeek
		}
	}

	return score
}

func queryTokens(loweredQuery string) []string {
	fields := strings.Fields(loweredQuery)
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) >= minTokenLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
