// Package aggregator fans out one generation request per news category
// and merges the results into a dated run document.
package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kudzimusar/morning-pulse-sub002/internal/model"
	"github.com/kudzimusar/morning-pulse-sub002/internal/retry"
	"github.com/kudzimusar/morning-pulse-sub002/internal/store"
	"github.com/kudzimusar/morning-pulse-sub002/pkg/llm"
)

const (
	headlinesPerCategory = 5
	maxAttempts          = 3
	retryDelay           = 2 * time.Second
)

// ErrAllCategoriesEmpty means every category came back empty after
// retries. The run is failed closed: nothing is persisted, so a good
// prior day is never overwritten by an empty one.
var ErrAllCategoriesEmpty = errors.New("aggregator: every category returned empty")

type Service struct {
	llm      llm.Client
	docs     store.DocumentStore
	attempts int
	delay    time.Duration
}

func New(llmClient llm.Client, docs store.DocumentStore) *Service {
	return &Service{
		llm:      llmClient,
		docs:     docs,
		attempts: maxAttempts,
		delay:    retryDelay,
	}
}

// Run requests headlines for every category concurrently, waits for
// all of them to settle, and persists whatever was collected. Partial
// failure is not an error: a category exhausted of retries maps to an
// empty list, and the run proceeds with the rest.
func (s *Service) Run(ctx context.Context, categories []string, country string) (*model.AggregationRun, error) {
	if len(categories) == 0 {
		categories = model.DefaultCategories
	}

	results := make([][]model.Article, len(categories))

	var wg sync.WaitGroup
	for i, category := range categories {
		wg.Add(1)
		go func(slot int, category string) {
			defer wg.Done()

			articles, err := retry.Do(ctx, func() ([]model.Article, error) {
				return s.fetchCategory(ctx, category, country)
			}, retry.Options{
				Attempts: s.attempts,
				Delay:    s.delay,
				Label:    "aggregate:" + category,
			})
			if err != nil {
				slog.Error("category failed after retries", "category", category, "error", err)
				articles = nil
			}
			results[slot] = articles
		}(i, category)
	}
	wg.Wait()

	now := time.Now().UTC()
	run := &model.AggregationRun{
		Date:       now.Format(model.DateKey),
		Country:    country,
		Categories: make(map[string][]model.Article, len(categories)),
		CreatedAt:  now,
	}

	// Every requested category becomes a key, empty or not.
	for i, category := range categories {
		if results[i] == nil {
			results[i] = []model.Article{}
		}
		run.Categories[category] = results[i]
	}

	if run.TotalArticles() == 0 {
		return nil, ErrAllCategoriesEmpty
	}

	if err := s.docs.SetRun(ctx, run, false); err != nil {
		return nil, fmt.Errorf("aggregator: persist run: %w", err)
	}

	slog.Info("aggregation run persisted",
		"date", run.Date,
		"country", run.Country,
		"categories", len(run.Categories),
		"articles", run.TotalArticles(),
	)
	return run, nil
}

type rawHeadline struct {
	Headline string `json:"headline"`
	Detail   string `json:"detail"`
	Source   string `json:"source"`
	URL      string `json:"url"`
}

// fetchCategory asks the model for structured headlines. Responses are
// not trusted: fences are stripped and a parse failure is returned as
// a retryable error, since the usual cause is model nondeterminism.
func (s *Service) fetchCategory(ctx context.Context, category, country string) ([]model.Article, error) {
	text, err := s.llm.Generate(ctx, llm.Request{Prompt: categoryPrompt(category, country)})
	if err != nil {
		return nil, err
	}

	var items []rawHeadline
	if err := json.Unmarshal([]byte(llm.CleanJSON(text)), &items); err != nil {
		return nil, fmt.Errorf("parse headlines for %s: %w", category, err)
	}

	now := time.Now().UTC()
	articles := make([]model.Article, 0, len(items))
	for _, item := range items {
		if item.Headline == "" {
			continue
		}
		articles = append(articles, model.Article{
			ID:        uuid.NewString(),
			Category:  category,
			Headline:  item.Headline,
			Detail:    item.Detail,
			Source:    item.Source,
			URL:       item.URL,
			Timestamp: &now,
		})
	}

	return articles, nil
}

func categoryPrompt(category, country string) string {
	return fmt.Sprintf(`Generate the %d most important %s news headlines for %s today.

Respond with ONLY a JSON array, no markdown fences and no other text:
[
  {"headline": "...", "detail": "...", "source": "...", "url": "..."}
]

Rules:
- "headline" is one factual sentence
- "detail" is two to three sentences of supporting detail
- "source" is the publication name
- "url" is the article link if known, otherwise an empty string`,
		headlinesPerCategory, category, country)
}
