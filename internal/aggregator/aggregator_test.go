package aggregator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/kudzimusar/morning-pulse-sub002/internal/model"
	"github.com/kudzimusar/morning-pulse-sub002/pkg/llm"
)

// fakeLLM answers category prompts from a canned map and fails the
// categories listed in failing, counting every call.
type fakeLLM struct {
	mu        sync.Mutex
	responses map[string]string
	failing   map[string]bool
	calls     map[string]int
}

func newFakeLLM() *fakeLLM {
	return &fakeLLM{
		responses: map[string]string{},
		failing:   map[string]bool{},
		calls:     map[string]int{},
	}
}

func (f *fakeLLM) Generate(ctx context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for category := range f.failing {
		if strings.Contains(req.Prompt, category) {
			f.calls[category]++
			return "", errors.New("upstream unavailable")
		}
	}
	for category, response := range f.responses {
		if strings.Contains(req.Prompt, category) {
			f.calls[category]++
			return response, nil
		}
	}
	return "[]", nil
}

func (f *fakeLLM) GenerateStream(ctx context.Context, req llm.Request) (<-chan llm.Chunk, error) {
	ch := make(chan llm.Chunk)
	close(ch)
	return ch, nil
}

func (f *fakeLLM) Name() string { return "fake" }

type fakeDocStore struct {
	mu       sync.Mutex
	saved    *model.AggregationRun
	setCalls int
	err      error
}

func (f *fakeDocStore) GetRun(ctx context.Context, country, date string) (*model.AggregationRun, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDocStore) SetRun(ctx context.Context, run *model.AggregationRun, merge bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls++
	f.saved = run
	return f.err
}

func (f *fakeDocStore) Subscribe(ctx context.Context, onChange func(model.RunRef), onError func(error)) (func(), error) {
	return func() {}, nil
}

func headlinesJSON(category string, n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"headline":"%s story %d","detail":"Detail %d.","source":"Herald","url":"https://example.com/%s/%d"}`,
			category, i+1, i+1, strings.ToLower(category), i+1)
	}
	return "[" + strings.Join(items, ",") + "]"
}

func newTestService(llmClient llm.Client, docs *fakeDocStore) *Service {
	s := New(llmClient, docs)
	s.delay = time.Millisecond
	return s
}

func TestRunPartialFailureStillPersists(t *testing.T) {
	categories := []string{"Local", "Business", "Global", "Sports", "Tech", "General", "Health"}

	fake := newFakeLLM()
	for _, c := range categories[:5] {
		fake.responses[c] = headlinesJSON(c, 5)
	}
	fake.failing["General"] = true
	fake.failing["Health"] = true

	docs := &fakeDocStore{}
	s := newTestService(fake, docs)

	run, err := s.Run(context.Background(), categories, "Zimbabwe")

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, docs.setCalls)
	assert.Equal(t, 7, len(run.Categories))
	assert.Equal(t, 25, run.TotalArticles())
	assert.Equal(t, 0, len(run.Categories["General"]))
	assert.Equal(t, 0, len(run.Categories["Health"]))
	assert.Equal(t, 5, len(run.Categories["Local"]))

	// Failed categories were retried to exhaustion.
	assert.Equal(t, 3, fake.calls["General"])
	assert.Equal(t, 3, fake.calls["Health"])
}

func TestRunTotalFailureWritesNothing(t *testing.T) {
	categories := []string{"Local", "Business"}

	fake := newFakeLLM()
	fake.failing["Local"] = true
	fake.failing["Business"] = true

	docs := &fakeDocStore{}
	s := newTestService(fake, docs)

	run, err := s.Run(context.Background(), categories, "Zimbabwe")

	assert.Equal(t, true, errors.Is(err, ErrAllCategoriesEmpty))
	assert.Equal(t, 0, docs.setCalls)
	if run != nil {
		t.Errorf("expected nil run on total failure, got %+v", run)
	}
}

func TestRunParsesFencedResponses(t *testing.T) {
	fake := newFakeLLM()
	fake.responses["Local"] = "```json\n" + headlinesJSON("Local", 2) + "\n```"

	docs := &fakeDocStore{}
	s := newTestService(fake, docs)

	run, err := s.Run(context.Background(), []string{"Local"}, "Zimbabwe")

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(run.Categories["Local"]))
}

func TestRunMalformedResponseIsRetried(t *testing.T) {
	fake := newFakeLLM()
	fake.responses["Local"] = "I could not produce headlines today, sorry."

	docs := &fakeDocStore{}
	s := newTestService(fake, docs)

	_, err := s.Run(context.Background(), []string{"Local"}, "Zimbabwe")

	assert.Equal(t, true, errors.Is(err, ErrAllCategoriesEmpty))
	assert.Equal(t, 3, fake.calls["Local"])
	assert.Equal(t, 0, docs.setCalls)
}

func TestRunTagsArticlesWithCategoryAndUniqueIDs(t *testing.T) {
	fake := newFakeLLM()
	fake.responses["Local"] = headlinesJSON("Local", 3)
	fake.responses["Tech"] = headlinesJSON("Tech", 3)

	docs := &fakeDocStore{}
	s := newTestService(fake, docs)

	run, err := s.Run(context.Background(), []string{"Local", "Tech"}, "Zimbabwe")
	assert.Equal(t, nil, err)

	seen := map[string]bool{}
	for category, articles := range run.Categories {
		for _, a := range articles {
			assert.Equal(t, category, a.Category)
			assert.NotEqual(t, "", a.ID)
			if seen[a.ID] {
				t.Errorf("duplicate article id %q", a.ID)
			}
			seen[a.ID] = true
		}
	}
	assert.Equal(t, 6, len(seen))
}

func TestRunSkipsBlankHeadlines(t *testing.T) {
	fake := newFakeLLM()
	fake.responses["Local"] = `[{"headline":"","detail":"d","source":"s","url":""},{"headline":"Real story","detail":"d","source":"s","url":""}]`

	docs := &fakeDocStore{}
	s := newTestService(fake, docs)

	run, err := s.Run(context.Background(), []string{"Local"}, "Zimbabwe")

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(run.Categories["Local"]))
	assert.Equal(t, "Real story", run.Categories["Local"][0].Headline)
}

func TestRunDefaultsCategories(t *testing.T) {
	fake := newFakeLLM()
	for _, c := range model.DefaultCategories {
		fake.responses[c] = headlinesJSON(c, 1)
	}

	docs := &fakeDocStore{}
	s := newTestService(fake, docs)

	run, err := s.Run(context.Background(), nil, "Zimbabwe")

	assert.Equal(t, nil, err)
	assert.Equal(t, len(model.DefaultCategories), len(run.Categories))
}
