package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/kudzimusar/morning-pulse-sub002/internal/model"
	"github.com/kudzimusar/morning-pulse-sub002/pkg/llm"
)

type fakeLLM struct {
	text      string
	err       error
	deltas    []string
	streamErr error
	lastReq   llm.Request
}

func (f *fakeLLM) Generate(ctx context.Context, req llm.Request) (string, error) {
	f.lastReq = req
	return f.text, f.err
}

func (f *fakeLLM) GenerateStream(ctx context.Context, req llm.Request) (<-chan llm.Chunk, error) {
	f.lastReq = req
	ch := make(chan llm.Chunk)
	go func() {
		defer close(ch)
		for _, d := range f.deltas {
			ch <- llm.Chunk{Text: d}
		}
		if f.streamErr != nil {
			ch <- llm.Chunk{Err: f.streamErr}
		}
	}()
	return ch, nil
}

func (f *fakeLLM) Name() string { return "fake" }

func rankedArticles() []model.Article {
	return []model.Article{
		{ID: "a1", Headline: "First story", URL: "https://example.com/1"},
		{ID: "a2", Headline: "No link story"},
		{ID: "a3", Headline: "Third story", URL: "https://example.com/3"},
	}
}

func TestSourcesFilterAndIndexing(t *testing.T) {
	sources := Sources(rankedArticles())

	assert.Equal(t, 2, len(sources))
	assert.Equal(t, "First story", sources[0].Title)
	assert.Equal(t, 1, sources[0].Index)
	assert.Equal(t, "Third story", sources[1].Title)
	// Positional index matches the prompt numbering, not the filtered
	// list position.
	assert.Equal(t, 3, sources[1].Index)
}

func TestSourcesEmptyForUncitableSet(t *testing.T) {
	sources := Sources([]model.Article{{ID: "a", Headline: "No URL"}})
	assert.Equal(t, 0, len(sources))
}

func TestAnswerBuffered(t *testing.T) {
	fake := &fakeLLM{text: "The election concluded [1]."}
	s := New(fake)

	result, err := s.Answer(context.Background(), "system", "user message", nil, rankedArticles())

	assert.Equal(t, nil, err)
	assert.Equal(t, "The election concluded [1].", result.Text)
	assert.Equal(t, 2, len(result.Sources))
	assert.Equal(t, "system", fake.lastReq.System)
	assert.Equal(t, "user message", fake.lastReq.Prompt)
}

func TestAnswerSurfacesUpstreamError(t *testing.T) {
	fake := &fakeLLM{err: errors.New("model down")}
	s := New(fake)

	result, err := s.Answer(context.Background(), "sys", "user", nil, nil)

	assert.NotEqual(t, nil, err)
	if result != nil {
		t.Errorf("expected nil result on error, got %+v", result)
	}
}

func TestAnswerPassesHistoryAsTurns(t *testing.T) {
	fake := &fakeLLM{text: "ok"}
	s := New(fake)

	history := []model.ConversationTurn{
		{Role: "user", Parts: []model.TurnPart{{Text: "earlier question"}}},
		{Role: "model", Parts: []model.TurnPart{{Text: "earlier answer"}}},
	}

	_, err := s.Answer(context.Background(), "sys", "user", history, nil)

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(fake.lastReq.History))
	assert.Equal(t, "user", fake.lastReq.History[0].Role)
	assert.Equal(t, "earlier answer", fake.lastReq.History[1].Text)
}

func TestAnswerStreamConcatenationMatchesFullText(t *testing.T) {
	fake := &fakeLLM{deltas: []string{"The ", "election ", "concluded."}}
	s := New(fake)

	events, err := s.AnswerStream(context.Background(), "sys", "user", nil, rankedArticles())
	assert.Equal(t, nil, err)

	var concat strings.Builder
	var terminal *Event
	for event := range events {
		if event.Done {
			e := event
			terminal = &e
			continue
		}
		concat.WriteString(event.Text)
	}

	if terminal == nil {
		t.Fatal("no terminal event received")
	}
	assert.Equal(t, "The election concluded.", concat.String())
	assert.Equal(t, terminal.FullText, concat.String())
	assert.Equal(t, 2, len(terminal.Sources))
	assert.Equal(t, nil, terminal.Err)
}

func TestAnswerStreamMidFlightError(t *testing.T) {
	fake := &fakeLLM{deltas: []string{"Partial "}, streamErr: errors.New("connection reset")}
	s := New(fake)

	events, err := s.AnswerStream(context.Background(), "sys", "user", nil, nil)
	assert.Equal(t, nil, err)

	var received []Event
	for event := range events {
		received = append(received, event)
	}

	// One delta, then a terminal error event, nothing after.
	assert.Equal(t, 2, len(received))
	assert.Equal(t, "Partial ", received[0].Text)
	assert.Equal(t, true, received[1].Done)
	assert.NotEqual(t, nil, received[1].Err)
	assert.Equal(t, "", received[1].FullText)
}
