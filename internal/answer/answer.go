// Package answer invokes the generative model for a prepared prompt
// and returns the response buffered or as a stream of deltas, with
// citation metadata derived from the ranked article set.
package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/kudzimusar/morning-pulse-sub002/internal/model"
	"github.com/kudzimusar/morning-pulse-sub002/pkg/llm"
)

// Source is one citable article, annotated with the same 1-based
// position its [n] marker holds in the assembled prompt.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Index int    `json:"index"`
}

// Result is a buffered answer.
type Result struct {
	Text    string
	Sources []Source
}

// Event is one frame of a streamed answer. Non-terminal events carry a
// text delta; the terminal event carries the full concatenated text
// and the sources, or the error that cut the stream short.
type Event struct {
	Text     string
	Done     bool
	FullText string
	Sources  []Source
	Err      error
}

type Service struct {
	llm llm.Client
}

func New(llmClient llm.Client) *Service {
	return &Service{llm: llmClient}
}

// Sources keeps only ranked articles that can actually be cited: both
// a headline and a URL are required. Indices stay positional so they
// line up with the prompt's citation numbering.
func Sources(ranked []model.Article) []Source {
	var sources []Source
	for i, a := range ranked {
		if a.Headline == "" || a.URL == "" {
			continue
		}
		sources = append(sources, Source{Title: a.Headline, URL: a.URL, Index: i + 1})
	}
	return sources
}

// Answer runs a buffered generation. Failures are surfaced directly;
// the interactive path never retries.
func (s *Service) Answer(ctx context.Context, system, user string, history []model.ConversationTurn, ranked []model.Article) (*Result, error) {
	text, err := s.llm.Generate(ctx, llm.Request{
		System:  system,
		Prompt:  user,
		History: historyTurns(history),
	})
	if err != nil {
		return nil, fmt.Errorf("answer: %w", err)
	}

	return &Result{Text: text, Sources: Sources(ranked)}, nil
}

// AnswerStream forwards each model delta as its own event. On upstream
// failure the stream terminates with an error event; deltas already
// delivered are not retracted.
func (s *Service) AnswerStream(ctx context.Context, system, user string, history []model.ConversationTurn, ranked []model.Article) (<-chan Event, error) {
	chunks, err := s.llm.GenerateStream(ctx, llm.Request{
		System:  system,
		Prompt:  user,
		History: historyTurns(history),
	})
	if err != nil {
		return nil, fmt.Errorf("answer: open stream: %w", err)
	}

	out := make(chan Event)
	go func() {
		defer close(out)

		var full strings.Builder
		for chunk := range chunks {
			if chunk.Err != nil {
				out <- Event{Err: chunk.Err, Done: true}
				return
			}
			full.WriteString(chunk.Text)
			out <- Event{Text: chunk.Text}
		}

		out <- Event{Done: true, FullText: full.String(), Sources: Sources(ranked)}
	}()

	return out, nil
}

func historyTurns(history []model.ConversationTurn) []llm.Turn {
	if len(history) == 0 {
		return nil
	}
	turns := make([]llm.Turn, 0, len(history))
	for _, t := range history {
		turns = append(turns, llm.Turn{Role: t.Role, Text: t.Text()})
	}
	return turns
}
