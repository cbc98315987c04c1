package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kudzimusar/morning-pulse-sub002/internal/answer"
	"github.com/kudzimusar/morning-pulse-sub002/internal/model"
	"github.com/kudzimusar/morning-pulse-sub002/internal/prompt"
	"github.com/kudzimusar/morning-pulse-sub002/internal/rank"
	"github.com/kudzimusar/morning-pulse-sub002/internal/store"
)

const bufferedAnswerTimeout = 60 * time.Second

// Answerer is what the ask endpoint needs from the answer service.
type Answerer interface {
	Answer(ctx context.Context, system, user string, history []model.ConversationTurn, ranked []model.Article) (*answer.Result, error)
	AnswerStream(ctx context.Context, system, user string, history []model.ConversationTurn, ranked []model.Article) (<-chan answer.Event, error)
}

// RunReader is the read side of the document store.
type RunReader interface {
	GetRun(ctx context.Context, country, date string) (*model.AggregationRun, error)
}

type AskHandler struct {
	answerer Answerer
	docs     RunReader
	country  string
}

func NewAskHandler(answerer Answerer, docs RunReader, country string) *AskHandler {
	return &AskHandler{answerer: answerer, docs: docs, country: country}
}

// Ask validates the request, ranks the corpus, assembles the prompt,
// and answers buffered or streamed. Input errors are rejected before
// any model call is made.
func (h *AskHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Question is required"})
		return
	}

	corpus, ok := h.resolveCorpus(c, req.NewsData)
	if !ok {
		return
	}

	ranked := rank.Rank(question, corpus, rank.DefaultTopK)

	system, user := prompt.Build(prompt.Input{
		Query:         question,
		Articles:      ranked,
		Opinions:      req.Opinions,
		History:       req.ConversationHistory,
		KnownEntities: req.PreviousEntities,
	})

	if req.Stream {
		h.streamAnswer(c, system, user, req.ConversationHistory, ranked)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), bufferedAnswerTimeout)
	defer cancel()

	result, err := h.answerer.Answer(ctx, system, user, req.ConversationHistory, ranked)
	if err != nil {
		slog.Error("error generating answer", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Answer generation failed"})
		return
	}

	sources := result.Sources
	if sources == nil {
		sources = []answer.Source{}
	}
	c.JSON(http.StatusOK, AskResponse{Text: result.Text, Sources: sources})
}

// resolveCorpus prefers the caller-supplied snapshot and falls back to
// today's stored run.
func (h *AskHandler) resolveCorpus(c *gin.Context, supplied map[string][]model.Article) (map[string][]model.Article, bool) {
	if len(supplied) > 0 {
		return supplied, true
	}

	today := time.Now().UTC().Format(model.DateKey)
	run, err := h.docs.GetRun(c.Request.Context(), h.country, today)
	if err == store.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "No news available for today"})
		return nil, false
	}
	if err != nil {
		slog.Error("error reading today's run", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage error"})
		return nil, false
	}

	return run.Categories, true
}

func (h *AskHandler) streamAnswer(c *gin.Context, system, user string, history []model.ConversationTurn, ranked []model.Article) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	events, err := h.answerer.AnswerStream(c.Request.Context(), system, user, history, ranked)
	if err != nil {
		slog.Error("error opening answer stream", "error", err)
		writeFrame(c, StreamFrame{Error: "Answer generation failed", Done: true})
		return
	}

	for event := range events {
		if event.Err != nil {
			slog.Error("answer stream failed mid-flight", "error", event.Err)
			writeFrame(c, StreamFrame{Error: "Answer generation failed", Done: true})
			return
		}

		if event.Done {
			sources := event.Sources
			if sources == nil {
				sources = []answer.Source{}
			}
			writeFrame(c, StreamFrame{Done: true, FullText: event.FullText, Sources: sources})
			return
		}

		writeFrame(c, StreamFrame{Text: event.Text})
	}
}

func writeFrame(c *gin.Context, frame StreamFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		slog.Error("error marshaling stream frame", "error", err)
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", data)
	c.Writer.Flush()
}
