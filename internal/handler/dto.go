package handler

import (
	"github.com/kudzimusar/morning-pulse-sub002/internal/answer"
	"github.com/kudzimusar/morning-pulse-sub002/internal/model"
)

type AskRequest struct {
	Question            string                     `json:"question"`
	NewsData            map[string][]model.Article `json:"newsData"`
	Opinions            []model.Opinion            `json:"opinions"`
	ConversationHistory []model.ConversationTurn   `json:"conversationHistory"`
	PreviousEntities    []string                   `json:"previousEntities"`
	Stream              bool                       `json:"stream"`
}

type AskResponse struct {
	Text    string          `json:"text"`
	Sources []answer.Source `json:"sources"`
}

// StreamFrame is one SSE data payload. Non-terminal frames carry a
// text delta; the terminal frame carries fullText and sources, or an
// error when the upstream stream died mid-flight.
type StreamFrame struct {
	Text     string          `json:"text"`
	Done     bool            `json:"done"`
	FullText string          `json:"fullText,omitempty"`
	Sources  []answer.Source `json:"sources,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type AggregateRequest struct {
	Categories []string `json:"categories"`
	Country    string   `json:"country"`
}

type AggregateResponse struct {
	Success       bool     `json:"success"`
	Date          string   `json:"date,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	TotalArticles int      `json:"totalArticles,omitempty"`
	Message       string   `json:"message"`
	Error         string   `json:"error,omitempty"`
}
