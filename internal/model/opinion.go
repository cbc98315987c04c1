package model

import "time"

// Opinion is an editorial piece supplied by the caller alongside the
// news corpus. Only published opinions with a publish date are eligible
// for prompt context.
type Opinion struct {
	ID          string     `json:"id"`
	Headline    string     `json:"headline"`
	SubHeadline string     `json:"subHeadline,omitempty"`
	Body        string     `json:"body,omitempty"`
	AuthorName  string     `json:"authorName,omitempty"`
	AuthorTitle string     `json:"authorTitle,omitempty"`
	Category    string     `json:"category,omitempty"`
	IsPublished bool       `json:"isPublished"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// Eligible reports whether the opinion may appear in grounding context.
func (o *Opinion) Eligible() bool {
	return o.IsPublished && o.PublishedAt != nil
}

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// TurnPart is one text fragment of a conversation turn.
type TurnPart struct {
	Text string `json:"text"`
}

// ConversationTurn is one prior turn of the dialogue, supplied by the
// caller each request. Most-recent turns come last.
type ConversationTurn struct {
	Role  string     `json:"role"`
	Parts []TurnPart `json:"parts"`
}

// Text flattens the turn's parts into a single string.
func (t *ConversationTurn) Text() string {
	if len(t.Parts) == 1 {
		return t.Parts[0].Text
	}
	var s string
	for _, p := range t.Parts {
		s += p.Text
	}
	return s
}
