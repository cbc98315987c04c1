// Package prompt assembles the system instruction and user message for
// an answering call. Each section is a pure builder composed in a
// fixed order; citation numbering is positional and must match the
// sources list the caller returns.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kudzimusar/morning-pulse-sub002/internal/model"
)

const (
	historyWindow   = 3
	opinionLimit    = 3
	excerptLimit    = 500
	articleDateFmt  = "2 January 2006"
	fallbackDate    = "Recent"
	defaultCategory = "Opinion"
	defaultAuthor   = "Editorial Team"
)

// Input is everything one answering request contributes to the prompt.
type Input struct {
	Query         string
	Articles      []model.Article
	Opinions      []model.Opinion
	History       []model.ConversationTurn
	KnownEntities []string
}

const personaInstruction = `You are Morning Pulse, a calm and factual news assistant. You answer questions strictly from the news articles and editorial opinions provided to you. You never speculate, never invent facts, and never cite material you were not given.`

const analysisInstruction = `ARTICLE ANALYSIS:
- Read every provided article and opinion before answering.
- Weigh headlines and details equally; an answer may live in either.
- When articles disagree, present both accounts and cite each.
- Keep answers grounded: every factual claim needs a citation.`

// Build produces the model-ready system instruction and user message.
func Build(in Input) (systemInstruction, userMessage string) {
	systemInstruction = buildSystemInstruction(in.KnownEntities)

	builders := []func(Input) string{
		conversationSection,
		articlesSection,
		opinionsSection,
		questionSection,
		instructionsSection,
	}

	parts := make([]string, 0, len(builders))
	for _, build := range builders {
		if text := build(in); text != "" {
			parts = append(parts, text)
		}
	}

	return systemInstruction, strings.Join(parts, "\n\n")
}

func buildSystemInstruction(entities []string) string {
	var sb strings.Builder
	sb.WriteString(personaInstruction)
	sb.WriteString("\n\n")
	sb.WriteString(analysisInstruction)
	if len(entities) > 0 {
		sb.WriteString("\n\nEntities mentioned earlier in this conversation: ")
		sb.WriteString(strings.Join(entities, ", "))
		sb.WriteString(". Use them to resolve pronouns and follow-up references.")
	}
	return sb.String()
}

func conversationSection(in Input) string {
	if len(in.History) == 0 {
		return ""
	}

	turns := in.History
	if len(turns) > historyWindow {
		turns = turns[len(turns)-historyWindow:]
	}

	var sb strings.Builder
	sb.WriteString("RECENT CONVERSATION:")
	for _, turn := range turns {
		sb.WriteString(fmt.Sprintf("\n%s: %s", turn.Role, turn.Text()))
	}
	return sb.String()
}

func articlesSection(in Input) string {
	var sb strings.Builder
	sb.WriteString("AVAILABLE ARTICLES:")

	if len(in.Articles) == 0 {
		sb.WriteString("\n(none)")
		return sb.String()
	}

	for i, a := range in.Articles {
		sb.WriteString(fmt.Sprintf("\n[%d] %s", i+1, a.Headline))
		if a.Source != "" {
			sb.WriteString(fmt.Sprintf("\n    Category: %s | Source: %s", a.Category, a.Source))
		} else {
			sb.WriteString(fmt.Sprintf("\n    Category: %s", a.Category))
		}
		if a.Detail != "" {
			sb.WriteString(fmt.Sprintf("\n    Detail: %s", a.Detail))
		}
		sb.WriteString(fmt.Sprintf("\n    Date: %s", articleDate(a)))
	}
	return sb.String()
}

func opinionsSection(in Input) string {
	opinions := TopOpinions(in.Opinions, opinionLimit)
	if len(opinions) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("EDITORIAL OPINIONS:")
	for i, o := range opinions {
		category := o.Category
		if category == "" {
			category = defaultCategory
		}
		author := o.AuthorName
		if author == "" {
			author = defaultAuthor
		}
		if o.AuthorTitle != "" {
			author = fmt.Sprintf("%s (%s)", author, o.AuthorTitle)
		}

		sb.WriteString(fmt.Sprintf("\n[OPINION %d] %s", i+1, o.Headline))
		sb.WriteString(fmt.Sprintf("\n    Category: %s | Author: %s", category, author))
		if o.SubHeadline != "" {
			sb.WriteString(fmt.Sprintf("\n    Summary: %s", o.SubHeadline))
		}
		sb.WriteString(fmt.Sprintf("\n    Published: %s", o.PublishedAt.Format(articleDateFmt)))
		if o.Body != "" {
			sb.WriteString(fmt.Sprintf("\n    Excerpt: %s", excerpt(o.Body, excerptLimit)))
		}
	}
	return sb.String()
}

func questionSection(in Input) string {
	return "USER QUESTION:\n" + in.Query
}

func instructionsSection(Input) string {
	return `RESPONSE INSTRUCTIONS:
1. Identify the question type (who, what, where, when, why, how).
2. Search ALL provided articles and opinions before answering.
3. Cite every claim using the [n] or [OPINION n] notation established above.
4. Resolve pronouns from the recent conversation and known entities.
5. If the provided material does not contain the answer, say so explicitly rather than inventing information.
6. Match breadth to scope: broad questions get an overview, narrow questions get specifics.`
}

// TopOpinions filters to published, dated opinions and returns the
// most recent limit of them, newest first.
func TopOpinions(opinions []model.Opinion, limit int) []model.Opinion {
	eligible := make([]model.Opinion, 0, len(opinions))
	for _, o := range opinions {
		if o.Eligible() {
			eligible = append(eligible, o)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].PublishedAt.After(*eligible[j].PublishedAt)
	})

	if len(eligible) > limit {
		eligible = eligible[:limit]
	}
	return eligible
}

// excerpt truncates to limit characters, not bytes, so a cut never
// lands inside a multi-byte rune.
func excerpt(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func articleDate(a model.Article) string {
	if a.Timestamp == nil {
		return fallbackDate
	}
	return a.Timestamp.Format(articleDateFmt)
}
