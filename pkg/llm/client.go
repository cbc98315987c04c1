package llm

import (
	"context"
	"strings"
)

// Generation parameters are fixed so answer style stays consistent
// across callers; they are deliberately not request-tunable.
const (
	Temperature     = 0.7
	TopP            = 0.95
	MaxOutputTokens = 2048
)

// Turn is one prior conversation turn passed to the model.
// Role is "user" or "model".
type Turn struct {
	Role string
	Text string
}

// Request is a single generation call. History, when non-empty, seeds
// a multi-turn chat; otherwise the call is single-shot.
type Request struct {
	System  string
	Prompt  string
	History []Turn
}

// Chunk is one streamed fragment. A non-nil Err terminates the stream;
// text already delivered before the error stands.
type Chunk struct {
	Text string
	Err  error
}

// Client is the generative-model collaborator. Both the aggregation
// and answering paths go through it.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
	GenerateStream(ctx context.Context, req Request) (<-chan Chunk, error)
	Name() string
}

// CleanJSON strips Markdown code fences and surrounding prose from a
// model response so the payload parses as JSON. Models intermittently
// wrap structured output in ```json fences regardless of instructions.
func CleanJSON(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Some responses include prose around the JSON payload. Keep the
	// outermost object or array, whichever opens first.
	objStart := strings.Index(content, "{")
	arrStart := strings.Index(content, "[")

	if arrStart >= 0 && (objStart < 0 || arrStart < objStart) {
		if end := strings.LastIndex(content, "]"); end > arrStart {
			return content[arrStart : end+1]
		}
	}
	if objStart >= 0 {
		if end := strings.LastIndex(content, "}"); end > objStart {
			return content[objStart : end+1]
		}
	}
	return content
}
