package llm

import (
	"context"

	"family-meal-planner/internal/shared"
)

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
//
// Implementations hold no cross-call state beyond their configured
// endpoint and credentials; retries are the caller's responsibility.
// Callers bound each call with a context deadline.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
