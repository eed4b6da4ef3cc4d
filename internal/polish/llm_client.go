// Package polish rewrites a rendered, fact-complete answer through an
// external language model. Every failure falls back to the draft.
package polish

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned by providers that answered without text.
var ErrEmptyCompletion = errors.New("polish: provider returned empty completion")

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

// LLMRequest is a single-turn completion: system instructions plus one user
// prompt. Zero MaxTokens or Temperature leaves the provider default.
type LLMRequest struct {
	Model       string
	System      []string
	Prompt      string
	MaxTokens   int32
	Temperature float32
}

type LLMResponse struct {
	Text  string
	Usage TokenUsage
}

// LLMClient is implemented by every completion provider.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}
