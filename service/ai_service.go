package service

import (
	"context"

	"github.com/tieubaoca/ragdocs-be/types"
)

// AIService generates an answer from fixed instructions and a prompt.
// Generation failures are not swallowed anywhere in the pipeline; they
// propagate to the caller.
type AIService interface {
	Generate(ctx context.Context, instructions, prompt string) (string, error)
}

// StreamingAIService is implemented by backends that can deliver the answer
// incrementally.
type StreamingAIService interface {
	AIService
	GenerateStream(ctx context.Context, instructions, prompt string, handler types.StreamHandler) (string, error)
}
