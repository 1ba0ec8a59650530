package service

import (
	"context"
	"fmt"

	"chatimmo/internal/utils"
)

// Generator produces a free-form assistant reply for messages that carry no
// search criteria
type Generator interface {
	Generate(ctx context.Context, message string) (string, error)
	GenerateStream(ctx context.Context, message string, onDelta func(delta string) error) (string, error)
}

const assistantPrompt = `You are the assistant of Clé d'Or, a property agency in Tunisia.
You help visitors find apartments and houses to buy or rent.
Answer briefly and in English. When the visitor has not said what they want,
invite them to describe it, for example "2 bedrooms in Lac2", "price under 1500"
or "surface at least 100". Never invent listings, prices or addresses.`

// LLMGenerator answers through a chat-completion model
type LLMGenerator struct {
	ai Completer
}

// NewLLMGenerator creates a generator backed by the given completer
func NewLLMGenerator(ai Completer) *LLMGenerator {
	return &LLMGenerator{ai: ai}
}

// Generate implements Generator
func (g *LLMGenerator) Generate(ctx context.Context, message string) (string, error) {
	out, err := g.ai.Complete(ctx, assistantPrompt, message)
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}
	out = utils.CleanCompletion(out)
	if out == "" {
		return "", fmt.Errorf("generate reply: empty completion")
	}
	return out, nil
}

// GenerateStream implements Generator
func (g *LLMGenerator) GenerateStream(ctx context.Context, message string, onDelta func(delta string) error) (string, error) {
	out, err := g.ai.CompleteStream(ctx, assistantPrompt, message, onDelta)
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}
	out = utils.CleanCompletion(out)
	if out == "" {
		return "", fmt.Errorf("generate reply: empty completion")
	}
	return out, nil
}
