package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"chatimmo/internal/config"
	"chatimmo/internal/logging"
)

// ErrAIDisabled is returned by every completion call when no API key is configured
var ErrAIDisabled = errors.New("OpenAI API is not enabled (missing API key)")

// Completer is the chat-completion surface the translator and generator depend on
type Completer interface {
	// Complete sends a system and a user message and returns the assistant text
	Complete(ctx context.Context, system, user string) (string, error)

	// CompleteStream is Complete with each content delta passed to onDelta as it arrives
	CompleteStream(ctx context.Context, system, user string, onDelta func(delta string) error) (string, error)

	// IsEnabled returns whether the client is configured and ready
	IsEnabled() bool
}

// OpenAIClient handles OpenAI-compatible API interactions
type OpenAIClient struct {
	config *config.OpenAIConfig
	client *openai.Client
	log    zerolog.Logger
}

// Ensure OpenAIClient implements Completer
var _ Completer = (*OpenAIClient)(nil)

// NewOpenAIClient creates a client for any OpenAI-compatible base URL
func NewOpenAIClient(cfg *config.OpenAIConfig, log zerolog.Logger) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.APIBase != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.APIBase, "/")
	}
	clientCfg.HTTPClient = &http.Client{
		Timeout: time.Duration(cfg.Timeout) * time.Second,
	}

	log = logging.Component(log, "openai")
	if cfg.Enabled {
		log.Info().Str("base", clientCfg.BaseURL).Str("model", cfg.ChatModel).Msg("🔧 OpenAI-compatible client configured")
	}

	return &OpenAIClient{
		config: cfg,
		client: openai.NewClientWithConfig(clientCfg),
		log:    log,
	}
}

// IsEnabled returns whether the client is configured and ready
func (c *OpenAIClient) IsEnabled() bool {
	return c != nil && c.config.Enabled
}

func (c *OpenAIClient) request(system, user string, stream bool) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: c.config.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: float32(c.config.ChatTemperature),
		MaxTokens:   c.config.ChatMaxTokens,
		Stream:      stream,
	}
}

// Complete performs a chat completion request
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	if !c.IsEnabled() {
		return "", ErrAIDisabled
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, c.request(system, user, false))
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: no choices in response")
	}

	c.log.Debug().
		Dur("took", time.Since(start)).
		Int("total_tokens", resp.Usage.TotalTokens).
		Msg("chat completion done")

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// CompleteStream performs a streaming chat completion request
func (c *OpenAIClient) CompleteStream(ctx context.Context, system, user string, onDelta func(delta string) error) (string, error) {
	if !c.IsEnabled() {
		return "", ErrAIDisabled
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, c.request(system, user, true))
	if err != nil {
		return "", fmt.Errorf("chat completion stream: %w", err)
	}
	defer stream.Close()

	var full strings.Builder
	chunks := 0
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("chat completion stream: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}

		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		chunks++
		full.WriteString(delta)
		if onDelta != nil {
			if err := onDelta(delta); err != nil {
				return "", err
			}
		}
	}

	c.log.Debug().Int("chunks", chunks).Int("chars", full.Len()).Msg("chat completion stream done")
	return strings.TrimSpace(full.String()), nil
}
