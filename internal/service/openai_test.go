package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"chatimmo/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAIClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewOpenAIClient(&config.OpenAIConfig{
		APIKey:          "sk-test",
		APIBase:         server.URL + "/v1/",
		ChatModel:       "gpt-4o-mini",
		ChatTemperature: 0.2,
		ChatMaxTokens:   64,
		Timeout:         5,
		Enabled:         true,
	}, zerolog.Nop())
}

func TestOpenAIClient_Disabled(t *testing.T) {
	client := NewOpenAIClient(&config.OpenAIConfig{}, zerolog.Nop())
	assert.False(t, client.IsEnabled())

	_, err := client.Complete(context.Background(), "system", "user")
	assert.ErrorIs(t, err, ErrAIDisabled)

	_, err = client.CompleteStream(context.Background(), "system", "user", nil)
	assert.ErrorIs(t, err, ErrAIDisabled)
}

func TestOpenAIClient_Complete(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  2 bedrooms in Lac2 \n"},"finish_reason":"stop"}],"usage":{"total_tokens":12}}`)
	})

	out, err := client.Complete(context.Background(), "translate", "2 chambres à Lac2")
	require.NoError(t, err)
	assert.Equal(t, "2 bedrooms in Lac2", out)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "2 chambres à Lac2", got.Messages[1].Content)
}

func TestOpenAIClient_CompleteAPIError(t *testing.T) {
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limited","type":"rate_limit"}}`)
	})

	_, err := client.Complete(context.Background(), "system", "user")
	assert.Error(t, err)
}

func TestOpenAIClient_CompleteStream(t *testing.T) {
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, delta := range []string{"Hel", "lo", "!"} {
			fmt.Fprintf(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", delta)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	var deltas []string
	out, err := client.CompleteStream(context.Background(), "system", "user", func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello!", out)
	assert.Equal(t, []string{"Hel", "lo", "!"}, deltas)
}
