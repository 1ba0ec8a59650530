package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chatimmo/internal/model"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dialSocket(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/chat/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

// readUntil collects frames up to and including the first frame of the given type
func readUntil(t *testing.T, conn *websocket.Conn, frameType string) []testFrame {
	t.Helper()
	var frames []testFrame
	for {
		var f testFrame
		require.NoError(t, conn.ReadJSON(&f))
		frames = append(frames, f)
		if f.Type == frameType {
			return frames
		}
	}
}

func frameTypes(frames []testFrame) []string {
	out := make([]string, len(frames))
	for i, f := range frames {
		out[i] = f.Type
	}
	return out
}

func TestChatSocket(t *testing.T) {
	router, store := setupRouter(t)
	srv := httptest.NewServer(router)
	defer srv.Close()

	conn := dialSocket(t, srv, "")

	start := readUntil(t, conn, "start")
	require.Len(t, start, 1)
	var opened struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(start[0].Data, &opened))
	require.NotEmpty(t, opened.SessionID)

	require.NoError(t, conn.WriteJSON(model.ChatRequest{Message: "2 bedrooms in Lac2"}))
	frames := readUntil(t, conn, "reply")
	types := frameTypes(frames)
	assert.Contains(t, types, "intent")
	assert.Contains(t, types, "results")

	var resp model.ChatResponse
	require.NoError(t, json.Unmarshal(frames[len(frames)-1].Data, &resp))
	assert.Equal(t, opened.SessionID, resp.SessionID)
	assert.Equal(t, "strict", resp.Tier)
	require.Len(t, resp.Listings, 1)
	assert.Equal(t, "Lac2 Flat", resp.Listings[0].Title)

	t.Run("bad frame keeps the connection open", func(t *testing.T) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"message":`)))
		frames := readUntil(t, conn, "error")
		assert.Equal(t, []string{"error"}, frameTypes(frames))

		require.NoError(t, conn.WriteJSON(model.ChatRequest{Message: "hello"}))
		frames = readUntil(t, conn, "reply")
		require.NoError(t, json.Unmarshal(frames[len(frames)-1].Data, &resp))
		assert.Equal(t, "I'm here to help you find properties!", resp.Text)
	})

	history, err := store.History(opened.SessionID)
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestChatSocket_UnknownSession(t *testing.T) {
	router, _ := setupRouter(t)

	rec := doJSON(router, http.MethodGet, "/api/v1/chat/ws?session_id=missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOriginAllowed(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		want    bool
	}{
		{"no origin header", []string{"https://a.tn"}, "", true},
		{"wildcard", []string{"*"}, "https://b.tn", true},
		{"unset", nil, "https://b.tn", true},
		{"listed", []string{"https://a.tn", "https://b.tn"}, "https://b.tn", true},
		{"not listed", []string{"https://a.tn"}, "https://b.tn", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, originAllowed(tt.origins, tt.origin))
		})
	}
}
