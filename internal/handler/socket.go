package handler

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"time"

	"chatimmo/internal/logging"
	"chatimmo/internal/model"
	"chatimmo/internal/service"
	"chatimmo/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	socketIdleTimeout  = 10 * time.Minute
	socketWriteTimeout = 10 * time.Second
	socketMaxMessage   = 8 << 10
)

// socketFrame is a single JSON message written to the chat socket. Type
// carries the same names as the SSE events of the streaming endpoint.
type socketFrame struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// SocketHandler serves the chat over a WebSocket. One connection is one
// session; messages are answered in the order they arrive.
type SocketHandler struct {
	chat     *service.ChatService
	sessions *session.Store
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewSocketHandler creates a new socket handler accepting the given origins ("*" for any)
func NewSocketHandler(chat *service.ChatService, sessions *session.Store, origins []string, log zerolog.Logger) *SocketHandler {
	return &SocketHandler{
		chat:     chat,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(origins, r.Header.Get("Origin"))
			},
		},
		log: logging.Component(log, "chat_socket"),
	}
}

// ChatSocket handles GET /api/v1/chat/ws
func (h *SocketHandler) ChatSocket(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = h.sessions.Create()
	} else if !h.sessions.Get(sessionID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("⚠️  WebSocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(socketMaxMessage)

	send := func(frameType string, data any) error {
		conn.SetWriteDeadline(time.Now().Add(socketWriteTimeout))
		return conn.WriteJSON(socketFrame{Type: frameType, Data: data})
	}

	log := h.log.With().Str("session_id", sessionID).Logger()
	log.Info().Msg("🔌 Chat socket opened")

	if err := send("start", gin.H{"session_id": sessionID}); err != nil {
		return
	}

	ctx := c.Request.Context()
	for {
		conn.SetReadDeadline(time.Now().Add(socketIdleTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("⚠️  Chat socket closed unexpectedly")
			} else {
				log.Info().Msg("🔌 Chat socket closed")
			}
			return
		}

		var req model.ChatRequest
		if err := json.Unmarshal(data, &req); err != nil || strings.TrimSpace(req.Message) == "" {
			if err := send("error", gin.H{"error": "Invalid request: message is required"}); err != nil {
				return
			}
			continue
		}

		startTime := time.Now()
		reply, err := h.chat.RespondStream(ctx, req.Message, send)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️  Socket chat aborted")
			if err := send("error", gin.H{"error": err.Error()}); err != nil {
				return
			}
			continue
		}

		if err := recordExchange(h.sessions, sessionID, req.Message, reply); err != nil {
			if err := send("error", gin.H{"error": err.Error()}); err != nil {
				return
			}
			continue
		}

		if err := send("reply", model.ChatResponse{
			SessionID: sessionID,
			ChatReply: *reply,
			Took:      time.Since(startTime).Milliseconds(),
		}); err != nil {
			return
		}
	}
}

// originAllowed reports whether a browser origin may open the socket. Clients
// that send no Origin header are not browsers and are always accepted.
func originAllowed(origins []string, origin string) bool {
	if origin == "" || len(origins) == 0 || origins[0] == "*" {
		return true
	}
	return slices.Contains(origins, origin)
}
