package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"chatimmo/internal/logging"
	"chatimmo/internal/model"
	"chatimmo/internal/service"
	"chatimmo/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ChatHandler handles chat-related HTTP requests
type ChatHandler struct {
	chat     *service.ChatService
	sessions *session.Store
	log      zerolog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat *service.ChatService, sessions *session.Store, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		chat:     chat,
		sessions: sessions,
		log:      logging.Component(log, "chat_handler"),
	}
}

// Chat handles POST /api/v1/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	startTime := time.Now()

	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	sessionID, ok := h.resolveSession(c, req.SessionID)
	if !ok {
		return
	}

	reply, err := h.chat.Respond(c.Request.Context(), req.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Chat failed: " + err.Error()})
		return
	}

	if err := recordExchange(h.sessions, sessionID, req.Message, reply); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save conversation: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.ChatResponse{
		SessionID: sessionID,
		ChatReply: *reply,
		Took:      time.Since(startTime).Milliseconds(),
	})
}

// ChatStream handles POST /api/v1/chat/stream - SSE streaming chat
func (h *ChatHandler) ChatStream(c *gin.Context) {
	startTime := time.Now()

	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	sessionID, ok := h.resolveSession(c, req.SessionID)
	if !ok {
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	sendSSE(c, "start", map[string]any{"session_id": sessionID})
	flusher.Flush()

	reply, err := h.chat.RespondStream(c.Request.Context(), req.Message, func(event string, data any) error {
		if err := c.Request.Context().Err(); err != nil {
			return err
		}
		sendSSE(c, event, data)
		flusher.Flush()
		return nil
	})
	if err != nil {
		h.log.Warn().Err(err).Str("session_id", sessionID).Msg("⚠️  Streaming chat aborted")
		sendSSE(c, "error", map[string]any{"error": err.Error()})
		flusher.Flush()
		return
	}

	if err := recordExchange(h.sessions, sessionID, req.Message, reply); err != nil {
		sendSSE(c, "error", map[string]any{"error": err.Error()})
		flusher.Flush()
		return
	}

	sendSSE(c, "reply", model.ChatResponse{
		SessionID: sessionID,
		ChatReply: *reply,
		Took:      time.Since(startTime).Milliseconds(),
	})
	flusher.Flush()

	sendSSE(c, "done", nil)
	flusher.Flush()
}

// History handles GET /api/v1/sessions/:id/messages
func (h *ChatHandler) History(c *gin.Context) {
	sessionID := c.Param("id")

	messages, err := h.sessions.History(sessionID)
	if errors.Is(err, session.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get messages: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"messages":   messages,
	})
}

// resolveSession opens a session when the request names none. An unknown
// session id is answered with 404.
func (h *ChatHandler) resolveSession(c *gin.Context, sessionID string) (string, bool) {
	if sessionID == "" {
		return h.sessions.Create(), true
	}
	if !h.sessions.Get(sessionID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return "", false
	}
	return sessionID, true
}

// recordExchange appends the visitor message and the bot reply to the session log
func recordExchange(store *session.Store, sessionID, message string, reply *model.ChatReply) error {
	return store.Append(sessionID,
		model.Message{Sender: model.SenderUser, Message: message},
		model.Message{Sender: model.SenderBot, Message: reply.Text, Listings: reply.Listings},
	)
}

// sendSSE sends a Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) {
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(jsonData))
	} else {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
	}
}
