package handler

import (
	"errors"
	"net/http"

	"chatimmo/internal/engine"
	"chatimmo/internal/model"
	"chatimmo/internal/service"

	"github.com/gin-gonic/gin"
)

// SearchHandler handles structured search requests
type SearchHandler struct {
	chat         *service.ChatService
	defaultLimit int
	maxLimit     int
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(chat *service.ChatService, defaultLimit, maxLimit int) *SearchHandler {
	return &SearchHandler{
		chat:         chat,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// Search handles POST /api/v1/search
func (h *SearchHandler) Search(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	// Set default options if not provided
	if req.Options == nil {
		req.Options = &model.SearchOptions{TopK: h.defaultLimit}
	} else {
		// Validate and cap limits
		if req.Options.TopK <= 0 {
			req.Options.TopK = h.defaultLimit
		}
		if req.Options.TopK > h.maxLimit {
			req.Options.TopK = h.maxLimit
		}
	}

	response, err := h.chat.Search(c.Request.Context(), &req)
	if errors.Is(err, engine.ErrInvalidQuery) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}
