package handler

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"chatimmo/internal/logging"
	"chatimmo/internal/model"
	"chatimmo/internal/service"
	"chatimmo/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SessionCookie names the cookie carrying the chat page session id
const SessionCookie = "chatimmo_session"

// PageTemplate is the template name rendered by the chat page
const PageTemplate = "chat.html"

// TemplateFuncs are the helpers available to the chat page template
var TemplateFuncs = template.FuncMap{
	"amount": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
	"isUser": func(s model.Sender) bool {
		return s == model.SenderUser
	},
	"listingURL": listingURL,
}

// listingURL joins a listing alias to the configured listing site
func listingURL(base, alias string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(strings.TrimLeft(alias, "/"))
}

// UIHandler serves the server-rendered chat page
type UIHandler struct {
	chat        *service.ChatService
	sessions    *session.Store
	title       string
	listingBase string
	log         zerolog.Logger
}

// NewUIHandler creates a new chat page handler. Listing links point at
// listingBase; when it is empty the listing alias is shown as text.
func NewUIHandler(chat *service.ChatService, sessions *session.Store, title, listingBase string, log zerolog.Logger) *UIHandler {
	return &UIHandler{
		chat:        chat,
		sessions:    sessions,
		title:       title,
		listingBase: listingBase,
		log:         logging.Component(log, "ui"),
	}
}

// Page handles GET /
func (h *UIHandler) Page(c *gin.Context) {
	sessionID := h.session(c)

	messages, err := h.sessions.History(sessionID)
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to load conversation")
		return
	}

	// The table shows the listings of the latest bot answer that carried any
	var listings []model.Listing
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Sender == model.SenderBot && len(messages[i].Listings) > 0 {
			listings = messages[i].Listings
			break
		}
	}

	c.HTML(http.StatusOK, PageTemplate, gin.H{
		"Title":       h.title,
		"Messages":    messages,
		"Listings":    listings,
		"ListingBase": h.listingBase,
	})
}

// Submit handles POST / from the chat form
func (h *UIHandler) Submit(c *gin.Context) {
	sessionID := h.session(c)

	message := c.PostForm("message")
	if strings.TrimSpace(message) != "" {
		reply, err := h.chat.Respond(c.Request.Context(), message)
		if err != nil {
			h.log.Error().Err(err).Str("session_id", sessionID).Msg("❌ Chat failed")
			c.String(http.StatusInternalServerError, "Chat failed")
			return
		}
		if err := recordExchange(h.sessions, sessionID, message, reply); err != nil {
			c.String(http.StatusInternalServerError, "Failed to save conversation")
			return
		}
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// session returns the visitor session, opening one when the cookie is
// missing or names a session this process does not know
func (h *UIHandler) session(c *gin.Context) string {
	cookie, _ := c.Cookie(SessionCookie)
	sessionID := h.sessions.Ensure(cookie)
	if sessionID != cookie {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, sessionID, 0, "/", "", false, true)
	}
	return sessionID
}
