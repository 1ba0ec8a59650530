package handler

import (
	"strings"

	"chatimmo/internal/service"
	"chatimmo/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PageTitle is shown on the chat page
const PageTitle = "Clé d'Or Property Finder Chatbot"

// Dependencies groups everything the HTTP layer is built from
type Dependencies struct {
	Chat           *service.ChatService
	Sessions       *session.Store
	Build          BuildInfo
	AllowedOrigins string // comma-separated, "*" for any
	ListingBaseURL string
	DefaultLimit   int
	MaxLimit       int
	Log            zerolog.Logger
}

// NewRouter wires every route. The chat page template is installed by the caller.
func NewRouter(d Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(d.Log))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	origins := splitOrigins(d.AllowedOrigins)
	if len(origins) == 0 || origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	chatHandler := NewChatHandler(d.Chat, d.Sessions, d.Log)
	searchHandler := NewSearchHandler(d.Chat, d.DefaultLimit, d.MaxLimit)
	socketHandler := NewSocketHandler(d.Chat, d.Sessions, origins, d.Log)
	uiHandler := NewUIHandler(d.Chat, d.Sessions, PageTitle, d.ListingBaseURL, d.Log)

	router.GET("/health", Health(d.Build, len(d.Chat.Catalog())))
	router.GET("/version", Version(d.Build))

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/chat", chatHandler.Chat)
		apiV1.POST("/chat/stream", chatHandler.ChatStream)
		apiV1.GET("/chat/ws", socketHandler.ChatSocket)
		apiV1.GET("/sessions/:id/messages", chatHandler.History)
		apiV1.POST("/search", searchHandler.Search)
	}

	router.GET("/", uiHandler.Page)
	router.POST("/", uiHandler.Submit)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Endpoint not found"})
	})

	return router
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
