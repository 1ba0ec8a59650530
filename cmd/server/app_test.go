package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chatimmo/internal/config"
	"chatimmo/internal/handler"
	"chatimmo/internal/model"
	"chatimmo/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCSV = `PI_TITLE,PI_CONTENT,PI_ATTR_BED,PI_ATTR_BATH,PI_ATTR_SURFACE,PI_PRICE_TND,PI_ATTR_PARKING,PI_ALIAS
Appartement S+2,Bel appartement au Lac2,2,1,110,1500,1,s2-lac2
Studio,Studio meublé à Tunis centre,1,1,45.5,700,0,studio-tunis
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "PROPERTY_ITEM.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCSV), 0o644))

	cfg := config.Default()
	cfg.Catalog.CSVPath = path
	return cfg
}

func TestBuildChatService(t *testing.T) {
	chat, err := buildChatService(context.Background(), testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, chat.Catalog(), 2)

	reply, err := chat.Respond(context.Background(), "2 bedrooms in Lac2")
	require.NoError(t, err)
	assert.Equal(t, "strict", reply.Tier)
	require.Len(t, reply.Listings, 1)
	assert.Equal(t, model.LocationLac2, reply.Listings[0].Location)
}

func TestBuildChatService_MissingCatalog(t *testing.T) {
	cfg := config.Default()
	cfg.Catalog.CSVPath = filepath.Join(t.TempDir(), "missing.csv")

	_, err := buildChatService(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "load catalog")
}

func TestPrintListings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printListings(&buf, []model.Listing{
		{Title: "Studio", Price: 700, Bedrooms: 1, Surface: 45.5, Location: model.LocationTunis},
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "TITLE"))
	assert.Equal(t, []string{"Studio", "700", "1", "45.5", "Tunis"}, strings.Fields(lines[1]))
}

func TestSetupTemplates_RendersChatPage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	chat, err := buildChatService(context.Background(), testConfig(t), zerolog.Nop())
	require.NoError(t, err)

	router := handler.NewRouter(handler.Dependencies{
		Chat:         chat,
		Sessions:     session.NewStore(),
		DefaultLimit: 5,
		MaxLimit:     50,
		Log:          zerolog.Nop(),
	})
	require.NoError(t, setupTemplates(router, "web/templates"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Chat History")
	assert.Contains(t, rec.Body.String(), `name="message"`)
}

func TestSetupTemplates_ListingLinks(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		base      string
		want      string
		forbidden string
	}{
		{"no base shows the alias", "", `Appartement S+2 <small>s2-lac2</small>`, `href="s2-lac2"`},
		{"base builds absolute links", "https://www.cledor.tn/annonce/", `href="https://www.cledor.tn/annonce/s2-lac2"`, "<small>s2-lac2</small>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat, err := buildChatService(context.Background(), testConfig(t), zerolog.Nop())
			require.NoError(t, err)

			router := handler.NewRouter(handler.Dependencies{
				Chat:           chat,
				Sessions:       session.NewStore(),
				DefaultLimit:   5,
				MaxLimit:       50,
				ListingBaseURL: tt.base,
				Log:            zerolog.Nop(),
			})
			require.NoError(t, setupTemplates(router, "web/templates"))

			form := url.Values{"message": {"2 bedrooms in Lac2"}}
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			require.Equal(t, http.StatusSeeOther, rec.Code)
			cookies := rec.Result().Cookies()
			require.Len(t, cookies, 1)

			req = httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(cookies[0])
			rec = httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)

			page := rec.Body.String()
			assert.Contains(t, page, tt.want)
			assert.NotContains(t, page, tt.forbidden)
		})
	}
}
