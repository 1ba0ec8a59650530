//go:build embed
// +build embed

package main

import (
	"embed"
	"fmt"
	"html/template"

	"chatimmo/internal/handler"

	"github.com/gin-gonic/gin"
)

//go:embed web/templates
var webTemplates embed.FS

// setupTemplates installs the embedded chat page template
func setupTemplates(router *gin.Engine, _ string) error {
	logger.Info().Msg("📦 Using embedded chat page template")

	tmpl, err := template.New("").Funcs(handler.TemplateFuncs).ParseFS(webTemplates, "web/templates/*.html")
	if err != nil {
		return fmt.Errorf("parse embedded templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)
	return nil
}
