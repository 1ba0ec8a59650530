//go:build !embed
// +build !embed

package main

import (
	"fmt"
	"html/template"
	"path/filepath"

	"chatimmo/internal/handler"

	"github.com/gin-gonic/gin"
)

// setupTemplates loads the chat page template from disk (development mode)
func setupTemplates(router *gin.Engine, dir string) error {
	logger.Info().Str("dir", dir).Msg("🔧 Using local filesystem for the chat page template (development mode)")

	tmpl, err := template.New("").Funcs(handler.TemplateFuncs).ParseGlob(filepath.Join(dir, "*.html"))
	if err != nil {
		return fmt.Errorf("load templates from %s: %w", dir, err)
	}
	router.SetHTMLTemplate(tmpl)
	return nil
}
