package main

import (
	"context"
	"fmt"

	"chatimmo/internal/config"
	"chatimmo/internal/engine"
	"chatimmo/internal/model"
	"chatimmo/internal/repository"
	"chatimmo/internal/service"

	"github.com/rs/zerolog"
)

// loadCatalog reads the listings once from the configured source
func loadCatalog(ctx context.Context, cfg *config.Config, log zerolog.Logger) (model.Catalog, error) {
	switch cfg.Catalog.Source {
	case config.SourcePostgres:
		repo, err := repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			return nil, err
		}
		defer repo.Close()

		log.Info().Str("host", cfg.PostgreSQL.Host).Msg("✅ Connected to PostgreSQL database")
		return repo.LoadCatalog(ctx)
	default:
		return repository.LoadCSV(cfg.Catalog.CSVPath)
	}
}

// buildChatService loads the catalog and wires the chat service around it
func buildChatService(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*service.ChatService, error) {
	catalog, err := loadCatalog(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	eng := engine.New(catalog)
	log.Info().
		Str("source", cfg.Catalog.Source).
		Int("listings", eng.Len()).
		Msg("✅ Catalog loaded")

	chatCfg, err := service.NewChatConfig(cfg)
	if err != nil {
		return nil, err
	}

	var (
		translator service.Translator
		generator  service.Generator
	)
	if cfg.OpenAI.Enabled {
		ai := service.NewOpenAIClient(&cfg.OpenAI, log)
		translator = service.NewLLMTranslator(ai)
		generator = service.NewLLMGenerator(ai)
	} else {
		log.Warn().Msg("⚠️  OpenAI is disabled - messages are not translated and the static greeting is used")
	}

	return service.NewChatService(
		eng,
		service.NewIntentParser(),
		service.NewLinguaDetector(chatCfg.WorkingLanguage, chatCfg.TranslateLanguages...),
		translator,
		generator,
		chatCfg,
		log,
	), nil
}
