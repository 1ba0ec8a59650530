package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"chatimmo/internal/config"
	"chatimmo/internal/engine"
	"chatimmo/internal/logging"
	"chatimmo/internal/model"
)

// Streaming event names
const (
	EventDetecting  = "detecting"
	EventTranslated = "translated"
	EventIntent     = "intent"
	EventResults    = "results"
	EventDelta      = "delta"
)

// ChatEventCallback is called for streaming chat events
type ChatEventCallback func(event string, data any) error

// ChatConfig holds the reply settings of the chat service
type ChatConfig struct {
	DisplayLimit       int
	FallbackLimit      int
	MaxLimit           int
	FallbackMode       string
	Greeting           string
	WorkingLanguage    language.Tag
	TranslateLanguages []language.Tag
}

// NewChatConfig derives the chat settings from the application configuration
func NewChatConfig(cfg *config.Config) (ChatConfig, error) {
	working, err := language.Parse(cfg.Assistant.WorkingLanguage)
	if err != nil {
		return ChatConfig{}, fmt.Errorf("working language %q: %w", cfg.Assistant.WorkingLanguage, err)
	}

	translate := make([]language.Tag, 0, len(cfg.Assistant.TranslateLanguages))
	for _, code := range cfg.Assistant.TranslateLanguages {
		tag, err := language.Parse(code)
		if err != nil {
			return ChatConfig{}, fmt.Errorf("translate language %q: %w", code, err)
		}
		translate = append(translate, tag)
	}

	return ChatConfig{
		DisplayLimit:       cfg.Search.DisplayLimit,
		FallbackLimit:      cfg.Search.FallbackLimit,
		MaxLimit:           cfg.Search.MaxLimit,
		FallbackMode:       cfg.Assistant.FallbackMode,
		Greeting:           cfg.Assistant.Greeting,
		WorkingLanguage:    working,
		TranslateLanguages: translate,
	}, nil
}

// ChatService turns chat messages into property recommendations
type ChatService struct {
	engine     *engine.Engine
	intent     *IntentParser
	detector   Detector
	translator Translator
	generator  Generator
	cfg        ChatConfig
	log        zerolog.Logger
}

// NewChatService creates a new chat service. translator and generator may be
// nil, in which case messages are never translated and the static greeting is
// always used.
func NewChatService(
	eng *engine.Engine,
	intentParser *IntentParser,
	detector Detector,
	translator Translator,
	generator Generator,
	cfg ChatConfig,
	log zerolog.Logger,
) *ChatService {
	return &ChatService{
		engine:     eng,
		intent:     intentParser,
		detector:   detector,
		translator: translator,
		generator:  generator,
		cfg:        cfg,
		log:        logging.Component(log, "chat"),
	}
}

// Respond answers a single chat message
func (s *ChatService) Respond(ctx context.Context, text string) (*model.ChatReply, error) {
	return s.respond(ctx, text, nil)
}

// RespondStream answers a chat message, reporting each step to callback
func (s *ChatService) RespondStream(ctx context.Context, text string, callback ChatEventCallback) (*model.ChatReply, error) {
	return s.respond(ctx, text, callback)
}

func (s *ChatService) respond(ctx context.Context, text string, callback ChatEventCallback) (*model.ChatReply, error) {
	emit := func(event string, data any) error {
		if callback == nil {
			return nil
		}
		return callback(event, data)
	}

	text = strings.TrimSpace(text)
	reply := &model.ChatReply{Language: s.cfg.WorkingLanguage.String()}
	if text == "" {
		reply.Text = s.cfg.Greeting
		return reply, nil
	}

	if err := emit(EventDetecting, map[string]any{
		"status": "Detecting language...",
	}); err != nil {
		return nil, err
	}

	userLang := s.detector.Detect(text)
	reply.Language = userLang.String()

	working := text
	if s.shouldTranslate(userLang) {
		translated, err := s.translator.Translate(ctx, text, s.cfg.WorkingLanguage)
		if err != nil {
			s.log.Warn().Err(err).Str("language", reply.Language).Msg("⚠️  Translation failed, using the original message")
		} else {
			working = translated
			reply.Translated = true
		}
		if err := emit(EventTranslated, map[string]any{
			"language":   reply.Language,
			"text":       working,
			"translated": reply.Translated,
		}); err != nil {
			return nil, err
		}
	}

	intentResult := s.intent.Parse(working)
	if err := emit(EventIntent, intentResult); err != nil {
		return nil, err
	}

	if intentResult.Query.IsEmpty() {
		reply.Text, reply.Generated = s.fallbackReply(ctx, working, callback != nil, emit)
	} else {
		q := intentResult.Query
		reply.Intent = &q

		rec, err := s.engine.Recommend(q)
		switch {
		case errors.Is(err, engine.ErrInvalidQuery):
			reply.Text = "Sorry, I could not use those criteria: " + err.Error()
		case err != nil:
			return nil, err
		default:
			reply.Tier = string(rec.Tier)
			reply.Text, reply.Listings = formatRecommendation(rec, s.cfg.DisplayLimit, s.cfg.FallbackLimit)
			if rec.Tier.Exact() {
				reply.Listings = engine.Top(rec.Listings, s.cfg.MaxLimit)
			}

			s.log.Info().
				Strs("matched", intentResult.Matched).
				Str("tier", reply.Tier).
				Int("total", len(rec.Listings)).
				Msg("🔍 Recommendation computed")

			if err := emit(EventResults, map[string]any{
				"tier":     reply.Tier,
				"total":    len(rec.Listings),
				"listings": reply.Listings,
			}); err != nil {
				return nil, err
			}
		}
	}

	if reply.Translated {
		back, err := s.translator.Translate(ctx, reply.Text, userLang)
		if err != nil {
			s.log.Warn().Err(err).Str("language", reply.Language).Msg("⚠️  Reply translation failed, answering in the working language")
		} else {
			reply.Text = back
		}
	}

	return reply, nil
}

func (s *ChatService) shouldTranslate(lang language.Tag) bool {
	if s.translator == nil || sameLanguage(lang, s.cfg.WorkingLanguage) {
		return false
	}
	for _, t := range s.cfg.TranslateLanguages {
		if sameLanguage(lang, t) {
			return true
		}
	}
	return false
}

// fallbackReply answers a message without search criteria. It returns the
// reply and whether it was generated by the model.
func (s *ChatService) fallbackReply(ctx context.Context, message string, stream bool, emit func(string, any) error) (string, bool) {
	if s.cfg.FallbackMode != config.FallbackGenerate || s.generator == nil {
		return s.cfg.Greeting, false
	}

	var (
		out string
		err error
	)
	if stream {
		out, err = s.generator.GenerateStream(ctx, message, func(delta string) error {
			return emit(EventDelta, map[string]any{"content": delta})
		})
	} else {
		out, err = s.generator.Generate(ctx, message)
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("⚠️  Reply generation failed, using the greeting")
		return s.cfg.Greeting, false
	}
	return out, true
}

// Search runs a structured query and returns the annotated results
func (s *ChatService) Search(ctx context.Context, req *model.SearchRequest) (*model.SearchResponse, error) {
	startTime := time.Now()

	filters := req.Filters
	var intentResult *model.IntentResult
	if strings.TrimSpace(req.Query) != "" {
		intentResult = s.intent.Parse(req.Query)
		filters = mergeFilters(req.Filters, intentResult.Query)
	}

	topK := s.cfg.DisplayLimit
	if req.Options != nil && req.Options.TopK > 0 {
		topK = req.Options.TopK
	}
	if topK > s.cfg.MaxLimit {
		topK = s.cfg.MaxLimit
	}

	rec, err := s.engine.Recommend(filters)
	if err != nil {
		return nil, err
	}

	results := RankResults(engine.Top(rec.Listings, topK), filters, rec.Tier)

	return &model.SearchResponse{
		Results: results,
		Total:   len(rec.Listings),
		Tier:    string(rec.Tier),
		Intent:  intentResult,
		Took:    time.Since(startTime).Milliseconds(),
	}, nil
}

// mergeFilters fills the constraints missing from explicit with the ones
// extracted from free text
func mergeFilters(explicit, extracted model.Query) model.Query {
	merged := explicit
	if merged.BedroomsMin == nil {
		merged.BedroomsMin = extracted.BedroomsMin
	}
	if merged.PriceMax == nil {
		merged.PriceMax = extracted.PriceMax
	}
	if merged.SurfaceMin == nil {
		merged.SurfaceMin = extracted.SurfaceMin
	}
	if merged.Location == nil {
		merged.Location = extracted.Location
	}
	return merged
}

// Catalog returns the listings the service answers from
func (s *ChatService) Catalog() model.Catalog {
	return s.engine.Catalog()
}
