package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"chatimmo/internal/utils"
)

// Detector guesses the language a message is written in
type Detector interface {
	Detect(text string) language.Tag
}

// Translator rewrites text into a target language
type Translator interface {
	Translate(ctx context.Context, text string, target language.Tag) (string, error)
}

// LinguaDetector detects languages with lingua, choosing only among the
// languages the assistant works with. With fewer than two of them there is
// nothing to choose and every message is reported as the fallback.
type LinguaDetector struct {
	fallback language.Tag
	detector lingua.LanguageDetector
}

// NewLinguaDetector creates a detector choosing among fallback and candidates.
// Tags lingua does not know are ignored.
func NewLinguaDetector(fallback language.Tag, candidates ...language.Tag) *LinguaDetector {
	seen := make(map[lingua.Language]bool)
	var langs []lingua.Language
	for _, tag := range append([]language.Tag{fallback}, candidates...) {
		if l, ok := linguaLanguage(tag); ok && !seen[l] {
			seen[l] = true
			langs = append(langs, l)
		}
	}

	d := &LinguaDetector{fallback: fallback}
	if len(langs) >= 2 {
		d.detector = lingua.NewLanguageDetectorBuilder().FromLanguages(langs...).Build()
	}
	return d
}

// linguaLanguage maps a language tag to lingua through its ISO 639-1 code
func linguaLanguage(tag language.Tag) (lingua.Language, bool) {
	base, _ := tag.Base()
	for _, l := range lingua.AllLanguages() {
		if strings.EqualFold(l.IsoCode639_1().String(), base.String()) {
			return l, true
		}
	}
	return lingua.Unknown, false
}

// Detect implements Detector
func (d *LinguaDetector) Detect(text string) language.Tag {
	if d.detector == nil || strings.TrimSpace(text) == "" {
		return d.fallback
	}

	detected, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return d.fallback
	}

	tag, err := language.Parse(strings.ToLower(detected.IsoCode639_1().String()))
	if err != nil {
		return d.fallback
	}
	return tag
}

const translatePrompt = `You are a translation engine for a real-estate chat assistant.
Translate the user's message into %s.
Keep numbers, currency codes, unit symbols and place names exactly as written.
Reply with the translation only, without quotes or commentary.`

// LLMTranslator translates through a chat-completion model
type LLMTranslator struct {
	ai Completer
}

// NewLLMTranslator creates a translator backed by the given completer
func NewLLMTranslator(ai Completer) *LLMTranslator {
	return &LLMTranslator{ai: ai}
}

// Translate implements Translator
func (t *LLMTranslator) Translate(ctx context.Context, text string, target language.Tag) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	out, err := t.ai.Complete(ctx, fmt.Sprintf(translatePrompt, languageName(target)), text)
	if err != nil {
		return "", fmt.Errorf("translate to %s: %w", target, err)
	}
	out = utils.CleanCompletion(out)
	if out == "" {
		return "", fmt.Errorf("translate to %s: empty translation", target)
	}
	return out, nil
}

// languageName returns the English name of a language, e.g. "French" for fr
func languageName(tag language.Tag) string {
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return tag.String()
}

// sameLanguage compares two tags by their base language
func sameLanguage(a, b language.Tag) bool {
	ba, _ := a.Base()
	bb, _ := b.Base()
	return ba == bb
}
