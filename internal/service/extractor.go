package service

import (
	"regexp"
	"strconv"
	"strings"

	"chatimmo/internal/model"
	"chatimmo/internal/utils"
)

// Slot names reported in IntentResult.Matched
const (
	SlotBedrooms = "bedrooms"
	SlotPrice    = "price"
	SlotSurface  = "surface"
	SlotLocation = "location"
)

var (
	bedroomsPattern = regexp.MustCompile(`(?i)\b(\d+)\s*bedrooms?`)
	pricePattern    = regexp.MustCompile(`(?i)\bprice\s*under\s*(\d+)`)
	surfacePattern  = regexp.MustCompile(`(?i)\bsurface\s*at least\s*(\d+)`)
	locationPattern = regexp.MustCompile(`(?i)\b(in|at|near)\s+([\p{L}\p{N}_\s]+)`)

	// "surface at least 80" must not read as a location introduced by "at"
	atLeastPattern = regexp.MustCompile(`(?i)^least\b`)

	// a captured location ends where the next slot phrase begins
	slotPhrasePattern = regexp.MustCompile(`(?i)\b(price|surface|\d+\s*bedrooms?)\b`)
)

// IntentParser turns a free-text message into a structured query using
// fixed English patterns. It is stateless and safe for concurrent use.
type IntentParser struct{}

// NewIntentParser creates a new intent parser
func NewIntentParser() *IntentParser {
	return &IntentParser{}
}

// Parse extracts the bedrooms, price, surface and location slots from text.
// The first occurrence of each pattern wins; text with no recognizable slot
// yields an empty query. Known spellings of an area are rewritten to its tag.
func (p *IntentParser) Parse(text string) *model.IntentResult {
	result := &model.IntentResult{Matched: []string{}}

	if m := bedroomsPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			result.Query.BedroomsMin = &n
			result.Matched = append(result.Matched, SlotBedrooms)
		}
	}

	if m := pricePattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			result.Query.PriceMax = &v
			result.Matched = append(result.Matched, SlotPrice)
		}
	}

	if m := surfacePattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			result.Query.SurfaceMin = &v
			result.Matched = append(result.Matched, SlotSurface)
		}
	}

	if loc, ok := extractLocation(text); ok {
		result.Query.Location = &loc
		result.Matched = append(result.Matched, SlotLocation)
	}

	return result
}

func extractLocation(text string) (string, bool) {
	offset := 0
	for offset < len(text) {
		m := locationPattern.FindStringSubmatchIndex(text[offset:])
		if m == nil {
			return "", false
		}
		prepEnd := offset + m[3]
		words := text[offset+m[4] : offset+m[5]]
		offset = prepEnd

		if atLeastPattern.MatchString(strings.TrimLeft(words, " \t\r\n")) {
			continue
		}
		if cut := slotPhrasePattern.FindStringIndex(words); cut != nil {
			words = words[:cut[0]]
		}
		if loc := utils.NormalizeLocation(words); loc != "" {
			return loc, true
		}
	}
	return "", false
}
