package service

import (
	"fmt"
	"strconv"
	"strings"

	"chatimmo/internal/engine"
	"chatimmo/internal/model"
)

// Reply texts
const (
	ReplyExactHeader   = "Here are some suggestions before showing you the matching properties:"
	ReplySimilarHeader = "Sorry, no properties match your preferences exactly. Here are some similar options:"
	ReplyNoMatch       = "Sorry, no properties match your preferences."
)

// snippetLength is the number of description characters shown under a listing
const snippetLength = 100

// formatRecommendation renders the chat reply for a recommendation. Exact
// matches list up to displayLimit listings with a description snippet;
// relaxed matches list up to fallbackLimit listings without one.
func formatRecommendation(rec engine.Recommendation, displayLimit, fallbackLimit int) (string, []model.Listing) {
	switch {
	case rec.Tier == engine.TierNone || len(rec.Listings) == 0:
		return ReplyNoMatch, []model.Listing{}
	case rec.Tier.Exact():
		shown := engine.Top(rec.Listings, displayLimit)
		return formatListings(ReplyExactHeader, shown, true), shown
	default:
		shown := engine.Top(rec.Listings, fallbackLimit)
		return formatListings(ReplySimilarHeader, shown, false), shown
	}
}

func formatListings(header string, listings []model.Listing, withSnippet bool) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')
	for _, l := range listings {
		b.WriteString(formatListingLine(l))
		b.WriteByte('\n')
		if withSnippet {
			fmt.Fprintf(&b, "  Description: %s...\n", snippet(l.Description, snippetLength))
		}
	}
	return b.String()
}

// formatListingLine renders one listing as a reply bullet
func formatListingLine(l model.Listing) string {
	return fmt.Sprintf("- %s (Price: %s TND, Bedrooms: %d, Surface: %s m², Location: %s)",
		l.Title, formatAmount(l.Price), l.Bedrooms, formatAmount(l.Surface), l.Location)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// snippet returns at most n leading characters of s
func snippet(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
