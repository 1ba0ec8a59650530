package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	fencedBlock  = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.+?)\\s*```$")
	answerPrefix = regexp.MustCompile(`(?i)^(translation|traduction|answer|reply)\s*:\s*`)
)

// CleanCompletion strips the wrapping models tend to add around a plain-text
// answer: a markdown code fence, a leading "Translation:" label, matching
// outer quotes and control characters. Inner line breaks are kept.
func CleanCompletion(input string) string {
	out := strings.TrimSpace(removeControlCharacters(input))

	if m := fencedBlock.FindStringSubmatch(out); len(m) > 1 {
		out = strings.TrimSpace(m[1])
	}
	out = answerPrefix.ReplaceAllString(out, "")
	out = trimQuotes(out)

	return strings.TrimSpace(out)
}

// trimQuotes removes one pair of matching outer quotes
func trimQuotes(s string) string {
	pairs := [][2]string{{`"`, `"`}, {"'", "'"}, {"“", "”"}, {"«", "»"}}
	for _, p := range pairs {
		if len(s) >= len(p[0])+len(p[1]) && strings.HasPrefix(s, p[0]) && strings.HasSuffix(s, p[1]) {
			inner := s[len(p[0]) : len(s)-len(p[1])]
			if !strings.Contains(inner, p[0]) {
				return strings.TrimSpace(inner)
			}
		}
	}
	return s
}

// removeControlCharacters drops control runes other than newlines and tabs
func removeControlCharacters(input string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, input)
}
