package utils

import (
	"regexp"
	"strings"
)

// locationAliases maps spellings visitors use to the area tag listings carry
var locationAliases = []struct {
	pattern *regexp.Regexp
	tag     string
}{
	{regexp.MustCompile(`(?i)^(les\s+)?(berges\s+du\s+)?lac[\s\-_]*(2|ii|deux)$`), "Lac2"},
	{regexp.MustCompile(`(?i)^(grand[\s\-]+)?tunis([\s\-]+(centre|center|ville|city))?$`), "Tunis"},
	{regexp.MustCompile(`(?i)^(centre|center)[\s\-]+(ville|of\s+tunis|de\s+tunis)$`), "Tunis"},
}

var spaces = regexp.MustCompile(`\s+`)

// NormalizeLocation rewrites a known alias of an area ("lac 2", "Les Berges
// du Lac II", "Tunis centre") to its tag. Anything else is returned with its
// whitespace collapsed.
func NormalizeLocation(location string) string {
	cleaned := spaces.ReplaceAllString(strings.TrimSpace(location), " ")
	for _, alias := range locationAliases {
		if alias.pattern.MatchString(cleaned) {
			return alias.tag
		}
	}
	return cleaned
}
