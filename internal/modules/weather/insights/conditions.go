package insights

import (
	"regexp"
	"strings"
)

// precipitationPattern counts precipitation steps in the outlook window.
// Substring match, not whole-word: "drainage" matches.
var precipitationPattern = regexp.MustCompile(`(?i)rain|snow|sleet`)

var precipitationKeywords = []string{"rain", "snow", "sleet"}

// HasPrecipitation reports whether summary mentions rain, snow or sleet.
func HasPrecipitation(summary string) bool {
	s := strings.ToLower(summary)
	for _, kw := range precipitationKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// IsSnowing reports whether summary mentions snow.
func IsSnowing(summary string) bool {
	return strings.Contains(strings.ToLower(summary), "snow")
}
