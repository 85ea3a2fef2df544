package analytics

import (
	"regexp"
	"strings"
)

var (
	parenthesizedRe = regexp.MustCompile(`\((.*?)\)`)
	topicPrefixRe   = regexp.MustCompile(`^Topic\s*\d+\s*[-–—]?\s*`)
	dashSuffixRe    = regexp.MustCompile(`\s*[-–—]\s*.+$`)
)

// CleanUnitName derives the short display label of a unit for the bar chart.
//
// Precedence: the content of the first non-empty parenthesized group wins; otherwise a leading
// "Topic N" token and then a trailing " - suffix" are stripped; if nothing is left the trimmed
// raw name is used.
func CleanUnitName(raw string) string {
	if m := parenthesizedRe.FindStringSubmatch(raw); m != nil {
		if location := strings.TrimSpace(m[1]); location != "" {
			return location
		}
	}

	name := topicPrefixRe.ReplaceAllString(raw, "")
	name = dashSuffixRe.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	if name == "" {
		return strings.TrimSpace(raw)
	}
	return name
}
