package store

import (
	"regexp"
	"strings"
)

var whitespaceRuns = regexp.MustCompile(`\s+`)

// Slugify derives a channel id from its name: lowercased, whitespace runs
// replaced with single hyphens. "Dev Talk" -> "dev-talk".
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	return whitespaceRuns.ReplaceAllString(slug, "-")
}
