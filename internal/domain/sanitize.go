package domain

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

// SanitizeText strips all markup from user-supplied display text and trims
// surrounding whitespace. Entities produced by the policy are unescaped so
// names such as "O'Brien" round-trip unchanged.
func SanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}
