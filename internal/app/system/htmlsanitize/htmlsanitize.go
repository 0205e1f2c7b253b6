// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips markup from user-entered text before it
// is persisted. Item text and comments are plain text in this app, so
// the strict policy is used: all tags are removed, content is kept.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// StripTags removes every HTML element from s and returns the
// remaining text with entities decoded. Plain text passes through
// unchanged.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	cleaned := strict.Sanitize(s)
	// bluemonday entity-escapes its output; decode so round-tripped
	// plain text stays byte-identical.
	return strings.TrimSpace(html.UnescapeString(cleaned))
}
