// Package content trims raw HTML down to something worth spending model
// tokens on.
package content

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultLimit is the character budget used when callers don't supply one.
const DefaultLimit = 8000

var (
	scriptRe   = regexp.MustCompile(`(?is)<script.*?>.*?</script>`)
	styleRe    = regexp.MustCompile(`(?is)<style.*?>.*?</style>`)
	noscriptRe = regexp.MustCompile(`(?is)<noscript.*?>.*?</noscript>`)
	commentRe  = regexp.MustCompile(`(?s)<!--.*?-->`)
	wsRe       = regexp.MustCompile(`\s+`)
	dataAttrRe = regexp.MustCompile(`(?i)data-[a-z-]+="[^"]*"`)

	// blobRe matches brace-delimited spans of 500+ characters, which in
	// practice are inline JSON state dumps (hydration payloads, analytics
	// config) that would dominate the token budget.
	blobRe = regexp.MustCompile(`\{[^}]{500,}\}`)
)

// Reduce strips scripts, styles, comments, and large inline blobs from html,
// collapses whitespace, and truncates to limit characters. Stripping happens
// before truncation so the cut lands in meaningful markup rather than inside
// a script body. Pure function; never fails.
func Reduce(html string, limit int) string {
	if html == "" {
		return ""
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	clean := scriptRe.ReplaceAllString(html, "")
	clean = styleRe.ReplaceAllString(clean, "")
	clean = commentRe.ReplaceAllString(clean, "")
	clean = noscriptRe.ReplaceAllString(clean, "")
	clean = wsRe.ReplaceAllString(clean, " ")
	clean = dataAttrRe.ReplaceAllString(clean, "")
	clean = blobRe.ReplaceAllString(clean, "{}")

	return truncate(clean, limit)
}

// truncate cuts s to at most limit bytes without splitting a UTF-8 rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return strings.TrimRight(s[:limit], " ")
}
