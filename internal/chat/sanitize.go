package chat

import "strings"

var displayEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// Sanitize escapes the characters that are unsafe to render as HTML.
// It is applied exactly once, when user text enters the hub.
func Sanitize(s string) string {
	return displayEscaper.Replace(s)
}
