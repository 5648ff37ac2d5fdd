// Package htmlsanitize cleans free text that users attach to payments,
// discounts and reminders before it is stored.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every tag; notes are plain text.
var strict = bluemonday.StrictPolicy()

// MaxNoteLength bounds stored note text.
const MaxNoteLength = 1000

// Note strips markup and trims s, then truncates it to MaxNoteLength runes.
// Entities produced by the policy are decoded again since notes are served
// as JSON, not HTML.
func Note(s string) string {
	s = strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
	if r := []rune(s); len(r) > MaxNoteLength {
		s = string(r[:MaxNoteLength])
	}
	return s
}
