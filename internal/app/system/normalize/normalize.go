// Package normalize trims and canonicalizes user-entered values before they
// are compared or stored.
package normalize

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/dalemusser/waffle/pantry/text"
)

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses inner runs of spaces.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role lowercases a role value.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases a status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a query string value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// UserNameBase builds the "first.last" handle used at registration.
// Diacritics are folded and anything that is not a letter or digit is
// dropped, so "José María" / "O'Neil" becomes "josemaria.oneil".
func UserNameBase(first, last string) string {
	return handlePart(first) + "." + handlePart(last)
}

func handlePart(s string) string {
	folded := text.Fold(s)
	var b strings.Builder
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// UserNameCandidate returns base for n == 0 and base+n otherwise.
func UserNameCandidate(base string, n int) string {
	if n == 0 {
		return base
	}
	return base + strconv.Itoa(n)
}

// Amount parses a money value entered as text. Anything that does not parse,
// or is negative, yields 0.
func Amount(s string) float64 {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
