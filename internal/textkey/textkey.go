// Package textkey derives the comparison keys used to match free-form user
// input against sheet cells.
package textkey

import (
	"strings"
	"time"
	"unicode"
)

var dateLayouts = []string{"2006-1-2", "2006/1/2"}

// Digits keeps only the ASCII digits of s. "A-000 12" and "A00012" share the
// key "00012"; any string containing the same digits matches too.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Name removes every whitespace rune.
func Name(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Phone keeps the digits and drops one leading zero, so a local mobile
// number matches a cell whose leading zero was lost to numeric formatting.
func Phone(s string) string {
	return strings.TrimPrefix(Digits(s), "0")
}

// Date turns "2025/05/01" and "2025/5/1" into "2025-05-01". Text that is
// not a calendar date is returned trimmed with "/" replaced by "-".
func Date(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly)
		}
	}
	return strings.ReplaceAll(s, "/", "-")
}
