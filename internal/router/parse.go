package router

import (
	"regexp"
	"strings"

	"github.com/shoushou-fitness/clubbot/internal/textkey"
)

var (
	// one letter and five digits, e.g. A00012
	memberIDShape = regexp.MustCompile(`(?i)^[a-z]\d{5}$`)
	// longest non-digit prefix as the name, trailing local mobile number
	namePhonePattern = regexp.MustCompile(`^(\D+)(09\d{8})$`)
	datePattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$|^\d{4}/\d{2}/\d{2}$`)
)

// NamePhone is a parsed "name + mobile number" input.
type NamePhone struct {
	Name  string
	Phone string
}

// IsMemberIDShape reports whether text looks like a bare member id.
func IsMemberIDShape(text string) bool {
	return memberIDShape.MatchString(strings.TrimSpace(text))
}

// ParseNamePhone splits "王小明0912345678" into name and phone. Whitespace
// inside the name is dropped.
func ParseNamePhone(text string) (NamePhone, bool) {
	m := namePhonePattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return NamePhone{}, false
	}
	name := textkey.Name(m[1])
	if name == "" {
		return NamePhone{}, false
	}
	return NamePhone{Name: name, Phone: m[2]}, true
}

// ParseDate accepts YYYY-MM-DD or YYYY/MM/DD and returns the hyphenated form.
func ParseDate(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !datePattern.MatchString(text) {
		return "", false
	}
	return textkey.Date(text), true
}
