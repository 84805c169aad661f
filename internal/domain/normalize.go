package domain

import (
	"regexp"
	"strings"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{2,4}$`)

// NormalizeText trims surrounding whitespace.
func NormalizeText(v string) string {
	return strings.TrimSpace(v)
}

// NormalizeCode trims and uppercases a category or brand code.
func NormalizeCode(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// NormalizeOptionalText trims v and collapses a blank value to nil.
func NormalizeOptionalText(v *string) *string {
	if v == nil {
		return nil
	}
	t := NormalizeText(*v)
	if t == "" {
		return nil
	}
	return &t
}

// ValidCode reports whether v is an already-normalized catalog code.
func ValidCode(v string) bool {
	return codePattern.MatchString(v)
}
