// Package email provides lightweight email helpers for contact fields.
package email

import (
	"strings"
	"unicode"
)

// Valid reports whether s looks like a deliverable address. This is a
// structural check, not RFC validation; ownership is proven elsewhere.
func Valid(s string) bool {
	at := strings.IndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return false
	}
	domain := s[at+1:]
	if strings.ContainsAny(s, " \t") || strings.IndexByte(domain, '@') >= 0 {
		return false
	}
	return strings.IndexByte(domain, '.') > 0
}

// DeriveNameFromEmail splits the local part of an address into a display
// first and last name, for contacts entered without one.
func DeriveNameFromEmail(email string) (string, string) {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "User", "User"
	}

	first := capitalize(parts[0])
	last := "User"
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}
	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
