package util

import "strings"

// IsToken reports whether s is an HTTP token, the grammar of header names.
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.2-2
func IsToken(s string) bool {
	return s != "" && strings.IndexFunc(s, notTchar) < 0
}

func notTchar(c rune) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return false
	}
	return !strings.ContainsRune("!#$%&'*+-.^_`|~", c)
}
