// Package contact canonicalizes submitter identifiers such as
// "whatsapp:+15551234567" into the key used for grievance records.
package contact

import "strings"

// Normalize strips one leading channel-scheme marker ("whatsapp:", "sms:",
// "tel:") and then one leading '+'.
//
// A marker or sign is only stripped when what follows it would not itself be
// stripped, so the result is always a fixed point: Normalize(Normalize(x)) ==
// Normalize(x). Inputs like "++1" or "sms:tel:1" are returned unchanged.
func Normalize(raw string) string {
	s := raw
	if rest, ok := cutScheme(s); ok && !hasScheme(rest) {
		s = rest
	}
	if rest, ok := strings.CutPrefix(s, "+"); ok && !strings.HasPrefix(rest, "+") && !hasScheme(rest) {
		s = rest
	}
	return s
}

func hasScheme(s string) bool {
	_, ok := cutScheme(s)
	return ok
}

// cutScheme splits off "<scheme>:" where scheme is a letter followed by
// letters, digits, '+', '.' or '-'.
func cutScheme(s string) (string, bool) {
	if s == "" || !isLetter(s[0]) {
		return s, false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ':':
			return s[i+1:], true
		case isLetter(c), c >= '0' && c <= '9', c == '+', c == '.', c == '-':
		default:
			return s, false
		}
	}
	return s, false
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
