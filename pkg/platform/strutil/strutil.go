// Package strutil cleans user- and operator-supplied string lists.
package strutil

import "strings"

// Compact trims each value and drops empties and repeats, keeping first-seen
// order. A nil or empty input is returned unchanged.
func Compact(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// SplitList splits a separated list such as an env var value and compacts it.
// It returns nil when nothing remains.
func SplitList(s, sep string) []string {
	out := Compact(strings.Split(s, sep))
	if len(out) == 0 {
		return nil
	}
	return out
}
