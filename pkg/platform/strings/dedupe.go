// Package strings provides list normalization helpers for free-text answers.
package strings

import "strings"

// DedupeAndTrim trims each element and drops blanks and duplicates,
// preserving first-seen order. Answer lists collected from forms routinely
// carry stray whitespace and repeated entries.
func DedupeAndTrim(values []string) []string {
	return normalize(values, false)
}

// DedupeAndTrimLower is DedupeAndTrim with case folding, for values that are
// case-insensitive identifiers such as email domains.
func DedupeAndTrimLower(values []string) []string {
	return normalize(values, true)
}

func normalize(values []string, lower bool) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if lower {
			v = strings.ToLower(v)
		}
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
