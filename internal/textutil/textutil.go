// Package textutil provides small text helpers shared across the pipeline:
// URL slug generation for planned articles and display truncation for
// tabular output.
package textutil

import "strings"

// Slugify converts a title to a lowercase URL slug. Runs of characters
// outside [a-z0-9] collapse to a single dash; leading and trailing dashes
// are trimmed.
func Slugify(value string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(value) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// Truncate shortens value to at most limit bytes, replacing the tail with an
// ellipsis. Values at or under the limit are returned unchanged.
func Truncate(value string, limit int) string {
	if limit <= 3 || len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}
