// Package textutil holds small text helpers shared across the pipeline.
package textutil

import "unicode/utf8"

// Clip cuts s to at most limit bytes without splitting a rune.
func Clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}

	return s[:limit]
}
