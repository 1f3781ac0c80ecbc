package pipeline

import (
	"regexp"
	"strings"
	"unicode"
)

// Characters allowed to flow into engine allow/deny lists: ASCII
// alphanumerics, CJK Unified Ideographs, a fixed set of full-width
// punctuation, and the symbols _%+-=. Everything else is stripped so a
// caller-supplied list cannot break the engine configuration.
var charsetDisallowed = regexp.MustCompile(`[^0-9A-Za-z\x{4e00}-\x{9fff}，。！？：；、（）【】《》“”‘’＋－＝％_%+=-]`)

// SanitizeCharset cleans a caller-supplied allow-list or deny-list string.
// Returns the empty string when nothing survives.
func SanitizeCharset(list string) string {
	if list == "" {
		return ""
	}

	cleaned := charsetDisallowed.ReplaceAllString(list, "")
	cleaned = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, cleaned)

	return cleaned
}
