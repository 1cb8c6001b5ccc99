package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// KeySeparator joins the title and platform segments of a deterministic key.
const KeySeparator = "___"

// keyFallbackSegment stands in for a segment that normalizes to nothing, so
// every key still matches the `[a-z0-9 ]+___[a-z0-9 ]+` shape.
const keyFallbackSegment = "unknown"

// BuildKey derives the deterministic identity string for a (title, platform)
// pair: both segments lowercased, stripped of everything outside [a-z0-9 ],
// whitespace collapsed, joined by "___". Pure and total — identical pairs
// modulo case, whitespace, punctuation, and diacritics always collide.
func BuildKey(title, platform string) string {
	return keySegment(title) + KeySeparator + keySegment(platform)
}

// KeyPlatform returns the platform segment of a deterministic key.
func KeyPlatform(key string) string {
	if idx := strings.LastIndex(key, KeySeparator); idx >= 0 {
		return key[idx+len(KeySeparator):]
	}
	return ""
}

// KeySegment normalizes a single value into key-segment form. Exposed for
// callers that need to compare against one side of a key.
func KeySegment(input string) string {
	return keySegment(input)
}

func keySegment(input string) string {
	s := removeDiacritics(input)
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		}
	}

	// Collapse runs of whitespace left behind by stripped punctuation
	segment := strings.Join(strings.Fields(b.String()), " ")
	if segment == "" {
		return keyFallbackSegment
	}
	return segment
}

// removeDiacritics strips combining marks so accented titles ("Pokémon")
// normalize to their plain-ASCII form before the alphabet filter runs.
func removeDiacritics(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	if normalized, _, err := transform.String(t, s); err == nil {
		return normalized
	}
	return s
}
