package catalog

import (
	"strings"

	"github.com/hbollon/go-edlib"
)

// Roman numeral tokens II–XIX mapped to their Arabic forms. X alone is
// intentionally absent to avoid "Mega Man X" → "Mega Man 10".
var romanNumerals = map[string]string{
	"ii": "2", "iii": "3", "iv": "4", "v": "5",
	"vi": "6", "vii": "7", "viii": "8", "ix": "9",
	"xi": "11", "xii": "12", "xiii": "13", "xiv": "14",
	"xv": "15", "xvi": "16", "xvii": "17", "xviii": "18", "xix": "19",
}

// MatchScore computes a title similarity score in [0, 1]. It is symmetric
// and deterministic. Both titles are normalized (lowercase, punctuation and
// diacritics stripped, roman numerals converted) and then scored as a blend
// of token-set overlap and a length-normalized edit-distance term.
//
// The token term takes the larger of Jaccard overlap and the containment
// coefficient, so a title that is a strict subset of another ("Halo" vs
// "Halo: Combat Evolved") still scores as the same game.
func MatchScore(titleA, titleB string) float64 {
	a := normalizeTitle(titleA)
	b := normalizeTitle(titleB)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	tokenScore := tokenOverlap(a, b)
	editScore := editSimilarity(a, b)

	return 0.6*tokenScore + 0.4*editScore
}

// tokenOverlap blends whitespace-token Jaccard with the containment
// coefficient (intersection over the smaller token set).
func tokenOverlap(a, b string) float64 {
	jaccard := float64(edlib.JaccardSimilarity(a, b, 0))

	tokensA := tokenSet(a)
	tokensB := tokenSet(b)
	smaller := len(tokensA)
	if len(tokensB) < smaller {
		smaller = len(tokensB)
	}
	if smaller == 0 {
		return jaccard
	}

	shared := 0
	for token := range tokensA {
		if _, ok := tokensB[token]; ok {
			shared++
		}
	}
	containment := float64(shared) / float64(smaller)

	if containment > jaccard {
		return containment
	}
	return jaccard
}

func editSimilarity(a, b string) float64 {
	sim, err := edlib.StringsSimilarity(a, b, edlib.Levenshtein)
	if err != nil {
		return 0
	}
	return float64(sim)
}

func tokenSet(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, token := range strings.Fields(s) {
		set[token] = struct{}{}
	}
	return set
}

// normalizeTitle reduces a title to lowercase alphanumeric words with roman
// numerals II–XIX converted, so "Final Fantasy VII" and "Final Fantasy 7"
// normalize identically.
func normalizeTitle(title string) string {
	segment := keySegment(title)
	if segment == keyFallbackSegment {
		return ""
	}

	words := strings.Fields(segment)
	for i, word := range words {
		if arabic, ok := romanNumerals[word]; ok {
			words[i] = arabic
		}
	}
	return strings.Join(words, " ")
}
