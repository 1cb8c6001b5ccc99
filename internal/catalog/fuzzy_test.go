package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchScore_NearDuplicatesOutscoreUnrelated(t *testing.T) {
	tests := []struct {
		name      string
		titleA    string
		titleB    string
		unrelated string
	}{
		{
			name:      "roman numeral variant",
			titleA:    "Final Fantasy VII",
			titleB:    "Final Fantasy 7",
			unrelated: "Halo Infinite",
		},
		{
			name:      "punctuation variant",
			titleA:    "Legend of Zelda: Ocarina of Time",
			titleB:    "Legend of Zelda - Ocarina of Time",
			unrelated: "Gran Turismo",
		},
		{
			name:      "subtitle added by one source",
			titleA:    "Halo",
			titleB:    "Halo: Combat Evolved",
			unrelated: "Final Fantasy VII",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			near := MatchScore(tt.titleA, tt.titleB)
			far := MatchScore(tt.titleA, tt.unrelated)

			assert.Greater(t, near, 0.5, "near-duplicate pair must clear the default threshold")
			assert.Less(t, far, near, "unrelated pair must score strictly lower")
		})
	}
}

func TestMatchScore_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"Final Fantasy VII", "Final Fantasy 7"},
		{"Halo", "Halo: Combat Evolved"},
		{"Street Fighter II", "Mortal Kombat"},
	}

	for _, pair := range pairs {
		assert.Equal(t, MatchScore(pair[0], pair[1]), MatchScore(pair[1], pair[0]),
			"score(%q, %q) must be symmetric", pair[0], pair[1])
	}
}

func TestMatchScore_IdenticalAfterNormalization(t *testing.T) {
	assert.Equal(t, 1.0, MatchScore("Final Fantasy VII", "final fantasy 7"))
	assert.Equal(t, 1.0, MatchScore("Pokémon Red", "Pokemon Red!"))
}

func TestMatchScore_EmptyTitles(t *testing.T) {
	assert.Equal(t, 0.0, MatchScore("", "Halo"))
	assert.Equal(t, 0.0, MatchScore("", ""))
	assert.Equal(t, 0.0, MatchScore("!!!", "Halo"))
}

func TestMatchScore_Bounds(t *testing.T) {
	titles := []string{
		"Final Fantasy VII", "Halo Infinite", "Tetris", "Super Mario World",
		"Metal Gear Solid 2: Sons of Liberty", "Pokémon Red & Blue",
	}

	for _, a := range titles {
		for _, b := range titles {
			score := MatchScore(a, b)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	}
}

func TestNormalizeTitle_RomanNumerals(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "Final Fantasy VII", expected: "final fantasy 7"},
		{input: "Street Fighter II", expected: "street fighter 2"},
		{input: "Mega Man X", expected: "mega man x"}, // X never converted
		{input: "Grand Theft Auto V", expected: "grand theft auto 5"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, normalizeTitle(tt.input))
	}
}
