package catalog

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var keyShape = regexp.MustCompile(`^[a-z0-9 ]+___[a-z0-9 ]+$`)

func TestBuildKey_Deterministic(t *testing.T) {
	assert.Equal(t, "metroid prime___gamecube", BuildKey("Metroid Prime", "GameCube"))

	// Case, punctuation, and whitespace variants collide
	assert.Equal(t, BuildKey("Metroid Prime", "GameCube"), BuildKey("  METROID   PRIME!! ", "Game-Cube"))
}

func TestBuildKey_SpecialCharacters(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		platform string
		expected string
	}{
		{
			name:     "accents",
			title:    "Pokémon Red & Blue",
			platform: "Game Boy",
			expected: "pokemon red blue___game boy",
		},
		{
			name:     "colon subtitle",
			title:    "Metal Gear Solid 2: Sons of Liberty",
			platform: "PS2",
			expected: "metal gear solid 2 sons of liberty___ps2",
		},
		{
			name:     "apostrophes and brackets",
			title:    "Luigi's Mansion (USA)",
			platform: "GameCube",
			expected: "luigis mansion usa___gamecube",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := BuildKey(tt.title, tt.platform)
			assert.Equal(t, tt.expected, key)
			assert.Regexp(t, keyShape, key, "key must contain only [a-z0-9 ] segments")
		})
	}
}

func TestBuildKey_EmptySegmentsFallBack(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		platform string
	}{
		{name: "both empty", title: "", platform: ""},
		{name: "punctuation only", title: "!!!", platform: "---"},
		{name: "title empty", title: "", platform: "SNES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := BuildKey(tt.title, tt.platform)
			assert.Regexp(t, keyShape, key)
		})
	}

	assert.Equal(t, "unknown___unknown", BuildKey("", ""))
}

func TestKeyPlatform(t *testing.T) {
	assert.Equal(t, "gamecube", KeyPlatform(BuildKey("Metroid Prime", "GameCube")))
	assert.Equal(t, "", KeyPlatform("no separator here"))
}
