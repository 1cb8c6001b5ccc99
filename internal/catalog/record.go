// Package catalog defines the canonical game record shape that every source
// normalizes into, plus the identity, similarity, and merge logic that folds
// records from heterogeneous sources into one versioned catalog entry.
//
// Adding a new source means producing RawRecords. The normalizer, key
// builder, and merge engine never change.
package catalog

// RawRecord is an untyped bag of fields as delivered by a source adapter.
// Any field may be absent, null, or the wrong type — normalization degrades
// to defaults rather than failing.
type RawRecord map[string]interface{}

// Record is the canonical normalized shape for one game from one or more
// sources. Regions and Genres are encounter-ordered sets (no duplicates).
// Source starts as a single provenance token and becomes a comma-joined
// list as records merge; duplicates are deliberately kept.
type Record struct {
	Title       string   `json:"title"`
	Platform    string   `json:"platform"`
	ReleaseYear *int     `json:"releaseYear"`
	Regions     []string `json:"regions"`
	Genres      []string `json:"genres"`
	Source      string   `json:"source"`
}

// Entry is a versioned catalog entry owned by the store. Version starts at 1
// and only increases, by exactly 1 per content change.
type Entry struct {
	Key     string `json:"key"`
	Version int    `json:"version"`
	Record  Record `json:"record"`
}

// Equal reports whether two records are deep-equal field for field,
// including Source provenance. This comparison drives version bumps.
func (r Record) Equal(other Record) bool {
	if r.Title != other.Title || r.Platform != other.Platform || r.Source != other.Source {
		return false
	}
	if !intPtrEqual(r.ReleaseYear, other.ReleaseYear) {
		return false
	}
	return stringsEqual(r.Regions, other.Regions) && stringsEqual(r.Genres, other.Genres)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// stringsEqual treats nil and empty slices as equal.
func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
