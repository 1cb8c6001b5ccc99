package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Field aliases accepted from raw records, in lookup order. Different
// storefront APIs disagree on naming; the first present alias wins.
var (
	titleKeys    = []string{"title", "name", "game"}
	platformKeys = []string{"platform", "system", "console"}
	dateKeys     = []string{"release_date", "releaseDate", "released", "date", "year"}
	regionKeys   = []string{"regions", "region"}
	genreKeys    = []string{"genres", "genre"}
)

var yearTokenRegex = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// Normalize maps one raw source record into the canonical Record shape.
// It never fails: absent or malformed fields degrade to defaults — empty
// strings, nil year, empty sets. The source token records provenance.
func Normalize(raw RawRecord, sourceName string) Record {
	return Record{
		Title:       coerceString(firstPresent(raw, titleKeys)),
		Platform:    coerceString(firstPresent(raw, platformKeys)),
		ReleaseYear: extractYear(firstPresent(raw, dateKeys)),
		Regions:     coerceStringSet(firstPresent(raw, regionKeys)),
		Genres:      coerceStringSet(firstPresent(raw, genreKeys)),
		Source:      sourceName,
	}
}

func firstPresent(raw RawRecord, keys []string) interface{} {
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

// coerceString converts a loosely-typed value to a best-effort string.
func coerceString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		// JSON numbers decode as float64; print integers without exponent
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		return ""
	}
}

// coerceStringSet converts an optional array field into an encounter-ordered
// set of non-empty strings.
func coerceStringSet(v interface{}) []string {
	out := []string{}
	seen := map[string]struct{}{}

	appendValue := func(item interface{}) {
		s := coerceString(item)
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	switch val := v.(type) {
	case nil:
	case []interface{}:
		for _, item := range val {
			appendValue(item)
		}
	case []string:
		for _, item := range val {
			appendValue(item)
		}
	case string:
		// Single value, not an array — treat as a one-element set
		appendValue(val)
	}
	return out
}

// extractYear pulls a release year from date-like values. Handles ISO dates
// ("2023-06-15"), free text containing a 4-digit year ("Jul 9, 2013",
// "Coming 2024"), plain numbers, and time.Time values. Returns nil for
// anything ambiguous or outside 1900–2099.
func extractYear(v interface{}) *int {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		return yearInRange(val.Year())
	case float64:
		return yearInRange(int(val))
	case int:
		return yearInRange(val)
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil
		}
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return yearInRange(t.Year())
		}
		if token := yearTokenRegex.FindString(s); token != "" {
			year, err := strconv.Atoi(token)
			if err == nil {
				return yearInRange(year)
			}
		}
		return nil
	default:
		return nil
	}
}

func yearInRange(year int) *int {
	if year < 1900 || year > 2099 {
		return nil
	}
	return &year
}
