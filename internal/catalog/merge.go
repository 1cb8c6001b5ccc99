package catalog

import "strings"

// Merge folds two or more records that share an identity into one canonical
// record:
//
//   - title, platform, releaseYear: first non-empty/non-nil value wins, in
//     encounter order
//   - regions, genres: set union across all records, encounter order
//   - source: comma-joined provenance tokens in encounter order, duplicates
//     kept — two records both from "source1" merge to "source1,source1"
//
// Merging is pure, synchronous computation with no failure mode.
func Merge(records ...Record) Record {
	merged := Record{
		Regions: []string{},
		Genres:  []string{},
	}

	var sources []string
	seenRegions := map[string]struct{}{}
	seenGenres := map[string]struct{}{}

	for _, rec := range records {
		if merged.Title == "" {
			merged.Title = rec.Title
		}
		if merged.Platform == "" {
			merged.Platform = rec.Platform
		}
		if merged.ReleaseYear == nil && rec.ReleaseYear != nil {
			year := *rec.ReleaseYear
			merged.ReleaseYear = &year
		}
		for _, region := range rec.Regions {
			if _, ok := seenRegions[region]; !ok {
				seenRegions[region] = struct{}{}
				merged.Regions = append(merged.Regions, region)
			}
		}
		for _, genre := range rec.Genres {
			if _, ok := seenGenres[genre]; !ok {
				seenGenres[genre] = struct{}{}
				merged.Genres = append(merged.Genres, genre)
			}
		}
		if rec.Source != "" {
			sources = append(sources, rec.Source)
		}
	}

	merged.Source = strings.Join(sources, ",")
	return merged
}
