package normalizer

import (
	"sort"
	"strings"

	"github.com/feral-file/ff-movie-etl/internal/domain"
	"github.com/feral-file/ff-movie-etl/internal/title"
)

// Normalize joins the raw movies with their parsed titles and lookups into the relational shape.
// Movies without a found lookup get empty enrichment fields; a missing parsed title is parsed from the raw title.
func Normalize(movies []domain.RawMovie, titles map[int64]domain.ParsedTitle, lookups map[int64]*domain.Lookup) *domain.Dataset {
	dataset := &domain.Dataset{
		Movies:    make([]domain.NormalizedMovie, 0, len(movies)),
		MovieTags: []domain.MovieTag{},
	}
	tagSet := make(map[string]struct{})

	for _, m := range movies {
		parsed, ok := titles[m.RecordID]
		if !ok {
			parsed = title.Parse(m.RawTitle)
		}

		movie := domain.NormalizedMovie{
			RecordID:    m.RecordID,
			Title:       parsed.Title,
			ReleaseYear: parsed.Year,
		}

		if result := lookups[m.RecordID].Result(); result != nil {
			movie.ExternalID = result.ExternalID
			movie.Director = result.Director
			movie.Synopsis = result.Synopsis
			movie.Revenue = result.Revenue
		}

		dataset.Movies = append(dataset.Movies, movie)

		for _, tag := range SplitTags(m.TagString) {
			tagSet[tag] = struct{}{}
			dataset.MovieTags = append(dataset.MovieTags, domain.MovieTag{
				RecordID: m.RecordID,
				TagName:  tag,
			})
		}
	}

	dataset.Tags = make([]string, 0, len(tagSet))
	for tag := range tagSet {
		dataset.Tags = append(dataset.Tags, tag)
	}
	sort.Strings(dataset.Tags)

	return dataset
}

// SplitTags splits a pipe-delimited tag string into trimmed, distinct, non-empty tags in first-seen order
func SplitTags(tagString *string) []string {
	if tagString == nil {
		return nil
	}

	s := strings.TrimSpace(*tagString)
	if s == "" {
		return nil
	}

	var tags []string
	seen := make(map[string]struct{})
	for _, token := range strings.Split(s, domain.TAG_DELIMITER) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		tags = append(tags, token)
	}

	return tags
}
