package normalizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-movie-etl/internal/domain"
	"github.com/feral-file/ff-movie-etl/internal/title"
)

func strPtr(s string) *string {
	return &s
}

func intPtr(v int) *int {
	return &v
}

func TestSplitTags(t *testing.T) {
	tests := []struct {
		name     string
		input    *string
		expected []string
	}{
		{name: "nil", input: nil, expected: nil},
		{name: "empty", input: strPtr(""), expected: nil},
		{name: "blank", input: strPtr("   "), expected: nil},
		{name: "movielens placeholder", input: strPtr("(no genres listed)"), expected: []string{"(no genres listed)"}},
		{name: "single", input: strPtr("Drama"), expected: []string{"Drama"}},
		{
			name:     "multiple",
			input:    strPtr("Adventure|Animation|Children"),
			expected: []string{"Adventure", "Animation", "Children"},
		},
		{
			name:     "whitespace and empty tokens",
			input:    strPtr(" Comedy || Romance |"),
			expected: []string{"Comedy", "Romance"},
		},
		{
			name:     "duplicates within a record",
			input:    strPtr("Drama|Crime|Drama"),
			expected: []string{"Drama", "Crime"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitTags(tt.input))
		})
	}
}

func TestNormalize(t *testing.T) {
	movies := []domain.RawMovie{
		{RecordID: 1, RawTitle: "Toy Story (1995)", TagString: strPtr("Adventure|Animation|Children")},
		{RecordID: 6, RawTitle: "Heat (1995)", TagString: strPtr("Action|Crime|Thriller")},
		{RecordID: 7, RawTitle: "Sabrina (1995)", TagString: strPtr("Comedy|Romance")},
		{RecordID: 8, RawTitle: "Untitled", TagString: strPtr("(no genres listed)")},
	}

	titles := map[int64]domain.ParsedTitle{
		1: title.Parse("Toy Story (1995)"),
		6: title.Parse("Heat (1995)"),
		7: title.Parse("Sabrina (1995)"),
		// 8 is parsed on the fly
	}

	lookups := map[int64]*domain.Lookup{
		1: {
			RecordID: 1,
			Status:   domain.LookupStatusFound,
			Enrichment: &domain.EnrichmentResult{
				ExternalID: strPtr("tt0114709"),
				Director:   strPtr("John Lasseter"),
				Synopsis:   strPtr("A cowboy doll is profoundly threatened..."),
				Revenue:    strPtr("$223,225,679"),
			},
		},
		6: {
			RecordID: 6,
			Status:   domain.LookupStatusTransportFailure,
			Err:      errors.New("timeout"),
		},
	}

	dataset := Normalize(movies, titles, lookups)
	require.Len(t, dataset.Movies, 4)

	toyStory := dataset.Movies[0]
	assert.Equal(t, "Toy Story", toyStory.Title)
	assert.Equal(t, intPtr(1995), toyStory.ReleaseYear)
	assert.Equal(t, "tt0114709", *toyStory.ExternalID)
	assert.Equal(t, "John Lasseter", *toyStory.Director)
	assert.Equal(t, "$223,225,679", *toyStory.Revenue)

	// Failed lookup and missing lookup both leave the enrichment fields empty
	for _, m := range dataset.Movies[1:] {
		assert.Nil(t, m.ExternalID, m.Title)
		assert.Nil(t, m.Director, m.Title)
		assert.Nil(t, m.Synopsis, m.Title)
		assert.Nil(t, m.Revenue, m.Title)
	}
	assert.Equal(t, "Heat", dataset.Movies[1].Title)

	untitled := dataset.Movies[3]
	assert.Equal(t, "Untitled", untitled.Title)
	assert.Nil(t, untitled.ReleaseYear)

	assert.Equal(t, []string{"(no genres listed)", "Action", "Adventure", "Animation", "Children", "Comedy", "Crime", "Romance", "Thriller"}, dataset.Tags)
	assert.Equal(t, []domain.MovieTag{
		{RecordID: 1, TagName: "Adventure"},
		{RecordID: 1, TagName: "Animation"},
		{RecordID: 1, TagName: "Children"},
		{RecordID: 6, TagName: "Action"},
		{RecordID: 6, TagName: "Crime"},
		{RecordID: 6, TagName: "Thriller"},
		{RecordID: 7, TagName: "Comedy"},
		{RecordID: 7, TagName: "Romance"},
		{RecordID: 8, TagName: "(no genres listed)"},
	}, dataset.MovieTags)
}

func TestNormalize_TagSetIsDistinct(t *testing.T) {
	movies := []domain.RawMovie{
		{RecordID: 1, RawTitle: "A (2001)", TagString: strPtr("Drama|Comedy")},
		{RecordID: 2, RawTitle: "B (2002)", TagString: strPtr(" Drama | Horror ")},
		{RecordID: 3, RawTitle: "C (2003)", TagString: strPtr("Comedy|Comedy")},
		{RecordID: 4, RawTitle: "D (2004)"},
	}

	dataset := Normalize(movies, nil, nil)

	distinct := make(map[string]struct{})
	for _, m := range movies {
		for _, tag := range SplitTags(m.TagString) {
			distinct[tag] = struct{}{}
		}
	}

	assert.Len(t, dataset.Tags, len(distinct))
	assert.ElementsMatch(t, []string{"Comedy", "Drama", "Horror"}, dataset.Tags)
	assert.Len(t, dataset.MovieTags, 5)
	for _, mt := range dataset.MovieTags {
		assert.Contains(t, dataset.Tags, mt.TagName)
	}
}

func TestNormalize_Empty(t *testing.T) {
	dataset := Normalize(nil, nil, nil)
	assert.Empty(t, dataset.Movies)
	assert.Empty(t, dataset.Tags)
	assert.Empty(t, dataset.MovieTags)
}
