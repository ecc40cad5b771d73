package title

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected *int
	}{
		{name: "year suffix", raw: "Toy Story (1995)", expected: intPtr(1995)},
		{name: "no year", raw: "Heat", expected: nil},
		{name: "alternate title before year", raw: "City of Lost Children, The (Cité des enfants perdus, La) (1995)", expected: intPtr(1995)},
		{name: "first of two years wins", raw: "Dracula (1931) (1992)", expected: intPtr(1931)},
		{name: "year in the middle", raw: "Blade Runner (1982) Director's Cut", expected: intPtr(1982)},
		{name: "five digits are not a year", raw: "Movie (19955)", expected: nil},
		{name: "three digits are not a year", raw: "Movie (199)", expected: nil},
		{name: "unparenthesized year", raw: "2001: A Space Odyssey", expected: nil},
		{name: "range is not a year", raw: "Babylon 5 (1994-1998)", expected: nil},
		{name: "trailing whitespace", raw: "Jumanji (1995) ", expected: intPtr(1995)},
		{name: "empty", raw: "", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseYear(tt.raw))
		})
	}
}

func TestStripYear(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "year suffix", raw: "Toy Story (1995)", expected: "Toy Story"},
		{name: "no year", raw: "Heat", expected: "Heat"},
		{name: "no year is only trimmed", raw: "  Heat  ", expected: "Heat"},
		{name: "no space before year", raw: "Toy Story(1995)", expected: "Toy Story"},
		{name: "several spaces before year", raw: "Toy Story \t (1995)", expected: "Toy Story"},
		{name: "alternate title kept", raw: "City of Lost Children, The (Cité des enfants perdus, La) (1995)", expected: "City of Lost Children, The (Cité des enfants perdus, La)"},
		{name: "only the first year removed", raw: "Dracula (1931) (1992)", expected: "Dracula (1992)"},
		{name: "year in the middle", raw: "Blade Runner (1982) Director's Cut", expected: "Blade Runner Director's Cut"},
		{name: "non-year parenthetical kept", raw: "Movie (19955)", expected: "Movie (19955)"},
		{name: "range kept", raw: "Babylon 5 (1994-1998)", expected: "Babylon 5 (1994-1998)"},
		{name: "only a year", raw: "(2010)", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripYear(tt.raw))
		})
	}
}

func TestParse(t *testing.T) {
	parsed := Parse("Toy Story (1995)")
	assert.Equal(t, "Toy Story", parsed.Title)
	require.NotNil(t, parsed.Year)
	assert.Equal(t, 1995, *parsed.Year)

	parsed = Parse("Heat")
	assert.Equal(t, "Heat", parsed.Title)
	assert.Nil(t, parsed.Year)
}

func TestParse_RoundTrip(t *testing.T) {
	titles := []string{
		"Toy Story (1995)",
		"Jumanji (1995)",
		"Grumpier Old Men (1995)",
		"Seven (a.k.a. Se7en) (1995)",
		"Shawshank Redemption, The (1994)",
		"Léon: The Professional (a.k.a. The Professional) (Léon) (1994)",
		"Nosferatu (Nosferatu, eine Symphonie des Grauens) (1922)",
		"Year Zero(0042)",
	}

	for _, raw := range titles {
		t.Run(raw, func(t *testing.T) {
			parsed := Parse(raw)
			require.NotNil(t, parsed.Year)

			rebuilt := Format(parsed.Title, parsed.Year)
			again := Parse(rebuilt)

			require.NotNil(t, again.Year)
			assert.Equal(t, *parsed.Year, *again.Year)
			assert.Equal(t, parsed.Title, again.Title)
		})
	}
}

func TestParse_NoSuffixIsIdentity(t *testing.T) {
	titles := []string{"Heat", "Se7en", "Babylon 5 (1994-1998)", "Alien (Director's Cut)", "  Padded  "}

	for _, raw := range titles {
		t.Run(raw, func(t *testing.T) {
			parsed := Parse(raw)
			assert.Nil(t, parsed.Year)
			assert.Equal(t, StripYear(raw), parsed.Title)
			assert.Equal(t, Format(parsed.Title, nil), parsed.Title)
		})
	}
}
