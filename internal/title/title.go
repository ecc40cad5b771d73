package title

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/feral-file/ff-movie-etl/internal/domain"
)

var (
	// yearPattern matches a parenthesized 4-digit year anywhere in a title
	yearPattern = regexp.MustCompile(`\((\d{4})\)`)
	// yearSuffixPattern also consumes the whitespace in front of the year
	yearSuffixPattern = regexp.MustCompile(`\s*\(\d{4}\)`)
)

// ParseYear returns the first parenthesized 4-digit year in the title.
// Later parenthesized years are ignored, e.g. "Dracula (1931) (1992)" yields 1931.
func ParseYear(raw string) *int {
	match := yearPattern.FindStringSubmatch(raw)
	if match == nil {
		return nil
	}

	year, err := strconv.Atoi(match[1])
	if err != nil {
		return nil
	}

	return &year
}

// StripYear removes the first parenthesized 4-digit year and the whitespace
// immediately before it, then trims the result.
// Parenthesized content that is not exactly four digits is left alone.
func StripYear(raw string) string {
	loc := yearSuffixPattern.FindStringIndex(raw)
	if loc == nil {
		return strings.TrimSpace(raw)
	}

	return strings.TrimSpace(raw[:loc[0]] + raw[loc[1]:])
}

// Parse splits a raw title into its normalized title and release year
func Parse(raw string) domain.ParsedTitle {
	return domain.ParsedTitle{
		Title: StripYear(raw),
		Year:  ParseYear(raw),
	}
}

// Format renders a title the way the movies file does, "Title (1995)"
func Format(title string, year *int) string {
	if year == nil {
		return title
	}
	return fmt.Sprintf("%s (%04d)", title, *year)
}
