package domain

import (
	"time"
)

// RawMovie is a movie row as read from the movies file
type RawMovie struct {
	RecordID int64
	RawTitle string
	// TagString is the pipe-delimited genre list, nil when the column is empty
	TagString *string
}

// RawRating is a rating row as read from the ratings file
type RawRating struct {
	UserID     int64
	RecordID   int64
	Score      float64
	ObservedAt time.Time
}

// ParsedTitle is the title with its release year split off
type ParsedTitle struct {
	Title string
	Year  *int
}

// EnrichmentResult holds the optional fields obtained from the metadata service
type EnrichmentResult struct {
	ExternalID *string
	Director   *string
	Synopsis   *string
	Revenue    *string
}

// LookupStatus classifies the outcome of a single metadata lookup
type LookupStatus string

const (
	LookupStatusFound             LookupStatus = "found"
	LookupStatusNoMatch           LookupStatus = "no_match"
	LookupStatusTransportFailure  LookupStatus = "transport_failure"
	LookupStatusMalformedResponse LookupStatus = "malformed_response"
)

// LookupQuery is what was sent to the metadata service
type LookupQuery struct {
	Title string
	Year  *int
}

// Lookup is the outcome of one metadata lookup for one movie
type Lookup struct {
	RecordID   int64
	Vendor     string
	Query      LookupQuery
	Status     LookupStatus
	Enrichment *EnrichmentResult
	// Err is set for transport failures, malformed responses and no-match messages
	Err error
	// Raw is the response body, if one was received
	Raw []byte
	// RawHash is the hex SHA-256 of the canonicalized response body
	RawHash   *string
	FetchedAt time.Time
}

// Result returns the enrichment fields, or nil for anything but a found lookup
func (l *Lookup) Result() *EnrichmentResult {
	if l == nil || l.Status != LookupStatusFound {
		return nil
	}
	return l.Enrichment
}

// ErrorMessage returns the lookup error text, if any
func (l *Lookup) ErrorMessage() *string {
	if l == nil || l.Err == nil {
		return nil
	}
	msg := l.Err.Error()
	return &msg
}

// NormalizedMovie is a movie row ready for the movies table
type NormalizedMovie struct {
	RecordID    int64
	Title       string
	ReleaseYear *int
	ExternalID  *string
	Director    *string
	Synopsis    *string
	Revenue     *string
}

// MovieTag associates a movie with one of its tags
type MovieTag struct {
	RecordID int64
	TagName  string
}

// Dataset is the normalized output of one pipeline run
type Dataset struct {
	Movies    []NormalizedMovie
	Tags      []string
	MovieTags []MovieTag
}
