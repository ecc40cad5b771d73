package schema

import (
	"time"

	"gorm.io/datatypes"
)

// EnrichmentSource represents the enrichment_sources table - tracks the last metadata lookup per movie and vendor
type EnrichmentSource struct {
	// MovieID references the movie being enriched
	MovieID int64 `gorm:"column:movie_id;primaryKey;autoIncrement:false"`
	// Vendor identifies the metadata source (omdb)
	Vendor string `gorm:"column:vendor;primaryKey;type:text"`
	// Status is the lookup outcome (found, no_match, transport_failure, malformed_response)
	Status string `gorm:"column:status;not null;type:text"`
	// QueryTitle and QueryYear are what was sent to the vendor
	QueryTitle string `gorm:"column:query_title;not null;type:text"`
	QueryYear  *int   `gorm:"column:query_year;type:integer"`
	// LastError contains the error message if the lookup did not find a match
	LastError *string `gorm:"column:last_error;type:text"`
	// Response is the raw vendor response, if one was decoded
	Response datatypes.JSON `gorm:"column:response"`
	// ResponseHash is the SHA-256 of the canonicalized response to detect changes
	ResponseHash *string `gorm:"column:response_hash;type:text"`
	// RawBody keeps a response body that is not valid JSON
	RawBody *string `gorm:"column:raw_body;type:text"`
	// FetchedAt is the time of the lookup
	FetchedAt time.Time `gorm:"column:fetched_at;not null"`
	// RunID identifies the pipeline run that performed the lookup
	RunID string `gorm:"column:run_id;not null;type:text"`
}

// TableName specifies the table name for the EnrichmentSource model
func (EnrichmentSource) TableName() string {
	return "enrichment_sources"
}
