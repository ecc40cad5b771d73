package store

import (
	"context"

	"github.com/feral-file/ff-movie-etl/internal/domain"
)

// LoadInput is everything one run writes to the store
type LoadInput struct {
	Dataset *domain.Dataset
	Ratings []domain.RawRating
	// Lookups are recorded in enrichment_sources, keyed by movie and vendor
	Lookups []*domain.Lookup
	RunID   string
}

// LoadResult holds the number of rows inserted per table.
// Rows that already existed are not counted.
type LoadResult struct {
	Movies      int64
	Genres      int64
	MovieGenres int64
	Ratings     int64
	// EnrichmentSources counts inserted and updated rows
	EnrichmentSources int64
}

// TableCounts holds the total number of rows per table
type TableCounts struct {
	Movies            int64
	Genres            int64
	MovieGenres       int64
	Ratings           int64
	EnrichmentSources int64
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// Bootstrap creates the tables and indexes if they do not exist
	Bootstrap(ctx context.Context) error
	// Load writes the dataset, ratings and lookup audit rows in a single transaction.
	// Existing rows are left untouched except enrichment_sources, which keeps the latest lookup.
	// On any error nothing is written and the error wraps domain.ErrLoadFailed.
	Load(ctx context.Context, input LoadInput) (*LoadResult, error)
	// Counts returns the number of rows in each table
	Counts(ctx context.Context) (*TableCounts, error)
}
