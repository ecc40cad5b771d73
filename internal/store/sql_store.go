package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/ff-movie-etl/internal/domain"
	"github.com/feral-file/ff-movie-etl/internal/logger"
	"github.com/feral-file/ff-movie-etl/internal/store/schema"
)

// Bind parameter limits per statement
const (
	postgresMaxParams = 65535
	sqliteMaxParams   = 32766
)

type sqlStore struct {
	db *gorm.DB
}

// NewStore creates a new store on top of a PostgreSQL or SQLite connection
func NewStore(db *gorm.DB) Store {
	return &sqlStore{db: db}
}

// dialect returns the name of the gorm dialector, "postgres" or "sqlite"
func (s *sqlStore) dialect() string {
	return s.db.Name()
}

func (s *sqlStore) maxParams() int {
	if s.dialect() == "sqlite" {
		return sqliteMaxParams
	}
	return postgresMaxParams
}

// calculateSafeBatchSize computes the batch size for bulk inserts that stays under
// the dialect's bind parameter limit.
//
// Each record consumes one parameter per inserted field; a fixed headroom covers
// the ON CONFLICT clause and other batch-level overhead.
//
// Example with PostgreSQL (65,535 parameters, headroom of 1000):
//   - Rating: 4 fields → (65,535 - 1,000) / 4 = 16,133 records/batch
//   - Movie: 7 fields → (65,535 - 1,000) / 7 = 9,219 records/batch
func calculateSafeBatchSize(totalRecords int, fieldsPerRecord int, maxParams int) int {
	const totalHeadroom = 1000

	availableParams := maxParams - totalHeadroom
	safeBatchSize := max(availableParams/fieldsPerRecord, 1)

	if safeBatchSize > totalRecords {
		return totalRecords
	}

	return safeBatchSize
}

// Bootstrap creates the tables and indexes if they do not exist
func (s *sqlStore) Bootstrap(ctx context.Context) error {
	statements, err := schemaStatements(s.dialect())
	if err != nil {
		return err
	}

	for i, stmt := range statements {
		if err := s.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to execute schema statement %d: %w", i, err)
		}
	}

	logger.InfoCtx(ctx, "Schema bootstrapped", zap.String("dialect", s.dialect()), zap.Int("statements", len(statements)))
	return nil
}

// Load writes the dataset, ratings and lookup audit rows in a single transaction
func (s *sqlStore) Load(ctx context.Context, input LoadInput) (*LoadResult, error) {
	result := &LoadResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Movies
		movies := buildMovies(input.Dataset)
		n, err := insertOrIgnore(tx, movies, 7, s.maxParams(), "movie_id")
		if err != nil {
			return fmt.Errorf("failed to insert movies: %w", err)
		}
		result.Movies = n

		// 2. Genres
		var tags []string
		if input.Dataset != nil {
			tags = input.Dataset.Tags
		}
		genres := make([]schema.Genre, 0, len(tags))
		for _, tag := range tags {
			genres = append(genres, schema.Genre{GenreName: tag})
		}
		n, err = insertOrIgnore(tx, genres, 1, s.maxParams(), "genre_name")
		if err != nil {
			return fmt.Errorf("failed to insert genres: %w", err)
		}
		result.Genres = n

		// 3. Resolve genre ids, including genres inserted by earlier runs
		genreIDs, err := s.resolveGenreIDs(tx, tags)
		if err != nil {
			return fmt.Errorf("failed to resolve genre ids: %w", err)
		}

		// 4. Movie genres
		var movieGenres []schema.MovieGenre
		if input.Dataset != nil {
			movieGenres = make([]schema.MovieGenre, 0, len(input.Dataset.MovieTags))
			for _, mt := range input.Dataset.MovieTags {
				genreID, ok := genreIDs[mt.TagName]
				if !ok {
					return fmt.Errorf("%w: %q for movie %d", domain.ErrUnresolvedTag, mt.TagName, mt.RecordID)
				}
				movieGenres = append(movieGenres, schema.MovieGenre{MovieID: mt.RecordID, GenreID: genreID})
			}
		}
		n, err = insertOrIgnore(tx, movieGenres, 2, s.maxParams(), "movie_id", "genre_id")
		if err != nil {
			return fmt.Errorf("failed to insert movie genres: %w", err)
		}
		result.MovieGenres = n

		// 5. Ratings
		ratings := make([]schema.Rating, 0, len(input.Ratings))
		for _, r := range input.Ratings {
			ratings = append(ratings, schema.Rating{
				UserID:     r.UserID,
				MovieID:    r.RecordID,
				Rating:     r.Score,
				ObservedAt: r.ObservedAt.Unix(),
			})
		}
		n, err = insertOrIgnore(tx, ratings, 4, s.maxParams(), "user_id", "movie_id", "observed_at")
		if err != nil {
			return fmt.Errorf("failed to insert ratings: %w", err)
		}
		result.Ratings = n

		// 6. Enrichment sources
		n, err = s.upsertEnrichmentSources(tx, input.Lookups, input.RunID)
		if err != nil {
			return fmt.Errorf("failed to upsert enrichment sources: %w", err)
		}
		result.EnrichmentSources = n

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLoadFailed, err)
	}

	logger.InfoCtx(ctx, "Load committed",
		zap.Int64("movies", result.Movies),
		zap.Int64("genres", result.Genres),
		zap.Int64("movieGenres", result.MovieGenres),
		zap.Int64("ratings", result.Ratings),
		zap.Int64("enrichmentSources", result.EnrichmentSources))

	return result, nil
}

// insertOrIgnore bulk inserts records, skipping rows whose conflict columns already exist.
// It returns the number of rows actually inserted.
func insertOrIgnore[T any](tx *gorm.DB, records []T, fieldsPerRecord int, maxParams int, conflictColumns ...string) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	columns := make([]clause.Column, 0, len(conflictColumns))
	for _, c := range conflictColumns {
		columns = append(columns, clause.Column{Name: c})
	}

	// Use ON CONFLICT DO NOTHING to skip duplicates based on the natural key
	res := tx.Clauses(clause.OnConflict{
		Columns:   columns,
		DoNothing: true,
	}).CreateInBatches(records, calculateSafeBatchSize(len(records), fieldsPerRecord, maxParams))
	if res.Error != nil {
		return 0, res.Error
	}

	return res.RowsAffected, nil
}

// resolveGenreIDs looks up the surrogate ids of the given genre names in chunks
func (s *sqlStore) resolveGenreIDs(tx *gorm.DB, names []string) (map[string]int64, error) {
	ids := make(map[string]int64, len(names))
	if len(names) == 0 {
		return ids, nil
	}

	chunkSize := calculateSafeBatchSize(len(names), 1, s.maxParams())
	for start := 0; start < len(names); start += chunkSize {
		end := min(start+chunkSize, len(names))

		var genres []schema.Genre
		if err := tx.Where("genre_name IN ?", names[start:end]).Find(&genres).Error; err != nil {
			return nil, err
		}
		for _, g := range genres {
			ids[g.GenreName] = g.GenreID
		}
	}

	return ids, nil
}

// upsertEnrichmentSources records the latest lookup per movie and vendor
func (s *sqlStore) upsertEnrichmentSources(tx *gorm.DB, lookups []*domain.Lookup, runID string) (int64, error) {
	sources := make([]schema.EnrichmentSource, 0, len(lookups))
	for _, l := range lookups {
		if l == nil {
			continue
		}
		source := schema.EnrichmentSource{
			MovieID:      l.RecordID,
			Vendor:       l.Vendor,
			Status:       string(l.Status),
			QueryTitle:   l.Query.Title,
			QueryYear:    l.Query.Year,
			LastError:    l.ErrorMessage(),
			ResponseHash: l.RawHash,
			FetchedAt:    l.FetchedAt.UTC(),
			RunID:        runID,
		}
		if l.RawHash != nil {
			// Only bodies that canonicalized are valid JSON
			source.Response = datatypes.JSON(l.Raw)
		} else if len(l.Raw) > 0 {
			source.RawBody = rawBodyText(l.Raw)
		}
		sources = append(sources, source)
	}

	if len(sources) == 0 {
		return 0, nil
	}

	res := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "movie_id"}, {Name: "vendor"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "query_title", "query_year", "last_error",
			"response", "response_hash", "raw_body", "fetched_at", "run_id",
		}),
	}).CreateInBatches(&sources, calculateSafeBatchSize(len(sources), 11, s.maxParams()))
	if res.Error != nil {
		return 0, res.Error
	}

	return res.RowsAffected, nil
}

// rawBodyText converts an undecodable body into text both dialects accept
func rawBodyText(raw []byte) *string {
	body := strings.ToValidUTF8(strings.ReplaceAll(string(raw), "\x00", ""), "\uFFFD")
	return &body
}

// Counts returns the number of rows in each table
func (s *sqlStore) Counts(ctx context.Context) (*TableCounts, error) {
	counts := &TableCounts{}
	db := s.db.WithContext(ctx)

	targets := []struct {
		model any
		dest  *int64
	}{
		{&schema.Movie{}, &counts.Movies},
		{&schema.Genre{}, &counts.Genres},
		{&schema.MovieGenre{}, &counts.MovieGenres},
		{&schema.Rating{}, &counts.Ratings},
		{&schema.EnrichmentSource{}, &counts.EnrichmentSources},
	}
	for _, t := range targets {
		if err := db.Model(t.model).Count(t.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count rows: %w", err)
		}
	}

	return counts, nil
}

func buildMovies(dataset *domain.Dataset) []schema.Movie {
	if dataset == nil {
		return nil
	}

	movies := make([]schema.Movie, 0, len(dataset.Movies))
	for _, m := range dataset.Movies {
		movies = append(movies, schema.Movie{
			MovieID:     m.RecordID,
			Title:       m.Title,
			ReleaseYear: m.ReleaseYear,
			ImdbID:      m.ExternalID,
			Director:    m.Director,
			Plot:        m.Synopsis,
			BoxOffice:   m.Revenue,
		})
	}
	return movies
}
