package reader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-movie-etl/internal/adapter"
	"github.com/feral-file/ff-movie-etl/internal/domain"
	"github.com/feral-file/ff-movie-etl/internal/logger"
)

// Column names expected in the header row
const (
	ColumnMovieID   = "movieId"
	ColumnTitle     = "title"
	ColumnGenres    = "genres"
	ColumnUserID    = "userId"
	ColumnRating    = "rating"
	ColumnTimestamp = "timestamp"
)

// Reader defines the interface for reading the input datasets
//
//go:generate mockgen -source=reader.go -destination=../mocks/reader.go -package=mocks -mock_names=Reader=MockReader
type Reader interface {
	// ReadMovies reads the movies file (movieId,title,genres)
	ReadMovies(ctx context.Context, path string) ([]domain.RawMovie, error)

	// ReadRatings reads the ratings file (userId,movieId,rating,timestamp)
	ReadRatings(ctx context.Context, path string) ([]domain.RawRating, error)
}

// CSVReader reads comma separated files with a header row
type CSVReader struct {
	fs adapter.FileSystem
}

// NewCSVReader creates a new CSV reader
func NewCSVReader(fs adapter.FileSystem) Reader {
	return &CSVReader{fs: fs}
}

// ReadMovies reads the movies file
func (r *CSVReader) ReadMovies(ctx context.Context, path string) ([]domain.RawMovie, error) {
	var movies []domain.RawMovie
	seen := make(map[int64]int)

	err := r.readRows(ctx, path, []string{ColumnMovieID, ColumnTitle, ColumnGenres}, func(line int, row rowValues) error {
		id, err := row.int64(ColumnMovieID)
		if err != nil {
			return err
		}

		if prev, ok := seen[id]; ok {
			return fmt.Errorf("duplicate %s %d (first seen on line %d)", ColumnMovieID, id, prev)
		}
		seen[id] = line

		movie := domain.RawMovie{
			RecordID: id,
			RawTitle: row.get(ColumnTitle),
		}
		if genres := row.get(ColumnGenres); strings.TrimSpace(genres) != "" {
			movie.TagString = &genres
		}

		movies = append(movies, movie)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Read movies", zap.String("path", path), zap.Int("rows", len(movies)))
	return movies, nil
}

// ReadRatings reads the ratings file
func (r *CSVReader) ReadRatings(ctx context.Context, path string) ([]domain.RawRating, error) {
	var ratings []domain.RawRating

	err := r.readRows(ctx, path, []string{ColumnUserID, ColumnMovieID, ColumnRating, ColumnTimestamp}, func(_ int, row rowValues) error {
		userID, err := row.int64(ColumnUserID)
		if err != nil {
			return err
		}
		movieID, err := row.int64(ColumnMovieID)
		if err != nil {
			return err
		}
		score, err := row.float64(ColumnRating)
		if err != nil {
			return err
		}
		ts, err := row.int64(ColumnTimestamp)
		if err != nil {
			return err
		}

		ratings = append(ratings, domain.RawRating{
			UserID:     userID,
			RecordID:   movieID,
			Score:      score,
			ObservedAt: time.Unix(ts, 0).UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Read ratings", zap.String("path", path), zap.Int("rows", len(ratings)))
	return ratings, nil
}

// readRows opens the file, validates the header and calls fn for every data row.
// Errors are wrapped in domain.ErrInvalidInput with the file and line.
func (r *CSVReader) readRows(ctx context.Context, path string, required []string, fn func(line int, row rowValues) error) error {
	f, err := r.fs.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.WarnCtx(ctx, "Failed to close input file", zap.String("path", path), zap.Error(err))
		}
	}()

	cr := csv.NewReader(f)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %s: missing header row", domain.ErrInvalidInput, path)
		}
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, path, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		// Strip a UTF-8 BOM on the first column
		name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
		columns[name] = i
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return fmt.Errorf("%w: %s: missing column %q", domain.ErrInvalidInput, path, name)
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, path, err)
		}

		line, _ := cr.FieldPos(0)
		if err := fn(line, rowValues{columns: columns, record: record}); err != nil {
			return fmt.Errorf("%w: %s:%d: %w", domain.ErrInvalidInput, path, line, err)
		}
	}
}

// rowValues looks up fields of a single record by column name
type rowValues struct {
	columns map[string]int
	record  []string
}

func (r rowValues) get(column string) string {
	idx, ok := r.columns[column]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return r.record[idx]
}

func (r rowValues) int64(column string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(r.get(column)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", column, err)
	}
	return v, nil
}

func (r rowValues) float64(column string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(r.get(column)), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", column, err)
	}
	return v, nil
}
