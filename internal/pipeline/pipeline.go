package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/feral-file/ff-movie-etl/internal/adapter"
	"github.com/feral-file/ff-movie-etl/internal/domain"
	"github.com/feral-file/ff-movie-etl/internal/enricher"
	"github.com/feral-file/ff-movie-etl/internal/logger"
	"github.com/feral-file/ff-movie-etl/internal/metrics"
	"github.com/feral-file/ff-movie-etl/internal/normalizer"
	"github.com/feral-file/ff-movie-etl/internal/reader"
	"github.com/feral-file/ff-movie-etl/internal/store"
	"github.com/feral-file/ff-movie-etl/internal/title"
)

// Config holds the pipeline settings
type Config struct {
	MoviesPath  string
	RatingsPath string
	// PushgatewayURL is where metrics are pushed after the run; empty disables pushing
	PushgatewayURL string
	JobName        string
}

// Summary describes a finished run
type Summary struct {
	RunID          string
	MoviesRead     int
	RatingsRead    int
	Lookups        map[domain.LookupStatus]int
	LookupsSkipped int
	Inserted       store.LoadResult
	Totals         store.TableCounts
	Duration       time.Duration
}

// Pipeline runs read, parse, enrich, normalize and load in sequence
type Pipeline struct {
	cfg      Config
	reader   reader.Reader
	enricher enricher.Enricher
	store    store.Store
	recorder *metrics.Recorder
	clock    adapter.Clock
}

// New creates a new pipeline
func New(cfg Config, reader reader.Reader, enricher enricher.Enricher, store store.Store, recorder *metrics.Recorder, clock adapter.Clock) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		reader:   reader,
		enricher: enricher,
		store:    store,
		recorder: recorder,
		clock:    clock,
	}
}

// Run executes one full pass. Input errors abort before anything is written;
// lookup failures only leave enrichment fields empty.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	runID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate run id: %w", err)
	}

	ctx = logger.WithFields(ctx, zap.String("runID", runID.String()))
	startedAt := p.clock.Now()

	summary, err := p.run(ctx, runID.String())

	finishedAt := p.clock.Now()
	duration := finishedAt.Sub(startedAt)
	p.recorder.RecordRun(duration, finishedAt, err == nil)
	p.pushMetrics(ctx)

	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("run failed: %w", err), zap.Duration("duration", duration))
		return nil, err
	}

	summary.Duration = duration
	logger.InfoCtx(ctx, "Run finished",
		zap.Duration("duration", duration),
		zap.Int("moviesRead", summary.MoviesRead),
		zap.Int("ratingsRead", summary.RatingsRead),
		zap.Int64("moviesInserted", summary.Inserted.Movies),
		zap.Int64("ratingsInserted", summary.Inserted.Ratings),
		zap.Int64("totalMovies", summary.Totals.Movies))

	return summary, nil
}

func (p *Pipeline) run(ctx context.Context, runID string) (*Summary, error) {
	summary := &Summary{RunID: runID}

	// 1. Read both files before touching the store
	movies, err := p.reader.ReadMovies(ctx, p.cfg.MoviesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read movies: %w", err)
	}
	ratings, err := p.reader.ReadRatings(ctx, p.cfg.RatingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read ratings: %w", err)
	}
	summary.MoviesRead = len(movies)
	summary.RatingsRead = len(ratings)
	p.recorder.RecordRowsRead("movies", len(movies))
	p.recorder.RecordRowsRead("ratings", len(ratings))

	// Ratings for movies missing from the movies file are still loaded
	if orphans := countUnknownMovieRatings(movies, ratings); orphans > 0 {
		logger.WarnCtx(ctx, "Ratings reference movies not present in the movies file", zap.Int("ratings", orphans))
	}

	// 2. Parse titles
	titles := make(map[int64]domain.ParsedTitle, len(movies))
	candidates := make([]enricher.Candidate, 0, len(movies))
	for _, m := range movies {
		parsed := title.Parse(m.RawTitle)
		titles[m.RecordID] = parsed
		candidates = append(candidates, enricher.Candidate{
			RecordID: m.RecordID,
			Title:    parsed.Title,
			Year:     parsed.Year,
		})
	}

	// 3. Enrich
	report := p.enricher.Enrich(ctx, candidates)
	summary.Lookups = report.Counts()
	summary.LookupsSkipped = report.Skipped
	for status, n := range summary.Lookups {
		p.recorder.RecordLookup(string(status), n)
	}

	// 4. Normalize
	dataset := normalizer.Normalize(movies, titles, report.Lookups)
	logger.InfoCtx(ctx, "Normalized dataset",
		zap.Int("movies", len(dataset.Movies)),
		zap.Int("tags", len(dataset.Tags)),
		zap.Int("movieTags", len(dataset.MovieTags)))

	// 5. Load
	if err := p.store.Bootstrap(ctx); err != nil {
		return nil, fmt.Errorf("failed to bootstrap schema: %w", err)
	}

	lookups := make([]*domain.Lookup, 0, len(report.Order))
	for _, id := range report.Order {
		lookups = append(lookups, report.Lookups[id])
	}

	result, err := p.store.Load(ctx, store.LoadInput{
		Dataset: dataset,
		Ratings: ratings,
		Lookups: lookups,
		RunID:   runID,
	})
	if err != nil {
		return nil, err
	}
	summary.Inserted = *result
	p.recorder.RecordRowsInserted("movies", result.Movies)
	p.recorder.RecordRowsInserted("genres", result.Genres)
	p.recorder.RecordRowsInserted("movie_genres", result.MovieGenres)
	p.recorder.RecordRowsInserted("ratings", result.Ratings)
	p.recorder.RecordRowsInserted("enrichment_sources", result.EnrichmentSources)

	counts, err := p.store.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}
	summary.Totals = *counts

	return summary, nil
}

func countUnknownMovieRatings(movies []domain.RawMovie, ratings []domain.RawRating) int {
	known := make(map[int64]struct{}, len(movies))
	for _, m := range movies {
		known[m.RecordID] = struct{}{}
	}

	var n int
	for _, r := range ratings {
		if _, ok := known[r.RecordID]; !ok {
			n++
		}
	}
	return n
}

// pushMetrics pushes the run metrics if a Pushgateway is configured
func (p *Pipeline) pushMetrics(ctx context.Context) {
	if p.cfg.PushgatewayURL == "" {
		return
	}

	if err := p.recorder.Push(ctx, p.cfg.PushgatewayURL, p.cfg.JobName); err != nil {
		logger.WarnCtx(ctx, "Failed to push metrics", zap.Error(err), zap.String("url", p.cfg.PushgatewayURL))
		return
	}

	logger.DebugCtx(ctx, "Pushed metrics", zap.String("url", p.cfg.PushgatewayURL))
}
