package enricher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-movie-etl/internal/adapter"
	"github.com/feral-file/ff-movie-etl/internal/domain"
	"github.com/feral-file/ff-movie-etl/internal/logger"
	"github.com/feral-file/ff-movie-etl/internal/providers/omdb"
)

// Config holds the enrichment settings for one run.
// Enrichment is disabled when APIKey is empty or MaxCalls is not positive.
type Config struct {
	APIKey    string
	MaxCalls  int
	CallDelay time.Duration
	Vendor    string
}

// Enabled reports whether lookups will be attempted
func (c Config) Enabled() bool {
	return c.APIKey != "" && c.MaxCalls > 0
}

// Candidate is a movie eligible for enrichment
type Candidate struct {
	RecordID int64
	Title    string
	Year     *int
}

// Report is the outcome of an enrichment pass
type Report struct {
	// Lookups holds one entry per attempted candidate
	Lookups map[int64]*domain.Lookup
	// Order is the record ids in the order they were attempted
	Order     []int64
	Attempted int
	Skipped   int
}

// Counts tallies lookups per status
func (r *Report) Counts() map[domain.LookupStatus]int {
	counts := make(map[domain.LookupStatus]int)
	for _, l := range r.Lookups {
		counts[l.Status]++
	}
	return counts
}

// Enricher defines the interface for enriching movies with external metadata
//
//go:generate mockgen -source=enricher.go -destination=../mocks/enricher.go -package=mocks -mock_names=Enricher=MockEnricher
type Enricher interface {
	// Enrich looks up the candidates in order until the call budget is spent.
	// Lookup failures never fail the pass; they are recorded in the report.
	Enrich(ctx context.Context, candidates []Candidate) *Report
}

type enricher struct {
	cfg    Config
	client omdb.Client
	clock  adapter.Clock
	jcs    adapter.JCS
}

// NewEnricher creates a new enricher
func NewEnricher(cfg Config, client omdb.Client, clock adapter.Clock, jcs adapter.JCS) Enricher {
	if cfg.Vendor == "" {
		cfg.Vendor = domain.VENDOR_OMDB
	}
	return &enricher{cfg: cfg, client: client, clock: clock, jcs: jcs}
}

// Enrich looks up the first MaxCalls candidates, pausing CallDelay between calls
func (e *enricher) Enrich(ctx context.Context, candidates []Candidate) *Report {
	report := &Report{
		Lookups: make(map[int64]*domain.Lookup),
	}

	if !e.cfg.Enabled() {
		logger.InfoCtx(ctx, "Enrichment disabled, skipping lookups",
			zap.Bool("apiKeySet", e.cfg.APIKey != ""),
			zap.Int("maxCalls", e.cfg.MaxCalls))
		report.Skipped = len(candidates)
		return report
	}

	for i, c := range candidates {
		if report.Attempted >= e.cfg.MaxCalls {
			report.Skipped = len(candidates) - i
			break
		}

		if err := ctx.Err(); err != nil {
			logger.WarnCtx(ctx, "Enrichment interrupted", zap.Error(err), zap.Int("attempted", report.Attempted))
			report.Skipped = len(candidates) - i
			break
		}

		if report.Attempted > 0 && e.cfg.CallDelay > 0 {
			e.clock.Sleep(e.cfg.CallDelay)
		}

		lookup := e.lookup(ctx, c)
		report.Attempted++
		// The first lookup wins if a record id repeats
		if _, ok := report.Lookups[c.RecordID]; !ok {
			report.Lookups[c.RecordID] = lookup
			report.Order = append(report.Order, c.RecordID)
		}
	}

	logger.InfoCtx(ctx, "Enrichment finished",
		zap.Int("attempted", report.Attempted),
		zap.Int("skipped", report.Skipped),
		zap.Any("statuses", report.Counts()))

	return report
}

// lookup performs one call and classifies the outcome
func (e *enricher) lookup(ctx context.Context, c Candidate) *domain.Lookup {
	l := &domain.Lookup{
		RecordID: c.RecordID,
		Vendor:   e.cfg.Vendor,
		Query: domain.LookupQuery{
			Title: c.Title,
			Year:  c.Year,
		},
	}

	resp, err := e.client.Lookup(ctx, c.Title, c.Year)
	l.FetchedAt = e.clock.Now()

	switch {
	case err == nil:
	case errors.Is(err, omdb.ErrMalformedResponse):
		l.Status = domain.LookupStatusMalformedResponse
		l.Err = err
		var malformed *omdb.MalformedResponseError
		if errors.As(err, &malformed) {
			l.Raw = malformed.Body
			l.RawHash = e.rawHash(ctx, malformed.Body)
		}
	default:
		// Transport failures, timeouts and anything unexpected from the client
		l.Status = domain.LookupStatusTransportFailure
		l.Err = err
	}

	if err != nil {
		logger.WarnCtx(ctx, "Metadata lookup failed",
			zap.Int64("recordID", c.RecordID),
			zap.String("title", c.Title),
			zap.String("status", string(l.Status)),
			zap.Error(err))
		return l
	}

	l.Raw = resp.Raw
	l.RawHash = e.rawHash(ctx, resp.Raw)

	if !resp.Found() {
		l.Status = domain.LookupStatusNoMatch
		if resp.Error != "" {
			l.Err = errors.New(resp.Error)
		}
		logger.DebugCtx(ctx, "No metadata match",
			zap.Int64("recordID", c.RecordID),
			zap.String("title", c.Title),
			zap.String("reason", resp.Error))
		return l
	}

	l.Status = domain.LookupStatusFound
	l.Enrichment = &domain.EnrichmentResult{
		ExternalID: omdb.Field(resp.ImdbID),
		Director:   omdb.Field(resp.Director),
		Synopsis:   omdb.Field(resp.Plot),
		Revenue:    omdb.Field(resp.BoxOffice),
	}

	logger.DebugCtx(ctx, "Metadata found",
		zap.Int64("recordID", c.RecordID),
		zap.String("title", c.Title),
		zap.String("imdbID", resp.ImdbID))

	return l
}

// rawHash returns the hex SHA-256 of the canonicalized body, nil if it cannot be canonicalized
func (e *enricher) rawHash(ctx context.Context, raw []byte) *string {
	if len(raw) == 0 {
		return nil
	}

	canonical, err := e.jcs.Transform(raw)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to canonicalize response", zap.Error(fmt.Errorf("jcs: %w", err)))
		return nil
	}

	sum := sha256.Sum256(canonical)
	hash := hex.EncodeToString(sum[:])
	return &hash
}
