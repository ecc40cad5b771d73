package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/feral-file/ff-movie-etl/internal/adapter"
	"github.com/feral-file/ff-movie-etl/internal/config"
	"github.com/feral-file/ff-movie-etl/internal/domain"
	"github.com/feral-file/ff-movie-etl/internal/enricher"
	"github.com/feral-file/ff-movie-etl/internal/logger"
	"github.com/feral-file/ff-movie-etl/internal/metrics"
	"github.com/feral-file/ff-movie-etl/internal/pipeline"
	"github.com/feral-file/ff-movie-etl/internal/providers/omdb"
	"github.com/feral-file/ff-movie-etl/internal/reader"
	"github.com/feral-file/ff-movie-etl/internal/store"
)

type rootOptions struct {
	configFile string
	envPath    string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "movie-etl",
		Short:         "Load movies and ratings into a relational store, enriched with OMDb metadata",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().StringVar(&opts.envPath, "env", "config/", "Path to environment files")

	cmd.AddCommand(newRunCmd(&opts), newBootstrapCmd(&opts))
	return cmd
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Read, enrich, normalize and load the input files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnvironment(cmd.Context(), opts, runPipeline)
		},
	}
}

func newBootstrapCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the database schema without loading data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnvironment(cmd.Context(), opts, func(ctx context.Context, _ *config.ETLConfig, dataStore store.Store) error {
				return dataStore.Bootstrap(ctx)
			})
		},
	}
}

// withEnvironment loads configuration, initializes logging and opens the store before calling fn
func withEnvironment(ctx context.Context, opts *rootOptions, fn func(context.Context, *config.ETLConfig, store.Store) error) error {
	if opts.configFile == "" {
		config.ChdirRepoRoot()
	}
	cfg, err := config.LoadETLConfig(opts.configFile, opts.envPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "movie-etl",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Flush(2 * time.Second)

	db, err := store.Open(store.OpenOptions{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		Debug:           cfg.Debug,
	})
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("dsn", cfg.Database.RedactedDSN()))
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	logger.InfoCtx(ctx, "Connected to database",
		zap.String("driver", cfg.Database.Driver),
		zap.String("dsn", cfg.Database.RedactedDSN()))

	return fn(ctx, cfg, store.NewStore(db))
}

func runPipeline(ctx context.Context, cfg *config.ETLConfig, dataStore store.Store) error {
	clock := adapter.NewClock()
	httpClient := adapter.NewHTTPClient(cfg.OMDb.Timeout)
	omdbClient := omdb.NewClient(httpClient, cfg.OMDb.URL, cfg.OMDb.APIKey, adapter.NewJSON())

	metadataEnricher := enricher.NewEnricher(enricher.Config{
		APIKey:    cfg.OMDb.APIKey,
		MaxCalls:  cfg.OMDb.MaxCalls,
		CallDelay: cfg.OMDb.CallDelay,
		Vendor:    domain.VENDOR_OMDB,
	}, omdbClient, clock, adapter.NewJCS())

	p := pipeline.New(pipeline.Config{
		MoviesPath:     cfg.Input.MoviesPath,
		RatingsPath:    cfg.Input.RatingsPath,
		PushgatewayURL: cfg.Metrics.PushgatewayURL,
		JobName:        cfg.Metrics.JobName,
	}, reader.NewCSVReader(adapter.NewFileSystem()), metadataEnricher, dataStore, metrics.NewRecorder(), clock)

	logger.InfoCtx(ctx, "Starting movie-etl run",
		zap.String("movies", cfg.Input.MoviesPath),
		zap.String("ratings", cfg.Input.RatingsPath),
		zap.Bool("enrichment", cfg.OMDb.APIKey != "" && cfg.OMDb.MaxCalls > 0),
		zap.Int("maxCalls", cfg.OMDb.MaxCalls))

	summary, err := p.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("run %s: read %d movies, %d ratings; store holds %d movies, %d genres, %d ratings (%s)\n",
		summary.RunID, summary.MoviesRead, summary.RatingsRead,
		summary.Totals.Movies, summary.Totals.Genres, summary.Totals.Ratings,
		summary.Duration.Round(time.Millisecond))
	return nil
}
