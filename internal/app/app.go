// Package app provides the application bootstrap and runtime orchestration.
//
// The App type wires together all dependencies and exposes methods to run
// different operational modes:
//
//   - Collect mode: one collection cycle over all connectors
//   - Dedup mode: lexical matching over the retention window
//   - Semdedup mode: semantic grouping over the retention window
//   - Analyze mode: scoring of unscored canonical events
//   - Predict mode: derive and record the daily prediction
//   - Backfill mode: rerun both matching layers over the window
//   - Serve mode: the full cycle on an interval, plus health and metrics
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aipulse/pulse/internal/core/llm"
	"github.com/aipulse/pulse/internal/ingest/sources"
	"github.com/aipulse/pulse/internal/pipeline"
	"github.com/aipulse/pulse/internal/platform/clock"
	"github.com/aipulse/pulse/internal/platform/config"
	"github.com/aipulse/pulse/internal/platform/markethours"
	"github.com/aipulse/pulse/internal/platform/observability"
	"github.com/aipulse/pulse/internal/platform/worker"
	"github.com/aipulse/pulse/internal/process/analyze"
	"github.com/aipulse/pulse/internal/process/dedup"
	"github.com/aipulse/pulse/internal/process/ledger"
	"github.com/aipulse/pulse/internal/process/runtrack"
	"github.com/aipulse/pulse/internal/process/semdedup"
	db "github.com/aipulse/pulse/internal/storage"
)

const (
	workflowCollect  = "collect"
	workflowDedup    = "dedup"
	workflowSemDedup = "semdedup"
	workflowAnalyze  = "analyze"
	workflowPredict  = "predict"
	workflowBackfill = "backfill"

	topEventsLimit = 5
)

// App holds the application dependencies and provides methods to run
// different modes.
type App struct {
	cfg      *config.Config
	database *db.DB
	logger   *zerolog.Logger

	clock    clock.Clock
	boundary markethours.Boundary

	pipeline *pipeline.Pipeline
	matcher  *dedup.Matcher
	grouper  *semdedup.Grouper
	analyzer *analyze.Analyzer
	writer   *ledger.Writer
	tracker  *runtrack.Tracker
}

// New creates an App instance and wires all components.
func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) (*App, error) {
	boundary, err := markethours.New(cfg.MarketTimezone)
	if err != nil {
		return nil, err
	}

	clk := clock.System()
	model := llm.New(cfg, logger)
	matcher := dedup.NewMatcher(database, logger)

	connectors := []sources.Connector{
		sources.NewHackerNews(cfg.HNFetchLimit, clk, logger),
		sources.NewFeeds(cfg.FeedURLs, clk, logger),
		sources.NewArxiv(cfg.ArxivCategories, clk, logger),
	}

	return &App{
		cfg:      cfg,
		database: database,
		logger:   logger,
		clock:    clk,
		boundary: boundary,
		pipeline: pipeline.New(connectors, database, matcher, logger),
		matcher:  matcher,
		grouper:  semdedup.New(database, model, cfg.GroupingTimeout, logger),
		analyzer: analyze.New(database, model, cfg.AnalyzeBatchSize, logger),
		writer:   ledger.NewWriter(database, clk, boundary, logger),
		tracker:  runtrack.New(database, clk, boundary, logger),
	}, nil
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	return observability.NewServer(a.database, a.cfg.HealthPort, a.logger).Start(ctx)
}

// RunCollect runs one collection cycle.
func (a *App) RunCollect(ctx context.Context) error {
	return a.tracked(ctx, workflowCollect, func(ctx context.Context, _ int64) error {
		return worker.RunWithTimeout(ctx, a.cfg.CollectTimeout, a.pipeline.Collect)
	})
}

// RunDedup reruns the lexical layer over the retention window.
func (a *App) RunDedup(ctx context.Context) error {
	return a.tracked(ctx, workflowDedup, func(ctx context.Context, _ int64) error {
		_, err := a.matcher.Backfill(ctx, a.cfg.DedupWindowDays)
		return err
	})
}

// RunSemDedup reruns the semantic layer over the retention window.
func (a *App) RunSemDedup(ctx context.Context) error {
	return a.tracked(ctx, workflowSemDedup, func(ctx context.Context, _ int64) error {
		_, err := a.grouper.Backfill(ctx, a.cfg.DedupWindowDays)
		return err
	})
}

// RunAnalyze scores one batch of unscored canonical events.
func (a *App) RunAnalyze(ctx context.Context) error {
	return a.tracked(ctx, workflowAnalyze, func(ctx context.Context, _ int64) error {
		_, err := a.analyzer.Run(ctx)
		return err
	})
}

// RunPredict derives today's prediction from the scored canonical events
// and records it through the lock-aware ledger.
func (a *App) RunPredict(ctx context.Context) error {
	return a.tracked(ctx, workflowPredict, func(ctx context.Context, runID int64) error {
		date := a.boundary.Today(a.clock.Now())

		summary, err := a.database.GetSentimentSummary(ctx, date)
		if err != nil {
			return fmt.Errorf("sentiment summary: %w", err)
		}

		events, err := a.database.ListCanonicalForDay(ctx, date)
		if err != nil {
			return fmt.Errorf("list canonical events: %w", err)
		}

		input := ledger.DeriveInput(summary, analyze.TopEventsSummary(events, topEventsLimit))

		_, err = a.writer.Record(ctx, date, input, &runID)

		return err
	})
}

// RunBackfill reruns both matching layers over the retention window.
func (a *App) RunBackfill(ctx context.Context) error {
	return a.tracked(ctx, workflowBackfill, func(ctx context.Context, _ int64) error {
		if _, err := a.matcher.Backfill(ctx, a.cfg.DedupWindowDays); err != nil {
			return err
		}

		_, err := a.grouper.Backfill(ctx, a.cfg.DedupWindowDays)

		return err
	})
}

// RunServe runs the full cycle on an interval until the context is
// canceled. A failed cycle is logged and the loop continues.
func (a *App) RunServe(ctx context.Context) error {
	return worker.Loop(ctx, worker.Config{
		Name:         "pulse-cycle",
		PollInterval: a.cfg.CycleInterval,
		Process:      a.runCycle,
		OnError: func(err error) bool {
			a.logger.Error().Err(err).Msg("Cycle failed, will retry next interval")
			return true
		},
		Logger: a.logger,
	})
}

func (a *App) runCycle(ctx context.Context) error {
	defer worker.RecoverPanic(a.logger, "pulse cycle")

	if err := a.RunCollect(ctx); err != nil {
		return err
	}

	if err := a.RunAnalyze(ctx); err != nil {
		return err
	}

	if err := a.RunSemDedup(ctx); err != nil {
		return err
	}

	return a.RunPredict(ctx)
}

// tracked wraps one workflow cycle in a start/finish run record.
func (a *App) tracked(ctx context.Context, workflow string, fn func(ctx context.Context, runID int64) error) error {
	run, err := a.tracker.Start(ctx, workflow)
	if err != nil {
		return err
	}

	runErr := fn(ctx, run.ID)

	if err := a.tracker.Complete(ctx, run, runErr); err != nil {
		a.logger.Error().Err(err).Str("workflow", workflow).Msg("Failed to record run completion")
	}

	return runErr
}
