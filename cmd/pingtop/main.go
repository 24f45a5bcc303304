// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

// Command pingtop runs the batch engagement pipeline: load the input
// CSVs, derive scores, aggregates, affinities and recommendations,
// persist everything to DuckDB and CSV snapshots, and optionally serve
// the results over HTTP until interrupted.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/pingtop/internal/api"
	"github.com/tomtom215/pingtop/internal/config"
	"github.com/tomtom215/pingtop/internal/engage"
	"github.com/tomtom215/pingtop/internal/ingest"
	"github.com/tomtom215/pingtop/internal/logging"
	"github.com/tomtom215/pingtop/internal/metrics"
	"github.com/tomtom215/pingtop/internal/pipeline"
	"github.com/tomtom215/pingtop/internal/recommend"
	"github.com/tomtom215/pingtop/internal/storage"
)

func main() {
	if err := run(); err != nil {
		logger := logging.Logger()
		logger.Error().Err(err).Msg("pingtop failed")
		metrics.PipelineRuns.WithLabelValues("error").Inc()
		os.Exit(1)
	}
	metrics.PipelineRuns.WithLabelValues("success").Inc()
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.ContextWithNewRunID(ctx)
	logger := logging.Ctx(ctx)

	logger.Info().
		Str("interactions", cfg.Input.Interactions).
		Str("pings", cfg.Input.Pings).
		Str("users", cfg.Input.Users).
		Msg("loading input tables")

	tables, err := ingest.LoadTables(cfg.Input.Interactions, cfg.Input.Pings, cfg.Input.Users)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(ctx, tables.Events, tables.Pings, tables.Users, pipelineOptions(cfg))
	if err != nil {
		return err
	}

	if cfg.Output.DatabasePath != "" {
		store, err := storage.Open(cfg.Output.DatabasePath, *logger)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.SaveRun(ctx, res); err != nil {
			return err
		}
	}

	exporter := storage.NewCSVExporter(cfg.Output.Dir, *logger)
	if err := exporter.Export(res); err != nil {
		return err
	}

	logSummary(res, logger)

	if cfg.Server.Enabled {
		srv := api.NewServer(api.Config{
			Addr:    cfg.Server.Addr,
			Timeout: cfg.Server.Timeout,
		}, res, *logger)
		return srv.Serve(ctx)
	}
	return nil
}

// pipelineOptions maps the loaded configuration onto pipeline options.
func pipelineOptions(cfg *config.Config) pipeline.Options {
	var referenceNow time.Time
	if cfg.Ranker.ReferenceDate != "" {
		// Validated during config load.
		referenceNow, _ = time.Parse("2006-01-02", cfg.Ranker.ReferenceDate)
	}

	return pipeline.Options{
		Scorer: engage.ScorerConfig{
			ViewWeight:       cfg.Scoring.ViewWeight,
			LikeWeight:       cfg.Scoring.LikeWeight,
			CommentWeight:    cfg.Scoring.CommentWeight,
			ShareWeight:      cfg.Scoring.ShareWeight,
			FollowWeight:     cfg.Scoring.FollowWeight,
			ImpressionWeight: cfg.Scoring.ImpressionWeight,
		},
		Ranker: recommend.Config{
			Weights: recommend.Weights{
				Alpha: cfg.Ranker.Alpha,
				Beta:  cfg.Ranker.Beta,
				Gamma: cfg.Ranker.Gamma,
				Delta: cfg.Ranker.Delta,
			},
			TopK: cfg.Ranker.TopK,
		},
		CohortWindowDays: cfg.Cohort.WindowDays,
		Users:            cfg.Ranker.Users,
		ReferenceNow:     referenceNow,
	}
}

// logSummary emits the run's headline numbers: the strongest pings and
// the cohort breakdowns.
func logSummary(res *pipeline.Result, logger *zerolog.Logger) {
	for i, tp := range res.TopPings {
		logger.Info().
			Int("rank", i+1).
			Str("ping_id", tp.PingID).
			Float64("global_engagement", tp.GlobalEngagement).
			Int("users_interacted", tp.UsersInteracted).
			Str("category", tp.Category).
			Msg("top ping")
	}
	for _, row := range res.Cohorts.Watch {
		logger.Info().
			Bool("is_new", row.IsNew).
			Float64("avg_watch_time_ratio", row.AvgWatchRatio).
			Int("view_count", row.ViewCount).
			Msg("cohort watch ratio")
	}
	for _, row := range res.Cohorts.Items {
		logger.Info().
			Bool("is_new", row.IsNew).
			Float64("avg_pings", row.AvgItems).
			Int("user_count", row.UserCount).
			Msg("cohort distinct pings")
	}
	logger.Info().
		Int("users_ranked", len(res.Recommendations)).
		Float64("watch_ratio_mean", res.WatchStats.Mean).
		Msg("run summary")
}
