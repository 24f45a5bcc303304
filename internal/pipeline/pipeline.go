// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

// Package pipeline orchestrates one batch run: scoring, aggregation,
// affinity and feature derivation, ranking and cohort reporting.
//
// The run is a single-pass batch recomputation over a full snapshot.
// Stages with no mutual dependency (affinities and item features; the
// per-user rankings) execute concurrently, but parallelism is an
// optimization only: outputs are deterministic regardless.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/pingtop/internal/cohort"
	"github.com/tomtom215/pingtop/internal/engage"
	"github.com/tomtom215/pingtop/internal/logging"
	"github.com/tomtom215/pingtop/internal/metrics"
	"github.com/tomtom215/pingtop/internal/models"
	"github.com/tomtom215/pingtop/internal/recommend"
)

// topPingsLimit caps the joined top-pings report.
const topPingsLimit = 10

// Options configures one pipeline run.
type Options struct {
	// Scorer holds the per-event-type weights.
	Scorer engage.ScorerConfig

	// Ranker holds the recommendation weights and top-K.
	Ranker recommend.Config

	// CohortWindowDays is the new-user signup window.
	CohortWindowDays int

	// Users restricts recommendation output to these user IDs.
	// Empty means every user in the user table.
	Users []string

	// ReferenceNow anchors freshness computation. Zero derives the
	// reference from the catalog (max created_at, fixed fallback).
	ReferenceNow time.Time
}

// DefaultOptions returns the reference pipeline options.
func DefaultOptions() Options {
	return Options{
		Scorer:           engage.DefaultScorerConfig(),
		Ranker:           recommend.DefaultConfig(),
		CohortWindowDays: cohort.DefaultWindowDays,
	}
}

// Result holds every derived table of one run. All fields are immutable
// once Run returns.
type Result struct {
	UserPings          []models.UserPingAggregate
	Global             []models.PingGlobalAggregate
	CategoryAffinities []models.UserCategoryAffinity
	CreatorAffinities  []models.UserCreatorAffinity
	Features           []models.ItemFeatures

	// Recommendations maps user ID to that user's ranked list.
	Recommendations map[string][]models.Recommendation

	Cohorts    models.CohortReport
	WatchStats models.WatchRatioStats
	TopPings   []models.TopPing
}

// Run executes the full pipeline over one input snapshot.
func Run(ctx context.Context, events []models.InteractionEvent, pings []models.Ping, users []models.User, opts Options) (*Result, error) {
	if err := opts.Ranker.Validate(); err != nil {
		return nil, fmt.Errorf("ranker options: %w", err)
	}

	logger := logging.Ctx(ctx)
	catalog := engage.NewCatalog(pings)

	// Stage 1: score and aggregate.
	start := time.Now()
	scorer := engage.NewScorer(opts.Scorer)
	scored := scorer.ScoreAll(events, catalog)
	observeEvents(events, catalog)

	userPings := engage.AggregateUserPings(scored)
	global := engage.AggregateGlobal(userPings)
	metrics.ObserveStage("aggregate", start)

	logger.Info().
		Int("events", len(events)).
		Int("user_pings", len(userPings)).
		Int("pings", len(global)).
		Msg("events aggregated")

	// Stage 2: affinities and item features are independent of each
	// other once aggregation is done.
	start = time.Now()
	referenceNow := opts.ReferenceNow
	if referenceNow.IsZero() {
		referenceNow = engage.ReferenceNow(catalog, engage.FallbackReferenceDate)
	}

	var (
		affinities *engage.Affinities
		features   []models.ItemFeatures
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		affinities = engage.BuildAffinities(events, catalog)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		features = engage.BuildItemFeatures(catalog, global, referenceNow)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	metrics.ObserveStage("derive", start)

	// Stage 3: rank per user in parallel. One user's ranking never
	// depends on another's.
	start = time.Now()
	ranker, err := recommend.NewRanker(opts.Ranker, features, affinities, engage.SeenByUser(events), *logger)
	if err != nil {
		return nil, err
	}

	targets := opts.Users
	if len(targets) == 0 {
		targets = allUserIDs(users)
	}

	recs := make(map[string][]models.Recommendation, len(targets))
	var mu sync.Mutex

	rg, rctx := errgroup.WithContext(ctx)
	rg.SetLimit(runtime.NumCPU())
	for _, userID := range targets {
		rg.Go(func() error {
			if err := rctx.Err(); err != nil {
				return err
			}
			ranked := ranker.Recommend(userID, opts.Ranker.TopK)
			mu.Lock()
			recs[userID] = ranked
			mu.Unlock()
			return nil
		})
	}
	if err := rg.Wait(); err != nil {
		return nil, err
	}
	for _, ranked := range recs {
		metrics.RecommendationsProduced.Add(float64(len(ranked)))
	}
	metrics.ObserveStage("rank", start)

	// Stage 4: peripheral reporting.
	start = time.Now()
	report := cohort.NewAnalyzer(opts.CohortWindowDays).Analyze(events, users, catalog)
	watchStats := engage.WatchRatioDistribution(events, catalog)
	metrics.ObserveStage("report", start)

	logger.Info().
		Int("users_ranked", len(recs)).
		Int("catalog_size", catalog.Len()).
		Msg("pipeline run complete")

	return &Result{
		UserPings:          userPings,
		Global:             global,
		CategoryAffinities: affinities.CategoryRows(),
		CreatorAffinities:  affinities.CreatorRows(),
		Features:           features,
		Recommendations:    recs,
		Cohorts:            report,
		WatchStats:         watchStats,
		TopPings:           topPings(global, catalog),
	}, nil
}

// observeEvents records scoring metrics for one run.
func observeEvents(events []models.InteractionEvent, catalog *engage.Catalog) {
	for _, ev := range events {
		metrics.EventsScored.WithLabelValues(ev.Type.String()).Inc()
		if _, ok := catalog.Get(ev.PingID); !ok {
			metrics.UnmatchedPingRefs.Inc()
		}
	}
}

// allUserIDs returns the user table's IDs sorted ascending.
func allUserIDs(users []models.User) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.UserID)
	}
	sort.Strings(ids)
	return ids
}

// topPings joins the strongest global aggregates with catalog metadata.
// Pings interacted with but never cataloged keep empty metadata.
func topPings(global []models.PingGlobalAggregate, catalog *engage.Catalog) []models.TopPing {
	n := len(global)
	if n > topPingsLimit {
		n = topPingsLimit
	}

	out := make([]models.TopPing, 0, n)
	for _, g := range global[:n] {
		tp := models.TopPing{PingGlobalAggregate: g}
		if p, ok := catalog.Get(g.PingID); ok {
			tp.CreatorID = p.CreatorID
			tp.MainHashtag = p.MainHashtag
			tp.Category = p.Category
		}
		out = append(out, tp)
	}
	return out
}
