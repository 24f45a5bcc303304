// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

// Package storage persists one pipeline run's derived tables: a DuckDB
// database for querying and CSV snapshot exports matching the classic
// output layout.
//
// Every table is replaced wholesale on save; derived data is recomputed
// from scratch each run, so there is nothing to merge.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/tomtom215/pingtop/internal/models"
	"github.com/tomtom215/pingtop/internal/pipeline"
)

// Store writes derived tables to a DuckDB database.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Open opens (or creates) the DuckDB database at path. Use ":memory:"
// for an ephemeral store.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("opening duckdb at %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to duckdb at %s: %w", path, err)
	}

	return &Store{
		db:     db,
		logger: logger.With().Str("component", "storage").Logger(),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun replaces every derived table with the given run's results.
func (s *Store) SaveRun(ctx context.Context, res *pipeline.Result) error {
	start := time.Now()

	savers := []func(context.Context, *pipeline.Result) error{
		s.savePingGlobal,
		s.saveUserPings,
		s.saveAffinities,
		s.saveItemFeatures,
		s.saveRecommendations,
		s.saveCohorts,
		s.saveWatchStats,
	}
	for _, save := range savers {
		if err := save(ctx, res); err != nil {
			return err
		}
	}

	s.logger.Info().
		Dur("elapsed", time.Since(start)).
		Msg("derived tables persisted")
	return nil
}

func (s *Store) savePingGlobal(ctx context.Context, res *pipeline.Result) error {
	const schema = `CREATE OR REPLACE TABLE ping_global (
		ping_id VARCHAR NOT NULL,
		global_engagement DOUBLE NOT NULL,
		users_interacted INTEGER NOT NULL
	)`

	return s.replaceTable(ctx, "ping_global", schema,
		`INSERT INTO ping_global VALUES (?, ?, ?)`,
		len(res.Global), func(i int) []any {
			g := res.Global[i]
			return []any{g.PingID, g.GlobalEngagement, g.UsersInteracted}
		})
}

func (s *Store) saveUserPings(ctx context.Context, res *pipeline.Result) error {
	const schema = `CREATE OR REPLACE TABLE user_ping (
		user_id VARCHAR NOT NULL,
		ping_id VARCHAR NOT NULL,
		engagement_score DOUBLE NOT NULL,
		last_interaction_ts TIMESTAMP,
		n_events INTEGER NOT NULL
	)`

	return s.replaceTable(ctx, "user_ping", schema,
		`INSERT INTO user_ping VALUES (?, ?, ?, ?, ?)`,
		len(res.UserPings), func(i int) []any {
			up := res.UserPings[i]
			return []any{up.UserID, up.PingID, up.EngagementScore, nullableTime(up.LastInteraction), up.EventCount}
		})
}

func (s *Store) saveAffinities(ctx context.Context, res *pipeline.Result) error {
	const catSchema = `CREATE OR REPLACE TABLE user_category_affinity (
		user_id VARCHAR NOT NULL,
		category VARCHAR NOT NULL,
		affinity DOUBLE NOT NULL
	)`
	err := s.replaceTable(ctx, "user_category_affinity", catSchema,
		`INSERT INTO user_category_affinity VALUES (?, ?, ?)`,
		len(res.CategoryAffinities), func(i int) []any {
			a := res.CategoryAffinities[i]
			return []any{a.UserID, a.Category, a.Affinity}
		})
	if err != nil {
		return err
	}

	const creSchema = `CREATE OR REPLACE TABLE user_creator_affinity (
		user_id VARCHAR NOT NULL,
		creator_id VARCHAR NOT NULL,
		affinity DOUBLE NOT NULL
	)`
	return s.replaceTable(ctx, "user_creator_affinity", creSchema,
		`INSERT INTO user_creator_affinity VALUES (?, ?, ?)`,
		len(res.CreatorAffinities), func(i int) []any {
			a := res.CreatorAffinities[i]
			return []any{a.UserID, a.CreatorID, a.Affinity}
		})
}

func (s *Store) saveItemFeatures(ctx context.Context, res *pipeline.Result) error {
	const schema = `CREATE OR REPLACE TABLE item_features (
		ping_id VARCHAR NOT NULL,
		global_pop_norm DOUBLE NOT NULL,
		freshness DOUBLE NOT NULL,
		category VARCHAR,
		main_hashtag VARCHAR,
		creator_id VARCHAR
	)`

	return s.replaceTable(ctx, "item_features", schema,
		`INSERT INTO item_features VALUES (?, ?, ?, ?, ?, ?)`,
		len(res.Features), func(i int) []any {
			f := res.Features[i]
			return []any{f.PingID, f.GlobalPopNorm, f.Freshness, f.Category, f.MainHashtag, f.CreatorID}
		})
}

func (s *Store) saveRecommendations(ctx context.Context, res *pipeline.Result) error {
	const schema = `CREATE OR REPLACE TABLE recommendations (
		user_id VARCHAR NOT NULL,
		rank INTEGER NOT NULL,
		ping_id VARCHAR NOT NULL,
		score DOUBLE NOT NULL,
		category VARCHAR,
		main_hashtag VARCHAR,
		creator_id VARCHAR,
		reason VARCHAR NOT NULL
	)`

	type row struct {
		userID string
		rank   int
		rec    models.Recommendation
	}
	var rows []row
	for _, userID := range sortedKeys(res.Recommendations) {
		for i, rec := range res.Recommendations[userID] {
			rows = append(rows, row{userID: userID, rank: i + 1, rec: rec})
		}
	}

	return s.replaceTable(ctx, "recommendations", schema,
		`INSERT INTO recommendations VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		len(rows), func(i int) []any {
			r := rows[i]
			return []any{r.userID, r.rank, r.rec.PingID, r.rec.Score, r.rec.Category, r.rec.MainHashtag, r.rec.CreatorID, r.rec.Reason}
		})
}

func (s *Store) saveCohorts(ctx context.Context, res *pipeline.Result) error {
	const watchSchema = `CREATE OR REPLACE TABLE cohort_watch (
		is_new BOOLEAN NOT NULL,
		avg_watch_time_ratio DOUBLE NOT NULL,
		view_count INTEGER NOT NULL
	)`
	err := s.replaceTable(ctx, "cohort_watch", watchSchema,
		`INSERT INTO cohort_watch VALUES (?, ?, ?)`,
		len(res.Cohorts.Watch), func(i int) []any {
			w := res.Cohorts.Watch[i]
			return []any{w.IsNew, w.AvgWatchRatio, w.ViewCount}
		})
	if err != nil {
		return err
	}

	const itemsSchema = `CREATE OR REPLACE TABLE cohort_items (
		is_new BOOLEAN NOT NULL,
		avg_pings DOUBLE NOT NULL,
		user_count INTEGER NOT NULL
	)`
	return s.replaceTable(ctx, "cohort_items", itemsSchema,
		`INSERT INTO cohort_items VALUES (?, ?, ?)`,
		len(res.Cohorts.Items), func(i int) []any {
			it := res.Cohorts.Items[i]
			return []any{it.IsNew, it.AvgItems, it.UserCount}
		})
}

func (s *Store) saveWatchStats(ctx context.Context, res *pipeline.Result) error {
	const schema = `CREATE OR REPLACE TABLE watch_ratio_stats (
		count INTEGER NOT NULL,
		mean DOUBLE NOT NULL,
		std DOUBLE NOT NULL,
		min DOUBLE NOT NULL,
		p25 DOUBLE NOT NULL,
		p50 DOUBLE NOT NULL,
		p75 DOUBLE NOT NULL,
		p90 DOUBLE NOT NULL,
		max DOUBLE NOT NULL
	)`

	st := res.WatchStats
	return s.replaceTable(ctx, "watch_ratio_stats", schema,
		`INSERT INTO watch_ratio_stats VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		1, func(int) []any {
			return []any{st.Count, st.Mean, st.StdDev, st.Min, st.P25, st.P50, st.P75, st.P90, st.Max}
		})
}

// replaceTable recreates a table and bulk-inserts n rows inside one
// transaction.
func (s *Store) replaceTable(ctx context.Context, name, schema, insert string, n int, args func(int) []any) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating table %s: %w", name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction for %s: %w", name, err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("preparing insert for %s: %w", name, err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return fmt.Errorf("inserting row %d into %s: %w", i, name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", name, err)
	}

	s.logger.Debug().Str("table", name).Int("rows", n).Msg("table replaced")
	return nil
}

// CountRows returns the row count of a persisted table.
func (s *Store) CountRows(ctx context.Context, table string) (int, error) {
	var n int
	// Table names come from this package's fixed schema set.
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting rows in %s: %w", table, err)
	}
	return n, nil
}

// nullableTime maps the zero time to SQL NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
