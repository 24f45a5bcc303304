// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/pingtop/internal/models"
	"github.com/tomtom215/pingtop/internal/pipeline"
)

// timestampLayout is the format used for timestamps in CSV exports.
const timestampLayout = "2006-01-02 15:04:05"

// floatPrecision keeps exported floats readable without losing the
// precision downstream comparisons need.
const floatPrecision = 6

// CSVExporter writes one run's derived tables as CSV snapshots under a
// single output directory. Per-user recommendation files land in a
// recs/ subdirectory.
type CSVExporter struct {
	dir    string
	logger zerolog.Logger
}

// NewCSVExporter returns an exporter rooted at dir. The directory is
// created on first write.
func NewCSVExporter(dir string, logger zerolog.Logger) *CSVExporter {
	return &CSVExporter{
		dir:    dir,
		logger: logger.With().Str("component", "csv_export").Logger(),
	}
}

// Export writes every derived table of the run.
func (e *CSVExporter) Export(res *pipeline.Result) error {
	if err := os.MkdirAll(e.dir, 0o750); err != nil {
		return fmt.Errorf("creating output dir %s: %w", e.dir, err)
	}

	writers := []struct {
		name  string
		write func(*pipeline.Result) error
	}{
		{"ping_global.csv", e.writePingGlobal},
		{"user_ping.csv", e.writeUserPings},
		{"user_category_affinity.csv", e.writeCategoryAffinities},
		{"user_creator_affinity.csv", e.writeCreatorAffinities},
		{"item_features.csv", e.writeItemFeatures},
		{"avg_watch_by_group.csv", e.writeCohortWatch},
		{"avg_pings_by_group.csv", e.writeCohortItems},
		{"watch_time_ratio_stats.csv", e.writeWatchStats},
		{"top10_pings.csv", e.writeTopPings},
	}
	for _, w := range writers {
		if err := w.write(res); err != nil {
			return fmt.Errorf("exporting %s: %w", w.name, err)
		}
	}
	if err := e.writeRecommendations(res); err != nil {
		return fmt.Errorf("exporting recommendations: %w", err)
	}

	e.logger.Info().Str("dir", e.dir).Msg("csv snapshots written")
	return nil
}

func (e *CSVExporter) writePingGlobal(res *pipeline.Result) error {
	rows := make([][]string, 0, len(res.Global))
	for _, g := range res.Global {
		rows = append(rows, []string{g.PingID, formatFloat(g.GlobalEngagement), strconv.Itoa(g.UsersInteracted)})
	}
	return e.writeFile("ping_global.csv",
		[]string{"ping_id", "global_engagement", "users_interacted"}, rows)
}

func (e *CSVExporter) writeUserPings(res *pipeline.Result) error {
	rows := make([][]string, 0, len(res.UserPings))
	for _, up := range res.UserPings {
		rows = append(rows, []string{
			up.UserID, up.PingID,
			formatFloat(up.EngagementScore),
			formatTime(up.LastInteraction),
			strconv.Itoa(up.EventCount),
		})
	}
	return e.writeFile("user_ping.csv",
		[]string{"user_id", "ping_id", "engagement_score", "last_interaction_ts", "n_events"}, rows)
}

func (e *CSVExporter) writeCategoryAffinities(res *pipeline.Result) error {
	rows := make([][]string, 0, len(res.CategoryAffinities))
	for _, a := range res.CategoryAffinities {
		rows = append(rows, []string{a.UserID, a.Category, formatFloat(a.Affinity)})
	}
	return e.writeFile("user_category_affinity.csv",
		[]string{"user_id", "category", "affinity"}, rows)
}

func (e *CSVExporter) writeCreatorAffinities(res *pipeline.Result) error {
	rows := make([][]string, 0, len(res.CreatorAffinities))
	for _, a := range res.CreatorAffinities {
		rows = append(rows, []string{a.UserID, a.CreatorID, formatFloat(a.Affinity)})
	}
	return e.writeFile("user_creator_affinity.csv",
		[]string{"user_id", "creator_id", "affinity"}, rows)
}

func (e *CSVExporter) writeItemFeatures(res *pipeline.Result) error {
	rows := make([][]string, 0, len(res.Features))
	for _, f := range res.Features {
		rows = append(rows, []string{
			f.PingID,
			formatFloat(f.GlobalPopNorm),
			formatFloat(f.Freshness),
			f.Category, f.MainHashtag, f.CreatorID,
		})
	}
	return e.writeFile("item_features.csv",
		[]string{"ping_id", "global_pop_norm", "freshness", "category", "main_hashtag", "creator_id"}, rows)
}

// writeRecommendations writes one recs/recs_<user>.csv per user.
func (e *CSVExporter) writeRecommendations(res *pipeline.Result) error {
	recsDir := filepath.Join(e.dir, "recs")
	if err := os.MkdirAll(recsDir, 0o750); err != nil {
		return fmt.Errorf("creating recs dir: %w", err)
	}

	header := []string{"rank", "ping_id", "score", "category", "main_hashtag", "creator_id", "reason"}
	for _, userID := range sortedKeys(res.Recommendations) {
		recs := res.Recommendations[userID]
		rows := make([][]string, 0, len(recs))
		for i, rec := range recs {
			rows = append(rows, []string{
				strconv.Itoa(i + 1), rec.PingID,
				formatFloat(rec.Score),
				rec.Category, rec.MainHashtag, rec.CreatorID,
				rec.Reason,
			})
		}
		name := filepath.Join("recs", "recs_"+userID+".csv")
		if err := e.writeFile(name, header, rows); err != nil {
			return err
		}
	}
	return nil
}

func (e *CSVExporter) writeCohortWatch(res *pipeline.Result) error {
	rows := make([][]string, 0, len(res.Cohorts.Watch))
	for _, w := range res.Cohorts.Watch {
		rows = append(rows, []string{
			cohortLabel(w.IsNew),
			formatFloat(w.AvgWatchRatio),
			strconv.Itoa(w.ViewCount),
		})
	}
	return e.writeFile("avg_watch_by_group.csv",
		[]string{"user_group", "avg_watch_time_ratio", "view_count"}, rows)
}

func (e *CSVExporter) writeCohortItems(res *pipeline.Result) error {
	rows := make([][]string, 0, len(res.Cohorts.Items))
	for _, it := range res.Cohorts.Items {
		rows = append(rows, []string{
			cohortLabel(it.IsNew),
			formatFloat(it.AvgItems),
			strconv.Itoa(it.UserCount),
		})
	}
	return e.writeFile("avg_pings_by_group.csv",
		[]string{"user_group", "avg_pings", "user_count"}, rows)
}

func (e *CSVExporter) writeWatchStats(res *pipeline.Result) error {
	st := res.WatchStats
	rows := [][]string{{
		strconv.Itoa(st.Count),
		formatFloat(st.Mean), formatFloat(st.StdDev),
		formatFloat(st.Min),
		formatFloat(st.P25), formatFloat(st.P50), formatFloat(st.P75), formatFloat(st.P90),
		formatFloat(st.Max),
	}}
	return e.writeFile("watch_time_ratio_stats.csv",
		[]string{"count", "mean", "std", "min", "p25", "p50", "p75", "p90", "max"}, rows)
}

func (e *CSVExporter) writeTopPings(res *pipeline.Result) error {
	rows := make([][]string, 0, len(res.TopPings))
	for _, tp := range res.TopPings {
		rows = append(rows, []string{
			tp.PingID,
			formatFloat(tp.GlobalEngagement),
			strconv.Itoa(tp.UsersInteracted),
			tp.CreatorID, tp.MainHashtag, tp.Category,
		})
	}
	return e.writeFile("top10_pings.csv",
		[]string{"ping_id", "global_engagement", "users_interacted", "creator_id", "main_hashtag", "category"}, rows)
}

// writeFile writes a header plus rows to a CSV under the output dir.
func (e *CSVExporter) writeFile(name string, header []string, rows [][]string) error {
	path := filepath.Join(e.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header to %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing rows to %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', floatPrecision, 64)
}

// formatTime renders a timestamp; the zero value exports as empty.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}

func cohortLabel(isNew bool) string {
	if isNew {
		return "new"
	}
	return "existing"
}

// sortedKeys returns map keys in ascending order for deterministic output.
func sortedKeys(m map[string][]models.Recommendation) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
