// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

// Package ingest loads the three input CSV tables (interactions, pings,
// users) into canonical records.
//
// The loader is tolerant by design: column names are trimmed, lowercased
// and de-aliased; timestamps parse against several layouts with failures
// degrading to unknown; missing watch times default to 0; missing ping
// durations fall back to the median of known durations (30s when no
// duration is known at all). The only fatal condition is a structurally
// invalid input such as a required column that is entirely absent.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/pingtop/internal/models"
)

// DefaultDurationSec is used when no ping has a known duration.
const DefaultDurationSec = 30.0

// columnAliases maps legacy export column names to canonical ones.
var columnAliases = map[string]string{
	"ouser_id":      "user_id",
	"oping_id":      "ping_id",
	"ocreator_id":   "creator_id",
	"omain_hashtag": "main_hashtag",
	"ocategory":     "category",
	"oduration_sec": "duration_sec",
	"ocreated_at":   "created_at",
	"osignup_date":  "signup_date",
}

// timestampLayouts are tried in order when parsing timestamp columns.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Tables bundles the three loaded input tables.
type Tables struct {
	Events []models.InteractionEvent
	Pings  []models.Ping
	Users  []models.User
}

// LoadTables loads all three input files.
func LoadTables(interactionsPath, pingsPath, usersPath string) (*Tables, error) {
	events, err := LoadInteractions(interactionsPath)
	if err != nil {
		return nil, fmt.Errorf("loading interactions: %w", err)
	}
	pings, err := LoadPings(pingsPath)
	if err != nil {
		return nil, fmt.Errorf("loading pings: %w", err)
	}
	users, err := LoadUsers(usersPath)
	if err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}
	return &Tables{Events: events, Pings: pings, Users: users}, nil
}

// LoadInteractions loads the interaction event table.
// Required columns: user_id, ping_id, event_type.
func LoadInteractions(path string) ([]models.InteractionEvent, error) {
	rows, err := readTable(path, "user_id", "ping_id", "event_type")
	if err != nil {
		return nil, err
	}

	events := make([]models.InteractionEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, models.InteractionEvent{
			UserID:       row["user_id"],
			PingID:       row["ping_id"],
			Type:         models.ParseEventType(row["event_type"]),
			WatchTimeSec: parseFloat(row["watch_time_sec"]),
			Timestamp:    parseTimestamp(row["event_timestamp"]),
		})
	}
	return events, nil
}

// LoadPings loads the ping catalog. Required columns: ping_id, creator_id,
// main_hashtag, category. Missing durations are filled with the median of
// known durations, or DefaultDurationSec when none is known.
func LoadPings(path string) ([]models.Ping, error) {
	rows, err := readTable(path, "ping_id", "creator_id", "main_hashtag", "category")
	if err != nil {
		return nil, err
	}

	pings := make([]models.Ping, 0, len(rows))
	var known []float64
	for _, row := range rows {
		d := parseFloat(row["duration_sec"])
		if d > 0 {
			known = append(known, d)
		}
		pings = append(pings, models.Ping{
			PingID:      row["ping_id"],
			CreatorID:   row["creator_id"],
			MainHashtag: row["main_hashtag"],
			Category:    row["category"],
			DurationSec: d,
			CreatedAt:   parseTimestamp(row["created_at"]),
		})
	}

	fallback := median(known)
	if fallback <= 0 {
		fallback = DefaultDurationSec
	}
	for i := range pings {
		if pings[i].DurationSec <= 0 {
			pings[i].DurationSec = fallback
		}
	}

	return pings, nil
}

// LoadUsers loads the user table. Required column: user_id.
func LoadUsers(path string) ([]models.User, error) {
	rows, err := readTable(path, "user_id")
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, models.User{
			UserID:     row["user_id"],
			Country:    row["country"],
			SignupDate: parseTimestamp(row["signup_date"]),
			Age:        int(parseFloat(row["age"])),
		})
	}
	return users, nil
}

// readTable reads a CSV file into one map per row keyed by canonical
// column name, verifying that all required columns exist.
func readTable(path string, required ...string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows default rather than fail

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: empty file", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: reading header: %w", path, err)
	}

	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = canonicalColumn(h)
	}

	present := make(map[string]bool, len(cols))
	for _, c := range cols {
		present[c] = true
	}
	for _, req := range required {
		if !present[req] {
			return nil, fmt.Errorf("%s: required column %q is missing", path, req)
		}
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: reading row: %w", path, err)
		}

		row := make(map[string]string, len(cols))
		for i, c := range cols {
			if i < len(record) {
				row[c] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// canonicalColumn trims, lowercases and de-aliases a column name.
func canonicalColumn(name string) string {
	c := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := columnAliases[c]; ok {
		return alias
	}
	return c
}

// parseFloat parses a numeric cell, returning 0 for empty or malformed
// values.
func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseTimestamp parses a timestamp cell against the known layouts.
// Returns the zero time for empty or unparseable values.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// median returns the median of values, 0 for an empty slice.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
