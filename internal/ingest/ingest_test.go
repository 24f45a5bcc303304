// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

package ingest

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/pingtop/internal/models"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadInteractions(t *testing.T) {
	path := writeCSV(t, "interactions.csv",
		"user_id,ping_id,event_type,watch_time_sec,event_timestamp\n"+
			"u1,p1,view,15,2024-02-01 12:00:00\n"+
			"u1,p2,like,,\n"+
			"u2,p1,superlike,abc,not-a-date\n")

	events, err := LoadInteractions(path)
	if err != nil {
		t.Fatalf("LoadInteractions() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("loaded %d events, want 3", len(events))
	}

	first := events[0]
	if first.UserID != "u1" || first.PingID != "p1" || first.Type != models.EventView {
		t.Errorf("first event = %+v", first)
	}
	if first.WatchTimeSec != 15 {
		t.Errorf("watch time = %f, want 15", first.WatchTimeSec)
	}
	want := time.Date(2024, time.February, 1, 12, 0, 0, 0, time.UTC)
	if !first.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", first.Timestamp, want)
	}

	// Missing watch time defaults to 0, missing timestamp to zero time.
	if events[1].WatchTimeSec != 0 || !events[1].Timestamp.IsZero() {
		t.Errorf("second event defaults not applied: %+v", events[1])
	}

	// Unknown event type and malformed cells degrade, never error.
	if events[2].Type != models.EventUnknown {
		t.Errorf("third event type = %v, want EventUnknown", events[2].Type)
	}
	if events[2].WatchTimeSec != 0 || !events[2].Timestamp.IsZero() {
		t.Errorf("malformed cells should default: %+v", events[2])
	}
}

func TestLoadInteractionsMissingColumn(t *testing.T) {
	path := writeCSV(t, "interactions.csv", "user_id,event_type\nu1,view\n")

	if _, err := LoadInteractions(path); err == nil {
		t.Error("LoadInteractions() should fail when ping_id column is absent")
	}
}

func TestLoadPingsAliasesAndDurationFallback(t *testing.T) {
	path := writeCSV(t, "pings.csv",
		"oping_id, ocreator_id ,omain_hashtag,ocategory,oduration_sec,ocreated_at\n"+
			"p1,c1,#fun,comedy,20,2024-02-10\n"+
			"p2,c2,#song,music,40,2024-02-12\n"+
			"p3,c3,#dance,dance,,\n")

	pings, err := LoadPings(path)
	if err != nil {
		t.Fatalf("LoadPings() error = %v", err)
	}
	if len(pings) != 3 {
		t.Fatalf("loaded %d pings, want 3", len(pings))
	}

	if pings[0].PingID != "p1" || pings[0].CreatorID != "c1" || pings[0].Category != "comedy" {
		t.Errorf("aliased columns not canonicalized: %+v", pings[0])
	}

	// Missing duration takes the median of known durations (20, 40).
	if math.Abs(pings[2].DurationSec-30) > 1e-9 {
		t.Errorf("p3 duration = %f, want median 30", pings[2].DurationSec)
	}
	if !pings[2].CreatedAt.IsZero() {
		t.Errorf("p3 created_at = %v, want zero", pings[2].CreatedAt)
	}
}

func TestLoadPingsNoKnownDurations(t *testing.T) {
	path := writeCSV(t, "pings.csv",
		"ping_id,creator_id,main_hashtag,category,duration_sec,created_at\n"+
			"p1,c1,#a,x,,\n")

	pings, err := LoadPings(path)
	if err != nil {
		t.Fatalf("LoadPings() error = %v", err)
	}
	if pings[0].DurationSec != DefaultDurationSec {
		t.Errorf("duration = %f, want default %f", pings[0].DurationSec, DefaultDurationSec)
	}
}

func TestLoadUsers(t *testing.T) {
	path := writeCSV(t, "users.csv",
		"ouser_id,country,osignup_date,age\n"+
			"u1,DE,2024-02-15,25\n"+
			"u2,FR,,\n")

	users, err := LoadUsers(path)
	if err != nil {
		t.Fatalf("LoadUsers() error = %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("loaded %d users, want 2", len(users))
	}
	if users[0].UserID != "u1" || users[0].Country != "DE" || users[0].Age != 25 {
		t.Errorf("first user = %+v", users[0])
	}
	if users[0].SignupDate.IsZero() {
		t.Error("u1 signup date should parse")
	}
	if !users[1].SignupDate.IsZero() || users[1].Age != 0 {
		t.Errorf("u2 defaults not applied: %+v", users[1])
	}
}

func TestLoadTablesMissingFile(t *testing.T) {
	if _, err := LoadTables("/nonexistent/a.csv", "/nonexistent/b.csv", "/nonexistent/c.csv"); err == nil {
		t.Error("LoadTables() should fail for missing files")
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{5}, 5},
		{"odd", []float64{3, 1, 2}, 2},
		{"even", []float64{4, 1, 3, 2}, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := median(tt.values); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("median(%v) = %f, want %f", tt.values, got, tt.want)
			}
		})
	}
}
