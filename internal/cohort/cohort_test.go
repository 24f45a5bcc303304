// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

package cohort

import (
	"math"
	"testing"
	"time"

	"github.com/tomtom215/pingtop/internal/engage"
	"github.com/tomtom215/pingtop/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func signup(day int) time.Time {
	return time.Date(2024, time.February, day, 0, 0, 0, 0, time.UTC)
}

func TestFlags(t *testing.T) {
	users := []models.User{
		{UserID: "old", SignupDate: signup(1)},
		{UserID: "edge", SignupDate: signup(13)}, // exactly at the 7-day cutoff
		{UserID: "new", SignupDate: signup(20)},
		{UserID: "nodate"},
	}

	flags := NewAnalyzer(7).Flags(users)

	tests := []struct {
		userID string
		want   bool
	}{
		{"old", false},
		{"edge", true},
		{"new", true},
		{"nodate", false},
	}
	for _, tt := range tests {
		t.Run(tt.userID, func(t *testing.T) {
			if got := flags[tt.userID]; got != tt.want {
				t.Errorf("Flags()[%s] = %v, want %v", tt.userID, got, tt.want)
			}
		})
	}
}

func TestFlagsNoSignupDates(t *testing.T) {
	users := []models.User{{UserID: "a"}, {UserID: "b"}}

	for userID, isNew := range NewAnalyzer(7).Flags(users) {
		if isNew {
			t.Errorf("user %s flagged new with no known signup dates", userID)
		}
	}
}

func TestAnalyzeWatchStats(t *testing.T) {
	catalog := engage.NewCatalog([]models.Ping{{PingID: "p1", DurationSec: 100}})
	users := []models.User{
		{UserID: "old", SignupDate: signup(1)},
		{UserID: "new", SignupDate: signup(20)},
	}
	events := []models.InteractionEvent{
		{UserID: "old", PingID: "p1", Type: models.EventView, WatchTimeSec: 50},
		{UserID: "old", PingID: "p1", Type: models.EventView, WatchTimeSec: 100},
		{UserID: "new", PingID: "p1", Type: models.EventView, WatchTimeSec: 25},
		{UserID: "new", PingID: "p1", Type: models.EventLike}, // not a view
	}

	report := NewAnalyzer(7).Analyze(events, users, catalog)

	if len(report.Watch) != 2 {
		t.Fatalf("Watch rows = %d, want 2", len(report.Watch))
	}

	existing, fresh := report.Watch[0], report.Watch[1]
	if existing.IsNew || !fresh.IsNew {
		t.Fatal("rows should be ordered existing then new")
	}
	if !almostEqual(existing.AvgWatchRatio, 0.75) || existing.ViewCount != 2 {
		t.Errorf("existing = %+v, want avg 0.75 over 2 views", existing)
	}
	if !almostEqual(fresh.AvgWatchRatio, 0.25) || fresh.ViewCount != 1 {
		t.Errorf("new = %+v, want avg 0.25 over 1 view", fresh)
	}
}

func TestAnalyzeItemStatsCountsInactiveUsers(t *testing.T) {
	catalog := engage.NewCatalog(nil)
	users := []models.User{
		{UserID: "active", SignupDate: signup(1)},
		{UserID: "idle", SignupDate: signup(2)},
	}
	events := []models.InteractionEvent{
		{UserID: "active", PingID: "p1", Type: models.EventView},
		{UserID: "active", PingID: "p2", Type: models.EventShare},
		{UserID: "active", PingID: "p2", Type: models.EventLike},       // same ping, still distinct count 2
		{UserID: "active", PingID: "p3", Type: models.EventImpression}, // impressions don't count
	}

	report := NewAnalyzer(7).Analyze(events, users, catalog)

	if len(report.Items) != 1 {
		t.Fatalf("Items rows = %d, want 1", len(report.Items))
	}

	row := report.Items[0]
	if row.UserCount != 2 {
		t.Errorf("UserCount = %d, want 2 (idle user included)", row.UserCount)
	}
	// (2 + 0) / 2 users
	if !almostEqual(row.AvgItems, 1.0) {
		t.Errorf("AvgItems = %f, want 1.0", row.AvgItems)
	}
}

func TestNewAnalyzerDefaultWindow(t *testing.T) {
	a := NewAnalyzer(0)
	if a.windowDays != DefaultWindowDays {
		t.Errorf("windowDays = %d, want %d", a.windowDays, DefaultWindowDays)
	}
}
