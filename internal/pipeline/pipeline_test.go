// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

package pipeline

import (
	"context"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/pingtop/internal/models"
	"github.com/tomtom215/pingtop/internal/recommend"
)

func day(d int) time.Time {
	return time.Date(2024, time.February, d, 0, 0, 0, 0, time.UTC)
}

func sampleData() ([]models.InteractionEvent, []models.Ping, []models.User) {
	pings := []models.Ping{
		{PingID: "p1", CreatorID: "c1", MainHashtag: "#fun", Category: "comedy", DurationSec: 30, CreatedAt: day(18)},
		{PingID: "p2", CreatorID: "c2", MainHashtag: "#song", Category: "music", DurationSec: 60, CreatedAt: day(20)},
		{PingID: "p3", CreatorID: "c1", MainHashtag: "#lol", Category: "comedy", DurationSec: 45, CreatedAt: day(10)},
		{PingID: "p4", CreatorID: "c3", MainHashtag: "#cook", Category: "food", DurationSec: 90, CreatedAt: day(19)},
	}
	events := []models.InteractionEvent{
		{UserID: "u1", PingID: "p1", Type: models.EventView, WatchTimeSec: 15, Timestamp: day(20)},
		{UserID: "u1", PingID: "p1", Type: models.EventLike, Timestamp: day(20)},
		{UserID: "u1", PingID: "p3", Type: models.EventView, WatchTimeSec: 45, Timestamp: day(21)},
		{UserID: "u2", PingID: "p2", Type: models.EventShare, Timestamp: day(21)},
		{UserID: "u2", PingID: "ghost", Type: models.EventComment, Timestamp: day(21)},
	}
	users := []models.User{
		{UserID: "u1", Country: "DE", SignupDate: day(1), Age: 25},
		{UserID: "u2", Country: "FR", SignupDate: day(20), Age: 31},
		{UserID: "u3", Country: "US", SignupDate: day(21), Age: 19},
	}
	return events, pings, users
}

func TestRunProducesAllTables(t *testing.T) {
	events, pings, users := sampleData()

	res, err := Run(context.Background(), events, pings, users, DefaultOptions())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// u1×p1, u1×p3, u2×p2, u2×ghost
	if len(res.UserPings) != 4 {
		t.Errorf("UserPings rows = %d, want 4", len(res.UserPings))
	}
	// p1, p2, p3, ghost — uncataloged pings still aggregate.
	if len(res.Global) != 4 {
		t.Errorf("Global rows = %d, want 4", len(res.Global))
	}
	// Features only for cataloged pings.
	if len(res.Features) != 4 {
		t.Errorf("Features rows = %d, want 4", len(res.Features))
	}
	if len(res.Recommendations) != 3 {
		t.Errorf("Recommendations for %d users, want 3", len(res.Recommendations))
	}
	if res.WatchStats.Count != 2 {
		t.Errorf("WatchStats.Count = %d, want 2 view events", res.WatchStats.Count)
	}
	if len(res.TopPings) != 4 {
		t.Errorf("TopPings rows = %d, want 4", len(res.TopPings))
	}
	if len(res.Cohorts.Items) == 0 || len(res.Cohorts.Watch) == 0 {
		t.Error("cohort report should not be empty")
	}
}

func TestRunGlobalOrdering(t *testing.T) {
	events, pings, users := sampleData()

	res, err := Run(context.Background(), events, pings, users, DefaultOptions())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for i := 1; i < len(res.Global); i++ {
		prev, cur := res.Global[i-1], res.Global[i]
		if prev.GlobalEngagement < cur.GlobalEngagement {
			t.Errorf("global ranking not descending at %d: %f < %f", i, prev.GlobalEngagement, cur.GlobalEngagement)
		}
		if prev.GlobalEngagement == cur.GlobalEngagement && prev.PingID > cur.PingID {
			t.Errorf("tie at %d not broken by ping ID ascending", i)
		}
	}
}

func TestRunExcludesSeenAndServesColdStart(t *testing.T) {
	events, pings, users := sampleData()

	res, err := Run(context.Background(), events, pings, users, DefaultOptions())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, rec := range res.Recommendations["u1"] {
		if rec.PingID == "p1" || rec.PingID == "p3" {
			t.Errorf("u1 recommended already-seen %s", rec.PingID)
		}
	}

	// u3 has no events: full catalog, scored by popularity+freshness only.
	cold := res.Recommendations["u3"]
	if len(cold) != 4 {
		t.Fatalf("cold-start user got %d recommendations, want 4", len(cold))
	}
	for _, rec := range cold {
		want := 0.5*featureOf(t, res, rec.PingID).GlobalPopNorm + 0.10*featureOf(t, res, rec.PingID).Freshness
		if math.Abs(rec.Score-want) > 1e-9 {
			t.Errorf("cold-start %s score = %f, want %f (alpha+delta only)", rec.PingID, rec.Score, want)
		}
	}
}

func featureOf(t *testing.T, res *Result, pingID string) models.ItemFeatures {
	t.Helper()
	for _, f := range res.Features {
		if f.PingID == pingID {
			return f
		}
	}
	t.Fatalf("no features for %s", pingID)
	return models.ItemFeatures{}
}

func TestRunIdempotent(t *testing.T) {
	events, pings, users := sampleData()

	first, err := Run(context.Background(), events, pings, users, DefaultOptions())
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	second, err := Run(context.Background(), events, pings, users, DefaultOptions())
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("two runs over identical inputs should be identical")
	}
}

func TestRunTargetedUsers(t *testing.T) {
	events, pings, users := sampleData()

	opts := DefaultOptions()
	opts.Users = []string{"u2"}

	res, err := Run(context.Background(), events, pings, users, opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(res.Recommendations) != 1 {
		t.Fatalf("Recommendations for %d users, want 1", len(res.Recommendations))
	}
	if _, ok := res.Recommendations["u2"]; !ok {
		t.Error("missing recommendations for targeted user u2")
	}
}

func TestRunRejectsInvalidRankerOptions(t *testing.T) {
	events, pings, users := sampleData()

	opts := DefaultOptions()
	opts.Ranker = recommend.Config{TopK: 0}

	if _, err := Run(context.Background(), events, pings, users, opts); err == nil {
		t.Error("Run() should reject invalid ranker options")
	}
}

func TestRunEmptyInputs(t *testing.T) {
	res, err := Run(context.Background(), nil, nil, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("Run() on empty inputs error = %v", err)
	}
	if len(res.UserPings) != 0 || len(res.Global) != 0 || len(res.Features) != 0 {
		t.Error("empty inputs should yield empty tables")
	}
}
