// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

package engage

import (
	"testing"
	"time"

	"github.com/tomtom215/pingtop/internal/models"
)

func ts(day int) time.Time {
	return time.Date(2024, time.February, day, 12, 0, 0, 0, time.UTC)
}

func TestAggregateUserPings(t *testing.T) {
	scored := []ScoredEvent{
		{InteractionEvent: models.InteractionEvent{UserID: "u1", PingID: "p1", Timestamp: ts(1)}, Score: 0.5},
		{InteractionEvent: models.InteractionEvent{UserID: "u1", PingID: "p1", Timestamp: ts(3)}, Score: 2.0},
		{InteractionEvent: models.InteractionEvent{UserID: "u1", PingID: "p1"}, Score: 0.1}, // no timestamp
		{InteractionEvent: models.InteractionEvent{UserID: "u2", PingID: "p1", Timestamp: ts(2)}, Score: 4.0},
		{InteractionEvent: models.InteractionEvent{UserID: "u1", PingID: "p2", Timestamp: ts(5)}, Score: 3.0},
	}

	got := AggregateUserPings(scored)

	want := []models.UserPingAggregate{
		{UserID: "u1", PingID: "p1", EngagementScore: 2.6, LastInteraction: ts(3), EventCount: 3},
		{UserID: "u1", PingID: "p2", EngagementScore: 3.0, LastInteraction: ts(5), EventCount: 1},
		{UserID: "u2", PingID: "p1", EngagementScore: 4.0, LastInteraction: ts(2), EventCount: 1},
	}

	if len(got) != len(want) {
		t.Fatalf("AggregateUserPings() returned %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].UserID != want[i].UserID || got[i].PingID != want[i].PingID {
			t.Errorf("row %d = (%s,%s), want (%s,%s)", i, got[i].UserID, got[i].PingID, want[i].UserID, want[i].PingID)
		}
		if !almostEqual(got[i].EngagementScore, want[i].EngagementScore) {
			t.Errorf("row %d score = %f, want %f", i, got[i].EngagementScore, want[i].EngagementScore)
		}
		if !got[i].LastInteraction.Equal(want[i].LastInteraction) {
			t.Errorf("row %d last interaction = %v, want %v", i, got[i].LastInteraction, want[i].LastInteraction)
		}
		if got[i].EventCount != want[i].EventCount {
			t.Errorf("row %d event count = %d, want %d", i, got[i].EventCount, want[i].EventCount)
		}
	}
}

func TestAggregateUserPingsNoTimestamps(t *testing.T) {
	scored := []ScoredEvent{
		{InteractionEvent: models.InteractionEvent{UserID: "u1", PingID: "p1"}, Score: 1.0},
	}

	got := AggregateUserPings(scored)
	if len(got) != 1 {
		t.Fatalf("AggregateUserPings() returned %d rows, want 1", len(got))
	}
	if !got[0].LastInteraction.IsZero() {
		t.Errorf("LastInteraction = %v, want zero when no event had a timestamp", got[0].LastInteraction)
	}
}

func TestAggregateUserPingsSingleViewScenario(t *testing.T) {
	// u1 has one view on p1 (30s duration, 15s watched): score 0.5.
	catalog := NewCatalog([]models.Ping{{PingID: "p1", DurationSec: 30}})
	scorer := NewScorer(DefaultScorerConfig())

	events := []models.InteractionEvent{
		{UserID: "u1", PingID: "p1", Type: models.EventView, WatchTimeSec: 15},
	}

	got := AggregateUserPings(scorer.ScoreAll(events, catalog))
	if len(got) != 1 {
		t.Fatalf("AggregateUserPings() returned %d rows, want 1", len(got))
	}
	if !almostEqual(got[0].EngagementScore, 0.5) {
		t.Errorf("engagement score = %f, want 0.5", got[0].EngagementScore)
	}
}

func TestAggregateGlobal(t *testing.T) {
	userPings := []models.UserPingAggregate{
		{UserID: "u1", PingID: "p1", EngagementScore: 2.0},
		{UserID: "u2", PingID: "p1", EngagementScore: 3.0},
		{UserID: "u1", PingID: "p2", EngagementScore: 7.0},
		{UserID: "u3", PingID: "p3", EngagementScore: 5.0},
		{UserID: "u4", PingID: "p4", EngagementScore: 5.0},
	}

	got := AggregateGlobal(userPings)

	// Sorted by engagement desc, ties broken by ping ID asc.
	wantOrder := []string{"p2", "p1", "p3", "p4"}
	if len(got) != len(wantOrder) {
		t.Fatalf("AggregateGlobal() returned %d rows, want %d", len(got), len(wantOrder))
	}
	for i, id := range wantOrder {
		if got[i].PingID != id {
			t.Errorf("row %d ping = %s, want %s", i, got[i].PingID, id)
		}
	}

	if !almostEqual(got[1].GlobalEngagement, 5.0) {
		t.Errorf("p1 global engagement = %f, want 5.0", got[1].GlobalEngagement)
	}
	if got[1].UsersInteracted != 2 {
		t.Errorf("p1 users interacted = %d, want 2", got[1].UsersInteracted)
	}
}

func TestAggregateGlobalUncatalogedPingStillAggregates(t *testing.T) {
	catalog := NewCatalog(nil)
	scorer := NewScorer(DefaultScorerConfig())

	events := []models.InteractionEvent{
		{UserID: "u1", PingID: "ghost", Type: models.EventLike},
	}

	global := AggregateGlobal(AggregateUserPings(scorer.ScoreAll(events, catalog)))
	if len(global) != 1 {
		t.Fatalf("uncataloged ping should still aggregate, got %d rows", len(global))
	}
	if global[0].PingID != "ghost" {
		t.Errorf("ping = %s, want ghost", global[0].PingID)
	}
}

func TestSeenByUser(t *testing.T) {
	events := []models.InteractionEvent{
		{UserID: "u1", PingID: "p1", Type: models.EventView},
		{UserID: "u1", PingID: "p2", Type: models.EventImpression},
		{UserID: "u2", PingID: "p1", Type: models.EventLike},
	}

	seen := SeenByUser(events)

	if len(seen["u1"]) != 2 {
		t.Errorf("u1 seen set size = %d, want 2 (impressions count)", len(seen["u1"]))
	}
	if _, ok := seen["u2"]["p1"]; !ok {
		t.Error("u2 should have seen p1")
	}
	if _, ok := seen["u3"]; ok {
		t.Error("u3 should be absent")
	}
}
