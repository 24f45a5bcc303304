// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

package engage

import (
	"sort"

	"github.com/tomtom215/pingtop/internal/models"
)

// AggregateUserPings reduces scored events to one aggregate per
// (user, ping) pair: sum of scores, max non-zero timestamp and event
// count. The result is sorted by user ID then ping ID for determinism.
//
// Events referencing pings absent from the catalog still aggregate; they
// simply produce no item features downstream.
func AggregateUserPings(scored []ScoredEvent) []models.UserPingAggregate {
	type key struct {
		userID string
		pingID string
	}

	acc := make(map[key]*models.UserPingAggregate)
	for _, ev := range scored {
		k := key{ev.UserID, ev.PingID}
		agg, ok := acc[k]
		if !ok {
			agg = &models.UserPingAggregate{UserID: ev.UserID, PingID: ev.PingID}
			acc[k] = agg
		}
		agg.EngagementScore += ev.Score
		agg.EventCount++
		if !ev.Timestamp.IsZero() && ev.Timestamp.After(agg.LastInteraction) {
			agg.LastInteraction = ev.Timestamp
		}
	}

	out := make([]models.UserPingAggregate, 0, len(acc))
	for _, agg := range acc {
		out = append(out, *agg)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].PingID < out[j].PingID
	})

	return out
}

// AggregateGlobal reduces per-(user,ping) aggregates to one row per ping:
// total engagement and distinct interacting users. The result is sorted by
// global engagement descending, ties broken by ping ID ascending.
func AggregateGlobal(userPings []models.UserPingAggregate) []models.PingGlobalAggregate {
	acc := make(map[string]*models.PingGlobalAggregate)
	for _, up := range userPings {
		agg, ok := acc[up.PingID]
		if !ok {
			agg = &models.PingGlobalAggregate{PingID: up.PingID}
			acc[up.PingID] = agg
		}
		// userPings is unique per (user, ping), so each row is one
		// distinct user for this ping.
		agg.GlobalEngagement += up.EngagementScore
		agg.UsersInteracted++
	}

	out := make([]models.PingGlobalAggregate, 0, len(acc))
	for _, agg := range acc {
		out = append(out, *agg)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].GlobalEngagement != out[j].GlobalEngagement {
			return out[i].GlobalEngagement > out[j].GlobalEngagement
		}
		return out[i].PingID < out[j].PingID
	})

	return out
}

// SeenByUser returns, for each user, the set of ping IDs the user has
// interacted with through any event type. The ranker uses this to exclude
// already-seen items.
func SeenByUser(events []models.InteractionEvent) map[string]map[string]struct{} {
	seen := make(map[string]map[string]struct{})
	for _, ev := range events {
		set, ok := seen[ev.UserID]
		if !ok {
			set = make(map[string]struct{})
			seen[ev.UserID] = set
		}
		set[ev.PingID] = struct{}{}
	}
	return seen
}
