// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

package models

import "time"

// UserPingAggregate summarizes all events between one user and one ping.
// Unique per (UserID, PingID).
type UserPingAggregate struct {
	UserID string `json:"user_id"`
	PingID string `json:"ping_id"`

	// EngagementScore is the sum of event scores, >= 0.
	EngagementScore float64 `json:"engagement_score"`

	// LastInteraction is the latest non-zero event timestamp.
	// Zero when no event carried a timestamp.
	LastInteraction time.Time `json:"last_interaction_ts"`

	// EventCount is the number of contributing events.
	EventCount int `json:"n_events"`
}

// PingGlobalAggregate summarizes one ping across all users.
// Unique per PingID.
type PingGlobalAggregate struct {
	PingID string `json:"ping_id"`

	// GlobalEngagement is the sum of per-user engagement scores, >= 0.
	GlobalEngagement float64 `json:"global_engagement"`

	// UsersInteracted is the count of distinct users with >= 1 event.
	UsersInteracted int `json:"users_interacted"`
}

// UserCategoryAffinity is the fraction of a user's catalog-matched events
// falling in one category. Affinities for a fixed user sum to 1.0.
type UserCategoryAffinity struct {
	UserID   string  `json:"user_id"`
	Category string  `json:"category"`
	Affinity float64 `json:"affinity"`
}

// UserCreatorAffinity is the fraction of a user's catalog-matched events
// directed at one creator. Affinities for a fixed user sum to 1.0.
type UserCreatorAffinity struct {
	UserID    string  `json:"user_id"`
	CreatorID string  `json:"creator_id"`
	Affinity  float64 `json:"affinity"`
}

// ItemFeatures holds the scoring features derived for one catalog ping.
type ItemFeatures struct {
	PingID string `json:"ping_id"`

	// GlobalPopNorm is the min-max normalized global engagement in [0,1].
	// Defined as 0 for every item when all engagement values are equal.
	GlobalPopNorm float64 `json:"global_pop_norm"`

	// Freshness is 1/(1+age_days), in (0,1], strictly decreasing with age.
	Freshness float64 `json:"freshness"`

	// Catalog pass-through for scoring and explanation.
	Category    string `json:"category"`
	MainHashtag string `json:"main_hashtag"`
	CreatorID   string `json:"creator_id"`
}

// Recommendation is one ranked entry of a user's recommendation list.
type Recommendation struct {
	PingID      string  `json:"ping_id"`
	Score       float64 `json:"score"`
	Category    string  `json:"category"`
	MainHashtag string  `json:"main_hashtag"`
	CreatorID   string  `json:"creator_id"`

	// Reason is a human-readable justification, e.g.
	// "prefers this category; recent" or the fallback "popular/new".
	Reason string `json:"reason"`
}

// WatchRatioStats describes the distribution of watch-time ratios over
// view events.
type WatchRatioStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std"`
	Min    float64 `json:"min"`
	P25    float64 `json:"p25"`
	P50    float64 `json:"p50"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
}

// TopPing is one row of the top-pings report: a global aggregate joined
// with its catalog metadata. Catalog fields are empty for pings that were
// interacted with but never cataloged.
type TopPing struct {
	PingGlobalAggregate

	CreatorID   string `json:"creator_id"`
	MainHashtag string `json:"main_hashtag"`
	Category    string `json:"category"`
}
