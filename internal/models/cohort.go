// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

// This file contains cohort comparison models for new-vs-existing user
// reporting.
package models

// CohortWatchStats compares average watch behavior between the new-user
// and existing-user cohorts, computed over view events only.
type CohortWatchStats struct {
	// IsNew marks the new-user cohort (signup within the cohort window
	// of the latest observed signup).
	IsNew bool `json:"is_new"`

	// AvgWatchRatio is the mean watch-time ratio across the cohort's
	// view events.
	AvgWatchRatio float64 `json:"avg_watch_time_ratio"`

	// ViewCount is the number of view events contributing to the mean.
	ViewCount int `json:"view_count"`
}

// CohortItemStats compares how many distinct pings users in each cohort
// actively engaged with (view, like, comment or share).
type CohortItemStats struct {
	IsNew bool `json:"is_new"`

	// AvgItems is the mean distinct-ping count per user, counting users
	// with zero qualifying events.
	AvgItems float64 `json:"avg_pings"`

	// UserCount is the number of users in the cohort.
	UserCount int `json:"user_count"`
}

// CohortReport bundles both cohort comparisons for one pipeline run.
type CohortReport struct {
	Watch []CohortWatchStats `json:"watch"`
	Items []CohortItemStats  `json:"items"`
}
