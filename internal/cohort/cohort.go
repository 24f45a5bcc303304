// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

// Package cohort splits engagement aggregates by a new-vs-existing user
// flag for reporting. A user is "new" when their signup falls within the
// configured window of the latest observed signup; users with unknown
// signup dates count as existing.
package cohort

import (
	"sort"
	"time"

	"github.com/tomtom215/pingtop/internal/engage"
	"github.com/tomtom215/pingtop/internal/models"
)

// DefaultWindowDays is the default new-user window.
const DefaultWindowDays = 7

// Analyzer computes new-vs-existing cohort comparisons.
type Analyzer struct {
	windowDays int
}

// NewAnalyzer creates an analyzer with the given new-user window in days.
// Non-positive values use DefaultWindowDays.
func NewAnalyzer(windowDays int) *Analyzer {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Analyzer{windowDays: windowDays}
}

// Flags returns the is-new flag per user. With no known signup dates every
// user is existing.
func (a *Analyzer) Flags(users []models.User) map[string]bool {
	var maxSignup time.Time
	for _, u := range users {
		if !u.SignupDate.IsZero() && u.SignupDate.After(maxSignup) {
			maxSignup = u.SignupDate
		}
	}

	flags := make(map[string]bool, len(users))
	if maxSignup.IsZero() {
		for _, u := range users {
			flags[u.UserID] = false
		}
		return flags
	}

	cutoff := maxSignup.AddDate(0, 0, -a.windowDays)
	for _, u := range users {
		flags[u.UserID] = !u.SignupDate.IsZero() && !u.SignupDate.Before(cutoff)
	}
	return flags
}

// Analyze produces both cohort comparison tables:
//
//   - average watch-time ratio over view events, split by cohort
//   - average distinct actively-engaged pings per user, split by cohort,
//     counting users with zero qualifying events
//
// Rows are ordered existing-then-new for stable output.
func (a *Analyzer) Analyze(events []models.InteractionEvent, users []models.User, catalog *engage.Catalog) models.CohortReport {
	flags := a.Flags(users)

	return models.CohortReport{
		Watch: a.watchStats(events, flags, catalog),
		Items: a.itemStats(events, users, flags),
	}
}

func (a *Analyzer) watchStats(events []models.InteractionEvent, flags map[string]bool, catalog *engage.Catalog) []models.CohortWatchStats {
	sums := make(map[bool]float64)
	counts := make(map[bool]int)

	for _, ev := range events {
		if ev.Type != models.EventView {
			continue
		}
		isNew := flags[ev.UserID] // events from unlisted users count as existing
		sums[isNew] += engage.WatchRatio(ev.WatchTimeSec, catalog.DurationFor(ev.PingID))
		counts[isNew]++
	}

	var out []models.CohortWatchStats
	for _, isNew := range []bool{false, true} {
		if counts[isNew] == 0 {
			continue
		}
		out = append(out, models.CohortWatchStats{
			IsNew:         isNew,
			AvgWatchRatio: sums[isNew] / float64(counts[isNew]),
			ViewCount:     counts[isNew],
		})
	}
	return out
}

func (a *Analyzer) itemStats(events []models.InteractionEvent, users []models.User, flags map[string]bool) []models.CohortItemStats {
	// Distinct actively-engaged pings per user.
	perUser := make(map[string]map[string]struct{})
	for _, ev := range events {
		if !ev.Type.IsActive() {
			continue
		}
		set, ok := perUser[ev.UserID]
		if !ok {
			set = make(map[string]struct{})
			perUser[ev.UserID] = set
		}
		set[ev.PingID] = struct{}{}
	}

	// Average over the full user table so inactive users drag the mean
	// down instead of disappearing.
	sums := make(map[bool]int)
	counts := make(map[bool]int)
	for _, u := range users {
		isNew := flags[u.UserID]
		sums[isNew] += len(perUser[u.UserID])
		counts[isNew]++
	}

	var out []models.CohortItemStats
	for _, isNew := range []bool{false, true} {
		if counts[isNew] == 0 {
			continue
		}
		out = append(out, models.CohortItemStats{
			IsNew:     isNew,
			AvgItems:  float64(sums[isNew]) / float64(counts[isNew]),
			UserCount: counts[isNew],
		})
	}

	sort.Slice(out, func(i, j int) bool { return !out[i].IsNew && out[j].IsNew })
	return out
}
