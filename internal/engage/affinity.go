// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

package engage

import (
	"sort"

	"github.com/tomtom215/pingtop/internal/models"
)

// Affinities holds per-user category and creator preference distributions.
//
// For each user the affinities are pure event-count fractions over that
// user's catalog-matched events, so they sum to 1.0 per dimension. Users
// with no catalog-matched events are absent; lookups return 0.
type Affinities struct {
	categories map[string]map[string]float64 // user -> category -> fraction
	creators   map[string]map[string]float64 // user -> creator -> fraction
}

// BuildAffinities derives taste affinities from the raw event history.
//
// Events whose ping has no catalog entry are excluded from both numerator
// and denominator: their category and creator are unknown.
func BuildAffinities(events []models.InteractionEvent, catalog *Catalog) *Affinities {
	catCounts := make(map[string]map[string]int)
	creCounts := make(map[string]map[string]int)
	totals := make(map[string]int)

	for _, ev := range events {
		ping, ok := catalog.Get(ev.PingID)
		if !ok {
			continue
		}

		if _, ok := catCounts[ev.UserID]; !ok {
			catCounts[ev.UserID] = make(map[string]int)
			creCounts[ev.UserID] = make(map[string]int)
		}
		catCounts[ev.UserID][ping.Category]++
		creCounts[ev.UserID][ping.CreatorID]++
		totals[ev.UserID]++
	}

	a := &Affinities{
		categories: make(map[string]map[string]float64, len(totals)),
		creators:   make(map[string]map[string]float64, len(totals)),
	}

	for userID, total := range totals {
		a.categories[userID] = fractions(catCounts[userID], total)
		a.creators[userID] = fractions(creCounts[userID], total)
	}

	return a
}

func fractions(counts map[string]int, total int) map[string]float64 {
	out := make(map[string]float64, len(counts))
	for k, n := range counts {
		out[k] = float64(n) / float64(total)
	}
	return out
}

// Category returns the user's affinity for a category, 0 when unobserved.
func (a *Affinities) Category(userID, category string) float64 {
	return a.categories[userID][category]
}

// Creator returns the user's affinity for a creator, 0 when unobserved.
func (a *Affinities) Creator(userID, creatorID string) float64 {
	return a.creators[userID][creatorID]
}

// HasUser reports whether the user has any catalog-matched events.
func (a *Affinities) HasUser(userID string) bool {
	_, ok := a.categories[userID]
	return ok
}

// CategoryRows flattens the category affinities to table rows, sorted by
// user ID then category for deterministic output.
func (a *Affinities) CategoryRows() []models.UserCategoryAffinity {
	var rows []models.UserCategoryAffinity
	for userID, cats := range a.categories {
		for cat, aff := range cats {
			rows = append(rows, models.UserCategoryAffinity{
				UserID:   userID,
				Category: cat,
				Affinity: aff,
			})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].UserID != rows[j].UserID {
			return rows[i].UserID < rows[j].UserID
		}
		return rows[i].Category < rows[j].Category
	})

	return rows
}

// CreatorRows flattens the creator affinities to table rows, sorted by
// user ID then creator ID for deterministic output.
func (a *Affinities) CreatorRows() []models.UserCreatorAffinity {
	var rows []models.UserCreatorAffinity
	for userID, cres := range a.creators {
		for cre, aff := range cres {
			rows = append(rows, models.UserCreatorAffinity{
				UserID:    userID,
				CreatorID: cre,
				Affinity:  aff,
			})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].UserID != rows[j].UserID {
			return rows[i].UserID < rows[j].UserID
		}
		return rows[i].CreatorID < rows[j].CreatorID
	})

	return rows
}
