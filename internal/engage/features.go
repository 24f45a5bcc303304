// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

package engage

import (
	"sort"
	"time"

	"github.com/tomtom215/pingtop/internal/models"
)

// DefaultMissingAgeDays is the assumed age for pings without a known
// creation time.
const DefaultMissingAgeDays = 30

// FallbackReferenceDate is used as reference "now" when no catalog item
// has a known creation time. Fixed so runs stay reproducible.
var FallbackReferenceDate = time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC)

// ReferenceNow returns the maximum created_at observed across the catalog,
// or fallback when no item has a known creation time. Passing the
// reference explicitly (rather than reading the clock) keeps freshness
// deterministic and testable.
func ReferenceNow(catalog *Catalog, fallback time.Time) time.Time {
	var max time.Time
	for _, p := range catalog.Pings() {
		if !p.CreatedAt.IsZero() && p.CreatedAt.After(max) {
			max = p.CreatedAt
		}
	}
	if max.IsZero() {
		return fallback
	}
	return max
}

// BuildItemFeatures derives the scoring features for every catalog ping:
//
//   - GlobalPopNorm: min-max normalization of global engagement over the
//     catalog snapshot. Pings with no interactions count as 0 engagement.
//     When every value is equal (including all-zero) the normalization is
//     defined as 0.0 for every item.
//   - Freshness: 1/(1+age_days) with age in whole days relative to
//     referenceNow. Missing created_at defaults to DefaultMissingAgeDays.
//
// The result is sorted by ping ID ascending.
func BuildItemFeatures(catalog *Catalog, global []models.PingGlobalAggregate, referenceNow time.Time) []models.ItemFeatures {
	engagement := make(map[string]float64, len(global))
	for _, g := range global {
		engagement[g.PingID] = g.GlobalEngagement
	}

	pings := catalog.Pings()
	if len(pings) == 0 {
		return nil
	}

	// Min-max bounds over the catalog, with zero fill for uncataloged
	// engagement.
	minEng, maxEng := engagement[pings[0].PingID], engagement[pings[0].PingID]
	for _, p := range pings[1:] {
		e := engagement[p.PingID]
		if e < minEng {
			minEng = e
		}
		if e > maxEng {
			maxEng = e
		}
	}
	engRange := maxEng - minEng

	out := make([]models.ItemFeatures, 0, len(pings))
	for _, p := range pings {
		popNorm := 0.0
		if engRange > 0 {
			popNorm = (engagement[p.PingID] - minEng) / engRange
		}

		out = append(out, models.ItemFeatures{
			PingID:        p.PingID,
			GlobalPopNorm: popNorm,
			Freshness:     freshness(p.CreatedAt, referenceNow),
			Category:      p.Category,
			MainHashtag:   p.MainHashtag,
			CreatorID:     p.CreatorID,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].PingID < out[j].PingID
	})

	return out
}

// freshness computes 1/(1+age_days), strictly decreasing in age and
// always in (0,1] for finite non-negative ages.
func freshness(createdAt, referenceNow time.Time) float64 {
	ageDays := DefaultMissingAgeDays
	if !createdAt.IsZero() {
		ageDays = int(referenceNow.Sub(createdAt).Hours() / 24)
		if ageDays < 0 {
			ageDays = 0
		}
	}
	return 1.0 / (1.0 + float64(ageDays))
}
