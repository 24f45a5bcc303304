// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

package engage

import (
	"math"
	"sort"

	"github.com/tomtom215/pingtop/internal/models"
)

// WatchRatioDistribution describes the watch-time-ratio distribution over
// view events. Returns the zero value when there are no view events.
func WatchRatioDistribution(events []models.InteractionEvent, catalog *Catalog) models.WatchRatioStats {
	var ratios []float64
	for _, ev := range events {
		if ev.Type != models.EventView {
			continue
		}
		ratios = append(ratios, WatchRatio(ev.WatchTimeSec, catalog.DurationFor(ev.PingID)))
	}

	if len(ratios) == 0 {
		return models.WatchRatioStats{}
	}

	sort.Float64s(ratios)

	var sum float64
	for _, r := range ratios {
		sum += r
	}
	mean := sum / float64(len(ratios))

	// Sample standard deviation; 0 for a single observation.
	var std float64
	if len(ratios) > 1 {
		var sq float64
		for _, r := range ratios {
			d := r - mean
			sq += d * d
		}
		std = math.Sqrt(sq / float64(len(ratios)-1))
	}

	return models.WatchRatioStats{
		Count:  len(ratios),
		Mean:   mean,
		StdDev: std,
		Min:    ratios[0],
		P25:    percentile(ratios, 0.25),
		P50:    percentile(ratios, 0.50),
		P75:    percentile(ratios, 0.75),
		P90:    percentile(ratios, 0.90),
		Max:    ratios[len(ratios)-1],
	}
}

// percentile returns the q-quantile of a sorted slice using linear
// interpolation between closest ranks.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
