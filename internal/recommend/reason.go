// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

package recommend

import "strings"

// Reason labels, joined with reasonSeparator in evaluation order.
// The order is fixed because it determines the displayed label order.
const (
	reasonCategory = "prefers this category"
	reasonCreator  = "engaged this creator"
	reasonPopular  = "globally popular"
	reasonRecent   = "recent"
	reasonFallback = "popular/new"

	reasonSeparator = "; "

	// popularThreshold marks an item as globally popular.
	popularThreshold = 0.5

	// freshThreshold marks an item as recent (age under roughly 50 days).
	freshThreshold = 0.02
)

// buildReason produces the human-readable justification for one
// recommended item from its feature/affinity tuple.
func buildReason(catAffinity, creatorAffinity, popNorm, freshness float64) string {
	var parts []string
	if catAffinity > 0 {
		parts = append(parts, reasonCategory)
	}
	if creatorAffinity > 0 {
		parts = append(parts, reasonCreator)
	}
	if popNorm > popularThreshold {
		parts = append(parts, reasonPopular)
	}
	if freshness > freshThreshold {
		parts = append(parts, reasonRecent)
	}

	if len(parts) == 0 {
		return reasonFallback
	}
	return strings.Join(parts, reasonSeparator)
}
