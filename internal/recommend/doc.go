// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

// Package recommend implements the heuristic recommendation ranker.
//
// # Scoring
//
// Every catalog item is scored with a weighted linear blend:
//
//	score = alpha*global_pop_norm + beta*category_affinity +
//	        gamma*creator_affinity + delta*freshness
//
// with default weights (0.5, 0.25, 0.15, 0.10). Items the user has
// already interacted with (any event type) are excluded, the remainder is
// sorted descending by score with ping ID ascending as the tie-break, and
// the top K items are returned with a human-readable reason each.
//
// # Cold Start
//
// A user absent from all tables still gets a ranking: affinities default
// to 0, so the score reduces to the popularity and freshness terms.
//
// # Design Principles
//
//   - Deterministic: fixed tie-break keys make repeated runs byte-identical
//   - Pure: ranking one user never depends on another user's ranking,
//     which also makes per-user ranking embarrassingly parallel
package recommend
