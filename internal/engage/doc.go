// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

// Package engage implements the engagement-scoring core of the pipeline:
// event scoring, (user,ping) and global aggregation, per-user taste
// affinities and per-item scoring features.
//
// # Design Principles
//
//   - Deterministic: same inputs produce identical outputs, including
//     slice ordering (fixed tie-break rules everywhere)
//   - Pure: every stage is a transformation of in-memory tables with no
//     shared mutable state and no clock reads
//   - Tolerant: malformed-but-present rows degrade to documented defaults
//     (unknown event types score zero, catalog-unmatched events are
//     excluded from affinity denominators); the pipeline never aborts on
//     a single bad record
//
// Note: This package has no external dependencies on other internal
// packages beyond models, keeping the algorithm kernels dependency-free.
package engage
