// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

// Package metrics provides Prometheus instrumentation for the pipeline:
// event scoring volume, data-quality counters and stage durations.
// Exposed at /metrics when the results API is enabled.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsScored counts scored events by event type.
	EventsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pingtop_events_scored_total",
			Help: "Total number of interaction events scored, by event type",
		},
		[]string{"event_type"},
	)

	// UnmatchedPingRefs counts events referencing pings absent from the
	// catalog. Such events still aggregate but carry no category/creator.
	UnmatchedPingRefs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pingtop_unmatched_ping_refs_total",
			Help: "Total number of events whose ping_id has no catalog entry",
		},
	)

	// StageDuration tracks wall time per pipeline stage.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pingtop_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// RecommendationsProduced counts recommendation rows per run.
	RecommendationsProduced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pingtop_recommendations_produced_total",
			Help: "Total number of recommendation rows produced",
		},
	)

	// PipelineRuns counts completed pipeline executions by outcome.
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pingtop_pipeline_runs_total",
			Help: "Total number of pipeline executions, by outcome",
		},
		[]string{"outcome"}, // "success", "error"
	)
)

// ObserveStage records the duration of a pipeline stage.
func ObserveStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
