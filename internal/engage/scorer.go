// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

package engage

import (
	"github.com/tomtom215/pingtop/internal/models"
)

// DefaultDurationSec is the duration assumed for pings with no catalog
// entry, matching the ingest-side fallback.
const DefaultDurationSec = 30.0

// ScorerConfig contains the per-event-type weights.
type ScorerConfig struct {
	// ViewWeight is multiplied by the watch-time ratio.
	ViewWeight float64 `json:"view_weight"`

	// Fixed weights for the remaining recognized event types.
	LikeWeight       float64 `json:"like_weight"`
	CommentWeight    float64 `json:"comment_weight"`
	ShareWeight      float64 `json:"share_weight"`
	FollowWeight     float64 `json:"follow_weight"`
	ImpressionWeight float64 `json:"impression_weight"`
}

// DefaultScorerConfig returns the reference event weights.
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		ViewWeight:       1.0,
		LikeWeight:       2.0,
		CommentWeight:    3.0,
		ShareWeight:      4.0,
		FollowWeight:     2.0,
		ImpressionWeight: 0.1,
	}
}

// Scorer assigns a non-negative engagement score to interaction events.
// It is a pure rule table over the closed EventType enumeration; unknown
// event types are silently neutral (score zero).
type Scorer struct {
	cfg ScorerConfig
}

// NewScorer creates a scorer with the given weights.
func NewScorer(cfg ScorerConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score computes the engagement score for one event given the resolved
// duration of its ping.
//
// For view events the score is ViewWeight * watch_time_sec / duration_sec.
// The ratio is deliberately not capped at 1.0: the reference behavior lets
// replays score above the view weight, and capping would silently diverge
// from it. A non-positive duration yields a zero ratio.
func (s *Scorer) Score(ev models.InteractionEvent, durationSec float64) float64 {
	switch ev.Type {
	case models.EventView:
		return s.cfg.ViewWeight * WatchRatio(ev.WatchTimeSec, durationSec)
	case models.EventLike:
		return s.cfg.LikeWeight
	case models.EventComment:
		return s.cfg.CommentWeight
	case models.EventShare:
		return s.cfg.ShareWeight
	case models.EventFollowCreator:
		return s.cfg.FollowWeight
	case models.EventImpression:
		return s.cfg.ImpressionWeight
	default:
		return 0.0
	}
}

// WatchRatio returns watch_time_sec / duration_sec, with missing watch
// time treated as 0 and non-positive durations yielding 0.
func WatchRatio(watchTimeSec, durationSec float64) float64 {
	if watchTimeSec <= 0 || durationSec <= 0 {
		return 0.0
	}
	return watchTimeSec / durationSec
}

// ScoredEvent pairs an interaction event with its computed score.
type ScoredEvent struct {
	models.InteractionEvent

	// Score is the non-negative engagement contribution of this event.
	Score float64
}

// ScoreAll scores every event against the catalog's durations. Events
// referencing pings absent from the catalog use DefaultDurationSec.
func (s *Scorer) ScoreAll(events []models.InteractionEvent, catalog *Catalog) []ScoredEvent {
	scored := make([]ScoredEvent, len(events))
	for i, ev := range events {
		scored[i] = ScoredEvent{
			InteractionEvent: ev,
			Score:            s.Score(ev, catalog.DurationFor(ev.PingID)),
		}
	}
	return scored
}
