// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

package recommend

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tomtom215/pingtop/internal/engage"
	"github.com/tomtom215/pingtop/internal/models"
)

// Ranker produces ranked, explained recommendation lists from one
// computed snapshot of item features and user affinities.
// It is safe for concurrent use: all state is immutable after construction.
type Ranker struct {
	cfg      Config
	features []models.ItemFeatures
	affin    *engage.Affinities
	seen     map[string]map[string]struct{}
	logger   zerolog.Logger
}

// NewRanker creates a ranker over a snapshot.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRanker(cfg Config, features []models.ItemFeatures, affin *engage.Affinities, seen map[string]map[string]struct{}, logger zerolog.Logger) (*Ranker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Ranker{
		cfg:      cfg,
		features: features,
		affin:    affin,
		seen:     seen,
		logger:   logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Recommend returns the top-K recommendations for a user.
//
// topK <= 0 uses the configured default. When fewer than topK items
// remain after excluding seen ones, all remaining items are returned.
// A user absent from all tables gets a cold-start ranking driven by
// popularity and freshness alone.
func (r *Ranker) Recommend(userID string, topK int) []models.Recommendation {
	if topK <= 0 {
		topK = r.cfg.TopK
	}

	seen := r.seen[userID]
	w := r.cfg.Weights

	recs := make([]models.Recommendation, 0, len(r.features))
	for _, f := range r.features {
		if _, ok := seen[f.PingID]; ok {
			continue
		}

		catAff := r.affin.Category(userID, f.Category)
		creAff := r.affin.Creator(userID, f.CreatorID)
		score := w.Alpha*f.GlobalPopNorm + w.Beta*catAff + w.Gamma*creAff + w.Delta*f.Freshness

		recs = append(recs, models.Recommendation{
			PingID:      f.PingID,
			Score:       score,
			Category:    f.Category,
			MainHashtag: f.MainHashtag,
			CreatorID:   f.CreatorID,
			Reason:      buildReason(catAff, creAff, f.GlobalPopNorm, f.Freshness),
		})
	}

	// Descending score; ping ID ascending keeps ties deterministic.
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].PingID < recs[j].PingID
	})

	if len(recs) > topK {
		recs = recs[:topK]
	}

	r.logger.Debug().
		Str("user_id", userID).
		Int("returned", len(recs)).
		Msg("ranked recommendations")

	return recs
}
