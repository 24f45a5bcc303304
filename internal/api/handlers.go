// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// TopPingResponse is one row of the global ranking with catalog
// metadata joined in.
type TopPingResponse struct {
	PingID           string  `json:"ping_id"`
	GlobalEngagement float64 `json:"global_engagement"`
	UsersInteracted  int     `json:"users_interacted"`
	CreatorID        string  `json:"creator_id,omitempty"`
	MainHashtag      string  `json:"main_hashtag,omitempty"`
	Category         string  `json:"category,omitempty"`
}

// RecommendationResponse is one ranked recommendation for a user.
type RecommendationResponse struct {
	Rank        int     `json:"rank"`
	PingID      string  `json:"ping_id"`
	Score       float64 `json:"score"`
	Category    string  `json:"category,omitempty"`
	MainHashtag string  `json:"main_hashtag,omitempty"`
	CreatorID   string  `json:"creator_id,omitempty"`
	Reason      string  `json:"reason"`
}

// CohortRowResponse is one cohort aggregate row.
type CohortRowResponse struct {
	UserGroup string  `json:"user_group"`
	Value     float64 `json:"value"`
	Count     int     `json:"count"`
}

// CohortsResponse groups both cohort breakdowns.
type CohortsResponse struct {
	AvgWatchRatio []CohortRowResponse `json:"avg_watch_time_ratio"`
	AvgPings      []CohortRowResponse `json:"avg_pings"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleTopPings returns the global ranking. An optional limit query
// parameter caps the row count.
func (s *Server) handleTopPings(w http.ResponseWriter, r *http.Request) {
	rows := s.res.TopPings
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if limit < len(rows) {
			rows = rows[:limit]
		}
	}

	out := make([]TopPingResponse, 0, len(rows))
	for _, tp := range rows {
		out = append(out, TopPingResponse{
			PingID:           tp.PingID,
			GlobalEngagement: tp.GlobalEngagement,
			UsersInteracted:  tp.UsersInteracted,
			CreatorID:        tp.CreatorID,
			MainHashtag:      tp.MainHashtag,
			Category:         tp.Category,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleRecommendations returns the ranked list computed for one user.
// Users absent from the run's user table are 404s.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	recs, ok := s.res.Recommendations[userID]
	if !ok {
		writeError(w, http.StatusNotFound, "no recommendations for user "+userID)
		return
	}

	out := make([]RecommendationResponse, 0, len(recs))
	for i, rec := range recs {
		out = append(out, RecommendationResponse{
			Rank:        i + 1,
			PingID:      rec.PingID,
			Score:       rec.Score,
			Category:    rec.Category,
			MainHashtag: rec.MainHashtag,
			CreatorID:   rec.CreatorID,
			Reason:      rec.Reason,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCohorts(w http.ResponseWriter, _ *http.Request) {
	resp := CohortsResponse{
		AvgWatchRatio: make([]CohortRowResponse, 0, len(s.res.Cohorts.Watch)),
		AvgPings:      make([]CohortRowResponse, 0, len(s.res.Cohorts.Items)),
	}
	for _, row := range s.res.Cohorts.Watch {
		resp.AvgWatchRatio = append(resp.AvgWatchRatio, CohortRowResponse{
			UserGroup: cohortGroup(row.IsNew),
			Value:     row.AvgWatchRatio,
			Count:     row.ViewCount,
		})
	}
	for _, row := range s.res.Cohorts.Items {
		resp.AvgPings = append(resp.AvgPings, CohortRowResponse{
			UserGroup: cohortGroup(row.IsNew),
			Value:     row.AvgItems,
			Count:     row.UserCount,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func cohortGroup(isNew bool) string {
	if isNew {
		return "new"
	}
	return "existing"
}
