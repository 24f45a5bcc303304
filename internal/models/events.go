// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

// Package models provides the data structures shared across the Pingtop
// pipeline: immutable input records and the derived analytics tables.
//
// All derived tables are recomputed from scratch on every pipeline run and
// are immutable once produced; nothing in this package mutates state.
package models

import "time"

// EventType classifies a user-ping interaction.
//
// The enumeration is closed: input strings outside the recognized set parse
// to EventUnknown, which scores zero rather than failing the pipeline.
type EventType int

const (
	// EventUnknown is any unrecognized event type. Scores zero.
	EventUnknown EventType = iota
	// EventView is a playback event; its weight scales with watch time.
	EventView
	// EventLike is an explicit like.
	EventLike
	// EventComment is a posted comment.
	EventComment
	// EventShare is a share/repost.
	EventShare
	// EventFollowCreator is a follow of the ping's creator.
	EventFollowCreator
	// EventImpression is a feed impression without interaction.
	EventImpression
)

// ParseEventType maps a raw event type string to its EventType.
// Unrecognized strings map to EventUnknown.
func ParseEventType(s string) EventType {
	switch s {
	case "view":
		return EventView
	case "like":
		return EventLike
	case "comment":
		return EventComment
	case "share":
		return EventShare
	case "follow_creator":
		return EventFollowCreator
	case "impression":
		return EventImpression
	default:
		return EventUnknown
	}
}

// String returns the canonical name for the event type.
func (t EventType) String() string {
	switch t {
	case EventView:
		return "view"
	case EventLike:
		return "like"
	case EventComment:
		return "comment"
	case EventShare:
		return "share"
	case EventFollowCreator:
		return "follow_creator"
	case EventImpression:
		return "impression"
	default:
		return "unknown"
	}
}

// IsActive reports whether the event represents deliberate engagement
// (view, like, comment or share). Impressions, follows and unknown events
// are excluded; the cohort analyzer uses this to count items a user
// actually consumed.
func (t EventType) IsActive() bool {
	switch t {
	case EventView, EventLike, EventComment, EventShare:
		return true
	default:
		return false
	}
}

// InteractionEvent is one observed user action against a ping.
//
// Timestamp semantics: a zero Timestamp means the source row had no
// event_timestamp. Aggregation ignores zero timestamps when computing
// last-interaction times.
type InteractionEvent struct {
	// UserID identifies the acting user.
	UserID string `json:"user_id"`

	// PingID identifies the ping acted upon. It may reference a ping
	// absent from the catalog; such events still aggregate.
	PingID string `json:"ping_id"`

	// Type is the parsed event classification.
	Type EventType `json:"event_type"`

	// WatchTimeSec is the watch duration for view events, >= 0.
	// Missing values default to 0 at ingest.
	WatchTimeSec float64 `json:"watch_time_sec"`

	// Timestamp is when the event occurred. Zero when unknown.
	Timestamp time.Time `json:"event_timestamp"`
}

// Ping is one catalog content item.
type Ping struct {
	// PingID is the unique content identifier.
	PingID string `json:"ping_id"`

	// CreatorID identifies the ping's creator.
	CreatorID string `json:"creator_id"`

	// MainHashtag is the primary hashtag.
	MainHashtag string `json:"main_hashtag"`

	// Category is the content category.
	Category string `json:"category"`

	// DurationSec is the content length in seconds. Ingest guarantees a
	// positive value (median fallback, 30s when no duration is known).
	DurationSec float64 `json:"duration_sec"`

	// CreatedAt is the publication time. Zero when unknown.
	CreatedAt time.Time `json:"created_at"`
}

// User is one registered user record.
type User struct {
	// UserID is the unique user identifier.
	UserID string `json:"user_id"`

	// Country is the user's country code.
	Country string `json:"country"`

	// SignupDate is when the user registered. Zero when unknown.
	SignupDate time.Time `json:"signup_date"`

	// Age is the user's age in years.
	Age int `json:"age"`
}
