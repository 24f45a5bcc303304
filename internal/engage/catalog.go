// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

package engage

import (
	"github.com/tomtom215/pingtop/internal/models"
)

// Catalog provides indexed access to the ping catalog snapshot.
type Catalog struct {
	pings []models.Ping
	byID  map[string]models.Ping
}

// NewCatalog builds a catalog index from the ping table. Later rows win
// on duplicate ping IDs.
func NewCatalog(pings []models.Ping) *Catalog {
	byID := make(map[string]models.Ping, len(pings))
	for _, p := range pings {
		byID[p.PingID] = p
	}
	return &Catalog{pings: pings, byID: byID}
}

// Pings returns the catalog rows in input order.
func (c *Catalog) Pings() []models.Ping {
	return c.pings
}

// Len returns the number of cataloged pings.
func (c *Catalog) Len() int {
	return len(c.byID)
}

// Get returns the catalog entry for a ping ID.
func (c *Catalog) Get(pingID string) (models.Ping, bool) {
	p, ok := c.byID[pingID]
	return p, ok
}

// DurationFor returns the resolved duration for a ping. Pings absent from
// the catalog fall back to DefaultDurationSec so their events still score.
func (c *Catalog) DurationFor(pingID string) float64 {
	if p, ok := c.byID[pingID]; ok && p.DurationSec > 0 {
		return p.DurationSec
	}
	return DefaultDurationSec
}
