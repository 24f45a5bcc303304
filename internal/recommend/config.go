// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

package recommend

import "fmt"

// Weights defines the relative contribution of each scoring factor.
// They conventionally sum to 1.0 but are not required to.
type Weights struct {
	// Alpha weights normalized global popularity.
	Alpha float64 `json:"alpha"`

	// Beta weights the user's category affinity.
	Beta float64 `json:"beta"`

	// Gamma weights the user's creator affinity.
	Gamma float64 `json:"gamma"`

	// Delta weights item freshness.
	Delta float64 `json:"delta"`
}

// DefaultWeights returns the reference factor weights.
func DefaultWeights() Weights {
	return Weights{
		Alpha: 0.50,
		Beta:  0.25,
		Gamma: 0.15,
		Delta: 0.10,
	}
}

// Validate checks the weights for sanity.
func (w Weights) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"alpha", w.Alpha},
		{"beta", w.Beta},
		{"gamma", w.Gamma},
		{"delta", w.Delta},
	} {
		if f.value < 0 {
			return fmt.Errorf("weight %s must be non-negative, got %f", f.name, f.value)
		}
	}
	if w.Alpha+w.Beta+w.Gamma+w.Delta == 0 {
		return fmt.Errorf("at least one weight must be positive")
	}
	return nil
}

// Config contains all configuration for the ranker.
type Config struct {
	// Weights are the linear blend factors.
	Weights Weights `json:"weights"`

	// TopK is the default number of recommendations per user.
	TopK int `json:"top_k"`
}

// DefaultConfig returns the default ranker configuration.
func DefaultConfig() Config {
	return Config{
		Weights: DefaultWeights(),
		TopK:    10,
	}
}

// Validate checks the configuration for sanity.
func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	return nil
}
