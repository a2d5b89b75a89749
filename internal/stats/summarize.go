package stats

import (
	"errors"
	"fmt"
	"math"
)

// Observation is a single input row: two categorical labels and one
// numeric measurement.
type Observation struct {
	X      string
	Series string
	Value  float64
}

// Group is the summary of all observations sharing an (X, Series) pair.
// HalfWidth is the symmetric 95% interval margin around Mean.
// Degenerate marks single-observation groups, whose spread statistics
// are reported as zero rather than undefined.
type Group struct {
	X          string
	Series     string
	N          int
	Mean       float64
	StdDev     float64
	StdErr     float64
	HalfWidth  float64
	Degenerate bool
}

// Errors returned by Summarize.
var (
	ErrNoObservations = errors.New("no observations to summarize")
	ErrBadValue       = errors.New("non-finite measurement value")
)

type groupKey struct {
	x      string
	series string
}

// Summarize aggregates observations into one Group per distinct
// (X, Series) pair, preserving first-seen order.
//
// Per group: sample mean, sample standard deviation (n-1 denominator),
// standard error = sd/sqrt(n), and half-width = 1.96 * standard error.
// A group with a single observation gets zero spread and Degenerate=true.
//
// Input is validated up front: an empty input and NaN/Inf measurements
// are errors, so a bad value never propagates silently into the output.
func Summarize(observations []Observation) ([]Group, error) {
	if len(observations) == 0 {
		return nil, ErrNoObservations
	}

	for i, obs := range observations {
		if math.IsNaN(obs.Value) || math.IsInf(obs.Value, 0) {
			return nil, fmt.Errorf("observation %d (%s, %s): %w", i, obs.X, obs.Series, ErrBadValue)
		}
	}

	accums := make(map[groupKey]*Accumulator)
	keyOrder := []groupKey{}

	for _, obs := range observations {
		key := groupKey{x: obs.X, series: obs.Series}
		acc, exists := accums[key]
		if !exists {
			acc = &Accumulator{}
			accums[key] = acc
			keyOrder = append(keyOrder, key)
		}
		acc.Add(obs.Value)
	}

	groups := make([]Group, 0, len(keyOrder))
	for _, key := range keyOrder {
		acc := accums[key]
		n := int(acc.Count)
		sd := acc.StdDev()

		groups = append(groups, Group{
			X:          key.x,
			Series:     key.series,
			N:          n,
			Mean:       acc.Mean(),
			StdDev:     sd,
			StdErr:     StdErr(sd, n),
			HalfWidth:  HalfWidth95(sd, n),
			Degenerate: n < 2,
		})
	}

	return groups, nil
}

// SeriesNames returns the distinct series labels in first-seen order.
func SeriesNames(groups []Group) []string {
	seen := make(map[string]bool)
	var names []string
	for _, g := range groups {
		if !seen[g.Series] {
			seen[g.Series] = true
			names = append(names, g.Series)
		}
	}
	return names
}

// XLevels returns the distinct x labels in first-seen order.
func XLevels(groups []Group) []string {
	seen := make(map[string]bool)
	var levels []string
	for _, g := range groups {
		if !seen[g.X] {
			seen[g.X] = true
			levels = append(levels, g.X)
		}
	}
	return levels
}
