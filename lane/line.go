/*
DESCRIPTION
  line.go provides the Line type, which holds the pixel history and fitted
  polynomial state of a single lane boundary across frames.

AUTHORS
  AusOcean developers

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean)

  It is free software: you can redistribute it and/or modify them
  under the terms of the GNU General Public License as published by the
  Free Software Foundation, either version 3 of the License, or (at your
  option) any later version.

  It is distributed in the hope that it will be useful, but WITHOUT
  ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
  FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License
  for more details.

  You should have received a copy of the GNU General Public License
  in gpl.txt.  If not, see http://www.gnu.org/licenses.
*/

package lane

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ReferenceRow is the default row at which fits are compared and evaluated;
// the bottom row of a 720 row frame, nearest the vehicle.
const ReferenceRow = 719

// Line holds the state of one lane boundary. The zero value is not usable;
// create Lines with NewLine.
type Line struct {
	depth    int       // Number of frames of samples to retain.
	recent   []float64 // x samples of the retained frames, oldest first.
	counts   []int     // Number of x samples contributed by each retained frame.
	avgX     float64   // Mean of recent.
	current  Poly      // Fit of the most recent samples.
	smoothed Poly      // Running average of current over the retained depth.
	xs, ys   []float64 // Most recent samples.
}

// NewLine returns a new Line retaining depth frames of history, initialised
// with the given samples.
func NewLine(depth int, xs, ys []float64) (*Line, error) {
	if depth < 1 {
		return nil, fmt.Errorf("invalid history depth: %d", depth)
	}
	l := &Line{depth: depth}
	err := l.update(xs, ys, true)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Update adds a new frame of samples to the line, refits and smooths.
// At least 3 samples are required; on error the line is left unchanged.
func (l *Line) Update(xs, ys []float64) error {
	return l.update(xs, ys, false)
}

func (l *Line) update(xs, ys []float64, first bool) error {
	p, err := fit(xs, ys)
	if err != nil {
		return fmt.Errorf("could not fit line: %w", err)
	}

	l.xs, l.ys = xs, ys
	l.recent, l.counts = slide(l.recent, l.counts, xs, l.depth)
	l.avgX = stat.Mean(l.recent, nil)
	l.current = p
	if first {
		l.smoothed = p
	} else {
		l.smoothed = smooth(l.smoothed, p, l.depth)
	}
	return nil
}

// slide appends a frame of samples to the history window, evicting the
// oldest frame once more than depth frames are held.
func slide(recent []float64, counts []int, xs []float64, depth int) ([]float64, []int) {
	recent = append(recent, xs...)
	counts = append(counts, len(xs))
	if len(counts) > depth {
		n := counts[0]
		counts = counts[1:]
		recent = recent[n:]
	}
	return recent, counts
}

// smooth folds cur into the running average prev with weight 1/depth.
func smooth(prev, cur Poly, depth int) Poly {
	var s Poly
	n := float64(depth)
	for i := range s {
		s[i] = (prev[i]*(n-1) + cur[i]) / n
	}
	return s
}

// Current returns the fit of the most recent samples.
func (l *Line) Current() Poly { return l.current }

// Smoothed returns the running average fit.
func (l *Line) Smoothed() Poly { return l.smoothed }

// AverageX returns the mean x over the retained history.
func (l *Line) AverageX() float64 { return l.avgX }

// Samples returns a copy of the most recent samples.
func (l *Line) Samples() Samples {
	return Samples{X: append([]float64(nil), l.xs...), Y: append([]float64(nil), l.ys...)}
}

// Distance returns the absolute separation of l and other at row using
// either the current or smoothed fits.
func (l *Line) Distance(other *Line, row float64, current bool) float64 {
	a, b := l.smoothed, other.smoothed
	if current {
		a, b = l.current, other.current
	}
	return math.Abs(a.Eval(row) - b.Eval(row))
}

// errThreshold is returned by Parallel when given unusable thresholds.
var errThreshold = errors.New("parallel thresholds must be positive")

// Parallel reports whether the current fits of l and other have curvature
// and slope terms within t[0] and t[1] of each other respectively.
// Thresholds that are not positive can never be satisfied, and are
// reported as an error.
func (l *Line) Parallel(other *Line, t [2]float64) (bool, error) {
	if t[0] <= 0 || t[1] <= 0 {
		return false, errThreshold
	}
	d0 := math.Abs(l.current[0] - other.current[0])
	d1 := math.Abs(l.current[1] - other.current[1])
	return d0 < t[0] && d1 < t[1], nil
}
