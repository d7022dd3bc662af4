/*
DESCRIPTION
  policy.go provides the acceptance policy deciding whether a pair of
  candidate lane pixel sets is geometrically plausible as a lane.

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
)

// Samples holds lane pixel coordinates located in a birds-eye mask.
type Samples struct {
	X, Y []float64
}

// Len returns the number of samples.
func (s Samples) Len() int { return len(s.X) }

// Policy decides whether candidate left and right samples form a lane. The
// two fits must be parallel within Parallel, and their separation at Row
// must fall within [MinSeparation, MaxSeparation].
type Policy struct {
	Parallel      [2]float64 `yaml:"parallel"`       // Curvature and slope term tolerances.
	MinSeparation float64    `yaml:"min_separation"` // Pixels.
	MaxSeparation float64    `yaml:"max_separation"` // Pixels.
	Row           float64    `yaml:"row"`            // Row at which separation is measured.
}

// Validate checks that the policy can accept anything at all.
func (p Policy) Validate() error {
	if p.Parallel[0] <= 0 || p.Parallel[1] <= 0 {
		return fmt.Errorf("invalid parallel thresholds %v: %w", p.Parallel, errThreshold)
	}
	if p.MinSeparation < 0 || p.MaxSeparation <= p.MinSeparation {
		return fmt.Errorf("invalid separation band [%v, %v]", p.MinSeparation, p.MaxSeparation)
	}
	if p.Row < 0 {
		return errors.New("reference row must not be negative")
	}
	return nil
}

// Acceptable reports whether left and right are plausible as the two
// boundaries of a lane. Candidates with fewer than 3 samples are always
// rejected, as are candidates that cannot be fitted.
func (p Policy) Acceptable(left, right Samples) bool {
	if left.Len() < minPoints || right.Len() < minPoints {
		return false
	}

	// Candidate lines live only for the duration of this check.
	l, err := NewLine(1, left.X, left.Y)
	if err != nil {
		return false
	}
	r, err := NewLine(1, right.X, right.Y)
	if err != nil {
		return false
	}

	parallel, err := l.Parallel(r, p.Parallel)
	if err != nil || !parallel {
		return false
	}
	d := l.Distance(r, p.Row, true)
	return d >= p.MinSeparation && d <= p.MaxSeparation
}
