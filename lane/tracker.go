/*
DESCRIPTION
  tracker.go provides the Tracker, which maintains the left and right lane
  boundaries across a stream of frames. Each frame, pixels are located along
  the previous fits, or by histogram search where that fails, and accepted
  only if they pass the acceptance policy. Accepted samples are smoothed
  into the tracked lines, from which curvature and vehicle offset are
  derived.

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

// Package lane provides temporal tracking of the two lane boundaries seen
// by a road facing camera, and estimation of road curvature and vehicle
// offset from them.
package lane

import (
	"errors"
	"fmt"
	"image"

	"github.com/ausocean/utils/logging"
)

// Preprocessor turns a camera frame into a birds-eye binary mask in which
// non-zero pixels are candidate lane pixels.
type Preprocessor interface {
	Preprocess(frame image.Image) (*image.Gray, error)
}

// Searcher locates lane pixels in a birds-eye mask. Searches that find
// nothing return empty Samples.
type Searcher interface {
	// History searches along the trajectory of p using the given number of
	// horizontal segments.
	History(mask *image.Gray, p Poly, segments int) Samples

	// Histogram searches columns [cols[0], cols[1]) using histogram peaks,
	// smoothed over window columns, in each of the segments.
	Histogram(mask *image.Gray, segments int, cols [2]int, window int) Samples

	// RemoveOutliers filters statistical outliers from s.
	RemoveOutliers(s Samples) Samples
}

// Renderer draws the lane estimate onto the original frame.
type Renderer interface {
	Render(frame image.Image, e Estimate) (image.Image, error)
}

// Config holds the tunable parameters of a Tracker.
type Config struct {
	HistoryDepth    int     `yaml:"history_depth"`      // Frames of history kept per line.
	Segments        int     `yaml:"segments"`           // Horizontal segments used by searches.
	HistogramWindow int     `yaml:"histogram_window"`   // Histogram smoothing width in columns.
	EdgeOffset      int     `yaml:"edge_offset"`        // Columns ignored at each frame edge by histogram search.
	MetresPerPixelX float64 `yaml:"metres_per_pixel_x"` // Birds-eye horizontal scale.
	MetresPerPixelY float64 `yaml:"metres_per_pixel_y"` // Birds-eye vertical scale.
	Policy          Policy  `yaml:"policy"`
}

// DefaultConfig returns the configuration tuned for 1280x720 dashcam
// footage warped to a birds-eye view.
func DefaultConfig() Config {
	return Config{
		HistoryDepth:    5,
		Segments:        10,
		HistogramWindow: 7,
		EdgeOffset:      0,
		MetresPerPixelX: 3.7 / 700,
		MetresPerPixelY: 30.0 / 720,
		Policy: Policy{
			Parallel:      [2]float64{0.0005, 0.55},
			MinSeparation: 350,
			MaxSeparation: 1000,
			Row:           ReferenceRow,
		},
	}
}

// Validate checks c for values the Tracker cannot work with.
func (c Config) Validate() error {
	switch {
	case c.HistoryDepth < 1:
		return fmt.Errorf("invalid history depth: %d", c.HistoryDepth)
	case c.Segments < 1:
		return fmt.Errorf("invalid segment count: %d", c.Segments)
	case c.HistogramWindow < 1:
		return fmt.Errorf("invalid histogram window: %d", c.HistogramWindow)
	case c.EdgeOffset < 0:
		return fmt.Errorf("invalid edge offset: %d", c.EdgeOffset)
	case c.MetresPerPixelX <= 0 || c.MetresPerPixelY <= 0:
		return fmt.Errorf("invalid scale: %v, %v m/px", c.MetresPerPixelX, c.MetresPerPixelY)
	}
	err := c.Policy.Validate()
	if err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}
	return nil
}

// Estimate is a snapshot of the lane state after a frame.
type Estimate struct {
	Frame           int  // Index of the frame, from 0.
	LeftFound       bool // Left samples were accepted this frame.
	RightFound      bool // Right samples were accepted this frame.
	Valid           bool // Both lines exist, so the fields below are set.
	Left, Right     Poly // Smoothed fits.
	Center          Poly
	Curvature       float64 // Radius of curvature at the reference row in pixels.
	CurvatureMetres float64 // Radius of curvature at the reference row in metres.
	Offset          float64 // Vehicle offset from lane centre in metres; negative is left.
	Distance        float64 // Separation of the smoothed fits at the reference row.
}

// Tracker tracks the two lane boundaries across frames. A Tracker is not
// safe for concurrent use; frames must be processed one at a time.
type Tracker struct {
	cfg    Config
	pre    Preprocessor
	search Searcher
	render Renderer
	log    logging.Logger

	frame       int
	left, right *Line
	est         Estimate
	distances   []float64
}

// NewTracker returns a new Tracker. The Renderer may be nil, in which case
// frames are returned without an overlay.
func NewTracker(cfg Config, pre Preprocessor, s Searcher, r Renderer, log logging.Logger) (*Tracker, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if pre == nil || s == nil {
		return nil, errors.New("preprocessor and searcher are required")
	}
	return &Tracker{cfg: cfg, pre: pre, search: s, render: r, log: log}, nil
}

// Process processes a single frame, returning it with the lane overlay
// drawn when both lines are known. A rendering error is returned with the
// unannotated frame so that the caller may carry on.
func (t *Tracker) Process(frame image.Image) (image.Image, error) {
	mask, err := t.pre.Preprocess(frame)
	if err != nil {
		return nil, fmt.Errorf("could not preprocess frame %d: %w", t.frame, err)
	}

	e := t.Detect(mask)
	if t.render == nil || !e.Valid {
		return frame, nil
	}

	out, err := t.render.Render(frame, e)
	if err != nil {
		return frame, fmt.Errorf("could not render frame %d: %w", e.Frame, err)
	}
	return out, nil
}

// Detect updates the lines from a birds-eye mask and returns the resulting
// estimate.
func (t *Tracker) Detect(mask *image.Gray) Estimate {
	var (
		left, right Samples
		lf, rf      bool
	)

	if t.left != nil && t.right != nil {
		left = t.search.History(mask, t.left.smoothed, t.cfg.Segments)
		right = t.search.History(mask, t.right.smoothed, t.cfg.Segments)
		lf, rf = t.check(left, right)
		t.log.Debug("history search complete", "frame", t.frame, "left", lf, "right", rf)
	}

	if !lf || !rf {
		b := mask.Bounds()
		mid := b.Min.X + b.Dx()/2
		if !lf {
			left = t.histogram(mask, b.Min.X+t.cfg.EdgeOffset, mid)
		}
		if !rf {
			right = t.histogram(mask, mid, b.Max.X-t.cfg.EdgeOffset)
		}
		l, r := t.check(left, right)
		lf, rf = lf || l, rf || r
		t.log.Debug("histogram search complete", "frame", t.frame, "left", lf, "right", rf)
	}

	if lf {
		t.left, lf = t.updateLine(t.left, left, "left")
	}
	if rf {
		t.right, rf = t.updateLine(t.right, right, "right")
	}

	t.est = Estimate{Frame: t.frame, LeftFound: lf, RightFound: rf}
	if t.left != nil && t.right != nil {
		t.derive(mask.Bounds().Dx())
	}
	t.frame++
	return t.est
}

// histogram runs the histogram search over [from, to) and filters the
// outliers from the result.
func (t *Tracker) histogram(mask *image.Gray, from, to int) Samples {
	s := t.search.Histogram(mask, t.cfg.Segments, [2]int{from, to}, t.cfg.HistogramWindow)
	return t.search.RemoveOutliers(s)
}

// check applies the policy to the candidates jointly. Failing that, and if
// both lines are already tracked, each candidate is checked on its own
// against the previous samples of the opposite line.
func (t *Tracker) check(left, right Samples) (bool, bool) {
	p := t.cfg.Policy
	if p.Acceptable(left, right) {
		return true, true
	}
	if t.left == nil || t.right == nil {
		return false, false
	}
	lf := p.Acceptable(left, Samples{X: t.right.xs, Y: t.right.ys})
	rf := p.Acceptable(Samples{X: t.left.xs, Y: t.left.ys}, right)
	return lf, rf
}

// updateLine folds s into l, creating the line if this is the first
// acceptance for the side. It reports whether the samples were taken.
func (t *Tracker) updateLine(l *Line, s Samples, side string) (*Line, bool) {
	if l == nil {
		nl, err := NewLine(t.cfg.HistoryDepth, s.X, s.Y)
		if err != nil {
			t.log.Warning("could not create line", "side", side, "frame", t.frame, "error", err)
			return nil, false
		}
		t.log.Info("line acquired", "side", side, "frame", t.frame)
		return nl, true
	}

	err := l.Update(s.X, s.Y)
	if err != nil {
		t.log.Warning("could not update line", "side", side, "frame", t.frame, "error", err)
		return l, false
	}
	return l, true
}

// derive computes the centre line, curvature and offset for a frame of
// the given width.
func (t *Tracker) derive(width int) {
	row := t.cfg.Policy.Row
	mx, my := t.cfg.MetresPerPixelX, t.cfg.MetresPerPixelY

	c := Mid(t.left.smoothed, t.right.smoothed)
	d := t.left.Distance(t.right, row, false)
	t.distances = append(t.distances, d)

	t.est.Valid = true
	t.est.Left = t.left.smoothed
	t.est.Right = t.right.smoothed
	t.est.Center = c
	t.est.Curvature = c.Radius(row)
	t.est.CurvatureMetres = c.Scale(mx, my).Radius(row * my)
	t.est.Offset = (float64(width)/2 - c.Eval(row)) * mx
	t.est.Distance = d
}

// Estimate returns the estimate from the most recent frame.
func (t *Tracker) Estimate() Estimate { return t.est }

// Distances returns the separation of the smoothed fits for every frame in
// which both lines were known.
func (t *Tracker) Distances() []float64 {
	return append([]float64(nil), t.distances...)
}
