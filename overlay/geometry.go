/*
DESCRIPTION
  geometry.go provides the overlay configuration and the pure geometry of
  the lane overlay: polygon outlines, arrow heads and annotation text.

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

// Package overlay provides rendering of lane estimates onto camera frames.
// The drawing itself requires OpenCV and is built with the withcv tag.
package overlay

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/ausocean/lanefinder/lane"
)

// Config holds overlay drawing parameters. Colours are RGB.
type Config struct {
	FrameWeight   float64  `yaml:"frame_weight"`   // Blend weight of the frame under the lane area.
	OverlayWeight float64  `yaml:"overlay_weight"` // Blend weight of the lane area.
	Step          int      `yaml:"step"`           // Rows between polyline vertices.
	LaneColour    [3]uint8 `yaml:"lane_colour"`
	CentreColour  [3]uint8 `yaml:"centre_colour"`
	LineColour    [3]uint8 `yaml:"line_colour"`
	CentreWidth   int      `yaml:"centre_width"`
	LineWidth     int      `yaml:"line_width"`
	ArrowTip      float64  `yaml:"arrow_tip"` // Arrow head length as a fraction of the final segment.
	TextScale     float64  `yaml:"text_scale"`
	TextWidth     int      `yaml:"text_width"`
}

// DefaultConfig returns the default overlay configuration.
func DefaultConfig() Config {
	return Config{
		FrameWeight:   0.3,
		OverlayWeight: 0.7,
		Step:          20,
		LaneColour:    [3]uint8{255, 128, 0},
		CentreColour:  [3]uint8{255, 75, 2},
		LineColour:    [3]uint8{255, 200, 2},
		CentreWidth:   5,
		LineWidth:     5,
		ArrowTip:      0.5,
		TextScale:     1,
		TextWidth:     2,
	}
}

// Validate checks c for unusable values.
func (c Config) Validate() error {
	switch {
	case c.FrameWeight < 0 || c.OverlayWeight < 0 || c.FrameWeight+c.OverlayWeight == 0:
		return fmt.Errorf("invalid blend weights: %v, %v", c.FrameWeight, c.OverlayWeight)
	case c.Step < 1:
		return fmt.Errorf("invalid step: %d", c.Step)
	case c.CentreWidth < 1 || c.LineWidth < 1 || c.TextWidth < 1:
		return errors.New("line widths must be positive")
	case c.ArrowTip < 0 || c.ArrowTip > 1:
		return fmt.Errorf("invalid arrow tip fraction: %v", c.ArrowTip)
	case c.TextScale <= 0:
		return fmt.Errorf("invalid text scale: %v", c.TextScale)
	}
	return nil
}

func rgba(c [3]uint8) color.RGBA {
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 255}
}

// PolyPoints returns points along p from the top row to the bottom row of
// an image of the given height, every step rows. The bottom row is always
// included.
func PolyPoints(p lane.Poly, height, step int) []image.Point {
	if height < 1 || step < 1 {
		return nil
	}
	var pts []image.Point
	for y := 0; ; y += step {
		if y > height-1 {
			y = height - 1
		}
		pts = append(pts, image.Pt(int(math.Round(p.Eval(float64(y)))), y))
		if y == height-1 {
			return pts
		}
	}
}

// LaneArea returns the outline of the area between left and right, running
// down the left line and back up the right.
func LaneArea(left, right lane.Poly, height, step int) []image.Point {
	l := PolyPoints(left, height, step)
	r := PolyPoints(right, height, step)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return append(l, r...)
}

// ArrowHead returns the ends of the two barbs of an arrow pointing from
// tail to tip. Barbs are frac of the arrow's length and 30 degrees either
// side of its shaft.
func ArrowHead(tip, tail image.Point, frac float64) (image.Point, image.Point) {
	dx, dy := float64(tail.X-tip.X), float64(tail.Y-tip.Y)
	n := frac * math.Hypot(dx, dy)
	a := math.Atan2(dy, dx)
	const spread = math.Pi / 6
	barb := func(a float64) image.Point {
		return image.Pt(tip.X+int(math.Round(n*math.Cos(a))), tip.Y+int(math.Round(n*math.Sin(a))))
	}
	return barb(a - spread), barb(a + spread)
}

// InfoText returns the curvature and position annotations for e.
func InfoText(e lane.Estimate) (string, string) {
	curv := "Curvature: straight"
	if !math.IsInf(e.CurvatureMetres, 0) && e.CurvatureMetres < 1e5 {
		curv = fmt.Sprintf("Curvature: %.0fm", e.CurvatureMetres)
	}
	side := "right"
	if e.Offset < 0 {
		side = "left"
	}
	return curv, fmt.Sprintf("%.2fm %s of center", math.Abs(e.Offset), side)
}
