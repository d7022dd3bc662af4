/*
DESCRIPTION
  diagnostics.go provides recording and plotting of per-frame lane
  estimates.

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

// Package diagnostics records lane estimates over a run and plots them.
package diagnostics

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/ausocean/lanefinder/lane"
)

// maxRadius caps plotted curvature; straight road has infinite radius.
const maxRadius = 1e5 // Metres.

const plotSize = 15 * vg.Centimeter

// Recorder collects the valid estimates of a run. The zero value is ready
// to use.
type Recorder struct {
	frames    []float64
	curvature []float64
	offset    []float64
	distance  []float64
}

// Add records e. Estimates without both lanes are ignored.
func (r *Recorder) Add(e lane.Estimate) {
	if !e.Valid {
		return
	}
	c := e.CurvatureMetres
	if math.IsInf(c, 0) || math.IsNaN(c) || c > maxRadius {
		c = maxRadius
	}
	r.frames = append(r.frames, float64(e.Frame))
	r.curvature = append(r.curvature, c)
	r.offset = append(r.offset, e.Offset)
	r.distance = append(r.distance, e.Distance)
}

// Len returns the number of recorded estimates.
func (r *Recorder) Len() int { return len(r.frames) }

// Plot writes curvature, offset, distance and combined PNG plots to dir.
func (r *Recorder) Plot(dir string) error {
	if r.Len() == 0 {
		return errors.New("no estimates recorded")
	}

	series := []struct {
		name, unit string
		y          []float64
	}{
		{"curvature", "radius (m)", r.curvature},
		{"offset", "offset (m)", r.offset},
		{"distance", "separation (px)", r.distance},
	}
	for _, s := range series {
		y := s.y
		err := plotToFile(dir, s.name, "frame", s.unit, func(p *plot.Plot) error {
			return plotutil.AddLinePoints(p, s.name, plotterXY(r.frames, y))
		})
		if err != nil {
			return fmt.Errorf("could not plot %s: %w", s.name, err)
		}
	}

	err := plotToFile(dir, "combined", "frame", "normalized", func(p *plot.Plot) error {
		return plotutil.AddLines(p,
			"curvature", plotterXY(r.frames, normalize(r.curvature)),
			"offset", plotterXY(r.frames, normalize(r.offset)),
			"distance", plotterXY(r.frames, normalize(r.distance)),
		)
	})
	if err != nil {
		return fmt.Errorf("could not plot combined: %w", err)
	}
	return nil
}

// normalize rescales s to [0,1]. Constant series map to 0.
func normalize(s []float64) []float64 {
	out := make([]float64, len(s))
	if len(s) == 0 {
		return out
	}
	lo, hi := s[0], s[0]
	for _, v := range s {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		return out
	}
	for i, v := range s {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

// plotToFile creates a plot titled name using draw and saves it to
// dir/name.png.
func plotToFile(dir, name, xTitle, yTitle string, draw func(*plot.Plot) error) error {
	p := plot.New()
	p.Title.Text = name
	p.X.Label.Text = xTitle
	p.Y.Label.Text = yTitle
	err := draw(p)
	if err != nil {
		return fmt.Errorf("could not draw plot contents: %w", err)
	}
	err = p.Save(plotSize, plotSize, filepath.Join(dir, name+".png"))
	if err != nil {
		return fmt.Errorf("could not save plot: %w", err)
	}
	return nil
}

func plotterXY(x, y []float64) plotter.XYs {
	xy := make(plotter.XYs, len(x))
	for i := range x {
		xy[i].X = x[i]
		xy[i].Y = y[i]
	}
	return xy
}
