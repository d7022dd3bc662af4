/*
DESCRIPTION
  search.go provides lane pixel location in birds-eye binary masks, either
  along a previously fitted trajectory or from column histogram peaks.

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

// Package search provides location of lane pixels in birds-eye binary
// masks, for use by a lane.Tracker.
package search

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ausocean/lanefinder/lane"
)

// Default search parameters.
const (
	defaultMargin    = 50  // Pixels either side of a window centre.
	defaultDeviation = 2.0 // Standard deviations of the band residuals.
	defaultBand      = 72  // Rows; a tenth of a 720 row frame.
)

// Searcher locates lane pixels; it implements lane.Searcher. Pixels are
// taken within Margin columns of a window centre. RemoveOutliers works on
// horizontal bands of Band rows, dropping samples more than Deviation
// standard deviations from the band's straight line trend.
type Searcher struct {
	Margin    int     `yaml:"margin"`
	Deviation float64 `yaml:"deviation"`
	Band      int     `yaml:"band"`
}

// Default returns a Searcher with the default parameters.
func Default() Searcher {
	return Searcher{Margin: defaultMargin, Deviation: defaultDeviation, Band: defaultBand}
}

// Validate checks the search parameters.
func (s Searcher) Validate() error {
	if s.Margin < 1 {
		return fmt.Errorf("invalid margin: %d", s.Margin)
	}
	if s.Deviation <= 0 {
		return fmt.Errorf("invalid deviation: %v", s.Deviation)
	}
	if s.Band < 1 {
		return fmt.Errorf("invalid outlier band: %d", s.Band)
	}
	return nil
}

// History collects the mask pixels lying within Margin of the trajectory
// of p. The mask is split into horizontal segments and each segment's
// window is centred on p evaluated at the segment's middle row.
func (s Searcher) History(mask *image.Gray, p lane.Poly, segments int) lane.Samples {
	var out lane.Samples
	b := mask.Bounds()
	for _, seg := range strips(b, segments) {
		cx := p.Eval(float64(seg.Min.Y+seg.Max.Y-1) / 2)
		if math.IsNaN(cx) || math.IsInf(cx, 0) {
			continue
		}
		x := int(math.Round(cx))
		collect(mask, image.Rect(x-s.Margin, seg.Min.Y, x+s.Margin+1, seg.Max.Y).Intersect(b), &out)
	}
	return out
}

// Histogram collects mask pixels around the histogram peak of each
// horizontal segment, considering only columns [cols[0], cols[1]). The
// per-column counts are smoothed by a moving average of window columns
// before the peak is taken. Segments without lane pixels are skipped.
func (s Searcher) Histogram(mask *image.Gray, segments int, cols [2]int, window int) lane.Samples {
	var out lane.Samples
	b := mask.Bounds()
	area := image.Rect(cols[0], b.Min.Y, cols[1], b.Max.Y).Intersect(b)
	if area.Empty() {
		return out
	}

	for _, seg := range strips(area, segments) {
		h := smooth(histogram(mask, seg), window)
		peak, best := 0, 0.0
		for i, v := range h {
			if v > best {
				peak, best = i, v
			}
		}
		if best == 0 {
			continue
		}
		x := seg.Min.X + peak
		collect(mask, image.Rect(x-s.Margin, seg.Min.Y, x+s.Margin+1, seg.Max.Y).Intersect(seg), &out)
	}
	return out
}

// RemoveOutliers removes samples lying far from the local trend of the
// marking. Samples are grouped into bands of Band rows and a line x = a + b*y
// is regressed through each band; samples whose residual is more than
// Deviation standard deviations from the mean residual are dropped. Working
// per band keeps the x extremes of a curved marking, which a single
// deviation about the mean x would clip. Bands of fewer than 3 samples are
// kept whole.
func (s Searcher) RemoveOutliers(in lane.Samples) lane.Samples {
	band := max(s.Band, 1)
	bands := make(map[int][]int)
	for i, y := range in.Y {
		b := int(math.Floor(y / float64(band)))
		bands[b] = append(bands[b], i)
	}

	keep := make([]bool, in.Len())
	all := true
	for _, idx := range bands {
		all = s.filter(in, idx, keep) && all
	}
	if all {
		return in
	}

	var out lane.Samples
	for i, k := range keep {
		if k {
			out.X = append(out.X, in.X[i])
			out.Y = append(out.Y, in.Y[i])
		}
	}
	return out
}

// filter marks in keep which of the samples at idx lie within Deviation
// standard deviations of their regression line. It reports whether all
// were kept.
func (s Searcher) filter(in lane.Samples, idx []int, keep []bool) bool {
	if len(idx) < 3 {
		for _, i := range idx {
			keep[i] = true
		}
		return true
	}

	xs := make([]float64, len(idx))
	ys := make([]float64, len(idx))
	for j, i := range idx {
		xs[j], ys[j] = in.X[i], in.Y[i]
	}
	alpha, beta := stat.LinearRegression(ys, xs, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) || math.IsInf(beta, 0) {
		// All samples on one row; there is no trend, only the mean.
		alpha, beta = stat.Mean(xs, nil), 0
	}

	res := make([]float64, len(idx))
	for j := range res {
		res[j] = xs[j] - (alpha + beta*ys[j])
	}
	mean, std := stat.MeanStdDev(res, nil)

	all := true
	for j, i := range idx {
		keep[i] = std == 0 || math.IsNaN(std) || math.Abs(res[j]-mean) <= s.Deviation*std
		all = all && keep[i]
	}
	return all
}

// strips splits r into n horizontal strips of equal height, the last
// taking any remainder. Strips are ordered top to bottom.
func strips(r image.Rectangle, n int) []image.Rectangle {
	h := r.Dy()
	if n < 1 {
		n = 1
	}
	if n > h {
		n = h
	}
	if n == 0 {
		return nil
	}

	step := h / n
	out := make([]image.Rectangle, n)
	for i := range out {
		y0 := r.Min.Y + i*step
		y1 := y0 + step
		if i == n-1 {
			y1 = r.Max.Y
		}
		out[i] = image.Rect(r.Min.X, y0, r.Max.X, y1)
	}
	return out
}

// histogram counts the non-zero pixels in each column of r.
func histogram(mask *image.Gray, r image.Rectangle) []float64 {
	h := make([]float64, r.Dx())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := mask.PixOffset(r.Min.X, y)
		for x := range h {
			if mask.Pix[i+x] != 0 {
				h[x]++
			}
		}
	}
	return h
}

// smooth returns the centred moving average of h over window values.
func smooth(h []float64, window int) []float64 {
	if window <= 1 {
		return h
	}
	out := make([]float64, len(h))
	half := window / 2
	for i := range h {
		lo, hi := max(0, i-half), min(len(h), i-half+window)
		var sum float64
		for _, v := range h[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(window)
	}
	return out
}

// collect appends the coordinates of the non-zero pixels in r to s.
func collect(mask *image.Gray, r image.Rectangle, s *lane.Samples) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := mask.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			if mask.Pix[i] != 0 {
				s.X = append(s.X, float64(x))
				s.Y = append(s.Y, float64(y))
			}
			i++
		}
	}
}
