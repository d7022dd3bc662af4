/*
DESCRIPTION
  tracker_test.go provides end to end testing of the Tracker using
  synthetic birds-eye masks and the search package.

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

package lane_test

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/lanefinder/lane"
	"github.com/ausocean/lanefinder/search"
)

// Synthetic frame dimensions.
const (
	width     = 1200
	height    = 720
	halfWidth = 5 // Half the drawn lane marking width in pixels.
)

// maskInput passes through frames that are already birds-eye masks.
type maskInput struct{}

func (maskInput) Preprocess(frame image.Image) (*image.Gray, error) {
	m, ok := frame.(*image.Gray)
	if !ok {
		return nil, errors.New("frame is not a mask")
	}
	return m, nil
}

// drawMask returns a mask with a lane marking along each of the given
// column functions.
func drawMask(lines ...func(y float64) float64) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, width, height))
	for _, f := range lines {
		for y := 0; y < height; y++ {
			c := f(float64(y))
			for x := int(math.Ceil(c - halfWidth)); x <= int(math.Floor(c+halfWidth)); x++ {
				if x >= 0 && x < width {
					m.SetGray(x, y, color.Gray{Y: 255})
				}
			}
		}
	}
	return m
}

func vertical(x float64) func(float64) float64 {
	return func(float64) float64 { return x }
}

// arc returns a circular arc of radius r whose vertex is at column x on the
// bottom row.
func arc(x, r float64) func(float64) float64 {
	return func(y float64) float64 {
		d := float64(height-1) - y
		return x - (r - math.Sqrt(r*r-d*d))
	}
}

func newTracker(t *testing.T, r lane.Renderer) *lane.Tracker {
	tr, err := lane.NewTracker(lane.DefaultConfig(), maskInput{}, search.Default(), r, (*logging.TestLogger)(t))
	if err != nil {
		t.Fatalf("could not create tracker: %v", err)
	}
	return tr
}

func TestStraightLanes(t *testing.T) {
	tr := newTracker(t, nil)
	mask := drawMask(vertical(300), vertical(900))

	const frames = 3
	for i := 0; i < frames; i++ {
		_, err := tr.Process(mask)
		if err != nil {
			t.Fatalf("could not process frame %d: %v", i, err)
		}

		e := tr.Estimate()
		if !e.Valid || !e.LeftFound || !e.RightFound {
			t.Fatalf("lanes not found in frame %d: %+v", i, e)
		}
		if e.Curvature < 1e6 {
			t.Errorf("curvature too small for straight lanes in frame %d: %f", i, e.Curvature)
		}
		if math.Abs(e.Offset) > 1e-3 {
			t.Errorf("unexpected offset in frame %d: %f", i, e.Offset)
		}
	}

	d := tr.Distances()
	if len(d) != frames {
		t.Fatalf("unexpected distance history length: %d", len(d))
	}
	for i, v := range d {
		if math.Abs(v-600) > 1 {
			t.Errorf("unexpected fit distance for frame %d: %f", i, v)
		}
	}
}

func TestArcLanes(t *testing.T) {
	const r = 5000.0
	tr := newTracker(t, nil)
	mask := drawMask(arc(300, r), arc(900, r))

	for i := 0; i < 3; i++ {
		_, err := tr.Process(mask)
		if err != nil {
			t.Fatalf("could not process frame %d: %v", i, err)
		}
	}

	e := tr.Estimate()
	if !e.Valid {
		t.Fatalf("lanes not found: %+v", e)
	}
	if math.Abs(e.Curvature-r)/r > 0.05 {
		t.Errorf("did not get expected curvature. Got: %f, Want: %f", e.Curvature, r)
	}
	if math.Abs(e.Offset) > 0.01 {
		t.Errorf("unexpected offset: %f", e.Offset)
	}
}

func TestOffset(t *testing.T) {
	cfg := lane.DefaultConfig()
	tr, err := lane.NewTracker(cfg, maskInput{}, search.Default(), nil, (*logging.TestLogger)(t))
	if err != nil {
		t.Fatalf("could not create tracker: %v", err)
	}

	// Lane centre at column 700 puts the vehicle 100 pixels left of centre.
	_, err = tr.Process(drawMask(vertical(400), vertical(1000)))
	if err != nil {
		t.Fatalf("could not process frame: %v", err)
	}
	want := -100 * cfg.MetresPerPixelX
	if got := tr.Estimate().Offset; math.Abs(got-want) > 1e-3 {
		t.Errorf("did not get expected offset. Got: %f, Want: %f", got, want)
	}
}

// TestCoast checks that a side without pixels keeps its previous fit.
func TestCoast(t *testing.T) {
	tr := newTracker(t, nil)
	both := drawMask(vertical(300), vertical(900))
	for i := 0; i < 2; i++ {
		_, err := tr.Process(both)
		if err != nil {
			t.Fatalf("could not process frame %d: %v", i, err)
		}
	}
	prev := tr.Estimate()

	_, err := tr.Process(drawMask(vertical(305)))
	if err != nil {
		t.Fatalf("could not process left only frame: %v", err)
	}
	e := tr.Estimate()
	if e.RightFound {
		t.Error("right line found in frame without right pixels")
	}
	if !e.LeftFound {
		t.Error("left line not accepted against previous right detection")
	}
	if e.Right != prev.Right {
		t.Errorf("right fit changed while coasting. Got: %v, Want: %v", e.Right, prev.Right)
	}
	if !e.Valid {
		t.Error("estimate invalid while coasting")
	}
}

// TestRecover checks the search phases together: lanes that move out
// of the history windows are recovered by histogram search, and a side
// found by history is kept when histogram search supplies the other.
func TestRecover(t *testing.T) {
	tests := []struct {
		name        string
		left, right float64 // Columns of the markings in the final frame.
		want        [2]float64
	}{
		// Both markings lie 150 pixels from the previous fits.
		{name: "both by histogram", left: 450, right: 1050, want: [2]float64{330, 930}},

		// Left stays within the history window, right does not.
		{name: "one from each", left: 310, right: 1050, want: [2]float64{302, 930}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tr := newTracker(t, nil)
			both := drawMask(vertical(300), vertical(900))
			for i := 0; i < 2; i++ {
				_, err := tr.Process(both)
				if err != nil {
					t.Fatalf("could not process frame %d: %v", i, err)
				}
			}

			_, err := tr.Process(drawMask(vertical(test.left), vertical(test.right)))
			if err != nil {
				t.Fatalf("could not process moved frame: %v", err)
			}
			e := tr.Estimate()
			if !e.LeftFound || !e.RightFound {
				t.Fatalf("lanes not recovered, left: %v, right: %v", e.LeftFound, e.RightFound)
			}

			// Smoothing weights the new fit by 1/depth.
			got := [2]float64{e.Left.Eval(lane.ReferenceRow), e.Right.Eval(lane.ReferenceRow)}
			for i := range got {
				if math.Abs(got[i]-test.want[i]) > 0.5 {
					t.Errorf("unexpected smoothed fits. Got: %v, Want: %v", got, test.want)
					break
				}
			}
		})
	}
}

func TestNoLanes(t *testing.T) {
	tr := newTracker(t, nil)
	_, err := tr.Process(drawMask())
	if err != nil {
		t.Fatalf("could not process empty frame: %v", err)
	}
	e := tr.Estimate()
	if e.Valid || e.LeftFound || e.RightFound {
		t.Errorf("unexpected estimate for empty frame: %+v", e)
	}
	if len(tr.Distances()) != 0 {
		t.Error("distance recorded without lines")
	}
}

func TestImplausibleLanes(t *testing.T) {
	tr := newTracker(t, nil)
	_, err := tr.Process(drawMask(vertical(550), vertical(650)))
	if err != nil {
		t.Fatalf("could not process frame: %v", err)
	}
	if tr.Estimate().LeftFound || tr.Estimate().RightFound {
		t.Error("accepted lane markings 100 pixels apart")
	}
}

// stubRenderer records rendered estimates.
type stubRenderer struct {
	got []lane.Estimate
	err error
}

func (r *stubRenderer) Render(frame image.Image, e lane.Estimate) (image.Image, error) {
	r.got = append(r.got, e)
	if r.err != nil {
		return nil, r.err
	}
	return image.NewRGBA(frame.Bounds()), nil
}

func TestRender(t *testing.T) {
	r := &stubRenderer{}
	tr := newTracker(t, r)

	empty := drawMask()
	out, err := tr.Process(empty)
	if err != nil {
		t.Fatalf("could not process empty frame: %v", err)
	}
	if out != image.Image(empty) || len(r.got) != 0 {
		t.Error("rendered frame without lanes")
	}

	out, err = tr.Process(drawMask(vertical(300), vertical(900)))
	if err != nil {
		t.Fatalf("could not process frame: %v", err)
	}
	if _, ok := out.(*image.RGBA); !ok || len(r.got) != 1 {
		t.Error("did not get rendered frame")
	}
	if r.got[0].Frame != 1 {
		t.Errorf("unexpected rendered frame index: %d", r.got[0].Frame)
	}

	r.err = errors.New("render failed")
	frame := drawMask(vertical(300), vertical(900))
	out, err = tr.Process(frame)
	if err == nil {
		t.Error("expected render error")
	}
	if out != image.Image(frame) {
		t.Error("did not get original frame back on render error")
	}
}

func TestPreprocessError(t *testing.T) {
	tr := newTracker(t, nil)
	_, err := tr.Process(image.NewRGBA(image.Rect(0, 0, width, height)))
	if err == nil {
		t.Error("expected error for frame that could not be preprocessed")
	}
}

func TestNewTrackerInvalid(t *testing.T) {
	cfg := lane.DefaultConfig()
	cfg.Policy.Parallel = [2]float64{}
	_, err := lane.NewTracker(cfg, maskInput{}, search.Default(), nil, (*logging.TestLogger)(t))
	if err == nil {
		t.Error("expected error for tracker without parallel thresholds")
	}

	_, err = lane.NewTracker(lane.DefaultConfig(), nil, search.Default(), nil, (*logging.TestLogger)(t))
	if err == nil {
		t.Error("expected error for tracker without preprocessor")
	}
}
