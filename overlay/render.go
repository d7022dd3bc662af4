//go:build withcv
// +build withcv

/*
DESCRIPTION
  render.go provides the Renderer, which draws the lane area, centre line,
  lane boundaries and curvature and position text onto camera frames.

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

package overlay

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ausocean/lanefinder/camera"
	"github.com/ausocean/lanefinder/lane"
)

// Text placement.
var (
	curvatureOrg = image.Pt(50, 50)
	positionOrg  = image.Pt(50, 100)
	textColour   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Renderer draws lane estimates onto frames. Lanes are drawn in the
// birds-eye plane and warped back into the camera view. It implements
// lane.Renderer.
type Renderer struct {
	cfg   Config
	persp *camera.Perspective
}

// NewRenderer returns a new Renderer using persp to return drawings to the
// camera view.
func NewRenderer(c Config, persp *camera.Perspective) (*Renderer, error) {
	err := c.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid overlay config: %w", err)
	}
	if persp == nil {
		return nil, errors.New("perspective transform is required")
	}
	return &Renderer{cfg: c, persp: persp}, nil
}

// Render implements lane.Renderer.
func (r *Renderer) Render(frame image.Image, e lane.Estimate) (image.Image, error) {
	img, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return nil, fmt.Errorf("could not convert frame: %w", err)
	}
	defer img.Close()

	err = r.Draw(&img, e)
	if err != nil {
		return nil, err
	}
	out, err := img.ToImage()
	if err != nil {
		return nil, fmt.Errorf("could not convert rendered frame: %w", err)
	}
	return out, nil
}

// Draw draws e onto the BGR image img in place.
func (r *Renderer) Draw(img *gocv.Mat, e lane.Estimate) error {
	if !e.Valid {
		return errors.New("estimate has no lane")
	}
	size := r.persp.Size()
	if img.Cols() != size.X || img.Rows() != size.Y {
		return fmt.Errorf("frame size %dx%d does not match transform size %dx%d", img.Cols(), img.Rows(), size.X, size.Y)
	}

	// Lane area, blended.
	area := r.plane()
	defer area.Close()
	fill := gocv.NewPointsVectorFromPoints([][]image.Point{LaneArea(e.Left, e.Right, size.Y, r.cfg.Step)})
	defer fill.Close()
	gocv.FillPoly(&area, fill, rgba(r.cfg.LaneColour))
	r.composite(img, area, true)

	// Centre line with an arrow pointing along the lane.
	centre := r.plane()
	defer centre.Close()
	pts := PolyPoints(e.Center, size.Y, r.cfg.Step)
	r.polyline(&centre, pts, rgba(r.cfg.CentreColour), r.cfg.CentreWidth)
	if len(pts) > 1 {
		a, b := ArrowHead(pts[0], pts[1], r.cfg.ArrowTip)
		gocv.Line(&centre, pts[0], a, rgba(r.cfg.CentreColour), r.cfg.CentreWidth)
		gocv.Line(&centre, pts[0], b, rgba(r.cfg.CentreColour), r.cfg.CentreWidth)
	}
	r.composite(img, centre, false)

	// Lane boundaries.
	bounds := r.plane()
	defer bounds.Close()
	r.polyline(&bounds, PolyPoints(e.Left, size.Y, r.cfg.Step), rgba(r.cfg.LineColour), r.cfg.LineWidth)
	r.polyline(&bounds, PolyPoints(e.Right, size.Y, r.cfg.Step), rgba(r.cfg.LineColour), r.cfg.LineWidth)
	r.composite(img, bounds, false)

	curv, pos := InfoText(e)
	gocv.PutText(img, curv, curvatureOrg, gocv.FontHersheySimplex, r.cfg.TextScale, textColour, r.cfg.TextWidth)
	gocv.PutText(img, pos, positionOrg, gocv.FontHersheySimplex, r.cfg.TextScale, textColour, r.cfg.TextWidth)
	return nil
}

// plane returns a blank colour image the size of the birds-eye view.
func (r *Renderer) plane() gocv.Mat {
	size := r.persp.Size()
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), size.Y, size.X, gocv.MatTypeCV8UC3)
}

func (r *Renderer) polyline(img *gocv.Mat, pts []image.Point, c color.RGBA, width int) {
	if len(pts) < 2 {
		return
	}
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
	defer pv.Close()
	gocv.Polylines(img, pv, false, c, width)
}

// composite warps the birds-eye drawing back into the camera view and
// copies it onto img wherever it is non-zero, blending with the frame if
// blend is true.
func (r *Renderer) composite(img *gocv.Mat, drawing gocv.Mat, blend bool) {
	back := r.persp.InverseTransform(drawing)
	defer back.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(back, &gray, gocv.ColorBGRToGray)
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(gray, &mask, 0, 255, gocv.ThresholdBinary)

	if !blend {
		back.CopyToWithMask(img, mask)
		return
	}
	blended := gocv.NewMat()
	defer blended.Close()
	gocv.AddWeighted(*img, r.cfg.FrameWeight, back, r.cfg.OverlayWeight, 0, &blended)
	blended.CopyToWithMask(img, mask)
}
