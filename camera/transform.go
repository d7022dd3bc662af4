//go:build withcv
// +build withcv

/*
DESCRIPTION
  transform.go provides the planar perspective transform between the camera
  view and the birds-eye view of the road.

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

package camera

import (
	"errors"
	"image"

	"gocv.io/x/gocv"
)

// Perspective warps images between the camera view and a birds-eye view.
type Perspective struct {
	forward gocv.Mat // Camera to birds-eye.
	inverse gocv.Mat // Birds-eye to camera.
	size    image.Point
}

// NewPerspective returns a Perspective mapping the src quadrilateral onto
// dst, producing images of the given size in both directions.
func NewPerspective(src, dst [4][2]float32, size image.Point) (*Perspective, error) {
	s, d := pointVector(src), pointVector(dst)
	defer s.Close()
	defer d.Close()

	p := &Perspective{
		forward: gocv.GetPerspectiveTransform2f(s, d),
		inverse: gocv.GetPerspectiveTransform2f(d, s),
		size:    size,
	}
	if p.forward.Empty() || p.inverse.Empty() {
		p.Close()
		return nil, errors.New("could not find perspective transform")
	}
	return p, nil
}

func pointVector(q [4][2]float32) gocv.Point2fVector {
	pts := make([]gocv.Point2f, len(q))
	for i, v := range q {
		pts[i] = gocv.Point2f{X: v[0], Y: v[1]}
	}
	return gocv.NewPoint2fVectorFromPoints(pts)
}

// Transform warps img from the camera view to the birds-eye view.
func (p *Perspective) Transform(img gocv.Mat) gocv.Mat {
	out := gocv.NewMat()
	gocv.WarpPerspective(img, &out, p.forward, p.size)
	return out
}

// InverseTransform warps img from the birds-eye view back to the camera
// view.
func (p *Perspective) InverseTransform(img gocv.Mat) gocv.Mat {
	out := gocv.NewMat()
	gocv.WarpPerspective(img, &out, p.inverse, p.size)
	return out
}

// Size returns the size of warped images.
func (p *Perspective) Size() image.Point { return p.size }

// Close releases the transform matrices.
func (p *Perspective) Close() error {
	p.forward.Close()
	p.inverse.Close()
	return nil
}
