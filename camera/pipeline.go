//go:build withcv
// +build withcv

/*
DESCRIPTION
  pipeline.go provides the Pipeline, which turns camera frames into the
  birds-eye lane masks searched by a lane.Tracker.

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
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Pipeline undistorts, masks and warps frames. It implements
// lane.Preprocessor.
type Pipeline struct {
	cal   *Calibration // May be nil, in which case frames are not undistorted.
	persp *Perspective
	cfg   Config
}

// NewPipeline returns a new Pipeline.
func NewPipeline(cal *Calibration, persp *Perspective, c Config) (*Pipeline, error) {
	if persp == nil {
		return nil, errors.New("perspective transform is required")
	}
	return &Pipeline{cal: cal, persp: persp, cfg: c}, nil
}

// Undistort returns a copy of img with lens distortion removed, or a plain
// copy if the pipeline is uncalibrated.
func (p *Pipeline) Undistort(img gocv.Mat) gocv.Mat {
	if p.cal == nil {
		return img.Clone()
	}
	return p.cal.Undistort(img)
}

// Warp returns the birds-eye lane mask of a BGR frame.
func (p *Pipeline) Warp(frame gocv.Mat) gocv.Mat {
	u := p.Undistort(frame)
	defer u.Close()
	m := Mask(u, p.cfg)
	defer m.Close()
	return p.persp.Transform(m)
}

// Preprocess implements lane.Preprocessor.
func (p *Pipeline) Preprocess(frame image.Image) (*image.Gray, error) {
	src, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return nil, fmt.Errorf("could not convert frame: %w", err)
	}
	defer src.Close()
	if src.Empty() {
		return nil, errors.New("frame is empty")
	}

	w := p.Warp(src)
	defer w.Close()
	img, err := w.ToImage()
	if err != nil {
		return nil, fmt.Errorf("could not convert mask: %w", err)
	}
	g, ok := img.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("unexpected mask image type %T", img)
	}
	return g, nil
}
