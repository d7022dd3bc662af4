/*
DESCRIPTION
  config.go provides the camera configuration: calibration target, frame
  geometry, lane mask thresholds and perspective points.

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

// Package camera provides the camera side of lane finding: lens calibration
// and undistortion, lane pixel masking and the birds-eye perspective warp.
// Everything other than configuration requires OpenCV and is built with the
// withcv tag.
package camera

import (
	"errors"
	"fmt"
)

// Config holds camera parameters.
type Config struct {
	CalibrationImages string `yaml:"calibration_images"` // Glob of chessboard images; empty disables undistortion.
	ChessboardRows    int    `yaml:"chessboard_rows"`    // Inner corners per column.
	ChessboardCols    int    `yaml:"chessboard_cols"`    // Inner corners per row.
	Width             int    `yaml:"width"`              // Frame width in pixels.
	Height            int    `yaml:"height"`             // Frame height in pixels.

	VerticalOffset int        `yaml:"vertical_offset"` // Rows from the top excluded from the mask.
	Saturation     [2]float64 `yaml:"saturation"`      // HLS saturation band.
	Gradient       [2]float64 `yaml:"gradient"`        // Scaled Sobel x gradient band.
	SobelKernel    int        `yaml:"sobel_kernel"`

	Source      [4][2]float32 `yaml:"source"`      // Road plane quadrilateral in the frame.
	Destination [4][2]float32 `yaml:"destination"` // Where Source lands in the birds-eye view.
}

// DefaultConfig returns the configuration for a 1280x720 dashcam with a
// 9x6 calibration chessboard.
func DefaultConfig() Config {
	return Config{
		CalibrationImages: "camera_cal/calibration*.jpg",
		ChessboardRows:    6,
		ChessboardCols:    9,
		Width:             1280,
		Height:            720,
		VerticalOffset:    400,
		Saturation:        [2]float64{170, 255},
		Gradient:          [2]float64{20, 100},
		SobelKernel:       3,
		Source:            [4][2]float32{{585, 460}, {203, 720}, {1127, 720}, {695, 460}},
		Destination:       [4][2]float32{{320, 0}, {320, 720}, {960, 720}, {960, 0}},
	}
}

// Validate checks c for unusable values.
func (c Config) Validate() error {
	switch {
	case c.ChessboardRows < 2 || c.ChessboardCols < 2:
		return fmt.Errorf("invalid chessboard size: %dx%d", c.ChessboardCols, c.ChessboardRows)
	case c.Width < 1 || c.Height < 1:
		return fmt.Errorf("invalid frame size: %dx%d", c.Width, c.Height)
	case c.VerticalOffset < 0 || c.VerticalOffset >= c.Height:
		return fmt.Errorf("invalid vertical offset: %d", c.VerticalOffset)
	case c.Saturation[0] > c.Saturation[1] || c.Gradient[0] > c.Gradient[1]:
		return errors.New("threshold bands must be ordered low to high")
	case c.SobelKernel < 1 || c.SobelKernel%2 == 0:
		return fmt.Errorf("sobel kernel must be odd and positive, got %d", c.SobelKernel)
	}
	if area(c.Source) == 0 || area(c.Destination) == 0 {
		return errors.New("perspective quadrilaterals must not be degenerate")
	}
	return nil
}

// area returns the shoelace area of the quadrilateral q.
func area(q [4][2]float32) float64 {
	var a float64
	for i := range q {
		j := (i + 1) % len(q)
		a += float64(q[i][0])*float64(q[j][1]) - float64(q[j][0])*float64(q[i][1])
	}
	if a < 0 {
		a = -a
	}
	return a / 2
}
