//go:build withcv
// +build withcv

/*
DESCRIPTION
  calibrate.go provides lens calibration from chessboard images and the
  undistortion of frames using the result.

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
	"path/filepath"

	"github.com/ausocean/utils/logging"
	"gocv.io/x/gocv"
)

// Calibration holds the camera matrix and distortion coefficients found by
// Calibrate.
type Calibration struct {
	matrix gocv.Mat
	dist   gocv.Mat
}

// Calibrate finds the camera matrix and distortion coefficients from the
// chessboard images matching c.CalibrationImages. Images in which the
// chessboard cannot be found are skipped.
func Calibrate(c Config, log logging.Logger) (*Calibration, error) {
	paths, err := filepath.Glob(c.CalibrationImages)
	if err != nil {
		return nil, fmt.Errorf("could not glob calibration images: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no calibration images match %s", c.CalibrationImages)
	}

	size := image.Pt(c.Width, c.Height)
	pattern := image.Pt(c.ChessboardCols, c.ChessboardRows)
	board := chessboard(c.ChessboardCols, c.ChessboardRows)

	objPoints := gocv.NewPoints3fVector()
	defer objPoints.Close()
	imgPoints := gocv.NewPoints2fVector()
	defer imgPoints.Close()

	for _, p := range paths {
		corners, ok := findCorners(p, size, pattern)
		if !ok {
			log.Debug("no chessboard found, skipping", "path", p)
			continue
		}
		imgPoints.Append(corners)
		corners.Close()

		obj := gocv.NewPoint3fVectorFromPoints(board)
		objPoints.Append(obj)
		obj.Close()
	}
	if imgPoints.Size() == 0 {
		return nil, errors.New("chessboard not found in any calibration image")
	}

	cal := &Calibration{matrix: gocv.NewMat(), dist: gocv.NewMat()}
	rvecs, tvecs := gocv.NewMat(), gocv.NewMat()
	defer rvecs.Close()
	defer tvecs.Close()

	rms := gocv.CalibrateCamera(objPoints, imgPoints, size, &cal.matrix, &cal.dist, &rvecs, &tvecs, 0)
	if cal.matrix.Empty() {
		cal.Close()
		return nil, errors.New("calibration produced no camera matrix")
	}
	log.Info("camera calibrated", "images", imgPoints.Size(), "of", len(paths), "rms", rms)
	return cal, nil
}

// findCorners reads the image at path, resized to size if required, and
// locates the inner corners of a chessboard with the given pattern.
func findCorners(path string, size, pattern image.Point) (gocv.Point2fVector, bool) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		return gocv.Point2fVector{}, false
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	if gray.Cols() != size.X || gray.Rows() != size.Y {
		gocv.Resize(gray, &gray, size, 0, 0, gocv.InterpolationLinear)
	}

	corners := gocv.NewMat()
	defer corners.Close()
	if !gocv.FindChessboardCorners(gray, pattern, &corners, gocv.CalibCBAdaptiveThresh|gocv.CalibCBNormalizeImage) {
		return gocv.Point2fVector{}, false
	}
	return gocv.NewPoint2fVectorFromMat(corners), true
}

// chessboard returns the object points of a cols by rows chessboard lying
// in the z = 0 plane, row by row.
func chessboard(cols, rows int) []gocv.Point3f {
	pts := make([]gocv.Point3f, 0, cols*rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			pts = append(pts, gocv.Point3f{X: float32(x), Y: float32(y)})
		}
	}
	return pts
}

// Undistort returns a copy of src with lens distortion removed.
func (c *Calibration) Undistort(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	gocv.Undistort(src, &dst, c.matrix, c.dist, c.matrix)
	return dst
}

// Close releases the calibration matrices.
func (c *Calibration) Close() error {
	c.matrix.Close()
	c.dist.Close()
	return nil
}
