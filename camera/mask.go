//go:build withcv
// +build withcv

/*
DESCRIPTION
  mask.go provides the thresholding of a camera frame into a binary mask
  of likely lane marking pixels.

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
	"image"

	"gocv.io/x/gocv"
)

// Mask returns a binary mask of img in which lane marking pixels are 255.
// A pixel is kept if its HLS saturation falls within c.Saturation or its
// scaled horizontal gradient falls within c.Gradient. Rows above
// c.VerticalOffset, which see sky and horizon, are cleared.
func Mask(img gocv.Mat, c Config) gocv.Mat {
	hls := gocv.NewMat()
	defer hls.Close()
	gocv.CvtColor(img, &hls, gocv.ColorBGRToHLS)
	channels := gocv.Split(hls)
	defer func() {
		for _, ch := range channels {
			ch.Close()
		}
	}()

	sat := gocv.NewMat()
	defer sat.Close()
	gocv.InRangeWithScalar(channels[2], gocv.NewScalar(c.Saturation[0], 0, 0, 0), gocv.NewScalar(c.Saturation[1], 0, 0, 0), &sat)

	grad := gradient(img, c)
	defer grad.Close()

	out := gocv.NewMat()
	gocv.BitwiseOr(sat, grad, &out)

	rows := min(c.VerticalOffset, out.Rows())
	if rows > 0 {
		top := out.Region(image.Rect(0, 0, out.Cols(), rows))
		top.SetTo(gocv.NewScalar(0, 0, 0, 0))
		top.Close()
	}
	return out
}

// gradient returns the mask of pixels whose horizontal Sobel gradient,
// scaled to [0, 255], lies within c.Gradient.
func gradient(img gocv.Mat, c Config) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	dx := gocv.NewMat()
	defer dx.Close()
	gocv.Sobel(gray, &dx, gocv.MatTypeCV64F, 1, 0, c.SobelKernel, 1, 0, gocv.BorderDefault)

	abs := gocv.NewMat()
	defer abs.Close()
	gocv.ConvertScaleAbs(dx, &abs, 1, 0)
	gocv.Normalize(abs, &abs, 0, 255, gocv.NormMinMax)

	out := gocv.NewMat()
	gocv.InRangeWithScalar(abs, gocv.NewScalar(c.Gradient[0], 0, 0, 0), gocv.NewScalar(c.Gradient[1], 0, 0, 0), &out)
	return out
}
