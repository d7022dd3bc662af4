//go:build withcv
// +build withcv

/*
DESCRIPTION
  lane-finder reads road video, tracks the lane boundaries in each frame
  and writes the video back out with the lane, its curvature and the
  vehicle's offset drawn on.

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

// lane-finder tracks lane boundaries in dashcam video. Frames are
// undistorted, thresholded and warped to a birds-eye view in which the left
// and right lane lines are searched for and tracked across frames.
// Parameters come from a YAML config and may be tuned with -var flags, e.g.
//
//	lane-finder -in drive.mp4 -out lanes.avi -var HistoryDepth=3
package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/ausocean/utils/logging"
	"gocv.io/x/gocv"

	"github.com/ausocean/lanefinder/camera"
	"github.com/ausocean/lanefinder/config"
	"github.com/ausocean/lanefinder/diagnostics"
	"github.com/ausocean/lanefinder/lane"
	"github.com/ausocean/lanefinder/overlay"
)

// Output video.
const (
	codec      = "MJPG"
	defaultFPS = 25.0
)

func main() {
	vars := make(varFlags)
	configPath := flag.String("config", "", "YAML config file; defaults are used if empty")
	inPath := flag.String("in", "", "input video file")
	outPath := flag.String("out", "lanes.avi", "output video file")
	plotDir := flag.String("plots", "", "directory for diagnostic plots; none are written if empty")
	flag.Var(vars, "var", "variable as name=value, may be repeated; one of "+strings.Join(config.Variables(), ", "))
	flag.Parse()

	boot := bootLogger()
	if *inPath == "" {
		boot.Fatal("no input video, use -in")
	}

	cfg, err := loadConfig(*configPath, vars)
	if err != nil {
		boot.Fatal("could not load config", "error", err)
	}
	log, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		boot.Fatal("could not create logger", "error", err)
	}
	log.Debug("loaded config", "path", *configPath, "vars", vars.String())

	rec := &diagnostics.Recorder{}
	err = run(cfg, *inPath, *outPath, rec, log)
	if err != nil {
		log.Fatal("lane finding failed", "error", err)
	}

	if *plotDir != "" {
		err = os.MkdirAll(*plotDir, 0755)
		if err != nil {
			log.Fatal("could not create plot directory", "error", err)
		}
		err = rec.Plot(*plotDir)
		if err != nil {
			log.Error("could not write plots", "error", err)
		}
	}
}

// run tracks lanes through the video at in, writing annotated frames to
// out and recording estimates in rec.
func run(cfg config.Config, in, out string, rec *diagnostics.Recorder, log logging.Logger) error {
	var cal *camera.Calibration
	if cfg.Camera.CalibrationImages != "" {
		log.Info("calibrating camera", "images", cfg.Camera.CalibrationImages)
		var err error
		cal, err = camera.Calibrate(cfg.Camera, log)
		if err != nil {
			return fmt.Errorf("could not calibrate camera: %w", err)
		}
		defer cal.Close()
	}

	size := image.Pt(cfg.Camera.Width, cfg.Camera.Height)
	persp, err := camera.NewPerspective(cfg.Camera.Source, cfg.Camera.Destination, size)
	if err != nil {
		return fmt.Errorf("could not create perspective transform: %w", err)
	}
	defer persp.Close()

	pipe, err := camera.NewPipeline(cal, persp, cfg.Camera)
	if err != nil {
		return fmt.Errorf("could not create pipeline: %w", err)
	}
	render, err := overlay.NewRenderer(cfg.Overlay, persp)
	if err != nil {
		return fmt.Errorf("could not create renderer: %w", err)
	}
	tracker, err := lane.NewTracker(cfg.Tracker, pipe, cfg.Search, render, log)
	if err != nil {
		return fmt.Errorf("could not create tracker: %w", err)
	}

	capture, err := gocv.VideoCaptureFile(in)
	if err != nil {
		return fmt.Errorf("could not open input video: %w", err)
	}
	defer capture.Close()

	fps := capture.Get(gocv.VideoCaptureFPS)
	if fps <= 0 {
		fps = defaultFPS
	}
	writer, err := gocv.VideoWriterFile(out, codec, fps, size.X, size.Y, true)
	if err != nil {
		return fmt.Errorf("could not open output video: %w", err)
	}
	defer writer.Close()

	frame := gocv.NewMat()
	defer frame.Close()
	var n int
	for capture.Read(&frame) {
		if frame.Empty() {
			continue
		}
		err = step(tracker, frame, size, writer, log)
		if err != nil {
			return fmt.Errorf("frame %d: %w", n, err)
		}

		e := tracker.Estimate()
		rec.Add(e)
		log.Debug("processed frame", "frame", e.Frame, "valid", e.Valid, "left", e.LeftFound, "right", e.RightFound, "curvature", e.CurvatureMetres, "offset", e.Offset)
		n++
	}
	log.Info("finished video", "frames", n, "estimates", rec.Len())
	return nil
}

// step processes a single frame and writes the result.
func step(t *lane.Tracker, frame gocv.Mat, size image.Point, w *gocv.VideoWriter, log logging.Logger) error {
	if frame.Cols() != size.X || frame.Rows() != size.Y {
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(frame, &resized, size, 0, 0, gocv.InterpolationLinear)
		frame = resized
	}
	img, err := frame.ToImage()
	if err != nil {
		return fmt.Errorf("could not convert frame: %w", err)
	}

	res, err := t.Process(img)
	switch {
	case res == nil:
		return fmt.Errorf("could not process frame: %w", err)
	case err != nil:
		log.Warning("could not render frame", "error", err)
	}

	mat, err := gocv.ImageToMatRGB(res)
	if err != nil {
		return fmt.Errorf("could not convert result: %w", err)
	}
	defer mat.Close()
	err = w.Write(mat)
	if err != nil {
		return fmt.Errorf("could not write frame: %w", err)
	}
	return nil
}
