/*
DESCRIPTION
  config_test.go provides testing for camera configuration validation.

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

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "default", modify: func(*Config) {}},
		{name: "no calibration", modify: func(c *Config) { c.CalibrationImages = "" }},
		{name: "small chessboard", modify: func(c *Config) { c.ChessboardRows = 1 }, wantErr: true},
		{name: "no width", modify: func(c *Config) { c.Width = 0 }, wantErr: true},
		{name: "offset past frame", modify: func(c *Config) { c.VerticalOffset = 720 }, wantErr: true},
		{name: "inverted saturation", modify: func(c *Config) { c.Saturation = [2]float64{255, 170} }, wantErr: true},
		{name: "even kernel", modify: func(c *Config) { c.SobelKernel = 4 }, wantErr: true},
		{name: "degenerate source", modify: func(c *Config) { c.Source = [4][2]float32{{1, 1}, {1, 1}, {1, 1}, {1, 1}} }, wantErr: true},
	}

	for _, test := range tests {
		c := DefaultConfig()
		test.modify(&c)
		err := c.Validate()
		if (err != nil) != test.wantErr {
			t.Errorf("unexpected validation result for test: %s: %v", test.name, err)
		}
	}
}

func TestArea(t *testing.T) {
	got := area([4][2]float32{{0, 0}, {0, 10}, {20, 10}, {20, 0}})
	if got != 200 {
		t.Errorf("did not get expected area. Got: %f, Want: 200", got)
	}
}
