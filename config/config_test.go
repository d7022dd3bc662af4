/*
DESCRIPTION
  config_test.go provides testing for configuration loading and variables.

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

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ausocean/utils/logging"
)

func TestDefault(t *testing.T) {
	err := Default().Validate()
	if err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestRead(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		modify  func(c *Config)
		wantErr bool
	}{
		{name: "empty", in: ""},
		{name: "comment only", in: "# nothing here\n"},
		{
			name: "partial",
			in: `
tracker:
  history_depth: 3
  policy:
    min_separation: 400
search:
  margin: 80
log:
  verbosity: debug
`,
			modify: func(c *Config) {
				c.Tracker.HistoryDepth = 3
				c.Tracker.Policy.MinSeparation = 400
				c.Search.Margin = 80
				c.Log.Verbosity = "debug"
			},
		},
		{
			name: "arrays",
			in: `
camera:
  saturation: [100, 200]
overlay:
  lane_colour: [0, 255, 0]
`,
			modify: func(c *Config) {
				c.Camera.Saturation = [2]float64{100, 200}
				c.Overlay.LaneColour = [3]uint8{0, 255, 0}
			},
		},
		{name: "unknown field", in: "tracker:\n  depth: 3\n", wantErr: true},
		{name: "bad syntax", in: "tracker: [", wantErr: true},
		{name: "invalid value", in: "tracker:\n  policy:\n    parallel: [0, 0]\n", wantErr: true},
		{name: "bad verbosity", in: "log:\n  verbosity: loud\n", wantErr: true},
		{name: "row outside frame", in: "camera:\n  height: 480\n  vertical_offset: 200\n", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Read(strings.NewReader(test.in))
			if (err != nil) != test.wantErr {
				t.Fatalf("unexpected error: %v, wanted error: %v", err, test.wantErr)
			}
			if test.wantErr {
				return
			}
			want := Default()
			if test.modify != nil {
				test.modify(&want)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("unexpected config (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Error("expected error loading missing file")
	}

	want := Default()
	want.Tracker.Segments = 12
	want.Overlay.FrameWeight = 0.5

	var buf bytes.Buffer
	err = want.Write(&buf)
	if err != nil {
		t.Fatalf("could not write config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "lanefinder.yaml")
	err = os.WriteFile(path, buf.Bytes(), 0644)
	if err != nil {
		t.Fatalf("could not write file: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("could not load config: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    int8
		wantErr bool
	}{
		{in: "debug", want: int8(logging.Debug)},
		{in: "warning", want: int8(logging.Warning)},
		{in: "fatal", want: int8(logging.Fatal)},
		{in: "", wantErr: true},
		{in: "Info", wantErr: true},
	}
	for i, test := range tests {
		got, err := Log{Verbosity: test.in}.Level()
		if (err != nil) != test.wantErr {
			t.Errorf("unexpected error for test %d: %v", i, err)
			continue
		}
		if got != test.want {
			t.Errorf("unexpected level for test %d, got: %d, want: %d", i, got, test.want)
		}
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		modify  func(c *Config)
		wantErr bool
	}{
		{name: "none", vars: nil},
		{
			name: "tracker",
			vars: map[string]string{"HistoryDepth": "1", "Segments": "8", "ParallelCurvature": "0.001"},
			modify: func(c *Config) {
				c.Tracker.HistoryDepth = 1
				c.Tracker.Segments = 8
				c.Tracker.Policy.Parallel[0] = 0.001
			},
		},
		{
			name: "search and camera",
			vars: map[string]string{"Margin": "60", "Deviation": "1.5", "OutlierBand": "36", "VerticalOffset": "380", "Verbosity": "warning"},
			modify: func(c *Config) {
				c.Search.Band = 36
				c.Search.Margin = 60
				c.Search.Deviation = 1.5
				c.Camera.VerticalOffset = 380
				c.Log.Verbosity = "warning"
			},
		},
		{
			name: "separation band",
			vars: map[string]string{"MinSeparation": "300", "MaxSeparation": "900"},
			modify: func(c *Config) {
				c.Tracker.Policy.MinSeparation = 300
				c.Tracker.Policy.MaxSeparation = 900
			},
		},
		{name: "unknown", vars: map[string]string{"Speed": "3"}, wantErr: true},
		{name: "not a number", vars: map[string]string{"Segments": "ten"}, wantErr: true},
		{name: "invalid result", vars: map[string]string{"HistoryDepth": "0"}, wantErr: true},
		{name: "bad verbosity", vars: map[string]string{"Verbosity": "loud"}, wantErr: true},
		{name: "inverted band", vars: map[string]string{"MinSeparation": "1200"}, wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Default()
			err := Apply(&got, test.vars)
			if (err != nil) != test.wantErr {
				t.Fatalf("unexpected error: %v, wanted error: %v", err, test.wantErr)
			}

			// Failed applications leave the config untouched.
			want := Default()
			if !test.wantErr && test.modify != nil {
				test.modify(&want)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("unexpected config (-want +got):\n%s", diff)
			}
		})
	}
}

func TestVariables(t *testing.T) {
	vars := Variables()
	if len(vars) != len(variables) {
		t.Fatalf("unexpected variable count, got: %d, want: %d", len(vars), len(variables))
	}
	seen := make(map[string]bool)
	for _, v := range variables {
		if seen[v.name] {
			t.Errorf("duplicate variable: %s", v.name)
		}
		seen[v.name] = true
	}
	if vars[0] != "HistoryDepth:uint" {
		t.Errorf("unexpected first variable: %s", vars[0])
	}
}
