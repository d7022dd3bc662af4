/*
DESCRIPTION
  config.go provides the lane-finder configuration, loaded from YAML on top
  of tuned defaults.

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

// Package config provides loading and validation of lane-finder
// configuration, and named variables for tuning individual parameters.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ausocean/utils/logging"
	"gopkg.in/yaml.v3"

	"github.com/ausocean/lanefinder/camera"
	"github.com/ausocean/lanefinder/lane"
	"github.com/ausocean/lanefinder/overlay"
	"github.com/ausocean/lanefinder/search"
)

// Log holds logging configuration.
type Log struct {
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"max_size"` // MB.
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"` // Days.
	Verbosity  string `yaml:"verbosity"`
	Suppress   bool   `yaml:"suppress"`
}

// Level returns the logging level named by Verbosity.
func (l Log) Level() (int8, error) {
	lvl, ok := levels[l.Verbosity]
	if !ok {
		return 0, fmt.Errorf("unknown log verbosity: %q", l.Verbosity)
	}
	return lvl, nil
}

var levels = map[string]int8{
	"debug":   int8(logging.Debug),
	"info":    int8(logging.Info),
	"warning": int8(logging.Warning),
	"error":   int8(logging.Error),
	"fatal":   int8(logging.Fatal),
}

// Config is the complete lane-finder configuration.
type Config struct {
	Camera  camera.Config   `yaml:"camera"`
	Tracker lane.Config     `yaml:"tracker"`
	Search  search.Searcher `yaml:"search"`
	Overlay overlay.Config  `yaml:"overlay"`
	Log     Log             `yaml:"log"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Camera:  camera.DefaultConfig(),
		Tracker: lane.DefaultConfig(),
		Search:  search.Default(),
		Overlay: overlay.DefaultConfig(),
		Log: Log{
			Path:       "/var/log/lanefinder/lanefinder.log",
			MaxSize:    500,
			MaxBackups: 10,
			MaxAge:     28,
			Verbosity:  "info",
		},
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result. Fields absent from the file keep their default values.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not open config: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read is like Load but reads YAML from r.
func Read(r io.Reader) (Config, error) {
	c := Default()
	b, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	err = dec.Decode(&c)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("could not decode config: %w", err)
	}
	err = c.Validate()
	if err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks every section of c.
func (c Config) Validate() error {
	err := c.Camera.Validate()
	if err != nil {
		return fmt.Errorf("invalid camera config: %w", err)
	}
	err = c.Tracker.Validate()
	if err != nil {
		return fmt.Errorf("invalid tracker config: %w", err)
	}
	if c.Tracker.Policy.Row >= float64(c.Camera.Height) {
		return fmt.Errorf("reference row %v outside %d row frame", c.Tracker.Policy.Row, c.Camera.Height)
	}
	err = c.Search.Validate()
	if err != nil {
		return fmt.Errorf("invalid search config: %w", err)
	}
	err = c.Overlay.Validate()
	if err != nil {
		return fmt.Errorf("invalid overlay config: %w", err)
	}
	_, err = c.Log.Level()
	if err != nil {
		return err
	}
	if c.Log.MaxSize < 1 {
		return errors.New("log max size must be positive")
	}
	return nil
}

// Write encodes c as YAML to w.
func (c Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	err := enc.Encode(c)
	if err != nil {
		return fmt.Errorf("could not encode config: %w", err)
	}
	return enc.Close()
}
