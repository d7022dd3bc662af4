/*
DESCRIPTION
  setup.go provides the command line variable flag and logger setup shared
  by all lane-finder builds.

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

package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/lanefinder/config"
)

// varFlags collects repeated -var name=value flags.
type varFlags map[string]string

// String implements flag.Value.
func (v varFlags) String() string {
	pairs := make([]string, 0, len(v))
	for n, val := range v {
		pairs = append(pairs, n+"="+val)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

// Set implements flag.Value.
func (v varFlags) Set(s string) error {
	name, val, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("variable must be name=value, got %q", s)
	}
	v[name] = strings.TrimSpace(val)
	return nil
}

// newLogger returns a logger writing to w and to the rotated log file in
// c. An empty path logs to w alone. Messages reach w even if the log file
// cannot be written.
func newLogger(c config.Log, w io.Writer) (logging.Logger, error) {
	lvl, err := c.Level()
	if err != nil {
		return nil, err
	}
	if c.Path == "" {
		return logging.New(lvl, w, c.Suppress), nil
	}
	fileLog := &lumberjack.Logger{
		Filename:   c.Path,
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
	}
	// w comes first; MultiWriter stops at the first failing writer.
	return logging.New(lvl, io.MultiWriter(w, fileLog), c.Suppress), nil
}

// loadConfig returns the configuration at path, or the defaults if path is
// empty, with vars applied.
func loadConfig(path string, vars varFlags) (config.Config, error) {
	c := config.Default()
	if path != "" {
		var err error
		c, err = config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
	}
	err := config.Apply(&c, vars)
	if err != nil {
		return config.Config{}, err
	}
	return c, nil
}

// bootLogger is used before configuration is loaded.
func bootLogger() logging.Logger {
	return logging.New(int8(logging.Info), os.Stderr, false)
}
