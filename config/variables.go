/*
DESCRIPTION
  variables.go provides named variables for tuning the lane-finder
  configuration, e.g. from the command line.

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
	"fmt"
	"sort"
	"strconv"
)

// Variables that may be set by name.
var variables = []struct {
	name   string
	typ    string
	update func(c *Config, v string) error
}{
	{
		name: "HistoryDepth",
		typ:  "uint",
		update: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("could not convert HistoryDepth variable value to int: %w", err)
			}
			c.Tracker.HistoryDepth = n
			return nil
		},
	},
	{
		name: "Segments",
		typ:  "uint",
		update: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("could not convert Segments variable value to int: %w", err)
			}
			c.Tracker.Segments = n
			return nil
		},
	},
	{
		name: "HistogramWindow",
		typ:  "uint",
		update: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("could not convert HistogramWindow variable value to int: %w", err)
			}
			c.Tracker.HistogramWindow = n
			return nil
		},
	},
	{
		name: "EdgeOffset",
		typ:  "uint",
		update: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("could not convert EdgeOffset variable value to int: %w", err)
			}
			c.Tracker.EdgeOffset = n
			return nil
		},
	},
	{
		name: "ParallelCurvature",
		typ:  "float",
		update: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("could not convert ParallelCurvature variable value to float: %w", err)
			}
			c.Tracker.Policy.Parallel[0] = f
			return nil
		},
	},
	{
		name: "ParallelSlope",
		typ:  "float",
		update: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("could not convert ParallelSlope variable value to float: %w", err)
			}
			c.Tracker.Policy.Parallel[1] = f
			return nil
		},
	},
	{
		name: "MinSeparation",
		typ:  "float",
		update: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("could not convert MinSeparation variable value to float: %w", err)
			}
			c.Tracker.Policy.MinSeparation = f
			return nil
		},
	},
	{
		name: "MaxSeparation",
		typ:  "float",
		update: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("could not convert MaxSeparation variable value to float: %w", err)
			}
			c.Tracker.Policy.MaxSeparation = f
			return nil
		},
	},
	{
		name: "Margin",
		typ:  "uint",
		update: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("could not convert Margin variable value to int: %w", err)
			}
			c.Search.Margin = n
			return nil
		},
	},
	{
		name: "Deviation",
		typ:  "float",
		update: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("could not convert Deviation variable value to float: %w", err)
			}
			c.Search.Deviation = f
			return nil
		},
	},
	{
		name: "OutlierBand",
		typ:  "uint",
		update: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("could not convert OutlierBand variable value to int: %w", err)
			}
			c.Search.Band = n
			return nil
		},
	},
	{
		name: "VerticalOffset",
		typ:  "uint",
		update: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("could not convert VerticalOffset variable value to int: %w", err)
			}
			c.Camera.VerticalOffset = n
			return nil
		},
	},
	{
		name: "Verbosity",
		typ:  "enum:debug,info,warning,error,fatal",
		update: func(c *Config, v string) error {
			if _, ok := levels[v]; !ok {
				return fmt.Errorf("invalid Verbosity variable value: %q", v)
			}
			c.Log.Verbosity = v
			return nil
		},
	},
}

// Variables returns the names and types of the tunable variables,
// formatted as name:type.
func Variables() []string {
	vars := make([]string, len(variables))
	for i, v := range variables {
		vars[i] = v.name + ":" + v.typ
	}
	return vars
}

// Apply sets the variables in vars on c, by name, and validates the
// result. c is unchanged if any variable is unknown or invalid.
func Apply(c *Config, vars map[string]string) error {
	next := *c
	names := make([]string, 0, len(vars))
	for n := range vars {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		i := index(n)
		if i < 0 {
			return fmt.Errorf("unknown variable: %s", n)
		}
		err := variables[i].update(&next, vars[n])
		if err != nil {
			return err
		}
	}
	err := next.Validate()
	if err != nil {
		return fmt.Errorf("invalid variables: %w", err)
	}
	*c = next
	return nil
}

func index(name string) int {
	for i, v := range variables {
		if v.name == name {
			return i
		}
	}
	return -1
}
