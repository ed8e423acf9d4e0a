/*
Copyright © 2018 the Centerline authors.
This file is part of Centerline.

Centerline is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Centerline is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Centerline.  If not, see <http://www.gnu.org/licenses/>.
*/

package clutil

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom/proj"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/centerline"
	"github.com/spf13/cast"
)

// checkInputFile makes sure that a required input file is specified and
// expands any environment variables.
func checkInputFile(name, f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf("you need to specify the %s configuration variable (for example: %s=\"river.shp\")", name, name)
	}
	return os.ExpandEnv(f), nil
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expand any environment variables.
func checkOutputFile(name, f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf("you need to specify the %s configuration variable (for example: %s=\"output.shp\")", name, name)
	}
	f = os.ExpandEnv(f)
	if IsBlob(f) {
		url, err := url.Parse(f)
		if err != nil {
			return f, err
		}
		_, err = OpenBucket(context.TODO(), url.Scheme+"://"+url.Host)
		if err != nil {
			return f, fmt.Errorf("centerline: error when checking %s location: %v", name, err)
		}
		return f, nil
	}
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("centerline: the %s directory doesn't exist: %v", name, err)
	}
	return f, nil
}

// checkOptionalOutputFile is like checkOutputFile but allows f to be empty.
func checkOptionalOutputFile(name, f string) (string, error) {
	if f == "" {
		return "", nil
	}
	return checkOutputFile(name, f)
}

// summaryFile returns the location of the run summary for the given
// output file.
func summaryFile(outputFile string) string {
	return strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".run.toml"
}

func positive(name string, v float64) error {
	if v <= 0 {
		return fmt.Errorf("centerline: %s must be greater than zero, but is %g", name, v)
	}
	return nil
}

func nonNegative(name string, v float64) error {
	if v < 0 {
		return fmt.Errorf("centerline: %s must not be negative, but is %g", name, v)
	}
	return nil
}

// CenterlineConfig creates a new centerline configuration from
// the given configuration information.
func CenterlineConfig(cfg *viper.Viper) (centerline.CenterlineConfig, error) {
	var c centerline.CenterlineConfig
	var err error
	if c.Density, err = cast.ToFloat64E(cfg.Get("Density")); err != nil {
		return c, fmt.Errorf("centerline: reading Density: %v", err)
	}
	if c.Smoothing, err = cast.ToFloat64E(cfg.Get("Smoothing")); err != nil {
		return c, fmt.Errorf("centerline: reading Smoothing: %v", err)
	}
	if c.BoundsBuffer, err = cast.ToFloat64E(cfg.Get("BoundsBuffer")); err != nil {
		return c, fmt.Errorf("centerline: reading BoundsBuffer: %v", err)
	}
	if err = nonNegative("Density", c.Density); err != nil {
		return c, err
	}
	if err = nonNegative("Smoothing", c.Smoothing); err != nil {
		return c, err
	}
	if err = positive("BoundsBuffer", c.BoundsBuffer); err != nil {
		return c, err
	}
	return c, nil
}

// CrossSectionConfig creates a new cross-section configuration from
// the given configuration information.
func CrossSectionConfig(cfg *viper.Viper) (centerline.CrossSectionConfig, error) {
	var c centerline.CrossSectionConfig
	var err error
	if c.StationSpacing, err = cast.ToFloat64E(cfg.Get("StationSpacing")); err != nil {
		return c, fmt.Errorf("centerline: reading StationSpacing: %v", err)
	}
	if c.SampleSpacing, err = cast.ToFloat64E(cfg.Get("SampleSpacing")); err != nil {
		return c, fmt.Errorf("centerline: reading SampleSpacing: %v", err)
	}
	if err = positive("StationSpacing", c.StationSpacing); err != nil {
		return c, err
	}
	if err = positive("SampleSpacing", c.SampleSpacing); err != nil {
		return c, err
	}
	return c, nil
}

type centerlineIn struct {
	River, Thalweg, Islands, IslandField string
	Centerline, PNG                      string
}

func centerlineInputs(cfg *viper.Viper) (*centerlineIn, error) {
	in := &centerlineIn{IslandField: cfg.GetString("IslandField")}
	var err error
	if in.River, err = checkInputFile("River", cfg.GetString("River")); err != nil {
		return nil, err
	}
	if in.Thalweg, err = checkInputFile("Thalweg", cfg.GetString("Thalweg")); err != nil {
		return nil, err
	}
	in.Islands = os.ExpandEnv(cfg.GetString("Islands"))
	if in.Centerline, err = checkOutputFile("Centerline", cfg.GetString("Centerline")); err != nil {
		return nil, err
	}
	if in.PNG, err = checkOptionalOutputFile("PNG", cfg.GetString("PNG")); err != nil {
		return nil, err
	}
	return in, nil
}

type crossSectionIn struct {
	River, Islands, IslandField string
	Centerline, DEM             string
	CrossSections, PNG          string
}

func crossSectionInputs(cfg *viper.Viper) (*crossSectionIn, error) {
	in := &crossSectionIn{IslandField: cfg.GetString("IslandField")}
	var err error
	if in.River, err = checkInputFile("River", cfg.GetString("River")); err != nil {
		return nil, err
	}
	in.Islands = os.ExpandEnv(cfg.GetString("Islands"))
	if in.Centerline, err = checkInputFile("Centerline", cfg.GetString("Centerline")); err != nil {
		return nil, err
	}
	if in.DEM, err = checkInputFile("DEM", cfg.GetString("DEM")); err != nil {
		return nil, err
	}
	if in.CrossSections, err = checkOutputFile("CrossSections", cfg.GetString("CrossSections")); err != nil {
		return nil, err
	}
	if in.PNG, err = checkOptionalOutputFile("PNG", cfg.GetString("PNG")); err != nil {
		return nil, err
	}
	return in, nil
}

type exportIn struct {
	River, GeoJSON string
	Tolerance      float64
	OutputSR       *proj.SR
}

func exportInputs(cfg *viper.Viper) (*exportIn, error) {
	in := new(exportIn)
	var err error
	if in.River, err = checkInputFile("River", cfg.GetString("River")); err != nil {
		return nil, err
	}
	if in.GeoJSON, err = checkOutputFile("GeoJSON", cfg.GetString("GeoJSON")); err != nil {
		return nil, err
	}
	if in.Tolerance, err = cast.ToFloat64E(cfg.Get("Tolerance")); err != nil {
		return nil, fmt.Errorf("centerline: reading Tolerance: %v", err)
	}
	if err = nonNegative("Tolerance", in.Tolerance); err != nil {
		return nil, err
	}
	if in.OutputSR, err = spatialRef(cfg.GetString("OutputSR")); err != nil {
		return nil, err
	}
	return in, nil
}

// spatialRef parses a Proj4 or WKT spatial reference.
func spatialRef(s string) (*proj.SR, error) {
	sr, err := proj.Parse(os.ExpandEnv(s))
	if err != nil {
		return nil, fmt.Errorf("centerline: parsing spatial reference %q: %v", s, err)
	}
	return sr, nil
}
