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
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/centerline"
)

func TestCenterlineConfig(t *testing.T) {
	cfg := viper.New()
	cfg.Set("Density", "0.25")
	cfg.Set("Smoothing", 2)
	cfg.Set("BoundsBuffer", 10.0)
	have, err := CenterlineConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := centerline.CenterlineConfig{Density: 0.25, Smoothing: 2, BoundsBuffer: 10}
	if !reflect.DeepEqual(have, want) {
		t.Errorf("have %+v, want %+v", have, want)
	}

	for name, val := range map[string]interface{}{
		"Density":      -1.0,
		"Smoothing":    "lots",
		"BoundsBuffer": 0.0,
	} {
		t.Run(name, func(t *testing.T) {
			bad := viper.New()
			bad.Set("Density", 0.25)
			bad.Set("Smoothing", 0.0)
			bad.Set("BoundsBuffer", 10.0)
			bad.Set(name, val)
			if _, err := CenterlineConfig(bad); err == nil {
				t.Errorf("%s=%v should fail", name, val)
			}
		})
	}
}

func TestCrossSectionConfig(t *testing.T) {
	cfg := viper.New()
	cfg.Set("StationSpacing", 5.0)
	cfg.Set("SampleSpacing", 0.5)
	have, err := CrossSectionConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := centerline.CrossSectionConfig{StationSpacing: 5, SampleSpacing: 0.5}
	if !reflect.DeepEqual(have, want) {
		t.Errorf("have %+v, want %+v", have, want)
	}
	cfg.Set("SampleSpacing", 0.0)
	if _, err := CrossSectionConfig(cfg); err == nil {
		t.Error("zero sample spacing should fail")
	}
}

func TestCheckFiles(t *testing.T) {
	os.Setenv("CENTERLINE_TEST_DIR", "/tmp")
	defer os.Unsetenv("CENTERLINE_TEST_DIR")
	if have, err := checkInputFile("River", "${CENTERLINE_TEST_DIR}/river.shp"); err != nil || have != "/tmp/river.shp" {
		t.Errorf("have %s, %v; want /tmp/river.shp", have, err)
	}
	if _, err := checkInputFile("River", ""); err == nil {
		t.Error("empty input should fail")
	}
	if _, err := checkOutputFile("Centerline", "/no/such/directory/centerline.shp"); err == nil {
		t.Error("missing output directory should fail")
	}
	if have, err := checkOptionalOutputFile("PNG", ""); err != nil || have != "" {
		t.Errorf("have %q, %v; want empty", have, err)
	}
	if have := summaryFile("out/centerline.shp"); have != "out/centerline.run.toml" {
		t.Errorf("summary file: have %s", have)
	}
}

func TestSpatialRef(t *testing.T) {
	if _, err := spatialRef("+proj=longlat"); err != nil {
		t.Error(err)
	}
	if _, err := spatialRef("not a projection"); err == nil {
		t.Error("invalid projection should fail")
	}
}

func TestSetConfigEnvFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "centerline")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	envFile := filepath.Join(dir, "test.env")
	if err := ioutil.WriteFile(envFile, []byte("CENTERLINE_ENVFILE_TEST=loaded\n"), 0644); err != nil {
		t.Fatal(err)
	}
	defer os.Unsetenv("CENTERLINE_ENVFILE_TEST")
	resetConfig()
	Cfg.Set("envfile", envFile)
	defer Cfg.Set("envfile", "")
	if err := setConfig(); err != nil {
		t.Fatal(err)
	}
	if have := os.Getenv("CENTERLINE_ENVFILE_TEST"); have != "loaded" {
		t.Errorf("have %q, want loaded", have)
	}

	Cfg.Set("envfile", filepath.Join(dir, "missing.env"))
	if err := setConfig(); err == nil {
		t.Error("missing env file should fail")
	}
}

func TestSummary(t *testing.T) {
	dir, err := ioutil.TempDir("", "centerline")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	want := summary{
		RunID:   "0123456789abcdef",
		Command: "centerline",
		Version: Version,
		Start:   time.Date(2018, 6, 1, 12, 0, 0, 0, time.UTC),
		Elapsed: "1.5s",
		Options: map[string]interface{}{"river": "river.shp"},
		Counts:  map[string]int{"Lines": 2},
	}
	path := filepath.Join(dir, "centerline.run.toml")
	if err := want.write(path); err != nil {
		t.Fatal(err)
	}
	have, err := readSummary(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(*have, want) {
		t.Errorf("have %+v, want %+v", *have, want)
	}
}

func TestNewLogger(t *testing.T) {
	dir, err := ioutil.TempDir("", "centerline")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	var buf bytes.Buffer
	logFile := filepath.Join(dir, "log.txt")
	log, closeLog, err := newLogger(&buf, logFile, false)
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("hidden")
	log.WithField("lines", 2).Info("saved centerline")
	if err := closeLog(); err != nil {
		t.Fatal(err)
	}
	b, err := ioutil.ReadFile(logFile)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{buf.String(), string(b)} {
		if !strings.Contains(s, "saved centerline") || !strings.Contains(s, "lines=2") {
			t.Errorf("missing message: %s", s)
		}
		if strings.Contains(s, "hidden") {
			t.Errorf("debug message should not be logged: %s", s)
		}
	}
}
