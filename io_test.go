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

package centerline

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
)

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "centerline")
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

// writeShapes writes geometries with a single integer attribute.
func writeShapes(t *testing.T, path string, st goshp.ShapeType, field string, g []geom.Geom, vals []int) {
	e, err := shp.NewEncoderFromFields(path, st, goshp.NumberField(field, 10))
	if err != nil {
		t.Fatal(err)
	}
	for i, gg := range g {
		if err := e.EncodeFields(gg, vals[i]); err != nil {
			t.Fatal(err)
		}
	}
	e.Close()
}

func TestReadRiverThalweg(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	river := rectRiver(20, 2)
	riverPath := filepath.Join(dir, "river.shp")
	writeShapes(t, riverPath, goshp.POLYGON, "ID", []geom.Geom{river}, []int{1})
	have, err := ReadRiver(riverPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(have) != 1 || different(ringArea(have[0]), 40) {
		t.Errorf("river: have %v", have)
	}

	thalweg := geom.MultiLineString{
		{{X: 0, Y: 1}, {X: 10, Y: 1}},
		{{X: 10, Y: 1}, {X: 20, Y: 1.5}},
	}
	thalwegPath := filepath.Join(dir, "thalweg.shp")
	writeShapes(t, thalwegPath, goshp.POLYLINE, "ID", []geom.Geom{thalweg}, []int{1})
	l, err := ReadThalweg(thalwegPath)
	if err != nil {
		t.Fatal(err)
	}
	want := geom.LineString{{X: 0, Y: 1}, {X: 10, Y: 1}, {X: 20, Y: 1.5}}
	if !reflect.DeepEqual(l, want) {
		t.Errorf("thalweg: have %v, want %v", l, want)
	}

	broken := geom.MultiLineString{
		{{X: 0, Y: 1}, {X: 10, Y: 1}},
		{{X: 11, Y: 1}, {X: 20, Y: 1.5}},
	}
	brokenPath := filepath.Join(dir, "broken.shp")
	writeShapes(t, brokenPath, goshp.POLYLINE, "ID", []geom.Geom{broken}, []int{1})
	if _, err := ReadThalweg(brokenPath); err == nil {
		t.Error("disconnected thalweg should fail")
	}

	if _, err := ReadRiver(filepath.Join(dir, "missing.shp")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestReadIslands(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	_, islands := islandRiver()
	path := filepath.Join(dir, "islands.shp")
	writeShapes(t, path, goshp.POLYGON, "Keep",
		[]geom.Geom{islands[0].Polygon, islands[1].Polygon}, []int{1, 0})

	have, err := ReadIslands(path, "Keep")
	if err != nil {
		t.Fatal(err)
	}
	if len(have) != 2 {
		t.Fatalf("have %d islands, want 2", len(have))
	}
	if !have[0].Qualifying || have[1].Qualifying {
		t.Errorf("qualifying: have %v and %v, want true and false", have[0].Qualifying, have[1].Qualifying)
	}
	if different(ringArea(have[0].Polygon[0]), 4) {
		t.Errorf("island area: have %g, want 4", ringArea(have[0].Polygon[0]))
	}

	if _, err := ReadIslands(path, "Missing"); err == nil {
		t.Error("missing field should fail")
	}
}

func TestCenterlinesRoundTrip(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "centerline.shp")
	prj := []byte(`PROJCS["test"]`)

	lines := []Line{
		{MultiLineString: geom.MultiLineString{{{X: 0, Y: 1}, {X: 20, Y: 1}}}, ID: 1, Main: true, Island: NoIsland},
		{MultiLineString: geom.MultiLineString{{{X: 8, Y: 3}, {X: 12, Y: 3}}}, ID: 2, Island: 0},
	}
	if err := WriteCenterlines(path, prj, lines); err != nil {
		t.Fatal(err)
	}
	have, err := ReadCenterlines(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(have) != 2 {
		t.Fatalf("have %d lines, want 2", len(have))
	}
	for i, l := range have {
		if l.ID != lines[i].ID || l.Main != lines[i].Main {
			t.Errorf("line %d: have id %d main %v, want id %d main %v", i, l.ID, l.Main, lines[i].ID, lines[i].Main)
		}
		if !reflect.DeepEqual(l.MultiLineString, lines[i].MultiLineString) {
			t.Errorf("line %d: have %v, want %v", i, l.MultiLineString, lines[i].MultiLineString)
		}
	}
	if have := ReadPrj(path); string(have) != string(prj) {
		t.Errorf("prj: have %q, want %q", have, prj)
	}
	if have := ReadPrj(filepath.Join(dir, "other.shp")); have != nil {
		t.Errorf("missing prj: have %q, want nil", have)
	}
}

func TestWriteCrossSections(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "xs.shp")

	xs := []*CrossSection{
		{
			LineString: geom.LineString{{X: 5, Y: 0}, {X: 5, Y: 2}},
			LineID:     1, Main: true, Station: 4, Valid: true,
			Metrics: Metrics{XSLength: 2, WetWidth: 2, MaxDepth: 1, MeanDepth: 0.5, W2MxDepth: 2, W2AvDepth: 4},
		},
		{
			LineString: geom.LineString{{X: 9, Y: 2.5}, {X: 9, Y: 4}},
			LineID:     2, Station: 1.5,
			Metrics: Metrics{XSLength: 1.5, WetWidth: 1.5},
		},
	}
	if err := WriteCrossSections(path, nil, xs); err != nil {
		t.Fatal(err)
	}

	d, err := shp.NewDecoder(path)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	fields := append([]string{"ID", "LineID", "Main", "Station", "IsValid"}, MetricNames...)
	var i int
	for {
		g, f, more := d.DecodeRowFields(fields...)
		if !more {
			break
		}
		x := xs[i]
		if !reflect.DeepEqual(g, geom.MultiLineString{x.LineString}) {
			t.Errorf("row %d geometry: have %v, want %v", i, g, x.LineString)
		}
		checks := map[string]float64{
			"ID": float64(i), "LineID": float64(x.LineID), "Main": float64(b2i(x.Main)),
			"Station": x.Station, "IsValid": float64(b2i(x.Valid)),
		}
		for j, v := range x.Metrics.Values() {
			checks[MetricNames[j]] = v
		}
		for name, want := range checks {
			have, err := s2f(f[name])
			if err != nil {
				t.Fatal(err)
			}
			if different(have, want) {
				t.Errorf("row %d %s: have %g, want %g", i, name, have, want)
			}
		}
		i++
	}
	if err := d.Error(); err != nil {
		t.Fatal(err)
	}
	if i != 2 {
		t.Errorf("have %d rows, want 2", i)
	}
	if _, err := os.Stat(filepath.Join(dir, "xs.prj")); !os.IsNotExist(err) {
		t.Error("no prj file should be written without a projection")
	}
}
