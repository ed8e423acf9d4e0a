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
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/geom"
	goshp "github.com/jonas-p/go-shp"
)

type samplerFunc func(geom.Point) float64

func (f samplerFunc) Sample(p geom.Point) float64 { return f(p) }

// vShape is a valley with its lowest point at y=1 and its south bank
// lower than its north bank.
var vShape = samplerFunc(func(p geom.Point) float64 { return math.Abs(p.Y-1) + p.Y/4 })

func TestCenterlineRun(t *testing.T) {
	cfg := CenterlineConfig{Density: 0.5, BoundsBuffer: 1}
	thalweg := geom.LineString{{X: 0, Y: 1}, {X: 20, Y: 1}}
	r, err := CenterlineRun(cfg, rectRiver(20, 2), thalweg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Connected || len(r.Main) != 1 {
		t.Fatalf("centerline should be a single line: %v", r.Main)
	}
	l := r.Main[0]
	length := l.Length()
	if length < 18 || length > 20.5 {
		t.Errorf("length: have %g, want about 20", length)
	}
	mid := Interpolate(l, length/2)
	if math.Abs(mid.Y-1) > 0.05 || math.Abs(mid.X-10) > 1 {
		t.Errorf("midpoint: have %v, want about (10, 1)", mid)
	}
	for _, p := range l {
		if p.Within(r.Channel.Polygon) == geom.Outside {
			t.Errorf("centerline vertex %v is outside of the channel", p)
		}
	}
	if len(r.Alternates) != 0 {
		t.Errorf("alternates: have %d, want 0", len(r.Alternates))
	}
	lines := r.Lines()
	if len(lines) != 1 || lines[0].ID != 1 || !lines[0].Main {
		t.Errorf("lines: have %+v", lines)
	}
}

func TestCenterlineRunSmoothed(t *testing.T) {
	cfg := CenterlineConfig{Density: 0.5, Smoothing: 1, BoundsBuffer: 1}
	thalweg := geom.LineString{{X: 0, Y: 1}, {X: 20, Y: 1}}
	r, err := CenterlineRun(cfg, rectRiver(20, 2), thalweg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Connected || len(r.Main) != 1 {
		t.Fatalf("centerline should be a single line: %v", r.Main)
	}
	for _, p := range r.Main[0] {
		if p.Y < 0 || p.Y > 2 {
			t.Errorf("smoothed vertex %v is outside of the channel", p)
		}
	}
}

func TestCenterlineRunClosedClockwise(t *testing.T) {
	// Shapefile polygons have clockwise exterior rings that repeat their
	// first vertex at the end.
	ring := geom.Polygon{{{X: 0, Y: 0}, {X: 0, Y: 2}, {X: 20, Y: 2}, {X: 20, Y: 0}, {X: 0, Y: 0}}}
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "river.shp")
	writeShapes(t, path, goshp.POLYGON, "ID", []geom.Geom{rectRiver(20, 2)}, []int{1})
	fromFile, err := ReadRiver(path)
	if err != nil {
		t.Fatal(err)
	}

	for name, river := range map[string]geom.Polygon{
		"closed clockwise": ring,
		"shapefile":        fromFile,
	} {
		t.Run(name, func(t *testing.T) {
			cfg := CenterlineConfig{Density: 0.5, BoundsBuffer: 1}
			thalweg := geom.LineString{{X: 0, Y: 1}, {X: 20, Y: 1}}
			r, err := CenterlineRun(cfg, river, thalweg, nil, nil)
			if err != nil {
				t.Fatal(err)
			}
			if !r.Connected || len(r.Main) != 1 {
				t.Fatalf("centerline should be a single line: %v", r.Main)
			}
			l := r.Main[0]
			if length := l.Length(); length < 18 || length > 20.5 {
				t.Errorf("length: have %g, want about 20", length)
			}
			mid := Interpolate(l, l.Length()/2)
			if math.Abs(mid.Y-1) > 0.05 || math.Abs(mid.X-10) > 1 {
				t.Errorf("midpoint: have %v, want about (10, 1)", mid)
			}
		})
	}
}

func islandRiver() (geom.Polygon, []Island) {
	island := geom.Polygon{{{X: 8, Y: 1.5}, {X: 12, Y: 1.5}, {X: 12, Y: 2.5}, {X: 8, Y: 2.5}}}
	small := geom.Polygon{{{X: 15, Y: 2}, {X: 15.5, Y: 2}, {X: 15.5, Y: 2.5}, {X: 15, Y: 2.5}}}
	return rectRiver(20, 4), []Island{
		{Polygon: island, Qualifying: true},
		{Polygon: small, Qualifying: false},
	}
}

func TestCenterlineRunIsland(t *testing.T) {
	river, islands := islandRiver()
	cfg := CenterlineConfig{Density: 0.5, BoundsBuffer: 1}
	thalweg := geom.LineString{{X: 0, Y: 1}, {X: 20, Y: 1}}
	r, err := CenterlineRun(cfg, river, thalweg, islands, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Channel.Islands()) != 1 {
		t.Fatalf("islands: have %d, want 1", len(r.Channel.Islands()))
	}
	if !r.Connected {
		t.Fatalf("main centerline should be connected: %v", r.Main)
	}
	mid := Interpolate(r.Main[0], r.Main[0].Length()/2)
	if mid.Y > 1.5 {
		t.Errorf("main channel should pass south of the island: midpoint %v", mid)
	}
	if len(r.Alternates) != 1 {
		t.Fatalf("alternates: have %d, want 1", len(r.Alternates))
	}
	alt := r.Alternates[0]
	if alt.Island != 0 {
		t.Errorf("island: have %d, want 0", alt.Island)
	}
	if alt.Length() < 3 {
		t.Errorf("side channel length: have %g, want at least the island width", alt.Length())
	}
	var north bool
	for _, part := range alt.MultiLineString {
		for _, p := range part {
			if p.Y > 2.5 {
				north = true
			}
		}
	}
	if !north {
		t.Errorf("side channel should pass north of the island: %v", alt.MultiLineString)
	}
	lines := r.Lines()
	if len(lines) != 2 || lines[1].ID != 2 || lines[1].Main {
		t.Errorf("lines: have %+v", lines)
	}
}

func TestCrossSectionRun(t *testing.T) {
	ch, err := NewChannel(rectRiver(20, 2), nil)
	if err != nil {
		t.Fatal(err)
	}
	lines := []Line{{
		MultiLineString: geom.MultiLineString{{{X: 1, Y: 1}, {X: 19, Y: 1}}},
		ID:              1,
		Main:            true,
		Island:          NoIsland,
	}}
	xs, err := CrossSectionRun(CrossSectionConfig{StationSpacing: 4, SampleSpacing: 0.5}, ch, lines, vShape, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(xs) != 1 || len(xs[0]) != 5 {
		t.Fatalf("have %d cross-sections, want 5", len(Flatten(xs)))
	}
	for i, x := range xs[0] {
		if !x.Valid {
			t.Errorf("cross-section %d should be valid", i)
		}
		if different(x.Station, float64(4*i)) {
			t.Errorf("cross-section %d station: have %g, want %d", i, x.Station, 4*i)
		}
		m := x.Metrics
		for _, c := range []struct {
			name       string
			have, want float64
		}{
			{"XSLength", m.XSLength, 2},
			{"WetWidth", m.WetWidth, 2},
			{"DryWidth", m.DryWidth, 0},
			{"MaxDepth", m.MaxDepth, 1},
			{"MeanDepth", m.MeanDepth, 0.5625},
			{"W2MxDepth", m.W2MxDepth, 2},
			{"W2AvDepth", m.W2AvDepth, 2 / 0.5625},
		} {
			if math.Abs(c.have-c.want) > 1e-6 {
				t.Errorf("cross-section %d %s: have %g, want %g", i, c.name, c.have, c.want)
			}
		}
	}
}

func TestCrossSectionRunSpacing(t *testing.T) {
	ch, err := NewChannel(rectRiver(20, 2), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := CrossSectionRun(CrossSectionConfig{}, ch, nil, vShape, nil); err == nil {
		t.Error("zero station spacing should fail")
	}
}
