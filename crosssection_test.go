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
	"testing"

	"github.com/ctessum/geom"
)

func TestTangentialLine(t *testing.T) {
	ch := rectRiver(20, 2)
	l := geom.LineString{{X: 1, Y: 1}, {X: 19, Y: 1}}
	xs, ok, throwaway := TangentialLine(4, l, ch)
	if !ok {
		t.Fatal("no cross-section")
	}
	if different(xs.Length(), 2) {
		t.Errorf("length: have %g, want 2", xs.Length())
	}
	if different(xs[0].X, 5) || different(xs[len(xs)-1].X, 5) {
		t.Errorf("cross-section should be at x=5: %v", xs)
	}
	if len(throwaway) != 0 {
		t.Errorf("throwaway: have %v, want nothing", throwaway)
	}

	// A station inside an island has no cross-section, and the parts on
	// either side of the island are thrown away.
	withIsland := append(rectRiver(20, 2), geom.Path{{X: 8, Y: 0.5}, {X: 12, Y: 0.5}, {X: 12, Y: 1.5}, {X: 8, Y: 1.5}})
	_, ok, throwaway = TangentialLine(8, l, withIsland)
	if ok {
		t.Error("station inside an island should have no cross-section")
	}
	if len(throwaway) != 2 {
		t.Errorf("throwaway: have %d parts, want 2", len(throwaway))
	}
}

func TestCrossSections(t *testing.T) {
	island := geom.Path{{X: 8, Y: 0.5}, {X: 12, Y: 0.5}, {X: 12, Y: 1.5}, {X: 8, Y: 1.5}}
	ch := &Channel{River: rectRiver(20, 2), Polygon: append(rectRiver(20, 2), island)}
	l := geom.LineString{{X: 1, Y: 1}, {X: 19, Y: 1}}

	xs := CrossSections(l, 3, true, ch, 4)
	wantStations := []float64{0, 4, 12, 16}
	if len(xs) != len(wantStations) {
		t.Fatalf("have %d cross-sections, want %d", len(xs), len(wantStations))
	}
	for i, x := range xs {
		if different(x.Station, wantStations[i]) {
			t.Errorf("cross-section %d station: have %g, want %g", i, x.Station, wantStations[i])
		}
		if x.LineID != 3 || !x.Main || !x.Valid {
			t.Errorf("cross-section %d: have %+v", i, x)
		}
	}

	// Side channel cross-sections that reach the exterior on both ends
	// span the main channel and are dropped.
	if side := CrossSections(l, 4, false, ch, 4); len(side) != 0 {
		t.Errorf("side channel: have %d cross-sections, want 0", len(side))
	}
	if none := CrossSections(l, 1, true, ch, 0); none != nil {
		t.Errorf("zero spacing: have %v, want nil", none)
	}
}
