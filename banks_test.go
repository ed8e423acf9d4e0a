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
	"reflect"
	"testing"

	"github.com/ctessum/geom"
)

func TestSplitClockwise(t *testing.T) {
	square := geom.Polygon{{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}}
	tests := []struct {
		name     string
		thalweg  geom.LineString
		reversed bool
		banks    [2]geom.Polygon
	}{
		{
			name:     "northward",
			thalweg:  geom.LineString{{X: 0.5, Y: 0}, {X: 0.5, Y: 1}},
			reversed: true,
			banks: [2]geom.Polygon{
				{{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0.5, Y: 1}, {X: 0.5, Y: 0}}},
				{{{X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0.5, Y: 0}, {X: 0.5, Y: 1}}},
			},
		},
		{
			name:     "southward",
			thalweg:  geom.LineString{{X: 0.5, Y: 1}, {X: 0.5, Y: 0}},
			reversed: false,
			banks: [2]geom.Polygon{
				{{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0.5, Y: 1}, {X: 0.5, Y: 0}}},
				{{{X: 0.5, Y: 0}, {X: 0.5, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}}},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			banks, reversed, err := SplitClockwise(square, test.thalweg)
			if err != nil {
				t.Fatal(err)
			}
			if reversed != test.reversed {
				t.Errorf("reversed: have %v, want %v", reversed, test.reversed)
			}
			if !reflect.DeepEqual(banks, test.banks) {
				t.Errorf("have %v, want %v", banks, test.banks)
			}
			for i, b := range banks {
				if a := ringArea(b[0]); different(a, 0.5) {
					t.Errorf("bank %d area: have %g, want 0.5", i, a)
				}
			}
			if banks[0].Bounds().Max.X != 0.5 {
				t.Errorf("bank 0 should be the west half: %v", banks[0])
			}
		})
	}
}

func TestSplitClockwiseErrors(t *testing.T) {
	square := rectRiver(1, 1)
	if _, _, err := SplitClockwise(square, geom.LineString{{X: 0, Y: 0}}); err != ErrNoThalweg {
		t.Errorf("have %v, want %v", err, ErrNoThalweg)
	}
	if _, _, err := SplitClockwise(square, geom.LineString{{X: 0, Y: 0}, {X: 0, Y: 0}}); err == nil {
		t.Error("closed thalweg should fail")
	}
	if _, _, err := SplitClockwise(nil, geom.LineString{{X: 0, Y: 0}, {X: 1, Y: 1}}); err == nil {
		t.Error("empty rectangle should fail")
	}
}

func TestExtendThalweg(t *testing.T) {
	rect := BufferedBounds(rectRiver(20, 2), 1)
	thalweg := geom.LineString{{X: 0, Y: 1}, {X: 10, Y: 1.5}, {X: 20, Y: 1}}
	have := ExtendThalweg(thalweg, rect)
	if len(have) != 5 {
		t.Fatalf("have %d vertices, want 5", len(have))
	}
	first, last := have[0], have[4]
	if different(first.X, -1) || different(first.Y, 0.95) {
		t.Errorf("first: have %v, want (-1, 0.95)", first)
	}
	if different(last.X, 21) || different(last.Y, 0.95) {
		t.Errorf("last: have %v, want (21, 0.95)", last)
	}
	if !reflect.DeepEqual(have[1:4], thalweg) {
		t.Errorf("interior: have %v, want %v", have[1:4], thalweg)
	}

	// A thalweg that already ends on the boundary is not extended there.
	onEdge := geom.LineString{{X: -1, Y: 1}, {X: 10, Y: 1}}
	if have := ExtendThalweg(onEdge, rect); len(have) != 3 {
		t.Errorf("on edge: have %v, want 3 vertices", have)
	}
}

func TestLabelPoints(t *testing.T) {
	c, err := NewChannel(rectRiver(20, 2), nil)
	if err != nil {
		t.Fatal(err)
	}
	rect := BufferedBounds(c.Polygon, 1)
	banks, _, err := SplitClockwise(rect, ExtendThalweg(geom.LineString{{X: 0, Y: 1}, {X: 20, Y: 1}}, rect))
	if err != nil {
		t.Fatal(err)
	}
	pts := LabelPoints(c, banks[0])
	if len(pts) != 4 {
		t.Fatalf("have %d points, want 4", len(pts))
	}
	for _, p := range pts {
		want := -1
		if p.Y == 0 {
			want = 1
		}
		if p.Side != want {
			t.Errorf("%v: side: have %d, want %d", p.Point, p.Side, want)
		}
		if p.Interior || p.Island != NoIsland {
			t.Errorf("%v: exterior point labeled as island", p.Point)
		}
	}
}
