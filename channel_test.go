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

func TestNewChannel(t *testing.T) {
	river, islands := islandRiver()
	t.Run("islands", func(t *testing.T) {
		c, err := NewChannel(river, islands)
		if err != nil {
			t.Fatal(err)
		}
		if len(c.Islands()) != 1 {
			t.Fatalf("islands: have %d, want 1", len(c.Islands()))
		}
		if a := ringArea(c.Polygon[0]); different(a, 80) {
			t.Errorf("exterior area: have %g, want 80", a)
		}
		if a := ringArea(c.Islands()[0]); different(a, 4) {
			t.Errorf("island area: have %g, want 4", a)
		}
		if c.Dropped != 0 {
			t.Errorf("dropped: have %d, want 0", c.Dropped)
		}
		p := geom.Point{X: 10, Y: 2}
		if p.Within(c.Polygon) != geom.Outside {
			t.Errorf("%v is on the island and should be outside of the channel", p)
		}
	})
	t.Run("no qualifying islands", func(t *testing.T) {
		c, err := NewChannel(river, []Island{{Polygon: islands[0].Polygon}})
		if err != nil {
			t.Fatal(err)
		}
		if len(c.Polygon) != 1 {
			t.Errorf("rings: have %d, want 1", len(c.Polygon))
		}
	})
	t.Run("existing holes", func(t *testing.T) {
		holed := append(geom.Polygon{}, river...)
		holed = append(holed, islands[0].Polygon[0])
		c, err := NewChannel(holed, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(c.Polygon) != 1 || len(c.River) != 2 {
			t.Errorf("have %d channel rings and %d river rings, want 1 and 2", len(c.Polygon), len(c.River))
		}
	})
	t.Run("empty", func(t *testing.T) {
		if _, err := NewChannel(nil, nil); err != ErrNoRiver {
			t.Errorf("have %v, want %v", err, ErrNoRiver)
		}
	})
}

func TestChannelDensify(t *testing.T) {
	river, islands := islandRiver()
	c, err := NewChannel(river, islands)
	if err != nil {
		t.Fatal(err)
	}
	d := c.Densify(0.5)
	if len(d.Polygon) != len(c.Polygon) {
		t.Fatalf("rings: have %d, want %d", len(d.Polygon), len(c.Polygon))
	}
	for i := range d.Polygon {
		if len(d.Polygon[i]) <= len(c.Polygon[i]) {
			t.Errorf("ring %d was not densified", i)
		}
		if different(ringArea(d.Polygon[i]), ringArea(c.Polygon[i])) {
			t.Errorf("ring %d area changed", i)
		}
	}
}
