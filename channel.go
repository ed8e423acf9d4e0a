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
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/geom"
)

var (
	// ErrTopology is returned when a polygon boolean operation fails,
	// usually because of small invalid islands.
	ErrTopology = errors.New("centerline: polygon operation failed; check for small invalid islands")

	// ErrNoRiver is returned when a river input holds no usable polygon.
	ErrNoRiver = errors.New("centerline: no river polygon")

	// ErrNoThalweg is returned when a thalweg input holds no usable line.
	ErrNoThalweg = errors.New("centerline: no thalweg line")
)

// An Island is a polygon inside the river. Only qualifying islands
// become holes in the channel.
type Island struct {
	geom.Polygon
	Qualifying bool
}

// A Channel holds the river polygon and the channel derived from it.
type Channel struct {
	// River is the river polygon as read, including any holes it
	// already has. Wet width is measured against it.
	River geom.Polygon

	// Polygon is the exterior of River minus the qualifying islands.
	// Polygon[0] is the exterior ring and the remaining rings are islands.
	Polygon geom.Polygon

	// Dropped is the number of rings produced by the island difference
	// that were neither the exterior nor inside it.
	Dropped int
}

// NewChannel creates a channel from a river polygon and a set of islands.
// Holes already present in river are ignored when building the channel
// polygon, and islands that are not qualifying are ignored entirely.
func NewChannel(river geom.Polygon, islands []Island) (c *Channel, err error) {
	if len(river) == 0 || len(river[0]) < 3 {
		return nil, ErrNoRiver
	}
	c = &Channel{River: river}
	exterior := geom.Polygon{river[0]}

	var holes geom.MultiPolygon
	for _, isl := range islands {
		if isl.Qualifying && len(isl.Polygon) > 0 {
			holes = append(holes, isl.Polygon)
		}
	}
	if len(holes) == 0 {
		c.Polygon = exterior
		return c, nil
	}

	defer func() {
		if r := recover(); r != nil {
			c, err = nil, fmt.Errorf("%v: %v", ErrTopology, r)
		}
	}()
	diff := exterior.Difference(holes)

	var rings []geom.Path
	for _, p := range diff.Polygons() {
		for _, r := range p {
			if len(r) >= 3 {
				rings = append(rings, r)
			}
		}
	}
	if len(rings) == 0 {
		return nil, ErrTopology
	}
	ext := 0
	for i, r := range rings {
		if ringArea(r) > ringArea(rings[ext]) {
			ext = i
		}
	}
	c.Polygon = geom.Polygon{rings[ext]}
	outer := geom.Polygon{rings[ext]}
	for i, r := range rings {
		if i == ext {
			continue
		}
		if ringInside(r, outer) {
			c.Polygon = append(c.Polygon, r)
		} else {
			c.Dropped++
		}
	}
	return c, nil
}

// Exterior returns the exterior ring of the channel as a polygon.
func (c *Channel) Exterior() geom.Polygon {
	return geom.Polygon{c.Polygon[0]}
}

// Islands returns the island rings of the channel.
func (c *Channel) Islands() []geom.Path {
	return c.Polygon[1:]
}

// Densify returns a copy of c whose channel polygon has been densified to
// spacing. The river polygon is shared.
func (c *Channel) Densify(spacing float64) *Channel {
	return &Channel{
		River:   c.River,
		Polygon: Densify(c.Polygon, spacing),
		Dropped: c.Dropped,
	}
}

// ringArea returns the unsigned area of the implicitly closed ring r.
func ringArea(r geom.Path) float64 {
	var a float64
	for i := range r {
		p, q := r[i], r[(i+1)%len(r)]
		a += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(a / 2)
}

// ringInside reports whether ring r lies inside poly, judged by the first
// vertex of r that is not on the edge of poly.
func ringInside(r geom.Path, poly geom.Polygon) bool {
	for _, p := range r {
		switch p.Within(poly) {
		case geom.Inside:
			return true
		case geom.Outside:
			return false
		}
	}
	return false
}
