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

	"github.com/ctessum/geom"
)

const (
	// stationTolerance is how close a clipped probe must pass to its
	// station point to be kept as the cross-section.
	stationTolerance = 0.01

	// exteriorTouch is the distance below which a cross-section end is
	// considered to touch the channel exterior.
	exteriorTouch = 0.001
)

// A CrossSection is a segment across the channel at a station along a
// centerline.
type CrossSection struct {
	geom.LineString

	// LineID is the ID of the centerline the cross-section belongs to.
	LineID int

	// Main is true for cross-sections of the main channel.
	Main bool

	// Station is the distance along the centerline.
	Station float64

	Valid   bool
	Metrics Metrics
}

// TangentialLine builds a probe perpendicular to l at distance d along it,
// long enough to cross all of channel, and clips it to channel. The clipped
// part that passes within stationTolerance of the station point is returned
// as xs with ok set to true. All other clipped parts are returned in
// throwaway.
func TangentialLine(d float64, l geom.LineString, channel geom.Polygonal) (xs geom.LineString, ok bool, throwaway geom.MultiLineString) {
	i := BisectStation(d, l)
	if i < 0 {
		return nil, false, nil
	}
	p := Interpolate(l, d)
	a, b := tangentSegment(l, i)
	theta := math.Atan2(b.Y-a.Y, b.X-a.X) + math.Pi/2

	bounds := *channel.Bounds()
	bounds.Extend(geom.NewBoundsPoint(p))
	length := math.Hypot(bounds.Max.X-bounds.Min.X, bounds.Max.Y-bounds.Min.Y)
	dx, dy := length*math.Cos(theta), length*math.Sin(theta)
	probe := geom.LineString{{X: p.X - dx, Y: p.Y - dy}, {X: p.X + dx, Y: p.Y + dy}}

	for _, part := range ClipLine(probe, channel) {
		if !ok && lineDistance(p, part) <= stationTolerance {
			xs, ok = part, true
			continue
		}
		throwaway = append(throwaway, part)
	}
	return xs, ok, throwaway
}

// tangentSegment returns the endpoints of segment i of l, stepping to the
// nearest segment with non-zero length if segment i has none.
func tangentSegment(l geom.LineString, i int) (geom.Point, geom.Point) {
	for j := i; j >= 0; j-- {
		if !l[j].Equals(l[j+1]) {
			return l[j], l[j+1]
		}
	}
	for j := i + 1; j < len(l)-1; j++ {
		if !l[j].Equals(l[j+1]) {
			return l[j], l[j+1]
		}
	}
	return l[i], l[i+1]
}

// CrossSections walks l at the given spacing, starting at 0, and builds a
// cross-section of channel at every station where one exists. For side
// channels, cross-sections with both ends on the channel exterior cross
// the main channel too and are dropped.
func CrossSections(l geom.LineString, id int, main bool, channel *Channel, spacing float64) []*CrossSection {
	if spacing <= 0 || len(l) < 2 {
		return nil
	}
	length := l.Length()
	exterior := channel.Polygon[0]
	var o []*CrossSection
	for k := 0; ; k++ {
		d := float64(k) * spacing
		if d >= length {
			break
		}
		xs, ok, _ := TangentialLine(d, l, channel.Polygon)
		if !ok {
			continue
		}
		if !main && distToRing(xs[0], exterior) < exteriorTouch &&
			distToRing(xs[len(xs)-1], exterior) < exteriorTouch {
			continue
		}
		o = append(o, &CrossSection{
			LineString: xs,
			LineID:     id,
			Main:       main,
			Station:    d,
			Valid:      true,
		})
	}
	return o
}
