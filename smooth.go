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
	"sort"

	"github.com/ctessum/geom"
)

// maxSmoothVertices bounds the resampling done by Smooth.
const maxSmoothVertices = 100000

// Smooth returns l smoothed with a Gaussian kernel along its length.
// strength is the standard deviation of the kernel in length units.
// The line is resampled to a quarter of strength before smoothing and its
// endpoints do not move. strength <= 0 returns a copy of l.
func Smooth(l geom.LineString, strength float64) geom.LineString {
	if strength <= 0 || len(l) < 3 {
		o := make(geom.LineString, len(l))
		copy(o, l)
		return o
	}
	length := l.Length()
	h := math.Max(strength/4, length/maxSmoothVertices)
	d := DensifyLine(l, h)
	s := stations(d)
	o := make(geom.LineString, len(d))
	o[0], o[len(d)-1] = d[0], d[len(d)-1]
	window := 3 * strength
	lo, hi := 0, 0
	for i := 1; i < len(d)-1; i++ {
		for s[i]-s[lo] > window {
			lo++
		}
		for hi < len(d)-1 && s[hi+1]-s[i] <= window {
			hi++
		}
		var w, x, y float64
		for j := lo; j <= hi; j++ {
			ds := (s[j] - s[i]) / strength
			wj := math.Exp(-ds * ds / 2)
			w += wj
			x += wj * d[j].X
			y += wj * d[j].Y
		}
		o[i] = geom.Point{X: x / w, Y: y / w}
	}
	return o
}

// ChopEnds removes the parts of l that lie outside exterior before l first
// enters it and after l last leaves it. Lines that start and end inside
// exterior, or never cross its boundary, are returned unchanged.
func ChopEnds(l geom.LineString, exterior geom.Polygon) geom.LineString {
	if len(l) < 2 {
		return l
	}
	var cross []float64
	var s float64
	for i := 1; i < len(l); i++ {
		a, b := l[i-1], l[i]
		seg := dist(a, b)
		for _, r := range exterior {
			eachEdge(r, func(c, d geom.Point) {
				if t, _, ok := segmentIntersection(a, b, c, d); ok {
					cross = append(cross, s+t*seg)
				}
			})
		}
		s += seg
	}
	if len(cross) == 0 {
		return l
	}
	sort.Float64s(cross)
	from, to := 0., s
	if l[0].Within(exterior) == geom.Outside {
		from = cross[0]
	}
	if l[len(l)-1].Within(exterior) == geom.Outside {
		to = cross[len(cross)-1]
	}
	if to <= from {
		return l
	}
	return substring(l, from, to)
}

// substring returns the part of l between distances from and to.
func substring(l geom.LineString, from, to float64) geom.LineString {
	st := stations(l)
	o := geom.LineString{Interpolate(l, from)}
	for i, p := range l {
		if st[i] > from && st[i] < to {
			o = append(o, p)
		}
	}
	return append(o, Interpolate(l, to))
}
