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
	"fmt"
	"math"
	"sort"

	"github.com/ctessum/geom"
)

type walkKind int

const (
	corner walkKind = iota
	thalwegStart
	thalwegEnd
)

type walkPoint struct {
	geom.Point
	kind walkKind
}

// SplitClockwise splits rect into two bank polygons along thalweg, whose
// first and last points must lie on the boundary of rect. The corners of
// rect and the thalweg endpoints are walked clockwise around the centroid
// of rect; corners go to whichever bank is active and the active bank
// switches at each thalweg endpoint. The full thalweg is then spliced into
// both banks, forward into one and backward into the other.
//
// Points at the same angle keep the order corners, thalweg start, thalweg
// end. reversed is true when the walk meets the thalweg end before its start,
// in which case the splice directions are swapped.
func SplitClockwise(rect geom.Polygon, thalweg geom.LineString) (banks [2]geom.Polygon, reversed bool, err error) {
	if len(thalweg) < 2 {
		return banks, false, ErrNoThalweg
	}
	if len(rect) == 0 || len(rect[0]) < 3 {
		return banks, false, fmt.Errorf("centerline: SplitClockwise: rectangle has no exterior ring")
	}
	start, end := thalweg[0], thalweg[len(thalweg)-1]
	if start.Equals(end) {
		return banks, false, fmt.Errorf("centerline: SplitClockwise: thalweg starts and ends at the same point")
	}

	ring := rect[0]
	if ring[0].Equals(ring[len(ring)-1]) {
		ring = ring[:len(ring)-1]
	}
	pts := make([]walkPoint, 0, len(ring)+2)
	for _, p := range ring {
		pts = append(pts, walkPoint{Point: p, kind: corner})
	}
	pts = append(pts, walkPoint{Point: start, kind: thalwegStart}, walkPoint{Point: end, kind: thalwegEnd})

	c := ringCentroid(ring)
	angle := func(p geom.Point) float64 { return math.Atan2(p.X-c.X, p.Y-c.Y) }
	sort.SliceStable(pts, func(i, j int) bool { return angle(pts[i].Point) < angle(pts[j].Point) })

	var shape [2]geom.Path
	var insert [2]int
	active := 0
	foundStart := false
	for _, p := range pts {
		switch p.kind {
		case thalwegStart:
			insert[0], insert[1] = len(shape[0]), len(shape[1])
			active = 1 - active
			foundStart = true
		case thalwegEnd:
			active = 1 - active
			if !foundStart {
				reversed = true
			}
		default:
			shape[active] = append(shape[active], p.Point)
		}
	}

	fwd := geom.Path(thalweg)
	back := make(geom.Path, len(thalweg))
	for i, p := range thalweg {
		back[len(thalweg)-1-i] = p
	}
	if reversed {
		fwd, back = back, fwd
	}
	banks[0] = geom.Polygon{splice(shape[0], insert[0], fwd)}
	banks[1] = geom.Polygon{splice(shape[1], insert[1], back)}
	return banks, reversed, nil
}

// splice returns a copy of p with q inserted at index i.
func splice(p geom.Path, i int, q geom.Path) geom.Path {
	o := make(geom.Path, 0, len(p)+len(q))
	o = append(o, p[:i]...)
	o = append(o, q...)
	return append(o, p[i:]...)
}

// ringCentroid returns the area centroid of the implicitly closed ring r.
// Rings without area fall back to the vertex average.
func ringCentroid(r geom.Path) geom.Point {
	var a, cx, cy float64
	for i := range r {
		p, q := r[i], r[(i+1)%len(r)]
		cross := p.X*q.Y - q.X*p.Y
		a += cross
		cx += (p.X + q.X) * cross
		cy += (p.Y + q.Y) * cross
	}
	if a == 0 {
		var o geom.Point
		for _, p := range r {
			o.X += p.X / float64(len(r))
			o.Y += p.Y / float64(len(r))
		}
		return o
	}
	return geom.Point{X: cx / (3 * a), Y: cy / (3 * a)}
}

// ExtendThalweg returns thalweg with its first segment extended backward
// and its last segment extended forward to the boundary of rect, so that
// it can be used to split rect with SplitClockwise.
func ExtendThalweg(thalweg geom.LineString, rect geom.Polygon) geom.LineString {
	if len(thalweg) < 2 {
		return thalweg
	}
	n := len(thalweg)
	o := make(geom.LineString, 0, n+2)
	if p, ok := projToBoundary(geom.LineString{thalweg[1], thalweg[0]}, rect); ok {
		o = append(o, p)
	}
	o = append(o, thalweg...)
	if p, ok := projToBoundary(geom.LineString{thalweg[n-2], thalweg[n-1]}, rect); ok {
		o = append(o, p)
	}
	return o
}

// projToBoundary extends seg past its last point and returns the first
// place where the extension meets the boundary of rect. ok is false if the
// extension never meets the boundary or meets it at the last point of seg.
func projToBoundary(seg geom.LineString, rect geom.Polygon) (geom.Point, bool) {
	ext := Extrapolate(seg, 2*Diagonal(rect))
	best := math.Inf(1)
	for _, r := range rect {
		eachEdge(r, func(a, b geom.Point) {
			if t, _, ok := segmentIntersection(ext[0], ext[1], a, b); ok && t < best {
				best = t
			}
		})
	}
	if math.IsInf(best, 1) || best*dist(ext[0], ext[1]) < 1e-9 {
		return geom.Point{}, false
	}
	return lerp(ext[0], ext[1], best), true
}

// LabelPoints returns the vertices of the exterior and island rings of c,
// each labeled with side 1 if it lies inside bank and -1 otherwise.
func LabelPoints(c *Channel, bank geom.Polygon) []RiverPoint {
	var pts []RiverPoint
	side := func(p geom.Point) int {
		if p.Within(bank) == geom.Inside {
			return 1
		}
		return -1
	}
	for i, r := range c.Polygon {
		if len(r) == 0 {
			continue
		}
		if r[0].Equals(r[len(r)-1]) {
			r = r[:len(r)-1]
		}
		for _, p := range r {
			rp := RiverPoint{Point: p, Side: side(p), Island: NoIsland}
			if i > 0 {
				rp.Interior = true
				rp.Island = i - 1
			}
			pts = append(pts, rp)
		}
	}
	return pts
}
