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

// Package centerline derives a centerline skeleton and a series of
// cross-sections from a river channel polygon, and measures the
// cross-sections against an elevation surface.
package centerline

import (
	"math"
	"sort"

	"github.com/ctessum/geom"
)

// BufferedBounds returns the bounding rectangle of g expanded by margin
// on all sides. The ring is implicitly closed and runs counter-clockwise
// starting at the lower-left corner.
func BufferedBounds(g geom.Geom, margin float64) geom.Polygon {
	b := g.Bounds()
	x0, y0 := b.Min.X-margin, b.Min.Y-margin
	x1, y1 := b.Max.X+margin, b.Max.Y+margin
	return geom.Polygon{geom.Path{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
	}}
}

// Diagonal returns the length of the diagonal of the bounding box of g.
// It is long enough for a probe line through any point of g to cross
// all of g.
func Diagonal(g geom.Geom) float64 {
	b := g.Bounds()
	return math.Hypot(b.Max.X-b.Min.X, b.Max.Y-b.Min.Y)
}

// Extrapolate returns a segment that starts at the last point of seg and
// continues length further in the direction of seg's last segment.
func Extrapolate(seg geom.LineString, length float64) geom.LineString {
	p1, p2 := seg[len(seg)-2], seg[len(seg)-1]
	theta := math.Atan2(p2.Y-p1.Y, p2.X-p1.X)
	return geom.LineString{p2, {
		X: p2.X + length*math.Cos(theta),
		Y: p2.Y + length*math.Sin(theta),
	}}
}

// stations returns the cumulative distance along l at each of its vertices.
func stations(l geom.LineString) []float64 {
	s := make([]float64, len(l))
	for i := 1; i < len(l); i++ {
		s[i] = s[i-1] + dist(l[i-1], l[i])
	}
	return s
}

// bisectLinear is the number of candidate vertices below which
// BisectStation stops halving and walks back one vertex at a time.
const bisectLinear = 4

// BisectStation returns the index i of the segment [l[i], l[i+1]] that
// contains the point at distance d along l. d = 0 gives 0 and d at or beyond
// the length of l gives the last segment, len(l)-2. Segments of zero
// length are never returned for interior distances. It returns -1 if l has
// fewer than two vertices.
func BisectStation(d float64, l geom.LineString) int {
	n := len(l)
	if n < 2 {
		return -1
	}
	s := stations(l)
	if d >= s[n-1] {
		return n - 2
	}
	if d <= 0 {
		// Skip leading zero-length segments.
		i := 0
		for i < n-2 && s[i+1] <= 0 {
			i++
		}
		return i
	}
	// s[lo] <= d < s[hi] holds throughout.
	lo, hi := 0, n-1
	for hi-lo > bisectLinear {
		mid := lo + (hi-lo)/2
		if s[mid] <= d {
			lo = mid
		} else {
			hi = mid
		}
	}
	i := hi - 1
	for i > lo && s[i] > d {
		i--
	}
	return i
}

// Interpolate returns the point at distance d along l. d is clamped to the
// length of l.
func Interpolate(l geom.LineString, d float64) geom.Point {
	if len(l) == 0 {
		return geom.Point{X: math.NaN(), Y: math.NaN()}
	}
	if d <= 0 || len(l) == 1 {
		return l[0]
	}
	var s float64
	for i := 1; i < len(l); i++ {
		seg := dist(l[i-1], l[i])
		if s+seg >= d && seg > 0 {
			return lerp(l[i-1], l[i], (d-s)/seg)
		}
		s += seg
	}
	return l[len(l)-1]
}

// Project returns the distance along l of the point on l that is nearest
// to p.
func Project(l geom.LineString, p geom.Point) float64 {
	if len(l) < 2 {
		return 0
	}
	var s, best float64
	minDist := math.Inf(1)
	for i := 1; i < len(l); i++ {
		seg := dist(l[i-1], l[i])
		_, t, d := nearestOnSegment(p, l[i-1], l[i])
		if d < minDist {
			minDist = d
			best = s + t*seg
		}
		s += seg
	}
	return best
}

// ReconnectLine returns a copy of l whose first and last points are
// replaced by their nearest points on base. Interior points are kept.
func ReconnectLine(base, l geom.LineString) geom.LineString {
	o := make(geom.LineString, len(l))
	copy(o, l)
	if len(o) == 0 || len(base) == 0 {
		return o
	}
	o[0] = Interpolate(base, Project(base, o[0]))
	o[len(o)-1] = Interpolate(base, Project(base, o[len(o)-1]))
	return o
}

// DensifyLine returns a copy of l with evenly spaced vertices inserted so
// that no two consecutive vertices are farther apart than spacing. The
// original vertices are kept. spacing <= 0 returns a copy of l.
func DensifyLine(l geom.LineString, spacing float64) geom.LineString {
	if spacing <= 0 || len(l) < 2 {
		o := make(geom.LineString, len(l))
		copy(o, l)
		return o
	}
	o := geom.LineString{l[0]}
	for i := 1; i < len(l); i++ {
		a, b := l[i-1], l[i]
		n := int(math.Ceil(dist(a, b) / spacing))
		for k := 1; k < n; k++ {
			o = append(o, lerp(a, b, float64(k)/float64(n)))
		}
		o = append(o, b)
	}
	return o
}

// Densify densifies every ring of p, including the edge that closes each
// ring, so that no two consecutive vertices are farther apart than spacing.
func Densify(p geom.Polygon, spacing float64) geom.Polygon {
	o := make(geom.Polygon, len(p))
	for i, r := range p {
		if len(r) == 0 {
			continue
		}
		closed := r[0].Equals(r[len(r)-1])
		l := geom.LineString(r)
		if !closed {
			l = append(append(geom.LineString{}, r...), r[0])
		}
		d := DensifyLine(l, spacing)
		if !closed {
			d = d[:len(d)-1]
		}
		o[i] = geom.Path(d)
	}
	return o
}

// ClipLine returns the parts of l that lie inside or on the edge of poly.
// Holes in poly are excluded. Consecutive inside parts are joined.
func ClipLine(l geom.LineString, poly geom.Polygonal) geom.MultiLineString {
	var out geom.MultiLineString
	var cur geom.LineString
	flush := func() {
		if len(cur) > 1 {
			out = append(out, cur)
		}
		cur = nil
	}
	var rings []geom.Path
	for _, pp := range poly.Polygons() {
		for _, r := range pp {
			rings = append(rings, geom.Path(r))
		}
	}
	for i := 1; i < len(l); i++ {
		a, b := l[i-1], l[i]
		ts := []float64{0, 1}
		for _, r := range rings {
			eachEdge(r, func(c, d geom.Point) {
				if t, _, ok := segmentIntersection(a, b, c, d); ok {
					ts = append(ts, t)
				}
			})
		}
		sort.Float64s(ts)
		for k := 1; k < len(ts); k++ {
			t0, t1 := ts[k-1], ts[k]
			if t1-t0 < 1e-12 {
				continue
			}
			if lerp(a, b, (t0+t1)/2).Within(poly) == geom.Outside {
				flush()
				continue
			}
			if len(cur) == 0 {
				cur = append(cur, lerp(a, b, t0))
			}
			cur = append(cur, lerp(a, b, t1))
		}
	}
	flush()
	return out
}

// eachEdge calls f for every edge of the implicitly closed ring r.
// Zero-length edges are skipped.
func eachEdge(r geom.Path, f func(a, b geom.Point)) {
	for i := range r {
		a, b := r[i], r[(i+1)%len(r)]
		if a.Equals(b) {
			continue
		}
		f(a, b)
	}
}

// distToRing returns the distance from p to the nearest edge of r.
func distToRing(p geom.Point, r geom.Path) float64 {
	d := math.Inf(1)
	eachEdge(r, func(a, b geom.Point) {
		if _, _, dd := nearestOnSegment(p, a, b); dd < d {
			d = dd
		}
	})
	return d
}

// segmentIntersection returns the parameters t along ab and u along cd
// at which the two segments intersect. Parallel segments never intersect.
func segmentIntersection(a, b, c, d geom.Point) (t, u float64, ok bool) {
	rx, ry := b.X-a.X, b.Y-a.Y
	sx, sy := d.X-c.X, d.Y-c.Y
	den := rx*sy - ry*sx
	if den == 0 {
		return 0, 0, false
	}
	qx, qy := c.X-a.X, c.Y-a.Y
	t = (qx*sy - qy*sx) / den
	u = (qx*ry - qy*rx) / den
	const eps = 1e-12
	if t < -eps || t > 1+eps || u < -eps || u > 1+eps {
		return 0, 0, false
	}
	return clamp01(t), clamp01(u), true
}

// nearestOnSegment returns the point on segment ab nearest to p, its
// parameter along ab, and its distance to p.
func nearestOnSegment(p, a, b geom.Point) (geom.Point, float64, float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return a, 0, dist(p, a)
	}
	t := clamp01(((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2)
	q := lerp(a, b, t)
	return q, t, dist(p, q)
}

func lerp(a, b geom.Point, t float64) geom.Point {
	return geom.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

func dist(a, b geom.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func clamp01(t float64) float64 {
	return math.Max(0, math.Min(1, t))
}

// lineDistance returns the distance from p to the nearest point of l.
func lineDistance(p geom.Point, l geom.LineString) float64 {
	if len(l) == 1 {
		return dist(p, l[0])
	}
	d := math.Inf(1)
	for i := 1; i < len(l); i++ {
		if _, _, dd := nearestOnSegment(p, l[i-1], l[i]); dd < d {
			d = dd
		}
	}
	return d
}

// linesIntersect reports whether polylines a and b share at least one point.
func linesIntersect(a, b geom.LineString) bool {
	for i := 1; i < len(a); i++ {
		for j := 1; j < len(b); j++ {
			if _, _, ok := segmentIntersection(a[i-1], a[i], b[j-1], b[j]); ok {
				return true
			}
			if collinearOverlap(a[i-1], a[i], b[j-1], b[j]) {
				return true
			}
		}
	}
	return false
}

// collinearOverlap reports whether parallel segments ab and cd lie on the
// same line and overlap.
func collinearOverlap(a, b, c, d geom.Point) bool {
	rx, ry := b.X-a.X, b.Y-a.Y
	if rx*(d.Y-c.Y)-ry*(d.X-c.X) != 0 {
		return false
	}
	if rx*(c.Y-a.Y)-ry*(c.X-a.X) != 0 {
		return false
	}
	l2 := rx*rx + ry*ry
	if l2 == 0 {
		return dist(a, c) == 0 || dist(a, d) == 0
	}
	tc := ((c.X-a.X)*rx + (c.Y-a.Y)*ry) / l2
	td := ((d.X-a.X)*rx + (d.Y-a.Y)*ry) / l2
	return math.Max(tc, td) >= 0 && math.Min(tc, td) <= 1
}
