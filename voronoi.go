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
	"io/ioutil"
	"math"
	"math/rand"
	"sort"

	"github.com/ctessum/geom"
	"github.com/pzsz/voronoi"
	"github.com/sirupsen/logrus"
)

// OpenVertex stands in for a vertex at infinity in Voronoi regions and
// ridges.
const OpenVertex = -1

// NoIsland disables the island flip in Labels and CollectCenterLines.
const NoIsland = -1

// ErrDegenerate is returned when a Voronoi diagram cannot be built from
// the given points.
var ErrDegenerate = errors.New("centerline: degenerate point set for Voronoi diagram")

// jitterScales are the site perturbations, relative to the extent of the
// point set, used in turn when the sweep fails on co-circular sites. The
// first attempt uses the sites as given.
var jitterScales = []float64{0, 1e-7, 1e-6, 1e-5}

// sweep computes a Voronoi diagram. It is a variable so that tests can
// replace it.
var sweep = voronoi.ComputeDiagram

// bboxScale sets how far beyond the point set, in multiples of its extent,
// the diagram is clipped. Vertices on the clipping box are treated as open.
const bboxScale = 10

// A RiverPoint is a vertex of the channel boundary labeled with the bank
// it belongs to.
type RiverPoint struct {
	geom.Point

	// Side is 1 or -1 depending on the bank.
	Side int

	// Interior is true for points on an island ring.
	Interior bool

	// Island is the index of the island ring, or NoIsland.
	Island int
}

// A Ridge is a Voronoi edge separating two regions.
type Ridge struct {
	Regions  [2]int
	Vertices [2]int
}

// Voronoi is a Voronoi diagram of a set of river points. It is not
// modified after construction.
type Voronoi struct {
	Points []RiverPoint

	// Vertices are the finite vertices of the diagram.
	Vertices []geom.Point

	// Regions holds one list of vertex indices per distinct input point.
	// Finite vertices are ordered counter-clockwise around the point and
	// OpenVertex, if present, comes first.
	Regions [][]int

	// PointRegion gives the region of each input point.
	PointRegion []int

	Ridges []Ridge

	regionPoint []int
	adjacent    [][]int
	shared      map[[2]int][]int

	log logrus.FieldLogger
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.Out = ioutil.Discard
	return l
}

// NewVoronoi computes the Voronoi diagram of points. The points are moved
// to their centroid before the diagram is computed and the vertices are
// moved back afterwards. Duplicate points share a region. log may be nil.
func NewVoronoi(points []RiverPoint, log logrus.FieldLogger) (*Voronoi, error) {
	if log == nil {
		log = discardLogger()
	}
	v := &Voronoi{
		Points:      points,
		PointRegion: make([]int, len(points)),
		shared:      make(map[[2]int][]int),
		log:         log,
	}
	if len(points) == 0 {
		return nil, ErrDegenerate
	}
	var cx, cy float64
	for _, p := range points {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(points))
	cy /= float64(len(points))

	siteRegion := make(map[voronoi.Vertex]int)
	var sites []voronoi.Vertex
	b := geom.NewBounds()
	for i, p := range points {
		s := voronoi.Vertex{X: p.X - cx, Y: p.Y - cy}
		r, ok := siteRegion[s]
		if !ok {
			r = len(sites)
			siteRegion[s] = r
			sites = append(sites, s)
			v.regionPoint = append(v.regionPoint, i)
			b.Extend(geom.NewBoundsPoint(geom.Point{X: s.X, Y: s.Y}))
		}
		v.PointRegion[i] = r
	}
	if len(sites) < 3 || collinear(sites) {
		log.WithField("sites", len(sites)).Error("too few distinct points for a Voronoi diagram")
		return nil, ErrDegenerate
	}

	span := math.Max(b.Max.X-b.Min.X, b.Max.Y-b.Min.Y)
	m := span * bboxScale
	bbox := voronoi.BBox{Xl: b.Min.X - m, Xr: b.Max.X + m, Yt: b.Min.Y - m, Yb: b.Max.Y + m}
	eps := span * 1e-9
	onBox := func(p voronoi.Vertex) bool {
		return math.Abs(p.X-bbox.Xl) < eps || math.Abs(p.X-bbox.Xr) < eps ||
			math.Abs(p.Y-bbox.Yt) < eps || math.Abs(p.Y-bbox.Yb) < eps
	}

	var d *voronoi.Diagram
	var cellRegion map[voronoi.Vertex]int
	var err error
	for _, scale := range jitterScales {
		d, cellRegion, err = computeDiagram(sites, bbox, scale*span)
		if err == nil {
			break
		}
		log.WithFields(logrus.Fields{
			"jitter": scale * span,
			"error":  err,
		}).Warn("Voronoi sweep failed; retrying with perturbed sites")
	}
	if err != nil {
		return nil, err
	}

	// Vertices closer than snap are merged, so that cells meeting at
	// co-circular sites share one vertex.
	snap := math.Max(eps, 1e-12)
	vertexIndex := make(map[[2]int64]int)
	index := func(p voronoi.Vertex) int {
		if onBox(p) {
			return OpenVertex
		}
		key := [2]int64{int64(math.Round(p.X / snap)), int64(math.Round(p.Y / snap))}
		i, ok := vertexIndex[key]
		if !ok {
			i = len(v.Vertices)
			vertexIndex[key] = i
			v.Vertices = append(v.Vertices, geom.Point{X: p.X + cx, Y: p.Y + cy})
		}
		return i
	}
	regionSets := make([]map[int]bool, len(sites))
	for i := range regionSets {
		regionSets[i] = make(map[int]bool)
	}
	for _, e := range d.Edges {
		if e.LeftCell == nil || e.RightCell == nil {
			continue
		}
		va, vb := index(e.Va.Vertex), index(e.Vb.Vertex)
		if va == vb && va != OpenVertex {
			continue
		}
		l, r := cellRegion[e.LeftCell.Site], cellRegion[e.RightCell.Site]
		v.Ridges = append(v.Ridges, Ridge{Regions: [2]int{l, r}, Vertices: [2]int{va, vb}})
		for _, reg := range []int{l, r} {
			regionSets[reg][va] = true
			regionSets[reg][vb] = true
		}
	}
	if len(v.Vertices) == 0 {
		log.WithField("sites", len(sites)).Error("Voronoi diagram has no finite vertices")
		return nil, ErrDegenerate
	}

	v.Regions = make([][]int, len(sites))
	for r, set := range regionSets {
		v.Regions[r] = v.orderRegion(set, points[v.regionPoint[r]].Point)
	}
	v.buildAdjacency()
	log.WithFields(logrus.Fields{
		"points":   len(points),
		"regions":  len(v.Regions),
		"vertices": len(v.Vertices),
	}).Debug("computed Voronoi diagram")
	return v, nil
}

// computeDiagram runs the sweep on a copy of sites moved by up to jitter
// in each direction. Sites are moved by a fixed pseudo-random sequence so
// that the result is reproducible. It returns the region of each cell
// site, and recovers from failures inside the sweep.
func computeDiagram(sites []voronoi.Vertex, bbox voronoi.BBox, jitter float64) (d *voronoi.Diagram, cellRegion map[voronoi.Vertex]int, err error) {
	rng := rand.New(rand.NewSource(1))
	in := make([]voronoi.Vertex, len(sites))
	cellRegion = make(map[voronoi.Vertex]int, len(sites))
	for i, s := range sites {
		if jitter > 0 {
			s.X += jitter * (2*rng.Float64() - 1)
			s.Y += jitter * (2*rng.Float64() - 1)
		}
		in[i] = s
		cellRegion[s] = i
	}
	defer func() {
		if r := recover(); r != nil {
			d, cellRegion, err = nil, nil, fmt.Errorf("%v: %v", ErrDegenerate, r)
		}
	}()
	return sweep(in, bbox, false), cellRegion, nil
}

// collinear reports whether all sites lie on one line.
func collinear(sites []voronoi.Vertex) bool {
	a := sites[0]
	var b voronoi.Vertex
	var far float64
	for _, s := range sites[1:] {
		if d := math.Hypot(s.X-a.X, s.Y-a.Y); d > far {
			b, far = s, d
		}
	}
	for _, s := range sites {
		cross := (b.X-a.X)*(s.Y-a.Y) - (b.Y-a.Y)*(s.X-a.X)
		if math.Abs(cross) > 1e-12*far*far {
			return false
		}
	}
	return true
}

// orderRegion sorts the vertex indices in set counter-clockwise around site.
func (v *Voronoi) orderRegion(set map[int]bool, site geom.Point) []int {
	o := make([]int, 0, len(set))
	open := false
	for i := range set {
		if i == OpenVertex {
			open = true
			continue
		}
		o = append(o, i)
	}
	angle := func(i int) float64 {
		p := v.Vertices[i]
		return math.Atan2(p.Y-site.Y, p.X-site.X)
	}
	sort.Slice(o, func(i, j int) bool {
		ai, aj := angle(o[i]), angle(o[j])
		if ai == aj {
			return o[i] < o[j]
		}
		return ai < aj
	})
	if open {
		o = append([]int{OpenVertex}, o...)
	}
	return o
}

// buildAdjacency finds the regions that share at least two vertices.
// The open vertex counts as a shared vertex.
func (v *Voronoi) buildAdjacency() {
	vertexRegions := make([][]int, len(v.Vertices))
	var openRegions []int
	for r, reg := range v.Regions {
		for _, i := range reg {
			if i == OpenVertex {
				openRegions = append(openRegions, r)
				continue
			}
			vertexRegions[i] = append(vertexRegions[i], r)
		}
	}
	for i, regs := range vertexRegions {
		for a := 0; a < len(regs); a++ {
			for b := a + 1; b < len(regs); b++ {
				key := pairKey(regs[a], regs[b])
				v.shared[key] = append(v.shared[key], i)
			}
		}
	}
	isOpen := make(map[int]bool, len(openRegions))
	for _, r := range openRegions {
		isOpen[r] = true
	}
	v.adjacent = make([][]int, len(v.Regions))
	for key, s := range v.shared {
		n := len(s)
		if isOpen[key[0]] && isOpen[key[1]] {
			n++
			v.shared[key] = append(s, OpenVertex)
		}
		if n >= 2 {
			v.adjacent[key[0]] = append(v.adjacent[key[0]], key[1])
			v.adjacent[key[1]] = append(v.adjacent[key[1]], key[0])
		}
	}
	for _, a := range v.adjacent {
		sort.Ints(a)
	}
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// Adjacent returns the regions that share a wall with region r.
func (v *Voronoi) Adjacent(r int) []int {
	return v.adjacent[r]
}

// Labels returns the side of each region, taken from the first input point
// in the region. Regions generated by points of island flipIsland get the
// opposite side. Labels does not modify v.
func (v *Voronoi) Labels(flipIsland int) []int {
	labels := make([]int, len(v.Regions))
	for r := range v.Regions {
		p := v.Points[v.regionPoint[r]]
		labels[r] = p.Side
		if flipIsland != NoIsland && p.Interior && p.Island == flipIsland {
			labels[r] = -p.Side
		}
	}
	return labels
}

// edges returns the vertex pairs of the finite ridges that separate regions
// with different labels, in ridge order. Ridges that run to infinity are
// left out.
func (v *Voronoi) edges(flipIsland int) [][2]int {
	labels := v.Labels(flipIsland)
	seen := make(map[[2]int]bool)
	var o [][2]int
	for _, rd := range v.Ridges {
		if labels[rd.Regions[0]] == labels[rd.Regions[1]] {
			continue
		}
		a, b := rd.Vertices[0], rd.Vertices[1]
		if a == OpenVertex || b == OpenVertex || a == b {
			continue
		}
		k := pairKey(a, b)
		if seen[k] {
			continue
		}
		seen[k] = true
		o = append(o, k)
	}
	return o
}

func (v *Voronoi) segments(edges [][2]int) []geom.LineString {
	o := make([]geom.LineString, len(edges))
	for i, e := range edges {
		o[i] = geom.LineString{v.Vertices[e[0]], v.Vertices[e[1]]}
	}
	return o
}

// CollectCenterLines returns the Voronoi walls that separate regions on
// opposite banks, merged into as few lines as possible. If flipIsland is
// not NoIsland, the points of that island are treated as belonging to the
// other bank. A result with more than one part means the centerline is
// disconnected.
func (v *Voronoi) CollectCenterLines(flipIsland int) Merged {
	m := MergeLines(v.segments(v.edges(flipIsland)))
	if _, ok := m.Single(); !ok {
		v.log.WithFields(logrus.Fields{
			"parts":  len(m),
			"island": flipIsland,
		}).Debug("centerline is not a single line")
	}
	return m
}

// AlternateLine returns the walls of the centerline computed with island
// flipped that are not part of the main centerline, merged into lines.
// This is the side channel on the far side of the island.
func (v *Voronoi) AlternateLine(island int) Merged {
	main := make(map[[2]int]bool)
	for _, e := range v.edges(NoIsland) {
		main[e] = true
	}
	var diff [][2]int
	for _, e := range v.edges(island) {
		if !main[e] {
			diff = append(diff, e)
		}
	}
	return MergeLines(v.segments(diff))
}

// Shapes returns the regions with at least three finite vertices as
// polygons. It is meant for plotting.
func (v *Voronoi) Shapes() geom.MultiPolygon {
	var o geom.MultiPolygon
	for _, reg := range v.Regions {
		var p geom.Path
		for _, i := range reg {
			if i != OpenVertex {
				p = append(p, v.Vertices[i])
			}
		}
		if len(p) >= 3 {
			o = append(o, geom.Polygon{p})
		}
	}
	return o
}
