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

import "github.com/ctessum/geom"

// Merged holds lines that have been merged end to end.
type Merged geom.MultiLineString

// Single returns the merged line and true if the merge produced exactly
// one line.
func (m Merged) Single() (geom.LineString, bool) {
	if len(m) != 1 {
		return nil, false
	}
	return m[0], true
}

// Length returns the total length of all parts of m.
func (m Merged) Length() float64 {
	return geom.MultiLineString(m).Length()
}

type mergeEdge struct {
	a, b    int
	visited bool
}

// MergeLines joins lines that meet end to end. Lines are split into
// segments, duplicate segments are removed, and segments are chained
// through every node that joins exactly two segments. Nodes where three or
// more segments meet end the lines that reach them, and closed loops come
// out as closed lines.
func MergeLines(lines []geom.LineString) Merged {
	nodeIndex := make(map[geom.Point]int)
	var nodes []geom.Point
	node := func(p geom.Point) int {
		i, ok := nodeIndex[p]
		if !ok {
			i = len(nodes)
			nodeIndex[p] = i
			nodes = append(nodes, p)
		}
		return i
	}
	var edges []*mergeEdge
	seen := make(map[[2]int]bool)
	var incident [][]*mergeEdge
	for _, l := range lines {
		for i := 1; i < len(l); i++ {
			a, b := node(l[i-1]), node(l[i])
			for len(incident) < len(nodes) {
				incident = append(incident, nil)
			}
			if a == b || seen[pairKey(a, b)] {
				continue
			}
			seen[pairKey(a, b)] = true
			e := &mergeEdge{a: a, b: b}
			edges = append(edges, e)
			incident[a] = append(incident[a], e)
			incident[b] = append(incident[b], e)
		}
	}

	var o Merged
	walk := func(start int, e *mergeEdge) {
		l := geom.LineString{nodes[start]}
		cur := start
		for e != nil {
			e.visited = true
			next := e.b
			if next == cur {
				next = e.a
			}
			l = append(l, nodes[next])
			cur = next
			e = nil
			if len(incident[cur]) != 2 {
				break
			}
			for _, ee := range incident[cur] {
				if !ee.visited {
					e = ee
				}
			}
		}
		o = append(o, l)
	}
	for n := range nodes {
		if len(incident[n]) == 2 {
			continue
		}
		for _, e := range incident[n] {
			if !e.visited {
				walk(n, e)
			}
		}
	}
	for _, e := range edges {
		if !e.visited {
			walk(e.a, e)
		}
	}
	return o
}
