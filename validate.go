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
	"github.com/GaryBoone/GoStats/stats"
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// outlierStdevs is the number of standard deviations above the mean
// length at which a cross-section is rejected.
const outlierStdevs = 4

// ValueValidate marks as invalid the cross-sections of one centerline
// whose length is more than four population standard deviations above
// the mean length.
func ValueValidate(xs []*CrossSection) {
	if len(xs) == 0 {
		return
	}
	lengths := make([]float64, len(xs))
	for i, x := range xs {
		lengths[i] = x.Length()
	}
	limit := stats.StatsMean(lengths) + outlierStdevs*stats.StatsPopulationStandardDeviation(lengths)
	for i, x := range xs {
		if lengths[i] > limit {
			x.Valid = false
		}
	}
}

type indexedXS struct {
	geom.LineString
	line int
	xs   *CrossSection
}

// OverlapValidate marks as invalid both cross-sections of every pair that
// belong to different centerlines, are both valid, and intersect.
// Validity is read before any cross-section is marked, so the result does
// not depend on the order of lines.
func OverlapValidate(lines [][]*CrossSection) {
	tree := rtree.NewTree(25, 50)
	for i, l := range lines {
		for _, x := range l {
			if x.Valid {
				tree.Insert(&indexedXS{LineString: x.LineString, line: i, xs: x})
			}
		}
	}
	var overlapping []*CrossSection
	for i, l := range lines {
		for _, x := range l {
			if !x.Valid {
				continue
			}
			for _, c := range tree.SearchIntersect(x.Bounds()) {
				cx := c.(*indexedXS)
				if cx.line <= i {
					continue
				}
				if linesIntersect(x.LineString, cx.LineString) {
					overlapping = append(overlapping, x, cx.xs)
				}
			}
		}
	}
	for _, x := range overlapping {
		x.Valid = false
	}
}
