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
	"gonum.org/v1/gonum/floats"
)

// MetricNames are the names of the cross-section metrics in the order
// returned by Metrics.Values.
var MetricNames = []string{"XSLength", "WetWidth", "DryWidth", "MaxDepth", "MeanDepth", "W2MxDepth", "W2AvDepth"}

// Metrics holds the measurements of one cross-section.
type Metrics struct {
	XSLength  float64 // total length
	WetWidth  float64 // length inside the river polygon
	DryWidth  float64 // length outside the river polygon
	MaxDepth  float64
	MeanDepth float64 // mean of the positive depths
	W2MxDepth float64 // wet width / max depth
	W2AvDepth float64 // wet width / mean depth
}

// Values returns the metrics in the order of MetricNames.
func (m Metrics) Values() []float64 {
	return []float64{m.XSLength, m.WetWidth, m.DryWidth, m.MaxDepth, m.MeanDepth, m.W2MxDepth, m.W2AvDepth}
}

// sanitize replaces NaN values with 0.
func (m *Metrics) sanitize() {
	for _, v := range []*float64{&m.XSLength, &m.WetWidth, &m.DryWidth, &m.MaxDepth, &m.MeanDepth, &m.W2MxDepth, &m.W2AvDepth} {
		if math.IsNaN(*v) {
			*v = 0
		}
	}
}

// A Sampler returns the value of a surface at a point, or NaN where the
// surface has no data.
type Sampler interface {
	Sample(geom.Point) float64
}

// CalcMetrics samples dem along xs every spacing and at its end and sets
// xs.Metrics. The reference elevation is the mean of the two end samples.
// If either end has no data, the cross-section is marked invalid and the
// depth metrics are zero. Wet width is measured against river, holes
// included.
func CalcMetrics(xs *CrossSection, river geom.Polygonal, dem Sampler, spacing float64) {
	length := xs.Length()
	var dists []float64
	if spacing > 0 {
		for k := 0; float64(k)*spacing < length; k++ {
			dists = append(dists, float64(k)*spacing)
		}
	} else {
		dists = append(dists, 0)
	}
	dists = append(dists, length)

	samples := make([]float64, len(dists))
	for i, d := range dists {
		samples[i] = dem.Sample(Interpolate(xs.LineString, d))
	}

	m := Metrics{XSLength: length}
	m.WetWidth = geom.MultiLineString(ClipLine(xs.LineString, river)).Length()
	m.DryWidth = math.Max(0, length-m.WetWidth)

	first, last := samples[0], samples[len(samples)-1]
	if math.IsNaN(first) || math.IsNaN(last) {
		xs.Valid = false
		m.sanitize()
		xs.Metrics = m
		return
	}
	ref := (first + last) / 2

	var depths, positive []float64
	for _, s := range samples {
		if math.IsNaN(s) {
			continue
		}
		depth := ref - s
		depths = append(depths, depth)
		if depth > 0 {
			positive = append(positive, depth)
		}
	}
	m.MaxDepth = floats.Max(depths)
	if len(positive) > 0 {
		m.MeanDepth = floats.Sum(positive) / float64(len(positive))
	}
	if m.MaxDepth != 0 {
		m.W2MxDepth = m.WetWidth / m.MaxDepth
	}
	if m.MeanDepth != 0 {
		m.W2AvDepth = m.WetWidth / m.MeanDepth
	}
	m.sanitize()
	xs.Metrics = m
}
