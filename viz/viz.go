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

// Package viz draws the intermediate and final geometry of a centerline
// run for visual inspection.
package viz

import (
	"fmt"
	"image/color"

	"github.com/ctessum/geom"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Layers holds the geometry to be drawn. Empty layers are skipped.
type Layers struct {
	Title string

	// Voronoi are the Voronoi regions, drawn first.
	Voronoi geom.MultiPolygon

	// Banks are the two halves of the buffered bounds.
	Banks [2]geom.Polygon

	River   geom.Polygon
	Thalweg geom.LineString

	Centerline geom.MultiLineString
	Alternates []geom.MultiLineString

	// CrossSections are drawn in green if valid and red otherwise.
	CrossSections []geom.LineString
	Valid         []bool
}

var (
	voronoiColor   = color.NRGBA{R: 180, G: 180, B: 180, A: 255}
	riverColor     = color.NRGBA{R: 40, G: 90, B: 200, A: 255}
	thalwegColor   = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	mainColor      = color.NRGBA{R: 220, G: 0, B: 0, A: 255}
	alternateColor = color.NRGBA{R: 240, G: 140, B: 0, A: 255}
	validColor     = color.NRGBA{R: 0, G: 150, B: 0, A: 255}
	invalidColor   = color.NRGBA{R: 200, G: 0, B: 200, A: 255}
	bankColors     = [2]color.Color{
		color.NRGBA{R: 255, G: 230, B: 230, A: 255},
		color.NRGBA{R: 230, G: 230, B: 255, A: 255},
	}
)

// Plot draws l and saves it to file. The image format is determined by
// the file extension.
func Plot(l Layers, file string, w, h vg.Length) error {
	p, err := New(l)
	if err != nil {
		return err
	}
	if err := p.Save(w, h, file); err != nil {
		return fmt.Errorf("viz: saving plot: %v", err)
	}
	return nil
}

// New returns a plot of l.
func New(l Layers) (*plot.Plot, error) {
	p, err := plot.New()
	if err != nil {
		return nil, fmt.Errorf("viz: %v", err)
	}
	p.Title.Text = l.Title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	for i, b := range l.Banks {
		if len(b) == 0 {
			continue
		}
		if err := addPolygon(p, b, bankColors[i], nil); err != nil {
			return nil, err
		}
	}
	for _, v := range l.Voronoi {
		if err := addPolygon(p, v, nil, voronoiColor); err != nil {
			return nil, err
		}
	}
	if len(l.River) > 0 {
		if err := addPolygon(p, l.River, nil, riverColor); err != nil {
			return nil, err
		}
	}
	if err := addLine(p, l.Thalweg, thalwegColor, 0.5); err != nil {
		return nil, err
	}
	for i, xs := range l.CrossSections {
		c := validColor
		if i < len(l.Valid) && !l.Valid[i] {
			c = invalidColor
		}
		if err := addLine(p, xs, c, 0.5); err != nil {
			return nil, err
		}
	}
	for _, a := range l.Alternates {
		for _, ls := range a {
			if err := addLine(p, ls, alternateColor, 1.5); err != nil {
				return nil, err
			}
		}
	}
	for _, ls := range l.Centerline {
		if err := addLine(p, ls, mainColor, 1.5); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// xys converts a path to plotter points.
func xys(path []geom.Point) plotter.XYs {
	o := make(plotter.XYs, len(path))
	for i, pt := range path {
		o[i].X = pt.X
		o[i].Y = pt.Y
	}
	return o
}

func addPolygon(p *plot.Plot, poly geom.Polygon, fill, line color.Color) error {
	rings := make([]plotter.XYer, len(poly))
	for i, r := range poly {
		rings[i] = xys(r)
	}
	pg, err := plotter.NewPolygon(rings...)
	if err != nil {
		return fmt.Errorf("viz: %v", err)
	}
	pg.Color = fill
	if line == nil {
		pg.LineStyle.Width = 0
	} else {
		pg.LineStyle = draw.LineStyle{Color: line, Width: vg.Points(0.5)}
	}
	p.Add(pg)
	return nil
}

func addLine(p *plot.Plot, l geom.LineString, c color.Color, width float64) error {
	if len(l) < 2 {
		return nil
	}
	ln, err := plotter.NewLine(xys(l))
	if err != nil {
		return fmt.Errorf("viz: %v", err)
	}
	ln.LineStyle = draw.LineStyle{Color: c, Width: vg.Points(width)}
	p.Add(ln)
	return nil
}
