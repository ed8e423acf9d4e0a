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
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// elevationVar is the name of the elevation variable in raster files.
const elevationVar = "elevation"

// DefaultNoData is the fill value written for cells without data.
const DefaultNoData = -9999.

// Raster is a north-up grid of elevations. Cell (j, i) covers x from
// X0+i*Dx to X0+(i+1)*Dx and y from Y0+j*Dy to Y0+(j+1)*Dy. Dy is usually
// negative, so that (X0, Y0) is the top-left corner. Cells without data
// hold NaN.
type Raster struct {
	X0, Y0 float64
	Dx, Dy float64

	// NoData is written in place of NaN by Write.
	NoData float64

	// Data has dimensions [ny, nx].
	Data *sparse.DenseArray
}

// NewRaster returns a raster with ny rows and nx columns, all without data.
func NewRaster(x0, y0, dx, dy float64, ny, nx int) *Raster {
	r := &Raster{X0: x0, Y0: y0, Dx: dx, Dy: dy, NoData: DefaultNoData, Data: sparse.ZerosDense(ny, nx)}
	for i := range r.Data.Elements {
		r.Data.Elements[i] = math.NaN()
	}
	return r
}

// Sample returns the value of the cell containing p, or NaN if p is
// outside of the grid or the cell has no data.
func (r *Raster) Sample(p geom.Point) float64 {
	i := int(math.Floor((p.X - r.X0) / r.Dx))
	j := int(math.Floor((p.Y - r.Y0) / r.Dy))
	if i < 0 || j < 0 || j >= r.Data.Shape[0] || i >= r.Data.Shape[1] {
		return math.NaN()
	}
	return r.Data.Get(j, i)
}

// Bounds returns the extent of the grid.
func (r *Raster) Bounds() *geom.Bounds {
	b := geom.NewBoundsPoint(geom.Point{X: r.X0, Y: r.Y0})
	b.Extend(geom.NewBoundsPoint(geom.Point{
		X: r.X0 + float64(r.Data.Shape[1])*r.Dx,
		Y: r.Y0 + float64(r.Data.Shape[0])*r.Dy,
	}))
	return b
}

func (r *Raster) finite() []float64 {
	var o []float64
	for _, v := range r.Data.Elements {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			o = append(o, v)
		}
	}
	return o
}

// Min returns the smallest value in the grid, or NaN if there is no data.
func (r *Raster) Min() float64 {
	v := r.finite()
	if len(v) == 0 {
		return math.NaN()
	}
	return floats.Min(v)
}

// Max returns the largest value in the grid, or NaN if there is no data.
func (r *Raster) Max() float64 {
	v := r.finite()
	if len(v) == 0 {
		return math.NaN()
	}
	return floats.Max(v)
}

// ReadRaster reads a raster from a NetCDF file with dimensions [y, x],
// global attributes x0, y0, dx and dy, and a variable named "elevation".
// Values equal to the variable's _FillValue attribute become NaN.
func ReadRaster(rw cdf.ReaderWriterAt) (*Raster, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("centerline: opening raster: %v", err)
	}
	r := &Raster{NoData: DefaultNoData}
	for name, v := range map[string]*float64{"x0": &r.X0, "y0": &r.Y0, "dx": &r.Dx, "dy": &r.Dy} {
		if *v, err = floatAttribute(f.Header.GetAttribute("", name)); err != nil {
			return nil, fmt.Errorf("centerline: raster attribute %s: %v", name, err)
		}
	}
	if r.Dx == 0 || r.Dy == 0 {
		return nil, fmt.Errorf("centerline: raster has zero cell size")
	}
	dims := f.Header.Lengths(elevationVar)
	if len(dims) != 2 {
		return nil, fmt.Errorf("centerline: raster variable %s has %d dimensions; it should have 2", elevationVar, len(dims))
	}

	rd := f.Reader(elevationVar, nil, nil)
	buf := rd.Zero(-1)
	if _, err = rd.Read(buf); err != nil {
		return nil, fmt.Errorf("centerline: reading raster: %v", err)
	}
	if r.Data, err = denseFrom(dims, buf); err != nil {
		return nil, fmt.Errorf("centerline: raster variable %s: %v", elevationVar, err)
	}

	if fill := f.Header.GetAttribute(elevationVar, "_FillValue"); fill != nil {
		if r.NoData, err = floatAttribute(fill); err != nil {
			return nil, fmt.Errorf("centerline: raster _FillValue: %v", err)
		}
		for i, v := range r.Data.Elements {
			if v == r.NoData || float64(float32(v)) == float64(float32(r.NoData)) {
				r.Data.Elements[i] = math.NaN()
			}
		}
	}
	return r, nil
}

// denseFrom copies a floating point buffer read from a file into a new
// array with the given dimensions.
func denseFrom(dims []int, buf interface{}) (*sparse.DenseArray, error) {
	n := 1
	for _, d := range dims {
		n *= d
	}
	o := sparse.ZerosDense(dims...)
	switch d := buf.(type) {
	case []float32:
		if len(d) != n {
			return nil, fmt.Errorf("dims are %v but array length is %d", dims, len(d))
		}
		for i, v := range d {
			o.Elements[i] = float64(v)
		}
	case []float64:
		if len(d) != n {
			return nil, fmt.Errorf("dims are %v but array length is %d", dims, len(d))
		}
		copy(o.Elements, d)
	default:
		return nil, fmt.Errorf("type %T should be floating point", buf)
	}
	return o, nil
}

func floatAttribute(a interface{}) (float64, error) {
	switch v := a.(type) {
	case []float64:
		if len(v) > 0 {
			return v[0], nil
		}
	case []float32:
		if len(v) > 0 {
			return float64(v[0]), nil
		}
	case nil:
		return 0, fmt.Errorf("missing")
	}
	return 0, fmt.Errorf("invalid type %T", a)
}

// Write writes r to NetCDF file w in the format read by ReadRaster.
func (r *Raster) Write(w *os.File) error {
	ny, nx := r.Data.Shape[0], r.Data.Shape[1]
	h := cdf.NewHeader([]string{"y", "x"}, []int{ny, nx})
	h.AddAttribute("", "comment", "elevation raster")
	h.AddAttribute("", "x0", []float64{r.X0})
	h.AddAttribute("", "y0", []float64{r.Y0})
	h.AddAttribute("", "dx", []float64{r.Dx})
	h.AddAttribute("", "dy", []float64{r.Dy})
	h.AddVariable(elevationVar, []string{"y", "x"}, []float32{0})
	h.AddAttribute(elevationVar, "_FillValue", []float32{float32(r.NoData)})
	h.AddAttribute(elevationVar, "description", "ground elevation")
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("centerline: creating raster file: %v", err)
	}
	data32 := make([]float32, len(r.Data.Elements))
	for i, v := range r.Data.Elements {
		if math.IsNaN(v) {
			v = r.NoData
		}
		data32[i] = float32(v)
	}
	end := f.Header.Lengths(elevationVar)
	start := make([]int, len(end))
	if _, err = f.Writer(elevationVar, start, end).Write(data32); err != nil {
		return fmt.Errorf("centerline: writing raster: %v", err)
	}
	return cdf.UpdateNumRecs(w)
}
