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
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
)

// A Line is a centerline as stored in a centerline shapefile.
type Line struct {
	geom.MultiLineString

	ID int

	// Main is true for the main channel and false for side channels.
	Main bool

	// Island is the island a side channel goes around, or NoIsland.
	Island int
}

func channelName(main bool) string {
	if main {
		return "Main"
	}
	return "Side"
}

func s2f(s string) (float64, error) {
	s = strings.Trim(s, "\x00* ")
	if s == "" {
		return 0., nil
	}
	return strconv.ParseFloat(s, 64)
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// polygons returns the polygons held by g.
func polygons(g geom.Geom) []geom.Polygon {
	switch t := g.(type) {
	case geom.Polygon:
		return []geom.Polygon{t}
	case geom.MultiPolygon:
		return []geom.Polygon(t)
	}
	return nil
}

// exteriorFirst returns a copy of p with its largest ring first.
func exteriorFirst(p geom.Polygon) geom.Polygon {
	o := make(geom.Polygon, 0, len(p))
	ext := 0
	for i, r := range p {
		if ringArea(r) > ringArea(p[ext]) {
			ext = i
		}
	}
	o = append(o, p[ext])
	for i, r := range p {
		if i != ext {
			o = append(o, r)
		}
	}
	return o
}

// ReadRiver returns the first polygon in the shapefile at path, with its
// largest ring first.
func ReadRiver(path string) (geom.Polygon, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("centerline: opening river shapefile: %v", err)
	}
	defer d.Close()
	for {
		g, _, more := d.DecodeRowFields()
		if !more {
			break
		}
		for _, p := range polygons(g) {
			if len(p) > 0 {
				return exteriorFirst(p), nil
			}
		}
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("centerline: reading river shapefile: %v", err)
	}
	return nil, ErrNoRiver
}

// ReadThalweg returns the first line in the shapefile at path. Lines made
// of several parts are merged end to end and must form a single line.
func ReadThalweg(path string) (geom.LineString, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("centerline: opening thalweg shapefile: %v", err)
	}
	defer d.Close()
	for {
		g, _, more := d.DecodeRowFields()
		if !more {
			break
		}
		var parts []geom.LineString
		switch t := g.(type) {
		case geom.LineString:
			parts = []geom.LineString{t}
		case geom.MultiLineString:
			parts = []geom.LineString(t)
		default:
			continue
		}
		if len(parts) == 1 {
			return parts[0], nil
		}
		l, ok := MergeLines(parts).Single()
		if !ok {
			return nil, fmt.Errorf("centerline: thalweg has %d parts that do not join into one line", len(parts))
		}
		return l, nil
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("centerline: reading thalweg shapefile: %v", err)
	}
	return nil, ErrNoThalweg
}

// ReadIslands reads island polygons from the shapefile at path. An island
// qualifies if its attribute field equals 1.
func ReadIslands(path, field string) ([]Island, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("centerline: opening islands shapefile: %v", err)
	}
	defer d.Close()
	var o []Island
	for {
		g, fields, more := d.DecodeRowFields(field)
		if !more || d.Error() != nil {
			break
		}
		v, err := s2f(fields[field])
		if err != nil {
			return nil, fmt.Errorf("centerline: islands shapefile field %s: %v", field, err)
		}
		for _, p := range polygons(g) {
			o = append(o, Island{Polygon: exteriorFirst(p), Qualifying: v == 1})
		}
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("centerline: reading islands shapefile: %v", err)
	}
	return o, nil
}

// ReadCenterlines reads the lines written by WriteCenterlines.
func ReadCenterlines(path string) ([]Line, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("centerline: opening centerline shapefile: %v", err)
	}
	defer d.Close()
	var o []Line
	for {
		g, fields, more := d.DecodeRowFields("ID", "Channel")
		if !more || d.Error() != nil {
			break
		}
		id, err := s2f(fields["ID"])
		if err != nil {
			return nil, fmt.Errorf("centerline: centerline shapefile field ID: %v", err)
		}
		l := Line{
			ID:     int(id),
			Main:   strings.TrimSpace(strings.Trim(fields["Channel"], "\x00")) == "Main",
			Island: NoIsland,
		}
		switch t := g.(type) {
		case geom.LineString:
			l.MultiLineString = geom.MultiLineString{t}
		case geom.MultiLineString:
			l.MultiLineString = t
		default:
			return nil, fmt.Errorf("centerline: centerline shapefile has geometry type %T", g)
		}
		o = append(o, l)
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("centerline: reading centerline shapefile: %v", err)
	}
	return o, nil
}

// WriteCenterlines writes lines to a shapefile at path. prj, if not empty,
// is written to the matching .prj file.
func WriteCenterlines(path string, prj []byte, lines []Line) error {
	e, err := shp.NewEncoderFromFields(path, goshp.POLYLINE,
		goshp.NumberField("ID", 10),
		goshp.StringField("Channel", 10),
		goshp.NumberField("Island", 10),
	)
	if err != nil {
		return fmt.Errorf("centerline: creating centerline shapefile: %v", err)
	}
	for _, l := range lines {
		if err := e.EncodeFields(l.MultiLineString, l.ID, channelName(l.Main), l.Island); err != nil {
			e.Close()
			return fmt.Errorf("centerline: writing centerline shapefile: %v", err)
		}
	}
	e.Close()
	return writePrj(path, prj)
}

// WriteCrossSections writes cross-sections and their metrics to a
// shapefile at path. prj, if not empty, is written to the matching .prj
// file.
func WriteCrossSections(path string, prj []byte, xs []*CrossSection) error {
	fields := []goshp.Field{
		goshp.NumberField("ID", 10),
		goshp.NumberField("LineID", 10),
		goshp.NumberField("Main", 1),
		goshp.FloatField("Station", 14, 4),
		goshp.NumberField("IsValid", 1),
	}
	for _, name := range MetricNames {
		fields = append(fields, goshp.FloatField(name, 18, 6))
	}
	e, err := shp.NewEncoderFromFields(path, goshp.POLYLINE, fields...)
	if err != nil {
		return fmt.Errorf("centerline: creating cross-section shapefile: %v", err)
	}
	for i, x := range xs {
		vals := []interface{}{i, x.LineID, b2i(x.Main), x.Station, b2i(x.Valid)}
		for _, v := range x.Metrics.Values() {
			vals = append(vals, v)
		}
		if err := e.EncodeFields(geom.MultiLineString{x.LineString}, vals...); err != nil {
			e.Close()
			return fmt.Errorf("centerline: writing cross-section shapefile: %v", err)
		}
	}
	e.Close()
	return writePrj(path, prj)
}

// ReadPrj returns the contents of the .prj file that goes with the
// shapefile at path, or nil if there is none.
func ReadPrj(path string) []byte {
	b, err := ioutil.ReadFile(strings.TrimSuffix(path, filepath.Ext(path)) + ".prj")
	if err != nil {
		return nil
	}
	return b
}

func writePrj(path string, prj []byte) error {
	if len(prj) == 0 {
		return nil
	}
	f, err := os.Create(strings.TrimSuffix(path, filepath.Ext(path)) + ".prj")
	if err != nil {
		return fmt.Errorf("centerline: creating prj file: %v", err)
	}
	if _, err = f.Write(prj); err != nil {
		f.Close()
		return fmt.Errorf("centerline: writing prj file: %v", err)
	}
	return f.Close()
}
