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

package clutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/ctessum/geom/proj"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/centerline"
)

// feature is a GeoJSON feature.
type feature struct {
	Type       string                 `json:"type"`
	Geometry   *geojson.Geometry      `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// exportGeometry simplifies g by tolerance, if tolerance is greater than
// zero, and transforms it from src to dst.
func exportGeometry(g geom.Polygon, tolerance float64, src, dst *proj.SR) (geom.Geom, error) {
	var out geom.Geom = g
	if tolerance > 0 {
		out = g.Simplify(tolerance)
	}
	trans, err := src.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("centerline: creating transform: %v", err)
	}
	out, err = out.Transform(trans)
	if err != nil {
		return nil, fmt.Errorf("centerline: transforming river: %v", err)
	}
	return out, nil
}

func (r *runner) export(in *exportIn) error {
	riverFile := maybeDownload(r.ctx, in.River, r.log)
	river, err := centerline.ReadRiver(riverFile)
	if err != nil {
		return err
	}
	prj := centerline.ReadPrj(riverFile)
	if prj == nil {
		return fmt.Errorf("centerline: the River shapefile needs a .prj file to be exported")
	}
	src, err := proj.Parse(string(prj))
	if err != nil {
		return fmt.Errorf("centerline: parsing River .prj: %v", err)
	}

	g, err := exportGeometry(river, in.Tolerance, src, in.OutputSR)
	if err != nil {
		return err
	}
	gj, err := geojson.ToGeoJSON(g)
	if err != nil {
		return fmt.Errorf("centerline: converting to GeoJSON: %v", err)
	}
	f := feature{
		Type:     "Feature",
		Geometry: gj,
		Properties: map[string]interface{}{
			"name":    strings.TrimSuffix(filepath.Base(in.River), filepath.Ext(in.River)),
			"area":    river.Area(),
			"islands": len(river) - 1,
		},
	}

	w, err := os.Create(r.up.maybeUpload(in.GeoJSON))
	if err != nil {
		return fmt.Errorf("centerline: creating GeoJSON file: %v", err)
	}
	if err := json.NewEncoder(w).Encode(f); err != nil {
		w.Close()
		return fmt.Errorf("centerline: writing GeoJSON: %v", err)
	}
	if err := w.Close(); err != nil {
		return err
	}
	r.log.WithFields(logrus.Fields{
		"file":      in.GeoJSON,
		"tolerance": in.Tolerance,
	}).Info("saved GeoJSON")
	r.summary.Counts["Features"] = 1
	return r.writeSummary(in.GeoJSON)
}
