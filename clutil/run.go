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
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/centerline"
	"github.com/spatialmodel/centerline/internal/hash"
	"github.com/spatialmodel/centerline/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"
)

const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 8 * vg.Inch
)

// runner holds the state shared by the steps of one command.
type runner struct {
	ctx     context.Context
	log     *logrus.Entry
	up      uploader
	summary summary
}

// runCommand sets up logging and the run summary for cmd, runs f, and
// uploads any outputs that go to blob storage.
func runCommand(cmd *cobra.Command, f func(r *runner) error) error {
	start := time.Now()
	r := &runner{ctx: context.Background()}
	settings := Cfg.AllSettings()
	r.summary = summary{
		RunID:   hash.Hash(settings),
		Command: cmd.Name(),
		Version: Version,
		Start:   start.Truncate(time.Second),
		Options: settings,
		Counts:  make(map[string]int),
	}

	logger, closeLog, err := newLogger(cmd.OutOrStderr(), r.up.maybeUpload(os.ExpandEnv(Cfg.GetString("LogFile"))), Cfg.GetBool("verbose"))
	if err != nil {
		return err
	}
	r.log = logger.WithFields(logrus.Fields{"run": r.summary.RunID, "cmd": cmd.Name()})

	if err := f(r); err != nil {
		r.log.WithError(err).Error("run failed")
		closeLog()
		return err
	}
	r.log.WithField("elapsed", time.Since(start)).Info("done")
	if err := closeLog(); err != nil {
		return err
	}
	return r.up.uploadOutput(r.ctx)
}

// writeSummary saves the run summary next to outputFile.
func (r *runner) writeSummary(outputFile string) error {
	r.summary.Elapsed = time.Since(r.summary.Start).String()
	return r.summary.write(r.up.maybeUpload(summaryFile(outputFile)))
}

func (r *runner) readIslands(path, field string) ([]centerline.Island, error) {
	if path == "" {
		return nil, nil
	}
	return centerline.ReadIslands(maybeDownload(r.ctx, path, r.log), field)
}

func (r *runner) centerline(cfg centerline.CenterlineConfig, in *centerlineIn) error {
	riverFile := maybeDownload(r.ctx, in.River, r.log)
	river, err := centerline.ReadRiver(riverFile)
	if err != nil {
		return err
	}
	thalweg, err := centerline.ReadThalweg(maybeDownload(r.ctx, in.Thalweg, r.log))
	if err != nil {
		return err
	}
	islands, err := r.readIslands(in.Islands, in.IslandField)
	if err != nil {
		return err
	}

	res, err := centerline.CenterlineRun(cfg, river, thalweg, islands, r.log)
	if err != nil {
		return err
	}
	lines := res.Lines()
	if err := centerline.WriteCenterlines(r.up.maybeUpload(in.Centerline), centerline.ReadPrj(riverFile), lines); err != nil {
		return err
	}
	r.log.WithFields(logrus.Fields{
		"file":       in.Centerline,
		"lines":      len(lines),
		"connected":  res.Connected,
		"length":     res.Main.Length(),
		"alternates": len(res.Alternates),
	}).Info("saved centerline")

	r.summary.Counts["Lines"] = len(lines)
	r.summary.Counts["MainParts"] = len(res.Main)
	r.summary.Counts["Alternates"] = len(res.Alternates)
	r.summary.Counts["Islands"] = len(res.Channel.Islands())
	r.summary.Counts["DroppedIslandRings"] = res.Channel.Dropped

	if in.PNG != "" {
		l := viz.Layers{
			Title:      "Centerline",
			Voronoi:    res.Voronoi.Shapes(),
			Banks:      res.Banks,
			River:      res.Channel.Polygon,
			Thalweg:    res.Thalweg,
			Centerline: res.Main,
		}
		for _, a := range res.Alternates {
			l.Alternates = append(l.Alternates, a.MultiLineString)
		}
		if err := r.plot(l, in.PNG); err != nil {
			return err
		}
	}
	return r.writeSummary(in.Centerline)
}

func (r *runner) crossSections(cfg centerline.CrossSectionConfig, in *crossSectionIn) error {
	riverFile := maybeDownload(r.ctx, in.River, r.log)
	river, err := centerline.ReadRiver(riverFile)
	if err != nil {
		return err
	}
	islands, err := r.readIslands(in.Islands, in.IslandField)
	if err != nil {
		return err
	}
	ch, err := centerline.NewChannel(river, islands)
	if err != nil {
		return err
	}
	lines, err := centerline.ReadCenterlines(maybeDownload(r.ctx, in.Centerline, r.log))
	if err != nil {
		return err
	}
	dem, err := r.readRaster(in.DEM)
	if err != nil {
		return err
	}
	r.log.WithFields(logrus.Fields{
		"min": dem.Min(),
		"max": dem.Max(),
	}).Debug("read elevation raster")

	xs, err := centerline.CrossSectionRun(cfg, ch, lines, dem, r.log)
	if err != nil {
		return err
	}
	flat := centerline.Flatten(xs)
	if err := centerline.WriteCrossSections(r.up.maybeUpload(in.CrossSections), centerline.ReadPrj(riverFile), flat); err != nil {
		return err
	}
	var invalid int
	for _, x := range flat {
		if !x.Valid {
			invalid++
		}
	}
	r.log.WithFields(logrus.Fields{
		"file":    in.CrossSections,
		"count":   len(flat),
		"invalid": invalid,
	}).Info("saved cross-sections")

	r.summary.Counts["Lines"] = len(lines)
	r.summary.Counts["CrossSections"] = len(flat)
	r.summary.Counts["Invalid"] = invalid

	if in.PNG != "" {
		l := viz.Layers{
			Title: "Cross-sections",
			River: ch.Polygon,
		}
		for _, line := range lines {
			if line.Main {
				l.Centerline = append(l.Centerline, line.MultiLineString...)
			} else {
				l.Alternates = append(l.Alternates, line.MultiLineString)
			}
		}
		for _, x := range flat {
			l.CrossSections = append(l.CrossSections, x.LineString)
			l.Valid = append(l.Valid, x.Valid)
		}
		if err := r.plot(l, in.PNG); err != nil {
			return err
		}
	}
	return r.writeSummary(in.CrossSections)
}

func (r *runner) readRaster(path string) (*centerline.Raster, error) {
	f, err := os.Open(maybeDownload(r.ctx, path, r.log))
	if err != nil {
		return nil, fmt.Errorf("centerline: opening DEM: %v", err)
	}
	defer f.Close()
	return centerline.ReadRaster(f)
}

func (r *runner) plot(l viz.Layers, file string) error {
	if err := viz.Plot(l, r.up.maybeUpload(file), plotWidth, plotHeight); err != nil {
		return err
	}
	r.log.WithField("file", file).Info("saved plot")
	return nil
}
