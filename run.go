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
	"sync"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
)

// CenterlineConfig holds the settings for CenterlineRun.
type CenterlineConfig struct {
	// Density is the vertex spacing the channel is densified to before
	// the Voronoi diagram is computed. 0 disables densification.
	Density float64

	// Smoothing is the smoothing strength in length units. 0 disables
	// smoothing.
	Smoothing float64

	// BoundsBuffer is the margin around the channel that the thalweg is
	// extended to.
	BoundsBuffer float64
}

// CenterlineResult holds a centerline and the intermediate geometry it
// was derived from.
type CenterlineResult struct {
	Channel *Channel

	// Densified is the channel after densification.
	Densified *Channel

	// Bounds is the buffered bounding rectangle of the channel.
	Bounds geom.Polygon

	// Thalweg is the thalweg extended to Bounds.
	Thalweg geom.LineString

	Banks   [2]geom.Polygon
	Voronoi *Voronoi

	// Main is the main centerline. It has more than one part if the
	// centerline could not be merged into a single line.
	Main geom.MultiLineString

	// Connected is false if Main has more than one part.
	Connected bool

	// Alternates are the side channels around islands.
	Alternates []Line
}

// Lines returns the main centerline with ID 1 followed by the side
// channels with increasing IDs.
func (r *CenterlineResult) Lines() []Line {
	o := []Line{{MultiLineString: r.Main, ID: 1, Main: true, Island: NoIsland}}
	for i, a := range r.Alternates {
		a.ID = i + 2
		o = append(o, a)
	}
	return o
}

// CenterlineRun computes the centerline of river. Only the qualifying
// islands are considered. log may be nil.
func CenterlineRun(cfg CenterlineConfig, river geom.Polygon, thalweg geom.LineString, islands []Island, log logrus.FieldLogger) (*CenterlineResult, error) {
	if log == nil {
		log = discardLogger()
	}
	r := new(CenterlineResult)
	var err error

	log.Info("combining exterior and qualifying islands")
	r.Channel, err = NewChannel(river, islands)
	if err != nil {
		return nil, err
	}
	if r.Channel.Dropped > 0 {
		log.WithField("rings", r.Channel.Dropped).Warn("dropped island rings outside of the river exterior")
	}
	r.Densified = r.Channel
	if cfg.Density > 0 {
		log.WithField("spacing", cfg.Density).Info("densifying channel")
		r.Densified = r.Channel.Densify(cfg.Density)
	}

	r.Bounds = BufferedBounds(r.Channel.Polygon, cfg.BoundsBuffer)
	r.Thalweg = ExtendThalweg(thalweg, r.Bounds)
	var reversed bool
	r.Banks, reversed, err = SplitClockwise(r.Bounds, r.Thalweg)
	if err != nil {
		return nil, err
	}
	if reversed {
		log.Debug("thalweg end comes before its start in the clockwise walk")
	}

	points := LabelPoints(r.Densified, r.Banks[0])
	log.WithField("points", len(points)).Info("calculating Voronoi polygons")
	r.Voronoi, err = NewVoronoi(points, log)
	if err != nil {
		return nil, err
	}

	exterior := r.Channel.Exterior()
	main := r.Voronoi.CollectCenterLines(NoIsland)
	line, ok := main.Single()
	if !ok {
		log.WithField("parts", len(main)).Warn("centerline is not a single line; skipping smoothing and side channels")
		for _, part := range main {
			r.Main = append(r.Main, ChopEnds(part, exterior))
		}
		return r, nil
	}
	r.Connected = true

	smoothMain := line
	if cfg.Smoothing > 0 {
		log.WithField("strength", cfg.Smoothing).Info("smoothing main line")
		smoothMain = Smooth(line, cfg.Smoothing)
	}

	for idx := range r.Densified.Islands() {
		ilog := log.WithField("island", idx)
		if _, ok := r.Voronoi.CollectCenterLines(idx).Single(); !ok {
			ilog.Warn("centerline around island is not a single line; skipping")
			continue
		}
		diff := r.Voronoi.AlternateLine(idx)
		if len(diff) == 0 {
			ilog.Debug("no side channel around island")
			continue
		}
		alt := Line{Island: idx}
		for _, part := range diff {
			if cfg.Smoothing > 0 {
				part = ChopEnds(ReconnectLine(smoothMain, Smooth(part, cfg.Smoothing)), exterior)
			}
			alt.MultiLineString = append(alt.MultiLineString, part)
		}
		ilog.WithField("length", alt.Length()).Info("found side channel")
		r.Alternates = append(r.Alternates, alt)
	}

	r.Main = geom.MultiLineString{ChopEnds(smoothMain, exterior)}
	return r, nil
}

// CrossSectionConfig holds the settings for CrossSectionRun.
type CrossSectionConfig struct {
	// StationSpacing is the distance between cross-sections along each
	// centerline.
	StationSpacing float64

	// SampleSpacing is the distance between elevation samples along each
	// cross-section.
	SampleSpacing float64
}

// CrossSectionRun builds cross-sections along every line, rejects length
// outliers on each line, rejects cross-sections that overlap between
// lines, and calculates the metrics of every cross-section against dem.
// The result holds one slice per line. log may be nil.
func CrossSectionRun(cfg CrossSectionConfig, ch *Channel, lines []Line, dem Sampler, log logrus.FieldLogger) ([][]*CrossSection, error) {
	if log == nil {
		log = discardLogger()
	}
	if cfg.StationSpacing <= 0 {
		return nil, fmt.Errorf("centerline: station spacing must be positive, have %g", cfg.StationSpacing)
	}

	log.WithField("lines", len(lines)).Info("building cross-sections")
	o := make([][]*CrossSection, len(lines))
	var wg sync.WaitGroup
	wg.Add(len(lines))
	for i, l := range lines {
		go func(i int, l Line) {
			defer wg.Done()
			for _, part := range l.MultiLineString {
				o[i] = append(o[i], CrossSections(part, l.ID, l.Main, ch, cfg.StationSpacing)...)
			}
		}(i, l)
	}
	wg.Wait()

	log.Info("testing cross-sections for validity")
	for i, xs := range o {
		ValueValidate(xs)
		log.WithFields(logrus.Fields{
			"line":    lines[i].ID,
			"count":   len(xs),
			"invalid": countInvalid(xs),
		}).Debug("length outliers")
	}
	OverlapValidate(o)

	log.Info("calculating metrics")
	for _, xs := range o {
		for _, x := range xs {
			CalcMetrics(x, ch.River, dem, cfg.SampleSpacing)
		}
	}
	for i, xs := range o {
		if n := countInvalid(xs); n > 0 {
			log.WithFields(logrus.Fields{"line": lines[i].ID, "invalid": n, "count": len(xs)}).Warn("invalid cross-sections")
		}
	}
	return o, nil
}

func countInvalid(xs []*CrossSection) int {
	var n int
	for _, x := range xs {
		if !x.Valid {
			n++
		}
	}
	return n
}

// Flatten returns the cross-sections of all lines in one slice.
func Flatten(xs [][]*CrossSection) []*CrossSection {
	var o []*CrossSection
	for _, l := range xs {
		o = append(o, l...)
	}
	return o
}
