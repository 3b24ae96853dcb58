/*
Copyright © 2026 the GridExtract authors.
This file is part of GridExtract.

GridExtract is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GridExtract is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GridExtract.  If not, see <http://www.gnu.org/licenses/>.*/

package extractutil

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gridextract"
)

// Config holds the validated settings for one extraction run.
type Config struct {
	InputFile   string
	OutputFile  string
	VarName     string
	Country     string
	AdmLevel    int
	BoundaryAPI string
}

// Extract runs the extraction pipeline: fetch the boundary polygons,
// load the grid, aggregate each region, and write the time-series and
// metadata files.
func Extract(ctx context.Context, c Config) error {
	log := logrus.StandardLogger()

	log.WithFields(logrus.Fields{
		"country": c.Country,
		"level":   c.AdmLevel,
	}).Info("fetching administrative boundaries")
	client := gridextract.NewBoundaryClient(c.BoundaryAPI)
	boundaries, err := client.Boundaries(ctx, c.Country, c.AdmLevel)
	if err != nil {
		return err
	}
	if boundaries.Level != c.AdmLevel {
		log.Warnf("ADM%d boundaries for %s do not exist: switching to ADM%d",
			c.AdmLevel, c.Country, boundaries.Level)
	}
	log.WithField("regions", len(boundaries.Regions)).Info("fetched boundaries")

	log.WithFields(logrus.Fields{
		"file":     c.InputFile,
		"variable": c.VarName,
	}).Info("loading grid")
	grid, err := gridextract.ReadNetCDF(c.InputFile, c.VarName)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"timestamps": len(grid.Time),
		"cells":      len(grid.Lat) * len(grid.Lon),
		"units":      grid.Units,
	}).Info("loaded grid")

	series := make([]*gridextract.RegionSeries, 0, len(boundaries.Regions))
	for _, r := range boundaries.Regions {
		s, err := grid.Aggregate(r)
		if err != nil {
			return err
		}
		if s.CellCount == 0 {
			log.WithField("region", r.Name).Warn("region contains no grid cell centers; writing missing values")
		}
		log.WithFields(logrus.Fields{
			"region":   r.Name,
			"cells":    s.CellCount,
			"area_km2": s.AreaKm2,
		}).Info("aggregated region")
		series = append(series, s)
	}

	if err := gridextract.WriteSeries(c.OutputFile, grid.Time, series); err != nil {
		return err
	}
	statsFile := c.OutputFile + gridextract.StatsSuffix
	if err := gridextract.WriteStats(statsFile, series); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"series": c.OutputFile,
		"stats":  statsFile,
	}).Info("done")
	return nil
}
