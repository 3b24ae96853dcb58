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

package gridextract

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
	"gonum.org/v1/gonum/stat"
)

// RegionSeries is the aggregated time series for one region.
type RegionSeries struct {
	Region *Region

	// Mean holds the arithmetic mean of the grid variable over the
	// region's cells, one value per grid time step. It is NaN at time
	// steps where the region has no cells with valid data.
	Mean []float64

	// CellCount is the number of grid cells whose center lies inside
	// the region polygon.
	CellCount int

	// AreaKm2 is the approximate polygon area in square kilometers.
	AreaKm2 float64
}

// Aggregate computes the per-time-step mean of the grid variable over
// the cells whose center point lies inside the region polygon. A cell
// on the polygon edge is not counted. A region containing no cell
// centers is not an error: every mean is NaN and CellCount is zero.
func (g *Grid) Aggregate(r *Region) (*RegionSeries, error) {
	mask := g.mask(r.Geom)
	area, err := polygonArea(r.Geom)
	if err != nil {
		return nil, fmt.Errorf("gridextract: region %s: %v", r.Name, err)
	}
	nt := g.Data.Shape[0]
	o := &RegionSeries{
		Region:    r,
		Mean:      make([]float64, nt),
		CellCount: len(mask),
		AreaKm2:   area,
	}
	vals := make([]float64, 0, len(mask))
	for t := 0; t < nt; t++ {
		vals = vals[:0]
		for _, c := range mask {
			if v := g.Data.Get(t, c[0], c[1]); !math.IsNaN(v) {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			o.Mean[t] = math.NaN()
			continue
		}
		o.Mean[t] = stat.Mean(vals, nil)
	}
	return o, nil
}

// mask returns the (lat, lon) indices of the cells whose center is
// inside p. Candidates outside the polygon bounding box are rejected
// before the point-in-polygon test.
func (g *Grid) mask(p geom.Polygonal) [][2]int {
	b := p.Bounds()
	var mask [][2]int
	for j, y := range g.Lat {
		if y < b.Min.Y || y > b.Max.Y {
			continue
		}
		for i, x := range g.Lon {
			if x < b.Min.X || x > b.Max.X {
				continue
			}
			if (geom.Point{X: x, Y: y}).Within(p) == geom.Inside {
				mask = append(mask, [2]int{j, i})
			}
		}
	}
	return mask
}

// polygonArea returns the approximate area of p in square kilometers.
// p is in longitude/latitude coordinates; it is reprojected to an
// Albers equal-area projection centered on its own bounds before the
// planar area is taken.
func polygonArea(p geom.Polygonal) (float64, error) {
	b := p.Bounds()
	if b == nil || b.Max.Y < b.Min.Y {
		return 0, nil
	}
	lat0 := (b.Min.Y + b.Max.Y) / 2
	lon0 := (b.Min.X + b.Max.X) / 2
	h := b.Max.Y - b.Min.Y
	lat1, lat2 := b.Min.Y+h/6, b.Max.Y-h/6
	if lat2-lat1 < 1.e-6 { // Degenerate extent; any parallels bracketing lat0 work.
		lat1, lat2 = lat0-1, lat0+1
	}
	longlat, err := proj.Parse("+proj=longlat")
	if err != nil {
		panic(err)
	}
	aea, err := proj.Parse(fmt.Sprintf(
		"+proj=aea +lat_1=%g +lat_2=%g +lat_0=%g +lon_0=%g +x_0=0 +y_0=0 +a=6370997.000000 +b=6370997.000000 +units=m +no_defs",
		lat1, lat2, lat0, lon0))
	if err != nil {
		return 0, fmt.Errorf("parsing equal-area projection: %v", err)
	}
	ct, err := longlat.NewTransform(aea)
	if err != nil {
		return 0, fmt.Errorf("creating equal-area transform: %v", err)
	}
	pp, err := p.Transform(ct)
	if err != nil {
		return 0, fmt.Errorf("reprojecting polygon: %v", err)
	}
	pg, ok := pp.(geom.Polygonal)
	if !ok {
		return 0, fmt.Errorf("reprojected polygon is %T", pp)
	}
	return pg.Area() / 1.e6, nil
}
