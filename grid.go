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

// Package gridextract extracts per-region time series from gridded
// climate reanalysis data by averaging grid cells over administrative
// boundary polygons.
package gridextract

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Version is the version of this package.
const Version = "0.1.0"

// Grid holds one variable of a reanalysis dataset, fully loaded into
// memory. The entire dataset must fit in available memory; inputs are
// expected to be bounded extracts (one country's domain, a month-scale
// time window) rather than global multi-year files.
type Grid struct {
	// Variable is the name of the data variable, and Units its
	// "units" attribute, if any.
	Variable string
	Units    string

	// Data has shape (time, latitude, longitude).
	Data *sparse.DenseArray

	// Lat and Lon are the grid cell center coordinates.
	// Longitudes are on the -180–180 convention.
	Lat, Lon []float64

	// Time holds one timestamp per grid time step.
	Time []time.Time
}

// Coordinate and time axis names accepted in input files: ERA5 names
// first, then the COARDS short forms.
var (
	latNames  = []string{"latitude", "lat"}
	lonNames  = []string{"longitude", "lon"}
	timeNames = []string{"time", "valid_time"}
)

// ReadNetCDF reads the named variable from a classic-format NetCDF
// file (NetCDF 4 and greater not supported). The variable must have
// dimensions (time, latitude, longitude) or (latitude, longitude); in
// the latter case the result has a single time step. Cells equal to
// the _FillValue or missing_value attributes become NaN, and packed
// short-integer variables are unpacked using the scale_factor and
// add_offset attributes.
func ReadNetCDF(filename, varname string) (*Grid, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, &FileFormatError{Path: filename, Err: err}
	}
	defer f.Close()
	nc, err := cdf.Open(f)
	if err != nil {
		return nil, &FileFormatError{Path: filename, Err: err}
	}

	vars := nc.Header.Variables()
	latName, ok := findVar(vars, latNames)
	if !ok {
		return nil, &FileFormatError{Path: filename, Err: fmt.Errorf("no latitude coordinate variable (looked for %s)", strings.Join(latNames, ", "))}
	}
	lonName, ok := findVar(vars, lonNames)
	if !ok {
		return nil, &FileFormatError{Path: filename, Err: fmt.Errorf("no longitude coordinate variable (looked for %s)", strings.Join(lonNames, ", "))}
	}
	if _, ok := findVar(vars, []string{varname}); !ok {
		return nil, &VariableNotFoundError{Variable: varname, Available: dataVariables(nc, latName, lonName)}
	}

	lats, err := readVar(nc, latName)
	if err != nil {
		return nil, &FileFormatError{Path: filename, Err: err}
	}
	lons, err := readVar(nc, lonName)
	if err != nil {
		return nil, &FileFormatError{Path: filename, Err: err}
	}
	// ERA5 longitudes run 0–360; boundary polygons use -180–180.
	for i, x := range lons {
		if x > 180 {
			lons[i] = x - 360
		}
	}

	dims := nc.Header.Dimensions(varname)
	var times []time.Time
	switch len(dims) {
	case 3:
		if dims[1] != latName || dims[2] != lonName {
			return nil, &FileFormatError{Path: filename, Err: fmt.Errorf("variable %s has dimensions %v; want (time, %s, %s)", varname, dims, latName, lonName)}
		}
		times, err = readTimes(nc, dims[0])
		if err != nil {
			return nil, &FileFormatError{Path: filename, Err: err}
		}
	case 2:
		if dims[0] != latName || dims[1] != lonName {
			return nil, &FileFormatError{Path: filename, Err: fmt.Errorf("variable %s has dimensions %v; want (%s, %s)", varname, dims, latName, lonName)}
		}
		// A 2-d variable is a single implicit time step.
		if tn, ok := findVar(vars, timeNames); ok {
			if times, err = readTimes(nc, tn); err != nil {
				return nil, &FileFormatError{Path: filename, Err: err}
			}
		}
		if len(times) != 1 {
			times = []time.Time{{}}
		}
	default:
		return nil, &FileFormatError{Path: filename, Err: fmt.Errorf("variable %s has %d dimensions; want 2 or 3", varname, len(dims))}
	}

	data, err := readVar(nc, varname)
	if err != nil {
		return nil, &FileFormatError{Path: filename, Err: err}
	}
	nt, ny, nx := len(times), len(lats), len(lons)
	if len(data) != nt*ny*nx {
		return nil, &FileFormatError{Path: filename, Err: fmt.Errorf("variable %s has %d values; want %d×%d×%d", varname, len(data), nt, ny, nx)}
	}
	arr := sparse.ZerosDense(nt, ny, nx)
	copy(arr.Elements, data)

	g := &Grid{
		Variable: varname,
		Data:     arr,
		Lat:      lats,
		Lon:      lons,
		Time:     times,
	}
	if u, ok := attrString(nc, varname, "units"); ok {
		g.Units = u
	}
	return g, nil
}

func findVar(vars []string, names []string) (string, bool) {
	for _, n := range names {
		for _, v := range vars {
			if v == n {
				return n, true
			}
		}
	}
	return "", false
}

// dataVariables returns the names of the variables in nc that are
// gridded over (lat, lon), for use in error messages.
func dataVariables(nc *cdf.File, latName, lonName string) []string {
	var o []string
	for _, v := range nc.Header.Variables() {
		dims := nc.Header.Dimensions(v)
		n := len(dims)
		if n >= 2 && dims[n-2] == latName && dims[n-1] == lonName {
			o = append(o, v)
		}
	}
	return o
}

// readVar reads a whole numeric variable from nc as float64, applying
// the fill and packing attributes.
func readVar(nc *cdf.File, v string) ([]float64, error) {
	r := nc.Reader(v, nil, nil)
	dataI := r.Zero(-1)
	if _, err := r.Read(dataI); err != nil {
		return nil, fmt.Errorf("reading variable %s: %v", v, err)
	}
	var data []float64
	switch d := dataI.(type) {
	case []float64:
		data = d
	case []float32:
		data = make([]float64, len(d))
		for i, e := range d {
			data[i] = float64(e)
		}
	case []int32:
		data = make([]float64, len(d))
		for i, e := range d {
			data[i] = float64(e)
		}
	case []int16:
		data = make([]float64, len(d))
		for i, e := range d {
			data[i] = float64(e)
		}
	default:
		return nil, fmt.Errorf("variable %s has unsupported type %T", v, dataI)
	}

	// Fill values are compared against the raw (still packed) data.
	for _, attr := range []string{"_FillValue", "missing_value"} {
		if fill, ok := attrFloat(nc, v, attr); ok {
			for i, e := range data {
				if e == fill {
					data[i] = math.NaN()
				}
			}
		}
	}

	scale, hasScale := attrFloat(nc, v, "scale_factor")
	offset, hasOffset := attrFloat(nc, v, "add_offset")
	if hasScale || hasOffset {
		if !hasScale {
			scale = 1
		}
		for i, e := range data {
			if !math.IsNaN(e) {
				data[i] = e*scale + offset
			}
		}
	}
	return data, nil
}

// readTimes reads the time coordinate variable v and decodes it using
// its CF units attribute, e.g. "hours since 1900-01-01 00:00:00.0".
func readTimes(nc *cdf.File, v string) ([]time.Time, error) {
	if _, ok := findVar(nc.Header.Variables(), []string{v}); !ok {
		return nil, fmt.Errorf("no time coordinate variable %s", v)
	}
	units, ok := attrString(nc, v, "units")
	if !ok {
		return nil, fmt.Errorf("time variable %s has no units attribute", v)
	}
	epoch, step, err := parseCFTimeUnits(units)
	if err != nil {
		return nil, fmt.Errorf("time variable %s: %v", v, err)
	}
	vals, err := readVar(nc, v)
	if err != nil {
		return nil, err
	}
	times := make([]time.Time, len(vals))
	for i, e := range vals {
		times[i] = epoch.Add(time.Duration(math.Round(e*step.Seconds())) * time.Second)
	}
	return times, nil
}

var cfTimeLayouts = []string{
	"2006-01-02 15:04:05.0",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-01-02T15:04:05Z",
}

// parseCFTimeUnits parses a CF time units string of the form
// "<unit> since <epoch>" into the epoch and the duration of one unit.
func parseCFTimeUnits(units string) (time.Time, time.Duration, error) {
	fields := strings.Fields(units)
	if len(fields) < 3 || !strings.EqualFold(fields[1], "since") {
		return time.Time{}, 0, fmt.Errorf("cannot parse time units %q", units)
	}
	var step time.Duration
	switch strings.TrimSuffix(strings.ToLower(fields[0]), "s") {
	case "second", "sec":
		step = time.Second
	case "minute", "min":
		step = time.Minute
	case "hour", "hr":
		step = time.Hour
	case "day":
		step = 24 * time.Hour
	default:
		return time.Time{}, 0, fmt.Errorf("unsupported time unit %q in %q", fields[0], units)
	}
	date := strings.Join(fields[2:], " ")
	for _, layout := range cfTimeLayouts {
		if epoch, err := time.Parse(layout, date); err == nil {
			return epoch.UTC(), step, nil
		}
	}
	return time.Time{}, 0, fmt.Errorf("cannot parse time epoch %q", date)
}

func attrFloat(nc *cdf.File, v, name string) (float64, bool) {
	a := nc.Header.GetAttribute(v, name)
	if a == nil {
		return 0, false
	}
	switch at := a.(type) {
	case []float64:
		if len(at) > 0 {
			return at[0], true
		}
	case []float32:
		if len(at) > 0 {
			return float64(at[0]), true
		}
	case []int32:
		if len(at) > 0 {
			return float64(at[0]), true
		}
	case []int16:
		if len(at) > 0 {
			return float64(at[0]), true
		}
	}
	return 0, false
}

func attrString(nc *cdf.File, v, name string) (string, bool) {
	if s, ok := nc.Header.GetAttribute(v, name).(string); ok && s != "" {
		return s, true
	}
	return "", false
}
