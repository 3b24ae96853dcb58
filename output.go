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
	"encoding/csv"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/compress"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"
)

// StatsSuffix is appended to the time-series file name to form the
// companion metadata file name.
const StatsSuffix = ".csv"

// WriteSeries writes the aggregated time series to a Parquet file:
// a "timestep" column holding the grid timestamps (millisecond
// precision, UTC) and one nullable float64 column per region, in the
// given order. NaN means are written as nulls.
func WriteSeries(filename string, times []time.Time, series []*RegionSeries) error {
	fields := make([]arrow.Field, 0, len(series)+1)
	fields = append(fields, arrow.Field{Name: "timestep", Type: arrow.FixedWidthTypes.Timestamp_ms})
	for _, s := range series {
		fields = append(fields, arrow.Field{Name: s.Region.Name, Type: arrow.PrimitiveTypes.Float64, Nullable: true})
	}
	schema := arrow.NewSchema(fields, nil)

	bldr := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer bldr.Release()
	tb := bldr.Field(0).(*array.TimestampBuilder)
	for _, t := range times {
		tb.Append(arrow.Timestamp(t.UnixMilli()))
	}
	for k, s := range series {
		fb := bldr.Field(k + 1).(*array.Float64Builder)
		for _, v := range s.Mean {
			if math.IsNaN(v) {
				fb.AppendNull()
			} else {
				fb.Append(v)
			}
		}
	}
	rec := bldr.NewRecord()
	defer rec.Release()

	f, err := os.Create(filename)
	if err != nil {
		return &IOError{Path: filename, Err: err}
	}
	props := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithCreatedBy("gridextract v"+Version),
	)
	w, err := pqarrow.NewFileWriter(schema, f, props, pqarrow.DefaultWriterProps())
	if err != nil {
		f.Close()
		return &IOError{Path: filename, Err: err}
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		return &IOError{Path: filename, Err: err}
	}
	if err := w.Close(); err != nil {
		return &IOError{Path: filename, Err: err}
	}
	return nil
}

// WriteStats writes the per-region metadata file: one row per region
// with its name, ISO code, approximate area in square kilometers
// (rounded to two decimals) and grid cell count.
func WriteStats(filename string, series []*RegionSeries) error {
	f, err := os.Create(filename)
	if err != nil {
		return &IOError{Path: filename, Err: err}
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{"name", "ISO", "area_km2", "n"}); err != nil {
		f.Close()
		return &IOError{Path: filename, Err: err}
	}
	for _, s := range series {
		row := []string{
			s.Region.Name,
			s.Region.ISO,
			strconv.FormatFloat(math.Round(s.AreaKm2*100)/100, 'f', 2, 64),
			strconv.Itoa(s.CellCount),
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return &IOError{Path: filename, Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return &IOError{Path: filename, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Path: filename, Err: err}
	}
	return nil
}
