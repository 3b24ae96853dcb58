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
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/parquet/file"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"
)

func testSeries() ([]time.Time, []*RegionSeries) {
	epoch := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	times := []time.Time{epoch, epoch.Add(time.Hour), epoch.Add(2 * time.Hour)}
	series := []*RegionSeries{
		{
			Region:    &Region{Name: "North", ISO: "TS-NO"},
			Mean:      []float64{280.5, 281, 281.5},
			CellCount: 4,
			AreaKm2:   12345.678,
		},
		{
			Region:    &Region{Name: "South", ISO: "TS-SO"},
			Mean:      []float64{math.NaN(), math.NaN(), math.NaN()},
			CellCount: 0,
			AreaKm2:   17.2,
		},
	}
	return times, series
}

func readParquet(t *testing.T, fname string) arrow.Table {
	t.Helper()
	rdr, err := file.OpenParquetFile(fname, false)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { rdr.Close() })
	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		t.Fatal(err)
	}
	tbl, err := fr.ReadTable(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(tbl.Release)
	return tbl
}

func TestWriteSeries(t *testing.T) {
	times, series := testSeries()
	fname := filepath.Join(t.TempDir(), "out.parquet")
	if err := WriteSeries(fname, times, series); err != nil {
		t.Fatal(err)
	}

	tbl := readParquet(t, fname)
	if got, want := tbl.NumRows(), int64(len(times)); got != want {
		t.Errorf("rows = %d; want %d", got, want)
	}
	if got, want := tbl.NumCols(), int64(len(series)+1); got != want {
		t.Errorf("columns = %d; want %d", got, want)
	}
	wantNames := []string{"timestep", "North", "South"}
	for i, want := range wantNames {
		if got := tbl.Schema().Field(i).Name; got != want {
			t.Errorf("column %d = %s; want %s", i, got, want)
		}
	}

	ts := tbl.Column(0).Data().Chunk(0).(*array.Timestamp)
	for i, want := range times {
		if got := int64(ts.Value(i)); got != want.UnixMilli() {
			t.Errorf("timestep %d = %d; want %d", i, got, want.UnixMilli())
		}
	}
	north := tbl.Column(1).Data().Chunk(0).(*array.Float64)
	for i, want := range series[0].Mean {
		if north.IsNull(i) || north.Value(i) != want {
			t.Errorf("North at %d = %v; want %g", i, north.Value(i), want)
		}
	}
	south := tbl.Column(2).Data().Chunk(0).(*array.Float64)
	for i := 0; i < south.Len(); i++ {
		if !south.IsNull(i) {
			t.Errorf("South at %d = %g; want null", i, south.Value(i))
		}
	}
}

func TestWriteSeries_deterministic(t *testing.T) {
	times, series := testSeries()
	dir := t.TempDir()
	a := filepath.Join(dir, "a.parquet")
	b := filepath.Join(dir, "b.parquet")
	if err := WriteSeries(a, times, series); err != nil {
		t.Fatal(err)
	}
	if err := WriteSeries(b, times, series); err != nil {
		t.Fatal(err)
	}
	ab, err := os.ReadFile(a)
	if err != nil {
		t.Fatal(err)
	}
	bb, err := os.ReadFile(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ab, bb) {
		t.Error("outputs from identical inputs differ")
	}
}

func TestWriteStats(t *testing.T) {
	_, series := testSeries()
	fname := filepath.Join(t.TempDir(), "out.parquet.csv")
	if err := WriteStats(fname, series); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(fname)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"name", "ISO", "area_km2", "n"},
		{"North", "TS-NO", "12345.68", "4"},
		{"South", "TS-SO", "17.20", "0"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("stats = %v; want %v", rows, want)
	}
}

func TestWrite_ioError(t *testing.T) {
	times, series := testSeries()
	fname := filepath.Join(t.TempDir(), "nonexistent", "out.parquet")
	err := WriteSeries(fname, times, series)
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("WriteSeries error = %v; want IOError", err)
	}
	if err := WriteStats(fname+".csv", series); !errors.As(err, &ioErr) {
		t.Fatalf("WriteStats error = %v; want IOError", err)
	}
}
