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
	"os"
	"path/filepath"
	"testing"
)

func TestCheckCountry(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"ita", "ITA", true},
		{" FRA ", "FRA", true},
		{"IT", "", false},
		{"ITALY", "", false},
		{"I1A", "", false},
		{"", "", false},
	}
	for _, test := range tests {
		got, err := checkCountry(test.in)
		if test.ok != (err == nil) {
			t.Errorf("checkCountry(%q): err = %v; want ok=%v", test.in, err, test.ok)
			continue
		}
		if test.ok && got != test.want {
			t.Errorf("checkCountry(%q) = %q; want %q", test.in, got, test.want)
		}
	}
}

func TestCheckAdmLevel(t *testing.T) {
	for _, l := range []int{0, 1, 2} {
		if _, err := checkAdmLevel(l); err != nil {
			t.Errorf("checkAdmLevel(%d): %v", l, err)
		}
	}
	for _, l := range []int{-1, 3, 10} {
		if _, err := checkAdmLevel(l); err == nil {
			t.Errorf("checkAdmLevel(%d): expected an error", l)
		}
	}
}

func TestCheckOutputFile(t *testing.T) {
	dir := t.TempDir()

	f, err := checkOutputFile(filepath.Join(dir, "out.parquet"))
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Ext(f) != ".parquet" {
		t.Errorf("output file = %s", f)
	}

	// The parquet extension is appended when missing.
	f, err = checkOutputFile(filepath.Join(dir, "out"))
	if err != nil {
		t.Fatal(err)
	}
	if f != filepath.Join(dir, "out.parquet") {
		t.Errorf("output file = %s; want the parquet extension appended", f)
	}

	if _, err := checkOutputFile(filepath.Join(dir, "nonexistent", "out.parquet")); err == nil {
		t.Error("expected an error for a missing output directory")
	}
	if _, err := checkOutputFile(""); err == nil {
		t.Error("expected an error for an empty output file")
	}
}

func TestCheckInputFile(t *testing.T) {
	dir := t.TempDir()
	fname := filepath.Join(dir, "in.nc")
	if err := os.WriteFile(fname, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := checkInputFile(fname); err != nil {
		t.Error(err)
	}
	if _, err := checkInputFile(filepath.Join(dir, "nonexistent.nc")); err == nil {
		t.Error("expected an error for a missing input file")
	}
	if _, err := checkInputFile(""); err == nil {
		t.Error("expected an error for an empty input file")
	}
}

func TestCheckVarName(t *testing.T) {
	if _, err := checkVarName("t2m"); err != nil {
		t.Error(err)
	}
	if _, err := checkVarName("  "); err == nil {
		t.Error("expected an error for an empty variable name")
	}
}
