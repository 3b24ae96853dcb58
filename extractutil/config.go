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
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// checkInputFile makes sure that the input file is specified and
// exists, and expands any environment variables.
func checkInputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf("extract: you need to specify the input file (for example: --InputFile=era5.nc)")
	}
	f = os.ExpandEnv(f)
	if _, err := os.Stat(f); err != nil {
		return f, fmt.Errorf("extract: the InputFile doesn't exist: %v", err)
	}
	return f, nil
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, expands any environment variables, and appends the
// ".parquet" extension if it is missing.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf("extract: you need to specify the output file (for example: --OutputFile=out.parquet)")
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("extract: the OutputFile directory doesn't exist: %v", err)
	}
	if filepath.Ext(f) != ".parquet" {
		logrus.Warn("adding the parquet extension to the output file")
		f += ".parquet"
	}
	return f, nil
}

// checkVarName makes sure that the variable name is specified and
// expands any environment variables.
func checkVarName(v string) (string, error) {
	v = strings.TrimSpace(os.ExpandEnv(v))
	if v == "" {
		return "", fmt.Errorf("extract: you need to specify the data variable to aggregate (for example: --VarName=t2m)")
	}
	return v, nil
}

var iso3RE = regexp.MustCompile("^[A-Z]{3}$")

// checkCountry upper-cases the country code and makes sure it is a
// syntactically valid ISO3 code.
func checkCountry(c string) (string, error) {
	c = strings.ToUpper(strings.TrimSpace(c))
	if !iso3RE.MatchString(c) {
		return c, fmt.Errorf("extract: %q is not an ISO3 country code", c)
	}
	return c, nil
}

// checkAdmLevel makes sure the administrative level is in range.
func checkAdmLevel(l int) (int, error) {
	if l < 0 || l > 2 {
		return l, fmt.Errorf("extract: AdmLevel must be a value between 0 and 2 but is %d", l)
	}
	return l, nil
}
