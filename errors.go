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
	"strings"
)

// FileFormatError indicates that the input grid file is missing, cannot
// be parsed as classic-format NetCDF, or does not have the expected
// (time, latitude, longitude) layout.
type FileFormatError struct {
	Path string
	Err  error
}

func (e *FileFormatError) Error() string {
	return fmt.Sprintf("gridextract: reading grid file %s: %v", e.Path, e.Err)
}

func (e *FileFormatError) Unwrap() error { return e.Err }

// VariableNotFoundError indicates that the requested variable is not a
// data variable in the grid file.
type VariableNotFoundError struct {
	Variable string
	// Available lists the data variables the file does contain.
	Available []string
}

func (e *VariableNotFoundError) Error() string {
	return fmt.Sprintf("gridextract: variable %s is not a data variable in the grid file; available variables: %s",
		e.Variable, strings.Join(e.Available, ", "))
}

// NetworkError indicates that a boundary API request failed or returned
// an unusable response.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("gridextract: requesting %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// NotFoundError indicates that the boundary API has no boundaries for
// the given country and administrative level.
type NotFoundError struct {
	Country string
	Level   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("gridextract: no boundaries for country %s at ADM%d", e.Country, e.Level)
}

// IOError indicates that an output artifact could not be written.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("gridextract: writing %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
