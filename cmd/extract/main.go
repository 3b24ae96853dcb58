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

// Command extract is a command-line interface for extracting
// per-region time series from gridded climate reanalysis files.
package main

import (
	"os"

	"github.com/spatialmodel/gridextract/extractutil"
)

func main() {
	if err := extractutil.Root.Execute(); err != nil {
		os.Exit(1)
	}
}
