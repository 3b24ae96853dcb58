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

// Package extractutil wires the gridextract library into a
// command-line interface.
package extractutil

import (
	"context"
	"fmt"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gridextract"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableSorting:  true,
	})

	// Options are the configuration options available to extract.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "InputFile",
			usage: `
              InputFile is the path to the gridded reanalysis file
              (classic-format NetCDF) to extract from.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path of the Parquet file where the
              time series will be stored. The ".parquet" extension is
              appended if missing, and the per-region metadata file is
              written next to it with an additional ".csv" extension.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
		{
			name: "VarName",
			usage: `
              VarName is the data variable in the input file to
              aggregate.`,
			shorthand:  "v",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
		{
			name: "CountryISO3",
			usage: `
              CountryISO3 is the ISO3 code of the country whose
              boundaries the time series are aggregated over.`,
			shorthand:  "c",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
		{
			name: "AdmLevel",
			usage: `
              AdmLevel is the administrative boundary level to use for
              the target time series (allowed values: 0, 1, 2). If the
              country has no boundaries at the requested level, ADM0 is
              used instead.`,
			shorthand:  "a",
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
		{
			name: "BoundaryAPI",
			usage: `
              BoundaryAPI is the base URL of the geoBoundaries API
              used to fetch the boundary polygons.`,
			defaultVal: gridextract.DefaultBoundaryAPI,
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("EXTRACT")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	Root.AddCommand(versionCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("extract: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "extract",
	Short: "Extract per-region time series from a gridded reanalysis file.",
	Long: `extract aggregates one variable of a gridded climate reanalysis file
(classic-format NetCDF, e.g. an ERA5 extract) over the administrative
boundaries of a country fetched from the geoBoundaries API, and writes
one time-series column per region to a Parquet file along with a
companion CSV listing each region's grid cell count and area.

The whole grid is held in memory for the duration of the run, so inputs
should be bounded extracts (one country's domain, a month-scale time
window) rather than global multi-year files.

Configuration can be changed by using a configuration file (and
providing the path to the file using the --config flag), by using
command-line arguments, or by setting environment variables in the
format 'EXTRACT_var' where 'var' is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile, err := checkInputFile(Cfg.GetString("InputFile"))
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		varName, err := checkVarName(Cfg.GetString("VarName"))
		if err != nil {
			return err
		}
		country, err := checkCountry(Cfg.GetString("CountryISO3"))
		if err != nil {
			return err
		}
		admLevel, err := checkAdmLevel(cast.ToInt(Cfg.Get("AdmLevel")))
		if err != nil {
			return err
		}
		return Extract(context.Background(), Config{
			InputFile:   inputFile,
			OutputFile:  outputFile,
			VarName:     varName,
			Country:     country,
			AdmLevel:    admLevel,
			BoundaryAPI: Cfg.GetString("BoundaryAPI"),
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of extract.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("extract v%s\n", gridextract.Version)
	},
	DisableAutoGenTag: true,
}
