/*
Copyright © 2018 the Centerline authors.
This file is part of Centerline.

Centerline is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Centerline is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Centerline.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package clutil holds the command-line interface for the centerline tools.
package clutil

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/lnashier/viper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version gives the version number.
const Version = "0.3.0"

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to the centerline tools.
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
			name: "envfile",
			usage: `
              envfile specifies a file of KEY=value lines that are loaded into
              the environment before any configuration variables are read.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to an additional logfile location. It can include
              environment variables. If LogFile is left blank, log messages are only
              written to standard error.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "verbose",
			usage: `
              verbose specifies whether to print debugging information.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "River",
			usage: `
              River is the path to a shapefile holding the river polygon. Only the
              first feature is used. The path can include environment variables
              and can be a URL or blob storage location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{centerlineCmd.Flags(), crossSectionsCmd.Flags(), exportCmd.Flags()},
		},
		{
			name: "Thalweg",
			usage: `
              Thalweg is the path to a shapefile holding the thalweg polyline.
              Multiple features are joined into one line.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{centerlineCmd.Flags()},
		},
		{
			name: "Islands",
			usage: `
              Islands is the path to a shapefile holding island polygons. It is
              optional.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{centerlineCmd.Flags(), crossSectionsCmd.Flags()},
		},
		{
			name: "IslandField",
			usage: `
              IslandField is the name of the integer field in the Islands shapefile
              that is 1 for islands that are large enough to be considered.`,
			defaultVal: "Qualifying",
			flagsets:   []*pflag.FlagSet{centerlineCmd.Flags(), crossSectionsCmd.Flags()},
		},
		{
			name: "Centerline",
			usage: `
              Centerline is the path to the centerline shapefile. It is written by
              the centerline command and read by the crosssections command.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{centerlineCmd.Flags(), crossSectionsCmd.Flags()},
		},
		{
			name: "Density",
			usage: `
              Density is the spacing that vertices are added to the river boundary
              at before the Voronoi diagram is calculated. Smaller values give a
              more accurate centerline but take longer. 0 turns densification off.`,
			defaultVal: 0.5,
			flagsets:   []*pflag.FlagSet{centerlineCmd.Flags()},
		},
		{
			name: "Smoothing",
			usage: `
              Smoothing is the strength of the Gaussian smoothing applied to the
              centerline, in map units. 0 turns smoothing off.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{centerlineCmd.Flags()},
		},
		{
			name: "BoundsBuffer",
			usage: `
              BoundsBuffer is the distance the bounding box of the river is expanded
              by before the thalweg is extended to it.`,
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{centerlineCmd.Flags()},
		},
		{
			name: "DEM",
			usage: `
              DEM is the path to a NetCDF file holding the elevation raster. It
              needs global attributes x0, y0, dx, and dy and a variable named
              "elevation" with dimensions [y, x].`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{crossSectionsCmd.Flags()},
		},
		{
			name: "CrossSections",
			usage: `
              CrossSections is the path to the output cross-section shapefile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{crossSectionsCmd.Flags()},
		},
		{
			name: "StationSpacing",
			usage: `
              StationSpacing is the distance between cross-sections along each
              centerline.`,
			defaultVal: 0.5,
			flagsets:   []*pflag.FlagSet{crossSectionsCmd.Flags()},
		},
		{
			name: "SampleSpacing",
			usage: `
              SampleSpacing is the distance between elevation samples along each
              cross-section.`,
			defaultVal: 0.5,
			flagsets:   []*pflag.FlagSet{crossSectionsCmd.Flags()},
		},
		{
			name: "PNG",
			usage: `
              PNG is an optional path to an image of the results.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{centerlineCmd.Flags(), crossSectionsCmd.Flags()},
		},
		{
			name: "GeoJSON",
			usage: `
              GeoJSON is the path to the output GeoJSON file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{exportCmd.Flags()},
		},
		{
			name: "Tolerance",
			usage: `
              Tolerance is the simplification tolerance for the exported outline,
              in the units of the river shapefile. 0 turns simplification off.`,
			defaultVal: 5.0,
			flagsets:   []*pflag.FlagSet{exportCmd.Flags()},
		},
		{
			name: "OutputSR",
			usage: `
              OutputSR is the spatial reference of the exported outline in Proj4
              or WKT format.`,
			defaultVal: "+proj=longlat",
			flagsets:   []*pflag.FlagSet{exportCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("CENTERLINE")

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
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
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
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(centerlineCmd)
	Root.AddCommand(crossSectionsCmd)
	Root.AddCommand(exportCmd)
}

// setConfig loads the dotenv file and reads in the configuration file,
// if there are any.
func setConfig() error {
	if envfile := Cfg.GetString("envfile"); envfile != "" {
		if err := godotenv.Load(envfile); err != nil {
			return fmt.Errorf("centerline: problem reading environment file: %v", err)
		}
	}
	Cfg.AutomaticEnv()
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("centerline: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "centerline",
	Short: "River centerline and cross-section tools.",
	Long: `centerline calculates the centerline of a river polygon from its Voronoi
diagram, builds cross-sections along the centerline, and calculates channel
metrics from an elevation raster. Use the subcommands specified below to access
the functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'CENTERLINE_var' where 'var' is the
name of the variable to be set. Environment variables can be loaded from a file
with the --envfile flag. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
	SilenceUsage:      true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of centerline.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("centerline v%s\n", Version)
	},
	DisableAutoGenTag: true,
}

// centerlineCmd calculates and saves a centerline.
var centerlineCmd = &cobra.Command{
	Use:   "centerline",
	Short: "Calculate a river centerline",
	Long: `centerline calculates the centerline of the River polygon, using the
Thalweg to tell the two banks apart. Side channels are calculated around
every qualifying island. The result is saved to the Centerline shapefile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, func(r *runner) error {
			cfg, err := CenterlineConfig(Cfg)
			if err != nil {
				return err
			}
			in, err := centerlineInputs(Cfg)
			if err != nil {
				return err
			}
			return r.centerline(cfg, in)
		})
	},
	DisableAutoGenTag: true,
}

// crossSectionsCmd builds cross-sections along an existing centerline.
var crossSectionsCmd = &cobra.Command{
	Use:   "crosssections",
	Short: "Build cross-sections and calculate channel metrics",
	Long: `crosssections builds cross-sections perpendicular to every line in the
Centerline shapefile, rejects cross-sections whose length is an outlier or
that overlap cross-sections of other lines, and calculates the channel
metrics of each one from the DEM. The result is saved to the CrossSections
shapefile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, func(r *runner) error {
			cfg, err := CrossSectionConfig(Cfg)
			if err != nil {
				return err
			}
			in, err := crossSectionInputs(Cfg)
			if err != nil {
				return err
			}
			return r.crossSections(cfg, in)
		})
	},
	DisableAutoGenTag: true,
}

// exportCmd writes the river outline as GeoJSON.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the river outline to GeoJSON",
	Long: `export simplifies the River polygon, transforms it to the OutputSR
spatial reference, and saves it as a GeoJSON feature.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, func(r *runner) error {
			in, err := exportInputs(Cfg)
			if err != nil {
				return err
			}
			return r.export(in)
		})
	},
	DisableAutoGenTag: true,
}
