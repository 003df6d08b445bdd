/*
Copyright © 2018 the Flume authors.
This file is part of Flume.

Flume is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Flume is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Flume.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package flumeutil wires the Flume tendency core to its configuration
// and command-line interface.
package flumeutil

import (
	"fmt"

	"github.com/lnashier/viper"
	"github.com/oceanmodel/flume"
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
	// Options are the configuration options available to Flume.
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
			name: "DisableThicknessAdvection",
			usage: `
              DisableThicknessAdvection turns off the horizontal-advection
              contribution to the layer thickness tendency. The tendency
              evaluation still runs, but this term adds nothing to it.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "MeshData",
			usage: `
              MeshData is the path to the NetCDF file describing the model
              mesh. Can include environment variables.`,
			defaultVal: "mesh.nc",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), checkCmd.Flags()},
		},
		{
			name: "StateData",
			usage: `
              StateData is the path to the NetCDF file holding the normal
              velocity and edge thickness fields. Can include environment
              variables.`,
			defaultVal: "state.nc",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path where the computed thickness tendency
              will be written. Can include environment variables.`,
			shorthand:  "o",
			defaultVal: "tendency.nc",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), gridCmd.Flags()},
		},
		{
			name: "NumProcessors",
			usage: `
              NumProcessors is the maximum number of processors to use for
              the tendency evaluation. The default of 0 means use all
              available processors.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "NumEvaluations",
			usage: `
              NumEvaluations is the number of tendency-evaluation passes to
              run. The accumulator is zeroed before each pass, so this is
              mainly useful for timing.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.Nx",
			usage: `
              Grid.Nx is the number of cells in the first lattice direction
              of a generated hexagonal mesh.`,
			defaultVal: 16,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "Grid.Ny",
			usage: `
              Grid.Ny is the number of cells in the second lattice direction
              of a generated hexagonal mesh.`,
			defaultVal: 16,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "Grid.VertLevels",
			usage: `
              Grid.VertLevels is the number of vertical layers in a
              generated hexagonal mesh.`,
			defaultVal: 10,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "Grid.Spacing",
			usage: `
              Grid.Spacing is the distance between neighboring cell centers
              in a generated hexagonal mesh [m].`,
			defaultVal: 1000.0,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("FLUME")

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
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(gridCmd)
	Root.AddCommand(checkCmd)
}

// outChan returns a channel printing to the logger.
func outChan() chan string {
	outChan := make(chan string)
	go func() {
		for msg := range outChan {
			logger.Info(msg)
		}
	}()
	return outChan
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("flume: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "flume",
	Short: "A layer-thickness tendency core for unstructured ocean meshes.",
	Long: `Flume computes the horizontal-advection contribution to the time
tendency of ocean layer thickness on unstructured, edge-based meshes.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default
settings. Configuration can be changed by using a configuration file (and
providing the path to the file using the --config flag), by using
command-line arguments, or by setting environment variables in the format
'FLUME_var' where 'var' is the name of the variable to be set. Many
configuration variables are additionally allowed to contain environment
variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of Flume.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("Flume v%s\n", flume.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute the layer thickness tendency.",
	Long: `run reads a mesh and a field state, accumulates the
horizontal-advection thickness tendency once per evaluation pass, and
writes the result to the output file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(Cfg)
	},
	DisableAutoGenTag: true,
}

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Create a doubly periodic hexagonal mesh",
	Long: `grid creates a closed planar mesh of hexagonal cells as specified
by the configuration file and saves it to the output file, for use as
model input or for conservation testing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Grid(Cfg)
	},
	DisableAutoGenTag: true,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a mesh file",
	Long: `check reads a mesh file and validates its geometry and
connectivity: array extents, edge references, orientation signs and
active-level counts. A mesh that passes is safe to use with run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Check(Cfg)
	},
	DisableAutoGenTag: true,
}
