/*****************************************************************************************************************/

//	@author		Michael Roberts <michael@observerly.com>
//	@package	@observerly/iad
//	@license	Copyright © 2021-2025 observerly

/*****************************************************************************************************************/

// Package cli wires the command-line surface: `iad solve input.rxt` reads an
// instrument descriptor, runs the inverse search over every tabulated
// wavelength, and writes `input.txt`. The root command itself takes no input
// path; the solve subcommand does.
package cli

/*****************************************************************************************************************/

import "github.com/spf13/cobra"

/*****************************************************************************************************************/

var rootCommand = &cobra.Command{
	Use:   "iad",
	Short: "iad recovers optical properties (absorption, scattering, anisotropy) from integrating-sphere measurements.",
	Long:  "iad recovers optical properties (absorption, scattering, anisotropy) from integrating-sphere measurements using the adding-doubling method.",
}

/*****************************************************************************************************************/

func init() {
	rootCommand.AddCommand(SolveCommand)
}

/*****************************************************************************************************************/

// Execute runs the root command, panicking on any error.
func Execute() {
	if err := rootCommand.Execute(); err != nil {
		panic(err)
	}
}

/*****************************************************************************************************************/
