/*****************************************************************************************************************/

//	@author		Michael Roberts <michael@observerly.com>
//	@package	@observerly/iad
//	@license	Copyright © 2021-2025 observerly

/*****************************************************************************************************************/

package cli

/*****************************************************************************************************************/

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/observerly/iad/internal/rxt"
	"github.com/observerly/iad/pkg/experiment"
	"github.com/observerly/iad/pkg/sample"
	"github.com/observerly/iad/pkg/sphere"

	"github.com/spf13/cobra"
)

/*****************************************************************************************************************/

var (
	Quadrature        int
	Verbosity         int
	Tolerance         float64
	AlbedoGuess       float64
	ThicknessGuess    float64
	AnisotropyGuess   float64
	OutputPath        string
	CalibrationStd    float64
	SlideIndex        float64
	ReflectionOnly    bool
	ExcludeDirectBeam bool
)

/*****************************************************************************************************************/

var SolveCommand = &cobra.Command{
	Use:   "solve [input.rxt]",
	Short: "recover (a, b, g) from an .rxt instrument descriptor, writing input.txt",
	Long:  "recover (a, b, g) from an .rxt instrument descriptor, writing input.txt",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		params := RunSolveParams{
			InputPath:         args[0],
			Quadrature:        Quadrature,
			Verbosity:         Verbosity,
			Tolerance:         Tolerance,
			AlbedoGuess:       AlbedoGuess,
			ThicknessGuess:    ThicknessGuess,
			AnisotropyGuess:   AnisotropyGuess,
			OutputPath:        OutputPath,
			CalibrationStd:    CalibrationStd,
			SlideIndex:        SlideIndex,
			ReflectionOnly:    ReflectionOnly,
			ExcludeDirectBeam: ExcludeDirectBeam,
		}

		if err := RunSolve(params); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

/*****************************************************************************************************************/

func init() {
	// example usage: -q 8
	SolveCommand.Flags().IntVarP(&Quadrature, "quadrature", "q", 8, "number of quadrature points")

	// example usage: -V 1
	SolveCommand.Flags().IntVarP(&Verbosity, "verbosity", "V", 0, "progress reporting verbosity")

	// example usage: -e 0.0001
	SolveCommand.Flags().Float64VarP(&Tolerance, "tolerance", "e", 1e-4, "inverse search convergence tolerance")

	// example usage: -a 0.5
	SolveCommand.Flags().Float64VarP(&AlbedoGuess, "albedo", "a", 0.5, "fixed/initial albedo for the search")

	// example usage: -b 1.0
	SolveCommand.Flags().Float64VarP(&ThicknessGuess, "thickness", "b", 1.0, "fixed/initial optical thickness for the search")

	// example usage: -g 0.0
	SolveCommand.Flags().Float64VarP(&AnisotropyGuess, "anisotropy", "g", 0.0, "fixed/initial anisotropy for the search")

	// example usage: -o result.txt
	SolveCommand.Flags().StringVarP(&OutputPath, "output", "o", "", "output file location (defaults to input with a .txt extension)")

	// example usage: -r 0.99
	SolveCommand.Flags().Float64VarP(&CalibrationStd, "standard", "r", 1.0, "calibration standard reflectance (overrides the .rxt value when > 0)")

	// example usage: -n 1.5
	SolveCommand.Flags().Float64VarP(&SlideIndex, "slide-index", "n", 0, "slide refractive index (overrides the .rxt value when > 0)")

	// example usage: -R
	SolveCommand.Flags().BoolVarP(&ReflectionOnly, "reflection-only", "R", false, "force reflection-sphere-only mode, ignoring any transmission sphere")

	// example usage: -X
	SolveCommand.Flags().BoolVarP(&ExcludeDirectBeam, "exclude-direct-beam", "X", false, "exclude the unscattered direct beam from M_T")
}

/*****************************************************************************************************************/

// RunSolveParams collects every CLI flag plus the positional input path.
type RunSolveParams struct {
	InputPath string

	Quadrature        int
	Verbosity         int
	Tolerance         float64
	AlbedoGuess       float64
	ThicknessGuess    float64
	AnisotropyGuess   float64
	OutputPath        string
	CalibrationStd    float64
	SlideIndex        float64
	ReflectionOnly    bool
	ExcludeDirectBeam bool
}

/*****************************************************************************************************************/

// sphereFromHeader builds the reflection or transmission sphere geometry
// carried in a .rxt header's "r_" or "t_" prefixed fields.
func sphereFromHeader(diameter, samplePort, thirdPort, detectorPort, wallReflectance, detectorReflectance float64) sphere.Sphere {
	s := sphere.Sphere{
		Diameter:        diameter,
		WallReflectance: wallReflectance,
	}
	s.PortDiameter[sphere.SamplePort] = samplePort
	s.PortDiameter[sphere.ThirdPort] = thirdPort
	s.PortDiameter[sphere.DetectorPort] = detectorPort
	s.PortReflectance[sphere.DetectorPort] = detectorReflectance
	return s
}

/*****************************************************************************************************************/

// outputPathFor derives "input.txt" from "input.rxt" unless an explicit
// output path was given.
func outputPathFor(inputPath, explicit string) string {
	if explicit != "" {
		return explicit
	}
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + ".txt"
}

/*****************************************************************************************************************/

// RunSolve is the CLI's business logic, factored out of the cobra Run
// closure so it can be called and tested without going through Cobra.
func RunSolve(params RunSolveParams) error {
	inputFile, err := os.Open(params.InputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %v", err)
	}
	defer inputFile.Close()

	if params.Verbosity > 0 {
		fmt.Println("Input File Location:", params.InputPath)
	}

	header, rows, err := rxt.Parse(inputFile)
	if err != nil {
		return fmt.Errorf("failed to parse .rxt file: %v", err)
	}

	if params.Verbosity > 0 {
		fmt.Printf("Parsed %d wavelength rows\n", len(rows))
	}

	reflection := sphereFromHeader(
		header.SphereDiameterR,
		header.SpherePortSampleR,
		header.SpherePortThirdR,
		header.SpherePortDetectorR,
		header.SphereWallR,
		header.SphereDetectorR,
	)

	transmission := sphereFromHeader(
		header.SphereDiameterT,
		header.SpherePortSampleT,
		header.SpherePortThirdT,
		header.SpherePortDetectorT,
		header.SphereWallT,
		header.SphereDetectorT,
	)

	slideIndex := header.SlideIndexAbove
	if params.SlideIndex > 0 {
		slideIndex = params.SlideIndex
	}

	batchRows := make([]experiment.Row, len(rows))

	for i, row := range rows {
		s := sample.Default(params.AlbedoGuess, params.ThicknessGuess, params.AnisotropyGuess)
		s.Index = header.SampleIndex
		s.NAbove = slideIndex
		s.NBelow = slideIndex
		s.D = header.SampleThickness
		s.Nu0 = 1
		if params.Quadrature >= 2 {
			s.Quadrature = params.Quadrature
		}

		rStd := row.RStandard
		if params.CalibrationStd > 0 {
			rStd = params.CalibrationStd
		}

		// Each row gets its own sphere copies: MeasuredRT mutates the sample
		// port's reflectance in place, and RunBatch runs rows concurrently.
		rowReflection := reflection

		e := experiment.Experiment{
			Sample:            s,
			Reflection:        &rowReflection,
			BeamDiameter:      header.BeamDiameter,
			Wavelength:        row.Wavelength,
			IncludeDirectBeam: !params.ExcludeDirectBeam,
			HasMR:             true,
			MR:                row.MR,
			HasMU:             row.MU > 0,
			MU:                row.MU,
			RStd:              rStd,
			TStd:              row.TStandard,
			FixedG:            params.AnisotropyGuess,
			Tolerance:         params.Tolerance,
			MaxIter:           100,
			Timeout:           30 * time.Second,
		}

		if !params.ReflectionOnly {
			rowTransmission := transmission
			e.Transmission = &rowTransmission
			e.HasMT = true
			e.MT = row.MT
		}

		batchRows[i] = experiment.Row{Wavelength: row.Wavelength, Experiment: e}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(len(batchRows)+1)*30*time.Second)
	defer cancel()

	batchResults, tag, err := experiment.RunBatch(ctx, batchRows, nil)
	if err != nil {
		return fmt.Errorf("batch inverse search failed: %v", err)
	}

	if params.Verbosity > 0 {
		fmt.Println("Run ID:", tag)
	}

	fitDriver := sample.NewDriver()

	results := make([]rxt.Result, len(batchResults))
	for i, r := range batchResults {
		fit := sample.Sample{
			A: r.Estimate.A, B: r.Estimate.B, G: r.Estimate.G,
			D: header.SampleThickness, Index: header.SampleIndex,
			NAbove: slideIndex, NBelow: slideIndex, Nu0: 1,
			Quadrature: batchRows[i].Experiment.Sample.Quadrature,
		}
		muA, _, muSPrime := fit.DerivedCoefficients()

		fitExperiment := batchRows[i].Experiment
		fitExperiment.Sample = fit

		mrFit, mtFit := rows[i].MR, rows[i].MT
		if measured, err := fitExperiment.MeasuredRT(fitDriver); err == nil {
			mrFit, mtFit = measured.MR, measured.MT
		}

		results[i] = rxt.Result{
			Wavelength: r.Wavelength,
			MR:         rows[i].MR,
			MRFit:      mrFit,
			MT:         rows[i].MT,
			MTFit:      mtFit,
			MU:         rows[i].MU,
			MUFit:      rows[i].MU,
			MuA:        muA,
			MuSPrime:   muSPrime,
			G:          r.Estimate.G,
			Status:     r.Estimate.Status.Char(),
		}
	}

	outputPath := outputPathFor(params.InputPath, params.OutputPath)

	outputFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %v", err)
	}
	defer outputFile.Close()

	if err := rxt.WriteResults(outputFile, header, results); err != nil {
		return fmt.Errorf("failed to write results: %v", err)
	}

	fmt.Printf("Solution written to: %s\n", outputPath)

	return nil
}

/*****************************************************************************************************************/
