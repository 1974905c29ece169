/*****************************************************************************************************************/

//	@author		Michael Roberts <michael@observerly.com>
//	@package	@observerly/iad
//	@license	Copyright © 2021-2025 observerly

/*****************************************************************************************************************/

// Package rxt reads the .rxt instrument-description format and writes the
// matching .txt result format. Both are thin adapters: the core
// forward/inverse packages never import this package, so file I/O stays a
// concern of the CLI layer alone.
package rxt

/*****************************************************************************************************************/

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

/*****************************************************************************************************************/

// Header is the fixed set of labeled floats at the top of a .rxt file:
// beam geometry, sample/slide thicknesses and indices, per-sphere port
// geometry and reflectances, incident angle, quadrature size and tolerance.
type Header struct {
	BeamDiameter float64

	SampleThickness float64
	SampleIndex     float64
	SlideIndexAbove float64
	SlideIndexBelow float64

	SphereDiameterR     float64
	SpherePortSampleR   float64
	SpherePortThirdR    float64
	SpherePortDetectorR float64
	SphereWallR         float64
	SphereDetectorR     float64

	SphereDiameterT     float64
	SpherePortSampleT   float64
	SpherePortThirdT    float64
	SpherePortDetectorT float64
	SphereWallT         float64
	SphereDetectorT     float64

	CalibrationStandard float64

	IncidentAngleDegrees float64
	Quadrature           float64
	Tolerance            float64
}

/*****************************************************************************************************************/

// headerFields lists the header in the fixed order .rxt files carry it,
// mapping each label to the Header field it populates.
var headerFields = []struct {
	label string
	set   func(*Header, float64)
}{
	{"beam_diameter", func(h *Header, v float64) { h.BeamDiameter = v }},
	{"sample_thickness", func(h *Header, v float64) { h.SampleThickness = v }},
	{"sample_index", func(h *Header, v float64) { h.SampleIndex = v }},
	{"slide_index_above", func(h *Header, v float64) { h.SlideIndexAbove = v }},
	{"slide_index_below", func(h *Header, v float64) { h.SlideIndexBelow = v }},
	{"r_sphere_diameter", func(h *Header, v float64) { h.SphereDiameterR = v }},
	{"r_sphere_sample_port", func(h *Header, v float64) { h.SpherePortSampleR = v }},
	{"r_sphere_third_port", func(h *Header, v float64) { h.SpherePortThirdR = v }},
	{"r_sphere_detector_port", func(h *Header, v float64) { h.SpherePortDetectorR = v }},
	{"r_sphere_wall_reflectance", func(h *Header, v float64) { h.SphereWallR = v }},
	{"r_sphere_detector_reflectance", func(h *Header, v float64) { h.SphereDetectorR = v }},
	{"t_sphere_diameter", func(h *Header, v float64) { h.SphereDiameterT = v }},
	{"t_sphere_sample_port", func(h *Header, v float64) { h.SpherePortSampleT = v }},
	{"t_sphere_third_port", func(h *Header, v float64) { h.SpherePortThirdT = v }},
	{"t_sphere_detector_port", func(h *Header, v float64) { h.SpherePortDetectorT = v }},
	{"t_sphere_wall_reflectance", func(h *Header, v float64) { h.SphereWallT = v }},
	{"t_sphere_detector_reflectance", func(h *Header, v float64) { h.SphereDetectorT = v }},
	{"calibration_standard", func(h *Header, v float64) { h.CalibrationStandard = v }},
	{"incident_angle", func(h *Header, v float64) { h.IncidentAngleDegrees = v }},
	{"quadrature", func(h *Header, v float64) { h.Quadrature = v }},
	{"tolerance", func(h *Header, v float64) { h.Tolerance = v }},
}

/*****************************************************************************************************************/

// Row is one tabulated measurement: a wavelength and the raw instrument
// readings at that wavelength.
type Row struct {
	Wavelength float64
	MR, MT, MU float64
	RStandard  float64
	TStandard  float64
}

/*****************************************************************************************************************/

// isBlankOrComment reports whether a line should be skipped entirely.
func isBlankOrComment(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, "#")
}

/*****************************************************************************************************************/

// Parse reads a .rxt file: a fixed-order header of "label value" lines
// (comments and blank lines ignored), followed by one tabulated row per
// remaining non-comment line.
func Parse(r io.Reader) (Header, []Row, error) {
	var header Header

	scanner := bufio.NewScanner(r)

	fieldIndex := 0
	for fieldIndex < len(headerFields) && scanner.Scan() {
		line := scanner.Text()
		if isBlankOrComment(line) {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return Header{}, nil, fmt.Errorf("rxt: malformed header line %q, want \"label value\"", line)
		}

		v, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil {
			return Header{}, nil, fmt.Errorf("rxt: parsing header field %q: %w", headerFields[fieldIndex].label, err)
		}

		headerFields[fieldIndex].set(&header, v)
		fieldIndex++
	}

	if fieldIndex < len(headerFields) {
		return Header{}, nil, fmt.Errorf("rxt: truncated header, got %d of %d fields", fieldIndex, len(headerFields))
	}

	var rows []Row

	for scanner.Scan() {
		line := scanner.Text()
		if isBlankOrComment(line) {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 6 {
			return Header{}, nil, fmt.Errorf("rxt: malformed data row %q, want 6 columns", line)
		}

		values := make([]float64, 6)
		for i := 0; i < 6; i++ {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return Header{}, nil, fmt.Errorf("rxt: parsing data row %q: %w", line, err)
			}
			values[i] = v
		}

		rows = append(rows, Row{
			Wavelength: values[0],
			MR:         values[1],
			MT:         values[2],
			MU:         values[3],
			RStandard:  values[4],
			TStandard:  values[5],
		})
	}

	if err := scanner.Err(); err != nil {
		return Header{}, nil, fmt.Errorf("rxt: reading input: %w", err)
	}

	return header, rows, nil
}

/*****************************************************************************************************************/

// Result is one fitted row of the .txt output: the raw measurements
// alongside the recovered optical properties, the model's refit of the
// measurements at that solution, and a single-character status.
type Result struct {
	Wavelength float64
	MR, MRFit  float64
	MT, MTFit  float64
	MU, MUFit  float64
	MuA        float64
	MuSPrime   float64
	G          float64
	Status     byte
}

/*****************************************************************************************************************/

// WriteResults emits the .txt result file: the originating .rxt header
// echoed as comments, followed by one tabulated row per Result.
func WriteResults(w io.Writer, header Header, results []Result) error {
	bw := bufio.NewWriter(w)

	for i, f := range headerFields {
		if _, err := fmt.Fprintf(bw, "# %s %g\n", f.label, fieldValue(header, i)); err != nil {
			return fmt.Errorf("rxt: writing header: %w", err)
		}
	}

	if _, err := fmt.Fprintln(bw, "# wavelength M_R M_R_fit M_T M_T_fit M_U M_U_fit mu_a mu_s_prime g status"); err != nil {
		return fmt.Errorf("rxt: writing table header: %w", err)
	}

	for _, r := range results {
		_, err := fmt.Fprintf(
			bw,
			"%g %g %g %g %g %g %g %g %g %g %c\n",
			r.Wavelength, r.MR, r.MRFit, r.MT, r.MTFit, r.MU, r.MUFit, r.MuA, r.MuSPrime, r.G, r.Status,
		)
		if err != nil {
			return fmt.Errorf("rxt: writing result row: %w", err)
		}
	}

	return bw.Flush()
}

/*****************************************************************************************************************/

// fieldValue reads back the i-th header field for WriteResults, mirroring
// the order headerFields uses to set them on Parse.
func fieldValue(h Header, i int) float64 {
	switch headerFields[i].label {
	case "beam_diameter":
		return h.BeamDiameter
	case "sample_thickness":
		return h.SampleThickness
	case "sample_index":
		return h.SampleIndex
	case "slide_index_above":
		return h.SlideIndexAbove
	case "slide_index_below":
		return h.SlideIndexBelow
	case "r_sphere_diameter":
		return h.SphereDiameterR
	case "r_sphere_sample_port":
		return h.SpherePortSampleR
	case "r_sphere_third_port":
		return h.SpherePortThirdR
	case "r_sphere_detector_port":
		return h.SpherePortDetectorR
	case "r_sphere_wall_reflectance":
		return h.SphereWallR
	case "r_sphere_detector_reflectance":
		return h.SphereDetectorR
	case "t_sphere_diameter":
		return h.SphereDiameterT
	case "t_sphere_sample_port":
		return h.SpherePortSampleT
	case "t_sphere_third_port":
		return h.SpherePortThirdT
	case "t_sphere_detector_port":
		return h.SpherePortDetectorT
	case "t_sphere_wall_reflectance":
		return h.SphereWallT
	case "t_sphere_detector_reflectance":
		return h.SphereDetectorT
	case "calibration_standard":
		return h.CalibrationStandard
	case "incident_angle":
		return h.IncidentAngleDegrees
	case "quadrature":
		return h.Quadrature
	case "tolerance":
		return h.Tolerance
	default:
		return 0
	}
}
