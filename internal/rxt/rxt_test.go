/*****************************************************************************************************************/

//	@author		Michael Roberts <michael@observerly.com>
//	@package	@observerly/iad
//	@license	Copyright © 2021-2025 observerly

/*****************************************************************************************************************/

package rxt

/*****************************************************************************************************************/

import (
	"bytes"
	"strings"
	"testing"
)

/*****************************************************************************************************************/

const sampleRXT = `
# beam geometry
beam_diameter 2.0
sample_thickness 1.0
sample_index 1.4
slide_index_above 1.5
slide_index_below 1.5

# reflection sphere
r_sphere_diameter 60
r_sphere_sample_port 20
r_sphere_third_port 15
r_sphere_detector_port 10
r_sphere_wall_reflectance 0.98
r_sphere_detector_reflectance 0.5

# transmission sphere
t_sphere_diameter 60
t_sphere_sample_port 20
t_sphere_third_port 15
t_sphere_detector_port 10
t_sphere_wall_reflectance 0.98
t_sphere_detector_reflectance 0.5

calibration_standard 0.99
incident_angle 0
quadrature 8
tolerance 0.0001

# wavelength M_R M_T M_U r_standard t_standard
500 0.09 0.66 0.7 0.99 0.99
550 0.08 0.68 0.72 0.99 0.99
`

/*****************************************************************************************************************/

func TestParseReadsHeaderAndRows(t *testing.T) {
	header, rows, err := Parse(strings.NewReader(sampleRXT))
	if err != nil {
		t.Fatalf("Parse returned unexpected error: %v", err)
	}

	if header.BeamDiameter != 2.0 {
		t.Errorf("BeamDiameter = %v; want 2.0", header.BeamDiameter)
	}
	if header.SphereDiameterR != 60 {
		t.Errorf("SphereDiameterR = %v; want 60", header.SphereDiameterR)
	}
	if header.Quadrature != 8 {
		t.Errorf("Quadrature = %v; want 8", header.Quadrature)
	}
	if header.Tolerance != 0.0001 {
		t.Errorf("Tolerance = %v; want 0.0001", header.Tolerance)
	}

	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d; want 2", len(rows))
	}

	if rows[0].Wavelength != 500 || rows[0].MR != 0.09 || rows[0].MT != 0.66 {
		t.Errorf("rows[0] = %+v; unexpected values", rows[0])
	}
	if rows[1].Wavelength != 550 || rows[1].TStandard != 0.99 {
		t.Errorf("rows[1] = %+v; unexpected values", rows[1])
	}
}

/*****************************************************************************************************************/

func TestParseRejectsTruncatedHeader(t *testing.T) {
	_, _, err := Parse(strings.NewReader("beam_diameter 2.0\n"))
	if err == nil {
		t.Error("expected an error for a truncated header")
	}
}

/*****************************************************************************************************************/

func TestParseRejectsMalformedRow(t *testing.T) {
	truncated := strings.Split(sampleRXT, "\n")
	var buf strings.Builder
	for _, line := range truncated {
		if strings.HasPrefix(strings.TrimSpace(line), "500") {
			buf.WriteString("500 0.09 0.66\n")
			continue
		}
		buf.WriteString(line)
		buf.WriteString("\n")
	}

	_, _, err := Parse(strings.NewReader(buf.String()))
	if err == nil {
		t.Error("expected an error for a data row with too few columns")
	}
}

/*****************************************************************************************************************/

func TestWriteResultsRoundTripsHeaderAndIsReParseable(t *testing.T) {
	header, rows, err := Parse(strings.NewReader(sampleRXT))
	if err != nil {
		t.Fatalf("Parse returned unexpected error: %v", err)
	}

	results := make([]Result, len(rows))
	for i, r := range rows {
		results[i] = Result{
			Wavelength: r.Wavelength,
			MR:         r.MR,
			MRFit:      r.MR,
			MT:         r.MT,
			MTFit:      r.MT,
			MU:         r.MU,
			MUFit:      r.MU,
			MuA:        0.1,
			MuSPrime:   1.2,
			G:          0.9,
			Status:     '*',
		}
	}

	var buf bytes.Buffer
	if err := WriteResults(&buf, header, results); err != nil {
		t.Fatalf("WriteResults returned unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "# beam_diameter 2") {
		t.Errorf("output missing echoed header field:\n%s", out)
	}
	if !strings.Contains(out, "500 0.09 0.09 0.66 0.66 0.7 0.7 0.1 1.2 0.9 *") {
		t.Errorf("output missing expected result row:\n%s", out)
	}
}

/*****************************************************************************************************************/
