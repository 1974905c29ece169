/*****************************************************************************************************************/

//	@author		Michael Roberts <michael@observerly.com>
//	@package	@observerly/iad
//	@license	Copyright © 2021-2025 observerly

/*****************************************************************************************************************/

package cli

/*****************************************************************************************************************/

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/observerly/iad/pkg/sample"
)

/*****************************************************************************************************************/

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

/*****************************************************************************************************************/

const rxtTemplate = `
beam_diameter 2.0
sample_thickness 1.0
sample_index 1.0
slide_index_above 1.0
slide_index_below 1.0
r_sphere_diameter 60
r_sphere_sample_port 0
r_sphere_third_port 0
r_sphere_detector_port 0
r_sphere_wall_reflectance 0
r_sphere_detector_reflectance 0
t_sphere_diameter 60
t_sphere_sample_port 0
t_sphere_third_port 0
t_sphere_detector_port 0
t_sphere_wall_reflectance 0
t_sphere_detector_reflectance 0
calibration_standard 1
incident_angle 0
quadrature 4
tolerance 0.0001
500 %v 0 0 1 1
`

/*****************************************************************************************************************/

func TestRunSolveRecoversAlbedoFromAReflectanceOnlyRXT(t *testing.T) {
	truth := sample.Default(0.8, 2, 0.9)
	truth.Quadrature = 4

	driver := sample.NewDriver()

	result, err := driver.RT(truth)
	if err != nil {
		t.Fatalf("RT returned unexpected error: %v", err)
	}

	dir := t.TempDir()
	inputPath := filepath.Join(dir, "case.rxt")

	content := fmt.Sprintf(rxtTemplate, result.UR1)
	if err := os.WriteFile(inputPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write input fixture: %v", err)
	}

	params := RunSolveParams{
		InputPath:       inputPath,
		Quadrature:      4,
		Tolerance:       1e-6,
		AlbedoGuess:     0.5,
		ThicknessGuess:  2,
		AnisotropyGuess: 0.9,
		CalibrationStd:  1,
		SlideIndex:      1,
		ReflectionOnly:  true,
	}

	if err := RunSolve(params); err != nil {
		t.Fatalf("RunSolve returned unexpected error: %v", err)
	}

	outputPath := strings.TrimSuffix(inputPath, ".rxt") + ".txt"

	out, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("failed to read output file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	last := lines[len(lines)-1]
	fields := strings.Fields(last)
	if len(fields) != 11 {
		t.Fatalf("result row has %d fields; want 11: %q", len(fields), last)
	}

	muA := parseFloat(t, fields[7])
	if !almostEqual(muA, (1-0.8)*2, 0.05) {
		t.Errorf("recovered mu_a = %v; want ~%v", muA, (1-0.8)*2)
	}

	if fields[10] != "*" {
		t.Errorf("status = %q; want success (*)", fields[10])
	}
}

/*****************************************************************************************************************/

func parseFloat(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		t.Fatalf("failed to parse float %q: %v", s, err)
	}
	return v
}

/*****************************************************************************************************************/
