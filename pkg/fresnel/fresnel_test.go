/*****************************************************************************************************************/

//	@author		Michael Roberts <michael@observerly.com>
//	@package	@observerly/iad
//	@license	Copyright © 2021-2025 observerly

/*****************************************************************************************************************/

package fresnel

/*****************************************************************************************************************/

import (
	"math"
	"testing"
)

/*****************************************************************************************************************/

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

/*****************************************************************************************************************/

func TestRMatchedIndicesIsZero(t *testing.T) {
	if got := R(0.5, 1.33, 1.33); got != 0 {
		t.Errorf("R(0.5, 1.33, 1.33) = %v; want 0", got)
	}
}

/*****************************************************************************************************************/

func TestRNormalIncidence(t *testing.T) {
	// At normal incidence R = ((n2-n1)/(n2+n1))^2
	got := R(1.0, 1.0, 1.5)
	want := math.Pow((1.5-1.0)/(1.5+1.0), 2)

	if !almostEqual(got, want, 1e-12) {
		t.Errorf("R(1, 1, 1.5) = %v; want %v", got, want)
	}
}

/*****************************************************************************************************************/

func TestTotalInternalReflection(t *testing.T) {
	// Going from a dense to a less dense medium near grazing incidence gives TIR:
	mu := 0.05

	got := R(mu, 1.5, 1.0)
	if got != 1 {
		t.Errorf("R(%v, 1.5, 1.0) = %v; want 1 (TIR)", mu, got)
	}

	if cs := CosSnell(mu, 1.5, 1.0); cs != 0 {
		t.Errorf("CosSnell under TIR = %v; want 0", cs)
	}
}

/*****************************************************************************************************************/

func TestCosCriticalDenserToRarer(t *testing.T) {
	got := CosCritical(1.5, 1.0)
	want := math.Sqrt(1 - (1.0/1.5)*(1.0/1.5))

	if !almostEqual(got, want, 1e-12) {
		t.Errorf("CosCritical(1.5, 1.0) = %v; want %v", got, want)
	}
}

/*****************************************************************************************************************/

func TestCosCriticalRarerToDenserIsZero(t *testing.T) {
	if got := CosCritical(1.0, 1.5); got != 0 {
		t.Errorf("CosCritical(1.0, 1.5) = %v; want 0", got)
	}
}

/*****************************************************************************************************************/

func TestSpecularRTMatchedIndicesIsPureAbsorption(t *testing.T) {
	r, tr, err := SpecularRT(1, 1, 1, 2.0, 1.0)
	if err != nil {
		t.Fatalf("SpecularRT returned unexpected error: %v", err)
	}

	if !almostEqual(r, 0, 1e-9) {
		t.Errorf("r = %v; want ~0 for matched indices", r)
	}

	want := math.Exp(-2.0)
	if !almostEqual(tr, want, 1e-9) {
		t.Errorf("t = %v; want %v", tr, want)
	}
}

/*****************************************************************************************************************/

func TestAbsorbingGlassRTNoAbsorption(t *testing.T) {
	r, tr, _, err := AbsorbingGlassRT(1.0, 1.5, 1.0, 1.0, 0)
	if err != nil {
		t.Fatalf("AbsorbingGlassRT returned unexpected error: %v", err)
	}

	if r+tr > 1+1e-9 {
		t.Errorf("r + t = %v; must not exceed 1 (energy conservation)", r+tr)
	}
}

/*****************************************************************************************************************/

func TestAbsorbingGlassRTMatchedAllThreeIsPerfectlyClear(t *testing.T) {
	r, tr, muOut, err := AbsorbingGlassRT(1.0, 1.0, 1.0, 0.7, 0)
	if err != nil {
		t.Fatalf("AbsorbingGlassRT returned unexpected error: %v", err)
	}

	if !almostEqual(r, 0, 1e-12) {
		t.Errorf("r = %v; want 0 for three matched media", r)
	}

	if !almostEqual(tr, 1, 1e-12) {
		t.Errorf("t = %v; want 1 for three matched media", tr)
	}

	if !almostEqual(muOut, 0.7, 1e-12) {
		t.Errorf("muOut = %v; want 0.7 unchanged for three matched media", muOut)
	}
}

/*****************************************************************************************************************/

func TestAbsorbingGlassRTIsDirectional(t *testing.T) {
	rFwd, _, _, err := AbsorbingGlassRT(1.33, 1.532, 1.0, 0.8, 0)
	if err != nil {
		t.Fatalf("AbsorbingGlassRT returned unexpected error: %v", err)
	}

	rRev, _, _, err := AbsorbingGlassRT(1.0, 1.532, 1.33, 0.8, 0)
	if err != nil {
		t.Fatalf("AbsorbingGlassRT returned unexpected error: %v", err)
	}

	if almostEqual(rFwd, rRev, 1e-6) {
		t.Errorf("rFwd = %v, rRev = %v; expected distinct reflectances for a sample/slide/air sandwich with mismatched indices", rFwd, rRev)
	}
}
