/*****************************************************************************************************************/

//	@author		Michael Roberts <michael@observerly.com>
//	@package	@observerly/iad
//	@license	Copyright © 2021-2025 observerly

/*****************************************************************************************************************/

package sample

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

func TestRTEnergyConservationNonAbsorbing(t *testing.T) {
	s := Default(1, 1, 0)
	s.Quadrature = 8

	d := NewDriver()

	result, err := d.RT(s)
	if err != nil {
		t.Fatalf("RT returned unexpected error: %v", err)
	}

	if !almostEqual(result.UR1+result.UT1, 1, 1e-4) {
		t.Errorf("UR1+UT1 = %v; want ~1 for a non-absorbing slab", result.UR1+result.UT1)
	}
}

/*****************************************************************************************************************/

func TestRTPureAbsorptionMatchesBeerLambert(t *testing.T) {
	s := Default(0, 1, 0)
	s.Quadrature = 8

	d := NewDriver()

	result, err := d.RT(s)
	if err != nil {
		t.Fatalf("RT returned unexpected error: %v", err)
	}

	want := math.Exp(-1)
	if !almostEqual(result.UT1, want, 1e-3) {
		t.Errorf("UT1 = %v; want exp(-b) = %v for a=0, index-matched slab", result.UT1, want)
	}

	if !almostEqual(result.UR1, 0, 1e-9) {
		t.Errorf("UR1 = %v; want 0 for a=0, index-matched slab (no internal scattering)", result.UR1)
	}
}

/*****************************************************************************************************************/

func TestRTMatchedIndicesAreSymmetric(t *testing.T) {
	s := Default(0.9, 1, 0.5)
	s.Quadrature = 8
	s.NAbove = 1
	s.NBelow = 1

	d := NewDriver()

	r01, r10, t01, t10, err := d.RTMatrices(s)
	if err != nil {
		t.Fatalf("RTMatrices returned unexpected error: %v", err)
	}

	n, _ := r01.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if !almostEqual(r01.At(i, j), r10.At(i, j), 1e-9) {
				t.Errorf("R01[%d,%d] = %v, R10[%d,%d] = %v; want equal for n_above == n_below", i, j, r01.At(i, j), i, j, r10.At(i, j))
			}
			if !almostEqual(t01.At(i, j), t10.At(i, j), 1e-9) {
				t.Errorf("T01[%d,%d] = %v, T10[%d,%d] = %v; want equal for n_above == n_below", i, j, t01.At(i, j), i, j, t10.At(i, j))
			}
		}
	}
}

/*****************************************************************************************************************/

func TestRTScenarioS1(t *testing.T) {
	s := Default(0.8, 2, 0.9)
	s.Quadrature = 4

	d := NewDriver()

	result, err := d.RT(s)
	if err != nil {
		t.Fatalf("RT returned unexpected error: %v", err)
	}

	if !almostEqual(result.UR1, 0.09739, 0.05) {
		t.Errorf("UR1 = %v; want ~0.09739", result.UR1)
	}

	if !almostEqual(result.UT1, 0.66096, 0.05) {
		t.Errorf("UT1 = %v; want ~0.66096", result.UT1)
	}
}

/*****************************************************************************************************************/

func TestRTScenarioS2AsymmetricSlides(t *testing.T) {
	s := Default(0.9, 1, 0)
	s.Quadrature = 8
	s.Index = 1.33
	s.NAbove = 1.532
	s.NBelow = 1
	s.D = 2

	d := NewDriver()

	result, err := d.RT(s)
	if err != nil {
		t.Fatalf("RT returned unexpected error: %v", err)
	}

	if !almostEqual(result.UT1, 0.45832, 0.05) {
		t.Errorf("UT1 = %v; want ~0.45832", result.UT1)
	}

	r01, r10, _, _, err := d.RTMatrices(s)
	if err != nil {
		t.Fatalf("RTMatrices returned unexpected error: %v", err)
	}

	set, err := d.quadratureFor(s)
	if err != nil {
		t.Fatalf("quadratureFor returned unexpected error: %v", err)
	}

	i0 := incidentIndex(set.Nodes, s.Nu0)
	urTop := projectCollimated(r01, set.TwoNuW, i0)
	urBot := projectCollimated(r10, set.TwoNuW, i0)

	if !almostEqual(urTop, 0.30226, 0.05) {
		t.Errorf("UR1 through the n_above = 1.532 slide = %v; want ~0.30226", urTop)
	}

	if !almostEqual(urBot, 0.29018, 0.05) {
		t.Errorf("UR1 through the n_below = 1 (no slide) face = %v; want ~0.29018", urBot)
	}

	if almostEqual(urTop, urBot, 1e-6) {
		t.Errorf("UR1 top (%v) and bottom (%v) should differ for asymmetric slides", urTop, urBot)
	}
}

/*****************************************************************************************************************/

func TestRTArrayPreservesOrderAndReusesCache(t *testing.T) {
	base := Default(0.5, 1, 0)
	base.Quadrature = 6

	samples := []Sample{base, base, base}
	samples[0].B = 0.5
	samples[1].B = 1.0
	samples[2].B = 1.5

	d := NewDriver()

	results, err := d.RTArray(samples)
	if err != nil {
		t.Fatalf("RTArray returned unexpected error: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("len(results) = %d; want 3", len(results))
	}

	if results[0].UT1 <= results[1].UT1 || results[1].UT1 <= results[2].UT1 {
		t.Errorf("UT1 should decrease monotonically with b: got %v, %v, %v", results[0].UT1, results[1].UT1, results[2].UT1)
	}
}

/*****************************************************************************************************************/

func TestValidateRejectsOutOfRangeAlbedo(t *testing.T) {
	s := Default(1.5, 1, 0)

	if _, err := NewDriver().RT(s); err == nil {
		t.Error("expected an error for a = 1.5")
	}
}
