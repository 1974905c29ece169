/*****************************************************************************************************************/

//	@author		Michael Roberts <michael@observerly.com>
//	@package	@observerly/iad
//	@license	Copyright © 2021-2025 observerly

/*****************************************************************************************************************/

package boundary

/*****************************************************************************************************************/

import (
	"math"
	"testing"

	"github.com/observerly/iad/pkg/fresnel"
	"github.com/observerly/iad/pkg/quadrature"
)

/*****************************************************************************************************************/

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

/*****************************************************************************************************************/

func TestBuildMatchedIndicesIsStrictlyDiagonal(t *testing.T) {
	set, err := quadrature.Build(8, 1, 1)
	if err != nil {
		t.Fatalf("quadrature.Build returned unexpected error: %v", err)
	}

	l := Build(1.0, 1.0, set.Nodes)

	n := len(set.Nodes)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if l.T01.At(i, j) != 0 || l.T10.At(i, j) != 0 {
				t.Errorf("off-diagonal flux at [%d,%d] for matched indices; want 0", i, j)
			}
		}
	}
}

/*****************************************************************************************************************/

func TestBuildMatchedIndicesHasZeroReflectance(t *testing.T) {
	set, err := quadrature.Build(8, 1, 1)
	if err != nil {
		t.Fatalf("quadrature.Build returned unexpected error: %v", err)
	}

	l := Build(1.0, 1.0, set.Nodes)

	for i := range set.Nodes {
		if !almostEqual(l.R01.At(i, i), 0, 1e-12) {
			t.Errorf("R01[%d,%d] = %v; want 0 for matched indices", i, i, l.R01.At(i, i))
		}
		if !almostEqual(l.T01.At(i, i), 1, 1e-12) {
			t.Errorf("T01[%d,%d] = %v; want 1 for matched indices", i, i, l.T01.At(i, i))
		}
	}
}

/*****************************************************************************************************************/

func TestBuildConservesFluxPerColumn(t *testing.T) {
	set, err := quadrature.Build(8, 1, 1)
	if err != nil {
		t.Fatalf("quadrature.Build returned unexpected error: %v", err)
	}

	l := Build(1.0, 1.5, set.Nodes)

	n := len(set.Nodes)
	for j := 0; j < n; j++ {
		colSumR := 0.0
		colSumT := 0.0
		for i := 0; i < n; i++ {
			colSumT += l.T01.At(i, j)
		}
		colSumR = l.R01.At(j, j)

		if !almostEqual(colSumR+colSumT, 1, 1e-9) {
			t.Errorf("column %d: R+T flux = %v; want 1 (no absorbing glass)", j, colSumR+colSumT)
		}
	}
}

/*****************************************************************************************************************/

// TestBuildComposesSlideAndAirInterfaces checks that a slide index distinct
// from both the sample and the exterior actually participates: it must
// differ from the bare single-interface reflectance between the sample and
// air, since the slide contributes its own internal reflection.
func TestBuildComposesSlideAndAirInterfaces(t *testing.T) {
	set, err := quadrature.Build(8, 1, 1)
	if err != nil {
		t.Fatalf("quadrature.Build returned unexpected error: %v", err)
	}

	withSlide := Build(1.33, 1.532, set.Nodes)
	direct := Build(1.33, 1.0, set.Nodes)

	// Compare at normal incidence (the last node): the smallest nodes lie
	// beyond the sample/air critical angle, where total internal reflection
	// gives R10 = 1 with or without the slide.
	last := len(set.Nodes) - 1
	if almostEqual(withSlide.R10.At(last, last), direct.R10.At(last, last), 1e-6) {
		t.Errorf("R10 with a glass slide = %v; want it distinct from the bare sample/air interface %v", withSlide.R10.At(last, last), direct.R10.At(last, last))
	}
}

/*****************************************************************************************************************/

// TestBuildNoSlideReducesToDirectInterface checks that a slide index equal
// to air's (no physical slide present) behaves exactly as a bare interface.
func TestBuildNoSlideReducesToDirectInterface(t *testing.T) {
	set, err := quadrature.Build(8, 1, 1)
	if err != nil {
		t.Fatalf("quadrature.Build returned unexpected error: %v", err)
	}

	l := Build(1.33, 1.0, set.Nodes)

	for i, nui := range set.Nodes {
		want := fresnel.R(nui, 1.33, 1.0)
		if !almostEqual(l.R10.At(i, i), want, 1e-9) {
			t.Errorf("R10[%d,%d] = %v; want %v (bare sample/air reflectance) with no slide present", i, i, l.R10.At(i, i), want)
		}
	}
}
