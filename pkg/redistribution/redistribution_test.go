/*****************************************************************************************************************/

//	@author		Michael Roberts <michael@observerly.com>
//	@package	@observerly/iad
//	@license	Copyright © 2021-2025 observerly

/*****************************************************************************************************************/

package redistribution

/*****************************************************************************************************************/

import (
	"math"
	"testing"

	"github.com/observerly/iad/pkg/quadrature"
)

/*****************************************************************************************************************/

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

/*****************************************************************************************************************/

func TestConstantMatricesForIsotropicScattering(t *testing.T) {
	m, err := Build(Legendre, 0, []float64{0.1, 0.5, 0.9})
	if err != nil {
		t.Fatalf("Build returned unexpected error: %v", err)
	}

	if !almostEqual(m.HPP.At(0, 0), 0.5, 1e-12) {
		t.Errorf("HPP[0,0] = %v; want 0.5", m.HPP.At(0, 0))
	}
}

/*****************************************************************************************************************/

func TestOrderDefaultsToTwiceN(t *testing.T) {
	if got := Order(0.3, 8); got != 16 {
		t.Errorf("Order(0.3, 8) = %d; want 16", got)
	}
}

/*****************************************************************************************************************/

func TestOrderRaisedForStrongForwardScattering(t *testing.T) {
	got := Order(0.95, 4)
	if got <= 8 {
		t.Errorf("Order(0.95, 4) = %d; want > 8 (adaptive raise)", got)
	}
}

/*****************************************************************************************************************/

func TestLegendreAndEllipticAgreeForModerateG(t *testing.T) {
	set, err := quadrature.Build(16, 1, 1)
	if err != nil {
		t.Fatalf("quadrature.Build returned unexpected error: %v", err)
	}

	g := 0.8

	leg, err := Build(Legendre, g, set.Nodes)
	if err != nil {
		t.Fatalf("Build(Legendre) returned unexpected error: %v", err)
	}

	ell, err := Build(Elliptic, g, set.Nodes)
	if err != nil {
		t.Fatalf("Build(Elliptic) returned unexpected error: %v", err)
	}

	n := len(set.Nodes)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if !almostEqual(leg.HPP.At(i, j), ell.HPP.At(i, j), 1e-3) {
				t.Errorf("HPP[%d,%d]: legendre=%v elliptic=%v differ by more than 1e-3", i, j, leg.HPP.At(i, j), ell.HPP.At(i, j))
			}
		}
	}
}

/*****************************************************************************************************************/

func TestSimilarityTransformIdentityAtZeroGM(t *testing.T) {
	aStar, bStar := SimilarityTransform(0.7, 2.0, 0)

	if !almostEqual(aStar, 0.7, 1e-12) {
		t.Errorf("aStar = %v; want 0.7", aStar)
	}

	if !almostEqual(bStar, 2.0, 1e-12) {
		t.Errorf("bStar = %v; want 2.0", bStar)
	}
}
