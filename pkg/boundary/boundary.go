/*****************************************************************************************************************/

//	@author		Michael Roberts <michael@observerly.com>
//	@package	@observerly/iad
//	@license	Copyright © 2021-2025 observerly

/*****************************************************************************************************************/

// Package boundary constructs the diagonal (or near-diagonal) R/T matrices
// for a sample sitting behind a slide, open to air beyond it.
package boundary

/*****************************************************************************************************************/

import (
	"sort"

	"github.com/observerly/iad/pkg/fresnel"
	"github.com/observerly/iad/pkg/layer"
	"gonum.org/v1/gonum/mat"
)

/*****************************************************************************************************************/

// remapOnto distributes a flux fraction arriving at cosine target onto the
// two quadrature nodes bracketing it, by linear interpolation. If target
// falls outside [nu[0], nu[n-1]] the full fraction goes to the nearest node.
func remapOnto(nu []float64, target, fraction float64, dst *mat.Dense, col int) {
	n := len(nu)

	if fraction == 0 {
		return
	}

	if target <= nu[0] {
		dst.Set(0, col, dst.At(0, col)+fraction)
		return
	}

	if target >= nu[n-1] {
		dst.Set(n-1, col, dst.At(n-1, col)+fraction)
		return
	}

	i := sort.SearchFloat64s(nu, target)
	// i is the first index with nu[i] >= target; the bracket is [i-1, i].
	lo, hi := i-1, i

	span := nu[hi] - nu[lo]
	wHi := (target - nu[lo]) / span
	wLo := 1 - wHi

	dst.Set(lo, col, dst.At(lo, col)+fraction*wLo)
	dst.Set(hi, col, dst.At(hi, col)+fraction*wHi)
}

/*****************************************************************************************************************/

// airIndex is the refractive index of the medium beyond the slide, on the
// side facing away from the sample.
const airIndex = 1.0

/*****************************************************************************************************************/

// Build constructs the boundary Layer sitting above a slab whose interior
// medium has refractive index nSample, carried through a slide of index
// nSlide out into air. Each pass crosses both the sample/slide and the
// slide/air faces, so a slide with nSlide != 1 contributes its own internal
// reflection back toward the sample as well as the refraction it imposes on
// the flux that does escape. "Below" in the returned Layer is the nSample
// side, "above" is the air side, both expressed on the shared quadrature nu.
func Build(nSample, nSlide float64, nu []float64) layer.Layer {
	n := len(nu)

	r01 := layer.Zero(n)
	r10 := layer.Zero(n)
	t01 := layer.Zero(n)
	t10 := layer.Zero(n)

	for j, nuj := range nu {
		// From below (inside the sample), through the slide, into air:
		rBelow, tBelow, muAir, err := fresnel.AbsorbingGlassRT(nSample, nSlide, airIndex, nuj, 0)
		if err != nil {
			continue
		}
		r10.Set(j, j, rBelow)
		remapOnto(nu, muAir, tBelow, t10, j)

		// From above (air), through the slide, into the sample:
		rAbove, tAbove, muSample, err := fresnel.AbsorbingGlassRT(airIndex, nSlide, nSample, nuj, 0)
		if err != nil {
			continue
		}
		r01.Set(j, j, rAbove)
		remapOnto(nu, muSample, tAbove, t01, j)
	}

	return layer.Layer{N: n, R01: r01, R10: r10, T01: t01, T10: t10}
}

/*****************************************************************************************************************/

// BuildSymmetric is a convenience for the common case n_above == n_below:
// both boundary layers added to a sample are identical.
func BuildSymmetric(nSample, nSlide float64, nu []float64) layer.Layer {
	return Build(nSample, nSlide, nu)
}
