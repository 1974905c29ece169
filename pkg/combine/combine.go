/*****************************************************************************************************************/

//	@author		Michael Roberts <michael@observerly.com>
//	@package	@observerly/iad
//	@license	Copyright © 2021-2025 observerly

/*****************************************************************************************************************/

// Package combine implements the adding and doubling recurrences: composing
// two dissimilar layers (the "add" rule), and repeatedly doubling a
// symmetric layer to grow it from a thin starter to full optical thickness.
package combine

/*****************************************************************************************************************/

import (
	"fmt"

	"github.com/observerly/iad/pkg/layer"
)

/*****************************************************************************************************************/

// ThickTransmittanceFloor is the diffuse-transmittance value below which a
// doubling step is considered to have reached the thick-slab limit: the
// layer is frozen at T=0 and doubling stops.
const ThickTransmittanceFloor = 1e-12

/*****************************************************************************************************************/

// Add composes two dissimilar layers, alpha stacked above beta, using the
// star-product add rule. The matrix inverses in the rule are never formed
// explicitly: each is a single linear solve via layer.RightDivide.
func Add(alpha, beta layer.Layer) (layer.Layer, error) {
	n := alpha.N

	identity := layer.Identity(n)

	rabeta := layer.Multiply(alpha.R10, beta.R01)
	systemA := layer.Sub(identity, rabeta)

	a, err := layer.RightDivide(beta.T01, systemA)
	if err != nil {
		return layer.Layer{}, fmt.Errorf("combine: add failed computing A: %w", err)
	}

	rbalpha := layer.Multiply(beta.R01, alpha.R10)
	systemB := layer.Sub(identity, rbalpha)

	b, err := layer.RightDivide(alpha.T10, systemB)
	if err != nil {
		return layer.Layer{}, fmt.Errorf("combine: add failed computing B: %w", err)
	}

	t01 := layer.Multiply(a, alpha.T01)
	t10 := layer.Multiply(b, beta.T10)

	r01 := layer.Add(alpha.R01, layer.Multiply(layer.Multiply(a, beta.R01), alpha.T10))
	r10 := layer.Add(beta.R10, layer.Multiply(layer.Multiply(b, alpha.R10), beta.T10))

	return layer.Layer{N: n, R01: r01, R10: r10, T01: t01, T10: t10}, nil
}

/*****************************************************************************************************************/

// Double grows a symmetric layer from thickness dStart to thickness
// 2^k * dStart, applying the add rule to two identical copies k times.
// Returns the (possibly thick-slab-frozen) result and whether the thick-slab
// limit was detected.
func Double(p layer.Pair, k int) (layer.Pair, bool, error) {
	current := p
	frozen := false

	for i := 0; i < k; i++ {
		if frozen {
			break
		}

		l := layer.FromPair(current)

		added, err := Add(l, l)
		if err != nil {
			return layer.Pair{}, false, fmt.Errorf("combine: doubling step %d: %w", i, err)
		}

		t := added.T01

		if layer.MaxDiffuseTransmittance(t) < ThickTransmittanceFloor {
			t = layer.Zero(current.N)
			frozen = true
		}

		current = layer.Pair{N: current.N, R: added.R01, T: t}
	}

	return current, frozen, nil
}

/*****************************************************************************************************************/

// AddSlides composes boundaryAbove (outermost-first), the symmetric sample
// slab, and boundaryBelow into one asymmetric Layer.
func AddSlides(boundaryAbove, boundaryBelow layer.Layer, sample layer.Pair) (layer.Layer, error) {
	withAbove, err := Add(boundaryAbove, layer.FromPair(sample))
	if err != nil {
		return layer.Layer{}, fmt.Errorf("combine: add slide above: %w", err)
	}

	withBoth, err := Add(withAbove, boundaryBelow)
	if err != nil {
		return layer.Layer{}, fmt.Errorf("combine: add slide below: %w", err)
	}

	return withBoth, nil
}
