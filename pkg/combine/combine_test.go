/*****************************************************************************************************************/

//	@author		Michael Roberts <michael@observerly.com>
//	@package	@observerly/iad
//	@license	Copyright © 2021-2025 observerly

/*****************************************************************************************************************/

package combine

/*****************************************************************************************************************/

import (
	"math"
	"testing"

	"github.com/observerly/iad/pkg/layer"
)

/*****************************************************************************************************************/

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

/*****************************************************************************************************************/

// identityLayer is a pass-through slab: R=0, T=I.
func identityLayer(n int) layer.Layer {
	return layer.FromPair(layer.Pair{N: n, R: layer.Zero(n), T: layer.Identity(n)})
}

/*****************************************************************************************************************/

func TestAddWithIdentityLayerIsPassThrough(t *testing.T) {
	n := 4

	passThrough := identityLayer(n)

	sample := layer.Pair{N: n, R: layer.Diag([]float64{0.1, 0.1, 0.1, 0.1}), T: layer.Diag([]float64{0.8, 0.8, 0.8, 0.8})}

	combined, err := Add(passThrough, layer.FromPair(sample))
	if err != nil {
		t.Fatalf("Add returned unexpected error: %v", err)
	}

	for i := 0; i < n; i++ {
		if !almostEqual(combined.R01.At(i, i), 0.1, 1e-9) {
			t.Errorf("R01[%d,%d] = %v; want 0.1 (pass-through above a slab)", i, i, combined.R01.At(i, i))
		}
		if !almostEqual(combined.T01.At(i, i), 0.8, 1e-9) {
			t.Errorf("T01[%d,%d] = %v; want 0.8", i, i, combined.T01.At(i, i))
		}
	}
}

/*****************************************************************************************************************/

func TestDoubleOfIdentityStaysIdentity(t *testing.T) {
	n := 3

	pair := layer.Pair{N: n, R: layer.Zero(n), T: layer.Identity(n)}

	doubled, frozen, err := Double(pair, 5)
	if err != nil {
		t.Fatalf("Double returned unexpected error: %v", err)
	}

	if frozen {
		t.Error("Double of an identity pass-through should not trigger the thick-slab freeze")
	}

	for i := 0; i < n; i++ {
		if !almostEqual(doubled.T.At(i, i), 1, 1e-9) {
			t.Errorf("T[%d,%d] = %v; want 1", i, i, doubled.T.At(i, i))
		}
		if !almostEqual(doubled.R.At(i, i), 0, 1e-9) {
			t.Errorf("R[%d,%d] = %v; want 0", i, i, doubled.R.At(i, i))
		}
	}
}

/*****************************************************************************************************************/

func TestDoubleDetectsThickSlabLimit(t *testing.T) {
	n := 2

	// A strongly absorbing thin layer: doubling many times should drive T to
	// effectively zero and trip the freeze.
	pair := layer.Pair{N: n, R: layer.Zero(n), T: layer.Diag([]float64{0.3, 0.3})}

	doubled, frozen, err := Double(pair, 40)
	if err != nil {
		t.Fatalf("Double returned unexpected error: %v", err)
	}

	if !frozen {
		t.Error("expected the thick-slab limit to be detected after 40 doublings of a strongly absorbing layer")
	}

	if layer.MaxDiffuseTransmittance(doubled.T) != 0 {
		t.Errorf("MaxDiffuseTransmittance = %v; want 0 once frozen", layer.MaxDiffuseTransmittance(doubled.T))
	}
}
