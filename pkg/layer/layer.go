/*****************************************************************************************************************/

//	@author		Michael Roberts <michael@observerly.com>
//	@package	@observerly/iad
//	@license	Copyright © 2021-2025 observerly

/*****************************************************************************************************************/

// Package layer defines the R/T matrix substrate shared by the start,
// combine and boundary components: four N x N matrices per layer (R01, R10,
// T01, T10), and the handful of gonum/mat-backed linear algebra primitives
// the adding-doubling recurrences need (solve, not invert).
package layer

/*****************************************************************************************************************/

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

/*****************************************************************************************************************/

// Pair is the symmetric (R, T) matrix pair for a slab that looks the same
// from either side: R01 == R10 and T01 == T10.
type Pair struct {
	N int
	R *mat.Dense
	T *mat.Dense
}

/*****************************************************************************************************************/

// Layer is the general, possibly-asymmetric four-matrix representation of a
// slab: light hitting from above (subscript 01) and from below (10).
type Layer struct {
	N   int
	R01 *mat.Dense
	R10 *mat.Dense
	T01 *mat.Dense
	T10 *mat.Dense
}

/*****************************************************************************************************************/

// FromPair lifts a symmetric Pair into the general asymmetric representation,
// sharing the underlying matrices (R01 == R10, T01 == T10 by identity).
func FromPair(p Pair) Layer {
	return Layer{N: p.N, R01: p.R, R10: p.R, T01: p.T, T10: p.T}
}

/*****************************************************************************************************************/

// IsSymmetric reports whether l's R01/R10 and T01/T10 are the same matrix.
func (l Layer) IsSymmetric() bool {
	return l.R01 == l.R10 && l.T01 == l.T10
}

/*****************************************************************************************************************/

// Zero allocates an n x n zero matrix.
func Zero(n int) *mat.Dense {
	return mat.NewDense(n, n, nil)
}

/*****************************************************************************************************************/

// Identity allocates an n x n identity matrix.
func Identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

/*****************************************************************************************************************/

// Diag allocates an n x n diagonal matrix from the given values.
func Diag(values []float64) *mat.Dense {
	n := len(values)
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, values[i])
	}
	return m
}

/*****************************************************************************************************************/

// Clone returns a deep copy of m.
func Clone(m *mat.Dense) *mat.Dense {
	var c mat.Dense
	c.CloneFrom(m)
	return &c
}

/*****************************************************************************************************************/

// RightDivide computes X = B * M^-1 by solving the transposed system
// M^T * X^T = B^T, never forming M^-1 explicitly. This is the primitive the
// add-layer rule (spec C5) is built on.
func RightDivide(b, m *mat.Dense) (*mat.Dense, error) {
	br, bc := b.Dims()
	mr, mc := m.Dims()

	if mr != mc {
		return nil, fmt.Errorf("layer: RightDivide requires a square divisor, got %dx%d", mr, mc)
	}

	if bc != mr {
		return nil, fmt.Errorf("layer: RightDivide dimension mismatch: %dx%d / %dx%d", br, bc, mr, mc)
	}

	var xt mat.Dense
	if err := xt.Solve(m.T(), b.T()); err != nil {
		return nil, fmt.Errorf("layer: %w: %v", errSingular, err)
	}

	var x mat.Dense
	x.CloneFrom(xt.T())

	return &x, nil
}

/*****************************************************************************************************************/

var errSingular = errors.New("singular or near-singular matrix in linear solve")

// ErrSingular is returned (wrapped) when an add-layer solve encounters a
// near-singular (I - R*R) system.
var ErrSingular = errSingular

/*****************************************************************************************************************/

// Multiply returns a*b.
func Multiply(a, b *mat.Dense) *mat.Dense {
	var c mat.Dense
	c.Mul(a, b)
	return &c
}

/*****************************************************************************************************************/

// Add returns a+b.
func Add(a, b *mat.Dense) *mat.Dense {
	var c mat.Dense
	c.Add(a, b)
	return &c
}

/*****************************************************************************************************************/

// Sub returns a-b.
func Sub(a, b *mat.Dense) *mat.Dense {
	var c mat.Dense
	c.Sub(a, b)
	return &c
}

/*****************************************************************************************************************/

// MaxDiffuseTransmittance returns the largest single element of t, used by
// the doubling loop to detect the thick-slab limit (spec C5).
func MaxDiffuseTransmittance(t *mat.Dense) float64 {
	r, c := t.Dims()
	max := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := t.At(i, j); v > max {
				max = v
			}
		}
	}
	return max
}
