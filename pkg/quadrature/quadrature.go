/*****************************************************************************************************************/

//	@author		Michael Roberts <michael@observerly.com>
//	@package	@observerly/iad
//	@license	Copyright © 2021-2025 observerly

/*****************************************************************************************************************/

// Package quadrature builds the direction-cosine quadrature sets the
// adding-doubling engine integrates flux over: Gauss-Legendre, Gauss-Radau
// and Gauss-Lobatto nodes and weights, and the critical-angle split rule
// that assembles them into a single quadrature set for one hemisphere.
package quadrature

/*****************************************************************************************************************/

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

/*****************************************************************************************************************/

const newtonTolerance = 1e-15

const maxNewtonIterations = 100

/*****************************************************************************************************************/

// Set is an ordered direction-cosine quadrature over (0, 1]: Nodes[i] are
// strictly increasing, Weights[i] are the matching quadrature weights, and
// TwoNuW[i] = 2*Nodes[i]*Weights[i] is cached for flux-integral contractions.
type Set struct {
	Nodes   []float64
	Weights []float64
	TwoNuW  []float64
}

/*****************************************************************************************************************/

// legendre returns P_n(x) and P_{n-1}(x) via the standard three-term
// recurrence. legendre(0, x) returns (1, 0).
func legendre(n int, x float64) (pn, pnm1 float64) {
	if n == 0 {
		return 1, 0
	}

	p0, p1 := 1.0, x

	for k := 2; k <= n; k++ {
		fk := float64(k)
		p2 := ((2*fk-1)*x*p1 - (fk-1)*p0) / fk
		p0, p1 = p1, p2
	}

	return p1, p0
}

/*****************************************************************************************************************/

// legendreDerivative returns P'_n(x) given P_n(x) and P_{n-1}(x), valid for |x| < 1.
func legendreDerivative(n int, x, pn, pnm1 float64) float64 {
	return float64(n) / (x*x - 1) * (x*pn - pnm1)
}

/*****************************************************************************************************************/

// Gauss returns the n Gauss-Legendre nodes and weights on [-1, 1].
func Gauss(n int) ([]float64, []float64, error) {
	if n < 1 {
		return nil, nil, fmt.Errorf("quadrature: gauss requires n >= 1, got %d", n)
	}

	nodes := make([]float64, n)
	weights := make([]float64, n)

	m := (n + 1) / 2

	for i := 0; i < m; i++ {
		// Asymptotic starting guess for the i-th root (Numerical Recipes gauleg):
		z := math.Cos(math.Pi * (float64(i) + 0.75) / (float64(n) + 0.5))

		var pn, pnm1, dpn float64

		for iter := 0; iter < maxNewtonIterations; iter++ {
			pn, pnm1 = legendre(n, z)
			dpn = legendreDerivative(n, z, pn, pnm1)

			dz := pn / dpn
			z -= dz

			if math.Abs(dz) < newtonTolerance {
				break
			}
		}

		nodes[i] = -z
		nodes[n-1-i] = z

		w := 2 / ((1 - z*z) * dpn * dpn)
		weights[i] = w
		weights[n-1-i] = w
	}

	return nodes, weights, nil
}

/*****************************************************************************************************************/

// Radau returns the n Gauss-Radau nodes and weights on [-1, 1] with the
// terminal node pinned at +1.
func Radau(n int) ([]float64, []float64, error) {
	if n < 1 {
		return nil, nil, fmt.Errorf("quadrature: radau requires n >= 1, got %d", n)
	}

	nodes := make([]float64, n)
	weights := make([]float64, n)

	nodes[n-1] = 1
	weights[n-1] = 2 / float64(n*n)

	// The remaining n-1 free nodes are the interior roots of P_{n-1}(x) - P_n(x):
	for i := 0; i < n-1; i++ {
		z := math.Cos(2 * math.Pi * float64(i+1) / (2*float64(n) - 1))

		for iter := 0; iter < maxNewtonIterations; iter++ {
			pnm1, pnm2 := legendre(n-1, z)
			pn, _ := legendre(n, z)

			f := pnm1 - pn

			dpnm1 := legendreDerivative(n-1, z, pnm1, pnm2)
			pn1, pn0 := legendre(n, z)
			dpn := legendreDerivative(n, z, pn1, pn0)

			df := dpnm1 - dpn

			dz := f / df
			z -= dz

			if math.Abs(dz) < newtonTolerance {
				break
			}
		}

		pnm1, _ := legendre(n-1, z)

		nodes[i] = z
		weights[i] = (1 + z) / (float64(n*n) * pnm1 * pnm1)
	}

	sort.Sort(byValue{nodes, weights})

	return nodes, weights, nil
}

/*****************************************************************************************************************/

// Lobatto returns the n Gauss-Lobatto nodes and weights on [-1, 1] with both
// terminal nodes pinned at -1 and +1.
func Lobatto(n int) ([]float64, []float64, error) {
	if n < 2 {
		return nil, nil, fmt.Errorf("quadrature: lobatto requires n >= 2, got %d", n)
	}

	nodes := make([]float64, n)
	weights := make([]float64, n)

	nodes[0] = -1
	nodes[n-1] = 1
	endWeight := 2 / float64(n*(n-1))
	weights[0] = endWeight
	weights[n-1] = endWeight

	// The n-2 interior nodes are the roots of P'_{n-1}(x):
	for i := 1; i < n-1; i++ {
		z := math.Cos(math.Pi * float64(i) / float64(n-1))

		for iter := 0; iter < maxNewtonIterations; iter++ {
			pn, pnm1 := legendre(n-1, z)
			dp := legendreDerivative(n-1, z, pn, pnm1)

			// Second derivative from the Legendre ODE: (1-x^2)P'' - 2xP' + n(n-1)P = 0
			nn := float64(n - 1)
			ddp := (2*z*dp - nn*(nn+1)*pn) / (1 - z*z)

			dz := dp / ddp
			z -= dz

			if math.Abs(dz) < newtonTolerance {
				break
			}
		}

		pn, _ := legendre(n-1, z)

		nodes[i] = z
		weights[i] = 2 / (float64(n*(n-1)) * pn * pn)
	}

	sort.Sort(byValue{nodes, weights})

	return nodes, weights, nil
}

/*****************************************************************************************************************/

type byValue struct {
	nodes   []float64
	weights []float64
}

func (b byValue) Len() int           { return len(b.nodes) }
func (b byValue) Less(i, j int) bool { return b.nodes[i] < b.nodes[j] }
func (b byValue) Swap(i, j int) {
	b.nodes[i], b.nodes[j] = b.nodes[j], b.nodes[i]
	b.weights[i], b.weights[j] = b.weights[j], b.weights[i]
}

/*****************************************************************************************************************/

// mapToInterval affinely maps a base rule on [-1, 1] to [a, b].
func mapToInterval(nodes, weights []float64, a, b float64) ([]float64, []float64) {
	mapped := make([]float64, len(nodes))
	scaled := make([]float64, len(weights))

	half := (b - a) / 2

	for i := range nodes {
		mapped[i] = a + half*(nodes[i]+1)
		scaled[i] = half * weights[i]
	}

	return mapped, scaled
}

/*****************************************************************************************************************/

// normalize rescales weights in place so that sum(2*nu*w) == 1 to double
// precision, absorbing any residual drift from joining sub-interval rules.
func normalize(nodes, weights []float64) {
	sum := 0.0
	for i := range nodes {
		sum += 2 * nodes[i] * weights[i]
	}

	if sum == 0 {
		return
	}

	for i := range weights {
		weights[i] /= sum
	}
}

/*****************************************************************************************************************/

func newSet(nodes, weights []float64) Set {
	twonuw := make([]float64, len(nodes))
	for i := range nodes {
		twonuw[i] = 2 * nodes[i] * weights[i]
	}

	return Set{Nodes: nodes, Weights: weights, TwoNuW: twonuw}
}

/*****************************************************************************************************************/

// insertNode inserts an extra node v with weight w into an already-built,
// ascending quadrature set, preserving order.
func insertNode(nodes, weights []float64, v, w float64) ([]float64, []float64) {
	i := sort.SearchFloat64s(nodes, v)

	newNodes := make([]float64, 0, len(nodes)+1)
	newWeights := make([]float64, 0, len(weights)+1)

	newNodes = append(newNodes, nodes[:i]...)
	newNodes = append(newNodes, v)
	newNodes = append(newNodes, nodes[i:]...)

	newWeights = append(newWeights, weights[:i]...)
	newWeights = append(newWeights, w)
	newWeights = append(newWeights, weights[i:]...)

	return newNodes, newWeights
}

/*****************************************************************************************************************/

// Build assembles the quadrature set for n directions in one hemisphere,
// given the critical cosine nuc (1 when the sample is index-matched to air,
// i.e. there is no total-internal-reflection split) and an optional
// non-normal incidence cosine nu0 (nu0 == 1 means normal incidence, nothing
// extra to insert).
func Build(n int, nuc, nu0 float64) (Set, error) {
	if n < 1 {
		return Set{}, errors.New("quadrature: n must be >= 1")
	}

	if nuc <= 0 || nuc > 1 {
		return Set{}, fmt.Errorf("quadrature: critical cosine out of range: %v", nuc)
	}

	if nu0 <= 0 || nu0 > 1 {
		return Set{}, fmt.Errorf("quadrature: nu0 out of range (0,1]: %v", nu0)
	}

	var nodes, weights []float64

	switch {
	case n == 1 && nu0 == 1:
		// A single direction at normal incidence: all the flux is carried by nu=1.
		nodes = []float64{1}
		weights = []float64{0.5}

	case nuc >= 1:
		// No total-internal-reflection split: plain Radau on (0, 1] pinned at nu=1.
		var err error
		nodes, weights, err = Radau(n)
		if err != nil {
			return Set{}, err
		}
		nodes, weights = mapToInterval(nodes, weights, 0, 1)

	default:
		// Split at the critical cosine: Gauss below it, Radau (pinned at 1) above it.
		n1 := int(math.Round(float64(n) * nuc))
		if n1 < 1 {
			n1 = 1
		}
		if n1 > n-1 {
			n1 = n - 1
		}
		n2 := n - n1

		gn, gw, err := Gauss(n1)
		if err != nil {
			return Set{}, err
		}
		gn, gw = mapToInterval(gn, gw, 0, nuc)

		rn, rw, err := Radau(n2)
		if err != nil {
			return Set{}, err
		}
		rn, rw = mapToInterval(rn, rw, nuc, 1)

		nodes = append(append([]float64{}, gn...), rn...)
		weights = append(append([]float64{}, gw...), rw...)
	}

	if nu0 != 1 {
		// Insert the requested non-normal incidence direction with zero weight:
		// the inserted node adds no flux of its own to the quadrature sums.
		nodes, weights = insertNode(nodes, weights, nu0, 0)
	}

	normalize(nodes, weights)

	return newSet(nodes, weights), nil
}

/*****************************************************************************************************************/
