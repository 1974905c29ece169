/*****************************************************************************************************************/

//	@author		Michael Roberts <michael@observerly.com>
//	@package	@observerly/iad
//	@license	Copyright © 2021-2025 observerly

/*****************************************************************************************************************/

// Package start builds the thinnest starting layer the doubling loop can
// grow from: the IGI (infinitesimal generator) and diamond initializers,
// plus the thickness/iteration-count selection rule.
package start

/*****************************************************************************************************************/

import (
	"fmt"

	"github.com/observerly/iad/pkg/layer"
	"github.com/observerly/iad/pkg/redistribution"
	"gonum.org/v1/gonum/mat"
)

/*****************************************************************************************************************/

// Initializer selects which closed-form starter builds the thin layer.
type Initializer int

/*****************************************************************************************************************/

const (
	// Auto picks IGI or Diamond based on ChooseThickness's output (see SelectInitializer).
	Auto Initializer = iota
	IGI
	Diamond
)

/*****************************************************************************************************************/

// diamondRatioThreshold is the dStart/min(nu) ratio above which Diamond is
// preferred over IGI for numerical stability (IGI's linearization degrades
// as dStart approaches the smallest direction cosine).
const diamondRatioThreshold = 0.1

/*****************************************************************************************************************/

// ChooseThickness picks a starting thickness dStart <= bStar * 2^-K for the
// smallest K >= 0 such that dStart also satisfies dStart <= min(nu)/2.
func ChooseThickness(bStar float64, nu []float64) (dStart float64, k int) {
	if bStar <= 0 {
		return 0, 0
	}

	minNu := nu[0]
	for _, v := range nu[1:] {
		if v < minNu {
			minNu = v
		}
	}

	maxStart := minNu / 2

	d := bStar
	for d > maxStart {
		d /= 2
		k++
	}

	return d, k
}

/*****************************************************************************************************************/

// SelectInitializer resolves Auto to IGI or Diamond based on how large
// dStart is relative to the smallest direction cosine.
func SelectInitializer(choice Initializer, dStart float64, nu []float64) Initializer {
	if choice != Auto {
		return choice
	}

	minNu := nu[0]
	for _, v := range nu[1:] {
		if v < minNu {
			minNu = v
		}
	}

	if minNu > 0 && dStart/minNu > diamondRatioThreshold {
		return Diamond
	}

	return IGI
}

/*****************************************************************************************************************/

// fluxWeight builds W = diag(2*nu*w) from a quadrature set's TwoNuW values.
func fluxWeight(twonuw []float64) *mat.Dense {
	return layer.Diag(twonuw)
}

/*****************************************************************************************************************/

// inverseNuDiag builds diag(1/nu).
func inverseNuDiag(nu []float64) *mat.Dense {
	inv := make([]float64, len(nu))
	for i, v := range nu {
		inv[i] = 1 / v
	}
	return layer.Diag(inv)
}

/*****************************************************************************************************************/

// BuildIGI constructs the symmetric thin-layer (R, T) pair via the
// infinitesimal-generator initializer:
//
//	R = a * h+- * W * dStart
//	T = I - dStart*(diag(1/nu) - a*h++*W)
func BuildIGI(a, dStart float64, nu []float64, twonuw []float64, h redistribution.Matrices) layer.Pair {
	n := len(nu)

	w := fluxWeight(twonuw)

	hppW := layer.Multiply(h.HPP, w)
	hpmW := layer.Multiply(h.HPM, w)

	r := layer.Clone(hpmW)
	r.Scale(a*dStart, r)

	inv := inverseNuDiag(nu)

	bracket := layer.Clone(hppW)
	bracket.Scale(a, bracket)
	bracket.Sub(inv, bracket)
	bracket.Scale(dStart, bracket)

	t := layer.Sub(layer.Identity(n), bracket)

	return layer.Pair{N: n, R: r, T: t}
}

/*****************************************************************************************************************/

// BuildDiamond constructs the symmetric thin-layer (R, T) pair by solving
// the linear system (I + dStart*A)*T = I, A = diag(1/nu) - a*h++*W, and
// R = dStart*a*h+-*W*T.
func BuildDiamond(a, dStart float64, nu []float64, twonuw []float64, h redistribution.Matrices) (layer.Pair, error) {
	n := len(nu)

	w := fluxWeight(twonuw)

	hppW := layer.Multiply(h.HPP, w)
	hppW.Scale(a, hppW)

	inv := inverseNuDiag(nu)

	aMat := layer.Sub(inv, hppW)
	aMat.Scale(dStart, aMat)

	system := layer.Add(layer.Identity(n), aMat)

	var t mat.Dense
	if err := t.Solve(system, layer.Identity(n)); err != nil {
		return layer.Pair{}, fmt.Errorf("start: diamond solve failed: %w: %v", layer.ErrSingular, err)
	}

	hpmW := layer.Multiply(h.HPM, w)
	hpmW.Scale(a*dStart, hpmW)

	r := layer.Multiply(hpmW, &t)

	return layer.Pair{N: n, R: r, T: &t}, nil
}

/*****************************************************************************************************************/

// Build picks an initializer (resolving Auto) and constructs the thin
// starting layer together with the doubling count K.
func Build(choice Initializer, a, bStar float64, nu []float64, twonuw []float64, h redistribution.Matrices) (layer.Pair, int, error) {
	dStart, k := ChooseThickness(bStar, nu)

	if bStar == 0 {
		// Pass-through identity: zero thickness, zero scattering.
		n := len(nu)
		return layer.Pair{N: n, R: layer.Zero(n), T: layer.Identity(n)}, 0, nil
	}

	resolved := SelectInitializer(choice, dStart, nu)

	switch resolved {
	case IGI:
		return BuildIGI(a, dStart, nu, twonuw, h), k, nil
	case Diamond:
		p, err := BuildDiamond(a, dStart, nu, twonuw, h)
		return p, k, err
	default:
		return layer.Pair{}, 0, fmt.Errorf("start: unknown initializer %v", resolved)
	}
}
