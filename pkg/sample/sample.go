/*****************************************************************************************************************/

//	@author		Michael Roberts <michael@observerly.com>
//	@package	@observerly/iad
//	@license	Copyright © 2021-2025 observerly

/*****************************************************************************************************************/

// Package sample implements the top-level adding-doubling driver: given a
// Sample's intrinsic optical properties it builds the quadrature and
// redistribution matrices, selects and doubles a thin starter layer, wraps
// it in slide/air boundaries, and projects the resulting R/T matrices onto
// collimated and diffuse incident flux to yield UR1, UT1, URU, UTU.
package sample

/*****************************************************************************************************************/

import (
	"errors"
	"fmt"
	"sort"

	"github.com/observerly/iad/pkg/boundary"
	"github.com/observerly/iad/pkg/combine"
	"github.com/observerly/iad/pkg/fresnel"
	"github.com/observerly/iad/pkg/redistribution"
	"github.com/observerly/iad/pkg/start"

	"gonum.org/v1/gonum/mat"

	"github.com/observerly/iad/pkg/quadrature"
)

/*****************************************************************************************************************/

// ThickSentinel is the large finite optical thickness used in place of
// positive infinity, so that doubling terminates deterministically.
const ThickSentinel = 1e6

/*****************************************************************************************************************/

// ErrParamOutOfRange is returned when a Sample field falls outside its
// physically valid range.
var ErrParamOutOfRange = errors.New("sample: parameter out of range")

/*****************************************************************************************************************/

// Sample holds the intrinsic optical properties and geometry of a
// plane-parallel turbid slab.
type Sample struct {
	// A is the single-scattering albedo, a in [0, 1].
	A float64
	// B is the optical thickness, (mu_a + mu_s) * D, with ThickSentinel
	// standing in for "infinite".
	B float64
	// G is the scattering anisotropy (mean cosine), in (-1, 1).
	G float64
	// D is the physical thickness in mm.
	D float64
	// Index is the sample's own refractive index, n >= 1.
	Index float64
	// NAbove is the refractive index of the medium above the sample (a slide
	// or air).
	NAbove float64
	// NBelow is the refractive index of the medium below the sample.
	NBelow float64
	// Nu0 is the incident cosine, in (0, 1]; 1 means normal incidence.
	Nu0 float64
	// Quadrature is the number of directions N in one hemisphere.
	Quadrature int
	// Method selects the redistribution-matrix construction.
	Method redistribution.Method
	// Initializer selects the thin-layer starter; Auto resolves per
	// start.SelectInitializer.
	Initializer start.Initializer
}

/*****************************************************************************************************************/

// Default returns a Sample with a reasonable default geometry and search
// configuration for the given intrinsic properties: index-matched to air,
// normal incidence, N = 8, Legendre redistribution, auto-selected starter.
func Default(a, b, g float64) Sample {
	return Sample{
		A:           a,
		B:           b,
		G:           g,
		D:           1,
		Index:       1,
		NAbove:      1,
		NBelow:      1,
		Nu0:         1,
		Quadrature:  8,
		Method:      redistribution.Legendre,
		Initializer: start.Auto,
	}
}

/*****************************************************************************************************************/

// DerivedCoefficients returns the sample's absorption and scattering
// coefficients, mu_a = (1-a)*b/d, mu_s = a*b/d, and the reduced scattering
// coefficient mu_s' = mu_s*(1-g).
func (s Sample) DerivedCoefficients() (muA, muS, muSPrime float64) {
	muS = s.A * s.B / s.D
	muA = (1 - s.A) * s.B / s.D
	muSPrime = muS * (1 - s.G)
	return muA, muS, muSPrime
}

/*****************************************************************************************************************/

// validate checks a Sample's fields against their physically valid ranges.
func validate(s Sample) error {
	if s.A < 0 || s.A > 1 {
		return fmt.Errorf("%w: a = %v, want [0, 1]", ErrParamOutOfRange, s.A)
	}
	if s.B < 0 {
		return fmt.Errorf("%w: b = %v, want >= 0", ErrParamOutOfRange, s.B)
	}
	if s.G <= -1 || s.G >= 1 {
		return fmt.Errorf("%w: g = %v, want (-1, 1)", ErrParamOutOfRange, s.G)
	}
	if s.Index < 1 {
		return fmt.Errorf("%w: n = %v, want >= 1", ErrParamOutOfRange, s.Index)
	}
	if s.Nu0 <= 0 || s.Nu0 > 1 {
		return fmt.Errorf("%w: nu0 = %v, want (0, 1]", ErrParamOutOfRange, s.Nu0)
	}
	if s.Quadrature < 2 {
		return fmt.Errorf("%w: N = %d, want >= 2", ErrParamOutOfRange, s.Quadrature)
	}
	if s.D <= 0 {
		return fmt.Errorf("%w: d = %v, want > 0", ErrParamOutOfRange, s.D)
	}
	return nil
}

/*****************************************************************************************************************/

// Result is the projected scalar response of a forward adding-doubling call:
// total reflectance/transmittance under collimated normal incidence (UR1,
// UT1) and under uniform diffuse incidence (URU, UTU).
type Result struct {
	UR1 float64
	UT1 float64
	URU float64
	UTU float64
}

/*****************************************************************************************************************/

type quadratureCache struct {
	valid bool
	n     int
	index float64
	nu0   float64
	set   quadrature.Set
}

/*****************************************************************************************************************/

type redistributionCache struct {
	valid  bool
	method redistribution.Method
	g      float64
	n      int
	h      redistribution.Matrices
}

/*****************************************************************************************************************/

// Driver caches the quadrature set and redistribution matrices across
// forward calls, rebuilding only when the fields they depend on change —
// neither depends on a or b, so repeated calls that only vary those two
// reuse both caches untouched. The zero value is ready to use.
type Driver struct {
	quad quadratureCache
	redi redistributionCache
}

/*****************************************************************************************************************/

// NewDriver returns a ready-to-use Driver with an empty cache.
func NewDriver() *Driver {
	return &Driver{}
}

/*****************************************************************************************************************/

func (d *Driver) quadratureFor(s Sample) (quadrature.Set, error) {
	if d.quad.valid && d.quad.n == s.Quadrature && d.quad.index == s.Index && d.quad.nu0 == s.Nu0 {
		return d.quad.set, nil
	}

	nuc := 1.0
	if c := fresnel.CosCritical(s.Index, 1); c > 0 {
		nuc = c
	}

	set, err := quadrature.Build(s.Quadrature, nuc, s.Nu0)
	if err != nil {
		return quadrature.Set{}, fmt.Errorf("sample: building quadrature: %w", err)
	}

	d.quad = quadratureCache{valid: true, n: s.Quadrature, index: s.Index, nu0: s.Nu0, set: set}

	return set, nil
}

/*****************************************************************************************************************/

func (d *Driver) redistributionFor(s Sample, nu []float64) (redistribution.Matrices, error) {
	if d.redi.valid && d.redi.method == s.Method && d.redi.g == s.G && d.redi.n == len(nu) {
		return d.redi.h, nil
	}

	h, err := redistribution.Build(s.Method, s.G, nu)
	if err != nil {
		return redistribution.Matrices{}, fmt.Errorf("sample: building redistribution matrices: %w", err)
	}

	d.redi = redistributionCache{valid: true, method: s.Method, g: s.G, n: len(nu), h: h}

	return h, nil
}

/*****************************************************************************************************************/

// RTMatrices builds the full N x N angle-resolved reflectance/transmittance
// matrices for a sample wrapped in its above/below boundaries: R01 and T01
// for light incident from above, R10 and T10 for light incident from below.
func (d *Driver) RTMatrices(s Sample) (r01, r10, t01, t10 *mat.Dense, err error) {
	if err := validate(s); err != nil {
		return nil, nil, nil, nil, err
	}

	set, err := d.quadratureFor(s)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	h, err := d.redistributionFor(s, set.Nodes)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	aStar, bStar := redistribution.SimilarityTransform(s.A, s.B, h.GM)
	if s.B >= ThickSentinel {
		bStar = ThickSentinel
	}

	thin, k, err := start.Build(s.Initializer, aStar, bStar, set.Nodes, set.TwoNuW, h)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("sample: building thin starter layer: %w", err)
	}

	doubled, _, err := combine.Double(thin, k)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("sample: doubling thin layer: %w", err)
	}

	boundaryAbove := boundary.Build(s.Index, s.NAbove, set.Nodes)
	boundaryBelow := boundary.Build(s.NBelow, s.Index, set.Nodes)

	full, err := combine.AddSlides(boundaryAbove, boundaryBelow, doubled)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("sample: adding boundary slides: %w", err)
	}

	return full.R01, full.R10, full.T01, full.T10, nil
}

/*****************************************************************************************************************/

// incidentIndex returns the index of nu0 within an ascending quadrature node
// slice.
func incidentIndex(nu []float64, nu0 float64) int {
	i := sort.SearchFloat64s(nu, nu0)
	if i >= len(nu) {
		return len(nu) - 1
	}
	return i
}

/*****************************************************************************************************************/

// projectCollimated contracts matrix m's i0-th column against the flux
// weights, normalized by the incident cone's own weight: the total
// reflectance or transmittance for collimated incidence at nu0.
func projectCollimated(m *mat.Dense, twonuw []float64, i0 int) float64 {
	n, _ := m.Dims()

	sum := 0.0
	for i := 0; i < n; i++ {
		sum += twonuw[i] * m.At(i, i0)
	}

	return sum / twonuw[i0]
}

/*****************************************************************************************************************/

// projectDiffuse contracts matrix m against the flux weights on both axes:
// the total reflectance or transmittance for uniform diffuse incidence.
func projectDiffuse(m *mat.Dense, twonuw []float64) float64 {
	n, _ := m.Dims()

	sum := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sum += twonuw[i] * m.At(i, j)
		}
	}

	return sum
}

/*****************************************************************************************************************/

// RT computes the scalar reflectance/transmittance response of a sample:
// UR1, UT1 under collimated incidence at Nu0, URU, UTU under uniform diffuse
// incidence.
func (d *Driver) RT(s Sample) (Result, error) {
	r01, _, t01, _, err := d.RTMatrices(s)
	if err != nil {
		return Result{}, err
	}

	set, err := d.quadratureFor(s)
	if err != nil {
		return Result{}, err
	}

	i0 := incidentIndex(set.Nodes, s.Nu0)

	return Result{
		UR1: projectCollimated(r01, set.TwoNuW, i0),
		UT1: projectCollimated(t01, set.TwoNuW, i0),
		URU: projectDiffuse(r01, set.TwoNuW),
		UTU: projectDiffuse(t01, set.TwoNuW),
	}, nil
}

/*****************************************************************************************************************/

// RTArray evaluates RT for each element of an array-valued forward call,
// reusing the Driver's quadrature and redistribution cache across elements
// whenever only A or B varies between Samples. Results preserve input order.
func (d *Driver) RTArray(ss []Sample) ([]Result, error) {
	results := make([]Result, len(ss))

	for i, s := range ss {
		r, err := d.RT(s)
		if err != nil {
			return nil, fmt.Errorf("sample: array element %d: %w", i, err)
		}
		results[i] = r
	}

	return results, nil
}
