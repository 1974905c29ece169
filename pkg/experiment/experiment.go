/*****************************************************************************************************************/

//	@author		Michael Roberts <michael@observerly.com>
//	@package	@observerly/iad
//	@license	Copyright © 2021-2025 observerly

/*****************************************************************************************************************/

// Package experiment implements the forward measurement predictor that
// carries a sample's adding-doubling response through zero, one or two
// integrating spheres, and the inverse search that recovers (a, b, g) from
// measured reflectance/transmittance/unscattered-transmission.
package experiment

/*****************************************************************************************************************/

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/observerly/iad/pkg/fresnel"
	"github.com/observerly/iad/pkg/gridcache"
	"github.com/observerly/iad/pkg/sample"
	"github.com/observerly/iad/pkg/sphere"

	"gonum.org/v1/gonum/optimize"
)

/*****************************************************************************************************************/

// Status is the per-result diagnostic flag echoed as the single status
// character of the .txt result table.
type Status string

/*****************************************************************************************************************/

const (
	StatusOK          Status = "OK"
	StatusTimeout     Status = "TIMEOUT"
	StatusUnconverged Status = "UNCONVERGED"
	StatusImpossible  Status = "IMPOSSIBLE"
)

/*****************************************************************************************************************/

// Char returns the single-character status code of the .txt result format:
// '*' success, '?' warning, '!' failure.
func (s Status) Char() byte {
	switch s {
	case StatusOK:
		return '*'
	case StatusUnconverged, StatusTimeout:
		return '?'
	default:
		return '!'
	}
}

/*****************************************************************************************************************/

var (
	// ErrNonPhysical names the case of a measurement outside the forward
	// map's achievable region. Invert reports that case as StatusImpossible
	// and does not return this error.
	ErrNonPhysical = errors.New("experiment: measurement outside the achievable region")
	// ErrNoMeasurement is a true parameter error: there is nothing to invert.
	ErrNoMeasurement = errors.New("experiment: at least one of M_R, M_T must be present")
)

/*****************************************************************************************************************/

// Experiment bundles a Sample with its illumination, optional spheres and
// measurement triplet.
type Experiment struct {
	Sample       sample.Sample
	Reflection   *sphere.Sphere
	Transmission *sphere.Sphere

	// BeamDiameter and Wavelength are illumination metadata carried through
	// to the .txt output; they do not affect the forward calculation.
	BeamDiameter float64
	Wavelength   float64

	// IncludeDirectBeam is false when the instrument excludes the unscattered
	// direct beam from M_T (zero-sphere and reflection-sphere-only setups).
	IncludeDirectBeam bool

	HasMR, HasMT, HasMU bool
	MR, MT, MU          float64

	// RStd, TStd are the calibration-standard reflectance/transmittance the
	// one/two-sphere measurements are normalized against.
	RStd, TStd float64

	// FixedG is the anisotropy held constant during a 2-parameter (a, b)
	// search.
	FixedG float64

	Tolerance float64
	MaxIter   int
	Timeout   time.Duration
}

/*****************************************************************************************************************/

// Measured is the forward-predicted measurement triplet.
type Measured struct {
	MR, MT, MU float64
}

/*****************************************************************************************************************/

// unscatteredTransmission returns the collimated, unscattered transmission
// M_U through the sample-plus-slides stack: exp(-b/nu0) attenuation inside
// the sample times the specular transmittance of the boundary stack.
func unscatteredTransmission(s sample.Sample) (float64, error) {
	_, tSpec, err := fresnel.SpecularRT(s.NAbove, s.Index, s.NBelow, 0, s.Nu0)
	if err != nil {
		return 0, fmt.Errorf("experiment: computing unscattered transmission: %w", err)
	}

	muCollimated := s.Nu0
	if r := fresnel.CosSnell(s.Nu0, 1, s.Index); r > 0 {
		muCollimated = r
	}

	return math.Exp(-s.B/muCollimated) * tSpec, nil
}

/*****************************************************************************************************************/

// MeasuredRT predicts the measurement triplet an instrument would read for
// the Experiment's current Sample: zero spheres return the sample's own
// UR1/UT1 (minus the direct beam when excluded), one sphere applies its
// analytic gain, two spheres solve the coupled gain system.
func (e Experiment) MeasuredRT(driver *sample.Driver) (Measured, error) {
	result, err := driver.RT(e.Sample)
	if err != nil {
		return Measured{}, err
	}

	mu, err := unscatteredTransmission(e.Sample)
	if err != nil {
		return Measured{}, err
	}

	switch {
	case e.Reflection != nil && e.Transmission != nil:
		e.Reflection.PortReflectance[sphere.SamplePort] = result.URU
		e.Transmission.PortReflectance[sphere.SamplePort] = result.URU

		gainR, gainT, err := sphere.TwoSphereGain(*e.Reflection, *e.Transmission, sphere.SampleResponse{
			UR1: result.UR1, UT1: result.UT1, URU: result.URU, UTU: result.UTU,
		})
		if err != nil {
			return Measured{}, fmt.Errorf("experiment: two-sphere gain: %w", err)
		}

		mr := gainR * result.UR1
		mt := gainT * result.UT1
		if e.RStd != 0 {
			mr /= e.RStd
		}
		if e.TStd != 0 {
			mt /= e.TStd
		}

		return Measured{MR: mr, MT: mt, MU: mu}, nil

	case e.Reflection != nil:
		e.Reflection.PortReflectance[sphere.SamplePort] = result.URU

		gain, err := e.Reflection.Gain()
		if err != nil {
			return Measured{}, fmt.Errorf("experiment: single-sphere gain: %w", err)
		}

		mr := gain * result.UR1
		if e.RStd != 0 {
			mr /= e.RStd
		}

		mt := result.UT1
		if !e.IncludeDirectBeam {
			mt -= mu
		}

		return Measured{MR: mr, MT: mt, MU: mu}, nil

	case e.Transmission != nil:
		e.Transmission.PortReflectance[sphere.SamplePort] = result.URU

		gain, err := e.Transmission.Gain()
		if err != nil {
			return Measured{}, fmt.Errorf("experiment: single-sphere gain: %w", err)
		}

		mt := gain * result.UT1
		if e.TStd != 0 {
			mt /= e.TStd
		}

		return Measured{MR: result.UR1, MT: mt, MU: mu}, nil

	default:
		mr := result.UR1
		mt := result.UT1
		if !e.IncludeDirectBeam {
			mt -= mu
		}
		return Measured{MR: mr, MT: mt, MU: mu}, nil
	}
}

/*****************************************************************************************************************/

// Estimate is the recovered optical properties and diagnostic status of an
// inverse search.
type Estimate struct {
	A, B, G    float64
	Iterations int
	Status     Status
}

/*****************************************************************************************************************/

// brent finds a root of f on [lo, hi] (f(lo) and f(hi) must have opposite
// signs) to within tol, via Brent's method combining bisection, secant and
// inverse-quadratic interpolation steps. gonum/optimize has no bounded 1-D
// root finder, so this is hand-rolled.
func brent(f func(float64) float64, lo, hi, tol float64, maxIter int) (root float64, iterations int, converged bool) {
	a, b := lo, hi
	fa, fb := f(a), f(b)

	if fa*fb > 0 {
		return b, 0, false
	}

	if math.Abs(fa) < math.Abs(fb) {
		a, b = b, a
		fa, fb = fb, fa
	}

	c, fc := a, fa
	mflag := true
	d := a

	for i := 0; i < maxIter; i++ {
		iterations = i + 1

		if math.Abs(fb) < tol || math.Abs(b-a) < tol {
			return b, iterations, true
		}

		var s float64
		if fa != fc && fb != fc {
			// Inverse quadratic interpolation.
			s = a*fb*fc/((fa-fb)*(fa-fc)) +
				b*fa*fc/((fb-fa)*(fb-fc)) +
				c*fa*fb/((fc-fa)*(fc-fb))
		} else {
			// Secant step.
			s = b - fb*(b-a)/(fb-fa)
		}

		midpoint := (3*a + b) / 4
		cond1 := (s < midpoint && s < b) || (s > midpoint && s > b)
		cond2 := mflag && math.Abs(s-b) >= math.Abs(b-c)/2
		cond3 := !mflag && math.Abs(s-b) >= math.Abs(c-d)/2
		cond4 := mflag && math.Abs(b-c) < tol
		cond5 := !mflag && math.Abs(c-d) < tol

		if cond1 || cond2 || cond3 || cond4 || cond5 {
			s = (a + b) / 2
			mflag = true
		} else {
			mflag = false
		}

		fs := f(s)
		d = c
		c, fc = b, fb

		if fa*fs < 0 {
			b, fb = s, fs
		} else {
			a, fa = s, fs
		}

		if math.Abs(fa) < math.Abs(fb) {
			a, b = b, a
			fa, fb = fb, fa
		}
	}

	return b, iterations, math.Abs(fb) < tol
}

/*****************************************************************************************************************/

// searchA recovers a alone from M_R, holding b and g fixed, via Brent's
// method on [0, 1].
func searchA(e Experiment, driver *sample.Driver) (Estimate, error) {
	s := e.Sample

	objective := func(a float64) float64 {
		s.A = a
		m, err := Experiment{Sample: s, Reflection: e.Reflection, Transmission: e.Transmission, RStd: e.RStd, TStd: e.TStd, IncludeDirectBeam: e.IncludeDirectBeam}.MeasuredRT(driver)
		if err != nil {
			return math.NaN()
		}
		return m.MR - e.MR
	}

	root, iterations, converged := brent(objective, 0, 1, e.Tolerance, e.MaxIter)

	status := StatusOK
	if !converged {
		status = StatusImpossible
	}

	return Estimate{A: root, B: e.Sample.B, G: e.Sample.G, Iterations: iterations, Status: status}, nil
}

/*****************************************************************************************************************/

// refine2D runs a Nelder-Mead local search from x0 minimizing objective,
// capped at maxIter major iterations.
func refine2D(objective func(x []float64) float64, x0 []float64, maxIter int) ([]float64, int, bool) {
	problem := optimize.Problem{Func: objective}

	settings := &optimize.Settings{MajorIterations: maxIter}

	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if err != nil || result == nil {
		return x0, 0, false
	}

	return result.X, result.Stats.MajorIterations, result.Status == optimize.Success
}

/*****************************************************************************************************************/

// searchAB recovers (a, b) from (M_R, M_T) with g fixed, warm-started from
// the grid cache's nearest-cell match and refined via Nelder-Mead.
func searchAB(e Experiment, driver *sample.Driver, grid *gridcache.Grid) (Estimate, error) {
	a0, b0 := 0.5, 1.0

	if grid != nil && grid.Mode() == gridcache.ABMode {
		cell, _ := grid.Nearest(e.MR, e.MT)
		a0, b0 = cell.A, cell.B
	}

	s := e.Sample
	s.G = e.FixedG

	objective := func(x []float64) float64 {
		a, b := x[0], x[1]
		if a < 0 || a > 1 || b < 0 {
			return math.Inf(1)
		}
		s.A, s.B = a, b
		m, err := Experiment{Sample: s, Reflection: e.Reflection, Transmission: e.Transmission, RStd: e.RStd, TStd: e.TStd, IncludeDirectBeam: e.IncludeDirectBeam}.MeasuredRT(driver)
		if err != nil {
			return math.Inf(1)
		}
		dr := m.MR - e.MR
		dt := m.MT - e.MT
		return dr*dr + dt*dt
	}

	x, iterations, converged := refine2D(objective, []float64{a0, b0}, e.MaxIter)

	status := StatusOK
	if !converged {
		status = StatusUnconverged
	}
	if x[0] < 0 || x[0] > 1 || x[1] < 0 {
		status = StatusImpossible
	}

	return Estimate{A: x[0], B: x[1], G: e.FixedG, Iterations: iterations, Status: status}, nil
}

/*****************************************************************************************************************/

// searchABG recovers (a, b, g) from (M_R, M_T, M_U): M_U fixes the
// collimated optical thickness directly via Beer-Lambert, then an inner
// (a, g) search refines the remaining two parameters.
func searchABG(e Experiment, driver *sample.Driver, grid *gridcache.Grid) (Estimate, error) {
	muCollimated := e.Sample.Nu0
	if r := fresnel.CosSnell(e.Sample.Nu0, 1, e.Sample.Index); r > 0 {
		muCollimated = r
	}

	if e.MU <= 0 || e.MU >= 1 {
		return Estimate{A: 0, B: 0, G: 0, Status: StatusImpossible}, nil
	}

	bCollimated := -muCollimated * math.Log(e.MU)

	a0, g0 := 0.9, e.FixedG

	if grid != nil && grid.Mode() == gridcache.AGMode {
		cell, _ := grid.Nearest(e.MR, e.MT)
		a0, g0 = cell.A, cell.G
	}

	s := e.Sample
	s.B = bCollimated

	objective := func(x []float64) float64 {
		a, g := x[0], x[1]
		if a < 0 || a > 1 || g <= -1 || g >= 1 {
			return math.Inf(1)
		}
		s.A, s.G = a, g
		m, err := Experiment{Sample: s, Reflection: e.Reflection, Transmission: e.Transmission, RStd: e.RStd, TStd: e.TStd, IncludeDirectBeam: e.IncludeDirectBeam}.MeasuredRT(driver)
		if err != nil {
			return math.Inf(1)
		}
		dr := m.MR - e.MR
		dt := m.MT - e.MT
		return dr*dr + dt*dt
	}

	x, iterations, converged := refine2D(objective, []float64{a0, g0}, e.MaxIter)

	status := StatusOK
	if !converged {
		status = StatusUnconverged
	}
	if x[0] < 0 || x[0] > 1 || x[1] <= -1 || x[1] >= 1 {
		status = StatusImpossible
	}

	return Estimate{A: x[0], B: bCollimated, G: x[1], Iterations: iterations, Status: status}, nil
}

/*****************************************************************************************************************/

// Invert recovers (a, b, g) from whichever of M_R, M_T, M_U are present,
// honoring a per-call wall-clock timeout: on timeout the Sample's starting
// (a, b, g) is returned with StatusTimeout rather than an error. Progress the
// search made before the timeout is not reported.
func Invert(ctx context.Context, e Experiment, driver *sample.Driver, grid *gridcache.Grid) (Estimate, error) {
	if !e.HasMR && !e.HasMT {
		return Estimate{}, ErrNoMeasurement
	}

	if e.Tolerance <= 0 {
		e.Tolerance = 1e-4
	}
	if e.MaxIter <= 0 {
		e.MaxIter = 100
	}

	type outcome struct {
		estimate Estimate
		err      error
	}

	done := make(chan outcome, 1)

	go func() {
		var est Estimate
		var err error

		switch {
		case e.HasMR && e.HasMT && e.HasMU:
			est, err = searchABG(e, driver, grid)
		case e.HasMR && e.HasMT:
			est, err = searchAB(e, driver, grid)
		default:
			est, err = searchA(e, driver)
		}

		done <- outcome{est, err}
	}()

	select {
	case o := <-done:
		return o.estimate, o.err
	case <-ctx.Done():
		return Estimate{A: e.Sample.A, B: e.Sample.B, G: e.Sample.G, Status: StatusTimeout}, nil
	}
}
