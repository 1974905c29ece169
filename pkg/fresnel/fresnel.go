/*****************************************************************************************************************/

//	@author		Michael Roberts <michael@observerly.com>
//	@package	@observerly/iad
//	@license	Copyright © 2021-2025 observerly

/*****************************************************************************************************************/

// Package fresnel implements unpolarized Fresnel reflectance, Snell
// refraction and the closed-form specular transfer through a glass-slab
// sandwich.
package fresnel

/*****************************************************************************************************************/

import (
	"errors"
	"math"
)

/*****************************************************************************************************************/

// R computes the unpolarized Fresnel reflectance for light travelling at
// cosine mu (measured from the interface normal, in medium n1) crossing
// into medium n2. Returns 1 (total internal reflection) when the refracted
// ray cannot propagate.
func R(mu, n1, n2 float64) float64 {
	if n1 == n2 {
		return 0
	}

	sin2t := (n1 / n2) * (n1 / n2) * (1 - mu*mu)

	if sin2t > 1 {
		return 1
	}

	cost := math.Sqrt(1 - sin2t)

	rs := (n1*mu - n2*cost) / (n1*mu + n2*cost)
	rp := (n1*cost - n2*mu) / (n1*cost + n2*mu)

	return (rs*rs + rp*rp) / 2
}

/*****************************************************************************************************************/

// CosSnell returns the Snell-refracted cosine of light entering medium n2
// from medium n1 at cosine mu. Returns 0 under total internal reflection.
func CosSnell(mu, n1, n2 float64) float64 {
	if n1 == n2 {
		return mu
	}

	sin2t := (n1 / n2) * (n1 / n2) * (1 - mu*mu)

	if sin2t > 1 {
		return 0
	}

	return math.Sqrt(1 - sin2t)
}

/*****************************************************************************************************************/

// CosCritical returns the cosine of the critical angle for light travelling
// from the (optically denser) medium n1 into n2. Returns 0 when n1 <= n2
// (no total internal reflection is possible).
func CosCritical(n1, n2 float64) float64 {
	if n1 <= n2 {
		return 0
	}

	ratio := n2 / n1

	return math.Sqrt(1 - ratio*ratio)
}

/*****************************************************************************************************************/

// SpecularRT returns the specular reflectance and transmittance of an
// air-glass-slab-glass-air sandwich at incidence cosine muInc, with the
// slab's internal absorption exp(-bSlab/muSlab) and the geometric series of
// multiple internal reflections summed in closed form.
func SpecularRT(nTop, nSlab, nBot, bSlab, muInc float64) (rSpec, tSpec float64, err error) {
	if muInc <= 0 || muInc > 1 {
		return 0, 0, errors.New("fresnel: muInc out of range (0,1]")
	}

	// Refract from air into the top boundary of the slab:
	r1 := R(muInc, 1, nTop)
	muSlabTop := CosSnell(muInc, 1, nTop)

	r2 := R(muSlabTop, nTop, nSlab)
	muSlab := CosSnell(muSlabTop, nTop, nSlab)

	r3 := R(muSlab, nSlab, nBot)
	muSlabBot := CosSnell(muSlab, nSlab, nBot)

	r4 := R(muSlabBot, nBot, 1)

	if muSlab == 0 {
		// Total internal reflection before reaching the slab interior:
		return r1, 0, nil
	}

	att := math.Exp(-bSlab / muSlab)

	// Geometric series over round-trips bouncing between the two internal
	// boundaries (r2 at the top-of-slab interface seen from inside, r3 at the
	// bottom-of-slab interface), each round trip attenuated by att^2:
	rt := r2 * r3 * att * att
	if rt >= 1 {
		rt = 1 - 1e-12
	}

	denom := 1 - rt

	tThrough := (1 - r1) * (1 - r2) * att * (1 - r3) * (1 - r4) / denom

	rInternal := r2 + (1-r2)*(1-r2)*r3*att*att/denom

	rSpec = r1 + (1-r1)*(1-r1)*rInternal

	tSpec = tThrough

	return rSpec, tSpec, nil
}

/*****************************************************************************************************************/

// AbsorbingGlassRT returns the specular reflectance and transmittance of a
// single glass slide sandwiched between two, possibly different, media — nIn
// on the incidence side, nOut beyond the slide — at incidence cosine mu in
// nIn. muOut is the cosine at which the transmitted flux emerges into nOut,
// after refracting through the slide; callers needing to redistribute that
// flux across a quadrature use it as the target cosine. Runs the same
// geometric-series summation as SpecularRT over a single internal medium
// rather than two, so it composes in either direction: call it with
// (nSample, nSlide, nAir, ...) for the inward-facing interface, or with
// (nAir, nSlide, nSample, ...) for the outward-facing one.
func AbsorbingGlassRT(nIn, nGlass, nOut, mu, bGlass float64) (r, t, muOut float64, err error) {
	if mu <= 0 || mu > 1 {
		return 0, 0, 0, errors.New("fresnel: mu out of range (0,1]")
	}

	r1 := R(mu, nIn, nGlass)
	muGlass := CosSnell(mu, nIn, nGlass)

	if muGlass == 0 {
		return r1, 0, 0, nil
	}

	r2 := R(muGlass, nGlass, nOut)
	muOut = CosSnell(muGlass, nGlass, nOut)
	att := math.Exp(-bGlass / muGlass)

	rt := r1 * r2 * att * att
	if rt >= 1 {
		rt = 1 - 1e-12
	}

	denom := 1 - rt

	t = (1 - r1) * att * (1 - r2) / denom
	r = r1 + (1-r1)*(1-r1)*r2*att*att/denom

	return r, t, muOut, nil
}

/*****************************************************************************************************************/
