/*****************************************************************************************************************/

//	@author		Michael Roberts <michael@observerly.com>
//	@package	@observerly/iad
//	@license	Copyright © 2021-2025 observerly

/*****************************************************************************************************************/

// Package redistribution builds the azimuth-averaged Henyey-Greenstein
// redistribution matrices h++ and h+-, either via a delta-M Legendre-moment
// truncation (the default) or via the complete elliptic integral closed
// form.
package redistribution

/*****************************************************************************************************************/

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/mathext"
)

/*****************************************************************************************************************/

// Method selects how the redistribution matrices are computed.
type Method int

/*****************************************************************************************************************/

const (
	// Legendre applies the delta-M truncation with similarity-transformed
	// albedo and thickness. This is the default, production path.
	Legendre Method = iota
	// Elliptic evaluates the closed-form complete elliptic integral. Used
	// for diagnostics; no delta-M transform is applied.
	Elliptic
)

/*****************************************************************************************************************/

// GMThreshold is the |g^M| bias threshold above which the default order
// M = 2N is adaptively raised.
const GMThreshold = 0.001

/*****************************************************************************************************************/

// MaxOrderMultiple caps the adaptive order raise at 8*N.
const MaxOrderMultiple = 8

/*****************************************************************************************************************/

// Matrices holds the two N x N redistribution matrices and the delta-M
// scaling factor used to similarity-transform a and b.
type Matrices struct {
	HPP *mat.Dense // h++ : same-hemisphere scattering
	HPM *mat.Dense // h+- : opposite-hemisphere scattering
	GM  float64    // g^M, the delta-M scaling factor (0 for Elliptic)
}

/*****************************************************************************************************************/

// legendreP evaluates P_0..P_order(x) into dst (len == order+1).
func legendreP(order int, x float64, dst []float64) {
	dst[0] = 1
	if order == 0 {
		return
	}
	dst[1] = x
	for k := 2; k <= order; k++ {
		fk := float64(k)
		dst[k] = ((2*fk-1)*x*dst[k-1] - (fk-1)*dst[k-2]) / fk
	}
}

/*****************************************************************************************************************/

// chiStar returns the delta-M Legendre moments chi*_0..chi*_{m-1} for
// anisotropy g and order m, along with gm = g^m.
func chiStar(g float64, m int) ([]float64, float64) {
	gm := math.Pow(g, float64(m))

	chi := make([]float64, m)
	for k := 0; k < m; k++ {
		gk := math.Pow(g, float64(k))
		chi[k] = (gk - gm) / (1 - gm)
	}

	return chi, gm
}

/*****************************************************************************************************************/

// Order picks the delta-M truncation order for anisotropy g and quadrature
// size n, starting from the default M = 2n and adaptively raising it while
// |g^M| exceeds GMThreshold, up to MaxOrderMultiple*n.
func Order(g float64, n int) int {
	m := 2 * n

	for m < MaxOrderMultiple*n {
		if math.Abs(math.Pow(g, float64(m))) <= GMThreshold {
			break
		}
		m += n
	}

	return m
}

/*****************************************************************************************************************/

// SimilarityTransform returns the delta-M transformed albedo a* and optical
// thickness b* for the given gm = g^M.
func SimilarityTransform(a, b, gm float64) (aStar, bStar float64) {
	aStar = a * (1 - gm) / (1 - a*gm)
	bStar = (1 - a*gm) * b
	return aStar, bStar
}

/*****************************************************************************************************************/

// BuildLegendre computes h++, h+- via the delta-M Legendre sum for
// anisotropy g, order m, over quadrature nodes nu.
func BuildLegendre(g float64, m int, nu []float64) (Matrices, error) {
	if m < 1 {
		return Matrices{}, fmt.Errorf("redistribution: order must be >= 1, got %d", m)
	}

	n := len(nu)

	chi, gm := chiStar(g, m)

	hpp := mat.NewDense(n, n, nil)
	hpm := mat.NewDense(n, n, nil)

	pi := make([]float64, m)
	pj := make([]float64, m)
	pjNeg := make([]float64, m)

	for i := 0; i < n; i++ {
		legendreP(m-1, nu[i], pi)

		for j := 0; j < n; j++ {
			legendreP(m-1, nu[j], pj)
			legendreP(m-1, -nu[j], pjNeg)

			var sumPP, sumPM float64
			for k := 0; k < m; k++ {
				weight := (2*float64(k) + 1) * chi[k]
				sumPP += weight * pi[k] * pj[k]
				sumPM += weight * pi[k] * pjNeg[k]
			}

			hpp.Set(i, j, sumPP)
			hpm.Set(i, j, sumPM)
		}
	}

	return Matrices{HPP: hpp, HPM: hpm, GM: gm}, nil
}

/*****************************************************************************************************************/

// BuildElliptic computes h++, h+- via the complete elliptic integral of the
// second kind closed form, without any delta-M transform.
func BuildElliptic(g float64, nu []float64) (Matrices, error) {
	if math.Abs(g) >= 1 {
		return Matrices{}, fmt.Errorf("redistribution: |g| must be < 1, got %v", g)
	}

	n := len(nu)

	hpp := mat.NewDense(n, n, nil)
	hpm := mat.NewDense(n, n, nil)

	for i := 0; i < n; i++ {
		si := math.Sqrt(1 - nu[i]*nu[i])

		for j := 0; j < n; j++ {
			sj := math.Sqrt(1 - nu[j]*nu[j])

			hpp.Set(i, j, ellipticH(g, nu[i], nu[j], si, sj))
			hpm.Set(i, j, ellipticH(g, nu[i], -nu[j], si, sj))
		}
	}

	return Matrices{HPP: hpp, HPM: hpm, GM: 0}, nil
}

/*****************************************************************************************************************/

// ellipticH evaluates the closed-form h(nu_i, nu_j) = (2/pi)(1-g^2) /
// [(alpha-gamma) sqrt(alpha+gamma)] * E(sqrt(2 gamma/(alpha+gamma))), where
// alpha = 1 + g^2 - 2*g*nui*nuj and gamma = 2*g*si*sj.
func ellipticH(g, nui, nuj, si, sj float64) float64 {
	alpha := 1 + g*g - 2*g*nui*nuj
	gamma := 2 * g * si * sj

	denomSqrt := alpha + gamma
	if denomSqrt <= 0 {
		return 0
	}

	m := 2 * gamma / denomSqrt
	if m < 0 {
		m = 0
	}
	if m > 1 {
		m = 1
	}

	e := mathext.EllipticE(math.Pi/2, m)

	d := alpha - gamma
	if d == 0 {
		d = 1e-300
	}

	return (2 / math.Pi) * (1 - g*g) / (d * math.Sqrt(denomSqrt)) * e
}

/*****************************************************************************************************************/

// Build dispatches to BuildLegendre or BuildElliptic per method. For
// Legendre, the order is chosen adaptively via Order. For g == 0 both methods
// return constantMatrices instead.
func Build(method Method, g float64, n []float64) (Matrices, error) {
	switch method {
	case Legendre:
		if g == 0 {
			return constantMatrices(len(n)), nil
		}
		m := Order(g, len(n))
		return BuildLegendre(g, m, n)
	case Elliptic:
		if g == 0 {
			return constantMatrices(len(n)), nil
		}
		return BuildElliptic(g, n)
	default:
		return Matrices{}, fmt.Errorf("redistribution: unknown method %v", method)
	}
}

/*****************************************************************************************************************/

// constantMatrices returns the isotropic (g == 0) redistribution matrices:
// h = 1/(4*pi) expanded onto the quadrature, azimuth-averaged to 1/2.
func constantMatrices(n int) Matrices {
	hpp := mat.NewDense(n, n, nil)
	hpm := mat.NewDense(n, n, nil)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			hpp.Set(i, j, 0.5)
			hpm.Set(i, j, 0.5)
		}
	}

	return Matrices{HPP: hpp, HPM: hpm, GM: 0}
}
