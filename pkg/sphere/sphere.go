/*****************************************************************************************************************/

//	@author		Michael Roberts <michael@observerly.com>
//	@package	@observerly/iad
//	@license	Copyright © 2021-2025 observerly

/*****************************************************************************************************************/

// Package sphere implements the integrating-sphere model: single- and
// two-sphere analytic gain, and a Monte-Carlo sphere simulator used to
// validate the analytic formulas.
package sphere

/*****************************************************************************************************************/

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

/*****************************************************************************************************************/

// Port names the four port positions of a sphere, stored in a flat array
// indexed by this enum rather than as cyclic pointer references.
type Port int

/*****************************************************************************************************************/

const (
	SamplePort Port = iota
	ThirdPort
	DetectorPort
	EmptyPort
	portCount
)

/*****************************************************************************************************************/

// ErrInvalidGeometry is returned when a Sphere's port diameters exceed its
// own diameter, or another geometric invariant is violated.
var ErrInvalidGeometry = errors.New("sphere: invalid geometry")

/*****************************************************************************************************************/

// Sphere holds the geometry and per-port reflectance state of a single
// integrating sphere.
type Sphere struct {
	// Diameter is the sphere's internal diameter.
	Diameter float64
	// PortDiameter holds each port's diameter, indexed by Port.
	PortDiameter [portCount]float64
	// PortReflectance holds each port's current reflectance, indexed by
	// Port. The sample port's reflectance is updated between calls as the
	// sample's diffuse response (URU for diffuse incidence, UR1 for
	// collimated) changes.
	PortReflectance [portCount]float64
	// WallReflectance is r_wall.
	WallReflectance float64
	// Baffle is true when an internal screen blocks direct port-to-port
	// coupling on the first bounce.
	Baffle bool
}

/*****************************************************************************************************************/

// AreaFraction returns the fraction of the sphere's internal surface area
// occupied by port p: (d_port / D)^2 / 4.
func (s Sphere) AreaFraction(p Port) float64 {
	ratio := s.PortDiameter[p] / s.Diameter
	return ratio * ratio / 4
}

/*****************************************************************************************************************/

// WallFraction returns the fraction of the sphere's internal surface area
// that is bare wall (everything not covered by a port).
func (s Sphere) WallFraction() float64 {
	sum := 0.0
	for p := Port(0); p < portCount; p++ {
		sum += s.AreaFraction(p)
	}
	return 1 - sum
}

/*****************************************************************************************************************/

// validate checks that no port (or the sum of all ports) exceeds the
// sphere's own surface.
func (s Sphere) validate() error {
	if s.Diameter <= 0 {
		return fmt.Errorf("%w: diameter = %v, want > 0", ErrInvalidGeometry, s.Diameter)
	}
	if s.WallFraction() < 0 {
		return fmt.Errorf("%w: port area fractions sum to more than 1", ErrInvalidGeometry)
	}
	return nil
}

/*****************************************************************************************************************/

// averageLoss is M = 1 - a_wall*r_wall - sum_i a_i*r_i, the average flux
// lost per bounce of the sphere.
func (s Sphere) averageLoss() float64 {
	m := 1 - s.WallFraction()*s.WallReflectance

	for p := Port(0); p < portCount; p++ {
		m -= s.AreaFraction(p) * s.PortReflectance[p]
	}

	return m
}

/*****************************************************************************************************************/

// Gain returns the single-sphere analytic gain: the ratio of
// detector irradiance to the irradiance a perfect uniform diffuser would
// cause. Without a baffle the first bounce already participates in the
// sphere's uniform multiple-scatter series, so gain = 1/M. With a baffle the
// first bounce is forced onto the wall before the uniform series begins, so
// gain = r_wall/M.
func (s Sphere) Gain() (float64, error) {
	if err := s.validate(); err != nil {
		return 0, err
	}

	m := s.averageLoss()
	if m <= 0 {
		return 0, fmt.Errorf("%w: average loss per bounce M = %v is non-positive", ErrInvalidGeometry, m)
	}

	if s.Baffle {
		return s.WallReflectance / m, nil
	}

	return 1 / m, nil
}

/*****************************************************************************************************************/

// SampleResponse is the subset of a sample's adding-doubling response the
// two-sphere coupled gain needs: its diffuse reflectance/transmittance
// (URU, UTU) and collimated reflectance/transmittance (UR1, UT1).
type SampleResponse struct {
	UR1 float64
	UT1 float64
	URU float64
	UTU float64
}

/*****************************************************************************************************************/

// TwoSphereGain solves the 2x2 linear system coupling the reflection-sphere
// and transmission-sphere gains through the sample's diffuse response and
// each sphere's own geometry: flux leaking out of one sphere's sample port
// through the sample reaches the other sphere's sample port, scaled by the
// sample's diffuse transmittance UTU.
func TwoSphereGain(reflection, transmission Sphere, response SampleResponse) (gainR, gainT float64, err error) {
	if err := reflection.validate(); err != nil {
		return 0, 0, err
	}
	if err := transmission.validate(); err != nil {
		return 0, 0, err
	}

	mr := reflection.averageLoss()
	mt := transmission.averageLoss()

	if mr <= 0 || mt <= 0 {
		return 0, 0, fmt.Errorf("%w: two-sphere average loss non-positive (Mr=%v, Mt=%v)", ErrInvalidGeometry, mr, mt)
	}

	forcedR := 1.0
	if reflection.Baffle {
		forcedR = reflection.WallReflectance
	}
	forcedT := 1.0
	if transmission.Baffle {
		forcedT = transmission.WallReflectance
	}

	// Coupling coefficient: the fraction of a sphere's sample-port flux that
	// crosses the sample into the opposing sphere, weighted by the opposing
	// sphere's own sample-port area fraction.
	couplingRT := response.UTU * transmission.AreaFraction(SamplePort)
	couplingTR := response.UTU * reflection.AreaFraction(SamplePort)

	// [ mr        -couplingRT ] [gainR]   [forcedR]
	// [-couplingTR  mt        ] [gainT] = [forcedT]
	system := mat.NewDense(2, 2, []float64{
		mr, -couplingRT,
		-couplingTR, mt,
	})

	rhs := mat.NewVecDense(2, []float64{forcedR, forcedT})

	var gains mat.VecDense
	if err := gains.SolveVec(system, rhs); err != nil {
		return 0, 0, fmt.Errorf("sphere: two-sphere coupled solve: %w", err)
	}

	return gains.AtVec(0), gains.AtVec(1), nil
}

/*****************************************************************************************************************/

// landingPort samples which surface a photon bounce lands on, drawing
// proportionally to each port's and the wall's area fraction, returning
// portCount for the wall.
func landingPort(s Sphere, r *rand.Rand) Port {
	u := r.Float64()

	cumulative := 0.0
	for p := Port(0); p < portCount; p++ {
		cumulative += s.AreaFraction(p)
		if u < cumulative {
			return p
		}
	}

	return portCount // sentinel meaning "the bare wall"
}

/*****************************************************************************************************************/

// reflectanceOf returns the reflectance of whatever surface a bounce landed
// on: a port's own reflectance, or the sphere's wall reflectance.
func reflectanceOf(s Sphere, landing Port) float64 {
	if landing == portCount {
		return s.WallReflectance
	}
	return s.PortReflectance[landing]
}

/*****************************************************************************************************************/

const maxBounces = 1000

/*****************************************************************************************************************/

// runTrial simulates photonsPerTrial photons launched at the sample port,
// each bouncing until absorbed or maxBounces is reached, and returns the
// empirical gain estimate for this trial: the number of detector landings
// per photon, counted over every bounce after the forced baffle bounce (if
// any), normalized by the detector's own area fraction.
func runTrial(s Sphere, photonsPerTrial int, r *rand.Rand) float64 {
	detectorHits := 0

	for i := 0; i < photonsPerTrial; i++ {
		alive := true

		if s.Baffle {
			// The forced first bounce always lands on the wall and is
			// absorbed/reflected per r_wall; it can never directly hit the
			// detector.
			alive = r.Float64() < s.WallReflectance
		}

		for b := 0; alive && b < maxBounces; b++ {
			landing := landingPort(s, r)

			if landing == DetectorPort {
				detectorHits++
			}

			alive = r.Float64() < reflectanceOf(s, landing)
		}
	}

	aDet := s.AreaFraction(DetectorPort)
	if aDet == 0 {
		return 0
	}

	return (float64(detectorHits) / float64(photonsPerTrial)) / aDet
}

/*****************************************************************************************************************/

// MonteCarloResult is the empirical gain estimate and its confidence
// interval from a Monte-Carlo sphere validation run.
type MonteCarloResult struct {
	Mean    float64
	StdDev  float64
	CILow   float64
	CIHigh  float64
	Trials  int
	Photons int
}

/*****************************************************************************************************************/

// z90 is the two-tailed critical value for a 90% confidence interval on a
// normally-distributed sample mean.
const z90 = 1.645

/*****************************************************************************************************************/

// MonteCarloGain simulates trials independent runs of photonsPerTrial
// photons bouncing in the sphere, each seeded deterministically from seed
// plus the trial index for reproducibility, and returns the empirical
// gain's mean, standard deviation and 90% confidence interval across
// trials.
func MonteCarloGain(s Sphere, trials, photonsPerTrial int, seed int64) (MonteCarloResult, error) {
	if err := s.validate(); err != nil {
		return MonteCarloResult{}, err
	}

	if trials < 2 {
		return MonteCarloResult{}, errors.New("sphere: at least 2 trials are required to estimate a confidence interval")
	}

	gains := make([]float64, trials)

	for t := 0; t < trials; t++ {
		r := rand.New(rand.NewSource(seed + int64(t)))
		gains[t] = runTrial(s, photonsPerTrial, r)
	}

	mean, stddev := stat.MeanStdDev(gains, nil)
	halfWidth := z90 * stddev / math.Sqrt(float64(trials))

	return MonteCarloResult{
		Mean:    mean,
		StdDev:  stddev,
		CILow:   mean - halfWidth,
		CIHigh:  mean + halfWidth,
		Trials:  trials,
		Photons: photonsPerTrial,
	}, nil
}
