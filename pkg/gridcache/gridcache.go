/*****************************************************************************************************************/

//	@author		Michael Roberts <michael@observerly.com>
//	@package	@observerly/iad
//	@license	Copyright © 2021-2025 observerly

/*****************************************************************************************************************/

// Package gridcache implements a precomputed 2-D grid of forward-computed
// (UR1, UT1) responses, used to bracket and warm-start the inverse search
// with a bilinear-interpolation lookup and a vptree-backed nearest-cell
// query. A grid indexes either (a, b) at fixed g, or (a, g) at fixed b,
// depending on which pair the inverse search that consumes it is solving for.
package gridcache

/*****************************************************************************************************************/

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/observerly/iad/pkg/sample"

	"gonum.org/v1/gonum/spatial/vptree"
)

/*****************************************************************************************************************/

// DefaultALevels is the linear grid in a: 0, 0.05, ..., 1.
var DefaultALevels = linspace(0, 1, 21)

/*****************************************************************************************************************/

// DefaultBLevels is the logarithmic grid in b: 32 values from 0.01 to 1000.
var DefaultBLevels = logspace(0.01, 1000, 32)

/*****************************************************************************************************************/

// DefaultGLevels is the linear grid in g: 19 values from -0.9 to 0.9, clear
// of the +/-1 endpoints the redistribution matrices treat as degenerate.
var DefaultGLevels = linspace(-0.9, 0.9, 19)

/*****************************************************************************************************************/

func linspace(lo, hi float64, n int) []float64 {
	v := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range v {
		v[i] = lo + step*float64(i)
	}
	return v
}

/*****************************************************************************************************************/

func logspace(lo, hi float64, n int) []float64 {
	v := make([]float64, n)
	logLo, logHi := math.Log(lo), math.Log(hi)
	step := (logHi - logLo) / float64(n-1)
	for i := range v {
		v[i] = math.Exp(logLo + step*float64(i))
	}
	return v
}

/*****************************************************************************************************************/

// Cell is one precomputed grid entry: the (a, b, g) coordinates (whichever
// pair the owning Grid varies, plus the one it holds fixed) and the
// forward-computed collimated-incidence response at that point.
type Cell struct {
	A, B, G  float64
	UR1, UT1 float64
}

/*****************************************************************************************************************/

// Distance implements vptree.Comparable over the (UR1, UT1) response space,
// so nearest-cell warm-start queries match measurements to grid cells by
// optical response rather than by (a, b) coordinate.
func (c Cell) Distance(other vptree.Comparable) float64 {
	o := other.(Cell)
	dr := c.UR1 - o.UR1
	dt := c.UT1 - o.UT1
	return math.Sqrt(dr*dr + dt*dt)
}

/*****************************************************************************************************************/

// ErrRebuildRequired describes a grid whose config fingerprint no longer
// matches the requested quadrature/index parameters. No function in this
// package returns it: Bilinear and Nearest do not check staleness, and
// callers detect it with Stale or StaleAG.
var ErrRebuildRequired = errors.New("gridcache: grid is stale, call Build again")

/*****************************************************************************************************************/

// Mode distinguishes which pair of intrinsic properties a Grid varies: (a, b)
// at fixed g for the two-parameter search, or (a, g) at fixed b for the
// three-parameter search's inner refinement.
type Mode int

const (
	ABMode Mode = iota
	AGMode
)

/*****************************************************************************************************************/

// config is the fingerprint of parameters that invalidate a Grid when they
// change: quadrature size, sample/slide indices, and whichever of g or b the
// grid holds fixed.
type config struct {
	n      int
	index  float64
	above  float64
	below  float64
	g      float64
	b      float64
}

/*****************************************************************************************************************/

// Grid is a 2-D lookup cache, either (a, b) at fixed g or (a, g) at fixed b,
// over a shared quadrature size and boundary indices. Entries are immutable
// once populated.
type Grid struct {
	mode    Mode
	cfg     config
	aLevels []float64
	bLevels []float64 // b-levels in ABMode, g-levels in AGMode
	cells   [][]Cell  // cells[ai][bi]
	tree    *vptree.Tree
	byOrder []Cell
}

/*****************************************************************************************************************/

// Mode reports whether the grid indexes (a, b) or (a, g).
func (g *Grid) Mode() Mode {
	return g.mode
}

/*****************************************************************************************************************/

// Build populates a Grid over aLevels x bLevels at the given fixed g,
// quadrature size n and boundary indices, calling driver.RT once per cell.
func Build(driver *sample.Driver, g float64, n int, index, above, below float64, aLevels, bLevels []float64) (*Grid, error) {
	if len(aLevels) < 2 || len(bLevels) < 2 {
		return nil, errors.New("gridcache: aLevels and bLevels must each have at least 2 entries")
	}

	cells := make([][]Cell, len(aLevels))
	flat := make([]Cell, 0, len(aLevels)*len(bLevels))

	for ai, a := range aLevels {
		cells[ai] = make([]Cell, len(bLevels))

		for bi, b := range bLevels {
			s := sample.Default(a, b, g)
			s.Index = index
			s.NAbove = above
			s.NBelow = below
			s.Quadrature = n

			result, err := driver.RT(s)
			if err != nil {
				return nil, fmt.Errorf("gridcache: building cell (a=%v, b=%v): %w", a, b, err)
			}

			cell := Cell{A: a, B: b, G: g, UR1: result.UR1, UT1: result.UT1}
			cells[ai][bi] = cell
			flat = append(flat, cell)
		}
	}

	tree, err := buildTree(flat)
	if err != nil {
		return nil, err
	}

	return &Grid{
		mode:    ABMode,
		cfg:     config{n: n, index: index, above: above, below: below, g: g},
		aLevels: aLevels,
		bLevels: bLevels,
		cells:   cells,
		tree:    tree,
		byOrder: flat,
	}, nil
}

/*****************************************************************************************************************/

// BuildAG populates a Grid over aLevels x gLevels at the given fixed optical
// thickness b, quadrature size n and boundary indices, calling driver.RT
// once per cell. This is the grid a three-parameter (a, b, g) search warm
// starts its inner (a, g) refinement from, once M_U has already fixed b.
func BuildAG(driver *sample.Driver, b float64, n int, index, above, below float64, aLevels, gLevels []float64) (*Grid, error) {
	if len(aLevels) < 2 || len(gLevels) < 2 {
		return nil, errors.New("gridcache: aLevels and gLevels must each have at least 2 entries")
	}

	cells := make([][]Cell, len(aLevels))
	flat := make([]Cell, 0, len(aLevels)*len(gLevels))

	for ai, a := range aLevels {
		cells[ai] = make([]Cell, len(gLevels))

		for gi, gAnisotropy := range gLevels {
			s := sample.Default(a, b, gAnisotropy)
			s.Index = index
			s.NAbove = above
			s.NBelow = below
			s.Quadrature = n

			result, err := driver.RT(s)
			if err != nil {
				return nil, fmt.Errorf("gridcache: building cell (a=%v, g=%v): %w", a, gAnisotropy, err)
			}

			cell := Cell{A: a, B: b, G: gAnisotropy, UR1: result.UR1, UT1: result.UT1}
			cells[ai][gi] = cell
			flat = append(flat, cell)
		}
	}

	tree, err := buildTree(flat)
	if err != nil {
		return nil, err
	}

	return &Grid{
		mode:    AGMode,
		cfg:     config{n: n, index: index, above: above, below: below, b: b},
		aLevels: aLevels,
		bLevels: gLevels,
		cells:   cells,
		tree:    tree,
		byOrder: flat,
	}, nil
}

/*****************************************************************************************************************/

func buildTree(flat []Cell) (*vptree.Tree, error) {
	comparables := make([]vptree.Comparable, len(flat))
	for i, c := range flat {
		comparables[i] = c
	}

	tree, err := vptree.New(comparables, 1, nil)
	if err != nil {
		return nil, fmt.Errorf("gridcache: building vptree: %w", err)
	}

	return tree, nil
}

/*****************************************************************************************************************/

// Stale reports whether an ABMode grid was built for a different quadrature
// size, sample index, boundary indices or fixed g than given.
func (g *Grid) Stale(n int, index, above, below, gAnisotropy float64) bool {
	return g.mode != ABMode || g.cfg.n != n || g.cfg.index != index || g.cfg.above != above || g.cfg.below != below || g.cfg.g != gAnisotropy
}

/*****************************************************************************************************************/

// StaleAG reports whether an AGMode grid was built for a different
// quadrature size, sample index, boundary indices or fixed b than given.
func (g *Grid) StaleAG(n int, index, above, below, b float64) bool {
	return g.mode != AGMode || g.cfg.n != n || g.cfg.index != index || g.cfg.above != above || g.cfg.below != below || g.cfg.b != b
}

/*****************************************************************************************************************/

// bracket returns the indices lo, hi such that levels[lo] <= v <= levels[hi]
// (clamped to the grid's edges), via binary search.
func bracket(levels []float64, v float64) (lo, hi int) {
	i := sort.SearchFloat64s(levels, v)

	if i <= 0 {
		return 0, 1
	}
	if i >= len(levels) {
		return len(levels) - 2, len(levels) - 1
	}

	return i - 1, i
}

/*****************************************************************************************************************/

// Bilinear returns the bilinearly-interpolated (UR1, UT1) at (a, b) from the
// four grid cells surrounding it.
func (g *Grid) Bilinear(a, b float64) (ur1, ut1 float64, err error) {
	aLo, aHi := bracket(g.aLevels, a)
	bLo, bHi := bracket(g.bLevels, b)

	aSpan := g.aLevels[aHi] - g.aLevels[aLo]
	bSpan := g.bLevels[bHi] - g.bLevels[bLo]

	if aSpan == 0 || bSpan == 0 {
		return 0, 0, errors.New("gridcache: degenerate grid span")
	}

	ta := (a - g.aLevels[aLo]) / aSpan
	tb := (b - g.bLevels[bLo]) / bSpan

	c00 := g.cells[aLo][bLo]
	c01 := g.cells[aLo][bHi]
	c10 := g.cells[aHi][bLo]
	c11 := g.cells[aHi][bHi]

	lerp := func(v00, v01, v10, v11 float64) float64 {
		v0 := v00*(1-tb) + v01*tb
		v1 := v10*(1-tb) + v11*tb
		return v0*(1-ta) + v1*ta
	}

	ur1 = lerp(c00.UR1, c01.UR1, c10.UR1, c11.UR1)
	ut1 = lerp(c00.UT1, c01.UT1, c10.UT1, c11.UT1)

	return ur1, ut1, nil
}

/*****************************************************************************************************************/

// Nearest returns the grid cell whose (UR1, UT1) response is closest to the
// given measurement, for use as an inverse-search warm start.
func (g *Grid) Nearest(ur1, ut1 float64) (Cell, float64) {
	query := Cell{UR1: ur1, UT1: ut1}
	nearest, dist := g.tree.Nearest(query)
	return nearest.(Cell), dist
}
