/*
DESCRIPTION
  poly.go provides the degree-2 polynomial type used to describe lane
  boundaries in the birds-eye plane, along with the least-squares fit that
  produces one from lane pixel samples.

AUTHORS
  AusOcean developers

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean)

  It is free software: you can redistribute it and/or modify them
  under the terms of the GNU General Public License as published by the
  Free Software Foundation, either version 3 of the License, or (at your
  option) any later version.

  It is distributed in the hope that it will be useful, but WITHOUT
  ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
  FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License
  for more details.

  You should have received a copy of the GNU General Public License
  in gpl.txt.  If not, see http://www.gnu.org/licenses.
*/

package lane

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// degree is the degree of the polynomials fitted to lane boundaries.
const degree = 2

// minPoints is the least number of samples a stable fit can be made from.
const minPoints = degree + 1

// Poly is a degree-2 polynomial mapping image row y to column x, i.e.
// x = p[0]*y^2 + p[1]*y + p[2]. Coefficients are ordered from the highest
// degree down.
type Poly [degree + 1]float64

// Eval evaluates p at row y.
func (p Poly) Eval(y float64) float64 {
	return (p[0]*y+p[1])*y + p[2]
}

// Mid returns the coefficient-wise average of a and b, which is the
// polynomial running half way between them.
func Mid(a, b Poly) Poly {
	var m Poly
	for i := range m {
		m[i] = (a[i] + b[i]) / 2
	}
	return m
}

// Scale converts p from pixel units to world units given the number of
// metres per pixel along x (mx) and y (my).
func (p Poly) Scale(mx, my float64) Poly {
	return Poly{p[0] * mx / (my * my), p[1] * mx / my, p[2] * mx}
}

// Radius returns the radius of curvature of p at row y. Straight lines
// have an infinite radius.
func (p Poly) Radius(y float64) float64 {
	if p[0] == 0 {
		return math.Inf(1)
	}
	d := 2*p[0]*y + p[1]
	return math.Pow(1+d*d, 1.5) / math.Abs(2*p[0])
}

// maxCond is the largest condition number of the normal equations for
// which a fit is trusted.
const maxCond = 1e12

// fit fits a degree-2 polynomial x = f(y) to the samples by least squares.
// Rows are rescaled to [-1, 1] and the 3x3 normal equations solved
// by Cholesky decomposition, so cost is linear in the number of samples.
func fit(xs, ys []float64) (Poly, error) {
	if len(xs) != len(ys) {
		return Poly{}, fmt.Errorf("sample length mismatch: %d x, %d y", len(xs), len(ys))
	}
	if len(xs) < minPoints {
		return Poly{}, fmt.Errorf("need at least %d samples, have %d", minPoints, len(xs))
	}

	lo, hi := ys[0], ys[0]
	for _, y := range ys {
		lo, hi = math.Min(lo, y), math.Max(hi, y)
	}
	if hi == lo {
		return Poly{}, errors.New("degenerate fit: all samples on one row")
	}
	m, k := (hi+lo)/2, 2/(hi-lo)

	// Power sums of the rescaled rows, and their products with x.
	var sy [2*degree + 1]float64
	var sxy [degree + 1]float64
	for i, y := range ys {
		u, pow := (y-m)*k, 1.0
		for j := range sy {
			if j < len(sxy) {
				sxy[j] += xs[i] * pow
			}
			sy[j] += pow
			pow *= u
		}
	}

	n := mat.NewSymDense(degree+1, nil)
	for i := 0; i <= degree; i++ {
		for j := i; j <= degree; j++ {
			n.SetSym(i, j, sy[i+j])
		}
	}
	var chol mat.Cholesky
	if !chol.Factorize(n) || chol.Cond() > maxCond {
		return Poly{}, errors.New("degenerate fit: samples span too few rows")
	}
	c := mat.NewVecDense(degree+1, nil)
	err := chol.SolveVecTo(c, mat.NewVecDense(degree+1, sxy[:]))
	if err != nil {
		return Poly{}, fmt.Errorf("could not solve normal equations: %w", err)
	}

	// Undo the rescaling; c holds coefficients from the constant up.
	c0, c1, c2 := c.AtVec(0), c.AtVec(1), c.AtVec(2)
	p := Poly{
		c2 * k * k,
		c1*k - 2*c2*k*k*m,
		c0 - c1*k*m + c2*k*k*m*m,
	}
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Poly{}, errors.New("degenerate fit")
		}
	}
	return p, nil
}
