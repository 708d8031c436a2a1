/*
 * energy.go, part of uffref.
 *
 *
 * Copyright 2025 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 * uffref is currently developed at the Universidad de Santiago de Chile
 * (USACH)
 *
 */

//Package energy obtains single-point energies, their bonded/non-bonded
//breakdown and analytical gradients from a force-field engine, and
//cross-checks the gradients against central finite differences. All
//numbers come from the engine: this package only orchestrates contexts
//and does arithmetic on the results.
package energy

import (
	"fmt"
	"math"

	uffref "github.com/rmera/uffref"
	"github.com/rmera/uffref/engine"
	"github.com/rmera/uffref/vec"
)

//Breakdown is a single-point energy decomposed into a bonded part and
//a van der Waals part. The split is operational, not analytical: the
//bonded energy comes from a context with the van der Waals pairs
//disabled, and Vdw is the signed difference Total-Bonded, so
//Total = Bonded + Vdw holds to floating-point accuracy by
//construction.
type Breakdown struct {
	Total  float64
	Bonded float64
	Vdw    float64
}

//Evaluate computes the energy breakdown of mol at coords. Two fresh
//contexts are used, one full and one with van der Waals disabled, so
//neither evaluation can see state from the other.
func Evaluate(eng engine.Engine, mol *uffref.Molecule, coords *vec.Matrix) (*Breakdown, error) {
	full, err := eng.NewContext(mol, coords, nil)
	if err != nil {
		return nil, err
	}
	total, err := full.Energy()
	if err != nil {
		return nil, err
	}
	bondedCtx, err := eng.NewContext(mol, coords, &engine.Options{DisableVdw: true})
	if err != nil {
		return nil, err
	}
	bonded, err := bondedCtx.Energy()
	if err != nil {
		return nil, err
	}
	return &Breakdown{Total: total, Bonded: bonded, Vdw: total - bonded}, nil
}

//Gradient returns the analytical gradient of mol at coords, flat,
//three components per atom, from a fresh context.
func Gradient(eng engine.Engine, mol *uffref.Molecule, coords *vec.Matrix) ([]float64, error) {
	ctx, err := eng.NewContext(mol, coords, nil)
	if err != nil {
		return nil, err
	}
	g, err := ctx.Gradient()
	if err != nil {
		return nil, err
	}
	if len(g) != mol.Len()*3 {
		return nil, &engine.Error{Op: "gradient", Engine: eng.Name(), Molecule: mol.Name,
			Err: fmt.Errorf("gradient has %d components, want %d", len(g), mol.Len()*3)}
	}
	return g, nil
}

//Default verification settings.
const (
	//DefaultStep is the half-step of the central difference, in the
	//distance units of the coordinates.
	DefaultStep = 1e-5
	//DefaultTolerance is the maximum acceptable relative error.
	DefaultTolerance = 0.01
	//relEps guards the relative-error denominators against components
	//that are numerically zero.
	relEps = 1e-8
	//maxFailures bounds the worst-offender sample kept in a failed
	//verification.
	maxFailures = 3
)

//Failure is one gradient component whose analytical and numerical
//values disagree beyond tolerance.
type Failure struct {
	Atom       int
	Coord      int //0, 1, 2 for x, y, z
	Analytical float64
	Numerical  float64
	RelError   float64
}

//Verification is the outcome of a gradient cross-check.
type Verification struct {
	Passed      bool
	MaxRelError float64
	Step        float64
	Tolerance   float64
	//Failures holds at most a few worst offenders, enough to point at
	//the broken term without flooding the output.
	Failures []Failure
}

//relError compares one analytical and one numerical component. The
//error is normalized by the analytical magnitude when it is
//meaningful, by the numerical magnitude otherwise, and is zero when
//both vanish.
func relError(analytical, numerical float64) float64 {
	diff := math.Abs(analytical - numerical)
	if math.Abs(analytical) > relEps {
		return diff / math.Abs(analytical)
	}
	if math.Abs(numerical) > relEps {
		return diff / math.Abs(numerical)
	}
	return 0
}

//VerifyGradients cross-checks the engine's analytical gradient at
//coords against central finite differences of its energy. Every
//displaced energy comes from a context built fresh for that single
//evaluation, so no engine-side caching can leak between displacements.
func VerifyGradients(eng engine.Engine, mol *uffref.Molecule, coords *vec.Matrix) (*Verification, error) {
	analytical, err := Gradient(eng, mol, coords)
	if err != nil {
		return nil, err
	}
	V := &Verification{Passed: true, Step: DefaultStep, Tolerance: DefaultTolerance}
	displacedEnergy := func(atom, c int, delta float64) (float64, error) {
		d := coords.Clone()
		d.Set(atom, c, d.At(atom, c)+delta)
		ctx, err := eng.NewContext(mol, d, nil)
		if err != nil {
			return 0, err
		}
		return ctx.Energy()
	}
	for atom := 0; atom < mol.Len(); atom++ {
		for c := 0; c < 3; c++ {
			ep, err := displacedEnergy(atom, c, DefaultStep)
			if err != nil {
				return nil, err
			}
			em, err := displacedEnergy(atom, c, -DefaultStep)
			if err != nil {
				return nil, err
			}
			numerical := (ep - em) / (2 * DefaultStep)
			re := relError(analytical[3*atom+c], numerical)
			if re > V.MaxRelError {
				V.MaxRelError = re
			}
			if re > DefaultTolerance {
				V.Passed = false
				recordFailure(V, Failure{
					Atom:       atom,
					Coord:      c,
					Analytical: analytical[3*atom+c],
					Numerical:  numerical,
					RelError:   re,
				})
			}
		}
	}
	return V, nil
}

//recordFailure keeps the maxFailures worst offenders, ordered by
//decreasing relative error.
func recordFailure(V *Verification, f Failure) {
	pos := len(V.Failures)
	for pos > 0 && V.Failures[pos-1].RelError < f.RelError {
		pos--
	}
	if pos >= maxFailures {
		return
	}
	V.Failures = append(V.Failures, Failure{})
	copy(V.Failures[pos+1:], V.Failures[pos:])
	V.Failures[pos] = f
	if len(V.Failures) > maxFailures {
		V.Failures = V.Failures[:maxFailures]
	}
}
