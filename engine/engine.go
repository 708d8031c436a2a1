/*
 * engine.go, part of uffref.
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

//Package engine defines the interfaces to the two external
//collaborators of the reference generator: a structure toolkit
//(descriptor parsing, 3D embedding, dihedral manipulation) and a
//force-field engine (parameter lookup, energies, gradients and
//constrained minimization). The force-field physics is never
//implemented in this module; drivers for concrete engines live in
//subpackages.
package engine

import (
	"errors"
	"fmt"
	"strings"

	uffref "github.com/rmera/uffref"
	"github.com/rmera/uffref/vec"
)

//Errors shared by all drivers.
var (
	//ErrParse means the structural descriptor could not be parsed.
	//This is fatal for the whole run.
	ErrParse = errors.New("failed to parse structural descriptor")
	//ErrEmbed means 3D embedding failed. The caller retries once with
	//the simpler strategy before treating it as fatal for the molecule.
	ErrEmbed = errors.New("failed to generate a 3D conformation")
	//ErrMissingParams means the engine lacks required parameters for
	//some atom of the molecule. Fatal for that molecule.
	ErrMissingParams = errors.New("missing force-field parameters")
	//ErrNotAvailable means the engine cannot supply this particular
	//parameter kind at all (e.g. out-of-plane constants); callers may
	//fall back to rule tables.
	ErrNotAvailable = errors.New("parameter not available from engine")
	//ErrNoEnergy means an evaluation produced no usable energy.
	ErrNoEnergy = errors.New("no energy obtained")
)

//Error decorates a driver failure with the engine name, the molecule
//being processed and the calling stack.
type Error struct {
	Op       string
	Engine   string
	Molecule string
	Err      error
	deco     []string
}

func (e *Error) Error() string {
	s := fmt.Sprintf("engine %s: %s: %v", e.Engine, e.Op, e.Err)
	if e.Molecule != "" {
		s = s + " (molecule " + e.Molecule + ")"
	}
	if len(e.deco) > 0 {
		s = s + " [" + strings.Join(e.deco, ", ") + "]"
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

//Decorate adds dec to the decoration slice of the error, unless dec
//is empty, and returns the resulting slice.
func (e *Error) Decorate(dec string) []string {
	if dec != "" {
		e.deco = append(e.deco, dec)
	}
	return e.deco
}

//EmbedStrategy names one conformation-generation strategy. Embedding
//failures are handled by walking an explicit, ordered strategy list
//and recording which strategy finally produced the conformation, so
//the fallback never hides inside a return value.
type EmbedStrategy string

const (
	//EmbedETKDGv3 is the preferred, knowledge-based strategy.
	EmbedETKDGv3 EmbedStrategy = "etkdg_v3"
	//EmbedBasic is the plain distance-geometry fallback.
	EmbedBasic EmbedStrategy = "basic"
)

//EmbedStrategies is the ordered list tried by the generator.
var EmbedStrategies = []EmbedStrategy{EmbedETKDGv3, EmbedBasic}

//Toolkit is the structure-toolkit collaborator.
type Toolkit interface {
	//ParseMolecule parses a structural descriptor into a molecule with
	//implicit hydrogens made explicit, hybridization and aromaticity
	//assigned, and no coordinates.
	ParseMolecule(name, descriptor, notes string) (*uffref.Molecule, error)

	//Embed generates a 3D conformation for the molecule with the given
	//strategy, storing it in mol.Coords. The seed pins every source of
	//randomness so repeated runs produce identical conformations.
	Embed(mol *uffref.Molecule, seed int64, strategy EmbedStrategy) error

	//SetDihedral sets, in place, the dihedral a1-a2-a3-a4 of coords to
	//deg degrees, moving only the atoms on the a4 side of the a2-a3
	//bond.
	SetDihedral(mol *uffref.Molecule, coords *vec.Matrix, a1, a2, a3, a4 int, deg float64) error
}

//TorsionRestraint is an angular restraint on a dihedral: a flat window
//(in degrees, absolute) outside of which a harmonic penalty with the
//given force constant applies.
type TorsionRestraint struct {
	Atoms         [4]int
	MinDeg        float64
	MaxDeg        float64
	ForceConstant float64
}

//Options configures context construction.
type Options struct {
	//DisableVdw excludes all van der Waals pairs from the interaction
	//set, which is how the bonded-only energy is obtained.
	DisableVdw bool
}

//Context is one independent force-field evaluation context, bound to a
//molecule and a snapshot of its coordinates taken at construction.
//Contexts carry mutable engine state: no two evaluations that must be
//independent (most importantly, the displaced evaluations of the
//gradient cross-check) may share one.
type Context interface {
	//Energy returns the energy of the context's current positions.
	Energy() (float64, error)
	//Gradient returns the analytical gradient dE/dx at the current
	//positions, flat, 3 components per atom.
	Gradient() ([]float64, error)
	//AddTorsionRestraint registers an angular restraint that the next
	//Minimize call honors.
	AddTorsionRestraint(r *TorsionRestraint) error
	//Minimize relaxes the positions with at most maxIter iterations
	//and reports whether it converged.
	Minimize(maxIter int) (converged bool, err error)
	//Positions returns a copy of the context's current positions.
	Positions() (*vec.Matrix, error)
}

//Engine is the force-field collaborator. The per-interaction parameter
//lookups of uffref.ParamSource are part of the interface, so one
//driver serves both term enumeration and energy evaluation.
//
//Implementations must make NewContext return fully independent
//contexts: constructing a context copies the coordinates, and nothing
//one context does may be observable through another.
type Engine interface {
	uffref.ParamSource

	//Name identifies the engine (and its version where known) for the
	//generator-identity field of the output document.
	Name() string

	//HasAllParams reports whether the engine has parameters for every
	//atom of the molecule. A false return is fatal for the molecule.
	HasAllParams(mol *uffref.Molecule) bool

	//NewContext builds an evaluation context for the molecule over a
	//snapshot of coords.
	NewContext(mol *uffref.Molecule, coords *vec.Matrix, opt *Options) (Context, error)
}
