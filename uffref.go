/*
 * uffref.go, part of uffref.
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

//Package uffref provides the molecule model, heuristic UFF atom typing and
//force-field term enumeration used to generate reference data for validating
//independent UFF implementations. The physics itself (energies, gradients,
//minimization) is never computed here; it is delegated to an external engine
//behind the interfaces of the engine subpackage.
package uffref

import (
	"fmt"
	"sort"

	"github.com/rmera/uffref/vec"
)

//Hybridization is the hybridization class of an atom, as reported by
//the structure toolkit.
type Hybridization int

const (
	HybOther Hybridization = iota
	SP
	SP2
	SP3
)

func (h Hybridization) String() string {
	switch h {
	case SP:
		return "sp"
	case SP2:
		return "sp2"
	case SP3:
		return "sp3"
	}
	return "other"
}

//Atom holds the per-atom information needed for typing and term
//enumeration. Coordinates are kept separately, in a vec.Matrix.
type Atom struct {
	Index         int
	AtomicNumber  int
	Symbol        string
	TypeLabel     string //advisory UFF label, see typer.go
	Hybridization Hybridization
	Aromatic      bool
}

//Bond is a graph edge between two atoms. A1 < A2 always.
type Bond struct {
	A1    int
	A2    int
	Order float64 //0 means undetermined
}

//Molecule is one test molecule: atoms, bonds and a single conformation.
//It is owned by the caller for the duration of one molecule's processing
//and discarded afterwards.
type Molecule struct {
	Name       string
	Descriptor string //structural descriptor (SMILES for the RDKit toolkit)
	Notes      string
	Atoms      []*Atom
	Bonds      []*Bond
	Coords     *vec.Matrix //one position per atom, may be nil before embedding
}

//Len returns the number of atoms in the molecule.
func (M *Molecule) Len() int {
	return len(M.Atoms)
}

//Atom returns the atom with index i. Panics if out of range, as
//that is most likely a programming error.
func (M *Molecule) Atom(i int) *Atom {
	if i >= M.Len() {
		panic("Molecule: Requested Atom out of bounds")
	}
	return M.Atoms[i]
}

//AddBond adds a bond between atoms i and j, normalizing the pair so the
//smaller index comes first. It returns an error on out-of-range or
//self-bonded indexes.
func (M *Molecule) AddBond(i, j int, order float64) error {
	if i == j {
		return CError{fmt.Sprintf("Molecule: atom %d bonded to itself", i), []string{"AddBond"}}
	}
	if i >= M.Len() || j >= M.Len() || i < 0 || j < 0 {
		return CError{fmt.Sprintf("Molecule: bond (%d,%d) out of range", i, j), []string{"AddBond"}}
	}
	if i > j {
		i, j = j, i
	}
	M.Bonds = append(M.Bonds, &Bond{A1: i, A2: j, Order: order})
	return nil
}

//Neighbors returns the indexes of the atoms bonded to atom i, in
//ascending order.
func (M *Molecule) Neighbors(i int) []int {
	n := make([]int, 0, 4)
	for _, b := range M.Bonds {
		if b.A1 == i {
			n = append(n, b.A2)
		} else if b.A2 == i {
			n = append(n, b.A1)
		}
	}
	sort.Ints(n)
	return n
}

//Degree returns the number of bonded neighbors of atom i.
func (M *Molecule) Degree(i int) int {
	return len(M.Neighbors(i))
}

//Bonded returns whether atoms i and j share a bond.
func (M *Molecule) Bonded(i, j int) bool {
	if i > j {
		i, j = j, i
	}
	for _, b := range M.Bonds {
		if b.A1 == i && b.A2 == j {
			return true
		}
	}
	return false
}

//Errors

//Error is the interface for errors that can accumulate a "decoration"
//slice of strings as they are passed up the calling stack. Each element
//should name a function in the stack, plus any relevant information in
//the format "FunctionName: Extra info".
type Error interface {
	Error() string
	Decorate(string) []string
}

//CError is the concrete error type of the package.
type CError struct {
	msg  string
	deco []string
}

func (err CError) Error() string { return err.msg }

//Decorate adds dec to the decoration slice of the error, unless dec is
//empty, and returns the resulting slice.
func (err CError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//errDecorate wraps err into the decoration scheme, adding caller.
func errDecorate(err error, caller string) error {
	err2, ok := err.(Error)
	if !ok {
		return CError{err.Error(), []string{caller}}
	}
	err2.Decorate(caller)
	return err2
}

//DecorateError is errDecorate for use by the subpackages: it wraps err
//into the decoration scheme, adding caller to the decoration slice.
func DecorateError(err error, caller string) error {
	return errDecorate(err, caller)
}
