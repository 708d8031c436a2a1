/*
 * geometry.go, part of uffref.
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

package uffref

import (
	"math"

	"github.com/rmera/uffref/vec"
)

const (
	deg2Rad = math.Pi / 180.0
	rad2Deg = 180.0 / math.Pi
)

//BondLengthMeasure is the measured length of one bond.
type BondLengthMeasure struct {
	Atoms  [2]int
	Length float64
}

//AngleMeasure is one measured bond angle, in degrees.
type AngleMeasure struct {
	Atoms    [3]int
	AngleDeg float64
}

//DihedralMeasure is one measured dihedral, in degrees.
type DihedralMeasure struct {
	Atoms       [4]int
	DihedralDeg float64
}

//Measurement is a derived, read-only snapshot of the geometry of one
//conformation: every bond length, every angle, and one representative
//dihedral per central bond.
type Measurement struct {
	BondLengths []BondLengthMeasure
	Angles      []AngleMeasure
	Dihedrals   []DihedralMeasure
}

//Measure takes a molecule and one conformation and returns its
//geometric measurements. The representative dihedral for each bond
//uses the lowest-index neighbor on either side; bonds with a terminal
//atom on either side yield no dihedral.
func Measure(mol *Molecule, coords *vec.Matrix) (*Measurement, error) {
	if mol == nil || coords == nil {
		return nil, CError{"nil molecule or coordinates", []string{"Measure"}}
	}
	if coords.NVecs() != mol.Len() {
		return nil, CError{"coordinates do not match the number of atoms", []string{"Measure"}}
	}
	m := new(Measurement)

	for _, b := range mol.Bonds {
		l := vec.Dist(coords.VecView(b.A1), coords.VecView(b.A2))
		m.BondLengths = append(m.BondLengths, BondLengthMeasure{Atoms: [2]int{b.A1, b.A2}, Length: l})
	}

	for _, a := range EnumerateAngles(mol) {
		angle := vec.AngleAround(coords.VecView(a[0]), coords.VecView(a[1]), coords.VecView(a[2]))
		m.Angles = append(m.Angles, AngleMeasure{Atoms: a, AngleDeg: angle * rad2Deg})
	}

	for _, b := range mol.Bonds {
		a2, a3 := b.A1, b.A2
		a1 := firstNeighborBut(mol, a2, a3)
		a4 := firstNeighborBut(mol, a3, a2)
		if a1 < 0 || a4 < 0 {
			continue
		}
		d := vec.Dihedral(coords.VecView(a1), coords.VecView(a2), coords.VecView(a3), coords.VecView(a4))
		m.Dihedrals = append(m.Dihedrals, DihedralMeasure{Atoms: [4]int{a1, a2, a3, a4}, DihedralDeg: d * rad2Deg})
	}
	return m, nil
}

//firstNeighborBut returns the lowest-index neighbor of atom i that is
//not excluded, or -1 if there is none.
func firstNeighborBut(mol *Molecule, i, excluded int) int {
	for _, n := range mol.Neighbors(i) { //already ascending
		if n != excluded {
			return n
		}
	}
	return -1
}
