/*
 * molecules.go, part of uffref.
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

package enginetest

import (
	uffref "github.com/rmera/uffref"
	"github.com/rmera/uffref/vec"
)

//The built-in molecules. Atom order follows the heavy-atoms-first
//convention of toolkit hydrogen addition, and each builder returns a
//fresh molecule with its own coordinate matrix.
var builtins = map[string]func() *uffref.Molecule{
	"C":    methane,
	"CC":   ethane,
	"C=C":  ethene,
	"CCCC": butane,
	"N":    ammonia,
}

func atom(i int, symbol string, hyb uffref.Hybridization) *uffref.Atom {
	return &uffref.Atom{
		Index:         i,
		AtomicNumber:  uffref.SymbolZ(symbol),
		Symbol:        symbol,
		Hybridization: hyb,
	}
}

func mustCoords(data []float64) *vec.Matrix {
	m, err := vec.NewMatrix(data)
	if err != nil {
		panic(err)
	}
	return m
}

func mustBond(mol *uffref.Molecule, i, j int, order float64) {
	if err := mol.AddBond(i, j, order); err != nil {
		panic(err)
	}
}

func methane() *uffref.Molecule {
	mol := &uffref.Molecule{
		Atoms: []*uffref.Atom{
			atom(0, "C", uffref.SP3),
			atom(1, "H", uffref.HybOther),
			atom(2, "H", uffref.HybOther),
			atom(3, "H", uffref.HybOther),
			atom(4, "H", uffref.HybOther),
		},
	}
	for i := 1; i <= 4; i++ {
		mustBond(mol, 0, i, 1)
	}
	//tetrahedral, C-H 1.09
	const a = 0.6293 //1.09/sqrt(3)
	mol.Coords = mustCoords([]float64{
		0, 0, 0,
		a, a, a,
		a, -a, -a,
		-a, a, -a,
		-a, -a, a,
	})
	return mol
}

func ethane() *uffref.Molecule {
	mol := &uffref.Molecule{
		Atoms: []*uffref.Atom{
			atom(0, "C", uffref.SP3),
			atom(1, "C", uffref.SP3),
		},
	}
	for i := 2; i <= 7; i++ {
		mol.Atoms = append(mol.Atoms, atom(i, "H", uffref.HybOther))
	}
	mustBond(mol, 0, 1, 1)
	for i := 2; i <= 4; i++ {
		mustBond(mol, 0, i, 1)
	}
	for i := 5; i <= 7; i++ {
		mustBond(mol, 1, i, 1)
	}
	//staggered, C-C 1.526, C-H 1.09
	mol.Coords = mustCoords([]float64{
		0, 0, 0,
		1.526, 0, 0,
		-0.3637, 1.0277, 0,
		-0.3637, -0.5139, 0.8900,
		-0.3637, -0.5139, -0.8900,
		1.8897, -1.0277, 0,
		1.8897, 0.5139, 0.8900,
		1.8897, 0.5139, -0.8900,
	})
	return mol
}

func ethene() *uffref.Molecule {
	mol := &uffref.Molecule{
		Atoms: []*uffref.Atom{
			atom(0, "C", uffref.SP2),
			atom(1, "C", uffref.SP2),
			atom(2, "H", uffref.HybOther),
			atom(3, "H", uffref.HybOther),
			atom(4, "H", uffref.HybOther),
			atom(5, "H", uffref.HybOther),
		},
	}
	mustBond(mol, 0, 1, 2)
	mustBond(mol, 0, 2, 1)
	mustBond(mol, 0, 3, 1)
	mustBond(mol, 1, 4, 1)
	mustBond(mol, 1, 5, 1)
	//planar, C=C 1.339, C-H 1.09 at 120 degrees
	mol.Coords = mustCoords([]float64{
		0, 0, 0,
		1.339, 0, 0,
		-0.545, 0.9440, 0,
		-0.545, -0.9440, 0,
		1.884, 0.9440, 0,
		1.884, -0.9440, 0,
	})
	return mol
}

func butane() *uffref.Molecule {
	mol := &uffref.Molecule{
		Atoms: []*uffref.Atom{
			atom(0, "C", uffref.SP3),
			atom(1, "C", uffref.SP3),
			atom(2, "C", uffref.SP3),
			atom(3, "C", uffref.SP3),
		},
	}
	for i := 4; i <= 13; i++ {
		mol.Atoms = append(mol.Atoms, atom(i, "H", uffref.HybOther))
	}
	mustBond(mol, 0, 1, 1)
	mustBond(mol, 1, 2, 1)
	mustBond(mol, 2, 3, 1)
	//methyl hydrogens
	for i := 4; i <= 6; i++ {
		mustBond(mol, 0, i, 1)
	}
	for i := 7; i <= 9; i++ {
		mustBond(mol, 3, i, 1)
	}
	//methylene hydrogens
	mustBond(mol, 1, 10, 1)
	mustBond(mol, 1, 11, 1)
	mustBond(mol, 2, 12, 1)
	mustBond(mol, 2, 13, 1)
	//anti backbone (C0-C1-C2-C3 dihedral 180), C-C 1.53, angle 112
	mol.Coords = mustCoords([]float64{
		0.000, 0.000, 0.000,
		1.530, 0.000, 0.000,
		2.103, 1.419, 0.000,
		3.633, 1.419, 0.000,
		//C0 methyl
		-0.363, 1.028, 0.000,
		-0.363, -0.513, 0.890,
		-0.363, -0.513, -0.890,
		//C3 methyl
		3.996, 0.391, 0.000,
		3.996, 1.932, 0.890,
		3.996, 1.932, -0.890,
		//C1 methylene
		1.871, -0.505, 0.905,
		1.871, -0.505, -0.905,
		//C2 methylene
		1.762, 1.924, 0.905,
		1.762, 1.924, -0.905,
	})
	return mol
}

func ammonia() *uffref.Molecule {
	mol := &uffref.Molecule{
		Atoms: []*uffref.Atom{
			atom(0, "N", uffref.SP3),
			atom(1, "H", uffref.HybOther),
			atom(2, "H", uffref.HybOther),
			atom(3, "H", uffref.HybOther),
		},
	}
	for i := 1; i <= 3; i++ {
		mustBond(mol, 0, i, 1)
	}
	//trigonal pyramid, N-H 1.012
	mol.Coords = mustCoords([]float64{
		0, 0, 0,
		0.9377, 0, -0.3816,
		-0.4689, 0.8121, -0.3816,
		-0.4689, -0.8121, -0.3816,
	})
	return mol
}
