/*
 * typer.go, part of uffref.
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

import "fmt"

//typeRule holds the UFF labels for one element, selected by aromaticity
//first and hybridization second. An empty field falls through to Def.
type typeRule struct {
	Aromatic string
	SP       string
	SP2      string
	SP3      string
	Def      string
}

//The label table. This is a simplified rendition of the canonical UFF
//atom typer: it covers the elements of the test set and labels
//everything else with a placeholder. Mismatches against the canonical
//typer are expected to surface downstream as missing-parameter errors,
//never as silent wrong energies; the labels themselves are advisory.
var typeRules = map[string]typeRule{
	"H":  {Def: "H_"}, //H bonded to an electronegative atom could be H_b, but UFF uses H_ for all
	"C":  {Aromatic: "C_R", SP: "C_1", SP2: "C_2", SP3: "C_3", Def: "C_3"},
	"N":  {Aromatic: "N_R", SP: "N_1", SP2: "N_2", SP3: "N_3", Def: "N_3"},
	"O":  {Aromatic: "O_R", SP2: "O_2", SP3: "O_3", Def: "O_3"},
	"S":  {Def: "S_3+2"}, //2-coordinate sulfur, the common case
	"P":  {Def: "P_3+3"},
	"F":  {Def: "F_"},
	"Cl": {Def: "Cl"},
	"Br": {Def: "Br"},
	"I":  {Def: "I_"},
	"Si": {Def: "Si3"},
}

//TypeLabel returns the heuristic UFF type label for one atom. Aromatic
//atoms get the aromatic-ring label regardless of hybridization.
//Unrecognized elements produce a placeholder label instead of an error,
//so enumeration and serialization never abort on an unknown element;
//only parameter lookup may later fail for such an atom.
func TypeLabel(at *Atom) string {
	rule, ok := typeRules[at.Symbol]
	if !ok {
		return fmt.Sprintf("%s_?", at.Symbol)
	}
	if at.Aromatic && rule.Aromatic != "" {
		return rule.Aromatic
	}
	var label string
	switch at.Hybridization {
	case SP:
		label = rule.SP
	case SP2:
		label = rule.SP2
	case SP3:
		label = rule.SP3
	}
	if label == "" {
		label = rule.Def
	}
	return label
}

//AssignTypes fills the TypeLabel field of every atom in the molecule.
func AssignTypes(mol *Molecule) {
	for _, at := range mol.Atoms {
		at.TypeLabel = TypeLabel(at)
	}
}
