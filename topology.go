/*
 * topology.go, part of uffref.
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

//Provenance values for inversion force constants.
const (
	ProvenanceEngine   = "engine"
	ProvenanceInferred = "inferred"
)

//BondTerm is one bond-stretch interaction.
type BondTerm struct {
	Atoms         [2]int
	ForceConstant float64
	EquilLength   float64
}

//AngleTerm is one angle-bend interaction. The equilibrium angle is
//carried in both degrees and radians, as the two come up in different
//downstream formulas and the conversion is a common source of bugs.
type AngleTerm struct {
	Atoms         [3]int //neighbor, center, neighbor
	ForceConstant float64
	EquilAngleDeg float64
	EquilAngleRad float64
}

//TorsionTerm is one proper-torsion interaction.
type TorsionTerm struct {
	Atoms   [4]int
	Barrier float64
}

//InversionTerm is one out-of-plane interaction at a trigonal center.
//Provenance records whether the force constant came from the engine or
//from the fallback rule table.
type InversionTerm struct {
	Center        int
	I, J, K       int
	ForceConstant float64
	Provenance    string
}

//VdwPairTerm is one non-bonded pair, separated by at least 4 bonds.
type VdwPairTerm struct {
	Atoms           [2]int
	ContactDistance float64
	WellDepth       float64
}

//OmittedCounts records interactions that were enumerated but whose
//parameter lookup failed, so the term was left out of its table. The
//counts travel with the term tables so no omission is ever silent.
type OmittedCounts struct {
	Bonds    int
	Angles   int
	Torsions int
	VdwPairs int
}

//Total returns the total number of omitted terms.
func (O OmittedCounts) Total() int {
	return O.Bonds + O.Angles + O.Torsions + O.VdwPairs
}

//InteractionCounts is the per-kind term count summary.
type InteractionCounts struct {
	Bonds      int
	Angles     int
	Torsions   int
	Inversions int
	VdwPairs   int
}

//Terms is the complete enumerated interaction set for one molecule.
type Terms struct {
	Bonds      []*BondTerm
	Angles     []*AngleTerm
	Torsions   []*TorsionTerm
	Inversions []*InversionTerm
	VdwPairs   []*VdwPairTerm
	Omitted    OmittedCounts
}

//Counts returns the per-kind term counts.
func (T *Terms) Counts() InteractionCounts {
	return InteractionCounts{
		Bonds:      len(T.Bonds),
		Angles:     len(T.Angles),
		Torsions:   len(T.Torsions),
		Inversions: len(T.Inversions),
		VdwPairs:   len(T.VdwPairs),
	}
}

//ParamSource supplies per-interaction numeric parameters. It is
//implemented by the engine subpackage; this package only consumes it.
type ParamSource interface {
	//BondParams returns the force constant and equilibrium length for
	//the bond between atoms i and j.
	BondParams(mol *Molecule, i, j int) (k, r0 float64, err error)
	//AngleParams returns the force constant and equilibrium angle
	//(in degrees) for the angle i-center-j.
	AngleParams(mol *Molecule, i, center, j int) (ka, theta0Deg float64, err error)
	//TorsionParams returns the barrier for the proper torsion
	//a1-a2-a3-a4. A zero barrier means the torsion contributes no term.
	TorsionParams(mol *Molecule, a1, a2, a3, a4 int) (barrier float64, err error)
	//InversionParams returns the out-of-plane force constant at center,
	//with neighbors i, j, k. Engines that cannot supply it return an
	//error, which makes the enumeration fall back to the rule table.
	InversionParams(mol *Molecule, center, i, j, k int) (kinv float64, err error)
	//VdwParams returns the contact distance and well depth for the
	//non-bonded pair i, j.
	VdwParams(mol *Molecule, i, j int) (x, d float64, err error)
}

//HopCounter reports bond-graph shortest-path lengths, in hops.
//A negative value means the two atoms are not connected.
type HopCounter interface {
	Hops(i, j int) int
}

//EnumerateAngles returns all angle triplets (neighbor, center,
//neighbor). For every center the neighbor indexes are sorted ascending
//and exactly one triplet is emitted per unordered neighbor pair, so a
//center of degree d yields d*(d-1)/2 triplets.
func EnumerateAngles(mol *Molecule) [][3]int {
	angles := make([][3]int, 0, mol.Len())
	for center := 0; center < mol.Len(); center++ {
		n := mol.Neighbors(center)
		for a := 0; a < len(n); a++ {
			for b := a + 1; b < len(n); b++ {
				angles = append(angles, [3]int{n[a], center, n[b]})
			}
		}
	}
	return angles
}

//EnumerateTorsions returns all proper-torsion quadruplets. For every
//bond (a2,a3), every neighbor a1 of a2 with a1 != a3 is combined with
//every neighbor a4 of a3 with a4 not in {a2, a1}. This intentionally
//yields one term per occurrence, not per distinct unordered quadruplet:
//several neighbor combinations around the same central bond each emit
//their own term, matching how the reference engine sums energies.
func EnumerateTorsions(mol *Molecule) [][4]int {
	torsions := make([][4]int, 0, mol.Len())
	for _, b := range mol.Bonds {
		a2, a3 := b.A1, b.A2
		for _, a1 := range mol.Neighbors(a2) {
			if a1 == a3 {
				continue
			}
			for _, a4 := range mol.Neighbors(a3) {
				if a4 == a2 || a4 == a1 {
					continue
				}
				torsions = append(torsions, [4]int{a1, a2, a3, a4})
			}
		}
	}
	return torsions
}

//inversionFallback implements the UFF-paper rules used when the engine
//cannot supply an out-of-plane constant: sp2 or aromatic carbon 6.0,
//sp2 or aromatic nitrogen 2.0, and element-specific constants for the
//group-15 elements. Everything else gets 0, i.e. no inversion term.
func inversionFallback(at *Atom) float64 {
	switch at.Symbol {
	case "C":
		if at.Hybridization == SP2 || at.Aromatic {
			return 6.0
		}
	case "N":
		if at.Hybridization == SP2 || at.Aromatic {
			return 2.0
		}
	case "P":
		return 84.0
	case "As", "Sb", "Bi":
		return 22.0
	}
	return 0
}

//BuildTerms enumerates every interaction term of the molecule and
//resolves its parameters through params. Per-term lookup failures are
//recovered locally: the term is omitted from its table and counted in
//Terms.Omitted. hops supplies bond-graph path lengths for the
//non-bonded pair rule; pairs with no path, or a path shorter than 4
//hops, are excluded.
func BuildTerms(mol *Molecule, params ParamSource, hops HopCounter) (*Terms, error) {
	if mol == nil || params == nil || hops == nil {
		return nil, CError{"nil molecule, parameter source or hop counter", []string{"BuildTerms"}}
	}
	terms := new(Terms)

	for _, b := range mol.Bonds {
		k, r0, err := params.BondParams(mol, b.A1, b.A2)
		if err != nil {
			terms.Omitted.Bonds++
			continue
		}
		terms.Bonds = append(terms.Bonds, &BondTerm{Atoms: [2]int{b.A1, b.A2}, ForceConstant: k, EquilLength: r0})
	}

	for _, a := range EnumerateAngles(mol) {
		ka, theta0, err := params.AngleParams(mol, a[0], a[1], a[2])
		if err != nil {
			terms.Omitted.Angles++
			continue
		}
		terms.Angles = append(terms.Angles, &AngleTerm{
			Atoms:         a,
			ForceConstant: ka,
			EquilAngleDeg: theta0,
			EquilAngleRad: theta0 * deg2Rad,
		})
	}

	for _, t := range EnumerateTorsions(mol) {
		v, err := params.TorsionParams(mol, t[0], t[1], t[2], t[3])
		if err != nil {
			terms.Omitted.Torsions++
			continue
		}
		if v == 0 { //a zero barrier is a valid "no term", not an omission
			continue
		}
		terms.Torsions = append(terms.Torsions, &TorsionTerm{Atoms: t, Barrier: v})
	}

	for center := 0; center < mol.Len(); center++ {
		n := mol.Neighbors(center)
		if len(n) != 3 {
			continue
		}
		//the three canonical permutations of the neighbor triple,
		//in the fixed rotation order the reference engine uses
		perms := [3][3]int{
			{n[0], n[1], n[2]},
			{n[1], n[0], n[2]},
			{n[2], n[0], n[1]},
		}
		for _, p := range perms {
			//The provenance is resolved per permutation. Resolving it once
			//outside this loop can mislabel permutations when the engine
			//answers for some orderings only.
			kinv, err := params.InversionParams(mol, center, p[0], p[1], p[2])
			provenance := ProvenanceEngine
			if err != nil {
				kinv = inversionFallback(mol.Atom(center))
				provenance = ProvenanceInferred
			}
			if kinv == 0 {
				continue
			}
			terms.Inversions = append(terms.Inversions, &InversionTerm{
				Center:        center,
				I:             p[0],
				J:             p[1],
				K:             p[2],
				ForceConstant: kinv,
				Provenance:    provenance,
			})
		}
	}

	tot := mol.Len()
	for i := 0; i < tot; i++ {
		for j := i + 1; j < tot; j++ {
			h := hops.Hops(i, j)
			if h < 4 { //also excludes disconnected pairs (negative h)
				continue
			}
			x, d, err := params.VdwParams(mol, i, j)
			if err != nil {
				terms.Omitted.VdwPairs++
				continue
			}
			terms.VdwPairs = append(terms.VdwPairs, &VdwPairTerm{Atoms: [2]int{i, j}, ContactDistance: x, WellDepth: d})
		}
	}
	return terms, nil
}

//String gives a compact one-line description of the counts, for
//diagnostics.
func (c InteractionCounts) String() string {
	return fmt.Sprintf("bonds: %d, angles: %d, torsions: %d, inversions: %d, vdw_pairs: %d",
		c.Bonds, c.Angles, c.Torsions, c.Inversions, c.VdwPairs)
}
