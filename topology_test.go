/*
 * topology_test.go, part of uffref.
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
	"fmt"
	"testing"
)

//fakeParams is a ParamSource with constant parameters and injectable
//per-kind failures.
type fakeParams struct {
	failBond      map[[2]int]bool
	zeroTorsion   map[[4]int]bool
	noInversions  bool //true makes InversionParams decline, as an engine without the lookup would
	inversionK    float64
}

func (f *fakeParams) BondParams(mol *Molecule, i, j int) (float64, float64, error) {
	if f.failBond[[2]int{i, j}] {
		return 0, 0, CError{"no params", []string{"BondParams"}}
	}
	return 350, 1.5, nil
}

func (f *fakeParams) AngleParams(mol *Molecule, i, center, j int) (float64, float64, error) {
	return 80, 109.471, nil
}

func (f *fakeParams) TorsionParams(mol *Molecule, a1, a2, a3, a4 int) (float64, error) {
	if f.zeroTorsion[[4]int{a1, a2, a3, a4}] {
		return 0, nil
	}
	return 2.0, nil
}

func (f *fakeParams) InversionParams(mol *Molecule, center, i, j, k int) (float64, error) {
	if f.noInversions {
		return 0, CError{"not available", []string{"InversionParams"}}
	}
	return f.inversionK, nil
}

func (f *fakeParams) VdwParams(mol *Molecule, i, j int) (float64, float64, error) {
	return 3.5, 0.1, nil
}

//bfsHops counts bond-graph hops by breadth-first search, independently
//of the molgraph package.
type bfsHops struct {
	mol *Molecule
}

func (b bfsHops) Hops(i, j int) int {
	if i == j {
		return 0
	}
	dist := map[int]int{i: 0}
	queue := []int{i}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range b.mol.Neighbors(cur) {
			if _, seen := dist[n]; !seen {
				dist[n] = dist[cur] + 1
				if n == j {
					return dist[n]
				}
				queue = append(queue, n)
			}
		}
	}
	return -1
}

//testMethane is CH4 with the carbon first.
func testMethane() *Molecule {
	mol := &Molecule{Atoms: []*Atom{
		{Index: 0, Symbol: "C", Hybridization: SP3},
		{Index: 1, Symbol: "H"}, {Index: 2, Symbol: "H"},
		{Index: 3, Symbol: "H"}, {Index: 4, Symbol: "H"},
	}}
	for i := 1; i <= 4; i++ {
		if err := mol.AddBond(0, i, 1); err != nil {
			panic(err)
		}
	}
	return mol
}

//testEthene is H2C=CH2, carbons first.
func testEthene() *Molecule {
	mol := &Molecule{Atoms: []*Atom{
		{Index: 0, Symbol: "C", Hybridization: SP2},
		{Index: 1, Symbol: "C", Hybridization: SP2},
		{Index: 2, Symbol: "H"}, {Index: 3, Symbol: "H"},
		{Index: 4, Symbol: "H"}, {Index: 5, Symbol: "H"},
	}}
	mol.AddBond(0, 1, 2)
	mol.AddBond(0, 2, 1)
	mol.AddBond(0, 3, 1)
	mol.AddBond(1, 4, 1)
	mol.AddBond(1, 5, 1)
	return mol
}

//testPentaneBackbone is a bare 5-carbon chain, enough for the
//non-bonded pair rule.
func testPentaneBackbone() *Molecule {
	mol := &Molecule{}
	for i := 0; i < 5; i++ {
		mol.Atoms = append(mol.Atoms, &Atom{Index: i, Symbol: "C", Hybridization: SP3})
	}
	for i := 0; i < 4; i++ {
		mol.AddBond(i, i+1, 1)
	}
	return mol
}

func TestMethaneTermCounts(Te *testing.T) {
	mol := testMethane()
	terms, err := BuildTerms(mol, &fakeParams{}, bfsHops{mol})
	if err != nil {
		Te.Fatal(err)
	}
	c := terms.Counts()
	fmt.Println("methane", c)
	if c.Bonds != 4 || c.Angles != 6 || c.Torsions != 0 || c.Inversions != 0 || c.VdwPairs != 0 {
		Te.Errorf("methane counts %v, want 4 bonds, 6 angles and nothing else", c)
	}
	if terms.Omitted.Total() != 0 {
		Te.Errorf("methane omitted %d terms, want 0", terms.Omitted.Total())
	}
}

//A degree-d center yields d*(d-1)/2 angles, one per unordered neighbor
//pair, with the neighbors in ascending order.
func TestAngleEnumeration(Te *testing.T) {
	angles := EnumerateAngles(testMethane())
	if len(angles) != 6 {
		Te.Fatalf("methane has %d angles, want 6", len(angles))
	}
	for _, a := range angles {
		if a[1] != 0 {
			Te.Errorf("angle %v not centered on the carbon", a)
		}
		if a[0] >= a[2] {
			Te.Errorf("angle %v neighbors not in ascending order", a)
		}
	}
}

//Torsions are emitted once per occurrence around the central bond, so
//ethane (3 H on each side) yields 9 of them.
func TestTorsionEnumerationPerOccurrence(Te *testing.T) {
	mol := &Molecule{Atoms: []*Atom{
		{Index: 0, Symbol: "C", Hybridization: SP3},
		{Index: 1, Symbol: "C", Hybridization: SP3},
	}}
	for i := 2; i <= 7; i++ {
		mol.Atoms = append(mol.Atoms, &Atom{Index: i, Symbol: "H"})
	}
	mol.AddBond(0, 1, 1)
	for i := 2; i <= 4; i++ {
		mol.AddBond(0, i, 1)
	}
	for i := 5; i <= 7; i++ {
		mol.AddBond(1, i, 1)
	}
	torsions := EnumerateTorsions(mol)
	if len(torsions) != 9 {
		Te.Errorf("ethane has %d torsion occurrences, want 9", len(torsions))
	}
	for _, t := range torsions {
		if !mol.Bonded(t[1], t[2]) {
			Te.Errorf("torsion %v central pair not bonded", t)
		}
	}
}

//Each trigonal sp2 center yields the three canonical neighbor
//permutations; with an engine that declines the lookup, all three get
//the rule-table constant and the "inferred" provenance.
func TestInversionFallback(Te *testing.T) {
	mol := testEthene()
	terms, err := BuildTerms(mol, &fakeParams{noInversions: true}, bfsHops{mol})
	if err != nil {
		Te.Fatal(err)
	}
	if len(terms.Inversions) != 6 {
		Te.Fatalf("ethene has %d inversion terms, want 6 (3 per sp2 carbon)", len(terms.Inversions))
	}
	for _, inv := range terms.Inversions {
		if inv.Provenance != ProvenanceInferred {
			Te.Errorf("inversion at %d has provenance %q, want %q", inv.Center, inv.Provenance, ProvenanceInferred)
		}
		if inv.ForceConstant != 6.0 {
			Te.Errorf("sp2 carbon inversion K = %v, want 6.0", inv.ForceConstant)
		}
	}
}

//When the engine answers, provenance must say so, per permutation.
func TestInversionEngineProvenance(Te *testing.T) {
	mol := testEthene()
	terms, err := BuildTerms(mol, &fakeParams{inversionK: 3.3}, bfsHops{mol})
	if err != nil {
		Te.Fatal(err)
	}
	for _, inv := range terms.Inversions {
		if inv.Provenance != ProvenanceEngine || inv.ForceConstant != 3.3 {
			Te.Errorf("inversion %v: want engine-provided K=3.3, got %q K=%v",
				inv, inv.Provenance, inv.ForceConstant)
		}
	}
}

//sp3 nitrogen is trigonal but has no fallback constant: no terms.
func TestInversionSp3NitrogenSkipped(Te *testing.T) {
	mol := &Molecule{Atoms: []*Atom{
		{Index: 0, Symbol: "N", Hybridization: SP3},
		{Index: 1, Symbol: "H"}, {Index: 2, Symbol: "H"}, {Index: 3, Symbol: "H"},
	}}
	for i := 1; i <= 3; i++ {
		mol.AddBond(0, i, 1)
	}
	terms, err := BuildTerms(mol, &fakeParams{noInversions: true}, bfsHops{mol})
	if err != nil {
		Te.Fatal(err)
	}
	if len(terms.Inversions) != 0 {
		Te.Errorf("sp3 nitrogen produced %d inversion terms, want 0", len(terms.Inversions))
	}
}

//Non-bonded pairs require at least 4 bonds between the atoms.
func TestVdwPairRule(Te *testing.T) {
	mol := testPentaneBackbone()
	terms, err := BuildTerms(mol, &fakeParams{}, bfsHops{mol})
	if err != nil {
		Te.Fatal(err)
	}
	if len(terms.VdwPairs) != 1 {
		Te.Fatalf("5-carbon chain has %d vdw pairs, want 1", len(terms.VdwPairs))
	}
	if terms.VdwPairs[0].Atoms != [2]int{0, 4} {
		Te.Errorf("vdw pair is %v, want the chain ends (0,4)", terms.VdwPairs[0].Atoms)
	}
}

//A failed lookup omits the term and counts it; a zero torsion barrier
//is a valid no-term, not an omission.
func TestOmissionCounting(Te *testing.T) {
	mol := testMethane()
	params := &fakeParams{failBond: map[[2]int]bool{{0, 1}: true}}
	terms, err := BuildTerms(mol, params, bfsHops{mol})
	if err != nil {
		Te.Fatal(err)
	}
	if len(terms.Bonds) != 3 || terms.Omitted.Bonds != 1 {
		Te.Errorf("got %d bond terms with %d omitted, want 3 with 1", len(terms.Bonds), terms.Omitted.Bonds)
	}

	eth := testPentaneBackbone()
	all := EnumerateTorsions(eth)
	params2 := &fakeParams{zeroTorsion: map[[4]int]bool{all[0]: true}}
	terms2, err := BuildTerms(eth, params2, bfsHops{eth})
	if err != nil {
		Te.Fatal(err)
	}
	if len(terms2.Torsions) != len(all)-1 {
		Te.Errorf("zero-barrier torsion not excluded: %d terms from %d occurrences", len(terms2.Torsions), len(all))
	}
	if terms2.Omitted.Torsions != 0 {
		Te.Errorf("zero-barrier torsion wrongly counted as omitted")
	}
}

func TestBuildTermsNilArgs(Te *testing.T) {
	if _, err := BuildTerms(nil, &fakeParams{}, bfsHops{}); err == nil {
		Te.Error("BuildTerms accepted a nil molecule")
	}
}
