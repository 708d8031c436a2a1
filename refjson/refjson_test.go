/*
 * refjson_test.go, part of uffref.
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

package refjson

import (
	"path/filepath"
	"strings"
	"testing"

	uffref "github.com/rmera/uffref"
	"github.com/rmera/uffref/energy"
	"github.com/rmera/uffref/scan"
	"github.com/rmera/uffref/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound(t *testing.T) {
	assert.Equal(t, 1.234568, Round(1.2345678, 6))
	assert.Equal(t, -1.23, Round(-1.2349, 2))
	assert.Equal(t, 2.0, Round(1.5, 0))
	assert.Equal(t, 0.0, Round(0.00004, 4))
}

//sampleData builds a small but fully populated molecule record.
func sampleData(t *testing.T) *MoleculeData {
	t.Helper()
	mol := &uffref.Molecule{
		Name:       "water",
		Descriptor: "O",
		Notes:      "bent",
		Atoms: []*uffref.Atom{
			{Index: 0, AtomicNumber: 8, Symbol: "O", TypeLabel: "O_3", Hybridization: uffref.SP3},
			{Index: 1, AtomicNumber: 1, Symbol: "H", TypeLabel: "H_"},
			{Index: 2, AtomicNumber: 1, Symbol: "H", TypeLabel: "H_"},
		},
	}
	require.NoError(t, mol.AddBond(0, 1, 1))
	require.NoError(t, mol.AddBond(0, 2, 1))
	coords, err := vec.NewMatrix([]float64{
		0, 0, 0,
		0.9572, 0, 0,
		-0.2399872, 0.9266272, 0,
	})
	require.NoError(t, err)
	mol.Coords = coords

	terms := &uffref.Terms{
		Bonds: []*uffref.BondTerm{
			{Atoms: [2]int{0, 1}, ForceConstant: 1109.613, EquilLength: 0.9904},
			{Atoms: [2]int{0, 2}, ForceConstant: 1109.613, EquilLength: 0.9904},
		},
		Angles: []*uffref.AngleTerm{
			{Atoms: [3]int{1, 0, 2}, ForceConstant: 140.0, EquilAngleDeg: 104.51, EquilAngleRad: 1.8240432},
		},
		Inversions: []*uffref.InversionTerm{
			{Center: 0, I: 1, J: 2, K: 0, ForceConstant: 2.0, Provenance: uffref.ProvenanceInferred},
		},
		Omitted: uffref.OmittedCounts{Angles: 1},
	}
	meas, err := uffref.Measure(mol, coords)
	require.NoError(t, err)
	grad := make([]float64, 9)
	return &MoleculeData{
		Mol:             mol,
		EmbedStrategy:   "etkdg_v3",
		Terms:           terms,
		InputCoords:     coords,
		InputEnergy:     &energy.Breakdown{Total: 1.5, Bonded: 1.5, Vdw: 0},
		InputGradFull:   grad,
		InputGradBonded: grad,
		Verification: &energy.Verification{
			Passed: true, MaxRelError: 1.23456789e-5, Step: 1e-5, Tolerance: 0.01,
		},
		InputGeometry:         meas,
		MinimizationConverged: true,
		MinimizedCoords:       coords.Clone(),
		MinimizedEnergy:       &energy.Breakdown{Total: 1.2, Bonded: 1.2, Vdw: 0},
		MinimizedGeometry:     meas,
	}
}

func TestMoleculeDoc(t *testing.T) {
	doc := Molecule(sampleData(t))
	assert.Equal(t, "water", doc.Name)
	assert.Equal(t, "O", doc.Smiles)
	assert.Equal(t, 3, doc.NumAtoms)
	assert.Equal(t, 2, doc.NumBonds)
	assert.Equal(t, "etkdg_v3", doc.EmbedStrategy)
	require.Len(t, doc.Atoms, 3)
	assert.Equal(t, "O_3", doc.Atoms[0].UffType)
	require.Len(t, doc.BondParams, 2)
	assert.Equal(t, 1109.613, doc.BondParams[0].Kb)
	require.Len(t, doc.InversionParams, 1)
	assert.Equal(t, "inferred", doc.InversionParams[0].Source)
	assert.Equal(t, 2, doc.InteractionCounts.Bonds)
	assert.Equal(t, 1, doc.InteractionCounts.Omitted.Angles)
	assert.Len(t, doc.InputPositions, 3)
	assert.Len(t, doc.InputGradients.Full, 3)
	assert.True(t, doc.GradientVerification.Passed)
	assert.Equal(t, Round(1.23456789e-5, 8), doc.GradientVerification.MaxRelativeError)
	assert.True(t, doc.MinimizationConverged)
	require.Len(t, doc.InputGeometry.Angles, 1)
	assert.InDelta(t, 104.52, doc.InputGeometry.Angles[0].AngleDeg, 0.1)
}

func sampleScan() *scan.Result {
	r := &scan.Result{
		Atoms:            [4]int{0, 1, 2, 3},
		MinEnergy:        2.123456789,
		KeyConformations: map[string]float64{"anti_180": 0, "syn_0": 5.5},
	}
	for i := 0; i < 72; i++ {
		r.Points = append(r.Points, &scan.Point{
			TargetDeg:      float64(i * 5),
			AchievedDeg:    float64(i*5) + 0.01,
			Energy:         2.123456789 + float64(i%7),
			RelativeEnergy: float64(i % 7),
			RestraintOK:    true,
		})
	}
	return r
}

func TestScanDocRoundTrip(t *testing.T) {
	doc := DihedralScan(sampleScan())
	assert.Equal(t, 72, doc.NumPoints)
	assert.Equal(t, Round(2.123456789, 8), doc.MinEnergy)
	assert.Equal(t, 0.01, doc.ScanPoints[0].ActualAngleDeg-doc.ScanPoints[0].TargetAngleDeg)

	back := ScanResult(doc)
	assert.Equal(t, doc.CarbonIndices, back.Atoms)
	require.Len(t, back.Points, 72)
	assert.Equal(t, doc.ScanPoints[3].Energy, back.Points[3].Energy)
	assert.Equal(t, doc.KeyConformations["syn_0"], back.KeyConformations["syn_0"])
}

func buildDocument(t *testing.T) *Document {
	doc := NewDocument("test engine", 42)
	doc.Molecules = append(doc.Molecules, Molecule(sampleData(t)))
	doc.ButaneDihedralScan = DihedralScan(sampleScan())
	return doc
}

func TestMarshalDeterministic(t *testing.T) {
	a, err := buildDocument(t).Marshal()
	require.NoError(t, err)
	b, err := buildDocument(t).Marshal()
	require.NoError(t, err)
	assert.Equal(t, a, b, "two marshals of equal documents differ")
	assert.True(t, strings.HasSuffix(string(a), "\n"))
	assert.Contains(t, string(a), "\"random_seed\": 42")
	assert.Contains(t, string(a), "\"butane_dihedral_scan\"")
}

func TestWriteReadFile(t *testing.T) {
	dir := t.TempDir()
	doc := buildDocument(t)
	for _, name := range []string{"ref.json", "ref.json.zst"} {
		path := filepath.Join(dir, name)
		require.NoError(t, doc.WriteFile(path))
		back, err := ReadFile(path)
		require.NoError(t, err, name)
		assert.Equal(t, doc.Generator, back.Generator)
		require.Len(t, back.Molecules, 1, name)
		assert.Equal(t, doc.Molecules[0].Name, back.Molecules[0].Name)
		require.NotNil(t, back.ButaneDihedralScan)
		assert.Equal(t, 72, back.ButaneDihedralScan.NumPoints)
	}
}
