/*
 * refjson.go, part of uffref.
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

//Package refjson serializes reference data into a stable JSON
//document. Every float is rounded to a fixed number of decimals
//before marshaling, and the marshaling itself is deterministic, so
//two runs over the same inputs produce byte-identical files. Files
//whose names end in ".zst" are transparently zstd-compressed.
package refjson

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	uffref "github.com/rmera/uffref"
	"github.com/rmera/uffref/energy"
	"github.com/rmera/uffref/scan"
	"github.com/rmera/uffref/vec"
)

//Decimal places kept per quantity class.
const (
	decPositions  = 10
	decGradients  = 10
	decEnergies   = 10
	decParams     = 6
	decLengths    = 8
	decAnglesDeg  = 6
	decAnglesRad  = 10
	decRelError   = 8
	decScanEnergy = 8
	decScanAngle  = 4
)

//Round rounds v half-away-from-zero to the given number of decimals,
//matching the rounding the document promises for every float field.
func Round(v float64, decimals int) float64 {
	if decimals < 0 {
		decimals = 0
	}
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

//Document is the top-level reference document.
type Document struct {
	Generator          string          `json:"generator"`
	RandomSeed         int64           `json:"random_seed"`
	EnergyUnits        string          `json:"energy_units"`
	DistanceUnits      string          `json:"distance_units"`
	AngleUnits         string          `json:"angle_units"`
	GradientConvention string          `json:"gradient_convention"`
	Description        string          `json:"description"`
	Molecules          []*MoleculeDoc  `json:"molecules"`
	ButaneDihedralScan *DihedralScanDoc `json:"butane_dihedral_scan"`
}

//NewDocument returns a document with the fixed header fields filled
//in. The generator string should identify the engine and its version.
func NewDocument(generator string, seed int64) *Document {
	return &Document{
		Generator:          generator,
		RandomSeed:         seed,
		EnergyUnits:        "kcal/mol",
		DistanceUnits:      "angstrom",
		AngleUnits:         "theta0_rad is radians, theta0_deg and all geometry angles are degrees",
		GradientConvention: "dE/dx (negative of force). Gradient units: kcal/(mol*angstrom)",
		Description: "Ground-truth UFF reference data for validating independent UFF " +
			"implementations. The 'bonded' energy/gradients exclude van der Waals " +
			"terms; 'total' includes them.",
	}
}

type AtomDoc struct {
	Index        int    `json:"index"`
	AtomicNumber int    `json:"atomic_number"`
	Symbol       string `json:"symbol"`
	UffType      string `json:"uff_type"`
}

type BondDoc struct {
	Atom1 int     `json:"atom1"`
	Atom2 int     `json:"atom2"`
	Order float64 `json:"order"`
}

type BondParamDoc struct {
	Atoms [2]int  `json:"atoms"`
	Kb    float64 `json:"kb"`
	R0    float64 `json:"r0"`
}

type AngleParamDoc struct {
	Atoms     [3]int  `json:"atoms"`
	Ka        float64 `json:"ka"`
	Theta0Deg float64 `json:"theta0_deg"`
	Theta0Rad float64 `json:"theta0_rad"`
}

type TorsionParamDoc struct {
	Atoms [4]int  `json:"atoms"`
	V     float64 `json:"V"`
}

type InversionParamDoc struct {
	Center int     `json:"center"`
	AtomI  int     `json:"atom_i"`
	AtomJ  int     `json:"atom_j"`
	AtomK  int     `json:"atom_k"`
	K      float64 `json:"K"`
	Source string  `json:"source"`
}

type VdwParamDoc struct {
	Atoms [2]int  `json:"atoms"`
	XIJ   float64 `json:"x_ij"`
	DIJ   float64 `json:"D_ij"`
}

//OmittedDoc surfaces interactions whose parameter lookup failed; it is
//always present, so a reader never has to guess whether zero means
//"none omitted" or "nobody counted".
type OmittedDoc struct {
	Bonds    int `json:"bonds"`
	Angles   int `json:"angles"`
	Torsions int `json:"torsions"`
	VdwPairs int `json:"vdw_pairs"`
}

type CountsDoc struct {
	Bonds      int        `json:"bonds"`
	Angles     int        `json:"angles"`
	Torsions   int        `json:"torsions"`
	Inversions int        `json:"inversions"`
	VdwPairs   int        `json:"vdw_pairs"`
	Omitted    OmittedDoc `json:"omitted"`
}

type EnergyDoc struct {
	Total  float64 `json:"total"`
	Bonded float64 `json:"bonded"`
	Vdw    float64 `json:"vdw"`
}

type GradientsDoc struct {
	Full   [][3]float64 `json:"full"`
	Bonded [][3]float64 `json:"bonded"`
}

type FailureDoc struct {
	Atom       int     `json:"atom"`
	Coord      string  `json:"coord"`
	Analytical float64 `json:"analytical"`
	Numerical  float64 `json:"numerical"`
	RelError   float64 `json:"rel_error"`
}

type VerificationDoc struct {
	Passed           bool         `json:"passed"`
	MaxRelativeError float64      `json:"max_relative_error"`
	StepSize         float64      `json:"step_size"`
	Tolerance        float64      `json:"tolerance"`
	Failures         []FailureDoc `json:"failures,omitempty"`
}

type BondLengthDoc struct {
	Atoms  [2]int  `json:"atoms"`
	Length float64 `json:"length"`
}

type AngleMeasureDoc struct {
	Atoms    [3]int  `json:"atoms"`
	AngleDeg float64 `json:"angle_deg"`
}

type DihedralMeasureDoc struct {
	Atoms       [4]int  `json:"atoms"`
	DihedralDeg float64 `json:"dihedral_deg"`
}

type GeometryDoc struct {
	BondLengths []BondLengthDoc      `json:"bond_lengths"`
	Angles      []AngleMeasureDoc    `json:"angles"`
	Dihedrals   []DihedralMeasureDoc `json:"dihedrals"`
}

//MoleculeDoc is the serialized record of one molecule.
type MoleculeDoc struct {
	Name                  string              `json:"name"`
	Smiles                string              `json:"smiles"`
	Notes                 string              `json:"notes"`
	NumAtoms              int                 `json:"num_atoms"`
	NumBonds              int                 `json:"num_bonds"`
	EmbedStrategy         string              `json:"embed_strategy"`
	Atoms                 []AtomDoc           `json:"atoms"`
	Bonds                 []BondDoc           `json:"bonds"`
	InputPositions        [][3]float64        `json:"input_positions"`
	InteractionCounts     CountsDoc           `json:"interaction_counts"`
	BondParams            []BondParamDoc      `json:"bond_params"`
	AngleParams           []AngleParamDoc     `json:"angle_params"`
	TorsionParams         []TorsionParamDoc   `json:"torsion_params"`
	InversionParams       []InversionParamDoc `json:"inversion_params"`
	VdwParams             []VdwParamDoc       `json:"vdw_params"`
	InputEnergy           EnergyDoc           `json:"input_energy"`
	InputGradients        GradientsDoc        `json:"input_gradients"`
	GradientVerification  VerificationDoc     `json:"gradient_verification"`
	InputGeometry         GeometryDoc         `json:"input_geometry"`
	MinimizationConverged bool                `json:"minimization_converged"`
	MinimizedPositions    [][3]float64        `json:"minimized_positions"`
	MinimizedEnergy       EnergyDoc           `json:"minimized_energy"`
	MinimizedGeometry     GeometryDoc         `json:"minimized_geometry"`
}

//MoleculeData gathers everything computed for one molecule, as
//produced by the generator. The refjson package turns it into the
//serialized record; it never computes anything itself beyond rounding.
type MoleculeData struct {
	Mol            *uffref.Molecule
	EmbedStrategy  string
	Terms          *uffref.Terms
	InputCoords    *vec.Matrix
	InputEnergy    *energy.Breakdown
	InputGradFull  []float64
	InputGradBonded []float64
	Verification   *energy.Verification
	InputGeometry  *uffref.Measurement

	MinimizationConverged bool
	MinimizedCoords       *vec.Matrix
	MinimizedEnergy       *energy.Breakdown
	MinimizedGeometry     *uffref.Measurement
}

var coordNames = [3]string{"x", "y", "z"}

//Molecule builds the serialized record for one molecule.
func Molecule(d *MoleculeData) *MoleculeDoc {
	mol := d.Mol
	doc := &MoleculeDoc{
		Name:                  mol.Name,
		Smiles:                mol.Descriptor,
		Notes:                 mol.Notes,
		NumAtoms:              mol.Len(),
		NumBonds:              len(mol.Bonds),
		EmbedStrategy:         d.EmbedStrategy,
		InputPositions:        positions(d.InputCoords),
		InputEnergy:           energyDoc(d.InputEnergy),
		InputGeometry:         geometryDoc(d.InputGeometry),
		MinimizationConverged: d.MinimizationConverged,
		MinimizedPositions:    positions(d.MinimizedCoords),
		MinimizedEnergy:       energyDoc(d.MinimizedEnergy),
		MinimizedGeometry:     geometryDoc(d.MinimizedGeometry),
		InputGradients: GradientsDoc{
			Full:   gradients(d.InputGradFull),
			Bonded: gradients(d.InputGradBonded),
		},
	}
	for _, at := range mol.Atoms {
		doc.Atoms = append(doc.Atoms, AtomDoc{
			Index:        at.Index,
			AtomicNumber: at.AtomicNumber,
			Symbol:       at.Symbol,
			UffType:      at.TypeLabel,
		})
	}
	for _, b := range mol.Bonds {
		doc.Bonds = append(doc.Bonds, BondDoc{Atom1: b.A1, Atom2: b.A2, Order: b.Order})
	}
	t := d.Terms
	counts := t.Counts()
	doc.InteractionCounts = CountsDoc{
		Bonds:      counts.Bonds,
		Angles:     counts.Angles,
		Torsions:   counts.Torsions,
		Inversions: counts.Inversions,
		VdwPairs:   counts.VdwPairs,
		Omitted: OmittedDoc{
			Bonds:    t.Omitted.Bonds,
			Angles:   t.Omitted.Angles,
			Torsions: t.Omitted.Torsions,
			VdwPairs: t.Omitted.VdwPairs,
		},
	}
	for _, b := range t.Bonds {
		doc.BondParams = append(doc.BondParams, BondParamDoc{
			Atoms: b.Atoms,
			Kb:    Round(b.ForceConstant, decParams),
			R0:    Round(b.EquilLength, decParams),
		})
	}
	for _, a := range t.Angles {
		doc.AngleParams = append(doc.AngleParams, AngleParamDoc{
			Atoms:     a.Atoms,
			Ka:        Round(a.ForceConstant, decParams),
			Theta0Deg: Round(a.EquilAngleDeg, decParams),
			Theta0Rad: Round(a.EquilAngleRad, decAnglesRad),
		})
	}
	for _, tt := range t.Torsions {
		doc.TorsionParams = append(doc.TorsionParams, TorsionParamDoc{
			Atoms: tt.Atoms,
			V:     Round(tt.Barrier, decParams),
		})
	}
	for _, inv := range t.Inversions {
		doc.InversionParams = append(doc.InversionParams, InversionParamDoc{
			Center: inv.Center,
			AtomI:  inv.I,
			AtomJ:  inv.J,
			AtomK:  inv.K,
			K:      Round(inv.ForceConstant, decParams),
			Source: inv.Provenance,
		})
	}
	for _, v := range t.VdwPairs {
		doc.VdwParams = append(doc.VdwParams, VdwParamDoc{
			Atoms: v.Atoms,
			XIJ:   Round(v.ContactDistance, decParams),
			DIJ:   Round(v.WellDepth, decParams),
		})
	}
	doc.GradientVerification = VerificationDoc{
		Passed:           d.Verification.Passed,
		MaxRelativeError: Round(d.Verification.MaxRelError, decRelError),
		StepSize:         d.Verification.Step,
		Tolerance:        d.Verification.Tolerance,
	}
	for _, f := range d.Verification.Failures {
		doc.GradientVerification.Failures = append(doc.GradientVerification.Failures, FailureDoc{
			Atom:       f.Atom,
			Coord:      coordNames[f.Coord],
			Analytical: Round(f.Analytical, decParams),
			Numerical:  Round(f.Numerical, decParams),
			RelError:   Round(f.RelError, decRelError),
		})
	}
	return doc
}

func positions(coords *vec.Matrix) [][3]float64 {
	if coords == nil {
		return nil
	}
	out := make([][3]float64, coords.NVecs())
	for i := range out {
		for c := 0; c < 3; c++ {
			out[i][c] = Round(coords.At(i, c), decPositions)
		}
	}
	return out
}

func gradients(g []float64) [][3]float64 {
	out := make([][3]float64, len(g)/3)
	for i := range out {
		for c := 0; c < 3; c++ {
			out[i][c] = Round(g[3*i+c], decGradients)
		}
	}
	return out
}

func energyDoc(b *energy.Breakdown) EnergyDoc {
	if b == nil {
		return EnergyDoc{}
	}
	return EnergyDoc{
		Total:  Round(b.Total, decEnergies),
		Bonded: Round(b.Bonded, decEnergies),
		Vdw:    Round(b.Vdw, decEnergies),
	}
}

func geometryDoc(m *uffref.Measurement) GeometryDoc {
	var g GeometryDoc
	if m == nil {
		return g
	}
	for _, b := range m.BondLengths {
		g.BondLengths = append(g.BondLengths, BondLengthDoc{Atoms: b.Atoms, Length: Round(b.Length, decLengths)})
	}
	for _, a := range m.Angles {
		g.Angles = append(g.Angles, AngleMeasureDoc{Atoms: a.Atoms, AngleDeg: Round(a.AngleDeg, decAnglesDeg)})
	}
	for _, d := range m.Dihedrals {
		g.Dihedrals = append(g.Dihedrals, DihedralMeasureDoc{Atoms: d.Atoms, DihedralDeg: Round(d.DihedralDeg, decAnglesDeg)})
	}
	return g
}

//Dihedral scan serialization

type ScanPointDoc struct {
	TargetAngleDeg float64 `json:"target_angle_deg"`
	ActualAngleDeg float64 `json:"actual_angle_deg"`
	Energy         float64 `json:"energy"`
	RelativeEnergy float64 `json:"relative_energy"`
	RestraintOK    bool    `json:"restraint_ok"`
}

type DihedralScanDoc struct {
	CarbonIndices    [4]int             `json:"carbon_indices"`
	NumPoints        int                `json:"num_points"`
	ScanPoints       []ScanPointDoc     `json:"scan_points"`
	MinEnergy        float64            `json:"min_energy"`
	KeyConformations map[string]float64 `json:"key_conformations"`
	Notes            string             `json:"notes"`
}

//DihedralScan builds the serialized record of a relaxed scan.
func DihedralScan(r *scan.Result) *DihedralScanDoc {
	doc := &DihedralScanDoc{
		CarbonIndices: r.Atoms,
		NumPoints:     len(r.Points),
		MinEnergy:     Round(r.MinEnergy, decScanEnergy),
		Notes: "72-point relaxed dihedral scan of butane C-C-C-C torsion. " +
			"At each angle, the dihedral is restrained and all other " +
			"coordinates are optimized. Energies in kcal/mol.",
		KeyConformations: make(map[string]float64, len(r.KeyConformations)),
	}
	for _, p := range r.Points {
		doc.ScanPoints = append(doc.ScanPoints, ScanPointDoc{
			TargetAngleDeg: p.TargetDeg,
			ActualAngleDeg: Round(p.AchievedDeg, decScanAngle),
			Energy:         Round(p.Energy, decScanEnergy),
			RelativeEnergy: Round(p.RelativeEnergy, decScanEnergy),
			RestraintOK:    p.RestraintOK,
		})
	}
	for name, e := range r.KeyConformations {
		doc.KeyConformations[name] = Round(e, decScanEnergy)
	}
	return doc
}

//ScanResult rebuilds a scan.Result from its serialized form, with the
//precision the document kept. It is the inverse of DihedralScan as far
//as downstream consumers (e.g. the plotter) need.
func ScanResult(doc *DihedralScanDoc) *scan.Result {
	r := &scan.Result{
		Atoms:            doc.CarbonIndices,
		MinEnergy:        doc.MinEnergy,
		KeyConformations: make(map[string]float64, len(doc.KeyConformations)),
	}
	for name, e := range doc.KeyConformations {
		r.KeyConformations[name] = e
	}
	for _, p := range doc.ScanPoints {
		r.Points = append(r.Points, &scan.Point{
			TargetDeg:      p.TargetAngleDeg,
			AchievedDeg:    p.ActualAngleDeg,
			Energy:         p.Energy,
			RelativeEnergy: p.RelativeEnergy,
			RestraintOK:    p.RestraintOK,
		})
	}
	return r
}

//Marshal serializes the document with two-space indentation and a
//trailing newline. encoding/json sorts map keys, so the output is
//byte-stable across runs.
func (D *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(D); err != nil {
		return nil, errDecorate(err, "Marshal")
	}
	return buf.Bytes(), nil
}

//WriteFile writes the document to path. A ".zst" suffix selects
//transparent zstd compression of the same JSON bytes.
func (D *Document) WriteFile(path string) error {
	data, err := D.Marshal()
	if err != nil {
		return err
	}
	if strings.HasSuffix(path, ".zst") {
		f, err := os.Create(path)
		if err != nil {
			return errDecorate(err, "WriteFile")
		}
		defer f.Close()
		w, err := zstd.NewWriter(f)
		if err != nil {
			return errDecorate(err, "WriteFile")
		}
		if _, err = w.Write(data); err != nil {
			w.Close()
			return errDecorate(err, "WriteFile")
		}
		return w.Close()
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errDecorate(err, "WriteFile")
	}
	return nil
}

//ReadFile reads a document back, decompressing ".zst" files.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errDecorate(err, "ReadFile")
	}
	if strings.HasSuffix(path, ".zst") {
		r, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errDecorate(err, "ReadFile")
		}
		defer r.Close()
		if data, err = io.ReadAll(r); err != nil {
			return nil, errDecorate(err, "ReadFile")
		}
	}
	D := new(Document)
	if err := json.Unmarshal(data, D); err != nil {
		return nil, errDecorate(err, "ReadFile")
	}
	return D, nil
}

func errDecorate(err error, caller string) error {
	return uffref.DecorateError(err, caller)
}
