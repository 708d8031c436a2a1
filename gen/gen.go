/*
 * gen.go, part of uffref.
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

//Package gen orchestrates a full reference-data run: for each test
//molecule it parses, types, embeds, enumerates interaction terms,
//evaluates energies and gradients, cross-checks the gradients,
//minimizes, and finally assembles the serializable document, with a
//relaxed dihedral scan of butane appended.
package gen

import (
	"errors"
	"fmt"

	uffref "github.com/rmera/uffref"
	"github.com/rmera/uffref/energy"
	"github.com/rmera/uffref/engine"
	"github.com/rmera/uffref/molgraph"
	"github.com/rmera/uffref/refjson"
	"github.com/rmera/uffref/scan"
	"go.uber.org/zap"
)

//MoleculeSpec identifies one molecule of the reference set.
type MoleculeSpec struct {
	Name       string
	Descriptor string
	Notes      string
}

//DefaultMolecules returns the reference molecule set: small molecules
//chosen so that, together, they exercise every interaction kind and
//every atom-typing branch the validated implementations care about.
func DefaultMolecules() []MoleculeSpec {
	return []MoleculeSpec{
		{"methane", "C", "Tetrahedral sp3, simplest 3D molecule"},
		{"ethylene", "C=C", "sp2 planar, double bond"},
		{"ethane", "CC", "sp3-sp3 torsion"},
		{"benzene", "c1ccccc1", "Aromatic, inversion terms"},
		{"butane", "CCCC", "Gauche/anti torsion conformations"},
		{"water", "O", "Non-carbon, bent geometry"},
		{"ammonia", "N", "Nitrogen sp3, inversion"},
		{"adamantane", "C1C2CC3CC1CC(C2)C3", "Diamond fragment (adamantane C10H16)"},
		{"methanethiol", "CS", "Sulfur atom type, group 6 special torsion handling"},
	}
}

//Options configures a run.
type Options struct {
	//Seed pins every source of randomness in the conformation
	//embedding.
	Seed int64
	//MaxMinIter bounds the full minimization of every molecule.
	MaxMinIter int
	//ScanDescriptor selects the molecule that gets the relaxed
	//dihedral scan; empty disables the scan.
	ScanDescriptor string
	//Scan holds the scan settings; nil means scan.DefaultOptions.
	Scan *scan.Options
}

//DefaultOptions returns the reference run settings.
func DefaultOptions() *Options {
	return &Options{
		Seed:           42,
		MaxMinIter:     2000,
		ScanDescriptor: "CCCC",
	}
}

//Summary is the per-molecule digest printed at the end of a run.
type Summary struct {
	Name         string
	Atoms, Bonds int
	InputEnergy  float64
	MinEnergy    float64
	Converged    bool
	GradientsOK  bool
}

//Result is a complete run: the document plus the run summaries.
type Result struct {
	Document  *refjson.Document
	Summaries []*Summary
}

//Run generates reference data for every molecule in mols. A parse or
//parameter-coverage failure is fatal for the run; a failed gradient
//cross-check is recorded in the document and the summary but does not
//stop anything; a failed scan leaves the scan field empty.
func Run(tk engine.Toolkit, eng engine.Engine, mols []MoleculeSpec, opt *Options, log *zap.Logger) (*Result, error) {
	if opt == nil {
		opt = DefaultOptions()
	}
	if log == nil {
		log = zap.NewNop()
	}
	doc := refjson.NewDocument(eng.Name(), opt.Seed)
	R := &Result{Document: doc}
	for _, spec := range mols {
		log.Info("processing molecule",
			zap.String("name", spec.Name), zap.String("descriptor", spec.Descriptor))
		data, err := processMolecule(tk, eng, spec, opt, log)
		if err != nil {
			return nil, uffref.DecorateError(err, "Run: "+spec.Name)
		}
		doc.Molecules = append(doc.Molecules, refjson.Molecule(data))
		R.Summaries = append(R.Summaries, &Summary{
			Name:        spec.Name,
			Atoms:       data.Mol.Len(),
			Bonds:       len(data.Mol.Bonds),
			InputEnergy: data.InputEnergy.Total,
			MinEnergy:   data.MinimizedEnergy.Total,
			Converged:   data.MinimizationConverged,
			GradientsOK: data.Verification.Passed,
		})
	}
	if opt.ScanDescriptor != "" {
		sr, err := runScan(tk, eng, mols, opt, log)
		if err != nil {
			//the scan is an appendix; the per-molecule data stands
			//without it
			log.Warn("dihedral scan failed", zap.Error(err))
		} else {
			doc.ButaneDihedralScan = refjson.DihedralScan(sr)
		}
	}
	return R, nil
}

//embed walks the ordered strategy list until one produces a
//conformation, and reports which one did.
func embed(tk engine.Toolkit, mol *uffref.Molecule, seed int64, log *zap.Logger) (engine.EmbedStrategy, error) {
	var lastErr error
	for _, strategy := range engine.EmbedStrategies {
		err := tk.Embed(mol, seed, strategy)
		if err == nil {
			return strategy, nil
		}
		lastErr = err
		log.Warn("embedding failed, trying next strategy",
			zap.String("molecule", mol.Name), zap.String("strategy", string(strategy)))
	}
	return "", lastErr
}

func processMolecule(tk engine.Toolkit, eng engine.Engine, spec MoleculeSpec, opt *Options, log *zap.Logger) (*refjson.MoleculeData, error) {
	mol, err := tk.ParseMolecule(spec.Name, spec.Descriptor, spec.Notes)
	if err != nil {
		return nil, err
	}
	uffref.AssignTypes(mol)
	strategy, err := embed(tk, mol, opt.Seed, log)
	if err != nil {
		return nil, err
	}
	if !eng.HasAllParams(mol) {
		return nil, &engine.Error{Op: "check parameters", Engine: eng.Name(),
			Molecule: mol.Name, Err: engine.ErrMissingParams}
	}
	top := molgraph.New(mol)
	terms, err := uffref.BuildTerms(mol, eng, top)
	if err != nil {
		return nil, err
	}
	if n := terms.Omitted.Total(); n > 0 {
		log.Warn("interaction terms omitted for missing parameters",
			zap.String("molecule", mol.Name), zap.Int("omitted", n))
	}

	data := &refjson.MoleculeData{
		Mol:           mol,
		EmbedStrategy: string(strategy),
		Terms:         terms,
		InputCoords:   mol.Coords.Clone(),
	}
	if data.InputEnergy, err = energy.Evaluate(eng, mol, mol.Coords); err != nil {
		return nil, err
	}
	if data.InputGradFull, err = energy.Gradient(eng, mol, mol.Coords); err != nil {
		return nil, err
	}
	bondedCtx, err := eng.NewContext(mol, mol.Coords, &engine.Options{DisableVdw: true})
	if err != nil {
		return nil, err
	}
	if data.InputGradBonded, err = bondedCtx.Gradient(); err != nil {
		return nil, err
	}
	if data.Verification, err = energy.VerifyGradients(eng, mol, mol.Coords); err != nil {
		return nil, err
	}
	if !data.Verification.Passed {
		log.Warn("gradient cross-check failed",
			zap.String("molecule", mol.Name),
			zap.Float64("max_rel_error", data.Verification.MaxRelError))
	}
	if data.InputGeometry, err = uffref.Measure(mol, mol.Coords); err != nil {
		return nil, err
	}

	minCtx, err := eng.NewContext(mol, mol.Coords, nil)
	if err != nil {
		return nil, err
	}
	if data.MinimizationConverged, err = minCtx.Minimize(opt.MaxMinIter); err != nil {
		return nil, err
	}
	if data.MinimizedCoords, err = minCtx.Positions(); err != nil {
		return nil, err
	}
	if data.MinimizedEnergy, err = energy.Evaluate(eng, mol, data.MinimizedCoords); err != nil {
		return nil, err
	}
	if data.MinimizedGeometry, err = uffref.Measure(mol, data.MinimizedCoords); err != nil {
		return nil, err
	}
	log.Info("molecule done",
		zap.String("molecule", mol.Name),
		zap.Int("atoms", mol.Len()),
		zap.String("interactions", terms.Counts().String()),
		zap.Float64("input_energy", data.InputEnergy.Total),
		zap.Float64("minimized_energy", data.MinimizedEnergy.Total),
		zap.Bool("converged", data.MinimizationConverged))
	return data, nil
}

//runScan parses and embeds a fresh copy of the scan molecule, so the
//scan can never see state left behind by the per-molecule processing.
func runScan(tk engine.Toolkit, eng engine.Engine, mols []MoleculeSpec, opt *Options, log *zap.Logger) (*scan.Result, error) {
	var spec *MoleculeSpec
	for i := range mols {
		if mols[i].Descriptor == opt.ScanDescriptor {
			spec = &mols[i]
			break
		}
	}
	if spec == nil {
		return nil, errors.New("gen: scan molecule not in the reference set")
	}
	mol, err := tk.ParseMolecule(spec.Name, spec.Descriptor, spec.Notes)
	if err != nil {
		return nil, err
	}
	if _, err = embed(tk, mol, opt.Seed, log); err != nil {
		return nil, err
	}
	atoms, err := scan.BackboneDihedral(mol)
	if err != nil {
		return nil, err
	}
	log.Info("running relaxed dihedral scan",
		zap.String("molecule", mol.Name),
		zap.String("dihedral", fmt.Sprintf("%d-%d-%d-%d", atoms[0], atoms[1], atoms[2], atoms[3])))
	return scan.Run(tk, eng, mol, atoms, opt.Scan)
}
