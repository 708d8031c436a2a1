/*
 * scan.go, part of uffref.
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

//Package scan performs relaxed dihedral scans: the central torsion of
//a molecule is driven over a full turn and, at every step, the rest of
//the structure is relaxed under a stiff flat-bottomed restraint that
//pins the driven angle. The reference use is the butane C-C-C-C
//torsional profile.
package scan

import (
	"errors"
	"fmt"

	uffref "github.com/rmera/uffref"
	"github.com/rmera/uffref/engine"
	"github.com/rmera/uffref/vec"
)

//Options holds the scan settings. The zero value is not usable; start
//from DefaultOptions.
type Options struct {
	//StepDeg is the angular distance between scan points. The scan
	//covers [0, 360) so a step of 5 gives 72 points.
	StepDeg float64
	//WindowDeg is the half-width of the flat restraint window around
	//each target angle.
	WindowDeg float64
	//ForceK is the restraint force constant, stiff enough that the
	//minimizer cannot trade restraint violation for potential energy.
	ForceK float64
	//MaxIterTemplate bounds the initial full minimization that
	//produces the shared template conformation.
	MaxIterTemplate int
	//MaxIterPoint bounds the restrained minimization of each point.
	MaxIterPoint int
	//DriftTolDeg is the achieved-versus-target discrepancy, in
	//degrees, above which a point is flagged as having escaped its
	//restraint. The flag is diagnostic; the point is kept.
	DriftTolDeg float64
}

//DefaultOptions returns the reference scan settings.
func DefaultOptions() *Options {
	return &Options{
		StepDeg:         5,
		WindowDeg:       0.1,
		ForceK:          1e6,
		MaxIterTemplate: 2000,
		MaxIterPoint:    500,
		DriftTolDeg:     1.0,
	}
}

//Point is one relaxed scan point.
type Point struct {
	TargetDeg      float64
	AchievedDeg    float64
	Energy         float64
	RelativeEnergy float64
	//RestraintOK is false when the relaxed angle drifted from the
	//target by more than the tolerance.
	RestraintOK bool
	Converged   bool
}

//Key conformation names of the butane profile, keyed by target angle.
var keyConformations = map[float64]string{
	0:   "syn_0",
	60:  "gauche_60",
	120: "eclipsed_120",
	180: "anti_180",
}

//Result is a complete relaxed scan.
type Result struct {
	//Atoms are the four atoms of the driven dihedral.
	Atoms [4]int
	//TemplateConverged reports whether the initial full minimization
	//converged within its iteration bound.
	TemplateConverged bool
	Points            []*Point
	//MinEnergy is the global minimum over the points; relative
	//energies are referred to it.
	MinEnergy float64
	//KeyConformations maps conformation names to relative energies,
	//for the targets that have a conventional name.
	KeyConformations map[string]float64
}

//BackboneDihedral returns the four heavy atoms of the central torsion
//of a linear carbon chain: the lowest-index carbon-carbon bond whose
//both ends have a further carbon neighbor, flanked by the
//lowest-index such neighbors. The error case is a molecule with no
//such chain.
func BackboneDihedral(mol *uffref.Molecule) ([4]int, error) {
	isC := func(i int) bool { return mol.Atom(i).Symbol == "C" }
	carbonNeighbor := func(i, not int) int {
		for _, n := range mol.Neighbors(i) {
			if n != not && isC(n) {
				return n
			}
		}
		return -1
	}
	for _, b := range mol.Bonds {
		if !isC(b.A1) || !isC(b.A2) {
			continue
		}
		a1 := carbonNeighbor(b.A1, b.A2)
		a4 := carbonNeighbor(b.A2, b.A1)
		if a1 >= 0 && a4 >= 0 {
			return [4]int{a1, b.A1, b.A2, a4}, nil
		}
	}
	return [4]int{}, uffref.DecorateError(
		fmt.Errorf("scan: no carbon chain torsion in %s", mol.Name), "BackboneDihedral")
}

//Run performs a relaxed scan of the dihedral atoms of mol, whose
//coordinates must already be embedded. The template conformation is
//produced once by a full minimization and never mutated afterwards:
//every point starts from its own copy, so point ordering can never
//influence the profile.
func Run(tk engine.Toolkit, eng engine.Engine, mol *uffref.Molecule, atoms [4]int, opt *Options) (*Result, error) {
	if opt == nil {
		opt = DefaultOptions()
	}
	if mol.Coords == nil {
		return nil, uffref.DecorateError(errors.New("scan: molecule has no coordinates"), "Run")
	}
	tmplCtx, err := eng.NewContext(mol, mol.Coords, nil)
	if err != nil {
		return nil, err
	}
	tmplConverged, err := tmplCtx.Minimize(opt.MaxIterTemplate)
	if err != nil {
		return nil, err
	}
	template, err := tmplCtx.Positions()
	if err != nil {
		return nil, err
	}

	R := &Result{Atoms: atoms, TemplateConverged: tmplConverged}
	for target := 0.0; target < 360.0; target += opt.StepDeg {
		p, err := runPoint(tk, eng, mol, template, atoms, target, opt)
		if err != nil {
			return nil, err
		}
		R.Points = append(R.Points, p)
	}

	R.MinEnergy = R.Points[0].Energy
	for _, p := range R.Points[1:] {
		if p.Energy < R.MinEnergy {
			R.MinEnergy = p.Energy
		}
	}
	R.KeyConformations = make(map[string]float64)
	for _, p := range R.Points {
		p.RelativeEnergy = p.Energy - R.MinEnergy
		if name, ok := keyConformations[p.TargetDeg]; ok {
			R.KeyConformations[name] = p.RelativeEnergy
		}
	}
	return R, nil
}

func runPoint(tk engine.Toolkit, eng engine.Engine, mol *uffref.Molecule, template *vec.Matrix,
	atoms [4]int, target float64, opt *Options) (*Point, error) {
	coords := template.Clone()
	err := tk.SetDihedral(mol, coords, atoms[0], atoms[1], atoms[2], atoms[3], target)
	if err != nil {
		return nil, err
	}
	ctx, err := eng.NewContext(mol, coords, nil)
	if err != nil {
		return nil, err
	}
	err = ctx.AddTorsionRestraint(&engine.TorsionRestraint{
		Atoms:         atoms,
		MinDeg:        target - opt.WindowDeg,
		MaxDeg:        target + opt.WindowDeg,
		ForceConstant: opt.ForceK,
	})
	if err != nil {
		return nil, err
	}
	converged, err := ctx.Minimize(opt.MaxIterPoint)
	if err != nil {
		return nil, err
	}
	relaxed, err := ctx.Positions()
	if err != nil {
		return nil, err
	}
	e, err := ctx.Energy()
	if err != nil {
		return nil, err
	}
	achieved := vec.Dihedral(relaxed.VecView(atoms[0]), relaxed.VecView(atoms[1]),
		relaxed.VecView(atoms[2]), relaxed.VecView(atoms[3])) * vec.Rad2Deg
	if achieved < 0 {
		achieved += 360
	}
	drift := angularDistance(achieved, target)
	return &Point{
		TargetDeg:   target,
		AchievedDeg: achieved,
		Energy:      e,
		RestraintOK: drift <= opt.DriftTolDeg,
		Converged:   converged,
	}, nil
}

//angularDistance returns the smallest absolute angular separation, in
//degrees, between the two angles.
func angularDistance(a, b float64) float64 {
	d := a - b
	for d > 180 {
		d -= 360
	}
	for d < -180 {
		d += 360
	}
	if d < 0 {
		d = -d
	}
	return d
}
