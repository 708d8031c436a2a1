/*
 * enginetest.go, part of uffref.
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

//Package enginetest provides an in-process toolkit and engine, for
//tests that must run without a Python/RDKit installation. The
//potential is not UFF: it is a toy made only of radial pair terms
//(bond springs, 1-3 and 1-4 springs, and a purely repulsive
//non-bonded wall), chosen because its analytical gradients are exact
//and a few lines long. Everything a real engine promises still holds:
//contexts are independent, Minimize honors torsion restraints, and
//results are deterministic.
package enginetest

import (
	"fmt"
	"math"

	uffref "github.com/rmera/uffref"
	"github.com/rmera/uffref/engine"
	"github.com/rmera/uffref/molgraph"
	"github.com/rmera/uffref/vec"
)

//toy potential parameters
const (
	kBond    = 350.0
	kUrey    = 80.0
	kOneFour = 5.0
	dRep     = 0.05
	//the reference separations are rule-generated from covalent and
	//van der Waals radii; see pairR0
	scale13 = 1.60
	scale14 = 2.20
)

//Oracle implements engine.Toolkit and engine.Engine over a small set
//of built-in molecules, keyed by their SMILES descriptor.
type Oracle struct {
	//FailStrategies makes Embed fail for the listed strategies, to
	//exercise the embedding fallback walk.
	FailStrategies map[engine.EmbedStrategy]bool
}

//New returns a ready Oracle.
func New() *Oracle {
	return &Oracle{}
}

//Name identifies the oracle as an engine.
func (O *Oracle) Name() string {
	return "enginetest toy potential"
}

//Toolkit implementation

//ParseMolecule returns one of the built-in molecules, or an error
//wrapping engine.ErrParse for unknown descriptors.
func (O *Oracle) ParseMolecule(name, descriptor, notes string) (*uffref.Molecule, error) {
	build, ok := builtins[descriptor]
	if !ok {
		return nil, &engine.Error{Op: "parse", Engine: "enginetest", Molecule: name, Err: engine.ErrParse}
	}
	mol := build()
	mol.Name = name
	mol.Descriptor = descriptor
	mol.Notes = notes
	mol.Coords = nil //coordinates only appear on Embed
	return mol, nil
}

//Embed copies the built-in conformation into mol.Coords. The seed is
//accepted for interface compatibility but ignored, as the builtin
//geometries are already deterministic.
func (O *Oracle) Embed(mol *uffref.Molecule, seed int64, strategy engine.EmbedStrategy) error {
	if O.FailStrategies[strategy] {
		return &engine.Error{Op: "embed", Engine: "enginetest", Molecule: mol.Name, Err: engine.ErrEmbed}
	}
	build, ok := builtins[mol.Descriptor]
	if !ok {
		return &engine.Error{Op: "embed", Engine: "enginetest", Molecule: mol.Name, Err: engine.ErrEmbed}
	}
	mol.Coords = build().Coords
	return nil
}

//SetDihedral rotates, in place, the a4 side of the a2-a3 bond so the
//a1-a2-a3-a4 dihedral of coords becomes deg degrees.
func (O *Oracle) SetDihedral(mol *uffref.Molecule, coords *vec.Matrix, a1, a2, a3, a4 int, deg float64) error {
	moving := sideOf(mol, a2, a3)
	axis1 := coords.VecView(a2)
	axis2 := coords.VecView(a3)
	cur := vec.Dihedral(coords.VecView(a1), axis1, axis2, coords.VecView(a4)) * vec.Rad2Deg
	delta := wrap180(deg - cur)
	vec.RotateAbout(coords, moving, axis1, axis2, delta*vec.Deg2Rad)
	//the rotation sense depends on the axis orientation, so verify and
	//rotate the other way if the angle moved away from the target
	now := vec.Dihedral(coords.VecView(a1), axis1, axis2, coords.VecView(a4)) * vec.Rad2Deg
	if math.Abs(wrap180(deg-now)) > 1e-6 {
		vec.RotateAbout(coords, moving, axis1, axis2, -2*delta*vec.Deg2Rad)
	}
	now = vec.Dihedral(coords.VecView(a1), axis1, axis2, coords.VecView(a4)) * vec.Rad2Deg
	if math.Abs(wrap180(deg-now)) > 1e-4 {
		return &engine.Error{Op: "set dihedral", Engine: "enginetest", Molecule: mol.Name,
			Err: fmt.Errorf("wanted %.4f deg, got %.4f", deg, now)}
	}
	return nil
}

//sideOf returns the atoms reachable from b without crossing a,
//excluding b itself (which lies on the rotation axis).
func sideOf(mol *uffref.Molecule, a, b int) []int {
	seen := map[int]bool{a: true, b: true}
	queue := []int{b}
	var side []int
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range mol.Neighbors(cur) {
			if !seen[n] {
				seen[n] = true
				side = append(side, n)
				queue = append(queue, n)
			}
		}
	}
	return side
}

func wrap180(deg float64) float64 {
	for deg > 180 {
		deg -= 360
	}
	for deg <= -180 {
		deg += 360
	}
	return deg
}

//Engine implementation

//HasAllParams reports whether the toy parameter rules cover every
//atom, which they do whenever the element has tabulated radii.
func (O *Oracle) HasAllParams(mol *uffref.Molecule) bool {
	for _, at := range mol.Atoms {
		if uffref.CovRad(at.Symbol) == 0 || uffref.VdwRad(at.Symbol) == 0 {
			return false
		}
	}
	return true
}

//pairR0 is the rule-generated reference separation for a pair at the
//given hop distance.
func pairR0(mol *uffref.Molecule, i, j, hops int) float64 {
	r := uffref.CovRad(mol.Atom(i).Symbol) + uffref.CovRad(mol.Atom(j).Symbol)
	switch hops {
	case 1:
		return r
	case 2:
		return r * scale13
	default:
		return r * scale14
	}
}

//BondParams returns the toy bond spring constant and the covalent
//reference length.
func (O *Oracle) BondParams(mol *uffref.Molecule, i, j int) (float64, float64, error) {
	return kBond, pairR0(mol, i, j, 1), nil
}

//AngleParams returns the toy angle constant and an ideal angle from
//the hybridization of the central atom.
func (O *Oracle) AngleParams(mol *uffref.Molecule, i, center, j int) (float64, float64, error) {
	theta := 109.471
	switch mol.Atom(center).Hybridization {
	case uffref.SP2:
		theta = 120.0
	case uffref.SP:
		theta = 180.0
	}
	return kUrey, theta, nil
}

//TorsionParams returns a fixed toy barrier.
func (O *Oracle) TorsionParams(mol *uffref.Molecule, a1, a2, a3, a4 int) (float64, error) {
	return 2.0, nil
}

//InversionParams always declines, so callers exercise their
//rule-table fallback and the "inferred" provenance path.
func (O *Oracle) InversionParams(mol *uffref.Molecule, center, i, j, k int) (float64, error) {
	return 0, engine.ErrNotAvailable
}

//VdwParams returns the contact distance (sum of van der Waals radii)
//and the toy well depth.
func (O *Oracle) VdwParams(mol *uffref.Molecule, i, j int) (float64, float64, error) {
	x := uffref.VdwRad(mol.Atom(i).Symbol) + uffref.VdwRad(mol.Atom(j).Symbol)
	return x, dRep, nil
}

//spring is one harmonic radial pair term, 0.5*k*(r-r0)^2.
type spring struct {
	i, j  int
	k, r0 float64
}

//rep is one repulsive non-bonded term, d*(x/r)^12.
type rep struct {
	i, j int
	x, d float64
}

//NewContext builds an independent evaluation context over a snapshot
//of coords. The pair terms are resolved once, from the bond graph.
func (O *Oracle) NewContext(mol *uffref.Molecule, coords *vec.Matrix, opt *engine.Options) (engine.Context, error) {
	if coords == nil {
		return nil, &engine.Error{Op: "new context", Engine: "enginetest", Molecule: mol.Name,
			Err: fmt.Errorf("nil coordinates")}
	}
	C := &context{mol: mol, coords: coords.Clone()}
	top := molgraph.New(mol)
	disableVdw := opt != nil && opt.DisableVdw
	for i := 0; i < mol.Len(); i++ {
		for j := i + 1; j < mol.Len(); j++ {
			h := top.Hops(i, j)
			switch {
			case h == 1:
				C.springs = append(C.springs, spring{i, j, kBond, pairR0(mol, i, j, 1)})
			case h == 2:
				C.springs = append(C.springs, spring{i, j, kUrey, pairR0(mol, i, j, 2)})
			case h == 3:
				C.springs = append(C.springs, spring{i, j, kOneFour, pairR0(mol, i, j, 3)})
			case h >= 4 && !disableVdw:
				x, d, _ := O.VdwParams(mol, i, j)
				C.reps = append(C.reps, rep{i, j, x, d})
			}
		}
	}
	return C, nil
}

type context struct {
	mol        *uffref.Molecule
	coords     *vec.Matrix
	springs    []spring
	reps       []rep
	restraints []*engine.TorsionRestraint
}

//Energy returns the toy potential at the current positions. Restraint
//penalties are not included: they only steer Minimize, so the energy
//reported for a relaxed scan point is that of the unrestrained
//potential at the restrained geometry.
func (C *context) Energy() (float64, error) {
	return C.energy(C.coords), nil
}

func (C *context) energy(x *vec.Matrix) float64 {
	var e float64
	for _, s := range C.springs {
		r := vec.Dist(x.VecView(s.i), x.VecView(s.j))
		d := r - s.r0
		e += 0.5 * s.k * d * d
	}
	for _, p := range C.reps {
		r := vec.Dist(x.VecView(p.i), x.VecView(p.j))
		e += p.d * math.Pow(p.x/r, 12)
	}
	return e
}

//Gradient returns the analytical gradient of the toy potential.
func (C *context) Gradient() ([]float64, error) {
	return C.gradient(C.coords), nil
}

func (C *context) gradient(x *vec.Matrix) []float64 {
	g := make([]float64, x.NVecs()*3)
	addRadial := func(i, j int, dEdr float64) {
		r := vec.Dist(x.VecView(i), x.VecView(j))
		if r == 0 {
			return
		}
		for c := 0; c < 3; c++ {
			u := (x.At(i, c) - x.At(j, c)) / r
			g[3*i+c] += dEdr * u
			g[3*j+c] -= dEdr * u
		}
	}
	for _, s := range C.springs {
		r := vec.Dist(x.VecView(s.i), x.VecView(s.j))
		addRadial(s.i, s.j, s.k*(r-s.r0))
	}
	for _, p := range C.reps {
		r := vec.Dist(x.VecView(p.i), x.VecView(p.j))
		addRadial(p.i, p.j, -12*p.d*math.Pow(p.x/r, 12)/r)
	}
	return g
}

//AddTorsionRestraint registers a restraint honored by Minimize.
func (C *context) AddTorsionRestraint(r *engine.TorsionRestraint) error {
	C.restraints = append(C.restraints, r)
	return nil
}

//penalty is the harmonic flat-bottomed restraint energy, in the same
//units as the potential, with the angular deviation in degrees.
func (C *context) penalty(x *vec.Matrix) float64 {
	var e float64
	for _, r := range C.restraints {
		d := vec.Dihedral(x.VecView(r.Atoms[0]), x.VecView(r.Atoms[1]),
			x.VecView(r.Atoms[2]), x.VecView(r.Atoms[3])) * vec.Rad2Deg
		center := (r.MinDeg + r.MaxDeg) / 2
		half := (r.MaxDeg - r.MinDeg) / 2
		dev := math.Abs(wrap180(d-center)) - half
		if dev > 0 {
			e += 0.5 * r.ForceConstant * dev * dev
		}
	}
	return e
}

//penaltyGradient differentiates the restraint penalty numerically,
//touching only the twelve coordinates each restraint involves.
func (C *context) penaltyGradient(x *vec.Matrix, g []float64) {
	if len(C.restraints) == 0 {
		return
	}
	const h = 1e-6
	touched := map[int]bool{}
	for _, r := range C.restraints {
		for _, a := range r.Atoms {
			touched[a] = true
		}
	}
	for a := range touched {
		for c := 0; c < 3; c++ {
			orig := x.At(a, c)
			x.Set(a, c, orig+h)
			ep := C.penalty(x)
			x.Set(a, c, orig-h)
			em := C.penalty(x)
			x.Set(a, c, orig)
			g[3*a+c] += (ep - em) / (2 * h)
		}
	}
}

//Minimize relaxes the positions by steepest descent with backtracking,
//on the potential plus the restraint penalties.
func (C *context) Minimize(maxIter int) (bool, error) {
	const gtol = 1e-4
	step := 1e-3
	x := C.coords
	e := C.energy(x) + C.penalty(x)
	for it := 0; it < maxIter; it++ {
		g := C.gradient(x)
		C.penaltyGradient(x, g)
		gmax := 0.0
		for _, v := range g {
			if math.Abs(v) > gmax {
				gmax = math.Abs(v)
			}
		}
		if gmax < gtol {
			return true, nil
		}
		moved := false
		for try := 0; try < 30; try++ {
			trial := x.Clone()
			for a := 0; a < trial.NVecs(); a++ {
				for c := 0; c < 3; c++ {
					trial.Set(a, c, x.At(a, c)-step*g[3*a+c])
				}
			}
			et := C.energy(trial) + C.penalty(trial)
			if et < e {
				x.Copy(trial.Dense)
				e = et
				step *= 1.2
				moved = true
				break
			}
			step /= 2
		}
		if !moved {
			//no descent direction at machine precision: as converged
			//as this minimizer gets
			return true, nil
		}
	}
	return false, nil
}

//Positions returns a copy of the current positions.
func (C *context) Positions() (*vec.Matrix, error) {
	return C.coords.Clone(), nil
}
