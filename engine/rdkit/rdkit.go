/*
 * rdkit.go, part of uffref.
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
//In order to use this driver you need a Python installation with the
//rdkit package, which is started as a helper subprocess. Please cite
//the RDKit references if you use it.

package rdkit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	uffref "github.com/rmera/uffref"
	"github.com/rmera/uffref/engine"
	"github.com/rmera/uffref/vec"
)

//The default helper invocation. The helper script speaks a
//newline-delimited JSON protocol on stdin/stdout: one request object
//per line in, one response object per line out.
const (
	DefaultPython = "python3"
	DefaultHelper = "scripts/uffref_rdkit_helper.py"
)

//Driver talks to a persistent RDKit helper subprocess. It implements
//both engine.Toolkit and engine.Engine. All requests are serialized
//through a mutex; contexts stay independent because every context
//keeps its own coordinates and the helper holds no per-context state.
type Driver struct {
	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  *bufio.Reader
	ids     map[*uffref.Molecule]int
	version string
}

type request struct {
	Op         string      `json:"op"`
	Name       string      `json:"name,omitempty"`
	Descriptor string      `json:"descriptor,omitempty"`
	ID         int         `json:"id,omitempty"`
	Seed       int64       `json:"seed,omitempty"`
	Strategy   string      `json:"strategy,omitempty"`
	Atoms      []int       `json:"atoms,omitempty"`
	Coords     []float64   `json:"coords,omitempty"`
	Deg        float64     `json:"deg,omitempty"`
	DisableVdw bool        `json:"disable_vdw,omitempty"`
	MaxIter    int         `json:"max_iter,omitempty"`
	Restraints []restraint `json:"restraints,omitempty"`
}

type restraint struct {
	Atoms  [4]int  `json:"atoms"`
	MinDeg float64 `json:"min_deg"`
	MaxDeg float64 `json:"max_deg"`
	ForceK float64 `json:"force_k"`
}

type response struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	//data fields, filled depending on the op
	Version   string      `json:"version,omitempty"`
	ID        int         `json:"id,omitempty"`
	Atoms     []atomInfo  `json:"atoms,omitempty"`
	Bonds     []bondInfo  `json:"bonds,omitempty"`
	Coords    []float64   `json:"coords,omitempty"`
	Has       bool        `json:"has,omitempty"`
	Params    [2]float64  `json:"params,omitempty"`
	Barrier   float64     `json:"barrier,omitempty"`
	Available bool        `json:"available,omitempty"`
	Energy    float64     `json:"energy,omitempty"`
	Gradient  []float64   `json:"gradient,omitempty"`
	Converged bool        `json:"converged,omitempty"`
}

type atomInfo struct {
	Index    int    `json:"index"`
	Z        int    `json:"z"`
	Symbol   string `json:"symbol"`
	Hyb      string `json:"hyb"`
	Aromatic bool   `json:"aromatic"`
}

type bondInfo struct {
	A1    int     `json:"a1"`
	A2    int     `json:"a2"`
	Order float64 `json:"order"`
}

//New starts the helper subprocess and performs the version handshake.
//An empty python or helper falls back to the defaults, and the
//UFFREF_HELPER environment variable overrides the helper path.
func New(python, helper string) (*Driver, error) {
	if python == "" {
		python = DefaultPython
	}
	if helper == "" {
		helper = DefaultHelper
	}
	if env := os.Getenv("UFFREF_HELPER"); env != "" {
		helper = env
	}
	D := &Driver{ids: make(map[*uffref.Molecule]int)}
	D.cmd = exec.Command(python, helper)
	D.cmd.Stderr = os.Stderr
	var err error
	if D.stdin, err = D.cmd.StdinPipe(); err != nil {
		return nil, &engine.Error{Op: "start helper", Engine: "rdkit", Err: err}
	}
	out, err := D.cmd.StdoutPipe()
	if err != nil {
		return nil, &engine.Error{Op: "start helper", Engine: "rdkit", Err: err}
	}
	D.stdout = bufio.NewReader(out)
	if err = D.cmd.Start(); err != nil {
		return nil, &engine.Error{Op: "start helper", Engine: "rdkit", Err: err}
	}
	var resp response
	if err = D.call(&request{Op: "hello"}, &resp); err != nil {
		return nil, err
	}
	D.version = resp.Version
	return D, nil
}

//Close shuts the helper down.
func (D *Driver) Close() error {
	D.mu.Lock()
	defer D.mu.Unlock()
	D.stdin.Close()
	return D.cmd.Wait()
}

//Name identifies the engine, including the RDKit version obtained in
//the handshake.
func (D *Driver) Name() string {
	return fmt.Sprintf("RDKit %s", D.version)
}

func (D *Driver) call(req *request, resp *response) error {
	D.mu.Lock()
	defer D.mu.Unlock()
	line, err := json.Marshal(req)
	if err != nil {
		return &engine.Error{Op: req.Op, Engine: "rdkit", Err: err}
	}
	line = append(line, '\n')
	if _, err = D.stdin.Write(line); err != nil {
		return &engine.Error{Op: req.Op, Engine: "rdkit", Err: err}
	}
	raw, err := D.stdout.ReadBytes('\n')
	if err != nil {
		return &engine.Error{Op: req.Op, Engine: "rdkit", Err: err}
	}
	if err = json.Unmarshal(raw, resp); err != nil {
		return &engine.Error{Op: req.Op, Engine: "rdkit", Err: err}
	}
	if !resp.OK {
		return &engine.Error{Op: req.Op, Engine: "rdkit", Err: fmt.Errorf("%s", resp.Error)}
	}
	return nil
}

func (D *Driver) molID(mol *uffref.Molecule) (int, error) {
	id, ok := D.ids[mol]
	if !ok {
		return 0, &engine.Error{Op: "lookup", Engine: "rdkit", Molecule: mol.Name,
			Err: fmt.Errorf("molecule was not parsed by this driver")}
	}
	return id, nil
}

//Toolkit implementation

//ParseMolecule parses a SMILES descriptor, adds implicit hydrogens and
//returns the molecule without coordinates.
func (D *Driver) ParseMolecule(name, descriptor, notes string) (*uffref.Molecule, error) {
	var resp response
	if err := D.call(&request{Op: "parse", Name: name, Descriptor: descriptor}, &resp); err != nil {
		return nil, &engine.Error{Op: "parse", Engine: "rdkit", Molecule: name, Err: engine.ErrParse}
	}
	mol := &uffref.Molecule{Name: name, Descriptor: descriptor, Notes: notes}
	for _, a := range resp.Atoms {
		mol.Atoms = append(mol.Atoms, &uffref.Atom{
			Index:         a.Index,
			AtomicNumber:  a.Z,
			Symbol:        a.Symbol,
			Hybridization: hybFromString(a.Hyb),
			Aromatic:      a.Aromatic,
		})
	}
	for _, b := range resp.Bonds {
		if err := mol.AddBond(b.A1, b.A2, b.Order); err != nil {
			return nil, err
		}
	}
	D.mu.Lock()
	D.ids[mol] = resp.ID
	D.mu.Unlock()
	return mol, nil
}

func hybFromString(s string) uffref.Hybridization {
	switch s {
	case "sp":
		return uffref.SP
	case "sp2":
		return uffref.SP2
	case "sp3":
		return uffref.SP3
	}
	return uffref.HybOther
}

//Embed generates a 3D conformation with the given strategy and seed.
func (D *Driver) Embed(mol *uffref.Molecule, seed int64, strategy engine.EmbedStrategy) error {
	id, err := D.molID(mol)
	if err != nil {
		return err
	}
	var resp response
	if err = D.call(&request{Op: "embed", ID: id, Seed: seed, Strategy: string(strategy)}, &resp); err != nil {
		return &engine.Error{Op: "embed", Engine: "rdkit", Molecule: mol.Name, Err: engine.ErrEmbed}
	}
	coords, err := vec.NewMatrix(resp.Coords)
	if err != nil {
		return err
	}
	mol.Coords = coords
	return nil
}

//SetDihedral delegates the dihedral assignment to the toolkit, which
//moves only the atoms on the far side of the central bond.
func (D *Driver) SetDihedral(mol *uffref.Molecule, coords *vec.Matrix, a1, a2, a3, a4 int, deg float64) error {
	id, err := D.molID(mol)
	if err != nil {
		return err
	}
	var resp response
	req := &request{Op: "set_dihedral", ID: id, Atoms: []int{a1, a2, a3, a4}, Coords: coords.Raw(), Deg: deg}
	if err = D.call(req, &resp); err != nil {
		return err
	}
	newc, err := vec.NewMatrix(resp.Coords)
	if err != nil {
		return err
	}
	coords.Copy(newc.Dense)
	return nil
}

//Engine implementation

//HasAllParams asks RDKit whether UFF covers every atom of the molecule.
func (D *Driver) HasAllParams(mol *uffref.Molecule) bool {
	id, err := D.molID(mol)
	if err != nil {
		return false
	}
	var resp response
	if err := D.call(&request{Op: "has_params", ID: id}, &resp); err != nil {
		return false
	}
	return resp.Has
}

//BondParams returns the UFF bond-stretch force constant and
//equilibrium length.
func (D *Driver) BondParams(mol *uffref.Molecule, i, j int) (float64, float64, error) {
	id, err := D.molID(mol)
	if err != nil {
		return 0, 0, err
	}
	var resp response
	if err := D.call(&request{Op: "bond_params", ID: id, Atoms: []int{i, j}}, &resp); err != nil {
		return 0, 0, err
	}
	return resp.Params[0], resp.Params[1], nil
}

//AngleParams returns the UFF angle-bend force constant and equilibrium
//angle in degrees.
func (D *Driver) AngleParams(mol *uffref.Molecule, i, center, j int) (float64, float64, error) {
	id, err := D.molID(mol)
	if err != nil {
		return 0, 0, err
	}
	var resp response
	if err := D.call(&request{Op: "angle_params", ID: id, Atoms: []int{i, center, j}}, &resp); err != nil {
		return 0, 0, err
	}
	return resp.Params[0], resp.Params[1], nil
}

//TorsionParams returns the UFF torsion barrier.
func (D *Driver) TorsionParams(mol *uffref.Molecule, a1, a2, a3, a4 int) (float64, error) {
	id, err := D.molID(mol)
	if err != nil {
		return 0, err
	}
	var resp response
	if err := D.call(&request{Op: "torsion_params", ID: id, Atoms: []int{a1, a2, a3, a4}}, &resp); err != nil {
		return 0, err
	}
	return resp.Barrier, nil
}

//InversionParams returns ErrNotAvailable when the RDKit bindings give
//no out-of-plane constant, which makes the enumeration fall back to
//the rule table.
func (D *Driver) InversionParams(mol *uffref.Molecule, center, i, j, k int) (float64, error) {
	id, err := D.molID(mol)
	if err != nil {
		return 0, err
	}
	var resp response
	if err := D.call(&request{Op: "inversion_params", ID: id, Atoms: []int{center, i, j, k}}, &resp); err != nil {
		return 0, err
	}
	if !resp.Available {
		return 0, engine.ErrNotAvailable
	}
	return resp.Barrier, nil
}

//VdwParams returns the UFF contact distance and well depth for a
//non-bonded pair.
func (D *Driver) VdwParams(mol *uffref.Molecule, i, j int) (float64, float64, error) {
	id, err := D.molID(mol)
	if err != nil {
		return 0, 0, err
	}
	var resp response
	if err := D.call(&request{Op: "vdw_params", ID: id, Atoms: []int{i, j}}, &resp); err != nil {
		return 0, 0, err
	}
	return resp.Params[0], resp.Params[1], nil
}

//NewContext builds an independent evaluation context over a snapshot of
//coords.
func (D *Driver) NewContext(mol *uffref.Molecule, coords *vec.Matrix, opt *engine.Options) (engine.Context, error) {
	id, err := D.molID(mol)
	if err != nil {
		return nil, err
	}
	if coords == nil {
		return nil, &engine.Error{Op: "new context", Engine: "rdkit", Molecule: mol.Name,
			Err: fmt.Errorf("nil coordinates")}
	}
	C := &context{d: D, id: id, mol: mol, coords: coords.Clone()}
	if opt != nil {
		C.disableVdw = opt.DisableVdw
	}
	return C, nil
}

//context is one independent evaluation context. The helper holds no
//per-context state: every request carries the context's own
//coordinates, so two contexts can never contaminate each other.
type context struct {
	d          *Driver
	id         int
	mol        *uffref.Molecule
	coords     *vec.Matrix
	disableVdw bool
	restraints []restraint
}

//Energy returns the UFF energy at the context's current positions.
func (C *context) Energy() (float64, error) {
	var resp response
	req := &request{Op: "energy", ID: C.id, Coords: C.coords.Raw(), DisableVdw: C.disableVdw}
	if err := C.d.call(req, &resp); err != nil {
		return 0, &engine.Error{Op: "energy", Engine: "rdkit", Molecule: C.mol.Name, Err: engine.ErrNoEnergy}
	}
	return resp.Energy, nil
}

//Gradient returns the analytical gradient at the current positions.
func (C *context) Gradient() ([]float64, error) {
	var resp response
	req := &request{Op: "gradient", ID: C.id, Coords: C.coords.Raw(), DisableVdw: C.disableVdw}
	if err := C.d.call(req, &resp); err != nil {
		return nil, err
	}
	return resp.Gradient, nil
}

//AddTorsionRestraint registers a restraint for the next Minimize call.
func (C *context) AddTorsionRestraint(r *engine.TorsionRestraint) error {
	C.restraints = append(C.restraints, restraint{
		Atoms:  r.Atoms,
		MinDeg: r.MinDeg,
		MaxDeg: r.MaxDeg,
		ForceK: r.ForceConstant,
	})
	return nil
}

//Minimize relaxes the context's positions in place.
func (C *context) Minimize(maxIter int) (bool, error) {
	var resp response
	req := &request{
		Op:         "minimize",
		ID:         C.id,
		Coords:     C.coords.Raw(),
		MaxIter:    maxIter,
		DisableVdw: C.disableVdw,
		Restraints: C.restraints,
	}
	if err := C.d.call(req, &resp); err != nil {
		return false, err
	}
	newc, err := vec.NewMatrix(resp.Coords)
	if err != nil {
		return false, err
	}
	C.coords = newc
	return resp.Converged, nil
}

//Positions returns a copy of the context's current positions.
func (C *context) Positions() (*vec.Matrix, error) {
	return C.coords.Clone(), nil
}
