/*
 * enginetest_test.go, part of uffref.
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
	"errors"
	"math"
	"testing"

	"github.com/rmera/uffref/engine"
	"github.com/rmera/uffref/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnknownDescriptor(t *testing.T) {
	O := New()
	_, err := O.ParseMolecule("nope", "C1=CC=CO1", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrParse))
}

func TestEmbedStrategyFailure(t *testing.T) {
	O := New()
	O.FailStrategies = map[engine.EmbedStrategy]bool{engine.EmbedETKDGv3: true}
	mol, err := O.ParseMolecule("ethane", "CC", "")
	require.NoError(t, err)
	err = O.Embed(mol, 42, engine.EmbedETKDGv3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrEmbed))
	require.NoError(t, O.Embed(mol, 42, engine.EmbedBasic))
	require.NotNil(t, mol.Coords)
	assert.Equal(t, mol.Len(), mol.Coords.NVecs())
}

func TestSetDihedral(t *testing.T) {
	O := New()
	mol, err := O.ParseMolecule("butane", "CCCC", "")
	require.NoError(t, err)
	require.NoError(t, O.Embed(mol, 42, engine.EmbedETKDGv3))
	for _, target := range []float64{0, 60, 120, 180, 300} {
		coords := mol.Coords.Clone()
		require.NoError(t, O.SetDihedral(mol, coords, 0, 1, 2, 3, target))
		got := vec.Dihedral(coords.VecView(0), coords.VecView(1),
			coords.VecView(2), coords.VecView(3)) * vec.Rad2Deg
		if got < 0 {
			got += 360
		}
		diff := math.Abs(got - target)
		if diff > 180 {
			diff = 360 - diff
		}
		assert.InDelta(t, 0, diff, 1e-3, "target %v, got %v", target, got)
	}
	//the bond lengths must survive the rotation
	d01 := vec.Dist(mol.Coords.VecView(0), mol.Coords.VecView(1))
	coords := mol.Coords.Clone()
	require.NoError(t, O.SetDihedral(mol, coords, 0, 1, 2, 3, 90))
	assert.InDelta(t, d01, vec.Dist(coords.VecView(0), coords.VecView(1)), 1e-9)
}

func TestContextIndependence(t *testing.T) {
	O := New()
	mol, err := O.ParseMolecule("ethane", "CC", "")
	require.NoError(t, err)
	require.NoError(t, O.Embed(mol, 42, engine.EmbedETKDGv3))

	before := mol.Coords.Clone()
	ctx, err := O.NewContext(mol, mol.Coords, nil)
	require.NoError(t, err)
	_, err = ctx.Minimize(200)
	require.NoError(t, err)
	//the context minimized its own snapshot; the molecule is untouched
	assert.Equal(t, before.Raw(), mol.Coords.Raw())

	//a second context built from the same coordinates starts at the
	//unminimized energy
	ctx2, err := O.NewContext(mol, mol.Coords, nil)
	require.NoError(t, err)
	e2, err := ctx2.Energy()
	require.NoError(t, err)
	e1, err := ctx.Energy()
	require.NoError(t, err)
	assert.LessOrEqual(t, e1, e2)
}

func TestDisableVdwDropsRepulsion(t *testing.T) {
	O := New()
	mol, err := O.ParseMolecule("butane", "CCCC", "")
	require.NoError(t, err)
	require.NoError(t, O.Embed(mol, 42, engine.EmbedETKDGv3))

	full, err := O.NewContext(mol, mol.Coords, nil)
	require.NoError(t, err)
	bonded, err := O.NewContext(mol, mol.Coords, &engine.Options{DisableVdw: true})
	require.NoError(t, err)
	ef, err := full.Energy()
	require.NoError(t, err)
	eb, err := bonded.Energy()
	require.NoError(t, err)
	//the non-bonded wall is purely repulsive
	assert.Greater(t, ef, eb)
}

func TestMinimizeHonorsRestraint(t *testing.T) {
	O := New()
	mol, err := O.ParseMolecule("butane", "CCCC", "")
	require.NoError(t, err)
	require.NoError(t, O.Embed(mol, 42, engine.EmbedETKDGv3))

	coords := mol.Coords.Clone()
	require.NoError(t, O.SetDihedral(mol, coords, 0, 1, 2, 3, 90))
	ctx, err := O.NewContext(mol, coords, nil)
	require.NoError(t, err)
	require.NoError(t, ctx.AddTorsionRestraint(&engine.TorsionRestraint{
		Atoms: [4]int{0, 1, 2, 3}, MinDeg: 89.9, MaxDeg: 90.1, ForceConstant: 1e6,
	}))
	_, err = ctx.Minimize(500)
	require.NoError(t, err)
	relaxed, err := ctx.Positions()
	require.NoError(t, err)
	got := vec.Dihedral(relaxed.VecView(0), relaxed.VecView(1),
		relaxed.VecView(2), relaxed.VecView(3)) * vec.Rad2Deg
	assert.InDelta(t, 90, got, 1.0, "restrained dihedral drifted to %v", got)
}

func TestGradientMatchesFiniteDifferences(t *testing.T) {
	O := New()
	mol, err := O.ParseMolecule("C=C", "C=C", "")
	require.NoError(t, err)
	require.NoError(t, O.Embed(mol, 42, engine.EmbedETKDGv3))
	ctx, err := O.NewContext(mol, mol.Coords, nil)
	require.NoError(t, err)
	g, err := ctx.Gradient()
	require.NoError(t, err)
	require.Len(t, g, mol.Len()*3)

	const h = 1e-6
	for i := 0; i < mol.Len(); i++ {
		for c := 0; c < 3; c++ {
			displaced := func(delta float64) float64 {
				d := mol.Coords.Clone()
				d.Set(i, c, d.At(i, c)+delta)
				dctx, err := O.NewContext(mol, d, nil)
				require.NoError(t, err)
				e, err := dctx.Energy()
				require.NoError(t, err)
				return e
			}
			num := (displaced(h) - displaced(-h)) / (2 * h)
			assert.InDelta(t, num, g[3*i+c], 1e-4, "component (%d,%d)", i, c)
		}
	}
}
