/*
 * energy_test.go, part of uffref.
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

package energy

import (
	"math"
	"testing"

	uffref "github.com/rmera/uffref"
	"github.com/rmera/uffref/engine"
	"github.com/rmera/uffref/engine/enginetest"
	"github.com/rmera/uffref/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embedded(t *testing.T, descriptor string) (*enginetest.Oracle, *uffref.Molecule) {
	t.Helper()
	O := enginetest.New()
	mol, err := O.ParseMolecule(descriptor, descriptor, "")
	require.NoError(t, err)
	require.NoError(t, O.Embed(mol, 42, engine.EmbedETKDGv3))
	return O, mol
}

func TestBreakdownInvariant(t *testing.T) {
	O, mol := embedded(t, "CCCC")
	b, err := Evaluate(O, mol, mol.Coords)
	require.NoError(t, err)
	//vdw is defined as the signed difference, so the sum closes exactly
	assert.LessOrEqual(t, math.Abs(b.Total-(b.Bonded+b.Vdw)), 1e-6)
	//the toy non-bonded wall is repulsive, so the vdw part is positive
	assert.Greater(t, b.Vdw, 0.0)
}

func TestBreakdownNoVdwPairs(t *testing.T) {
	//ethane has no pair 4 or more bonds apart
	O, mol := embedded(t, "CC")
	b, err := Evaluate(O, mol, mol.Coords)
	require.NoError(t, err)
	assert.InDelta(t, 0, b.Vdw, 1e-12)
	assert.InDelta(t, b.Total, b.Bonded, 1e-12)
}

func TestGradientLength(t *testing.T) {
	O, mol := embedded(t, "C")
	g, err := Gradient(O, mol, mol.Coords)
	require.NoError(t, err)
	assert.Len(t, g, mol.Len()*3)
}

func TestVerifyGradientsPasses(t *testing.T) {
	for _, descriptor := range []string{"C", "CC", "C=C", "CCCC", "N"} {
		O, mol := embedded(t, descriptor)
		v, err := VerifyGradients(O, mol, mol.Coords)
		require.NoError(t, err, descriptor)
		assert.True(t, v.Passed, "%s: max rel error %v", descriptor, v.MaxRelError)
		assert.Empty(t, v.Failures, descriptor)
		assert.Equal(t, DefaultStep, v.Step)
		assert.Equal(t, DefaultTolerance, v.Tolerance)
	}
}

//brokenGradient wraps the oracle but corrupts one gradient component,
//which the numerical cross-check must catch and attribute.
type brokenGradient struct {
	*enginetest.Oracle
}

func (B *brokenGradient) NewContext(mol *uffref.Molecule, coords *vec.Matrix, opt *engine.Options) (engine.Context, error) {
	ctx, err := B.Oracle.NewContext(mol, coords, opt)
	if err != nil {
		return nil, err
	}
	return &brokenContext{ctx}, nil
}

type brokenContext struct {
	engine.Context
}

func (B *brokenContext) Gradient() ([]float64, error) {
	g, err := B.Context.Gradient()
	if err != nil {
		return nil, err
	}
	g[0] += 10 //corrupt the x component of atom 0
	return g, nil
}

func TestVerifyGradientsCatchesCorruption(t *testing.T) {
	O, mol := embedded(t, "CC")
	B := &brokenGradient{O}
	v, err := VerifyGradients(B, mol, mol.Coords)
	require.NoError(t, err)
	assert.False(t, v.Passed)
	require.NotEmpty(t, v.Failures)
	assert.LessOrEqual(t, len(v.Failures), 3)
	worst := v.Failures[0]
	assert.Equal(t, 0, worst.Atom)
	assert.Equal(t, 0, worst.Coord)
	assert.Greater(t, v.MaxRelError, DefaultTolerance)
}

func TestRelError(t *testing.T) {
	assert.Equal(t, 0.0, relError(0, 0))
	assert.Equal(t, 0.0, relError(1e-9, 0))
	//normalized by the analytical magnitude when it is meaningful
	assert.InDelta(t, 0.1, relError(1.0, 1.1), 1e-12)
	//otherwise by the numerical one
	assert.InDelta(t, 1.0, relError(0, 2.0), 1e-12)
}

func TestRecordFailureBounded(t *testing.T) {
	V := &Verification{}
	for _, re := range []float64{0.3, 0.9, 0.1, 0.7, 0.5} {
		recordFailure(V, Failure{RelError: re})
	}
	require.Len(t, V.Failures, 3)
	assert.Equal(t, 0.9, V.Failures[0].RelError)
	assert.Equal(t, 0.7, V.Failures[1].RelError)
	assert.Equal(t, 0.5, V.Failures[2].RelError)
}
