/*
 * vec_test.go, part of uffref.
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

package vec

import (
	"math"
	"testing"
)

func row(x, y, z float64) *Matrix {
	m, err := NewMatrix([]float64{x, y, z})
	if err != nil {
		panic(err)
	}
	return m
}

func TestNewMatrixBadLength(Te *testing.T) {
	if _, err := NewMatrix([]float64{1, 2, 3, 4}); err == nil {
		Te.Error("NewMatrix accepted a slice of length 4")
	}
}

func TestDistAndNorm(Te *testing.T) {
	d := Dist(row(0, 0, 0), row(3, 4, 0))
	if math.Abs(d-5) > 1e-12 {
		Te.Errorf("Dist = %v, want 5", d)
	}
	if n := row(1, 2, 2).Norm(); math.Abs(n-3) > 1e-12 {
		Te.Errorf("Norm = %v, want 3", n)
	}
}

func TestAngleAround(Te *testing.T) {
	a := AngleAround(row(1, 0, 0), row(0, 0, 0), row(0, 1, 0))
	if math.Abs(a-math.Pi/2) > 1e-12 {
		Te.Errorf("right angle measured as %v rad", a)
	}
}

func TestCross(Te *testing.T) {
	c := Cross(row(1, 0, 0), row(0, 1, 0))
	if c.At(0, 0) != 0 || c.At(0, 1) != 0 || c.At(0, 2) != 1 {
		Te.Errorf("x cross y = %v, want z", c.Raw())
	}
}

//Four points of a planar zig-zag: dihedral 180. Lifting the last point
//out of the plane by a right angle gives +-90.
func TestDihedral(Te *testing.T) {
	a := row(0, 1, 0)
	b := row(0, 0, 0)
	c := row(1, 0, 0)
	dTrans := row(1, -1, 0)
	dPerp := row(1, 0, 1)
	if got := Dihedral(a, b, c, dTrans) * Rad2Deg; math.Abs(math.Abs(got)-180) > 1e-9 {
		Te.Errorf("planar trans dihedral = %v deg, want 180", got)
	}
	if got := Dihedral(a, b, c, dPerp) * Rad2Deg; math.Abs(math.Abs(got)-90) > 1e-9 {
		Te.Errorf("perpendicular dihedral = %v deg, want +-90", got)
	}
	dCis := row(1, 1, 0)
	if got := Dihedral(a, b, c, dCis) * Rad2Deg; math.Abs(got) > 1e-9 {
		Te.Errorf("planar cis dihedral = %v deg, want 0", got)
	}
}

func TestRotateAbout(Te *testing.T) {
	coords, err := NewMatrix([]float64{
		0, 0, 0,
		1, 0, 0,
		1, 1, 0,
	})
	if err != nil {
		Te.Fatal(err)
	}
	//rotate point 2 half a turn about the x axis (through points 0 and 1)
	RotateAbout(coords, []int{2}, coords.VecView(0).Clone(), coords.VecView(1).Clone(), math.Pi)
	if math.Abs(coords.At(2, 1)+1) > 1e-9 || math.Abs(coords.At(2, 2)) > 1e-9 {
		Te.Errorf("rotated point at (%v, %v, %v), want (1, -1, 0)",
			coords.At(2, 0), coords.At(2, 1), coords.At(2, 2))
	}
	//points on the axis must not move
	if coords.At(1, 0) != 1 || coords.At(1, 1) != 0 {
		Te.Errorf("axis point moved to (%v, %v, %v)", coords.At(1, 0), coords.At(1, 1), coords.At(1, 2))
	}
}

func TestVecViewIsAView(Te *testing.T) {
	coords, _ := NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	v := coords.VecView(1)
	v.Set(0, 0, 40)
	if coords.At(1, 0) != 40 {
		Te.Error("writing through a VecView did not reach the original matrix")
	}
	clone := coords.Clone()
	clone.Set(0, 0, 99)
	if coords.At(0, 0) == 99 {
		Te.Error("Clone shares storage with the original")
	}
}
