/*
 * vec.go, part of uffref.
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

//Package vec handles sets of vectors in 3D space, as needed for molecular
//conformations. It is a thin wrapper over gonum's mat.Dense where a "vector"
//is understood to be a row, i.e. the cartesian coordinates of one atom.
package vec

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

//Matrix is a set of row vectors in 3D space.
type Matrix struct {
	*mat.Dense
}

//NewMatrix creates a Matrix from a slice of float64 with the data
//in row-major order. The length of the slice must be divisible by 3.
func NewMatrix(data []float64) (*Matrix, error) {
	if len(data)%3 != 0 {
		return nil, fmt.Errorf("vec: input slice length (%d) not divisible by 3", len(data))
	}
	r := len(data) / 3
	return &Matrix{mat.NewDense(r, 3, data)}, nil
}

//Zeros returns a vecs x 3 matrix filled with zeros.
func Zeros(vecs int) *Matrix {
	return &Matrix{mat.NewDense(vecs, 3, make([]float64, vecs*3))}
}

//NVecs returns the number of row vectors in the matrix.
func (F *Matrix) NVecs() int {
	r, _ := F.Dims()
	return r
}

//VecView returns a view (not a copy) of the i-th row vector.
//Changes to the view affect the original matrix.
func (F *Matrix) VecView(i int) *Matrix {
	return &Matrix{F.Slice(i, i+1, 0, 3).(*mat.Dense)}
}

//Clone returns an independent copy of the matrix.
func (F *Matrix) Clone() *Matrix {
	r, _ := F.Dims()
	N := Zeros(r)
	N.Copy(F.Dense)
	return N
}

//SetVec replaces the i-th row vector with v. Panics if out of range,
//as misuse here is most likely a programming error.
func (F *Matrix) SetVec(i int, v *Matrix) {
	for j := 0; j < 3; j++ {
		F.Set(i, j, v.At(0, j))
	}
}

//Raw returns the contents of the matrix as a flat, row-major
//slice of float64, copied from the matrix.
func (F *Matrix) Raw() []float64 {
	r, _ := F.Dims()
	data := make([]float64, 0, r*3)
	for i := 0; i < r; i++ {
		data = append(data, F.At(i, 0), F.At(i, 1), F.At(i, 2))
	}
	return data
}

//Norm returns the Euclidean norm of the matrix, which for a
//single row vector is just its length.
func (F *Matrix) Norm() float64 {
	return mat.Norm(F.Dense, 2)
}

//Dist returns the distance between the row vectors a and b.
func Dist(a, b *Matrix) float64 {
	d := Zeros(1)
	d.Sub(a.Dense, b.Dense)
	return d.Norm()
}

//Cross returns the cross product of the row vectors a and b.
func Cross(a, b *Matrix) *Matrix {
	c := Zeros(1)
	c.Set(0, 0, a.At(0, 1)*b.At(0, 2)-a.At(0, 2)*b.At(0, 1))
	c.Set(0, 1, a.At(0, 2)*b.At(0, 0)-a.At(0, 0)*b.At(0, 2))
	c.Set(0, 2, a.At(0, 0)*b.At(0, 1)-a.At(0, 1)*b.At(0, 0))
	return c
}

//Dot returns the dot product of the row vectors a and b.
func Dot(a, b *Matrix) float64 {
	var d float64
	for j := 0; j < 3; j++ {
		d += a.At(0, j) * b.At(0, j)
	}
	return d
}

//Angle returns the angle (in radians) between the row vectors v1 and v2.
func Angle(v1, v2 *Matrix) float64 {
	normproduct := v1.Norm() * v2.Norm()
	if normproduct == 0 {
		panic("vec: Angle of a zero vector")
	}
	arg := Dot(v1, v2) / normproduct
	//floating point math can leave arg just out of the [-1,1] domain
	if arg > 1 {
		arg = 1
	} else if arg < -1 {
		arg = -1
	}
	return math.Acos(arg)
}

//AngleAround returns the angle (in radians) at the vertex center,
//between the row vectors a and b.
func AngleAround(a, center, b *Matrix) float64 {
	v1 := Zeros(1)
	v2 := Zeros(1)
	v1.Sub(a.Dense, center.Dense)
	v2.Sub(b.Dense, center.Dense)
	return Angle(v1, v2)
}

//Dihedral calculates the dihedral angle (in radians, in the range
//(-pi, pi]) between the points a, b, c, d, where the first plane
//is defined by abc and the second by bcd.
func Dihedral(a, b, c, d *Matrix) float64 {
	all := []*Matrix{a, b, c, d}
	for number, point := range all {
		if point == nil {
			panic(fmt.Sprintf("vec: Dihedral: vector %d is nil", number))
		}
		pr, pc := point.Dims()
		if pr != 1 || pc != 3 {
			panic(fmt.Sprintf("vec: Dihedral: vector %d has invalid shape", number))
		}
	}
	//bma=b minus a
	bma := Zeros(1)
	cmb := Zeros(1)
	dmc := Zeros(1)
	bmascaled := Zeros(1)
	bma.Sub(b.Dense, a.Dense)
	cmb.Sub(c.Dense, b.Dense)
	dmc.Sub(d.Dense, c.Dense)
	bmascaled.Scale(cmb.Norm(), bma.Dense)
	first := Dot(bmascaled, Cross(cmb, dmc))
	v1 := Cross(bma, cmb)
	v2 := Cross(cmb, dmc)
	second := Dot(v1, v2)
	return math.Atan2(first, second)
}

//RotateAbout rotates, in place, the row vectors of coords whose indexes are
//given in moving, by angle radians about the axis defined by the points
//axis1 and axis2, using the Euler-Rodrigues formula.
func RotateAbout(coords *Matrix, moving []int, axis1, axis2 *Matrix, angle float64) {
	axis := Zeros(1)
	axis.Sub(axis2.Dense, axis1.Dense)
	n := axis.Norm()
	if n == 0 {
		panic("vec: RotateAbout: axis of zero length")
	}
	axis.Scale(1/n, axis.Dense)
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	p := Zeros(1)
	for _, i := range moving {
		v := coords.VecView(i)
		p.Sub(v.Dense, axis1.Dense)
		//Rodrigues: p' = p cos + (k x p) sin + k (k.p)(1-cos)
		kxp := Cross(axis, p)
		kdp := Dot(axis, p)
		rot := Zeros(1)
		rot.Scale(cos, p.Dense)
		kxp.Scale(sin, kxp.Dense)
		rot.Add(rot.Dense, kxp.Dense)
		par := Zeros(1)
		par.Scale(kdp*(1-cos), axis.Dense)
		rot.Add(rot.Dense, par.Dense)
		rot.Add(rot.Dense, axis1.Dense)
		coords.SetVec(i, rot)
	}
}

//Deg2Rad and Rad2Deg are the conversion factors between degrees
//and radians.
const (
	Deg2Rad = math.Pi / 180.0
	Rad2Deg = 180.0 / math.Pi
)
