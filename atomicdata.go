/*
 * atomicdata.go, part of uffref.
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

package uffref

//A map for assigning atomic numbers to element symbols.
//Note that just the elements appearing in the test set, plus a few
//common "bio-elements", are present.
var symbolZ = map[string]int{
	"H":  1,
	"C":  6,
	"N":  7,
	"O":  8,
	"F":  9,
	"Si": 14,
	"P":  15,
	"S":  16,
	"Cl": 17,
	"As": 33,
	"Br": 35,
	"Sb": 51,
	"I":  53,
	"Bi": 83,
}

//The inverse of symbolZ.
var zSymbol = map[int]string{}

func init() {
	for k, v := range symbolZ {
		zSymbol[v] = k
	}
}

//A map for assigning mass to elements.
var symbolMass = map[string]float64{
	"H":  1.0,
	"C":  12.01,
	"O":  16.00,
	"N":  14.01,
	"P":  30.97,
	"S":  32.06,
	"Cl": 35.45,
	"Si": 28.08,
	"F":  18.998,
	"Br": 79.904,
	"I":  126.90,
}

//A map for assigning covalent radii to elements
//Values from Cordero et al., 2008 (DOI:10.1039/B801115J)
var symbolCovrad = map[string]float64{
	"H":  0.31,
	"C":  0.76, //the sp3 radius
	"O":  0.66,
	"N":  0.71,
	"P":  1.07,
	"S":  1.05,
	"Cl": 1.02,
	"Si": 1.11,
	"F":  0.57,
	"Br": 1.2,
	"I":  1.39,
}

//A map for assigning van der Waals radii to elements
//Values from 10.1021/j100785a001 and 10.1021/jp8111556
var symbolVdwrad = map[string]float64{
	"H":  1.10,
	"C":  1.70, //the sp3 radius
	"O":  1.52,
	"N":  1.55,
	"P":  1.80,
	"S":  1.80,
	"Cl": 1.75,
	"Si": 2.10,
	"F":  1.47,
	"Br": 1.83,
	"I":  1.98,
}

//SymbolZ returns the atomic number for an element symbol, or 0 if
//the element is not known to the package.
func SymbolZ(symbol string) int {
	return symbolZ[symbol]
}

//ZSymbol returns the element symbol for an atomic number, or the
//empty string if the element is not known to the package.
func ZSymbol(z int) string {
	return zSymbol[z]
}

//Mass returns the atomic mass for an element symbol, or 0 if unknown.
func Mass(symbol string) float64 {
	return symbolMass[symbol]
}

//VdwRad returns the van der Waals radius for an element symbol,
//or 0 if unknown.
func VdwRad(symbol string) float64 {
	return symbolVdwrad[symbol]
}

//CovRad returns the covalent radius for an element symbol,
//or 0 if unknown.
func CovRad(symbol string) float64 {
	return symbolCovrad[symbol]
}
