/*
 * refplot.go, part of uffref.
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

//Package refplot draws the torsional energy profile of a relaxed
//dihedral scan, mostly as a quick visual sanity check on the numbers
//that go into the reference document.
package refplot

import (
	"fmt"
	"image/color"

	"github.com/rmera/uffref/scan"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

//ScanProfile writes a PNG with the relative energy of each scan point
//against its target dihedral. Points flagged as having escaped their
//restraint are overdrawn in red.
func ScanProfile(r *scan.Result, title, plotname string) error {
	if r == nil || len(r.Points) == 0 {
		return fmt.Errorf("refplot: nothing to plot")
	}
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = 3 * vg.Millimeter
	p.X.Label.Text = "Dihedral (degrees)"
	p.Y.Label.Text = "Relative energy (kcal/mol)"
	p.X.Min = 0
	p.X.Max = 360
	p.Add(plotter.NewGrid())

	profile := make(plotter.XYs, len(r.Points))
	var drifted plotter.XYs
	for i, pt := range r.Points {
		profile[i].X = pt.TargetDeg
		profile[i].Y = pt.RelativeEnergy
		if !pt.RestraintOK {
			drifted = append(drifted, plotter.XY{X: pt.TargetDeg, Y: pt.RelativeEnergy})
		}
	}
	line, points, err := plotter.NewLinePoints(profile)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{B: 255, A: 255}
	points.GlyphStyle.Color = color.RGBA{B: 255, A: 255}
	p.Add(line, points)
	if len(drifted) > 0 {
		s, err := plotter.NewScatter(drifted)
		if err != nil {
			return err
		}
		s.GlyphStyle.Color = color.RGBA{R: 255, A: 255}
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
	}
	filename := fmt.Sprintf("%s.png", plotname)
	return p.Save(6*vg.Inch, 4*vg.Inch, filename)
}
