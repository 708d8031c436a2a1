/*
 * main.go, part of uffref.
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

//uffref generates UFF force-field reference data: per-molecule atom
//types, interaction terms and parameters, energies, gradients with a
//numerical cross-check, minimized geometries, and a relaxed butane
//dihedral scan, all written to one JSON document.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rmera/uffref/engine/rdkit"
	"github.com/rmera/uffref/gen"
	"github.com/rmera/uffref/refjson"
	"github.com/rmera/uffref/refplot"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	root := &cobra.Command{
		Use:   "uffref",
		Short: "generate UFF reference data for validating independent implementations",
		Long: "uffref drives an external UFF engine (RDKit, through a Python helper)\n" +
			"over a fixed set of small molecules and writes a reference JSON document\n" +
			"with atom types, per-interaction parameters, energies, verified gradients\n" +
			"and a relaxed butane dihedral scan.",
		SilenceUsage: true,
		RunE:         run,
	}
	flags := root.Flags()
	flags.StringP("out", "o", "uff_reference.json", "output file; a .zst suffix compresses it")
	flags.String("python", rdkit.DefaultPython, "python interpreter for the RDKit helper")
	flags.String("helper", rdkit.DefaultHelper, "path to the RDKit helper script")
	flags.Int64("seed", 42, "random seed for conformation embedding")
	flags.String("plot", "", "basename for a PNG of the dihedral scan profile (empty: no plot)")
	flags.Bool("verbose", false, "log at debug level, in console format")
	viper.SetEnvPrefix("uffref")
	viper.AutomaticEnv()
	if err := viper.BindPFlags(flags); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log, err := buildLogger(viper.GetBool("verbose"))
	if err != nil {
		return err
	}
	defer log.Sync()

	drv, err := rdkit.New(viper.GetString("python"), viper.GetString("helper"))
	if err != nil {
		return err
	}
	defer drv.Close()
	log.Info("engine ready", zap.String("engine", drv.Name()))

	opt := gen.DefaultOptions()
	opt.Seed = viper.GetInt64("seed")
	res, err := gen.Run(drv, drv, gen.DefaultMolecules(), opt, log)
	if err != nil {
		log.Error("run failed", zap.Error(err))
		return err
	}

	out := viper.GetString("out")
	if err = res.Document.WriteFile(out); err != nil {
		return err
	}
	log.Info("reference data written", zap.String("path", out),
		zap.Int("molecules", len(res.Document.Molecules)))

	if plotname := viper.GetString("plot"); plotname != "" {
		if res.Document.ButaneDihedralScan == nil {
			log.Warn("no scan to plot")
		} else if err := plotScan(res.Document.ButaneDihedralScan, plotname); err != nil {
			log.Warn("could not plot the scan", zap.Error(err))
		}
	}
	printSummary(res.Summaries)
	return nil
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

//printSummary writes the final per-molecule table to stdout, which is
//kept clean of logging for that purpose.
func printSummary(summaries []*gen.Summary) {
	fmt.Printf("\n  %-15s %5s %5s %12s %12s %10s %6s\n",
		"Molecule", "Atoms", "Bonds", "E_input", "E_min", "Converged", "Grads")
	fmt.Printf("  %s %s %s %s %s %s %s\n",
		strings.Repeat("-", 15), strings.Repeat("-", 5), strings.Repeat("-", 5),
		strings.Repeat("-", 12), strings.Repeat("-", 12), strings.Repeat("-", 10),
		strings.Repeat("-", 6))
	for _, s := range summaries {
		conv, grads := "yes", "ok"
		if !s.Converged {
			conv = "NO"
		}
		if !s.GradientsOK {
			grads = "FAIL"
		}
		fmt.Printf("  %-15s %5d %5d %12.4f %12.4f %10s %6s\n",
			s.Name, s.Atoms, s.Bonds, s.InputEnergy, s.MinEnergy, conv, grads)
	}
}

//plotScan rebuilds the minimal scan result the plotter needs from the
//already-serialized document, so plotting stays decoupled from the
//generation pass.
func plotScan(doc *refjson.DihedralScanDoc, plotname string) error {
	r := refjson.ScanResult(doc)
	return refplot.ScanProfile(r, "Butane C-C-C-C torsional profile", plotname)
}
