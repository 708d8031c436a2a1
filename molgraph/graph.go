/*
 * graph.go, part of uffref.
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

//Package molgraph adapts the uffref molecule to the gonum graph
//interfaces, so graph algorithms (most importantly, shortest paths for
//the 1-4+ non-bonded pair rule) run directly on the bond graph.
package molgraph

import (
	"math"

	uffref "github.com/rmera/uffref"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/path"
)

//Atom wraps a molecule atom as a graph node. The node ID is simply the
//atom index, which is contiguous and 0-based by construction.
type Atom struct {
	*uffref.Atom
}

func (A *Atom) ID() int64 {
	return int64(A.Index)
}

//Bond wraps a molecule bond as a graph edge.
type Bond struct {
	*uffref.Bond
	at1, at2 *Atom
}

func (B *Bond) From() graph.Node {
	return B.at1
}

func (B *Bond) To() graph.Node {
	return B.at2
}

//bonds are not directional, so switching the ends in place is enough
func (B *Bond) ReversedEdge() graph.Edge {
	return &Bond{Bond: B.Bond, at1: B.at2, at2: B.at1}
}

//Topology is a molecule bond graph. It implements the gonum
//graph.Undirected interface and precomputes all-pairs shortest paths
//on construction.
type Topology struct {
	mol   *uffref.Molecule
	atoms []*Atom
	bonds []*Bond
	paths path.AllShortest
}

//New builds the bond graph of mol and resolves its shortest paths.
func New(mol *uffref.Molecule) *Topology {
	T := &Topology{mol: mol}
	T.atoms = make([]*Atom, mol.Len())
	for i := 0; i < mol.Len(); i++ {
		T.atoms[i] = &Atom{Atom: mol.Atom(i)}
	}
	for _, b := range mol.Bonds {
		T.bonds = append(T.bonds, &Bond{Bond: b, at1: T.atoms[b.A1], at2: T.atoms[b.A2]})
	}
	T.paths = path.DijkstraAllPaths(T)
	return T
}

//Node returns the node with the given ID, or nil.
func (T *Topology) Node(id int64) graph.Node {
	if id < 0 || id >= int64(len(T.atoms)) {
		return nil
	}
	return T.atoms[id]
}

//Nodes returns an iterator over all atoms.
func (T *Topology) Nodes() graph.Nodes {
	nodes := make([]graph.Node, len(T.atoms))
	for i, a := range T.atoms {
		nodes[i] = a
	}
	return iterator.NewOrderedNodes(nodes)
}

//From returns an iterator over the atoms bonded to the given one.
func (T *Topology) From(id int64) graph.Nodes {
	var nodes []graph.Node
	for _, b := range T.bonds {
		if b.at1.ID() == id {
			nodes = append(nodes, b.at2)
		} else if b.at2.ID() == id {
			nodes = append(nodes, b.at1)
		}
	}
	return iterator.NewOrderedNodes(nodes)
}

//HasEdgeBetween reports whether a bond joins the two atoms.
func (T *Topology) HasEdgeBetween(xid, yid int64) bool {
	return T.Edge(xid, yid) != nil
}

//Edge returns the bond between two atoms, or nil. The graph is
//always undirected.
func (T *Topology) Edge(uid, vid int64) graph.Edge {
	for _, b := range T.bonds {
		if (b.at1.ID() == uid && b.at2.ID() == vid) || (b.at1.ID() == vid && b.at2.ID() == uid) {
			return b
		}
	}
	return nil
}

//EdgeBetween is Edge; it completes the graph.Undirected interface.
func (T *Topology) EdgeBetween(xid, yid int64) graph.Edge {
	return T.Edge(xid, yid)
}

//Hops returns the number of bonds on the shortest path between atoms
//i and j, or -1 if they are not connected. Hops(i,i) is 0.
func (T *Topology) Hops(i, j int) int {
	if i == j {
		return 0
	}
	w := T.paths.Weight(int64(i), int64(j))
	if math.IsInf(w, 1) {
		return -1
	}
	return int(w + 0.5)
}
