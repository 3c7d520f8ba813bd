// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pta

// pfgEdge is a directed pointer-flow edge.
type pfgEdge struct {
	source Pointer
	target Pointer
}

// PointerFlowGraph is the directed graph whose nodes are pointers and whose
// edges denote unconditional points-to flow. Edges, once added, are never
// removed.
type PointerFlowGraph struct {
	edges map[pfgEdge]bool
	succs map[Pointer][]Pointer
}

// NewPointerFlowGraph returns an empty pointer-flow graph.
func NewPointerFlowGraph() *PointerFlowGraph {
	return &PointerFlowGraph{
		edges: map[pfgEdge]bool{},
		succs: map[Pointer][]Pointer{},
	}
}

// AddEdge inserts the edge source → target, returning true on first insertion.
func (g *PointerFlowGraph) AddEdge(source, target Pointer) bool {
	e := pfgEdge{source: source, target: target}
	if g.edges[e] {
		return false
	}
	g.edges[e] = true
	g.succs[source] = append(g.succs[source], target)
	return true
}

// SuccsOf returns the pointers source flows to.
func (g *PointerFlowGraph) SuccsOf(source Pointer) []Pointer {
	return g.succs[source]
}

// NumEdges returns the number of distinct edges.
func (g *PointerFlowGraph) NumEdges() int {
	return len(g.edges)
}

// workEntry pairs a pointer with points-to information to be propagated into
// it.
type workEntry struct {
	pointer Pointer
	pts     *PointsToSet
}

// workList is the solver's FIFO queue of pending propagations.
type workList struct {
	entries []workEntry
}

func (w *workList) add(p Pointer, pts *PointsToSet) {
	w.entries = append(w.entries, workEntry{pointer: p, pts: pts})
}

func (w *workList) empty() bool {
	return len(w.entries) == 0
}

func (w *workList) poll() workEntry {
	e := w.entries[0]
	w.entries = w.entries[1:]
	return e
}
