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

// Package callgraph defines the call graph over IR methods and its
// class-hierarchy-based builder. The pointer analysis builds its own
// context-sensitive call graph and collapses it into this representation.
package callgraph

import (
	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

// Edge is one call edge, labeled by the invocation kind of its call site.
type Edge struct {
	Kind     ir.InvokeKind
	CallSite *ir.Invoke
	Callee   *ir.Method
}

// Graph is a directed multigraph from call sites to methods. Duplicate edges
// are coalesced; nodes and edges only grow.
type Graph struct {
	entries []*ir.Method

	reachable map[*ir.Method]bool
	// methods in insertion order, for deterministic iteration
	methods []*ir.Method

	edges     map[Edge]bool
	calleesOf map[*ir.Invoke][]*ir.Method
	callersOf map[*ir.Method][]Edge
}

// New returns an empty call graph.
func New() *Graph {
	return &Graph{
		reachable: map[*ir.Method]bool{},
		edges:     map[Edge]bool{},
		calleesOf: map[*ir.Invoke][]*ir.Method{},
		callersOf: map[*ir.Method][]Edge{},
	}
}

// AddEntry marks a method as an entry point and as reachable.
func (g *Graph) AddEntry(m *ir.Method) {
	g.entries = append(g.entries, m)
	g.AddReachableMethod(m)
}

// Entries returns the entry methods.
func (g *Graph) Entries() []*ir.Method {
	return g.entries
}

// AddReachableMethod marks m reachable, returning true on first insertion.
func (g *Graph) AddReachableMethod(m *ir.Method) bool {
	if g.reachable[m] {
		return false
	}
	g.reachable[m] = true
	g.methods = append(g.methods, m)
	return true
}

// Contains reports whether m is reachable.
func (g *Graph) Contains(m *ir.Method) bool {
	return g.reachable[m]
}

// ReachableMethods returns the reachable methods in insertion order.
func (g *Graph) ReachableMethods() []*ir.Method {
	return g.methods
}

// AddEdge inserts a call edge, returning true on first insertion.
func (g *Graph) AddEdge(e Edge) bool {
	if g.edges[e] {
		return false
	}
	g.edges[e] = true
	g.calleesOf[e.CallSite] = append(g.calleesOf[e.CallSite], e.Callee)
	g.callersOf[e.Callee] = append(g.callersOf[e.Callee], e)
	return true
}

// CalleesOf returns the methods a call site may invoke.
func (g *Graph) CalleesOf(cs *ir.Invoke) []*ir.Method {
	return g.calleesOf[cs]
}

// CallersOf returns the call edges into m.
func (g *Graph) CallersOf(m *ir.Method) []Edge {
	return g.callersOf[m]
}

// NumEdges returns the number of distinct call edges.
func (g *Graph) NumEdges() int {
	return len(g.edges)
}

// Edges calls f on every edge; iteration order is unspecified.
func (g *Graph) Edges(f func(Edge)) {
	for e := range g.edges {
		f(e)
	}
}

// CallSitesIn returns the invoke statements of m's body, in IR order.
func CallSitesIn(m *ir.Method) []*ir.Invoke {
	if m.IR == nil {
		return nil
	}
	var sites []*ir.Invoke
	for _, s := range m.IR.Stmts {
		if inv, ok := s.(*ir.Invoke); ok {
			sites = append(sites, inv)
		}
	}
	return sites
}
