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

import (
	"github.com/awslabs/ar-ir-tools/analysis/callgraph"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

// CSEdge is a context-sensitive call edge.
type CSEdge struct {
	Kind     ir.InvokeKind
	CallSite *CSCallSite
	Callee   *CSMethod
}

// CSCallGraph is the call graph over context-sensitive call sites and methods.
type CSCallGraph struct {
	entries []*CSMethod

	reachable map[*CSMethod]bool
	methods   []*CSMethod

	edges     map[CSEdge]bool
	calleesOf map[*CSCallSite][]*CSMethod
}

// NewCSCallGraph returns an empty context-sensitive call graph.
func NewCSCallGraph() *CSCallGraph {
	return &CSCallGraph{
		reachable: map[*CSMethod]bool{},
		edges:     map[CSEdge]bool{},
		calleesOf: map[*CSCallSite][]*CSMethod{},
	}
}

// AddEntry marks a context-sensitive method as an entry point and reachable.
func (g *CSCallGraph) AddEntry(m *CSMethod) {
	g.entries = append(g.entries, m)
	g.AddReachableMethod(m)
}

// AddReachableMethod marks m reachable, returning true on first insertion.
func (g *CSCallGraph) AddReachableMethod(m *CSMethod) bool {
	if g.reachable[m] {
		return false
	}
	g.reachable[m] = true
	g.methods = append(g.methods, m)
	return true
}

// Contains reports whether m is reachable.
func (g *CSCallGraph) Contains(m *CSMethod) bool {
	return g.reachable[m]
}

// ReachableMethods returns the reachable context-sensitive methods in
// insertion order.
func (g *CSCallGraph) ReachableMethods() []*CSMethod {
	return g.methods
}

// AddEdge inserts a call edge, returning true on first insertion.
func (g *CSCallGraph) AddEdge(e CSEdge) bool {
	if g.edges[e] {
		return false
	}
	g.edges[e] = true
	g.calleesOf[e.CallSite] = append(g.calleesOf[e.CallSite], e.Callee)
	return true
}

// CalleesOf returns the context-sensitive callees of a call site.
func (g *CSCallGraph) CalleesOf(cs *CSCallSite) []*CSMethod {
	return g.calleesOf[cs]
}

// NumEdges returns the number of distinct context-sensitive edges.
func (g *CSCallGraph) NumEdges() int {
	return len(g.edges)
}

// Collapse folds contexts away, producing the context-insensitive call graph
// over IR call sites and methods.
func (g *CSCallGraph) Collapse() *callgraph.Graph {
	cg := callgraph.New()
	for _, m := range g.entries {
		cg.AddEntry(m.Method)
	}
	for _, m := range g.methods {
		cg.AddReachableMethod(m.Method)
	}
	for e := range g.edges {
		cg.AddEdge(callgraph.Edge{
			Kind:     e.Kind,
			CallSite: e.CallSite.Site,
			Callee:   e.Callee.Method,
		})
	}
	return cg
}
