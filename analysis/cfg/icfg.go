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

package cfg

import (
	"github.com/awslabs/ar-ir-tools/analysis/callgraph"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/internal/funcutil"
	"github.com/awslabs/ar-ir-tools/internal/graphutil"
)

// ICFGEdgeKind classifies an interprocedural edge.
type ICFGEdgeKind int

// The ICFG edge kinds.
const (
	// Normal edges are intra-procedural edges at non-call nodes.
	Normal ICFGEdgeKind = iota
	// CallToReturn edges connect a call site to its return site within the
	// caller, carrying the caller's local state across the call.
	CallToReturn
	// Call edges connect a call site to a callee's entry.
	Call
	// Return edges connect a callee's exit to a return site of a call site.
	Return
)

var icfgEdgeKindNames = [...]string{"normal", "call-to-return", "call", "return"}

func (k ICFGEdgeKind) String() string { return icfgEdgeKindNames[k] }

// ICFGEdge is a directed edge of the interprocedural CFG.
type ICFGEdge struct {
	Kind   ICFGEdgeKind
	Source ir.Stmt
	Target ir.Stmt

	// Callee is the target method of a Call edge.
	Callee *ir.Method

	// CallSite is the call site a Return edge flows back to.
	CallSite *ir.Invoke

	// ReturnVars are the return variables of the callee's body, on Return edges.
	ReturnVars []*ir.Var
}

// ICFG is the interprocedural control-flow graph over the methods reachable in
// a call graph.
type ICFG struct {
	cg *callgraph.Graph

	cfgs map[*ir.Method]*CFG

	nodes    []ir.Stmt
	in       map[ir.Stmt][]*ICFGEdge
	out      map[ir.Stmt][]*ICFGEdge
	methodOf map[ir.Stmt]*ir.Method
}

// NewICFG builds the ICFG of all methods reachable in the call graph. Node
// order groups statements by method, callers before callees where the call
// graph's SCC condensation allows it.
func NewICFG(cg *callgraph.Graph) *ICFG {
	g := &ICFG{
		cg:       cg,
		cfgs:     map[*ir.Method]*CFG{},
		in:       map[ir.Stmt][]*ICFGEdge{},
		out:      map[ir.Stmt][]*ICFGEdge{},
		methodOf: map[ir.Stmt]*ir.Method{},
	}
	g.build()
	return g
}

func (g *ICFG) addEdge(e *ICFGEdge) {
	g.out[e.Source] = append(g.out[e.Source], e)
	g.in[e.Target] = append(g.in[e.Target], e)
}

func (g *ICFG) build() {
	methods := orderCallersFirst(g.cg)
	for _, m := range methods {
		if m.IR == nil {
			continue
		}
		c := New(m.IR)
		g.cfgs[m] = c
		for _, n := range c.Nodes() {
			g.nodes = append(g.nodes, n)
			g.methodOf[n] = m
		}
	}
	for _, m := range methods {
		c := g.cfgs[m]
		if c == nil {
			continue
		}
		for _, n := range c.Nodes() {
			cs, isCall := n.(*ir.Invoke)
			var callees []*ir.Method
			if isCall {
				for _, callee := range g.cg.CalleesOf(cs) {
					if g.cfgs[callee] != nil {
						callees = append(callees, callee)
					}
				}
			}
			for _, e := range c.OutEdgesOf(n) {
				kind := Normal
				if isCall && len(callees) > 0 {
					kind = CallToReturn
				}
				g.addEdge(&ICFGEdge{Kind: kind, Source: n, Target: e.Target})
				for _, callee := range callees {
					body := g.cfgs[callee]
					g.addEdge(&ICFGEdge{
						Kind:       Return,
						Source:     body.Exit(),
						Target:     e.Target,
						CallSite:   cs,
						ReturnVars: callee.IR.ReturnVars,
					})
				}
			}
			for _, callee := range callees {
				g.addEdge(&ICFGEdge{
					Kind:   Call,
					Source: n,
					Target: g.cfgs[callee].Entry(),
					Callee: callee,
				})
			}
		}
	}
}

// orderCallersFirst returns the reachable methods so that callers precede
// callees whenever the call graph's condensation permits. The SCC computation
// returns components with successors first, so the result is reversed.
func orderCallersFirst(cg *callgraph.Graph) []*ir.Method {
	succs := func(m *ir.Method) []*ir.Method {
		var out []*ir.Method
		for _, cs := range callgraph.CallSitesIn(m) {
			out = append(out, cg.CalleesOf(cs)...)
		}
		return out
	}
	sccs := graphutil.StronglyConnectedComponents(cg.ReachableMethods(), succs)
	var methods []*ir.Method
	for _, scc := range sccs {
		methods = append(methods, scc...)
	}
	funcutil.Reverse(methods)
	return methods
}

// EntryMethods returns the entry methods of the underlying call graph.
func (g *ICFG) EntryMethods() []*ir.Method {
	return g.cg.Entries()
}

// CallGraph returns the call graph the ICFG was built from.
func (g *ICFG) CallGraph() *callgraph.Graph {
	return g.cg
}

// CFGOf returns the intra-procedural CFG of m, or nil when m has no body.
func (g *ICFG) CFGOf(m *ir.Method) *CFG {
	return g.cfgs[m]
}

// EntryOf returns the virtual entry node of m's CFG.
func (g *ICFG) EntryOf(m *ir.Method) ir.Stmt {
	return g.cfgs[m].Entry()
}

// ExitOf returns the virtual exit node of m's CFG.
func (g *ICFG) ExitOf(m *ir.Method) ir.Stmt {
	return g.cfgs[m].Exit()
}

// Nodes returns all ICFG nodes, grouped by method.
func (g *ICFG) Nodes() []ir.Stmt {
	return g.nodes
}

// ContainingMethodOf returns the method whose CFG contains n.
func (g *ICFG) ContainingMethodOf(n ir.Stmt) *ir.Method {
	return g.methodOf[n]
}

// OutEdgesOf returns the interprocedural edges leaving n.
func (g *ICFG) OutEdgesOf(n ir.Stmt) []*ICFGEdge {
	return g.out[n]
}

// InEdgesOf returns the interprocedural edges entering n.
func (g *ICFG) InEdgesOf(n ir.Stmt) []*ICFGEdge {
	return g.in[n]
}

// SuccsOf returns the successor nodes of n across all edge kinds.
func (g *ICFG) SuccsOf(n ir.Stmt) []ir.Stmt {
	var succs []ir.Stmt
	for _, e := range g.out[n] {
		succs = append(succs, e.Target)
	}
	return succs
}
