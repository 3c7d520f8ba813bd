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

// Package cfg builds the intra-procedural control-flow graph over IR
// statements, and the interprocedural control-flow graph linking call sites to
// callee bodies through a call graph.
package cfg

import (
	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

// EdgeKind classifies a CFG edge.
type EdgeKind int

// The CFG edge kinds.
const (
	FallThrough EdgeKind = iota
	GotoEdge
	IfTrue
	IfFalse
	SwitchCase
	SwitchDefault
	ReturnEdge
	Exceptional
)

var edgeKindNames = [...]string{"fall-through", "goto", "if-true", "if-false", "switch-case", "switch-default", "return", "exceptional"}

func (k EdgeKind) String() string { return edgeKindNames[k] }

// Edge is a directed CFG edge. CaseValue is meaningful only for SwitchCase
// edges.
type Edge struct {
	Kind      EdgeKind
	Source    ir.Stmt
	Target    ir.Stmt
	CaseValue int32
}

// CFG is the control-flow graph of one method. Entry and Exit are virtual Nop
// nodes that do not appear in the method's statement list.
type CFG struct {
	ir    *ir.IR
	entry ir.Stmt
	exit  ir.Stmt

	nodes []ir.Stmt
	in    map[ir.Stmt][]*Edge
	out   map[ir.Stmt][]*Edge
}

// New builds the CFG of the given method body.
func New(body *ir.IR) *CFG {
	g := &CFG{
		ir:    body,
		entry: &ir.Nop{},
		exit:  &ir.Nop{},
		in:    map[ir.Stmt][]*Edge{},
		out:   map[ir.Stmt][]*Edge{},
	}
	g.nodes = append(g.nodes, g.entry)
	g.nodes = append(g.nodes, body.Stmts...)
	g.nodes = append(g.nodes, g.exit)
	g.build()
	return g
}

func (g *CFG) addEdge(e *Edge) {
	g.out[e.Source] = append(g.out[e.Source], e)
	g.in[e.Target] = append(g.in[e.Target], e)
}

// next returns the fall-through successor of the statement at index i: the
// following statement, or the virtual exit.
func (g *CFG) next(i int) ir.Stmt {
	if i+1 < len(g.ir.Stmts) {
		return g.ir.Stmts[i+1]
	}
	return g.exit
}

func (g *CFG) build() {
	if len(g.ir.Stmts) == 0 {
		g.addEdge(&Edge{Kind: FallThrough, Source: g.entry, Target: g.exit})
		return
	}
	g.addEdge(&Edge{Kind: FallThrough, Source: g.entry, Target: g.ir.Stmts[0]})
	for i, s := range g.ir.Stmts {
		switch s := s.(type) {
		case *ir.Goto:
			g.addEdge(&Edge{Kind: GotoEdge, Source: s, Target: s.Target})
		case *ir.If:
			g.addEdge(&Edge{Kind: IfTrue, Source: s, Target: s.Target})
			g.addEdge(&Edge{Kind: IfFalse, Source: s, Target: g.next(i)})
		case *ir.Switch:
			for _, c := range s.Cases {
				g.addEdge(&Edge{Kind: SwitchCase, Source: s, Target: c.Target, CaseValue: c.Value})
			}
			g.addEdge(&Edge{Kind: SwitchDefault, Source: s, Target: s.DefaultTarget})
		case *ir.Return:
			g.addEdge(&Edge{Kind: ReturnEdge, Source: s, Target: g.exit})
		default:
			g.addEdge(&Edge{Kind: FallThrough, Source: s, Target: g.next(i)})
		}
	}
}

// IR returns the method body the CFG was built from.
func (g *CFG) IR() *ir.IR { return g.ir }

// Entry returns the virtual entry node.
func (g *CFG) Entry() ir.Stmt { return g.entry }

// Exit returns the virtual exit node.
func (g *CFG) Exit() ir.Stmt { return g.exit }

// Nodes returns all nodes: the virtual entry, the statements in order, the
// virtual exit.
func (g *CFG) Nodes() []ir.Stmt { return g.nodes }

// IsEntry reports whether n is the virtual entry node.
func (g *CFG) IsEntry(n ir.Stmt) bool { return n == g.entry }

// IsExit reports whether n is the virtual exit node.
func (g *CFG) IsExit(n ir.Stmt) bool { return n == g.exit }

// OutEdgesOf returns the edges leaving n.
func (g *CFG) OutEdgesOf(n ir.Stmt) []*Edge { return g.out[n] }

// InEdgesOf returns the edges entering n.
func (g *CFG) InEdgesOf(n ir.Stmt) []*Edge { return g.in[n] }

// SuccsOf returns the successor nodes of n.
func (g *CFG) SuccsOf(n ir.Stmt) []ir.Stmt {
	var succs []ir.Stmt
	for _, e := range g.out[n] {
		succs = append(succs, e.Target)
	}
	return succs
}

// PredsOf returns the predecessor nodes of n.
func (g *CFG) PredsOf(n ir.Stmt) []ir.Stmt {
	var preds []ir.Stmt
	for _, e := range g.in[n] {
		preds = append(preds, e.Source)
	}
	return preds
}
