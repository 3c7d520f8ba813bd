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
	"testing"

	"github.com/awslabs/ar-ir-tools/analysis/callgraph"
	"github.com/awslabs/ar-ir-tools/analysis/config"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

func buildBranchy(t *testing.T) *ir.Method {
	t.Helper()
	b := ir.NewBuilder()
	main := b.Class(ir.ClassDecl{Name: "Main"})
	mb := b.Method(main, "m", ir.Int, nil, true)
	x := mb.Var("x", ir.Int)
	y := mb.Var("y", ir.Int)
	mb.AssignLiteral(x, 1)    // 0
	mb.AssignLiteral(y, 2)    // 1
	mb.If(ir.Lt, x, y, "end") // 2
	mb.AssignLiteral(x, 3)    // 3
	mb.Label("end")
	mb.Return(x) // 4
	return mb.MustFinish()
}

func kindsOf(edges []*Edge) map[EdgeKind]int {
	kinds := map[EdgeKind]int{}
	for _, e := range edges {
		kinds[e.Kind]++
	}
	return kinds
}

func TestCFGEdges(t *testing.T) {
	m := buildBranchy(t)
	g := New(m.IR)

	if len(g.Nodes()) != len(m.IR.Stmts)+2 {
		t.Fatalf("nodes = %d, want statements plus virtual entry and exit", len(g.Nodes()))
	}

	ifStmt := m.IR.Stmts[2]
	kinds := kindsOf(g.OutEdgesOf(ifStmt))
	if kinds[IfTrue] != 1 || kinds[IfFalse] != 1 {
		t.Errorf("if out-edges = %v, want one if-true and one if-false", kinds)
	}
	for _, e := range g.OutEdgesOf(ifStmt) {
		switch e.Kind {
		case IfTrue:
			if e.Target != m.IR.Stmts[4] {
				t.Errorf("if-true edge targets %v", e.Target)
			}
		case IfFalse:
			if e.Target != m.IR.Stmts[3] {
				t.Errorf("if-false edge targets %v", e.Target)
			}
		}
	}

	ret := m.IR.Stmts[4]
	if kinds := kindsOf(g.OutEdgesOf(ret)); kinds[ReturnEdge] != 1 {
		t.Errorf("return out-edges = %v", kinds)
	}
	if preds := g.PredsOf(m.IR.Stmts[0]); len(preds) != 1 || preds[0] != g.Entry() {
		t.Errorf("first statement should be preceded by the virtual entry")
	}
}

func TestSwitchEdges(t *testing.T) {
	b := ir.NewBuilder()
	main := b.Class(ir.ClassDecl{Name: "Main"})
	mb := b.Method(main, "m", ir.Void, nil, true)
	x := mb.Var("x", ir.Int)
	mb.AssignLiteral(x, 1)                                   // 0
	mb.Switch(x, []int32{1, 2}, []string{"a", "b"}, "d")     // 1
	mb.Label("a")
	mb.Nop() // 2
	mb.Label("b")
	mb.Nop() // 3
	mb.Label("d")
	mb.Return(nil) // 4
	m := mb.MustFinish()

	g := New(m.IR)
	kinds := kindsOf(g.OutEdgesOf(m.IR.Stmts[1]))
	if kinds[SwitchCase] != 2 || kinds[SwitchDefault] != 1 {
		t.Errorf("switch out-edges = %v, want two cases and a default", kinds)
	}
	for _, e := range g.OutEdgesOf(m.IR.Stmts[1]) {
		if e.Kind == SwitchCase && e.CaseValue == 2 && e.Target != m.IR.Stmts[3] {
			t.Errorf("case 2 targets %v", e.Target)
		}
	}
}

func TestICFGEdges(t *testing.T) {
	b := ir.NewBuilder()
	main := b.Class(ir.ClassDecl{Name: "Main"})

	calleeB := b.Method(main, "callee", ir.Int, []ir.Type{ir.Int}, true)
	p := calleeB.Param("p", ir.Int)
	calleeB.Return(p)
	callee := calleeB.MustFinish()

	mb := b.Method(main, "main", ir.Void, nil, true)
	x := mb.Var("x", ir.Int)
	r := mb.Var("r", ir.Int)
	mb.AssignLiteral(x, 1)                                       // 0
	mb.Invoke(r, ir.KindStatic, callee.Ref(), nil, []*ir.Var{x}) // 1
	mb.Return(nil)                                               // 2
	m := mb.MustFinish()

	logger := config.NewLogGroup(config.NewDefault())
	cg := callgraph.BuildCHA(b.Hierarchy(), m, logger)
	g := NewICFG(cg)

	call := m.IR.Stmts[1]
	var kinds []ICFGEdgeKind
	for _, e := range g.OutEdgesOf(call) {
		kinds = append(kinds, e.Kind)
	}
	haveCall, haveC2R := false, false
	for _, k := range kinds {
		switch k {
		case Call:
			haveCall = true
		case CallToReturn:
			haveC2R = true
		case Normal:
			t.Errorf("call node should not have plain normal out-edges")
		}
	}
	if !haveCall || !haveC2R {
		t.Errorf("call node edges = %v, want call and call-to-return", kinds)
	}

	// the callee's exit returns to the call site's return site
	exit := g.ExitOf(callee)
	foundReturn := false
	for _, e := range g.OutEdgesOf(exit) {
		if e.Kind == Return {
			foundReturn = true
			if e.CallSite != call {
				t.Errorf("return edge call site = %v", e.CallSite)
			}
			if e.Target != m.IR.Stmts[2] {
				t.Errorf("return edge target = %v, want the return site", e.Target)
			}
			if len(e.ReturnVars) != 1 || e.ReturnVars[0] != p {
				t.Errorf("return edge should carry the callee's return variable")
			}
		}
	}
	if !foundReturn {
		t.Errorf("no return edge out of the callee exit")
	}
	if g.ContainingMethodOf(call) != m {
		t.Errorf("containing method lookup failed")
	}
}
