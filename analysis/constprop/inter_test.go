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

package constprop

import (
	"testing"

	"github.com/awslabs/ar-ir-tools/analysis/callgraph"
	"github.com/awslabs/ar-ir-tools/analysis/cfg"
	"github.com/awslabs/ar-ir-tools/analysis/config"
	"github.com/awslabs/ar-ir-tools/analysis/dataflow"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/analysis/pta"
)

func testLogger() *config.LogGroup {
	return config.NewLogGroup(config.NewDefault())
}

func solveInterFor(t *testing.T, h *ir.Hierarchy, entry *ir.Method, refiner *LoadRefiner) (*cfg.ICFG, *dataflow.Result[*Fact]) {
	t.Helper()
	cg := callgraph.BuildCHA(h, entry, testLogger())
	icfg := cfg.NewICFG(cg)
	result := RunInter(NewInterAnalysis(testLogger(), refiner), icfg)
	return icfg, result
}

func TestInterCallAndReturnBinding(t *testing.T) {
	b := ir.NewBuilder()
	main := b.Class(ir.ClassDecl{Name: "Main"})

	idB := b.Method(main, "id", ir.Int, []ir.Type{ir.Int}, true)
	p := idB.Param("p", ir.Int)
	idB.Return(p)
	id := idB.MustFinish()

	mb := b.Method(main, "main", ir.Void, nil, true)
	x := mb.Var("x", ir.Int)
	k := mb.Var("k", ir.Int)
	r := mb.Var("r", ir.Int)
	mb.AssignLiteral(x, 7)
	mb.AssignLiteral(k, 5)
	mb.Invoke(r, ir.KindStatic, id.Ref(), nil, []*ir.Var{x})
	mb.Return(nil)
	m := mb.MustFinish()

	_, res := solveInterFor(t, b.Hierarchy(), m, nil)
	exit := res.OutFact(m.IR.Stmts[len(m.IR.Stmts)-1])

	if got := exit.Get(r); !got.IsConstant() || got.Constant() != 7 {
		t.Errorf("r = id(7): got %s, want 7", got)
	}
	// the caller's locals survive the call along the call-to-return edge
	if got := exit.Get(k); !got.IsConstant() || got.Constant() != 5 {
		t.Errorf("k across call: got %s, want 5", got)
	}
	// inside the callee, the parameter holds the only caller's argument
	calleeExit := res.OutFact(id.IR.Stmts[0])
	if got := calleeExit.Get(p); !got.IsConstant() || got.Constant() != 7 {
		t.Errorf("p in callee: got %s, want 7", got)
	}
}

func TestInterTwoCallSitesMeetToNAC(t *testing.T) {
	b := ir.NewBuilder()
	main := b.Class(ir.ClassDecl{Name: "Main"})

	idB := b.Method(main, "id", ir.Int, []ir.Type{ir.Int}, true)
	p := idB.Param("p", ir.Int)
	idB.Return(p)
	id := idB.MustFinish()

	mb := b.Method(main, "main", ir.Void, nil, true)
	x := mb.Var("x", ir.Int)
	y := mb.Var("y", ir.Int)
	r1 := mb.Var("r1", ir.Int)
	r2 := mb.Var("r2", ir.Int)
	mb.AssignLiteral(x, 1)
	mb.AssignLiteral(y, 2)
	mb.Invoke(r1, ir.KindStatic, id.Ref(), nil, []*ir.Var{x})
	mb.Invoke(r2, ir.KindStatic, id.Ref(), nil, []*ir.Var{y})
	mb.Return(nil)
	m := mb.MustFinish()

	_, res := solveInterFor(t, b.Hierarchy(), m, nil)
	calleeExit := res.OutFact(id.IR.Stmts[0])
	if got := calleeExit.Get(p); !got.IsNAC() {
		t.Errorf("p with two distinct call sites: got %s, want NAC", got)
	}
	exit := res.OutFact(m.IR.Stmts[len(m.IR.Stmts)-1])
	if got := exit.Get(r1); !got.IsNAC() {
		t.Errorf("r1: got %s, want NAC (callee return is the meet over call sites)", got)
	}
}

func TestInterEntryParametersStayUndef(t *testing.T) {
	b := ir.NewBuilder()
	main := b.Class(ir.ClassDecl{Name: "Main"})
	mb := b.Method(main, "main", ir.Void, []ir.Type{ir.Int}, true)
	p := mb.Param("p", ir.Int)
	q := mb.Var("q", ir.Int)
	mb.Copy(q, p)
	mb.Return(nil)
	m := mb.MustFinish()

	_, res := solveInterFor(t, b.Hierarchy(), m, nil)
	exit := res.OutFact(m.IR.Stmts[0])
	// start-empty boundary: no call edge ever binds the entry parameters
	if got := exit.Get(q); !got.IsUndef() {
		t.Errorf("entry parameter copy: got %s, want UNDEF", got)
	}
}

// buildRefineProgram builds:
//
//	main: v = 42; o1 = new A; o2 = new A; o1.f = v; y = o2.f; z = o1.f;
//	      Main.g = v; w = Main.g
func buildRefineProgram(t *testing.T) (*ir.Builder, *ir.Method, map[string]*ir.Var) {
	t.Helper()
	b := ir.NewBuilder()
	a := b.Class(ir.ClassDecl{Name: "A"})
	main := b.Class(ir.ClassDecl{Name: "Main"})
	at := ir.ClassType{Class: a}

	f := b.FieldRef(a, "f", ir.Int, false)
	g := b.FieldRef(main, "g", ir.Int, true)

	mb := b.Method(main, "main", ir.Void, nil, true)
	v := mb.Var("v", ir.Int)
	o1 := mb.Var("o1", at)
	o2 := mb.Var("o2", at)
	y := mb.Var("y", ir.Int)
	z := mb.Var("z", ir.Int)
	w := mb.Var("w", ir.Int)
	mb.AssignLiteral(v, 42)
	mb.New(o1, at)
	mb.New(o2, at)
	mb.StoreField(o1, f, v)
	mb.LoadField(y, o2, f)
	mb.LoadField(z, o1, f)
	mb.StoreField(nil, g, v)
	mb.LoadField(w, nil, g)
	mb.Return(nil)
	m := mb.MustFinish()
	return b, m, map[string]*ir.Var{"y": y, "z": z, "w": w}
}

func TestInterRefinedLoads(t *testing.T) {
	b, m, vars := buildRefineProgram(t)
	program := ir.NewProgram(b.Hierarchy(), m)

	selector, err := pta.NewContextSelector("ci")
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	ptaResult, err := pta.NewSolver(program, pta.NewAllocSiteHeapModel(), selector, testLogger()).Solve()
	if err != nil {
		t.Fatalf("pta: %v", err)
	}

	cg := callgraph.BuildCHA(b.Hierarchy(), m, testLogger())
	refiner := NewLoadRefiner(cg.ReachableMethods(), ptaResult)
	_, res := solveInterFor(t, b.Hierarchy(), m, refiner)
	exit := res.OutFact(m.IR.Stmts[len(m.IR.Stmts)-1])

	// o2 never aliases o1, so no store reaches y
	if got := exit.Get(vars["y"]); !got.IsUndef() {
		t.Errorf("y = o2.f: got %s, want UNDEF (no reaching store)", got)
	}
	if got := exit.Get(vars["z"]); !got.IsConstant() || got.Constant() != 42 {
		t.Errorf("z = o1.f: got %s, want 42", got)
	}
	if got := exit.Get(vars["w"]); !got.IsConstant() || got.Constant() != 42 {
		t.Errorf("w = Main.g: got %s, want 42", got)
	}
}

func TestInterUnrefinedLoadsAreNAC(t *testing.T) {
	b, m, vars := buildRefineProgram(t)
	_, res := solveInterFor(t, b.Hierarchy(), m, nil)
	exit := res.OutFact(m.IR.Stmts[len(m.IR.Stmts)-1])
	if got := exit.Get(vars["z"]); !got.IsNAC() {
		t.Errorf("z without refinement: got %s, want NAC", got)
	}
}
