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
	"testing"

	"github.com/awslabs/ar-ir-tools/analysis/config"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

func testLogger() *config.LogGroup {
	return config.NewLogGroup(config.NewDefault())
}

func solve(t *testing.T, program *ir.Program, sensitivity string) *Result {
	t.Helper()
	selector, err := NewContextSelector(sensitivity)
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	result, err := NewSolver(program, NewAllocSiteHeapModel(), selector, testLogger()).Solve()
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	return result
}

func objsOf(r *Result, v *ir.Var) map[ir.Stmt]bool {
	sites := map[ir.Stmt]bool{}
	for _, o := range r.PointsToSetOf(v) {
		sites[o.Site] = true
	}
	return sites
}

func TestNewCopyAndFields(t *testing.T) {
	b := ir.NewBuilder()
	a := b.Class(ir.ClassDecl{Name: "A"})
	main := b.Class(ir.ClassDecl{Name: "Main"})
	at := ir.ClassType{Class: a}
	f := b.FieldRef(a, "f", at, false)

	mb := b.Method(main, "main", ir.Void, nil, true)
	x := mb.Var("x", at)
	y := mb.Var("y", at)
	z := mb.Var("z", at)
	w := mb.Var("w", at)
	alloc1 := mb.New(x, at)
	alloc2 := mb.New(y, at)
	mb.Copy(z, x)
	mb.StoreField(x, f, y)
	mb.LoadField(w, z, f) // z aliases x, so w sees y's object
	mb.Return(nil)
	m := mb.MustFinish()

	r := solve(t, ir.NewProgram(b.Hierarchy(), m), "ci")

	if sites := objsOf(r, z); !sites[alloc1] || len(sites) != 1 {
		t.Errorf("pts(z) = %v, want exactly the first allocation", sites)
	}
	if sites := objsOf(r, w); !sites[alloc2] || len(sites) != 1 {
		t.Errorf("pts(w) = %v, want exactly the second allocation", sites)
	}
	if !r.MayAlias(x, z) {
		t.Errorf("x and z should alias")
	}
	if r.MayAlias(x, y) {
		t.Errorf("x and y should not alias")
	}
}

func TestStaticFieldsAndArrays(t *testing.T) {
	b := ir.NewBuilder()
	a := b.Class(ir.ClassDecl{Name: "A"})
	main := b.Class(ir.ClassDecl{Name: "Main"})
	at := ir.ClassType{Class: a}
	arrT := ir.ArrayType{Elem: at}
	s := b.FieldRef(main, "s", at, true)

	mb := b.Method(main, "main", ir.Void, nil, true)
	x := mb.Var("x", at)
	y := mb.Var("y", at)
	arr := mb.Var("arr", arrT)
	i := mb.Var("i", ir.Int)
	e := mb.Var("e", at)
	alloc := mb.New(x, at)
	mb.StoreField(nil, s, x)
	mb.LoadField(y, nil, s)
	mb.New(arr, arrT)
	mb.AssignLiteral(i, 0)
	mb.StoreArray(arr, i, x)
	mb.LoadArray(e, arr, i)
	mb.Return(nil)
	m := mb.MustFinish()

	r := solve(t, ir.NewProgram(b.Hierarchy(), m), "ci")
	if sites := objsOf(r, y); !sites[alloc] {
		t.Errorf("static field load lost the stored object")
	}
	if sites := objsOf(r, e); !sites[alloc] {
		t.Errorf("array load lost the stored object")
	}
}

// buildContainers builds the two-container program:
//
//	class Box { C f; void set(C v) { this.f = v } C get() { return this.f } }
//	main: b1 = new Box; b2 = new Box; c1 = new C; c2 = new C
//	      b1.set(c1); b2.set(c2); x = b1.get(); y = b2.get()
func buildContainers(t *testing.T) (*ir.Program, map[string]*ir.Var, map[string]*ir.New) {
	t.Helper()
	b := ir.NewBuilder()
	c := b.Class(ir.ClassDecl{Name: "C"})
	box := b.Class(ir.ClassDecl{Name: "Box"})
	main := b.Class(ir.ClassDecl{Name: "Main"})
	ct := ir.ClassType{Class: c}
	boxT := ir.ClassType{Class: box}
	f := b.FieldRef(box, "f", ct, false)

	setB := b.Method(box, "set", ir.Void, []ir.Type{ct}, false)
	v := setB.Param("v", ct)
	setB.StoreField(setB.Method().IR.This, f, v)
	setB.Return(nil)
	set := setB.MustFinish()

	getB := b.Method(box, "get", ct, nil, false)
	tv := getB.Var("t", ct)
	getB.LoadField(tv, getB.Method().IR.This, f)
	getB.Return(tv)
	get := getB.MustFinish()

	mb := b.Method(main, "main", ir.Void, nil, true)
	b1 := mb.Var("b1", boxT)
	b2 := mb.Var("b2", boxT)
	c1 := mb.Var("c1", ct)
	c2 := mb.Var("c2", ct)
	x := mb.Var("x", ct)
	y := mb.Var("y", ct)
	mb.New(b1, boxT)
	mb.New(b2, boxT)
	a1 := mb.New(c1, ct)
	a2 := mb.New(c2, ct)
	mb.Invoke(nil, ir.KindVirtual, set.Ref(), b1, []*ir.Var{c1})
	mb.Invoke(nil, ir.KindVirtual, set.Ref(), b2, []*ir.Var{c2})
	mb.Invoke(x, ir.KindVirtual, get.Ref(), b1, nil)
	mb.Invoke(y, ir.KindVirtual, get.Ref(), b2, nil)
	mb.Return(nil)
	m := mb.MustFinish()

	program := ir.NewProgram(b.Hierarchy(), m)
	vars := map[string]*ir.Var{"x": x, "y": y, "c1": c1, "c2": c2}
	allocs := map[string]*ir.New{"c1": a1, "c2": a2}
	return program, vars, allocs
}

func TestContainersContextInsensitive(t *testing.T) {
	program, vars, allocs := buildContainers(t)
	r := solve(t, program, "ci")

	// one abstract Box.f conflates both containers
	x := objsOf(r, vars["x"])
	if !x[allocs["c1"]] || !x[allocs["c2"]] {
		t.Errorf("ci pts(x) = %v, want both C allocations", x)
	}
	if !r.MayAlias(vars["x"], vars["y"]) {
		t.Errorf("ci: x and y should may-alias")
	}
}

func TestContainersTwoObjectSensitive(t *testing.T) {
	program, vars, allocs := buildContainers(t)
	r := solve(t, program, "2-obj")

	x := objsOf(r, vars["x"])
	y := objsOf(r, vars["y"])
	if !x[allocs["c1"]] || x[allocs["c2"]] {
		t.Errorf("2-obj pts(x) = %v, want only c1's allocation", x)
	}
	if !y[allocs["c2"]] || y[allocs["c1"]] {
		t.Errorf("2-obj pts(y) = %v, want only c2's allocation", y)
	}
	if r.MayAlias(vars["x"], vars["y"]) {
		t.Errorf("2-obj: x and y must not alias")
	}
}

func TestOnTheFlyCallGraph(t *testing.T) {
	program, _, _ := buildContainers(t)
	r := solve(t, program, "ci")

	cg := r.CallGraph()
	if !cg.Contains(program.Entry) {
		t.Fatalf("entry method missing from call graph")
	}
	box := program.Hierarchy.Class("Box")
	set := box.DeclaredMethod(ir.Subsig("set", ir.Void, []ir.Type{ir.ClassType{Class: program.Hierarchy.Class("C")}}))
	if set == nil || !cg.Contains(set) {
		t.Fatalf("Box.set should be reachable on the fly")
	}
}

func TestSolveIsMonotoneAcrossRuns(t *testing.T) {
	program, vars, _ := buildContainers(t)
	r1 := solve(t, program, "ci")
	r2 := solve(t, program, "ci")
	for name, v := range vars {
		if len(r1.PointsToSetOf(v)) != len(r2.PointsToSetOf(v)) {
			t.Errorf("pts(%s) differs between identical runs", name)
		}
	}
}

func TestContextTruncation(t *testing.T) {
	pool := newContextPool()
	a, b, c := &Obj{}, &Obj{}, &Obj{}
	ctx := pool.make([]any{a, b})
	ctx = pool.appendElem(ctx, c, 2)
	if ctx.Length() != 2 {
		t.Fatalf("context length = %d, want 2", ctx.Length())
	}
	// truncation drops the least recent element
	if ctx.ElementAt(0) != b || ctx.ElementAt(1) != c {
		t.Errorf("truncation kept the wrong elements")
	}
}

func TestContextInterning(t *testing.T) {
	pool := newContextPool()
	a := &Obj{}
	c1 := pool.make([]any{a})
	c2 := pool.appendElem(pool.empty, a, 2)
	if c1 != c2 {
		t.Errorf("equal contexts should be the same instance")
	}
}
