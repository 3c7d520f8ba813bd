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

package deadcode

import (
	"testing"

	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

func deadIndexes(dead []ir.Stmt) []int {
	var idx []int
	for _, s := range dead {
		idx = append(idx, s.Index())
	}
	return idx
}

func assertDead(t *testing.T, dead []ir.Stmt, want map[int]bool) {
	t.Helper()
	got := map[int]bool{}
	for _, s := range dead {
		got[s.Index()] = true
	}
	for i := range want {
		if !got[i] {
			t.Errorf("statement %d should be dead; dead = %v", i, deadIndexes(dead))
		}
	}
	for i := range got {
		if !want[i] {
			t.Errorf("statement %d should be live; dead = %v", i, deadIndexes(dead))
		}
	}
}

// TestDeadBranch checks: if (1 < 2) { x = 1 } else { x = 2 }; use(x): the else
// branch is dead.
func TestDeadBranch(t *testing.T) {
	b := ir.NewBuilder()
	main := b.Class(ir.ClassDecl{Name: "Main"})
	mb := b.Method(main, "m", ir.Int, nil, true)
	one := mb.Var("one", ir.Int)
	two := mb.Var("two", ir.Int)
	x := mb.Var("x", ir.Int)
	mb.AssignLiteral(one, 1) // 0
	mb.AssignLiteral(two, 2) // 1
	mb.If(ir.Lt, one, two, "then") // 2
	mb.AssignLiteral(x, 2) // 3: else branch, dead
	mb.Goto("end")         // 4: dead
	mb.Label("then")
	mb.AssignLiteral(x, 1) // 5
	mb.Label("end")
	mb.Return(x) // 6
	m := mb.MustFinish()

	assertDead(t, RunOn(m.IR), map[int]bool{3: true, 4: true})
}

// TestUnusedAssignment checks: x = 1; x = 2; use(x): the first assignment is
// dead.
func TestUnusedAssignment(t *testing.T) {
	b := ir.NewBuilder()
	main := b.Class(ir.ClassDecl{Name: "Main"})
	mb := b.Method(main, "m", ir.Int, nil, true)
	x := mb.Var("x", ir.Int)
	mb.AssignLiteral(x, 1) // 0: dead, x redefined before use
	mb.AssignLiteral(x, 2) // 1
	mb.Return(x)           // 2
	m := mb.MustFinish()

	assertDead(t, RunOn(m.IR), map[int]bool{0: true})
}

// TestSideEffectsKeepAssignments checks that a dead-variable assignment whose
// right-hand side may trap is not reported.
func TestSideEffectsKeepAssignments(t *testing.T) {
	b := ir.NewBuilder()
	a := b.Class(ir.ClassDecl{Name: "A"})
	main := b.Class(ir.ClassDecl{Name: "Main"})
	at := ir.ClassType{Class: a}
	mb := b.Method(main, "m", ir.Void, []ir.Type{ir.Int}, true)
	p := mb.Param("p", ir.Int)
	zero := mb.Var("zero", ir.Int)
	q := mb.Var("q", ir.Int)
	o := mb.Var("o", at)
	mb.AssignLiteral(zero, 0) // 0: live, used below
	mb.Assign(q, &ir.ArithmeticExp{Op: ir.Div, Operand1: p, Operand2: zero}) // 1: q unused but div may trap
	mb.New(o, at)  // 2: o unused but allocation is an effect
	mb.Return(nil) // 3
	m := mb.MustFinish()

	assertDead(t, RunOn(m.IR), map[int]bool{})
}

// TestSwitchFolding checks that a constant switch selector kills the other
// cases.
func TestSwitchFolding(t *testing.T) {
	b := ir.NewBuilder()
	main := b.Class(ir.ClassDecl{Name: "Main"})
	mb := b.Method(main, "m", ir.Int, nil, true)
	x := mb.Var("x", ir.Int)
	r := mb.Var("r", ir.Int)
	mb.AssignLiteral(x, 2)                                    // 0
	mb.Switch(x, []int32{1, 2}, []string{"c1", "c2"}, "def")  // 1
	mb.Label("c1")
	mb.AssignLiteral(r, 10) // 2: dead
	mb.Goto("end")          // 3: dead
	mb.Label("c2")
	mb.AssignLiteral(r, 20) // 4: taken
	mb.Goto("end")          // 5
	mb.Label("def")
	mb.AssignLiteral(r, 30) // 6: dead
	mb.Label("end")
	mb.Return(r) // 7
	m := mb.MustFinish()

	assertDead(t, RunOn(m.IR), map[int]bool{2: true, 3: true, 6: true})
}

// TestUnreachableAfterReturn checks plain control-flow unreachability.
func TestUnreachableAfterReturn(t *testing.T) {
	b := ir.NewBuilder()
	main := b.Class(ir.ClassDecl{Name: "Main"})
	mb := b.Method(main, "m", ir.Int, nil, true)
	x := mb.Var("x", ir.Int)
	mb.AssignLiteral(x, 1) // 0
	mb.Return(x)           // 1
	mb.AssignLiteral(x, 2) // 2: unreachable
	mb.Return(x)           // 3: unreachable
	m := mb.MustFinish()

	assertDead(t, RunOn(m.IR), map[int]bool{2: true, 3: true})
}
