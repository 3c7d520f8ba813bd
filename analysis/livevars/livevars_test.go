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

package livevars

import (
	"testing"

	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

// buildRedefine builds: x = 1; x = 2; y = x; return y.
func buildRedefine(t *testing.T) (*ir.Method, *ir.Var, *ir.Var) {
	t.Helper()
	b := ir.NewBuilder()
	main := b.Class(ir.ClassDecl{Name: "Main"})
	mb := b.Method(main, "m", ir.Int, nil, true)
	x := mb.Var("x", ir.Int)
	y := mb.Var("y", ir.Int)
	mb.AssignLiteral(x, 1)
	mb.AssignLiteral(x, 2)
	mb.Copy(y, x)
	mb.Return(y)
	return mb.MustFinish(), x, y
}

func TestLiveness(t *testing.T) {
	m, x, y := buildRedefine(t)
	result := Run(m.IR)

	// x is dead after its first definition: the second kills it
	if result.OutFact(m.IR.Stmts[0]).Contains(x) {
		t.Errorf("x live after first x = 1, want dead")
	}
	if !result.OutFact(m.IR.Stmts[1]).Contains(x) {
		t.Errorf("x dead after x = 2, want live (used by y = x)")
	}
	if !result.OutFact(m.IR.Stmts[2]).Contains(y) {
		t.Errorf("y dead after y = x, want live (returned)")
	}
	if result.OutFact(m.IR.Stmts[3]).Size() != 0 {
		t.Errorf("exit out set should be empty")
	}
}

func TestBranchesMergeLiveness(t *testing.T) {
	b := ir.NewBuilder()
	main := b.Class(ir.ClassDecl{Name: "Main"})
	mb := b.Method(main, "m", ir.Int, []ir.Type{ir.Int}, true)
	p := mb.Param("p", ir.Int)
	q := mb.Var("q", ir.Int)
	r := mb.Var("r", ir.Int)
	mb.AssignLiteral(q, 0)         // 0
	mb.If(ir.Gt, p, q, "use")      // 1
	mb.AssignLiteral(r, 1)         // 2
	mb.Return(r)                   // 3
	mb.Label("use")
	mb.Copy(r, p)                  // 4
	mb.Return(r)                   // 5
	m := mb.MustFinish()

	result := Run(m.IR)
	// p is live into the branch: one successor still reads it
	if !result.InFact(m.IR.Stmts[1]).Contains(p) {
		t.Errorf("p dead before the branch, want live")
	}
	// p is dead on the fallthrough path
	if result.InFact(m.IR.Stmts[2]).Contains(p) {
		t.Errorf("p live in the fallthrough branch, want dead")
	}
}
