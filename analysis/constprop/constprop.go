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
	"github.com/awslabs/ar-ir-tools/analysis/cfg"
	"github.com/awslabs/ar-ir-tools/analysis/dataflow"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

// ID is the analysis id under which intra-procedural results are stored.
const ID = "constprop"

// CanHoldInt reports whether the variable participates in the integer lattice.
func CanHoldInt(v *ir.Var) bool {
	return ir.IsIntLike(v.Type)
}

// Analysis is the intra-procedural constant propagation. It implements
// dataflow.Analysis.
type Analysis struct{}

// IsForward returns true.
func (Analysis) IsForward() bool { return true }

// NewBoundaryFact binds every integer-typed parameter to NAC: nothing is known
// about callers in the intra-procedural setting.
func (Analysis) NewBoundaryFact(g *cfg.CFG) *Fact {
	fact := NewFact()
	for _, param := range g.IR().Params {
		if CanHoldInt(param) {
			fact.Update(param, NAC())
		}
	}
	return fact
}

// NewInitialFact returns the empty fact.
func (Analysis) NewInitialFact() *Fact {
	return NewFact()
}

// MeetInto joins fact into target pointwise.
func (Analysis) MeetInto(fact *Fact, target *Fact) {
	fact.ForEach(func(v *ir.Var, val Value) {
		target.Update(v, MeetValue(val, target.Get(v)))
	})
}

// TransferNode evaluates definitions of integer-typed variables and passes
// everything else through. It reports whether the out-fact changed.
func (Analysis) TransferNode(stmt ir.Stmt, in *Fact, out *Fact) bool {
	newOut := in.Copy()
	if def, ok := stmt.(ir.DefinitionStmt); ok {
		if lhs := def.LValue(); lhs != nil && CanHoldInt(lhs) {
			newOut.Update(lhs, Evaluate(def.RValue(), in))
		}
	}
	return out.CopyFrom(newOut)
}

// Evaluate computes the lattice value of exp under the fact in. Unknown or
// heap-dependent expressions evaluate to NAC; the interprocedural variant
// refines loads through a LoadRefiner (see refine.go).
func Evaluate(exp ir.Exp, in *Fact) Value {
	switch e := exp.(type) {
	case *ir.IntLiteral:
		return MakeConstant(e.Value)
	case *ir.Var:
		return in.Get(e)
	case *ir.ArithmeticExp:
		return evaluateArithmetic(e, in)
	case *ir.ConditionExp:
		v1, v2 := in.Get(e.Operand1), in.Get(e.Operand2)
		if v1.IsConstant() && v2.IsConstant() {
			return foldCondition(e.Op, v1.Constant(), v2.Constant())
		}
		return meetOperands(v1, v2)
	case *ir.ShiftExp:
		v1, v2 := in.Get(e.Operand1), in.Get(e.Operand2)
		if v1.IsConstant() && v2.IsConstant() {
			return foldShift(e.Op, v1.Constant(), v2.Constant())
		}
		return meetOperands(v1, v2)
	case *ir.BitwiseExp:
		v1, v2 := in.Get(e.Operand1), in.Get(e.Operand2)
		if v1.IsConstant() && v2.IsConstant() {
			return foldBitwise(e.Op, v1.Constant(), v2.Constant())
		}
		return meetOperands(v1, v2)
	default:
		// field access, array access, invocation, allocation, cast
		return NAC()
	}
}

func evaluateArithmetic(e *ir.ArithmeticExp, in *Fact) Value {
	v1, v2 := in.Get(e.Operand1), in.Get(e.Operand2)
	if (e.Op == ir.Div || e.Op == ir.Rem) && v2.IsConstant() && v2.Constant() == 0 {
		// division by zero traps; the result never flows anywhere
		return Undef()
	}
	if v1.IsConstant() && v2.IsConstant() {
		return foldArithmetic(e.Op, v1.Constant(), v2.Constant())
	}
	return meetOperands(v1, v2)
}

// meetOperands implements the NAC/UNDEF rule for non-foldable operand pairs.
func meetOperands(v1, v2 Value) Value {
	if v1.IsNAC() || v2.IsNAC() {
		return NAC()
	}
	return Undef()
}

func foldArithmetic(op ir.ArithmeticOp, a, b int32) Value {
	switch op {
	case ir.Add:
		return MakeConstant(a + b)
	case ir.Sub:
		return MakeConstant(a - b)
	case ir.Mul:
		return MakeConstant(a * b)
	case ir.Div:
		return MakeConstant(a / b)
	default:
		return MakeConstant(a % b)
	}
}

func foldCondition(op ir.ConditionOp, a, b int32) Value {
	var holds bool
	switch op {
	case ir.Eq:
		holds = a == b
	case ir.Ne:
		holds = a != b
	case ir.Lt:
		holds = a < b
	case ir.Le:
		holds = a <= b
	case ir.Gt:
		holds = a > b
	default:
		holds = a >= b
	}
	if holds {
		return MakeConstant(1)
	}
	return MakeConstant(0)
}

func foldShift(op ir.ShiftOp, a, b int32) Value {
	// shift amounts are masked to the low five bits, as for 32-bit values
	shift := uint32(b) & 31
	switch op {
	case ir.Shl:
		return MakeConstant(a << shift)
	case ir.Shr:
		return MakeConstant(a >> shift)
	default:
		return MakeConstant(int32(uint32(a) >> shift))
	}
}

func foldBitwise(op ir.BitwiseOp, a, b int32) Value {
	switch op {
	case ir.And:
		return MakeConstant(a & b)
	case ir.Or:
		return MakeConstant(a | b)
	default:
		return MakeConstant(a ^ b)
	}
}

// Run solves the intra-procedural analysis for one method body and stores the
// result on it.
func Run(body *ir.IR) *dataflow.Result[*Fact] {
	result := dataflow.Solve[*Fact](Analysis{}, cfg.New(body))
	body.StoreResult(ID, result)
	return result
}
