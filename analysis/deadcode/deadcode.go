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

// Package deadcode detects dead statements in a method: control-flow
// unreachable code, branches killed by constant conditions, and assignments to
// variables that are not live when the right-hand side has no side effect.
package deadcode

import (
	"sort"

	"github.com/awslabs/ar-ir-tools/analysis/cfg"
	"github.com/awslabs/ar-ir-tools/analysis/constprop"
	"github.com/awslabs/ar-ir-tools/analysis/dataflow"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/analysis/livevars"
)

// ID is the analysis id under which results are stored.
const ID = "deadcode"

// Run returns the dead statements of the method body, ordered by statement
// index. It requires the body's constant propagation and live variable
// results.
func Run(body *ir.IR, g *cfg.CFG,
	constants *dataflow.Result[*constprop.Fact],
	liveVars *dataflow.Result[livevars.Fact]) []ir.Stmt {

	dead := map[ir.Stmt]bool{}
	visited := map[ir.Stmt]bool{}
	stack := []ir.Stmt{g.Entry()}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[current] {
			continue
		}
		visited[current] = true

		if isDeadAssignment(current, liveVars) {
			dead[current] = true
		}

		switch s := current.(type) {
		case *ir.If:
			value := constprop.Evaluate(s.Cond, constants.OutFact(s))
			if value.IsConstant() {
				want := cfg.IfFalse
				if value.Constant() == 1 {
					want = cfg.IfTrue
				}
				for _, e := range g.OutEdgesOf(s) {
					if e.Kind == want {
						stack = append(stack, e.Target)
					}
				}
				continue
			}
		case *ir.Switch:
			value := constants.OutFact(s).Get(s.Var)
			if value.IsConstant() {
				target := s.DefaultTarget
				for _, c := range s.Cases {
					if c.Value == value.Constant() {
						target = c.Target
						break
					}
				}
				stack = append(stack, target)
				continue
			}
		}
		for _, next := range g.SuccsOf(current) {
			if !visited[next] {
				stack = append(stack, next)
			}
		}
	}

	for _, s := range body.Stmts {
		if !visited[s] {
			dead[s] = true
		}
	}

	out := make([]ir.Stmt, 0, len(dead))
	for s := range dead {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index() < out[j].Index() })
	return out
}

// isDeadAssignment reports whether the statement assigns a variable that is
// not live on exit with a side-effect-free right-hand side. Invocations are
// never dead assignments: the call itself is an effect.
func isDeadAssignment(s ir.Stmt, liveVars *dataflow.Result[livevars.Fact]) bool {
	if _, isCall := s.(*ir.Invoke); isCall {
		return false
	}
	def, ok := s.(ir.DefinitionStmt)
	if !ok || def.LValue() == nil {
		return false
	}
	if !hasNoSideEffect(def.RValue()) {
		return false
	}
	live := liveVars.OutFact(s)
	return live != nil && !live.Contains(def.LValue())
}

// hasNoSideEffect reports whether evaluating the expression can have no
// observable effect.
func hasNoSideEffect(rvalue ir.Exp) bool {
	switch e := rvalue.(type) {
	// allocation modifies the heap
	case *ir.NewExp:
		return false
	// cast may trigger a class-cast error
	case *ir.CastExp:
		return false
	// static field access may trigger class initialization;
	// instance field access may trigger a null-pointer error
	case *ir.FieldAccess:
		return false
	// array access may trigger null-pointer or out-of-bounds errors
	case *ir.ArrayAccess:
		return false
	case *ir.InvokeExp:
		return false
	case *ir.ArithmeticExp:
		// may trigger a division-by-zero error
		return e.Op != ir.Div && e.Op != ir.Rem
	}
	return true
}

// RunOn computes the analysis for a body from its stored constprop and livevar
// results and stores the dead statements on the body.
func RunOn(body *ir.IR) []ir.Stmt {
	g := cfg.New(body)
	constants, _ := body.Result(constprop.ID).(*dataflow.Result[*constprop.Fact])
	liveVars, _ := body.Result(livevars.ID).(*dataflow.Result[livevars.Fact])
	if constants == nil {
		constants = constprop.Run(body)
	}
	if liveVars == nil {
		liveVars = livevars.Run(body)
	}
	dead := Run(body, g, constants, liveVars)
	body.StoreResult(ID, dead)
	return dead
}
