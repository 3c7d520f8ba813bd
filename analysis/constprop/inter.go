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
	"github.com/awslabs/ar-ir-tools/analysis/config"
	"github.com/awslabs/ar-ir-tools/analysis/dataflow"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

// InterID is the analysis id under which interprocedural results are stored.
const InterID = "inter-constprop"

// InterAnalysis lifts constant propagation to the ICFG. Method boundaries are
// carried by edge transfers: Call edges bind parameters to argument values,
// Return edges bind the call result, and CallToReturn edges carry the caller's
// locals across the call with the result variable killed.
//
// The entry boundary fact is empty rather than parameters-at-NAC: the Call
// edge is the only source of parameter values, so entry methods keep their
// parameters UNDEF and called methods get exactly the meet of their call
// sites.
type InterAnalysis struct {
	cp Analysis

	logger *config.LogGroup

	// refiner, when non-nil, evaluates field and array loads from candidate
	// stores instead of returning NAC.
	refiner *LoadRefiner
}

// NewInterAnalysis returns the interprocedural analysis. The refiner may be
// nil, in which case loads evaluate to NAC.
func NewInterAnalysis(logger *config.LogGroup, refiner *LoadRefiner) *InterAnalysis {
	return &InterAnalysis{logger: logger, refiner: refiner}
}

// NewBoundaryFact returns the empty fact.
func (a *InterAnalysis) NewBoundaryFact(entry ir.Stmt) *Fact {
	return NewFact()
}

// NewInitialFact returns the empty fact.
func (a *InterAnalysis) NewInitialFact() *Fact {
	return NewFact()
}

// MeetInto joins fact into target pointwise.
func (a *InterAnalysis) MeetInto(fact *Fact, target *Fact) {
	a.cp.MeetInto(fact, target)
}

// BindResult gives the analysis access to the evolving result; the refiner
// reads candidate stores' out-facts through it.
func (a *InterAnalysis) BindResult(result *dataflow.Result[*Fact]) {
	if a.refiner != nil {
		a.refiner.bindResult(result)
	}
}

// DependentsOf returns the load statements whose evaluation consulted n's
// out-fact, so the solver revisits them when n changes.
func (a *InterAnalysis) DependentsOf(n ir.Stmt) []ir.Stmt {
	if a.refiner == nil {
		return nil
	}
	return a.refiner.dependentsOf(n)
}

// TransferNode is the identity at call nodes: all inter-method effect is
// carried by Call and Return edges. Other nodes use the intra transfer, with
// loads refined when a refiner is configured.
func (a *InterAnalysis) TransferNode(node ir.Stmt, in *Fact, out *Fact) bool {
	if _, isCall := node.(*ir.Invoke); isCall {
		return out.CopyFrom(in)
	}
	newOut := in.Copy()
	if def, ok := node.(ir.DefinitionStmt); ok {
		if lhs := def.LValue(); lhs != nil && CanHoldInt(lhs) {
			newOut.Update(lhs, a.evaluate(node, def.RValue(), in))
		}
	}
	return out.CopyFrom(newOut)
}

func (a *InterAnalysis) evaluate(node ir.Stmt, exp ir.Exp, in *Fact) Value {
	if a.refiner != nil {
		switch e := exp.(type) {
		case *ir.FieldAccess:
			return a.refiner.evaluateField(node, e)
		case *ir.ArrayAccess:
			return a.refiner.evaluateArray(node, e, in)
		}
	}
	return Evaluate(exp, in)
}

// TransferEdge derives the fact flowing along an ICFG edge from its source's
// out-fact.
func (a *InterAnalysis) TransferEdge(edge *cfg.ICFGEdge, out *Fact) *Fact {
	switch edge.Kind {
	case cfg.Normal:
		return out.Copy()
	case cfg.CallToReturn:
		// the result variable's value arrives along the Return edge
		newOut := out.Copy()
		if cs, ok := edge.Source.(*ir.Invoke); ok && cs.Result != nil {
			newOut.Remove(cs.Result)
		}
		return newOut
	case cfg.Call:
		return a.transferCallEdge(edge, out)
	default:
		return a.transferReturnEdge(edge, out)
	}
}

func (a *InterAnalysis) transferCallEdge(edge *cfg.ICFGEdge, callSiteOut *Fact) *Fact {
	newOut := NewFact()
	cs := edge.Source.(*ir.Invoke)
	args := cs.InvokeExp().Args
	params := edge.Callee.IR.Params
	if len(args) != len(params) {
		a.logger.Warnf("arity mismatch at %s calling %s, skipping binding", cs, edge.Callee.Signature())
		return newOut
	}
	for i, arg := range args {
		if param := params[i]; CanHoldInt(param) {
			newOut.Update(param, callSiteOut.Get(arg))
		}
	}
	return newOut
}

func (a *InterAnalysis) transferReturnEdge(edge *cfg.ICFGEdge, returnOut *Fact) *Fact {
	newOut := NewFact()
	if result := edge.CallSite.Result; result != nil && CanHoldInt(result) {
		value := Undef()
		for _, ret := range edge.ReturnVars {
			value = MeetValue(value, returnOut.Get(ret))
		}
		newOut.Update(result, value)
	}
	return newOut
}

// RunInter solves the interprocedural analysis over the ICFG and returns the
// per-node facts.
func RunInter(a *InterAnalysis, g *cfg.ICFG) *dataflow.Result[*Fact] {
	return dataflow.SolveInter[*Fact](a, g)
}
