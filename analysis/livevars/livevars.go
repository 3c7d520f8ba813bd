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

// Package livevars implements classic live-variable analysis: a backward may
// analysis over the set lattice of method-local variables.
package livevars

import (
	"github.com/awslabs/ar-ir-tools/analysis/cfg"
	"github.com/awslabs/ar-ir-tools/analysis/dataflow"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

// ID is the analysis id under which results are stored.
const ID = "livevar"

// Fact is the set of variables live at a program point.
type Fact = *dataflow.SetFact[*ir.Var]

// Analysis is the live-variable analysis. It implements dataflow.Analysis.
type Analysis struct{}

// IsForward returns false: liveness flows against control flow.
func (Analysis) IsForward() bool { return false }

// NewBoundaryFact returns the empty set: nothing is live at the exit.
func (Analysis) NewBoundaryFact(*cfg.CFG) Fact {
	return dataflow.NewSetFact[*ir.Var]()
}

// NewInitialFact returns the empty set.
func (Analysis) NewInitialFact() Fact {
	return dataflow.NewSetFact[*ir.Var]()
}

// MeetInto unions fact into target: liveness is a may property.
func (Analysis) MeetInto(fact Fact, target Fact) {
	target.Union(fact)
}

// TransferNode computes in = (out \ def) ∪ use and reports whether in changed.
func (Analysis) TransferNode(stmt ir.Stmt, in Fact, out Fact) bool {
	newIn := out.Copy()
	if def, ok := stmt.Def(); ok {
		newIn.Remove(def)
	}
	for _, use := range stmt.Uses() {
		newIn.Add(use)
	}
	return in.Set(newIn)
}

// Run solves the analysis for one method body and stores the result on it.
func Run(body *ir.IR) *dataflow.Result[Fact] {
	result := dataflow.Solve[Fact](Analysis{}, cfg.New(body))
	body.StoreResult(ID, result)
	return result
}
