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

// Package dataflow implements the generic monotone worklist solvers the
// analyses are built on: an intra-procedural solver over a CFG and an
// interprocedural solver over an ICFG. Facts are opaque to the solvers; an
// analysis supplies its lattice through the capability interfaces below.
package dataflow

import (
	"github.com/awslabs/ar-ir-tools/analysis/cfg"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

// Analysis is the capability contract of an intra-procedural dataflow
// analysis with facts of type Fact.
//
// TransferNode mutates the node's out-fact (in-fact for backward analyses) in
// place and reports whether it changed. The solver guarantees that the fact
// being written is distinct storage from the facts being read.
type Analysis[Fact any] interface {
	// IsForward reports the direction of the analysis.
	IsForward() bool

	// NewBoundaryFact returns the fact holding at the boundary: the entry for
	// forward analyses, the exit for backward ones.
	NewBoundaryFact(g *cfg.CFG) Fact

	// NewInitialFact returns the initial fact of every non-boundary node.
	NewInitialFact() Fact

	// MeetInto meets fact into target, mutating target.
	MeetInto(fact Fact, target Fact)

	// TransferNode applies the node's transfer function and reports whether the
	// output fact changed.
	TransferNode(node ir.Stmt, in Fact, out Fact) bool
}

// InterAnalysis is the capability contract of an interprocedural dataflow
// analysis. Facts flow along ICFG edges: the solver applies TransferEdge to
// each predecessor's out-fact before meeting the results into the node's
// in-fact.
type InterAnalysis[Fact any] interface {
	// NewBoundaryFact returns the fact at an entry method's entry node.
	NewBoundaryFact(entry ir.Stmt) Fact

	// NewInitialFact returns the initial fact of every other node.
	NewInitialFact() Fact

	// MeetInto meets fact into target, mutating target.
	MeetInto(fact Fact, target Fact)

	// TransferNode applies the node transfer and reports whether the output
	// fact changed.
	TransferNode(node ir.Stmt, in Fact, out Fact) bool

	// TransferEdge derives the fact flowing along edge from the edge source's
	// out-fact, returning a new fact.
	TransferEdge(edge *cfg.ICFGEdge, out Fact) Fact
}

// Result maps each node to its in- and out-facts.
type Result[Fact any] struct {
	in  map[ir.Stmt]Fact
	out map[ir.Stmt]Fact
}

// NewResult returns an empty result.
func NewResult[Fact any]() *Result[Fact] {
	return &Result[Fact]{in: map[ir.Stmt]Fact{}, out: map[ir.Stmt]Fact{}}
}

// InFact returns the in-fact of n.
func (r *Result[Fact]) InFact(n ir.Stmt) Fact { return r.in[n] }

// OutFact returns the out-fact of n.
func (r *Result[Fact]) OutFact(n ir.Stmt) Fact { return r.out[n] }

// SetInFact sets the in-fact of n.
func (r *Result[Fact]) SetInFact(n ir.Stmt, f Fact) { r.in[n] = f }

// SetOutFact sets the out-fact of n.
func (r *Result[Fact]) SetOutFact(n ir.Stmt, f Fact) { r.out[n] = f }
