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

package dataflow

import (
	"github.com/awslabs/ar-ir-tools/analysis/cfg"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

// Solve runs the worklist solver for the analysis over the CFG and returns the
// per-node facts. Termination requires the analysis lattice to have finite
// height and the transfer functions to be monotone; the solver itself is
// agnostic to both.
func Solve[Fact any](a Analysis[Fact], g *cfg.CFG) *Result[Fact] {
	result := NewResult[Fact]()
	if a.IsForward() {
		solveForward(a, g, result)
	} else {
		solveBackward(a, g, result)
	}
	return result
}

func solveForward[Fact any](a Analysis[Fact], g *cfg.CFG, result *Result[Fact]) {
	for _, n := range g.Nodes() {
		result.SetInFact(n, a.NewInitialFact())
		result.SetOutFact(n, a.NewInitialFact())
	}
	result.SetInFact(g.Entry(), a.NewBoundaryFact(g))
	result.SetOutFact(g.Entry(), a.NewBoundaryFact(g))

	wl := newWorklist[ir.Stmt]()
	for _, n := range g.Nodes() {
		if !g.IsEntry(n) {
			wl.add(n)
		}
	}
	for !wl.empty() {
		n := wl.poll()
		in := a.NewInitialFact()
		for _, p := range g.PredsOf(n) {
			a.MeetInto(result.OutFact(p), in)
		}
		result.SetInFact(n, in)
		if a.TransferNode(n, in, result.OutFact(n)) {
			wl.addAll(g.SuccsOf(n))
		}
	}
}

func solveBackward[Fact any](a Analysis[Fact], g *cfg.CFG, result *Result[Fact]) {
	for _, n := range g.Nodes() {
		result.SetInFact(n, a.NewInitialFact())
		result.SetOutFact(n, a.NewInitialFact())
	}
	result.SetInFact(g.Exit(), a.NewBoundaryFact(g))
	result.SetOutFact(g.Exit(), a.NewBoundaryFact(g))

	wl := newWorklist[ir.Stmt]()
	for _, n := range g.Nodes() {
		if !g.IsExit(n) {
			wl.add(n)
		}
	}
	for !wl.empty() {
		n := wl.poll()
		out := a.NewInitialFact()
		for _, s := range g.SuccsOf(n) {
			a.MeetInto(result.InFact(s), out)
		}
		result.SetOutFact(n, out)
		if a.TransferNode(n, result.InFact(n), out) {
			wl.addAll(g.PredsOf(n))
		}
	}
}

// SolveInter runs the interprocedural worklist solver over the ICFG. All nodes
// start on the worklist; in-facts are recomputed from edge-transferred
// predecessor out-facts on every visit.
func SolveInter[Fact any](a InterAnalysis[Fact], g *cfg.ICFG) *Result[Fact] {
	result := NewResult[Fact]()
	for _, n := range g.Nodes() {
		result.SetInFact(n, a.NewInitialFact())
		result.SetOutFact(n, a.NewInitialFact())
	}
	boundary := map[ir.Stmt]bool{}
	for _, m := range g.EntryMethods() {
		entry := g.EntryOf(m)
		boundary[entry] = true
		result.SetInFact(entry, a.NewBoundaryFact(entry))
		result.SetOutFact(entry, a.NewBoundaryFact(entry))
	}

	if ra, ok := any(a).(ResultAware[Fact]); ok {
		ra.BindResult(result)
	}

	wl := newWorklist[ir.Stmt]()
	wl.addAll(g.Nodes())
	for !wl.empty() {
		n := wl.poll()
		in := result.InFact(n)
		if !boundary[n] {
			in = a.NewInitialFact()
			for _, e := range g.InEdgesOf(n) {
				a.MeetInto(a.TransferEdge(e, result.OutFact(e.Source)), in)
			}
			result.SetInFact(n, in)
		}
		if a.TransferNode(n, in, result.OutFact(n)) {
			wl.addAll(g.SuccsOf(n))
			if da, ok := any(a).(DependencyAware); ok {
				wl.addAll(da.DependentsOf(n))
			}
		}
	}
	return result
}

// ResultAware is implemented by interprocedural analyses that consult the
// evolving result during their transfer functions (e.g. load refinement reads
// the out-facts of candidate stores). SolveInter binds the result before
// iterating.
type ResultAware[Fact any] interface {
	BindResult(*Result[Fact])
}

// DependencyAware is implemented by interprocedural analyses whose node
// transfers read facts of nodes that are not ICFG predecessors. DependentsOf
// returns the nodes to reconsider when n's out-fact changes.
type DependencyAware interface {
	DependentsOf(n ir.Stmt) []ir.Stmt
}
