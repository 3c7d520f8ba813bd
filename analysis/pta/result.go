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
	"github.com/awslabs/ar-ir-tools/analysis/callgraph"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

// Result is the outcome of a pointer analysis run: the points-to sets, the
// context-sensitive call graph and its context-insensitive collapse.
type Result struct {
	mgr         *CSManager
	csCallGraph *CSCallGraph
	pfg         *PointerFlowGraph
	callGraph   *callgraph.Graph
}

// Manager returns the canonicalizing manager of the run.
func (r *Result) Manager() *CSManager { return r.mgr }

// CallGraph returns the context-insensitive call graph discovered on the fly.
func (r *Result) CallGraph() *callgraph.Graph { return r.callGraph }

// CSCallGraph returns the context-sensitive call graph.
func (r *Result) CSCallGraph() *CSCallGraph { return r.csCallGraph }

// CSPointsToSetOf returns the context-sensitive objects v may point to, across
// all of v's contexts.
func (r *Result) CSPointsToSetOf(v *ir.Var) []*CSObj {
	seen := map[*CSObj]bool{}
	var objs []*CSObj
	for _, csVar := range r.mgr.CSVarsOf(v) {
		csVar.PointsToSet().ForEach(func(o *CSObj) {
			if !seen[o] {
				seen[o] = true
				objs = append(objs, o)
			}
		})
	}
	return objs
}

// PointsToSetOf returns the abstract objects v may point to, with heap
// contexts collapsed.
func (r *Result) PointsToSetOf(v *ir.Var) []*Obj {
	seen := map[*Obj]bool{}
	var objs []*Obj
	for _, cso := range r.CSPointsToSetOf(v) {
		if !seen[cso.Obj] {
			seen[cso.Obj] = true
			objs = append(objs, cso.Obj)
		}
	}
	return objs
}

// PointsToSetOfField returns the abstract objects v.f may point to: the union
// of the field points-to sets over every object v points to.
func (r *Result) PointsToSetOfField(v *ir.Var, f *ir.FieldRef) []*Obj {
	seen := map[*Obj]bool{}
	var objs []*Obj
	for _, base := range r.CSPointsToSetOf(v) {
		field := r.mgr.InstanceFieldOf(base, f)
		field.PointsToSet().ForEach(func(o *CSObj) {
			if !seen[o.Obj] {
				seen[o.Obj] = true
				objs = append(objs, o.Obj)
			}
		})
	}
	return objs
}

// MayAlias reports whether two variables may point to a common abstract
// object, heap contexts collapsed. It satisfies constprop.AliasOracle.
func (r *Result) MayAlias(a, b *ir.Var) bool {
	inA := map[*Obj]bool{}
	for _, o := range r.PointsToSetOf(a) {
		inA[o] = true
	}
	for _, o := range r.PointsToSetOf(b) {
		if inA[o] {
			return true
		}
	}
	return false
}
