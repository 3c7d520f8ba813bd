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
	"github.com/awslabs/ar-ir-tools/analysis/dataflow"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

// AliasOracle answers may-alias queries between base variables. The pointer
// analysis result satisfies this interface.
type AliasOracle interface {
	// MayAlias reports whether the two variables may point to a common object.
	MayAlias(a, b *ir.Var) bool
}

// LoadRefiner evaluates field and array loads by joining the values written by
// the stores that may reach them, instead of going straight to NAC. Instance
// field stores are filtered by the alias oracle; array stores additionally by
// index comparison.
type LoadRefiner struct {
	aliases AliasOracle

	staticStores   map[*ir.FieldRef][]*ir.StoreField
	instanceStores map[*ir.FieldRef][]*ir.StoreField
	arrayStores    []*ir.StoreArray

	result *dataflow.Result[*Fact]

	// deps maps a store statement to the load statements whose evaluation read
	// its out-fact.
	deps map[ir.Stmt]map[ir.Stmt]bool
}

// NewLoadRefiner indexes the store statements of all given methods.
func NewLoadRefiner(methods []*ir.Method, aliases AliasOracle) *LoadRefiner {
	r := &LoadRefiner{
		aliases:        aliases,
		staticStores:   map[*ir.FieldRef][]*ir.StoreField{},
		instanceStores: map[*ir.FieldRef][]*ir.StoreField{},
		deps:           map[ir.Stmt]map[ir.Stmt]bool{},
	}
	for _, m := range methods {
		if m.IR == nil {
			continue
		}
		for _, s := range m.IR.Stmts {
			switch s := s.(type) {
			case *ir.StoreField:
				if s.IsStatic() {
					r.staticStores[s.FieldRef()] = append(r.staticStores[s.FieldRef()], s)
				} else {
					r.instanceStores[s.FieldRef()] = append(r.instanceStores[s.FieldRef()], s)
				}
			case *ir.StoreArray:
				r.arrayStores = append(r.arrayStores, s)
			}
		}
	}
	return r
}

func (r *LoadRefiner) bindResult(result *dataflow.Result[*Fact]) {
	r.result = result
}

func (r *LoadRefiner) dependentsOf(n ir.Stmt) []ir.Stmt {
	var loads []ir.Stmt
	for load := range r.deps[n] {
		loads = append(loads, load)
	}
	return loads
}

func (r *LoadRefiner) recordDep(store ir.Stmt, load ir.Stmt) {
	m := r.deps[store]
	if m == nil {
		m = map[ir.Stmt]bool{}
		r.deps[store] = m
	}
	m[load] = true
}

// outFactOf returns the current out-fact of a store, empty when the solver has
// not reached it yet.
func (r *LoadRefiner) outFactOf(store ir.Stmt) *Fact {
	if r.result == nil {
		return NewFact()
	}
	if fact := r.result.OutFact(store); fact != nil {
		return fact
	}
	return NewFact()
}

// evaluateField joins the stored values of the candidate stores of a field
// load at node.
func (r *LoadRefiner) evaluateField(node ir.Stmt, access *ir.FieldAccess) Value {
	value := Undef()
	if access.Base == nil {
		for _, store := range r.staticStores[access.Field] {
			r.recordDep(store, node)
			if CanHoldInt(store.RHS) {
				value = MeetValue(value, r.outFactOf(store).Get(store.RHS))
			}
		}
		return value
	}
	for _, store := range r.instanceStores[access.Field] {
		if !r.aliases.MayAlias(access.Base, store.Access.Base) {
			continue
		}
		r.recordDep(store, node)
		if CanHoldInt(store.RHS) {
			value = MeetValue(value, r.outFactOf(store).Get(store.RHS))
		}
	}
	return value
}

// evaluateArray joins the stored values of the candidate stores of an array
// load at node. A store is a candidate when its base may alias the load's base
// and the indices may coincide: both constant and equal, or either NAC. A
// store or load with an UNDEF index is unreachable and contributes nothing.
func (r *LoadRefiner) evaluateArray(node ir.Stmt, access *ir.ArrayAccess, in *Fact) Value {
	value := Undef()
	loadIndex := in.Get(access.Index)
	for _, store := range r.arrayStores {
		if !r.aliases.MayAlias(access.Base, store.Access.Base) {
			continue
		}
		r.recordDep(store, node)
		if !CanHoldInt(store.RHS) {
			continue
		}
		storeFact := r.outFactOf(store)
		storeIndex := storeFact.Get(store.Access.Index)
		if loadIndex.IsUndef() || storeIndex.IsUndef() {
			continue
		}
		if loadIndex.IsConstant() && storeIndex.IsConstant() &&
			loadIndex.Constant() != storeIndex.Constant() {
			continue
		}
		value = MeetValue(value, storeFact.Get(store.RHS))
	}
	return value
}
