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

// Package pta implements the inclusion-based pointer analysis: an
// Andersen-style fixpoint over a pointer-flow graph, with pluggable context
// sensitivity and an on-the-fly call graph. The context-insensitive variant is
// the solver under the empty context selector.
package pta

import (
	"fmt"

	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

// Obj is an abstract heap object. Regular objects are allocation-site
// abstractions identified by their New statement; taint objects are identified
// by the fabricating call site and their type label. Obj values are
// canonicalized by their creators, so identity is pointer identity.
type Obj struct {
	// Site is the *ir.New allocation site, or the *ir.Invoke fabricating a
	// taint object.
	Site ir.Stmt

	Type ir.Type

	// ContainerType is the class declaring the method that allocates the
	// object; type-sensitivity contexts are built from it. Nil for taint
	// objects.
	ContainerType ir.Type

	// Taint marks taint objects.
	Taint bool
}

func (o *Obj) String() string {
	if o.Taint {
		return fmt.Sprintf("taint[%s]@%d", o.Type, o.Site.Index())
	}
	return fmt.Sprintf("new %s@%d", o.Type, o.Site.Index())
}

// HeapModel abstracts concrete allocations into abstract objects.
type HeapModel interface {
	// ObjOf returns the abstract object of an allocation site, canonically.
	ObjOf(site *ir.New, in *ir.Method) *Obj
}

// AllocSiteHeapModel is the allocation-site abstraction: one object per New
// statement.
type AllocSiteHeapModel struct {
	objs map[*ir.New]*Obj
}

// NewAllocSiteHeapModel returns an empty allocation-site heap model.
func NewAllocSiteHeapModel() *AllocSiteHeapModel {
	return &AllocSiteHeapModel{objs: map[*ir.New]*Obj{}}
}

// ObjOf returns the object abstracting the given allocation site.
func (h *AllocSiteHeapModel) ObjOf(site *ir.New, in *ir.Method) *Obj {
	if o, ok := h.objs[site]; ok {
		return o
	}
	exp := site.RValue().(*ir.NewExp)
	o := &Obj{Site: site, Type: exp.Type, ContainerType: ir.ClassType{Class: in.Class}}
	h.objs[site] = o
	return o
}

// NewTaintObj returns a fresh taint object for the fabricating call site and
// type label. Callers canonicalize (site, type) pairs.
func NewTaintObj(site *ir.Invoke, typ ir.Type) *Obj {
	return &Obj{Site: site, Type: typ, Taint: true}
}
