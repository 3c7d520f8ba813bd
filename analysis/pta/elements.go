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
	"fmt"

	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

// Pointer is a node of the pointer-flow graph. Every pointer owns a mutable
// points-to set. The variants are *CSVar, *StaticField, *InstanceField and
// *ArrayIndex.
type Pointer interface {
	PointsToSet() *PointsToSet
	String() string
}

// CSObj is a context-sensitive object: a heap context paired with an abstract
// object. CSObj values are canonicalized by the CSManager and carry a dense id
// for points-to set storage.
type CSObj struct {
	Context *Context
	Obj     *Obj

	id int
}

func (o *CSObj) String() string {
	return fmt.Sprintf("%s:%s", o.Context, o.Obj)
}

// CSVar is a context-sensitive local variable pointer.
type CSVar struct {
	Context *Context
	Var     *ir.Var

	pts *PointsToSet
}

// PointsToSet returns the pointer's points-to set.
func (p *CSVar) PointsToSet() *PointsToSet { return p.pts }

func (p *CSVar) String() string {
	return fmt.Sprintf("%s:%s.%s", p.Context, p.Var.Method.Signature(), p.Var.Name)
}

// StaticField is the pointer of one static field. Static fields carry no
// context.
type StaticField struct {
	Field *ir.FieldRef

	pts *PointsToSet
}

// PointsToSet returns the pointer's points-to set.
func (p *StaticField) PointsToSet() *PointsToSet { return p.pts }

func (p *StaticField) String() string { return p.Field.String() }

// InstanceField is the pointer of field Field of the object Base.
type InstanceField struct {
	Base  *CSObj
	Field *ir.FieldRef

	pts *PointsToSet
}

// PointsToSet returns the pointer's points-to set.
func (p *InstanceField) PointsToSet() *PointsToSet { return p.pts }

func (p *InstanceField) String() string {
	return fmt.Sprintf("%s.%s", p.Base, p.Field.Name)
}

// ArrayIndex is the pointer abstracting all elements of the array object Base.
type ArrayIndex struct {
	Base *CSObj

	pts *PointsToSet
}

// PointsToSet returns the pointer's points-to set.
func (p *ArrayIndex) PointsToSet() *PointsToSet { return p.pts }

func (p *ArrayIndex) String() string {
	return fmt.Sprintf("%s[*]", p.Base)
}

// CSCallSite is a context-sensitive call site.
type CSCallSite struct {
	Context *Context
	Site    *ir.Invoke
}

func (c *CSCallSite) String() string {
	return fmt.Sprintf("%s:%s", c.Context, c.Site)
}

// CSMethod is a context-sensitive method.
type CSMethod struct {
	Context *Context
	Method  *ir.Method
}

func (m *CSMethod) String() string {
	return fmt.Sprintf("%s:%s", m.Context, m.Method.Signature())
}

type varCtxKey struct {
	v *ir.Var
	c *Context
}

type objCtxKey struct {
	o *Obj
	c *Context
}

type fieldObjKey struct {
	o *CSObj
	f *ir.FieldRef
}

type siteCtxKey struct {
	s *ir.Invoke
	c *Context
}

type methodCtxKey struct {
	m *ir.Method
	c *Context
}

// CSManager canonicalizes context-sensitive elements: equal (context, element)
// keys always return the same instance. It owns all canonicalized elements for
// the lifetime of the analysis run.
type CSManager struct {
	csVars         map[varCtxKey]*CSVar
	csObjs         map[objCtxKey]*CSObj
	objsByID       []*CSObj
	staticFields   map[*ir.FieldRef]*StaticField
	instanceFields map[fieldObjKey]*InstanceField
	arrayIndexes   map[*CSObj]*ArrayIndex
	csCallSites    map[siteCtxKey]*CSCallSite
	csMethods      map[methodCtxKey]*CSMethod

	// varIndex collects the context-sensitive variants of each variable, for
	// context-collapsed queries.
	varIndex map[*ir.Var][]*CSVar
}

// NewCSManager returns an empty manager.
func NewCSManager() *CSManager {
	return &CSManager{
		csVars:         map[varCtxKey]*CSVar{},
		csObjs:         map[objCtxKey]*CSObj{},
		staticFields:   map[*ir.FieldRef]*StaticField{},
		instanceFields: map[fieldObjKey]*InstanceField{},
		arrayIndexes:   map[*CSObj]*ArrayIndex{},
		csCallSites:    map[siteCtxKey]*CSCallSite{},
		csMethods:      map[methodCtxKey]*CSMethod{},
		varIndex:       map[*ir.Var][]*CSVar{},
	}
}

// CSVarOf returns the canonical context-sensitive variable pointer.
func (m *CSManager) CSVarOf(c *Context, v *ir.Var) *CSVar {
	key := varCtxKey{v: v, c: c}
	if p, ok := m.csVars[key]; ok {
		return p
	}
	p := &CSVar{Context: c, Var: v, pts: m.NewPointsToSet()}
	m.csVars[key] = p
	m.varIndex[v] = append(m.varIndex[v], p)
	return p
}

// CSVarsOf returns every context-sensitive variant of v created so far.
func (m *CSManager) CSVarsOf(v *ir.Var) []*CSVar {
	return m.varIndex[v]
}

// CSObjOf returns the canonical context-sensitive object.
func (m *CSManager) CSObjOf(heapCtx *Context, o *Obj) *CSObj {
	key := objCtxKey{o: o, c: heapCtx}
	if cso, ok := m.csObjs[key]; ok {
		return cso
	}
	cso := &CSObj{Context: heapCtx, Obj: o, id: len(m.objsByID)}
	m.csObjs[key] = cso
	m.objsByID = append(m.objsByID, cso)
	return cso
}

// StaticFieldOf returns the canonical static field pointer.
func (m *CSManager) StaticFieldOf(f *ir.FieldRef) *StaticField {
	if p, ok := m.staticFields[f]; ok {
		return p
	}
	p := &StaticField{Field: f, pts: m.NewPointsToSet()}
	m.staticFields[f] = p
	return p
}

// InstanceFieldOf returns the canonical instance field pointer.
func (m *CSManager) InstanceFieldOf(base *CSObj, f *ir.FieldRef) *InstanceField {
	key := fieldObjKey{o: base, f: f}
	if p, ok := m.instanceFields[key]; ok {
		return p
	}
	p := &InstanceField{Base: base, Field: f, pts: m.NewPointsToSet()}
	m.instanceFields[key] = p
	return p
}

// ArrayIndexOf returns the canonical array element pointer.
func (m *CSManager) ArrayIndexOf(base *CSObj) *ArrayIndex {
	if p, ok := m.arrayIndexes[base]; ok {
		return p
	}
	p := &ArrayIndex{Base: base, pts: m.NewPointsToSet()}
	m.arrayIndexes[base] = p
	return p
}

// CSCallSiteOf returns the canonical context-sensitive call site.
func (m *CSManager) CSCallSiteOf(c *Context, s *ir.Invoke) *CSCallSite {
	key := siteCtxKey{s: s, c: c}
	if cs, ok := m.csCallSites[key]; ok {
		return cs
	}
	cs := &CSCallSite{Context: c, Site: s}
	m.csCallSites[key] = cs
	return cs
}

// CSMethodOf returns the canonical context-sensitive method.
func (m *CSManager) CSMethodOf(c *Context, method *ir.Method) *CSMethod {
	key := methodCtxKey{m: method, c: c}
	if cm, ok := m.csMethods[key]; ok {
		return cm
	}
	cm := &CSMethod{Context: c, Method: method}
	m.csMethods[key] = cm
	return cm
}
