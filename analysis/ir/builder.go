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

package ir

import (
	"fmt"
	"strings"
)

// Subsig formats a subsignature from a method name, return type and parameter
// types: "ret name(t1,t2)".
func Subsig(name string, ret Type, params []Type) string {
	ps := make([]string, len(params))
	for i, p := range params {
		ps[i] = p.String()
	}
	return fmt.Sprintf("%s %s(%s)", ret, name, strings.Join(ps, ","))
}

// ClassDecl describes a class to create.
type ClassDecl struct {
	Name        string
	Super       *Class
	Interfaces  []*Class
	IsInterface bool
	IsAbstract  bool
}

// Builder constructs a program: classes, fields, methods and their IR.
type Builder struct {
	hierarchy *Hierarchy
}

// NewBuilder returns a builder over a fresh hierarchy.
func NewBuilder() *Builder {
	return &Builder{hierarchy: NewHierarchy()}
}

// Hierarchy returns the hierarchy under construction.
func (b *Builder) Hierarchy() *Hierarchy {
	return b.hierarchy
}

// Class creates and registers a class. It panics on duplicate names; programs
// under construction are trusted input.
func (b *Builder) Class(decl ClassDecl) *Class {
	c := &Class{
		Name:        decl.Name,
		Super:       decl.Super,
		Interfaces:  decl.Interfaces,
		IsInterface: decl.IsInterface,
		IsAbstract:  decl.IsAbstract || decl.IsInterface,
		methods:     map[string]*Method{},
		fields:      map[string]*FieldRef{},
	}
	if err := b.hierarchy.Add(c); err != nil {
		panic(err)
	}
	return c
}

// FieldRef returns the canonical reference for the field (class, name),
// creating it on first use.
func (b *Builder) FieldRef(class *Class, name string, typ Type, isStatic bool) *FieldRef {
	if f, ok := class.fields[name]; ok {
		return f
	}
	f := &FieldRef{Class: class, Name: name, Type: typ, IsStatic: isStatic}
	class.fields[name] = f
	return f
}

// AbstractMethod declares a bodyless method on a class or interface.
func (b *Builder) AbstractMethod(class *Class, name string, ret Type, params []Type) *Method {
	m := &Method{
		Class:      class,
		Name:       name,
		Subsig:     Subsig(name, ret, params),
		ReturnType: ret,
		ParamTypes: params,
		IsAbstract: true,
	}
	class.methods[m.Subsig] = m
	return m
}

// MethodBuilder constructs one method body. Statements are appended in order;
// labels are resolved when Finish is called.
type MethodBuilder struct {
	builder *Builder
	method  *Method
	ir      *IR

	vars map[string]*Var

	// label bookkeeping: a label maps to the index of the statement that
	// follows it; branch targets are patched in Finish.
	labels  map[string]int
	patches []patch
}

type patch struct {
	stmt  Stmt
	label string
	kase  int // case index for Switch patches, -1 otherwise
}

// Method opens a method builder for a concrete method on class.
func (b *Builder) Method(class *Class, name string, ret Type, params []Type, isStatic bool) *MethodBuilder {
	m := &Method{
		Class:      class,
		Name:       name,
		Subsig:     Subsig(name, ret, params),
		ReturnType: ret,
		ParamTypes: params,
		IsStatic:   isStatic,
	}
	class.methods[m.Subsig] = m
	mb := &MethodBuilder{
		builder: b,
		method:  m,
		ir:      &IR{Method: m},
		vars:    map[string]*Var{},
		labels:  map[string]int{},
	}
	m.IR = mb.ir
	if !isStatic {
		this := mb.Var("this", ClassType{Class: class})
		mb.ir.This = this
	}
	return mb
}

// Method returns the method under construction.
func (mb *MethodBuilder) Method() *Method {
	return mb.method
}

// Var returns the variable with the given name, creating it with the given
// type on first use.
func (mb *MethodBuilder) Var(name string, typ Type) *Var {
	if v, ok := mb.vars[name]; ok {
		return v
	}
	v := &Var{Name: name, Type: typ, Method: mb.method}
	mb.vars[name] = v
	mb.ir.Vars = append(mb.ir.Vars, v)
	return v
}

// Param declares a parameter variable, in positional order.
func (mb *MethodBuilder) Param(name string, typ Type) *Var {
	v := mb.Var(name, typ)
	mb.ir.Params = append(mb.ir.Params, v)
	return v
}

// Label marks the next emitted statement as the target of the given label.
func (mb *MethodBuilder) Label(name string) {
	mb.labels[name] = len(mb.ir.Stmts)
}

func (mb *MethodBuilder) emit(s Stmt) {
	s.setIndex(len(mb.ir.Stmts))
	mb.ir.Stmts = append(mb.ir.Stmts, s)
}

// Nop emits a no-op statement.
func (mb *MethodBuilder) Nop() {
	mb.emit(&Nop{})
}

// AssignLiteral emits x = c.
func (mb *MethodBuilder) AssignLiteral(x *Var, c int32) {
	mb.emit(&Assign{LHS: x, RHS: &IntLiteral{Value: c}})
}

// Assign emits the general assignment x = e.
func (mb *MethodBuilder) Assign(x *Var, e Exp) {
	mb.emit(&Assign{LHS: x, RHS: e})
}

// Copy emits x = y.
func (mb *MethodBuilder) Copy(x, y *Var) {
	mb.emit(&Copy{LHS: x, RHS: y})
}

// New emits x = new T and returns the allocation statement.
func (mb *MethodBuilder) New(x *Var, typ Type) *New {
	s := &New{LHS: x, Exp: &NewExp{Type: typ}}
	mb.emit(s)
	return s
}

// LoadField emits x = base.f, or x = C.f when base is nil.
func (mb *MethodBuilder) LoadField(x *Var, base *Var, field *FieldRef) {
	s := &LoadField{LHS: x, Access: &FieldAccess{Base: base, Field: field}}
	mb.emit(s)
	if base != nil {
		base.loadFields = append(base.loadFields, s)
	}
}

// StoreField emits base.f = y, or C.f = y when base is nil.
func (mb *MethodBuilder) StoreField(base *Var, field *FieldRef, y *Var) {
	s := &StoreField{Access: &FieldAccess{Base: base, Field: field}, RHS: y}
	mb.emit(s)
	if base != nil {
		base.storeFields = append(base.storeFields, s)
	}
}

// LoadArray emits x = a[i].
func (mb *MethodBuilder) LoadArray(x, a, i *Var) {
	s := &LoadArray{LHS: x, Access: &ArrayAccess{Base: a, Index: i}}
	mb.emit(s)
	a.loadArrays = append(a.loadArrays, s)
}

// StoreArray emits a[i] = y.
func (mb *MethodBuilder) StoreArray(a, i, y *Var) {
	s := &StoreArray{Access: &ArrayAccess{Base: a, Index: i}, RHS: y}
	mb.emit(s)
	a.storeArrays = append(a.storeArrays, s)
}

// Invoke emits result = kind base.<ref>(args); result and base may be nil.
func (mb *MethodBuilder) Invoke(result *Var, kind InvokeKind, ref *MethodRef, base *Var, args []*Var) *Invoke {
	s := &Invoke{
		Result: result,
		Exp:    &InvokeExp{Kind: kind, MethodRef: ref, Base: base, Args: args},
	}
	mb.emit(s)
	if base != nil {
		base.invokes = append(base.invokes, s)
	}
	return s
}

// If emits if (a op b) goto label.
func (mb *MethodBuilder) If(op ConditionOp, a, b *Var, label string) {
	s := &If{Cond: &ConditionExp{Op: op, Operand1: a, Operand2: b}}
	mb.emit(s)
	mb.patches = append(mb.patches, patch{stmt: s, label: label, kase: -1})
}

// Goto emits goto label.
func (mb *MethodBuilder) Goto(label string) {
	s := &Goto{}
	mb.emit(s)
	mb.patches = append(mb.patches, patch{stmt: s, label: label, kase: -1})
}

// Switch emits switch x with the given case values and labels; defaultLabel
// is the default target.
func (mb *MethodBuilder) Switch(x *Var, values []int32, caseLabels []string, defaultLabel string) {
	s := &Switch{Var: x, Cases: make([]SwitchCase, len(values))}
	for i, v := range values {
		s.Cases[i] = SwitchCase{Value: v}
	}
	mb.emit(s)
	for i, label := range caseLabels {
		mb.patches = append(mb.patches, patch{stmt: s, label: label, kase: i})
	}
	mb.patches = append(mb.patches, patch{stmt: s, label: defaultLabel, kase: len(values)})
}

// Return emits a return, with v possibly nil for void methods.
func (mb *MethodBuilder) Return(v *Var) {
	mb.emit(&Return{Var: v})
	if v != nil {
		mb.ir.ReturnVars = append(mb.ir.ReturnVars, v)
	}
}

// Finish resolves branch labels and returns the completed method. It returns
// an error on an undefined label or a label past the last statement.
func (mb *MethodBuilder) Finish() (*Method, error) {
	for _, p := range mb.patches {
		idx, ok := mb.labels[p.label]
		if !ok {
			return nil, fmt.Errorf("%s: undefined label %q", mb.method.Signature(), p.label)
		}
		if idx >= len(mb.ir.Stmts) {
			return nil, fmt.Errorf("%s: label %q has no statement", mb.method.Signature(), p.label)
		}
		target := mb.ir.Stmts[idx]
		switch s := p.stmt.(type) {
		case *If:
			s.Target = target
		case *Goto:
			s.Target = target
		case *Switch:
			if p.kase < len(s.Cases) {
				s.Cases[p.kase].Target = target
			} else {
				s.DefaultTarget = target
			}
		}
	}
	return mb.method, nil
}

// MustFinish is Finish for fixture code that trusts its labels.
func (mb *MethodBuilder) MustFinish() *Method {
	m, err := mb.Finish()
	if err != nil {
		panic(err)
	}
	return m
}
