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

import "fmt"

// Method is a method of the analyzed program. Abstract methods have a nil IR.
type Method struct {
	Class  *Class
	Name   string
	Subsig string

	ReturnType Type
	ParamTypes []Type

	IsStatic   bool
	IsAbstract bool

	IR *IR
}

// Signature returns the full signature "Class: subsignature".
func (m *Method) Signature() string {
	return fmt.Sprintf("<%s: %s>", m.Class.Name, m.Subsig)
}

func (m *Method) String() string {
	return m.Signature()
}

// Ref returns a method reference naming this method's declaring class.
func (m *Method) Ref() *MethodRef {
	return &MethodRef{Class: m.Class, Subsig: m.Subsig, ReturnType: m.ReturnType}
}

// Var is a method-local variable. Variable identity is pointer identity; two
// methods never share Var values.
type Var struct {
	Name   string
	Type   Type
	Method *Method

	// Relevant statements, populated by the IR builder. These drive the
	// pointer-analysis worklist steps on the variable.
	loadFields  []*LoadField
	storeFields []*StoreField
	loadArrays  []*LoadArray
	storeArrays []*StoreArray
	invokes     []*Invoke
}

func (v *Var) String() string {
	return v.Name
}

// LoadFields returns the instance field loads whose base is v.
func (v *Var) LoadFields() []*LoadField { return v.loadFields }

// StoreFields returns the instance field stores whose base is v.
func (v *Var) StoreFields() []*StoreField { return v.storeFields }

// LoadArrays returns the array loads whose base is v.
func (v *Var) LoadArrays() []*LoadArray { return v.loadArrays }

// StoreArrays returns the array stores whose base is v.
func (v *Var) StoreArrays() []*StoreArray { return v.storeArrays }

// Invokes returns the invocations whose receiver is v.
func (v *Var) Invokes() []*Invoke { return v.invokes }

// IR is the three-address body of a method: an ordered statement list plus the
// distinguished variables the analyses observe.
type IR struct {
	Method *Method

	Stmts []Stmt

	Params     []*Var
	ReturnVars []*Var
	This       *Var

	Vars []*Var

	// results holds analysis results keyed by analysis id.
	results map[string]any
}

// StoreResult stores an analysis result on the IR, keyed by analysis id.
func (ir *IR) StoreResult(id string, result any) {
	if ir.results == nil {
		ir.results = map[string]any{}
	}
	ir.results[id] = result
}

// Result returns the analysis result stored under id, or nil.
func (ir *IR) Result(id string) any {
	return ir.results[id]
}

// Program is a whole analyzed program: its class hierarchy and entry method.
type Program struct {
	Hierarchy *Hierarchy
	Entry     *Method

	results map[string]any
}

// NewProgram returns a program over the given hierarchy with the given entry
// method.
func NewProgram(h *Hierarchy, entry *Method) *Program {
	return &Program{Hierarchy: h, Entry: entry}
}

// StoreResult stores a whole-program analysis result keyed by analysis id.
func (p *Program) StoreResult(id string, result any) {
	if p.results == nil {
		p.results = map[string]any{}
	}
	p.results[id] = result
}

// Result returns the whole-program analysis result stored under id, or nil.
func (p *Program) Result(id string) any {
	return p.results[id]
}

// Methods returns every method with a body declared by the program's classes.
func (p *Program) Methods() []*Method {
	var ms []*Method
	for _, c := range p.Hierarchy.Classes() {
		for _, m := range c.DeclaredMethods() {
			if m.IR != nil {
				ms = append(ms, m)
			}
		}
	}
	return ms
}
