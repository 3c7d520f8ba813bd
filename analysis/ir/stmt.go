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

// Stmt is a statement of the IR. The set of statement kinds is closed; analyses
// dispatch with exhaustive type switches. The variants are:
// *Nop, *Assign, *Copy, *New, *LoadField, *StoreField, *LoadArray, *StoreArray,
// *Invoke, *If, *Goto, *Switch, *Return.
type Stmt interface {
	// Index is the position of the statement in its method's statement list.
	Index() int

	// Uses returns the variables the statement reads.
	Uses() []*Var

	// Def returns the variable the statement writes, if it writes one.
	Def() (*Var, bool)

	String() string

	setIndex(int)
}

// DefinitionStmt is implemented by statements of the general assignment form
// lvalue := rvalue: *Assign, *Copy, *New, *LoadField, *LoadArray and *Invoke
// (with a result). The constant propagation transfer observes statements
// through this interface.
type DefinitionStmt interface {
	Stmt

	// LValue returns the assigned variable; nil when the statement has no
	// variable definition (e.g. an Invoke without result).
	LValue() *Var

	// RValue returns the assigned expression.
	RValue() Exp
}

type stmtIndex struct {
	index int
}

func (s *stmtIndex) Index() int     { return s.index }
func (s *stmtIndex) setIndex(i int) { s.index = i }

// Nop does nothing. The CFG uses Nop values as its virtual entry and exit
// nodes.
type Nop struct {
	stmtIndex
}

// Uses returns no variables.
func (s *Nop) Uses() []*Var { return nil }

// Def returns no definition.
func (s *Nop) Def() (*Var, bool) { return nil, false }

func (s *Nop) String() string { return "nop" }

// Assign is the general assignment x := e for pure expressions: literals,
// binary expressions and casts.
type Assign struct {
	stmtIndex
	LHS *Var
	RHS Exp
}

// LValue returns the assigned variable.
func (s *Assign) LValue() *Var { return s.LHS }

// RValue returns the assigned expression.
func (s *Assign) RValue() Exp { return s.RHS }

// Uses returns the variables of the right-hand side.
func (s *Assign) Uses() []*Var { return s.RHS.Uses() }

// Def returns the assigned variable.
func (s *Assign) Def() (*Var, bool) { return s.LHS, true }

func (s *Assign) String() string { return fmt.Sprintf("%s = %s", s.LHS, s.RHS) }

// Copy is the variable-to-variable assignment x := y.
type Copy struct {
	stmtIndex
	LHS *Var
	RHS *Var
}

// LValue returns the assigned variable.
func (s *Copy) LValue() *Var { return s.LHS }

// RValue returns the copied variable.
func (s *Copy) RValue() Exp { return s.RHS }

// Uses returns the copied variable.
func (s *Copy) Uses() []*Var { return []*Var{s.RHS} }

// Def returns the assigned variable.
func (s *Copy) Def() (*Var, bool) { return s.LHS, true }

func (s *Copy) String() string { return fmt.Sprintf("%s = %s", s.LHS, s.RHS) }

// New is an allocation x := new T. The statement itself is the allocation
// site: the heap abstraction keys objects by *New identity.
type New struct {
	stmtIndex
	LHS *Var
	Exp *NewExp
}

// LValue returns the assigned variable.
func (s *New) LValue() *Var { return s.LHS }

// RValue returns the allocation expression.
func (s *New) RValue() Exp { return s.Exp }

// Uses returns no variables.
func (s *New) Uses() []*Var { return nil }

// Def returns the assigned variable.
func (s *New) Def() (*Var, bool) { return s.LHS, true }

func (s *New) String() string { return fmt.Sprintf("%s = %s", s.LHS, s.Exp) }

// LoadField is x := b.f or x := C.f.
type LoadField struct {
	stmtIndex
	LHS    *Var
	Access *FieldAccess
}

// IsStatic reports whether the load reads a static field.
func (s *LoadField) IsStatic() bool { return s.Access.Base == nil }

// FieldRef returns the accessed field.
func (s *LoadField) FieldRef() *FieldRef { return s.Access.Field }

// LValue returns the assigned variable.
func (s *LoadField) LValue() *Var { return s.LHS }

// RValue returns the field access expression.
func (s *LoadField) RValue() Exp { return s.Access }

// Uses returns the base variable, if any.
func (s *LoadField) Uses() []*Var { return s.Access.Uses() }

// Def returns the assigned variable.
func (s *LoadField) Def() (*Var, bool) { return s.LHS, true }

func (s *LoadField) String() string { return fmt.Sprintf("%s = %s", s.LHS, s.Access) }

// StoreField is b.f := y or C.f := y.
type StoreField struct {
	stmtIndex
	Access *FieldAccess
	RHS    *Var
}

// IsStatic reports whether the store writes a static field.
func (s *StoreField) IsStatic() bool { return s.Access.Base == nil }

// FieldRef returns the accessed field.
func (s *StoreField) FieldRef() *FieldRef { return s.Access.Field }

// Uses returns the base variable (if any) and the stored variable.
func (s *StoreField) Uses() []*Var { return append(s.Access.Uses(), s.RHS) }

// Def returns no definition: the store writes the heap, not a variable.
func (s *StoreField) Def() (*Var, bool) { return nil, false }

func (s *StoreField) String() string { return fmt.Sprintf("%s = %s", s.Access, s.RHS) }

// LoadArray is x := a[i].
type LoadArray struct {
	stmtIndex
	LHS    *Var
	Access *ArrayAccess
}

// LValue returns the assigned variable.
func (s *LoadArray) LValue() *Var { return s.LHS }

// RValue returns the array access expression.
func (s *LoadArray) RValue() Exp { return s.Access }

// Uses returns the base and index variables.
func (s *LoadArray) Uses() []*Var { return s.Access.Uses() }

// Def returns the assigned variable.
func (s *LoadArray) Def() (*Var, bool) { return s.LHS, true }

func (s *LoadArray) String() string { return fmt.Sprintf("%s = %s", s.LHS, s.Access) }

// StoreArray is a[i] := y.
type StoreArray struct {
	stmtIndex
	Access *ArrayAccess
	RHS    *Var
}

// Uses returns the base, index and stored variables.
func (s *StoreArray) Uses() []*Var { return append(s.Access.Uses(), s.RHS) }

// Def returns no definition.
func (s *StoreArray) Def() (*Var, bool) { return nil, false }

func (s *StoreArray) String() string { return fmt.Sprintf("%s = %s", s.Access, s.RHS) }

// Invoke is a call r := m(...), possibly without a result.
type Invoke struct {
	stmtIndex

	// Result is the variable receiving the call result, or nil.
	Result *Var

	Exp *InvokeExp
}

// IsStatic reports whether the call has no receiver.
func (s *Invoke) IsStatic() bool { return s.Exp.IsStatic() }

// InvokeExp returns the invocation expression.
func (s *Invoke) InvokeExp() *InvokeExp { return s.Exp }

// MethodRef returns the statically named callee.
func (s *Invoke) MethodRef() *MethodRef { return s.Exp.MethodRef }

// LValue returns the result variable, or nil.
func (s *Invoke) LValue() *Var { return s.Result }

// RValue returns the invocation expression.
func (s *Invoke) RValue() Exp { return s.Exp }

// Uses returns the receiver (if any) and the arguments.
func (s *Invoke) Uses() []*Var { return s.Exp.Uses() }

// Def returns the result variable, if the call has one.
func (s *Invoke) Def() (*Var, bool) { return s.Result, s.Result != nil }

func (s *Invoke) String() string {
	if s.Result == nil {
		return s.Exp.String()
	}
	return fmt.Sprintf("%s = %s", s.Result, s.Exp)
}

// If branches to Target when the condition holds, and falls through otherwise.
type If struct {
	stmtIndex
	Cond   *ConditionExp
	Target Stmt
}

// Uses returns the condition operands.
func (s *If) Uses() []*Var { return s.Cond.Uses() }

// Def returns no definition.
func (s *If) Def() (*Var, bool) { return nil, false }

func (s *If) String() string { return fmt.Sprintf("if %s goto %d", s.Cond, s.Target.Index()) }

// Goto jumps unconditionally to Target.
type Goto struct {
	stmtIndex
	Target Stmt
}

// Uses returns no variables.
func (s *Goto) Uses() []*Var { return nil }

// Def returns no definition.
func (s *Goto) Def() (*Var, bool) { return nil, false }

func (s *Goto) String() string { return fmt.Sprintf("goto %d", s.Target.Index()) }

// SwitchCase is one labeled branch of a Switch.
type SwitchCase struct {
	Value  int32
	Target Stmt
}

// Switch branches on an integer variable over labeled cases, with a default
// target.
type Switch struct {
	stmtIndex
	Var           *Var
	Cases         []SwitchCase
	DefaultTarget Stmt
}

// Uses returns the tested variable.
func (s *Switch) Uses() []*Var { return []*Var{s.Var} }

// Def returns no definition.
func (s *Switch) Def() (*Var, bool) { return nil, false }

func (s *Switch) String() string { return fmt.Sprintf("switch %s (%d cases)", s.Var, len(s.Cases)) }

// Return exits the method, optionally yielding a variable.
type Return struct {
	stmtIndex

	// Var is the returned variable, or nil for void returns.
	Var *Var
}

// Uses returns the returned variable, if any.
func (s *Return) Uses() []*Var {
	if s.Var == nil {
		return nil
	}
	return []*Var{s.Var}
}

// Def returns no definition.
func (s *Return) Def() (*Var, bool) { return nil, false }

func (s *Return) String() string {
	if s.Var == nil {
		return "return"
	}
	return fmt.Sprintf("return %s", s.Var)
}
