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

// Package constprop implements constant propagation over the three-point
// lattice UNDEF ⊑ CONST(c) ⊑ NAC, intra-procedurally and lifted to the ICFG.
// Only variables of narrow integer type participate; constants are 32-bit
// two's-complement integers.
package constprop

import "fmt"

type valueKind int

const (
	undef valueKind = iota
	constant
	nac
)

// Value is an element of the constant propagation lattice.
type Value struct {
	kind valueKind
	c    int32
}

// Undef returns the bottom element: no value reaches the point.
func Undef() Value { return Value{kind: undef} }

// NAC returns the top element: not a constant.
func NAC() Value { return Value{kind: nac} }

// MakeConstant returns the lattice element for the constant c.
func MakeConstant(c int32) Value { return Value{kind: constant, c: c} }

// IsUndef reports whether v is the bottom element.
func (v Value) IsUndef() bool { return v.kind == undef }

// IsConstant reports whether v is a constant.
func (v Value) IsConstant() bool { return v.kind == constant }

// IsNAC reports whether v is the top element.
func (v Value) IsNAC() bool { return v.kind == nac }

// Constant returns the constant held by v. It is only meaningful when
// IsConstant holds.
func (v Value) Constant() int32 { return v.c }

func (v Value) String() string {
	switch v.kind {
	case undef:
		return "UNDEF"
	case nac:
		return "NAC"
	default:
		return fmt.Sprintf("%d", v.c)
	}
}

// MeetValue joins two lattice values: UNDEF is the identity, NAC absorbs, and
// two distinct constants join to NAC.
func MeetValue(v1, v2 Value) Value {
	if v1.IsUndef() {
		return v2
	}
	if v2.IsUndef() {
		return v1
	}
	if v1.IsConstant() && v2.IsConstant() && v1.c == v2.c {
		return v1
	}
	return NAC()
}
