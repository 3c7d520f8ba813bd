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

// Type is the type of a variable, field or expression in the IR. The set of
// types is closed: primitive types, class types and array types.
type Type interface {
	String() string
}

// PrimitiveType is one of the built-in value types of the input language.
type PrimitiveType int

// The primitive types. Narrow integer types (byte through boolean) are the only
// types the constant propagation lattice tracks.
const (
	Byte PrimitiveType = iota
	Short
	Int
	Char
	Boolean
	Long
	Float
	Double
	Void
)

var primitiveNames = [...]string{"byte", "short", "int", "char", "boolean", "long", "float", "double", "void"}

func (t PrimitiveType) String() string {
	if int(t) < len(primitiveNames) {
		return primitiveNames[t]
	}
	return fmt.Sprintf("primitive(%d)", int(t))
}

// IsIntLike reports whether t is a primitive type whose values fit the 32-bit
// integer lattice: byte, short, int, char and boolean.
func IsIntLike(t Type) bool {
	p, ok := t.(PrimitiveType)
	if !ok {
		return false
	}
	switch p {
	case Byte, Short, Int, Char, Boolean:
		return true
	}
	return false
}

// ClassType is the type of instances of a class or interface.
type ClassType struct {
	Class *Class
}

func (t ClassType) String() string {
	return t.Class.Name
}

// ArrayType is the type of arrays with the given element type.
type ArrayType struct {
	Elem Type
}

func (t ArrayType) String() string {
	return t.Elem.String() + "[]"
}

// ParsePrimitive returns the primitive type named s, if any.
func ParsePrimitive(s string) (PrimitiveType, bool) {
	for i, name := range primitiveNames {
		if s == name {
			return PrimitiveType(i), true
		}
	}
	return 0, false
}
