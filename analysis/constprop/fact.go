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
	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

// Fact maps variables to lattice values. A missing key denotes UNDEF; UNDEF is
// never stored, so map equality is fact equality.
type Fact struct {
	m map[*ir.Var]Value
}

// NewFact returns an empty fact, in which every variable is UNDEF.
func NewFact() *Fact {
	return &Fact{m: map[*ir.Var]Value{}}
}

// Get returns the value of v, UNDEF when absent.
func (f *Fact) Get(v *ir.Var) Value {
	return f.m[v]
}

// Update sets the value of v, returning true when the fact changed.
func (f *Fact) Update(v *ir.Var, val Value) bool {
	old, present := f.m[v]
	if val.IsUndef() {
		if !present {
			return false
		}
		delete(f.m, v)
		return true
	}
	if present && old == val {
		return false
	}
	f.m[v] = val
	return true
}

// Remove deletes the binding of v (resetting it to UNDEF).
func (f *Fact) Remove(v *ir.Var) {
	delete(f.m, v)
}

// Copy returns a fresh fact with the same bindings.
func (f *Fact) Copy() *Fact {
	c := NewFact()
	for v, val := range f.m {
		c.m[v] = val
	}
	return c
}

// CopyFrom replaces the contents with those of other, returning true when the
// fact changed.
func (f *Fact) CopyFrom(other *Fact) bool {
	if f.Equal(other) {
		return false
	}
	f.m = map[*ir.Var]Value{}
	for v, val := range other.m {
		f.m[v] = val
	}
	return true
}

// Equal reports whether both facts hold the same bindings.
func (f *Fact) Equal(other *Fact) bool {
	if len(f.m) != len(other.m) {
		return false
	}
	for v, val := range f.m {
		if other.m[v] != val {
			return false
		}
	}
	return true
}

// ForEach calls fn on every binding, in unspecified order.
func (f *Fact) ForEach(fn func(*ir.Var, Value)) {
	for v, val := range f.m {
		fn(v, val)
	}
}
