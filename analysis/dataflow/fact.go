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

package dataflow

// SetFact is a finite-set fact over elements of type T.
type SetFact[T comparable] struct {
	elems map[T]bool
}

// NewSetFact returns an empty set fact.
func NewSetFact[T comparable]() *SetFact[T] {
	return &SetFact[T]{elems: map[T]bool{}}
}

// Contains reports membership of x.
func (s *SetFact[T]) Contains(x T) bool {
	return s.elems[x]
}

// Add inserts x, returning true when the set changed.
func (s *SetFact[T]) Add(x T) bool {
	if s.elems[x] {
		return false
	}
	s.elems[x] = true
	return true
}

// Remove deletes x, returning true when the set changed.
func (s *SetFact[T]) Remove(x T) bool {
	if !s.elems[x] {
		return false
	}
	delete(s.elems, x)
	return true
}

// Union adds all elements of other, returning true when the set changed.
func (s *SetFact[T]) Union(other *SetFact[T]) bool {
	changed := false
	for x := range other.elems {
		if s.Add(x) {
			changed = true
		}
	}
	return changed
}

// Copy returns a fresh set with the same elements.
func (s *SetFact[T]) Copy() *SetFact[T] {
	c := NewSetFact[T]()
	for x := range s.elems {
		c.elems[x] = true
	}
	return c
}

// Set replaces the contents with those of other, returning true when the set
// changed.
func (s *SetFact[T]) Set(other *SetFact[T]) bool {
	if s.Equal(other) {
		return false
	}
	s.elems = map[T]bool{}
	for x := range other.elems {
		s.elems[x] = true
	}
	return true
}

// Equal reports whether both sets hold the same elements.
func (s *SetFact[T]) Equal(other *SetFact[T]) bool {
	if len(s.elems) != len(other.elems) {
		return false
	}
	for x := range s.elems {
		if !other.elems[x] {
			return false
		}
	}
	return true
}

// Size returns the number of elements.
func (s *SetFact[T]) Size() int {
	return len(s.elems)
}

// ForEach calls f on every element, in unspecified order.
func (s *SetFact[T]) ForEach(f func(T)) {
	for x := range s.elems {
		f(x)
	}
}
