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

import "testing"

func setOf(xs ...int) *SetFact[int] {
	s := NewSetFact[int]()
	for _, x := range xs {
		s.Add(x)
	}
	return s
}

func TestSetFactUnionLaws(t *testing.T) {
	a := setOf(1, 2)
	b := setOf(2, 3)

	// idempotent
	aa := a.Copy()
	aa.Union(a)
	if !aa.Equal(a) {
		t.Errorf("union not idempotent")
	}

	// commutative
	ab := a.Copy()
	ab.Union(b)
	ba := b.Copy()
	ba.Union(a)
	if !ab.Equal(ba) {
		t.Errorf("union not commutative")
	}

	// associative
	c := setOf(3, 4)
	left := a.Copy()
	left.Union(b)
	left.Union(c)
	bc := b.Copy()
	bc.Union(c)
	right := a.Copy()
	right.Union(bc)
	if !left.Equal(right) {
		t.Errorf("union not associative")
	}
}

func TestSetFactChangeDetection(t *testing.T) {
	s := setOf(1)
	if s.Add(1) {
		t.Errorf("adding a present element reported change")
	}
	if !s.Add(2) {
		t.Errorf("adding a new element reported no change")
	}
	if s.Set(setOf(1, 2)) {
		t.Errorf("setting identical contents reported change")
	}
	if !s.Set(setOf(5)) {
		t.Errorf("setting different contents reported no change")
	}
	if !s.Remove(5) || s.Remove(5) {
		t.Errorf("remove change reporting wrong")
	}
}

func TestWorklistDeduplicates(t *testing.T) {
	w := newWorklist[int]()
	w.add(1)
	w.add(1)
	w.add(2)
	if got := w.poll(); got != 1 {
		t.Fatalf("poll = %d, want 1", got)
	}
	if got := w.poll(); got != 2 {
		t.Fatalf("poll = %d, want 2", got)
	}
	if !w.empty() {
		t.Errorf("worklist should be empty: duplicate was queued")
	}
	// re-adding after poll works
	w.add(1)
	if w.empty() {
		t.Errorf("re-added element missing")
	}
}
