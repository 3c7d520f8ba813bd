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
	"golang.org/x/tools/container/intsets"
)

// PointsToSet is a set of context-sensitive objects, stored as a sparse bit
// set over the manager's dense object ids. Points-to sets only grow during a
// solve.
type PointsToSet struct {
	mgr *CSManager
	set intsets.Sparse
}

// NewPointsToSet returns a set holding the given objects.
func (m *CSManager) NewPointsToSet(objs ...*CSObj) *PointsToSet {
	pts := &PointsToSet{mgr: m}
	for _, o := range objs {
		pts.Add(o)
	}
	return pts
}

// Add inserts o, returning true when the set changed.
func (p *PointsToSet) Add(o *CSObj) bool {
	return p.set.Insert(o.id)
}

// Contains reports membership of o.
func (p *PointsToSet) Contains(o *CSObj) bool {
	return p.set.Has(o.id)
}

// IsEmpty reports whether the set holds no objects.
func (p *PointsToSet) IsEmpty() bool {
	return p.set.IsEmpty()
}

// Len returns the number of objects.
func (p *PointsToSet) Len() int {
	return p.set.Len()
}

// Objects returns the objects in ascending id order.
func (p *PointsToSet) Objects() []*CSObj {
	var ids []int
	ids = p.set.AppendTo(ids)
	objs := make([]*CSObj, len(ids))
	for i, id := range ids {
		objs[i] = p.mgr.objsByID[id]
	}
	return objs
}

// ForEach calls f on every object in ascending id order.
func (p *PointsToSet) ForEach(f func(*CSObj)) {
	for _, o := range p.Objects() {
		f(o)
	}
}

// Copy returns a fresh set with the same objects.
func (p *PointsToSet) Copy() *PointsToSet {
	c := &PointsToSet{mgr: p.mgr}
	c.set.Copy(&p.set)
	return c
}
