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

package callgraph

import (
	"github.com/awslabs/ar-ir-tools/analysis/config"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

// ID is the analysis id under which the CHA call graph is stored.
const ID = "cha"

// Dispatch looks up the concrete method with the given subsignature starting at
// class c and ascending the superclass chain. It returns nil when only abstract
// or no declarations exist.
func Dispatch(c *ir.Class, subsig string) *ir.Method {
	for ; c != nil; c = c.Super {
		if m := c.DeclaredMethod(subsig); m != nil && !m.IsAbstract {
			return m
		}
	}
	return nil
}

// ResolveCallee resolves the single callee of a call site given the runtime
// type of the receiver. recvType is ignored for static calls and may be nil.
// It returns nil when no concrete target exists.
func ResolveCallee(recvType ir.Type, cs *ir.Invoke) *ir.Method {
	ref := cs.MethodRef()
	switch cs.InvokeExp().Kind {
	case ir.KindStatic:
		return ref.Resolve()
	case ir.KindSpecial:
		return Dispatch(ref.Class, ref.Subsig)
	default:
		class := ref.Class
		if ct, ok := recvType.(ir.ClassType); ok {
			class = ct.Class
		}
		return Dispatch(class, ref.Subsig)
	}
}

// BuildCHA builds a call graph from the entry method by class-hierarchy
// analysis: virtual and interface call sites resolve to every concrete dispatch
// in the subtype closure of the declared class.
func BuildCHA(h *ir.Hierarchy, entry *ir.Method, logger *config.LogGroup) *Graph {
	b := &chaBuilder{hierarchy: h, logger: logger}
	return b.build(entry)
}

type chaBuilder struct {
	hierarchy *ir.Hierarchy
	logger    *config.LogGroup
}

func (b *chaBuilder) build(entry *ir.Method) *Graph {
	g := New()
	g.AddEntry(entry)
	queue := []*ir.Method{entry}
	seen := map[*ir.Method]bool{entry: true}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		g.AddReachableMethod(current)
		for _, cs := range CallSitesIn(current) {
			for _, target := range b.resolve(cs) {
				g.AddEdge(Edge{Kind: cs.InvokeExp().Kind, CallSite: cs, Callee: target})
				if !seen[target] {
					seen[target] = true
					queue = append(queue, target)
				}
			}
		}
	}
	return g
}

// resolve returns the potential targets of a call site under CHA.
func (b *chaBuilder) resolve(cs *ir.Invoke) []*ir.Method {
	ref := cs.MethodRef()
	targets := map[*ir.Method]bool{}
	switch cs.InvokeExp().Kind {
	case ir.KindStatic:
		if m := ref.Resolve(); m != nil {
			targets[m] = true
		}
	case ir.KindSpecial:
		if m := Dispatch(ref.Class, ref.Subsig); m != nil {
			targets[m] = true
		}
	case ir.KindVirtual, ir.KindInterface:
		queue := []*ir.Class{ref.Class}
		visited := map[*ir.Class]bool{ref.Class: true}
		for len(queue) > 0 {
			c := queue[0]
			queue = queue[1:]
			if m := Dispatch(c, ref.Subsig); m != nil {
				targets[m] = true
			}
			for _, sub := range b.subtypes(c) {
				if !visited[sub] {
					visited[sub] = true
					queue = append(queue, sub)
				}
			}
		}
	default:
		b.logger.Warnf("unsupported call kind %s at %s, skipping", cs.InvokeExp().Kind, cs)
	}
	if len(targets) == 0 {
		b.logger.Debugf("no dispatch target for %s", cs)
		return nil
	}
	out := make([]*ir.Method, 0, len(targets))
	for m := range targets {
		out = append(out, m)
	}
	return out
}

func (b *chaBuilder) subtypes(c *ir.Class) []*ir.Class {
	var subs []*ir.Class
	subs = append(subs, b.hierarchy.DirectSubinterfacesOf(c)...)
	subs = append(subs, b.hierarchy.DirectImplementorsOf(c)...)
	subs = append(subs, b.hierarchy.DirectSubclassesOf(c)...)
	return subs
}
