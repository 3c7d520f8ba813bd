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
	"fmt"
	"strings"

	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

// Context is an immutable ordered list of context elements: call sites for
// call-site sensitivity, objects for object sensitivity, types for type
// sensitivity. Contexts are interned by a contextPool, so identity is pointer
// identity.
type Context struct {
	elems []any
	key   string
}

// Length returns the number of elements.
func (c *Context) Length() int { return len(c.elems) }

// ElementAt returns the i-th element, oldest first.
func (c *Context) ElementAt(i int) any { return c.elems[i] }

func (c *Context) String() string {
	if len(c.elems) == 0 {
		return "[]"
	}
	parts := make([]string, len(c.elems))
	for i, e := range c.elems {
		parts[i] = fmt.Sprintf("%v", e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// contextPool interns contexts so they can be used as map keys by identity.
type contextPool struct {
	table map[string]*Context
	empty *Context
}

func newContextPool() *contextPool {
	p := &contextPool{table: map[string]*Context{}}
	p.empty = &Context{key: ""}
	p.table[""] = p.empty
	return p
}

func (p *contextPool) make(elems []any) *Context {
	var sb strings.Builder
	for _, e := range elems {
		fmt.Fprintf(&sb, "%p;", e)
	}
	key := sb.String()
	if c, ok := p.table[key]; ok {
		return c
	}
	c := &Context{elems: elems, key: key}
	p.table[key] = c
	return c
}

// appendElem appends elem to c, truncated to the most recent k elements.
func (p *contextPool) appendElem(c *Context, elem any, k int) *Context {
	elems := append(append([]any{}, c.elems...), elem)
	if len(elems) > k {
		elems = elems[len(elems)-k:]
	}
	return p.make(elems)
}

// suffix returns the context of the most recent n elements of c.
func (p *contextPool) suffix(c *Context, n int) *Context {
	if c.Length() <= n {
		return c
	}
	return p.make(append([]any{}, c.elems[c.Length()-n:]...))
}

// ContextSelector chooses contexts for callees and heap objects.
type ContextSelector interface {
	// EmptyContext returns the sole initial context.
	EmptyContext() *Context

	// SelectContext chooses the callee context for a call without a receiver
	// object (static and special dispatch through the declared class).
	SelectContext(cs *CSCallSite, callee *ir.Method) *Context

	// SelectContextRecv chooses the callee context for a dispatched call with
	// receiver object recv.
	SelectContextRecv(cs *CSCallSite, recv *CSObj, callee *ir.Method) *Context

	// SelectHeapContext chooses the heap context of an object allocated in
	// method m.
	SelectHeapContext(m *CSMethod, obj *Obj) *Context
}

// NewContextSelector returns the selector with the given configuration name:
// ci, 1-call, 2-call, 1-obj, 2-obj, 1-type or 2-type.
func NewContextSelector(name string) (ContextSelector, error) {
	pool := newContextPool()
	switch name {
	case "", "ci":
		return &ciSelector{pool: pool}, nil
	case "1-call":
		return &kCallSelector{pool: pool, k: 1}, nil
	case "2-call":
		return &kCallSelector{pool: pool, k: 2}, nil
	case "1-obj":
		return &kObjSelector{pool: pool, k: 1}, nil
	case "2-obj":
		return &kObjSelector{pool: pool, k: 2}, nil
	case "1-type":
		return &kTypeSelector{pool: pool, k: 1}, nil
	case "2-type":
		return &kTypeSelector{pool: pool, k: 2}, nil
	default:
		return nil, fmt.Errorf("unknown context selector %q", name)
	}
}

// ciSelector is the context-insensitive selector: every context is empty.
type ciSelector struct {
	pool *contextPool
}

func (s *ciSelector) EmptyContext() *Context { return s.pool.empty }

func (s *ciSelector) SelectContext(*CSCallSite, *ir.Method) *Context { return s.pool.empty }

func (s *ciSelector) SelectContextRecv(*CSCallSite, *CSObj, *ir.Method) *Context {
	return s.pool.empty
}

func (s *ciSelector) SelectHeapContext(*CSMethod, *Obj) *Context { return s.pool.empty }

// kCallSelector is k-limited call-site sensitivity: the callee context is the
// caller's context extended with the call site. Heap contexts are empty.
type kCallSelector struct {
	pool *contextPool
	k    int
}

func (s *kCallSelector) EmptyContext() *Context { return s.pool.empty }

func (s *kCallSelector) SelectContext(cs *CSCallSite, _ *ir.Method) *Context {
	return s.pool.appendElem(cs.Context, cs.Site, s.k)
}

func (s *kCallSelector) SelectContextRecv(cs *CSCallSite, _ *CSObj, callee *ir.Method) *Context {
	return s.SelectContext(cs, callee)
}

func (s *kCallSelector) SelectHeapContext(*CSMethod, *Obj) *Context {
	return s.pool.empty
}

// kObjSelector is k-limited object sensitivity: the callee context is the
// receiver object's heap context extended with the receiver object. The heap
// context of a new object is the most recent k-1 elements of the allocating
// method's context.
type kObjSelector struct {
	pool *contextPool
	k    int
}

func (s *kObjSelector) EmptyContext() *Context { return s.pool.empty }

func (s *kObjSelector) SelectContext(cs *CSCallSite, _ *ir.Method) *Context {
	// no receiver: keep the caller's context
	return cs.Context
}

func (s *kObjSelector) SelectContextRecv(_ *CSCallSite, recv *CSObj, _ *ir.Method) *Context {
	return s.pool.appendElem(recv.Context, recv.Obj, s.k)
}

func (s *kObjSelector) SelectHeapContext(m *CSMethod, _ *Obj) *Context {
	return s.pool.suffix(m.Context, s.k-1)
}

// kTypeSelector is k-limited type sensitivity: like object sensitivity with
// receiver objects coarsened to the type declaring their allocation site.
type kTypeSelector struct {
	pool *contextPool
	k    int
}

func (s *kTypeSelector) EmptyContext() *Context { return s.pool.empty }

func (s *kTypeSelector) SelectContext(cs *CSCallSite, _ *ir.Method) *Context {
	return cs.Context
}

func (s *kTypeSelector) SelectContextRecv(_ *CSCallSite, recv *CSObj, _ *ir.Method) *Context {
	// context elements must be pointers for interning; use the declaring class
	var elem any = recv.Obj
	if ct, ok := recv.Obj.ContainerType.(ir.ClassType); ok {
		elem = ct.Class
	}
	return s.pool.appendElem(recv.Context, elem, s.k)
}

func (s *kTypeSelector) SelectHeapContext(m *CSMethod, _ *Obj) *Context {
	return s.pool.suffix(m.Context, s.k-1)
}
