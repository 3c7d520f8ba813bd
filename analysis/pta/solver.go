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

	"github.com/awslabs/ar-ir-tools/analysis/callgraph"
	"github.com/awslabs/ar-ir-tools/analysis/config"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

// ID is the analysis id under which the pointer analysis result is stored.
const ID = "pta"

// Plugin observes solver events. The taint overlay is a plugin: it injects
// taint objects through Solver.AddEntry when call edges and points-to changes
// appear.
type Plugin interface {
	// OnNewCallEdge runs after a call edge is inserted for the first time.
	OnNewCallEdge(e CSEdge)

	// OnNewPointsTo runs after delta (non-empty) has been merged into p's
	// points-to set.
	OnNewPointsTo(p Pointer, delta *PointsToSet)

	// OnFinish runs once at fixpoint, before the result is returned.
	OnFinish(result *Result)
}

// Solver is the context-sensitive Andersen-style pointer analysis. With the
// context-insensitive selector every context is empty and the solver reduces
// to the classic inclusion-based analysis.
type Solver struct {
	program  *ir.Program
	heap     HeapModel
	selector ContextSelector
	logger   *config.LogGroup

	mgr       *CSManager
	callGraph *CSCallGraph
	pfg       *PointerFlowGraph
	wl        workList
	plugins   []Plugin

	// warned records call sites already reported, so each is logged once
	warned map[ir.Stmt]bool
}

// NewSolver returns a solver over the program with the given heap abstraction
// and context selector.
func NewSolver(program *ir.Program, heap HeapModel, selector ContextSelector, logger *config.LogGroup) *Solver {
	return &Solver{
		program:   program,
		heap:      heap,
		selector:  selector,
		logger:    logger,
		mgr:       NewCSManager(),
		callGraph: NewCSCallGraph(),
		pfg:       NewPointerFlowGraph(),
		warned:    map[ir.Stmt]bool{},
	}
}

// RegisterPlugin attaches a plugin; plugins run in registration order.
func (s *Solver) RegisterPlugin(p Plugin) {
	s.plugins = append(s.plugins, p)
}

// Manager returns the solver's canonicalizing manager.
func (s *Solver) Manager() *CSManager { return s.mgr }

// Selector returns the solver's context selector.
func (s *Solver) Selector() ContextSelector { return s.selector }

// AddEntry schedules points-to information for a pointer. Plugins use it to
// inject objects mid-solve.
func (s *Solver) AddEntry(p Pointer, pts *PointsToSet) {
	s.wl.add(p, pts)
}

// Solve runs the analysis to fixpoint and returns its result.
func (s *Solver) Solve() (*Result, error) {
	if err := s.initialize(); err != nil {
		return nil, err
	}
	s.analyze()
	result := &Result{
		mgr:         s.mgr,
		csCallGraph: s.callGraph,
		pfg:         s.pfg,
		callGraph:   s.callGraph.Collapse(),
	}
	for _, p := range s.plugins {
		p.OnFinish(result)
	}
	return result, nil
}

func (s *Solver) initialize() error {
	entry := s.program.Entry
	if entry == nil || entry.IR == nil {
		return fmt.Errorf("pointer analysis requires an entry method with a body")
	}
	csEntry := s.mgr.CSMethodOf(s.selector.EmptyContext(), entry)
	s.callGraph.AddEntry(csEntry)
	s.processNewMethod(csEntry)
	return nil
}

// addReachable marks a context-sensitive method reachable and processes its
// statements once per (context, method) pair.
func (s *Solver) addReachable(m *CSMethod) {
	if s.callGraph.Contains(m) {
		return
	}
	s.callGraph.AddReachableMethod(m)
	s.processNewMethod(m)
}

// processNewMethod walks the method's statements in IR order and seeds the
// pointer-flow graph.
func (s *Solver) processNewMethod(m *CSMethod) {
	ctx := m.Context
	for _, stmt := range m.Method.IR.Stmts {
		switch stmt := stmt.(type) {
		case *ir.New:
			obj := s.heap.ObjOf(stmt, m.Method)
			heapCtx := s.selector.SelectHeapContext(m, obj)
			csObj := s.mgr.CSObjOf(heapCtx, obj)
			s.wl.add(s.mgr.CSVarOf(ctx, stmt.LHS), s.mgr.NewPointsToSet(csObj))
		case *ir.Copy:
			s.addPFGEdge(s.mgr.CSVarOf(ctx, stmt.RHS), s.mgr.CSVarOf(ctx, stmt.LHS))
		case *ir.LoadField:
			if stmt.IsStatic() {
				s.addPFGEdge(s.mgr.StaticFieldOf(stmt.FieldRef()), s.mgr.CSVarOf(ctx, stmt.LHS))
			}
		case *ir.StoreField:
			if stmt.IsStatic() {
				s.addPFGEdge(s.mgr.CSVarOf(ctx, stmt.RHS), s.mgr.StaticFieldOf(stmt.FieldRef()))
			}
		case *ir.Invoke:
			if stmt.IsStatic() {
				s.processStaticCall(m, stmt)
			}
		}
	}
}

func (s *Solver) processStaticCall(caller *CSMethod, stmt *ir.Invoke) {
	callee := stmt.MethodRef().Resolve()
	if callee == nil {
		s.warnOnce(stmt, "no target for static call %s", stmt)
		return
	}
	csCallSite := s.mgr.CSCallSiteOf(caller.Context, stmt)
	calleeCtx := s.selector.SelectContext(csCallSite, callee)
	csCallee := s.mgr.CSMethodOf(calleeCtx, callee)
	s.addCallEdge(CSEdge{Kind: stmt.InvokeExp().Kind, CallSite: csCallSite, Callee: csCallee})
}

// addCallEdge inserts the edge and, on first insertion, makes the callee
// reachable, wires arguments and returns, and notifies plugins. Bodiless
// callees are opaque: the edge is recorded for plugins but nothing is wired.
func (s *Solver) addCallEdge(e CSEdge) {
	if !s.callGraph.AddEdge(e) {
		return
	}
	if e.Callee.Method.IR != nil {
		s.addReachable(e.Callee)
		s.wireCall(e.CallSite, e.Callee)
	}
	for _, p := range s.plugins {
		p.OnNewCallEdge(e)
	}
}

// wireCall adds the argument-to-parameter and return-to-result edges of a
// call.
func (s *Solver) wireCall(cs *CSCallSite, callee *CSMethod) {
	callCtx := cs.Context
	calleeCtx := callee.Context
	args := cs.Site.InvokeExp().Args
	params := callee.Method.IR.Params
	if len(args) != len(params) {
		s.warnOnce(cs.Site, "arity mismatch at %s calling %s, skipping wiring", cs.Site, callee.Method.Signature())
		return
	}
	for i, arg := range args {
		s.addPFGEdge(s.mgr.CSVarOf(callCtx, arg), s.mgr.CSVarOf(calleeCtx, params[i]))
	}
	if result := cs.Site.Result; result != nil {
		target := s.mgr.CSVarOf(callCtx, result)
		for _, ret := range callee.Method.IR.ReturnVars {
			s.addPFGEdge(s.mgr.CSVarOf(calleeCtx, ret), target)
		}
	}
}

// addPFGEdge inserts a pointer-flow edge; on first insertion the source's
// current points-to set is scheduled into the target.
func (s *Solver) addPFGEdge(source, target Pointer) {
	if s.pfg.AddEdge(source, target) {
		if pts := source.PointsToSet(); !pts.IsEmpty() {
			s.wl.add(target, pts)
		}
	}
}

// analyze processes work-list entries until the work-list is empty.
func (s *Solver) analyze() {
	for !s.wl.empty() {
		entry := s.wl.poll()
		delta := s.propagate(entry.pointer, entry.pts)
		if delta.IsEmpty() {
			continue
		}
		for _, p := range s.plugins {
			p.OnNewPointsTo(entry.pointer, delta)
		}
		csVar, ok := entry.pointer.(*CSVar)
		if !ok {
			continue
		}
		variable := csVar.Var
		varCtx := csVar.Context
		for _, obj := range delta.Objects() {
			for _, stmt := range variable.StoreFields() {
				s.addPFGEdge(s.mgr.CSVarOf(varCtx, stmt.RHS), s.mgr.InstanceFieldOf(obj, stmt.FieldRef()))
			}
			for _, stmt := range variable.LoadFields() {
				s.addPFGEdge(s.mgr.InstanceFieldOf(obj, stmt.FieldRef()), s.mgr.CSVarOf(varCtx, stmt.LHS))
			}
			for _, stmt := range variable.StoreArrays() {
				s.addPFGEdge(s.mgr.CSVarOf(varCtx, stmt.RHS), s.mgr.ArrayIndexOf(obj))
			}
			for _, stmt := range variable.LoadArrays() {
				s.addPFGEdge(s.mgr.ArrayIndexOf(obj), s.mgr.CSVarOf(varCtx, stmt.LHS))
			}
			s.processCall(csVar, obj)
		}
	}
}

// propagate merges pts into the pointer's points-to set and schedules the true
// additions into the pointer's PFG successors. It returns the difference set.
func (s *Solver) propagate(pointer Pointer, pts *PointsToSet) *PointsToSet {
	diff := s.mgr.NewPointsToSet()
	target := pointer.PointsToSet()
	pts.ForEach(func(o *CSObj) {
		if target.Add(o) {
			diff.Add(o)
		}
	})
	if !diff.IsEmpty() {
		for _, succ := range s.pfg.SuccsOf(pointer) {
			s.wl.add(succ, diff)
		}
	}
	return diff
}

// processCall handles the dispatched calls whose receiver is csVar, for the
// newly discovered receiver object recv.
func (s *Solver) processCall(csVar *CSVar, recv *CSObj) {
	callCtx := csVar.Context
	for _, stmt := range csVar.Var.Invokes() {
		if stmt.InvokeExp().Kind == ir.KindDynamic {
			s.warnOnce(stmt, "dynamic call %s treated as opaque", stmt)
			continue
		}
		callee := callgraph.ResolveCallee(recv.Obj.Type, stmt)
		if callee == nil {
			s.warnOnce(stmt, "no dispatch target for %s on %s", stmt, recv.Obj)
			continue
		}
		csCallSite := s.mgr.CSCallSiteOf(callCtx, stmt)
		calleeCtx := s.selector.SelectContextRecv(csCallSite, recv, callee)
		csCallee := s.mgr.CSMethodOf(calleeCtx, callee)

		if callee.IR != nil && callee.IR.This != nil {
			s.wl.add(s.mgr.CSVarOf(calleeCtx, callee.IR.This), s.mgr.NewPointsToSet(recv))
		}
		s.addCallEdge(CSEdge{Kind: stmt.InvokeExp().Kind, CallSite: csCallSite, Callee: csCallee})
	}
}

func (s *Solver) warnOnce(site ir.Stmt, format string, args ...any) {
	if s.warned[site] {
		return
	}
	s.warned[site] = true
	s.logger.Warnf(format, args...)
}
