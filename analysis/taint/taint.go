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

// Package taint implements taint tracking as an overlay on the pointer
// analysis: sources fabricate taint objects at call sites, the pointer
// analysis machinery propagates them, transfers re-tag and re-inject them, and
// sinks are scanned at fixpoint.
package taint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/awslabs/ar-ir-tools/analysis/config"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/analysis/pta"
	"github.com/awslabs/ar-ir-tools/internal/funcutil"
)

// ID is the analysis id under which taint flows are stored.
const ID = "taint"

// Flow witnesses a taint reaching a sink: the fabricating source call, the
// sink call and the sink parameter index (-1 for the receiver).
type Flow struct {
	Source *ir.Invoke
	Sink   *ir.Invoke
	Index  int
}

func (f Flow) String() string {
	return fmt.Sprintf("taint flow: %s -> %s arg %d", f.Source, f.Sink, f.Index)
}

// Less orders flows by (source index, sink index, parameter index), with the
// printed source and sink statements breaking any remaining ties.
func (f Flow) Less(other Flow) bool {
	if f.Source.Index() != other.Source.Index() {
		return f.Source.Index() < other.Source.Index()
	}
	if f.Sink.Index() != other.Sink.Index() {
		return f.Sink.Index() < other.Sink.Index()
	}
	if f.Index != other.Index {
		return f.Index < other.Index
	}
	return fmt.Sprint(f.Source, f.Sink) < fmt.Sprint(other.Source, other.Sink)
}

type taintKey struct {
	site *ir.Invoke
	typ  ir.Type
}

// manager canonicalizes taint objects per (source call, type) pair.
type manager struct {
	taints map[taintKey]*pta.Obj
}

func newManager() *manager {
	return &manager{taints: map[taintKey]*pta.Obj{}}
}

func (m *manager) makeTaint(site *ir.Invoke, typ ir.Type) *pta.Obj {
	key := taintKey{site: site, typ: typ}
	if o, ok := m.taints[key]; ok {
		return o
	}
	o := pta.NewTaintObj(site, typ)
	m.taints[key] = o
	return o
}

// sourceCall returns the call site that fabricated the taint object.
func sourceCall(o *pta.Obj) *ir.Invoke {
	return o.Site.(*ir.Invoke)
}

type resolvedTransfer struct {
	from int
	to   int
	typ  ir.Type
}

type sinkKey struct {
	method *ir.Method
	index  int
}

type callIndex struct {
	site  *ir.Invoke
	index int
}

type flowEdge struct {
	target pta.Pointer
	typ    ir.Type
}

// Analysis is the taint overlay. It implements pta.Plugin; register it on a
// solver before calling Solve.
type Analysis struct {
	solver *pta.Solver
	logger *config.LogGroup

	mgr *manager

	sources   map[*ir.Method]ir.Type
	sinks     map[sinkKey]bool
	transfers map[*ir.Method][]resolvedTransfer

	// flowMap holds the conditional taint edges installed by transfers,
	// keyed by source pointer; contexts do not apply to taint flow.
	flowMap map[pta.Pointer][]flowEdge

	// sinkPointers collects the pointers observed at sink positions.
	sinkPointers map[callIndex]map[pta.Pointer]bool

	flows []Flow
}

// NewAnalysis resolves the taint configuration against the hierarchy and
// attaches the overlay to the solver. Unresolvable methods or types in the
// configuration are fatal.
func NewAnalysis(solver *pta.Solver, tc *config.TaintConfig, h *ir.Hierarchy, logger *config.LogGroup) (*Analysis, error) {
	a := &Analysis{
		solver:       solver,
		logger:       logger,
		mgr:          newManager(),
		sources:      map[*ir.Method]ir.Type{},
		sinks:        map[sinkKey]bool{},
		transfers:    map[*ir.Method][]resolvedTransfer{},
		flowMap:      map[pta.Pointer][]flowEdge{},
		sinkPointers: map[callIndex]map[pta.Pointer]bool{},
	}
	for _, src := range tc.Sources {
		m, err := resolveMethod(h, src.Method)
		if err != nil {
			return nil, err
		}
		typ, err := resolveType(h, src.Type)
		if err != nil {
			return nil, err
		}
		a.sources[m] = typ
	}
	for _, sink := range tc.Sinks {
		m, err := resolveMethod(h, sink.Method)
		if err != nil {
			return nil, err
		}
		a.sinks[sinkKey{method: m, index: sink.Index}] = true
	}
	for _, tr := range tc.Transfers {
		m, err := resolveMethod(h, tr.Method)
		if err != nil {
			return nil, err
		}
		typ, err := resolveType(h, tr.Type)
		if err != nil {
			return nil, err
		}
		a.transfers[m] = append(a.transfers[m], resolvedTransfer{from: tr.From, to: tr.To, typ: typ})
	}
	solver.RegisterPlugin(a)
	return a, nil
}

// resolveMethod parses "Class: subsignature" (angle brackets optional) and
// looks the method up in the hierarchy.
func resolveMethod(h *ir.Hierarchy, signature string) (*ir.Method, error) {
	s := strings.TrimSpace(signature)
	s = strings.TrimPrefix(s, "<")
	s = strings.TrimSuffix(s, ">")
	name, subsig, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("malformed method signature %q in taint config", signature)
	}
	class := h.Class(strings.TrimSpace(name))
	if class == nil {
		return nil, fmt.Errorf("unknown class in taint config signature %q", signature)
	}
	m := class.DeclaredMethod(strings.TrimSpace(subsig))
	if m == nil {
		return nil, fmt.Errorf("unresolvable method %q in taint config", signature)
	}
	return m, nil
}

func resolveType(h *ir.Hierarchy, name string) (ir.Type, error) {
	if p, ok := ir.ParsePrimitive(name); ok {
		return p, nil
	}
	if class := h.Class(name); class != nil {
		return ir.ClassType{Class: class}, nil
	}
	return nil, fmt.Errorf("unknown type %q in taint config", name)
}

// makeCSTaint returns the context-sensitive taint object, always under the
// empty heap context.
func (a *Analysis) makeCSTaint(site *ir.Invoke, typ ir.Type) *pta.CSObj {
	obj := a.mgr.makeTaint(site, typ)
	return a.solver.Manager().CSObjOf(a.solver.Selector().EmptyContext(), obj)
}

// taintsOf re-tags the taint objects of pts with the given type.
func (a *Analysis) taintsOf(pts *pta.PointsToSet, typ ir.Type) *pta.PointsToSet {
	out := a.solver.Manager().NewPointsToSet()
	pts.ForEach(func(o *pta.CSObj) {
		if o.Obj.Taint {
			out.Add(a.makeCSTaint(sourceCall(o.Obj), typ))
		}
	})
	return out
}

// addFlowEdge installs a conditional taint edge; taints already present at the
// source are re-tagged and injected immediately.
func (a *Analysis) addFlowEdge(source, target pta.Pointer, typ ir.Type) {
	present := funcutil.Exists(a.flowMap[source], func(e flowEdge) bool {
		return e.target == target && e.typ == typ
	})
	if present {
		return
	}
	a.flowMap[source] = append(a.flowMap[source], flowEdge{target: target, typ: typ})
	if taintPts := a.taintsOf(source.PointsToSet(), typ); !taintPts.IsEmpty() {
		a.solver.AddEntry(target, taintPts)
	}
}

// OnNewCallEdge checks the callee against the configured sources, transfers
// and sinks.
func (a *Analysis) OnNewCallEdge(e pta.CSEdge) {
	stmt := e.CallSite.Site
	ctx := e.CallSite.Context
	callee := e.Callee.Method
	mgr := a.solver.Manager()

	pointerOf := func(v *ir.Var) pta.Pointer {
		if v == nil {
			return nil
		}
		return mgr.CSVarOf(ctx, v)
	}
	base := pointerOf(stmt.InvokeExp().Base)
	result := pointerOf(stmt.Result)
	args := stmt.InvokeExp().Args

	if typ, ok := a.sources[callee]; ok && result != nil {
		a.logger.Debugf("taint source call at %s", stmt)
		a.solver.AddEntry(result, mgr.NewPointsToSet(a.makeCSTaint(stmt, typ)))
	}

	for _, tr := range a.transfers[callee] {
		source := a.transferEndpoint(tr.from, base, result, args, ctx)
		target := a.transferEndpoint(tr.to, base, result, args, ctx)
		if source == nil || target == nil {
			continue
		}
		a.addFlowEdge(source, target, tr.typ)
	}

	for i, arg := range args {
		if a.sinks[sinkKey{method: callee, index: i}] {
			a.recordSinkPointer(stmt, i, mgr.CSVarOf(ctx, arg))
		}
	}
	if base != nil && a.sinks[sinkKey{method: callee, index: config.TransferBase}] {
		a.recordSinkPointer(stmt, config.TransferBase, base)
	}
}

func (a *Analysis) transferEndpoint(pos int, base, result pta.Pointer, args []*ir.Var, ctx *pta.Context) pta.Pointer {
	switch pos {
	case config.TransferBase:
		return base
	case config.TransferResult:
		return result
	default:
		if pos >= len(args) {
			return nil
		}
		return a.solver.Manager().CSVarOf(ctx, args[pos])
	}
}

func (a *Analysis) recordSinkPointer(site *ir.Invoke, index int, p pta.Pointer) {
	key := callIndex{site: site, index: index}
	if a.sinkPointers[key] == nil {
		a.sinkPointers[key] = map[pta.Pointer]bool{}
	}
	a.sinkPointers[key][p] = true
}

// OnNewPointsTo forwards newly arrived taints across the installed taint
// edges, re-tagged per edge.
func (a *Analysis) OnNewPointsTo(p pta.Pointer, delta *pta.PointsToSet) {
	for _, e := range a.flowMap[p] {
		if taintPts := a.taintsOf(delta, e.typ); !taintPts.IsEmpty() {
			a.solver.AddEntry(e.target, taintPts)
		}
	}
}

// OnFinish scans every recorded sink pointer for taint objects and emits the
// sorted flow records.
func (a *Analysis) OnFinish(result *pta.Result) {
	seen := map[Flow]bool{}
	for key, pointers := range a.sinkPointers {
		for p := range pointers {
			p.PointsToSet().ForEach(func(o *pta.CSObj) {
				if !o.Obj.Taint {
					return
				}
				flow := Flow{Source: sourceCall(o.Obj), Sink: key.site, Index: key.index}
				if !seen[flow] {
					seen[flow] = true
					a.flows = append(a.flows, flow)
				}
			})
		}
	}
	sort.Slice(a.flows, func(i, j int) bool { return a.flows[i].Less(a.flows[j]) })
}

// Flows returns the taint flows found at fixpoint, sorted.
func (a *Analysis) Flows() []Flow {
	return a.flows
}
