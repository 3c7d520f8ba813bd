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

package graphutil

import (
	"testing"

	"github.com/awslabs/ar-ir-tools/analysis/callgraph"
	"github.com/awslabs/ar-ir-tools/analysis/config"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

// buildRecursive builds main -> ping -> pong -> ping.
func buildRecursive(t *testing.T) *callgraph.Graph {
	t.Helper()
	b := ir.NewBuilder()
	main := b.Class(ir.ClassDecl{Name: "Main"})

	pingB := b.Method(main, "ping", ir.Void, nil, true)
	pongB := b.Method(main, "pong", ir.Void, nil, true)

	pingB.Invoke(nil, ir.KindStatic, pongB.Method().Ref(), nil, nil)
	pingB.Return(nil)
	ping := pingB.MustFinish()

	pongB.Invoke(nil, ir.KindStatic, ping.Ref(), nil, nil)
	pongB.Return(nil)
	pongB.MustFinish()

	mb := b.Method(main, "main", ir.Void, nil, true)
	mb.Invoke(nil, ir.KindStatic, ping.Ref(), nil, nil)
	mb.Return(nil)
	m := mb.MustFinish()

	logger := config.NewLogGroup(config.NewDefault())
	return callgraph.BuildCHA(b.Hierarchy(), m, logger)
}

func TestFindAllElementaryCyclesOnCallGraph(t *testing.T) {
	cg := buildRecursive(t)
	it := NewCallGraphIterator(cg)

	if it.Order() != 3 {
		t.Fatalf("order = %d, want 3 reachable methods", it.Order())
	}
	cycles := FindAllElementaryCycles(it)
	if len(cycles) != 1 {
		t.Fatalf("cycles = %v, want exactly the ping/pong cycle", cycles)
	}
	names := map[string]bool{}
	for _, id := range cycles[0] {
		names[it.IDMap[id].String()] = true
	}
	if !names["<Main: void ping()>"] || !names["<Main: void pong()>"] {
		t.Errorf("cycle misses the recursion group: %v", names)
	}
	if names["<Main: void main()>"] {
		t.Errorf("main is not part of the recursion group")
	}
}

func TestNoCyclesOnAcyclicGraph(t *testing.T) {
	b := ir.NewBuilder()
	main := b.Class(ir.ClassDecl{Name: "Main"})
	leafB := b.Method(main, "leaf", ir.Void, nil, true)
	leafB.Return(nil)
	leaf := leafB.MustFinish()
	mb := b.Method(main, "main", ir.Void, nil, true)
	mb.Invoke(nil, ir.KindStatic, leaf.Ref(), nil, nil)
	mb.Return(nil)
	m := mb.MustFinish()

	logger := config.NewLogGroup(config.NewDefault())
	cg := callgraph.BuildCHA(b.Hierarchy(), m, logger)
	if cycles := FindAllElementaryCycles(NewCallGraphIterator(cg)); len(cycles) != 0 {
		t.Errorf("cycles = %v, want none", cycles)
	}
}
