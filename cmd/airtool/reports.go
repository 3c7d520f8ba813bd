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

package main

import (
	"fmt"
	"sort"

	"github.com/awslabs/ar-ir-tools/analysis"
	"github.com/awslabs/ar-ir-tools/analysis/callgraph"
	"github.com/awslabs/ar-ir-tools/analysis/deadcode"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/analysis/taint"
	"github.com/awslabs/ar-ir-tools/internal/formatutil"
	"github.com/awslabs/ar-ir-tools/internal/funcutil"
	"github.com/awslabs/ar-ir-tools/internal/graphutil"
)

// sortedMethods returns the program's methods ordered by signature, for stable
// reports.
func sortedMethods(state *analysis.State) []*ir.Method {
	methods := state.Program.Methods()
	sort.Slice(methods, func(i, j int) bool {
		return methods[i].Signature() < methods[j].Signature()
	})
	return methods
}

func reportAll(state *analysis.State) {
	for _, id := range state.Config.Analyses {
		switch id {
		case deadcode.ID:
			reportDeadcode(state)
		case taint.ID:
			reportTaint(state)
		case callgraph.ID:
			reportCallgraph(state)
		}
	}
}

func reportDeadcode(state *analysis.State) {
	fmt.Println(formatutil.Bold("Dead code:"))
	for _, m := range sortedMethods(state) {
		dead, _ := m.IR.Result(deadcode.ID).([]ir.Stmt)
		if len(dead) == 0 {
			continue
		}
		fmt.Printf("  %s\n", m.Signature())
		for _, s := range dead {
			fmt.Printf("    %s %s\n", formatutil.Yellow(fmt.Sprintf("[%d]", s.Index())), s)
		}
	}
}

func reportTaint(state *analysis.State) {
	flows, _ := state.Program.Result(taint.ID).([]taint.Flow)
	if max := state.Config.MaxAlarms; max > 0 && len(flows) > max {
		flows = flows[:max]
	}
	fmt.Println(formatutil.Bold("Taint flows:"))
	if len(flows) == 0 {
		fmt.Println(formatutil.Green("  no flows from sources to sinks"))
		return
	}
	for _, f := range flows {
		fmt.Printf("  %s %s\n", formatutil.Red("[flow]"), f)
	}
}

func reportCallgraph(state *analysis.State) {
	cg, _ := state.Program.Result(callgraph.ID).(*callgraph.Graph)
	if cg == nil {
		return
	}
	fmt.Println(formatutil.Bold("Call graph:"))
	lines := map[string]bool{}
	for _, m := range cg.ReachableMethods() {
		for _, cs := range callgraph.CallSitesIn(m) {
			for _, callee := range cg.CalleesOf(cs) {
				lines[fmt.Sprintf("  %s --%s--> %s",
					m.Signature(), cs.InvokeExp().Kind, callee.Signature())] = true
			}
		}
	}
	funcutil.Iter(funcutil.SetToOrderedSlice(lines), func(l string) { fmt.Println(l) })

	it := graphutil.NewCallGraphIterator(cg)
	cycles := graphutil.FindAllElementaryCycles(it)
	if len(cycles) == 0 {
		return
	}
	fmt.Println(formatutil.Bold("Recursion groups:"))
	for _, cycle := range cycles {
		names := funcutil.Map(cycle, func(id int64) string { return it.IDMap[id].String() })
		fmt.Printf("  %s\n", formatutil.Cyan(fmt.Sprint(names)))
	}
}
