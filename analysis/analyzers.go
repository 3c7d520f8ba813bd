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

// Package analysis runs the configured analysis passes over a program and
// stores their results on the program and its method bodies.
package analysis

import (
	"fmt"
	"time"

	"github.com/awslabs/ar-ir-tools/analysis/callgraph"
	"github.com/awslabs/ar-ir-tools/analysis/cfg"
	"github.com/awslabs/ar-ir-tools/analysis/config"
	"github.com/awslabs/ar-ir-tools/analysis/constprop"
	"github.com/awslabs/ar-ir-tools/analysis/dataflow"
	"github.com/awslabs/ar-ir-tools/analysis/deadcode"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/analysis/livevars"
	"github.com/awslabs/ar-ir-tools/analysis/pta"
	"github.com/awslabs/ar-ir-tools/analysis/taint"
)

// Version is the version of the tool reported by the command line.
const Version = "v0.2.0"

// State threads the configuration, logger and cross-analysis results through a
// run. All state belongs to a single run; nothing is shared.
type State struct {
	Program *ir.Program
	Config  *config.Config
	Logger  *config.LogGroup

	// PtaResult is set once the pointer analysis has run.
	PtaResult *pta.Result

	// Taint is set when the taint overlay ran with the pointer analysis.
	Taint *taint.Analysis
}

// Run executes the analyses requested by the config, in order. Results are
// stored on the program (whole-program analyses) or on each method body
// (per-method analyses).
func Run(program *ir.Program, cfg *config.Config) (*State, error) {
	state := &State{
		Program: program,
		Config:  cfg,
		Logger:  config.NewLogGroup(cfg),
	}
	for _, id := range cfg.Analyses {
		start := time.Now()
		if err := state.runOne(id); err != nil {
			return state, err
		}
		state.Logger.Infof("%s done (%.2f s).", id, time.Since(start).Seconds())
	}
	return state, nil
}

func (s *State) runOne(id string) error {
	switch id {
	case livevars.ID:
		for _, m := range s.Program.Methods() {
			livevars.Run(m.IR)
		}
	case constprop.ID:
		for _, m := range s.Program.Methods() {
			constprop.Run(m.IR)
		}
	case deadcode.ID:
		for _, m := range s.Program.Methods() {
			deadcode.RunOn(m.IR)
		}
	case callgraph.ID:
		cg := callgraph.BuildCHA(s.Program.Hierarchy, s.Program.Entry, s.Logger)
		s.Program.StoreResult(callgraph.ID, cg)
	case pta.ID:
		return s.runPta()
	case taint.ID:
		// the overlay ran as a plugin of the pointer analysis
		if s.Taint == nil {
			return fmt.Errorf("taint analysis requires the pta analysis to run first")
		}
		s.Program.StoreResult(taint.ID, s.Taint.Flows())
	case constprop.InterID:
		return s.runInterConstProp()
	default:
		return fmt.Errorf("unknown analysis id %q", id)
	}
	return nil
}

func (s *State) runPta() error {
	selector, err := pta.NewContextSelector(s.Config.Pta.ContextSensitivity)
	if err != nil {
		return err
	}
	solver := pta.NewSolver(s.Program, pta.NewAllocSiteHeapModel(), selector, s.Logger)
	if s.Config.Requests(taint.ID) {
		tc, err := config.LoadTaintConfig(s.Config.RelPath(s.Config.Pta.TaintConfig))
		if err != nil {
			return err
		}
		overlay, err := taint.NewAnalysis(solver, tc, s.Program.Hierarchy, s.Logger)
		if err != nil {
			return err
		}
		s.Taint = overlay
	}
	result, err := solver.Solve()
	if err != nil {
		return err
	}
	s.PtaResult = result
	s.Program.StoreResult(pta.ID, result)
	return nil
}

// runInterConstProp realizes the ICFG over the pointer analysis call graph
// when available, and over CHA otherwise.
func (s *State) runInterConstProp() error {
	var cg *callgraph.Graph
	if s.PtaResult != nil {
		cg = s.PtaResult.CallGraph()
	} else if stored, ok := s.Program.Result(callgraph.ID).(*callgraph.Graph); ok {
		cg = stored
	} else {
		cg = callgraph.BuildCHA(s.Program.Hierarchy, s.Program.Entry, s.Logger)
	}
	icfg := cfg.NewICFG(cg)

	var refiner *constprop.LoadRefiner
	if s.Config.RefineLoads {
		if s.PtaResult == nil {
			return fmt.Errorf("refine-loads requires the pta analysis to run first")
		}
		refiner = constprop.NewLoadRefiner(cg.ReachableMethods(), s.PtaResult)
	}
	result := constprop.RunInter(constprop.NewInterAnalysis(s.Logger, refiner), icfg)
	s.Program.StoreResult(constprop.InterID, result)
	return nil
}

// InterConstPropResult returns the stored interprocedural constant propagation
// result, or nil.
func (s *State) InterConstPropResult() *dataflow.Result[*constprop.Fact] {
	r, _ := s.Program.Result(constprop.InterID).(*dataflow.Result[*constprop.Fact])
	return r
}
