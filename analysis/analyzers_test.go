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

package analysis

import (
	"path/filepath"
	"testing"

	"github.com/awslabs/ar-ir-tools/analysis/deadcode"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/analysis/pta"
	"github.com/awslabs/ar-ir-tools/analysis/taint"
	"github.com/awslabs/ar-ir-tools/internal/analysistest"
)

func TestRunTaintExample(t *testing.T) {
	program, cfg := analysistest.LoadTest(t, filepath.Join("testdata", "taint-example"))
	state, err := Run(program, cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	flows, _ := program.Result(taint.ID).([]taint.Flow)
	if len(flows) != 1 {
		t.Fatalf("flows = %v, want exactly one", flows)
	}
	if flows[0].Index != 0 {
		t.Errorf("flow index = %d, want 0", flows[0].Index)
	}
	if flows[0].Source.Index() != 0 || flows[0].Sink.Index() != 2 {
		t.Errorf("flow endpoints = (%d, %d), want (0, 2)",
			flows[0].Source.Index(), flows[0].Sink.Index())
	}

	dead, _ := program.Entry.IR.Result(deadcode.ID).([]ir.Stmt)
	got := map[int]bool{}
	for _, s := range dead {
		got[s.Index()] = true
	}
	if !got[5] || !got[7] || len(got) != 2 {
		t.Errorf("dead statements = %v, want indexes 5 and 7", got)
	}

	if state.PtaResult == nil {
		t.Fatalf("pta result missing from state")
	}
	if result, _ := program.Result(pta.ID).(*pta.Result); result == nil {
		t.Errorf("pta result not stored on the program")
	}
}

func TestRunRejectsTaintWithoutPta(t *testing.T) {
	program, cfg := analysistest.LoadTest(t, filepath.Join("testdata", "taint-example"))
	cfg.Analyses = []string{"taint"}
	if _, err := Run(program, cfg); err == nil {
		t.Fatalf("taint without pta should fail")
	}
}
