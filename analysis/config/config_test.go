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

package config

import (
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Entry != "Main: void main()" {
		t.Errorf("entry = %q", cfg.Entry)
	}
	if cfg.LogLevel != 2 || cfg.MaxAlarms != 10 {
		t.Errorf("options not loaded: %+v", cfg.Options)
	}
	if cfg.Pta.ContextSensitivity != "2-obj" || cfg.Pta.TaintConfig != "taint.yaml" {
		t.Errorf("pta options not loaded: %+v", cfg.Pta)
	}
	if !cfg.Requests("deadcode") || cfg.Requests("cha") {
		t.Errorf("analysis list not loaded: %v", cfg.Analyses)
	}
	if got := cfg.RelPath("taint.yaml"); got != filepath.Join("testdata", "taint.yaml") {
		t.Errorf("RelPath = %q", got)
	}
}

func TestValidateRejectsUnknowns(t *testing.T) {
	cfg := NewDefault()
	cfg.Analyses = []string{"nonsense"}
	if err := cfg.Validate(); err == nil {
		t.Errorf("unknown analysis id accepted")
	}

	cfg = NewDefault()
	cfg.Analyses = []string{"pta"}
	cfg.Pta.ContextSensitivity = "3-obj"
	if err := cfg.Validate(); err == nil {
		t.Errorf("unknown context sensitivity accepted")
	}

	cfg = NewDefault()
	cfg.Analyses = []string{"taint"}
	if err := cfg.Validate(); err == nil {
		t.Errorf("taint without pta accepted")
	}
}

func TestLoadTaintConfig(t *testing.T) {
	tc, err := LoadTaintConfig(filepath.Join("testdata", "taint.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tc.Sources) != 1 || len(tc.Sinks) != 2 || len(tc.Transfers) != 3 {
		t.Fatalf("counts: %d sources, %d sinks, %d transfers", len(tc.Sources), len(tc.Sinks), len(tc.Transfers))
	}
	if tc.Sinks[1].Index != TransferBase {
		t.Errorf("sink index -1 should denote the receiver")
	}
	wantTransfers := []struct{ from, to int }{
		{0, TransferResult},
		{0, TransferBase},
		{TransferBase, TransferResult},
	}
	for i, want := range wantTransfers {
		if tc.Transfers[i].From != want.from || tc.Transfers[i].To != want.to {
			t.Errorf("transfer %d decoded as (%d, %d), want (%d, %d)",
				i, tc.Transfers[i].From, tc.Transfers[i].To, want.from, want.to)
		}
	}
}

func TestTaintTransferRejectsResultOrigin(t *testing.T) {
	if _, err := decodeEndpoint("result", false); err == nil {
		t.Errorf("result as transfer origin should be rejected")
	}
	if _, err := decodeEndpoint("-3", true); err == nil {
		t.Errorf("negative index should be rejected")
	}
}
