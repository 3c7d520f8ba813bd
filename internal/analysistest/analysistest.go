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

// Package analysistest provides helpers for loading test programs from
// testdata directories.
package analysistest

import (
	"path/filepath"
	"testing"

	"github.com/awslabs/ar-ir-tools/analysis/config"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

// LoadTest loads the program in the directory dir, looking for a program.ir
// and a config.yaml. The entry method is taken from the config.
func LoadTest(t *testing.T, dir string) (*ir.Program, *config.Config) {
	t.Helper()
	configFile := filepath.Join(dir, "config.yaml")
	config.SetGlobalConfig(configFile)
	cfg, err := config.LoadGlobal()
	if err != nil {
		t.Fatalf("error loading config: %v", err)
	}
	program, err := ir.LoadProgram(filepath.Join(dir, "program.ir"), cfg.Entry)
	if err != nil {
		t.Fatalf("error loading program: %v", err)
	}
	return program, cfg
}
