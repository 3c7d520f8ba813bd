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
	"fmt"
	"os"
	"path/filepath"

	"github.com/awslabs/ar-ir-tools/internal/funcutil"
	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// AnalysisIDs lists the analyses that can be requested in a config file. Requesting
// an id outside this list is a configuration error.
var AnalysisIDs = []string{
	"livevar",
	"constprop",
	"inter-constprop",
	"deadcode",
	"cha",
	"pta",
	"taint",
}

// Config is the top-level configuration of an analysis run. If some field is not
// defined in the config file, it will be empty/zero in the struct.
// Private fields are not populated from a yaml file, but computed after initialization.
type Config struct {
	Options `yaml:",inline"`

	sourceFile string

	// Analyses is the list of analysis ids to run, in order. Dependencies are not
	// resolved automatically for every analysis: e.g. taint requires pta to
	// appear before it. deadcode computes constprop and livevar itself when
	// they have not run.
	Analyses []string `yaml:"analyses"`

	// Pta configures the pointer analysis, when requested.
	Pta PtaOptions `yaml:"pta"`
}

// PtaOptions groups the options of the pointer analysis.
type PtaOptions struct {
	// ContextSensitivity selects the context abstraction. One of
	// ci, 1-call, 2-call, 1-obj, 2-obj, 1-type, 2-type.
	ContextSensitivity string `yaml:"context-sensitivity"`

	// HeapModel names the heap abstraction. Only alloc-site is supported.
	HeapModel string `yaml:"heap-model"`

	// TaintConfig is the path of the taint specification file, relative to the
	// config file location. Required when the taint analysis is requested.
	TaintConfig string `yaml:"taint-config"`
}

// Options are the options common to all analyses.
type Options struct {
	// Entry is the signature of the entry method of the analyzed program.
	Entry string `yaml:"entry"`

	// LogLevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// RefineLoads enables the store-refined evaluation of field and array loads
	// in the interprocedural constant propagation. Requires pta.
	RefineLoads bool `yaml:"refine-loads"`

	// MaxAlarms sets a limit for the number of taint flows reported. If
	// MaxAlarms <= 0, it is ignored.
	MaxAlarms int `yaml:"max-alarms"`

	// Suppress warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

// NewDefault returns an empty default config.
func NewDefault() *Config {
	return &Config{
		sourceFile: "",
		Analyses:   nil,
		Pta: PtaOptions{
			ContextSensitivity: "ci",
			HeapModel:          "alloc-site",
		},
		Options: Options{
			Entry:       "",
			LogLevel:    int(InfoLevel),
			RefineLoads: false,
			MaxAlarms:   0,
			SilenceWarn: false,
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	cfg := NewDefault()
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file %q: %w", filename, err)
	}
	cfg.sourceFile = filename
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the config requests only known analyses and that option
// combinations make sense. It is called by Load; clients constructing a Config
// in memory should call it themselves.
func (c *Config) Validate() error {
	for _, id := range c.Analyses {
		if !funcutil.Contains(AnalysisIDs, id) {
			return fmt.Errorf("unknown analysis id %q (known: %v)", id, AnalysisIDs)
		}
	}
	switch c.Pta.ContextSensitivity {
	case "", "ci", "1-call", "2-call", "1-obj", "2-obj", "1-type", "2-type":
	default:
		return fmt.Errorf("unknown context-sensitivity %q", c.Pta.ContextSensitivity)
	}
	switch c.Pta.HeapModel {
	case "", "alloc-site":
	default:
		return fmt.Errorf("unknown heap-model %q", c.Pta.HeapModel)
	}
	if c.RefineLoads && !c.Requests("pta") {
		return fmt.Errorf("refine-loads requires the pta analysis")
	}
	if c.Requests("taint") {
		if !c.Requests("pta") {
			return fmt.Errorf("taint analysis requires the pta analysis")
		}
		if c.Pta.TaintConfig == "" {
			return fmt.Errorf("taint analysis requires pta.taint-config")
		}
	}
	return nil
}

// Requests returns true if the config requests the analysis with the given id.
func (c *Config) Requests(id string) bool {
	return funcutil.Contains(c.Analyses, id)
}

// RelPath resolves a path relative to the location of the config file.
func (c *Config) RelPath(filename string) string {
	if filepath.IsAbs(filename) || c.sourceFile == "" {
		return filename
	}
	return filepath.Join(filepath.Dir(c.sourceFile), filename)
}
