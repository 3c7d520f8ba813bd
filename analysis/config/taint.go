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
	"strconv"

	"gopkg.in/yaml.v3"
)

// Special endpoints of a taint transfer. Non-negative values denote argument
// positions.
const (
	// TransferBase denotes the receiver of the call.
	TransferBase = -1
	// TransferResult denotes the result variable of the call.
	TransferResult = -2
)

// TaintSourceSpec declares a method whose successful call fabricates a taint
// object of the given type.
type TaintSourceSpec struct {
	// Method is the full signature of the source method.
	Method string `yaml:"method"`

	// Type is the type label of the fabricated taint.
	Type string `yaml:"type"`
}

// TaintSinkSpec declares a method position that must not receive tainted values.
type TaintSinkSpec struct {
	// Method is the full signature of the sink method.
	Method string `yaml:"method"`

	// Index is the 0-based parameter position; -1 denotes the receiver.
	Index int `yaml:"index"`
}

// TaintTransferSpec declares that a call to Method moves taints from one
// position to another, re-tagging them with Type.
type TaintTransferSpec struct {
	Method string `yaml:"method"`

	// From and To are decoded from "base", "result" or a non-negative argument
	// index.
	From int `yaml:"-"`
	To   int `yaml:"-"`

	Type string `yaml:"type"`
}

// UnmarshalYAML decodes the from/to endpoints, accepting "base", "result" or an
// argument index (quoted or not).
func (t *TaintTransferSpec) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Method string    `yaml:"method"`
		From   yaml.Node `yaml:"from"`
		To     yaml.Node `yaml:"to"`
		Type   string    `yaml:"type"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	from, err := decodeEndpoint(raw.From.Value, false)
	if err != nil {
		return fmt.Errorf("transfer %q: %w", raw.Method, err)
	}
	to, err := decodeEndpoint(raw.To.Value, true)
	if err != nil {
		return fmt.Errorf("transfer %q: %w", raw.Method, err)
	}
	t.Method = raw.Method
	t.From = from
	t.To = to
	t.Type = raw.Type
	return nil
}

func decodeEndpoint(s string, allowResult bool) (int, error) {
	switch s {
	case "base":
		return TransferBase, nil
	case "result":
		if !allowResult {
			return 0, fmt.Errorf("result is not a valid transfer origin")
		}
		return TransferResult, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid transfer endpoint %q", s)
	}
	return n, nil
}

// TaintConfig is the declarative taint specification: sources, sinks and
// transfers, matched against call sites by method signature.
type TaintConfig struct {
	Sources   []TaintSourceSpec   `yaml:"sources"`
	Sinks     []TaintSinkSpec     `yaml:"sinks"`
	Transfers []TaintTransferSpec `yaml:"transfers"`
}

// LoadTaintConfig reads a taint specification from a yaml file.
func LoadTaintConfig(filename string) (*TaintConfig, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read taint config: %w", err)
	}
	tc := &TaintConfig{}
	if err := yaml.Unmarshal(b, tc); err != nil {
		return nil, fmt.Errorf("could not unmarshal taint config %q: %w", filename, err)
	}
	for _, sink := range tc.Sinks {
		if sink.Index < TransferBase {
			return nil, fmt.Errorf("sink %q: invalid index %d", sink.Method, sink.Index)
		}
	}
	return tc, nil
}
