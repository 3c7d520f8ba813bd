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

// Airtool is the command-line driver of the analysis engine: it loads a
// configuration and a textual IR program, runs the requested analyses and
// prints their reports.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/awslabs/ar-ir-tools/analysis"
	"github.com/awslabs/ar-ir-tools/analysis/config"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

const usage = `Airtool: analyses over the class-based IR
Usage:
  airtool [tool] [options] <IR file path>
Tools:
  - run: runs every analysis listed in the config file and prints their reports
  - deadcode: reports dead statements per method
  - taint: reports taint flows from the configured sources to sinks
  - callgraph: prints the CHA call graph and its recursion groups
Examples:
  Run the configured analyses: airtool run --config=config.yaml program.ir
  Run the taint analysis: airtool taint --config=config.yaml program.ir`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(analysis.Version)
		return
	}

	cmd := os.Args[1]
	flags := flag.NewFlagSet(cmd, flag.ExitOnError)
	configPath := flags.String("config", "", "configuration file path")
	if err := flags.Parse(os.Args[2:]); err != nil {
		errExit(err)
	}
	if *configPath == "" || flags.NArg() != 1 {
		errExit(fmt.Errorf("expected --config and one IR file\n%s", usage))
	}

	state, err := load(*configPath, flags.Arg(0), cmd)
	if err != nil {
		errExit(err)
	}
	switch cmd {
	case "run":
		reportAll(state)
	case "deadcode":
		reportDeadcode(state)
	case "taint":
		reportTaint(state)
	case "callgraph":
		reportCallgraph(state)
	default:
		errExit(fmt.Errorf("unknown tool %q\n%s", cmd, usage))
	}
}

// load reads the config and program and runs the analyses the tool needs. The
// run tool executes the config as-is; the other tools force their own analysis
// list.
func load(configPath, programPath, cmd string) (*analysis.State, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	switch cmd {
	case "deadcode":
		cfg.Analyses = []string{"constprop", "livevar", "deadcode"}
	case "taint":
		cfg.Analyses = []string{"pta", "taint"}
	case "callgraph":
		cfg.Analyses = []string{"cha"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	program, err := ir.LoadProgram(programPath, cfg.Entry)
	if err != nil {
		return nil, err
	}
	return analysis.Run(program, cfg)
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
