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

/*
Package config provides the configuration of the analysis tools.

Use [Load](filename) to load a configuration from a specific filename.

Use [SetGlobalConfig](filename) to set filename as the global config, and then [LoadGlobal]() to load the global config.

A config file is a yaml document. The top-level fields can be any of the fields defined in the Config struct type.
For example, a valid config file is as follows:

	entry: "Main: void main()"
	log-level: 3
	analyses:
	  - constprop
	  - livevar
	  - deadcode
	  - pta
	  - taint
	pta:
	  context-sensitivity: 2-obj
	  taint-config: taint.yaml

The taint specification referenced by pta.taint-config is a separate yaml
document with three arrays:

	sources:
	  - { method: "Secret: String getSecret()", type: "String" }
	sinks:
	  - { method: "Log: void sink(String)", index: 0 }
	transfers:
	  - { method: "String: String concat(String)", from: 0, to: result, type: "String" }
*/
package config
