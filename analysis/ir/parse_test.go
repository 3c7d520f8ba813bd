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

package ir

import (
	"strings"
	"testing"
)

const fixedProgram = `
class Object
interface I
class A extends Object implements I
class B extends A
class Main

abstract method <I: void m(int)>

method <A: void m(int)> {
  param p int
  return
}

static method <Main: void main()> {
  var a A
  var b B
  var i I
  var x int
  var y int
  var z int
  var arr int[]
  a = new A
  b = new B
  i = b
  x = 5
  y = x + x
  z = (int) y
  if x < y goto big
  y = 0
big:
  arr = new int[]
  arr[x] = y
  z = arr[x]
  a.f = x
  x = a.f
  r = staticinvoke <Main: int id(int)>(x)
  interfaceinvoke i.<I: void m(int)>(x)
  switch x case 1 one default out
one:
  nop
out:
  return
}
`

func TestParseProgram(t *testing.T) {
	src := strings.Replace(fixedProgram, "  r = staticinvoke <Main: int id(int)>(x)\n", "", 1)
	h, err := ParseProgram(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	a := h.Class("A")
	if a == nil || a.Super != h.Class("Object") {
		t.Fatalf("class A not built correctly")
	}
	if len(h.DirectImplementorsOf(h.Class("I"))) != 1 {
		t.Errorf("I should have one direct implementor")
	}
	if len(h.DirectSubclassesOf(a)) != 1 {
		t.Errorf("A should have one direct subclass")
	}

	main, err := ResolveMethodSig(h, "Main: void main()")
	if err != nil {
		t.Fatalf("resolve main: %v", err)
	}

	counts := map[string]int{}
	for _, s := range main.IR.Stmts {
		switch s.(type) {
		case *New:
			counts["new"]++
		case *Copy:
			counts["copy"]++
		case *Assign:
			counts["assign"]++
		case *If:
			counts["if"]++
		case *LoadArray:
			counts["loadarray"]++
		case *StoreArray:
			counts["storearray"]++
		case *LoadField:
			counts["loadfield"]++
		case *StoreField:
			counts["storefield"]++
		case *Invoke:
			counts["invoke"]++
		case *Switch:
			counts["switch"]++
		case *Nop:
			counts["nop"]++
		case *Return:
			counts["return"]++
		}
	}
	want := map[string]int{
		"new": 3, "copy": 1, "assign": 4, "if": 1,
		"loadarray": 1, "storearray": 1, "loadfield": 1, "storefield": 1,
		"invoke": 1, "switch": 1, "nop": 1, "return": 1,
	}
	for k, n := range want {
		if counts[k] != n {
			t.Errorf("%s statements: got %d, want %d", k, counts[k], n)
		}
	}

	// relevant-statement lists are populated by parsing
	var av *Var
	for _, v := range main.IR.Vars {
		if v.Name == "a" {
			av = v
		}
	}
	if av == nil || len(av.StoreFields()) != 1 || len(av.LoadFields()) != 1 {
		t.Errorf("variable a should record its field accesses")
	}
}

func TestParseBranchTargets(t *testing.T) {
	src := `
class Main

static method <Main: void main()> {
  var x int
  var y int
  x = 1
  y = 2
  if x < y goto skip
  x = 3
skip:
  return
}
`
	h, err := ParseProgram(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	main, _ := ResolveMethodSig(h, "Main: void main()")
	ifStmt, ok := main.IR.Stmts[2].(*If)
	if !ok {
		t.Fatalf("statement 2 is %T, want *If", main.IR.Stmts[2])
	}
	if ifStmt.Target != main.IR.Stmts[4] {
		t.Errorf("if target = %v, want the return statement", ifStmt.Target)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"undeclared var": `
class Main
static method <Main: void main()> {
  x = 1
}
`,
		"unknown class": `
class Main
static method <Other: void main()> {
  return
}
`,
		"undefined label": `
class Main
static method <Main: void main()> {
  goto nowhere
}
`,
		"unknown type": `
class Main
static method <Main: void main()> {
  var x Widget
  return
}
`,
	}
	for name, src := range cases {
		if _, err := ParseProgram(strings.NewReader(src)); err == nil {
			t.Errorf("%s: expected a parse error", name)
		}
	}
}
