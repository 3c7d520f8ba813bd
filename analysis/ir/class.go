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

import "fmt"

// Class is a class or interface of the analyzed program.
type Class struct {
	Name string

	// Super is the direct superclass, nil for the root class and for interfaces
	// without a declared superinterface.
	Super *Class

	// Interfaces are the directly implemented interfaces (for a class), or the
	// directly extended superinterfaces (for an interface).
	Interfaces []*Class

	IsInterface bool
	IsAbstract  bool

	// methods maps subsignatures to declared methods.
	methods map[string]*Method

	// fields maps field names to canonical field references.
	fields map[string]*FieldRef
}

func (c *Class) String() string {
	return c.Name
}

// DeclaredMethod returns the method declared in this class with the given
// subsignature, or nil.
func (c *Class) DeclaredMethod(subsig string) *Method {
	return c.methods[subsig]
}

// DeclaredMethods returns all methods declared in this class, in no particular
// order.
func (c *Class) DeclaredMethods() []*Method {
	ms := make([]*Method, 0, len(c.methods))
	for _, m := range c.methods {
		ms = append(ms, m)
	}
	return ms
}

// FieldRef is the canonical reference to a field of a class. Two references to
// the same (class, name) pair are the same pointer.
type FieldRef struct {
	Class    *Class
	Name     string
	Type     Type
	IsStatic bool
}

func (f *FieldRef) String() string {
	return fmt.Sprintf("<%s: %s %s>", f.Class.Name, f.Type, f.Name)
}

// MethodRef is the reference a call site carries: the statically named class
// and subsignature.
type MethodRef struct {
	Class      *Class
	Subsig     string
	ReturnType Type
}

func (m *MethodRef) String() string {
	return fmt.Sprintf("<%s: %s>", m.Class.Name, m.Subsig)
}

// Resolve finds the declared method for this reference, ascending the
// superclass chain from the declaring class. It returns nil when no declaration
// exists.
func (m *MethodRef) Resolve() *Method {
	for c := m.Class; c != nil; c = c.Super {
		if target := c.DeclaredMethod(m.Subsig); target != nil {
			return target
		}
	}
	return nil
}

// Hierarchy is the class hierarchy oracle: the registry of all classes with
// subtype navigation.
type Hierarchy struct {
	classes map[string]*Class

	// inverse edges, computed on registration
	directSubclasses    map[*Class][]*Class
	directSubinterfaces map[*Class][]*Class
	directImplementors  map[*Class][]*Class
}

// NewHierarchy returns an empty hierarchy.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{
		classes:             map[string]*Class{},
		directSubclasses:    map[*Class][]*Class{},
		directSubinterfaces: map[*Class][]*Class{},
		directImplementors:  map[*Class][]*Class{},
	}
}

// Add registers a class and records the inverse subtype edges. Registering two
// classes with the same name is an error.
func (h *Hierarchy) Add(c *Class) error {
	if _, ok := h.classes[c.Name]; ok {
		return fmt.Errorf("duplicate class %q", c.Name)
	}
	h.classes[c.Name] = c
	if c.Super != nil && !c.IsInterface {
		h.directSubclasses[c.Super] = append(h.directSubclasses[c.Super], c)
	}
	for _, itf := range c.Interfaces {
		if c.IsInterface {
			h.directSubinterfaces[itf] = append(h.directSubinterfaces[itf], c)
		} else {
			h.directImplementors[itf] = append(h.directImplementors[itf], c)
		}
	}
	return nil
}

// Class returns the registered class with the given name, or nil.
func (h *Hierarchy) Class(name string) *Class {
	return h.classes[name]
}

// Classes returns all registered classes, in no particular order.
func (h *Hierarchy) Classes() []*Class {
	cs := make([]*Class, 0, len(h.classes))
	for _, c := range h.classes {
		cs = append(cs, c)
	}
	return cs
}

// DirectSubclassesOf returns the classes whose direct superclass is c.
func (h *Hierarchy) DirectSubclassesOf(c *Class) []*Class {
	return h.directSubclasses[c]
}

// DirectSubinterfacesOf returns the interfaces directly extending interface c.
func (h *Hierarchy) DirectSubinterfacesOf(c *Class) []*Class {
	return h.directSubinterfaces[c]
}

// DirectImplementorsOf returns the classes directly implementing interface c.
func (h *Hierarchy) DirectImplementorsOf(c *Class) []*Class {
	return h.directImplementors[c]
}
