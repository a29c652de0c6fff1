// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/dexmill/dex"
	"github.com/AleutianAI/dexmill/hierarchy"
)

// classFile is the YAML fixture format for a class graph.
//
// Example:
//
//	classes:
//	  - name: com/example/Base
//	    super: java/lang/Object
//	    methods:
//	      - {name: run, return: V}
//	  - name: com/example/Leaf
//	    super: com/example/Base
//	    interfaces: [com/example/Marker]
//	    fields:
//	      - {name: count, type: I}
type classFile struct {
	Classes []classEntry `yaml:"classes"`
}

type classEntry struct {
	Name       string        `yaml:"name"`
	Super      string        `yaml:"super"`
	Interfaces []string      `yaml:"interfaces"`
	Interface  bool          `yaml:"interface"`
	Library    bool          `yaml:"library"`
	Methods    []methodEntry `yaml:"methods"`
	Fields     []fieldEntry  `yaml:"fields"`
}

type methodEntry struct {
	Name   string   `yaml:"name"`
	Return string   `yaml:"return"`
	Params []string `yaml:"params"`
}

type fieldEntry struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// descriptorFor accepts either an internal name (com/example/Foo) or a
// full descriptor (Lcom/example/Foo; or a primitive/array descriptor).
func descriptorFor(name string) string {
	if strings.HasPrefix(name, "L") && strings.HasSuffix(name, ";") {
		return name
	}
	if strings.HasPrefix(name, "[") || len(name) == 1 {
		return name
	}
	return "L" + name + ";"
}

// loadClassGraph reads a YAML class fixture, interns every reference
// through the factory, and returns the frozen hierarchy graph.
func loadClassGraph(f *dex.Factory, path string) (*hierarchy.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read class graph %s: %w", path, err)
	}

	var file classFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse class graph %s: %w", path, err)
	}

	graph := hierarchy.NewGraph()
	for _, entry := range file.Classes {
		def, err := buildClassDef(f, entry)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", entry.Name, err)
		}
		if err := graph.AddClass(def); err != nil {
			return nil, fmt.Errorf("class %s: %w", entry.Name, err)
		}
	}
	graph.Freeze()
	return graph, nil
}

func buildClassDef(f *dex.Factory, entry classEntry) (*hierarchy.ClassDef, error) {
	if entry.Name == "" {
		return nil, fmt.Errorf("class entry missing name")
	}

	typ, err := f.CreateType(descriptorFor(entry.Name))
	if err != nil {
		return nil, err
	}

	def := &hierarchy.ClassDef{
		Type:      typ,
		Interface: entry.Interface,
		Library:   entry.Library,
	}

	if entry.Super != "" {
		super, err := f.CreateType(descriptorFor(entry.Super))
		if err != nil {
			return nil, err
		}
		def.SuperType = super
	}

	for _, name := range entry.Interfaces {
		iface, err := f.CreateType(descriptorFor(name))
		if err != nil {
			return nil, err
		}
		def.Interfaces = append(def.Interfaces, iface)
	}

	for _, m := range entry.Methods {
		ret := m.Return
		if ret == "" {
			ret = "V"
		}
		params := make([]string, len(m.Params))
		for i, p := range m.Params {
			params[i] = descriptorFor(p)
		}
		method, err := f.CreateMethodFromDescriptors(typ.Descriptor().Value(), m.Name, descriptorFor(ret), params)
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", m.Name, err)
		}
		def.Methods = append(def.Methods, method)
	}

	for _, fld := range entry.Fields {
		fieldType, err := f.CreateType(descriptorFor(fld.Type))
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fld.Name, err)
		}
		field, err := f.CreateField(typ, fieldType, fld.Name)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fld.Name, err)
		}
		def.Fields = append(def.Fields, field)
	}

	return def, nil
}
