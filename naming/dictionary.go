// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package naming

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/dexmill/dex"
)

// Dictionary holds rename decisions keyed by original name. Unmapped
// names pass through unchanged.
type Dictionary struct {
	// Types maps original type descriptors to renamed descriptors.
	Types map[string]string `yaml:"types"`

	// Members maps original field/method names to renamed names.
	// Member renames are global: the same original name renames
	// identically in every holder.
	Members map[string]string `yaml:"members"`
}

// DictionaryLens applies a rename dictionary. Items not covered by the
// dictionary keep their original names, so a partial dictionary yields a
// partially renamed output order.
type DictionaryLens struct {
	dict Dictionary
}

// NewDictionaryLens creates a lens over the given dictionary.
func NewDictionaryLens(dict Dictionary) *DictionaryLens {
	return &DictionaryLens{dict: dict}
}

// LoadDictionaryLens reads a YAML rename dictionary from path.
//
// The file format:
//
//	types:
//	  "Lcom/example/Secret;": "La/a;"
//	members:
//	  "secretMethod": "a"
func LoadDictionaryLens(path string) (*DictionaryLens, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rename dictionary %s: %w", path, err)
	}
	var dict Dictionary
	if err := yaml.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("parse rename dictionary %s: %w", path, err)
	}
	return NewDictionaryLens(dict), nil
}

// StringValue implements dex.NamingLens. String values are serialized
// payloads, not names; they are never renamed.
func (l *DictionaryLens) StringValue(s *dex.String) string { return s.Value() }

// TypeDescriptor implements dex.NamingLens.
func (l *DictionaryLens) TypeDescriptor(t *dex.Type) string {
	if renamed, ok := l.dict.Types[t.Descriptor().Value()]; ok {
		return renamed
	}
	return t.Descriptor().Value()
}

// FieldName implements dex.NamingLens.
func (l *DictionaryLens) FieldName(f *dex.Field) string {
	if renamed, ok := l.dict.Members[f.Name().Value()]; ok {
		return renamed
	}
	return f.Name().Value()
}

// MethodName implements dex.NamingLens.
func (l *DictionaryLens) MethodName(m *dex.Method) string {
	if renamed, ok := l.dict.Members[m.Name().Value()]; ok {
		return renamed
	}
	return m.Name().Value()
}

var _ dex.NamingLens = (*DictionaryLens)(nil)
