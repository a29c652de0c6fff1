// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package naming

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/dexmill/dex"
)

// TestIdentityLens_Passthrough verifies identity lensing returns the
// items' own names.
func TestIdentityLens_Passthrough(t *testing.T) {
	f := dex.NewFactory()
	lens := NewIdentityLens()

	typ, err := f.CreateType("Lcom/example/Foo;")
	require.NoError(t, err)
	m, err := f.CreateMethodFromDescriptors("Lcom/example/Foo;", "run", "V", nil)
	require.NoError(t, err)
	holder, err := f.CreateType("Lcom/example/Foo;")
	require.NoError(t, err)
	intType, err := f.CreateType("I")
	require.NoError(t, err)
	fld, err := f.CreateField(holder, intType, "count")
	require.NoError(t, err)

	assert.Equal(t, "Lcom/example/Foo;", lens.TypeDescriptor(typ))
	assert.Equal(t, "run", lens.MethodName(m))
	assert.Equal(t, "count", lens.FieldName(fld))
	assert.Equal(t, "Lcom/example/Foo;", lens.StringValue(typ.Descriptor()))
}

// TestDictionaryLens_Renames verifies mapped names rename and unmapped
// names pass through.
func TestDictionaryLens_Renames(t *testing.T) {
	f := dex.NewFactory()
	lens := NewDictionaryLens(Dictionary{
		Types:   map[string]string{"Lcom/example/Secret;": "La/a;"},
		Members: map[string]string{"secretMethod": "a"},
	})

	secret, err := f.CreateType("Lcom/example/Secret;")
	require.NoError(t, err)
	public, err := f.CreateType("Lcom/example/Public;")
	require.NoError(t, err)
	renamed, err := f.CreateMethodFromDescriptors("Lcom/example/Secret;", "secretMethod", "V", nil)
	require.NoError(t, err)
	kept, err := f.CreateMethodFromDescriptors("Lcom/example/Secret;", "publicMethod", "V", nil)
	require.NoError(t, err)

	assert.Equal(t, "La/a;", lens.TypeDescriptor(secret))
	assert.Equal(t, "Lcom/example/Public;", lens.TypeDescriptor(public))
	assert.Equal(t, "a", lens.MethodName(renamed))
	assert.Equal(t, "publicMethod", lens.MethodName(kept))
}

// TestDictionaryLens_StringValuesNeverRename verifies string payloads
// are untouched even when the value collides with a renamed name.
func TestDictionaryLens_StringValuesNeverRename(t *testing.T) {
	f := dex.NewFactory()
	lens := NewDictionaryLens(Dictionary{
		Members: map[string]string{"secretMethod": "a"},
	})

	s, err := f.CreateString("secretMethod")
	require.NoError(t, err)
	assert.Equal(t, "secretMethod", lens.StringValue(s))
}

// TestLoadDictionaryLens reads a dictionary from YAML and drives a
// freeze with it.
func TestLoadDictionaryLens(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "renames.yaml")
	contents := `types:
  "Lcom/example/Zeta;": "La;"
  "Lcom/example/Alpha;": "Lb;"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	lens, err := LoadDictionaryLens(path)
	require.NoError(t, err)

	f := dex.NewFactory()
	zeta, err := f.CreateType("Lcom/example/Zeta;")
	require.NoError(t, err)
	alpha, err := f.CreateType("Lcom/example/Alpha;")
	require.NoError(t, err)

	require.NoError(t, f.Freeze(context.Background(), lens))
	assert.Less(t, zeta.SortedIndex(), alpha.SortedIndex(),
		"dictionary should order Zeta before Alpha")
}

// TestLoadDictionaryLens_Missing verifies a missing file surfaces an error.
func TestLoadDictionaryLens_Missing(t *testing.T) {
	_, err := LoadDictionaryLens(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

// TestLoadDictionaryLens_Malformed verifies YAML errors surface.
func TestLoadDictionaryLens_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("types: [not, a, map]"), 0o600))

	_, err := LoadDictionaryLens(path)
	assert.Error(t, err)
}
