// MIT License
//
// Copyright (c) 2022-2026 Kett Labs
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package config

import "strings"

// Field describes a single named setting and how it takes part in remote
// synchronization. Fields are declared in an explicit table at construction
// time; there is no runtime introspection.
type Field struct {
	// Name is the local field name.
	Name string
	// Alias overrides Name when deriving the remote key.
	Alias string
	// Global marks the field as shared across services. Non-global fields
	// have their remote key namespaced by the owning service name.
	Global bool
	// Sync marks the field as eligible for periodic store synchronization.
	Sync bool
	// Assign writes a remote (string-typed) value onto the local field,
	// applying best-effort type coercion.
	Assign func(value string)
}

// FieldSet is an ordered, immutable table of fields owned by one service.
// The remote key of every field is stable for the lifetime of the process.
type FieldSet struct {
	owner  string
	fields []Field
}

// NewFieldSet creates a field set for the given owning service name.
// Declaration order is preserved and duplicate keys are not rejected;
// uniqueness is the table author's responsibility.
func NewFieldSet(owner string, fields ...Field) *FieldSet {
	return &FieldSet{owner: owner, fields: fields}
}

// RemoteKey derives the store key of the given field:
// non-global fields are prefixed with "<owner>_", the alias wins over the name.
func (s *FieldSet) RemoteKey(field Field) string {
	key := field.Name
	if field.Alias != "" {
		key = field.Alias
	}
	if !field.Global {
		key = s.owner + "_" + key
	}
	return key
}

// SyncKeys returns the remote keys of all sync-enabled fields in
// declaration order.
func (s *FieldSet) SyncKeys() []string {
	keys := make([]string, 0, len(s.fields))
	for _, field := range s.fields {
		if field.Sync {
			keys = append(keys, s.RemoteKey(field))
		}
	}
	return keys
}

// Apply writes the given remote values onto the matching fields. Fields whose
// remote key is absent from values are left untouched; unknown keys are
// ignored. Applying the same values twice is idempotent.
func (s *FieldSet) Apply(values map[string]string) {
	for _, field := range s.fields {
		if field.Assign == nil {
			continue
		}
		if value, ok := values[s.RemoteKey(field)]; ok {
			field.Assign(value)
		}
	}
}

// parseBool interprets the usual truthy/falsy string tokens.
func parseBool(raw string) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, true
	case "0", "f", "false", "n", "no", "off":
		return false, true
	default:
		return false, false
	}
}
