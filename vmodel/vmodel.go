// Package vmodel is the reflection-backed value model the converters
// use: it enumerates a composite's fields, constructs new composites,
// and classifies types as sequence-like or scalar-convertible. It is
// the only package that inspects struct layout; converters stay
// declarative.
package vmodel

import (
	"reflect"
	"sync"
)

// Field describes one exported field of a composite type. Index is the
// reflect field index chain, so promoted fields of embedded structs can
// be addressed directly.
type Field struct {
	Name  string
	Type  reflect.Type
	Index []int
}

var fieldCache sync.Map // reflect.Type -> []Field

// Fields enumerates the exported fields of a struct type, flattening
// embedded structs. Results are cached per type.
func Fields(t reflect.Type) []Field {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]Field)
	}
	fields := collectFields(t, nil, map[string]bool{})
	fieldCache.Store(t, fields)
	return fields
}

func collectFields(t reflect.Type, prefix []int, seen map[string]bool) []Field {
	var res []Field
	var embedded []reflect.StructField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			embedded = append(embedded, f)
			continue
		}
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		idx := append(append([]int(nil), prefix...), i)
		res = append(res, Field{Name: f.Name, Type: f.Type, Index: idx})
	}
	// Promoted fields come after the outer type's own, and never
	// shadow them.
	for _, f := range embedded {
		idx := append(append([]int(nil), prefix...), f.Index[0])
		res = append(res, collectFields(f.Type, idx, seen)...)
	}
	return res
}

// FieldByName finds an exported (possibly promoted) field by name.
func FieldByName(t reflect.Type, name string) (Field, bool) {
	for _, f := range Fields(t) {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Value extracts a field's value from an instance of its owning type.
func Value(v reflect.Value, f Field) reflect.Value {
	return v.FieldByIndex(f.Index)
}

// New constructs an addressable zero value of type t.
func New(t reflect.Type) reflect.Value {
	return reflect.New(t).Elem()
}

// FlushCache drops the per-type field cache.
func FlushCache() {
	fieldCache.Range(func(k, _ any) bool {
		fieldCache.Delete(k)
		return true
	})
}

var sequenceMu sync.RWMutex
var sequenceTypes = map[reflect.Type]bool{}

// RegisterSequenceType extends the sequence predicate to a type whose
// instances should render as an ordered list construct even though its
// kind is not slice, array, or map.
func RegisterSequenceType(t reflect.Type) {
	sequenceMu.Lock()
	defer sequenceMu.Unlock()
	sequenceTypes[t] = true
}

// IsSequence reports whether values of t render as an ordered list
// construct (a JSON array) rather than a named-field object.
func IsSequence(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	sequenceMu.RLock()
	defer sequenceMu.RUnlock()
	return sequenceTypes[t]
}
