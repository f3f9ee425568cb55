// Package xstream serializes arbitrary Go object graphs to
// hierarchical documents and reconstructs them, preserving shared and
// cyclic references through path-based reference markers. Conversion
// strategy is pluggable per type through a priority-ordered converter
// registry; JSON and YAML backends are provided.
package xstream

import (
	"reflect"

	"github.com/j2eeguys/xstream/converter"
)

// ReferenceAttribute is the attribute carrying a reference marker.
const ReferenceAttribute = "reference"

// ClassAttribute carries the dynamic type name of a value whose
// declared type could not pin it down.
const ClassAttribute = "class"

// XStream is the engine facade. A zero XStream is not usable;
// construct with New, which installs the builtin converter set.
//
// Registration methods and conversions may be used concurrently; each
// Marshal or Unmarshal call carries its own reference state.
type XStream struct {
	lookup *converter.Lookup
	namer  *Namer
}

func New() *XStream {
	x := &XStream{
		lookup: converter.NewLookup(),
		namer:  NewNamer(),
	}
	for _, sv := range []converter.SingleValueConverter{
		converter.BoolConverter{},
		converter.IntConverter{},
		converter.UintConverter{},
		converter.FloatConverter{},
		converter.StringConverter{},
		converter.TimeConverter{},
		converter.BytesConverter{},
	} {
		x.lookup.Register(converter.ForSingleValue(sv), converter.PriorityNormal)
	}
	x.lookup.Register(converter.SequenceConverter{}, converter.PriorityNormal)
	x.lookup.Register(converter.MapConverter{}, converter.PriorityNormal)
	x.lookup.Register(converter.ForSingleValue(converter.TextConverter{}), converter.PriorityLow)
	x.lookup.Register(converter.ReflectionConverter{}, converter.PriorityVeryLow)
	return x
}

// RegisterConverter adds a converter at the given priority. Higher
// priority wins; within one priority, earlier registrations win.
func (x *XStream) RegisterConverter(c converter.Converter, priority int) {
	x.lookup.Register(c, priority)
}

// RegisterSingleValueConverter adds a string-form converter.
func (x *XStream) RegisterSingleValueConverter(sv converter.SingleValueConverter, priority int) {
	x.lookup.Register(converter.ForSingleValue(sv), priority)
}

// Alias binds an element name to the type of the given prototype
// value, in both directions.
func (x *XStream) Alias(name string, prototype any) {
	x.namer.Alias(name, reflect.TypeOf(prototype))
}

// Namer exposes the name mapping, mainly for backends.
func (x *XStream) Namer() *Namer {
	return x.namer
}

// FlushCache drops all derived per-type state: converter resolutions
// and any cache a registered converter keeps itself.
func (x *XStream) FlushCache() {
	x.lookup.Flush()
}

// referenceable reports whether values of t take part in reference
// tracking. Only values with an identity survive sharing: pointers and
// maps on the way out, plus interface declarations on the way in.
func (x *XStream) referenceable(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Interface:
		return true
	}
	return false
}
