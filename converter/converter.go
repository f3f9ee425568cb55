// Package converter defines the conversion strategy model: a Converter
// turns one category of Go types into hierarchical stream events and
// back, and a Lookup resolves which converter handles a given type by
// probing a priority-ordered list.
package converter

import (
	"reflect"

	"github.com/j2eeguys/xstream/hio"
)

// Registration priorities. Within one priority, earlier registrations
// win.
const (
	PriorityNormal  = 0
	PriorityLow     = -10
	PriorityVeryLow = -20
)

// Converter both serializes and deserializes one category of type.
// CanConvert may express structural predicates ("any slice type"), not
// just exact-type matches.
type Converter interface {
	CanConvert(t reflect.Type) bool
	Marshal(v reflect.Value, w hio.Writer, ctx MarshalContext) error
	Unmarshal(r hio.Reader, ctx UnmarshalContext) (reflect.Value, error)
}

// MarshalContext is the marshaller's callback surface for converters.
// ConvertAnother serializes a nested value into the currently open
// element, consulting reference tracking first.
type MarshalContext interface {
	ConvertAnother(v reflect.Value) error
	NameFor(t reflect.Type) string
	CurrentPath() string
}

// UnmarshalContext is the unmarshaller's callback surface. The parent
// passed to ConvertAnother is the composite under construction, so a
// descendant holding a back-reference to it can resolve before the
// parent is finished.
type UnmarshalContext interface {
	ConvertAnother(parent reflect.Value, t reflect.Type) (reflect.Value, error)
	RequiredType() reflect.Type
	NameFor(t reflect.Type) string
	TypeFor(name string) (reflect.Type, bool)
	CurrentPath() string
}

// Caching is implemented by converters that keep derived per-type data;
// Lookup.Flush propagates to them.
type Caching interface {
	FlushCache()
}
