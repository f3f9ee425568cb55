package xstream

import (
	"bytes"
	"reflect"

	"github.com/j2eeguys/xstream/converter"
	"github.com/j2eeguys/xstream/debug"
	"github.com/j2eeguys/xstream/hio"
	"github.com/j2eeguys/xstream/ir"
	"github.com/j2eeguys/xstream/jsonw"
	"github.com/j2eeguys/xstream/treepath"
)

// refKey identifies an object for reference tracking: the pointer
// alone is not enough, since a struct and its first field share an
// address.
type refKey struct {
	ptr uintptr
	typ reflect.Type
}

type marshalCtx struct {
	x    *XStream
	w    *hio.TrackingWriter
	seen map[refKey]*treepath.Path
}

var _ converter.MarshalContext = (*marshalCtx)(nil)

// MarshalTo serializes v into w as a single root element. Shared and
// cyclic references are written as reference markers: the second
// encounter of an object emits an attribute holding the relative path
// to its first occurrence instead of recursing.
func (x *XStream) MarshalTo(v any, w hio.Writer) error {
	tw := hio.NewTrackingWriter(w, treepath.NewTracker())
	ctx := &marshalCtx{x: x, w: tw, seen: map[refKey]*treepath.Path{}}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() || isNilValue(rv) {
		if err := tw.StartNode("null", hio.NullType); err != nil {
			return err
		}
		if err := tw.EndNode(); err != nil {
			return err
		}
		return w.Flush()
	}
	if err := tw.StartNode(x.namer.NameFor(rv.Type()), hintType(rv)); err != nil {
		return err
	}
	if err := ctx.ConvertAnother(rv); err != nil {
		return err
	}
	if err := tw.EndNode(); err != nil {
		return err
	}
	return w.Flush()
}

// Marshal serializes v into an element tree.
func (x *XStream) Marshal(v any) (*ir.Node, error) {
	nw := hio.NewNodeWriter()
	if err := x.MarshalTo(v, nw); err != nil {
		return nil, err
	}
	return nw.Root(), nil
}

// MarshalJSON serializes v as JSON.
func (x *XStream) MarshalJSON(v any, opts ...jsonw.Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := x.MarshalTo(v, jsonw.NewWriter(&buf, opts...)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *marshalCtx) ConvertAnother(v reflect.Value) error {
	for v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	if key, ok := identity(v); ok {
		cur := c.w.Path()
		if prior, seen := c.seen[key]; seen {
			marker := cur.RelativeTo(prior)
			if debug.Refs() {
				debug.Logf("ref: %s -> %s (%s)", cur, prior, marker)
			}
			return c.w.AddAttribute(ReferenceAttribute, marker.String())
		}
		c.seen[key] = cur
	}
	conv, err := c.x.lookup.ConverterForType(v.Type())
	if err != nil {
		return err
	}
	return conv.Marshal(v, c.w, c)
}

func (c *marshalCtx) NameFor(t reflect.Type) string {
	return c.x.namer.NameFor(t)
}

func (c *marshalCtx) CurrentPath() string {
	return c.w.Path().String()
}

// identity returns the tracking key of a value, if it has one. Only
// pointers and maps carry an address that witnesses sharing.
func identity(v reflect.Value) (refKey, bool) {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map:
		if !v.IsNil() {
			return refKey{ptr: v.Pointer(), typ: v.Type()}, true
		}
	}
	return refKey{}, false
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// hintType is the declared type handed to the backend for the root:
// interfaces and pointers unwrap so scalar typing and the
// array-versus-object decision see the real shape.
func hintType(v reflect.Value) reflect.Type {
	for v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	t := v.Type()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
