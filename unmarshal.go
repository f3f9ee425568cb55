package xstream

import (
	"bytes"
	"reflect"

	"github.com/j2eeguys/xstream/converter"
	"github.com/j2eeguys/xstream/debug"
	"github.com/j2eeguys/xstream/hio"
	"github.com/j2eeguys/xstream/ir"
	"github.com/j2eeguys/xstream/jsonr"
	"github.com/j2eeguys/xstream/treepath"
	"github.com/j2eeguys/xstream/vmodel"
)

type unmarshalCtx struct {
	x *XStream
	r *hio.TrackingReader

	// values maps element paths of referenceable objects to their
	// reconstructed value; an invalid reflect.Value records a null.
	values map[string]reflect.Value
	// seqValues aliases the subset of values recorded for members of a
	// sequence. Only these are eligible for position-based marker
	// resolution; a marker into plain fields must match literally.
	seqValues map[string]reflect.Value
	// parents holds the paths of referenceable conversions in
	// progress, so a descendant can associate the object under
	// construction before the constructor finishes.
	parents []string
	// types is the declared-type stack behind RequiredType.
	types []reflect.Type
}

var _ converter.UnmarshalContext = (*unmarshalCtx)(nil)

// Unmarshal reconstructs the object graph serialized in root into the
// value out points at.
func (x *XStream) Unmarshal(root *ir.Node, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return converter.NewConversionError("unmarshal target must be a non-nil pointer")
	}
	target := rv.Elem()

	r := hio.NewTrackingReader(hio.NewNodeReader(root), treepath.NewTracker())
	ctx := &unmarshalCtx{
		x:         x,
		r:         r,
		values:    map[string]reflect.Value{},
		seqValues: map[string]reflect.Value{},
	}

	if root.Name == "null" && len(root.Children) == 0 && !root.HasValue {
		target.Set(reflect.Zero(target.Type()))
		return nil
	}

	t := target.Type()
	if t.Kind() == reflect.Interface {
		if _, ok := root.Attr(ClassAttribute); !ok {
			named, ok := x.namer.TypeFor(root.Name)
			if !ok {
				return converter.NewConversionError("cannot determine root type").
					Add("element", root.Name)
			}
			t = named
		}
	}
	v, err := ctx.ConvertAnother(reflect.Value{}, t)
	if err != nil {
		return err
	}
	return assignTo(target, v)
}

// UnmarshalJSON parses a JSON document and reconstructs it into out.
func (x *XStream) UnmarshalJSON(data []byte, out any, opts ...jsonr.Option) error {
	root, err := jsonr.Parse(bytes.NewReader(data), opts...)
	if err != nil {
		return err
	}
	return x.Unmarshal(root, out)
}

// ConvertAnother reconstructs the element the reader is positioned on
// as a value of declared type t. parent is the composite under
// construction whose child this call produces; it is recorded against
// the enclosing pending path so back-references to an unfinished
// ancestor resolve.
func (c *unmarshalCtx) ConvertAnother(parent reflect.Value, t reflect.Type) (reflect.Value, error) {
	if len(c.parents) > 0 && parent.IsValid() {
		pending := c.parents[len(c.parents)-1]
		if _, ok := c.values[pending]; !ok {
			c.values[pending] = parent
		}
	}

	if marker, ok := c.r.Attribute(ReferenceAttribute); ok {
		if !c.x.referenceable(t) {
			return reflect.Value{}, &ReferenceError{Marker: marker, Type: t}
		}
		target := c.r.Path().Apply(treepath.Parse(marker))
		item, ok := c.values[target.String()]
		if !ok {
			item, ok = c.positional(target)
		}
		if !ok {
			if debug.Refs() {
				debug.Logf("ref: %s unresolved at %s", marker, c.r.Path())
			}
			return reflect.Value{}, &ReferenceError{Marker: marker, Type: t}
		}
		return item, nil
	}

	if class, ok := c.r.Attribute(ClassAttribute); ok {
		if t == nil || t.Kind() == reflect.Interface {
			named, found := c.x.namer.TypeFor(class)
			if !found {
				return reflect.Value{}, converter.NewConversionError("unknown class").
					Add("class", class).
					Add("path", c.CurrentPath())
			}
			t = named
		}
	}

	refable := c.x.referenceable(t)
	seqMember := vmodel.IsSequence(c.RequiredType())
	cur := c.r.Path().String()
	if refable {
		c.parents = append(c.parents, cur)
	}
	c.types = append(c.types, t)

	conv, err := c.x.lookup.ConverterForType(t)
	var result reflect.Value
	if err == nil {
		result, err = conv.Unmarshal(c.r, c)
	}

	c.types = c.types[:len(c.types)-1]
	if refable {
		c.parents = c.parents[:len(c.parents)-1]
		rec := result
		if err != nil {
			// Record the null sentinel even when conversion failed, so
			// a later marker to this element resolves to null instead
			// of reporting an invalid reference.
			rec = reflect.Value{}
		}
		c.values[cur] = rec
		if seqMember {
			c.seqValues[cur] = rec
		}
	}
	return result, err
}

// positional retries a failed marker lookup by sibling position.
// Writer-side paths name sequence members after their value type while
// the reader names them after their document type, so the literal path
// of a marker into a sequence never matches a recorded key; the sibling
// index still identifies the element.
func (c *unmarshalCtx) positional(target *treepath.Path) (reflect.Value, bool) {
	for key, v := range c.seqValues {
		if treepath.Parse(key).SamePosition(target) {
			return v, true
		}
	}
	return reflect.Value{}, false
}

func (c *unmarshalCtx) RequiredType() reflect.Type {
	if len(c.types) == 0 {
		return nil
	}
	return c.types[len(c.types)-1]
}

func (c *unmarshalCtx) NameFor(t reflect.Type) string {
	return c.x.namer.NameFor(t)
}

func (c *unmarshalCtx) TypeFor(name string) (reflect.Type, bool) {
	return c.x.namer.TypeFor(name)
}

func (c *unmarshalCtx) CurrentPath() string {
	return c.r.Path().String()
}

func assignTo(dst, src reflect.Value) error {
	if !src.IsValid() {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case src.Type().ConvertibleTo(dst.Type()):
		dst.Set(src.Convert(dst.Type()))
	default:
		return converter.NewConversionError("incompatible value").
			Add("have", src.Type().String()).
			Add("want", dst.Type().String())
	}
	return nil
}
