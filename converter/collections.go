package converter

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/j2eeguys/xstream/hio"
)

// unwrap peels interface wrappers so converters see the dynamic value.
func unwrap(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	return v
}

func isNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// writeItem emits one collection member as a complete element named
// after its dynamic type. A nil member becomes an explicit null
// element.
func writeItem(v reflect.Value, w hio.Writer, ctx MarshalContext) error {
	v = unwrap(v)
	if isNil(v) {
		if err := w.StartNode("null", hio.NullType); err != nil {
			return err
		}
		return w.EndNode()
	}
	t := v.Type()
	hint := t
	for hint.Kind() == reflect.Ptr {
		hint = hint.Elem()
	}
	if err := w.StartNode(ctx.NameFor(t), hint); err != nil {
		return err
	}
	if err := ctx.ConvertAnother(v); err != nil {
		return err
	}
	return w.EndNode()
}

// readItem reconstructs one collection member from the element the
// reader is positioned on. declared is the statically known member
// type; element names only override it when it cannot pin a concrete
// type on its own. parent is the container under construction, handed
// through so self-references into it resolve.
func readItem(r hio.Reader, ctx UnmarshalContext, declared reflect.Type, parent reflect.Value) (reflect.Value, error) {
	name := r.NodeName()
	if name == "null" && !r.HasMoreChildren() && r.Value() == "" {
		if declared == nil {
			return reflect.Value{}, nil
		}
		return reflect.Zero(declared), nil
	}
	t := declared
	if t == nil || t.Kind() == reflect.Interface {
		named, ok := ctx.TypeFor(name)
		if !ok {
			return reflect.Value{}, NewConversionError("cannot determine item type").
				Add("element", name).
				Add("path", ctx.CurrentPath())
		}
		t = named
	}
	return ctx.ConvertAnother(parent, t)
}

// SequenceConverter handles slices and arrays, each member rendered as
// one child element.
type SequenceConverter struct{}

func (SequenceConverter) CanConvert(t reflect.Type) bool {
	if t == nil {
		return false
	}
	k := t.Kind()
	return k == reflect.Slice || k == reflect.Array
}

func (SequenceConverter) Marshal(v reflect.Value, w hio.Writer, ctx MarshalContext) error {
	for i := 0; i < v.Len(); i++ {
		if err := writeItem(v.Index(i), w, ctx); err != nil {
			return err
		}
	}
	return nil
}

func (SequenceConverter) Unmarshal(r hio.Reader, ctx UnmarshalContext) (reflect.Value, error) {
	t := ctx.RequiredType()
	elem := t.Elem()
	var items []reflect.Value
	for r.HasMoreChildren() {
		r.MoveDown()
		item, err := readItem(r, ctx, elem, reflect.Value{})
		if err != nil {
			return reflect.Value{}, err
		}
		items = append(items, item)
		r.MoveUp()
	}
	if t.Kind() == reflect.Array {
		if len(items) > t.Len() {
			return reflect.Value{}, NewConversionError("too many elements for array").
				Add("type", t.String()).
				Add("count", fmt.Sprint(len(items))).
				Add("path", ctx.CurrentPath())
		}
		out := reflect.New(t).Elem()
		for i, item := range items {
			if err := assign(out.Index(i), item); err != nil {
				return reflect.Value{}, err
			}
		}
		return out, nil
	}
	out := reflect.MakeSlice(t, len(items), len(items))
	for i, item := range items {
		if err := assign(out.Index(i), item); err != nil {
			return reflect.Value{}, err
		}
	}
	return out, nil
}

// assign stores src into the settable dst, converting across
// compatible named types.
func assign(dst reflect.Value, src reflect.Value) error {
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
		return NewConversionError("incompatible value").
			Add("have", src.Type().String()).
			Add("want", dst.Type().String())
	}
	return nil
}

// mapEntryType makes entry elements render as two-member lists.
var mapEntryType = reflect.TypeOf([2]any{})

// MapConverter renders maps as a sequence of entry elements, each
// holding the key and the value as its two children. Entries are
// ordered by the key's string rendering so output is deterministic.
type MapConverter struct{}

func (MapConverter) CanConvert(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Map
}

func (MapConverter) Marshal(v reflect.Value, w hio.Writer, ctx MarshalContext) error {
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})
	for _, k := range keys {
		if err := w.StartNode("entry", mapEntryType); err != nil {
			return err
		}
		if err := writeItem(k, w, ctx); err != nil {
			return err
		}
		if err := writeItem(v.MapIndex(k), w, ctx); err != nil {
			return err
		}
		if err := w.EndNode(); err != nil {
			return err
		}
	}
	return nil
}

func (MapConverter) Unmarshal(r hio.Reader, ctx UnmarshalContext) (reflect.Value, error) {
	t := ctx.RequiredType()
	out := reflect.MakeMap(t)
	for r.HasMoreChildren() {
		r.MoveDown()
		if !r.HasMoreChildren() {
			return reflect.Value{}, NewConversionError("map entry has no key").
				Add("path", ctx.CurrentPath())
		}
		r.MoveDown()
		key, err := readItem(r, ctx, t.Key(), out)
		if err != nil {
			return reflect.Value{}, err
		}
		r.MoveUp()
		if !r.HasMoreChildren() {
			return reflect.Value{}, NewConversionError("map entry has no value").
				Add("path", ctx.CurrentPath())
		}
		r.MoveDown()
		val, err := readItem(r, ctx, t.Elem(), out)
		if err != nil {
			return reflect.Value{}, err
		}
		r.MoveUp()
		r.MoveUp()

		dk := reflect.New(t.Key()).Elem()
		if err := assign(dk, key); err != nil {
			return reflect.Value{}, err
		}
		dv := reflect.New(t.Elem()).Elem()
		if err := assign(dv, val); err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(dk, dv)
	}
	return out, nil
}
