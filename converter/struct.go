package converter

import (
	"reflect"

	"github.com/j2eeguys/xstream/hio"
	"github.com/j2eeguys/xstream/vmodel"
)

// ReflectionConverter is the catch-all for composites: structs, and
// pointers to anything. It walks exported fields through vmodel,
// emitting one child element per non-nil field. Registered at the
// lowest priority so any purpose-built converter claims its types
// first.
type ReflectionConverter struct{}

func (ReflectionConverter) CanConvert(t reflect.Type) bool {
	if t == nil {
		return false
	}
	k := t.Kind()
	return k == reflect.Struct || k == reflect.Ptr
}

func (ReflectionConverter) Marshal(v reflect.Value, w hio.Writer, ctx MarshalContext) error {
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		// Pointer to a non-composite: serialize the pointee with
		// whatever converter claims it.
		return ctx.ConvertAnother(v)
	}
	for _, f := range vmodel.Fields(v.Type()) {
		fv := vmodel.Value(v, f)
		if isNil(fv) {
			continue
		}
		dyn := unwrap(fv)
		hint := dyn.Type()
		for hint.Kind() == reflect.Ptr {
			hint = hint.Elem()
		}
		if err := w.StartNode(f.Name, hint); err != nil {
			return err
		}
		if f.Type.Kind() == reflect.Interface {
			if err := w.AddAttribute("class", ctx.NameFor(dyn.Type())); err != nil {
				return err
			}
		}
		if err := ctx.ConvertAnother(dyn); err != nil {
			return err
		}
		if err := w.EndNode(); err != nil {
			return err
		}
	}
	return nil
}

func (c ReflectionConverter) Unmarshal(r hio.Reader, ctx UnmarshalContext) (reflect.Value, error) {
	t := ctx.RequiredType()
	if t.Kind() == reflect.Ptr {
		elem := t.Elem()
		if elem.Kind() != reflect.Struct {
			inner, err := ctx.ConvertAnother(reflect.Value{}, elem)
			if err != nil {
				return reflect.Value{}, err
			}
			p := reflect.New(elem)
			if err := assign(p.Elem(), inner); err != nil {
				return reflect.Value{}, err
			}
			return p, nil
		}
		p := reflect.New(elem)
		if err := c.populate(p, r, ctx); err != nil {
			return reflect.Value{}, err
		}
		return p, nil
	}
	p := reflect.New(t)
	if err := c.populate(p, r, ctx); err != nil {
		return reflect.Value{}, err
	}
	return p.Elem(), nil
}

// populate fills the struct behind p from the reader's children. p is
// handed to ConvertAnother as the pending parent, so a descendant that
// refers back to this struct resolves while it is still being built.
func (ReflectionConverter) populate(p reflect.Value, r hio.Reader, ctx UnmarshalContext) error {
	st := p.Type().Elem()
	for r.HasMoreChildren() {
		r.MoveDown()
		name := r.NodeName()
		f, ok := vmodel.FieldByName(st, name)
		if !ok {
			return NewConversionError("unknown field").
				Add("field", name).
				Add("type", st.String()).
				Add("path", ctx.CurrentPath())
		}
		child, err := ctx.ConvertAnother(p, f.Type)
		if err != nil {
			return err
		}
		if err := assign(p.Elem().FieldByIndex(f.Index), child); err != nil {
			return err
		}
		r.MoveUp()
	}
	return nil
}

func (ReflectionConverter) FlushCache() {
	vmodel.FlushCache()
}
