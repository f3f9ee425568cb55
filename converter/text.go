package converter

import (
	"encoding"
	"reflect"
)

var (
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// TextConverter is the fallback for types that implement both
// encoding.TextMarshaler and encoding.TextUnmarshaler (the latter on
// the pointer receiver). It is registered below the dedicated scalar
// converters so it only catches types nothing more specific claims.
type TextConverter struct{}

func (TextConverter) CanConvert(t reflect.Type) bool {
	if t == nil {
		return false
	}
	return t.Implements(textMarshalerType) &&
		reflect.PointerTo(t).Implements(textUnmarshalerType)
}

func (TextConverter) ToString(v reflect.Value) (string, error) {
	b, err := v.Interface().(encoding.TextMarshaler).MarshalText()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (TextConverter) FromString(s string, t reflect.Type) (reflect.Value, error) {
	p := reflect.New(t)
	if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
		return reflect.Value{}, &ValueError{Raw: s, Type: t, Err: err}
	}
	return p.Elem(), nil
}
