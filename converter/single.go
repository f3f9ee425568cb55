package converter

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/j2eeguys/xstream/hio"
)

// SingleValueConverter handles types whose whole state round-trips
// through one string. ForSingleValue adapts it to the Converter
// interface.
type SingleValueConverter interface {
	CanConvert(t reflect.Type) bool
	ToString(v reflect.Value) (string, error)
	FromString(s string, t reflect.Type) (reflect.Value, error)
}

type singleValue struct {
	sv SingleValueConverter
}

// ForSingleValue wraps a string-form converter so it plugs into the
// registry like any other.
func ForSingleValue(sv SingleValueConverter) Converter {
	return &singleValue{sv: sv}
}

func (c *singleValue) String() string {
	return fmt.Sprintf("%T", c.sv)
}

func (c *singleValue) CanConvert(t reflect.Type) bool {
	return c.sv.CanConvert(t)
}

func (c *singleValue) Marshal(v reflect.Value, w hio.Writer, _ MarshalContext) error {
	s, err := c.sv.ToString(v)
	if err != nil {
		return err
	}
	return w.SetValue(s)
}

func (c *singleValue) Unmarshal(r hio.Reader, ctx UnmarshalContext) (reflect.Value, error) {
	return c.sv.FromString(r.Value(), ctx.RequiredType())
}

// BoolConverter handles bool and named bool types.
type BoolConverter struct{}

func (BoolConverter) CanConvert(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Bool
}

func (BoolConverter) ToString(v reflect.Value) (string, error) {
	return strconv.FormatBool(v.Bool()), nil
}

func (BoolConverter) FromString(s string, t reflect.Type) (reflect.Value, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return reflect.Value{}, &ValueError{Raw: s, Type: t, Err: err}
	}
	out := reflect.New(t).Elem()
	out.SetBool(b)
	return out, nil
}

// IntConverter handles the signed integer kinds, rejecting values that
// overflow the declared width.
type IntConverter struct{}

func (IntConverter) CanConvert(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func (IntConverter) ToString(v reflect.Value) (string, error) {
	return strconv.FormatInt(v.Int(), 10), nil
}

func (IntConverter) FromString(s string, t reflect.Type) (reflect.Value, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return reflect.Value{}, &ValueError{Raw: s, Type: t, Err: err}
	}
	out := reflect.New(t).Elem()
	if out.OverflowInt(n) {
		return reflect.Value{}, &ValueError{Raw: s, Type: t, Err: strconv.ErrRange}
	}
	out.SetInt(n)
	return out, nil
}

// UintConverter handles the unsigned integer kinds.
type UintConverter struct{}

func (UintConverter) CanConvert(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func (UintConverter) ToString(v reflect.Value) (string, error) {
	return strconv.FormatUint(v.Uint(), 10), nil
}

func (UintConverter) FromString(s string, t reflect.Type) (reflect.Value, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return reflect.Value{}, &ValueError{Raw: s, Type: t, Err: err}
	}
	out := reflect.New(t).Elem()
	if out.OverflowUint(n) {
		return reflect.Value{}, &ValueError{Raw: s, Type: t, Err: strconv.ErrRange}
	}
	out.SetUint(n)
	return out, nil
}

// FloatConverter handles float32 and float64.
type FloatConverter struct{}

func (FloatConverter) CanConvert(t reflect.Type) bool {
	if t == nil {
		return false
	}
	k := t.Kind()
	return k == reflect.Float32 || k == reflect.Float64
}

func (FloatConverter) ToString(v reflect.Value) (string, error) {
	bits := 64
	if v.Kind() == reflect.Float32 {
		bits = 32
	}
	return strconv.FormatFloat(v.Float(), 'g', -1, bits), nil
}

func (FloatConverter) FromString(s string, t reflect.Type) (reflect.Value, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return reflect.Value{}, &ValueError{Raw: s, Type: t, Err: err}
	}
	out := reflect.New(t).Elem()
	if out.OverflowFloat(f) {
		return reflect.Value{}, &ValueError{Raw: s, Type: t, Err: strconv.ErrRange}
	}
	out.SetFloat(f)
	return out, nil
}

// StringConverter handles string and named string types.
type StringConverter struct{}

func (StringConverter) CanConvert(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.String
}

func (StringConverter) ToString(v reflect.Value) (string, error) {
	return v.String(), nil
}

func (StringConverter) FromString(s string, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	out.SetString(s)
	return out, nil
}

var timeType = reflect.TypeOf(time.Time{})

// TimeConverter renders time.Time in RFC 3339 form with nanoseconds.
type TimeConverter struct{}

func (TimeConverter) CanConvert(t reflect.Type) bool {
	return t == timeType
}

func (TimeConverter) ToString(v reflect.Value) (string, error) {
	return v.Interface().(time.Time).Format(time.RFC3339Nano), nil
}

func (TimeConverter) FromString(s string, t reflect.Type) (reflect.Value, error) {
	tm, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return reflect.Value{}, &ValueError{Raw: s, Type: t, Err: err}
	}
	return reflect.ValueOf(tm), nil
}

var bytesType = reflect.TypeOf([]byte(nil))

// BytesConverter renders []byte as base64 rather than an element per
// byte. It must be registered before the general sequence converter.
type BytesConverter struct{}

func (BytesConverter) CanConvert(t reflect.Type) bool {
	return t == bytesType
}

func (BytesConverter) ToString(v reflect.Value) (string, error) {
	return base64.StdEncoding.EncodeToString(v.Bytes()), nil
}

func (BytesConverter) FromString(s string, t reflect.Type) (reflect.Value, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return reflect.Value{}, &ValueError{Raw: s, Type: t, Err: err}
	}
	return reflect.ValueOf(b), nil
}
