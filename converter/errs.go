package converter

import (
	"fmt"
	"reflect"
	"strings"
)

// ConversionError carries a message plus ordered diagnostic details
// (path, type names, raw text) accumulated as it propagates up the
// conversion stack.
type ConversionError struct {
	Msg     string
	Err     error
	details []detail
}

type detail struct {
	key, value string
}

func NewConversionError(msg string) *ConversionError {
	return &ConversionError{Msg: msg}
}

// Add appends a diagnostic detail, preserving insertion order.
func (e *ConversionError) Add(key, value string) *ConversionError {
	e.details = append(e.details, detail{key, value})
	return e
}

// Get returns the first detail recorded under key.
func (e *ConversionError) Get(key string) string {
	for _, d := range e.details {
		if d.key == key {
			return d.value
		}
	}
	return ""
}

func (e *ConversionError) Error() string {
	var b strings.Builder
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	for i, d := range e.details {
		if i == 0 {
			b.WriteString(" (")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(d.key)
		b.WriteString("=")
		b.WriteString(d.value)
	}
	if len(e.details) > 0 {
		b.WriteString(")")
	}
	return b.String()
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Probe records the outcome of asking one converter whether it can
// handle a type. Fault is empty if CanConvert returned normally.
type Probe struct {
	Converter string
	Fault     string
}

// NoConverterError reports that no registered converter accepted a
// type. It enumerates every converter probed and any fault raised
// during probing, to make a misconfigured registry diagnosable.
type NoConverterError struct {
	Type   reflect.Type
	Probes []Probe
}

func (e *NoConverterError) Error() string {
	var b strings.Builder
	b.WriteString("no converter available")
	if e.Type != nil {
		fmt.Fprintf(&b, " for type %s", e.Type)
	} else {
		b.WriteString(" for nil type")
	}
	for _, p := range e.Probes {
		b.WriteString("\n  tried ")
		b.WriteString(p.Converter)
		if p.Fault != "" {
			b.WriteString(": ")
			b.WriteString(p.Fault)
		}
	}
	return b.String()
}

// ValueError reports a scalar string that cannot be parsed back into
// its declared type. The offending raw text is preserved.
type ValueError struct {
	Raw  string
	Type reflect.Type
	Err  error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("cannot parse %q as %s: %v", e.Raw, e.Type, e.Err)
}

func (e *ValueError) Unwrap() error {
	return e.Err
}
