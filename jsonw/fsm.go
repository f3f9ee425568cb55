// Package jsonw emits JSON from hierarchical writer events. A state
// machine validates and reorders the event stream into JSON syntax
// primitives, and a sink renders those primitives with configurable
// layout. Mode flags select between the default name-keyed form, a
// root-dropping form, and a fully explicit lossless form.
package jsonw

import (
	"reflect"
	"strconv"

	"github.com/j2eeguys/xstream/debug"
	"github.com/j2eeguys/xstream/hio"
	"github.com/j2eeguys/xstream/vmodel"
)

// Mode is a bit mask altering the emitted JSON shape.
type Mode int

const (
	// ModeDropRoot omits the root element's name wrapper.
	ModeDropRoot Mode = 1 << iota
	// ModeStrict rejects documents that would reduce to a bare scalar
	// at the root instead of emitting invalid JSON.
	ModeStrict
	// ModeExplicit renders every element as {"name":[[attrs],[children]]},
	// preserving attributes, order and duplicate names. It cannot be
	// combined with the other modes and overrides them.
	ModeExplicit
	// ModeIEEE754 writes integers beyond the 2^53 precision of a
	// JavaScript number as strings.
	ModeIEEE754
)

type state int

const (
	stateRoot state = 1 << iota
	stateEndObject
	stateStartObject
	stateStartAttributes
	stateNextAttribute
	stateEndAttributes
	stateStartElements
	stateNextElement
	stateEndElements
	stateSetValue
)

func (s state) String() string {
	switch s {
	case stateRoot:
		return "ROOT"
	case stateEndObject:
		return "END_OBJECT"
	case stateStartObject:
		return "START_OBJECT"
	case stateStartAttributes:
		return "START_ATTRIBUTES"
	case stateNextAttribute:
		return "NEXT_ATTRIBUTE"
	case stateEndAttributes:
		return "END_ATTRIBUTES"
	case stateStartElements:
		return "START_ELEMENTS"
	case stateNextElement:
		return "NEXT_ELEMENT"
	case stateEndElements:
		return "END_ELEMENTS"
	case stateSetValue:
		return "SET_VALUE"
	}
	return "UNKNOWN"
}

// ValueType classifies a scalar for the sink, which decides quoting
// from it.
type ValueType int

const (
	Null ValueType = iota
	String
	Number
	Boolean
)

// Sink receives JSON syntax primitives in valid order. Implementations
// handle layout and I/O; sequencing errors never reach a sink.
type Sink interface {
	StartObject()
	AddLabel(name string)
	AddValue(value string, t ValueType)
	StartArray()
	NextElement()
	EndArray()
	EndObject()
}

type frame struct {
	typ    reflect.Type
	status state
}

// FSM translates hierarchical writer events into sink primitives. Each
// open element carries its declared type, which drives the
// array-versus-object decision and scalar typing. The zero value is
// not usable; construct with NewFSM.
type FSM struct {
	sink     Sink
	mode     Mode
	stack    []frame
	expected state
}

// NewFSM builds a state machine over sink. If mode includes
// ModeExplicit, all other flags are discarded.
func NewFSM(sink Sink, mode Mode) *FSM {
	if mode&ModeExplicit != 0 {
		mode = ModeExplicit
	}
	return &FSM{
		sink:     sink,
		mode:     mode,
		stack:    []frame{{status: stateRoot}},
		expected: stateStartObject,
	}
}

func (f *FSM) top() *frame {
	return &f.stack[len(f.stack)-1]
}

// StartNode opens an element. The declared type may be nil for plain
// composites; hio.NullType marks an explicit null.
func (f *FSM) StartNode(name string, typ reflect.Type) error {
	f.stack = append(f.stack, frame{typ: typ, status: f.top().status})
	if err := f.checked(stateStartObject, &name, nil); err != nil {
		return err
	}
	f.expected = stateSetValue | stateNextAttribute | stateStartObject | stateNextElement | stateRoot
	return nil
}

func (f *FSM) AddAttribute(name, value string) error {
	if err := f.checked(stateNextAttribute, &name, &value); err != nil {
		return err
	}
	f.expected = stateSetValue | stateNextAttribute | stateStartObject | stateNextElement | stateRoot
	return nil
}

func (f *FSM) SetValue(text string) error {
	if err := f.checked(stateSetValue, nil, &text); err != nil {
		return err
	}
	f.expected = stateNextElement | stateRoot
	return nil
}

func (f *FSM) EndNode() error {
	size := len(f.stack)
	next := stateRoot
	if size > 2 {
		next = stateNextElement
	}
	if err := f.checked(next, nil, nil); err != nil {
		return err
	}
	f.stack = f.stack[:size-1]
	f.top().status = next
	f.expected = stateStartObject
	if size > 2 {
		f.expected |= stateNextElement | stateRoot
	}
	return nil
}

// Flush forwards to the sink if it buffers.
func (f *FSM) Flush() error {
	if fl, ok := f.sink.(interface{ Flush() error }); ok {
		return fl.Flush()
	}
	return nil
}

func (f *FSM) checked(required state, element, value *string) error {
	top := f.top()
	if f.expected&required == 0 {
		return &IllegalWriterStateError{From: top.status, To: required, Element: deref(element)}
	}
	if debug.Emitter() {
		debug.Logf("emit: %s -> %s %q", top.status, required, deref(element))
	}
	cur, err := f.transition(top.status, required, element, value)
	if err != nil {
		return err
	}
	top.status = cur
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (f *FSM) explicit() bool { return f.mode&ModeExplicit != 0 }

// transition performs the state change, emitting sink primitives on
// the way. Compound transitions recurse through the intermediate
// states exactly as the event grammar defines them.
func (f *FSM) transition(current, required state, element, value *string) (state, error) {
	size := len(f.stack)
	currentType := f.top().typ
	isArray := size > 1 && vmodel.IsSequence(currentType)
	isArrayElement := size > 2 && vmodel.IsSequence(f.stack[size-2].typ)

	switch current {
	case stateRoot:
		if required == stateStartObject {
			if _, err := f.transition(stateStartElements, stateStartObject, element, nil); err != nil {
				return 0, err
			}
			return required, nil
		}

	case stateEndObject:
		switch required {
		case stateStartObject:
			cur, err := f.transition(current, stateNextElement, nil, nil)
			if err != nil {
				return 0, err
			}
			if _, err := f.transition(cur, stateStartObject, element, nil); err != nil {
				return 0, err
			}
			return required, nil
		case stateNextElement:
			f.sink.NextElement()
			return required, nil
		case stateRoot:
			if (f.mode&ModeDropRoot == 0 || size > 2) && !f.explicit() {
				f.sink.EndObject()
			}
			return required, nil
		}

	case stateStartObject:
		switch required {
		case stateSetValue, stateStartObject, stateRoot, stateNextElement:
			cur := current
			if !isArrayElement || f.explicit() {
				var err error
				if cur, err = f.transition(cur, stateStartAttributes, nil, nil); err != nil {
					return 0, err
				}
				if cur, err = f.transition(cur, stateEndAttributes, nil, nil); err != nil {
					return 0, err
				}
			}
			cur = stateStartElements
			var err error
			switch required {
			case stateSetValue:
				_, err = f.transition(cur, stateSetValue, nil, value)
			case stateStartObject:
				_, err = f.transition(cur, stateStartObject, element, nil)
			case stateRoot, stateNextElement:
				if cur, err = f.transition(cur, stateSetValue, nil, nil); err != nil {
					return 0, err
				}
				_, err = f.transition(cur, required, nil, nil)
			}
			if err != nil {
				return 0, err
			}
			return required, nil
		case stateStartAttributes:
			if f.explicit() {
				f.sink.StartArray()
			}
			return required, nil
		case stateNextAttribute:
			if f.explicit() || !isArray {
				cur, err := f.transition(current, stateStartAttributes, nil, nil)
				if err != nil {
					return 0, err
				}
				if _, err := f.transition(cur, stateNextAttribute, element, value); err != nil {
					return 0, err
				}
				return required, nil
			}
			return stateStartObject, nil
		}

	case stateNextElement:
		switch required {
		case stateStartObject:
			f.sink.NextElement()
			if !isArrayElement && !f.explicit() {
				f.sink.AddLabel(deref(element))
				if isArray {
					f.sink.StartArray()
				}
				return required, nil
			}
			return f.startElementsTransition(required, element, value, size, currentType, isArray, isArrayElement)
		case stateRoot:
			cur, err := f.transition(current, stateEndObject, nil, nil)
			if err != nil {
				return 0, err
			}
			if _, err := f.transition(cur, stateRoot, nil, nil); err != nil {
				return 0, err
			}
			return required, nil
		case stateNextElement, stateEndObject:
			cur, err := f.transition(current, stateEndElements, nil, nil)
			if err != nil {
				return 0, err
			}
			if _, err := f.transition(cur, stateEndObject, nil, nil); err != nil {
				return 0, err
			}
			if !f.explicit() && !isArray {
				f.sink.EndObject()
			}
			return required, nil
		case stateEndElements:
			if !f.explicit() && isArray {
				f.sink.EndArray()
			}
			return required, nil
		}

	case stateStartElements:
		return f.startElementsTransition(required, element, value, size, currentType, isArray, isArrayElement)

	case stateEndElements:
		if required == stateEndObject {
			if f.explicit() {
				f.sink.EndArray()
				f.sink.EndArray()
				f.sink.EndObject()
			}
			return required, nil
		}

	case stateStartAttributes:
		if required == stateNextAttribute {
			if element != nil {
				name := *element
				if !f.explicit() {
					name = "@" + name
				}
				f.sink.StartObject()
				f.sink.AddLabel(name)
				f.sink.AddValue(deref(value), String)
			}
			return required, nil
		}
		return f.nextAttributeTransition(current, required, element, value, isArray)

	case stateNextAttribute:
		return f.nextAttributeTransition(current, required, element, value, isArray)

	case stateEndAttributes:
		switch required {
		case stateStartElements:
			if !f.explicit() {
				f.sink.NextElement()
			}
			return required, nil
		case stateEndObject:
			cur, err := f.transition(stateStartElements, stateEndElements, nil, nil)
			if err != nil {
				return 0, err
			}
			if _, err := f.transition(cur, stateEndObject, nil, nil); err != nil {
				return 0, err
			}
			return required, nil
		}

	case stateSetValue:
		switch required {
		case stateEndElements:
			if !f.explicit() && isArray {
				f.sink.EndArray()
			}
			return required, nil
		case stateNextElement:
			cur, err := f.transition(current, stateEndElements, nil, nil)
			if err != nil {
				return 0, err
			}
			if _, err := f.transition(cur, stateEndObject, nil, nil); err != nil {
				return 0, err
			}
			return required, nil
		case stateRoot:
			cur, err := f.transition(current, stateEndElements, nil, nil)
			if err != nil {
				return 0, err
			}
			if cur, err = f.transition(cur, stateEndObject, nil, nil); err != nil {
				return 0, err
			}
			if _, err := f.transition(cur, stateRoot, nil, nil); err != nil {
				return 0, err
			}
			return required, nil
		}
	}

	return 0, &IllegalWriterStateError{From: current, To: required, Element: deref(element)}
}

// startElementsTransition handles transitions out of START_ELEMENTS.
// It is also the tail of NEXT_ELEMENT's start-object handling.
func (f *FSM) startElementsTransition(required state, element, value *string, size int, currentType reflect.Type, isArray, isArrayElement bool) (state, error) {
	switch required {
	case stateStartObject:
		if f.mode&ModeDropRoot == 0 || size > 2 {
			if !isArrayElement || f.explicit() {
				if value == nil || *value != "" {
					f.sink.StartObject()
				}
				f.sink.AddLabel(deref(element))
			}
			if f.explicit() {
				f.sink.StartArray()
			}
		}
		if !f.explicit() && isArray {
			f.sink.StartArray()
		}
		return required, nil
	case stateSetValue:
		if f.mode&ModeStrict != 0 && size == 2 {
			return 0, ErrSingleValueRoot
		}
		if value == nil {
			if currentType == hio.NullType {
				f.sink.AddValue("null", Null)
			} else if !f.explicit() && !isArray {
				f.sink.StartObject()
				f.sink.EndObject()
			}
		} else {
			f.sink.AddValue(*value, f.valueType(currentType, *value))
		}
		return required, nil
	case stateEndElements, stateNextElement:
		if !f.explicit() {
			if isArray {
				f.sink.EndArray()
			} else {
				f.sink.EndObject()
			}
		}
		return required, nil
	}
	return 0, &IllegalWriterStateError{From: stateStartElements, To: required, Element: deref(element)}
}

// nextAttributeTransition handles transitions out of NEXT_ATTRIBUTE,
// shared with START_ATTRIBUTES for every request that is not another
// attribute.
func (f *FSM) nextAttributeTransition(current, required state, element, value *string, isArray bool) (state, error) {
	switch required {
	case stateEndAttributes:
		if f.explicit() {
			if current == stateNextAttribute {
				f.sink.EndObject()
			}
			f.sink.EndArray()
			f.sink.NextElement()
			f.sink.StartArray()
		}
		return required, nil
	case stateNextAttribute:
		if !isArray || f.explicit() {
			f.sink.NextElement()
			name := *element
			if !f.explicit() {
				name = "@" + name
			}
			f.sink.AddLabel(name)
			f.sink.AddValue(deref(value), String)
		}
		return required, nil
	case stateSetValue, stateStartObject:
		cur, err := f.transition(current, stateEndAttributes, nil, nil)
		if err != nil {
			return 0, err
		}
		if cur, err = f.transition(cur, stateStartElements, nil, nil); err != nil {
			return 0, err
		}
		switch required {
		case stateSetValue:
			if !f.explicit() {
				f.sink.AddLabel("$")
			}
			if _, err := f.transition(cur, stateSetValue, nil, value); err != nil {
				return 0, err
			}
			if !f.explicit() {
				f.sink.EndObject()
			}
		case stateStartObject:
			var empty *string
			if !f.explicit() {
				s := ""
				empty = &s
			}
			if _, err := f.transition(cur, stateStartObject, element, empty); err != nil {
				return 0, err
			}
		}
		return required, nil
	case stateNextElement:
		cur, err := f.transition(current, stateEndAttributes, nil, nil)
		if err != nil {
			return 0, err
		}
		if _, err := f.transition(cur, stateEndObject, nil, nil); err != nil {
			return 0, err
		}
		return required, nil
	case stateRoot:
		cur, err := f.transition(current, stateEndAttributes, nil, nil)
		if err != nil {
			return 0, err
		}
		if cur, err = f.transition(cur, stateEndObject, nil, nil); err != nil {
			return 0, err
		}
		if _, err := f.transition(cur, stateRoot, nil, nil); err != nil {
			return 0, err
		}
		return required, nil
	}
	return 0, &IllegalWriterStateError{From: current, To: required, Element: deref(element)}
}

// ieee754Max is 2^53, the largest integer a JavaScript number holds
// exactly.
const ieee754Max = 9007199254740992

func (f *FSM) valueType(t reflect.Type, value string) ValueType {
	vt := typeOf(t)
	if vt == Number && f.mode&ModeIEEE754 != 0 && is64BitInt(t) {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			if n > ieee754Max || n < -ieee754Max {
				return String
			}
		} else if u, err := strconv.ParseUint(value, 10, 64); err == nil && u > ieee754Max {
			return String
		}
		return Number
	}
	return vt
}

func is64BitInt(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64:
		return true
	}
	return false
}

func typeOf(t reflect.Type) ValueType {
	if t == nil {
		return String
	}
	if t == hio.NullType {
		return Null
	}
	switch t.Kind() {
	case reflect.Bool:
		return Boolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return Number
	}
	return String
}
