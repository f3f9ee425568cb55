// Package jsonr parses JSON documents back into the element tree. The
// simple form reverses the default emitter conventions ("@" prefixed
// labels are attributes, "$" is the element value, arrays become
// repeated children). The explicit form reverses the lossless
// {"name":[[attributes],[children]]} layout exactly.
//
// The standard tokenizer is used directly because property order must
// survive parsing, which map-based decoding discards.
package jsonr

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/j2eeguys/xstream/ir"
)

// ParseError reports malformed input or a document that does not match
// the expected layout.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "parse json: " + e.Msg + ": " + e.Err.Error()
	}
	return "parse json: " + e.Msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Option configures parsing.
type Option func(*parser)

// WithExplicit parses the lossless explicit layout.
func WithExplicit() Option {
	return func(p *parser) { p.explicit = true }
}

// WithRootName sets the element name used when the document carries no
// usable root wrapper, as produced by a root-dropping writer.
func WithRootName(name string) Option {
	return func(p *parser) { p.rootName = name }
}

type parser struct {
	explicit bool
	rootName string
}

// Parse reads one JSON document from r into an element tree.
func Parse(r io.Reader, opts ...Option) (*ir.Node, error) {
	p := &parser{rootName: "root"}
	for _, o := range opts {
		o(p)
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, &ParseError{Msg: "invalid document", Err: err}
	}
	if p.explicit {
		return p.explicitRoot(v)
	}
	return p.simpleRoot(v), nil
}

// jval is nil, bool, json.Number, string, []jval or *jobj.
type jval any

// jobj preserves property order.
type jobj struct {
	keys []string
	vals []jval
}

func decodeValue(dec *json.Decoder) (jval, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeFrom(dec, tok)
}

func decodeFrom(dec *json.Decoder, tok json.Token) (jval, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := &jobj{}
			for dec.More() {
				key, err := dec.Token()
				if err != nil {
					return nil, err
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.keys = append(obj.keys, key.(string))
				obj.vals = append(obj.vals, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			var arr []jval
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	default:
		return tok, nil
	}
}

func (p *parser) simpleRoot(v jval) *ir.Node {
	if obj, ok := v.(*jobj); ok && len(obj.keys) == 1 && !strings.HasPrefix(obj.keys[0], "@") && obj.keys[0] != "$" {
		return p.simpleNode(obj.keys[0], obj.vals[0])
	}
	return p.simpleNode(p.rootName, v)
}

func (p *parser) simpleNode(name string, v jval) *ir.Node {
	n := ir.New(name)
	switch t := v.(type) {
	case *jobj:
		for i, k := range t.keys {
			val := t.vals[i]
			switch {
			case strings.HasPrefix(k, "@"):
				n.SetAttr(k[1:], scalarString(val))
			case k == "$":
				n.SetValue(scalarString(val))
			default:
				n.Append(p.simpleNode(k, val))
			}
		}
	case []jval:
		for _, item := range t {
			n.Append(p.itemNode(item))
		}
	default:
		if t != nil {
			n.SetValue(scalarString(t))
		}
	}
	return n
}

// itemNode names an anonymous array member. Scalars are named by their
// JSON type so registered builtin names resolve them; composites get
// neutral names, which a typed unmarshal target overrides.
func (p *parser) itemNode(v jval) *ir.Node {
	switch t := v.(type) {
	case *jobj:
		return p.simpleNode("item", t)
	case []jval:
		return p.simpleNode("entry", t)
	case nil:
		return ir.New("null")
	case bool:
		n := ir.New("boolean")
		n.SetValue(scalarString(t))
		return n
	case json.Number:
		name := "int"
		if strings.ContainsAny(t.String(), ".eE") {
			name = "double"
		}
		n := ir.New(name)
		n.SetValue(t.String())
		return n
	default:
		n := ir.New("string")
		n.SetValue(scalarString(t))
		return n
	}
}

func scalarString(v jval) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func (p *parser) explicitRoot(v jval) (*ir.Node, error) {
	obj, ok := v.(*jobj)
	if !ok || len(obj.keys) != 1 {
		return nil, &ParseError{Msg: "explicit document must be an object with a single property"}
	}
	return p.explicitNode(obj.keys[0], obj.vals[0])
}

func (p *parser) explicitNode(name string, v jval) (*ir.Node, error) {
	pair, ok := v.([]jval)
	if !ok || len(pair) != 2 {
		return nil, &ParseError{Msg: fmt.Sprintf("element %q must hold an [attributes, children] pair", name)}
	}
	n := ir.New(name)
	attrs, ok := pair[0].([]jval)
	if !ok && pair[0] != nil {
		return nil, &ParseError{Msg: fmt.Sprintf("element %q has a malformed attribute list", name)}
	}
	for _, a := range attrs {
		obj, ok := a.(*jobj)
		if !ok {
			return nil, &ParseError{Msg: fmt.Sprintf("element %q has a non-object attribute entry", name)}
		}
		for i, k := range obj.keys {
			n.SetAttr(k, scalarString(obj.vals[i]))
		}
	}
	children, ok := pair[1].([]jval)
	if !ok && pair[1] != nil {
		return nil, &ParseError{Msg: fmt.Sprintf("element %q has a malformed child list", name)}
	}
	for _, c := range children {
		switch t := c.(type) {
		case *jobj:
			if len(t.keys) != 1 {
				return nil, &ParseError{Msg: fmt.Sprintf("child of %q must be an object with a single property", name)}
			}
			child, err := p.explicitNode(t.keys[0], t.vals[0])
			if err != nil {
				return nil, err
			}
			n.Append(child)
		case nil:
			// The value of an explicit null element.
		default:
			n.SetValue(scalarString(t))
		}
	}
	return n, nil
}
