package hio

import (
	"reflect"
	"strconv"

	"github.com/j2eeguys/xstream/ir"
)

// Replay feeds the subtree rooted at n into w as writer events. hint
// supplies a declared type per element for backends that shape output
// by type; if nil, InferType is used.
func Replay(n *ir.Node, w Writer, hint func(*ir.Node) reflect.Type) error {
	if hint == nil {
		hint = InferType
	}
	if err := w.StartNode(n.Name, hint(n)); err != nil {
		return err
	}
	for _, a := range n.Attrs {
		if err := w.AddAttribute(a.Name, a.Value); err != nil {
			return err
		}
	}
	if n.HasValue {
		if err := w.SetValue(n.Value); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := Replay(c, w, hint); err != nil {
			return err
		}
	}
	return w.EndNode()
}

var (
	sliceType   = reflect.TypeOf([]any(nil))
	boolType    = reflect.TypeOf(false)
	int64Type   = reflect.TypeOf(int64(0))
	float64Type = reflect.TypeOf(float64(0))
	stringType  = reflect.TypeOf("")
)

// InferType guesses a declared type for an element that has none: the
// scalar literals null/true/false/integers/floats map to their obvious
// types, repeated same-named children mark a sequence, anything else is
// an object (nil) or a string.
func InferType(n *ir.Node) reflect.Type {
	if !n.HasValue {
		if n.Name == "null" && len(n.Children) == 0 {
			return NullType
		}
		if len(n.Children) > 1 && allSameName(n.Children) {
			return sliceType
		}
		return nil
	}
	switch n.Value {
	case "true", "false":
		return boolType
	}
	if _, err := strconv.ParseInt(n.Value, 10, 64); err == nil {
		return int64Type
	}
	if _, err := strconv.ParseFloat(n.Value, 64); err == nil {
		return float64Type
	}
	return stringType
}

func allSameName(nodes []*ir.Node) bool {
	for _, n := range nodes[1:] {
		if n.Name != nodes[0].Name {
			return false
		}
	}
	return true
}
