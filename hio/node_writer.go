package hio

import (
	"reflect"

	"github.com/j2eeguys/xstream/ir"
)

// NodeWriter builds an ir tree from writer events. The declared types
// passed to StartNode are not stored: the node tree is the serialized
// form, and types are re-derived from declared field types when reading.
type NodeWriter struct {
	root  *ir.Node
	stack []*ir.Node
}

var _ Writer = (*NodeWriter)(nil)

func NewNodeWriter() *NodeWriter {
	return &NodeWriter{}
}

// Root returns the tree built so far. It is nil before the first
// StartNode and complete once every node has been closed.
func (w *NodeWriter) Root() *ir.Node {
	return w.root
}

func (w *NodeWriter) StartNode(name string, typ reflect.Type) error {
	n := ir.New(name)
	if len(w.stack) == 0 {
		if w.root != nil {
			return &StructuralError{Op: "StartNode", Msg: "second root element " + name}
		}
		w.root = n
	} else {
		w.stack[len(w.stack)-1].Append(n)
	}
	w.stack = append(w.stack, n)
	return nil
}

func (w *NodeWriter) AddAttribute(name, value string) error {
	if len(w.stack) == 0 {
		return &StructuralError{Op: "AddAttribute", Msg: "no open element for attribute " + name}
	}
	w.stack[len(w.stack)-1].SetAttr(name, value)
	return nil
}

func (w *NodeWriter) SetValue(text string) error {
	if len(w.stack) == 0 {
		return &StructuralError{Op: "SetValue", Msg: "no open element"}
	}
	w.stack[len(w.stack)-1].SetValue(text)
	return nil
}

func (w *NodeWriter) EndNode() error {
	if len(w.stack) == 0 {
		return &StructuralError{Op: "EndNode", Msg: "no open element"}
	}
	w.stack = w.stack[:len(w.stack)-1]
	return nil
}

func (w *NodeWriter) Flush() error {
	if len(w.stack) != 0 {
		return &StructuralError{Op: "Flush", Msg: "unclosed elements remain"}
	}
	return nil
}
