// Package hio defines the hierarchical stream interfaces the marshalling
// core speaks to: a push-based Writer taking structural events and a
// pull-based Reader mirroring them. Concrete backends (the in-memory
// node tree here, JSON in jsonw/jsonr, YAML in yamlio) adapt a format
// technology to these two interfaces.
package hio

import "reflect"

// Writer is the push-side event sink. StartNode receives the declared
// type of the element's value when the caller knows it; backends use it
// to pick output structure (array-like vs object) and scalar typing. A
// nil type means "unknown", which renders as an object with string
// values.
//
// Calls must nest correctly: attributes before values or children, one
// EndNode per StartNode. A backend detecting an impossible sequence
// returns an error and is thereafter unusable.
type Writer interface {
	StartNode(name string, typ reflect.Type) error
	AddAttribute(name, value string) error
	SetValue(text string) error
	EndNode() error
	Flush() error
}

// Reader is the pull-side mirror. The cursor starts on the document's
// root element. MoveDown enters the next unvisited child, MoveUp
// returns to the parent. Calling MoveDown with no remaining children or
// MoveUp at the root is a caller defect and panics; use HasMoreChildren
// to guard.
type Reader interface {
	NodeName() string
	Value() string
	Attribute(name string) (string, bool)
	HasMoreChildren() bool
	MoveDown()
	MoveUp()
}
