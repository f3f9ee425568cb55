package jsonw

import (
	"errors"
	"fmt"
)

// ErrSingleValueRoot is returned in strict mode when the document would
// reduce to a bare scalar at the top level, which is not a JSON
// document on its own.
var ErrSingleValueRoot = errors.New("single value cannot be root element")

// IllegalWriterStateError reports an event sequence the writer state
// machine cannot accept, naming both the state it was in and the state
// the event asked for.
type IllegalWriterStateError struct {
	From    state
	To      state
	Element string
}

func (e *IllegalWriterStateError) Error() string {
	s := fmt.Sprintf("cannot turn from state %s into state %s", e.From, e.To)
	if e.Element != "" {
		s += " for property " + e.Element
	}
	return s
}
