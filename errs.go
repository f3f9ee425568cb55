package xstream

import (
	"fmt"
	"reflect"
)

// ReferenceError reports a reference marker that does not resolve to
// an element read earlier in the same document.
type ReferenceError struct {
	Marker string
	Type   reflect.Type
}

func (e *ReferenceError) Error() string {
	if e.Type == nil {
		return fmt.Sprintf("invalid reference %q", e.Marker)
	}
	return fmt.Sprintf("invalid reference %q while reading %s", e.Marker, e.Type)
}
