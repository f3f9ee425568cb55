package hio

import "fmt"

// StructuralError reports a Writer call sequence that cannot form a
// well-nested document, such as EndNode without a matching StartNode.
type StructuralError struct {
	Op  string
	Msg string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error in %s: %s", e.Op, e.Msg)
}
