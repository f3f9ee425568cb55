package hio

import "reflect"

// Null is the canonical null marker. Passing NullType as the declared
// type of StartNode tells a backend the element stands for an explicit
// null value rather than an empty composite.
type Null struct{}

var NullType = reflect.TypeOf(Null{})
