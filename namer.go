package xstream

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/j2eeguys/xstream/hio"
)

// Namer is the bidirectional mapping between Go types and element
// names. Builtin scalar names are pre-registered; everything else
// defaults to the type's own name and can be overridden with Alias.
//
// Namer is safe for concurrent use.
type Namer struct {
	mu    sync.RWMutex
	names map[reflect.Type]string
	types map[string]reflect.Type
}

func NewNamer() *Namer {
	n := &Namer{
		names: map[reflect.Type]string{},
		types: map[string]reflect.Type{},
	}
	for name, v := range map[string]any{
		"string":  "",
		"boolean": false,
		"int":     int(0),
		"long":    int64(0),
		"short":   int16(0),
		"byte":    uint8(0),
		"uint":    uint(0),
		"ulong":   uint64(0),
		"float":   float32(0),
		"double":  float64(0),
		"date":    time.Time{},
		"null":    hio.Null{},
	} {
		n.Alias(name, reflect.TypeOf(v))
	}
	return n
}

// Alias binds a name to a type in both directions. A later Alias for
// the same name or type wins.
func (n *Namer) Alias(name string, t reflect.Type) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.names[t] = name
	n.types[name] = t
}

// NameFor returns the element name for a type. Pointers take the name
// of their pointee; slices and arrays append "-array" to the member
// name. Derived names are remembered so they resolve back.
func (n *Namer) NameFor(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	n.mu.RLock()
	name, ok := n.names[t]
	n.mu.RUnlock()
	if ok {
		return name
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		name = n.NameFor(t.Elem()) + "-array"
	case reflect.Map:
		name = "map"
	case reflect.Interface:
		name = "object"
	default:
		name = t.Name()
		if name == "" {
			name = t.String()
		}
	}
	n.mu.Lock()
	n.names[t] = name
	if _, exists := n.types[name]; !exists {
		n.types[name] = t
	}
	n.mu.Unlock()
	return name
}

// TypeFor resolves an element name back to a type.
func (n *Namer) TypeFor(name string) (reflect.Type, bool) {
	n.mu.RLock()
	t, ok := n.types[name]
	n.mu.RUnlock()
	if ok {
		return t, true
	}
	if base, found := strings.CutSuffix(name, "-array"); found {
		if elem, ok := n.TypeFor(base); ok {
			return reflect.SliceOf(elem), true
		}
	}
	return nil, false
}
