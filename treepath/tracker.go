package treepath

import "strconv"

// Tracker maintains the path of the current element while a cursor moves
// through a tree. Repeated sibling names are numbered so the rendered
// path can tell "/a/b" from "/a/b[2]".
//
// Tracker is pure bookkeeping: it never fails, and misuse (popping an
// empty tracker) is a no-op.
type Tracker struct {
	chunks []string
	counts []map[string]int
}

// NewTracker creates an empty Tracker positioned at the document root.
func NewTracker() *Tracker {
	return &Tracker{}
}

// PushElement notes that the cursor moved down into a child element.
func (t *Tracker) PushElement(name string) {
	depth := len(t.chunks)
	if depth == len(t.counts) {
		t.counts = append(t.counts, map[string]int{})
	}
	m := t.counts[depth]
	m[name]++
	chunk := name
	if n := m[name]; n > 1 {
		chunk = name + "[" + strconv.Itoa(n) + "]"
	}
	t.chunks = append(t.chunks, chunk)
}

// PopElement notes that the cursor moved back up to the parent element.
// The popped element's child occurrence counts are discarded so a later
// sibling's children are numbered from scratch.
func (t *Tracker) PopElement() {
	depth := len(t.chunks)
	if depth == 0 {
		return
	}
	if len(t.counts) > depth {
		t.counts = t.counts[:depth]
	}
	t.chunks = t.chunks[:depth-1]
}

// Depth returns the current element nesting depth (0 = document root).
func (t *Tracker) Depth() int {
	return len(t.chunks)
}

// Path returns the current position as an absolute Path.
func (t *Tracker) Path() *Path {
	p := &Path{absolute: true, chunks: make([]string, len(t.chunks))}
	copy(p.chunks, t.chunks)
	return p
}

func (t *Tracker) String() string {
	return t.Path().String()
}
