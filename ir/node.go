// Package ir holds the in-memory element tree that marshalling produces
// and unmarshalling consumes. A Node is one element: a name, ordered
// attributes, either a scalar value or ordered children, and a link to
// its parent. The tree is strictly hierarchical; shared or cyclic object
// references are encoded as reference-marker attributes, never as shared
// Node pointers.
package ir

// Attr is a single name/value attribute on a Node. Attribute order is
// preserved for deterministic output.
type Attr struct {
	Name  string
	Value string
}

type Node struct {
	Name        string
	Parent      *Node
	ParentIndex int

	Attrs    []Attr
	Children []*Node

	// Value holds the scalar text of a leaf element. HasValue
	// distinguishes an empty value from no value at all.
	Value    string
	HasValue bool
}

// New creates a named element with no parent.
func New(name string) *Node {
	return &Node{Name: name}
}

// SetAttr appends or replaces an attribute, keeping insertion order.
func (n *Node) SetAttr(name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// Attr returns the value of a named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			return n.Attrs[i].Value, true
		}
	}
	return "", false
}

// SetValue sets the scalar text of the element.
func (n *Node) SetValue(text string) {
	n.Value = text
	n.HasValue = true
}

// Append adds a child element, wiring its parent links.
func (n *Node) Append(child *Node) *Node {
	child.Parent = n
	child.ParentIndex = len(n.Children)
	n.Children = append(n.Children, child)
	return n
}

// Get returns the first child with the given name, or nil.
func (n *Node) Get(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// GetAll returns all children with the given name.
func (n *Node) GetAll(name string) []*Node {
	var res []*Node
	for _, c := range n.Children {
		if c.Name == name {
			res = append(res, c)
		}
	}
	return res
}

// Root walks parent links up to the top of the tree.
func (n *Node) Root() *Node {
	res := n
	for res.Parent != nil {
		res = res.Parent
	}
	return res
}

// Clone deep-copies the subtree rooted at n. The clone's Parent is nil.
func (n *Node) Clone() *Node {
	res := &Node{}
	return n.cloneTo(res)
}

func (n *Node) cloneTo(dst *Node) *Node {
	dst.Name = n.Name
	dst.Value = n.Value
	dst.HasValue = n.HasValue
	if len(n.Attrs) > 0 {
		dst.Attrs = make([]Attr, len(n.Attrs))
		copy(dst.Attrs, n.Attrs)
	}
	if len(n.Children) > 0 {
		dst.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cc := &Node{Parent: dst, ParentIndex: i}
			c.cloneTo(cc)
			dst.Children[i] = cc
		}
	}
	return dst
}

// Visit walks the subtree depth-first. f is called before descending
// (isPost=false) and after (isPost=true); returning false from the
// pre-order call skips the node's children.
func (n *Node) Visit(f func(n *Node, isPost bool) (bool, error)) error {
	dive, err := f(n, false)
	if err != nil {
		return err
	}
	if dive {
		for _, c := range n.Children {
			if err := c.Visit(f); err != nil {
				return err
			}
		}
	}
	if _, err := f(n, true); err != nil {
		return err
	}
	return nil
}
