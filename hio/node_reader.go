package hio

import "github.com/j2eeguys/xstream/ir"

type nodeCursor struct {
	node *ir.Node
	next int
}

// NodeReader is a pull cursor over an ir tree.
type NodeReader struct {
	stack []nodeCursor
}

var _ Reader = (*NodeReader)(nil)

func NewNodeReader(root *ir.Node) *NodeReader {
	return &NodeReader{stack: []nodeCursor{{node: root}}}
}

func (r *NodeReader) current() *nodeCursor {
	return &r.stack[len(r.stack)-1]
}

func (r *NodeReader) NodeName() string {
	return r.current().node.Name
}

func (r *NodeReader) Value() string {
	return r.current().node.Value
}

func (r *NodeReader) Attribute(name string) (string, bool) {
	return r.current().node.Attr(name)
}

func (r *NodeReader) HasMoreChildren() bool {
	c := r.current()
	return c.next < len(c.node.Children)
}

func (r *NodeReader) MoveDown() {
	c := r.current()
	if c.next >= len(c.node.Children) {
		panic("hio: MoveDown past last child of " + c.node.Name)
	}
	child := c.node.Children[c.next]
	c.next++
	r.stack = append(r.stack, nodeCursor{node: child})
}

func (r *NodeReader) MoveUp() {
	if len(r.stack) <= 1 {
		panic("hio: MoveUp at document root")
	}
	r.stack = r.stack[:len(r.stack)-1]
}
