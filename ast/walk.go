package ast

// Visitor is called by Walk. Visit is called before the children of a node
// and Leave after them; returning false from Visit skips the children and
// the matching Leave.
//
// Visitors keep their state in their own fields, so one visitor value
// belongs to one walk.
type Visitor interface {
	Visit(n *Node) bool
	Leave(n *Node)
}

// Walk traverses the tree rooted at n in depth-first order.
func Walk(n *Node, v Visitor) {
	if n == nil || !v.Visit(n) {
		return
	}
	for _, child := range n.children {
		Walk(child, v)
	}
	v.Leave(n)
}

type inspector func(*Node) bool

func (f inspector) Visit(n *Node) bool { return f(n) }
func (f inspector) Leave(*Node)        {}

// Inspect calls f for every node in pre-order until f returns false for a
// node, in which case the children of that node are skipped.
func Inspect(n *Node, f func(*Node) bool) {
	Walk(n, inspector(f))
}
