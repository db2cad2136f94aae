package ast

import "iter"

// Selection is an immutable, chainable set of nodes. Selections holding no
// node or exactly one node do not allocate a slice.
type Selection interface {
	Children(types ...Type) Selection
	NextSibling() Selection
	PreviousSibling() Selection
	Parent() Selection
	FirstAncestor(types ...Type) Selection
	Descendants(types ...Type) Selection
	Filter(keep func(*Node) bool) Selection

	Size() int
	// Get returns the i-th node; it panics when i is out of range.
	Get(i int) *Node
	IsEmpty() bool
	IsNotEmpty() bool
	All() iter.Seq[*Node]
}

// Select returns a selection holding n alone, or the empty selection when n
// is nil.
func Select(n *Node) Selection {
	if n == nil {
		return emptySelection{}
	}
	return singleSelection{n}
}

func Empty() Selection {
	return emptySelection{}
}

func selectAll(nodes []*Node) Selection {
	switch len(nodes) {
	case 0:
		return emptySelection{}
	case 1:
		return singleSelection{nodes[0]}
	}
	return listSelection(nodes)
}

type emptySelection struct{}

func (emptySelection) Children(...Type) Selection      { return emptySelection{} }
func (emptySelection) NextSibling() Selection          { return emptySelection{} }
func (emptySelection) PreviousSibling() Selection      { return emptySelection{} }
func (emptySelection) Parent() Selection               { return emptySelection{} }
func (emptySelection) FirstAncestor(...Type) Selection { return emptySelection{} }
func (emptySelection) Descendants(...Type) Selection   { return emptySelection{} }
func (emptySelection) Filter(func(*Node) bool) Selection {
	return emptySelection{}
}
func (emptySelection) Size() int        { return 0 }
func (emptySelection) IsEmpty() bool    { return true }
func (emptySelection) IsNotEmpty() bool { return false }
func (emptySelection) Get(i int) *Node  { panic("ast: Get on empty selection") }
func (emptySelection) All() iter.Seq[*Node] {
	return func(func(*Node) bool) {}
}

type singleSelection struct {
	node *Node
}

func (s singleSelection) Children(types ...Type) Selection {
	return selectAll(s.node.Children(types...))
}

func (s singleSelection) NextSibling() Selection {
	return Select(s.node.NextSibling())
}

func (s singleSelection) PreviousSibling() Selection {
	return Select(s.node.PreviousSibling())
}

func (s singleSelection) Parent() Selection {
	return Select(s.node.Parent())
}

func (s singleSelection) FirstAncestor(types ...Type) Selection {
	return Select(s.node.FirstAncestor(types...))
}

func (s singleSelection) Descendants(types ...Type) Selection {
	return selectAll(s.node.Descendants(types...))
}

func (s singleSelection) Filter(keep func(*Node) bool) Selection {
	if keep(s.node) {
		return s
	}
	return emptySelection{}
}

func (s singleSelection) Size() int        { return 1 }
func (s singleSelection) IsEmpty() bool    { return false }
func (s singleSelection) IsNotEmpty() bool { return true }

func (s singleSelection) Get(i int) *Node {
	if i != 0 {
		panic("ast: selection index out of range")
	}
	return s.node
}

func (s singleSelection) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		yield(s.node)
	}
}

type listSelection []*Node

func (l listSelection) each(f func(n *Node) []*Node) Selection {
	var result []*Node
	for _, n := range l {
		result = append(result, f(n)...)
	}
	return selectAll(result)
}

func (l listSelection) eachOne(f func(n *Node) *Node) Selection {
	var result []*Node
	for _, n := range l {
		if m := f(n); m != nil {
			result = append(result, m)
		}
	}
	return selectAll(result)
}

func (l listSelection) Children(types ...Type) Selection {
	return l.each(func(n *Node) []*Node { return n.Children(types...) })
}

func (l listSelection) NextSibling() Selection {
	return l.eachOne((*Node).NextSibling)
}

func (l listSelection) PreviousSibling() Selection {
	return l.eachOne((*Node).PreviousSibling)
}

func (l listSelection) Parent() Selection {
	return l.eachOne((*Node).Parent)
}

func (l listSelection) FirstAncestor(types ...Type) Selection {
	return l.eachOne(func(n *Node) *Node { return n.FirstAncestor(types...) })
}

func (l listSelection) Descendants(types ...Type) Selection {
	return l.each(func(n *Node) []*Node { return n.Descendants(types...) })
}

func (l listSelection) Filter(keep func(*Node) bool) Selection {
	var result []*Node
	for _, n := range l {
		if keep(n) {
			result = append(result, n)
		}
	}
	return selectAll(result)
}

func (l listSelection) Size() int        { return len(l) }
func (l listSelection) IsEmpty() bool    { return false }
func (l listSelection) IsNotEmpty() bool { return true }
func (l listSelection) Get(i int) *Node  { return l[i] }

func (l listSelection) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, n := range l {
			if !yield(n) {
				return
			}
		}
	}
}
