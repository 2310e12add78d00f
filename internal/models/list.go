package models

// List is the flattened, renderable sequence of rows.
// The first entry is always the document root; because edits copy every
// ancestor of a changed node, Flatten(l.Root()) reproduces the list.
type List []Node

// Root returns the document root, or nil for an empty list
func (l List) Root() Node {
	if len(l) == 0 {
		return nil
	}
	return l[0]
}

// IndexOf returns the position of the entry with the given id, or -1
func (l List) IndexOf(id NodeID) int {
	return l.indexFrom(0, id)
}

func (l List) indexFrom(start int, id NodeID) int {
	for i := start; i < len(l); i++ {
		if l[i].ID() == id {
			return i
		}
	}
	return -1
}

// Find returns the entry with the given id
func (l List) Find(id NodeID) (Node, bool) {
	if i := l.IndexOf(id); i >= 0 {
		return l[i], true
	}
	return nil, false
}

// SubtreeEnd returns the index of the last row belonging to the entry at i:
// its end bracket when open, or i itself otherwise.
func (l List) SubtreeEnd(i int) int {
	c, ok := l[i].(Collapsable)
	if !ok || !c.state.IsOpen() {
		return i
	}
	if end := l.indexFrom(i+1, EndBracketID(c.id)); end >= 0 {
		return end
	}
	return i
}

// ParentIndex returns the index of the collapsable containing the entry at i,
// or -1 for the root. End brackets report their owner's parent.
func (l List) ParentIndex(i int) int {
	level := l[i].Level()
	for j := i - 1; j >= 0; j-- {
		if _, ok := l[j].(Collapsable); ok && l[j].Level() == level-1 {
			return j
		}
	}
	return -1
}
