package models

// Flatten returns the rows visible under root: a depth-first pre-order walk
// where open collapsables contribute their children followed by their end
// bracket, and collapsed ones contribute only themselves.
func Flatten(root Node) List {
	if root == nil {
		return nil
	}
	return appendFlattened(make(List, 0, countVisible(root)), root)
}

func appendFlattened(dst List, n Node) List {
	switch v := n.(type) {
	case Primitive:
		return append(dst, v)
	case Collapsable:
		dst = append(dst, v)
		if !v.state.IsOpen() {
			return dst
		}
		for _, child := range v.children {
			dst = appendFlattened(dst, child)
		}
		return append(dst, EndBracketOf(v))
	case EndBracket:
		return append(dst, v)
	default:
		panic(unknownNode(n))
	}
}

func countVisible(n Node) int {
	c, ok := n.(Collapsable)
	if !ok {
		return 1
	}
	if !c.state.IsOpen() {
		return 1
	}
	total := 2
	for _, child := range c.children {
		total += countVisible(child)
	}
	return total
}

// SetStateDeep returns a copy of n with every collapsable in its subtree,
// n included, set to state.
func SetStateDeep(n Node, state NodeState) Node {
	c, ok := n.(Collapsable)
	if !ok {
		return n
	}
	children := make([]Node, len(c.children))
	for i, child := range c.children {
		children[i] = SetStateDeep(child, state)
	}
	c.state = state
	c.children = children
	return c
}

// Walk visits n and all its descendants in pre-order, stopping early when
// fn returns false.
func Walk(n Node, fn func(Node) bool) bool {
	if !fn(n) {
		return false
	}
	if c, ok := n.(Collapsable); ok {
		for _, child := range c.children {
			if !Walk(child, fn) {
				return false
			}
		}
	}
	return true
}
