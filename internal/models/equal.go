package models

// Equal reports whether a and b are the same node, comparing every attribute
// and, for collapsables, the whole subtree.
func Equal(a, b Node) bool {
	return equal(a, b, true)
}

// EqualIgnoringIDs compares structure, keys, values and states but not ids.
func EqualIgnoringIDs(a, b Node) bool {
	return equal(a, b, false)
}

// EqualLists compares two lists entry by entry with Equal
func EqualLists(a, b List) bool {
	return equalLists(a, b, true)
}

// EqualListsIgnoringIDs compares two lists entry by entry with EqualIgnoringIDs
func EqualListsIgnoringIDs(a, b List) bool {
	return equalLists(a, b, false)
}

func equalLists(a, b List, ids bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equal(a[i], b[i], ids) {
			return false
		}
	}
	return true
}

func equal(a, b Node, ids bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ids && a.ID() != b.ID() {
		return false
	}
	if a.Level() != b.Level() || a.IsLastItem() != b.IsLastItem() {
		return false
	}
	switch x := a.(type) {
	case Primitive:
		y, ok := b.(Primitive)
		return ok && x.key == y.key && x.parentType == y.parentType && x.value == y.value
	case Collapsable:
		y, ok := b.(Collapsable)
		if !ok || x.key != y.key || x.parentType != y.parentType ||
			x.kind != y.kind || x.state != y.state || len(x.children) != len(y.children) {
			return false
		}
		for i := range x.children {
			if !equal(x.children[i], y.children[i], ids) {
				return false
			}
		}
		return true
	case EndBracket:
		y, ok := b.(EndBracket)
		return ok && x.kind == y.kind
	default:
		panic(unknownNode(a))
	}
}
