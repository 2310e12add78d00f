package models

import (
	"fmt"
	"strings"
)

// CollapseMode decides what happens to a subtree's inner states on collapse
type CollapseMode int

const (
	// CollapseReset collapses every descendant too, so a later expand
	// always starts from collapsed children.
	CollapseReset CollapseMode = iota
	// CollapsePreserve keeps descendants' states, so a later expand shows
	// the subtree as it was before the collapse.
	CollapsePreserve
)

func (m CollapseMode) String() string {
	if m == CollapsePreserve {
		return "preserve"
	}
	return "reset"
}

// ParseCollapseMode parses the config spelling of a collapse mode
func ParseCollapseMode(s string) (CollapseMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reset":
		return CollapseReset, nil
	case "preserve":
		return CollapsePreserve, nil
	default:
		return 0, fmt.Errorf("unknown collapse mode %q", s)
	}
}

// Expander applies expand/collapse edits to a flattened list.
// Edits splice only the affected rows and return a new list; the input list
// and its nodes are left untouched.
type Expander struct {
	// ExpandSingleChildren auto-expands along single-child chains when a
	// node is expanded.
	ExpandSingleChildren bool
	Collapse             CollapseMode
}

// Toggle flips the collapsable n using the reset collapse policy
func Toggle(list List, n Node, expandSingleChildren bool) List {
	return Expander{ExpandSingleChildren: expandSingleChildren}.Toggle(list, n)
}

// Toggle collapses n when it is open and expands it otherwise. The current
// state is read from the list entry carrying n's id, not from n itself.
// Passing anything but a Collapsable panics with *ContractViolation.
func (e Expander) Toggle(list List, n Node) List {
	switch v := n.(type) {
	case Collapsable:
		return e.ToggleByID(list, v.id)
	case nil:
		violate("toggle", "", "nil node")
	default:
		violate("toggle", n.ID(), "only objects and arrays can be toggled, got %s", describe(n))
	}
	return nil
}

// ToggleByID toggles the collapsable with the given id. Ids absent from the
// list and ids of other rows panic with *ContractViolation.
func (e Expander) ToggleByID(list List, id NodeID) List {
	i := list.IndexOf(id)
	if i < 0 {
		violate("toggle", id, "not present in the list")
	}
	c, ok := list[i].(Collapsable)
	if !ok {
		violate("toggle", id, "only objects and arrays can be toggled, got %s", describe(list[i]))
	}
	if c.state.IsOpen() {
		return e.collapse(list, i, c)
	}
	return e.expand(list, i, c)
}

func (e Expander) collapse(list List, i int, c Collapsable) List {
	end := list.SubtreeEnd(i)
	if end == i {
		violate("collapse", c.id, "end bracket %s missing", EndBracketID(c.id))
	}

	collapsed := c.WithState(StateCollapsed)
	if e.Collapse == CollapseReset {
		collapsed = SetStateDeep(c, StateCollapsed).(Collapsable)
	}

	out := make(List, 0, len(list)-(end-i))
	out = append(out, list[:i]...)
	out = append(out, collapsed)
	out = append(out, list[end+1:]...)
	return propagate(out, i)
}

func (e Expander) expand(list List, i int, c Collapsable) List {
	expanded := c.WithState(StateExpanded)
	if e.ExpandSingleChildren {
		expanded = expanded.withChildren(cascade(c.children))
	}
	rows := appendFlattened(make(List, 0, countVisible(expanded)), expanded)

	out := make(List, 0, len(list)-1+len(rows))
	out = append(out, list[:i]...)
	out = append(out, rows...)
	out = append(out, list[i+1:]...)
	return propagate(out, i)
}

// cascade auto-expands the collapsable members of children that are either
// an only child or have exactly one child themselves, and continues the same
// rule below every member it expands. Members of a fork that have several
// children of their own stay as they are.
func cascade(children []Node) []Node {
	var out []Node
	for i, child := range children {
		c, ok := child.(Collapsable)
		if !ok || (len(children) != 1 && len(c.children) != 1) {
			continue
		}
		if out == nil {
			out = make([]Node, len(children))
			copy(out, children)
		}
		if c.state == StateCollapsed {
			c.state = StateExpanded
		}
		c.children = cascade(c.children)
		out[i] = c
	}
	if out == nil {
		return children
	}
	return out
}

// propagate replaces every ancestor of the entry at i with a copy that holds
// the updated entry, keeping list[0] in sync with the rows. list must be
// owned by the caller.
func propagate(list List, i int) List {
	child := list[i]
	for p := list.ParentIndex(i); p >= 0; p = list.ParentIndex(p) {
		parent := list[p].(Collapsable)
		updated, ok := parent.withChild(child)
		if !ok {
			violate("toggle", parent.id, "child %s is not part of its parent", child.ID())
		}
		list[p] = updated
		child = updated
	}
	return list
}

func describe(n Node) string {
	switch v := n.(type) {
	case Primitive:
		return "primitive " + v.value.Kind.String()
	case Collapsable:
		return v.kind.String()
	case EndBracket:
		return "end bracket"
	default:
		return fmt.Sprintf("%T", n)
	}
}
