package models

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeID identifies a node within one built tree.
// Builder ids look like "node:12"; end brackets derive theirs as "end:12".
type NodeID string

const (
	nodeIDPrefix = "node:"
	endIDPrefix  = "end:"
)

// NewNodeID returns the id for the n-th node produced by a build
func NewNodeID(n int) NodeID {
	return NodeID(nodeIDPrefix + strconv.Itoa(n))
}

// EndBracketID derives the end bracket id of the collapsable with the given id
func EndBracketID(owner NodeID) NodeID {
	return NodeID(endIDPrefix + strings.TrimPrefix(string(owner), nodeIDPrefix))
}

// OwnerID returns the id of the collapsable an end bracket id belongs to
func OwnerID(end NodeID) (NodeID, bool) {
	rest, ok := strings.CutPrefix(string(end), endIDPrefix)
	if !ok {
		return "", false
	}
	return NodeID(nodeIDPrefix + rest), true
}

// NodeState is the expansion state of a collapsable node
type NodeState int

const (
	StateCollapsed NodeState = iota
	StateExpanded
	// StateFirstItemExpanded is only assigned at build time to the root.
	// It flattens like StateExpanded and is never returned to once toggled.
	StateFirstItemExpanded
)

// IsOpen reports whether children are rendered in this state
func (s NodeState) IsOpen() bool {
	return s != StateCollapsed
}

func (s NodeState) String() string {
	switch s {
	case StateCollapsed:
		return "collapsed"
	case StateExpanded:
		return "expanded"
	case StateFirstItemExpanded:
		return "first-item-expanded"
	default:
		return fmt.Sprintf("NodeState(%d)", int(s))
	}
}

// ExpansionPolicy selects the initial states assigned by the tree builder
type ExpansionPolicy int

const (
	PolicyFirstItemExpanded ExpansionPolicy = iota
	PolicyExpanded
	PolicyCollapsed
)

func (p ExpansionPolicy) String() string {
	switch p {
	case PolicyExpanded:
		return "expanded"
	case PolicyCollapsed:
		return "collapsed"
	case PolicyFirstItemExpanded:
		return "first-item-expanded"
	default:
		return fmt.Sprintf("ExpansionPolicy(%d)", int(p))
	}
}

// ParseExpansionPolicy parses the config/flag spelling of a policy
func ParseExpansionPolicy(s string) (ExpansionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expanded":
		return PolicyExpanded, nil
	case "collapsed":
		return PolicyCollapsed, nil
	case "first-item-expanded", "first_item_expanded", "first":
		return PolicyFirstItemExpanded, nil
	default:
		return 0, fmt.Errorf("unknown expansion policy %q", s)
	}
}

// ParentType describes how a node is keyed inside its parent
type ParentType int

const (
	ParentNone ParentType = iota
	ParentArray
	ParentObject
)

func (p ParentType) String() string {
	switch p {
	case ParentNone:
		return "none"
	case ParentArray:
		return "array"
	case ParentObject:
		return "object"
	default:
		return fmt.Sprintf("ParentType(%d)", int(p))
	}
}

// CollapsableKind distinguishes objects from arrays
type CollapsableKind int

const (
	KindObject CollapsableKind = iota
	KindArray
)

// Brackets returns the opening and closing delimiters for the kind
func (k CollapsableKind) Brackets() (opening, closing string) {
	if k == KindArray {
		return "[", "]"
	}
	return "{", "}"
}

func (k CollapsableKind) String() string {
	if k == KindArray {
		return "array"
	}
	return "object"
}

// Node is a single entry of a JSON tree or of its flattened list.
// The set of implementations is closed: Primitive, Collapsable and EndBracket.
type Node interface {
	ID() NodeID
	Level() int
	IsLastItem() bool
	isNode()
}

type base struct {
	id         NodeID
	level      int
	isLastItem bool
}

func (b base) ID() NodeID       { return b.id }
func (b base) Level() int       { return b.level }
func (b base) IsLastItem() bool { return b.isLastItem }

// keyed carries the fields shared by the nodes the builder produces
type keyed struct {
	base
	key        string
	parentType ParentType
}

// Key returns the object field name or stringified array index
func (k keyed) Key() string { return k.key }

// HasKey is false only for the root
func (k keyed) HasKey() bool { return k.parentType != ParentNone }

// ParentType returns how the node is keyed inside its parent
func (k keyed) ParentType() ParentType { return k.parentType }

// Position groups the identity and placement attributes of a built node
type Position struct {
	ID         NodeID
	Level      int
	IsLastItem bool
	Key        string
	ParentType ParentType
}

func (p Position) toKeyed() keyed {
	return keyed{
		base:       base{id: p.ID, level: p.Level, isLastItem: p.IsLastItem},
		key:        p.Key,
		parentType: p.ParentType,
	}
}

// RootPosition is the placement of a document root
func RootPosition(id NodeID) Position {
	return Position{ID: id, Level: 0, IsLastItem: true, ParentType: ParentNone}
}

// Primitive is a scalar leaf
type Primitive struct {
	keyed
	value Scalar
}

// NewPrimitive creates a primitive node
func NewPrimitive(pos Position, value Scalar) Primitive {
	return Primitive{keyed: pos.toKeyed(), value: value}
}

// Value returns the scalar as it appeared in the source
func (p Primitive) Value() Scalar { return p.value }

func (Primitive) isNode() {}

// Collapsable is an object or array that can be expanded and collapsed
type Collapsable struct {
	keyed
	kind     CollapsableKind
	state    NodeState
	children []Node
}

// NewCollapsable creates an object or array node. The children slice is
// owned by the node afterwards.
func NewCollapsable(pos Position, kind CollapsableKind, state NodeState, children []Node) Collapsable {
	return Collapsable{keyed: pos.toKeyed(), kind: kind, state: state, children: children}
}

// Kind reports whether the node is an object or an array
func (c Collapsable) Kind() CollapsableKind { return c.kind }

// State returns the expansion state
func (c Collapsable) State() NodeState { return c.state }

// Len returns the number of children
func (c Collapsable) Len() int { return len(c.children) }

// ChildAt returns the i-th child in source order
func (c Collapsable) ChildAt(i int) Node { return c.children[i] }

// Children returns a copy of the children in source order
func (c Collapsable) Children() []Node {
	out := make([]Node, len(c.children))
	copy(out, c.children)
	return out
}

// Child looks a child up by its key
func (c Collapsable) Child(key string) (Node, bool) {
	for _, child := range c.children {
		if keyOf(child) == key {
			return child, true
		}
	}
	return nil, false
}

// WithState returns a copy of the node in the given state. Children are shared.
func (c Collapsable) WithState(state NodeState) Collapsable {
	c.state = state
	return c
}

// withChildren returns a copy of the node owning the given children
func (c Collapsable) withChildren(children []Node) Collapsable {
	c.children = children
	return c
}

// withChild returns a copy where the child carrying child's id is replaced
func (c Collapsable) withChild(child Node) (Collapsable, bool) {
	for i, existing := range c.children {
		if existing.ID() != child.ID() {
			continue
		}
		children := make([]Node, len(c.children))
		copy(children, c.children)
		children[i] = child
		return c.withChildren(children), true
	}
	return c, false
}

func (Collapsable) isNode() {}

// EndBracket is the synthetic closing row of an expanded collapsable
type EndBracket struct {
	base
	kind CollapsableKind
}

// EndBracketOf derives the closing row of c
func EndBracketOf(c Collapsable) EndBracket {
	return EndBracket{
		base: base{id: EndBracketID(c.id), level: c.level, isLastItem: c.isLastItem},
		kind: c.kind,
	}
}

// Kind reports which bracket this row closes
func (e EndBracket) Kind() CollapsableKind { return e.kind }

// OwnerID returns the id of the collapsable this bracket closes
func (e EndBracket) OwnerID() NodeID {
	id, _ := OwnerID(e.id)
	return id
}

func (EndBracket) isNode() {}

// KeyOf returns the key of a node and whether it has one
func KeyOf(n Node) (string, bool) {
	switch v := n.(type) {
	case Primitive:
		return v.key, v.HasKey()
	case Collapsable:
		return v.key, v.HasKey()
	case EndBracket:
		return "", false
	default:
		panic(unknownNode(n))
	}
}

func keyOf(n Node) string {
	key, _ := KeyOf(n)
	return key
}

// ParentTypeOf returns the parent type of a node; end brackets report ParentNone
func ParentTypeOf(n Node) ParentType {
	switch v := n.(type) {
	case Primitive:
		return v.parentType
	case Collapsable:
		return v.parentType
	case EndBracket:
		return ParentNone
	default:
		panic(unknownNode(n))
	}
}

func unknownNode(n Node) string {
	return fmt.Sprintf("models: unknown node type %T", n)
}
