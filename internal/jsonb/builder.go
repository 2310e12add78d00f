package jsonb

import (
	"context"
	"strconv"

	"github.com/rebeliceyang/lazyjson/internal/models"
)

// checkEvery is how many nodes the builder creates between context checks
const checkEvery = 1024

// Build parses text and converts it into a node tree, returning the initial
// flattened list. The root of the tree is list[0].
func Build(text string, policy models.ExpansionPolicy) (models.List, error) {
	return BuildContext(context.Background(), text, policy)
}

// BuildContext is Build with cooperative cancellation. A cancelled build
// returns ctx.Err() and no list.
func BuildContext(ctx context.Context, text string, policy models.ExpansionPolicy) (models.List, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	value, err := ParseString(text)
	if err != nil {
		return nil, err
	}
	root, err := BuildTree(ctx, value, policy)
	if err != nil {
		return nil, err
	}
	return models.Flatten(root), nil
}

// BuildTree converts an already parsed value. Ids come from a counter local
// to this call, so every tree numbers its nodes from 1.
func BuildTree(ctx context.Context, value Value, policy models.ExpansionPolicy) (models.Node, error) {
	b := &treeBuilder{ctx: ctx, policy: policy}
	return b.build(value, 0, "", models.ParentNone, true)
}

type treeBuilder struct {
	ctx    context.Context
	policy models.ExpansionPolicy
	nextID int
}

func (b *treeBuilder) build(v Value, level int, key string, parent models.ParentType, last bool) (models.Node, error) {
	b.nextID++
	if b.nextID%checkEvery == 0 {
		if err := b.ctx.Err(); err != nil {
			return nil, err
		}
	}
	pos := models.Position{
		ID:         models.NewNodeID(b.nextID),
		Level:      level,
		IsLastItem: last,
		Key:        key,
		ParentType: parent,
	}

	switch v.Kind {
	case KindObject:
		children := make([]models.Node, 0, len(v.Fields))
		for i, f := range v.Fields {
			child, err := b.build(f.Value, level+1, f.Key, models.ParentObject, i == len(v.Fields)-1)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return models.NewCollapsable(pos, models.KindObject, b.initialState(level), children), nil
	case KindArray:
		children := make([]models.Node, 0, len(v.Items))
		for i, item := range v.Items {
			child, err := b.build(item, level+1, strconv.Itoa(i), models.ParentArray, i == len(v.Items)-1)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return models.NewCollapsable(pos, models.KindArray, b.initialState(level), children), nil
	default:
		return models.NewPrimitive(pos, scalarOf(v)), nil
	}
}

func (b *treeBuilder) initialState(level int) models.NodeState {
	switch b.policy {
	case models.PolicyExpanded:
		return models.StateExpanded
	case models.PolicyCollapsed:
		return models.StateCollapsed
	default:
		if level == 0 {
			return models.StateFirstItemExpanded
		}
		return models.StateCollapsed
	}
}

func scalarOf(v Value) models.Scalar {
	switch v.Kind {
	case KindString:
		return models.StringScalar(v.Text)
	case KindNumber:
		return models.NumberScalar(v.Text)
	case KindBool:
		return models.BoolScalar(v.Text == "true")
	default:
		return models.NullScalar()
	}
}
