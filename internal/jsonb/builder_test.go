package jsonb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazyjson/internal/models"
)

func TestBuild_AssignsIDsInPreOrder(t *testing.T) {
	list, err := Build(`{"a":[1,{"b":2}],"c":3}`, models.PolicyExpanded)
	require.NoError(t, err)

	var ids []models.NodeID
	for _, n := range list {
		if _, ok := n.(models.EndBracket); !ok {
			ids = append(ids, n.ID())
		}
	}
	want := []models.NodeID{"node:1", "node:2", "node:3", "node:4", "node:5", "node:6"}
	assert.Equal(t, want, ids)
}

func TestBuild_CounterIsPerBuild(t *testing.T) {
	first, err := Build(`[1]`, models.PolicyExpanded)
	require.NoError(t, err)
	second, err := Build(`[1]`, models.PolicyExpanded)
	require.NoError(t, err)

	assert.True(t, models.EqualLists(first, second))
}

func TestBuild_Positions(t *testing.T) {
	list, err := Build(`{"a":[true,null],"b":"x"}`, models.PolicyExpanded)
	require.NoError(t, err)
	// { a [ true null ] b }
	require.Len(t, list, 7)

	root := list[0].(models.Collapsable)
	assert.Equal(t, 0, root.Level())
	assert.True(t, root.IsLastItem())
	assert.False(t, root.HasKey())
	assert.Equal(t, models.ParentNone, root.ParentType())

	a := list[1].(models.Collapsable)
	assert.Equal(t, "a", a.Key())
	assert.Equal(t, models.ParentObject, a.ParentType())
	assert.False(t, a.IsLastItem())

	first := list[2].(models.Primitive)
	assert.Equal(t, "0", first.Key())
	assert.Equal(t, models.ParentArray, first.ParentType())
	assert.Equal(t, 2, first.Level())
	assert.False(t, first.IsLastItem())
	assert.True(t, list[3].IsLastItem())

	b := list[5].(models.Primitive)
	assert.True(t, b.IsLastItem())
	assert.Equal(t, models.StringScalar("x"), b.Value())
}

func TestBuild_Policies(t *testing.T) {
	text := `{"a":{"b":[1]},"c":[]}`

	tests := []struct {
		policy models.ExpansionPolicy
		rows   int
		root   models.NodeState
		child  models.NodeState
	}{
		{models.PolicyFirstItemExpanded, 4, models.StateFirstItemExpanded, models.StateCollapsed},
		{models.PolicyExpanded, 9, models.StateExpanded, models.StateExpanded},
		{models.PolicyCollapsed, 1, models.StateCollapsed, models.StateCollapsed},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			list, err := Build(text, tt.policy)
			require.NoError(t, err)
			assert.Len(t, list, tt.rows)

			root := list.Root().(models.Collapsable)
			assert.Equal(t, tt.root, root.State())
			a, ok := root.Child("a")
			require.True(t, ok)
			assert.Equal(t, tt.child, a.(models.Collapsable).State())
		})
	}
}

func TestBuild_PrimitiveRoot(t *testing.T) {
	list, err := Build(`"only"`, models.PolicyExpanded)
	require.NoError(t, err)
	require.Len(t, list, 1)

	p := list[0].(models.Primitive)
	assert.False(t, p.HasKey())
	assert.Equal(t, `"only"`, p.Value().Literal())
}

func TestBuild_ParseError(t *testing.T) {
	_, err := Build("", models.PolicyExpanded)
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Build(`{"a":}`, models.PolicyExpanded)
	require.True(t, errors.As(err, &parseErr))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestBuildContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildContext(ctx, `[1,2,3]`, models.PolicyExpanded)
	assert.ErrorIs(t, err, context.Canceled)
}
