package models_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/rebeliceyang/lazyjson/internal/jsonb"
	"github.com/rebeliceyang/lazyjson/internal/models"
	"github.com/rebeliceyang/lazyjson/internal/testutil"
)

var policies = []models.ExpansionPolicy{
	models.PolicyFirstItemExpanded,
	models.PolicyExpanded,
	models.PolicyCollapsed,
}

type helperT interface {
	require.TestingT
	Helper()
}

func mustBuild(t helperT, text string, policy models.ExpansionPolicy) models.List {
	t.Helper()
	list, err := jsonb.Build(text, policy)
	require.NoError(t, err)
	return list
}

// row renders a list entry as kind:key:state for readable comparisons
func row(n models.Node) string {
	switch v := n.(type) {
	case models.Primitive:
		return fmt.Sprintf("%d %s=%s", v.Level(), v.Key(), v.Value().Literal())
	case models.Collapsable:
		return fmt.Sprintf("%d %s %s %s", v.Level(), v.Kind(), v.Key(), v.State())
	case models.EndBracket:
		_, closing := v.Kind().Brackets()
		return fmt.Sprintf("%d %s", v.Level(), closing)
	}
	return "?"
}

func rows(list models.List) []string {
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = row(n)
	}
	return out
}

func collapsableIndexes(list models.List) []int {
	var out []int
	for i, n := range list {
		if _, ok := n.(models.Collapsable); ok {
			out = append(out, i)
		}
	}
	return out
}

func TestToggle_CascadeStopsAtFork(t *testing.T) {
	list := mustBuild(t, `{"array":[[{"string":"aString"}],[42,52]]}`, models.PolicyCollapsed)
	require.Len(t, list, 1)

	list = models.Toggle(list, list.Root(), true)

	assert.Equal(t, []string{
		"0 object  expanded",
		"1 array array expanded",
		"2 array 0 expanded",
		"3 object 0 expanded",
		`4 string="aString"`,
		"3 }",
		"2 ]",
		"2 array 1 collapsed",
		"1 ]",
		"0 }",
	}, rows(list))
	assert.True(t, models.EqualLists(models.Flatten(list.Root()), list))
}

func TestToggle_WithoutCascade(t *testing.T) {
	list := mustBuild(t, `{"array":[[{"string":"aString"}],[42,52]]}`, models.PolicyCollapsed)

	list = models.Toggle(list, list.Root(), false)

	assert.Equal(t, []string{
		"0 object  expanded",
		"1 array array collapsed",
		"0 }",
	}, rows(list))
}

func TestToggle_CollapseResetsDescendants(t *testing.T) {
	list := mustBuild(t, `{"a":{"b":{"c":1}},"d":2}`, models.PolicyExpanded)
	a := list.IndexOf(models.NewNodeID(2))
	require.Equal(t, 1, a)

	collapsed := models.Toggle(list, list[a], false)
	require.Equal(t, []string{
		"0 object  expanded",
		"1 object a collapsed",
		"1 d=2",
		"0 }",
	}, rows(collapsed))

	reopened := models.Toggle(collapsed, collapsed[a], false)
	assert.Equal(t, []string{
		"0 object  expanded",
		"1 object a expanded",
		"2 object b collapsed",
		"1 }",
		"1 d=2",
		"0 }",
	}, rows(reopened))
}

func TestToggle_CollapsePreserveKeepsDescendants(t *testing.T) {
	list := mustBuild(t, `{"a":{"b":{"c":1}},"d":2}`, models.PolicyExpanded)
	e := models.Expander{Collapse: models.CollapsePreserve}

	collapsed := e.ToggleByID(list, models.NewNodeID(2))
	reopened := e.ToggleByID(collapsed, models.NewNodeID(2))

	assert.True(t, models.EqualLists(list, reopened))
}

func TestToggle_FirstItemExpandedIsNeverRestored(t *testing.T) {
	list := mustBuild(t, `[1,2]`, models.PolicyFirstItemExpanded)
	require.Equal(t, models.StateFirstItemExpanded, list.Root().(models.Collapsable).State())
	require.Len(t, list, 4)

	list = models.Toggle(list, list.Root(), false)
	assert.Equal(t, models.StateCollapsed, list.Root().(models.Collapsable).State())
	assert.Len(t, list, 1)

	list = models.Toggle(list, list.Root(), false)
	assert.Equal(t, models.StateExpanded, list.Root().(models.Collapsable).State())
	assert.Len(t, list, 4)
}

func TestToggle_ContractViolations(t *testing.T) {
	list := mustBuild(t, `{"k":[true],"n":null}`, models.PolicyExpanded)
	before := append(models.List(nil), list...)

	tests := []struct {
		name string
		call func()
	}{
		{"primitive", func() { models.Toggle(list, list[2], true) }},
		{"end bracket", func() { models.Toggle(list, list[3], true) }},
		{"nil", func() { models.Toggle(list, nil, true) }},
		{"unknown id", func() { models.Expander{}.ToggleByID(list, "node:999") }},
		{"primitive id", func() { models.Expander{}.ToggleByID(list, list[4].ID()) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var recovered any
			func() {
				defer func() { recovered = recover() }()
				tt.call()
			}()
			require.NotNil(t, recovered)
			err, ok := recovered.(error)
			require.True(t, ok)
			var violation *models.ContractViolation
			assert.True(t, errors.As(err, &violation))
			assert.True(t, models.EqualLists(before, list))
		})
	}
}

func TestToggle_DoesNotModifyInput(t *testing.T) {
	list := mustBuild(t, `{"a":[1,{"b":2}],"c":{}}`, models.PolicyExpanded)
	before := append(models.List(nil), list...)

	_ = models.Toggle(list, list[1], true)

	assert.True(t, models.EqualLists(before, list))
}

func TestProperty_PrimitiveRootIsSingleRow(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := testutil.JSON(0).Draw(t, "json")
		policy := rapid.SampledFrom(policies).Draw(t, "policy")
		list := mustBuild(t, text, policy)
		assert.Len(t, list, 1)
		_, ok := list[0].(models.Primitive)
		assert.True(t, ok)
	})
}

func TestProperty_CollapsedRootIsSingleRow(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		list := mustBuild(t, testutil.Document(3).Draw(t, "json"), models.PolicyCollapsed)
		require.Len(t, list, 1)
		c, ok := list[0].(models.Collapsable)
		require.True(t, ok)
		assert.Equal(t, models.StateCollapsed, c.State())
	})
}

func checkBrackets(t require.TestingT, list models.List) {
	brackets := 0
	for i, n := range list {
		switch v := n.(type) {
		case models.EndBracket:
			brackets++
		case models.Collapsable:
			if !v.State().IsOpen() {
				continue
			}
			end := list.SubtreeEnd(i)
			require.Greater(t, end, i)
			eb, ok := list[end].(models.EndBracket)
			require.True(t, ok)
			assert.Equal(t, v.Level(), eb.Level())
			assert.Equal(t, v.ID(), eb.OwnerID())
			for j := i + 1; j < end; j++ {
				assert.Greater(t, list[j].Level(), v.Level())
			}
		}
	}
	open := 0
	for _, i := range collapsableIndexes(list) {
		if list[i].(models.Collapsable).State().IsOpen() {
			open++
		}
	}
	assert.Equal(t, open, brackets)
}

func TestProperty_EndBracketsCloseTheirSubtree(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		policy := rapid.SampledFrom(policies).Draw(t, "policy")
		checkBrackets(t, mustBuild(t, testutil.JSON(4).Draw(t, "json"), policy))
	})
}

func TestProperty_ExpandThenCollapseIsIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		policy := rapid.SampledFrom([]models.ExpansionPolicy{
			models.PolicyCollapsed, models.PolicyFirstItemExpanded,
		}).Draw(t, "policy")
		list := mustBuild(t, testutil.Document(4).Draw(t, "json"), policy)

		var closed []int
		for _, i := range collapsableIndexes(list) {
			if !list[i].(models.Collapsable).State().IsOpen() {
				closed = append(closed, i)
			}
		}
		if len(closed) == 0 {
			t.Skip("nothing collapsed")
		}
		i := rapid.SampledFrom(closed).Draw(t, "node")
		cascade := rapid.Bool().Draw(t, "cascade")

		expanded := models.Toggle(list, list[i], cascade)
		restored := models.Toggle(expanded, expanded[i], cascade)

		assert.True(t, models.EqualLists(list, restored))
	})
}

func TestProperty_PatchedListMatchesFlatten(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		policy := rapid.SampledFrom(policies).Draw(t, "policy")
		e := models.Expander{
			ExpandSingleChildren: rapid.Bool().Draw(t, "cascade"),
			Collapse:             rapid.SampledFrom([]models.CollapseMode{models.CollapseReset, models.CollapsePreserve}).Draw(t, "mode"),
		}
		list := mustBuild(t, testutil.Document(4).Draw(t, "json"), policy)

		steps := rapid.IntRange(1, 8).Draw(t, "steps")
		for s := 0; s < steps; s++ {
			i := rapid.SampledFrom(collapsableIndexes(list)).Draw(t, "node")
			list = e.Toggle(list, list[i])
			require.True(t, models.EqualLists(models.Flatten(list.Root()), list))
			checkBrackets(t, list)
		}
	})
}

func TestParseCollapseMode(t *testing.T) {
	mode, err := models.ParseCollapseMode("Preserve")
	require.NoError(t, err)
	assert.Equal(t, models.CollapsePreserve, mode)

	mode, err = models.ParseCollapseMode("")
	require.NoError(t, err)
	assert.Equal(t, models.CollapseReset, mode)

	_, err = models.ParseCollapseMode("forget")
	assert.Error(t, err)
}

func TestParseExpansionPolicy(t *testing.T) {
	for _, p := range policies {
		got, err := models.ParseExpansionPolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err := models.ParseExpansionPolicy("open")
	assert.Error(t, err)
}
