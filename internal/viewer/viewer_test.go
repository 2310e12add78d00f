package viewer

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazyjson/internal/jsonb"
	"github.com/rebeliceyang/lazyjson/internal/models"
)

const doc = `{"array":[[{"string":"aString"}],[42,52]],"name":"Istanbul"}`

func newReady(t *testing.T, policy models.ExpansionPolicy) *Viewer {
	t.Helper()
	v := New(Options{Policy: policy, Expander: models.Expander{ExpandSingleChildren: true}})
	require.NoError(t, v.Load(context.Background(), doc))
	return v
}

func TestViewer_Load(t *testing.T) {
	v := New(Options{})
	assert.Equal(t, StatusIdle, v.State().Status)
	assert.NotEmpty(t, v.SessionID())

	require.NoError(t, v.Load(context.Background(), doc))

	s := v.State()
	assert.Equal(t, StatusReady, s.Status)
	assert.Len(t, s.List, 4)
	assert.NoError(t, s.Err)
	// loading + ready
	assert.Equal(t, uint64(2), s.Revision)
}

func TestViewer_LoadLogsAtDebug(t *testing.T) {
	logger, hook := test.NewNullLogger()
	v := New(Options{Logger: logrus.NewEntry(logger)})

	require.NoError(t, v.Load(context.Background(), doc))
	assert.Empty(t, hook.AllEntries())

	logger.SetLevel(logrus.DebugLevel)
	require.NoError(t, v.Load(context.Background(), doc))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "document loaded", entry.Message)
}

func TestViewer_LoadError(t *testing.T) {
	v := newReady(t, models.PolicyExpanded)

	err := v.Load(context.Background(), `{"broken":`)
	require.Error(t, err)

	s := v.State()
	assert.Equal(t, StatusError, s.Status)
	assert.Nil(t, s.List)
	assert.ErrorIs(t, s.Err, jsonb.ErrInvalidJSON)

	_, err = v.Toggle(models.NewNodeID(1))
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = v.Search(context.Background(), "a")
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestViewer_LoadSupersededIsStale(t *testing.T) {
	v := New(Options{Policy: models.PolicyExpanded})
	var fired bool
	var newer error
	v.afterBuild = func() {
		if fired {
			return
		}
		fired = true
		newer = v.Load(context.Background(), `[1,2,3]`)
	}

	err := v.Load(context.Background(), doc)

	assert.ErrorIs(t, err, ErrStale)
	require.NoError(t, newer)
	s := v.State()
	assert.Equal(t, StatusReady, s.Status)
	assert.Len(t, s.List, 5)
}

func TestViewer_Toggle(t *testing.T) {
	v := newReady(t, models.PolicyFirstItemExpanded)
	before := v.State()
	arrayID := before.List[1].ID()

	list, err := v.Toggle(arrayID)
	require.NoError(t, err)

	after := v.State()
	assert.Greater(t, after.Revision, before.Revision)
	assert.True(t, models.EqualLists(list, after.List))
	assert.True(t, models.EqualLists(models.Flatten(list.Root()), list))
	// array has two children, neither of which is auto-expanded past the fork
	assert.Equal(t, models.StateExpanded, list[2].(models.Collapsable).State())
	assert.Equal(t, models.StateCollapsed, list[len(list)-4].(models.Collapsable).State())
}

func TestViewer_TogglePanicsOnInvalidID(t *testing.T) {
	v := newReady(t, models.PolicyExpanded)
	before := v.State()

	assert.Panics(t, func() { _, _ = v.Toggle("node:404") })

	after := v.State()
	assert.Equal(t, before.Revision, after.Revision)
	assert.True(t, models.EqualLists(before.List, after.List))
	// the lock was released by the panic
	_, err := v.Toggle(before.List[0].ID())
	assert.NoError(t, err)
}

func TestViewer_ToggleAtDropsOlderRevisions(t *testing.T) {
	v := New(Options{Policy: models.PolicyExpanded})
	require.NoError(t, v.Load(context.Background(), `{"a":{"b":1}}`))
	old := v.State()
	// node:2 is the object under "a"
	id := old.List[1].ID()

	require.NoError(t, v.Load(context.Background(), `{"a":1,"b":{}}`))
	reloaded := v.State()
	require.Equal(t, id, reloaded.List[1].ID())

	assert.NotPanics(t, func() {
		_, err := v.ToggleAt(old.Revision, id)
		assert.ErrorIs(t, err, ErrStale)
	})
	assert.Equal(t, reloaded.Revision, v.State().Revision)

	list, err := v.ToggleAt(reloaded.Revision, reloaded.List[0].ID())
	require.NoError(t, err)
	assert.Equal(t, reloaded.Revision+1, v.State().Revision)
	assert.True(t, models.EqualLists(list, v.State().List))
}

func TestViewer_Search(t *testing.T) {
	v := newReady(t, models.PolicyExpanded)

	res, err := v.Search(context.Background(), "string")
	require.NoError(t, err)
	// the "string" key and the "aString" value
	assert.Equal(t, 2, res.Count())
	assert.Same(t, res, v.SearchResult())

	first, ok := res.Selected()
	require.True(t, ok)
	next, ok := v.SelectNext()
	require.True(t, ok)
	assert.Equal(t, 2, next.Ordinal)
	back, ok := v.SelectPrevious()
	require.True(t, ok)
	assert.Equal(t, first, back)

	// a structural edit invalidates the result
	_, err = v.Toggle(v.State().List[1].ID())
	require.NoError(t, err)
	assert.Nil(t, v.SearchResult())
	_, ok = v.SelectNext()
	assert.False(t, ok)
}

func TestViewer_SelectAt(t *testing.T) {
	v := newReady(t, models.PolicyExpanded)
	_, ok := v.SelectAt(0)
	assert.False(t, ok, "no search yet")

	_, err := v.Search(context.Background(), "string")
	require.NoError(t, err)

	v.SelectNext()
	sel, ok := v.SelectAt(0)
	require.True(t, ok)
	assert.Equal(t, 4, sel.ListIndex)
	assert.Equal(t, 1, sel.Ordinal)

	// past the last match wraps to the first one
	sel, ok = v.SelectAt(5)
	require.True(t, ok)
	assert.Equal(t, 1, sel.Ordinal)
}

func TestViewer_SearchStaleAfterToggle(t *testing.T) {
	v := newReady(t, models.PolicyExpanded)
	v.afterSearch = func() {
		v.afterSearch = nil
		_, _ = v.Toggle(v.state.List[0].ID())
	}

	_, err := v.Search(context.Background(), "a")

	assert.ErrorIs(t, err, ErrStale)
	assert.Nil(t, v.SearchResult())
}

func TestViewer_SearchSuperseded(t *testing.T) {
	v := newReady(t, models.PolicyExpanded)
	var newer error
	v.afterSearch = func() {
		v.afterSearch = nil
		_, newer = v.Search(context.Background(), "name")
	}

	_, err := v.Search(context.Background(), "a")

	assert.ErrorIs(t, err, ErrStale)
	require.NoError(t, newer)
	assert.Equal(t, "name", v.SearchResult().Query())
}

func TestViewer_ExpandAllCollapseAll(t *testing.T) {
	v := newReady(t, models.PolicyCollapsed)

	list, err := v.ExpandAll()
	require.NoError(t, err)
	full, err := jsonb.Build(doc, models.PolicyExpanded)
	require.NoError(t, err)
	assert.True(t, models.EqualLists(full, list))

	list, err = v.CollapseAll()
	require.NoError(t, err)
	// root, array, name, closing bracket
	assert.Len(t, list, 4)
	assert.Equal(t, models.StateCollapsed, list[1].(models.Collapsable).State())
}

func TestViewer_CancelledLoad(t *testing.T) {
	v := New(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := v.Load(ctx, doc)

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, StatusError, v.State().Status)
}
