// Package viewer keeps the current document of a tree view and serializes
// loads, toggles and searches against it.
package viewer

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rebeliceyang/lazyjson/internal/jsonb"
	"github.com/rebeliceyang/lazyjson/internal/models"
	"github.com/rebeliceyang/lazyjson/internal/search"
)

var (
	// ErrStale is returned by a load or search whose result was discarded
	// because a newer request was issued or the list changed meanwhile.
	ErrStale = errors.New("result superseded by a newer request")
	// ErrNotReady is returned when an operation needs a loaded document
	ErrNotReady = errors.New("no document loaded")
)

// Status is the lifecycle stage of the current document
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// State is a snapshot of the viewer. List is set only when Ready and Err only
// when Error. Revision grows with every published change.
type State struct {
	Status   Status
	List     models.List
	Err      error
	Revision uint64
}

// Options configures a Viewer
type Options struct {
	Policy          models.ExpansionPolicy
	Expander        models.Expander
	SearchChunkSize int
	Logger          *logrus.Entry
}

// Viewer is safe for concurrent use
type Viewer struct {
	opts    Options
	session string
	log     *logrus.Entry

	mu         sync.Mutex
	state      State
	loadGen    uint64
	cancelLoad context.CancelFunc
	searchGen  uint64
	result     *search.Result

	// test hooks run between computing and publishing a result
	afterBuild  func()
	afterSearch func()
}

// New creates an idle viewer
func New(opts Options) *Viewer {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
		logger.Logger.SetOutput(io.Discard)
	}
	session := uuid.NewString()
	return &Viewer{
		opts:    opts,
		session: session,
		log:     logger.WithFields(logrus.Fields{"component": "viewer", "session": session}),
	}
}

// SessionID identifies this viewer in logs
func (v *Viewer) SessionID() string {
	return v.session
}

// State returns the current snapshot
func (v *Viewer) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Load parses text and publishes the resulting list. A newer Load cancels
// this one; the superseded call returns ErrStale and publishes nothing.
// Parse failures are published as StatusError and returned.
func (v *Viewer) Load(ctx context.Context, text string) error {
	v.mu.Lock()
	v.loadGen++
	gen := v.loadGen
	if v.cancelLoad != nil {
		v.cancelLoad()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	v.cancelLoad = cancel
	v.publish(State{Status: StatusLoading})
	v.mu.Unlock()

	start := time.Now()
	list, err := jsonb.BuildContext(ctx, text, v.opts.Policy)
	if v.afterBuild != nil {
		v.afterBuild()
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.loadGen {
		v.log.WithField("generation", gen).Debug("discarding superseded load")
		return ErrStale
	}
	v.cancelLoad = nil

	if err != nil {
		v.log.WithError(err).Warn("failed to load document")
		v.publish(State{Status: StatusError, Err: err})
		return err
	}
	v.log.WithFields(logrus.Fields{
		"rows":     len(list),
		"bytes":    len(text),
		"duration": time.Since(start),
	}).Debug("document loaded")
	v.publish(State{Status: StatusReady, List: list})
	return nil
}

// publish replaces the state and drops the search result, which refers to
// the previous list. Callers hold mu.
func (v *Viewer) publish(s State) {
	s.Revision = v.state.Revision + 1
	v.state = s
	v.result = nil
}

// Toggle expands or collapses the collapsable with the given id and returns
// the new list. Ids that are not collapsables of the current list panic with
// *models.ContractViolation.
func (v *Viewer) Toggle(id models.NodeID) (models.List, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state.Status != StatusReady {
		return nil, ErrNotReady
	}
	return v.toggle(id), nil
}

// ToggleAt is Toggle for a request made against the list of the given
// revision. Ids are renumbered by every load, so a request from an older
// revision returns ErrStale instead of toggling whatever now owns the id.
func (v *Viewer) ToggleAt(revision uint64, id models.NodeID) (models.List, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state.Status != StatusReady {
		return nil, ErrNotReady
	}
	if revision != v.state.Revision {
		v.log.WithFields(logrus.Fields{"id": id, "revision": revision}).Debug("discarding stale toggle")
		return nil, ErrStale
	}
	return v.toggle(id), nil
}

func (v *Viewer) toggle(id models.NodeID) models.List {
	list := v.opts.Expander.ToggleByID(v.state.List, id)
	v.publish(State{Status: StatusReady, List: list})
	v.log.WithFields(logrus.Fields{"id": id, "rows": len(list)}).Debug("toggled")
	return list
}

// ExpandAll opens every collapsable of the document
func (v *Viewer) ExpandAll() (models.List, error) {
	return v.setAll(func(root models.Node) models.Node {
		return models.SetStateDeep(root, models.StateExpanded)
	})
}

// CollapseAll closes every collapsable below the root and leaves the root open
func (v *Viewer) CollapseAll() (models.List, error) {
	return v.setAll(func(root models.Node) models.Node {
		collapsed := models.SetStateDeep(root, models.StateCollapsed)
		if c, ok := collapsed.(models.Collapsable); ok {
			return c.WithState(models.StateExpanded)
		}
		return collapsed
	})
}

func (v *Viewer) setAll(apply func(models.Node) models.Node) (models.List, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state.Status != StatusReady {
		return nil, ErrNotReady
	}
	list := models.Flatten(apply(v.state.List.Root()))
	v.publish(State{Status: StatusReady, List: list})
	return list, nil
}

// Search runs query against the current list without holding the lock. The
// result is published only when no newer search was issued and the list did
// not change meanwhile; otherwise ErrStale is returned. The returned result is
// shared with the viewer, so move its cursor through SelectNext and
// SelectPrevious.
func (v *Viewer) Search(ctx context.Context, query string) (*search.Result, error) {
	v.mu.Lock()
	if v.state.Status != StatusReady {
		v.mu.Unlock()
		return nil, ErrNotReady
	}
	v.searchGen++
	gen := v.searchGen
	list, revision := v.state.List, v.state.Revision
	v.mu.Unlock()

	res, err := search.SearchContext(ctx, list, query, search.Options{ChunkSize: v.opts.SearchChunkSize})
	if v.afterSearch != nil {
		v.afterSearch()
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.searchGen || revision != v.state.Revision {
		v.log.WithField("query", query).Debug("discarding stale search")
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}
	v.result = res
	v.log.WithFields(logrus.Fields{"query": query, "count": res.Count()}).Debug("search finished")
	return res, nil
}

// ClearSearch drops the current search result
func (v *Viewer) ClearSearch() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.searchGen++
	v.result = nil
}

// SearchResult returns the published search result, or nil
func (v *Viewer) SearchResult() *search.Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.result
}

// SelectNext advances the search cursor and returns the new selection
func (v *Viewer) SelectNext() (search.Selection, bool) {
	return v.moveCursor((*search.Result).SelectNext)
}

// SelectPrevious moves the search cursor back and returns the new selection
func (v *Viewer) SelectPrevious() (search.Selection, bool) {
	return v.moveCursor((*search.Result).SelectPrevious)
}

// SelectAt moves the search cursor to the first match at or after listIndex
func (v *Viewer) SelectAt(listIndex int) (search.Selection, bool) {
	return v.moveCursor(func(r *search.Result) { r.Select(listIndex) })
}

func (v *Viewer) moveCursor(move func(*search.Result)) (search.Selection, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.result == nil {
		return search.Selection{}, false
	}
	move(v.result)
	return v.result.Selected()
}
