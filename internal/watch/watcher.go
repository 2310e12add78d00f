// Package watch reports changes of a single file, debounced.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is how long the file must stay quiet before a change fires
const DefaultDebounce = 150 * time.Millisecond

var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounce sets the debounce duration
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithOnChange sets the callback invoked after the file changed
func WithOnChange(fn func()) Option {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// WithOnError sets the callback invoked on watch errors
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// WithLogger sets the log entry used for watcher events
func WithLogger(log *logrus.Entry) Option {
	return func(w *Watcher) {
		w.log = log
	}
}

// Watcher monitors one file. The containing directory is watched so that
// editors replacing the file atomically are still noticed.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()
	onError  func(error)
	log      *logrus.Entry

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	cancel   context.CancelFunc
	timer    *time.Timer
	started  bool
	changeCh chan struct{}
	done     chan struct{}
}

// New creates a watcher for path. Call Start to begin watching.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		onChange: func() {},
		onError:  func(error) {},
		changeCh: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = logrus.NewEntry(logrus.StandardLogger())
	}
	w.log = w.log.WithFields(logrus.Fields{"component": "watch", "path": abs})
	return w, nil
}

// Path returns the watched file path
func (w *Watcher) Path() string {
	return w.path
}

// Changed receives once per debounced burst of changes. Bursts that arrive
// while nobody reads are coalesced.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changeCh
}

// Start begins watching
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return ErrAlreadyStarted
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.fsw = fsw
	w.cancel = cancel
	w.done = make(chan struct{})
	w.started = true
	go w.loop(ctx, fsw, w.done)
	w.log.Debug("watching")
	return nil
}

// Stop stops watching and waits for the event loop to exit. A pending
// debounced change is dropped.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	w.cancel()
	_ = w.fsw.Close()
	if w.timer != nil {
		w.timer.Stop()
	}
	done := w.done
	w.mu.Unlock()
	<-done
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	target := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			w.log.WithField("op", event.Op.String()).Debug("file event")
			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
				w.trigger()
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				// editors that save by rename usually recreate the file right away
				w.onError(ErrFileRemoved)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("watch error")
			w.onError(err)
		}
	}
}

func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	started := w.started
	w.mu.Unlock()
	if !started {
		return
	}

	w.onChange()
	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}
