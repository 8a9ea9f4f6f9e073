// Package watcher re-uploads the feature model when its XML file changes
// on disk. Editors save in bursts (write temp, rename, chmod), so events
// are debounced before a change is reported.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ModelWatcher watches a single feature model file and reports coalesced
// change notifications on Changed.
type ModelWatcher struct {
	path    string
	fsw     *fsnotify.Watcher
	deb     *Debouncer
	changed chan struct{}
	cancel  context.CancelFunc
}

// NewModelWatcher watches path's directory rather than the file itself,
// so rename-based saves keep being observed.
func NewModelWatcher(path string, deb *Debouncer) (*ModelWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve model path: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	if deb == nil {
		deb = NewDebouncer(0)
	}
	return &ModelWatcher{
		path:    abs,
		fsw:     fsw,
		deb:     deb,
		changed: make(chan struct{}, 1),
	}, nil
}

// Changed delivers one notification per debounced burst of file events.
// The channel has capacity one; a pending notification absorbs later
// bursts until it is consumed.
func (w *ModelWatcher) Changed() <-chan struct{} {
	return w.changed
}

// Start launches the event loop. It returns immediately; Stop or context
// cancellation ends the loop.
func (w *ModelWatcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	go w.loop(ctx)
}

// Stop ends the event loop and releases the underlying watcher.
func (w *ModelWatcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.deb.Cancel()
	w.fsw.Close()
}

func (w *ModelWatcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			w.deb.Trigger(w.notify)

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Watch errors are transient on most platforms; keep going.
		}
	}
}

func (w *ModelWatcher) notify() {
	select {
	case w.changed <- struct{}{}:
	default:
	}
}
