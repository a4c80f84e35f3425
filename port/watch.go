package port

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// removalWatcher closes gone when the watched device node disappears.
// USB serial adapters lose their /dev node on unplug, which is the
// closest thing a tty has to a disconnect event.
type removalWatcher struct {
	w        *fsnotify.Watcher
	path     string
	gone     chan struct{}
	goneOnce sync.Once
	done     chan struct{}
	stopOnce sync.Once
	onError  func(error)
}

// watchRemoval starts watching the directory containing path
func watchRemoval(path string, onError func(error)) (*removalWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	rw := &removalWatcher{
		w:       w,
		path:    abs,
		gone:    make(chan struct{}),
		done:    make(chan struct{}),
		onError: onError,
	}
	go rw.run()
	return rw, nil
}

func (rw *removalWatcher) run() {
	for {
		select {
		case <-rw.done:
			return
		case ev, ok := <-rw.w.Events:
			if !ok {
				return
			}
			if ev.Name != rw.path {
				continue
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				rw.goneOnce.Do(func() { close(rw.gone) })
				return
			}
		case err, ok := <-rw.w.Errors:
			if !ok {
				return
			}
			if rw.onError != nil {
				rw.onError(err)
			}
		}
	}
}

// Gone is closed once the device node has been removed
func (rw *removalWatcher) Gone() <-chan struct{} {
	return rw.gone
}

func (rw *removalWatcher) stop() {
	rw.stopOnce.Do(func() {
		close(rw.done)
		rw.w.Close()
	})
}
