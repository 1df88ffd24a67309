package rcfile

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher notifies a callback when the run-control file changes outside
// the application, so the registry can re-derive active flags. Events are
// debounced: editors typically produce a burst of writes per save.
type Watcher struct {
	path     string
	onChange func()
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewWatcher(path string, onChange func()) *Watcher {
	return &Watcher{
		path:     path,
		onChange: onChange,
		stopCh:   make(chan struct{}),
	}
}

// Start begins watching. The containing directory is watched rather than
// the file itself: atomic replace (rename over the path) drops a watch on
// the file node.
func (w *Watcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return err
	}
	w.watcher = watcher

	go w.loop()
	return nil
}

func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		if w.watcher != nil {
			w.watcher.Close()
		}
	})
}

func (w *Watcher) loop() {
	var (
		debounce *time.Timer
		mu       sync.Mutex
	)
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			mu.Lock()
			if debounce == nil {
				debounce = time.AfterFunc(100*time.Millisecond, func() {
					mu.Lock()
					debounce = nil
					mu.Unlock()
					w.onChange()
				})
			}
			mu.Unlock()
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
