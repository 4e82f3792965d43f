// Package watch re-checks scripts when they change on disk.
package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnolang/sklang/internal/diag"
	"github.com/gnolang/sklang/loader"
)

// DefaultDelay is how long a file has to stay quiet before it is checked.
// Editors often write a file in several steps.
const DefaultDelay = 100 * time.Millisecond

// Handler receives the result of checking a changed file.
type Handler func(filename string, diagnostics []diag.Diagnostic, err error)

// Watcher watches directories and checks the scripts written in them.
type Watcher struct {
	checker loader.Checker
	handler Handler
	logger  *zap.Logger
	delay   time.Duration

	watcher *fsnotify.Watcher

	mu       sync.Mutex
	pending  map[string]*time.Timer
	watching bool
	done     chan struct{}
}

// New creates a watcher. A nil logger discards logs, a non-positive delay
// uses DefaultDelay.
func New(checker loader.Checker, handler Handler, logger *zap.Logger, delay time.Duration) (*Watcher, error) {
	if checker == nil || handler == nil {
		return nil, errors.New("watch: checker and handler are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	return &Watcher{
		checker: checker,
		handler: handler,
		logger:  logger,
		delay:   delay,
		watcher: fw,
		pending: make(map[string]*time.Timer),
	}, nil
}

// Start adds every directory below dirs to the watch list and starts
// handling events in the background.
func (w *Watcher) Start(dirs ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watching {
		return errors.New("already watching")
	}

	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return w.watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	w.watching = true
	w.done = make(chan struct{})
	go w.loop(w.done)
	return nil
}

// Stop stops watching and cancels checks that have not started yet.
// A stopped watcher can't be restarted.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.watching {
		w.mu.Unlock()
		return errors.New("not watching")
	}
	w.watching = false
	for name, t := range w.pending {
		t.Stop()
		delete(w.pending, name)
	}
	done := w.done
	w.mu.Unlock()

	err := w.watcher.Close()
	<-done
	return err
}

func (w *Watcher) loop(done chan struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !w.checker.HasExtension(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.watching {
		return
	}
	// restart the quiet period on every write
	if t, ok := w.pending[event.Name]; ok {
		t.Stop()
	}
	name := event.Name
	w.pending[name] = time.AfterFunc(w.delay, func() { w.check(name) })
}

func (w *Watcher) check(filename string) {
	w.mu.Lock()
	if !w.watching {
		w.mu.Unlock()
		return
	}
	delete(w.pending, filename)
	w.mu.Unlock()

	diagnostics, err := w.checker.Run(filename)
	if err != nil {
		w.logger.Error("error checking file", zap.String("file", filename), zap.Error(err))
	} else {
		w.logger.Debug("checked file", zap.String("file", filename), zap.Int("diagnostics", len(diagnostics)))
	}
	w.handler(filename, diagnostics, err)
}
