// Package watcher observes a project tree and coalesces file changes into
// rebuild triggers.
package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/harrison/ctxgen/internal/ignore"
)

// DefaultDebounceDelay coalesces bursts of writes into one trigger.
const DefaultDebounceDelay = 500 * time.Millisecond

// Watcher watches root recursively and emits one trigger per settled burst
// of relevant changes. Hidden paths and ignore-matched paths never trigger.
type Watcher struct {
	watcher *fsnotify.Watcher
	trigger chan struct{}
	errs    chan error
	done    chan struct{}
	root    string
	matcher *ignore.Matcher

	mu            sync.Mutex
	debounceDelay time.Duration
	timer         *time.Timer
	closed        bool
}

// New builds a watcher over root using matcher to filter events, and starts
// watching immediately.
func New(root string, matcher *ignore.Matcher) (*Watcher, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch root: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		watcher:       fsw,
		trigger:       make(chan struct{}, 1),
		errs:          make(chan error, 10),
		done:          make(chan struct{}),
		root:          root,
		matcher:       matcher,
		debounceDelay: DefaultDebounceDelay,
	}

	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}

	go w.processEvents()
	return w, nil
}

// Triggers returns the rebuild trigger channel. At most one trigger is
// pending at a time.
func (w *Watcher) Triggers() <-chan struct{} {
	return w.trigger
}

// Errors returns the channel of watch errors.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	return w.watcher.Close()
}

// addRecursive registers dir and its relevant subdirectories.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) || os.IsPermission(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.skipped(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			if os.IsPermission(err) {
				return nil
			}
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// skipped reports whether a path is invisible to the build: hidden, or
// excluded by the ignore patterns.
func (w *Watcher) skipped(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	rel = filepath.ToSlash(rel)

	for _, segment := range strings.Split(rel, "/") {
		if strings.HasPrefix(segment, ".") {
			return true
		}
	}
	return w.matcher != nil && w.matcher.Match(rel)
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		info, err := os.Stat(event.Name)
		if err == nil && info.IsDir() && !w.skipped(event.Name) {
			if err := w.addRecursive(event.Name); err != nil {
				select {
				case w.errs <- err:
				default:
				}
			}
		}
	}

	if event.Op == fsnotify.Chmod {
		return
	}
	if w.skipped(event.Name) {
		return
	}

	w.debounce()
}

// debounce restarts the settle timer; the trigger fires only after the
// burst goes quiet.
func (w *Watcher) debounce() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounceDelay, func() {
		select {
		case w.trigger <- struct{}{}:
		case <-w.done:
		default:
		}
	})
}
