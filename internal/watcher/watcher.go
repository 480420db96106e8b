// Package watcher provides debounced file watching for re-rendering on save.
package watcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/adelrodriguez/sakuga/internal/log"
)

// ErrNoPaths indicates a watcher configured without files to watch.
var ErrNoPaths = errors.New("no paths to watch")

// Watcher monitors a set of input files and reports which of them changed
// once writes settle.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	files     map[string]bool
	dirs      []string
	debounce  time.Duration
	changes   chan []string
	done      chan struct{}
	stopOnce  sync.Once
}

// Config holds watcher configuration options.
type Config struct {
	Paths       []string
	DebounceDur time.Duration
}

// DefaultConfig watches paths with a 300ms debounce.
func DefaultConfig(paths ...string) Config {
	return Config{
		Paths:       paths,
		DebounceDur: 300 * time.Millisecond,
	}
}

// New creates a watcher for cfg.Paths. Nothing is watched until Start.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Paths) == 0 {
		return nil, ErrNoPaths
	}

	files := make(map[string]bool, len(cfg.Paths))
	var dirs []string
	for _, p := range cfg.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		files[abs] = true
		// Editors often save by renaming over the file, which drops a watch on
		// the file itself, so watch its directory.
		if dir := filepath.Dir(abs); !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher: fsw,
		files:     files,
		dirs:      dirs,
		debounce:  cfg.DebounceDur,
		changes:   make(chan []string, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching. The returned channel receives the sorted absolute
// paths that changed during each quiet period. A batch the receiver has not
// taken yet absorbs later changes.
func (w *Watcher) Start() (<-chan []string, error) {
	for _, dir := range w.dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			return nil, fmt.Errorf("watching directory %s: %w", dir, err)
		}
	}
	log.Debug(log.CatWatch, "Watching", "files", len(w.files), "dirs", w.dirs)

	go w.loop()
	return w.changes, nil
}

// Stop terminates the watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
	})
	return err
}

func (w *Watcher) loop() {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	pending := make(map[string]bool)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			name, relevant := w.relevant(event)
			if !relevant {
				continue
			}
			log.Debug(log.CatWatch, "Input changed", "path", name, "op", event.Op.String())
			pending[name] = true
			timer.Reset(w.debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			w.emit(pending)
			pending = make(map[string]bool)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warn(log.CatWatch, "Watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

// emit sends the pending paths, merging them into an unread batch.
func (w *Watcher) emit(pending map[string]bool) {
	select {
	case queued := <-w.changes:
		for _, p := range queued {
			pending[p] = true
		}
	default:
	}
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	w.changes <- paths
}

// relevant reports whether event touches a watched file: Write for in-place
// saves, Create for atomic rename-over saves.
func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
		return "", false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return "", false
	}
	return name, w.files[name]
}
