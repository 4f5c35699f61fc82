package watch

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Debounce is how long a file must go without events before its change is
// reported.
const Debounce = 100 * time.Millisecond

// Watcher reports changes to scene, manifest and script files. Events
// carries cleaned file paths and is closed after Close returns.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
	log     *zap.Logger
}

// NewWatcher watches the directories containing paths. Directories rather
// than files are watched so editors that save by rename are still seen.
func NewWatcher(log *zap.Logger, paths ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	seen := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		dir := filepath.Dir(filepath.Clean(p))
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		log.Debug("watching directory", zap.String("dir", dir))
	}

	w := &Watcher{
		watcher: fw,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
		log:     log,
	}
	go w.run()
	return w, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer func() {
		close(w.Events)
		close(w.Errors)
		close(w.done)
	}()

	// pending holds, per file, when it goes quiet. A file is reported once
	// no event has touched it for Debounce, so a save split across several
	// writes is seen after the last one.
	pending := make(map[string]time.Time)
	timer := time.NewTimer(Debounce)
	timer.Stop()
	defer timer.Stop()
	var fire <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !Reloadable(event.Name) {
				continue
			}
			pending[filepath.Clean(event.Name)] = time.Now().Add(Debounce)
			if fire == nil {
				timer.Reset(Debounce)
				fire = timer.C
			}
		case now := <-fire:
			fire = nil
			var next time.Time
			for _, name := range quiet(pending, now) {
				select {
				case w.Events <- name:
				case <-w.closeCh:
					return
				}
			}
			for _, at := range pending {
				if next.IsZero() || at.Before(next) {
					next = at
				}
			}
			if !next.IsZero() {
				timer.Reset(max(next.Sub(now), time.Millisecond))
				fire = timer.C
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
				w.log.Warn("dropping watcher error", zap.Error(err))
			}
		case <-w.closeCh:
			return
		}
	}
}

// quiet removes and returns, sorted, the files whose quiet time has passed.
func quiet(pending map[string]time.Time, now time.Time) []string {
	var due []string
	for name, at := range pending {
		if !at.After(now) {
			due = append(due, name)
			delete(pending, name)
		}
	}
	sort.Strings(due)
	return due
}

// Reloadable reports whether path names a file the frame loop can reload.
func Reloadable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".lua":
		return true
	}
	return false
}

// SamePath reports whether a and b name the same file once made absolute.
func SamePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return aa == bb
}
