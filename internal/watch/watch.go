// Package watch re-runs a callback when files under the watched paths change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/goliatone/go-sitelint/internal/logging"
	"github.com/goliatone/go-sitelint/pkg/interfaces"
)

// DefaultDebounce is the quiet period before changes are delivered.
const DefaultDebounce = 300 * time.Millisecond

var ErrNoPaths = errors.New("watch: no paths to watch")

// Func receives the changed paths, sorted and deduplicated.
type Func func(ctx context.Context, changed []string) error

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger provider.
func WithLogger(provider interfaces.LoggerProvider) Option {
	return func(w *Watcher) {
		w.logger = logging.WatchLogger(provider)
	}
}

// Watcher tracks directories recursively and single files through their
// parent directory, so editors that replace files on save keep working.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	logger   interfaces.Logger

	dirs  []string
	files map[string]struct{}

	closeOnce sync.Once
}

// New registers paths with the OS watcher. Missing paths are skipped with a
// warning; at least one path must exist.
func New(paths []string, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		debounce: DefaultDebounce,
		logger:   logging.NoOp(),
		files:    map[string]struct{}{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}

	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	w.fs = notify

	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if err := w.add(filepath.Clean(p)); err != nil {
			_ = notify.Close()
			return nil, err
		}
	}
	if len(w.dirs) == 0 && len(w.files) == 0 {
		_ = notify.Close()
		return nil, ErrNoPaths
	}
	return w, nil
}

func (w *Watcher) add(p string) error {
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		w.logger.Warn("watch.path.missing", "path", p)
		return nil
	}
	if err != nil {
		return fmt.Errorf("watch: stat %s: %w", p, err)
	}
	if !info.IsDir() {
		if err := w.fs.Add(filepath.Dir(p)); err != nil {
			return fmt.Errorf("watch: add %s: %w", p, err)
		}
		w.files[p] = struct{}{}
		return nil
	}
	w.dirs = append(w.dirs, p)
	return w.addTree(p)
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") && d.Name() != ".github" {
			return filepath.SkipDir
		}
		if err := w.fs.Add(p); err != nil {
			return fmt.Errorf("watch: add %s: %w", p, err)
		}
		return nil
	})
}

// Run blocks until ctx is done, calling fn once per burst of changes. Calls
// never overlap. Errors from fn are logged and watching continues.
func (w *Watcher) Run(ctx context.Context, fn Func) error {
	defer w.Close()

	var (
		pending = map[string]struct{}{}
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn("watch.directory.add_failed", "path", event.Name, "error", err)
					}
				}
			}
			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			changed := drain(pending)
			w.logger.Debug("watch.change.detected", "count", len(changed))
			if err := fn(ctx, changed); err != nil {
				w.logger.Error("watch.callback.failed", "error", err)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch.watcher.error", "error", err)
		}
	}
}

// Close releases the OS watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	if _, ok := w.files[name]; ok {
		return true
	}
	for _, dir := range w.dirs {
		if name == dir || strings.HasPrefix(name, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func drain(pending map[string]struct{}) []string {
	out := make([]string, 0, len(pending))
	for p := range pending {
		out = append(out, p)
		delete(pending, p)
	}
	sort.Strings(out)
	return out
}
