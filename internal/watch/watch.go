// Package watch rebuilds the site when inventory folders or template pages
// change, with a periodic rescan as a fallback for missed events.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/lotbuilder/internal/logfields"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// BuildFunc runs one complete build.
type BuildFunc func(ctx context.Context) error

// Options configures a Watcher.
type Options struct {
	// Dirs are watched recursively; any change below them triggers a build.
	Dirs []string
	// Files are watched through their parent directory; only events for
	// these exact paths trigger a build.
	Files          []string
	Debounce       time.Duration
	RescanInterval time.Duration
}

// Watcher serializes rebuilds triggered by filesystem events and the
// rescan timer. Builds never overlap.
type Watcher struct {
	opts     Options
	build    BuildFunc
	dirs     []string
	files    map[string]bool
	requests chan struct{}
	ready    chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a watcher.
func New(opts Options, build BuildFunc) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	w := &Watcher{
		opts:     opts,
		build:    build,
		files:    map[string]bool{},
		requests: make(chan struct{}, 1),
		ready:    make(chan struct{}),
	}
	for _, d := range opts.Dirs {
		w.dirs = append(w.dirs, absClean(d))
	}
	for _, f := range opts.Files {
		w.files[absClean(f)] = true
	}
	return w
}

// Ready is closed once the filesystem watches are in place.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Trigger requests a rebuild after the debounce delay. Calls within the
// delay collapse into one request.
func (w *Watcher) Trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, w.request)
}

func (w *Watcher) request() {
	select {
	case w.requests <- struct{}{}:
	default:
	}
}

// Run watches until ctx is canceled. It waits for an in-flight build to
// finish before returning.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	for _, d := range w.dirs {
		if err := addDirsRecursive(fsw, d); err != nil {
			return err
		}
	}
	parents := map[string]bool{}
	for f := range w.files {
		parents[filepath.Dir(f)] = true
	}
	for p := range parents {
		if err := fsw.Add(p); err != nil {
			slog.Warn("watch add failed", logfields.Path(p), logfields.Error(err))
		}
	}

	if w.opts.RescanInterval > 0 {
		sched, err := w.startRescan(w.opts.RescanInterval)
		if err != nil {
			return err
		}
		defer func() { _ = sched.Shutdown() }()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.worker(ctx)
	}()
	close(w.ready)

	slog.Info("Watching for changes",
		slog.Any("dirs", w.dirs),
		logfields.Count(len(w.files)),
		slog.Duration("debounce", w.opts.Debounce))

	err = w.loop(ctx, fsw)
	w.stopTimer()
	wg.Wait()
	return err
}

func (w *Watcher) startRescan(interval time.Duration) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			slog.Debug("Periodic rescan")
			w.request()
		}),
		gocron.WithName("lotbuilder-rescan"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create rescan job: %w", err)
	}
	s.Start()
	return s, nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event) {
	name := absClean(ev.Name)
	if shouldIgnoreEvent(name) || !w.relevant(name) {
		return
	}
	if ev.Op.Has(fsnotify.Create) {
		if fi, err := os.Stat(name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(fsw, name)
		}
	}
	slog.Debug("File change detected", logfields.Path(name), slog.String("op", ev.Op.String()))
	w.Trigger()
}

func (w *Watcher) relevant(name string) bool {
	if w.files[name] {
		return true
	}
	for _, d := range w.dirs {
		if name == d || strings.HasPrefix(name, d+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.requests:
			slog.Info("Change detected; rebuilding site")
			if err := w.build(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Warn("rebuild failed", logfields.Error(err))
			}
		}
	}
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if err := w.Add(path); err != nil {
				slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent returns true for hidden files and editor or OS litter.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}

func absClean(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
