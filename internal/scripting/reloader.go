package scripting

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultReloadDelay is the quiet period after the last file event in a
// bundle before it is reloaded. Editors often write a file several times
// in quick succession; the delay coalesces those into one reload.
const DefaultReloadDelay = 200 * time.Millisecond

// Reloader watches a bundle directory and invokes a callback once per
// changed bundle after writes settle.
type Reloader struct {
	dir      string
	delay    time.Duration
	onChange func(bundleName string)
	logger   *zap.Logger

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool

	closeCh chan struct{}
	wg      sync.WaitGroup
}

// NewReloader starts watching dir. onChange runs on a timer goroutine,
// once per bundle per quiet window.
func NewReloader(dir string, delay time.Duration, onChange func(string), logger *zap.Logger) (*Reloader, error) {
	if delay <= 0 {
		delay = DefaultReloadDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	// Watch existing bundle directories; fsnotify is not recursive.
	for _, bundle := range listBundleDirs(dir) {
		if err := w.Add(filepath.Join(dir, bundle)); err != nil {
			logger.Warn("cannot watch bundle",
				zap.String("bundle", bundle),
				zap.Error(err))
		}
	}

	r := &Reloader{
		dir:      dir,
		delay:    delay,
		onChange: onChange,
		logger:   logger,
		watcher:  w,
		pending:  make(map[string]*time.Timer),
		closeCh:  make(chan struct{}),
	}
	r.wg.Add(1)
	go r.loop()
	return r, nil
}

// Close stops watching and cancels pending reloads.
func (r *Reloader) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	for bundle, timer := range r.pending {
		timer.Stop()
		delete(r.pending, bundle)
	}
	close(r.closeCh)
	r.mu.Unlock()

	err := r.watcher.Close()
	r.wg.Wait()
	return err
}

func (r *Reloader) loop() {
	defer r.wg.Done()
	for {
		select {
		case <-r.closeCh:
			return
		case ev, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			r.handleEvent(ev)
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// handleEvent schedules a debounced reload for the bundle the event path
// belongs to. Events on new bundle directories also start watching them.
func (r *Reloader) handleEvent(ev fsnotify.Event) {
	bundle := r.bundleOf(ev.Name)
	if bundle == "" {
		return
	}
	if ev.Op.Has(fsnotify.Create) && ev.Name == filepath.Join(r.dir, bundle) {
		if err := r.watcher.Add(ev.Name); err != nil {
			r.logger.Warn("cannot watch new bundle",
				zap.String("bundle", bundle),
				zap.Error(err))
		}
	}
	r.schedule(bundle)
}

// schedule arms or resets the per-bundle debounce timer.
func (r *Reloader) schedule(bundle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if timer, ok := r.pending[bundle]; ok {
		timer.Reset(r.delay)
		return
	}
	r.pending[bundle] = time.AfterFunc(r.delay, func() {
		r.fire(bundle)
	})
}

func (r *Reloader) fire(bundle string) {
	r.mu.Lock()
	if _, ok := r.pending[bundle]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.pending, bundle)
	closed := r.closed
	r.mu.Unlock()

	if closed || r.onChange == nil {
		return
	}
	r.onChange(bundle)
}

// bundleOf maps an event path to the bundle directory name under r.dir.
func (r *Reloader) bundleOf(path string) string {
	rel, err := filepath.Rel(r.dir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	parts := strings.Split(rel, string(filepath.Separator))
	return parts[0]
}

// PendingCount returns the number of bundles with a reload scheduled.
func (r *Reloader) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

func listBundleDirs(dir string) []string {
	entries, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		return nil
	}
	var out []string
	for _, p := range entries {
		if isDir(p) {
			out = append(out, filepath.Base(p))
		}
	}
	return out
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
