package am

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/resgen/errors"
	"github.com/teranos/resgen/logger"
)

// ReloadCallback is called with the freshly loaded config after a watched
// file changed
type ReloadCallback func(*Config) error

// Watcher watches the config file and the manifests it names, reloads the
// configuration on change and triggers callbacks.
//
// Parent directories are watched rather than the files themselves so that
// editors which save by renaming a temporary file are still seen.
type Watcher struct {
	load    func() (*Loaded, error)
	files   map[string]bool
	watcher *fsnotify.Watcher
	logger  *zap.SugaredLogger

	mu             sync.Mutex
	callbacks      []ReloadCallback
	debounceTimer  *time.Timer
	debouncePeriod time.Duration

	// held for a whole reload; a change during a slow callback waits its turn
	reloadMu sync.Mutex
}

// NewWatcher creates a watcher for paths. By default the configuration is
// reloaded as seen from dir.
func NewWatcher(dir string, paths ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	w := &Watcher{
		load:           func() (*Loaded, error) { return LoadFrom(dir) },
		files:          make(map[string]bool),
		watcher:        fw,
		logger:         logger.ComponentLogger("am.watcher"),
		debouncePeriod: 200 * time.Millisecond, // Debounce rapid file changes
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to resolve %s", p)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if err := fw.Add(d); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", d)
		}
	}
	return w, nil
}

// SetDebounce changes the quiet period after the last change before
// callbacks run
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debouncePeriod = d
}

// SetLoader replaces how the configuration is reloaded
func (w *Watcher) SetLoader(load func() (*Loaded, error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.load = load
}

// OnReload registers a callback to be called when config is reloaded
func (w *Watcher) OnReload(callback ReloadCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Run monitors file system events until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debugw("watched file changed",
				logger.FieldFile, event.Name,
				logger.FieldOperation, event.Op.String())
			w.scheduleReload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("watcher error", logger.FieldError, err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	if IsBackupFile(event.Name) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

// scheduleReload debounces rapid file changes and triggers reload
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, func() {
		if err := w.reload(); err != nil {
			w.logger.Errorw("reload failed", logger.FieldError, err)
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
}

// reload reloads the configuration and calls all callbacks. Reloads never
// overlap.
func (w *Watcher) reload() error {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()

	w.mu.Lock()
	load := w.load
	w.mu.Unlock()

	loaded, err := load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	w.mu.Lock()
	callbacks := make([]ReloadCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	for _, callback := range callbacks {
		if err := callback(loaded.Config); err != nil {
			// Continue calling other callbacks even if one fails
			w.logger.Warnw("reload callback failed", logger.FieldError, err)
		}
	}
	return nil
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
