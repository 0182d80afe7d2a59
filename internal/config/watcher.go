package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const settingsDebounce = 250 * time.Millisecond

// Watcher watches the settings file and reloads the store when it changes
// on disk (e.g. edited by hand or by another window's save).
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	store     *Store
	changed   chan struct{}
	done      chan struct{}
	log       *zap.Logger

	debounceMu sync.Mutex
	debounce   *time.Timer
}

// NewWatcher creates a watcher bound to the given store.
func NewWatcher(store *Store, log *zap.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsWatcher: fsWatcher,
		store:     store,
		changed:   make(chan struct{}, 1),
		done:      make(chan struct{}),
		log:       log,
	}, nil
}

// Changed returns a channel that receives a tick after the settings file
// changed and the store was reloaded.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changed
}

// Start begins watching. The directory is watched rather than the file so
// atomic save-by-rename (editors, our own SaveYAML) keeps being seen.
func (w *Watcher) Start() error {
	path, err := GlobalSettingsFile()
	if err != nil {
		return err
	}
	if err := w.fsWatcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	go w.loop(filepath.Base(path))
	return nil
}

// Stop stops watching.
func (w *Watcher) Stop() {
	close(w.done)
	w.fsWatcher.Close()
}

func (w *Watcher) loop(fileName string) {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != fileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("settings watcher error", zap.Error(err))
		}
	}
}

// scheduleReload debounces bursts of fs events into a single reload.
func (w *Watcher) scheduleReload() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(settingsDebounce, func() {
		settings, err := LoadSettings()
		if err != nil {
			w.log.Warn("reload settings", zap.Error(err))
			return
		}
		w.store.Replace(settings)
		select {
		case w.changed <- struct{}{}:
		default:
		}
	})
}
