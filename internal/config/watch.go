package config

import (
	"errors"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/dshills/gridstorm/internal/column"
)

// DefaultDebounce collapses the bursts of events editors produce on save.
const DefaultDebounce = 100 * time.Millisecond

// ErrWatcherClosed is returned when using a closed watcher.
var ErrWatcherClosed = errors.New("watcher closed")

// ReloadFunc receives a reloaded dictionary, or the error loading it.
// It runs on the watcher goroutine.
type ReloadFunc func(dict *column.Dictionary, err error)

// DictionaryWatcher reloads a dictionary file when it changes.
//
// The parent directory is watched rather than the file, so that editors
// replacing the file through a rename are seen.
type DictionaryWatcher struct {
	mu sync.Mutex

	watcher  *fsnotify.Watcher
	path     string
	onReload ReloadFunc
	debounce time.Duration
	log      *logrus.Entry
	timer    *time.Timer

	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// WatcherOption configures a DictionaryWatcher.
type WatcherOption func(*DictionaryWatcher)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *DictionaryWatcher) {
		w.debounce = d
	}
}

// WithWatchLogger sets the logger.
func WithWatchLogger(entry *logrus.Entry) WatcherOption {
	return func(w *DictionaryWatcher) {
		w.log = entry
	}
}

// WatchDictionary starts watching the dictionary at path.
func WatchDictionary(path string, onReload ReloadFunc, opts ...WatcherOption) (*DictionaryWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)
	w := &DictionaryWatcher{
		watcher:  fsw,
		path:     abs,
		onReload: onReload,
		debounce: DefaultDebounce,
		log:      logrus.NewEntry(discard),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.closedWg.Add(1)
	go w.processLoop()
	return w, nil
}

// Path returns the absolute path of the watched file.
func (w *DictionaryWatcher) Path() string {
	return w.path
}

// Close stops the watcher. Reloads still waiting for their debounce are
// dropped.
func (w *DictionaryWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	w.closed = true
	close(w.closeCh)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	w.closedWg.Wait()
	return w.watcher.Close()
}

func (w *DictionaryWatcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("dictionary watcher error")
		}
	}
}

func (w *DictionaryWatcher) handle(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *DictionaryWatcher) reload() {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}

	dict, err := column.Load(w.path)
	if err != nil {
		w.log.WithError(err).WithField("path", w.path).Warn("dictionary reload failed")
	} else {
		w.log.WithField("path", w.path).WithField("columns", dict.Len()).Info("dictionary reloaded")
	}
	w.onReload(dict, err)
}
