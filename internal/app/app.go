// Package app wires the grid editor together and runs its event loop.
package app

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dshills/gridstorm/internal/backend"
	"github.com/dshills/gridstorm/internal/calendar"
	"github.com/dshills/gridstorm/internal/column"
	"github.com/dshills/gridstorm/internal/config"
	"github.com/dshills/gridstorm/internal/dialog"
	"github.com/dshills/gridstorm/internal/grid"
	"github.com/dshills/gridstorm/internal/renderer"
	screen "github.com/dshills/gridstorm/internal/renderer/backend"
	"github.com/dshills/gridstorm/internal/table"
	"github.com/dshills/gridstorm/internal/validate"
)

// Application errors.
var (
	// ErrQuit signals that the application should exit normally.
	ErrQuit = errors.New("quit requested")

	// ErrAlreadyRunning indicates the application is already running.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrNoBackend indicates Run was called without a terminal backend.
	ErrNoBackend = errors.New("no terminal backend")

	// ErrNoTable indicates that no table document was configured.
	ErrNoTable = errors.New("no table configured")

	// ErrNoFilePath indicates a save without a target file.
	ErrNoFilePath = errors.New("table has no file path")
)

// InitError reports which component failed to start.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// FileError is a failed load or save of the table document.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Application is the terminal grid editor.
type Application struct {
	mu sync.Mutex

	cfg config.Config
	log *logrus.Entry
	now func() time.Time

	grid     *grid.Controller
	dialogs  *dialog.Stack
	picker   *calendar.Picker
	client   *backend.Client
	lua      *validate.Lua
	watcher  *config.DictionaryWatcher
	backend  screen.Backend
	renderer *renderer.Renderer

	// saved is the HTML of the table as last loaded or saved.
	saved  string
	status string
	quit   bool

	running   atomic.Bool
	done      chan struct{}
	closing   sync.Once
	releasing sync.Once
}

// Option configures an Application.
type Option func(*Application)

// WithLogger sets the logger.
func WithLogger(entry *logrus.Entry) Option {
	return func(a *Application) {
		a.log = entry
	}
}

// WithClock sets the time source of the date picker.
func WithClock(now func() time.Time) Option {
	return func(a *Application) {
		a.now = now
	}
}

// New creates the application from cfg. The table, dictionary,
// validator and change transport are set up here; the terminal is not
// touched until Run.
func New(cfg config.Config, opts ...Option) (*Application, error) {
	l := logrus.New()
	l.SetOutput(io.Discard)
	a := &Application{
		cfg:     cfg,
		log:     logrus.NewEntry(l),
		now:     time.Now,
		dialogs: dialog.NewStack(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.bootstrap(); err != nil {
		a.release()
		return nil, err
	}
	return a, nil
}

// bootstrap initializes all components in dependency order.
func (a *Application) bootstrap() error {
	// 1. Table document
	tbl, err := LoadTable(a.cfg.Table.Path, a.cfg.Table.ID)
	if err != nil {
		return &InitError{Component: "table", Err: err}
	}

	// 2. Column dictionary
	dict := column.NewDictionary()
	if p := a.cfg.Dictionary.Path; p != "" {
		if dict, err = column.Load(p); err != nil {
			return &InitError{Component: "dictionary", Err: err}
		}
	}

	// 3. Validator
	builtin := validate.NewBuiltin(validate.WithBlockedDomains(a.cfg.Validator.BlockedDomains...)).Func()
	check := builtin
	if p := a.cfg.Validator.Script; p != "" {
		a.lua, err = validate.NewLua(p,
			validate.WithFallback(builtin),
			validate.WithLuaLogger(a.log.WithField("component", "lua")),
		)
		if err != nil {
			return &InitError{Component: "validator", Err: err}
		}
		check = a.lua.Func()
	}

	// 4. Grid controller and its collaborators
	a.picker = calendar.NewPicker(calendar.ParseFormat(a.cfg.UI.DateFormat), calendar.WithClock(a.now))
	a.grid = grid.New(grid.WithLogger(a.log.WithField("component", "grid")))
	if err := a.grid.Bind(tbl); err != nil {
		return &InitError{Component: "grid", Err: err}
	}
	a.grid.SetDictionary(dict)
	a.grid.SetValidator(check)
	a.grid.SetErrorCallBack(a.dialogs.Alert)
	a.grid.SetConfirmCallBack(a.dialogs.Confirm)
	a.grid.SetCalendar(a.picker.Open)

	// 5. Change transport; without a URL commits apply locally
	if u := a.cfg.Backend.URL; u != "" {
		b := a.cfg.Backend
		a.client = backend.NewClient(u,
			backend.WithTimeout(b.Timeout.Duration),
			backend.WithKey(b.Key),
			backend.WithCSRF(b.CSRF),
			backend.WithRouter(b.Router),
			backend.WithNoQueue(b.NoQueue),
			backend.WithLogger(a.log.WithField("component", "backend")),
		)
		a.grid.SetChangeCallBack(a.client.Change)
	}

	// 6. Dictionary live reload
	if a.cfg.Dictionary.Watch && a.cfg.Dictionary.Path != "" {
		a.watcher, err = config.WatchDictionary(a.cfg.Dictionary.Path, a.reloadDictionary,
			config.WithWatchLogger(a.log.WithField("component", "watcher")))
		if err != nil {
			return &InitError{Component: "dictionary watcher", Err: err}
		}
	}

	a.saved, err = tableHTML(tbl)
	if err != nil {
		return &InitError{Component: "table", Err: err}
	}
	a.log.WithFields(logrus.Fields{
		"table":   a.cfg.Table.Path,
		"rows":    tbl.NumBody(),
		"columns": dict.Len(),
		"backend": a.cfg.Backend.URL,
	}).Info("grid ready")
	return nil
}

// reloadDictionary runs on the watcher goroutine and hands the new
// dictionary to the loop.
func (a *Application) reloadDictionary(dict *column.Dictionary, err error) {
	a.grid.Queue().Post(func() {
		if err != nil {
			a.status = "dictionary reload failed"
			return
		}
		a.grid.SetDictionary(dict)
		a.status = "dictionary reloaded"
	})
}

// Grid returns the grid controller.
func (a *Application) Grid() *grid.Controller {
	return a.grid
}

// SetBackend sets the terminal backend. Must be called before Run.
func (a *Application) SetBackend(b screen.Backend) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running.Load() {
		return ErrAlreadyRunning
	}
	a.backend = b
	return nil
}

// Run initializes the terminal and runs the event loop until the user
// quits, returning ErrQuit, or the backend closes.
func (a *Application) Run() error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.running.Store(false)

	a.mu.Lock()
	b := a.backend
	a.mu.Unlock()
	if b == nil {
		return ErrNoBackend
	}

	defer a.release()
	if err := b.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer b.Shutdown()

	opts := renderer.DefaultOptions()
	opts.MaxColWidth = a.cfg.UI.MaxColWidth
	a.renderer = renderer.New(b, opts)

	return a.eventLoop()
}

// Shutdown stops the loop. Resources are released when Run returns, or
// here when the loop is not running. It is safe to call more than once
// and from any goroutine.
func (a *Application) Shutdown() {
	a.closing.Do(func() {
		close(a.done)
		a.mu.Lock()
		b := a.backend
		a.mu.Unlock()
		if a.running.Load() {
			if b != nil {
				b.Interrupt()
			}
			return
		}
		a.release()
	})
}

// release closes what bootstrap opened.
func (a *Application) release() {
	a.releasing.Do(func() {
		if a.watcher != nil {
			if err := a.watcher.Close(); err != nil {
				a.log.WithError(err).Warn("closing dictionary watcher")
			}
		}
		if a.lua != nil {
			a.lua.Close()
		}
	})
}

// Modified reports whether the table differs from the saved document.
func (a *Application) Modified() bool {
	html, err := tableHTML(a.grid.Table())
	return err != nil || html != a.saved
}

// Table returns the edited table.
func (a *Application) Table() *table.Table {
	return a.grid.Table()
}
