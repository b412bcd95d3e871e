// Package main is the entry point for the gridstorm table editor.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/dshills/gridstorm/internal/app"
	"github.com/dshills/gridstorm/internal/config"
	"github.com/dshills/gridstorm/internal/renderer/backend"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// flags holds the command line. Set values override the configuration.
type flags struct {
	configPath string
	table      string
	id         string
	dictionary string
	backendURL string
	logLevel   string
}

func main() {
	os.Exit(run())
}

func run() int {
	f := parseFlags()

	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	f.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	log, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open log: %v\n", err)
		return 1
	}
	defer closeLog()

	application, err := app.New(cfg, app.WithLogger(log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	term, err := backend.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := application.SetBackend(term); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to set backend: %v\n", err)
		return 1
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		application.Shutdown()
	}()

	if err := application.Run(); err != nil && !errors.Is(err, app.ErrQuit) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// newLogger logs to the configured file, or nowhere when none is set,
// since the terminal belongs to the grid.
func newLogger(c config.LogConfig) (*logrus.Entry, func(), error) {
	level, err := config.ParseLevel(c.Level)
	if err != nil {
		return nil, nil, err
	}
	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})

	if c.File == "" {
		l.SetOutput(io.Discard)
		return logrus.NewEntry(l), func() {}, nil
	}
	file, err := os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	l.SetOutput(file)
	return logrus.NewEntry(l), func() { file.Close() }, nil
}

func parseFlags() flags {
	var f flags
	var showVersion bool

	flag.StringVar(&f.configPath, "config", "gridstorm.toml", "Path to configuration file")
	flag.StringVar(&f.configPath, "c", "gridstorm.toml", "Path to configuration file (shorthand)")
	flag.StringVar(&f.table, "table", "", "HTML file holding the table")
	flag.StringVar(&f.id, "id", "", "Id of the table element (default: first table)")
	flag.StringVar(&f.dictionary, "dict", "", "Column dictionary file")
	flag.StringVar(&f.backendURL, "backend", "", "URL receiving cell changes")
	flag.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "gridstorm - edit HTML tables in the terminal\n\n")
		fmt.Fprintf(os.Stderr, "Usage: gridstorm [options] [table.html]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  gridstorm orders.html                         Edit the first table\n")
		fmt.Fprintf(os.Stderr, "  gridstorm -id orders -dict cols.toml o.html    Edit with column rules\n")
		fmt.Fprintf(os.Stderr, "  gridstorm -backend http://host/change o.html   Send changes to a backend\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("gridstorm %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}
	if f.table == "" && flag.NArg() > 0 {
		f.table = flag.Arg(0)
	}
	return f
}

// apply overrides cfg with the flags that were given.
func (f flags) apply(cfg *config.Config) {
	if f.table != "" {
		cfg.Table.Path = f.table
	}
	if f.id != "" {
		cfg.Table.ID = f.id
	}
	if f.dictionary != "" {
		cfg.Dictionary.Path = f.dictionary
	}
	if f.backendURL != "" {
		cfg.Backend.URL = f.backendURL
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
}
