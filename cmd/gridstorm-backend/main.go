// Package main runs the reference change backend: it serves a table over
// HTTP, validates incoming cell changes and applies the accepted ones.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dshills/gridstorm/internal/app"
	"github.com/dshills/gridstorm/internal/calendar"
	"github.com/dshills/gridstorm/internal/column"
	"github.com/dshills/gridstorm/internal/config"
	"github.com/dshills/gridstorm/internal/server"
	"github.com/dshills/gridstorm/internal/validate"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "gridstorm.toml", "Path to configuration file")
	addr := flag.String("addr", "", "Listen address (default from configuration)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if flag.NArg() > 0 {
		cfg.Table.Path = flag.Arg(0)
	}

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log := logrus.NewEntry(l).WithField("component", "server")

	tbl, err := app.LoadTable(cfg.Table.Path, cfg.Table.ID)
	if err != nil {
		log.WithError(err).Error("loading table")
		return 1
	}
	var dict *column.Dictionary
	if p := cfg.Dictionary.Path; p != "" {
		if dict, err = column.Load(p); err != nil {
			log.WithError(err).Error("loading dictionary")
			return 1
		}
	}

	srv := server.New(tbl, dict,
		server.WithLogger(log),
		server.WithKey(cfg.Backend.Key),
		server.WithDateFormat(calendar.ParseFormat(cfg.UI.DateFormat)),
		server.WithValidator(validate.NewBuiltin(validate.WithBlockedDomains(cfg.Validator.BlockedDomains...)).Func()),
	)

	if cfg.Dictionary.Watch && cfg.Dictionary.Path != "" {
		w, err := config.WatchDictionary(cfg.Dictionary.Path, func(d *column.Dictionary, err error) {
			if err == nil {
				srv.SetDictionary(d)
			}
		}, config.WithWatchLogger(log.WithField("component", "watcher")))
		if err != nil {
			log.WithError(err).Error("watching dictionary")
			return 1
		}
		defer w.Close()
	}

	hs := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("shutdown")
		}
	}()

	log.WithFields(logrus.Fields{
		"addr":  cfg.Server.Addr,
		"table": cfg.Table.Path,
		"rows":  tbl.NumBody(),
	}).Info("listening")
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("serving")
		return 1
	}
	return 0
}
