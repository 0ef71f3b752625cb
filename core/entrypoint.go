package core

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/encodeous/linkstate/perf"
	"github.com/encodeous/linkstate/state"
	"github.com/encodeous/tint"
	slogmulti "github.com/samber/slog-multi"
)

// RunOptions controls a simulation run started from the command line
type RunOptions struct {
	Ticks       uint64
	Auto        bool
	Realtime    bool
	Level       slog.Level
	LogPath     string
	MetricsAddr string
}

// NewLogger builds the console logger, and if logPath is set, fans out to a log file as well.
func NewLogger(level slog.Level, prefix string, logPath string) (*slog.Logger, error) {
	handlers := make([]slog.Handler, 0)
	handlers = append(handlers,
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:        level,
			AddSource:    false,
			CustomPrefix: prefix,
			ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
				if attr.Key == "time" {
					return slog.Attr{}
				}
				return attr
			},
		}))

	if logPath != "" {
		err := os.MkdirAll(path.Dir(logPath), 0700)
		if err != nil {
			return nil, err
		}
		f, err := os.OpenFile(logPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	}

	return slog.New(slogmulti.Fanout(handlers...)), nil
}

// Start builds a simulation from cfg and runs it until the tick limit is reached or a shutdown signal arrives.
// Without Realtime, ticks run back to back on the calling goroutine.
func Start(cfg state.SimCfg, opts RunOptions) (*Simulation, error) {
	logger, err := NewLogger(opts.Level, "linkstate", opts.LogPath)
	if err != nil {
		return nil, err
	}
	sim, err := NewSimulation(cfg, logger)
	if err != nil {
		return nil, err
	}
	sim.Auto = opts.Auto

	if opts.MetricsAddr != "" {
		go func() {
			err := perf.Serve(opts.MetricsAddr)
			if err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	logger.Info("simulation initialized", "routers", len(cfg.Routers), "links", len(cfg.Links), "seed", cfg.Seed, "auto", opts.Auto)

	if !opts.Realtime {
		if opts.Ticks == 0 {
			return nil, fmt.Errorf("a tick limit is required unless running in real time")
		}
		for range opts.Ticks {
			sim.AdvanceTick()
		}
		sim.Stop()
		return sim, nil
	}

	logger.Info("running in real time. To gracefully exit, send SIGINT or Ctrl+C.")
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(c)
	go func() {
		select {
		case <-c:
			sim.Cancel(errors.New("received shutdown signal"))
		case <-sim.Context.Done():
		}
	}()

	err = sim.Run(opts.Ticks, state.TickDelay)
	if err != nil {
		return nil, err
	}
	return sim, nil
}
