package core

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"reflect"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/encodeous/linkstate/perf"
	"github.com/encodeous/linkstate/state"
)

// Simulation drives a Network. Everything that touches the network goes through the main loop, so the
// connection table is never mutated in the middle of a tick.
type Simulation struct {
	*Network
	Cfg   state.SimCfg
	Rng   *rand.Rand
	Ticks uint64
	// Auto enables random link cuts and creations between ticks
	Auto bool

	Context         context.Context
	Cancel          context.CancelCauseFunc
	DispatchChannel chan func(*Simulation) error
	Log             *slog.Logger
	Started         atomic.Bool
	Stopping        atomic.Bool
}

func NewSimulation(cfg state.SimCfg, log *slog.Logger) (*Simulation, error) {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	network, err := NewNetwork(&cfg, log, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to build network: %w", err)
	}
	ctx, cancel := context.WithCancelCause(context.Background())
	return &Simulation{
		Network:         network,
		Cfg:             cfg,
		Rng:             rng,
		Context:         ctx,
		Cancel:          cancel,
		DispatchChannel: make(chan func(*Simulation) error, 128),
		Log:             log,
	}, nil
}

// AdvanceTick applies the random topology mutations (in auto mode) and then ticks every router once.
func (s *Simulation) AdvanceTick() {
	if s.Auto {
		s.mutate()
	}
	start := time.Now()
	s.Network.Tick()
	s.Ticks++
	perf.TickLatency.Add(float64(time.Since(start).Microseconds()))
}

func (s *Simulation) mutate() {
	if s.Rng.Float64() < s.Cfg.CutChance {
		if id, edge, ok := s.CutRandomLink(s.Rng); ok {
			s.Log.Info("randomly cut link", "tick", s.Ticks, "router", id, "edge", edge)
		}
	}
	if s.Rng.Float64() < s.Cfg.CreateChance {
		if id, edge, ok := s.CreateRandomLink(s.Rng); ok {
			s.Log.Info("randomly created link", "tick", s.Ticks, "router", id, "edge", edge)
		}
	}
}

// Dispatch Dispatches the function to run on the main loop without waiting for it to complete
func (s *Simulation) Dispatch(fun func(*Simulation) error) {
	if fun == nil {
		return
	}
	select {
	case s.DispatchChannel <- fun:
	case <-s.Context.Done():
	}
}

// DispatchWait Dispatches the function to run on the main loop and wait for it to complete
func (s *Simulation) DispatchWait(fun func(*Simulation) (any, error)) (any, error) {
	ret := make(chan state.Pair[any, error], 1)
	s.Dispatch(func(s *Simulation) error {
		res, err := fun(s)
		ret <- state.Pair[any, error]{V1: res, V2: err}
		return err
	})
	select {
	case res := <-ret:
		return res.V1, res.V2
	case <-s.Context.Done():
		return nil, s.Context.Err()
	}
}

func (s *Simulation) ScheduleTask(fun func(*Simulation) error, delay time.Duration) {
	time.AfterFunc(delay, func() {
		if s.Context.Err() != nil {
			return
		}
		s.Dispatch(fun)
	})
}

func (s *Simulation) repeatedTask(fun func(*Simulation) error, delay time.Duration) {
	for s.Context.Err() == nil {
		s.Dispatch(fun)
		select {
		case <-time.After(delay):
		case <-s.Context.Done():
		}
	}
}

func (s *Simulation) RepeatTask(fun func(*Simulation) error, delay time.Duration) {
	go s.repeatedTask(fun, delay)
}

// Run ticks the simulation every delay until maxTicks ticks have elapsed (0 means forever) or the context is cancelled.
func (s *Simulation) Run(maxTicks uint64, delay time.Duration) error {
	s.RepeatTask(func(s *Simulation) error {
		if maxTicks != 0 && s.Ticks >= maxTicks {
			s.Cancel(fmt.Errorf("reached %d ticks", maxTicks))
			return nil
		}
		s.AdvanceTick()
		return nil
	}, delay)
	return s.MainLoop()
}

// MainLoop executes dispatched functions one at a time until the simulation is cancelled.
func (s *Simulation) MainLoop() error {
	s.Log.Debug("started main loop")
	s.Started.Store(true)
	for {
		select {
		case fun := <-s.DispatchChannel:
			start := time.Now()
			err := fun(s)
			if err != nil {
				s.Log.Error("error occurred during dispatch: ", "error", err)
				s.Cancel(err)
			}
			elapsed := time.Since(start)
			if elapsed > time.Millisecond*50 {
				s.Log.Warn("dispatch took a long time!", "fun", runtime.FuncForPC(reflect.ValueOf(fun).Pointer()).Name(), "elapsed", elapsed, "len", len(s.DispatchChannel))
			}
		case <-s.Context.Done():
			goto endLoop
		}
	}
endLoop:
	s.Log.Info("stopped main loop", "reason", context.Cause(s.Context).Error(), "ticks", s.Ticks)
	s.Stop()
	return nil
}

func (s *Simulation) Stop() {
	if s.Stopping.Swap(true) {
		return // don't stop twice
	}
	s.Cancel(context.Canceled)
	s.Log.Info("stopped")
}
