//go:build integration

package integration

import (
	"log/slog"
	"time"

	"github.com/encodeous/linkstate/core"
	"github.com/encodeous/linkstate/state"
)

type Signal chan bool

func NewSignal() Signal {
	return make(chan bool)
}
func (s Signal) Trigger() {
	select {
	case <-s:
	default:
		close(s)
	}
}
func (s Signal) Triggered() bool {
	select {
	case <-s:
		return true
	default:
		return false
	}
}
func (s Signal) Wait() {
	<-s
}

// VirtualHarness runs a simulation in real time on its own main loop, the way the CLI does with --realtime.
type VirtualHarness struct {
	Cfg       state.SimCfg
	TickDelay time.Duration
	Auto      bool
	Sim       *core.Simulation
	done      chan error
}

func NewVirtualHarness(cfg state.SimCfg) *VirtualHarness {
	return &VirtualHarness{
		Cfg:       cfg,
		TickDelay: time.Millisecond,
	}
}

// Start launches the main loop. Errors from building or running the simulation are delivered on the returned channel.
func (vh *VirtualHarness) Start() <-chan error {
	errs := make(chan error, 1)
	vh.done = make(chan error, 1)
	log, err := core.NewLogger(slog.LevelWarn, "integration", "")
	if err != nil {
		errs <- err
		return errs
	}
	vh.Sim, err = core.NewSimulation(vh.Cfg, log)
	if err != nil {
		errs <- err
		return errs
	}
	vh.Sim.Auto = vh.Auto
	go func() {
		err := vh.Sim.Run(0, vh.TickDelay)
		vh.done <- err
		if err != nil {
			errs <- err
		}
	}()
	return errs
}

// Query runs fun on the main loop between ticks.
func (vh *VirtualHarness) Query(fun func(s *core.Simulation) (any, error)) (any, error) {
	return vh.Sim.DispatchWait(fun)
}

// WaitFor polls cond on the main loop until it holds, triggering sig.
func (vh *VirtualHarness) WaitFor(sig Signal, cond func(s *core.Simulation) bool) {
	vh.Sim.RepeatTask(func(s *core.Simulation) error {
		if cond(s) {
			sig.Trigger()
		}
		return nil
	}, 5*time.Millisecond)
}

func (vh *VirtualHarness) Stop() {
	if vh.Sim == nil {
		return
	}
	vh.Sim.Stop()
	<-vh.done
}
